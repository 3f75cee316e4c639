package postgres

import (
	"context"
	"errors"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, username, email, password_hash, name, is_admin, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Name, &u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.Name, u.IsAdmin, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return mapError("insert user", err)
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "get user", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByUsername obtiene un usuario por nombre de usuario.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "get user by username", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepo) findOne(ctx context.Context, op, query, arg string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		err = mapError(op, err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetProfile devuelve las concesiones del usuario; ErrNotFound si aún no tiene perfil.
func (r *UserRepo) GetProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	var p entity.UserProfile
	err := r.q.QueryRow(ctx, `
		SELECT user_id, job_title, branch_ids, sector_ids, updated_at
		FROM user_profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.JobTitle, &p.BranchIDs, &p.SectorIDs, &p.UpdatedAt)
	if err != nil {
		return nil, mapError("get profile", err)
	}
	return &p, nil
}

// SaveProfile inserta o reemplaza el perfil.
func (r *UserRepo) SaveProfile(ctx context.Context, p *entity.UserProfile) error {
	branchIDs := p.BranchIDs
	if branchIDs == nil {
		branchIDs = []string{}
	}
	sectorIDs := p.SectorIDs
	if sectorIDs == nil {
		sectorIDs = []string{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO user_profiles (user_id, job_title, branch_ids, sector_ids, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			job_title = EXCLUDED.job_title, branch_ids = EXCLUDED.branch_ids,
			sector_ids = EXCLUDED.sector_ids, updated_at = EXCLUDED.updated_at`,
		p.UserID, p.JobTitle, branchIDs, sectorIDs, p.UpdatedAt)
	if err != nil {
		err = mapError("save profile", err)
		if errors.Is(err, domain.ErrInvalidArgument) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return nil
}
