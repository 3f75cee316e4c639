package onboarding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/access"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase alta de usuarios y login. El perfil con las concesiones por defecto se crea
// en el mismo flujo del alta, justo después de persistir el usuario.
type UseCase struct {
	users    repository.UserRepository
	branches repository.BranchRepository
	defaults access.TenancyDefaults
	jwtCfg   JWTConfig
}

// NewUseCase construye el caso de uso.
func NewUseCase(users repository.UserRepository, branches repository.BranchRepository, defaults access.TenancyDefaults, jwtCfg JWTConfig) *UseCase {
	return &UseCase{users: users, branches: branches, defaults: defaults, jwtCfg: jwtCfg}
}

// RegisterUser crea un usuario no administrador y su perfil.
func (uc *UseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	user, err := uc.createUser(ctx, in, false)
	if err != nil {
		return nil, err
	}
	profile, err := uc.EnsureProfile(ctx, user.ID, in.JobTitle)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user, profile), nil
}

// BootstrapAdmin crea (si no existe) un administrador. Usado por la herramienta de siembra.
func (uc *UseCase) BootstrapAdmin(ctx context.Context, username, password string) (*dto.UserResponse, error) {
	if existing, err := uc.users.GetByUsername(ctx, username); err == nil {
		profile, err := uc.EnsureProfile(ctx, existing.ID, "")
		if err != nil {
			return nil, err
		}
		return toUserResponse(existing, profile), nil
	}
	user, err := uc.createUser(ctx, dto.RegisterRequest{Username: username, Password: password, Name: username}, true)
	if err != nil {
		return nil, err
	}
	profile, err := uc.EnsureProfile(ctx, user.ID, "")
	if err != nil {
		return nil, err
	}
	return toUserResponse(user, profile), nil
}

func (uc *UseCase) createUser(ctx context.Context, in dto.RegisterRequest, isAdmin bool) (*entity.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || len(in.Password) < 8 {
		return nil, domain.InvalidArgument("username and a password of at least 8 characters are required")
	}
	if existing, _ := uc.users.GetByUsername(ctx, username); existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	name := in.Name
	if name == "" {
		name = username
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         name,
		IsAdmin:      isAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// EnsureProfile devuelve el perfil del usuario, creándolo con la filial y el sector por
// defecto si aún no existe. Es idempotente.
func (uc *UseCase) EnsureProfile(ctx context.Context, userID, jobTitle string) (*entity.UserProfile, error) {
	profile, err := uc.users.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	profile = &entity.UserProfile{UserID: userID, JobTitle: jobTitle, UpdatedAt: time.Now().UTC()}
	if uc.defaults.DefaultBranchID != "" {
		profile.BranchIDs = []string{uc.defaults.DefaultBranchID}
	}
	if uc.defaults.DefaultSectorID != "" {
		profile.SectorIDs = []string{uc.defaults.DefaultSectorID}
	}
	if err := uc.users.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Login verifica usuario/password, genera JWT con las filiales del perfil y retorna token + usuario.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}
	profile, err := uc.EnsureProfile(ctx, user.ID, "")
	if err != nil {
		return nil, err
	}
	p := user.Principal(profile)
	token, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Identity{
		UserID:    p.UserID,
		IsAdmin:   p.IsAdmin,
		BranchIDs: p.BranchIDs,
		SectorIDs: p.SectorIDs,
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user, profile)}, nil
}

// Grant reemplaza las filiales y sectores concedidos a un usuario. Solo administrador.
// Cada sector debe pertenecer a una de las filiales concedidas.
func (uc *UseCase) Grant(ctx context.Context, p entity.Principal, userID string, in dto.GrantRequest) (*dto.UserResponse, error) {
	if !p.IsAdmin {
		return nil, domain.ErrForbidden
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	granted := make(map[string]bool, len(in.BranchIDs))
	for _, id := range in.BranchIDs {
		if _, err := uc.branches.GetByID(ctx, id); err != nil {
			return nil, err
		}
		granted[id] = true
	}
	for _, id := range in.SectorIDs {
		sector, err := uc.branches.GetSector(ctx, id)
		if err != nil {
			return nil, err
		}
		if !granted[sector.BranchID] {
			return nil, domain.InvalidArgument("sector %s belongs to a branch that is not granted", id)
		}
	}
	profile, err := uc.EnsureProfile(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	profile.BranchIDs = append([]string{}, in.BranchIDs...)
	profile.SectorIDs = append([]string{}, in.SectorIDs...)
	profile.UpdatedAt = time.Now().UTC()
	if err := uc.users.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return toUserResponse(user, profile), nil
}

func toUserResponse(u *entity.User, profile *entity.UserProfile) *dto.UserResponse {
	out := &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		BranchIDs: []string{},
		SectorIDs: []string{},
		CreatedAt: u.CreatedAt,
	}
	if profile != nil {
		out.BranchIDs = append(out.BranchIDs, profile.BranchIDs...)
		out.SectorIDs = append(out.SectorIDs, profile.SectorIDs...)
	}
	return out
}
