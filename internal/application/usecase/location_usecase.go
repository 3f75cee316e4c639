package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/access"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// LocationUseCase casos de uso CRUD para locaciones. El código es único dentro de la filial.
type LocationUseCase struct {
	repo     repository.LocationRepository
	branches repository.BranchRepository
	access   *access.Filter
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository, branches repository.BranchRepository, filter *access.Filter) *LocationUseCase {
	return &LocationUseCase{repo: repo, branches: branches, access: filter}
}

// Create crea una locación en la filial indicada o en la por defecto.
func (uc *LocationUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	branchID, err := uc.access.ResolveWriteBranch(p, in.BranchID)
	if err != nil {
		return nil, err
	}
	branch, err := uc.branches.GetByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if !branch.IsActive {
		return nil, domain.InvalidState("branch %s is inactive", branch.Name)
	}
	if !entity.ValidLocationType(in.Type) {
		return nil, domain.InvalidArgument("unknown location type %q", in.Type)
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if existing, _ := uc.repo.GetByBranchAndCode(ctx, branchID, code); existing != nil {
		return nil, domain.ErrDuplicate
	}
	loc := &entity.Location{
		ID:        uuid.New().String(),
		BranchID:  branchID,
		Code:      code,
		Name:      in.Name,
		Type:      in.Type,
		IsActive:  true,
		AuditInfo: entity.NewAuditInfo(p.UserID, time.Now().UTC()),
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	out := dto.FromLocation(loc)
	return &out, nil
}

// GetByID obtiene una locación visible.
func (uc *LocationUseCase) GetByID(ctx context.Context, p entity.Principal, id string) (*dto.LocationResponse, error) {
	loc, err := uc.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromLocation(loc)
	return &out, nil
}

// Update actualiza una locación. Desactivarla no toca sus saldos; solo impide nuevos movimientos.
func (uc *LocationUseCase) Update(ctx context.Context, p entity.Principal, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	loc, err := uc.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*in.Code))
		if code != loc.Code {
			if existing, _ := uc.repo.GetByBranchAndCode(ctx, loc.BranchID, code); existing != nil {
				return nil, domain.ErrDuplicate
			}
			loc.Code = code
		}
	}
	if in.Name != nil {
		loc.Name = *in.Name
	}
	if in.Type != nil {
		if !entity.ValidLocationType(*in.Type) {
			return nil, domain.InvalidArgument("unknown location type %q", *in.Type)
		}
		loc.Type = *in.Type
	}
	if in.IsActive != nil {
		loc.IsActive = *in.IsActive
	}
	loc.Touch(p.UserID, time.Now().UTC())
	if err := uc.repo.Update(ctx, loc); err != nil {
		return nil, err
	}
	out := dto.FromLocation(loc)
	return &out, nil
}

// List lista locaciones visibles, opcionalmente de una filial y un tipo.
func (uc *LocationUseCase) List(ctx context.Context, p entity.Principal, branchID, locType string, includeInactive bool, page dto.PageRequest) (*dto.ListResponse[dto.LocationResponse], error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.LocationFilter{
		Scope:           uc.access.Scope(p, branchID),
		Type:            locType,
		IncludeInactive: includeInactive,
		Page:            repository.Page{Limit: page.Limit, Offset: page.Offset},
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, dto.FromLocation(l))
	}
	return &dto.ListResponse[dto.LocationResponse]{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

func (uc *LocationUseCase) visible(ctx context.Context, p entity.Principal, id string) (*entity.Location, error) {
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.access.CheckVisible(p, loc.BranchID); err != nil {
		return nil, err
	}
	return loc, nil
}
