package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/access"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// BranchUseCase administración de filiales y sectores. Las escrituras son solo de administrador.
// Las filiales no se borran: se desactivan.
type BranchUseCase struct {
	repo   repository.BranchRepository
	access *access.Filter
}

// NewBranchUseCase construye el caso de uso.
func NewBranchUseCase(repo repository.BranchRepository, filter *access.Filter) *BranchUseCase {
	return &BranchUseCase{repo: repo, access: filter}
}

// Create crea una filial activa.
func (uc *BranchUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateBranchRequest) (*dto.BranchResponse, error) {
	if !p.IsAdmin {
		return nil, domain.ErrForbidden
	}
	branch := &entity.Branch{
		ID:        uuid.New().String(),
		Name:      in.Name,
		IsActive:  true,
		AuditInfo: entity.NewAuditInfo(p.UserID, time.Now().UTC()),
	}
	if err := uc.repo.Create(ctx, branch); err != nil {
		return nil, err
	}
	out := dto.FromBranch(branch)
	return &out, nil
}

// GetByID obtiene una filial visible.
func (uc *BranchUseCase) GetByID(ctx context.Context, p entity.Principal, id string) (*dto.BranchResponse, error) {
	if err := uc.access.CheckVisible(p, id); err != nil {
		return nil, err
	}
	branch, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromBranch(branch)
	return &out, nil
}

// Update cambia nombre o estado. Desactivar no toca locaciones ni ítems.
func (uc *BranchUseCase) Update(ctx context.Context, p entity.Principal, id string, in dto.UpdateBranchRequest) (*dto.BranchResponse, error) {
	if !p.IsAdmin {
		return nil, domain.ErrForbidden
	}
	branch, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		branch.Name = *in.Name
	}
	if in.IsActive != nil {
		branch.IsActive = *in.IsActive
	}
	branch.Touch(p.UserID, time.Now().UTC())
	if err := uc.repo.Update(ctx, branch); err != nil {
		return nil, err
	}
	out := dto.FromBranch(branch)
	return &out, nil
}

// List filiales visibles. Solo el administrador ve las inactivas si las pide.
func (uc *BranchUseCase) List(ctx context.Context, p entity.Principal, includeInactive bool, page dto.PageRequest) (*dto.ListResponse[dto.BranchResponse], error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.BranchFilter{
		Scope:           uc.access.Scope(p, ""),
		IncludeInactive: includeInactive && p.IsAdmin,
		Page:            repository.Page{Limit: page.Limit, Offset: page.Offset},
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.BranchResponse, 0, len(list))
	for _, b := range list {
		items = append(items, dto.FromBranch(b))
	}
	return &dto.ListResponse[dto.BranchResponse]{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// CreateSector crea un sector en una filial activa.
func (uc *BranchUseCase) CreateSector(ctx context.Context, p entity.Principal, branchID string, in dto.CreateSectorRequest) (*dto.SectorResponse, error) {
	if !p.IsAdmin {
		return nil, domain.ErrForbidden
	}
	branch, err := uc.repo.GetByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if !branch.IsActive {
		return nil, domain.InvalidState("branch %s is inactive", branch.Name)
	}
	sector := &entity.Sector{
		ID:        uuid.New().String(),
		BranchID:  branchID,
		Name:      in.Name,
		IsActive:  true,
		AuditInfo: entity.NewAuditInfo(p.UserID, time.Now().UTC()),
	}
	if err := uc.repo.CreateSector(ctx, sector); err != nil {
		return nil, err
	}
	out := dto.FromSector(sector)
	return &out, nil
}

// ListSectors sectores de una filial visible.
func (uc *BranchUseCase) ListSectors(ctx context.Context, p entity.Principal, branchID string) ([]dto.SectorResponse, error) {
	if err := uc.access.CheckVisible(p, branchID); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListSectors(ctx, branchID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SectorResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.FromSector(s))
	}
	return out, nil
}
