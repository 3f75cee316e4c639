package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MovementTypeUseCase registro de tipos de movimiento. Escrituras solo de administrador.
type MovementTypeUseCase struct {
	repo repository.MovementTypeRepository
}

// NewMovementTypeUseCase construye el caso de uso.
func NewMovementTypeUseCase(repo repository.MovementTypeRepository) *MovementTypeUseCase {
	return &MovementTypeUseCase{repo: repo}
}

// Create registra un tipo nuevo.
func (uc *MovementTypeUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateMovementTypeRequest) (*dto.MovementTypeResponse, error) {
	if !p.IsAdmin {
		return nil, domain.ErrForbidden
	}
	mt := &entity.MovementType{
		ID:               uuid.New().String(),
		Code:             strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:             in.Name,
		Description:      in.Description,
		Factor:           in.Factor,
		UnitsPerPackage:  in.UnitsPerPackage,
		Category:         in.Category,
		ParentID:         in.ParentID,
		RequiresApproval: in.RequiresApproval,
		AffectsFinance:   in.AffectsFinance,
		IsActive:         true,
		AuditInfo:        entity.NewAuditInfo(p.UserID, time.Now().UTC()),
	}
	if err := uc.validate(ctx, mt); err != nil {
		return nil, err
	}
	if existing, _ := uc.repo.GetByCode(ctx, mt.Code); existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := uc.repo.Create(ctx, mt); err != nil {
		return nil, err
	}
	out := dto.FromMovementType(mt)
	return &out, nil
}

// Update modifica un tipo existente. Cambiar el padre revalida toda la cadena de ancestros.
func (uc *MovementTypeUseCase) Update(ctx context.Context, p entity.Principal, id string, in dto.UpdateMovementTypeRequest) (*dto.MovementTypeResponse, error) {
	if !p.IsAdmin {
		return nil, domain.ErrForbidden
	}
	mt, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		mt.Name = *in.Name
	}
	if in.Description != nil {
		mt.Description = *in.Description
	}
	if in.Factor != nil {
		mt.Factor = *in.Factor
	}
	if in.ClearPackage {
		mt.UnitsPerPackage = nil
	} else if in.UnitsPerPackage != nil {
		mt.UnitsPerPackage = in.UnitsPerPackage
	}
	if in.Category != nil {
		mt.Category = *in.Category
	}
	if in.ClearParent {
		mt.ParentID = nil
	} else if in.ParentID != nil {
		mt.ParentID = in.ParentID
	}
	if in.RequiresApproval != nil {
		mt.RequiresApproval = *in.RequiresApproval
	}
	if in.AffectsFinance != nil {
		mt.AffectsFinance = *in.AffectsFinance
	}
	if in.IsActive != nil {
		mt.IsActive = *in.IsActive
	}
	if err := uc.validate(ctx, mt); err != nil {
		return nil, err
	}
	mt.Touch(p.UserID, time.Now().UTC())
	if err := uc.repo.Update(ctx, mt); err != nil {
		return nil, err
	}
	out := dto.FromMovementType(mt)
	return &out, nil
}

// Deactivate desactiva un tipo. Los movimientos ya registrados no cambian.
func (uc *MovementTypeUseCase) Deactivate(ctx context.Context, p entity.Principal, id string) error {
	inactive := false
	_, err := uc.Update(ctx, p, id, dto.UpdateMovementTypeRequest{IsActive: &inactive})
	return err
}

// GetByID obtiene un tipo por id.
func (uc *MovementTypeUseCase) GetByID(ctx context.Context, id string) (*dto.MovementTypeResponse, error) {
	mt, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromMovementType(mt)
	return &out, nil
}

// List lista tipos, opcionalmente solo activos o de una categoría.
func (uc *MovementTypeUseCase) List(ctx context.Context, activeOnly bool, category string) ([]dto.MovementTypeResponse, error) {
	list, err := uc.repo.List(ctx, repository.MovementTypeFilter{ActiveOnly: activeOnly, Category: category})
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementTypeResponse, 0, len(list))
	for _, mt := range list {
		out = append(out, dto.FromMovementType(mt))
	}
	return out, nil
}

func (uc *MovementTypeUseCase) validate(ctx context.Context, mt *entity.MovementType) error {
	if err := inventory.ValidateMovementType(mt); err != nil {
		return err
	}
	if mt.ParentID == nil {
		return nil
	}
	return inventory.CheckAncestry(mt.ID, mt.ParentID, func(id string) (*string, error) {
		parent, err := uc.repo.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.InvalidArgument("parent movement type %s does not exist", id)
		}
		if err != nil {
			return nil, err
		}
		return parent.ParentID, nil
	})
}
