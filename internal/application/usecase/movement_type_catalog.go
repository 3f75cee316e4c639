package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// closedBoxUnits unidades de la caja cerrada del catálogo base.
const closedBoxUnits = 25

// DefaultMovementTypes catálogo base de la instalación.
func DefaultMovementTypes() []dto.CreateMovementTypeRequest {
	box := closedBoxUnits
	return []dto.CreateMovementTypeRequest{
		{Code: "IN", Name: "Entrada", Factor: entity.FactorIn, Category: entity.CategoryInbound, AffectsFinance: true},
		{Code: "OUT", Name: "Salida", Factor: entity.FactorOut, Category: entity.CategoryOutbound, AffectsFinance: true},
		{Code: "INTERNAL_USE", Name: "Uso interno", Factor: entity.FactorOut, Category: entity.CategoryOutbound},
		{Code: "ADJUST_IN", Name: "Ajuste de entrada", Factor: entity.FactorIn, Category: entity.CategoryAdjustment, RequiresApproval: true},
		{Code: "ADJUST_OUT", Name: "Ajuste de salida", Factor: entity.FactorOut, Category: entity.CategoryAdjustment, RequiresApproval: true},
		{
			Code: "BOX_IN", Name: "Recibir caja cerrada", Description: "Entrada por caja cerrada de 25 unidades",
			Factor: entity.FactorIn, UnitsPerPackage: &box, Category: entity.CategoryInbound, AffectsFinance: true,
		},
		{Code: entity.MovementCodeTransferOut, Name: "Traslado salida", Factor: entity.FactorOut, Category: entity.CategoryTransfer},
		{Code: entity.MovementCodeTransferIn, Name: "Traslado entrada", Factor: entity.FactorIn, Category: entity.CategoryTransfer},
	}
}

// EnsureCatalog crea los tipos cuyo código todavía no existe; los existentes no se tocan.
// Devuelve cuántos tipos creó.
func (uc *MovementTypeUseCase) EnsureCatalog(ctx context.Context, p entity.Principal, defs []dto.CreateMovementTypeRequest) (int, error) {
	if !p.IsAdmin {
		return 0, domain.ErrForbidden
	}
	created := 0
	for _, def := range defs {
		code := strings.ToUpper(strings.TrimSpace(def.Code))
		_, err := uc.repo.GetByCode(ctx, code)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return created, err
		}
		if _, err := uc.Create(ctx, p, def); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
