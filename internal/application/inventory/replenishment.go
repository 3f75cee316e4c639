package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/access"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición de los ítems bajo su stock mínimo.
type ReplenishmentUseCase struct {
	items  repository.ItemRepository
	access *access.Filter
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(items repository.ItemRepository, filter *access.Filter) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{items: items, access: filter}
}

// GenerateReplenishmentList devuelve los ítems visibles bajo su mínimo con la cantidad
// sugerida de pedido. branchID puede ser vacío para todas las filiales visibles.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, p entity.Principal, branchID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	filter := repository.ItemFilter{
		Scope:        uc.access.Scope(p, branchID),
		LowStockOnly: true,
		Page:         repository.Page{Limit: 100},
	}
	var rows []*entity.ItemStock
	for {
		page, err := uc.items.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page...)
		if len(page) < filter.Limit {
			break
		}
		filter.Offset += filter.Limit
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rows))
	for _, row := range rows {
		if row.Status == entity.ItemStatusDiscontinued || row.Status == entity.ItemStatusInactive {
			continue
		}
		ideal := (row.MinimumStock*3 + 1) / 2
		suggested := ideal - row.TotalQuantity
		if suggested < 0 {
			suggested = 0
		}
		cost := decimal.Zero
		if row.PurchasePrice != nil {
			cost = row.PurchasePrice.Mul(decimal.NewFromInt(suggested))
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ItemID:             row.ID,
			BranchID:           row.BranchID,
			SKU:                row.SKU,
			Name:               row.Name,
			CurrentStock:       row.TotalQuantity,
			MinimumStock:       row.MinimumStock,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           row.PurchasePrice,
			EstimatedOrderCost: cost,
		})
	}

	// Mayor déficit absoluto primero; a igualdad, por SKU.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA, defB := a.MinimumStock-a.CurrentStock, b.MinimumStock-b.CurrentStock
		if defA != defB {
			return defA > defB
		}
		return a.SKU < b.SKU
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
