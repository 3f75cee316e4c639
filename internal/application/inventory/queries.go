package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// GetBalance saldo de un par visible; 0 si aún no hubo movimientos.
func (l *Ledger) GetBalance(ctx context.Context, p entity.Principal, itemID, locationID string) (*entity.StockBalance, error) {
	if _, err := l.visibleItem(ctx, p, itemID); err != nil {
		return nil, err
	}
	if _, err := l.visibleLocation(ctx, p, locationID); err != nil {
		return nil, err
	}
	return l.balances.Get(ctx, itemID, locationID)
}

// ListBalances distribución del stock de un ítem por locación.
func (l *Ledger) ListBalances(ctx context.Context, p entity.Principal, itemID string) ([]*entity.LocationBalance, error) {
	if _, err := l.visibleItem(ctx, p, itemID); err != nil {
		return nil, err
	}
	return l.balances.ListByItem(ctx, itemID)
}

// ReplayBalance reconstruye el saldo sumando la cantidad efectiva de todo el libro del par.
// Es una operación de verificación: no aplica filtro de filial.
func (l *Ledger) ReplayBalance(ctx context.Context, itemID, locationID string) (int64, error) {
	return l.movements.SumEffective(ctx, itemID, locationID)
}

// BalanceCheck saldo materializado frente al reconstruido desde el libro.
type BalanceCheck struct {
	ItemID     string
	LocationID string
	Stored     int64
	Replayed   int64
}

// Consistent indica si ambos valores coinciden.
func (c BalanceCheck) Consistent() bool { return c.Stored == c.Replayed }

// VerifyBalance compara el saldo guardado con la reconstrucción del libro.
func (l *Ledger) VerifyBalance(ctx context.Context, itemID, locationID string) (*BalanceCheck, error) {
	stored, err := l.balances.Get(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}
	replayed, err := l.ReplayBalance(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}
	check := &BalanceCheck{ItemID: itemID, LocationID: locationID, Stored: stored.Quantity, Replayed: replayed}
	if !check.Consistent() {
		l.log.Error().
			Str("item_id", itemID).
			Str("location_id", locationID).
			Int64("stored", check.Stored).
			Int64("replayed", check.Replayed).
			Msg("saldo inconsistente con el libro")
	}
	return check, nil
}

// MovementQuery filtros del historial.
type MovementQuery struct {
	BranchID         string
	ItemID           string
	LocationID       string
	MovementTypeCode string
	UserID           string
	From, To         *time.Time
	Limit, Offset    int
}

// ListMovements historial de movimientos visible para el principal, más recientes primero.
func (l *Ledger) ListMovements(ctx context.Context, p entity.Principal, q MovementQuery) ([]*entity.StockMovement, error) {
	filter := repository.MovementFilter{
		Scope:      l.access.Scope(p, q.BranchID),
		ItemID:     q.ItemID,
		LocationID: q.LocationID,
		UserID:     q.UserID,
		From:       q.From,
		To:         q.To,
		Page:       repository.Page{Limit: q.Limit, Offset: q.Offset},
	}
	if q.MovementTypeCode != "" {
		mt, err := l.types.GetByCode(ctx, q.MovementTypeCode)
		if errors.Is(err, domain.ErrNotFound) {
			return []*entity.StockMovement{}, nil
		}
		if err != nil {
			return nil, err
		}
		filter.MovementTypeID = mt.ID
	}
	return l.movements.List(ctx, filter)
}

// GetMovement detalle de un movimiento; ErrNotFound si el ítem no es visible.
func (l *Ledger) GetMovement(ctx context.Context, p entity.Principal, id string) (*entity.StockMovement, error) {
	mov, err := l.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := l.visibleItem(ctx, p, mov.ItemID); err != nil {
		return nil, err
	}
	return mov, nil
}

// MovementTypeOptions tipos que se pueden usar con el ítem. Sin stock solo se ofrecen entradas.
// Los tipos de traslado no se ofrecen: se registran con Transfer.
func (l *Ledger) MovementTypeOptions(ctx context.Context, p entity.Principal, itemID string) ([]*entity.MovementType, error) {
	if _, err := l.visibleItem(ctx, p, itemID); err != nil {
		return nil, err
	}
	total, err := l.balances.SumByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	filter := repository.MovementTypeFilter{ActiveOnly: true}
	if total <= 0 {
		filter.Factor = entity.FactorIn
	}
	types, err := l.types.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.MovementType, 0, len(types))
	for _, mt := range types {
		if !isTransferCode(mt.Code) {
			out = append(out, mt)
		}
	}
	return out, nil
}
