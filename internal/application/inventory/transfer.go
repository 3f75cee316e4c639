package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TransferInput traslado de un ítem entre dos locaciones de su filial.
type TransferInput struct {
	ItemID         string
	FromLocationID string
	ToLocationID   string
	Quantity       int64
	Notes          string
}

// Transfer registra TRANSFER_OUT en origen y TRANSFER_IN en destino en una sola transacción.
// Ambos movimientos comparten TransferID. Las dos filas se bloquean en orden de id de locación.
func (l *Ledger) Transfer(ctx context.Context, p entity.Principal, in TransferInput) ([]*entity.StockMovement, error) {
	start := time.Now()
	movs, err := l.transfer(ctx, p, in)
	l.record(entity.MovementCodeTransferOut, start, err)
	if err != nil {
		return nil, err
	}
	l.log.Debug().
		Str("transfer_id", *movs[0].TransferID).
		Str("item_id", in.ItemID).
		Str("from", in.FromLocationID).
		Str("to", in.ToLocationID).
		Int64("quantity", in.Quantity).
		Msg("traslado registrado")
	return movs, nil
}

func (l *Ledger) transfer(ctx context.Context, p entity.Principal, in TransferInput) ([]*entity.StockMovement, error) {
	if err := inventory.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if in.FromLocationID == in.ToLocationID {
		return nil, domain.InvalidArgument("source and destination locations must differ")
	}
	outType, err := l.transferType(ctx, entity.MovementCodeTransferOut, entity.FactorOut)
	if err != nil {
		return nil, err
	}
	inType, err := l.transferType(ctx, entity.MovementCodeTransferIn, entity.FactorIn)
	if err != nil {
		return nil, err
	}
	item, err := l.visibleItem(ctx, p, in.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := l.writableLocation(ctx, p, item, in.FromLocationID); err != nil {
		return nil, err
	}
	if _, err := l.writableLocation(ctx, p, item, in.ToLocationID); err != nil {
		return nil, err
	}

	out, err := l.buildMovement(outType, item, in.FromLocationID, in.Quantity, p.UserID, in.Notes)
	if err != nil {
		return nil, err
	}
	dst, err := l.buildMovement(inType, item, in.ToLocationID, in.Quantity, p.UserID, in.Notes)
	if err != nil {
		return nil, err
	}
	transferID := uuid.New().String()
	out.TransferID = &transferID
	dst.TransferID = &transferID

	lockOrder := []string{in.FromLocationID, in.ToLocationID}
	sort.Strings(lockOrder)

	err = l.txRunner.Run(ctx, func(items repository.ItemLocker, balances repository.StockBalanceRepository, movements repository.StockMovementRepository) error {
		if err := lockActiveItem(ctx, items, in.ItemID); err != nil {
			return err
		}
		locked := make(map[string]int64, 2)
		for _, locationID := range lockOrder {
			b, err := balances.GetForUpdate(ctx, in.ItemID, locationID)
			if err != nil {
				return err
			}
			locked[locationID] = b.Quantity
		}
		if err := post(ctx, balances, movements, out, locked[in.FromLocationID]); err != nil {
			return err
		}
		return post(ctx, balances, movements, dst, locked[in.ToLocationID])
	})
	if err != nil {
		return nil, err
	}
	return []*entity.StockMovement{out, dst}, nil
}

func (l *Ledger) transferType(ctx context.Context, code string, factor int) (*entity.MovementType, error) {
	mt, err := l.types.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !mt.IsActive {
		return nil, domain.InvalidArgument("movement type %s is inactive", code)
	}
	if mt.Factor != factor {
		return nil, domain.InvalidState("movement type %s must have factor %d", code, factor)
	}
	return mt, nil
}
