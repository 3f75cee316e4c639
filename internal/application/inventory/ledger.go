package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/access"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Ledger motor del libro de stock: valida, bloquea la fila (ítem, locación), actualiza el
// saldo y anexa el movimiento en una sola transacción. No reintenta: un Conflict vuelve al llamador.
type Ledger struct {
	txRunner  TxRunner
	items     repository.ItemRepository
	locations repository.LocationRepository
	types     repository.MovementTypeRepository
	balances  repository.StockBalanceReader
	movements repository.StockMovementReader
	access    *access.Filter
	log       *logger.Logger
	observer  Observer
	now       func() time.Time
}

// NewLedger construye el motor.
func NewLedger(
	txRunner TxRunner,
	items repository.ItemRepository,
	locations repository.LocationRepository,
	types repository.MovementTypeRepository,
	balances repository.StockBalanceReader,
	movements repository.StockMovementReader,
	filter *access.Filter,
	log *logger.Logger,
) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{
		txRunner:  txRunner,
		items:     items,
		locations: locations,
		types:     types,
		balances:  balances,
		movements: movements,
		access:    filter,
		log:       log,
		observer:  noopObserver{},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithObserver registra el observador de métricas.
func (l *Ledger) WithObserver(o Observer) *Ledger {
	if o != nil {
		l.observer = o
	}
	return l
}

// CreateMovementInput datos de un movimiento. Quantity es la cantidad declarada, antes del multiplicador.
type CreateMovementInput struct {
	ItemID           string
	LocationID       string
	MovementTypeCode string
	Quantity         int64
	Notes            string
}

// CreateMovement registra un movimiento y devuelve el registro anexado.
func (l *Ledger) CreateMovement(ctx context.Context, p entity.Principal, in CreateMovementInput) (*entity.StockMovement, error) {
	start := time.Now()
	mov, err := l.createMovement(ctx, p, in)
	l.record(in.MovementTypeCode, start, err)
	if err != nil {
		return nil, err
	}
	l.log.Debug().
		Str("movement_id", mov.ID).
		Str("item_id", mov.ItemID).
		Str("location_id", mov.LocationID).
		Str("type", mov.MovementTypeCode).
		Int64("effective_quantity", mov.EffectiveQuantity).
		Msg("movimiento registrado")
	return mov, nil
}

func (l *Ledger) createMovement(ctx context.Context, p entity.Principal, in CreateMovementInput) (*entity.StockMovement, error) {
	if err := inventory.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	mt, err := l.ResolveMovementType(ctx, in.MovementTypeCode)
	if err != nil {
		return nil, err
	}
	if !mt.IsActive {
		return nil, domain.InvalidArgument("movement type %s is inactive", mt.Code)
	}
	if isTransferCode(mt.Code) {
		return nil, domain.InvalidArgument("movement type %s is reserved for transfers", mt.Code)
	}
	item, err := l.visibleItem(ctx, p, in.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := l.writableLocation(ctx, p, item, in.LocationID); err != nil {
		return nil, err
	}
	mov, err := l.buildMovement(mt, item, in.LocationID, in.Quantity, p.UserID, in.Notes)
	if err != nil {
		return nil, err
	}

	err = l.txRunner.Run(ctx, func(items repository.ItemLocker, balances repository.StockBalanceRepository, movements repository.StockMovementRepository) error {
		if err := lockActiveItem(ctx, items, mov.ItemID); err != nil {
			return err
		}
		current, err := balances.GetForUpdate(ctx, mov.ItemID, mov.LocationID)
		if err != nil {
			return err
		}
		return post(ctx, balances, movements, mov, current.Quantity)
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// lockActiveItem toma el bloqueo compartido del ítem y confirma, ya bajo el bloqueo, que
// no se haya dado de baja.
func lockActiveItem(ctx context.Context, items repository.ItemLocker, itemID string) error {
	item, err := items.GetForShare(ctx, itemID)
	if err != nil {
		return err
	}
	if item.IsDeleted() {
		return domain.InvalidState("item %s is deactivated", item.SKU)
	}
	return nil
}

// post aplica un movimiento sobre un saldo ya bloqueado por la transacción; current es la
// cantidad leída bajo ese bloqueo.
func post(ctx context.Context, balances repository.StockBalanceRepository, movements repository.StockMovementRepository, mov *entity.StockMovement, current int64) error {
	if _, err := inventory.NextBalance(current, mov.EffectiveQuantity); err != nil {
		return err
	}
	if _, err := balances.ApplyDelta(ctx, mov.ItemID, mov.LocationID, mov.EffectiveQuantity); err != nil {
		return err
	}
	return movements.Create(ctx, mov)
}

func (l *Ledger) buildMovement(mt *entity.MovementType, item *entity.Item, locationID string, quantity int64, userID, notes string) (*entity.StockMovement, error) {
	effective, err := inventory.EffectiveQuantity(mt, quantity)
	if err != nil {
		return nil, err
	}
	price, err := inventory.UnitPrice(mt, item)
	if err != nil {
		return nil, err
	}
	return &entity.StockMovement{
		ID:                uuid.New().String(),
		ItemID:            item.ID,
		LocationID:        locationID,
		MovementTypeID:    mt.ID,
		MovementTypeCode:  mt.Code,
		Quantity:          quantity,
		EffectiveQuantity: effective,
		UnitPrice:         price,
		UserID:            userID,
		Notes:             notes,
		CreatedAt:         l.now(),
	}, nil
}

// ResolveMovementType busca un tipo por código.
func (l *Ledger) ResolveMovementType(ctx context.Context, code string) (*entity.MovementType, error) {
	if code == "" {
		return nil, domain.InvalidArgument("movement type code is required")
	}
	return l.types.GetByCode(ctx, code)
}

// visibleItem resuelve el ítem o ErrNotFound si no existe o no es visible.
func (l *Ledger) visibleItem(ctx context.Context, p entity.Principal, itemID string) (*entity.Item, error) {
	item, err := l.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := l.access.CheckVisible(p, item.BranchID); err != nil {
		return nil, err
	}
	return item, nil
}

func (l *Ledger) visibleLocation(ctx context.Context, p entity.Principal, locationID string) (*entity.Location, error) {
	loc, err := l.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if err := l.access.CheckVisible(p, loc.BranchID); err != nil {
		return nil, err
	}
	return loc, nil
}

// writableLocation valida que la locación acepte movimientos del ítem.
func (l *Ledger) writableLocation(ctx context.Context, p entity.Principal, item *entity.Item, locationID string) (*entity.Location, error) {
	loc, err := l.visibleLocation(ctx, p, locationID)
	if err != nil {
		return nil, err
	}
	if loc.BranchID != item.BranchID {
		return nil, domain.InvalidArgument("location %s does not belong to the item's branch", loc.Code)
	}
	if item.IsDeleted() {
		return nil, domain.InvalidState("item %s is deactivated", item.SKU)
	}
	if !loc.IsActive {
		return nil, domain.InvalidState("location %s is inactive", loc.Code)
	}
	return loc, nil
}

func isTransferCode(code string) bool {
	return code == entity.MovementCodeTransferOut || code == entity.MovementCodeTransferIn
}

func (l *Ledger) record(movementType string, start time.Time, err error) {
	if err == nil {
		l.observer.MovementAccepted(movementType, time.Since(start))
		return
	}
	reason := rejectReason(err)
	l.observer.MovementRejected(movementType, reason)
	switch reason {
	case "conflict":
		l.log.Warn().Err(err).Str("type", movementType).Msg("conflicto de almacenamiento al registrar movimiento")
	case "storage":
		l.log.Error().Err(err).Str("type", movementType).Msg("error registrando movimiento")
	default:
		l.log.Info().Err(err).Str("type", movementType).Str("reason", reason).Msg("movimiento rechazado")
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	}
	return "storage"
}
