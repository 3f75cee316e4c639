package inventory_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/access"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: dos filiales, locaciones en cada una, un ítem por filial y el
// catálogo básico de tipos de movimiento.
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	ledger   *inventory.Ledger
	observer *countingObserver

	branch1, branch2       string
	loc1A, loc1B, loc2A    string
	locInactive            string
	item1, item2, itemFree string

	admin, user1 entity.Principal
}

type countingObserver struct {
	mu       sync.Mutex
	accepted map[string]int
	rejected map[string]int
}

func (o *countingObserver) MovementAccepted(mt string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.accepted[mt]++
}

func (o *countingObserver) MovementRejected(_ string, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected[reason]++
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func intPtr(v int) *int { return &v }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	now := time.Now().UTC()
	audit := entity.NewAuditInfo("seed", now)

	f := &fixture{
		store:    s,
		branch1:  uuid.NewString(),
		branch2:  uuid.NewString(),
		observer: &countingObserver{accepted: map[string]int{}, rejected: map[string]int{}},
	}
	for _, id := range []string{f.branch1, f.branch2} {
		require.NoError(t, s.Branches().Create(ctx, &entity.Branch{ID: id, Name: "Filial " + id[:4], IsActive: true, AuditInfo: audit}))
	}

	newLoc := func(branchID, code string, active bool) string {
		id := uuid.NewString()
		require.NoError(t, s.Locations().Create(ctx, &entity.Location{
			ID: id, BranchID: branchID, Code: code, Name: code,
			Type: entity.LocationTypeStorage, IsActive: active, AuditInfo: audit,
		}))
		return id
	}
	f.loc1A = newLoc(f.branch1, "A01", true)
	f.loc1B = newLoc(f.branch1, "B01", true)
	f.locInactive = newLoc(f.branch1, "Z99", false)
	f.loc2A = newLoc(f.branch2, "A01", true)

	newItem := func(branchID, sku string, purchase, sale *decimal.Decimal) string {
		id := uuid.NewString()
		require.NoError(t, s.Items().Create(ctx, &entity.Item{
			ID: id, BranchID: branchID, SKU: sku, Name: sku, Status: entity.ItemStatusActive,
			PurchasePrice: purchase, SalePrice: sale, MinimumStock: 10, UnitOfMeasure: "UN", AuditInfo: audit,
		}))
		return id
	}
	f.item1 = newItem(f.branch1, "SKU-1", price(5), price(8))
	f.item2 = newItem(f.branch2, "SKU-2", price(5), price(8))
	f.itemFree = newItem(f.branch1, "SKU-FREE", price(0), price(8))

	types := []entity.MovementType{
		{Code: "IN", Name: "Entrada", Factor: entity.FactorIn, Category: entity.CategoryInbound, IsActive: true},
		{Code: "OUT", Name: "Salida", Factor: entity.FactorOut, Category: entity.CategoryOutbound, IsActive: true},
		{Code: "BOX12", Name: "Caja x12", Factor: entity.FactorIn, UnitsPerPackage: intPtr(12), Category: entity.CategoryInbound, IsActive: true},
		{Code: "OLD", Name: "Obsoleto", Factor: entity.FactorIn, Category: entity.CategoryInbound, IsActive: false},
		{Code: entity.MovementCodeTransferOut, Name: "Traslado salida", Factor: entity.FactorOut, Category: entity.CategoryTransfer, IsActive: true},
		{Code: entity.MovementCodeTransferIn, Name: "Traslado entrada", Factor: entity.FactorIn, Category: entity.CategoryTransfer, IsActive: true},
	}
	for i := range types {
		types[i].ID = uuid.NewString()
		types[i].AuditInfo = audit
		require.NoError(t, s.MovementTypes().Create(ctx, &types[i]))
	}

	filter := access.NewFilter(access.TenancyDefaults{DefaultBranchID: f.branch1})
	f.ledger = inventory.NewLedger(
		memory.NewTxRunner(s), s.Items(), s.Locations(), s.MovementTypes(),
		s.Balances(), s.Movements(), filter, logger.Nop(),
	).WithObserver(f.observer)

	f.admin = entity.Principal{UserID: "admin", IsAdmin: true}
	f.user1 = entity.Principal{UserID: "user-1", BranchIDs: []string{f.branch1}}
	return f
}

func (f *fixture) move(t *testing.T, code string, qty int64) (*entity.StockMovement, error) {
	t.Helper()
	return f.ledger.CreateMovement(context.Background(), f.user1, inventory.CreateMovementInput{
		ItemID: f.item1, LocationID: f.loc1A, MovementTypeCode: code, Quantity: qty,
	})
}

func (f *fixture) balance(t *testing.T, itemID, locationID string) int64 {
	t.Helper()
	b, err := f.ledger.GetBalance(context.Background(), f.admin, itemID, locationID)
	require.NoError(t, err)
	return b.Quantity
}

func (f *fixture) assertReplay(t *testing.T, itemID, locationID string) {
	t.Helper()
	check, err := f.ledger.VerifyBalance(context.Background(), itemID, locationID)
	require.NoError(t, err)
	assert.True(t, check.Consistent(), "saldo %d, libro %d", check.Stored, check.Replayed)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario completo y reglas de negocio
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateMovement_EscenarioEntradaYSalidas(t *testing.T) {
	f := newFixture(t)

	_, err := f.move(t, "IN", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), f.balance(t, f.item1, f.loc1A))

	_, err = f.move(t, "OUT", 30)
	require.NoError(t, err)
	assert.Equal(t, int64(70), f.balance(t, f.item1, f.loc1A))
	f.assertReplay(t, f.item1, f.loc1A)

	_, err = f.move(t, "OUT", 71)
	require.Error(t, err)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(70), ise.Current)
	assert.Equal(t, int64(71), ise.Requested)
	assert.Equal(t, int64(70), f.balance(t, f.item1, f.loc1A))

	_, err = f.move(t, "OUT", 70)
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.balance(t, f.item1, f.loc1A))
	f.assertReplay(t, f.item1, f.loc1A)

	assert.Equal(t, 1, f.observer.rejected["insufficient_stock"])
	assert.Equal(t, 2, f.observer.accepted["OUT"])
}

func TestCreateMovement_MultiplicadorDePaquete(t *testing.T) {
	f := newFixture(t)

	mov, err := f.move(t, "BOX12", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), mov.Quantity)
	assert.Equal(t, int64(36), mov.EffectiveQuantity)
	assert.Equal(t, int64(36), f.balance(t, f.item1, f.loc1A))
}

func TestCreateMovement_CongelaPrecioSegunFactor(t *testing.T) {
	f := newFixture(t)

	in, err := f.move(t, "IN", 10)
	require.NoError(t, err)
	assert.True(t, in.UnitPrice.Equal(decimal.NewFromInt(5)))

	out, err := f.move(t, "OUT", 1)
	require.NoError(t, err)
	assert.True(t, out.UnitPrice.Equal(decimal.NewFromInt(8)))
}

func TestCreateMovement_CantidadCeroONegativa(t *testing.T) {
	f := newFixture(t)

	_, err := f.move(t, "IN", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.move(t, "IN", -5)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, int64(0), f.balance(t, f.item1, f.loc1A))
}

func TestCreateMovement_CantidadFueraDeRango(t *testing.T) {
	f := newFixture(t)

	// 1537228672809129302 × 12 desborda int64
	_, err := f.move(t, "BOX12", 1537228672809129302)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, int64(0), f.balance(t, f.item1, f.loc1A))

	_, err = f.move(t, "IN", 1)
	require.NoError(t, err)
	_, err = f.move(t, "IN", math.MaxInt64)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, int64(1), f.balance(t, f.item1, f.loc1A))
	f.assertReplay(t, f.item1, f.loc1A)
}

func TestCreateMovement_PrecioDeCompraCeroRechazaEntrada(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.CreateMovement(context.Background(), f.user1, inventory.CreateMovementInput{
		ItemID: f.itemFree, LocationID: f.loc1A, MovementTypeCode: "IN", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, int64(0), f.balance(t, f.itemFree, f.loc1A))
}

func TestCreateMovement_TipoInactivoODesconocido(t *testing.T) {
	f := newFixture(t)

	_, err := f.move(t, "OLD", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.move(t, "NOPE", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateMovement_CodigosDeTrasladoReservados(t *testing.T) {
	f := newFixture(t)
	_, err := f.move(t, entity.MovementCodeTransferIn, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCreateMovement_AislamientoEntreFiliales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, errOtherBranch := f.ledger.CreateMovement(ctx, f.user1, inventory.CreateMovementInput{
		ItemID: f.item2, LocationID: f.loc2A, MovementTypeCode: "IN", Quantity: 1,
	})
	_, errMissing := f.ledger.CreateMovement(ctx, f.user1, inventory.CreateMovementInput{
		ItemID: uuid.NewString(), LocationID: f.loc2A, MovementTypeCode: "IN", Quantity: 1,
	})
	assert.ErrorIs(t, errOtherBranch, domain.ErrNotFound)
	assert.ErrorIs(t, errMissing, domain.ErrNotFound)
	assert.Equal(t, errMissing.Error(), errOtherBranch.Error())

	_, err := f.ledger.GetBalance(ctx, f.user1, f.item2, f.loc2A)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.ledger.ListBalances(ctx, f.user1, f.item2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateMovement_LocacionDeOtraFilial(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.CreateMovement(context.Background(), f.admin, inventory.CreateMovementInput{
		ItemID: f.item1, LocationID: f.loc2A, MovementTypeCode: "IN", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCreateMovement_LocacionInactivaEItemDesactivado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.CreateMovement(ctx, f.user1, inventory.CreateMovementInput{
		ItemID: f.item1, LocationID: f.locInactive, MovementTypeCode: "IN", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	now := time.Now()
	require.NoError(t, f.store.Items().SetDeletedAt(ctx, f.item1, &now, "admin"))
	_, err = f.move(t, "IN", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCreateMovement_ContextoCanceladoEsConflicto(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ledger.CreateMovement(ctx, f.user1, inventory.CreateMovementInput{
		ItemID: f.item1, LocationID: f.loc1A, MovementTypeCode: "IN", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, f.observer.rejected["conflict"])
}

func TestGetBalance_LecturaIdempotente(t *testing.T) {
	f := newFixture(t)
	_, err := f.move(t, "IN", 12)
	require.NoError(t, err)

	first := f.balance(t, f.item1, f.loc1A)
	second := f.balance(t, f.item1, f.loc1A)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(0), f.balance(t, f.item1, f.loc1B), "par sin movimientos vale 0")
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_MueveStockConTransferIDCompartido(t *testing.T) {
	f := newFixture(t)
	_, err := f.move(t, "IN", 20)
	require.NoError(t, err)

	movs, err := f.ledger.Transfer(context.Background(), f.user1, inventory.TransferInput{
		ItemID: f.item1, FromLocationID: f.loc1A, ToLocationID: f.loc1B, Quantity: 8,
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	require.NotNil(t, movs[0].TransferID)
	assert.Equal(t, *movs[0].TransferID, *movs[1].TransferID)
	assert.Equal(t, int64(-8), movs[0].EffectiveQuantity)
	assert.Equal(t, int64(8), movs[1].EffectiveQuantity)

	assert.Equal(t, int64(12), f.balance(t, f.item1, f.loc1A))
	assert.Equal(t, int64(8), f.balance(t, f.item1, f.loc1B))
	f.assertReplay(t, f.item1, f.loc1A)
	f.assertReplay(t, f.item1, f.loc1B)
}

func TestTransfer_SinStockNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	_, err := f.move(t, "IN", 5)
	require.NoError(t, err)

	_, err = f.ledger.Transfer(context.Background(), f.user1, inventory.TransferInput{
		ItemID: f.item1, FromLocationID: f.loc1A, ToLocationID: f.loc1B, Quantity: 6,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(5), f.balance(t, f.item1, f.loc1A))
	assert.Equal(t, int64(0), f.balance(t, f.item1, f.loc1B))

	movs, err := f.ledger.ListMovements(context.Background(), f.admin, inventory.MovementQuery{ItemID: f.item1})
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestTransfer_MismaLocacion(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Transfer(context.Background(), f.user1, inventory.TransferInput{
		ItemID: f.item1, FromLocationID: f.loc1A, ToLocationID: f.loc1A, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial y opciones
// ──────────────────────────────────────────────────────────────────────────────

func TestListMovements_FiltradoPorFilial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.move(t, "IN", 3)
	require.NoError(t, err)
	_, err = f.ledger.CreateMovement(ctx, f.admin, inventory.CreateMovementInput{
		ItemID: f.item2, LocationID: f.loc2A, MovementTypeCode: "IN", Quantity: 4,
	})
	require.NoError(t, err)

	all, err := f.ledger.ListMovements(ctx, f.admin, inventory.MovementQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.ledger.ListMovements(ctx, f.user1, inventory.MovementQuery{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.item1, mine[0].ItemID)

	none, err := f.ledger.ListMovements(ctx, entity.Principal{UserID: "x"}, inventory.MovementQuery{})
	require.NoError(t, err)
	assert.Empty(t, none)

	byType, err := f.ledger.ListMovements(ctx, f.admin, inventory.MovementQuery{MovementTypeCode: "OUT"})
	require.NoError(t, err)
	assert.Empty(t, byType)
}

func TestGetMovement_FueraDeAlcanceEsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mov, err := f.ledger.CreateMovement(ctx, f.admin, inventory.CreateMovementInput{
		ItemID: f.item2, LocationID: f.loc2A, MovementTypeCode: "IN", Quantity: 4,
	})
	require.NoError(t, err)

	_, err = f.ledger.GetMovement(ctx, f.user1, mov.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.ledger.GetMovement(ctx, f.admin, mov.ID)
	require.NoError(t, err)
	assert.Equal(t, mov.ID, got.ID)
}

func TestMovementTypeOptions_SinStockSoloEntradas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	opts, err := f.ledger.MovementTypeOptions(ctx, f.user1, f.item1)
	require.NoError(t, err)
	codes := map[string]bool{}
	for _, mt := range opts {
		codes[mt.Code] = true
		assert.Equal(t, entity.FactorIn, mt.Factor)
	}
	assert.True(t, codes["IN"])
	assert.True(t, codes["BOX12"])
	assert.False(t, codes["OLD"])
	assert.False(t, codes[entity.MovementCodeTransferIn])

	_, err = f.move(t, "IN", 1)
	require.NoError(t, err)
	opts, err = f.ledger.MovementTypeOptions(ctx, f.user1, f.item1)
	require.NoError(t, err)
	hasOut := false
	for _, mt := range opts {
		hasOut = hasOut || mt.Code == "OUT"
	}
	assert.True(t, hasOut)
}

func TestResolveMovementType(t *testing.T) {
	f := newFixture(t)
	mt, err := f.ledger.ResolveMovementType(context.Background(), "BOX12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), mt.PackageMultiplier())

	_, err = f.ledger.ResolveMovementType(context.Background(), "MISSING")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateMovement_EscritoresConcurrentesSinPerdidas(t *testing.T) {
	f := newFixture(t)
	_, err := f.move(t, "IN", 100)
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			_, err := f.move(t, "OUT", 1)
			return err
		})
	}
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			_, err := f.move(t, "IN", 1)
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(50), f.balance(t, f.item1, f.loc1A))
	f.assertReplay(t, f.item1, f.loc1A)
}

func TestCreateMovement_SalidasConcurrentesNuncaNegativas(t *testing.T) {
	f := newFixture(t)
	_, err := f.move(t, "IN", 10)
	require.NoError(t, err)

	var (
		g            errgroup.Group
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < 25; i++ {
		g.Go(func() error {
			_, err := f.move(t, "OUT", 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 10, ok)
	assert.Equal(t, 15, rejected)
	assert.Equal(t, int64(0), f.balance(t, f.item1, f.loc1A))
	f.assertReplay(t, f.item1, f.loc1A)
}

func TestTransfer_CruzadosConcurrentesSinBloqueoMutuo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.move(t, "IN", 50)
	require.NoError(t, err)
	_, err = f.ledger.CreateMovement(ctx, f.user1, inventory.CreateMovementInput{
		ItemID: f.item1, LocationID: f.loc1B, MovementTypeCode: "IN", Quantity: 50,
	})
	require.NoError(t, err)

	tctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	g, gctx := errgroup.WithContext(tctx)
	for i := 0; i < 20; i++ {
		from, to := f.loc1A, f.loc1B
		if i%2 == 1 {
			from, to = to, from
		}
		g.Go(func() error {
			_, err := f.ledger.Transfer(gctx, f.user1, inventory.TransferInput{
				ItemID: f.item1, FromLocationID: from, ToLocationID: to, Quantity: 1,
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(50), f.balance(t, f.item1, f.loc1A))
	assert.Equal(t, int64(50), f.balance(t, f.item1, f.loc1B))
	f.assertReplay(t, f.item1, f.loc1A)
	f.assertReplay(t, f.item1, f.loc1B)
}
