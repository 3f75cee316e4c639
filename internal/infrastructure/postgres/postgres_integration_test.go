package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/access"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Base de datos de prueba: TEST_DATABASE_URL (o .env) si existe; si no, un
// contenedor postgres:16-alpine. Sin Docker la prueba se omite.
// ──────────────────────────────────────────────────────────────────────────────

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("prueba de integración")
	}
	ctx := context.Background()
	_ = godotenv.Load("../../../.env.test")

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("ledger_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			t.Skipf("Docker no disponible: %v", err)
		}
		t.Cleanup(func() { _ = container.Terminate(context.Background()) })
		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, LockTimeout: 10 * time.Second, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

type pgFixture struct {
	pool     *pgxpool.Pool
	ledger   *inventory.Ledger
	branchID string
	locA     string
	locB     string
	itemID   string
	user     entity.Principal
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	pool := newTestPool(t)
	ctx := context.Background()
	audit := entity.NewAuditInfo("test", time.Now().UTC())

	f := &pgFixture{pool: pool, branchID: uuid.NewString(), locA: uuid.NewString(), locB: uuid.NewString(), itemID: uuid.NewString()}
	branches := postgres.NewBranchRepository(pool)
	locations := postgres.NewLocationRepository(pool)
	items := postgres.NewItemRepository(pool)
	types := postgres.NewMovementTypeRepository(pool)

	require.NoError(t, branches.Create(ctx, &entity.Branch{ID: f.branchID, Name: "Filial " + f.branchID[:6], IsActive: true, AuditInfo: audit}))
	for _, loc := range []struct{ id, code string }{{f.locA, "A01"}, {f.locB, "B01"}} {
		require.NoError(t, locations.Create(ctx, &entity.Location{
			ID: loc.id, BranchID: f.branchID, Code: loc.code, Name: loc.code,
			Type: entity.LocationTypeStorage, IsActive: true, AuditInfo: audit,
		}))
	}
	purchase, sale := decimal.NewFromInt(5), decimal.NewFromInt(8)
	require.NoError(t, items.Create(ctx, &entity.Item{
		ID: f.itemID, BranchID: f.branchID, SKU: "SKU-" + f.itemID[:8], Name: "Tornillo",
		Status: entity.ItemStatusActive, PurchasePrice: &purchase, SalePrice: &sale,
		MinimumStock: 10, UnitOfMeasure: "UN", AuditInfo: audit,
	}))
	for _, mt := range []entity.MovementType{
		{Code: "IN", Name: "Entrada", Factor: entity.FactorIn, Category: entity.CategoryInbound},
		{Code: "OUT", Name: "Salida", Factor: entity.FactorOut, Category: entity.CategoryOutbound},
		{Code: entity.MovementCodeTransferOut, Name: "Traslado salida", Factor: entity.FactorOut, Category: entity.CategoryTransfer},
		{Code: entity.MovementCodeTransferIn, Name: "Traslado entrada", Factor: entity.FactorIn, Category: entity.CategoryTransfer},
	} {
		mt := mt
		mt.ID = uuid.NewString()
		mt.IsActive = true
		mt.AuditInfo = audit
		err := types.Create(ctx, &mt)
		if err != nil && !errors.Is(err, domain.ErrDuplicate) {
			require.NoError(t, err)
		}
	}

	f.ledger = inventory.NewLedger(
		postgres.NewTxRunner(pool), items, locations, types,
		postgres.NewStockBalanceRepository(pool), postgres.NewStockMovementRepository(pool),
		access.NewFilter(access.TenancyDefaults{}), nil,
	)
	f.user = entity.Principal{UserID: "u-" + f.branchID[:6], BranchIDs: []string{f.branchID}}
	return f
}

func (f *pgFixture) move(t *testing.T, code, loc string, qty int64) (*entity.StockMovement, error) {
	t.Helper()
	return f.ledger.CreateMovement(context.Background(), f.user, inventory.CreateMovementInput{
		ItemID: f.itemID, LocationID: loc, MovementTypeCode: code, Quantity: qty,
	})
}

// ─── Libro ───────────────────────────────────────────────────────────────────

func TestPostgresLedger_EscenarioBasico(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	_, err := f.move(t, "IN", f.locA, 100)
	require.NoError(t, err)
	_, err = f.move(t, "OUT", f.locA, 30)
	require.NoError(t, err)

	_, err = f.move(t, "OUT", f.locA, 71)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(70), insufficient.Current)

	check, err := f.ledger.VerifyBalance(ctx, f.itemID, f.locA)
	require.NoError(t, err)
	assert.True(t, check.Consistent())
	assert.Equal(t, int64(70), check.Stored)

	history, err := f.ledger.ListMovements(ctx, f.user, inventory.MovementQuery{ItemID: f.itemID})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "OUT", history[0].MovementTypeCode)
	assert.True(t, history[0].UnitPrice.Equal(decimal.NewFromInt(8)))
}

func TestPostgresLedger_TrasladoAtomico(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	_, err := f.move(t, "IN", f.locA, 10)
	require.NoError(t, err)

	legs, err := f.ledger.Transfer(ctx, f.user, inventory.TransferInput{ItemID: f.itemID, FromLocationID: f.locA, ToLocationID: f.locB, Quantity: 4})
	require.NoError(t, err)
	require.Len(t, legs, 2)
	require.NotNil(t, legs[0].TransferID)

	_, err = f.ledger.Transfer(ctx, f.user, inventory.TransferInput{ItemID: f.itemID, FromLocationID: f.locA, ToLocationID: f.locB, Quantity: 7})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	a, err := f.ledger.GetBalance(ctx, f.user, f.itemID, f.locA)
	require.NoError(t, err)
	b, err := f.ledger.GetBalance(ctx, f.user, f.itemID, f.locB)
	require.NoError(t, err)
	assert.Equal(t, int64(6), a.Quantity)
	assert.Equal(t, int64(4), b.Quantity)
}

func TestPostgresLedger_SalidasConcurrentes(t *testing.T) {
	f := newPGFixture(t)
	_, err := f.move(t, "IN", f.locA, 100)
	require.NoError(t, err)

	var ok, rejected atomic.Int64
	var g errgroup.Group
	for i := 0; i < 30; i++ {
		g.Go(func() error {
			_, err := f.move(t, "OUT", f.locA, 5)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(20), ok.Load())
	assert.Equal(t, int64(10), rejected.Load())

	bal, err := f.ledger.GetBalance(context.Background(), f.user, f.itemID, f.locA)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal.Quantity)

	replayed, err := f.ledger.ReplayBalance(context.Background(), f.itemID, f.locA)
	require.NoError(t, err)
	assert.Equal(t, int64(0), replayed)
}

// ─── Esquema ─────────────────────────────────────────────────────────────────

func TestPostgres_LibroSoloAnexado(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	mov, err := f.move(t, "IN", f.locA, 1)
	require.NoError(t, err)

	_, err = f.pool.Exec(ctx, `UPDATE stock_movements SET quantity = 99 WHERE id = $1`, mov.ID)
	assert.Error(t, err)
	_, err = f.pool.Exec(ctx, `DELETE FROM stock_movements WHERE id = $1`, mov.ID)
	assert.Error(t, err)
}

func TestPostgres_SaldoNoNegativo(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	err := postgres.NewTxRunner(f.pool).Run(ctx, func(_ repository.ItemLocker, balances repository.StockBalanceRepository, _ repository.StockMovementRepository) error {
		if _, err := balances.GetForUpdate(ctx, f.itemID, f.locA); err != nil {
			return err
		}
		_, err := balances.ApplyDelta(ctx, f.itemID, f.locA, -1)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestPostgres_CatalogoDuplicadosYFiltros(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	items := postgres.NewItemRepository(f.pool)

	existing, err := items.GetByID(ctx, f.itemID)
	require.NoError(t, err)
	dup := *existing
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, items.Create(ctx, &dup), domain.ErrDuplicate)

	_, err = items.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rows, err := items.List(ctx, repository.ItemFilter{Scope: repository.Only(f.branchID), LowStockOnly: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(0), rows[0].TotalQuantity)

	rows, err = items.List(ctx, repository.ItemFilter{Scope: repository.Only()})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPostgres_ReferenciasYFacetas(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	audit := entity.NewAuditInfo("test", time.Now().UTC())
	suffix := f.branchID[:6]
	cats := postgres.NewCategoryRepository(f.pool)
	sups := postgres.NewSupplierRepository(f.pool)
	items := postgres.NewItemRepository(f.pool)

	group := &entity.CategoryGroup{ID: uuid.NewString(), Name: "Ferretería " + suffix, IsActive: true, AuditInfo: audit}
	require.NoError(t, cats.CreateGroup(ctx, group))
	cat := &entity.Category{ID: uuid.NewString(), GroupID: &group.ID, Name: "Tornillos " + suffix, IsActive: true, AuditInfo: audit}
	require.NoError(t, cats.Create(ctx, cat))
	dup := *cat
	dup.ID = uuid.NewString()
	dup.Name = "TORNILLOS " + suffix
	assert.ErrorIs(t, cats.Create(ctx, &dup), domain.ErrDuplicate)

	orphan := &entity.Category{ID: uuid.NewString(), GroupID: strPtr(uuid.NewString()), Name: "Huérfana " + suffix, IsActive: true, AuditInfo: audit}
	assert.ErrorIs(t, cats.Create(ctx, orphan), domain.ErrInvalidArgument)

	sup := &entity.Supplier{ID: uuid.NewString(), Name: "Acme " + suffix, TaxID: "TX-" + suffix, IsActive: true, AuditInfo: audit}
	require.NoError(t, sups.Create(ctx, sup))
	found, err := sups.List(ctx, repository.SupplierFilter{Search: "tx-" + suffix})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, sup.ID, found[0].ID)

	it, err := items.GetByID(ctx, f.itemID)
	require.NoError(t, err)
	it.CategoryID, it.SupplierID = &cat.ID, &sup.ID
	require.NoError(t, items.Update(ctx, it))

	rows, err := items.List(ctx, repository.ItemFilter{Scope: repository.Only(f.branchID), CategoryID: cat.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].SupplierID)
	assert.Equal(t, sup.ID, *rows[0].SupplierID)

	facets, err := items.Facets(ctx, repository.Only(f.branchID), false)
	require.NoError(t, err)
	assert.Equal(t, []string{cat.ID}, facets.CategoryIDs)
	assert.Equal(t, []string{sup.ID}, facets.SupplierIDs)
	assert.Equal(t, []string{entity.ItemStatusActive}, facets.Statuses)

	facets, err = items.Facets(ctx, repository.Only(), false)
	require.NoError(t, err)
	assert.Empty(t, facets.Statuses)
}

func strPtr(v string) *string { return &v }

func TestPostgres_PerfilesDeUsuario(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	users := postgres.NewUserRepository(f.pool)

	now := time.Now().UTC()
	u := &entity.User{ID: uuid.NewString(), Username: "ana-" + f.branchID[:6], PasswordHash: "x", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, users.Create(ctx, u))
	assert.ErrorIs(t, users.Create(ctx, &entity.User{ID: uuid.NewString(), Username: u.Username, PasswordHash: "x"}), domain.ErrDuplicate)

	_, err := users.GetProfile(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, users.SaveProfile(ctx, &entity.UserProfile{UserID: u.ID, BranchIDs: []string{f.branchID}, UpdatedAt: now}))
	p, err := users.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.branchID}, p.BranchIDs)
	assert.Empty(t, p.SectorIDs)

	_, err = users.GetByUsername(ctx, "nadie")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
