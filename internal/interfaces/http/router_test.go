package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/onboarding"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/access"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// API completa sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

type apiFixture struct {
	app *fiber.App

	branchID   string
	locA, locB string
	itemID     string
	userAuth   string
	adminAuth  string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	audit := entity.NewAuditInfo("seed", time.Now().UTC())

	f := &apiFixture{branchID: uuid.NewString()}
	require.NoError(t, s.Branches().Create(ctx, &entity.Branch{ID: f.branchID, Name: "Centro", IsActive: true, AuditInfo: audit}))
	for _, l := range []struct {
		id   *string
		code string
	}{{&f.locA, "A01"}, {&f.locB, "B01"}} {
		*l.id = uuid.NewString()
		require.NoError(t, s.Locations().Create(ctx, &entity.Location{
			ID: *l.id, BranchID: f.branchID, Code: l.code, Name: l.code,
			Type: entity.LocationTypeStorage, IsActive: true, AuditInfo: audit,
		}))
	}
	purchase, sale := decimal.NewFromInt(4), decimal.NewFromInt(9)
	f.itemID = uuid.NewString()
	require.NoError(t, s.Items().Create(ctx, &entity.Item{
		ID: f.itemID, BranchID: f.branchID, SKU: "CAF-500", Name: "Café 500g", Status: entity.ItemStatusActive,
		PurchasePrice: &purchase, SalePrice: &sale, MinimumStock: 10, UnitOfMeasure: "UN", AuditInfo: audit,
	}))
	for _, mt := range []entity.MovementType{
		{Code: "IN", Name: "Entrada", Factor: entity.FactorIn, Category: entity.CategoryInbound, IsActive: true},
		{Code: "OUT", Name: "Salida", Factor: entity.FactorOut, Category: entity.CategoryOutbound, IsActive: true},
		{Code: entity.MovementCodeTransferOut, Name: "Traslado salida", Factor: entity.FactorOut, Category: entity.CategoryTransfer, IsActive: true},
		{Code: entity.MovementCodeTransferIn, Name: "Traslado entrada", Factor: entity.FactorIn, Category: entity.CategoryTransfer, IsActive: true},
	} {
		mt := mt
		mt.ID = uuid.NewString()
		mt.AuditInfo = audit
		require.NoError(t, s.MovementTypes().Create(ctx, &mt))
	}

	defaults := access.TenancyDefaults{DefaultBranchID: f.branchID}
	filter := access.NewFilter(defaults)
	m := metrics.NewLedgerMetrics()
	ledger := inventory.NewLedger(memory.NewTxRunner(s), s.Items(), s.Locations(), s.MovementTypes(),
		s.Balances(), s.Movements(), filter, logger.Nop()).WithObserver(m)

	idem := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = idem.Close() })

	refs := usecase.ItemReferences{Categories: s.Categories(), Suppliers: s.Suppliers()}
	f.app = fiber.New()
	apphttp.Router(f.app, apphttp.RouterDeps{
		Branches:       usecase.NewBranchUseCase(s.Branches(), filter),
		Locations:      usecase.NewLocationUseCase(s.Locations(), s.Branches(), filter),
		Items:          usecase.NewItemUseCase(s.Items(), s.Branches(), refs, s.Balances(), memory.NewTxRunner(s), filter),
		Categories:     usecase.NewCategoryUseCase(s.Categories()),
		Suppliers:      usecase.NewSupplierUseCase(s.Suppliers()),
		MovementTypes:  usecase.NewMovementTypeUseCase(s.MovementTypes()),
		Ledger:         ledger,
		Replenishment:  inventory.NewReplenishmentUseCase(s.Items(), filter),
		Onboarding:     onboarding.NewUseCase(s.Users(), s.Branches(), defaults, onboarding.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		Idempotency:    idem,
		IdempotencyTTL: time.Hour,
		Metrics:        m.Handler(),
		JWTSecret:      testJWTSecret,
		Log:            logger.Nop(),
	})

	f.userAuth = bearer(t, testJWTSecret, pkgjwt.Identity{UserID: testUserID, BranchIDs: []string{f.branchID}})
	f.adminAuth = bearer(t, testJWTSecret, pkgjwt.Identity{UserID: uuid.NewString(), IsAdmin: true})
	return f
}

type apiResponse struct {
	status int
	header http.Header
	raw    []byte
}

func (r apiResponse) json(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.raw, &out), "cuerpo: %s", r.raw)
	return out
}

func (f *apiFixture) do(t *testing.T, method, path, auth string, body any, headers ...string) apiResponse {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return apiResponse{status: resp.StatusCode, header: resp.Header, raw: raw}
}

func (f *apiFixture) move(t *testing.T, code string, qty int64, headers ...string) apiResponse {
	t.Helper()
	return f.do(t, http.MethodPost, "/api/movements", f.userAuth, map[string]any{
		"item_id": f.itemID, "location_id": f.locA, "movement_type": code, "quantity": qty,
	}, headers...)
}

func (f *apiFixture) balance(t *testing.T, locationID string) float64 {
	t.Helper()
	res := f.do(t, http.MethodGet, "/api/balances?item_id="+f.itemID+"&location_id="+locationID, f.userAuth, nil)
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	return res.json(t)["quantity"].(float64)
}

// ─── Salud y autenticación ───────────────────────────────────────────────────

func TestRouter_HealthPublico(t *testing.T) {
	f := newAPI(t)
	res := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, "ok", res.json(t)["status"])
}

func TestRouter_SinTokenDevuelve401(t *testing.T) {
	f := newAPI(t)
	res := f.do(t, http.MethodGet, "/api/balances?item_id="+f.itemID+"&location_id="+f.locA, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.status)
}

func TestRouter_RegistroYLogin(t *testing.T) {
	f := newAPI(t)
	res := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{"username": "marta", "password": "secreto123"})
	require.Equal(t, fiber.StatusCreated, res.status, string(res.raw))
	assert.Equal(t, []any{f.branchID}, res.json(t)["branch_ids"])

	res = f.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{"username": "marta", "password": "secreto123"})
	assert.Equal(t, fiber.StatusConflict, res.status)
	assert.Equal(t, "USERNAME_TAKEN", res.json(t)["code"])

	res = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"username": "marta", "password": "incorrecta"})
	assert.Equal(t, fiber.StatusUnauthorized, res.status)

	res = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"username": "marta", "password": "secreto123"})
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	token, _ := res.json(t)["token"].(string)
	require.NotEmpty(t, token)

	// El token emitido da acceso a la filial por defecto.
	res = f.do(t, http.MethodGet, "/api/items/"+f.itemID, "Bearer "+token, nil)
	assert.Equal(t, fiber.StatusOK, res.status)
}

// ─── Movimientos ─────────────────────────────────────────────────────────────

func TestRouter_MovimientoYSaldo(t *testing.T) {
	f := newAPI(t)

	res := f.move(t, "IN", 100)
	require.Equal(t, fiber.StatusCreated, res.status, string(res.raw))
	body := res.json(t)
	assert.Equal(t, float64(100), body["effective_quantity"])
	assert.Equal(t, "IN", body["movement_type"])
	assert.Equal(t, testUserID, body["user_id"])

	res = f.move(t, "OUT", 30)
	require.Equal(t, fiber.StatusCreated, res.status, string(res.raw))
	assert.Equal(t, float64(70), f.balance(t, f.locA))

	res = f.do(t, http.MethodGet, "/api/movements/"+body["id"].(string), f.userAuth, nil)
	assert.Equal(t, fiber.StatusOK, res.status)

	res = f.do(t, http.MethodGet, "/api/movements?item_id="+f.itemID, f.userAuth, nil)
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	items := res.json(t)["items"].([]any)
	assert.Len(t, items, 2)
}

func TestRouter_StockInsuficienteDevuelveCantidades(t *testing.T) {
	f := newAPI(t)
	require.Equal(t, fiber.StatusCreated, f.move(t, "IN", 10).status)

	res := f.move(t, "OUT", 15)
	require.Equal(t, fiber.StatusConflict, res.status)
	body := res.json(t)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, float64(10), body["current"])
	assert.Equal(t, float64(15), body["requested"])
	assert.Equal(t, float64(10), f.balance(t, f.locA))
}

func TestRouter_ValidacionDelCuerpo(t *testing.T) {
	f := newAPI(t)
	res := f.do(t, http.MethodPost, "/api/movements", f.userAuth, map[string]any{
		"location_id": f.locA, "movement_type": "IN", "quantity": 1,
	})
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION", res.json(t)["code"])

	res = f.do(t, http.MethodGet, "/api/movements?from=ayer", f.userAuth, nil)
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = f.move(t, "IN", 1_000_000_001)
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION", res.json(t)["code"])
	assert.Equal(t, float64(0), f.balance(t, f.locA))
}

func TestRouter_MovimientoInexistente(t *testing.T) {
	f := newAPI(t)
	res := f.do(t, http.MethodGet, "/api/movements/"+uuid.NewString(), f.userAuth, nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)
	assert.Equal(t, "NOT_FOUND", res.json(t)["code"])
}

func TestRouter_Traslado(t *testing.T) {
	f := newAPI(t)
	require.Equal(t, fiber.StatusCreated, f.move(t, "IN", 50).status)

	res := f.do(t, http.MethodPost, "/api/movements/transfer", f.userAuth, map[string]any{
		"item_id": f.itemID, "from_location_id": f.locA, "to_location_id": f.locB, "quantity": 20,
	})
	require.Equal(t, fiber.StatusCreated, res.status, string(res.raw))
	body := res.json(t)
	assert.NotEmpty(t, body["transfer_id"])
	assert.Equal(t, float64(30), f.balance(t, f.locA))
	assert.Equal(t, float64(20), f.balance(t, f.locB))

	res = f.do(t, http.MethodGet, "/api/items/"+f.itemID+"/stock", f.userAuth, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, float64(50), res.json(t)["total_quantity"])
}

// ─── Idempotencia ────────────────────────────────────────────────────────────

func TestRouter_IdempotencyKeyRepetida(t *testing.T) {
	f := newAPI(t)
	key := uuid.NewString()

	res := f.move(t, "IN", 5, apphttp.HeaderIdempotencyKey, key)
	require.Equal(t, fiber.StatusCreated, res.status)

	res = f.move(t, "IN", 5, apphttp.HeaderIdempotencyKey, key)
	assert.Equal(t, fiber.StatusConflict, res.status)
	assert.Equal(t, "DUPLICATE_REQUEST", res.json(t)["code"])
	assert.Equal(t, float64(5), f.balance(t, f.locA), "el reenvío no se aplica")
}

func TestRouter_IdempotencyKeyLiberadaTrasError(t *testing.T) {
	f := newAPI(t)
	key := uuid.NewString()

	res := f.move(t, "OUT", 5, apphttp.HeaderIdempotencyKey, key)
	require.Equal(t, fiber.StatusConflict, res.status)
	assert.Equal(t, "INSUFFICIENT_STOCK", res.json(t)["code"])

	require.Equal(t, fiber.StatusCreated, f.move(t, "IN", 5).status)
	res = f.move(t, "OUT", 5, apphttp.HeaderIdempotencyKey, key)
	assert.Equal(t, fiber.StatusCreated, res.status, string(res.raw))
}

// ─── Verificación y permisos ─────────────────────────────────────────────────

func TestRouter_VerificarSaldoSoloAdmin(t *testing.T) {
	f := newAPI(t)
	require.Equal(t, fiber.StatusCreated, f.move(t, "IN", 8).status)
	path := "/api/balances/verify?item_id=" + f.itemID + "&location_id=" + f.locA

	res := f.do(t, http.MethodGet, path, f.userAuth, nil)
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = f.do(t, http.MethodGet, path, f.adminAuth, nil)
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	body := res.json(t)
	assert.Equal(t, true, body["consistent"])
	assert.Equal(t, float64(8), body["stored"])
	assert.Equal(t, float64(8), body["replayed"])
}

func TestRouter_CrearFilialRequiereAdmin(t *testing.T) {
	f := newAPI(t)
	res := f.do(t, http.MethodPost, "/api/branches", f.userAuth, map[string]any{"name": "Norte"})
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = f.do(t, http.MethodPost, "/api/branches", f.adminAuth, map[string]any{"name": "Norte"})
	assert.Equal(t, fiber.StatusCreated, res.status, string(res.raw))
}

func TestRouter_CategoriasProveedoresYOpcionesDeFiltro(t *testing.T) {
	f := newAPI(t)

	res := f.do(t, http.MethodPost, "/api/categories", f.userAuth, map[string]any{"name": "Bebidas"})
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = f.do(t, http.MethodPost, "/api/category-groups", f.adminAuth, map[string]any{"name": "Almacén"})
	require.Equal(t, fiber.StatusCreated, res.status, string(res.raw))
	groupID := res.json(t)["id"].(string)

	res = f.do(t, http.MethodPost, "/api/categories", f.adminAuth, map[string]any{"name": "Bebidas", "group_id": groupID})
	require.Equal(t, fiber.StatusCreated, res.status, string(res.raw))
	categoryID := res.json(t)["id"].(string)

	res = f.do(t, http.MethodPost, "/api/suppliers", f.adminAuth, map[string]any{"name": "Tostadores", "phone_number": "abc"})
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION", res.json(t)["code"])

	res = f.do(t, http.MethodPost, "/api/suppliers", f.adminAuth, map[string]any{
		"name": "Tostadores", "phone_number": "+54 11 4444-5555", "email": "ventas@tostadores.com",
	})
	require.Equal(t, fiber.StatusCreated, res.status, string(res.raw))
	supplierID := res.json(t)["id"].(string)

	res = f.do(t, http.MethodPut, "/api/items/"+f.itemID, f.userAuth, map[string]any{"category_id": categoryID, "supplier_id": supplierID})
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	assert.Equal(t, categoryID, res.json(t)["category_id"])

	res = f.do(t, http.MethodGet, "/api/items?category_id="+categoryID, f.userAuth, nil)
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	assert.Len(t, res.json(t)["items"], 1)

	res = f.do(t, http.MethodGet, "/api/items?supplier_id="+uuid.NewString(), f.userAuth, nil)
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	assert.Empty(t, res.json(t)["items"])

	res = f.do(t, http.MethodGet, "/api/items/filter-options", f.userAuth, nil)
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	opts := res.json(t)
	assert.Equal(t, []any{map[string]any{"id": categoryID, "name": "Bebidas"}}, opts["categories"])
	assert.Equal(t, []any{map[string]any{"id": supplierID, "name": "Tostadores"}}, opts["suppliers"])
	assert.Equal(t, []any{map[string]any{"value": "ACTIVE", "label": "Activo"}}, opts["statuses"])

	res = f.do(t, http.MethodDelete, "/api/categories/"+categoryID, f.adminAuth, nil)
	assert.Equal(t, fiber.StatusNoContent, res.status)
	res = f.do(t, http.MethodGet, "/api/categories/"+categoryID, f.userAuth, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, false, res.json(t)["is_active"])
}

func TestRouter_OpcionesDeTipoSinStock(t *testing.T) {
	f := newAPI(t)
	res := f.do(t, http.MethodGet, "/api/items/"+f.itemID+"/movement-types", f.userAuth, nil)
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	var types []map[string]any
	require.NoError(t, json.Unmarshal(res.raw, &types))
	require.NotEmpty(t, types)
	for _, mt := range types {
		assert.Equal(t, float64(1), mt["factor"], "sin stock solo se ofrecen entradas")
	}
}

func TestRouter_ListaDeReposicion(t *testing.T) {
	f := newAPI(t)
	require.Equal(t, fiber.StatusCreated, f.move(t, "IN", 4).status)

	res := f.do(t, http.MethodGet, "/api/items/replenishment", f.userAuth, nil)
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	body := res.json(t)
	assert.Equal(t, float64(1), body["total"])
	first := body["replenishments"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(11), first["suggested_order_qty"])
}

// ─── Métricas ────────────────────────────────────────────────────────────────

func TestRouter_MetricasDelLibro(t *testing.T) {
	f := newAPI(t)
	require.Equal(t, fiber.StatusCreated, f.move(t, "IN", 3).status)
	require.Equal(t, fiber.StatusConflict, f.move(t, "OUT", 9).status)

	res := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, fiber.StatusOK, res.status)
	text := string(res.raw)
	assert.True(t, strings.Contains(text, `ledger_movements_accepted_total{movement_type="IN"} 1`), text)
	assert.True(t, strings.Contains(text, "ledger_movements_rejected_total"), text)
}
