package inventory_test

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Cantidad efectiva
// ──────────────────────────────────────────────────────────────────────────────

func effective(t *testing.T, mt *entity.MovementType, quantity int64) int64 {
	t.Helper()
	v, err := inventory.EffectiveQuantity(mt, quantity)
	require.NoError(t, err)
	return v
}

func TestEffectiveQuantity_CajaCerradaMultiplica(t *testing.T) {
	mt := &entity.MovementType{Code: "BOX12", Factor: entity.FactorIn, UnitsPerPackage: intPtr(12)}
	assert.Equal(t, int64(36), effective(t, mt, 3))
}

func TestEffectiveQuantity_SinPaqueteEsUno(t *testing.T) {
	in := &entity.MovementType{Code: "IN", Factor: entity.FactorIn}
	out := &entity.MovementType{Code: "OUT", Factor: entity.FactorOut}
	assert.Equal(t, int64(5), effective(t, in, 5))
	assert.Equal(t, int64(-5), effective(t, out, 5))
}

func TestEffectiveQuantity_SalidaConPaquete(t *testing.T) {
	mt := &entity.MovementType{Code: "OUT6", Factor: entity.FactorOut, UnitsPerPackage: intPtr(6)}
	assert.Equal(t, int64(-12), effective(t, mt, 2))
}

func TestEffectiveQuantity_DesbordeRechazado(t *testing.T) {
	box := &entity.MovementType{Code: "BOX12", Factor: entity.FactorIn, UnitsPerPackage: intPtr(12)}
	_, err := inventory.EffectiveQuantity(box, 1537228672809129302)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	out := &entity.MovementType{Code: "OUT12", Factor: entity.FactorOut, UnitsPerPackage: intPtr(12)}
	_, err = inventory.EffectiveQuantity(out, math.MaxInt64/12+1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	v, err := inventory.EffectiveQuantity(out, math.MaxInt64/12)
	require.NoError(t, err)
	assert.Equal(t, int64(-(math.MaxInt64/12)*12), v)

	in := &entity.MovementType{Code: "IN", Factor: entity.FactorIn}
	v, err = inventory.EffectiveQuantity(in, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), v)
}

func TestNextBalance_SalidaYDesborde(t *testing.T) {
	next, err := inventory.NextBalance(70, -30)
	require.NoError(t, err)
	assert.Equal(t, int64(40), next)

	_, err = inventory.NextBalance(70, -71)
	var insufficient *domain.InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)

	_, err = inventory.NextBalance(1, math.MaxInt64)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	next, err = inventory.NextBalance(0, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), next)
}

func TestValidateQuantity_CeroYNegativaRechazadas(t *testing.T) {
	assert.ErrorIs(t, inventory.ValidateQuantity(0), domain.ErrInvalidArgument)
	assert.ErrorIs(t, inventory.ValidateQuantity(-3), domain.ErrInvalidArgument)
	assert.NoError(t, inventory.ValidateQuantity(1))
}

// ──────────────────────────────────────────────────────────────────────────────
// Precio unitario
// ──────────────────────────────────────────────────────────────────────────────

func TestUnitPrice_EntradaUsaCompraSalidaUsaVenta(t *testing.T) {
	item := &entity.Item{SKU: "SKU-1", PurchasePrice: dec(4), SalePrice: dec(9)}

	p, err := inventory.UnitPrice(&entity.MovementType{Factor: entity.FactorIn}, item)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(4)))

	p, err = inventory.UnitPrice(&entity.MovementType{Factor: entity.FactorOut}, item)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(9)))
}

func TestUnitPrice_CompraCeroRechazaEntrada(t *testing.T) {
	item := &entity.Item{SKU: "SKU-1", PurchasePrice: dec(0), SalePrice: dec(9)}
	_, err := inventory.UnitPrice(&entity.MovementType{Factor: entity.FactorIn}, item)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestUnitPrice_VentaAusenteRechazaSalida(t *testing.T) {
	item := &entity.Item{SKU: "SKU-1", PurchasePrice: dec(3)}
	_, err := inventory.UnitPrice(&entity.MovementType{Factor: entity.FactorOut}, item)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de tipos
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateMovementType_PaqueteMenorAUno(t *testing.T) {
	mt := &entity.MovementType{ID: "a", Code: "X", Factor: entity.FactorIn, UnitsPerPackage: intPtr(0)}
	assert.ErrorIs(t, inventory.ValidateMovementType(mt), domain.ErrInvalidArgument)
}

func TestValidateMovementType_FactorInvalido(t *testing.T) {
	mt := &entity.MovementType{ID: "a", Code: "X", Factor: 2}
	assert.ErrorIs(t, inventory.ValidateMovementType(mt), domain.ErrInvalidArgument)
}

func TestValidateMovementType_PadreEsElMismo(t *testing.T) {
	mt := &entity.MovementType{ID: "a", Code: "X", Factor: entity.FactorIn, ParentID: strPtr("a")}
	assert.ErrorIs(t, inventory.ValidateMovementType(mt), domain.ErrCyclicReference)
}

func TestCheckAncestry_DetectaCiclo(t *testing.T) {
	// b -> c -> a ; asignar a.parent = b cierra el ciclo
	parents := map[string]*string{"b": strPtr("c"), "c": strPtr("a"), "a": nil}
	lookup := func(id string) (*string, error) { return parents[id], nil }

	err := inventory.CheckAncestry("a", strPtr("b"), lookup)
	assert.ErrorIs(t, err, domain.ErrCyclicReference)
}

func TestCheckAncestry_CadenaValida(t *testing.T) {
	parents := map[string]*string{"b": strPtr("c"), "c": nil}
	lookup := func(id string) (*string, error) { return parents[id], nil }

	assert.NoError(t, inventory.CheckAncestry("a", strPtr("b"), lookup))
	assert.NoError(t, inventory.CheckAncestry("a", nil, lookup))
}

func TestCheckAncestry_PropagaErrorDeBusqueda(t *testing.T) {
	lookup := func(id string) (*string, error) { return nil, domain.ErrNotFound }
	assert.ErrorIs(t, inventory.CheckAncestry("a", strPtr("zz"), lookup), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock suficiente
// ──────────────────────────────────────────────────────────────────────────────

func TestCanIssue_LlevaActualYSolicitado(t *testing.T) {
	err := inventory.CanIssue(70, 71)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(70), ise.Current)
	assert.Equal(t, int64(71), ise.Requested)

	assert.NoError(t, inventory.CanIssue(70, 70))
}
