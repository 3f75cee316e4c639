package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testBranchID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "stock-ledger-test"
	testExpMin    = 60
)

// buildAuthApp aplicación mínima: AuthMiddleware, opcionalmente RequireAdmin,
// y un handler que devuelve el principal cargado.
func buildAuthApp(adminOnly bool) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{apphttp.AuthMiddleware(testJWTSecret)}
	if adminOnly {
		handlers = append(handlers, apphttp.RequireAdmin())
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		p := apphttp.GetPrincipal(c)
		return c.JSON(fiber.Map{"user_id": p.UserID, "is_admin": p.IsAdmin, "branch_ids": p.BranchIDs})
	})
	app.Get("/protected", handlers...)
	return app
}

func bearer(t *testing.T, secret string, id pkgjwt.Identity) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, id, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doGet(t *testing.T, app *fiber.App, authHeader string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "cuerpo: %s", raw)
	return resp.StatusCode, body
}

// ─── AuthMiddleware ──────────────────────────────────────────────────────────

func TestAuthMiddleware_SinCabecera(t *testing.T) {
	status, body := doGet(t, buildAuthApp(false), "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	status, body := doGet(t, buildAuthApp(false), "Token abc")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestAuthMiddleware_FirmaDeOtroSecreto(t *testing.T) {
	h := bearer(t, "otro-secreto", pkgjwt.Identity{UserID: testUserID})
	status, body := doGet(t, buildAuthApp(false), h)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestAuthMiddleware_CargaElPrincipal(t *testing.T) {
	h := bearer(t, testJWTSecret, pkgjwt.Identity{UserID: testUserID, BranchIDs: []string{testBranchID}})
	status, body := doGet(t, buildAuthApp(false), h)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, false, body["is_admin"])
	assert.Equal(t, []any{testBranchID}, body["branch_ids"])
}

func TestAuthMiddleware_BearerSinDistinguirMayusculas(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: testUserID}, testIssuer, testExpMin)
	require.NoError(t, err)
	status, _ := doGet(t, buildAuthApp(false), "bearer "+tok)
	assert.Equal(t, fiber.StatusOK, status)
}

// ─── RequireAdmin ────────────────────────────────────────────────────────────

func TestRequireAdmin_UsuarioComun(t *testing.T) {
	h := bearer(t, testJWTSecret, pkgjwt.Identity{UserID: testUserID, BranchIDs: []string{testBranchID}})
	status, body := doGet(t, buildAuthApp(true), h)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestRequireAdmin_Administrador(t *testing.T) {
	h := bearer(t, testJWTSecret, pkgjwt.Identity{UserID: testUserID, IsAdmin: true})
	status, body := doGet(t, buildAuthApp(true), h)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["is_admin"])
}
