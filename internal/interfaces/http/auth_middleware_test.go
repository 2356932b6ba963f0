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

	apphttp "github.com/jhoicas/Movimientos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Movimientos-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantID  = int64(10)
	testIssuer    = "movimientos-api-test"
	testExpMin    = 60
)

// buildRoleApp construye una aplicación Fiber mínima con AuthMiddleware + RequireRole
// y un handler que devuelve 200 si pasa los middlewares.
func buildRoleApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "role": apphttp.GetRole(c)})
		},
	)
	return app
}

// bearer genera un JWT del comercio indicado con el rol dado.
func bearer(t *testing.T, tenantID int64, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, tenantID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func getProtected(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_RolPermitido(t *testing.T) {
	app := buildRoleApp(apphttp.RoleAdmin, apphttp.RoleBodeguero)
	resp := getProtected(t, app, bearer(t, testTenantID, apphttp.RoleBodeguero))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, apphttp.RoleBodeguero, body["role"])
}

func TestRequireRole_VendedorNoPuedeCerrar(t *testing.T) {
	app := buildRoleApp(apphttp.RoleAdmin, apphttp.RoleBodeguero)
	resp := getProtected(t, app, bearer(t, testTenantID, apphttp.RoleVendedor))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	app := buildRoleApp(apphttp.RoleAdmin)
	resp := getProtected(t, app, bearer(t, testTenantID, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_HeaderInvalido(t *testing.T) {
	app := buildRoleApp(apphttp.RoleAdmin)
	cases := map[string]string{
		"sin header":       "",
		"sin Bearer":       "Token abc",
		"token malformado": "Bearer token.invalido.aqui",
		"token sin tenant": bearer(t, 0, apphttp.RoleAdmin),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			resp := getProtected(t, app, header)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   apphttp.GetUserID(c),
			"tenant_id": apphttp.GetTenantID(c),
			"role":      apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, testTenantID, apphttp.RoleAdmin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		UserID   string `json:"user_id"`
		TenantID int64  `json:"tenant_id"`
		Role     string `json:"role"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body.UserID)
	assert.Equal(t, testTenantID, body.TenantID)
	assert.Equal(t, apphttp.RoleAdmin, body.Role)
}
