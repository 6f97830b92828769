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

	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "inventario-ledger-test"
	testExpMin    = 60
)

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// guardedApp GET /guarded detrás de AuthMiddleware y RequireRole(roles...).
func guardedApp(roles ...string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Get("/guarded",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(roles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
		},
	)
	return app
}

func getGuarded(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware_CargaIdentidad(t *testing.T) {
	status, body := getGuarded(t, guardedApp(pkgjwt.RoleManager), tokenForRole(t, pkgjwt.RoleManager))
	require.Equal(t, http.StatusOK, status, body)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, testUserID, out["user_id"])
	assert.Equal(t, pkgjwt.RoleManager, out["role"])
}

func TestAuthMiddleware_RechazaCredenciales(t *testing.T) {
	noRole, err := pkgjwt.Generate(testJWTSecret, testUserID, "", testIssuer, testExpMin)
	require.NoError(t, err)
	otherSecret, err := pkgjwt.Generate("otro-secreto", testUserID, pkgjwt.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"sin header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"firmado con otro secreto", "Bearer " + otherSecret, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token sin rol", "Bearer " + noRole, http.StatusUnauthorized, "MISSING_ROLE"},
		{"rol desconocido", tokenForRole(t, "bodeguero"), http.StatusForbidden, "FORBIDDEN"},
	}
	app := guardedApp(pkgjwt.RoleAdmin, pkgjwt.RoleManager)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := getGuarded(t, app, tt.header)
			assert.Equal(t, tt.status, status, body)
			assert.Contains(t, body, tt.code)
		})
	}
}

// Matriz de permisos sobre el router real: user solo lee; admin y manager escriben y ven la bitácora.
func TestRouter_PermisosPorRol(t *testing.T) {
	app := buildAPI(t)
	item := createTestItem(t, app, "RBAC-1", 0)

	routes := []struct {
		name   string
		method string
		path   string
		write  bool
	}{
		{"listar artículos", http.MethodGet, "/api/items", false},
		{"ver artículo", http.MethodGet, "/api/items/" + item.ID, false},
		{"historial de movimientos", http.MethodGet, "/api/items/" + item.ID + "/movements", false},
		{"conciliar", http.MethodGet, "/api/items/" + item.ID + "/reconcile", false},
		{"listar alertas", http.MethodGet, "/api/alerts", false},
		{"registrar movimiento", http.MethodPost, "/api/stock/movements", true},
		{"crear artículo", http.MethodPost, "/api/items", true},
		{"actualizar artículo", http.MethodPut, "/api/items/" + item.ID, true},
		{"archivar artículo", http.MethodDelete, "/api/items/nope", true},
		{"resolver alerta", http.MethodPut, "/api/alerts/nope/resolve", true},
		{"bitácora de catálogo", http.MethodGet, "/api/items/" + item.ID + "/history", true},
	}
	for _, r := range routes {
		for _, role := range []string{pkgjwt.RoleAdmin, pkgjwt.RoleManager, pkgjwt.RoleUser} {
			t.Run(r.name+"/"+role, func(t *testing.T) {
				resp, body := call(t, app, r.method, r.path, role, map[string]any{})
				if r.write && role == pkgjwt.RoleUser {
					assert.Equal(t, http.StatusForbidden, resp.StatusCode, string(body))
					assert.Equal(t, "FORBIDDEN", decodeError(t, body).Code)
					return
				}
				assert.NotEqual(t, http.StatusForbidden, resp.StatusCode, string(body))
				assert.NotEqual(t, http.StatusUnauthorized, resp.StatusCode, string(body))
			})
		}
	}

	// Un user rechazado no deja rastro en el libro.
	resp, body := call(t, app, http.MethodGet, "/api/items/"+item.ID+"/movements", pkgjwt.RoleUser, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"movements":[]`)
}
