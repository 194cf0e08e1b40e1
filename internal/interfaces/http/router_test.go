package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/panaderia-pos/internal/application/analytics"
	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/inventory"
	"github.com/jhoicas/panaderia-pos/internal/application/production"
	"github.com/jhoicas/panaderia-pos/internal/application/sales"
	"github.com/jhoicas/panaderia-pos/internal/application/usecase"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/excel"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/memory"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/panaderia-pos/internal/interfaces/http"
	"github.com/jhoicas/panaderia-pos/pkg/jwt"
	"github.com/jhoicas/panaderia-pos/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testPassword  = "panaderia123"
	testCookie    = "session"
)

// buildTestApp arma la API completa sobre la base en memoria con los datos de demostración.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	db := memory.NewDB()
	memory.SeedDemo(db, string(hash))

	validate := validation.New()
	gate := auth.NewGate(jwt.NewVerifier(testJWTSecret), db, db)
	loc := time.UTC

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:       auth.NewAuthUseCase(db, gate, validate, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: "test"}),
		UserUC:       usecase.NewUserUseCase(gate, validate),
		SettingsUC:   usecase.NewSettingsUseCase(gate, validate),
		ProductUC:    inventory.NewProductUseCase(gate, validate),
		SubmitUC:     sales.NewSubmitUseCase(gate, validate),
		SalesUC:      sales.NewSalesUseCase(gate, pdf.NewReceiptGenerator()),
		ProductionUC: production.NewUseCase(gate, validate),
		DashboardUC:  analytics.NewDashboardUseCase(gate),
		ExportUC:     analytics.NewExportUseCase(gate, excel.NewSalesExporter(loc)),
		Session:      apphttp.SessionCookie{Name: testCookie},
		Location:     loc,
		Logger:       logger.Nop(),
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// login devuelve el token de sesión del usuario de demostración.
func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp := do(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func marraquetas(qty int64, clientRef string) dto.SubmitSaleRequest {
	q := decimal.NewFromInt(qty)
	price := decimal.NewFromInt(250)
	return dto.SubmitSaleRequest{
		ClientRef:     clientRef,
		Items:         []dto.SaleItemRequest{{ProductID: memory.DemoMarraquetaID, Quantity: q, UnitPrice: price}},
		Total:         q.Mul(price),
		PaymentMethod: "efectivo",
		DocumentType:  "boleta",
	}
}

func productStock(t *testing.T, app *fiber.App, token, id string) decimal.Decimal {
	t.Helper()
	resp := do(t, app, http.MethodGet, "/api/products/"+id, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	return p.Stock
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth y sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_DejaCookieDeSesion(t *testing.T) {
	app := buildTestApp(t)
	resp := do(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "caja@laespiga.cl", Password: testPassword})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := resp.Header.Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, testCookie+"="), "debe setear la cookie de sesión")
	assert.Contains(t, strings.ToLower(cookie), "httponly")
}

func TestLogin_PasswordIncorrecta_Retorna401(t *testing.T) {
	app := buildTestApp(t)
	resp := do(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "caja@laespiga.cl", Password: "otra-clave"})

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
}

func TestSession_ConCookie_DevuelvePermisosDelRol(t *testing.T) {
	app := buildTestApp(t)
	token := login(t, app, "caja@laespiga.cl")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.SessionResponse
	decode(t, resp, &out)
	assert.Equal(t, "cajero", out.User.Role)
	assert.Contains(t, out.Permissions, "sales.create")
	assert.NotContains(t, out.Permissions, "sales.annul")
}

func TestSinToken_Retorna401(t *testing.T) {
	app := buildTestApp(t)
	resp := do(t, app, http.MethodGet, "/api/products", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(t)
	resp := do(t, app, http.MethodGet, "/api/products", "token.invalido.aqui", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTokenSinPerfil_Retorna403ProfileNotFound(t *testing.T) {
	app := buildTestApp(t)
	tok, err := jwt.Generate(testJWTSecret, "usuario-sin-perfil", "x@y.cl", "test", 60)
	require.NoError(t, err)

	resp := do(t, app, http.MethodGet, "/api/products", tok, nil)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "PROFILE_NOT_FOUND", body.Code)
}

func TestCajeroSinPermiso_Retorna403ConPermiso(t *testing.T) {
	app := buildTestApp(t)
	token := login(t, app, "caja@laespiga.cl")

	resp := do(t, app, http.MethodGet, "/api/users", token, nil)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body.Code)
	assert.Contains(t, body.Message, "users.view")
}

func TestLogout_BorraCookie(t *testing.T) {
	app := buildTestApp(t)
	resp := do(t, app, http.MethodPost, "/api/auth/logout", "", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), testCookie+"=;")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmitVenta_DescuentaStock(t *testing.T) {
	app := buildTestApp(t)
	cajero := login(t, app, "caja@laespiga.cl")
	admin := login(t, app, "admin@laespiga.cl")

	resp := do(t, app, http.MethodPost, "/api/sales", cajero, marraquetas(4, ""))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.SaleCreatedResponse
	decode(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Total.Equal(decimal.NewFromInt(1000)))

	assert.True(t, productStock(t, app, admin, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(116)))
}

func TestSubmitVenta_ClientRefRepetido_NoDescuentaDosVeces(t *testing.T) {
	app := buildTestApp(t)
	cajero := login(t, app, "caja@laespiga.cl")

	var first, second dto.SaleCreatedResponse
	resp := do(t, app, http.MethodPost, "/api/sales", cajero, marraquetas(2, "ref-001"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &first)
	resp = do(t, app, http.MethodPost, "/api/sales", cajero, marraquetas(2, "ref-001"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &second)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, productStock(t, app, cajero, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(118)))
}

func TestSubmitVenta_FacturaSinCliente_Retorna400ConCampos(t *testing.T) {
	app := buildTestApp(t)
	cajero := login(t, app, "caja@laespiga.cl")

	in := marraquetas(1, "")
	in.DocumentType = "factura"
	resp := do(t, app, http.MethodPost, "/api/sales", cajero, in)

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Fields, "customer")
}

func TestSubmitVenta_StockInsuficiente_Retorna409(t *testing.T) {
	app := buildTestApp(t)
	cajero := login(t, app, "caja@laespiga.cl")

	in := dto.SubmitSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: memory.DemoQuequeID, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(5990)}},
		Total:         decimal.NewFromInt(59900),
		PaymentMethod: "debito",
		DocumentType:  "boleta",
	}
	resp := do(t, app, http.MethodPost, "/api/sales", cajero, in)

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.True(t, productStock(t, app, cajero, memory.DemoQuequeID).Equal(decimal.NewFromInt(6)))
}

func TestPanaderoNoPuedeVender(t *testing.T) {
	app := buildTestApp(t)
	panadero := login(t, app, "horno@laespiga.cl")

	resp := do(t, app, http.MethodPost, "/api/sales", panadero, marraquetas(1, ""))
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body.Message, "sales.create")
}

func TestAnularVenta_SoloAdmin_YUnaVez(t *testing.T) {
	app := buildTestApp(t)
	cajero := login(t, app, "caja@laespiga.cl")
	admin := login(t, app, "admin@laespiga.cl")

	resp := do(t, app, http.MethodPost, "/api/sales", cajero, marraquetas(3, ""))
	var created dto.SaleCreatedResponse
	decode(t, resp, &created)

	resp = do(t, app, http.MethodPost, "/api/sales/"+created.ID+"/annul", cajero, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/api/sales/"+created.ID+"/annul", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var annulled dto.SaleResponse
	decode(t, resp, &annulled)
	assert.True(t, annulled.Annulled)
	assert.True(t, productStock(t, app, admin, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(120)))

	resp = do(t, app, http.MethodPost, "/api/sales/"+created.ID+"/annul", admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestComprobantePDF(t *testing.T) {
	app := buildTestApp(t)
	cajero := login(t, app, "caja@laespiga.cl")

	resp := do(t, app, http.MethodPost, "/api/sales", cajero, marraquetas(1, ""))
	var created dto.SaleCreatedResponse
	decode(t, resp, &created)

	resp = do(t, app, http.MethodGet, "/api/sales/"+created.ID+"/receipt", cajero, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestVentaInexistente_Retorna404(t *testing.T) {
	app := buildTestApp(t)
	admin := login(t, app, "admin@laespiga.cl")

	resp := do(t, app, http.MethodGet, "/api/sales/no-existe", admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListarVentas_FechaMalFormada_Retorna400(t *testing.T) {
	app := buildTestApp(t)
	admin := login(t, app, "admin@laespiga.cl")

	resp := do(t, app, http.MethodGet, "/api/sales?from=19-10-2026", admin, nil)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_PARAMS", body.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Analítica
// ──────────────────────────────────────────────────────────────────────────────

func TestExportarVentas_DevuelveXlsx(t *testing.T) {
	app := buildTestApp(t)
	admin := login(t, app, "admin@laespiga.cl")
	resp := do(t, app, http.MethodPost, "/api/sales", admin, marraquetas(2, ""))
	resp.Body.Close()

	resp = do(t, app, http.MethodGet, "/api/analytics/sales/export", admin, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("PK")), "un xlsx es un zip")
}

func TestDashboard_PanaderoSinAcceso(t *testing.T) {
	app := buildTestApp(t)
	panadero := login(t, app, "horno@laespiga.cl")

	resp := do(t, app, http.MethodGet, "/api/analytics/dashboard", panadero, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
