package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jhoicas/Movimientos-api/internal/application/dto"
	"github.com/jhoicas/Movimientos-api/internal/application/inventory"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/domain/ledger"
	"github.com/jhoicas/Movimientos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Movimientos-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Movimientos-api/internal/interfaces/http"
	"github.com/jhoicas/Movimientos-api/pkg/logger"
)

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.New(2 * time.Second)
	movements := inventory.NewMovementUseCase(
		store,
		ledger.NewRandomLinkGenerator(ledger.DefaultLinkLength),
		inventory.DefaultOpenMaxAttempts,
		logger.Nop(),
		tracenoop.NewTracerProvider().Tracer("test"),
		metricnoop.NewMeterProvider().Meter("test"),
	)
	app := fiber.New()
	app.Use(apphttp.RequestLogger(logger.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{
		Movements: movements,
		Receipts:  inventory.NewReceiptUseCase(store, pdf.NewMarotoReceiptGenerator()),
		Sequences: inventory.NewSequenceAllocator(store),
		JWTSecret: testJWTSecret,
	})
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) product(t *testing.T, tenantID int64, price string, stock int64) *entity.Product {
	t.Helper()
	p := &entity.Product{TenantID: tenantID, Name: "Arandela", Price: decimal.RequireFromString(price), StockQuantity: stock}
	require.NoError(t, f.store.PutProduct(context.Background(), p))
	return p
}

func (f *apiFixture) stock(t *testing.T, id int64) int64 {
	t.Helper()
	p, err := f.store.Product(context.Background(), id)
	require.NoError(t, err)
	return p.StockQuantity
}

func (f *apiFixture) do(t *testing.T, method, path, auth string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func (f *apiFixture) open(t *testing.T, auth, movementType string) dto.MovementView {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/movements", auth, dto.OpenMovementRequest{Type: movementType})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.MovementView](t, resp)
}

func path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo
// ──────────────────────────────────────────────────────────────────────────────

func TestMovements_EntradaCompleta(t *testing.T) {
	f := newAPI(t)
	admin := bearer(t, testTenantID, apphttp.RoleAdmin)
	p := f.product(t, testTenantID, "2.00", 10)

	mov := f.open(t, admin, entity.MovementTypeEntrada)
	assert.Equal(t, entity.MovementStateAberta, mov.State)
	assert.Equal(t, int64(1), mov.Code)

	resp := f.do(t, http.MethodPost, path("/api/movements/%d/items", mov.ID), admin,
		dto.AddItemRequest{ProductID: p.ID, Quantity: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw := readBody(t, resp)
	assert.Contains(t, raw, `"total_value":"10.00"`)
	assert.Contains(t, raw, `"unit_price":"2.00"`)
	assert.Contains(t, raw, `"subtotal":"10.00"`)
	assert.Contains(t, raw, `"total_items":5`)

	resp = f.do(t, http.MethodPost, path("/api/movements/%d/finalize", mov.ID), admin,
		dto.FinalizeRequest{Type: entity.MovementTypeEntrada})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw = readBody(t, resp)
	assert.Contains(t, raw, `"total_value":"10.00"`)
	var closed dto.MovementView
	require.NoError(t, json.Unmarshal([]byte(raw), &closed))
	assert.Equal(t, entity.MovementStateFechada, closed.State)
	assert.NotNil(t, closed.ClosedAt)
	assert.Equal(t, int64(15), f.stock(t, p.ID))

	resp = f.do(t, http.MethodGet, path("/api/movements/%d/stock-entries", mov.ID), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[struct {
		Total   int                  `json:"total"`
		Entries []dto.StockEntryView `json:"entries"`
	}](t, resp)
	require.Equal(t, 1, entries.Total)
	assert.Equal(t, int64(15), entries.Entries[0].StockAfter)

	resp = f.do(t, http.MethodGet, path("/api/movements/%d/receipt", mov.ID), admin, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "movimentacao_entrada_1.pdf")

	resp = f.do(t, http.MethodPost, path("/api/movements/%d/finalize", mov.ID), admin,
		dto.FinalizeRequest{Type: entity.MovementTypeEntrada})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, int64(15), f.stock(t, p.ID))
}

func TestMovements_SaidaSinStock(t *testing.T) {
	f := newAPI(t)
	admin := bearer(t, testTenantID, apphttp.RoleAdmin)
	p := f.product(t, testTenantID, "1.00", 3)

	mov := f.open(t, admin, entity.MovementTypeSaida)
	resp := f.do(t, http.MethodPost, path("/api/movements/%d/items", mov.ID), admin,
		dto.AddItemRequest{ProductID: p.ID, Quantity: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, path("/api/movements/%d/finalize", mov.ID), admin,
		dto.FinalizeRequest{Type: entity.MovementTypeSaida})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.InsufficientStockResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, p.ID, body.ProductID)
	assert.Equal(t, int64(2), body.Deficit)

	assert.Equal(t, int64(3), f.stock(t, p.ID))
	resp = f.do(t, http.MethodGet, path("/api/movements/%d", mov.ID), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.MovementStateAberta, decode[dto.MovementView](t, resp).State)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestMovements_MapeoDeErrores(t *testing.T) {
	f := newAPI(t)
	admin := bearer(t, testTenantID, apphttp.RoleAdmin)
	seller := bearer(t, testTenantID, apphttp.RoleVendedor)
	other := bearer(t, testTenantID+1, apphttp.RoleAdmin)
	p := f.product(t, testTenantID, "1.00", 3)
	mov := f.open(t, admin, entity.MovementTypeEntrada)

	cases := []struct {
		name   string
		method string
		path   string
		auth   string
		body   any
		status int
	}{
		{"tipo inválido", http.MethodPost, "/api/movements", admin, dto.OpenMovementRequest{Type: "x"}, http.StatusBadRequest},
		{"cantidad cero", http.MethodPost, path("/api/movements/%d/items", mov.ID), admin, dto.AddItemRequest{ProductID: p.ID}, http.StatusBadRequest},
		{"producto inexistente", http.MethodPost, path("/api/movements/%d/items", mov.ID), admin, dto.AddItemRequest{ProductID: 999, Quantity: 1}, http.StatusNotFound},
		{"movimentação de otro comercio", http.MethodGet, path("/api/movements/%d/cart", mov.ID), other, nil, http.StatusForbidden},
		{"carrito vacío", http.MethodPost, path("/api/movements/%d/finalize", mov.ID), admin, dto.FinalizeRequest{Type: entity.MovementTypeEntrada}, http.StatusUnprocessableEntity},
		{"vendedor no cierra", http.MethodPost, path("/api/movements/%d/finalize", mov.ID), seller, dto.FinalizeRequest{Type: entity.MovementTypeEntrada}, http.StatusForbidden},
		{"comprobante de aberta", http.MethodGet, path("/api/movements/%d/receipt", mov.ID), admin, nil, http.StatusConflict},
		{"id inválido", http.MethodGet, "/api/movements/abc", admin, nil, http.StatusBadRequest},
		{"sin token", http.MethodGet, "/api/movements", "", nil, http.StatusUnauthorized},
		{"link de otro comercio", http.MethodGet, "/api/movements/link/" + mov.Link, other, nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := f.do(t, tc.method, tc.path, tc.auth, tc.body)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestMovements_CancelNoTocaStock(t *testing.T) {
	f := newAPI(t)
	admin := bearer(t, testTenantID, apphttp.RoleAdmin)
	p := f.product(t, testTenantID, "1.00", 8)
	mov := f.open(t, admin, entity.MovementTypeSaida)

	resp := f.do(t, http.MethodPost, path("/api/movements/%d/items", mov.ID), admin,
		dto.AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart := decode[dto.CartView](t, resp)

	resp = f.do(t, http.MethodDelete, path("/api/movements/%d/items/%d", mov.ID, cart.Items[0].ID), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[dto.CartView](t, resp).Items)

	resp = f.do(t, http.MethodPost, path("/api/movements/%d/cancel", mov.ID), admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodPost, path("/api/movements/%d/cancel", mov.ID), admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, int64(8), f.stock(t, p.ID))

	resp = f.do(t, http.MethodGet, "/api/movements?state=cancelada", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[struct {
		Total     int                `json:"total"`
		Movements []dto.MovementView `json:"movements"`
	}](t, resp)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, mov.ID, list.Movements[0].ID)
}

func TestSequences_Next(t *testing.T) {
	f := newAPI(t)
	admin := bearer(t, testTenantID, apphttp.RoleAdmin)

	resp := f.do(t, http.MethodPost, "/api/sequences/produtos/next", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode[map[string]any](t, resp)["value"])

	resp = f.do(t, http.MethodPost, "/api/sequences/produtos/next", admin, map[string]int{"step": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 6, decode[map[string]any](t, resp)["value"])

	resp = f.do(t, http.MethodPost, "/api/sequences/clientes/next", admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/sequences/produtos/next", bearer(t, testTenantID, apphttp.RoleVendedor), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
