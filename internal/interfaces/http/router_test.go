package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/parqueo-api/internal/application/billing"
	"github.com/jhoicas/parqueo-api/internal/application/catalog"
	"github.com/jhoicas/parqueo-api/internal/application/dto"
	"github.com/jhoicas/parqueo-api/internal/application/occupancy"
	"github.com/jhoicas/parqueo-api/internal/application/reservation"
	"github.com/jhoicas/parqueo-api/internal/domain/parking"
	infrapdf "github.com/jhoicas/parqueo-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/parqueo-api/internal/interfaces/http"
	"github.com/jhoicas/parqueo-api/internal/testutil/memstore"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

// buildTestApp arma la API completa sobre el store en memoria.
func buildTestApp(t *testing.T, db apphttp.Pinger) (*fiber.App, *memstore.Store, memstore.Fixture) {
	t.Helper()
	store, f := memstore.Seeded()
	store.WithClock(func() time.Time { return fixedNow })
	st := store.Stores()
	log := zerolog.Nop()
	prop := occupancy.NewPropagator(occupancy.Config{OccupiedState: "Ocupado", FreeState: "Libre"}, log)
	dates := parking.TimestampPolicy{}

	app := apphttp.NewApp(apphttp.AppConfig{Name: "parqueo-test"}, log)
	apphttp.Router(app, apphttp.RouterDeps{
		Reservations: reservation.NewService(st.Reservations, store, prop, dates, log).
			WithClock(func() time.Time { return fixedNow }),
		Invoices:     billing.NewInvoiceService(st.Invoices, store, prop, dates, log),
		InvoicePDF:   billing.NewPDFUseCase(st.Invoices, st.Reservations, infrapdf.NewMarotoPDFGenerator(time.UTC), "Parqueo Centro"),
		Spots:        catalog.NewSpotService(st.Spots),
		Transactions: catalog.NewTransactionService(st.Transactions, dates, log),
		References:   catalog.NewReferenceService(st.References),
		VAT:          apphttp.VATDefaults{Calculate: true, Rate: decimal.RequireFromString("0.12")},
		DB:           db,
		ServiceName:  "parqueo-test",
	})
	return app, store, f
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func pathf(format string, args ...any) string { return fmt.Sprintf(format, args...) }

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func reservationBody(f memstore.Fixture) map[string]any {
	return map[string]any{
		"userId": f.UserID, "companyId": f.CompanyID, "tariffId": f.TariffID,
		"clientId": f.ClientID, "spotId": f.SpotID, "entryTime": "2024-03-01T08:00:00Z",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo
// ──────────────────────────────────────────────────────────────────────────────

func TestFlujo_EntradaCierreFacturaPDF(t *testing.T) {
	app, store, f := buildTestApp(t, fakePinger{})

	resp, body := do(t, app, http.MethodPost, "/api/reservations", reservationBody(f))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	res := decode[dto.ReservationResponse](t, body)
	assert.Equal(t, "confirmed", res.Status)
	assert.Nil(t, res.TotalAmount)

	spot, _ := store.Spot(f.SpotID)
	assert.Equal(t, f.OccupiedState, spot.StateID)

	resp, body = do(t, app, http.MethodPatch, pathf("/api/reservations/%d/close", res.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	closed := decode[dto.ReservationResponse](t, body)
	assert.Equal(t, "completed", closed.Status)
	require.NotNil(t, closed.TotalAmount)
	assert.True(t, closed.TotalAmount.Equal(decimal.RequireFromString("10")), closed.TotalAmount.String())

	resp, body = do(t, app, http.MethodPatch, pathf("/api/reservations/%d/cerrar", res.ID), nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, string(body))

	resp, body = do(t, app, http.MethodPost, "/api/invoices", map[string]any{
		"userId": f.UserID, "paymentMethodId": f.CashMethodID, "paymentStateId": f.PaidStateID, "reservationId": res.ID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	inv := decode[dto.InvoiceResponse](t, body)
	assert.True(t, inv.Subtotal.Equal(decimal.RequireFromString("10")))
	assert.True(t, inv.VATAmount.Equal(decimal.RequireFromString("1.2")))
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("11.2")))

	resp, body = do(t, app, http.MethodGet, pathf("/api/invoices/%d/pdf", inv.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "factura_")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestInvoices_TasaYCalculoPorQuery(t *testing.T) {
	app, _, f := buildTestApp(t, nil)
	base := map[string]any{
		"userId": f.UserID, "paymentMethodId": f.CashMethodID, "paymentStateId": f.PaidStateID, "subtotal": "100",
	}

	resp, body := do(t, app, http.MethodPost, "/api/invoices?vatRate=0.15", base)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	inv := decode[dto.InvoiceResponse](t, body)
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("115")))

	resp, _ = do(t, app, http.MethodPost, "/api/invoices?calculateVat=false", base)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/api/invoices?calculateVat=quizas", base)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/api/invoices?vatRate=abc", base)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestInvoices_ReservacionAbiertaEs400(t *testing.T) {
	app, _, f := buildTestApp(t, nil)
	_, body := do(t, app, http.MethodPost, "/api/reservations", reservationBody(f))
	res := decode[dto.ReservationResponse](t, body)

	resp, body := do(t, app, http.MethodPost, "/api/invoices", map[string]any{
		"userId": f.UserID, "paymentMethodId": f.CashMethodID, "paymentStateId": f.PaidStateID, "reservationId": res.ID,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	errResp := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "RESERVATION_OPEN", errResp.Code)
	assert.Contains(t, errResp.Message, "monto_total")
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestErrores_Status(t *testing.T) {
	app, _, f := buildTestApp(t, nil)
	_, body := do(t, app, http.MethodPost, "/api/reservations", reservationBody(f))
	res := decode[dto.ReservationResponse](t, body)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"id no entero", http.MethodGet, "/api/reservations/abc", nil, 400, "VALIDATION"},
		{"query no entera", http.MethodGet, "/api/invoices?clientId=x", nil, 400, "VALIDATION"},
		{"companyId no entero", http.MethodGet, "/api/invoices?companyId=1.5", nil, 400, "VALIDATION"},
		{"no existe", http.MethodGet, "/api/reservations/9999", nil, 404, "NOT_FOUND"},
		{"totalAmount de solo lectura", http.MethodPut, pathf("/api/reservations/%d", res.ID), map[string]any{"totalAmount": 5}, 400, "READONLY_FIELD"},
		{"estado inválido", http.MethodPut, pathf("/api/reservations/%d", res.ID), map[string]any{"status": "volando"}, 400, "VALIDATION"},
		{"cuerpo inválido", http.MethodPost, "/api/reservations", "{no es json", 400, "INVALID_BODY"},
		{"faltan campos", http.MethodPost, "/api/reservations", map[string]any{"userId": f.UserID}, 400, "VALIDATION"},
		{"referencia inexistente", http.MethodPost, "/api/invoices", map[string]any{
			"userId": 9999, "paymentMethodId": f.CashMethodID, "paymentStateId": f.PaidStateID, "subtotal": 1,
		}, 400, "INVALID_REFERENCE"},
		{"lugar en uso", http.MethodDelete, pathf("/api/spots/%d", f.SpotID), nil, 409, "IN_USE"},
		{"lugar duplicado", http.MethodPost, "/api/spots", map[string]any{"companyId": f.CompanyID, "stateId": f.FreeStateID, "name": "A-02"}, 409, "DUPLICATE"},
		{"ruta inexistente", http.MethodGet, "/api/nada", nil, 404, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
			assert.Equal(t, tt.code, decode[dto.ErrorResponse](t, body).Code)
		})
	}
}

func TestDelete_Reservacion(t *testing.T) {
	app, _, f := buildTestApp(t, nil)
	_, body := do(t, app, http.MethodPost, "/api/reservations", reservationBody(f))
	res := decode[dto.ReservationResponse](t, body)

	resp, _ := do(t, app, http.MethodDelete, pathf("/api/reservations/%d", res.ID), nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, app, http.MethodDelete, pathf("/api/reservations/%d", res.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogos, health y request id
// ──────────────────────────────────────────────────────────────────────────────

func TestCatalogos(t *testing.T) {
	app, _, _ := buildTestApp(t, nil)

	resp, body := do(t, app, http.MethodGet, "/api/spot-states", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.SpotStateResponse](t, body), 2)

	resp, body = do(t, app, http.MethodGet, "/api/payment-states", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.PaymentStateResponse](t, body), 3)

	resp, body = do(t, app, http.MethodGet, "/api/payment-methods", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.PaymentMethodResponse](t, body), 2)

	resp, body = do(t, app, http.MethodGet, "/api/spots", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.SpotResponse](t, body), 2)
}

func TestHealth(t *testing.T) {
	app, _, _ := buildTestApp(t, fakePinger{})
	resp, body := do(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[dto.HealthResponse](t, body).Database)

	app, _, _ = buildTestApp(t, fakePinger{err: errors.New("conexión rechazada")})
	resp, body = do(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", decode[dto.HealthResponse](t, body).Status)
}

func TestRequestID(t *testing.T) {
	app, _, _ := buildTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(apphttp.HeaderRequestID, "abc-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(apphttp.HeaderRequestID))

	resp, _ = do(t, app, http.MethodGet, "/health", nil)
	assert.Len(t, resp.Header.Get(apphttp.HeaderRequestID), 36)
}
