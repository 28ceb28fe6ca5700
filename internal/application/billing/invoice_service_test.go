package billing_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/parqueo-api/internal/application/billing"
	"github.com/jhoicas/parqueo-api/internal/application/dto"
	"github.com/jhoicas/parqueo-api/internal/application/occupancy"
	"github.com/jhoicas/parqueo-api/internal/domain"
	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/parking"
	"github.com/jhoicas/parqueo-api/internal/testutil/memstore"
)

var autoVAT = dto.VATOptions{Calculate: true, Rate: decimal.RequireFromString("0.12")}

func newInvoiceService(store *memstore.Store) *billing.InvoiceService {
	prop := occupancy.NewPropagator(occupancy.Config{OccupiedState: "Ocupado", FreeState: "Libre"}, zerolog.Nop())
	return billing.NewInvoiceService(store.Stores().Invoices, store, prop, parking.TimestampPolicy{}, zerolog.Nop())
}

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}

// closedReservation reservación cerrada con monto total calculado.
func closedReservation(store *memstore.Store, f memstore.Fixture, total *decimal.Decimal) int64 {
	entry := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	var exit *time.Time
	status := "confirmed"
	if total != nil {
		exit = ptr(entry.Add(4 * time.Hour))
		status = "completed"
	}
	return store.PutReservation(entity.Reservation{
		UserID: f.UserID, CompanyID: f.CompanyID, TariffID: f.TariffID, ClientID: f.ClientID, SpotID: f.SpotID,
		EntryTime: &entry, ExitTime: exit, Status: status, TotalAmount: total,
	})
}

func baseRequest(f memstore.Fixture) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		UserID:          ptr(f.UserID),
		PaymentMethodID: ptr(f.CashMethodID),
		PaymentStateID:  ptr(f.PaidStateID),
	}
}

func TestCreate_SubtotalExplicitoCalculaIVA(t *testing.T) {
	store, f := memstore.Seeded()
	in := baseRequest(f)
	in.Subtotal = ptr(dec("100.00"))

	got, err := newInvoiceService(store).Create(context.Background(), in, autoVAT)
	require.NoError(t, err)
	assertDec(t, "100", got.Subtotal)
	assertDec(t, "12", got.VATAmount)
	assertDec(t, "112", got.TotalAmount)
	assert.Equal(t, "Pagado", got.PaymentState)
	assert.Equal(t, "Efectivo", got.PaymentMethod)
	require.NotNil(t, got.EmissionTime)
}

func TestCreate_SubtotalDesdeReservacionCerrada(t *testing.T) {
	store, f := memstore.Seeded()
	resID := closedReservation(store, f, ptr(dec("250.00")))
	in := baseRequest(f)
	in.ReservationID = &resID

	got, err := newInvoiceService(store).Create(context.Background(), in, autoVAT)
	require.NoError(t, err)
	assertDec(t, "250", got.Subtotal)
	assertDec(t, "30", got.VATAmount)
	assertDec(t, "280", got.TotalAmount)
	require.NotNil(t, got.ReservationID)
	assert.Equal(t, resID, *got.ReservationID)
}

func TestCreate_ReservacionAbiertaSeRechaza(t *testing.T) {
	store, f := memstore.Seeded()
	resID := closedReservation(store, f, nil)
	in := baseRequest(f)
	in.ReservationID = &resID

	_, err := newInvoiceService(store).Create(context.Background(), in, autoVAT)
	require.ErrorIs(t, err, domain.ErrReservationOpen)
	assert.Contains(t, err.Error(), "reservación aún no tiene monto_total calculado")

	list, err := newInvoiceService(store).List(context.Background(), dto.InvoiceListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_SinReservacionNiSubtotal(t *testing.T) {
	store, f := memstore.Seeded()
	_, err := newInvoiceService(store).Create(context.Background(), baseRequest(f), autoVAT)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "reservationId")
}

func TestCreate_ReferenciasInexistentesSon400(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*dto.CreateInvoiceRequest)
		field string
	}{
		{"usuario", func(in *dto.CreateInvoiceRequest) { in.UserID = ptr(int64(9999)) }, "userId"},
		{"forma de pago", func(in *dto.CreateInvoiceRequest) { in.PaymentMethodID = ptr(int64(9999)) }, "paymentMethodId"},
		{"estado de pago", func(in *dto.CreateInvoiceRequest) { in.PaymentStateID = ptr(int64(9999)) }, "paymentStateId"},
		{"cliente", func(in *dto.CreateInvoiceRequest) { in.ClientID = ptr(int64(9999)) }, "clientId"},
		{"reservación", func(in *dto.CreateInvoiceRequest) { in.ReservationID = ptr(int64(9999)) }, "reservationId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, f := memstore.Seeded()
			in := baseRequest(f)
			in.Subtotal = ptr(dec("10"))
			tt.mod(&in)

			_, err := newInvoiceService(store).Create(context.Background(), in, autoVAT)
			require.ErrorIs(t, err, domain.ErrInvalidReference)
			assert.Contains(t, err.Error(), tt.field+" no existe")
		})
	}
}

func TestCreate_SinCalculoAutomatico(t *testing.T) {
	manual := dto.VATOptions{Calculate: false}

	t.Run("exige totalAmount", func(t *testing.T) {
		store, f := memstore.Seeded()
		in := baseRequest(f)
		in.Subtotal = ptr(dec("100"))
		_, err := newInvoiceService(store).Create(context.Background(), in, manual)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
	t.Run("IVA es la diferencia", func(t *testing.T) {
		store, f := memstore.Seeded()
		in := baseRequest(f)
		in.Subtotal = ptr(dec("100"))
		in.TotalAmount = ptr(dec("115"))
		got, err := newInvoiceService(store).Create(context.Background(), in, manual)
		require.NoError(t, err)
		assertDec(t, "15", got.VATAmount)
		assertDec(t, "115", got.TotalAmount)
	})
	t.Run("respeta IVA enviado", func(t *testing.T) {
		store, f := memstore.Seeded()
		in := baseRequest(f)
		in.Subtotal = ptr(dec("100"))
		in.VATAmount = ptr(dec("0"))
		in.TotalAmount = ptr(dec("100"))
		got, err := newInvoiceService(store).Create(context.Background(), in, manual)
		require.NoError(t, err)
		assertDec(t, "0", got.VATAmount)
	})
}

func TestCreate_TasaFueraDeRango(t *testing.T) {
	store, f := memstore.Seeded()
	in := baseRequest(f)
	in.Subtotal = ptr(dec("100"))
	_, err := newInvoiceService(store).Create(context.Background(), in, dto.VATOptions{Calculate: true, Rate: dec("1.5")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_CanceladaDisparaCascada(t *testing.T) {
	store, f := memstore.Seeded()
	resID := closedReservation(store, f, ptr(dec("20")))
	in := baseRequest(f)
	in.ReservationID = &resID
	in.PaymentStateID = ptr(f.CancelStateID)

	got, err := newInvoiceService(store).Create(context.Background(), in, autoVAT)
	require.NoError(t, err)

	res, _ := store.Reservation(resID)
	assert.Equal(t, "cancelled", res.Status)
	spot, _ := store.Spot(f.SpotID)
	assert.Equal(t, f.FreeStateID, spot.StateID)

	txs := store.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, entity.TransactionTypeCancellation, txs[0].Type)
	assert.Equal(t, got.ID, *txs[0].InvoiceID)
	assert.Equal(t, resID, *txs[0].ReservationID)
}

func TestCreate_CascadaSinEstadoLibreHaceRollback(t *testing.T) {
	store, f := memstore.Seeded()
	store.RemoveSpotState(f.FreeStateID)
	resID := closedReservation(store, f, ptr(dec("20")))
	in := baseRequest(f)
	in.ReservationID = &resID
	in.PaymentStateID = ptr(f.CancelStateID)

	_, err := newInvoiceService(store).Create(context.Background(), in, autoVAT)
	require.ErrorIs(t, err, domain.ErrMissingReferenceData)

	res, _ := store.Reservation(resID)
	assert.Equal(t, "completed", res.Status)
	list, _ := newInvoiceService(store).List(context.Background(), dto.InvoiceListQuery{})
	assert.Empty(t, list)
	assert.Empty(t, store.Transactions())
}

func TestCreate_SinReservacionNoHayCascada(t *testing.T) {
	store, f := memstore.Seeded()
	in := baseRequest(f)
	in.Subtotal = ptr(dec("5"))
	in.PaymentStateID = ptr(f.CancelStateID)

	_, err := newInvoiceService(store).Create(context.Background(), in, autoVAT)
	require.NoError(t, err)
	assert.Empty(t, store.Transactions())
}

func seedInvoice(store *memstore.Store, f memstore.Fixture, resID *int64) int64 {
	return store.PutInvoice(entity.Invoice{
		UserID: f.UserID, ReservationID: resID, PaymentMethodID: f.CashMethodID, PaymentStateID: f.PendingStateID,
		Subtotal: dec("100"), VATAmount: dec("12"), TotalAmount: dec("112"),
	})
}

func TestUpdate_NuevoSubtotalRecalculaEIgnoraMontosEnviados(t *testing.T) {
	store, f := memstore.Seeded()
	id := seedInvoice(store, f, nil)

	var in dto.UpdateInvoiceRequest
	require.NoError(t, json.Unmarshal([]byte(`{"subtotal":200,"vatAmount":1,"totalAmount":1}`), &in))

	got, err := newInvoiceService(store).Update(context.Background(), id, in, autoVAT)
	require.NoError(t, err)
	assertDec(t, "200", got.Subtotal)
	assertDec(t, "24", got.VATAmount)
	assertDec(t, "224", got.TotalAmount)
}

func TestUpdate_MontosSinSubtotalSeRecalculanDesdeElGuardado(t *testing.T) {
	store, f := memstore.Seeded()
	id := seedInvoice(store, f, nil)
	svc := newInvoiceService(store)

	var in dto.UpdateInvoiceRequest
	require.NoError(t, json.Unmarshal([]byte(`{"vatAmount":50}`), &in))
	got, err := svc.Update(context.Background(), id, in, autoVAT)
	require.NoError(t, err)
	assertDec(t, "100", got.Subtotal)
	assertDec(t, "12", got.VATAmount)
	assertDec(t, "112", got.TotalAmount)

	in = dto.UpdateInvoiceRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"totalAmount":1}`), &in))
	got, err = svc.Update(context.Background(), id, in, dto.VATOptions{Calculate: true, Rate: dec("0.15")})
	require.NoError(t, err)
	assertDec(t, "15", got.VATAmount)
	assertDec(t, "115", got.TotalAmount)

	stored, ok := store.Invoice(id)
	require.True(t, ok)
	assert.True(t, stored.TotalAmount.Equal(stored.Subtotal.Add(stored.VATAmount)))

	in = dto.UpdateInvoiceRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"vatAmount":1}`), &in))
	_, err = svc.Update(context.Background(), id, in, dto.VATOptions{Calculate: true, Rate: dec("1.5")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_SinCalculoRespetaMontos(t *testing.T) {
	store, f := memstore.Seeded()
	id := seedInvoice(store, f, nil)

	var in dto.UpdateInvoiceRequest
	require.NoError(t, json.Unmarshal([]byte(`{"subtotal":200,"vatAmount":0,"totalAmount":200}`), &in))

	got, err := newInvoiceService(store).Update(context.Background(), id, in, dto.VATOptions{})
	require.NoError(t, err)
	assertDec(t, "0", got.VATAmount)
	assertDec(t, "200", got.TotalAmount)
}

func TestUpdate_SoloNotasNoTocaMontos(t *testing.T) {
	store, f := memstore.Seeded()
	id := seedInvoice(store, f, nil)

	got, err := newInvoiceService(store).Update(context.Background(), id, dto.UpdateInvoiceRequest{Notes: dto.Some("placa ABC123")}, autoVAT)
	require.NoError(t, err)
	assertDec(t, "100", got.Subtotal)
	assertDec(t, "112", got.TotalAmount)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "placa ABC123", *got.Notes)
}

func TestUpdate_CancelarDisparaCascada(t *testing.T) {
	store, f := memstore.Seeded()
	resID := closedReservation(store, f, ptr(dec("20")))
	id := seedInvoice(store, f, &resID)

	_, err := newInvoiceService(store).Update(context.Background(), id,
		dto.UpdateInvoiceRequest{PaymentStateID: dto.Some(f.CancelStateID)}, autoVAT)
	require.NoError(t, err)

	res, _ := store.Reservation(resID)
	assert.Equal(t, "cancelled", res.Status)
	spot, _ := store.Spot(f.SpotID)
	assert.Equal(t, f.FreeStateID, spot.StateID)
}

func TestUpdate_FacturaYaCanceladaNoDuplicaAuditoria(t *testing.T) {
	store, f := memstore.Seeded()
	resID := closedReservation(store, f, ptr(dec("20")))
	id := seedInvoice(store, f, &resID)
	svc := newInvoiceService(store)

	_, err := svc.Update(context.Background(), id, dto.UpdateInvoiceRequest{PaymentStateID: dto.Some(f.CancelStateID)}, autoVAT)
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), id, dto.UpdateInvoiceRequest{Notes: dto.Some("anulada en caja")}, autoVAT)
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), id, dto.UpdateInvoiceRequest{PaymentStateID: dto.Some(f.CancelStateID)}, autoVAT)
	require.NoError(t, err)

	txs := store.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, entity.TransactionTypeCancellation, txs[0].Type)
	res, _ := store.Reservation(resID)
	assert.Equal(t, "cancelled", res.Status)
}

func TestUpdate_Errores(t *testing.T) {
	store, f := memstore.Seeded()
	id := seedInvoice(store, f, nil)
	svc := newInvoiceService(store)

	_, err := svc.Update(context.Background(), 9999, dto.UpdateInvoiceRequest{Notes: dto.Some("x")}, autoVAT)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(context.Background(), id, dto.UpdateInvoiceRequest{}, autoVAT)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Update(context.Background(), id, dto.UpdateInvoiceRequest{PaymentStateID: dto.Null[int64]()}, autoVAT)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Update(context.Background(), id, dto.UpdateInvoiceRequest{UserID: dto.Some(int64(9999))}, autoVAT)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = svc.Update(context.Background(), id, dto.UpdateInvoiceRequest{Subtotal: dto.Some(dec("-1"))}, autoVAT)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_QuitarReservacion(t *testing.T) {
	store, f := memstore.Seeded()
	resID := closedReservation(store, f, ptr(dec("20")))
	id := seedInvoice(store, f, &resID)

	got, err := newInvoiceService(store).Update(context.Background(), id,
		dto.UpdateInvoiceRequest{ReservationID: dto.Null[int64]()}, autoVAT)
	require.NoError(t, err)
	assert.Nil(t, got.ReservationID)
}

func TestDelete(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newInvoiceService(store)
	id := seedInvoice(store, f, nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.ErrorIs(t, svc.Delete(context.Background(), id), domain.ErrNotFound)
}

func TestDelete_ReferenciadaPorTransaccion(t *testing.T) {
	store, f := memstore.Seeded()
	resID := closedReservation(store, f, ptr(dec("20")))
	in := baseRequest(f)
	in.ReservationID = &resID
	in.PaymentStateID = ptr(f.CancelStateID)
	svc := newInvoiceService(store)

	created, err := svc.Create(context.Background(), in, autoVAT)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), created.ID)
	require.ErrorIs(t, err, domain.ErrInUse)
	_, ok := store.Invoice(created.ID)
	assert.True(t, ok)
}

func TestList_FiltraPorReservacion(t *testing.T) {
	store, f := memstore.Seeded()
	resID := closedReservation(store, f, ptr(dec("20")))
	seedInvoice(store, f, &resID)
	seedInvoice(store, f, nil)

	got, err := newInvoiceService(store).List(context.Background(), dto.InvoiceListQuery{ReservationID: &resID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, resID, *got[0].ReservationID)
}

func TestList_FiltraPorEmpresaDeLaReservacion(t *testing.T) {
	store, f := memstore.Seeded()
	resID := closedReservation(store, f, ptr(dec("20")))
	withRes := seedInvoice(store, f, &resID)
	seedInvoice(store, f, nil)
	otherCompany := store.AddCompany("Parqueo Norte", "PN01")
	svc := newInvoiceService(store)

	got, err := svc.List(context.Background(), dto.InvoiceListQuery{CompanyID: &f.CompanyID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, withRes, got[0].ID)

	got, err = svc.List(context.Background(), dto.InvoiceListQuery{CompanyID: &otherCompany})
	require.NoError(t, err)
	assert.Empty(t, got)
}
