package reservation_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/parqueo-api/internal/application/dto"
	"github.com/jhoicas/parqueo-api/internal/application/occupancy"
	"github.com/jhoicas/parqueo-api/internal/application/reservation"
	"github.com/jhoicas/parqueo-api/internal/domain"
	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/parking"
	"github.com/jhoicas/parqueo-api/internal/testutil/memstore"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(store *memstore.Store, strict bool) *reservation.Service {
	prop := occupancy.NewPropagator(occupancy.Config{OccupiedState: "Ocupado", FreeState: "Libre"}, zerolog.Nop())
	return reservation.NewService(
		store.Stores().Reservations, store, prop, parking.TimestampPolicy{Strict: strict}, zerolog.Nop(),
	).WithClock(func() time.Time { return fixedNow })
}

func ptr[T any](v T) *T { return &v }

func createReq(f memstore.Fixture) dto.CreateReservationRequest {
	return dto.CreateReservationRequest{
		UserID:    ptr(f.UserID),
		CompanyID: ptr(f.CompanyID),
		TariffID:  ptr(f.TariffID),
		ClientID:  ptr(f.ClientID),
		SpotID:    ptr(f.SpotID),
	}
}

func TestCreate_NaceConfirmadaYOcupaElLugar(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)

	got, err := svc.Create(context.Background(), createReq(f))
	require.NoError(t, err)

	assert.Equal(t, "confirmed", got.Status)
	assert.Nil(t, got.ExitTime)
	assert.Nil(t, got.TotalAmount)
	require.NotNil(t, got.EntryTime)
	assert.True(t, got.EntryTime.Equal(fixedNow))
	assert.Equal(t, "Parqueo Centro", got.CompanyName)
	assert.Equal(t, "A-01", got.SpotName)

	spot, _ := store.Spot(f.SpotID)
	assert.Equal(t, f.OccupiedState, spot.StateID)
}

func TestCreate_UsaEntryTimeEnviado(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	in := createReq(f)
	in.EntryTime = ptr("2024-03-01T08:30:00Z")

	got, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, got.EntryTime.Equal(time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)))
}

func TestCreate_CamposRequeridos(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	in := createReq(f)
	in.SpotID = nil

	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "spotId es requerido")
}

func TestCreate_ReferenciaInexistente(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	in := createReq(f)
	in.ClientID = ptr(int64(9999))

	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidReference)
	assert.Equal(t, 1, store.Rollbacks)
}

func TestCreate_SinEstadoOcupadoHaceRollback(t *testing.T) {
	store, f := memstore.Seeded()
	store.RemoveSpotState(f.OccupiedState)
	svc := newService(store, false)

	_, err := svc.Create(context.Background(), createReq(f))
	require.ErrorIs(t, err, domain.ErrMissingReferenceData)

	list, err := svc.List(context.Background(), dto.ReservationListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_FechaMalFormada(t *testing.T) {
	t.Run("permisivo usa la hora del servidor", func(t *testing.T) {
		store, f := memstore.Seeded()
		in := createReq(f)
		in.EntryTime = ptr("ayer a las 3")
		got, err := newService(store, false).Create(context.Background(), in)
		require.NoError(t, err)
		assert.True(t, got.EntryTime.Equal(fixedNow))
	})
	t.Run("estricto rechaza", func(t *testing.T) {
		store, f := memstore.Seeded()
		in := createReq(f)
		in.EntryTime = ptr("ayer a las 3")
		_, err := newService(store, true).Create(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func seedReservation(t *testing.T, store *memstore.Store, f memstore.Fixture, status string, exit *time.Time) int64 {
	t.Helper()
	entry := fixedNow.Add(-2 * time.Hour)
	return store.PutReservation(entity.Reservation{
		UserID: f.UserID, CompanyID: f.CompanyID, TariffID: f.TariffID, ClientID: f.ClientID, SpotID: f.SpotID,
		EntryTime: &entry, ExitTime: exit, Status: status,
	})
}

func TestUpdate_SoloStatusNoTocaOtrosCampos(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	id := seedReservation(t, store, f, "confirmed", nil)
	before, _ := store.Reservation(id)

	got, err := svc.Update(context.Background(), id, dto.UpdateReservationRequest{Status: dto.Some("Completado")})
	require.NoError(t, err)

	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, before.UserID, got.UserID)
	assert.Equal(t, before.CompanyID, got.CompanyID)
	assert.Equal(t, before.TariffID, got.TariffID)
	assert.Equal(t, before.ClientID, got.ClientID)
	assert.Equal(t, before.SpotID, got.SpotID)
	assert.True(t, before.EntryTime.Equal(*got.EntryTime))
}

func TestUpdate_SoloEntryTimeNoTocaStatus(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	id := seedReservation(t, store, f, "reserved", nil)

	got, err := svc.Update(context.Background(), id, dto.UpdateReservationRequest{EntryTime: dto.Some("2024-03-01T09:00:00Z")})
	require.NoError(t, err)
	assert.Equal(t, "reserved", got.Status)
	assert.True(t, got.EntryTime.Equal(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
}

func TestUpdate_PendienteFuerzaSalidaNula(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	exit := fixedNow.Add(-time.Hour)
	id := seedReservation(t, store, f, "completed", &exit)

	got, err := svc.Update(context.Background(), id, dto.UpdateReservationRequest{Status: dto.Some("pendiente")})
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Nil(t, got.ExitTime)
}

func TestUpdate_ReservadoConSalidaExplicitaLaRespeta(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	id := seedReservation(t, store, f, "confirmed", nil)

	got, err := svc.Update(context.Background(), id, dto.UpdateReservationRequest{
		Status:   dto.Some("reserved"),
		ExitTime: dto.Some("2024-03-01T11:00:00Z"),
	})
	require.NoError(t, err)
	require.NotNil(t, got.ExitTime)
	require.NotNil(t, got.TotalAmount)
	// 10:00 -> 11:00 a 2.50/h
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("2.5")))
}

func TestUpdate_MontoTotalEsSoloLectura(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	id := seedReservation(t, store, f, "confirmed", nil)
	before, _ := store.Reservation(id)

	var in dto.UpdateReservationRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"cancelled","totalAmount":500}`), &in))

	_, err := svc.Update(context.Background(), id, in)
	require.ErrorIs(t, err, domain.ErrReadOnlyField)
	assert.Contains(t, err.Error(), "monto_total es de solo lectura")

	after, _ := store.Reservation(id)
	assert.Equal(t, before, after)
}

func TestUpdate_MontoTotalNullTambienSeRechaza(t *testing.T) {
	store, f := memstore.Seeded()
	id := seedReservation(t, store, f, "confirmed", nil)

	var in dto.UpdateReservationRequest
	require.NoError(t, json.Unmarshal([]byte(`{"totalAmount":null}`), &in))
	_, err := newService(store, false).Update(context.Background(), id, in)
	assert.ErrorIs(t, err, domain.ErrReadOnlyField)
}

func TestUpdate_Validaciones(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	id := seedReservation(t, store, f, "confirmed", nil)

	tests := []struct {
		name string
		body string
		want error
	}{
		{"status desconocido", `{"status":"volando"}`, domain.ErrInvalidInput},
		{"status null", `{"status":null}`, domain.ErrInvalidInput},
		{"id null", `{"spotId":null}`, domain.ErrInvalidInput},
		{"nada para actualizar", `{}`, domain.ErrInvalidInput},
		{"spot inexistente", `{"spotId":9999}`, domain.ErrInvalidReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in dto.UpdateReservationRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))
			_, err := svc.Update(context.Background(), id, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdate_NoExiste(t *testing.T) {
	store, _ := memstore.Seeded()
	_, err := newService(store, false).Update(context.Background(), 777, dto.UpdateReservationRequest{Status: dto.Some("confirmed")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_PropagaOcupacionAlLugarResultante(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	id := seedReservation(t, store, f, "confirmed", nil)

	_, err := svc.Update(context.Background(), id, dto.UpdateReservationRequest{SpotID: dto.Some(f.OtherSpotID)})
	require.NoError(t, err)

	other, _ := store.Spot(f.OtherSpotID)
	assert.Equal(t, f.OccupiedState, other.StateID)
}

func TestUpdate_CambioDeLugarLiberaElAnterior(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	created, err := svc.Create(context.Background(), createReq(f))
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), created.ID, dto.UpdateReservationRequest{SpotID: dto.Some(f.OtherSpotID)})
	require.NoError(t, err)
	assert.Equal(t, f.OtherSpotID, got.SpotID)

	old, _ := store.Spot(f.SpotID)
	assert.Equal(t, f.FreeStateID, old.StateID)
	other, _ := store.Spot(f.OtherSpotID)
	assert.Equal(t, f.OccupiedState, other.StateID)
}

func TestUpdate_CambioDeLugarSinEstadoLibreHaceRollback(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	created, err := svc.Create(context.Background(), createReq(f))
	require.NoError(t, err)
	store.RemoveSpotState(f.FreeStateID)

	_, err = svc.Update(context.Background(), created.ID, dto.UpdateReservationRequest{SpotID: dto.Some(f.OtherSpotID)})
	require.ErrorIs(t, err, domain.ErrMissingReferenceData)

	res, _ := store.Reservation(created.ID)
	assert.Equal(t, f.SpotID, res.SpotID)
}

func TestUpdate_CanceladaNoOcupa(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	id := seedReservation(t, store, f, "confirmed", nil)

	_, err := svc.Update(context.Background(), id, dto.UpdateReservationRequest{Status: dto.Some("CANCELADO")})
	require.NoError(t, err)

	spot, _ := store.Spot(f.SpotID)
	assert.Equal(t, f.FreeStateID, spot.StateID)
}

func TestClose(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	id := seedReservation(t, store, f, "Confirmed", nil)

	got, err := svc.Close(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	require.NotNil(t, got.ExitTime)
	assert.True(t, got.ExitTime.Equal(fixedNow))
	require.NotNil(t, got.TotalAmount)
	// 10:00 -> 12:00 a 2.50/h
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("5")))
}

func TestClose_PrecondicionNoCumplidaNoModifica(t *testing.T) {
	exit := fixedNow.Add(-time.Hour)
	tests := []struct {
		name   string
		status string
		exit   *time.Time
	}{
		{"cancelada", "cancelled", nil},
		{"pendiente", "pending", nil},
		{"ya cerrada", "completed", &exit},
		{"confirmada con salida", "confirmed", &exit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, f := memstore.Seeded()
			id := seedReservation(t, store, f, tt.status, tt.exit)
			before, _ := store.Reservation(id)

			_, err := newService(store, false).Close(context.Background(), id)
			require.ErrorIs(t, err, domain.ErrConflict)

			after, _ := store.Reservation(id)
			assert.Equal(t, before, after)
		})
	}
}

func TestClose_NoExiste(t *testing.T) {
	store, _ := memstore.Seeded()
	_, err := newService(store, false).Close(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	id := seedReservation(t, store, f, "confirmed", nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	_, ok := store.Reservation(id)
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Delete(context.Background(), id), domain.ErrNotFound)
}

func TestDelete_ReferenciadaPorFactura(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	id := seedReservation(t, store, f, "completed", nil)
	store.PutInvoice(entity.Invoice{UserID: f.UserID, ReservationID: &id, PaymentMethodID: f.CashMethodID, PaymentStateID: f.PaidStateID})

	err := svc.Delete(context.Background(), id)
	require.ErrorIs(t, err, domain.ErrInUse)
	_, ok := store.Reservation(id)
	assert.True(t, ok)
}

func TestList_Filtros(t *testing.T) {
	store, f := memstore.Seeded()
	svc := newService(store, false)
	seedReservation(t, store, f, "confirmed", nil)
	cancelled := seedReservation(t, store, f, "cancelled", nil)

	got, err := svc.List(context.Background(), dto.ReservationListQuery{Status: ptr("Cancelado")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, cancelled, got[0].ID)

	_, err = svc.List(context.Background(), dto.ReservationListQuery{Status: ptr("xx")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	all, err := svc.List(context.Background(), dto.ReservationListQuery{CompanyID: ptr(f.CompanyID)})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGet_NoExiste(t *testing.T) {
	store, _ := memstore.Seeded()
	_, err := newService(store, false).Get(context.Background(), 1234)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
