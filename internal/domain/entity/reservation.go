package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation vincula a un cliente con un lugar bajo una tarifa, emitida por un usuario de una empresa.
type Reservation struct {
	ID          int64
	UserID      int64
	CompanyID   int64
	TariffID    int64
	ClientID    int64
	SpotID      int64
	CreatedAt   time.Time
	EntryTime   *time.Time
	ExitTime    *time.Time
	Status      string
	TotalAmount *decimal.Decimal // lo calcula la BD al fijar exit_time

	// Campos de presentación (JOIN con empresas, clientes, lugares y tarifas)
	CompanyName    string
	ClientName     string
	ClientLastName string
	SpotName       string
	VehicleType    string
}

// ReservationPatch campos actualizables de una reservación (semántica bandera + valor).
type ReservationPatch struct {
	UserID    Patch[int64]
	CompanyID Patch[int64]
	TariffID  Patch[int64]
	ClientID  Patch[int64]
	SpotID    Patch[int64]
	Status    Patch[string]
	EntryTime Patch[*time.Time]
	ExitTime  Patch[*time.Time]
}

// Empty indica que el patch no modifica ninguna columna.
func (p ReservationPatch) Empty() bool {
	return !p.UserID.Set && !p.CompanyID.Set && !p.TariffID.Set && !p.ClientID.Set &&
		!p.SpotID.Set && !p.Status.Set && !p.EntryTime.Set && !p.ExitTime.Set
}

// ReservationFilter filtros de GET /api/reservations.
type ReservationFilter struct {
	CompanyID *int64
	ClientID  *int64
	Status    *string
	From      *time.Time
	To        *time.Time
}
