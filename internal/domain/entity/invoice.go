package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice factura ligada a una reservación (opcional) o a un cobro independiente.
type Invoice struct {
	ID              int64
	UserID          int64
	ReservationID   *int64
	ClientID        *int64
	PaymentMethodID int64
	PaymentStateID  int64
	Subtotal        decimal.Decimal
	VATAmount       decimal.Decimal
	TotalAmount     decimal.Decimal
	Notes           *string
	EmittedAt       *time.Time

	// Campos de presentación
	PaymentState   string
	PaymentMethod  string
	UserEmail      string
	ClientName     string
	ClientLastName string
	CompanyName    string
	SpotName       string
}

// InvoicePatch campos actualizables de una factura.
type InvoicePatch struct {
	UserID          Patch[int64]
	ReservationID   Patch[*int64]
	ClientID        Patch[*int64]
	PaymentMethodID Patch[int64]
	PaymentStateID  Patch[int64]
	Subtotal        Patch[decimal.Decimal]
	VATAmount       Patch[decimal.Decimal]
	TotalAmount     Patch[decimal.Decimal]
	Notes           Patch[*string]
	EmittedAt       Patch[*time.Time]
}

// Empty indica que el patch no modifica ninguna columna.
func (p InvoicePatch) Empty() bool {
	return !p.UserID.Set && !p.ReservationID.Set && !p.ClientID.Set && !p.PaymentMethodID.Set &&
		!p.PaymentStateID.Set && !p.Subtotal.Set && !p.VATAmount.Set && !p.TotalAmount.Set &&
		!p.Notes.Set && !p.EmittedAt.Set
}

// InvoiceFilter filtros de GET /api/invoices.
type InvoiceFilter struct {
	ClientID       *int64
	CompanyID      *int64 // empresa de la reservación facturada
	PaymentStateID *int64
	ReservationID  *int64
	From           *time.Time
	To             *time.Time
}
