package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest body para POST /api/invoices.
// Requiere reservationId o subtotal; si falta subtotal se toma el monto total de la reservación cerrada.
type CreateInvoiceRequest struct {
	UserID          *int64           `json:"userId" validate:"required"`
	PaymentMethodID *int64           `json:"paymentMethodId" validate:"required"`
	PaymentStateID  *int64           `json:"paymentStateId" validate:"required"`
	ReservationID   *int64           `json:"reservationId,omitempty" validate:"required_without=Subtotal"`
	Subtotal        *decimal.Decimal `json:"subtotal,omitempty"`
	VATAmount       *decimal.Decimal `json:"vatAmount,omitempty"`
	TotalAmount     *decimal.Decimal `json:"totalAmount,omitempty"`
	ClientID        *int64           `json:"clientId,omitempty"`
	Notes           *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
	EmissionTime    *string          `json:"emissionTime,omitempty"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id (parcial).
type UpdateInvoiceRequest struct {
	UserID          Optional[int64]           `json:"userId"`
	ReservationID   Optional[int64]           `json:"reservationId"`
	ClientID        Optional[int64]           `json:"clientId"`
	PaymentMethodID Optional[int64]           `json:"paymentMethodId"`
	PaymentStateID  Optional[int64]           `json:"paymentStateId"`
	Subtotal        Optional[decimal.Decimal] `json:"subtotal"`
	VATAmount       Optional[decimal.Decimal] `json:"vatAmount"`
	TotalAmount     Optional[decimal.Decimal] `json:"totalAmount"`
	Notes           Optional[string]          `json:"notes"`
	EmissionTime    Optional[string]          `json:"emissionTime"`
}

// VATOptions parámetros de query calculateVat y vatRate.
type VATOptions struct {
	Calculate bool
	Rate      decimal.Decimal
}

// InvoiceResponse factura con campos de presentación.
type InvoiceResponse struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	ReservationID   *int64          `json:"reservationId"`
	ClientID        *int64          `json:"clientId"`
	PaymentMethodID int64           `json:"paymentMethodId"`
	PaymentStateID  int64           `json:"paymentStateId"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	VATAmount       decimal.Decimal `json:"vatAmount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Notes           *string         `json:"notes"`
	EmissionTime    *time.Time      `json:"emissionTime"`
	PaymentState    string          `json:"paymentState,omitempty"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	UserEmail       string          `json:"userEmail,omitempty"`
	ClientName      string          `json:"clientName,omitempty"`
	ClientLastName  string          `json:"clientLastName,omitempty"`
}

// InvoiceListQuery filtros de GET /api/invoices.
type InvoiceListQuery struct {
	ClientID       *int64
	CompanyID      *int64
	PaymentStateID *int64
	ReservationID  *int64
	From           *string
	To             *string
}
