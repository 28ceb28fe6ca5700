package dto

import "time"

// CreateSpotRequest body para POST /api/spots.
type CreateSpotRequest struct {
	CompanyID   *int64  `json:"companyId" validate:"required"`
	StateID     *int64  `json:"stateId" validate:"required"`
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description,omitempty"`
}

// UpdateSpotRequest body para PUT /api/spots/:id (parcial).
type UpdateSpotRequest struct {
	CompanyID   Optional[int64]  `json:"companyId"`
	StateID     Optional[int64]  `json:"stateId"`
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
}

// SpotResponse lugar de estacionamiento.
type SpotResponse struct {
	ID          int64   `json:"id"`
	CompanyID   int64   `json:"companyId"`
	StateID     int64   `json:"stateId"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	CompanyName string  `json:"companyName,omitempty"`
	CompanyCode string  `json:"companyCode,omitempty"`
	StateName   string  `json:"stateName,omitempty"`
}

// CreateTransactionRequest body para POST /api/transactions.
type CreateTransactionRequest struct {
	InvoiceID     *int64  `json:"invoiceId,omitempty" validate:"required_without=ReservationID"`
	ReservationID *int64  `json:"reservationId,omitempty"`
	Type          string  `json:"type" validate:"required,max=50"`
	Description   *string `json:"description,omitempty"`
	OccurredAt    *string `json:"occurredAt,omitempty"`
}

// TransactionResponse registro de transacción.
type TransactionResponse struct {
	ID            int64     `json:"id"`
	InvoiceID     *int64    `json:"invoiceId"`
	ReservationID *int64    `json:"reservationId"`
	Type          string    `json:"type"`
	Description   *string   `json:"description"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// TransactionListQuery filtros de GET /api/transactions.
type TransactionListQuery struct {
	InvoiceID     *int64
	ReservationID *int64
	Type          *string
	From          *string
	To            *string
}

// SpotStateResponse estado de ocupación.
type SpotStateResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PaymentStateResponse estado de pago.
type PaymentStateResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

// PaymentMethodResponse forma de pago.
type PaymentMethodResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}
