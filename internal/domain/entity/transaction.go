package entity

import "time"

// Tipos de transacción escritos por el sistema.
const (
	TransactionTypeCancellation = "cancelacion"
)

// Transaction registro de auditoría ligado a una factura y/o reservación.
type Transaction struct {
	ID            int64
	InvoiceID     *int64
	ReservationID *int64
	Type          string
	Description   *string
	OccurredAt    time.Time
}

// TransactionFilter filtros de GET /api/transactions.
type TransactionFilter struct {
	InvoiceID     *int64
	ReservationID *int64
	Type          *string
	From          *time.Time
	To            *time.Time
}
