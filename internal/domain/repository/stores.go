package repository

import "context"

// Stores agrupa los repositorios atados a una misma conexión o transacción.
type Stores struct {
	Reservations ReservationRepository
	Invoices     InvoiceRepository
	Spots        SpotRepository
	References   ReferenceRepository
	Transactions TransactionRepository
}

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
// Si fn retorna error se hace rollback; si no, commit.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(s Stores) error) error
}
