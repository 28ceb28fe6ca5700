package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL SERIALIZABLE.
// Las cascadas (escritura, relectura, búsqueda de referencia, escritura del lugar) quedan atómicas.
type TxRunner struct {
	pool     *pgxpool.Pool
	attempts int
	log      zerolog.Logger
}

// NewTxRunner construye el runner. attempts es el número máximo de intentos ante un 40001.
func NewTxRunner(pool *pgxpool.Pool, attempts int, log zerolog.Logger) *TxRunner {
	if attempts < 1 {
		attempts = 1
	}
	return &TxRunner{pool: pool, attempts: attempts, log: log}
}

// RunInTx inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Si falla por serialización se reintenta la unidad completa.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(s repository.Stores) error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		r.log.Warn().Err(err).Int("attempt", attempt).Msg("conflicto de serialización, reintentando transacción")
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(s repository.Stores) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStores(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewStores arma todos los repositorios sobre el mismo Querier (pool o tx).
func NewStores(q Querier) repository.Stores {
	return repository.Stores{
		Reservations: NewReservationRepository(q),
		Invoices:     NewInvoiceRepository(q),
		Spots:        NewSpotRepository(q),
		References:   NewReferenceRepository(q),
		Transactions: NewTransactionRepository(q),
	}
}
