package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación de TransactionRepository.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const transactionSelect = `SELECT id, invoice_id, reservation_id, type, description, occurred_at FROM transactions`

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	if err := row.Scan(&t.ID, &t.InvoiceID, &t.ReservationID, &t.Type, &t.Description, &t.OccurredAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepo) List(ctx context.Context, f entity.TransactionFilter) ([]*entity.Transaction, error) {
	rows, err := r.q.Query(ctx, transactionSelect+`
	WHERE ($1::bigint IS NULL OR invoice_id = $1)
	  AND ($2::bigint IS NULL OR reservation_id = $2)
	  AND ($3::varchar IS NULL OR type = $3)
	  AND ($4::timestamptz IS NULL OR occurred_at >= $4)
	  AND ($5::timestamptz IS NULL OR occurred_at <= $5)
	ORDER BY occurred_at DESC, id DESC`,
		f.InvoiceID, f.ReservationID, f.Type, f.From, f.To)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, transactionSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// Create inserta la transacción; con OccurredAt en cero se usa now().
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) (int64, error) {
	var occurred any
	if !t.OccurredAt.IsZero() {
		occurred = t.OccurredAt
	}
	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO transactions (invoice_id, reservation_id, type, description, occurred_at)
		VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, now()))
		RETURNING id`,
		t.InvoiceID, t.ReservationID, t.Type, t.Description, occurred,
	).Scan(&id)
	if err != nil {
		return 0, classifyWrite("insert transaction", err)
	}
	return id, nil
}

func (r *TransactionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return false, classifyDelete("delete transaction", err)
	}
	return cmd.RowsAffected() > 0, nil
}
