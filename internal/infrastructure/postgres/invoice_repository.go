package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceSelect = `
	SELECT i.id, i.user_id, i.reservation_id, i.client_id, i.payment_method_id, i.payment_state_id,
	       i.subtotal, i.vat_amount, i.total_amount, i.notes, i.emitted_at,
	       COALESCE(ps.description, ''), COALESCE(pm.description, ''), COALESCE(u.email, ''),
	       COALESCE(cl.first_name, ''), COALESCE(cl.last_name, ''),
	       COALESCE(co.name, ''), COALESCE(s.name, '')
	FROM invoices i
	LEFT JOIN payment_states ps ON ps.id = i.payment_state_id
	LEFT JOIN payment_methods pm ON pm.id = i.payment_method_id
	LEFT JOIN users u ON u.id = i.user_id
	LEFT JOIN clients cl ON cl.id = i.client_id
	LEFT JOIN reservations r ON r.id = i.reservation_id
	LEFT JOIN companies co ON co.id = r.company_id
	LEFT JOIN spots s ON s.id = r.spot_id`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.UserID, &inv.ReservationID, &inv.ClientID, &inv.PaymentMethodID, &inv.PaymentStateID,
		&inv.Subtotal, &inv.VATAmount, &inv.TotalAmount, &inv.Notes, &inv.EmittedAt,
		&inv.PaymentState, &inv.PaymentMethod, &inv.UserEmail,
		&inv.ClientName, &inv.ClientLastName,
		&inv.CompanyName, &inv.SpotName,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// List lista facturas; from/to aplican sobre emitted_at y companyId sobre la reservación facturada.
func (r *InvoiceRepo) List(ctx context.Context, f entity.InvoiceFilter) ([]*entity.Invoice, error) {
	query := invoiceSelect + `
	WHERE ($1::bigint IS NULL OR i.client_id = $1)
	  AND ($2::bigint IS NULL OR i.payment_state_id = $2)
	  AND ($3::bigint IS NULL OR i.reservation_id = $3)
	  AND ($4::timestamptz IS NULL OR i.emitted_at >= $4)
	  AND ($5::timestamptz IS NULL OR i.emitted_at <= $5)
	  AND ($6::bigint IS NULL OR r.company_id = $6)
	ORDER BY i.id DESC`
	rows, err := r.q.Query(ctx, query, f.ClientID, f.PaymentStateID, f.ReservationID, f.From, f.To, f.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// GetByID obtiene la factura con la descripción del estado de pago resuelta.
func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, invoiceSelect+` WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// Create inserta la factura. Sin fecha de emisión se usa now().
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) (int64, error) {
	query := `
		INSERT INTO invoices (user_id, reservation_id, client_id, payment_method_id, payment_state_id,
		                      subtotal, vat_amount, total_amount, notes, emitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10::timestamptz, now()))
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query,
		inv.UserID, inv.ReservationID, inv.ClientID, inv.PaymentMethodID, inv.PaymentStateID,
		inv.Subtotal, inv.VATAmount, inv.TotalAmount, inv.Notes, inv.EmittedAt,
	).Scan(&id)
	if err != nil {
		return 0, classifyWrite("insert invoice", err)
	}
	return id, nil
}

// Patch actualiza solo las columnas cuya bandera viene en true.
func (r *InvoiceRepo) Patch(ctx context.Context, id int64, p entity.InvoicePatch) (bool, error) {
	query := `
		UPDATE invoices SET
			user_id           = CASE WHEN $2::boolean  THEN $3::bigint        ELSE user_id END,
			reservation_id    = CASE WHEN $4::boolean  THEN $5::bigint        ELSE reservation_id END,
			client_id         = CASE WHEN $6::boolean  THEN $7::bigint        ELSE client_id END,
			payment_method_id = CASE WHEN $8::boolean  THEN $9::bigint        ELSE payment_method_id END,
			payment_state_id  = CASE WHEN $10::boolean THEN $11::bigint       ELSE payment_state_id END,
			subtotal          = CASE WHEN $12::boolean THEN $13::numeric      ELSE subtotal END,
			vat_amount        = CASE WHEN $14::boolean THEN $15::numeric      ELSE vat_amount END,
			total_amount      = CASE WHEN $16::boolean THEN $17::numeric      ELSE total_amount END,
			notes             = CASE WHEN $18::boolean THEN $19::text         ELSE notes END,
			emitted_at        = CASE WHEN $20::boolean THEN $21::timestamptz  ELSE emitted_at END
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, id,
		p.UserID.Set, p.UserID.Value,
		p.ReservationID.Set, p.ReservationID.Value,
		p.ClientID.Set, p.ClientID.Value,
		p.PaymentMethodID.Set, p.PaymentMethodID.Value,
		p.PaymentStateID.Set, p.PaymentStateID.Value,
		p.Subtotal.Set, p.Subtotal.Value,
		p.VATAmount.Set, p.VATAmount.Value,
		p.TotalAmount.Set, p.TotalAmount.Value,
		p.Notes.Set, p.Notes.Value,
		p.EmittedAt.Set, p.EmittedAt.Value,
	)
	if err != nil {
		return false, classifyWrite("update invoice", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// Delete elimina una factura; si la referencian transacciones devuelve domain.ErrInUse.
func (r *InvoiceRepo) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return false, classifyDelete("delete invoice", err)
	}
	return cmd.RowsAffected() > 0, nil
}
