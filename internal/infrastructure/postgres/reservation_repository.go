package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/parking"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación del puerto ReservationRepository sobre PostgreSQL (usable con pool o tx).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationSelect = `
	SELECT r.id, r.user_id, r.company_id, r.tariff_id, r.client_id, r.spot_id, r.created_at,
	       r.entry_time, r.exit_time, r.status, r.total_amount,
	       COALESCE(co.name, ''), COALESCE(cl.first_name, ''), COALESCE(cl.last_name, ''),
	       COALESCE(s.name, ''), COALESCE(t.vehicle_type, '')
	FROM reservations r
	LEFT JOIN companies co ON co.id = r.company_id
	LEFT JOIN clients cl ON cl.id = r.client_id
	LEFT JOIN spots s ON s.id = r.spot_id
	LEFT JOIN tariffs t ON t.id = r.tariff_id`

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var r entity.Reservation
	err := row.Scan(
		&r.ID, &r.UserID, &r.CompanyID, &r.TariffID, &r.ClientID, &r.SpotID, &r.CreatedAt,
		&r.EntryTime, &r.ExitTime, &r.Status, &r.TotalAmount,
		&r.CompanyName, &r.ClientName, &r.ClientLastName, &r.SpotName, &r.VehicleType,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// List lista reservaciones con filtros opcionales; from/to aplican sobre entry_time.
func (r *ReservationRepo) List(ctx context.Context, f entity.ReservationFilter) ([]*entity.Reservation, error) {
	query := reservationSelect + `
	WHERE ($1::bigint IS NULL OR r.company_id = $1)
	  AND ($2::bigint IS NULL OR r.client_id = $2)
	  AND ($3::varchar IS NULL OR lower(r.status) = lower($3))
	  AND ($4::timestamptz IS NULL OR r.entry_time >= $4)
	  AND ($5::timestamptz IS NULL OR r.entry_time <= $5)
	ORDER BY r.id DESC`
	rows, err := r.q.Query(ctx, query, f.CompanyID, f.ClientID, f.Status, f.From, f.To)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// GetByID obtiene una reservación por ID.
func (r *ReservationRepo) GetByID(ctx context.Context, id int64) (*entity.Reservation, error) {
	res, err := scanReservation(r.q.QueryRow(ctx, reservationSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// Create inserta la reservación. exit_time y total_amount nacen en NULL.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) (int64, error) {
	query := `
		INSERT INTO reservations (user_id, company_id, tariff_id, client_id, spot_id, entry_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query,
		res.UserID, res.CompanyID, res.TariffID, res.ClientID, res.SpotID, res.EntryTime, res.Status,
	).Scan(&id)
	if err != nil {
		return 0, classifyWrite("insert reservation", err)
	}
	return id, nil
}

// Patch actualiza solo las columnas cuya bandera viene en true.
func (r *ReservationRepo) Patch(ctx context.Context, id int64, p entity.ReservationPatch) (bool, error) {
	query := `
		UPDATE reservations SET
			user_id    = CASE WHEN $2::boolean  THEN $3::bigint       ELSE user_id END,
			company_id = CASE WHEN $4::boolean  THEN $5::bigint       ELSE company_id END,
			tariff_id  = CASE WHEN $6::boolean  THEN $7::bigint       ELSE tariff_id END,
			client_id  = CASE WHEN $8::boolean  THEN $9::bigint       ELSE client_id END,
			spot_id    = CASE WHEN $10::boolean THEN $11::bigint      ELSE spot_id END,
			status     = CASE WHEN $12::boolean THEN $13::varchar     ELSE status END,
			entry_time = CASE WHEN $14::boolean THEN $15::timestamptz ELSE entry_time END,
			exit_time  = CASE WHEN $16::boolean THEN $17::timestamptz ELSE exit_time END
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, id,
		p.UserID.Set, p.UserID.Value,
		p.CompanyID.Set, p.CompanyID.Value,
		p.TariffID.Set, p.TariffID.Value,
		p.ClientID.Set, p.ClientID.Value,
		p.SpotID.Set, p.SpotID.Value,
		p.Status.Set, p.Status.Value,
		p.EntryTime.Set, p.EntryTime.Value,
		p.ExitTime.Set, p.ExitTime.Value,
	)
	if err != nil {
		return false, classifyWrite("update reservation", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// Close cierra la reservación en una sola sentencia condicionada; false si no cumplía la condición.
func (r *ReservationRepo) Close(ctx context.Context, id int64, now time.Time) (bool, error) {
	query := `
		UPDATE reservations SET status = $2, exit_time = $3
		WHERE id = $1 AND lower(status) = $4 AND exit_time IS NULL`
	cmd, err := r.q.Exec(ctx, query, id, string(parking.StatusCompleted), now, string(parking.StatusConfirmed))
	if err != nil {
		return false, classifyWrite("close reservation", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// SetStatus cambia solo el estado (cascada de cancelación).
func (r *ReservationRepo) SetStatus(ctx context.Context, id int64, status string) error {
	_, err := r.q.Exec(ctx, `UPDATE reservations SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return classifyWrite("update reservation status", err)
	}
	return nil
}

// Delete elimina una reservación por ID.
func (r *ReservationRepo) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return false, classifyDelete("delete reservation", err)
	}
	return cmd.RowsAffected() > 0, nil
}
