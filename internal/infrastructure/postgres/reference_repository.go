package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

var _ repository.ReferenceRepository = (*ReferenceRepo)(nil)

// ReferenceRepo lecturas de catálogos (spot_states, payment_states, payment_methods) y verificación de FKs.
type ReferenceRepo struct {
	q Querier
}

// NewReferenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReferenceRepository(q Querier) *ReferenceRepo {
	return &ReferenceRepo{q: q}
}

// FindSpotStateByName busca el estado por nombre sin distinguir mayúsculas.
func (r *ReferenceRepo) FindSpotStateByName(ctx context.Context, name string) (*entity.SpotState, error) {
	var s entity.SpotState
	err := r.q.QueryRow(ctx,
		`SELECT id, name FROM spot_states WHERE lower(name) = lower($1) ORDER BY id LIMIT 1`, name,
	).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find spot state: %w", err)
	}
	return &s, nil
}

// GetPaymentState obtiene un estado de pago por ID.
func (r *ReferenceRepo) GetPaymentState(ctx context.Context, id int64) (*entity.PaymentState, error) {
	var s entity.PaymentState
	err := r.q.QueryRow(ctx, `SELECT id, description FROM payment_states WHERE id = $1`, id).
		Scan(&s.ID, &s.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment state: %w", err)
	}
	return &s, nil
}

func (r *ReferenceRepo) ListSpotStates(ctx context.Context) ([]*entity.SpotState, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM spot_states ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list spot states: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.SpotState, 0)
	for rows.Next() {
		var s entity.SpotState
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan spot state: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *ReferenceRepo) ListPaymentStates(ctx context.Context) ([]*entity.PaymentState, error) {
	rows, err := r.q.Query(ctx, `SELECT id, description FROM payment_states ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list payment states: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.PaymentState, 0)
	for rows.Next() {
		var s entity.PaymentState
		if err := rows.Scan(&s.ID, &s.Description); err != nil {
			return nil, fmt.Errorf("scan payment state: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *ReferenceRepo) ListPaymentMethods(ctx context.Context) ([]*entity.PaymentMethod, error) {
	rows, err := r.q.Query(ctx, `SELECT id, description FROM payment_methods ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.PaymentMethod, 0)
	for rows.Next() {
		var m entity.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Description); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Exists verifica que exista la fila referenciada.
func (r *ReferenceRepo) Exists(ctx context.Context, kind entity.RefKind, id int64) (bool, error) {
	table, err := refTable(kind)
	if err != nil {
		return false, err
	}
	var ok bool
	// table sale de refTable, nunca del request.
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists %s: %w", table, err)
	}
	return ok, nil
}

func refTable(kind entity.RefKind) (string, error) {
	switch kind {
	case entity.RefUser:
		return "users", nil
	case entity.RefClient:
		return "clients", nil
	case entity.RefReservation:
		return "reservations", nil
	case entity.RefPaymentMethod:
		return "payment_methods", nil
	case entity.RefPaymentState:
		return "payment_states", nil
	default:
		return "", fmt.Errorf("tipo de referencia desconocido: %d", kind)
	}
}
