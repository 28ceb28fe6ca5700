package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

var _ repository.SpotRepository = (*SpotRepo)(nil)

// SpotRepo implementación de SpotRepository.
type SpotRepo struct {
	q Querier
}

// NewSpotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSpotRepository(q Querier) *SpotRepo {
	return &SpotRepo{q: q}
}

const spotSelect = `
	SELECT s.id, s.company_id, s.state_id, s.name, s.description,
	       COALESCE(c.name, ''), COALESCE(c.code, ''), COALESCE(ss.name, '')
	FROM spots s
	LEFT JOIN companies c ON c.id = s.company_id
	LEFT JOIN spot_states ss ON ss.id = s.state_id`

func scanSpot(row pgx.Row) (*entity.Spot, error) {
	var s entity.Spot
	if err := row.Scan(&s.ID, &s.CompanyID, &s.StateID, &s.Name, &s.Description,
		&s.CompanyName, &s.CompanyCode, &s.StateName); err != nil {
		return nil, err
	}
	return &s, nil
}

// List lista lugares, opcionalmente de una empresa.
func (r *SpotRepo) List(ctx context.Context, companyID *int64) ([]*entity.Spot, error) {
	rows, err := r.q.Query(ctx, spotSelect+`
	WHERE ($1::bigint IS NULL OR s.company_id = $1)
	ORDER BY s.company_id, s.name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list spots: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Spot, 0)
	for rows.Next() {
		s, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spot: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetByID obtiene un lugar por ID.
func (r *SpotRepo) GetByID(ctx context.Context, id int64) (*entity.Spot, error) {
	s, err := scanSpot(r.q.QueryRow(ctx, spotSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get spot: %w", err)
	}
	return s, nil
}

// Create inserta un lugar.
func (r *SpotRepo) Create(ctx context.Context, s *entity.Spot) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO spots (company_id, state_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		s.CompanyID, s.StateID, s.Name, s.Description,
	).Scan(&id)
	if err != nil {
		return 0, classifyWrite("insert spot", err)
	}
	return id, nil
}

// Patch actualiza solo las columnas marcadas.
func (r *SpotRepo) Patch(ctx context.Context, id int64, p entity.SpotPatch) (bool, error) {
	query := `
		UPDATE spots SET
			company_id  = CASE WHEN $2::boolean THEN $3::bigint  ELSE company_id END,
			state_id    = CASE WHEN $4::boolean THEN $5::bigint  ELSE state_id END,
			name        = CASE WHEN $6::boolean THEN $7::varchar ELSE name END,
			description = CASE WHEN $8::boolean THEN $9::text    ELSE description END
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, id,
		p.CompanyID.Set, p.CompanyID.Value,
		p.StateID.Set, p.StateID.Value,
		p.Name.Set, p.Name.Value,
		p.Description.Set, p.Description.Value,
	)
	if err != nil {
		return false, classifyWrite("update spot", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// SetState cambia el estado de ocupación del lugar.
func (r *SpotRepo) SetState(ctx context.Context, spotID, stateID int64) error {
	_, err := r.q.Exec(ctx, `UPDATE spots SET state_id = $2 WHERE id = $1`, spotID, stateID)
	if err != nil {
		return classifyWrite("update spot state", err)
	}
	return nil
}

// Delete elimina un lugar; con reservaciones asociadas devuelve domain.ErrInUse.
func (r *SpotRepo) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM spots WHERE id = $1`, id)
	if err != nil {
		return false, classifyDelete("delete spot", err)
	}
	return cmd.RowsAffected() > 0, nil
}
