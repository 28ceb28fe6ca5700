package repository

import (
	"context"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
)

// SpotRepository define el puerto de persistencia para lugares de estacionamiento.
type SpotRepository interface {
	List(ctx context.Context, companyID *int64) ([]*entity.Spot, error)
	GetByID(ctx context.Context, id int64) (*entity.Spot, error)
	Create(ctx context.Context, s *entity.Spot) (int64, error)
	Patch(ctx context.Context, id int64, p entity.SpotPatch) (bool, error)
	// SetState cambia el estado de ocupación; no falla si el lugar no existe.
	SetState(ctx context.Context, spotID, stateID int64) error
	Delete(ctx context.Context, id int64) (bool, error)
}
