package repository

import (
	"context"
	"time"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
)

// ReservationRepository define el puerto de persistencia para Reservation.
type ReservationRepository interface {
	List(ctx context.Context, f entity.ReservationFilter) ([]*entity.Reservation, error)
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Reservation, error)
	// Create inserta la fila y devuelve el id generado.
	Create(ctx context.Context, r *entity.Reservation) (int64, error)
	// Patch aplica solo los campos marcados. Devuelve false si no existe la fila.
	Patch(ctx context.Context, id int64, p entity.ReservationPatch) (bool, error)
	// Close fija status=completed y exit_time=now solo si está confirmada y sin salida.
	Close(ctx context.Context, id int64, now time.Time) (bool, error)
	SetStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) (bool, error)
}
