package repository

import (
	"context"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
)

// ReferenceRepository lecturas de datos de referencia (catálogos de solo lectura).
type ReferenceRepository interface {
	// FindSpotStateByName busca sin distinguir mayúsculas; (nil, nil) si no existe.
	FindSpotStateByName(ctx context.Context, name string) (*entity.SpotState, error)
	GetPaymentState(ctx context.Context, id int64) (*entity.PaymentState, error)
	ListSpotStates(ctx context.Context) ([]*entity.SpotState, error)
	ListPaymentStates(ctx context.Context) ([]*entity.PaymentState, error)
	ListPaymentMethods(ctx context.Context) ([]*entity.PaymentMethod, error)
	// Exists verifica la existencia de una fila referenciada por clave foránea.
	Exists(ctx context.Context, kind entity.RefKind, id int64) (bool, error)
}
