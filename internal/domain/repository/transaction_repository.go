package repository

import (
	"context"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
)

// TransactionRepository define el puerto de persistencia para el registro de transacciones.
type TransactionRepository interface {
	List(ctx context.Context, f entity.TransactionFilter) ([]*entity.Transaction, error)
	GetByID(ctx context.Context, id int64) (*entity.Transaction, error)
	Create(ctx context.Context, t *entity.Transaction) (int64, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
