package repository

import (
	"context"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice.
type InvoiceRepository interface {
	List(ctx context.Context, f entity.InvoiceFilter) ([]*entity.Invoice, error)
	// GetByID devuelve la factura con la descripción del estado de pago resuelta; (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Invoice, error)
	Create(ctx context.Context, inv *entity.Invoice) (int64, error)
	Patch(ctx context.Context, id int64, p entity.InvoicePatch) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
