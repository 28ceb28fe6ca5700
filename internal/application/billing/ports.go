package billing

import (
	"context"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
)

// InvoiceDocument datos necesarios para la representación gráfica de una factura.
type InvoiceDocument struct {
	Invoice     *entity.Invoice
	Reservation *entity.Reservation // nil si la factura es un cobro independiente
	Issuer      string              // nombre del sistema emisor
}

// InvoicePDFGenerator puerto de salida para renderizar facturas en PDF.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}
