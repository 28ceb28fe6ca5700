package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/parqueo-api/internal/domain"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

// PDFUseCase genera la representación gráfica (PDF) de una factura.
type PDFUseCase struct {
	invoiceRepo     repository.InvoiceRepository
	reservationRepo repository.ReservationRepository
	generator       InvoicePDFGenerator
	issuer          string
}

// NewPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	reservationRepo repository.ReservationRepository,
	generator InvoicePDFGenerator,
	issuer string,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo:     invoiceRepo,
		reservationRepo: reservationRepo,
		generator:       generator,
		issuer:          issuer,
	}
}

// Render devuelve los bytes del PDF y el nombre de archivo sugerido.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe.
func (uc *PDFUseCase) Render(ctx context.Context, invoiceID int64) (pdfBytes []byte, filename string, err error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}

	doc := InvoiceDocument{Invoice: inv, Issuer: uc.issuer}
	if inv.ReservationID != nil {
		// La reservación solo enriquece el documento; si ya no existe se imprime sin ella.
		res, rErr := uc.reservationRepo.GetByID(ctx, *inv.ReservationID)
		if rErr != nil {
			return nil, "", fmt.Errorf("pdf: obtener reservación: %w", rErr)
		}
		doc.Reservation = res
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("factura_%d.pdf", inv.ID), nil
}
