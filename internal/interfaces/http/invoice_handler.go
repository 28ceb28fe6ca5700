package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/parqueo-api/internal/application/billing"
	"github.com/jhoicas/parqueo-api/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturación.
type InvoiceHandler struct {
	svc *billing.InvoiceService
	pdf *billing.PDFUseCase
	vat VATDefaults
}

// NewInvoiceHandler construye el handler. pdf puede ser nil (la ruta /pdf responde 501).
func NewInvoiceHandler(svc *billing.InvoiceService, pdf *billing.PDFUseCase, vat VATDefaults) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, pdf: pdf, vat: vat}
}

// List GET /api/invoices?clientId=&companyId=&paymentStateId=&reservationId=&from=&to=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var q dto.InvoiceListQuery
	var err error
	if q.ClientID, err = queryID(c, "clientId"); err != nil {
		return writeError(c, err)
	}
	if q.CompanyID, err = queryID(c, "companyId"); err != nil {
		return writeError(c, err)
	}
	if q.PaymentStateID, err = queryID(c, "paymentStateId"); err != nil {
		return writeError(c, err)
	}
	if q.ReservationID, err = queryID(c, "reservationId"); err != nil {
		return writeError(c, err)
	}
	q.From = queryString(c, "from")
	q.To = queryString(c, "to")

	list, err := h.svc.List(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetByID GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create crea una factura; puede disparar la cascada de cancelación.
// POST /api/invoices?calculateVat=&vatRate=
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	opts, err := vatOptions(c, h.vat)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.svc.Create(c.Context(), in, opts)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update PUT /api/invoices/:id?calculateVat=&vatRate=
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	opts, err := vatOptions(c, h.vat)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.svc.Update(c.Context(), id, in, opts)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF devuelve la representación gráfica de la factura.
// GET /api/invoices/:id/pdf
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	if h.pdf == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "generación de PDF no configurada"})
	}
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, filename, err := h.pdf.Render(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.Send(out)
}
