package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/parqueo-api/internal/application/catalog"
	"github.com/jhoicas/parqueo-api/internal/application/dto"
)

// SpotHandler CRUD de lugares.
type SpotHandler struct {
	svc *catalog.SpotService
}

func NewSpotHandler(svc *catalog.SpotService) *SpotHandler {
	return &SpotHandler{svc: svc}
}

// List GET /api/spots?companyId=
func (h *SpotHandler) List(c *fiber.Ctx) error {
	companyID, err := queryID(c, "companyId")
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.svc.List(c.Context(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

func (h *SpotHandler) GetByID(c *fiber.Ctx) error {
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

func (h *SpotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSpotRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.svc.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *SpotHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateSpotRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.svc.Update(c.Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *SpotHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TransactionHandler registro de transacciones.
type TransactionHandler struct {
	svc *catalog.TransactionService
}

func NewTransactionHandler(svc *catalog.TransactionService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

// List GET /api/transactions?invoiceId=&reservationId=&type=&from=&to=
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var q dto.TransactionListQuery
	var err error
	if q.InvoiceID, err = queryID(c, "invoiceId"); err != nil {
		return writeError(c, err)
	}
	if q.ReservationID, err = queryID(c, "reservationId"); err != nil {
		return writeError(c, err)
	}
	q.Type = queryString(c, "type")
	q.From = queryString(c, "from")
	q.To = queryString(c, "to")

	list, err := h.svc.List(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
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

func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.svc.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReferenceHandler lecturas de catálogos.
type ReferenceHandler struct {
	svc *catalog.ReferenceService
}

func NewReferenceHandler(svc *catalog.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{svc: svc}
}

// SpotStates GET /api/spot-states
func (h *ReferenceHandler) SpotStates(c *fiber.Ctx) error {
	list, err := h.svc.SpotStates(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// PaymentStates GET /api/payment-states
func (h *ReferenceHandler) PaymentStates(c *fiber.Ctx) error {
	list, err := h.svc.PaymentStates(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// PaymentMethods GET /api/payment-methods
func (h *ReferenceHandler) PaymentMethods(c *fiber.Ctx) error {
	list, err := h.svc.PaymentMethods(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}
