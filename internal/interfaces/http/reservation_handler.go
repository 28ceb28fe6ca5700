package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/parqueo-api/internal/application/dto"
	"github.com/jhoicas/parqueo-api/internal/application/reservation"
)

// ReservationHandler maneja las peticiones HTTP de reservaciones.
type ReservationHandler struct {
	svc *reservation.Service
}

// NewReservationHandler construye el handler.
func NewReservationHandler(svc *reservation.Service) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

// List lista reservaciones con filtros opcionales.
// GET /api/reservations?companyId=&clientId=&status=&from=&to=
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	var q dto.ReservationListQuery
	var err error
	if q.CompanyID, err = queryID(c, "companyId"); err != nil {
		return writeError(c, err)
	}
	if q.ClientID, err = queryID(c, "clientId"); err != nil {
		return writeError(c, err)
	}
	q.Status = queryString(c, "status")
	q.From = queryString(c, "from")
	q.To = queryString(c, "to")

	list, err := h.svc.List(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetByID GET /api/reservations/:id
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
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

// Create registra la entrada de un vehículo y ocupa el lugar.
// POST /api/reservations
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.svc.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update actualización parcial; totalAmount se rechaza.
// PUT /api/reservations/:id
func (h *ReservationHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.svc.Update(c.Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Close registra la salida: status=completed y exitTime=ahora.
// PATCH /api/reservations/:id/close
func (h *ReservationHandler) Close(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.Close(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/reservations/:id
func (h *ReservationHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
