package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateReservationRequest body para POST /api/reservations.
// La reservación nace "confirmed" y sin hora de salida; entryTime por defecto es la hora del servidor.
type CreateReservationRequest struct {
	UserID    *int64  `json:"userId" validate:"required"`
	CompanyID *int64  `json:"companyId" validate:"required"`
	TariffID  *int64  `json:"tariffId" validate:"required"`
	ClientID  *int64  `json:"clientId" validate:"required"`
	SpotID    *int64  `json:"spotId" validate:"required"`
	EntryTime *string `json:"entryTime,omitempty"`
}

// UpdateReservationRequest body para PUT /api/reservations/:id (parcial).
// TotalAmount solo se declara para detectar su presencia: es de solo lectura.
type UpdateReservationRequest struct {
	UserID      Optional[int64]           `json:"userId"`
	CompanyID   Optional[int64]           `json:"companyId"`
	TariffID    Optional[int64]           `json:"tariffId"`
	ClientID    Optional[int64]           `json:"clientId"`
	SpotID      Optional[int64]           `json:"spotId"`
	Status      Optional[string]          `json:"status"`
	EntryTime   Optional[string]          `json:"entryTime"`
	ExitTime    Optional[string]          `json:"exitTime"`
	TotalAmount Optional[json.RawMessage] `json:"totalAmount"`
}

// ReservationResponse reservación con campos de presentación.
type ReservationResponse struct {
	ID             int64            `json:"id"`
	UserID         int64            `json:"userId"`
	CompanyID      int64            `json:"companyId"`
	TariffID       int64            `json:"tariffId"`
	ClientID       int64            `json:"clientId"`
	SpotID         int64            `json:"spotId"`
	CreatedAt      time.Time        `json:"createdAt"`
	EntryTime      *time.Time       `json:"entryTime"`
	ExitTime       *time.Time       `json:"exitTime"`
	Status         string           `json:"status"`
	TotalAmount    *decimal.Decimal `json:"totalAmount"`
	CompanyName    string           `json:"companyName,omitempty"`
	ClientName     string           `json:"clientName,omitempty"`
	ClientLastName string           `json:"clientLastName,omitempty"`
	SpotName       string           `json:"spotName,omitempty"`
	VehicleType    string           `json:"vehicleType,omitempty"`
}

// ReservationListQuery filtros de GET /api/reservations (ya parseados por el handler).
type ReservationListQuery struct {
	CompanyID *int64
	ClientID  *int64
	Status    *string
	From      *string
	To        *string
}
