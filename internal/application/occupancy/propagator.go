// Package occupancy mantiene el estado de ocupación de los lugares sincronizado
// con las reservaciones y las facturas canceladas.
package occupancy

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/parqueo-api/internal/domain"
	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/parking"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

// Config nombres de los estados de lugar que escriben las cascadas.
type Config struct {
	OccupiedState string
	FreeState     string
}

// Propagator ejecuta las cascadas sobre los repositorios de la transacción en curso.
type Propagator struct {
	cfg Config
	log zerolog.Logger
}

// NewPropagator construye el propagador.
func NewPropagator(cfg Config, log zerolog.Logger) *Propagator {
	return &Propagator{cfg: cfg, log: log}
}

// MarkOccupied escribe el estado "ocupado" en el lugar de la reservación ya releída.
// No hace nada si la reservación quedó cancelada.
func (p *Propagator) MarkOccupied(ctx context.Context, s repository.Stores, r *entity.Reservation) error {
	if r == nil || parking.IsCancelled(r.Status) {
		return nil
	}
	state, err := p.resolve(ctx, s, p.cfg.OccupiedState)
	if err != nil {
		return err
	}
	if err := s.Spots.SetState(ctx, r.SpotID, state.ID); err != nil {
		return fmt.Errorf("ocupar lugar %d: %w", r.SpotID, err)
	}
	p.log.Info().
		Int64("reservation_id", r.ID).
		Int64("spot_id", r.SpotID).
		Int64("state_id", state.ID).
		Msg("lugar marcado como ocupado")
	return nil
}

// ReleaseSpot escribe el estado "libre" en un lugar que una reservación dejó de usar.
func (p *Propagator) ReleaseSpot(ctx context.Context, s repository.Stores, spotID int64) error {
	free, err := p.resolve(ctx, s, p.cfg.FreeState)
	if err != nil {
		return err
	}
	if err := s.Spots.SetState(ctx, spotID, free.ID); err != nil {
		return fmt.Errorf("liberar lugar %d: %w", spotID, err)
	}
	p.log.Info().Int64("spot_id", spotID).Int64("state_id", free.ID).Msg("lugar liberado")
	return nil
}

// ReleaseForCancellation aplica la cascada de cancelación de una factura ya releída:
// cancela la reservación asociada, libera su lugar y, si la reservación no estaba cancelada,
// deja registro en transactions.
// Devuelve false si la factura no cumple la condición (sin reservación o estado de pago no cancelado).
func (p *Propagator) ReleaseForCancellation(ctx context.Context, s repository.Stores, inv *entity.Invoice) (bool, error) {
	if inv == nil || inv.ReservationID == nil || !parking.IsCancelledPaymentState(inv.PaymentState) {
		return false, nil
	}
	resID := *inv.ReservationID

	// ── 1. Reservación → cancelled ───────────────────────────────────────────
	res, err := s.Reservations.GetByID(ctx, resID)
	if err != nil {
		return false, fmt.Errorf("leer reservación %d: %w", resID, err)
	}
	if res == nil {
		return false, fmt.Errorf("%w: la reservación %d de la factura no existe", domain.ErrInvalidReference, resID)
	}
	wasCancelled := parking.IsCancelled(res.Status)
	if err := s.Reservations.SetStatus(ctx, resID, string(parking.StatusCancelled)); err != nil {
		return false, fmt.Errorf("cancelar reservación %d: %w", resID, err)
	}

	// ── 2. Lugar → libre ─────────────────────────────────────────────────────
	free, err := p.resolve(ctx, s, p.cfg.FreeState)
	if err != nil {
		return false, err
	}
	if err := s.Spots.SetState(ctx, res.SpotID, free.ID); err != nil {
		return false, fmt.Errorf("liberar lugar %d: %w", res.SpotID, err)
	}

	// ── 3. Auditoría: solo cuando la reservación cambia a cancelled ─────────
	if wasCancelled {
		p.log.Debug().
			Int64("invoice_id", inv.ID).
			Int64("reservation_id", resID).
			Msg("reservación ya cancelada: cascada reaplicada sin auditoría")
		return true, nil
	}
	desc := fmt.Sprintf("factura %d cancelada: reservación %d cancelada y lugar %d liberado", inv.ID, resID, res.SpotID)
	invID := inv.ID
	if _, err := s.Transactions.Create(ctx, &entity.Transaction{
		InvoiceID:     &invID,
		ReservationID: &resID,
		Type:          entity.TransactionTypeCancellation,
		Description:   &desc,
	}); err != nil {
		return false, fmt.Errorf("registrar transacción de cancelación: %w", err)
	}

	p.log.Info().
		Int64("invoice_id", inv.ID).
		Int64("reservation_id", resID).
		Int64("spot_id", res.SpotID).
		Int64("state_id", free.ID).
		Msg("cascada de cancelación aplicada")
	return true, nil
}

func (p *Propagator) resolve(ctx context.Context, s repository.Stores, name string) (*entity.SpotState, error) {
	state, err := s.References.FindSpotStateByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("buscar estado de lugar %q: %w", name, err)
	}
	if state == nil {
		return nil, fmt.Errorf("%w: no existe el estado de lugar %q", domain.ErrMissingReferenceData, name)
	}
	return state, nil
}
