// Package reservation implementa el ciclo de vida de las reservaciones:
// alta, actualización parcial, cierre y baja, con propagación de ocupación.
package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/parqueo-api/internal/application/dto"
	"github.com/jhoicas/parqueo-api/internal/application/occupancy"
	"github.com/jhoicas/parqueo-api/internal/domain"
	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/parking"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

// Service casos de uso de reservaciones.
type Service struct {
	repo       repository.ReservationRepository
	tx         repository.TxRunner
	propagator *occupancy.Propagator
	dates      parking.TimestampPolicy
	now        func() time.Time
	log        zerolog.Logger
}

// NewService construye el servicio. repo se usa para las lecturas fuera de transacción.
func NewService(
	repo repository.ReservationRepository,
	tx repository.TxRunner,
	propagator *occupancy.Propagator,
	dates parking.TimestampPolicy,
	log zerolog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		tx:         tx,
		propagator: propagator,
		dates:      dates,
		now:        time.Now,
		log:        log,
	}
}

// WithClock reemplaza el reloj del servidor (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List devuelve las reservaciones con los campos de presentación.
func (s *Service) List(ctx context.Context, q dto.ReservationListQuery) ([]dto.ReservationResponse, error) {
	f := entity.ReservationFilter{CompanyID: q.CompanyID, ClientID: q.ClientID}
	if q.Status != nil {
		st, ok := parking.ParseStatus(*q.Status)
		if !ok {
			return nil, fmt.Errorf("%w: status inválido: %s", domain.ErrInvalidInput, *q.Status)
		}
		v := string(st)
		f.Status = &v
	}
	var err error
	if f.From, err = s.resolveDate("from", q.From); err != nil {
		return nil, err
	}
	if f.To, err = s.resolveDate("to", q.To); err != nil {
		return nil, err
	}

	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toResponse(r))
	}
	return out, nil
}

// Get devuelve una reservación o domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*dto.ReservationResponse, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(r)
	return &resp, nil
}

// Create inserta la reservación en estado inicial y marca su lugar como ocupado en la misma transacción.
func (s *Service) Create(ctx context.Context, in dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	entry, err := s.resolveDate("entryTime", in.EntryTime)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		now := s.now()
		entry = &now
	}

	r := &entity.Reservation{
		UserID:    *in.UserID,
		CompanyID: *in.CompanyID,
		TariffID:  *in.TariffID,
		ClientID:  *in.ClientID,
		SpotID:    *in.SpotID,
		EntryTime: entry,
		Status:    string(parking.InitialStatus),
	}

	var created *entity.Reservation
	err = s.tx.RunInTx(ctx, func(st repository.Stores) error {
		id, err := st.Reservations.Create(ctx, r)
		if err != nil {
			return err
		}
		created, err = st.Reservations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if created == nil {
			return fmt.Errorf("reservación %d no encontrada tras insertar", id)
		}
		return s.propagator.MarkOccupied(ctx, st, created)
	})
	if err != nil {
		return nil, err
	}
	resp := toResponse(created)
	return &resp, nil
}

// Update aplica una actualización parcial. Los campos omitidos no se tocan.
func (s *Service) Update(ctx context.Context, id int64, in dto.UpdateReservationRequest) (*dto.ReservationResponse, error) {
	p, err := s.buildPatch(in)
	if err != nil {
		return nil, err
	}

	var updated *entity.Reservation
	err = s.tx.RunInTx(ctx, func(st repository.Stores) error {
		current, err := st.Reservations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		ok, err := st.Reservations.Patch(ctx, id, p)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		// La propagación usa el registro resultante, no el body.
		updated, err = st.Reservations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.ErrNotFound
		}
		// Cambio de lugar: el anterior queda libre si esta reservación lo ocupaba.
		if updated.SpotID != current.SpotID && !parking.IsCancelled(current.Status) {
			if err := s.propagator.ReleaseSpot(ctx, st, current.SpotID); err != nil {
				return err
			}
		}
		return s.propagator.MarkOccupied(ctx, st, updated)
	})
	if err != nil {
		return nil, err
	}
	resp := toResponse(updated)
	return &resp, nil
}

// Close transición de cierre: status=completed y exitTime=ahora.
// Devuelve domain.ErrNotFound si no existe y domain.ErrConflict si no está confirmada o ya tiene salida.
func (s *Service) Close(ctx context.Context, id int64) (*dto.ReservationResponse, error) {
	var closed *entity.Reservation
	err := s.tx.RunInTx(ctx, func(st repository.Stores) error {
		current, err := st.Reservations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		ok, err := st.Reservations.Close(ctx, id, s.now())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: solo se puede cerrar una reservación confirmada y sin hora de salida (estado actual: %s)",
				domain.ErrConflict, current.Status)
		}
		closed, err = st.Reservations.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if closed == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(closed)
	return &resp, nil
}

// Delete elimina la fila. Si está referenciada el repositorio devuelve domain.ErrInUse.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) buildPatch(in dto.UpdateReservationRequest) (entity.ReservationPatch, error) {
	var p entity.ReservationPatch
	if in.TotalAmount.Set {
		return p, fmt.Errorf("%w: monto_total es de solo lectura y lo calcula el sistema", domain.ErrReadOnlyField)
	}

	ids := []struct {
		field string
		in    dto.Optional[int64]
		out   *entity.Patch[int64]
	}{
		{"userId", in.UserID, &p.UserID},
		{"companyId", in.CompanyID, &p.CompanyID},
		{"tariffId", in.TariffID, &p.TariffID},
		{"clientId", in.ClientID, &p.ClientID},
		{"spotId", in.SpotID, &p.SpotID},
	}
	for _, f := range ids {
		if !f.in.Set {
			continue
		}
		if f.in.Null {
			return p, fmt.Errorf("%w: %s no puede ser null", domain.ErrInvalidInput, f.field)
		}
		*f.out = entity.SetTo(f.in.Value)
	}

	var status parking.Status
	if in.Status.Set {
		if in.Status.Null {
			return p, fmt.Errorf("%w: status no puede ser null", domain.ErrInvalidInput)
		}
		st, ok := parking.ParseStatus(in.Status.Value)
		if !ok {
			return p, fmt.Errorf("%w: status inválido: %s", domain.ErrInvalidInput, in.Status.Value)
		}
		status = st
		p.Status = entity.SetTo(string(st))
	}

	if in.EntryTime.Set {
		t, err := s.resolveDate("entryTime", in.EntryTime.Ptr())
		if err != nil {
			return p, err
		}
		p.EntryTime = entity.SetTo(t)
	}
	if in.ExitTime.Set {
		t, err := s.resolveDate("exitTime", in.ExitTime.Ptr())
		if err != nil {
			return p, err
		}
		p.ExitTime = entity.SetTo(t)
	} else if status.ForcesOpenExit() {
		p.ExitTime = entity.SetTo[*time.Time](nil)
	}

	if p.Empty() {
		return p, fmt.Errorf("%w: nada para actualizar", domain.ErrInvalidInput)
	}
	return p, nil
}

// resolveDate aplica la política de fechas; en modo permisivo deja constancia en el log.
func (s *Service) resolveDate(field string, raw *string) (*time.Time, error) {
	t, coerced, err := s.dates.Resolve(field, raw)
	if err != nil {
		return nil, err
	}
	if coerced {
		s.log.Warn().Str("field", field).Str("value", *raw).Msg("fecha mal formada convertida a null")
	}
	return t, nil
}

func toResponse(r *entity.Reservation) dto.ReservationResponse {
	return dto.ReservationResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		CompanyID:      r.CompanyID,
		TariffID:       r.TariffID,
		ClientID:       r.ClientID,
		SpotID:         r.SpotID,
		CreatedAt:      r.CreatedAt,
		EntryTime:      r.EntryTime,
		ExitTime:       r.ExitTime,
		Status:         r.Status,
		TotalAmount:    r.TotalAmount,
		CompanyName:    r.CompanyName,
		ClientName:     r.ClientName,
		ClientLastName: r.ClientLastName,
		SpotName:       r.SpotName,
		VehicleType:    r.VehicleType,
	}
}
