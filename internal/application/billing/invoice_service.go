// Package billing implementa la liquidación de facturas: alta con origen del subtotal
// desde la reservación, cálculo de IVA, actualización parcial y cascada de cancelación.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/parqueo-api/internal/application/dto"
	"github.com/jhoicas/parqueo-api/internal/application/occupancy"
	"github.com/jhoicas/parqueo-api/internal/domain"
	domainbilling "github.com/jhoicas/parqueo-api/internal/domain/billing"
	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/parking"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

// InvoiceService casos de uso de facturas.
type InvoiceService struct {
	repo       repository.InvoiceRepository
	tx         repository.TxRunner
	propagator *occupancy.Propagator
	dates      parking.TimestampPolicy
	log        zerolog.Logger
}

// NewInvoiceService construye el servicio. repo se usa para las lecturas fuera de transacción.
func NewInvoiceService(
	repo repository.InvoiceRepository,
	tx repository.TxRunner,
	propagator *occupancy.Propagator,
	dates parking.TimestampPolicy,
	log zerolog.Logger,
) *InvoiceService {
	return &InvoiceService{repo: repo, tx: tx, propagator: propagator, dates: dates, log: log}
}

// List devuelve las facturas filtradas.
func (s *InvoiceService) List(ctx context.Context, q dto.InvoiceListQuery) ([]dto.InvoiceResponse, error) {
	f := entity.InvoiceFilter{
		ClientID:       q.ClientID,
		CompanyID:      q.CompanyID,
		PaymentStateID: q.PaymentStateID,
		ReservationID:  q.ReservationID,
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
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInvoiceResponse(inv))
	}
	return out, nil
}

// Get devuelve una factura o domain.ErrNotFound.
func (s *InvoiceService) Get(ctx context.Context, id int64) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	resp := toInvoiceResponse(inv)
	return &resp, nil
}

// Create valida referencias, resuelve el subtotal, calcula IVA/total, inserta la factura
// y aplica la cascada de cancelación, todo en una transacción.
func (s *InvoiceService) Create(ctx context.Context, in dto.CreateInvoiceRequest, opts dto.VATOptions) (*dto.InvoiceResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := validateAmounts(in.Subtotal, in.VATAmount, in.TotalAmount); err != nil {
		return nil, err
	}
	if opts.Calculate {
		if err := domainbilling.ValidateRate(opts.Rate); err != nil {
			return nil, err
		}
	} else if in.TotalAmount == nil {
		return nil, fmt.Errorf("%w: totalAmount es requerido cuando calculateVat=false", domain.ErrInvalidInput)
	}
	emitted, err := s.resolveDate("emissionTime", in.EmissionTime)
	if err != nil {
		return nil, err
	}

	var created *entity.Invoice
	err = s.tx.RunInTx(ctx, func(st repository.Stores) error {
		// ── 1. Referencias ───────────────────────────────────────────────────
		refs := []struct {
			kind entity.RefKind
			id   *int64
		}{
			{entity.RefUser, in.UserID},
			{entity.RefPaymentMethod, in.PaymentMethodID},
			{entity.RefPaymentState, in.PaymentStateID},
			{entity.RefClient, in.ClientID},
		}
		for _, r := range refs {
			if err := ensureExists(ctx, st, r.kind, r.id); err != nil {
				return err
			}
		}

		var res *entity.Reservation
		if in.ReservationID != nil {
			var err error
			res, err = st.Reservations.GetByID(ctx, *in.ReservationID)
			if err != nil {
				return err
			}
			if res == nil {
				return fmt.Errorf("%w: reservationId no existe", domain.ErrInvalidReference)
			}
		}

		// ── 2. Subtotal ──────────────────────────────────────────────────────
		var subtotal decimal.Decimal
		switch {
		case in.Subtotal != nil:
			subtotal = *in.Subtotal
		case res != nil && res.TotalAmount != nil:
			subtotal = *res.TotalAmount
		default:
			return fmt.Errorf("%w: la reservación aún no tiene monto_total calculado (debe estar cerrada)", domain.ErrReservationOpen)
		}
		subtotal = subtotal.Round(domainbilling.MoneyPlaces)

		// ── 3. IVA y total ───────────────────────────────────────────────────
		var vat, total decimal.Decimal
		if opts.Calculate {
			vat, total = domainbilling.ComputeVAT(subtotal, opts.Rate)
		} else {
			vat, total = domainbilling.ManualTotals(subtotal, *in.TotalAmount, in.VATAmount)
		}

		inv := &entity.Invoice{
			UserID:          *in.UserID,
			ReservationID:   in.ReservationID,
			ClientID:        in.ClientID,
			PaymentMethodID: *in.PaymentMethodID,
			PaymentStateID:  *in.PaymentStateID,
			Subtotal:        subtotal,
			VATAmount:       vat,
			TotalAmount:     total,
			Notes:           in.Notes,
			EmittedAt:       emitted,
		}
		id, err := st.Invoices.Create(ctx, inv)
		if err != nil {
			return err
		}

		// ── 4. Releer y cascada ──────────────────────────────────────────────
		created, err = st.Invoices.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if created == nil {
			return fmt.Errorf("factura %d no encontrada tras insertar", id)
		}
		_, err = s.propagator.ReleaseForCancellation(ctx, st, created)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toInvoiceResponse(created)
	return &resp, nil
}

// Update aplica una actualización parcial. Con calculateVat, IVA y total enviados se ignoran:
// se recalculan desde el subtotal nuevo o, si no viene, desde el guardado.
func (s *InvoiceService) Update(ctx context.Context, id int64, in dto.UpdateInvoiceRequest, opts dto.VATOptions) (*dto.InvoiceResponse, error) {
	p, err := s.buildPatch(in, opts)
	if err != nil {
		return nil, err
	}

	var updated *entity.Invoice
	err = s.tx.RunInTx(ctx, func(st repository.Stores) error {
		current, err := st.Invoices.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if opts.Calculate && !p.Subtotal.Set && (p.VATAmount.Set || p.TotalAmount.Set) {
			vat, total := domainbilling.ComputeVAT(current.Subtotal, opts.Rate)
			p.VATAmount = entity.SetTo(vat)
			p.TotalAmount = entity.SetTo(total)
		}

		if p.UserID.Set {
			if err := ensureExists(ctx, st, entity.RefUser, &p.UserID.Value); err != nil {
				return err
			}
		}
		if p.PaymentMethodID.Set {
			if err := ensureExists(ctx, st, entity.RefPaymentMethod, &p.PaymentMethodID.Value); err != nil {
				return err
			}
		}
		if p.PaymentStateID.Set {
			if err := ensureExists(ctx, st, entity.RefPaymentState, &p.PaymentStateID.Value); err != nil {
				return err
			}
		}
		if p.ReservationID.Set {
			if err := ensureExists(ctx, st, entity.RefReservation, p.ReservationID.Value); err != nil {
				return err
			}
		}
		if p.ClientID.Set {
			if err := ensureExists(ctx, st, entity.RefClient, p.ClientID.Value); err != nil {
				return err
			}
		}

		ok, err := st.Invoices.Patch(ctx, id, p)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		updated, err = st.Invoices.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.ErrNotFound
		}
		_, err = s.propagator.ReleaseForCancellation(ctx, st, updated)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toInvoiceResponse(updated)
	return &resp, nil
}

// Delete elimina la factura. Si está referenciada el repositorio devuelve domain.ErrInUse.
func (s *InvoiceService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *InvoiceService) buildPatch(in dto.UpdateInvoiceRequest, opts dto.VATOptions) (entity.InvoicePatch, error) {
	var p entity.InvoicePatch

	required := []struct {
		field string
		in    dto.Optional[int64]
		out   *entity.Patch[int64]
	}{
		{"userId", in.UserID, &p.UserID},
		{"paymentMethodId", in.PaymentMethodID, &p.PaymentMethodID},
		{"paymentStateId", in.PaymentStateID, &p.PaymentStateID},
	}
	for _, f := range required {
		if !f.in.Set {
			continue
		}
		if f.in.Null {
			return p, fmt.Errorf("%w: %s no puede ser null", domain.ErrInvalidInput, f.field)
		}
		*f.out = entity.SetTo(f.in.Value)
	}
	if in.ReservationID.Set {
		p.ReservationID = entity.SetTo(in.ReservationID.Ptr())
	}
	if in.ClientID.Set {
		p.ClientID = entity.SetTo(in.ClientID.Ptr())
	}
	if in.Notes.Set {
		p.Notes = entity.SetTo(in.Notes.Ptr())
	}
	if in.EmissionTime.Set {
		t, err := s.resolveDate("emissionTime", in.EmissionTime.Ptr())
		if err != nil {
			return p, err
		}
		p.EmittedAt = entity.SetTo(t)
	}

	amounts := []struct {
		field string
		in    dto.Optional[decimal.Decimal]
		out   *entity.Patch[decimal.Decimal]
	}{
		{"subtotal", in.Subtotal, &p.Subtotal},
		{"vatAmount", in.VATAmount, &p.VATAmount},
		{"totalAmount", in.TotalAmount, &p.TotalAmount},
	}
	for _, f := range amounts {
		if !f.in.Set {
			continue
		}
		if f.in.Null {
			return p, fmt.Errorf("%w: %s no puede ser null", domain.ErrInvalidInput, f.field)
		}
		if f.in.Value.IsNegative() {
			return p, fmt.Errorf("%w: %s no puede ser negativo", domain.ErrInvalidInput, f.field)
		}
		*f.out = entity.SetTo(f.in.Value.Round(domainbilling.MoneyPlaces))
	}

	if opts.Calculate && (p.Subtotal.Set || p.VATAmount.Set || p.TotalAmount.Set) {
		if err := domainbilling.ValidateRate(opts.Rate); err != nil {
			return p, err
		}
		// Sin subtotal nuevo el recálculo usa el subtotal guardado (ver Update).
		if p.Subtotal.Set {
			vat, total := domainbilling.ComputeVAT(p.Subtotal.Value, opts.Rate)
			p.VATAmount = entity.SetTo(vat)
			p.TotalAmount = entity.SetTo(total)
		}
	}

	if p.Empty() {
		return p, fmt.Errorf("%w: nada para actualizar", domain.ErrInvalidInput)
	}
	return p, nil
}

func (s *InvoiceService) resolveDate(field string, raw *string) (*time.Time, error) {
	t, coerced, err := s.dates.Resolve(field, raw)
	if err != nil {
		return nil, err
	}
	if coerced {
		s.log.Warn().Str("field", field).Str("value", *raw).Msg("fecha mal formada convertida a null")
	}
	return t, nil
}

// ensureExists traduce una referencia inexistente en un error de cliente (400) en lugar de
// dejar que la restricción de clave foránea falle en el INSERT.
func ensureExists(ctx context.Context, st repository.Stores, kind entity.RefKind, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := st.References.Exists(ctx, kind, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s no existe", domain.ErrInvalidReference, kind.Field())
	}
	return nil
}

func validateAmounts(amounts ...*decimal.Decimal) error {
	for _, a := range amounts {
		if a != nil && a.IsNegative() {
			return fmt.Errorf("%w: los montos no pueden ser negativos", domain.ErrInvalidInput)
		}
	}
	return nil
}

func toInvoiceResponse(inv *entity.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:              inv.ID,
		UserID:          inv.UserID,
		ReservationID:   inv.ReservationID,
		ClientID:        inv.ClientID,
		PaymentMethodID: inv.PaymentMethodID,
		PaymentStateID:  inv.PaymentStateID,
		Subtotal:        inv.Subtotal,
		VATAmount:       inv.VATAmount,
		TotalAmount:     inv.TotalAmount,
		Notes:           inv.Notes,
		EmissionTime:    inv.EmittedAt,
		PaymentState:    inv.PaymentState,
		PaymentMethod:   inv.PaymentMethod,
		UserEmail:       inv.UserEmail,
		ClientName:      inv.ClientName,
		ClientLastName:  inv.ClientLastName,
	}
}
