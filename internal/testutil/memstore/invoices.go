package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/parqueo-api/internal/domain"
	"github.com/jhoicas/parqueo-api/internal/domain/entity"
)

type invoiceRepo struct{ s *Store }

func (st *state) joinInvoice(inv entity.Invoice) *entity.Invoice {
	inv.PaymentState = st.paymentStates[inv.PaymentStateID].Description
	inv.PaymentMethod = st.paymentMethods[inv.PaymentMethodID].Description
	inv.UserEmail = st.users[inv.UserID].email
	if inv.ClientID != nil {
		c := st.clients[*inv.ClientID]
		inv.ClientName, inv.ClientLastName = c.first, c.last
	}
	if inv.ReservationID != nil {
		if res, ok := st.reservations[*inv.ReservationID]; ok {
			inv.CompanyName = st.companies[res.CompanyID].name
			inv.SpotName = st.spots[res.SpotID].Name
		}
	}
	return &inv
}

func (st *state) checkInvoiceRefs(inv entity.Invoice) error {
	if !st.hasUser(inv.UserID) {
		return fmt.Errorf("%w: userId no existe", domain.ErrInvalidReference)
	}
	if inv.ReservationID != nil {
		if _, ok := st.reservations[*inv.ReservationID]; !ok {
			return fmt.Errorf("%w: reservationId no existe", domain.ErrInvalidReference)
		}
	}
	if inv.ClientID != nil && !st.hasClient(*inv.ClientID) {
		return fmt.Errorf("%w: clientId no existe", domain.ErrInvalidReference)
	}
	if _, ok := st.paymentMethods[inv.PaymentMethodID]; !ok {
		return fmt.Errorf("%w: paymentMethodId no existe", domain.ErrInvalidReference)
	}
	if _, ok := st.paymentStates[inv.PaymentStateID]; !ok {
		return fmt.Errorf("%w: paymentStateId no existe", domain.ErrInvalidReference)
	}
	if inv.Subtotal.IsNegative() || inv.VATAmount.IsNegative() || inv.TotalAmount.IsNegative() {
		return fmt.Errorf("%w: montos negativos", domain.ErrInvalidInput)
	}
	return nil
}

func (r *invoiceRepo) List(_ context.Context, f entity.InvoiceFilter) ([]*entity.Invoice, error) {
	st, unlock := r.s.lock()
	defer unlock()
	list := make([]*entity.Invoice, 0)
	for _, inv := range st.invoices {
		if f.ClientID != nil && (inv.ClientID == nil || *inv.ClientID != *f.ClientID) {
			continue
		}
		if f.PaymentStateID != nil && inv.PaymentStateID != *f.PaymentStateID {
			continue
		}
		if f.ReservationID != nil && (inv.ReservationID == nil || *inv.ReservationID != *f.ReservationID) {
			continue
		}
		if f.CompanyID != nil {
			if inv.ReservationID == nil {
				continue
			}
			if res, ok := st.reservations[*inv.ReservationID]; !ok || res.CompanyID != *f.CompanyID {
				continue
			}
		}
		if !inRange(inv.EmittedAt, f.From, f.To) {
			continue
		}
		list = append(list, st.joinInvoice(inv))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r *invoiceRepo) GetByID(_ context.Context, id int64) (*entity.Invoice, error) {
	st, unlock := r.s.lock()
	defer unlock()
	inv, ok := st.invoices[id]
	if !ok {
		return nil, nil
	}
	return st.joinInvoice(inv), nil
}

func (r *invoiceRepo) Create(_ context.Context, in *entity.Invoice) (int64, error) {
	st, unlock := r.s.lock()
	defer unlock()
	inv := entity.Invoice{
		UserID:          in.UserID,
		ReservationID:   in.ReservationID,
		ClientID:        in.ClientID,
		PaymentMethodID: in.PaymentMethodID,
		PaymentStateID:  in.PaymentStateID,
		Subtotal:        in.Subtotal,
		VATAmount:       in.VATAmount,
		TotalAmount:     in.TotalAmount,
		Notes:           in.Notes,
		EmittedAt:       in.EmittedAt,
	}
	if err := st.checkInvoiceRefs(inv); err != nil {
		return 0, err
	}
	if inv.EmittedAt == nil {
		now := r.s.now()
		inv.EmittedAt = &now
	}
	inv.ID = st.nextID()
	st.invoices[inv.ID] = inv
	return inv.ID, nil
}

func (r *invoiceRepo) Patch(_ context.Context, id int64, p entity.InvoicePatch) (bool, error) {
	st, unlock := r.s.lock()
	defer unlock()
	inv, ok := st.invoices[id]
	if !ok {
		return false, nil
	}
	if p.UserID.Set {
		inv.UserID = p.UserID.Value
	}
	if p.ReservationID.Set {
		inv.ReservationID = p.ReservationID.Value
	}
	if p.ClientID.Set {
		inv.ClientID = p.ClientID.Value
	}
	if p.PaymentMethodID.Set {
		inv.PaymentMethodID = p.PaymentMethodID.Value
	}
	if p.PaymentStateID.Set {
		inv.PaymentStateID = p.PaymentStateID.Value
	}
	if p.Subtotal.Set {
		inv.Subtotal = p.Subtotal.Value
	}
	if p.VATAmount.Set {
		inv.VATAmount = p.VATAmount.Value
	}
	if p.TotalAmount.Set {
		inv.TotalAmount = p.TotalAmount.Value
	}
	if p.Notes.Set {
		inv.Notes = p.Notes.Value
	}
	if p.EmittedAt.Set {
		inv.EmittedAt = p.EmittedAt.Value
	}
	if err := st.checkInvoiceRefs(inv); err != nil {
		return false, err
	}
	st.invoices[id] = inv
	return true, nil
}

func (r *invoiceRepo) Delete(_ context.Context, id int64) (bool, error) {
	st, unlock := r.s.lock()
	defer unlock()
	if _, ok := st.invoices[id]; !ok {
		return false, nil
	}
	for _, t := range st.transactions {
		if t.InvoiceID != nil && *t.InvoiceID == id {
			return false, fmt.Errorf("%w (restricción transactions_invoice_id_fkey)", domain.ErrInUse)
		}
	}
	delete(st.invoices, id)
	return true, nil
}
