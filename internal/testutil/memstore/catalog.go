package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/parqueo-api/internal/domain"
	"github.com/jhoicas/parqueo-api/internal/domain/entity"
)

// ── Lugares ───────────────────────────────────────────────────────────────────

type spotRepo struct{ s *Store }

func (st *state) joinSpot(sp entity.Spot) *entity.Spot {
	c := st.companies[sp.CompanyID]
	sp.CompanyName, sp.CompanyCode = c.name, c.code
	sp.StateName = st.spotStates[sp.StateID].Name
	return &sp
}

func (st *state) checkSpot(sp entity.Spot) error {
	if !st.hasCompany(sp.CompanyID) {
		return fmt.Errorf("%w: companyId no existe", domain.ErrInvalidReference)
	}
	if _, ok := st.spotStates[sp.StateID]; !ok {
		return fmt.Errorf("%w: stateId no existe", domain.ErrInvalidReference)
	}
	for id, other := range st.spots {
		if id != sp.ID && other.CompanyID == sp.CompanyID && other.Name == sp.Name {
			return fmt.Errorf("%w: spots_company_id_name_key", domain.ErrDuplicate)
		}
	}
	return nil
}

func (r *spotRepo) List(_ context.Context, companyID *int64) ([]*entity.Spot, error) {
	st, unlock := r.s.lock()
	defer unlock()
	list := make([]*entity.Spot, 0)
	for _, sp := range st.spots {
		if companyID != nil && sp.CompanyID != *companyID {
			continue
		}
		list = append(list, st.joinSpot(sp))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CompanyID != list[j].CompanyID {
			return list[i].CompanyID < list[j].CompanyID
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (r *spotRepo) GetByID(_ context.Context, id int64) (*entity.Spot, error) {
	st, unlock := r.s.lock()
	defer unlock()
	sp, ok := st.spots[id]
	if !ok {
		return nil, nil
	}
	return st.joinSpot(sp), nil
}

func (r *spotRepo) Create(_ context.Context, in *entity.Spot) (int64, error) {
	st, unlock := r.s.lock()
	defer unlock()
	sp := entity.Spot{CompanyID: in.CompanyID, StateID: in.StateID, Name: in.Name, Description: in.Description}
	if err := st.checkSpot(sp); err != nil {
		return 0, err
	}
	sp.ID = st.nextID()
	st.spots[sp.ID] = sp
	return sp.ID, nil
}

func (r *spotRepo) Patch(_ context.Context, id int64, p entity.SpotPatch) (bool, error) {
	st, unlock := r.s.lock()
	defer unlock()
	sp, ok := st.spots[id]
	if !ok {
		return false, nil
	}
	if p.CompanyID.Set {
		sp.CompanyID = p.CompanyID.Value
	}
	if p.StateID.Set {
		sp.StateID = p.StateID.Value
	}
	if p.Name.Set {
		sp.Name = p.Name.Value
	}
	if p.Description.Set {
		sp.Description = p.Description.Value
	}
	if err := st.checkSpot(sp); err != nil {
		return false, err
	}
	st.spots[id] = sp
	return true, nil
}

func (r *spotRepo) SetState(_ context.Context, spotID, stateID int64) error {
	st, unlock := r.s.lock()
	defer unlock()
	sp, ok := st.spots[spotID]
	if !ok {
		return nil
	}
	if _, ok := st.spotStates[stateID]; !ok {
		return fmt.Errorf("%w: stateId no existe", domain.ErrInvalidReference)
	}
	sp.StateID = stateID
	st.spots[spotID] = sp
	return nil
}

func (r *spotRepo) Delete(_ context.Context, id int64) (bool, error) {
	st, unlock := r.s.lock()
	defer unlock()
	if _, ok := st.spots[id]; !ok {
		return false, nil
	}
	for _, res := range st.reservations {
		if res.SpotID == id {
			return false, fmt.Errorf("%w (restricción reservations_spot_id_fkey)", domain.ErrInUse)
		}
	}
	delete(st.spots, id)
	return true, nil
}

// ── Catálogos ─────────────────────────────────────────────────────────────────

type referenceRepo struct{ s *Store }

func (r *referenceRepo) FindSpotStateByName(_ context.Context, name string) (*entity.SpotState, error) {
	st, unlock := r.s.lock()
	defer unlock()
	var found *entity.SpotState
	for _, ss := range st.spotStates {
		if strings.EqualFold(ss.Name, name) && (found == nil || ss.ID < found.ID) {
			v := ss
			found = &v
		}
	}
	return found, nil
}

func (r *referenceRepo) GetPaymentState(_ context.Context, id int64) (*entity.PaymentState, error) {
	st, unlock := r.s.lock()
	defer unlock()
	ps, ok := st.paymentStates[id]
	if !ok {
		return nil, nil
	}
	return &ps, nil
}

func (r *referenceRepo) ListSpotStates(_ context.Context) ([]*entity.SpotState, error) {
	st, unlock := r.s.lock()
	defer unlock()
	return sortedByID(st.spotStates, func(v entity.SpotState) int64 { return v.ID }), nil
}

func (r *referenceRepo) ListPaymentStates(_ context.Context) ([]*entity.PaymentState, error) {
	st, unlock := r.s.lock()
	defer unlock()
	return sortedByID(st.paymentStates, func(v entity.PaymentState) int64 { return v.ID }), nil
}

func (r *referenceRepo) ListPaymentMethods(_ context.Context) ([]*entity.PaymentMethod, error) {
	st, unlock := r.s.lock()
	defer unlock()
	return sortedByID(st.paymentMethods, func(v entity.PaymentMethod) int64 { return v.ID }), nil
}

func (r *referenceRepo) Exists(_ context.Context, kind entity.RefKind, id int64) (bool, error) {
	st, unlock := r.s.lock()
	defer unlock()
	switch kind {
	case entity.RefUser:
		return st.hasUser(id), nil
	case entity.RefClient:
		return st.hasClient(id), nil
	case entity.RefReservation:
		_, ok := st.reservations[id]
		return ok, nil
	case entity.RefPaymentMethod:
		_, ok := st.paymentMethods[id]
		return ok, nil
	case entity.RefPaymentState:
		_, ok := st.paymentStates[id]
		return ok, nil
	default:
		return false, fmt.Errorf("tipo de referencia desconocido: %d", kind)
	}
}

func sortedByID[V any](m map[int64]V, id func(V) int64) []*V {
	out := make([]*V, 0, len(m))
	for _, v := range m {
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return id(*out[i]) < id(*out[j]) })
	return out
}

// ── Transacciones ─────────────────────────────────────────────────────────────

type transactionRepo struct{ s *Store }

func (r *transactionRepo) List(_ context.Context, f entity.TransactionFilter) ([]*entity.Transaction, error) {
	st, unlock := r.s.lock()
	defer unlock()
	list := make([]*entity.Transaction, 0)
	for _, t := range st.transactions {
		if f.InvoiceID != nil && (t.InvoiceID == nil || *t.InvoiceID != *f.InvoiceID) {
			continue
		}
		if f.ReservationID != nil && (t.ReservationID == nil || *t.ReservationID != *f.ReservationID) {
			continue
		}
		if f.Type != nil && t.Type != *f.Type {
			continue
		}
		occurred := t.OccurredAt
		if !inRange(&occurred, f.From, f.To) {
			continue
		}
		v := t
		list = append(list, &v)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].OccurredAt.Equal(list[j].OccurredAt) {
			return list[i].OccurredAt.After(list[j].OccurredAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (r *transactionRepo) GetByID(_ context.Context, id int64) (*entity.Transaction, error) {
	st, unlock := r.s.lock()
	defer unlock()
	t, ok := st.transactions[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *transactionRepo) Create(_ context.Context, in *entity.Transaction) (int64, error) {
	st, unlock := r.s.lock()
	defer unlock()
	if in.InvoiceID == nil && in.ReservationID == nil {
		return 0, fmt.Errorf("%w: transactions requiere invoiceId o reservationId", domain.ErrInvalidInput)
	}
	if in.InvoiceID != nil {
		if _, ok := st.invoices[*in.InvoiceID]; !ok {
			return 0, fmt.Errorf("%w: invoiceId no existe", domain.ErrInvalidReference)
		}
	}
	if in.ReservationID != nil {
		if _, ok := st.reservations[*in.ReservationID]; !ok {
			return 0, fmt.Errorf("%w: reservationId no existe", domain.ErrInvalidReference)
		}
	}
	t := *in
	if t.OccurredAt.IsZero() {
		t.OccurredAt = r.s.now()
	}
	t.ID = st.nextID()
	st.transactions[t.ID] = t
	return t.ID, nil
}

func (r *transactionRepo) Delete(_ context.Context, id int64) (bool, error) {
	st, unlock := r.s.lock()
	defer unlock()
	if _, ok := st.transactions[id]; !ok {
		return false, nil
	}
	delete(st.transactions, id)
	return true, nil
}
