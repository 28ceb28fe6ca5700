package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/parqueo-api/internal/domain"
	"github.com/jhoicas/parqueo-api/internal/domain/billing"
	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/parking"
)

type reservationRepo struct{ s *Store }

func (st *state) joinReservation(r entity.Reservation) *entity.Reservation {
	r.CompanyName = st.companies[r.CompanyID].name
	c := st.clients[r.ClientID]
	r.ClientName, r.ClientLastName = c.first, c.last
	r.SpotName = st.spots[r.SpotID].Name
	r.VehicleType = st.tariffs[r.TariffID].vehicleType
	return &r
}

// checkReservationRefs replica las FK y el CHECK de status de la tabla reservations.
func (st *state) checkReservationRefs(r entity.Reservation) error {
	refs := []struct {
		field string
		ok    bool
	}{
		{"userId", st.hasUser(r.UserID)},
		{"companyId", st.hasCompany(r.CompanyID)},
		{"tariffId", st.hasTariff(r.TariffID)},
		{"clientId", st.hasClient(r.ClientID)},
		{"spotId", st.hasSpot(r.SpotID)},
	}
	for _, ref := range refs {
		if !ref.ok {
			return fmt.Errorf("%w: %s no existe", domain.ErrInvalidReference, ref.field)
		}
	}
	if status, ok := parking.ParseStatus(r.Status); !ok || string(status) != r.Status {
		return fmt.Errorf("%w: status fuera del CHECK: %s", domain.ErrInvalidInput, r.Status)
	}
	return nil
}

// computeTotal replica el trigger reservations_compute_total.
func (st *state) computeTotal(r *entity.Reservation) {
	if r.ExitTime == nil {
		r.TotalAmount = nil
		return
	}
	t, ok := st.tariffs[r.TariffID]
	if !ok {
		return
	}
	start := r.CreatedAt
	if r.EntryTime != nil {
		start = *r.EntryTime
	}
	total := billing.ParkingCharge(start, *r.ExitTime, t.hourly, t.daily)
	r.TotalAmount = &total
}

func (st *state) hasUser(id int64) bool    { _, ok := st.users[id]; return ok }
func (st *state) hasCompany(id int64) bool { _, ok := st.companies[id]; return ok }
func (st *state) hasTariff(id int64) bool  { _, ok := st.tariffs[id]; return ok }
func (st *state) hasClient(id int64) bool  { _, ok := st.clients[id]; return ok }
func (st *state) hasSpot(id int64) bool    { _, ok := st.spots[id]; return ok }

func inRange(t *time.Time, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if t == nil {
		return false
	}
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func (r *reservationRepo) List(_ context.Context, f entity.ReservationFilter) ([]*entity.Reservation, error) {
	st, unlock := r.s.lock()
	defer unlock()
	list := make([]*entity.Reservation, 0)
	for _, res := range st.reservations {
		if f.CompanyID != nil && res.CompanyID != *f.CompanyID {
			continue
		}
		if f.ClientID != nil && res.ClientID != *f.ClientID {
			continue
		}
		if f.Status != nil && !strings.EqualFold(res.Status, *f.Status) {
			continue
		}
		if !inRange(res.EntryTime, f.From, f.To) {
			continue
		}
		list = append(list, st.joinReservation(res))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r *reservationRepo) GetByID(_ context.Context, id int64) (*entity.Reservation, error) {
	st, unlock := r.s.lock()
	defer unlock()
	res, ok := st.reservations[id]
	if !ok {
		return nil, nil
	}
	return st.joinReservation(res), nil
}

func (r *reservationRepo) Create(_ context.Context, in *entity.Reservation) (int64, error) {
	st, unlock := r.s.lock()
	defer unlock()
	res := entity.Reservation{
		UserID:    in.UserID,
		CompanyID: in.CompanyID,
		TariffID:  in.TariffID,
		ClientID:  in.ClientID,
		SpotID:    in.SpotID,
		EntryTime: in.EntryTime,
		Status:    in.Status,
		CreatedAt: r.s.now(),
	}
	if err := st.checkReservationRefs(res); err != nil {
		return 0, err
	}
	res.ID = st.nextID()
	st.computeTotal(&res)
	st.reservations[res.ID] = res
	return res.ID, nil
}

func (r *reservationRepo) Patch(_ context.Context, id int64, p entity.ReservationPatch) (bool, error) {
	st, unlock := r.s.lock()
	defer unlock()
	old, ok := st.reservations[id]
	if !ok {
		return false, nil
	}
	res := old
	if p.UserID.Set {
		res.UserID = p.UserID.Value
	}
	if p.CompanyID.Set {
		res.CompanyID = p.CompanyID.Value
	}
	if p.TariffID.Set {
		res.TariffID = p.TariffID.Value
	}
	if p.ClientID.Set {
		res.ClientID = p.ClientID.Value
	}
	if p.SpotID.Set {
		res.SpotID = p.SpotID.Value
	}
	if p.Status.Set {
		res.Status = p.Status.Value
	}
	if p.EntryTime.Set {
		res.EntryTime = p.EntryTime.Value
	}
	if p.ExitTime.Set {
		res.ExitTime = p.ExitTime.Value
	}
	if err := st.checkReservationRefs(res); err != nil {
		return false, err
	}
	if res.ExitTime == nil || !sameTime(old.ExitTime, res.ExitTime) || !sameTime(old.EntryTime, res.EntryTime) || old.TariffID != res.TariffID {
		st.computeTotal(&res)
	}
	st.reservations[id] = res
	return true, nil
}

func (r *reservationRepo) Close(_ context.Context, id int64, now time.Time) (bool, error) {
	st, unlock := r.s.lock()
	defer unlock()
	res, ok := st.reservations[id]
	if !ok || !strings.EqualFold(res.Status, string(parking.StatusConfirmed)) || res.ExitTime != nil {
		return false, nil
	}
	res.Status = string(parking.StatusCompleted)
	res.ExitTime = &now
	st.computeTotal(&res)
	st.reservations[id] = res
	return true, nil
}

func (r *reservationRepo) SetStatus(_ context.Context, id int64, status string) error {
	st, unlock := r.s.lock()
	defer unlock()
	res, ok := st.reservations[id]
	if !ok {
		return nil
	}
	res.Status = status
	st.reservations[id] = res
	return nil
}

func (r *reservationRepo) Delete(_ context.Context, id int64) (bool, error) {
	st, unlock := r.s.lock()
	defer unlock()
	if _, ok := st.reservations[id]; !ok {
		return false, nil
	}
	for _, inv := range st.invoices {
		if inv.ReservationID != nil && *inv.ReservationID == id {
			return false, fmt.Errorf("%w (restricción invoices_reservation_id_fkey)", domain.ErrInUse)
		}
	}
	for _, t := range st.transactions {
		if t.ReservationID != nil && *t.ReservationID == id {
			return false, fmt.Errorf("%w (restricción transactions_reservation_id_fkey)", domain.ErrInUse)
		}
	}
	delete(st.reservations, id)
	return true, nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
