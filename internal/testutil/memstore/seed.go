package memstore

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
)

// Fixture ids de los datos sembrados por Seeded.
type Fixture struct {
	CompanyID      int64
	UserID         int64
	ClientID       int64
	TariffID       int64
	SpotID         int64
	OtherSpotID    int64
	FreeStateID    int64
	OccupiedState  int64
	PaidStateID    int64
	PendingStateID int64
	CancelStateID  int64
	CashMethodID   int64
}

// Seeded crea un store con una empresa, usuario, cliente, tarifa (2.50/h, 20.00/día),
// dos lugares libres y los catálogos Libre/Ocupado, Pagado/Pendiente/Cancelado, Efectivo/Tarjeta.
func Seeded() (*Store, Fixture) {
	s := New()
	var f Fixture
	f.CompanyID = s.AddCompany("Parqueo Centro", "PC01")
	f.UserID = s.AddUser("caja@parqueo.test")
	f.ClientID = s.AddClient("Ana", "Pérez")
	daily := decimal.RequireFromString("20.00")
	f.TariffID = s.AddTariff(f.CompanyID, "auto", decimal.RequireFromString("2.50"), &daily)
	f.FreeStateID = s.AddSpotState("Libre")
	f.OccupiedState = s.AddSpotState("Ocupado")
	f.PaidStateID = s.AddPaymentState("Pagado")
	f.PendingStateID = s.AddPaymentState("Pendiente")
	f.CancelStateID = s.AddPaymentState("Cancelado")
	f.CashMethodID = s.AddPaymentMethod("Efectivo")
	s.AddPaymentMethod("Tarjeta")
	f.SpotID = s.AddSpot(f.CompanyID, f.FreeStateID, "A-01")
	f.OtherSpotID = s.AddSpot(f.CompanyID, f.FreeStateID, "A-02")
	return s, f
}

func (s *Store) AddCompany(name, code string) int64 {
	st, unlock := s.lock()
	defer unlock()
	id := st.nextID()
	st.companies[id] = company{name: name, code: code}
	return id
}

func (s *Store) AddUser(email string) int64 {
	st, unlock := s.lock()
	defer unlock()
	id := st.nextID()
	st.users[id] = user{email: email}
	return id
}

func (s *Store) AddClient(first, last string) int64 {
	st, unlock := s.lock()
	defer unlock()
	id := st.nextID()
	st.clients[id] = client{first: first, last: last}
	return id
}

func (s *Store) AddTariff(companyID int64, vehicleType string, hourly decimal.Decimal, daily *decimal.Decimal) int64 {
	st, unlock := s.lock()
	defer unlock()
	id := st.nextID()
	st.tariffs[id] = tariff{companyID: companyID, vehicleType: vehicleType, hourly: hourly, daily: daily}
	return id
}

func (s *Store) AddSpotState(name string) int64 {
	st, unlock := s.lock()
	defer unlock()
	id := st.nextID()
	st.spotStates[id] = entity.SpotState{ID: id, Name: name}
	return id
}

func (s *Store) AddPaymentState(description string) int64 {
	st, unlock := s.lock()
	defer unlock()
	id := st.nextID()
	st.paymentStates[id] = entity.PaymentState{ID: id, Description: description}
	return id
}

func (s *Store) AddPaymentMethod(description string) int64 {
	st, unlock := s.lock()
	defer unlock()
	id := st.nextID()
	st.paymentMethods[id] = entity.PaymentMethod{ID: id, Description: description}
	return id
}

func (s *Store) AddSpot(companyID, stateID int64, name string) int64 {
	st, unlock := s.lock()
	defer unlock()
	id := st.nextID()
	st.spots[id] = entity.Spot{ID: id, CompanyID: companyID, StateID: stateID, Name: name}
	return id
}

// RemoveSpotState borra un estado de lugar sin validar referencias (simula catálogo incompleto).
func (s *Store) RemoveSpotState(id int64) {
	st, unlock := s.lock()
	defer unlock()
	delete(st.spotStates, id)
}

// PutReservation inserta una reservación tal cual, sin validaciones (arrange de tests).
func (s *Store) PutReservation(r entity.Reservation) int64 {
	st, unlock := s.lock()
	defer unlock()
	if r.ID == 0 {
		r.ID = st.nextID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	st.reservations[r.ID] = r
	return r.ID
}

// PutInvoice inserta una factura tal cual, sin validaciones.
func (s *Store) PutInvoice(inv entity.Invoice) int64 {
	st, unlock := s.lock()
	defer unlock()
	if inv.ID == 0 {
		inv.ID = st.nextID()
	}
	if inv.EmittedAt == nil {
		now := s.now()
		inv.EmittedAt = &now
	}
	st.invoices[inv.ID] = inv
	return inv.ID
}

// Reservation devuelve la fila cruda.
func (s *Store) Reservation(id int64) (entity.Reservation, bool) {
	st, unlock := s.lock()
	defer unlock()
	r, ok := st.reservations[id]
	return r, ok
}

// Invoice devuelve la fila cruda.
func (s *Store) Invoice(id int64) (entity.Invoice, bool) {
	st, unlock := s.lock()
	defer unlock()
	inv, ok := st.invoices[id]
	return inv, ok
}

// Spot devuelve la fila cruda.
func (s *Store) Spot(id int64) (entity.Spot, bool) {
	st, unlock := s.lock()
	defer unlock()
	sp, ok := st.spots[id]
	return sp, ok
}

// Transactions devuelve todas las transacciones registradas.
func (s *Store) Transactions() []entity.Transaction {
	st, unlock := s.lock()
	defer unlock()
	out := make([]entity.Transaction, 0, len(st.transactions))
	for _, t := range st.transactions {
		out = append(out, t)
	}
	return out
}

