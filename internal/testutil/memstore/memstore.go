// Package memstore implementa los puertos de repositorio en memoria para tests.
// Replica las reglas que aplica la base de datos: claves foráneas (ON DELETE NO ACTION),
// CHECK de status, unicidad de lugares por empresa, el trigger de monto total y el rollback
// de transacciones.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

type company struct{ name, code string }

type user struct{ email string }

type client struct{ first, last string }

type tariff struct {
	companyID   int64
	vehicleType string
	hourly      decimal.Decimal
	daily       *decimal.Decimal
}

type state struct {
	seq            int64
	companies      map[int64]company
	users          map[int64]user
	clients        map[int64]client
	tariffs        map[int64]tariff
	spotStates     map[int64]entity.SpotState
	paymentStates  map[int64]entity.PaymentState
	paymentMethods map[int64]entity.PaymentMethod
	spots          map[int64]entity.Spot
	reservations   map[int64]entity.Reservation
	invoices       map[int64]entity.Invoice
	transactions   map[int64]entity.Transaction
}

func newState() *state {
	return &state{
		companies:      map[int64]company{},
		users:          map[int64]user{},
		clients:        map[int64]client{},
		tariffs:        map[int64]tariff{},
		spotStates:     map[int64]entity.SpotState{},
		paymentStates:  map[int64]entity.PaymentState{},
		paymentMethods: map[int64]entity.PaymentMethod{},
		spots:          map[int64]entity.Spot{},
		reservations:   map[int64]entity.Reservation{},
		invoices:       map[int64]entity.Invoice{},
		transactions:   map[int64]entity.Transaction{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copia superficial por fila: los repositorios reemplazan punteros, nunca los mutan.
func (s *state) clone() *state {
	return &state{
		seq:            s.seq,
		companies:      cloneMap(s.companies),
		users:          cloneMap(s.users),
		clients:        cloneMap(s.clients),
		tariffs:        cloneMap(s.tariffs),
		spotStates:     cloneMap(s.spotStates),
		paymentStates:  cloneMap(s.paymentStates),
		paymentMethods: cloneMap(s.paymentMethods),
		spots:          cloneMap(s.spots),
		reservations:   cloneMap(s.reservations),
		invoices:       cloneMap(s.invoices),
		transactions:   cloneMap(s.transactions),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// Store base de datos en memoria.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	st   *state
	now  func() time.Time

	// Commits y Rollbacks cuentan las transacciones terminadas.
	Commits   int
	Rollbacks int
}

var _ repository.TxRunner = (*Store)(nil)

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// WithClock fija el reloj usado para created_at, emitted_at y occurred_at por defecto.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Stores devuelve los repositorios sobre el store (fuera de transacción).
func (s *Store) Stores() repository.Stores {
	return repository.Stores{
		Reservations: &reservationRepo{s},
		Invoices:     &invoiceRepo{s},
		Spots:        &spotRepo{s},
		References:   &referenceRepo{s},
		Transactions: &transactionRepo{s},
	}
}

// RunInTx serializa las transacciones y restaura la foto previa si fn falla.
func (s *Store) RunInTx(ctx context.Context, fn func(repository.Stores) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(s.Stores()); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.Rollbacks++
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.Commits++
	s.mu.Unlock()
	return nil
}

func (s *Store) lock() (*state, func()) {
	s.mu.Lock()
	return s.st, s.mu.Unlock
}
