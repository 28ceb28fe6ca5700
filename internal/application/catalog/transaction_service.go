package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/parqueo-api/internal/application/dto"
	"github.com/jhoicas/parqueo-api/internal/domain"
	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/parking"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

// TransactionService registro de transacciones (auditoría de facturas y reservaciones).
type TransactionService struct {
	repo  repository.TransactionRepository
	dates parking.TimestampPolicy
	now   func() time.Time
	log   zerolog.Logger
}

// NewTransactionService construye el servicio.
func NewTransactionService(repo repository.TransactionRepository, dates parking.TimestampPolicy, log zerolog.Logger) *TransactionService {
	return &TransactionService{repo: repo, dates: dates, now: time.Now, log: log}
}

// List lista transacciones filtradas.
func (s *TransactionService) List(ctx context.Context, q dto.TransactionListQuery) ([]dto.TransactionResponse, error) {
	f := entity.TransactionFilter{InvoiceID: q.InvoiceID, ReservationID: q.ReservationID, Type: q.Type}
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
	out := make([]dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTransactionResponse(t))
	}
	return out, nil
}

// Get devuelve una transacción o domain.ErrNotFound.
func (s *TransactionService) Get(ctx context.Context, id int64) (*dto.TransactionResponse, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	resp := toTransactionResponse(t)
	return &resp, nil
}

// Create registra una transacción ligada a una factura y/o reservación.
func (s *TransactionService) Create(ctx context.Context, in dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	in.Type = strings.TrimSpace(in.Type)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	occurred, err := s.resolveDate("occurredAt", in.OccurredAt)
	if err != nil {
		return nil, err
	}
	t := &entity.Transaction{
		InvoiceID:     in.InvoiceID,
		ReservationID: in.ReservationID,
		Type:          in.Type,
		Description:   in.Description,
		OccurredAt:    s.now(),
	}
	if occurred != nil {
		t.OccurredAt = *occurred
	}
	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete elimina una transacción.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *TransactionService) resolveDate(field string, raw *string) (*time.Time, error) {
	t, coerced, err := s.dates.Resolve(field, raw)
	if err != nil {
		return nil, err
	}
	if coerced {
		s.log.Warn().Str("field", field).Str("value", *raw).Msg("fecha mal formada convertida a null")
	}
	return t, nil
}

func toTransactionResponse(t *entity.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:            t.ID,
		InvoiceID:     t.InvoiceID,
		ReservationID: t.ReservationID,
		Type:          t.Type,
		Description:   t.Description,
		OccurredAt:    t.OccurredAt,
	}
}
