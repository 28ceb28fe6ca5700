package catalog

import (
	"context"

	"github.com/jhoicas/parqueo-api/internal/application/dto"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

// ReferenceService lecturas de los catálogos de referencia.
type ReferenceService struct {
	repo repository.ReferenceRepository
}

// NewReferenceService construye el servicio.
func NewReferenceService(repo repository.ReferenceRepository) *ReferenceService {
	return &ReferenceService{repo: repo}
}

func (s *ReferenceService) SpotStates(ctx context.Context) ([]dto.SpotStateResponse, error) {
	list, err := s.repo.ListSpotStates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SpotStateResponse, 0, len(list))
	for _, st := range list {
		out = append(out, dto.SpotStateResponse{ID: st.ID, Name: st.Name})
	}
	return out, nil
}

func (s *ReferenceService) PaymentStates(ctx context.Context) ([]dto.PaymentStateResponse, error) {
	list, err := s.repo.ListPaymentStates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentStateResponse, 0, len(list))
	for _, st := range list {
		out = append(out, dto.PaymentStateResponse{ID: st.ID, Description: st.Description})
	}
	return out, nil
}

func (s *ReferenceService) PaymentMethods(ctx context.Context) ([]dto.PaymentMethodResponse, error) {
	list, err := s.repo.ListPaymentMethods(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentMethodResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.PaymentMethodResponse{ID: m.ID, Description: m.Description})
	}
	return out, nil
}
