// Package catalog agrupa el CRUD de soporte: lugares, registro de transacciones y catálogos de referencia.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/parqueo-api/internal/application/dto"
	"github.com/jhoicas/parqueo-api/internal/domain"
	"github.com/jhoicas/parqueo-api/internal/domain/entity"
	"github.com/jhoicas/parqueo-api/internal/domain/repository"
)

// SpotService casos de uso de lugares de estacionamiento.
type SpotService struct {
	repo repository.SpotRepository
}

// NewSpotService construye el servicio.
func NewSpotService(repo repository.SpotRepository) *SpotService {
	return &SpotService{repo: repo}
}

// List lista los lugares, opcionalmente de una empresa.
func (s *SpotService) List(ctx context.Context, companyID *int64) ([]dto.SpotResponse, error) {
	list, err := s.repo.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SpotResponse, 0, len(list))
	for _, sp := range list {
		out = append(out, toSpotResponse(sp))
	}
	return out, nil
}

// Get devuelve un lugar o domain.ErrNotFound.
func (s *SpotService) Get(ctx context.Context, id int64) (*dto.SpotResponse, error) {
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, domain.ErrNotFound
	}
	resp := toSpotResponse(sp)
	return &resp, nil
}

// Create inserta un lugar. Empresa o estado inexistentes llegan como domain.ErrInvalidReference.
func (s *SpotService) Create(ctx context.Context, in dto.CreateSpotRequest) (*dto.SpotResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, &entity.Spot{
		CompanyID:   *in.CompanyID,
		StateID:     *in.StateID,
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Update aplica una actualización parcial.
func (s *SpotService) Update(ctx context.Context, id int64, in dto.UpdateSpotRequest) (*dto.SpotResponse, error) {
	var p entity.SpotPatch
	if in.CompanyID.Set {
		if in.CompanyID.Null {
			return nil, fmt.Errorf("%w: companyId no puede ser null", domain.ErrInvalidInput)
		}
		p.CompanyID = entity.SetTo(in.CompanyID.Value)
	}
	if in.StateID.Set {
		if in.StateID.Null {
			return nil, fmt.Errorf("%w: stateId no puede ser null", domain.ErrInvalidInput)
		}
		p.StateID = entity.SetTo(in.StateID.Value)
	}
	if in.Name.Set {
		name := strings.TrimSpace(in.Name.Value)
		if in.Name.Null || name == "" {
			return nil, fmt.Errorf("%w: name no puede estar vacío", domain.ErrInvalidInput)
		}
		p.Name = entity.SetTo(name)
	}
	if in.Description.Set {
		p.Description = entity.SetTo(in.Description.Ptr())
	}
	if p.Empty() {
		return nil, fmt.Errorf("%w: nada para actualizar", domain.ErrInvalidInput)
	}

	ok, err := s.repo.Patch(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete elimina el lugar; con reservaciones asociadas devuelve domain.ErrInUse.
func (s *SpotService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func toSpotResponse(sp *entity.Spot) dto.SpotResponse {
	return dto.SpotResponse{
		ID:          sp.ID,
		CompanyID:   sp.CompanyID,
		StateID:     sp.StateID,
		Name:        sp.Name,
		Description: sp.Description,
		CompanyName: sp.CompanyName,
		CompanyCode: sp.CompanyCode,
		StateName:   sp.StateName,
	}
}
