package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// LocationUseCase casos de uso CRUD para ubicaciones (bodegas y sucursales).
type LocationUseCase struct {
	repo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo}
}

// Create crea una nueva ubicación activa.
func (uc *LocationUseCase) Create(ctx context.Context, businessID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	now := time.Now()
	location := &entity.Location{
		ID:         uuid.New().String(),
		BusinessID: businessID,
		Name:       name,
		Address:    in.Address,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// GetByID obtiene una ubicación del negocio.
func (uc *LocationUseCase) GetByID(ctx context.Context, businessID, id string) (*dto.LocationResponse, error) {
	location, err := uc.get(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// Update actualiza nombre, dirección o estado de una ubicación.
func (uc *LocationUseCase) Update(ctx context.Context, businessID, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	location, err := uc.get(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		location.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		location.Address = *in.Address
	}
	if in.IsActive != nil {
		location.IsActive = *in.IsActive
	}
	location.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// List lista ubicaciones del negocio con paginación.
func (uc *LocationUseCase) List(ctx context.Context, businessID string, limit, offset int) (*dto.LocationListResponse, error) {
	list, err := uc.repo.ListByBusiness(ctx, businessID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func (uc *LocationUseCase) get(ctx context.Context, businessID, id string) (*entity.Location, error) {
	location, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil || location.BusinessID != businessID {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
	}
	return location, nil
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:         l.ID,
		BusinessID: l.BusinessID,
		Name:       l.Name,
		Address:    l.Address,
		IsActive:   l.IsActive,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}
