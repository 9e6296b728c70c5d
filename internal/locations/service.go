package locations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service manages the catalog of bookable zones.
type Service interface {
	Create(ctx context.Context, input LocationInput) (*models.Location, error)
	Update(ctx context.Context, id uuid.UUID, input LocationInput) (*models.Location, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// LocationInput captures the editable fields of a zone.
type LocationInput struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func (i LocationInput) validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "location name is required")
	}
	if i.Capacity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "capacity cannot be negative")
	}
	return nil
}

// NewService wires a locations service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("locations repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input LocationInput) (*models.Location, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	location := &models.Location{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(input.Name),
		Capacity: input.Capacity,
	}
	if err := s.repo.Create(ctx, location); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create location")
	}
	return location, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input LocationInput) (*models.Location, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	location, err := s.loadLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	location.Name = strings.TrimSpace(input.Name)
	location.Capacity = input.Capacity

	if err := s.repo.Update(ctx, location); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update location")
	}
	return location, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id is required")
	}
	return s.loadLocation(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.Location, error) {
	locations, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list locations")
	}
	return locations, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "location id is required")
	}
	if _, err := s.loadLocation(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete location")
	}
	return nil
}

func (s *service) loadLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
	}
	return location, nil
}
