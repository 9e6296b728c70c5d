package locations

import (
	"context"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository manages persistence for bookable clubhouse zones.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, location *models.Location) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
	Update(ctx context.Context, location *models.Location) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a locations repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) List(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *repository) Update(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Location{}, "id = ?", id).Error
}
