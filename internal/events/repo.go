package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository manages persistence for events and their consumption lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	ZoneBooked(ctx context.Context, zoneID uuid.UUID, date time.Time, excludeID uuid.UUID) (bool, error)
	AddConsumption(ctx context.Context, consumption *models.EventConsumption) error
	FindConsumption(ctx context.Context, eventID, consumptionID uuid.UUID) (*models.EventConsumption, error)
	DeleteConsumption(ctx context.Context, consumptionID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an events repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).
		Preload("Consumptions").
		Where("id = ?", id).
		First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).
		Preload("Consumptions").
		Order("date DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) Update(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit("Consumptions").Save(event).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Select("Consumptions").
		Delete(&models.Event{ID: id}).Error
}

// ZoneBooked reports whether a non-cancelled event already holds the zone on
// the same calendar day.
func (r *repository) ZoneBooked(ctx context.Context, zoneID uuid.UUID, date time.Time, excludeID uuid.UUID) (bool, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("zone_id = ?", zoneID).
		Where("date >= ? AND date < ?", dayStart, dayEnd).
		Where("status <> ?", enums.EventStatusCancelled)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) AddConsumption(ctx context.Context, consumption *models.EventConsumption) error {
	return r.db.WithContext(ctx).Create(consumption).Error
}

func (r *repository) FindConsumption(ctx context.Context, eventID, consumptionID uuid.UUID) (*models.EventConsumption, error) {
	var consumption models.EventConsumption
	if err := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", consumptionID, eventID).
		First(&consumption).Error; err != nil {
		return nil, err
	}
	return &consumption, nil
}

func (r *repository) DeleteConsumption(ctx context.Context, consumptionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.EventConsumption{}, "id = ?", consumptionID).Error
}
