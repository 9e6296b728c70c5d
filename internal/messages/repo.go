package messages

import (
	"context"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository manages persistence for the member message board.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, message *models.UserMessage) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.UserMessage, error)
	List(ctx context.Context) ([]models.UserMessage, error)
	ListForRecipient(ctx context.Context, memberID uuid.UUID) ([]models.UserMessage, error)
	Update(ctx context.Context, message *models.UserMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a messages repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, message *models.UserMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.UserMessage, error) {
	var message models.UserMessage
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *repository) List(ctx context.Context) ([]models.UserMessage, error) {
	var messages []models.UserMessage
	if err := r.db.WithContext(ctx).
		Order("sent_at DESC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ListForRecipient returns board-wide broadcasts plus messages addressed to
// the member.
func (r *repository) ListForRecipient(ctx context.Context, memberID uuid.UUID) ([]models.UserMessage, error) {
	var messages []models.UserMessage
	if err := r.db.WithContext(ctx).
		Where("recipient_id IS NULL OR recipient_id = ?", memberID).
		Order("sent_at DESC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repository) Update(ctx context.Context, message *models.UserMessage) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.UserMessage{}, "id = ?", id).Error
}
