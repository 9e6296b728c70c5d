package members

import (
	"context"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository manages persistence for club members.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	FindByPIN(ctx context.Context, pin string) (*models.Member, error)
	FindByDNI(ctx context.Context, dni string) (*models.Member, error)
	List(ctx context.Context) ([]models.Member, error)
	ListByStatus(ctx context.Context, status enums.MemberStatus) ([]models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a members repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) FindByPIN(ctx context.Context, pin string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).
		Where("pin = ? AND status = ?", pin, enums.MemberStatusActive).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) FindByDNI(ctx context.Context, dni string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).
		Where("dni = ?", dni).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) List(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	if err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.MemberStatus) ([]models.Member, error) {
	var members []models.Member
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("full_name ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Member{}, "id = ?", id).Error
}
