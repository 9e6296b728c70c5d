package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository manages persistence for stockroom products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, includeInactive bool) ([]models.Product, error)
	ListLowStock(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	SetStock(ctx context.Context, id uuid.UUID, qty int, auditedAt *time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("current_stock <= min_stock").
		Order("current_stock ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// DecrementStock applies a guarded decrement. Zero rows affected means the
// product is missing, inactive, or short on stock.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND is_active = ? AND current_stock >= ?", id, true, qty).
		Update("current_stock", gorm.Expr("current_stock - ?", qty))
	return result.RowsAffected, result.Error
}

func (r *repository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("current_stock", gorm.Expr("current_stock + ?", qty))
	return result.RowsAffected, result.Error
}

func (r *repository) SetStock(ctx context.Context, id uuid.UUID, qty int, auditedAt *time.Time) error {
	updates := map[string]any{"current_stock": qty}
	if auditedAt != nil {
		updates["last_audit_date"] = *auditedAt
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}
