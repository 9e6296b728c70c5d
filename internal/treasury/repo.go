package treasury

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonthlyTotals aggregates ledger amounts for one calendar month.
type MonthlyTotals struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// Repository manages persistence for treasury transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, transaction *models.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context) ([]models.Transaction, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Transaction, error)
	Update(ctx context.Context, transaction *models.Transaction) error
	SumAmounts(ctx context.Context, reconciledOnly bool) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a treasury repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&transaction).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *repository) List(ctx context.Context) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.WithContext(ctx).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *repository) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("related_event_id = ?", eventID).
		Order("created_at ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *repository) Update(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Save(transaction).Error
}

func (r *repository) SumAmounts(ctx context.Context, reconciledOnly bool) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if reconciledOnly {
		query = query.Where("is_reconciled = ?", true)
	}
	var total decimal.NullDecimal
	if err := query.
		Select("SUM(amount)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// monthKey formats a date as YYYY-MM for grouping.
func monthKey(date time.Time) string {
	return date.Format("2006-01")
}
