package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/internal/treasury"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/irmandades/ghala-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the inventory ledger. Stock only moves through these
// operations or an explicit catalog update.
type Service interface {
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, includeInactive bool) ([]models.Product, error)
	LowStockReport(ctx context.Context) ([]models.Product, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (*models.Product, error)
	IncrementStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	RecordPurchase(ctx context.Context, input PurchaseInput) (*models.Product, error)
	ApplyShrinkage(ctx context.Context, input ShrinkageInput) (*models.Product, error)
	ApplyAudit(ctx context.Context, input AuditInput) (*AuditResult, error)
}

type service struct {
	repo     Repository
	treasury treasury.Repository
	runner   TxRunner
	metrics  *metrics.DomainMetrics
}

// ProductInput captures the catalog fields of a product.
type ProductInput struct {
	Name           string                `json:"name"`
	Category       enums.ProductCategory `json:"category"`
	Unit           string                `json:"unit"`
	CurrentStock   int                   `json:"current_stock"`
	MinStock       int                   `json:"min_stock"`
	EmergencyStock int                   `json:"emergency_stock"`
	CostPrice      decimal.Decimal       `json:"cost_price"`
	SalePrice      decimal.Decimal       `json:"sale_price"`
	Provider       string                `json:"provider"`
}

// PurchaseInput restocks a product and books the expense.
type PurchaseInput struct {
	ProductID     uuid.UUID           `json:"product_id"`
	Qty           int                 `json:"qty"`
	Date          time.Time           `json:"date"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
}

// ShrinkageInput writes off lost or spoiled stock.
type ShrinkageInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Qty       int       `json:"qty"`
	Reason    string    `json:"reason"`
}

// AuditInput reconciles counted stock against the recorded level.
type AuditInput struct {
	ProductID  uuid.UUID `json:"product_id"`
	CountedQty int       `json:"counted_qty"`
}

// AuditResult reports the applied audit.
type AuditResult struct {
	Product  *models.Product `json:"product"`
	Variance int             `json:"variance"`
}

func (i ProductInput) validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if !i.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product category %q", i.Category))
	}
	if strings.TrimSpace(i.Unit) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product unit is required")
	}
	if i.CurrentStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "current stock cannot be negative")
	}
	if i.MinStock < 0 || i.EmergencyStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock thresholds cannot be negative")
	}
	if i.CostPrice.IsNegative() || i.SalePrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	return nil
}

// NewService wires an inventory service with its repositories.
func NewService(repo Repository, treasuryRepo treasury.Repository, runner TxRunner, domainMetrics *metrics.DomainMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if treasuryRepo == nil {
		return nil, fmt.Errorf("treasury repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:     repo,
		treasury: treasuryRepo,
		runner:   runner,
		metrics:  domainMetrics,
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(input.Name),
		Category:       input.Category,
		Unit:           strings.TrimSpace(input.Unit),
		CurrentStock:   input.CurrentStock,
		MinStock:       input.MinStock,
		EmergencyStock: input.EmergencyStock,
		CostPrice:      input.CostPrice,
		SalePrice:      input.SalePrice,
		Provider:       strings.TrimSpace(input.Provider),
		IsActive:       true,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Category = input.Category
	product.Unit = strings.TrimSpace(input.Unit)
	product.CurrentStock = input.CurrentStock
	product.MinStock = input.MinStock
	product.EmergencyStock = input.EmergencyStock
	product.CostPrice = input.CostPrice
	product.SalePrice = input.SalePrice
	product.Provider = strings.TrimSpace(input.Provider)

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

func (s *service) DeactivateProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.IsActive = false
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return product, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.loadProduct(ctx, id)
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	products, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *service) LowStockReport(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock products")
	}
	return products, nil
}

// DecrementStock moves stock down inside the caller's transaction when one
// is supplied. The guarded update either applies fully or not at all.
func (s *service) DecrementStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	repo := s.repo.WithTx(tx)
	product, err := s.loadProductWith(ctx, repo, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is inactive")
	}

	affected, err := repo.DecrementStock(ctx, productID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").WithDetails(map[string]any{
			"product_id": productID,
			"requested":  qty,
			"available":  product.CurrentStock,
		})
	}

	s.metrics.IncStockMovement("decrement")
	product.CurrentStock -= qty
	return product, nil
}

// IncrementStock moves stock back up, typically when a consumption line is
// removed. Missing products are a no-op for the caller to log.
func (s *service) IncrementStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	affected, err := s.repo.WithTx(tx).IncrementStock(ctx, productID, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment stock")
	}
	if affected > 0 {
		s.metrics.IncStockMovement("increment")
	}
	return nil
}

func (s *service) RecordPurchase(ctx context.Context, input PurchaseInput) (*models.Product, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var product *models.Product
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadProductWith(ctx, repo, input.ProductID)
		if err != nil {
			return err
		}

		if _, err := repo.IncrementStock(ctx, input.ProductID, input.Qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock product")
		}

		cost := loaded.CostPrice.Mul(decimal.NewFromInt(int64(input.Qty)))
		entry := &models.Transaction{
			ID:            uuid.New(),
			Date:          date,
			Description:   fmt.Sprintf("Purchase: %s x%d", loaded.Name, input.Qty),
			Amount:        cost.Neg(),
			Category:      enums.TransactionCategorySuppliesPurchase,
			PaymentMethod: input.PaymentMethod,
		}
		if err := s.treasury.WithTx(tx).Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "book purchase expense")
		}

		loaded.CurrentStock += input.Qty
		product = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncStockMovement("purchase")
	return product, nil
}

func (s *service) ApplyShrinkage(ctx context.Context, input ShrinkageInput) (*models.Product, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var product *models.Product
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadProductWith(ctx, repo, input.ProductID)
		if err != nil {
			return err
		}

		// stock floors at zero; the write-off is still valued at the full qty
		removed := input.Qty
		if removed > loaded.CurrentStock {
			removed = loaded.CurrentStock
		}
		if err := repo.SetStock(ctx, loaded.ID, loaded.CurrentStock-removed, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write off stock")
		}

		description := fmt.Sprintf("Shrinkage: %s x%d", loaded.Name, input.Qty)
		if reason := strings.TrimSpace(input.Reason); reason != "" {
			description = fmt.Sprintf("%s (%s)", description, reason)
		}
		loss := loaded.CostPrice.Mul(decimal.NewFromInt(int64(input.Qty)))
		entry := &models.Transaction{
			ID:            uuid.New(),
			Date:          time.Now().UTC(),
			Description:   description,
			Amount:        loss.Neg(),
			Category:      enums.TransactionCategoryOther,
			PaymentMethod: enums.PaymentMethodNone,
		}
		if err := s.treasury.WithTx(tx).Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "book shrinkage loss")
		}

		loaded.CurrentStock -= removed
		product = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncStockMovement("shrinkage")
	return product, nil
}

func (s *service) ApplyAudit(ctx context.Context, input AuditInput) (*AuditResult, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.CountedQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counted quantity cannot be negative")
	}

	var result *AuditResult
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadProductWith(ctx, repo, input.ProductID)
		if err != nil {
			return err
		}

		variance := input.CountedQty - loaded.CurrentStock
		now := time.Now().UTC()
		if err := repo.SetStock(ctx, loaded.ID, input.CountedQty, &now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set counted stock")
		}

		if variance != 0 {
			value := loaded.CostPrice.Mul(decimal.NewFromInt(int64(variance)))
			entry := &models.Transaction{
				ID:            uuid.New(),
				Date:          now,
				Description:   fmt.Sprintf("Audit adjustment: %s (%+d)", loaded.Name, variance),
				Amount:        value,
				Category:      enums.TransactionCategoryOther,
				PaymentMethod: enums.PaymentMethodNone,
			}
			if err := s.treasury.WithTx(tx).Create(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "book audit adjustment")
			}
		}

		loaded.CurrentStock = input.CountedQty
		loaded.LastAuditDate = &now
		result = &AuditResult{Product: loaded, Variance: variance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncStockMovement("audit")
	return result, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.loadProductWith(ctx, s.repo, id)
}

func (s *service) loadProductWith(ctx context.Context, repo Repository, id uuid.UUID) (*models.Product, error) {
	product, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
