package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/internal/treasury"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubRepo struct {
	products map[uuid.UUID]*models.Product
	err      error
}

func newStubRepo(products ...*models.Product) *stubRepo {
	byID := map[uuid.UUID]*models.Product{}
	for _, product := range products {
		byID[product.ID] = product
	}
	return &stubRepo{products: byID}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, product *models.Product) error {
	if s.err != nil {
		return s.err
	}
	s.products[product.ID] = product
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (s *stubRepo) List(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	var products []models.Product
	for _, product := range s.products {
		if !includeInactive && !product.IsActive {
			continue
		}
		products = append(products, *product)
	}
	return products, nil
}

func (s *stubRepo) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	for _, product := range s.products {
		if product.IsActive && product.CurrentStock <= product.MinStock {
			products = append(products, *product)
		}
	}
	return products, nil
}

func (s *stubRepo) Update(ctx context.Context, product *models.Product) error {
	if s.err != nil {
		return s.err
	}
	s.products[product.ID] = product
	return nil
}

func (s *stubRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	product, ok := s.products[id]
	if !ok || !product.IsActive || product.CurrentStock < qty {
		return 0, nil
	}
	product.CurrentStock -= qty
	return 1, nil
}

func (s *stubRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	product, ok := s.products[id]
	if !ok {
		return 0, nil
	}
	product.CurrentStock += qty
	return 1, nil
}

func (s *stubRepo) SetStock(ctx context.Context, id uuid.UUID, qty int, auditedAt *time.Time) error {
	product, ok := s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	product.CurrentStock = qty
	if auditedAt != nil {
		product.LastAuditDate = auditedAt
	}
	return nil
}

type stubTreasuryRepo struct {
	created []models.Transaction
	err     error
}

func (s *stubTreasuryRepo) WithTx(tx *gorm.DB) treasury.Repository { return s }

func (s *stubTreasuryRepo) Create(ctx context.Context, transaction *models.Transaction) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *transaction)
	return nil
}

func (s *stubTreasuryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTreasuryRepo) List(ctx context.Context) ([]models.Transaction, error) {
	return s.created, nil
}

func (s *stubTreasuryRepo) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Transaction, error) {
	return nil, nil
}

func (s *stubTreasuryRepo) Update(ctx context.Context, transaction *models.Transaction) error {
	return nil
}

func (s *stubTreasuryRepo) SumAmounts(ctx context.Context, reconciledOnly bool) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubRunner struct{}

func (stubRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func wineProduct() *models.Product {
	return &models.Product{
		ID:           uuid.New(),
		Name:         "Wine",
		Category:     enums.ProductCategoryBeverage,
		Unit:         "bottle",
		CurrentStock: 12,
		MinStock:     6,
		CostPrice:    decimal.RequireFromString("4.50"),
		SalePrice:    decimal.RequireFromString("10.00"),
		IsActive:     true,
	}
}

func newTestService(t *testing.T, repo *stubRepo, treasuryRepo *stubTreasuryRepo) Service {
	t.Helper()
	svc, err := NewService(repo, treasuryRepo, stubRunner{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := NewService(nil, &stubTreasuryRepo{}, stubRunner{}, nil); err == nil {
		t.Fatal("expected error without inventory repo")
	}
	if _, err := NewService(newStubRepo(), nil, stubRunner{}, nil); err == nil {
		t.Fatal("expected error without treasury repo")
	}
	if _, err := NewService(newStubRepo(), &stubTreasuryRepo{}, nil, nil); err == nil {
		t.Fatal("expected error without tx runner")
	}
}

func TestDecrementStockHappyPath(t *testing.T) {
	product := wineProduct()
	repo := newStubRepo(product)
	svc := newTestService(t, repo, &stubTreasuryRepo{})

	updated, err := svc.DecrementStock(context.Background(), nil, product.ID, 4)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if updated.CurrentStock != 8 {
		t.Fatalf("expected stock 8, got %d", updated.CurrentStock)
	}
	if repo.products[product.ID].CurrentStock != 8 {
		t.Fatalf("expected stored stock 8, got %d", repo.products[product.ID].CurrentStock)
	}
}

func TestDecrementStockInsufficient(t *testing.T) {
	product := wineProduct()
	product.CurrentStock = 3
	repo := newStubRepo(product)
	svc := newTestService(t, repo, &stubTreasuryRepo{})

	_, gotErr := svc.DecrementStock(context.Background(), nil, product.ID, 4)
	if gotErr == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(gotErr)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock code, got %v", gotErr)
	}
	if repo.products[product.ID].CurrentStock != 3 {
		t.Fatalf("stock must not move on failure, got %d", repo.products[product.ID].CurrentStock)
	}
}

func TestDecrementStockInactiveProduct(t *testing.T) {
	product := wineProduct()
	product.IsActive = false
	svc := newTestService(t, newStubRepo(product), &stubTreasuryRepo{})

	_, gotErr := svc.DecrementStock(context.Background(), nil, product.ID, 1)
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", gotErr)
	}
}

func TestDecrementStockMissingProduct(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubTreasuryRepo{})

	_, gotErr := svc.DecrementStock(context.Background(), nil, uuid.New(), 1)
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", gotErr)
	}
}

func TestIncrementStockMissingProductIsNoop(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubTreasuryRepo{})

	if err := svc.IncrementStock(context.Background(), nil, uuid.New(), 4); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestRecordPurchaseRestocksAndBooksExpense(t *testing.T) {
	product := wineProduct()
	repo := newStubRepo(product)
	treasuryRepo := &stubTreasuryRepo{}
	svc := newTestService(t, repo, treasuryRepo)

	updated, err := svc.RecordPurchase(context.Background(), PurchaseInput{
		ProductID:     product.ID,
		Qty:           10,
		PaymentMethod: enums.PaymentMethodTransfer,
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}
	if updated.CurrentStock != 22 {
		t.Fatalf("expected stock 22, got %d", updated.CurrentStock)
	}
	if len(treasuryRepo.created) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(treasuryRepo.created))
	}
	entry := treasuryRepo.created[0]
	if !entry.Amount.Equal(decimal.RequireFromString("-45.00")) {
		t.Fatalf("expected amount -45.00, got %s", entry.Amount)
	}
	if entry.Category != enums.TransactionCategorySuppliesPurchase {
		t.Fatalf("unexpected category %s", entry.Category)
	}
}

func TestApplyShrinkageFloorsAtZero(t *testing.T) {
	product := wineProduct()
	product.CurrentStock = 3
	repo := newStubRepo(product)
	treasuryRepo := &stubTreasuryRepo{}
	svc := newTestService(t, repo, treasuryRepo)

	updated, err := svc.ApplyShrinkage(context.Background(), ShrinkageInput{
		ProductID: product.ID,
		Qty:       5,
		Reason:    "breakage",
	})
	if err != nil {
		t.Fatalf("apply shrinkage: %v", err)
	}
	if updated.CurrentStock != 0 {
		t.Fatalf("expected stock 0, got %d", updated.CurrentStock)
	}
	if len(treasuryRepo.created) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(treasuryRepo.created))
	}
	// valued at the full written-off qty, 5 x 4.50
	if !treasuryRepo.created[0].Amount.Equal(decimal.RequireFromString("-22.50")) {
		t.Fatalf("expected amount -22.50, got %s", treasuryRepo.created[0].Amount)
	}
}

func TestApplyAuditRecordsVariance(t *testing.T) {
	product := wineProduct()
	repo := newStubRepo(product)
	treasuryRepo := &stubTreasuryRepo{}
	svc := newTestService(t, repo, treasuryRepo)

	result, err := svc.ApplyAudit(context.Background(), AuditInput{
		ProductID:  product.ID,
		CountedQty: 9,
	})
	if err != nil {
		t.Fatalf("apply audit: %v", err)
	}
	if result.Variance != -3 {
		t.Fatalf("expected variance -3, got %d", result.Variance)
	}
	if result.Product.CurrentStock != 9 {
		t.Fatalf("expected stock 9, got %d", result.Product.CurrentStock)
	}
	if result.Product.LastAuditDate == nil {
		t.Fatal("expected audit date stamped")
	}
	if len(treasuryRepo.created) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(treasuryRepo.created))
	}
	if !treasuryRepo.created[0].Amount.Equal(decimal.RequireFromString("-13.50")) {
		t.Fatalf("expected amount -13.50, got %s", treasuryRepo.created[0].Amount)
	}
}

func TestApplyAuditZeroVarianceSkipsTransaction(t *testing.T) {
	product := wineProduct()
	repo := newStubRepo(product)
	treasuryRepo := &stubTreasuryRepo{}
	svc := newTestService(t, repo, treasuryRepo)

	result, err := svc.ApplyAudit(context.Background(), AuditInput{
		ProductID:  product.ID,
		CountedQty: 12,
	})
	if err != nil {
		t.Fatalf("apply audit: %v", err)
	}
	if result.Variance != 0 {
		t.Fatalf("expected zero variance, got %d", result.Variance)
	}
	if len(treasuryRepo.created) != 0 {
		t.Fatalf("expected no transaction, got %d", len(treasuryRepo.created))
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubTreasuryRepo{})

	_, gotErr := svc.CreateProduct(context.Background(), ProductInput{
		Name:     "",
		Category: enums.ProductCategoryFood,
		Unit:     "kg",
	})
	if gotErr == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", gotErr)
	}

	_, gotErr = svc.CreateProduct(context.Background(), ProductInput{
		Name:         "Rice",
		Category:     "grains",
		Unit:         "kg",
		CurrentStock: 1,
	})
	if gotErr == nil {
		t.Fatal("expected category validation error")
	}
}

func TestDeactivateProductSoftDeletes(t *testing.T) {
	product := wineProduct()
	repo := newStubRepo(product)
	svc := newTestService(t, repo, &stubTreasuryRepo{})

	updated, err := svc.DeactivateProduct(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected product inactive")
	}

	active, err := svc.List(context.Background(), false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active products, got %d", len(active))
	}
}

func TestLowStockReport(t *testing.T) {
	low := wineProduct()
	low.CurrentStock = 5
	ok := wineProduct()
	ok.ID = uuid.New()
	repo := newStubRepo(low, ok)
	svc := newTestService(t, repo, &stubTreasuryRepo{})

	report, err := svc.LowStockReport(context.Background())
	if err != nil {
		t.Fatalf("low stock report: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("expected 1 low stock product, got %d", len(report))
	}
	if report[0].ID != low.ID {
		t.Fatalf("unexpected product %s", report[0].ID)
	}
}
