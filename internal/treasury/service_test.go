package treasury

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubRepo struct {
	transactions []models.Transaction
	err          error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, transaction *models.Transaction) error {
	if s.err != nil {
		return s.err
	}
	s.transactions = append(s.transactions, *transaction)
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			found := s.transactions[i]
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context) ([]models.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.transactions, nil
}

func (s *stubRepo) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	var matched []models.Transaction
	for _, transaction := range s.transactions {
		if transaction.RelatedEventID != nil && *transaction.RelatedEventID == eventID {
			matched = append(matched, transaction)
		}
	}
	return matched, nil
}

func (s *stubRepo) Update(ctx context.Context, transaction *models.Transaction) error {
	if s.err != nil {
		return s.err
	}
	for i := range s.transactions {
		if s.transactions[i].ID == transaction.ID {
			s.transactions[i] = *transaction
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubRepo) SumAmounts(ctx context.Context, reconciledOnly bool) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	total := decimal.Zero
	for _, transaction := range s.transactions {
		if reconciledOnly && !transaction.IsReconciled {
			continue
		}
		total = total.Add(transaction.Amount)
	}
	return total, nil
}

func validInput() AppendTransactionInput {
	return AppendTransactionInput{
		Date:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Description:   "bar restock",
		Amount:        decimal.RequireFromString("-120.50"),
		Category:      enums.TransactionCategorySuppliesPurchase,
		PaymentMethod: enums.PaymentMethodTransfer,
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil, nil); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestAppendCreatesEntry(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	transaction, err := svc.Append(context.Background(), validInput())
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if transaction.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if len(repo.transactions) != 1 {
		t.Fatalf("expected 1 stored transaction, got %d", len(repo.transactions))
	}
	if !repo.transactions[0].Amount.Equal(decimal.RequireFromString("-120.50")) {
		t.Fatalf("unexpected stored amount %s", repo.transactions[0].Amount)
	}
}

func TestAppendRejectsBlankDescription(t *testing.T) {
	svc, err := NewService(&stubRepo{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	input := validInput()
	input.Description = "   "
	_, gotErr := svc.Append(context.Background(), input)
	if gotErr == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", gotErr)
	}
}

func TestAppendRejectsUnknownCategory(t *testing.T) {
	svc, err := NewService(&stubRepo{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	input := validInput()
	input.Category = "lottery"
	if _, gotErr := svc.Append(context.Background(), input); gotErr == nil {
		t.Fatal("expected validation error")
	}
}

func TestUpdateReplacesEntry(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	created, err := svc.Append(context.Background(), validInput())
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	input := validInput()
	input.Description = "corrected restock"
	input.Amount = decimal.RequireFromString("-99.00")
	updated, err := svc.Update(context.Background(), created.ID, input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "corrected restock" {
		t.Fatalf("unexpected description %q", updated.Description)
	}
	if !repo.transactions[0].Amount.Equal(decimal.RequireFromString("-99.00")) {
		t.Fatalf("unexpected stored amount %s", repo.transactions[0].Amount)
	}
}

func TestUpdateMissingEntry(t *testing.T) {
	svc, err := NewService(&stubRepo{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.Update(context.Background(), uuid.New(), validInput())
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", gotErr)
	}
}

func TestToggleReconciledFlips(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	created, err := svc.Append(context.Background(), validInput())
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	toggled, err := svc.ToggleReconciled(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.IsReconciled {
		t.Fatal("expected reconciled true after first toggle")
	}

	toggled, err = svc.ToggleReconciled(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.IsReconciled {
		t.Fatal("expected reconciled false after second toggle")
	}
}

func TestBalances(t *testing.T) {
	repo := &stubRepo{transactions: []models.Transaction{
		{ID: uuid.New(), Amount: decimal.RequireFromString("100.00"), IsReconciled: true},
		{ID: uuid.New(), Amount: decimal.RequireFromString("-30.00"), IsReconciled: false},
	}}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	projected, err := svc.ProjectedBalance(context.Background())
	if err != nil {
		t.Fatalf("projected balance: %v", err)
	}
	if !projected.Equal(decimal.RequireFromString("70.00")) {
		t.Fatalf("expected projected 70.00, got %s", projected)
	}

	confirmed, err := svc.ConfirmedBalance(context.Background())
	if err != nil {
		t.Fatalf("confirmed balance: %v", err)
	}
	if !confirmed.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected confirmed 100.00, got %s", confirmed)
	}
}

func TestMonthlySummaryGroupsByMonth(t *testing.T) {
	march := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	repo := &stubRepo{transactions: []models.Transaction{
		{ID: uuid.New(), Date: march, Amount: decimal.RequireFromString("50.00")},
		{ID: uuid.New(), Date: march, Amount: decimal.RequireFromString("-20.00")},
		{ID: uuid.New(), Date: april, Amount: decimal.RequireFromString("10.00")},
	}}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary, err := svc.MonthlySummary(context.Background())
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 months, got %d", len(summary))
	}
	if summary[0].Month != "2026-03" {
		t.Fatalf("expected first month 2026-03, got %s", summary[0].Month)
	}
	if !summary[0].Income.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("unexpected march income %s", summary[0].Income)
	}
	if !summary[0].Expense.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("unexpected march expense %s", summary[0].Expense)
	}
	if !summary[0].Net.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("unexpected march net %s", summary[0].Net)
	}
}

func TestAppendDependencyError(t *testing.T) {
	svc, err := NewService(&stubRepo{err: errors.New("boom")}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.Append(context.Background(), validInput())
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", gotErr)
	}
}

func TestListByEventFiltersLinkedEntries(t *testing.T) {
	eventID := uuid.New()
	otherID := uuid.New()
	repo := &stubRepo{transactions: []models.Transaction{
		{ID: uuid.New(), RelatedEventID: &eventID, Amount: decimal.RequireFromString("46.00")},
		{ID: uuid.New(), RelatedEventID: &otherID, Amount: decimal.RequireFromString("12.00")},
		{ID: uuid.New(), Amount: decimal.RequireFromString("-8.00")},
	}}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	list, err := svc.ListByEvent(context.Background(), eventID)
	if err != nil {
		t.Fatalf("list by event: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list))
	}
	if list[0].RelatedEventID == nil || *list[0].RelatedEventID != eventID {
		t.Fatal("expected the linked entry")
	}

	if _, err := svc.ListByEvent(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected nil event id to be rejected")
	}
}
