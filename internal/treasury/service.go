package treasury

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/irmandades/ghala-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the treasury ledger. Entries are appended or edited, never
// deleted.
type Service interface {
	Append(ctx context.Context, input AppendTransactionInput) (*models.Transaction, error)
	Update(ctx context.Context, id uuid.UUID, input AppendTransactionInput) (*models.Transaction, error)
	ToggleReconciled(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context) ([]models.Transaction, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Transaction, error)
	ProjectedBalance(ctx context.Context) (decimal.Decimal, error)
	ConfirmedBalance(ctx context.Context) (decimal.Decimal, error)
	MonthlySummary(ctx context.Context) ([]MonthlyTotals, error)
}

type service struct {
	repo    Repository
	metrics *metrics.DomainMetrics
}

// AppendTransactionInput captures a full ledger entry.
type AppendTransactionInput struct {
	Date            time.Time                 `json:"date"`
	Description     string                    `json:"description"`
	Amount          decimal.Decimal           `json:"amount"`
	Category        enums.TransactionCategory `json:"category"`
	RelatedEventID  *uuid.UUID                `json:"related_event_id"`
	RelatedMemberID *uuid.UUID                `json:"related_member_id"`
	IsReconciled    bool                      `json:"is_reconciled"`
	PaymentMethod   enums.PaymentMethod       `json:"payment_method"`
}

func (i AppendTransactionInput) validate() error {
	if strings.TrimSpace(i.Description) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if i.Date.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	if !i.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction category %q", i.Category))
	}
	if !i.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", i.PaymentMethod))
	}
	return nil
}

// NewService wires a treasury service with the provided repository.
func NewService(repo Repository, domainMetrics *metrics.DomainMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("treasury repository required")
	}
	return &service{repo: repo, metrics: domainMetrics}, nil
}

func (s *service) Append(ctx context.Context, input AppendTransactionInput) (*models.Transaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		ID:              uuid.New(),
		Date:            input.Date,
		Description:     strings.TrimSpace(input.Description),
		Amount:          input.Amount,
		Category:        input.Category,
		RelatedEventID:  input.RelatedEventID,
		RelatedMemberID: input.RelatedMemberID,
		IsReconciled:    input.IsReconciled,
		PaymentMethod:   input.PaymentMethod,
	}

	if err := s.repo.Create(ctx, transaction); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append transaction")
	}
	s.metrics.IncLedgerAppend(transaction.Category.String())
	return transaction, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input AppendTransactionInput) (*models.Transaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	transaction, err := s.loadTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	transaction.Date = input.Date
	transaction.Description = strings.TrimSpace(input.Description)
	transaction.Amount = input.Amount
	transaction.Category = input.Category
	transaction.RelatedEventID = input.RelatedEventID
	transaction.RelatedMemberID = input.RelatedMemberID
	transaction.IsReconciled = input.IsReconciled
	transaction.PaymentMethod = input.PaymentMethod

	if err := s.repo.Update(ctx, transaction); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction")
	}
	return transaction, nil
}

func (s *service) ToggleReconciled(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}

	transaction, err := s.loadTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	transaction.IsReconciled = !transaction.IsReconciled
	if err := s.repo.Update(ctx, transaction); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle reconciled")
	}
	return transaction, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	return s.loadTransaction(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.Transaction, error) {
	transactions, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return transactions, nil
}

func (s *service) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Transaction, error) {
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	transactions, err := s.repo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list event transactions")
	}
	return transactions, nil
}

func (s *service) ProjectedBalance(ctx context.Context) (decimal.Decimal, error) {
	total, err := s.repo.SumAmounts(ctx, false)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum amounts")
	}
	return total, nil
}

func (s *service) ConfirmedBalance(ctx context.Context) (decimal.Decimal, error) {
	total, err := s.repo.SumAmounts(ctx, true)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum reconciled amounts")
	}
	return total, nil
}

func (s *service) MonthlySummary(ctx context.Context) ([]MonthlyTotals, error) {
	transactions, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	byMonth := map[string]*MonthlyTotals{}
	for _, transaction := range transactions {
		key := monthKey(transaction.Date)
		totals, ok := byMonth[key]
		if !ok {
			totals = &MonthlyTotals{Month: key}
			byMonth[key] = totals
		}
		if transaction.Amount.IsNegative() {
			totals.Expense = totals.Expense.Add(transaction.Amount.Neg())
		} else {
			totals.Income = totals.Income.Add(transaction.Amount)
		}
		totals.Net = totals.Net.Add(transaction.Amount)
	}

	summary := make([]MonthlyTotals, 0, len(byMonth))
	for _, totals := range byMonth {
		summary = append(summary, *totals)
	}
	sort.Slice(summary, func(i, j int) bool {
		return summary[i].Month < summary[j].Month
	})
	return summary, nil
}

func (s *service) loadTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	transaction, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return transaction, nil
}
