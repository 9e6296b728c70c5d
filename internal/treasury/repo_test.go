package treasury

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
)

func setupTreasuryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  date DATETIME NOT NULL,
  description TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  category TEXT NOT NULL,
  related_event_id TEXT,
  related_member_id TEXT,
  is_reconciled INTEGER NOT NULL DEFAULT 0,
  payment_method TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedTransaction(t *testing.T, repo Repository, date time.Time, amount string, reconciled bool, eventID *uuid.UUID) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		ID:             uuid.New(),
		Date:           date,
		Description:    "entry",
		Amount:         decimal.RequireFromString(amount),
		Category:       enums.TransactionCategoryOther,
		RelatedEventID: eventID,
		IsReconciled:   reconciled,
		PaymentMethod:  enums.PaymentMethodCash,
	}
	require.NoError(t, repo.Create(context.Background(), transaction))
	return transaction
}

func TestRepositoryListOrdersByDateDescending(t *testing.T) {
	repo := NewRepository(setupTreasuryTestDB(t))

	older := seedTransaction(t, repo, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "100.00", true, nil)
	newer := seedTransaction(t, repo, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), "-40.00", false, nil)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
}

func TestRepositorySumAmounts(t *testing.T) {
	repo := NewRepository(setupTreasuryTestDB(t))

	seedTransaction(t, repo, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "1500.00", true, nil)
	seedTransaction(t, repo, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), "-250.00", true, nil)
	seedTransaction(t, repo, time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC), "-85.20", false, nil)

	projected, err := repo.SumAmounts(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, projected.Equal(decimal.RequireFromString("1164.80")), "projected balance %s", projected)

	confirmed, err := repo.SumAmounts(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, confirmed.Equal(decimal.RequireFromString("1250.00")), "confirmed balance %s", confirmed)
}

func TestRepositorySumAmountsEmptyLedger(t *testing.T) {
	repo := NewRepository(setupTreasuryTestDB(t))

	total, err := repo.SumAmounts(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestRepositoryListByEventID(t *testing.T) {
	repo := NewRepository(setupTreasuryTestDB(t))

	eventID := uuid.New()
	linked := seedTransaction(t, repo, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), "120.50", false, &eventID)
	seedTransaction(t, repo, time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC), "99.00", false, nil)

	list, err := repo.ListByEventID(context.Background(), eventID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, linked.ID, list[0].ID)
}

func TestRepositoryUpdatePersistsReconciledFlag(t *testing.T) {
	repo := NewRepository(setupTreasuryTestDB(t))

	transaction := seedTransaction(t, repo, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), "30.00", false, nil)
	transaction.IsReconciled = true
	require.NoError(t, repo.Update(context.Background(), transaction))

	found, err := repo.FindByID(context.Background(), transaction.ID)
	require.NoError(t, err)
	assert.True(t, found.IsReconciled)
}
