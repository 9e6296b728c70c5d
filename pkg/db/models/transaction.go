package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/irmandades/ghala-backend/pkg/enums"
)

// Transaction is one treasury ledger entry. Positive amounts are income,
// negative are expense. Entries are never auto-deleted.
type Transaction struct {
	ID              uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Date            time.Time                 `gorm:"column:date;not null"`
	Description     string                    `gorm:"column:description;not null"`
	Amount          decimal.Decimal           `gorm:"column:amount;type:numeric(12,2);not null"`
	Category        enums.TransactionCategory `gorm:"column:category;not null"`
	RelatedEventID  *uuid.UUID                `gorm:"column:related_event_id;type:uuid"`
	RelatedMemberID *uuid.UUID                `gorm:"column:related_member_id;type:uuid"`
	IsReconciled    bool                      `gorm:"column:is_reconciled;not null;default:false"`
	PaymentMethod   enums.PaymentMethod       `gorm:"column:payment_method;not null"`
	CreatedAt       time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
