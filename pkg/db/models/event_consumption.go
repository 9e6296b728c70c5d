package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/irmandades/ghala-backend/pkg/enums"
)

// EventConsumption is one line on an event's tab. UnitCost snapshots the
// product sale price at add time so later catalog edits never reprice it.
type EventConsumption struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID   uuid.UUID             `gorm:"column:event_id;type:uuid;not null"`
	Type      enums.ConsumptionType `gorm:"column:type;not null"`
	ProductID *uuid.UUID            `gorm:"column:product_id;type:uuid"`
	Name      string                `gorm:"column:name;not null"`
	Quantity  int                   `gorm:"column:quantity;not null"`
	UnitCost  decimal.Decimal       `gorm:"column:unit_cost;type:numeric(12,2);not null"`
	TotalCost decimal.Decimal       `gorm:"column:total_cost;type:numeric(12,2);not null"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}
