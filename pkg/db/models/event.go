package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/irmandades/ghala-backend/pkg/enums"
)

// Event is a zone reservation with its consumption lines. TotalCost is a
// derived value while payment is pending and frozen once settled.
type Event struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title          string              `gorm:"column:title;not null"`
	Date           time.Time           `gorm:"column:date;not null"`
	OrganizerID    uuid.UUID           `gorm:"column:organizer_id;type:uuid;not null"`
	AttendeeIDs    pq.StringArray      `gorm:"column:attendee_ids;type:text[]"`
	GuestCount     int                 `gorm:"column:guest_count;not null;default:0"`
	ZoneID         uuid.UUID           `gorm:"column:zone_id;type:uuid;not null"`
	Status         enums.EventStatus   `gorm:"column:status;not null"`
	Consumptions   []EventConsumption  `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	TotalCost      decimal.Decimal     `gorm:"column:total_cost;type:numeric(12,2);not null"`
	PaymentStatus  enums.PaymentStatus `gorm:"column:payment_status;not null"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;not null"`
	SettledByID    *uuid.UUID          `gorm:"column:settled_by_id;type:uuid"`
	SettlementDate *time.Time          `gorm:"column:settlement_date"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
