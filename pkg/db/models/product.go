package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/irmandades/ghala-backend/pkg/enums"
)

// Product is a stockroom item. CurrentStock only moves through ledger
// operations or an explicit administrative edit, never below zero.
type Product struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string                `gorm:"column:name;not null"`
	Category       enums.ProductCategory `gorm:"column:category;not null"`
	Unit           string                `gorm:"column:unit;not null"`
	CurrentStock   int                   `gorm:"column:current_stock;not null;default:0"`
	MinStock       int                   `gorm:"column:min_stock;not null;default:0"`
	EmergencyStock int                   `gorm:"column:emergency_stock;not null;default:0"`
	CostPrice      decimal.Decimal       `gorm:"column:cost_price;type:numeric(12,2);not null"`
	SalePrice      decimal.Decimal       `gorm:"column:sale_price;type:numeric(12,2);not null"`
	Provider       string                `gorm:"column:provider"`
	IsActive       bool                  `gorm:"column:is_active;not null;default:true"`
	LastAuditDate  *time.Time            `gorm:"column:last_audit_date"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
