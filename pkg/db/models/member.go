package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/irmandades/ghala-backend/pkg/enums"
)

// Member is a registered club member. The PIN doubles as the login
// credential and is stored in the clear.
type Member struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FullName        string             `gorm:"column:full_name;not null"`
	DNI             string             `gorm:"column:dni;not null"`
	Email           string             `gorm:"column:email;not null"`
	Phone           string             `gorm:"column:phone"`
	Address         string             `gorm:"column:address"`
	IBAN            string             `gorm:"column:iban"`
	MonthlyFee      *decimal.Decimal   `gorm:"column:monthly_fee;type:numeric(12,2)"`
	Status          enums.MemberStatus `gorm:"column:status;not null"`
	JoinDate        time.Time          `gorm:"column:join_date;not null"`
	Role            enums.MemberRole   `gorm:"column:role;not null"`
	PIN             string             `gorm:"column:pin;not null"`
	AvatarURL       string             `gorm:"column:avatar_url"`
	Allergies       string             `gorm:"column:allergies"`
	Notes           string             `gorm:"column:notes"`
	DocumentsSigned bool               `gorm:"column:documents_signed;not null;default:false"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
