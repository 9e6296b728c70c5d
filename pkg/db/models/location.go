package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a bookable zone of the clubhouse.
type Location struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Capacity  int       `gorm:"column:capacity;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
