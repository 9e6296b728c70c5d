package models

import (
	"time"

	"github.com/google/uuid"
)

// UserMessage is a note on the member message board.
type UserMessage struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SenderID    uuid.UUID  `gorm:"column:sender_id;type:uuid;not null"`
	RecipientID *uuid.UUID `gorm:"column:recipient_id;type:uuid"`
	Subject     string     `gorm:"column:subject"`
	Body        string     `gorm:"column:body;not null"`
	IsRead      bool       `gorm:"column:is_read;not null;default:false"`
	SentAt      time.Time  `gorm:"column:sent_at;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
