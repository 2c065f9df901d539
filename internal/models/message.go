package models

import (
	"github.com/google/uuid"
	"time"
)

type Message struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID string    `gorm:"not null;index"`

	// SenderID — постоянный идентификатор участника, не соединение
	SenderID  string `gorm:"not null"`
	Text      string `gorm:"not null"`
	CreatedAt time.Time
}
