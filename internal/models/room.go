package models

import (
	"time"
)

// MaxParticipants — комната рассчитана ровно на двух постоянных участников.
const MaxParticipants = 2

type Room struct {
	// ID приходит от клиента и хранится как есть
	ID string `gorm:"primaryKey"`

	// Participants — постоянные идентификаторы первых двух участников.
	// Список только растет: после второго участника комната закрыта.
	Participants []string `gorm:"serializer:json"`

	// Connections — временные идентификаторы живых соединений
	Connections []string `gorm:"serializer:json"`

	// ActiveUser — соединение, чей сейчас ход. nil = открытый ход.
	ActiveUser *string

	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Room) HasParticipant(id string) bool {
	for _, p := range r.Participants {
		if p == id {
			return true
		}
	}
	return false
}

func (r *Room) HasConnection(id string) bool {
	for _, c := range r.Connections {
		if c == id {
			return true
		}
	}
	return false
}

// Locked сообщает, что состав участников зафиксирован
func (r *Room) Locked() bool {
	return len(r.Participants) >= MaxParticipants
}

// OtherConnection возвращает соединение, отличное от connID, или nil
func (r *Room) OtherConnection(connID string) *string {
	for _, c := range r.Connections {
		if c != connID {
			other := c
			return &other
		}
	}
	return nil
}
