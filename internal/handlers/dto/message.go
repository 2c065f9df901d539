package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/duetchat/internal/models"
)

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	RoomID    string    `json:"room_id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func MessagesResponse(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, len(messages))
	for i, m := range messages {
		out[i] = MessageResponse{
			ID:        m.ID,
			RoomID:    m.RoomID,
			SenderID:  m.SenderID,
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		}
	}
	return out
}
