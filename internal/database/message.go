package database

import (
	"github.com/google/uuid"
	"github.com/thereayou/duetchat/internal/models"
)

func (d *Database) SaveMessage(message *models.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	return d.db.Create(message).Error
}

// GetChatHistory отдает историю комнаты от старых к новым — для replay при входе
func (d *Database) GetChatHistory(roomID string, limit int) ([]models.Message, error) {
	var messages []models.Message

	err := d.db.
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error

	return messages, err
}

// GetRecentMessages отдает последние сообщения, самое новое первым —
// короткий контекст для генерации подсказок
func (d *Database) GetRecentMessages(roomID string, limit int) ([]models.Message, error) {
	var messages []models.Message

	err := d.db.
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error

	return messages, err
}
