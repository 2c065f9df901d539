package websocket

import (
	"encoding/json"
	"time"
)

// EventType определяет типы событий
type EventType string

const (
	// Входящие события
	TypeJoin           EventType = "join"
	TypeSelectCategory EventType = "select_category"
	TypeSendMessage    EventType = "send_message"
	TypeShuffle        EventType = "shuffle"

	// Исходящие события
	TypeWaiting      EventType = "waiting"
	TypeRoomLocked   EventType = "room_locked"
	TypeHistory      EventType = "chat_history"
	TypeReady        EventType = "ready"
	TypeSuggestions  EventType = "suggestions"
	TypeNewMessage   EventType = "new_message"
	TypeOpponentLeft EventType = "opponent_left"
	TypeServerError  EventType = "server_error"

	// Служебные
	TypePong EventType = "pong"
)

type Event struct {
	Type      EventType       `json:"type"`
	RoomID    string          `json:"room_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent собирает событие с сериализованным payload
func NewEvent(t EventType, roomID string, payload interface{}) (*Event, error) {
	evt := &Event{
		Type:      t,
		RoomID:    roomID,
		Timestamp: time.Now(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		evt.Data = data
	}

	return evt, nil
}

func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
