package handlers

import (
	"encoding/json"
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/thereayou/duetchat/internal/handlers/dto"
	"github.com/thereayou/duetchat/internal/rooms"
	"github.com/thereayou/duetchat/internal/turn"
	"github.com/thereayou/duetchat/internal/websocket"
)

// EventHandler переводит входящие события транспорта в вызовы
// координатора. Кривой payload просто отбрасывается.
type EventHandler struct {
	coordinator *turn.Coordinator
	hub         *websocket.Hub
}

func NewEventHandler(coordinator *turn.Coordinator, hub *websocket.Hub) *EventHandler {
	return &EventHandler{
		coordinator: coordinator,
		hub:         hub,
	}
}

func (h *EventHandler) HandleEvent(client *websocket.Client, evt *websocket.Event) error {
	switch evt.Type {
	case websocket.TypeJoin:
		return h.handleJoin(client, evt)

	case websocket.TypeSelectCategory:
		return h.handleSelectCategory(client, evt)

	case websocket.TypeSendMessage:
		return h.handleSendMessage(client, evt)

	case websocket.TypeShuffle:
		return h.handleShuffle(client, evt)

	default:
		log.Printf("Unknown event type: %s", evt.Type)
		return nil
	}
}

func (h *EventHandler) handleJoin(client *websocket.Client, evt *websocket.Event) error {
	var payload dto.JoinPayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return nil
	}

	roomID := payload.RoomID
	if roomID == "" {
		roomID = evt.RoomID
	}

	// Токен рукопожатия сильнее participant_id из payload
	participantID := client.Auth
	if participantID == "" {
		participantID = payload.ParticipantID
	}

	if roomID == "" || participantID == "" {
		return nil
	}

	// Переход в другую комнату: старая привязка снимается целиком,
	// иначе прежняя комната навсегда запомнит ушедшее соединение
	if prev := h.hub.Session(client.ID); prev != nil && prev.RoomID != roomID {
		h.hub.LeaveRoom(client, prev.RoomID)
		h.hub.UnbindSession(client.ID)
		h.coordinator.Leave(client.ID, prev.RoomID)
	}

	h.hub.JoinRoom(client, roomID)
	h.hub.BindSession(client.ID, roomID, participantID)

	if err := h.coordinator.Join(client.ID, roomID, participantID); err != nil {
		// Комната закрыта или вход не удался — соединение не остается
		// привязанным к комнате
		h.hub.LeaveRoom(client, roomID)
		h.hub.UnbindSession(client.ID)
		if errors.Is(err, rooms.ErrRoomLocked) {
			return nil
		}
		return err
	}

	return nil
}

func (h *EventHandler) handleSelectCategory(client *websocket.Client, evt *websocket.Event) error {
	var payload dto.SelectCategoryPayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return nil
	}

	sess := h.sessionFor(client, payload.RoomID, evt.RoomID)
	if sess == nil {
		return nil
	}

	return h.coordinator.SelectCategory(client.ID, sess.RoomID, payload.Category)
}

func (h *EventHandler) handleSendMessage(client *websocket.Client, evt *websocket.Event) error {
	var payload dto.SendMessagePayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return nil
	}

	sess := h.sessionFor(client, payload.RoomID, evt.RoomID)
	if sess == nil {
		return nil
	}

	return h.coordinator.SendMessage(client.ID, sess.RoomID, sess.ParticipantID, payload.Text)
}

func (h *EventHandler) handleShuffle(client *websocket.Client, evt *websocket.Event) error {
	var payload dto.ShufflePayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return nil
	}

	sess := h.sessionFor(client, payload.RoomID, evt.RoomID)
	if sess == nil {
		return nil
	}

	return h.coordinator.Shuffle(client.ID, sess.RoomID, payload.Exclude)
}

// sessionFor возвращает привязку соединения, если событие адресовано
// комнате этой привязки. События мимо своей комнаты отбрасываются.
func (h *EventHandler) sessionFor(client *websocket.Client, roomID, envelopeRoomID string) *websocket.Session {
	sess := h.hub.Session(client.ID)
	if sess == nil {
		return nil
	}

	if roomID == "" {
		roomID = envelopeRoomID
	}
	if roomID != "" && roomID != sess.RoomID {
		return nil
	}

	return sess
}
