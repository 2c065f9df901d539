package turn

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/thereayou/duetchat/internal/database"
	"github.com/thereayou/duetchat/internal/handlers/dto"
	"github.com/thereayou/duetchat/internal/models"
	"github.com/thereayou/duetchat/internal/rooms"
	"github.com/thereayou/duetchat/internal/suggestions"
	ws "github.com/thereayou/duetchat/internal/websocket"
)

const (
	// HistoryLimit — сколько сообщений replay'ится при входе
	HistoryLimit = 50

	// ContextLimit — сколько последних сообщений уходит в генерацию
	ContextLimit = 10
)

// Broadcaster — то, что координатору нужно от транспорта
type Broadcaster interface {
	ToRoom(roomID string, data []byte)
	ToConn(connID string, data []byte)
}

// Coordinator владеет машиной ходов комнаты. Состояния: без категории
// (ход закрыт), открытый ход (ходит любой из привязанных), назначенный
// ход (ходит ровно одно соединение). Все записи состояния идут через
// Registry под замком комнаты; выборка подсказок — всегда вне замка,
// с проверкой эпохи перед рассылкой.
type Coordinator struct {
	registry *rooms.Registry
	db       *database.Database
	provider suggestions.Provider
	served   *suggestions.ServedStore
	hub      Broadcaster
}

func New(registry *rooms.Registry, db *database.Database, provider suggestions.Provider, served *suggestions.ServedStore, hub Broadcaster) *Coordinator {
	return &Coordinator{
		registry: registry,
		db:       db,
		provider: provider,
		served:   served,
		hub:      hub,
	}
}

// Join проводит участника в комнату. Третьему постоянному участнику
// отвечает room_locked и не привязывает соединение.
func (c *Coordinator) Join(connID, roomID, participantID string) error {
	room, outcome, err := c.registry.GetOrCreate(roomID, participantID)
	if errors.Is(err, rooms.ErrRoomLocked) {
		c.toConn(connID, roomID, ws.TypeRoomLocked, nil)
		return err
	}
	if err != nil {
		log.Errorf("join %s: %v", roomID, err)
		c.toConn(connID, roomID, ws.TypeServerError, nil)
		return err
	}

	room, err = c.registry.AttachConnection(roomID, connID)
	if err != nil {
		log.Errorf("join %s: attach: %v", roomID, err)
		c.toConn(connID, roomID, ws.TypeServerError, nil)
		return err
	}

	history, err := c.db.GetChatHistory(roomID, HistoryLimit)
	if err != nil {
		log.Errorf("join %s: history: %v", roomID, err)
		c.toConn(connID, roomID, ws.TypeServerError, nil)
		return err
	}
	c.toConn(connID, roomID, ws.TypeHistory, dto.MessagesResponse(history))

	switch {
	case len(room.Connections) == models.MaxParticipants:
		if room.Category != "" {
			kind := suggestions.KindStarter
			if room.ActiveUser != nil {
				kind = suggestions.KindReply
			}
			go c.refreshSuggestions(roomID, kind, nil, c.registry.Epoch(roomID))
		}
		c.toRoom(roomID, ws.TypeReady, nil)

	case outcome == rooms.OutcomeCreated || room.Locked():
		// первый в комнате, либо второй участник пока оффлайн
		c.toConn(connID, roomID, ws.TypeWaiting, nil)
	}

	return nil
}

// SelectCategory переводит комнату в открытый ход по новой теме
// и запускает выборку стартеров
func (c *Coordinator) SelectCategory(connID, roomID, category string) error {
	if strings.TrimSpace(category) == "" {
		return nil
	}

	room, epoch, err := c.registry.SetCategory(roomID, category)
	if err != nil {
		log.Errorf("select category %s: %v", roomID, err)
		c.toConn(connID, roomID, ws.TypeServerError, nil)
		return err
	}

	// Смена темы обнуляет память показанных подсказок
	c.served.Clear(context.Background(), roomID)

	log.Printf("Room %s category set to %q", roomID, room.Category)
	go c.refreshSuggestions(roomID, suggestions.KindStarter, nil, epoch)

	return nil
}

// SendMessage пытается сделать ход. Отказ в праве хода — молчаливый
// дроп: это обычная гонка интерфейса с состоянием хода.
func (c *Coordinator) SendMessage(connID, roomID, participantID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	room, epoch, err := c.registry.Act(roomID, connID, func(tx *database.Database, _ *models.Room) error {
		// Запись идет в транзакции хода: сообщение и передача хода
		// ложатся вместе, до любой рассылки
		return tx.SaveMessage(&models.Message{
			RoomID:   roomID,
			SenderID: participantID,
			Text:     text,
		})
	})
	if errors.Is(err, rooms.ErrNotYourTurn) || errors.Is(err, rooms.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		log.Errorf("send message %s: %v", roomID, err)
		c.toConn(connID, roomID, ws.TypeServerError, nil)
		return err
	}

	c.toRoom(roomID, ws.TypeNewMessage, dto.NewMessagePayload{User: connID, Text: text})

	// Есть кому ответить — готовим реплики; иначе ход остается открытым
	if room.ActiveUser != nil {
		go c.refreshSuggestions(roomID, suggestions.KindReply, nil, epoch)
	}

	return nil
}

// Shuffle перевыбирает подсказки того же вида, не трогая ход и тему.
// Вид и эпоха берутся из одного снимка: ход, успевший смениться после,
// обесценит пачку по эпохе.
func (c *Coordinator) Shuffle(connID, roomID string, exclude []string) error {
	room, epoch, err := c.registry.Snapshot(roomID)
	if err != nil || room.Category == "" {
		return nil
	}

	if room.ActiveUser != nil && *room.ActiveUser != connID {
		return nil
	}

	kind := suggestions.KindStarter
	if room.ActiveUser != nil {
		kind = suggestions.KindReply
	}

	go c.refreshSuggestions(roomID, kind, exclude, epoch)

	return nil
}

// Leave отцепляет соединение. Best effort: ошибки только логируются.
func (c *Coordinator) Leave(connID, roomID string) {
	room, err := c.registry.DetachConnection(roomID, connID)
	if err != nil {
		log.Errorf("leave %s: %v", roomID, err)
		return
	}
	if room == nil {
		return
	}

	if len(room.Connections) == 1 {
		// Оставшийся получает открытый ход (ActiveUser сброшен при
		// detach) и чистую память подсказок
		c.toRoom(roomID, ws.TypeOpponentLeft, nil)
		c.served.Clear(context.Background(), roomID)
	}
}

// refreshSuggestions собирает контекст и зовет провайдера вне замка
// комнаты. Эпоха фиксируется мутацией-инициатором: если к моменту
// готовности пачки состояние комнаты ушло вперед, пачка не рассылается.
func (c *Coordinator) refreshSuggestions(roomID string, kind suggestions.Kind, exclude []string, epoch uint64) {
	ctx := context.Background()

	room, _, err := c.registry.Snapshot(roomID)
	if err != nil {
		log.Errorf("suggestions %s: snapshot: %v", roomID, err)
		return
	}

	history, err := c.db.GetRecentMessages(roomID, ContextLimit)
	if err != nil {
		log.Errorf("suggestions %s: recent messages: %v", roomID, err)
		return
	}

	exclude = append(exclude, c.served.Recent(ctx, roomID)...)

	batch := c.provider.Fetch(ctx, suggestions.Request{
		Category: room.Category,
		Kind:     kind,
		History:  history,
		Exclude:  exclude,
	})

	if c.registry.Epoch(roomID) != epoch {
		log.Printf("Room %s: stale suggestion batch dropped", roomID)
		return
	}

	c.served.Remember(ctx, roomID, batch)

	c.toRoom(roomID, ws.TypeSuggestions, dto.SuggestionsPayload{
		Suggestions: batch,
		ActiveUser:  room.ActiveUser,
		Category:    room.Category,
	})
}

func (c *Coordinator) toRoom(roomID string, t ws.EventType, payload interface{}) {
	data, err := encodeEvent(t, roomID, payload)
	if err != nil {
		log.Errorf("encode %s event: %v", t, err)
		return
	}
	c.hub.ToRoom(roomID, data)
}

func (c *Coordinator) toConn(connID, roomID string, t ws.EventType, payload interface{}) {
	data, err := encodeEvent(t, roomID, payload)
	if err != nil {
		log.Errorf("encode %s event: %v", t, err)
		return
	}
	c.hub.ToConn(connID, data)
}

func encodeEvent(t ws.EventType, roomID string, payload interface{}) ([]byte, error) {
	evt, err := ws.NewEvent(t, roomID, payload)
	if err != nil {
		return nil, err
	}
	return evt.Encode()
}
