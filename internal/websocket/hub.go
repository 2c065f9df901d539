package websocket

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Session — привязка соединения к комнате и постоянному участнику.
// Живет в hub как явная запись по id соединения, а не как изменяемое
// поле на транспортном объекте.
type Session struct {
	RoomID        string
	ParticipantID string
}

// DisconnectHandler получает уведомление после снятия клиента с учета.
// Вызывается вне замков hub.
type DisconnectHandler func(connID string, sess *Session)

type Hub struct {
	clients  map[string]*Client
	rooms    map[string]map[string]*Client
	sessions map[string]*Session

	register   chan *Client
	unregister chan *Client

	onDisconnect DisconnectHandler

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		sessions:   make(map[string]*Session),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SetDisconnectHandler задает обработчик отключений до запуска hub
func (h *Hub) SetDisconnectHandler(fn DisconnectHandler) {
	h.onDisconnect = fn
}

// Run запускает hub
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// Stop останавливает hub и закрывает все соединения
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
}

// Register ставит клиента на учет. После Stop — no-op: цикл Run уже
// никого не слушает, блокироваться на канале некому.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	log.Printf("Client registered: %s", client.ID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	var sess *Session

	if _, ok := h.clients[client.ID]; !ok {
		h.mu.Unlock()
		return
	}

	for roomID, room := range h.rooms {
		if _, ok := room[client.ID]; ok {
			delete(room, client.ID)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}

	sess = h.sessions[client.ID]
	delete(h.sessions, client.ID)
	delete(h.clients, client.ID)
	close(client.Send)

	h.mu.Unlock()

	log.Printf("Client unregistered: %s", client.ID)

	// Уведомление уходит после снятия замка: обработчик пойдет обратно
	// в hub рассылать opponent_left
	if h.onDisconnect != nil {
		h.onDisconnect(client.ID, sess)
	}
}

// JoinRoom добавляет клиента в комнату hub
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][client.ID] = client
}

// LeaveRoom убирает клиента из комнаты hub
func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[roomID]; ok {
		delete(room, client.ID)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// BindSession запоминает, к какой комнате и участнику относится соединение
func (h *Hub) BindSession(connID, roomID, participantID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[connID] = &Session{RoomID: roomID, ParticipantID: participantID}
}

func (h *Hub) UnbindSession(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.sessions, connID)
}

// Session возвращает копию привязки соединения, либо nil
func (h *Hub) Session(connID string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sess, ok := h.sessions[connID]
	if !ok {
		return nil
	}
	copied := *sess
	return &copied
}

// ToRoom отправляет событие всем соединениям комнаты
func (h *Hub) ToRoom(roomID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			select {
			case client.Send <- data:
			default:
				log.Printf("Client %s send channel full", client.ID)
			}
		}
	}
}

// ToConn отправляет событие одному соединению
func (h *Hub) ToConn(connID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[connID]
	if !ok {
		return
	}

	select {
	case client.Send <- data:
	default:
		log.Printf("Client %s send channel full", client.ID)
	}
}

// RoomSize возвращает число живых соединений в комнате
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomID])
}
