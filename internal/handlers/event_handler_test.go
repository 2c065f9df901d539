package handlers

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/thereayou/duetchat/internal/database"
	"github.com/thereayou/duetchat/internal/handlers/dto"
	"github.com/thereayou/duetchat/internal/rooms"
	"github.com/thereayou/duetchat/internal/suggestions"
	"github.com/thereayou/duetchat/internal/turn"
	ws "github.com/thereayou/duetchat/internal/websocket"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupEventHandler(t *testing.T) (*EventHandler, *ws.Hub, *rooms.Registry, *database.Database) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	if err := database.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	db := database.NewDatabase(gdb)
	hub := ws.NewHub()
	registry := rooms.NewRegistry(db)
	coordinator := turn.New(registry, db, suggestions.NewDatabaseSampler(db), suggestions.NewServedStore(nil), hub)

	return NewEventHandler(coordinator, hub), hub, registry, db
}

func dispatch(t *testing.T, h *EventHandler, client *ws.Client, typ ws.EventType, payload interface{}) {
	t.Helper()

	evt, err := ws.NewEvent(typ, "", payload)
	if err != nil {
		t.Fatalf("build %s event: %v", typ, err)
	}
	if err := h.HandleEvent(client, evt); err != nil {
		t.Fatalf("handle %s: %v", typ, err)
	}
}

// waitForEvent вычитывает очередь клиента до события нужного типа
func waitForEvent(t *testing.T, client *ws.Client, typ ws.EventType) ws.Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case data := <-client.Send:
			var evt ws.Event
			if err := json.Unmarshal(data, &evt); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if evt.Type == typ {
				return evt
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", typ)
		}
	}
}

func TestJoinSwitchingRoomsDetachesFromOldRoom(t *testing.T) {
	h, hub, registry, db := setupEventHandler(t)

	a := ws.NewClient(hub, nil, "")
	b := ws.NewClient(hub, nil, "")

	dispatch(t, h, a, ws.TypeJoin, dto.JoinPayload{RoomID: "room-1", ParticipantID: "alice"})
	dispatch(t, h, b, ws.TypeJoin, dto.JoinPayload{RoomID: "room-1", ParticipantID: "bob"})
	dispatch(t, h, a, ws.TypeSelectCategory, dto.SelectCategoryPayload{RoomID: "room-1", Category: "food"})

	// Соединение b уходит в другую комнату тем же сокетом: прежняя
	// комната обязана забыть его целиком
	dispatch(t, h, b, ws.TypeJoin, dto.JoinPayload{RoomID: "room-2", ParticipantID: "bob"})

	waitForEvent(t, a, ws.TypeOpponentLeft)

	room1, _, err := registry.Snapshot("room-1")
	if err != nil {
		t.Fatalf("Snapshot room-1: %v", err)
	}
	if room1.HasConnection(b.ID) {
		t.Errorf("room-1 still holds the departed connection: %v", room1.Connections)
	}
	if room1.ActiveUser != nil {
		t.Errorf("room-1 active user = %q, want open turn", *room1.ActiveUser)
	}

	room2, _, err := registry.Snapshot("room-2")
	if err != nil {
		t.Fatalf("Snapshot room-2: %v", err)
	}
	if !room2.HasConnection(b.ID) {
		t.Errorf("room-2 connections = %v, want %s attached", room2.Connections, b.ID)
	}

	if sess := hub.Session(b.ID); sess == nil || sess.RoomID != "room-2" {
		t.Errorf("session = %v, want room-2", sess)
	}

	// Оставшийся участник не заперт: его ход проходит и рассылается
	dispatch(t, h, a, ws.TypeSendMessage, dto.SendMessagePayload{RoomID: "room-1", Text: "still here"})
	waitForEvent(t, a, ws.TypeNewMessage)

	history, err := db.GetChatHistory("room-1", turn.HistoryLimit)
	if err != nil {
		t.Fatalf("GetChatHistory: %v", err)
	}
	if len(history) != 1 || history[0].Text != "still here" {
		t.Errorf("history = %v", history)
	}
}

func TestJoinSameRoomTwiceKeepsSession(t *testing.T) {
	h, hub, registry, _ := setupEventHandler(t)

	a := ws.NewClient(hub, nil, "")
	dispatch(t, h, a, ws.TypeJoin, dto.JoinPayload{RoomID: "room-1", ParticipantID: "alice"})
	dispatch(t, h, a, ws.TypeJoin, dto.JoinPayload{RoomID: "room-1", ParticipantID: "alice"})

	room, _, err := registry.Snapshot("room-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(room.Connections) != 1 {
		t.Errorf("connections = %v, want a single attach", room.Connections)
	}
	if sess := hub.Session(a.ID); sess == nil || sess.RoomID != "room-1" {
		t.Errorf("session = %v", sess)
	}
}
