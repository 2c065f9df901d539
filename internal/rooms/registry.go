package rooms

import (
	"errors"
	"strings"
	"sync"

	"github.com/thereayou/duetchat/internal/database"
	"github.com/thereayou/duetchat/internal/models"
	"gorm.io/gorm"
)

// Outcome — результат GetOrCreate для вошедшего участника
type Outcome int

const (
	// OutcomeCreated — комната создана этим участником
	OutcomeCreated Outcome = iota
	// OutcomeRejoined — участник уже был в списке
	OutcomeRejoined
	// OutcomeJoined — участник занял второе место
	OutcomeJoined
)

// Registry сериализует все изменения состояния одной комнаты.
// Запись комнаты читается, меняется и сохраняется как единое целое,
// поэтому каждая операция идет под замком этой комнаты. Разные комнаты
// друг с другом не конкурируют.
type Registry struct {
	db *database.Database

	mu    sync.Mutex
	rooms map[string]*roomState
}

type roomState struct {
	mu sync.Mutex

	// epoch растет при каждом изменении, обесценивающем запущенные
	// выборки подсказок: смена категории, передача хода, attach/detach.
	// Опоздавший результат с несовпадающей эпохой отбрасывается.
	epoch uint64
}

func NewRegistry(db *database.Database) *Registry {
	return &Registry{
		db:    db,
		rooms: make(map[string]*roomState),
	}
}

func (r *Registry) state(roomID string) *roomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.rooms[roomID]
	if !ok {
		s = &roomState{}
		r.rooms[roomID] = s
	}
	return s
}

func (r *Registry) load(roomID string) (*models.Room, error) {
	room, err := r.db.GetRoom(roomID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

// GetOrCreate создает комнату для первого участника, пускает знакомых
// и вторых участников, а третьему отвечает ErrRoomLocked без изменений.
func (r *Registry) GetOrCreate(roomID, participantID string) (*models.Room, Outcome, error) {
	s := r.state(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := r.load(roomID)
	if errors.Is(err, ErrRoomNotFound) {
		room = &models.Room{
			ID:           roomID,
			Participants: []string{participantID},
			Connections:  []string{},
		}
		if err := r.db.CreateRoom(room); err != nil {
			return nil, 0, err
		}
		return room, OutcomeCreated, nil
	}
	if err != nil {
		return nil, 0, err
	}

	if room.HasParticipant(participantID) {
		return room, OutcomeRejoined, nil
	}

	if room.Locked() {
		return nil, 0, ErrRoomLocked
	}

	room.Participants = append(room.Participants, participantID)
	if err := r.db.SaveRoom(room); err != nil {
		return nil, 0, err
	}
	return room, OutcomeJoined, nil
}

// AttachConnection добавляет соединение; повторный вызов безвреден
func (r *Registry) AttachConnection(roomID, connID string) (*models.Room, error) {
	s := r.state(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := r.load(roomID)
	if err != nil {
		return nil, err
	}

	if room.HasConnection(connID) {
		return room, nil
	}

	room.Connections = append(room.Connections, connID)
	if err := r.db.SaveRoom(room); err != nil {
		return nil, err
	}
	s.epoch++
	return room, nil
}

// DetachConnection убирает соединение. Оставшийся участник получает
// открытый ход: активный пользователь сбрасывается вместе с уходом.
func (r *Registry) DetachConnection(roomID, connID string) (*models.Room, error) {
	s := r.state(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := r.load(roomID)
	if errors.Is(err, ErrRoomNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !room.HasConnection(connID) {
		return room, nil
	}

	kept := room.Connections[:0]
	for _, c := range room.Connections {
		if c != connID {
			kept = append(kept, c)
		}
	}
	room.Connections = kept
	room.ActiveUser = nil

	if err := r.db.SaveRoom(room); err != nil {
		return nil, err
	}
	s.epoch++
	return room, nil
}

// SetCategory запоминает тему и всегда начинает цикл ходов заново
func (r *Registry) SetCategory(roomID, category string) (*models.Room, uint64, error) {
	s := r.state(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := r.load(roomID)
	if err != nil {
		return nil, 0, err
	}

	room.Category = strings.ToLower(strings.TrimSpace(category))
	room.ActiveUser = nil

	if err := r.db.SaveRoom(room); err != nil {
		return nil, 0, err
	}
	s.epoch++
	return room, s.epoch, nil
}

// Act выполняет ход соединения connID как одну атомарную операцию:
// проверка права хода, commit вызывающего (запись сообщения), передача
// хода второму соединению. Commit и запись комнаты идут в одной
// транзакции: сообщение и передача хода ложатся вместе или никак, чтобы
// переподключившийся пир не увидел сообщение, которого комната не знает.
// Право хода есть у активного соединения и у любого привязанного
// соединения при открытом ходе; без категории ходов нет.
func (r *Registry) Act(roomID, connID string, commit func(tx *database.Database, room *models.Room) error) (*models.Room, uint64, error) {
	s := r.state(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := r.load(roomID)
	if errors.Is(err, ErrRoomNotFound) {
		return nil, 0, ErrRoomNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	permitted := room.Category != "" &&
		room.HasConnection(connID) &&
		(room.ActiveUser == nil || *room.ActiveUser == connID)
	if !permitted {
		return nil, 0, ErrNotYourTurn
	}

	err = r.db.Transaction(func(tx *database.Database) error {
		if err := commit(tx, room); err != nil {
			return err
		}
		room.ActiveUser = room.OtherConnection(connID)
		return tx.SaveRoom(room)
	})
	if err != nil {
		return nil, 0, err
	}

	s.epoch++
	return room, s.epoch, nil
}

// Snapshot читает комнату и её эпоху под одним захватом замка:
// решения по снимку (вид подсказки, право шафла) и проверка эпохи
// описывают одно и то же состояние
func (r *Registry) Snapshot(roomID string) (*models.Room, uint64, error) {
	s := r.state(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := r.load(roomID)
	return room, s.epoch, err
}

func (r *Registry) Epoch(roomID string) uint64 {
	s := r.state(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.epoch
}
