package rooms

import "errors"

var (
	// ErrRoomLocked — в комнате уже два постоянных участника
	ErrRoomLocked = errors.New("room is locked")

	// ErrRoomNotFound — комнаты нет в хранилище
	ErrRoomNotFound = errors.New("room not found")

	// ErrNotYourTurn — действие не от активного соединения.
	// Ожидаемая гонка между UI и состоянием хода, не ошибка сервера.
	ErrNotYourTurn = errors.New("not your turn")
)
