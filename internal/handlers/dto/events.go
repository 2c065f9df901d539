package dto

// Входящие payload'ы websocket-событий

type JoinPayload struct {
	RoomID        string `json:"room_id"`
	ParticipantID string `json:"participant_id"`
}

type SelectCategoryPayload struct {
	RoomID   string `json:"room_id"`
	Category string `json:"category"`
}

type SendMessagePayload struct {
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

type ShufflePayload struct {
	RoomID  string   `json:"room_id"`
	Exclude []string `json:"exclude,omitempty"`
}

// Исходящие payload'ы

// SuggestionsPayload — пачка подсказок вместе с тем, чей сейчас ход
type SuggestionsPayload struct {
	Suggestions []string `json:"suggestions"`
	ActiveUser  *string  `json:"active_user"`
	Category    string   `json:"category"`
}

// NewMessagePayload намеренно несет id соединения отправителя,
// а не постоянный id: клиенты сравнивают его со своим соединением
type NewMessagePayload struct {
	User string `json:"user"`
	Text string `json:"text"`
}
