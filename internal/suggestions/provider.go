package suggestions

import (
	"context"

	"github.com/thereayou/duetchat/internal/models"
)

// K — размер пачки подсказок
const K = 3

// GeneralCategory — запасная категория корпуса для добора реплик
const GeneralCategory = "general"

type Kind string

const (
	// KindStarter открывает тему
	KindStarter Kind = "starter"
	// KindReply отвечает на разговор
	KindReply Kind = "reply"
)

// Request описывает один запрос пачки подсказок
type Request struct {
	Category string
	Kind     Kind

	// History — до 10 последних сообщений, самое новое первым
	History []models.Message

	// Exclude — мягкая подсказка «такое не повторять»
	Exclude []string
}

// Provider выдает от 0 до K подсказок. Никогда не возвращает ошибку:
// любой внутренний сбой логируется и заменяется статическим fallback.
type Provider interface {
	Fetch(ctx context.Context, req Request) []string
}
