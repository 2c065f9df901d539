package suggestions

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/thereayou/duetchat/internal/database"
)

// DatabaseSampler берет случайные подсказки из засеянного корпуса
type DatabaseSampler struct {
	db *database.Database
}

func NewDatabaseSampler(db *database.Database) *DatabaseSampler {
	return &DatabaseSampler{db: db}
}

func (s *DatabaseSampler) Fetch(ctx context.Context, req Request) []string {
	rows, err := s.db.SampleSuggestions(req.Category, string(req.Kind), K, req.Exclude)
	if err != nil {
		log.Errorf("suggestions: corpus sample failed: %v", err)
		return Fallback(req.Kind)
	}

	texts := make([]string, 0, K)
	for _, row := range rows {
		texts = append(texts, row.Text)
	}

	// Для реплик добираем из общей категории, без повторов по тексту.
	// Если и там пусто — отдаем сколько есть.
	if req.Kind == KindReply && len(texts) < K && req.Category != GeneralCategory {
		exclude := append(append([]string{}, req.Exclude...), texts...)
		extra, err := s.db.SampleSuggestions(GeneralCategory, string(req.Kind), K-len(texts), exclude)
		if err != nil {
			log.Errorf("suggestions: fallback category sample failed: %v", err)
			return Fallback(req.Kind)
		}
		for _, row := range extra {
			texts = append(texts, row.Text)
		}
	}

	if len(texts) == 0 {
		return Fallback(req.Kind)
	}
	return texts
}
