package suggestions

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const servedTTL = time.Hour

// ServedStore помнит в redis, какие подсказки комната уже видела,
// и усиливает exclude при shuffle. Любая проблема с redis — повод
// молча работать без памяти, а не ронять выборку.
type ServedStore struct {
	rdb *redis.Client
}

func NewServedStore(rdb *redis.Client) *ServedStore {
	return &ServedStore{rdb: rdb}
}

func (s *ServedStore) key(roomID string) string {
	return "suggestions:served:" + roomID
}

func (s *ServedStore) Remember(ctx context.Context, roomID string, texts []string) {
	if s == nil || s.rdb == nil || len(texts) == 0 {
		return
	}

	members := make([]interface{}, len(texts))
	for i, t := range texts {
		members[i] = t
	}

	pipe := s.rdb.Pipeline()
	pipe.SAdd(ctx, s.key(roomID), members...)
	pipe.Expire(ctx, s.key(roomID), servedTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warnf("suggestions: served set update failed: %v", err)
	}
}

func (s *ServedStore) Recent(ctx context.Context, roomID string) []string {
	if s == nil || s.rdb == nil {
		return nil
	}

	texts, err := s.rdb.SMembers(ctx, s.key(roomID)).Result()
	if err != nil {
		log.Warnf("suggestions: served set read failed: %v", err)
		return nil
	}
	return texts
}

func (s *ServedStore) Clear(ctx context.Context, roomID string) {
	if s == nil || s.rdb == nil {
		return
	}

	if err := s.rdb.Del(ctx, s.key(roomID)).Err(); err != nil {
		log.Warnf("suggestions: served set clear failed: %v", err)
	}
}
