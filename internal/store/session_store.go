package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"intervue/internal/models"
)

// RedisSessionStore persists session aggregates as JSON snapshots in Redis.
// Each save is a single SET, so a reload always observes the last applied
// mutation or an earlier one, never a torn write.
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func sessionKey(candidateID string) string {
	return fmt.Sprintf("session:%s", candidateID)
}

func (s *RedisSessionStore) Save(ctx context.Context, candidateID string, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(candidateID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Load(ctx context.Context, candidateID string) (*models.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(candidateID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode persisted session: %w", err)
	}
	return &sess, nil
}

func (s *RedisSessionStore) Reset(ctx context.Context, candidateID string) error {
	if err := s.rdb.Del(ctx, sessionKey(candidateID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
