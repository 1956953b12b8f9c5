// internal/nlu/store/redis.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"defi-nlu/internal/common/database"
	"defi-nlu/internal/nlu/model"
	"defi-nlu/internal/nlu/snapshot"
)

var ErrSnapshotNotFound = errors.New("SNAPSHOT_NOT_FOUND")

// SnapshotStore persists trained models between process restarts.
type SnapshotStore interface {
	Load(ctx context.Context) (*model.Model, error)
	Save(ctx context.Context, m *model.Model) error
}

// RedisSnapshotStore keeps a single encoded snapshot under one key.
type RedisSnapshotStore struct {
	client *database.RedisClient
	key    string
	ttl    time.Duration
}

// NewRedisSnapshotStore stores without expiry when ttl is zero.
func NewRedisSnapshotStore(client *database.RedisClient, key string, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, key: key, ttl: ttl}
}

func (s *RedisSnapshotStore) Key() string { return s.key }

func (s *RedisSnapshotStore) Load(ctx context.Context) (*model.Model, error) {
	data, err := s.client.GetBytes(ctx, s.key)
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.key, err)
	}
	return snapshot.Decode(data)
}

func (s *RedisSnapshotStore) Save(ctx context.Context, m *model.Model) error {
	data, err := snapshot.Encode(m)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl); err != nil {
		return fmt.Errorf("write snapshot %s: %w", s.key, err)
	}
	return nil
}

// Delete drops the stored snapshot so the next start trains from scratch.
func (s *RedisSnapshotStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key)
}
