// Package session keeps each user's in-progress receipt draft between the
// scan, edit, participant and assignment steps.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/buriane/taghiane/internal/models"
)

// ErrNoDraft is returned when the user has no draft in progress.
var ErrNoDraft = errors.New("no draft in progress")

const keyPrefix = "taghiane:draft:"

// Store holds one draft per user.
type Store interface {
	Get(ctx context.Context, userID string) (models.Receipt, error)
	// Put stores the draft and refreshes its expiry.
	Put(ctx context.Context, userID string, draft models.Receipt) error
	// Delete removes the draft. Deleting a missing draft is not an error.
	Delete(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}

// RedisStore stores drafts as JSON values with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore constructs a draft store. A non-positive ttl keeps drafts forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, ttl: ttl}
}

func key(userID string) string {
	return keyPrefix + userID
}

func (s *RedisStore) Get(ctx context.Context, userID string) (models.Receipt, error) {
	var draft models.Receipt
	data, err := s.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return draft, ErrNoDraft
	}
	if err != nil {
		return draft, fmt.Errorf("load draft: %w", err)
	}
	if err := json.Unmarshal(data, &draft); err != nil {
		return draft, fmt.Errorf("decode draft: %w", err)
	}
	return draft, nil
}

func (s *RedisStore) Put(ctx context.Context, userID string, draft models.Receipt) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
