package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RoutingState is the folder selection remembered between queries of one
// user session. A nil CategoryID means no selection.
type RoutingState struct {
	CategoryID    *uint `json:"category_id"`
	SubcategoryID *uint `json:"subcategory_id"`
}

// SessionStore persists routing state between requests. Implementations are
// injected into the FolderRouter so tests can substitute an in-memory store.
type SessionStore interface {
	Routing(ctx context.Context, userID uint) (RoutingState, error)
	SetRouting(ctx context.Context, userID uint, state RoutingState) error
	ClearRouting(ctx context.Context, userID uint) error
}

// RedisSessionStore keeps routing state in Redis with a session TTL, so
// state disappears with the session.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore creates a RedisSessionStore.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func routingKey(userID uint) string {
	return fmt.Sprintf("user:%d:routing", userID)
}

// Routing returns the stored state, or the zero state when none exists.
func (s *RedisSessionStore) Routing(ctx context.Context, userID uint) (RoutingState, error) {
	raw, err := s.rdb.Get(ctx, routingKey(userID)).Result()
	if err == redis.Nil {
		return RoutingState{}, nil
	}
	if err != nil {
		return RoutingState{}, fmt.Errorf("read routing state: %w", err)
	}
	var state RoutingState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return RoutingState{}, fmt.Errorf("decode routing state: %w", err)
	}
	return state, nil
}

// SetRouting stores the state, refreshing the session TTL.
func (s *RedisSessionStore) SetRouting(ctx context.Context, userID uint, state RoutingState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode routing state: %w", err)
	}
	return s.rdb.Set(ctx, routingKey(userID), payload, s.ttl).Err()
}

// ClearRouting removes the stored state.
func (s *RedisSessionStore) ClearRouting(ctx context.Context, userID uint) error {
	return s.rdb.Del(ctx, routingKey(userID)).Err()
}
