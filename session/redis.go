package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spotifai/deepagent/core"
)

// RedisStore is a StateStore backed by Redis. Snapshots are stored as JSON
// under a prefixed key per thread, optionally with a TTL so abandoned
// conversations expire on their own.
type RedisStore struct {
	client *redis.Client
	opts   RedisStoreOptions
}

// RedisStoreOptions configure key layout and expiry of a RedisStore.
type RedisStoreOptions struct {
	// KeyPrefix is prepended to every thread id to form the Redis key.
	KeyPrefix string
	// TTL expires snapshots after the given duration; zero keeps them forever.
	TTL time.Duration
}

// NewRedisStore creates a store on top of an existing Redis client.
func NewRedisStore(client *redis.Client, optFns ...func(o *RedisStoreOptions)) *RedisStore {
	opts := RedisStoreOptions{
		KeyPrefix: "deepagent:state:",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RedisStore{client: client, opts: opts}
}

func (s *RedisStore) key(threadID string) string {
	return s.opts.KeyPrefix + threadID
}

// Load fetches and decodes the snapshot for the thread. Unknown threads
// yield a fresh empty state.
func (s *RedisStore) Load(ctx context.Context, threadID string) (*core.State, error) {
	raw, err := s.client.Get(ctx, s.key(threadID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get state for thread %s: %w", threadID, err)
	}
	state := core.NewState()
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("decode state for thread %s: %w", threadID, err)
	}
	return state, nil
}

// Save encodes and stores the snapshot for the thread.
func (s *RedisStore) Save(ctx context.Context, threadID string, state *core.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state for thread %s: %w", threadID, err)
	}
	if err := s.client.Set(ctx, s.key(threadID), raw, s.opts.TTL).Err(); err != nil {
		return fmt.Errorf("redis set state for thread %s: %w", threadID, err)
	}
	return nil
}

// Delete removes the snapshot for a thread.
func (s *RedisStore) Delete(ctx context.Context, threadID string) error {
	if err := s.client.Del(ctx, s.key(threadID)).Err(); err != nil {
		return fmt.Errorf("redis del state for thread %s: %w", threadID, err)
	}
	return nil
}
