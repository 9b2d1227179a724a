package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "intake:session:"

// Store implements ports.StateStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the expiration for sessions.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client { return s.client }

// Prefix returns the key prefix.
func (s *Store) Prefix() string { return s.prefix }

func (s *Store) key(key string) string {
	return s.prefix + key
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the state and indexes its key.
func (s *Store) Save(ctx context.Context, key string, state *domain.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)

	// Index score is the expiry time, so List can prune lazily.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: key})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the state from Redis.
func (s *Store) Load(ctx context.Context, key string) (*domain.SessionState, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var state domain.SessionState
	if err := json.Unmarshal(val, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if state.Answers == nil {
		state.Answers = make(domain.Answers)
	}
	return &state, nil
}

// Delete removes the session and its index entry.
func (s *Store) Delete(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns live session keys, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return keys, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
