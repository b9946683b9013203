package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/complitracker/complitracker-go/internal/storage"
)

// DefaultPrefix is prepended to every key.
const DefaultPrefix = "complitracker:"

const changesChannel = "changes"

// Store is a Redis-backed storage.Backend.
type Store struct {
	rdb    goredis.UniversalClient
	prefix string
	logger *slog.Logger
	owned  bool
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New wraps an existing client. Close leaves the client open.
func New(rdb goredis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		rdb:    rdb,
		prefix: DefaultPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to addr, verifies the connection with PING and returns a
// store that owns the client.
func Dial(ctx context.Context, addr, password string, db int, opts ...Option) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis store: ping %s: %w", addr, err)
	}
	s := New(rdb, opts...)
	s.owned = true
	return s, nil
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Get reads the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrKeyNotFound
	}
	if errors.Is(err, goredis.ErrClosed) {
		return nil, storage.ErrClosed
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set stores value under key without expiry and announces the change.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.key(key), value, 0)
		pipe.Publish(ctx, s.key(changesChannel), key)
		return nil
	})
	if errors.Is(err, goredis.ErrClosed) {
		return storage.ErrClosed
	}
	return err
}

// Delete removes key and announces the change if it existed.
func (s *Store) Delete(ctx context.Context, key string) error {
	n, err := s.rdb.Del(ctx, s.key(key)).Result()
	if errors.Is(err, goredis.ErrClosed) {
		return storage.ErrClosed
	}
	if err != nil {
		return err
	}
	if n > 0 {
		if err := s.rdb.Publish(ctx, s.key(changesChannel), key).Err(); err != nil {
			s.logger.Warn("publish token store change failed", "key", key, "error", err)
		}
	}
	return nil
}

// Watch subscribes to change announcements until ctx is done.
func (s *Store) Watch(ctx context.Context, fn func(key string)) error {
	sub := s.rdb.Subscribe(ctx, s.key(changesChannel))
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe: %w", err)
	}
	s.logger.Debug("watching token store", "channel", s.key(changesChannel))

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			fn(strings.TrimSpace(msg.Payload))
		case <-ctx.Done():
			return nil
		}
	}
}

// Close closes the client if the store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.rdb.Close()
}
