package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/complitracker/complitracker-go/pkg/crypto/adaptive"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("store closed")
)

const (
	keyToken        = "token"
	keyRefreshToken = "refresh_token"
)

// Backend is the byte-level key/value contract every store backend meets.
//
// Get returns ErrKeyNotFound for absent keys. Delete of an absent key is
// not an error.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Watcher is implemented by backends that can report writes made by other
// processes. fn receives the changed key. Watch blocks until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, fn func(key string)) error
}

// TokenStore saves, loads and clears the session token of one origin.
type TokenStore struct {
	backend Backend
	origin  string
	cipher  adaptive.Cipher
	logger  *slog.Logger
}

// Option configures a TokenStore.
type Option func(*TokenStore)

// WithCipher seals values at rest.
func WithCipher(c adaptive.Cipher) Option {
	return func(s *TokenStore) {
		s.cipher = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *TokenStore) {
		s.logger = logger
	}
}

// NewTokenStore creates a token store for origin on top of backend.
func NewTokenStore(backend Backend, origin string, opts ...Option) *TokenStore {
	s := &TokenStore{
		backend: backend,
		origin:  NormalizeOrigin(origin),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeOrigin reduces a base URL to scheme://host[:port] in lower case.
// Inputs that do not parse as an absolute URL are trimmed and lower-cased.
func NormalizeOrigin(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(strings.TrimRight(raw, "/"))
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

// Origin returns the origin the store is scoped to.
func (s *TokenStore) Origin() string {
	return s.origin
}

// Key returns the backend key for name under the store's origin.
func (s *TokenStore) Key(name string) string {
	return s.origin + "/" + name
}

// Save stores the session token. An empty token clears it.
func (s *TokenStore) Save(ctx context.Context, token string) error {
	return s.put(ctx, keyToken, token)
}

// Load returns the stored session token. ok is false when nothing is stored.
func (s *TokenStore) Load(ctx context.Context) (string, bool, error) {
	return s.get(ctx, keyToken)
}

// SaveRefresh stores the refresh token. An empty token clears it.
func (s *TokenStore) SaveRefresh(ctx context.Context, token string) error {
	return s.put(ctx, keyRefreshToken, token)
}

// LoadRefresh returns the stored refresh token.
func (s *TokenStore) LoadRefresh(ctx context.Context) (string, bool, error) {
	return s.get(ctx, keyRefreshToken)
}

// Clear removes the session and refresh tokens. Clearing an empty store
// succeeds.
func (s *TokenStore) Clear(ctx context.Context) error {
	var errs []error
	for _, name := range []string{keyToken, keyRefreshToken} {
		if err := s.backend.Delete(ctx, s.Key(name)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// Watch reports changes to this origin's session token made elsewhere.
// It returns immediately with false when the backend cannot watch.
func (s *TokenStore) Watch(ctx context.Context, fn func()) (bool, error) {
	w, ok := s.backend.(Watcher)
	if !ok {
		return false, nil
	}
	tokenKey := s.Key(keyToken)
	return true, w.Watch(ctx, func(key string) {
		if key == tokenKey {
			fn()
		}
	})
}

// Close closes the backend.
func (s *TokenStore) Close() error {
	return s.backend.Close()
}

func (s *TokenStore) put(ctx context.Context, name, value string) error {
	key := s.Key(name)
	if value == "" {
		if err := s.backend.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", name, err)
		}
		return nil
	}

	data := []byte(value)
	if s.cipher != nil {
		sealed, err := s.cipher.Encrypt(data, []byte(key))
		if err != nil {
			return fmt.Errorf("seal %s: %w", name, err)
		}
		data = sealed
	}

	if err := s.backend.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

func (s *TokenStore) get(ctx context.Context, name string) (string, bool, error) {
	key := s.Key(name)
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", name, err)
	}

	if s.cipher != nil {
		plain, err := s.cipher.Decrypt(data, []byte(key))
		if err != nil {
			// A value sealed with another key is unreadable, not fatal.
			s.logger.Warn("stored value could not be opened, ignoring",
				"key", key,
				"error", err)
			return "", false, nil
		}
		data = plain
	}

	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}
