package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/complitracker/complitracker-go/internal/storage"
)

const (
	dirMode  = 0o700
	fileMode = 0o600

	tmpPrefix = ".tmp-"

	// DefaultDebounce is how long Watch waits for a burst of events on a
	// key to settle before reporting it.
	DefaultDebounce = 100 * time.Millisecond
)

// Store is a directory-backed storage.Backend.
type Store struct {
	dir      string
	logger   *slog.Logger
	debounce time.Duration
	closed   atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithDebounce sets the quiet period Watch waits before reporting a key.
// Zero reports every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		s.debounce = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New opens dir as a store, creating it with mode 0700 if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("file store: dir is required")
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("file store: create dir: %w", err)
	}

	s := &Store{dir: dir, logger: slog.Default(), debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file that holds key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key))
}

// Get reads the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set writes value under key atomically with mode 0600.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}

	tmp, err := os.CreateTemp(s.dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// Delete removes key. Removing an absent key succeeds.
func (s *Store) Delete(_ context.Context, key string) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}
	err := os.Remove(s.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Close marks the store closed. Files stay on disk.
func (s *Store) Close() error {
	s.closed.Store(true)
	return nil
}

// keyFor maps a file name in the store directory back to its key.
func keyFor(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, tmpPrefix) {
		return "", false
	}
	key, err := url.QueryUnescape(base)
	if err != nil {
		return "", false
	}
	return key, true
}
