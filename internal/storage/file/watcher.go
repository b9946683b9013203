package file

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reports keys whose files are written, replaced or removed by any
// process. The directory is watched rather than single files so renames
// into place are seen. Events on a key are coalesced until the key has
// been quiet for the debounce period. Watch blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, fn func(key string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	s.logger.Debug("watching token store", "dir", s.dir, "debounce", s.debounce)

	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	flush := func() {
		keys := make([]string, 0, len(pending))
		for key := range pending {
			keys = append(keys, key)
		}
		clear(pending)
		sort.Strings(keys)
		for _, key := range keys {
			fn(key)
		}
	}

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			key, ok := keyFor(event.Name)
			if !ok {
				continue
			}
			s.logger.Debug("token store changed",
				"key", key,
				"op", event.Op.String())
			pending[key] = struct{}{}
			if s.debounce <= 0 {
				flush()
				continue
			}
			timer.Reset(s.debounce)
		case <-timer.C:
			flush()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("token store watcher error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}
