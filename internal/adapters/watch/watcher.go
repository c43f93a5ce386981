// Package watch reports changes to a single file, such as the session file
// being rewritten by another teams process.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 50 * time.Millisecond

type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	fs     *fsnotify.Watcher
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// File starts watching path and calls onChange, at most once per debounce
// window, whenever the file is written, created, replaced or removed. The
// parent directory is watched so atomic renames are seen. The directory is
// created when missing. File returns once the watch is active.
func File(ctx context.Context, path string, onChange func(), opts ...Option) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("onChange is required")
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: defaultDebounce,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create watch directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w.fs = fsw

	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx, onChange)
	return w, nil
}

func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher and waits for the event loop to exit. No callback
// runs after Close returns.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		<-w.done
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context, onChange func()) {
	defer close(w.done)

	// Reset discards a pending fire, so a burst collapses into one callback.
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || !relevant(event) {
				continue
			}
			w.logger.Debug("session file changed", slog.String("path", w.path), slog.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case <-timer.C:
			onChange()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", slog.String("path", w.path), slog.Any("error", err))
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
