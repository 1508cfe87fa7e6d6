// Package watch hot-reloads the runtime configuration file.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/querygate/internal/config"
	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/field"
	"github.com/kailas-cloud/querygate/internal/metrics"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher publishes the latest valid runtime snapshot. A reload that fails to
// parse or validate is logged and the previous snapshot stays live.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger

	current atomic.Pointer[config.Snapshot]

	fsw     *fsnotify.Watcher
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New loads path and prepares a watcher for it. The initial load must succeed.
func New(path string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("runtime config path is required")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	snap, err := config.LoadRuntime(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		logger:   logger.With(zap.String("path", path)),
		fsw:      fsw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	w.current.Store(snap)
	return w, nil
}

// Fields returns the current field registry.
func (w *Watcher) Fields() *field.Registry { return w.current.Load().Fields() }

// QueryManipulation returns the current enrichment settings.
func (w *Watcher) QueryManipulation() domain.QueryManipulation {
	return w.current.Load().QueryManipulation()
}

// Snapshot returns the current snapshot.
func (w *Watcher) Snapshot() *config.Snapshot { return w.current.Load() }

// Start watches the file's directory, so atomic renames by editors and config
// management are seen. It returns immediately.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.running = true
	go w.run(ctx)
	w.logger.Info("Watching runtime config")
	return nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	return w.fsw.Close()
}

// Reload re-reads the file now. On failure the previous snapshot is kept.
func (w *Watcher) Reload() error {
	snap, err := config.LoadRuntime(w.path)
	if err != nil {
		metrics.RuntimeConfigReloadsTotal.WithLabelValues("error").Inc()
		w.logger.Error("Runtime config reload rejected, keeping previous", zap.Error(err))
		return err
	}
	w.current.Store(snap)
	metrics.RuntimeConfigReloadsTotal.WithLabelValues("success").Inc()
	w.logger.Info("Runtime config reloaded",
		zap.Int("fields", snap.Fields().Len()),
		zap.Bool("query_manipulation", snap.QueryManipulation().Enabled),
	)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Runtime config watcher error", zap.Error(err))

		case <-timerCh:
			timerCh = nil
			_ = w.Reload()
		}
	}
}
