package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/miosa/vscroll/deferred"
)

// defaultDebounce collapses the burst of events editors emit on save.
const defaultDebounce = 150 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk. Bursts of
// filesystem events coalesce into one reload through a deferred.Scheduler.
type Watcher struct {
	path     string
	fw       *fsnotify.Watcher
	sched    deferred.Scheduler
	debounce time.Duration
	logger   *zap.Logger
	onChange func(Config, error)

	mu    sync.Mutex
	token deferred.Token
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(l *zap.Logger) WatchOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher watches path, calling onChange with the reloaded config (or the
// load error) after each settled change. The parent directory is created if
// missing so the file can appear later.
func NewWatcher(path string, sched deferred.Scheduler, onChange func(Config, error), opts ...WatchOption) (*Watcher, error) {
	w := &Watcher{
		path:     filepath.Clean(path),
		sched:    sched,
		debounce: defaultDebounce,
		logger:   zap.NewNop(),
		onChange: onChange,
	}
	for _, o := range opts {
		o(w)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w.fw = fw
	return w, nil
}

// Run delivers reloads until ctx is cancelled or the underlying watcher is
// closed. Watcher errors are logged and watching continues. It always closes
// the watcher and cancels a pending reload on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			w.logger.Debug("config event", zap.String("op", ev.Op.String()))
			w.schedule()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			// Overflow and similar errors lose events, not the watch itself.
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.token = w.sched.Replace(w.token, w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := LoadFile(w.path)
	if err != nil {
		w.logger.Warn("config reload failed", zap.Error(err))
	} else {
		w.logger.Info("config reloaded", zap.String("path", w.path))
	}
	if w.onChange != nil {
		w.onChange(cfg, err)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.sched.Cancel(w.token)
	w.token = 0
	w.mu.Unlock()
	w.fw.Close()
}
