package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/tactical-os/tos/config"
	"github.com/tactical-os/tos/logging"
)

// ReloadFunc receives a freshly loaded and validated configuration.
type ReloadFunc func(cfg *config.Config, file string)

// ConfigWatcher watches one configuration file and reloads it on change.
// Invalid files are logged and ignored so the running configuration stays
// in effect.
type ConfigWatcher struct {
	watcher   *fsnotify.Watcher
	path      string
	target    string // resolved symlink target, if path is a link
	debounce  time.Duration
	onReload  ReloadFunc
	logger    *logrus.Entry
	mu        sync.Mutex
	timer     *time.Timer
	closeOnce sync.Once
}

// NewConfigWatcher creates a watcher for path. Rapid writes within
// debounceMs are coalesced into one reload. fsnotify does not follow
// symlinks, so a linked config also has its target directory watched.
func NewConfigWatcher(path string, debounceMs int, onReload ReloadFunc) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger("config-watcher")
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	// Editors replace files on save, so the directory is watched rather
	// than the file itself.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	target := ""
	if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			target = resolved
			if filepath.Dir(resolved) != filepath.Dir(abs) {
				if err := watcher.Add(filepath.Dir(resolved)); err != nil {
					logger.WithError(err).Warnf("Failed to watch symlink target dir %s", filepath.Dir(resolved))
				} else {
					logger.Debugf("Watching symlink target directory: %s", filepath.Dir(resolved))
				}
			}
		} else {
			logger.WithError(err).Warnf("Failed to resolve symlink %s", abs)
		}
	}

	if debounceMs <= 0 {
		debounceMs = 100
	}

	return &ConfigWatcher{
		watcher:  watcher,
		path:     abs,
		target:   target,
		debounce: time.Duration(debounceMs) * time.Millisecond,
		onReload: onReload,
		logger:   logger,
	}, nil
}

// Start begins watching for config changes. It blocks until the context is
// cancelled.
func (w *ConfigWatcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if event.Name != w.path && (w.target == "" || event.Name != w.target) {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.Close()
			return
		}
	}
}

// schedule (re)arms the debounce timer.
func (w *ConfigWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *ConfigWatcher) reload() {
	cfg, err := config.Load(w.path)
	if err != nil {
		w.logger.WithError(err).Warnf("Ignoring invalid config %s", filepath.Base(w.path))
		return
	}

	w.logger.Infof("Config changed: %s", filepath.Base(w.path))
	if w.onReload != nil {
		w.onReload(cfg, filepath.Base(w.path))
	}
}

// Close stops the watcher and releases resources.
func (w *ConfigWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}
