package cliconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/kingrid/internal/ports"
)

// DefaultReloadDelay coalesces the burst of events an editor produces when
// saving a file.
const DefaultReloadDelay = 100 * time.Millisecond

// Watcher reloads the config file when it changes and reports the resulting
// configuration. Flags and environment keep their precedence over the file.
type Watcher struct {
	path     string
	base     Config
	changed  map[string]bool
	onChange func(Config)
	logger   ports.Logger
	delay    time.Duration

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher creates a watcher for path. base holds the defaults with flag
// values applied; changed names the flags set on the command line.
func NewWatcher(path string, base Config, changed map[string]bool, logger ports.Logger, onChange func(Config)) *Watcher {
	return &Watcher{
		path:     path,
		base:     base,
		changed:  changed,
		onChange: onChange,
		logger:   logger,
		delay:    DefaultReloadDelay,
	}
}

// Run watches the file's directory until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	defer w.stopTimer()

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", ports.Err(err))
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}

// reload reads the file and reports the result. Invalid files are logged
// and leave the running configuration alone.
func (w *Watcher) reload() {
	cfg, err := w.Load()
	if err != nil {
		w.logger.Warn("ignoring config change", ports.String("path", w.path), ports.Err(err))
		return
	}
	w.logger.Info("config reloaded", ports.String("path", w.path))
	w.onChange(cfg)
}

// Load builds the configuration from the base, the file and the environment.
func (w *Watcher) Load() (Config, error) {
	cfg := w.base
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := ApplyFileConfig(&cfg, fc, w.changed); err != nil {
		return cfg, err
	}
	if err := ApplyEnvConfig(&cfg, w.changed); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
