package credentials

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/inspectgw/pkg/log"
)

// DefaultDebounceDelay is the quiet period after a change before reloading.
const DefaultDebounceDelay = 100 * time.Millisecond

// Watcher reloads a credentials file into a Holder when it changes on disk.
// A reload that fails to parse or validate keeps the previous credentials.
type Watcher struct {
	path          string
	req           Requirement
	holder        *Holder
	logger        log.Logger
	debounceDelay time.Duration

	mu       sync.Mutex
	debounce *time.Timer
	reloads  int
}

// NewWatcher creates a watcher for path whose reloads are validated against
// req. A zero delay uses DefaultDebounceDelay.
func NewWatcher(path string, req Requirement, holder *Holder, logger log.Logger, delay time.Duration) *Watcher {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Watcher{
		path:          path,
		req:           req,
		holder:        holder,
		logger:        logger,
		debounceDelay: delay,
	}
}

// Run watches the directory holding the file until ctx is cancelled.
// Events for other names in the directory are ignored; a rename onto the
// watched name counts as a change.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching credentials file", log.String("path", w.path))

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			w.stopDebounce()
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
			w.logger.Error("credentials watcher error", log.Err(err))
		}
	}
}

// Reloads returns how many successful reloads have happened.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceDelay, w.reload)
}

func (w *Watcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}

func (w *Watcher) reload() {
	c, err := Load(w.path, w.req)
	if err != nil {
		w.logger.Error("credentials reload failed, keeping previous credentials",
			log.String("path", w.path),
			log.Err(err))
		return
	}
	w.holder.Set(c)

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()

	w.logger.Info("credentials reloaded",
		log.String("user", c.User),
		log.String("dsn", c.DSN))
}
