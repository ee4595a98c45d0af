// Package watch reloads a key map override file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"akhor/internal/keymap"
)

const DefaultDelay = 100 * time.Millisecond

// ReloadFunc receives each successfully parsed table. Returning an error
// rejects the table; the error is logged and the previous table stays live.
type ReloadFunc func(*keymap.Table) error

type Watcher struct {
	path     string
	delay    time.Duration
	onReload ReloadFunc
	logger   *slog.Logger

	fs    *fsnotify.Watcher
	mu    sync.Mutex
	timer *time.Timer
	wg    sync.WaitGroup
}

func New(path string, onReload ReloadFunc, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: path, delay: DefaultDelay, onReload: onReload, logger: logger}
}

// WithDelay sets how long the watcher waits for writes to settle.
func (w *Watcher) WithDelay(d time.Duration) *Watcher {
	if d > 0 {
		w.delay = d
	}
	return w
}

// Start watches the directory holding the file, so editors that replace the
// file by rename are still seen. It stops when ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(w.path)); err != nil {
		fs.Close()
		return fmt.Errorf("watch: %w", err)
	}
	w.fs = fs

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()
	return nil
}

// Wait blocks until the watcher has stopped.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.fs.Close()
	defer w.stopTimer()

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("key map watch error", "error", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		if err := w.Reload(); err != nil {
			w.logger.Error("key map reload failed", "path", w.path, "error", err)
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Reload parses the file now and hands the result to the callback.
func (w *Watcher) Reload() error {
	table, err := keymap.LoadFile(w.path)
	if err != nil {
		return err
	}
	if err := w.onReload(table); err != nil {
		return err
	}
	w.logger.Info("key map reloaded", "path", w.path, "tokens", table.Len())
	return nil
}
