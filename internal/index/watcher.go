package index

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/farbraum/projektor/internal/project"
	"github.com/farbraum/projektor/internal/storage"
)

// Watch starts an fsnotify watcher over the store root and re-syncs the
// index after record files change, until ctx is cancelled. Bursts of
// events (a project being archived moves a whole directory) collapse into
// one debounced sync pass.
//
// New directories created at runtime are added to the watch list.
func Watch(ctx context.Context, db ProjectIndex, store *storage.Store[*project.Project], logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, store.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", store.Root()))

	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(500 * time.Millisecond)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(500 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			if err := Sync(db, store, logger); err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// New directories join the watch list.
			if ev.Op&fsnotify.Create != 0 {
				if addErr := addDirsRecursive(w, ev.Name); addErr == nil {
					logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
				}
			}
			if recordEvent(ev) {
				scheduleSync()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// recordEvent reports whether an event concerns a record file or a
// directory move that may carry record files with it.
func recordEvent(ev fsnotify.Event) bool {
	if strings.HasSuffix(ev.Name, "."+project.FileExtension) {
		return true
	}
	return ev.Op&(fsnotify.Rename|fsnotify.Remove|fsnotify.Create) != 0
}

// addDirsRecursive walks root and adds every directory to the watcher.
// Non-directories and unreadable paths are ignored.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || !d.IsDir() {
			return nil //nolint:nilerr // skip unreadable entries
		}
		return w.Add(p)
	})
}
