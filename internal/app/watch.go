package app

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDelay coalesces bursts of writes into one rerun.
const DefaultWatchDelay = 100 * time.Millisecond

// WatchScript runs the script at path, then runs it again every time the
// file is written or replaced, until ctx is done. Failed runs are logged
// and do not stop the watch. The containing directory is watched so editors
// that replace the file on save are handled.
func (app *Application) WatchScript(ctx context.Context, path string, delay time.Duration) error {
	if delay <= 0 {
		delay = DefaultWatchDelay
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return NewOperationError("watch", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return NewOperationError("watch", path, err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return NewOperationError("watch", path, err)
	}

	log := app.logger.WithComponent("watch").WithField("script", filepath.Base(abs))
	rerun := func() {
		if err := app.RunScript(ctx, abs); err != nil {
			if errors.Is(err, ErrClosed) {
				return
			}
			log.Warn("run failed: %v", err)
			return
		}
		log.Info("script ran")
	}
	rerun()

	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			timer.Reset(delay)

		case <-timer.C:
			rerun()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error: %v", err)
		}
	}
}
