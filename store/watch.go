package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"backoffice/pkg/logger"
)

// Watch calls onChange whenever the file at path is written, replaced or
// removed, until ctx is done. The parent directory is watched so atomic
// renames onto path are seen.
func Watch(ctx context.Context, path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					logger.Sugar.Debugf("Store file changed: %s", event)
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Sugar.Warnf("Error watching store file: %v", err)
			}
		}
	}()
	return nil
}
