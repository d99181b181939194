package analysisfile

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"mua-risk/core/engine"
	"mua-risk/internal/errors"
	"mua-risk/internal/logging"
)

// Watch monitors path and calls onChange with the reloaded input each time
// the file is saved. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so saves that
// replace the file through a rename keep being seen. A reload that fails is
// logged and skipped; onChange is not called and the caller keeps its
// previous input.
func Watch(ctx context.Context, path string, defaults Defaults, onChange func(engine.Input)) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound("analysis file", path)
		}
		return errors.Wrap(errors.TypeInput, "cannot stat analysis file", err).WithContext("path", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	log := logging.Named("analysisfile").With(zap.String("path", path))
	log.Info("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			in, err := Load(path, defaults)
			if err != nil {
				log.Error("reload failed, keeping previous analysis", zap.Error(err))
				continue
			}

			log.Debug("reloaded", zap.String("op", event.Op.String()))
			onChange(in)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", zap.Error(err))
		}
	}
}
