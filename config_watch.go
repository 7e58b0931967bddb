package marionette

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchMixConfig reloads the mix configuration at path whenever the file is
// written or created, and passes the result to onChange.
// The parent directory is watched so editors that save by rename are seen.
// Watching stops when ctx is done.
//
// onChange runs on the watcher goroutine. Hand the config to the goroutine
// that owns the AnimationStateData instead of applying it there.
func WatchMixConfig(ctx context.Context, path string, onChange func(*MixConfig, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch mix config: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("watch mix config: %w", err)
	}
	name := filepath.Clean(path)

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != name || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				Logger().Debug("mix config changed", "path", path, "op", ev.Op.String())
				onChange(LoadMixConfig(path))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				onChange(nil, fmt.Errorf("watch mix config: %w", err))
			}
		}
	}()
	return nil
}
