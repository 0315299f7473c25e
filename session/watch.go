package session

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"

	"go.viam.com/depthtruth/logging"
	"go.viam.com/depthtruth/utils"
)

// Watch reports the index of every image created in the session's images directory until ctx
// is done. The returned channel is closed when watching stops.
func Watch(ctx context.Context, root string, logger logging.Logger) (<-chan int, error) {
	dir := Layout{Root: root}.Dir(KindImage)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, utils.NewIOError("watch", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		return nil, utils.NewIOError("watch", dir, multierr.Combine(err, watcher.Close()))
	}

	out := make(chan int)
	go func() {
		defer close(out)
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warnw("closing watcher", "error", err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) {
					continue
				}
				index, ok := frameIndex(filepath.Base(event.Name))
				if !ok {
					continue
				}
				select {
				case out <- index:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnw("watching session", "dir", dir, "error", err)
			}
		}
	}()
	return out, nil
}
