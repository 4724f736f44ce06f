package hub

import (
	"context"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates the cache scan when the cache directory changes, so
// artifacts dropped in (or deleted) out of band show up without a restart.
type Watcher struct {
	cache   *Cache
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

// NewWatcher starts watching the cache directory. Close releases it.
func NewWatcher(cache *Cache) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(cache.Dir()); err != nil {
		_ = fw.Close()
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{cache: cache, watcher: fw, cancel: cancel}
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) != 0 {
				w.cache.Invalidate()
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next explicit Invalidate or
			// restart recovers.
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}
