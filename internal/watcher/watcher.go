// Package watcher turns a session's segment directory into a sequence of
// newly available segment indices. Directory events from fsnotify wake the
// scan early; a polling ticker is always running underneath because the
// segmenter is an external process and inotify support is not guaranteed
// for every filesystem the session directory may live on.
package watcher

import (
	"context"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bobbygenerik/stream-transcribe-server/internal/segmenter"
)

const DefaultPollInterval = time.Second

// Watcher produces the indices of finalized chunks appearing in one
// directory, each index exactly once, in ascending order per scan.
type Watcher struct {
	dir      string
	interval time.Duration
}

func New(dir string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{dir: dir, interval: interval}
}

// Watch starts scanning and returns a channel of new segment indices. The
// channel is closed when ctx is cancelled. Each call starts a fresh scan:
// indices already visible in the directory are emitted first, so a
// restarted consumer can rely on its own processed set for deduplication.
func (w *Watcher) Watch(ctx context.Context) <-chan int {
	out := make(chan int)
	go w.run(ctx, out)
	return out
}

func (w *Watcher) run(ctx context.Context, out chan<- int) {
	defer close(out)

	var events <-chan fsnotify.Event
	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		if err := fsw.Add(w.dir); err != nil {
			log.Printf("Watcher: fsnotify unavailable for %s, polling only: %v", w.dir, err)
			fsw.Close()
			fsw = nil
		}
	} else {
		log.Printf("Watcher: fsnotify init failed, polling only: %v", err)
		fsw = nil
	}
	if fsw != nil {
		defer fsw.Close()
		events = fsw.Events
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	seen := make(map[int]struct{})
	if !w.scan(ctx, seen, out) {
		return
	}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			// A finalized chunk appears via create or rename; a scan picks
			// up whatever is visible either way.
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.scan(ctx, seen, out) {
				return
			}

		case <-ticker.C:
			if !w.scan(ctx, seen, out) {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// scan lists the directory and emits unseen indices in ascending order.
// Returns false once ctx is cancelled.
func (w *Watcher) scan(ctx context.Context, seen map[int]struct{}, out chan<- int) bool {
	indices, err := segmenter.ListIndices(w.dir)
	if err != nil {
		log.Printf("Watcher: scan %s: %v", w.dir, err)
		return true
	}
	for _, index := range indices {
		if _, ok := seen[index]; ok {
			continue
		}
		select {
		case out <- index:
			seen[index] = struct{}{}
		case <-ctx.Done():
			return false
		}
	}
	return true
}
