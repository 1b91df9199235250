// Package broadcast fans new caption entries out to the live viewers of one
// session. Delivery is best effort: each subscriber gets a bounded buffer,
// and a subscriber that cannot keep up is dropped rather than allowed to
// stall the pipeline or its peers.
package broadcast

import (
	"log"
	"sync"

	"github.com/bobbygenerik/stream-transcribe-server/internal/caption"
)

const DefaultBufferSize = 16

// Subscriber is one live viewer connection's receive side. Its channel is
// closed when the subscriber is removed or the broadcaster shuts down.
type Subscriber struct {
	ch   chan caption.Entry
	once sync.Once
}

func (s *Subscriber) Entries() <-chan caption.Entry {
	return s.ch
}

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Broadcaster holds one session's subscriber set.
type Broadcaster struct {
	mu      sync.Mutex
	subs    map[*Subscriber]struct{}
	bufSize int
	closed  bool
}

func New(bufSize int) *Broadcaster {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Broadcaster{
		subs:    make(map[*Subscriber]struct{}),
		bufSize: bufSize,
	}
}

// Subscribe registers a new viewer. There is no backlog replay: the viewer
// only receives entries published after this call. Subscribing to a closed
// broadcaster yields an already-closed channel.
func (b *Broadcaster) Subscribe() *Subscriber {
	s := &Subscriber{ch: make(chan caption.Entry, b.bufSize)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		s.close()
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Unsubscribe removes a viewer and closes its channel. Safe to call for a
// subscriber that was already pruned.
func (b *Broadcaster) Unsubscribe(s *Subscriber) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
	s.close()
}

// Publish delivers one entry to every current subscriber. A subscriber
// whose buffer is full is treated as dead and pruned; the entry is not
// retried for it.
func (b *Broadcaster) Publish(e caption.Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for s := range b.subs {
		select {
		case s.ch <- e:
		default:
			log.Printf("Broadcast: subscriber too slow, dropping")
			delete(b.subs, s)
			s.close()
		}
	}
}

// SubscriberCount reports the current number of live viewers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close drops all subscribers and rejects future ones. Called when the
// session is removed.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		delete(b.subs, s)
		s.close()
	}
}
