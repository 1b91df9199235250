package caption

import (
	"fmt"
	"sync"
)

// Entry is one timestamped caption derived from exactly one audio segment.
// Timestamps are seconds from stream start, computed from the segment index
// and the session's fixed segment duration. Immutable once created.
type Entry struct {
	Index int     `json:"-"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// NewEntry derives an entry's timestamps from its segment index.
func NewEntry(index, chunkSeconds int, text string) Entry {
	start := float64(index * chunkSeconds)
	return Entry{
		Index: index,
		Start: start,
		End:   start + float64(chunkSeconds),
		Text:  text,
	}
}

// Timeline is the append-only ordered caption log for one session. Appends
// come from that session's pipeline driver only; reads may happen from any
// goroutine (HTTP handlers, tests).
type Timeline struct {
	mu        sync.RWMutex
	entries   []Entry
	processed map[int]struct{}
}

func NewTimeline() *Timeline {
	return &Timeline{
		processed: make(map[int]struct{}),
	}
}

// Append adds an entry for a not-yet-seen segment index. Indices must be
// appended in ascending order; a duplicate or out-of-order index is rejected.
func (t *Timeline) Append(e Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.processed[e.Index]; ok {
		return fmt.Errorf("segment %d already processed", e.Index)
	}
	if n := len(t.entries); n > 0 && e.Index < t.entries[n-1].Index {
		return fmt.Errorf("segment %d appended after segment %d", e.Index, t.entries[n-1].Index)
	}

	t.entries = append(t.entries, e)
	t.processed[e.Index] = struct{}{}
	return nil
}

// MarkProcessed records a segment index as consumed without appending an
// entry, so a rejected segment is never retried.
func (t *Timeline) MarkProcessed(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed[index] = struct{}{}
}

// Processed reports whether the segment index already went through the
// pipeline. An index is marked processed exactly once, on append.
func (t *Timeline) Processed(index int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.processed[index]
	return ok
}

// Entries returns a snapshot copy of the timeline.
func (t *Timeline) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
