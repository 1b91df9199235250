package session

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/bobbygenerik/stream-transcribe-server/internal/broadcast"
	"github.com/bobbygenerik/stream-transcribe-server/internal/caption"
	"github.com/bobbygenerik/stream-transcribe-server/internal/pipeline"
)

type Status string

const (
	Starting Status = "starting"
	Running  Status = "running"
	Stopping Status = "stopping"
	Stopped  Status = "stopped"
)

var statusOrder = map[Status]int{
	Starting: 0,
	Running:  1,
	Stopping: 2,
	Stopped:  3,
}

// Source is the handle to an external segment producer. The real one is an
// ffmpeg process; tests inject stubs.
type Source interface {
	Stop()
}

// Session is one live captioning job. Identity and parameters are immutable
// after creation; only the status advances, monotonically, towards Stopped.
type Session struct {
	ID             string
	StreamURL      string
	TargetLanguage string
	ChunkSeconds   int
	Dir            string
	CreatedAt      time.Time

	mu     sync.RWMutex
	status Status

	uploadMu sync.Mutex // serializes upload index assignment

	timeline    *caption.Timeline
	broadcaster *broadcast.Broadcaster
	source      Source
	driver      *pipeline.Driver
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// setStatus advances the lifecycle. Reverse transitions are ignored, which
// makes racing stop paths (driver exit vs explicit StopSession) harmless.
func (s *Session) setStatus(next Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if statusOrder[next] > statusOrder[s.status] {
		s.status = next
	}
}

func (s *Session) ChunksDir() string {
	return filepath.Join(s.Dir, "chunks")
}

func (s *Session) SubtitlePath() string {
	return filepath.Join(s.Dir, "subtitles.vtt")
}

func (s *Session) Timeline() *caption.Timeline {
	return s.timeline
}

func (s *Session) Broadcaster() *broadcast.Broadcaster {
	return s.broadcaster
}
