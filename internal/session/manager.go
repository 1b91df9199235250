// Package session owns the table of live captioning sessions and their
// lifecycle: starting the segment source and pipeline driver per session,
// stopping them cooperatively, and serving lookups for the control surface.
package session

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobbygenerik/stream-transcribe-server/internal/broadcast"
	"github.com/bobbygenerik/stream-transcribe-server/internal/caption"
	"github.com/bobbygenerik/stream-transcribe-server/internal/pipeline"
	"github.com/bobbygenerik/stream-transcribe-server/internal/segmenter"
	"github.com/bobbygenerik/stream-transcribe-server/internal/transcriber"
	"github.com/bobbygenerik/stream-transcribe-server/internal/translator"
)

// SourceFactory starts the external segment producer for one session.
// The default factory spawns ffmpeg; tests inject stubs.
type SourceFactory func(ctx context.Context, streamURL, dir string, chunkSeconds int) (Source, error)

type Options struct {
	SessionsDir      string
	PollInterval     time.Duration
	StepTimeout      time.Duration
	SubscriberBuffer int
	Segmenter        segmenter.Config
	SourceFactory    SourceFactory
}

// Manager is the process-wide session table. It is constructed once with
// the selected transcription and translation backends and injected into
// the transport layer; per-session state is never shared across sessions.
type Manager struct {
	opts        Options
	transcriber transcriber.Adapter
	translator  translator.Adapter

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(opts Options, tr transcriber.Adapter, tl translator.Adapter) *Manager {
	if opts.SourceFactory == nil {
		segCfg := opts.Segmenter
		opts.SourceFactory = func(ctx context.Context, streamURL, dir string, chunkSeconds int) (Source, error) {
			return segmenter.Start(ctx, segCfg, streamURL, dir, chunkSeconds)
		}
	}
	return &Manager{
		opts:        opts,
		transcriber: tr,
		translator:  tl,
		sessions:    make(map[string]*Session),
	}
}

// Start creates a session, launches its segment source and pipeline driver,
// and returns it in running state.
func (m *Manager) Start(streamURL, targetLang string, chunkSeconds int) (*Session, error) {
	if chunkSeconds <= 0 {
		return nil, fmt.Errorf("%w: chunk duration must be positive, got %d", ErrInvalidArgument, chunkSeconds)
	}
	if streamURL == "" {
		return nil, fmt.Errorf("%w: stream URL required", ErrInvalidArgument)
	}
	if targetLang == "" {
		targetLang = "en"
	}

	sess := &Session{
		ID:             uuid.NewString(),
		StreamURL:      streamURL,
		TargetLanguage: targetLang,
		ChunkSeconds:   chunkSeconds,
		CreatedAt:      time.Now(),
		status:         Starting,
		timeline:       caption.NewTimeline(),
		broadcaster:    broadcast.New(m.opts.SubscriberBuffer),
	}
	sess.Dir = filepath.Join(m.opts.SessionsDir, sess.ID)

	if err := os.MkdirAll(sess.ChunksDir(), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create session directory: %v", ErrSourceFailure, err)
	}

	source, err := m.opts.SourceFactory(context.Background(), streamURL, sess.ChunksDir(), chunkSeconds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceFailure, err)
	}
	sess.source = source

	sess.driver = pipeline.New(
		pipeline.Config{
			ChunksDir:      sess.ChunksDir(),
			ChunkSeconds:   chunkSeconds,
			TargetLanguage: targetLang,
			PollInterval:   m.opts.PollInterval,
			StepTimeout:    m.opts.StepTimeout,
		},
		m.transcriber,
		m.translator,
		sess.timeline,
		caption.NewWriter(sess.SubtitlePath()),
		sess.broadcaster,
		func() { sess.setStatus(Stopped) },
	)
	sess.driver.Run(context.Background())
	sess.setStatus(Running)

	// Publish into the table only once the source and driver are live, so a
	// concurrent Stop can never observe a session with nil source or driver
	// and acknowledge a stop that leaves them running.
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	log.Printf("Session %s: started for %s (lang=%s, chunk=%ds)", sess.ID, streamURL, targetLang, chunkSeconds)
	return sess, nil
}

// Stop terminates the segment source immediately and signals the driver to
// exit after finishing in-flight work. Stopping a stopped session is a
// no-op success.
func (m *Manager) Stop(id string) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}
	if sess.Status() == Stopped {
		return nil
	}

	sess.setStatus(Stopping)
	if sess.source != nil {
		sess.source.Stop()
	}
	if sess.driver != nil {
		sess.driver.Stop()
	}
	sess.setStatus(Stopped)

	log.Printf("Session %s: stopped", id)
	return nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// SubtitlePath returns the artifact path for a session, or ErrNotReady if
// no caption has been persisted yet.
func (m *Manager) SubtitlePath(id string) (string, error) {
	sess, err := m.Get(id)
	if err != nil {
		return "", err
	}
	path := sess.SubtitlePath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotReady, id)
		}
		return "", fmt.Errorf("stat subtitle artifact: %w", err)
	}
	return path, nil
}

// Upload stores a caller-provided segment under the next sequential index,
// the ingestion path used when no external segment source is available.
func (m *Manager) Upload(id string, data []byte) (int, error) {
	sess, err := m.Get(id)
	if err != nil {
		return 0, err
	}
	if st := sess.Status(); st == Stopping || st == Stopped {
		return 0, fmt.Errorf("%w: session is %s", ErrInvalidArgument, st)
	}

	sess.uploadMu.Lock()
	defer sess.uploadMu.Unlock()

	index, err := segmenter.NextIndex(sess.ChunksDir())
	if err != nil {
		return 0, err
	}
	if err := segmenter.WriteChunk(sess.ChunksDir(), index, data); err != nil {
		return 0, err
	}
	return index, nil
}

// Cleanup stops a session if needed and removes it from the table. The
// session directory and subtitle artifact stay on disk.
func (m *Manager) Cleanup(id string) error {
	if err := m.Stop(id); err != nil {
		return err
	}
	sess, err := m.Get(id)
	if err != nil {
		return err
	}
	sess.broadcaster.Close()
	m.remove(id)
	return nil
}

// StopAll stops every active session; used on server shutdown.
func (m *Manager) StopAll() {
	for _, sess := range m.List() {
		if err := m.Stop(sess.ID); err != nil {
			log.Printf("Session %s: stop on shutdown failed: %v", sess.ID, err)
		}
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
