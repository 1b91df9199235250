// Package testutil provides shared mocks and helpers for package tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// MockTranscriber implements transcriber.Adapter for testing.
type MockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audioPath string) (string, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, audioPath)
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioPath)
	}
	return "mock transcription", nil
}

// Calls returns the audio paths transcribed so far.
func (m *MockTranscriber) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockTranslator implements translator.Adapter for testing. The default
// behavior is identity.
type MockTranslator struct {
	TranslateFunc func(ctx context.Context, text, targetLang string) (string, error)
}

func (m *MockTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, targetLang)
	}
	return text, nil
}

// MockSource implements session.Source for testing.
type MockSource struct {
	mu      sync.Mutex
	stopped int
}

func (m *MockSource) Stop() {
	m.mu.Lock()
	m.stopped++
	m.mu.Unlock()
}

func (m *MockSource) StopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// WriteChunk drops a fake finalized segment file into dir using the
// canonical chunk name for index.
func WriteChunk(t *testing.T, dir string, index int, content string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create chunk dir: %v", err)
	}
	name := filepath.Join(dir, chunkName(index))
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write chunk file: %v", err)
	}
}

// chunkName mirrors the segmenter's naming scheme without importing it, so
// every package can use this helper.
func chunkName(index int) string {
	return fmt.Sprintf("chunk_%05d.wav", index)
}

// WaitForCondition waits for a condition to be true or fails the test.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}
