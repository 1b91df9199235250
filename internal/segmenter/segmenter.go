// Package segmenter manages the external ffmpeg process that slices a live
// stream into fixed-duration, sequentially indexed WAV chunks, plus the
// chunk naming scheme shared with the upload ingestion path.
package segmenter

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
)

type Config struct {
	FFmpegPath string
	SampleRate int
	Channels   int
}

func DefaultConfig() Config {
	return Config{
		FFmpegPath: "ffmpeg",
		SampleRate: 16000,
		Channels:   1,
	}
}

// Process is a handle to one running ffmpeg segmenter. It is owned by the
// session manager and terminated immediately on session stop; already
// finalized chunks are left intact.
type Process struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	cancel context.CancelFunc
	done   chan struct{}
}

// Start launches ffmpeg segmenting streamURL into dir as mono PCM WAV
// chunks of chunkSeconds each, named chunk_00000.wav, chunk_00001.wav, ...
func Start(ctx context.Context, cfg Config, streamURL, dir string, chunkSeconds int) (*Process, error) {
	if streamURL == "" {
		return nil, fmt.Errorf("empty stream URL")
	}
	if chunkSeconds <= 0 {
		return nil, fmt.Errorf("invalid chunk duration: %d", chunkSeconds)
	}

	ffmpeg := cfg.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	path, err := exec.LookPath(ffmpeg)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create segment directory: %w", err)
	}

	procCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(procCtx, path, buildArgs(cfg, streamURL, dir, chunkSeconds)...)

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	log.Printf("Segmenter: ffmpeg started (pid %d) for %s", cmd.Process.Pid, streamURL)

	p := &Process{
		cmd:    cmd,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// Reap the child as soon as it exits, whether it was cancelled or the
	// stream ended on its own.
	go func() {
		err := cmd.Wait()
		if err != nil && procCtx.Err() == nil {
			log.Printf("Segmenter: ffmpeg exited with error: %v", err)
		}
		close(p.done)
	}()

	return p, nil
}

func buildArgs(cfg Config, streamURL, dir string, chunkSeconds int) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", streamURL,
		"-vn",
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "segment",
		"-segment_time", strconv.Itoa(chunkSeconds),
		"-reset_timestamps", "1",
		filepath.Join(dir, "chunk_%05d.wav"),
	}
}

// Stop terminates the ffmpeg process and waits for it to be reaped.
// Safe to call more than once.
func (p *Process) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-p.done
}
