// Package pipeline runs one session's caption loop: watch the segment
// directory, feed each new segment through transcription and translation,
// append the caption, persist the subtitle file, fan the entry out.
package pipeline

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/bobbygenerik/stream-transcribe-server/internal/broadcast"
	"github.com/bobbygenerik/stream-transcribe-server/internal/caption"
	"github.com/bobbygenerik/stream-transcribe-server/internal/segmenter"
	"github.com/bobbygenerik/stream-transcribe-server/internal/transcriber"
	"github.com/bobbygenerik/stream-transcribe-server/internal/translator"
	"github.com/bobbygenerik/stream-transcribe-server/internal/watcher"
)

const defaultStepTimeout = 60 * time.Second

type Config struct {
	ChunksDir      string
	ChunkSeconds   int
	TargetLanguage string
	PollInterval   time.Duration
	StepTimeout    time.Duration
}

// Driver processes one session's segments strictly sequentially, in
// ascending index order. Drivers of different sessions share nothing and
// run concurrently.
type Driver struct {
	config      Config
	transcriber transcriber.Adapter
	translator  translator.Adapter
	timeline    *caption.Timeline
	writer      *caption.Writer
	broadcaster *broadcast.Broadcaster
	onExit      func()

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires a driver for one session. onExit runs once when the loop
// finishes, after any in-flight segment completed; it may be nil.
func New(config Config, tr transcriber.Adapter, tl translator.Adapter,
	timeline *caption.Timeline, writer *caption.Writer, bc *broadcast.Broadcaster, onExit func()) *Driver {
	if config.StepTimeout <= 0 {
		config.StepTimeout = defaultStepTimeout
	}
	return &Driver{
		config:      config,
		transcriber: tr,
		translator:  tl,
		timeline:    timeline,
		writer:      writer,
		broadcaster: bc,
		onExit:      onExit,
	}
}

func (d *Driver) Run(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	d.wg.Add(1)
	go d.run(runCtx)
}

// Stop signals the loop to exit and waits for it. The segment being
// processed, if any, is allowed to finish first.
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
}

func (d *Driver) run(ctx context.Context) {
	defer func() {
		if d.onExit != nil {
			d.onExit()
		}
		d.wg.Done()
	}()

	w := watcher.New(d.config.ChunksDir, d.config.PollInterval)
	indices := w.Watch(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Pipeline: stop requested, exiting")
			return
		case index, ok := <-indices:
			if !ok {
				return
			}
			d.process(index)
		}
	}
}

// process runs one segment through the full caption step. Backend failures
// never abort the loop: a transcription failure yields an empty caption, a
// translation failure yields the untranslated text. The segment is marked
// processed either way, so it gets exactly one caption opportunity.
func (d *Driver) process(index int) {
	if d.timeline.Processed(index) {
		return
	}

	// Backend calls get their own timeout-bounded contexts, detached from
	// the loop context: stopping a session never cancels a segment mid-step.
	audioPath := filepath.Join(d.config.ChunksDir, segmenter.ChunkName(index))

	ctx, cancel := context.WithTimeout(context.Background(), d.config.StepTimeout)
	text, err := d.transcriber.Transcribe(ctx, audioPath)
	cancel()
	if err != nil {
		log.Printf("Pipeline: transcription failed for segment %d, using empty text: %v", index, err)
		text = ""
	}

	translated := text
	if text != "" {
		ctx, cancel := context.WithTimeout(context.Background(), d.config.StepTimeout)
		translated, err = d.translator.Translate(ctx, text, d.config.TargetLanguage)
		cancel()
		if err != nil {
			log.Printf("Pipeline: translation failed for segment %d, keeping original text: %v", index, err)
			translated = text
		}
	}

	entry := caption.NewEntry(index, d.config.ChunkSeconds, translated)
	if err := d.timeline.Append(entry); err != nil {
		// A rejected segment still consumed its one caption opportunity.
		d.timeline.MarkProcessed(index)
		log.Printf("Pipeline: dropping segment %d: %v", index, err)
		return
	}

	if err := d.writer.Write(d.timeline.Entries()); err != nil {
		log.Printf("Pipeline: subtitle write failed: %v", err)
	}

	d.broadcaster.Publish(entry)
}
