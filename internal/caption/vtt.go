package caption

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Writer persists a timeline snapshot as a WebVTT file. Every write
// serializes the whole timeline and replaces the file atomically, so a
// concurrent reader always sees a structurally complete subtitle track.
type Writer struct {
	path string
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) Path() string {
	return w.path
}

// Write renders the entries and publishes them via write-to-temp + rename.
func (w *Writer) Write(entries []Entry) error {
	tmp := w.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create subtitle directory: %w", err)
	}
	if err := os.WriteFile(tmp, RenderVTT(entries), 0o644); err != nil {
		return fmt.Errorf("write subtitle temp file: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish subtitle file: %w", err)
	}
	return nil
}

// RenderVTT serializes entries as a WebVTT document: header, then one
// timestamp cue and text line per entry, blank-line separated.
func RenderVTT(entries []Entry) []byte {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, e := range entries {
		b.WriteString(FormatTimestamp(e.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(e.End))
		b.WriteByte('\n')
		b.WriteString(e.Text)
		b.WriteString("\n\n")
	}
	return []byte(b.String())
}

// FormatTimestamp renders seconds as zero-padded HH:MM:SS.mmm.
func FormatTimestamp(seconds float64) string {
	ms := int64(math.Round(seconds * 1000))
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := ms % 3_600_000 / 60_000
	s := ms % 60_000 / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}
