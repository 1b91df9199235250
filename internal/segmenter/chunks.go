package segmenter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	chunkPrefix = "chunk_"
	chunkExt    = ".wav"
)

// ChunkName returns the canonical zero-padded file name for a segment index,
// matching the ffmpeg segment template.
func ChunkName(index int) string {
	return fmt.Sprintf("%s%05d%s", chunkPrefix, index, chunkExt)
}

// ParseIndex extracts the segment index from a chunk file name. Names that
// do not follow the chunk naming scheme are rejected.
func ParseIndex(name string) (int, error) {
	if !strings.HasPrefix(name, chunkPrefix) || !strings.HasSuffix(name, chunkExt) {
		return 0, fmt.Errorf("not a chunk file: %s", name)
	}
	stem := strings.TrimSuffix(strings.TrimPrefix(name, chunkPrefix), chunkExt)
	index, err := strconv.Atoi(stem)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("bad chunk index in %s", name)
	}
	return index, nil
}

// ListIndices returns the indices of all finalized chunk files in dir,
// ascending. Files that do not match the chunk naming scheme are skipped.
// A missing directory is treated as empty: the segmenter may not have
// produced anything yet.
func ListIndices(dir string) ([]int, error) {
	dirents, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	var indices []int
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		index, err := ParseIndex(d.Name())
		if err != nil {
			continue
		}
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices, nil
}

// NextIndex returns the index to assign to the next uploaded chunk:
// one past the highest existing index, or 0 for an empty directory.
func NextIndex(dir string) (int, error) {
	indices, err := ListIndices(dir)
	if err != nil {
		return 0, err
	}
	if len(indices) == 0 {
		return 0, nil
	}
	return indices[len(indices)-1] + 1, nil
}

// WriteChunk stores an uploaded segment under its assigned index. The data
// lands in a temp file first and is renamed into place, so a directory scan
// never observes a partially written chunk.
func WriteChunk(dir string, index int, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chunk directory: %w", err)
	}
	final := filepath.Join(dir, ChunkName(index))
	tmp := final + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write chunk: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize chunk: %w", err)
	}
	return nil
}
