package caption

import (
	"testing"
)

func TestNewEntryTimestamps(t *testing.T) {
	tests := []struct {
		index        int
		chunkSeconds int
		wantStart    float64
		wantEnd      float64
	}{
		{0, 8, 0, 8},
		{1, 8, 8, 16},
		{5, 10, 50, 60},
	}

	for _, tt := range tests {
		e := NewEntry(tt.index, tt.chunkSeconds, "text")
		if e.Start != tt.wantStart || e.End != tt.wantEnd {
			t.Errorf("NewEntry(%d, %d) = (%v, %v), want (%v, %v)",
				tt.index, tt.chunkSeconds, e.Start, e.End, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestTimelineAppendAscending(t *testing.T) {
	tl := NewTimeline()

	for i := 0; i < 3; i++ {
		if err := tl.Append(NewEntry(i, 8, "x")); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
	}

	entries := tl.Entries()
	if len(entries) != 3 {
		t.Fatalf("Len = %d, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Index != i {
			t.Errorf("entries[%d].Index = %d, want %d", i, e.Index, i)
		}
	}
}

func TestTimelineRejectsDuplicateIndex(t *testing.T) {
	tl := NewTimeline()

	if err := tl.Append(NewEntry(0, 8, "first")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := tl.Append(NewEntry(0, 8, "second")); err == nil {
		t.Error("duplicate index accepted")
	}
	if tl.Len() != 1 {
		t.Errorf("Len = %d, want 1", tl.Len())
	}
}

func TestTimelineRejectsOutOfOrder(t *testing.T) {
	tl := NewTimeline()

	if err := tl.Append(NewEntry(2, 8, "later")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := tl.Append(NewEntry(1, 8, "earlier")); err == nil {
		t.Error("out-of-order index accepted")
	}
}

func TestMarkProcessedWithoutAppend(t *testing.T) {
	tl := NewTimeline()

	if err := tl.Append(NewEntry(2, 8, "later")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := tl.Append(NewEntry(1, 8, "earlier")); err == nil {
		t.Fatal("out-of-order index accepted")
	}

	tl.MarkProcessed(1)
	if !tl.Processed(1) {
		t.Error("Processed(1) = false after MarkProcessed")
	}
	if tl.Len() != 1 {
		t.Errorf("Len = %d, want 1", tl.Len())
	}
}

func TestTimelineProcessed(t *testing.T) {
	tl := NewTimeline()

	if tl.Processed(0) {
		t.Error("Processed(0) = true before append")
	}
	if err := tl.Append(NewEntry(0, 8, "")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if !tl.Processed(0) {
		t.Error("Processed(0) = false after append")
	}
}

func TestTimelineEntriesIsSnapshot(t *testing.T) {
	tl := NewTimeline()
	if err := tl.Append(NewEntry(0, 8, "hello")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	snapshot := tl.Entries()
	snapshot[0].Text = "mutated"

	if tl.Entries()[0].Text != "hello" {
		t.Error("Entries() exposed internal slice")
	}
}
