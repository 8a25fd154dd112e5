package undofile_test

import (
	"bytes"
	"testing"

	"github.com/vundo-dev/vundo/internal/undo"
	"github.com/vundo-dev/vundo/internal/undofile"
)

// buildState constructs a small three-header DAG: a root and a newer
// header on the primary branch, each with a single entry, and a sibling
// alternate branch of the root, so the round trip exercises Next/Prev and
// AltNext/AltPrev swizzling.
func buildState() *undo.State {
	s := undo.NewState()

	root := &undo.Header{Seq: 1, Time: 100}
	root.Entries = &undo.Entry{Top: 0, Bot: 2, Lines: [][]byte{[]byte("original")}}

	alt := &undo.Header{Seq: 2, Time: 101, AltPrev: root}
	alt.Entries = &undo.Entry{Top: 0, Bot: 2, Lines: [][]byte{[]byte("alternate")}}
	root.AltNext = alt

	leaf := &undo.Header{Seq: 3, Time: 102, Next: root}
	leaf.Entries = &undo.Entry{Top: 1, Bot: 1, Lines: nil}
	root.Prev = leaf

	s.OldHead = root
	s.NewHead = leaf
	s.CurHead = nil
	s.NumHeads = 3
	s.SeqLast = 3
	s.SeqCur = 0
	s.TimeCur = 103
	s.Synced = true

	return s
}

func countHeaders(h *undo.Header, seen map[uint32]bool) {
	if h == nil || seen[h.Seq] {
		return
	}
	seen[h.Seq] = true
	countHeaders(h.Prev, seen)
	countHeaders(h.AltNext, seen)
}

func TestWriteReadRoundTrip(t *testing.T) {
	lines := []string{"line one", "line two", "line three"}
	s := buildState()

	var buf bytes.Buffer
	if err := undofile.Write(&buf, s, lines, 7); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, lastSaveNr, err := undofile.Read(&buf, lines)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if lastSaveNr != 7 {
		t.Fatalf("lastSaveNr = %d, want 7", lastSaveNr)
	}
	if got.NumHeads != s.NumHeads {
		t.Fatalf("NumHeads = %d, want %d", got.NumHeads, s.NumHeads)
	}
	if got.SeqLast != s.SeqLast || got.SeqCur != s.SeqCur {
		t.Fatalf("seq mismatch: got seqLast=%d seqCur=%d, want seqLast=%d seqCur=%d", got.SeqLast, got.SeqCur, s.SeqLast, s.SeqCur)
	}
	if got.OldHead == nil || got.OldHead.Seq != 1 {
		t.Fatalf("OldHead seq = %v, want 1", headerSeq(got.OldHead))
	}
	if got.NewHead == nil || got.NewHead.Seq != 3 {
		t.Fatalf("NewHead seq = %v, want 3", headerSeq(got.NewHead))
	}
	if got.OldHead.AltNext == nil || got.OldHead.AltNext.Seq != 2 {
		t.Fatalf("OldHead.AltNext not preserved")
	}
	if got.OldHead.AltNext.AltPrev != got.OldHead {
		t.Fatalf("AltNext/AltPrev back-pointer not restored")
	}
	if got.NewHead.Next != got.OldHead {
		t.Fatalf("NewHead.Next not resolved back to OldHead")
	}
	if got.OldHead.Prev != got.NewHead {
		t.Fatalf("OldHead.Prev not resolved back to NewHead")
	}

	seen := map[uint32]bool{}
	countHeaders(got.OldHead, seen)
	if len(seen) != 3 {
		t.Fatalf("reachable headers = %d, want 3", len(seen))
	}

	if got.OldHead.Entries == nil || string(got.OldHead.Entries.Lines[0]) != "original" {
		t.Fatalf("root entry text not preserved")
	}
	if got.OldHead.AltNext.Entries == nil || string(got.OldHead.AltNext.Entries.Lines[0]) != "alternate" {
		t.Fatalf("alt entry text not preserved")
	}
}

func headerSeq(h *undo.Header) any {
	if h == nil {
		return nil
	}
	return h.Seq
}

// TestReadRejectsHashMismatch covers the mismatch half of S6: reading against a buffer whose
// contents no longer match the file must fail cleanly rather than
// produce a state describing the wrong buffer.
func TestReadRejectsHashMismatch(t *testing.T) {
	lines := []string{"line one", "line two"}
	s := buildState()

	var buf bytes.Buffer
	if err := undofile.Write(&buf, s, lines, 0); err != nil {
		t.Fatalf("Write: %v", err)
	}

	mutated := []string{"line one", "line two", "an extra line"}
	got, _, err := undofile.Read(&buf, mutated)
	if err == nil {
		t.Fatalf("Read succeeded against a mutated buffer, want ErrHashMismatch")
	}
	if got != nil {
		t.Fatalf("Read returned a non-nil state on mismatch")
	}
}
