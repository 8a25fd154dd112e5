package undo

import (
	"context"
	"testing"

	"github.com/vundo-dev/vundo/internal/hostiface"
	"github.com/vundo-dev/vundo/internal/memline"
)

func TestReplayEntryIsSelfInverse(t *testing.T) {
	buf := memline.New([]string{"a", "b", "c"})
	eng := &Engine{lines: buf}

	entry := &Entry{Top: 0, Bot: 2, Lines: [][]byte{[]byte("A")}}
	if err := eng.replayEntry(entry); err != nil {
		t.Fatalf("replayEntry (apply): %v", err)
	}
	if got := buf.Lines(); got[0] != "A" {
		t.Fatalf("lines = %v, want A replacing line 1", got)
	}
	if string(entry.Lines[0]) != "a" {
		t.Fatalf("entry.Lines after replay = %q, want the old pre-image %q", entry.Lines[0], "a")
	}

	// Replaying the same entry again must restore the original text:
	// each replay swaps pre-image and live text, so applying it twice
	// is the identity.
	if err := eng.replayEntry(entry); err != nil {
		t.Fatalf("replayEntry (undo): %v", err)
	}
	if got := buf.Lines(); got[0] != "a" {
		t.Fatalf("lines = %v, want original line 1 restored", got)
	}
}

func TestReplayEntryEmptyBufferInsert(t *testing.T) {
	buf := memline.New(nil)
	eng := &Engine{lines: buf}

	entry := &Entry{Top: 0, Bot: 1, Lines: [][]byte{[]byte("first"), []byte("second")}}
	if err := eng.replayEntry(entry); err != nil {
		t.Fatalf("replayEntry: %v", err)
	}
	got := buf.Lines()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("lines = %v, want [first second]", got)
	}
}

func TestRestoreCursorHonorsOCommandFriendliness(t *testing.T) {
	buf := memline.New([]string{"a", "b", "c"})
	eng := &Engine{cursor: buf}

	h := &Header{Cursor: Mark{Lnum: 2, Col: 0}}
	buf.SetCursor(hostiface.CursorPosition{Lnum: 3, Col: 5})

	eng.restoreCursor(h)

	if got := buf.GetCursor(); got.Lnum != 3 || got.Col != 5 {
		t.Fatalf("cursor = %+v, want unchanged (one line below recorded position)", got)
	}
}

func TestRestoreCursorSnapsBackOtherwise(t *testing.T) {
	buf := memline.New([]string{"a", "b", "c"})
	eng := &Engine{cursor: buf}

	h := &Header{Cursor: Mark{Lnum: 2, Col: 4}}
	buf.SetCursor(hostiface.CursorPosition{Lnum: 1, Col: 0})

	eng.restoreCursor(h)

	if got := buf.GetCursor(); got.Lnum != 2 || got.Col != 4 {
		t.Fatalf("cursor = %+v, want snapped to recorded position {2 4}", got)
	}
}

func TestApplyHeaderLeavesStateSynced(t *testing.T) {
	ctx := context.Background()
	buf := memline.New([]string{"a", "b"})
	eng := New(buf, buf, buf, memline.NoopExtmarks{}, memline.DefaultPolicy())

	if err := eng.RecordChange(ctx, 0, 2, 2, false); err != nil {
		t.Fatalf("RecordChange: %v", err)
	}
	if err := buf.ReplaceLine(1, "A"); err != nil {
		t.Fatalf("ReplaceLine: %v", err)
	}

	eng.state.CurHead = eng.state.NewHead
	if err := eng.ApplyHeader(ctx, hostiface.Undo); err != nil {
		t.Fatalf("ApplyHeader: %v", err)
	}
	if !eng.state.Synced {
		t.Fatalf("state.Synced = false, want true after a navigation")
	}
}
