package undo

import (
	"context"
	"testing"

	"github.com/vundo-dev/vundo/internal/memline"
)

// chainedEngine returns an Engine wired to an in-memory buffer whose
// undo state starts as a plain linear chain of n headers (seq 1..n),
// one empty-range entry each, so tests can drive navigation without
// going through RecordChange bookkeeping.
func chainedEngine(t *testing.T, n int) (*Engine, []*Header) {
	t.Helper()
	buf := memline.New([]string{"a", "b", "c"})
	eng := New(buf, buf, buf, memline.NoopExtmarks{}, memline.DefaultPolicy())

	s, headers := linearChain(n)
	for i, h := range headers {
		h.Entries = &Entry{Top: 0, Bot: 1, Lines: nil}
		h.Time = int64(100 + i)
	}
	s.SeqCur = headers[n-1].Seq
	s.Synced = true
	eng.state = s
	return eng, headers
}

func TestPromoteChildRotatesAltLinks(t *testing.T) {
	parent := &Header{Seq: 1}
	primary := &Header{Seq: 2}
	alt := &Header{Seq: 3}
	parent.Prev = primary
	primary.AltNext = alt
	alt.AltPrev = primary

	promoteChild(parent, alt)

	if parent.Prev != alt {
		t.Fatalf("parent.Prev = %v, want alt", parent.Prev.Seq)
	}
	if alt.AltNext != primary {
		t.Fatalf("alt.AltNext should now hold the displaced former primary")
	}
	if primary.AltPrev != alt {
		t.Fatalf("former primary should be reparented under alt")
	}
	if alt.AltPrev != nil {
		t.Fatalf("promoted child should have no AltPrev of its own")
	}
}

func TestPromoteChildNoopWhenAlreadyPrimary(t *testing.T) {
	parent := &Header{Seq: 1}
	child := &Header{Seq: 2}
	parent.Prev = child

	promoteChild(parent, child)

	if parent.Prev != child {
		t.Fatalf("parent.Prev changed on a no-op promotion")
	}
}

func TestWalkForClosestExactMatch(t *testing.T) {
	eng, headers := chainedEngine(t, 3)
	closest, exact := eng.walkForClosest(int64(2), ModeCount, true)
	if !exact || closest != headers[1] {
		t.Fatalf("walkForClosest(2) = (%v, %v), want (seq 2, true)", closest, exact)
	}
}

func TestWalkForClosestPicksNearestOnCorrectSide(t *testing.T) {
	eng, headers := chainedEngine(t, 3)
	// Times are 100, 101, 102; current is seq 3 (time 102). Ask for
	// time 100 stepping backward: only values <= curVal are eligible,
	// 100 (seq 1) is the closest among them, and ModeSeconds keeps
	// walking after a hit instead of reporting it as exact.
	eng.state.TimeCur = 102
	closest, exact := eng.walkForClosest(int64(100), ModeSeconds, true)
	if exact {
		t.Fatalf("expected an inexact match for ModeSeconds")
	}
	if closest != headers[0] {
		t.Fatalf("closest = seq %v, want seq 1", closest.Seq)
	}
}

func TestNavigateToCountBackward(t *testing.T) {
	ctx := context.Background()
	eng, headers := chainedEngine(t, 4)

	if err := eng.NavigateTo(ctx, -2, ModeCount); err != nil {
		t.Fatalf("NavigateTo: %v", err)
	}
	if eng.state.SeqCur != headers[1].Seq {
		t.Fatalf("seq_cur = %d, want %d", eng.state.SeqCur, headers[1].Seq)
	}
}

func TestNavigateToAbsolute(t *testing.T) {
	ctx := context.Background()
	eng, headers := chainedEngine(t, 4)

	if err := eng.NavigateTo(ctx, 1, ModeAbsolute); err != nil {
		t.Fatalf("NavigateTo: %v", err)
	}
	if eng.state.SeqCur != headers[0].Seq {
		t.Fatalf("seq_cur = %d, want %d", eng.state.SeqCur, headers[0].Seq)
	}
}
