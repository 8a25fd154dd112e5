package undo

import (
	"context"
	"testing"

	"github.com/vundo-dev/vundo/internal/memline"
)

func newForgetEngine(t *testing.T) *Engine {
	t.Helper()
	buf := memline.New([]string{"a", "b", "c"})
	return New(buf, buf, buf, memline.NoopExtmarks{}, memline.DefaultPolicy())
}

func TestForgetBranchAtLeaf(t *testing.T) {
	eng := newForgetEngine(t)
	s := eng.state

	root := &Header{Seq: 1}
	leaf := &Header{Seq: 2, Next: root}
	root.Prev = leaf

	s.OldHead = root
	s.NewHead = leaf
	s.CurHead = nil
	s.NumHeads = 2
	s.SeqLast = 2
	s.Synced = true

	if err := eng.ForgetBranch(context.Background()); err != nil {
		t.Fatalf("ForgetBranch: %v", err)
	}

	if s.NumHeads != 1 {
		t.Fatalf("NumHeads = %d, want 1", s.NumHeads)
	}
	if s.NewHead != root {
		t.Fatalf("NewHead = %v, want root (seq 1)", s.NewHead)
	}
	if s.OldHead != root {
		t.Fatalf("OldHead changed unexpectedly: %v", s.OldHead)
	}
	if root.Prev != nil {
		t.Fatalf("root.Prev still references the forgotten leaf")
	}
	if s.CurHead != nil {
		t.Fatalf("CurHead = %v, want nil (nothing left to redo)", s.CurHead)
	}
	if s.SeqLast != 1 {
		t.Fatalf("SeqLast = %d, want 1 (forgotten header was the newest ever assigned)", s.SeqLast)
	}
}

// TestForgetBranchMidChainReassignsNewHead covers the non-leaf
// invocation: the caller has already navigated to top (curhead == top,
// buffer reflecting h's state) before calling ForgetBranch, so the
// internal Undo() moves one header further back to h, which still has a
// non-nil Prev (top). Forgetting h must not leave newhead dangling on a
// header about to be freed.
func TestForgetBranchMidChainReassignsNewHead(t *testing.T) {
	eng := newForgetEngine(t)
	s := eng.state

	root := &Header{Seq: 1}
	h := &Header{Seq: 2, Next: root}
	root.Prev = h
	top := &Header{Seq: 3, Next: h}
	h.Prev = top

	altRoot := &Header{Seq: 50, Next: root}
	h.AltNext = altRoot
	altRoot.AltPrev = h

	s.OldHead = root
	s.NewHead = top
	s.CurHead = top // already navigated here before this call
	s.NumHeads = 4
	s.SeqLast = 3
	s.Synced = true

	if err := eng.ForgetBranch(context.Background()); err != nil {
		t.Fatalf("ForgetBranch: %v", err)
	}

	if s.NumHeads != 2 {
		t.Fatalf("NumHeads = %d, want 2 (root and altRoot survive)", s.NumHeads)
	}
	if s.NewHead != altRoot {
		t.Fatalf("NewHead = %v, want altRoot (seq 50) — must not dangle on the freed top/h closure", s.NewHead)
	}
	if s.OldHead != root {
		t.Fatalf("OldHead changed unexpectedly: %v", s.OldHead)
	}
	if root.Prev != altRoot {
		t.Fatalf("root.Prev = %v, want altRoot promoted into h's old slot", root.Prev)
	}
	if s.CurHead != altRoot {
		t.Fatalf("CurHead = %v, want altRoot (redoing now replays altRoot)", s.CurHead)
	}

	// h and top (its whole forward closure) must be fully detached: no
	// dangling pointers back into freed headers.
	if h.Next != nil || h.Prev != nil || h.AltNext != nil || h.AltPrev != nil {
		t.Fatalf("h's pointers should all be cleared after freeing")
	}
	if top.Next != nil || top.Prev != nil {
		t.Fatalf("top's pointers should all be cleared after freeing")
	}

	// altRoot, the surviving alternate, keeps its own link back to root.
	if altRoot.Next != root {
		t.Fatalf("altRoot.Next = %v, want root", altRoot.Next)
	}
}

func TestForgetBranchNoopAtEmptyHistory(t *testing.T) {
	eng := newForgetEngine(t)
	s := eng.state
	s.Synced = true

	if err := eng.ForgetBranch(context.Background()); err != nil {
		t.Fatalf("ForgetBranch on empty history: %v", err)
	}
	if s.NumHeads != 0 || s.OldHead != nil || s.NewHead != nil {
		t.Fatalf("ForgetBranch on empty history should be a no-op")
	}
}
