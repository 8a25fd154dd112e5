package undo

import "testing"

// linearChain builds n headers on a single branch, oldest first, wired
// the way openHeader wires them (Next toward the root, Prev toward the
// leaf), and returns them oldest-first alongside a State pointing at
// the chain's ends.
func linearChain(n int) (*State, []*Header) {
	headers := make([]*Header, n)
	for i := 0; i < n; i++ {
		headers[i] = &Header{Seq: uint32(i + 1)}
	}
	for i := 1; i < n; i++ {
		headers[i].Next = headers[i-1]
		headers[i-1].Prev = headers[i]
	}
	s := &State{
		OldHead:  headers[0],
		NewHead:  headers[n-1],
		NumHeads: n,
		SeqLast:  uint32(n),
	}
	return s, headers
}

func TestTrimLinearChain(t *testing.T) {
	s, headers := linearChain(4)

	Trim(s, 2, nil)

	if s.NumHeads != 2 {
		t.Fatalf("NumHeads = %d, want 2", s.NumHeads)
	}
	if s.OldHead != headers[2] {
		t.Fatalf("OldHead seq = %v, want %d", s.OldHead.Seq, headers[2].Seq)
	}
	if s.OldHead.Next != nil {
		t.Fatalf("new root still has a Next pointer to a freed header")
	}
	if s.NewHead != headers[3] {
		t.Fatalf("NewHead should be untouched by trimming the root end")
	}
}

func TestTrimNoopWhenUnderLimit(t *testing.T) {
	s, headers := linearChain(3)

	Trim(s, 10, nil)

	if s.NumHeads != 3 {
		t.Fatalf("NumHeads = %d, want 3 (no trim needed)", s.NumHeads)
	}
	if s.OldHead != headers[0] {
		t.Fatalf("OldHead changed when no trim was needed")
	}
}

func TestTrimDisablesUndoOnNegativeLimit(t *testing.T) {
	s, _ := linearChain(3)

	Trim(s, -1, nil)

	if s.NumHeads != 0 {
		t.Fatalf("NumHeads = %d, want 0 (undo disabled trims everything)", s.NumHeads)
	}
	if s.OldHead != nil || s.NewHead != nil {
		t.Fatalf("OldHead/NewHead should both be nil once the whole chain is freed")
	}
}

func TestTrimFreesAltBranchBeforePrimary(t *testing.T) {
	s, headers := linearChain(3) // seq 1,2,3; OldHead=1, NewHead=3

	alt := &Header{Seq: 99, AltPrev: headers[0]}
	headers[0].AltNext = alt
	s.NumHeads++

	protected := Trim(s, 3, alt)

	if s.NumHeads != 3 {
		t.Fatalf("NumHeads = %d, want 3 (only the alt branch should be dropped)", s.NumHeads)
	}
	if headers[0].AltNext != nil {
		t.Fatalf("primary root still references the freed alt branch")
	}
	if protected != nil {
		t.Fatalf("protected branch was freed, Trim should report it as gone")
	}
	if s.OldHead != headers[0] {
		t.Fatalf("primary chain should be untouched while an alt branch is available to drop")
	}
}
