package undo

import "context"

// ForgetBranch implements spec.md §4.7: undo once, then permanently
// unlink the just-undone header from the DAG, promoting its first
// alternate (if any) into its slot and freeing everything that depended
// on the forgotten header existing.
func (e *Engine) ForgetBranch(ctx context.Context) error {
	if err := e.Undo(ctx); err != nil {
		return err
	}
	s := e.state
	h := s.CurHead
	if h == nil {
		return nil
	}

	parent := h.Next
	alt := h.AltNext

	if parent != nil {
		parent.Prev = alt
	} else {
		s.OldHead = alt
	}
	if alt != nil {
		alt.AltPrev = h.AltPrev
	}
	if h.AltPrev != nil {
		h.AltPrev.AltNext = alt
	}

	// h sits somewhere on the primary chain between oldhead and newhead
	// (Undo only ever walks that chain), so newhead is always reachable
	// from h.Prev — whether h.Prev is nil (h was newhead itself) or not
	// (newhead is further up a closure that's about to be freed). Either
	// way, whatever takes h's slot becomes the surviving newhead.
	s.NewHead = alt
	if alt == nil {
		s.NewHead = parent
	}
	if h.Seq == s.SeqLast {
		s.SeqLast--
	}

	s.CurHead = alt
	freeSubDAG(s, h)
	return nil
}

// freeSubDAG discards h along with everything that was newer than it
// (h.Prev's whole forward closure): once h is gone, the buffer states
// that depended on replaying through it are no longer reconstructable.
func freeSubDAG(s *State, h *Header) {
	freeForwardClosure(s, h.Prev)
	h.Next = nil
	h.Prev = nil
	h.AltNext = nil
	h.AltPrev = nil
	h.Entries = nil
	s.NumHeads--
}

// freeForwardClosure frees h and everything reachable from it via Prev
// (newer) and AltNext (sibling alternates) — the mirror image of
// retention.go's oldhead-rooted backward closure.
func freeForwardClosure(s *State, h *Header) {
	if h == nil {
		return
	}
	freeForwardClosure(s, h.Prev)
	freeForwardClosure(s, h.AltNext)
	h.Next = nil
	h.Prev = nil
	h.AltNext = nil
	h.AltPrev = nil
	h.Entries = nil
	s.NumHeads--
}
