package undo

// Trim enforces the bounded-history retention policy (spec.md §4.1):
// while num_heads exceeds limit and a root exists, it drops one node,
// preferring to free a whole alternate branch (the oldest one, last in
// the root's alternate list) over a primary-branch node that still has
// descendants on the active branch. limit < 0
// disables undo entirely, trimming the DAG down to nothing.
//
// protected is the just-displaced curhead the caller is about to
// reattach as an alternate of a new header; Trim returns it unchanged
// unless the branch containing it was dropped, in which case it
// returns nil so the caller knows not to reattach a freed node.
func Trim(s *State, limit int, protected *Header) *Header {
	for s.NumHeads > limit && s.OldHead != nil {
		uhp := s.OldHead
		if uhp.AltNext != nil {
			alt := uhp.AltNext
			for alt.AltNext != nil {
				alt = alt.AltNext
			}
			protected = freeBranch(s, alt, protected)
		} else {
			protected = freeHeader(s, uhp, protected)
		}
	}
	return protected
}

// freeBranch unlinks uhp from its AltPrev and frees uhp, every newer
// header reached from it via Prev, and every alternate branch hanging
// off any of those (including older alternates of uhp itself).
func freeBranch(s *State, uhp *Header, protected *Header) *Header {
	if s.OldHead == uhp {
		return freeHeader(s, uhp, protected)
	}
	if uhp.AltPrev != nil {
		uhp.AltPrev.AltNext = nil
	}
	for h := uhp; h != nil; {
		if h.AltNext != nil {
			protected = freeBranch(s, h.AltNext, protected)
		}
		prev := h.Prev
		if h == protected {
			protected = nil
		}
		freeOne(s, h)
		h = prev
	}
	return protected
}

// freeHeader drops the oldest primary-branch header (s.OldHead == uhp),
// splicing its neighbors' alt links around it and advancing OldHead to
// uhp's newer neighbor — the header that becomes the new root once uhp
// is gone (uhp.Next is always nil here: uhp is the root, and nothing is
// older than the root).
func freeHeader(s *State, uhp *Header, protected *Header) *Header {
	if uhp.Prev != nil {
		uhp.Prev.Next = nil
		uhp.Prev.AltPrev = uhp.AltPrev
	}
	if uhp.AltPrev != nil {
		uhp.AltPrev.AltNext = uhp.Prev
	}
	s.OldHead = uhp.Prev
	if s.OldHead == nil {
		s.NewHead = nil
	}
	if uhp == protected {
		protected = nil
	}
	freeOne(s, uhp)
	return protected
}

// freeOne detaches a single header's links so it can be collected, and
// accounts for it in NumHeads.
func freeOne(s *State, h *Header) {
	h.Entries = nil
	h.Prev = nil
	h.Next = nil
	h.AltNext = nil
	h.AltPrev = nil
	s.NumHeads--
}
