package undo

import "fmt"

// CheckInvariants enforces invariants 1-4 from spec.md §8 (the ones
// cheap enough to check after every mutation without themselves
// walking the whole buffer or DAG twice). It is wired in via
// Engine.SetDebugChecks, never on by default.
func CheckInvariants(s *State) error {
	if s.OldHead == nil {
		if s.NumHeads != 0 || s.NewHead != nil {
			return fmt.Errorf("%w: empty oldhead but num_heads=%d newhead=%v", ErrInternal, s.NumHeads, s.NewHead != nil)
		}
		return nil
	}

	seen := map[uint32]*Header{}
	var walk func(h *Header) error
	walk = func(h *Header) error {
		if h == nil {
			return nil
		}
		if prior, ok := seen[h.Seq]; ok && prior != h {
			return fmt.Errorf("%w: duplicate seq %d", ErrCorruption, h.Seq)
		}
		if _, ok := seen[h.Seq]; ok {
			return nil
		}
		seen[h.Seq] = h

		if h.Seq < 1 || h.Seq > s.SeqLast {
			return fmt.Errorf("%w: seq %d out of [1,%d]", ErrCorruption, h.Seq, s.SeqLast)
		}
		if h.Prev != nil && h.Prev.Next != h {
			return fmt.Errorf("%w: seq %d prev/next mismatch", ErrCorruption, h.Seq)
		}
		if h.AltNext != nil && h.AltNext.AltPrev != h {
			return fmt.Errorf("%w: seq %d alt_next/alt_prev mismatch", ErrCorruption, h.Seq)
		}
		if err := walk(h.Prev); err != nil {
			return err
		}
		return walk(h.AltNext)
	}
	if err := walk(s.OldHead); err != nil {
		return err
	}

	if len(seen) != s.NumHeads {
		return fmt.Errorf("%w: num_heads=%d but %d headers reachable", ErrInternal, s.NumHeads, len(seen))
	}

	if s.OldHead.Next != nil || s.OldHead.AltPrev != nil {
		return fmt.Errorf("%w: oldhead has a next or alt_prev", ErrCorruption)
	}
	if s.NewHead != nil && s.NewHead.Prev != nil {
		return fmt.Errorf("%w: newhead has a prev", ErrCorruption)
	}
	if s.CurHead != nil {
		if _, ok := seen[s.CurHead.Seq]; !ok {
			return fmt.Errorf("%w: curhead not reachable", ErrCorruption)
		}
	}

	return nil
}
