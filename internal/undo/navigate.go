package undo

import (
	"context"

	"github.com/vundo-dev/vundo/internal/hostiface"
)

// Mode selects which coordinate navigate_to targets (spec.md §4.6).
type Mode int

const (
	ModeCount Mode = iota
	ModeSeconds
	ModeSaves
	ModeAbsolute
)

// Undo applies one undo step: the header that would make the buffer
// look like it did one change ago becomes curhead, then is replayed.
func (e *Engine) Undo(ctx context.Context) error {
	s := e.state
	uhp := s.CurHead
	if uhp == nil {
		uhp = s.NewHead
	} else {
		uhp = uhp.Next
	}
	if uhp == nil {
		return nil // nothing left to undo
	}
	s.CurHead = uhp
	return e.ApplyHeader(ctx, hostiface.Undo)
}

// Redo re-applies the most recently undone change.
func (e *Engine) Redo(ctx context.Context) error {
	s := e.state
	uhp := s.CurHead
	if uhp == nil {
		return nil // already at the leaf, nothing to redo
	}
	next := uhp.Prev
	if err := e.ApplyHeader(ctx, hostiface.Redo); err != nil {
		return err
	}
	s.CurHead = next
	return nil
}

// NavigateTo walks the DAG from the current position to a target
// expressed as a step count, wall-clock offset, save-event offset, or
// absolute sequence, and drives the buffer there one header at a time
// (spec.md §4.6).
func (e *Engine) NavigateTo(ctx context.Context, step int, mode Mode) error {
	s := e.state
	if s.OldHead == nil {
		return nil // empty history, nothing to navigate
	}

	target, backward := e.computeTarget(step, mode)

	closest, exact := e.walkForClosest(target, mode, backward)
	above := false
	if !exact {
		if closest == nil {
			return nil
		}
		// Round 2: re-target on the closest candidate's sequence number.
		target = int64(closest.Seq)
		mode = ModeCount
		above = backward
	} else {
		target = int64(closest.Seq)
		mode = ModeCount
	}

	return e.walkTo(ctx, int(target), above)
}

// computeTarget implements spec.md §4.6's per-mode target computation.
// backward reports whether the navigation is moving toward the root
// (smaller sequence numbers).
func (e *Engine) computeTarget(step int, mode Mode) (target int64, backward bool) {
	s := e.state
	switch mode {
	case ModeAbsolute:
		return int64(step), int64(step) < int64(s.SeqCur)
	case ModeSeconds:
		return s.TimeCur + int64(step), step < 0
	case ModeSaves:
		base := int64(s.SaveNrCur)
		if step < 0 {
			cur := e.findBySeq(int(s.SeqCur))
			noMarker := cur == nil || cur.SaveNr == 0
			if noMarker {
				target = base + int64(step) + 1
			} else {
				target = base + int64(step)
			}
		} else {
			target = base + int64(step)
		}
		if target < 0 {
			if step < 0 {
				return 0, true
			}
			return int64(s.SeqLast) + 1, false
		}
		if target > int64(s.SaveNrLast)+1 {
			return int64(s.SeqLast) + 1, false
		}
		return target, step < 0
	default: // ModeCount
		return int64(s.SeqCur) + int64(step), step < 0
	}
}

// walkForClosest visits every header reachable from oldhead exactly
// once, returning the one whose coordinate is closest to target among
// those on the correct side of the current position, and whether it is
// an exact match.
func (e *Engine) walkForClosest(target int64, mode Mode, backward bool) (closest *Header, exact bool) {
	s := e.state
	token := s.newWalkToken()
	curVal := e.currentVal(mode)

	stack := []*Header{s.OldHead}
	var bestDist int64 = -1

	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h == nil || h.walk == token {
			continue
		}
		h.walk = token

		if h.AltNext != nil {
			stack = append(stack, h.AltNext)
		}
		if h.Prev != nil {
			stack = append(stack, h.Prev)
		}

		val := headerVal(h, mode)
		onSide := val <= curVal
		if !backward {
			onSide = val >= curVal
		}
		if !onSide {
			continue
		}

		dist := val - target
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			closest = h
		}

		if val == target && mode != ModeSeconds {
			return h, true
		}
	}
	return closest, false
}

func (e *Engine) currentVal(mode Mode) int64 {
	s := e.state
	switch mode {
	case ModeSeconds:
		return s.TimeCur
	case ModeSaves:
		return int64(s.SaveNrCur)
	default:
		return int64(s.SeqCur)
	}
}

func headerVal(h *Header, mode Mode) int64 {
	switch mode {
	case ModeSeconds:
		return h.Time
	case ModeSaves:
		return int64(h.SaveNr)
	default:
		return int64(h.Seq)
	}
}

// walkTo drives curhead from its current position to the header with
// the given sequence number, undoing up to the common ancestor and then
// redoing down the target's branch, rotating alternates along the way
// so a future plain undo retraces this path.
func (e *Engine) walkTo(ctx context.Context, targetSeq int, above bool) error {
	s := e.state
	target := e.findBySeq(targetSeq)
	if target == nil {
		return nil
	}

	upNext := s.CurHead
	if upNext == nil {
		upNext = s.NewHead
	}
	if upNext == nil {
		return nil
	}

	ancestors := map[uint32]*Header{}
	childOf := map[uint32]*Header{} // ancestors[seq]'s newer neighbor in upNext's chain
	var prevInChain *Header
	for h := upNext; h != nil; h = h.Next {
		ancestors[h.Seq] = h
		if prevInChain != nil {
			childOf[h.Seq] = prevInChain
		}
		prevInChain = h
	}

	var common *Header
	var redoPath []*Header
	for h := target; h != nil; h = h.Next {
		redoPath = append(redoPath, h)
		if anc, ok := ancestors[h.Seq]; ok {
			common = anc
			break
		}
	}
	if common == nil {
		return nil // disconnected DAG; nothing sane to do
	}

	// Each Undo call leaves curhead pointing at the header it just
	// undid, whose resulting seq_cur is that header's Next.Seq — one
	// step behind common itself. So the up-walk must stop one header
	// short of common, at common's newer neighbor in the chain, for
	// seq_cur to land exactly on common's own state.
	stopAt := common
	if child, ok := childOf[common.Seq]; ok {
		stopAt = child
	}

	if stopAt != common {
		for s.CurHead == nil || s.CurHead.Seq != stopAt.Seq {
			before := s.CurHead
			if err := e.Undo(ctx); err != nil {
				return err
			}
			if s.CurHead == before {
				break // nothing left to undo
			}
		}
	}

	// common can be curhead itself, which is not applied yet (the target
	// lies on curhead's forward side): redo it before its descendants.
	if s.CurHead != nil && s.CurHead == common && !(above && common == target) {
		if err := e.Redo(ctx); err != nil {
			return err
		}
	}

	// redoPath currently runs target -> ... -> common; walk it in
	// reverse (common's child first) and promote each into the primary
	// slot before redoing through it.
	for i := len(redoPath) - 2; i >= 0; i-- {
		child := redoPath[i]
		parent := redoPath[i+1]
		promoteChild(parent, child)
		s.CurHead = child
		if above && i == 0 {
			break // stop one header above the target
		}
		if err := e.Redo(ctx); err != nil {
			return err
		}
	}

	return nil
}

// findBySeq locates the header with the given sequence number via a
// full tree walk.
func (e *Engine) findBySeq(seq int) *Header {
	s := e.state
	if s.OldHead == nil {
		return nil
	}
	token := s.newWalkToken()
	stack := []*Header{s.OldHead}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h == nil || h.walk == token {
			continue
		}
		h.walk = token
		if int(h.Seq) == seq {
			return h
		}
		if h.AltNext != nil {
			stack = append(stack, h.AltNext)
		}
		if h.Prev != nil {
			stack = append(stack, h.Prev)
		}
	}
	return nil
}

// promoteChild ensures parent.Prev == child, rotating child to the head
// of parent's alternate-sibling list if it wasn't already primary
// (spec.md §4.6: "rotating alternate lists so the target's branch
// becomes the first alt_* child").
func promoteChild(parent, child *Header) {
	if parent == nil || parent.Prev == child {
		return
	}
	oldPrimary := parent.Prev

	if child.AltPrev != nil {
		child.AltPrev.AltNext = child.AltNext
	}
	if child.AltNext != nil {
		child.AltNext.AltPrev = child.AltPrev
	}

	child.AltPrev = nil
	child.AltNext = oldPrimary
	oldPrimary.AltPrev = child
	parent.Prev = child
}
