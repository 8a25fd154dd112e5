package undo

import (
	"context"
	"fmt"
)

// coalesceLookback bounds how far back the single-line coalescing test
// scans for a reusable entry. The bound is the source's own heuristic
// (spec.md §9 Open Questions: "arbitrary; callers depending on its exact
// bound should be audited").
const coalesceLookback = 10

// Sync marks the current position as a command boundary: the next
// RecordChange opens a new header instead of extending the current one.
// Hosts call this wherever vim itself calls u_sync() — leaving insert
// mode, starting a new Normal-mode command, before a buffer reload —
// any point where two edits should be separately undoable rather than
// coalesced into one step.
func (e *Engine) Sync() {
	e.state.Synced = true
}

// RecordChange captures the pre-image of [top+1, bot-1] before the
// caller mutates it, opening a new header or extending the current one
// (spec.md §4.3). newbot is the already-known post-change value of bot,
// or 0 if the caller doesn't know it yet. It returns ErrPolicyDenied,
// recording nothing, when the policy reports the buffer unmodifiable or
// restricted.
func (e *Engine) RecordChange(ctx context.Context, top, bot, newbot int, reload bool) error {
	if !e.policy.Modifiable() || e.policy.Restricted() {
		return ErrPolicyDenied
	}
	lineCount := e.lines.LineCount()
	if top >= bot || bot > lineCount+1 {
		return fmt.Errorf("%w: top=%d bot=%d linecount=%d", ErrRangeInvalid, top, bot, lineCount)
	}

	s := e.state
	if s.Synced {
		if err := e.openHeader(); err != nil {
			return err
		}
	} else {
		size := bot - top - 1
		if size == 1 {
			if uep := e.findCoalesceTarget(top); uep != nil {
				if err := e.resolveBot(); err != nil {
					return err
				}
				e.promoteEntry(s.NewHead, uep)
				e.setEntryBot(s.NewHead, uep, bot, newbot, e.lines.LineCount())
				s.Synced = false // the header stays open for further changes
				return e.checkInvariants("record_change (coalesce)")
			}
		}
		if err := e.resolveBot(); err != nil {
			return err
		}
	}

	if s.NewHead == nil {
		// Undo is disabled: Trim left no header to attach an entry to,
		// so the mutation proceeds unrecorded.
		return nil
	}

	if err := e.constructEntry(ctx, top, bot, newbot, reload); err != nil {
		return err
	}
	return e.checkInvariants("record_change")
}

// openHeader implements spec.md §4.3's synced==true branch: it displaces
// curhead's downstream chain into an alternate branch, trims to the
// configured history depth, and allocates the new header that the next
// entry will attach to.
func (e *Engine) openHeader() error {
	s := e.state

	var oldCurHead *Header
	if s.CurHead != nil {
		oldCurHead = s.CurHead
		s.NewHead = oldCurHead.Next
		s.CurHead = nil
	}

	limit := e.historyDepth()
	protected := Trim(s, limit, oldCurHead)

	if limit < 0 {
		// Undo disabled: the displaced branch (if any) was just dropped
		// entirely by Trim. The mutation proceeds without being undoable.
		s.Synced = false
		return nil
	}

	h := &Header{
		Next:    s.NewHead,
		AltNext: protected,
	}
	if protected != nil {
		h.AltPrev = protected.AltPrev
		protected.AltPrev = h
	}
	if s.NewHead != nil {
		s.NewHead.Prev = h
	}
	if s.OldHead == oldCurHead {
		s.OldHead = h
	}

	s.SeqLast++
	h.Seq = s.SeqLast
	s.SeqCur = h.Seq
	h.Time = e.clock()
	s.TimeCur = h.Time + 1 // deliberate off-by-one, preserved verbatim (spec.md §9)

	e.snapshotHeader(h)

	s.NewHead = h
	if s.OldHead == nil {
		s.OldHead = h
	}
	s.NumHeads++

	e.log.Debug().Uint32("seq", h.Seq).Msg("opened header")
	return nil
}

// snapshotHeader captures cursor, named marks, visual selection, and the
// changed/empty-buffer flags into a freshly opened header.
func (e *Engine) snapshotHeader(h *Header) {
	cur := e.cursor.GetCursor()
	h.Cursor = Mark{Lnum: cur.Lnum, Col: cur.Col, ColAdd: cur.ColAdd}
	h.CursorVcol = cur.Vcol

	for i := 0; i < NMarks; i++ {
		m := e.marks.GetMark(i)
		h.Marks[i] = Mark{Lnum: m.Lnum, Col: m.Col, ColAdd: m.ColAdd}
	}

	vis := e.marks.GetVisual()
	h.Visual = Visual{
		Start:    Mark{Lnum: vis.Start.Lnum, Col: vis.Start.Col, ColAdd: vis.Start.ColAdd},
		End:      Mark{Lnum: vis.End.Lnum, Col: vis.End.Col, ColAdd: vis.End.ColAdd},
		Mode:     vis.Mode,
		Curswant: vis.Curswant,
	}

	if e.marks.Changed() {
		h.Flags |= FlagChanged
	}
	if e.lines.LineCount() == 0 {
		h.Flags |= FlagEmptyBuf
	}
}

// findCoalesceTarget implements the single-line coalescing test
// (spec.md §4.3): a recent same-line entry is reused instead of
// allocating a new one when nothing between it and the head of the list
// has shifted line numbers.
func (e *Engine) findCoalesceTarget(top int) *Entry {
	h := e.state.NewHead
	if h == nil {
		return nil
	}
	lineCount := e.lines.LineCount()

	uep := h.Entries
	for i := 0; uep != nil && i < coalesceLookback; uep, i = uep.Next, i+1 {
		if uep != h.GetBotEntry {
			wantBot := uep.Bot
			if wantBot == 0 {
				wantBot = lineCount + 1
			}
			if uep.Top+uep.Size()+1 != wantBot {
				return nil // a line-count-shifting entry lies between: give up
			}
		} else if uep.LCount != lineCount {
			return nil
		}

		if uep.Size() > 1 && top >= uep.Top && top <= uep.Top+uep.Size() {
			return nil
		}

		if uep.Size() == 1 && uep.Top == top {
			return uep
		}
	}
	return nil
}

// promoteEntry moves target to the front of h's entry list. Entry order
// carries no meaning for entries that never shift line counts.
func (e *Engine) promoteEntry(h *Header, target *Entry) {
	if h.Entries == target {
		return
	}
	var prev *Entry
	for cur := h.Entries; cur != nil; cur = cur.Next {
		if cur == target {
			if prev != nil {
				prev.Next = cur.Next
			}
			break
		}
		prev = cur
	}
	target.Next = h.Entries
	h.Entries = target
}

// setEntryBot resolves an entry's bot field following spec.md §4.3's
// "Entry construction" rule: a known newbot wins outright; a bot already
// past the end of the buffer collapses to the 0 sentinel that replay
// substitutes line_count+1 for; otherwise the resolution is deferred to
// resolveBot, which needs lcount to compute how many lines shifted in
// the meantime.
func (e *Engine) setEntryBot(h *Header, entry *Entry, bot, newbot, lineCount int) {
	switch {
	case newbot != 0:
		entry.Bot = newbot
	case bot > lineCount:
		entry.Bot = 0
	default:
		entry.LCount = lineCount
		h.GetBotEntry = entry
	}
}

// resolveBot implements spec.md §4.4: finalizes a header's previously
// deferred entry bot now that the number of lines the mutation added or
// removed is known.
func (e *Engine) resolveBot() error {
	s := e.state
	h := s.NewHead
	if h == nil || h.GetBotEntry == nil {
		s.Synced = true
		return nil
	}
	entry := h.GetBotEntry
	lineCount := e.lines.LineCount()
	extra := lineCount - entry.LCount
	bot := entry.Top + entry.Size() + 1 + extra
	if bot < 1 || bot > lineCount+1 {
		return fmt.Errorf("%w: resolved bot=%d out of [1,%d]", ErrInternal, bot, lineCount+1)
	}
	entry.Bot = bot
	h.GetBotEntry = nil
	s.Synced = true
	return nil
}

// constructEntry allocates a new entry for [top+1, bot-1], captures its
// pre-image from the live buffer, and pushes it onto the current header.
func (e *Engine) constructEntry(ctx context.Context, top, bot, newbot int, reload bool) error {
	s := e.state
	h := s.NewHead
	lineCount := e.lines.LineCount()
	size := bot - top - 1

	entry := &Entry{Top: top}
	e.setEntryBot(h, entry, bot, newbot, lineCount)

	lines := make([][]byte, 0, size)
	for i := 1; i <= size; i++ {
		if err := ctx.Err(); err != nil {
			return ErrInterrupted
		}
		text, err := e.lines.GetLine(top + i)
		if err != nil {
			return fmt.Errorf("undo: capture line %d: %w", top+i, err)
		}
		lines = append(lines, []byte(text))
	}
	entry.Lines = lines

	entry.Next = h.Entries
	h.Entries = entry

	if reload {
		h.Flags |= FlagReload
	}
	s.Synced = false
	return nil
}
