package undo

import (
	"context"
	"fmt"

	"github.com/vundo-dev/vundo/internal/hostiface"
)

// ApplyHeader replays state.CurHead in the given direction (spec.md
// §4.5): each entry is its own inverse once the recorded pre-image and
// the live range are swapped, so undo and redo share this one algorithm.
// On success it leaves the state synced: a navigation is itself a command
// boundary, so the next record_change must open a new header rather
// than extend whichever one happened to be newhead before the walk.
func (e *Engine) ApplyHeader(ctx context.Context, dir hostiface.Direction) error {
	if e.replaying {
		return ErrReentrant
	}
	e.replaying = true
	defer func() { e.replaying = false }()

	s := e.state
	h := s.CurHead
	if h == nil {
		return fmt.Errorf("%w: no header to replay", ErrInternal)
	}

	for entry := h.Entries; entry != nil; entry = entry.Next {
		if err := ctx.Err(); err != nil {
			return ErrInterrupted
		}
		if err := e.replayEntry(entry); err != nil {
			e.marks.SetChanged(true)
			s.Synced = false // abort leaves state changed, never mixed
			return err
		}
	}

	if err := e.replayExtmarks(ctx, h, dir); err != nil {
		return err
	}

	e.swapAuxState(h)
	e.restoreCursor(h)
	s.Synced = true

	switch dir {
	case hostiface.Undo:
		if h.Next != nil {
			s.SeqCur = h.Next.Seq
		} else {
			s.SeqCur = 0
		}
		if h.SaveNr != 0 {
			s.SaveNrCur = h.SaveNr - 1
		}
	case hostiface.Redo:
		s.SeqCur = h.Seq
		if h.SaveNr != 0 {
			s.SaveNrCur = h.SaveNr
		}
	}

	return e.checkInvariants("apply_header")
}

// replayEntry executes step 1-7 of spec.md §4.5 for a single entry.
func (e *Engine) replayEntry(entry *Entry) error {
	lineCount := e.lines.LineCount()
	bot := entry.Bot
	if bot == 0 {
		bot = lineCount + 1
	}
	if entry.Top < 0 || bot < entry.Top+1 || bot > lineCount+1 {
		return fmt.Errorf("%w: entry range top=%d bot=%d linecount=%d", ErrCorruption, entry.Top, bot, lineCount)
	}

	oldsize := bot - entry.Top - 1
	newsize := entry.Size()

	saved := make([][]byte, 0, oldsize)
	for i := 1; i <= oldsize; i++ {
		text, err := e.lines.GetLine(entry.Top + i)
		if err != nil {
			return fmt.Errorf("undo: replay read line %d: %w", entry.Top+i, err)
		}
		saved = append(saved, []byte(text))
	}

	for i := oldsize; i >= 1; i-- {
		if err := e.lines.DeleteLine(entry.Top + i); err != nil {
			return fmt.Errorf("undo: replay delete line %d: %w", entry.Top+i, err)
		}
	}

	emptyBuf := e.lines.LineCount() == 0
	after := entry.Top
	for i, line := range entry.Lines {
		if emptyBuf && i == 0 {
			if err := e.lines.ReplaceLine(1, string(line)); err != nil {
				return fmt.Errorf("undo: replay insert line: %w", err)
			}
			after = 1
			continue
		}
		if err := e.lines.AppendLine(after, string(line)); err != nil {
			return fmt.Errorf("undo: replay insert line: %w", err)
		}
		after++
	}

	entry.Lines = saved
	entry.Bot = entry.Top + newsize + 1

	if adj, ok := e.lines.(hostiface.MarkAdjuster); ok {
		adj.AdjustMarks(entry.Top, oldsize, newsize)
	}
	return nil
}

// replayExtmarks replays a header's extmark deltas: reverse order for
// undo, forward order for redo (spec.md §4.5).
func (e *Engine) replayExtmarks(ctx context.Context, h *Header, dir hostiface.Direction) error {
	if e.extmarks == nil || len(h.ExtmarkDeltas) == 0 {
		return nil
	}
	deltas := h.ExtmarkDeltas
	if dir == hostiface.Undo {
		for i := len(deltas) - 1; i >= 0; i-- {
			if err := ctx.Err(); err != nil {
				return ErrInterrupted
			}
			if err := e.extmarks.ApplyExtmarkDelta(ctx, deltas[i], dir); err != nil {
				return fmt.Errorf("undo: replay extmark delta: %w", err)
			}
		}
		return nil
	}
	for _, d := range deltas {
		if err := ctx.Err(); err != nil {
			return ErrInterrupted
		}
		if err := e.extmarks.ApplyExtmarkDelta(ctx, d, dir); err != nil {
			return fmt.Errorf("undo: replay extmark delta: %w", err)
		}
	}
	return nil
}

// swapAuxState exchanges the header's flags, marks, and visual selection
// with the live state held by the host.
func (e *Engine) swapAuxState(h *Header) {
	changed := e.marks.Changed()
	e.marks.SetChanged(h.Flags&FlagChanged != 0)
	if changed {
		h.Flags |= FlagChanged
	} else {
		h.Flags &^= FlagChanged
	}

	for i := 0; i < NMarks; i++ {
		live := e.marks.GetMark(i)
		e.marks.SetMark(i, hostiface.CursorPosition{Lnum: h.Marks[i].Lnum, Col: h.Marks[i].Col, ColAdd: h.Marks[i].ColAdd})
		h.Marks[i] = Mark{Lnum: live.Lnum, Col: live.Col, ColAdd: live.ColAdd}
	}

	liveVis := e.marks.GetVisual()
	e.marks.SetVisual(hostiface.VisualSelection{
		Start:    hostiface.CursorPosition{Lnum: h.Visual.Start.Lnum, Col: h.Visual.Start.Col, ColAdd: h.Visual.Start.ColAdd},
		End:      hostiface.CursorPosition{Lnum: h.Visual.End.Lnum, Col: h.Visual.End.Col, ColAdd: h.Visual.End.ColAdd},
		Mode:     h.Visual.Mode,
		Curswant: h.Visual.Curswant,
	})
	h.Visual = Visual{
		Start:    Mark{Lnum: liveVis.Start.Lnum, Col: liveVis.Start.Col, ColAdd: liveVis.Start.ColAdd},
		End:      Mark{Lnum: liveVis.End.Lnum, Col: liveVis.End.Col, ColAdd: liveVis.End.ColAdd},
		Mode:     liveVis.Mode,
		Curswant: liveVis.Curswant,
	}
}

// restoreCursor applies the header's recorded cursor, honoring the
// "o-command friendliness" rule: when the live cursor sits exactly one
// line below the recorded position, leave it there rather than snapping
// it back (spec.md §4.5).
func (e *Engine) restoreCursor(h *Header) {
	live := e.cursor.GetCursor()
	if live.Lnum == h.Cursor.Lnum+1 {
		return
	}
	pos := hostiface.CursorPosition{Lnum: h.Cursor.Lnum, Col: h.Cursor.Col, ColAdd: h.Cursor.ColAdd}
	if e.cursor.VirtualEditActive() {
		pos.Vcol = h.CursorVcol
	}
	e.cursor.SetCursor(pos)
}
