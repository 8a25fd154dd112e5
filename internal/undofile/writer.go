package undofile

import (
	"fmt"
	"io"

	"github.com/vundo-dev/vundo/internal/undo"
)

// Write serializes s to w in the format described by spec.md §6.1,
// hashing lines itself so the reader can later verify the file still
// matches the buffer it was written for. lastSaveNr is the host's
// file-write ordinal as of this write. Per spec.md §6.2, the caller is
// responsible for opening w exclusively and for fsync/close; on any
// write failure here the caller should remove the partial file.
func Write(w io.Writer, s *undo.State, lines []string, lastSaveNr uint32) error {
	hash := undo.HashLines(lines)

	if _, err := w.Write(startMagic); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeU16(w, fileVersion); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if _, err := w.Write(hash[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeU32(w, uint32(len(lines))); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeString(w, s.ULine.Line); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeU32(w, uint32(s.ULine.Lnum)); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeU32(w, uint32(s.ULine.Col)); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	if err := writeU32(w, seqOf(s.OldHead)); err != nil {
		return err
	}
	if err := writeU32(w, seqOf(s.NewHead)); err != nil {
		return err
	}
	if err := writeU32(w, seqOf(s.CurHead)); err != nil {
		return err
	}
	if err := writeU32(w, uint32(s.NumHeads)); err != nil {
		return err
	}
	if err := writeU32(w, s.SeqLast); err != nil {
		return err
	}
	if err := writeU32(w, s.SeqCur); err != nil {
		return err
	}
	if err := writeI64(w, s.TimeCur); err != nil {
		return err
	}
	if err := writeOptionalSaveNr(w, lastSaveNr); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	visited := make(map[*undo.Header]bool)
	var walk func(h *undo.Header) error
	walk = func(h *undo.Header) error {
		if h == nil || visited[h] {
			return nil
		}
		visited[h] = true
		if err := writeHeader(w, h); err != nil {
			return err
		}
		if err := walk(h.Prev); err != nil {
			return err
		}
		return walk(h.AltNext)
	}
	if err := walk(s.OldHead); err != nil {
		return err
	}

	return writeU16(w, endOfHeadersMagic)
}

func seqOf(h *undo.Header) uint32 {
	if h == nil {
		return 0
	}
	return h.Seq
}

func writeHeader(w io.Writer, h *undo.Header) error {
	if err := writeU16(w, headerMagic); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	for _, v := range []uint32{seqOf(h.Next), seqOf(h.Prev), seqOf(h.AltNext), seqOf(h.AltPrev), h.Seq} {
		if err := writeU32(w, v); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}
	for _, v := range []int{h.Cursor.Lnum, h.Cursor.Col, h.Cursor.ColAdd, h.CursorVcol} {
		if err := writeU32(w, uint32(v)); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}
	if err := writeU16(w, uint16(h.Flags)); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	for i := 0; i < undo.NMarks; i++ {
		m := h.Marks[i]
		for _, v := range []int{m.Lnum, m.Col, m.ColAdd} {
			if err := writeU32(w, uint32(v)); err != nil {
				return fmt.Errorf("%w: %v", ErrIOFailure, err)
			}
		}
	}
	vis := h.Visual
	for _, v := range []int{vis.Start.Lnum, vis.Start.Col, vis.Start.ColAdd, vis.End.Lnum, vis.End.Col, vis.End.ColAdd} {
		if err := writeU32(w, uint32(v)); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}
	if err := writeU32(w, uint32(vis.Mode)); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeU32(w, uint32(vis.Curswant)); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeI64(w, h.Time); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeOptionalSaveNr(w, h.SaveNr); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	for e := h.Entries; e != nil; e = e.Next {
		if err := writeEntry(w, e); err != nil {
			return err
		}
	}
	if err := writeU16(w, entryEndMagic); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	for _, d := range h.ExtmarkDeltas {
		if err := writeU16(w, entryMagic); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		if err := writeString(w, d); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}
	return writeU16(w, entryEndMagic)
}

func writeEntry(w io.Writer, e *undo.Entry) error {
	if err := writeU16(w, entryMagic); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	for _, v := range []int{e.Top, e.Bot, e.LCount, e.Size()} {
		if err := writeU32(w, uint32(v)); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}
	for _, line := range e.Lines {
		if err := writeString(w, line); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}
	return nil
}
