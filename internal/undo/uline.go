package undo

import (
	"fmt"

	"github.com/vundo-dev/vundo/internal/hostiface"
)

// SaveLine captures a single-line pre-image into the u-line slot,
// independent of the header DAG (spec.md §4.2).
func (s *State) SaveLine(ls hostiface.LineStore, lnum, col int) error {
	text, err := ls.GetLine(lnum)
	if err != nil {
		return fmt.Errorf("undo: save line %d: %w", lnum, err)
	}
	s.ULine = ULineSlot{Line: []byte(text), Lnum: lnum, Col: col}
	return nil
}

// UndoLine swaps the u-line slot's saved text with whatever currently
// occupies that line. Calling it again toggles back to the prior text.
func (s *State) UndoLine(ls hostiface.LineStore) error {
	if s.ULine.Lnum == 0 {
		return fmt.Errorf("%w: no saved line to restore", ErrInternal)
	}
	cur, err := ls.GetLine(s.ULine.Lnum)
	if err != nil {
		return fmt.Errorf("undo: restore line %d: %w", s.ULine.Lnum, err)
	}
	if err := ls.ReplaceLine(s.ULine.Lnum, string(s.ULine.Line)); err != nil {
		return fmt.Errorf("undo: restore line %d: %w", s.ULine.Lnum, err)
	}
	s.ULine.Line = []byte(cur)
	return nil
}
