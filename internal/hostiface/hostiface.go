// Package hostiface declares the capabilities the undo engine requires of
// its host: the line store, the cursor/window, the extmark subsystem, and
// the read-only policy layer. The engine never constructs these itself —
// it is handed implementations and drives them.
package hostiface

import "context"

// LineStore is the line-oriented text buffer the engine mutates and
// inspects. Line numbers are 1-based; line 0 never exists as content.
type LineStore interface {
	// GetLine returns the text of line lnum (1-based).
	GetLine(lnum int) (string, error)
	// ReplaceLine overwrites the text of an existing line.
	ReplaceLine(lnum int, text string) error
	// AppendLine inserts a new line containing text immediately after
	// line "after" (after == 0 inserts at the top of the buffer).
	AppendLine(after int, text string) error
	// DeleteLine removes line lnum, shifting later lines up.
	DeleteLine(lnum int) error
	// LineCount returns the number of lines currently in the buffer.
	LineCount() int
}

// MarkAdjuster is implemented by line stores that want to keep their own
// marks (e.g. folds, signs) consistent across an undo/redo splice. It is
// optional: a LineStore that doesn't implement it simply isn't notified.
type MarkAdjuster interface {
	// AdjustMarks is called after an entry has been replayed, reporting
	// that the range starting at line top+1 changed from oldsize lines
	// to newsize lines.
	AdjustMarks(top, oldsize, newsize int)
}

// CursorPosition is a (line, column) pair plus the virtual column used
// when virtual editing is active.
type CursorPosition struct {
	Lnum, Col int
	ColAdd    int // "coladd": offset past end of line in virtual edit mode
	Vcol      int
}

// CursorWindow is the cursor/window state external to the engine.
type CursorWindow interface {
	GetCursor() CursorPosition
	SetCursor(pos CursorPosition)
	// VirtualEditActive reports whether Vcol should be honored when
	// restoring a cursor position (spec.md §4.5).
	VirtualEditActive() bool
}

// BufferState is the host-owned auxiliary state a header snapshots and
// restores alongside the line contents: named marks, the visual
// selection, and the buffer-modified flag. Lnum/Col/ColAdd triples use
// the same shape as CursorPosition; a mark with Lnum == 0 is unset.
type BufferState interface {
	// Changed reports whether the host currently considers the buffer
	// modified.
	Changed() bool
	SetChanged(changed bool)

	// GetMark returns named mark i (0-based, "a" == 0).
	GetMark(i int) CursorPosition
	SetMark(i int, pos CursorPosition)

	// GetVisual and SetVisual snapshot/restore the visual selection.
	GetVisual() VisualSelection
	SetVisual(v VisualSelection)
}

// VisualSelection is the visual-mode selection boundary.
type VisualSelection struct {
	Start, End CursorPosition
	Mode       int32
	Curswant   int32
}

// Direction selects which way a header is being replayed.
type Direction int

const (
	// Undo walks toward the root: apply the inverse of a recorded change.
	Undo Direction = iota
	// Redo walks toward the leaf: re-apply a previously undone change.
	Redo
)

func (d Direction) String() string {
	if d == Redo {
		return "redo"
	}
	return "undo"
}

// ExtmarkDelta is an opaque record the engine stores and replays back
// through the extmark subsystem; the engine never inspects its contents.
type ExtmarkDelta = []byte

// ExtmarkApplier replays extmark deltas recorded alongside a header.
type ExtmarkApplier interface {
	ApplyExtmarkDelta(ctx context.Context, delta ExtmarkDelta, dir Direction) error
}

// NoLocal tells the retention manager to defer to the host's global
// history-depth default instead of a per-buffer override.
const NoLocal = -2

// Policy is the read-only gate layer: modifiability, history depth, and
// the vi-compatible undo toggle. None of it is owned by the engine.
type Policy interface {
	// Modifiable reports whether the buffer may currently be changed.
	Modifiable() bool
	// Restricted reports whether the host is in a sandboxed/restricted mode.
	Restricted() bool
	// HistoryDepth returns the configured 'undolevels': >=0 is a literal
	// bound, -1 disables undo entirely, NoLocal defers to a global default.
	HistoryDepth() int
	// ViCompatible reports whether 'u' should behave as a toggle between
	// the last two states (vi-compatible) rather than a linear undo step.
	ViCompatible() bool
	// UndoDirs returns the host's configured list of undo-file
	// directories, as a single comma-separated option string.
	UndoDirs() string
}
