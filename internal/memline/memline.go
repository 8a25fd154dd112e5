// Package memline provides a plain in-memory implementation of every
// hostiface collaborator the undo engine requires, so the engine can
// be exercised end-to-end without a real text-editor host: a
// []string line store, a cursor, named marks, a visual selection, and
// a fixed policy. It is used by the engine's own tests and by
// cmd/vundoctl's demo driver.
package memline

import (
	"context"
	"fmt"

	"github.com/vundo-dev/vundo/internal/hostiface"
)

// Buffer is a complete in-memory host: lines, cursor, marks, visual
// selection, and the changed flag, all in one place for convenience.
type Buffer struct {
	lines   []string
	cursor  hostiface.CursorPosition
	marks   [hostifaceNMarks]hostiface.CursorPosition
	visual  hostiface.VisualSelection
	changed bool
	vedit   bool
}

// hostifaceNMarks mirrors undo.NMarks without importing the undo
// package, which would create an import cycle (undo already imports
// hostiface, and memline is a hostiface implementation consumed by
// undo's own tests).
const hostifaceNMarks = 26

// New returns a Buffer seeded with lines, 1-based line numbering.
func New(lines []string) *Buffer {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return &Buffer{lines: cp}
}

// Lines returns a copy of the buffer's current content.
func (b *Buffer) Lines() []string {
	cp := make([]string, len(b.lines))
	copy(cp, b.lines)
	return cp
}

func (b *Buffer) GetLine(lnum int) (string, error) {
	if lnum < 1 || lnum > len(b.lines) {
		return "", fmt.Errorf("memline: line %d out of range [1,%d]", lnum, len(b.lines))
	}
	return b.lines[lnum-1], nil
}

func (b *Buffer) ReplaceLine(lnum int, text string) error {
	if lnum == 1 && len(b.lines) == 0 {
		// A buffer with zero lines is, as far as replay is concerned,
		// one empty line waiting to be filled in — mirrors every real
		// line-oriented editor's "a buffer is never truly lineless"
		// invariant, which replayEntry's empty-buffer insert relies on.
		b.lines = append(b.lines, text)
		return nil
	}
	if lnum < 1 || lnum > len(b.lines) {
		return fmt.Errorf("memline: line %d out of range [1,%d]", lnum, len(b.lines))
	}
	b.lines[lnum-1] = text
	return nil
}

func (b *Buffer) AppendLine(after int, text string) error {
	if after < 0 || after > len(b.lines) {
		return fmt.Errorf("memline: append after %d out of range [0,%d]", after, len(b.lines))
	}
	b.lines = append(b.lines, "")
	copy(b.lines[after+1:], b.lines[after:])
	b.lines[after] = text
	return nil
}

func (b *Buffer) DeleteLine(lnum int) error {
	if lnum < 1 || lnum > len(b.lines) {
		return fmt.Errorf("memline: line %d out of range [1,%d]", lnum, len(b.lines))
	}
	b.lines = append(b.lines[:lnum-1], b.lines[lnum:]...)
	return nil
}

func (b *Buffer) LineCount() int { return len(b.lines) }

func (b *Buffer) GetCursor() hostiface.CursorPosition { return b.cursor }
func (b *Buffer) SetCursor(pos hostiface.CursorPosition) { b.cursor = pos }

// SetVirtualEdit controls what VirtualEditActive reports; tests flip
// it to exercise the Vcol-restoring branch of cursor replay.
func (b *Buffer) SetVirtualEdit(on bool) { b.vedit = on }
func (b *Buffer) VirtualEditActive() bool { return b.vedit }

func (b *Buffer) Changed() bool         { return b.changed }
func (b *Buffer) SetChanged(c bool)     { b.changed = c }

func (b *Buffer) GetMark(i int) hostiface.CursorPosition {
	if i < 0 || i >= hostifaceNMarks {
		return hostiface.CursorPosition{}
	}
	return b.marks[i]
}

func (b *Buffer) SetMark(i int, pos hostiface.CursorPosition) {
	if i < 0 || i >= hostifaceNMarks {
		return
	}
	b.marks[i] = pos
}

func (b *Buffer) GetVisual() hostiface.VisualSelection     { return b.visual }
func (b *Buffer) SetVisual(v hostiface.VisualSelection)    { b.visual = v }

// NoopExtmarks satisfies hostiface.ExtmarkApplier by doing nothing; a
// host with no extmark subsystem can pass this, or nil, to undo.New.
type NoopExtmarks struct{}

func (NoopExtmarks) ApplyExtmarkDelta(ctx context.Context, delta hostiface.ExtmarkDelta, dir hostiface.Direction) error {
	return nil
}

// FixedPolicy is a Policy with values set once at construction, for
// tests and the CLI demo where there is no live modeline/sandbox to
// consult.
type FixedPolicy struct {
	ModifiableVal   bool
	RestrictedVal   bool
	HistoryDepthVal int
	ViCompatibleVal bool
	UndoDirsVal     string
}

// DefaultPolicy returns a permissive policy: modifiable, unrestricted,
// the host-wide default history depth, non-vi-compatible undo, and a
// single "." undo directory (alongside the buffer).
func DefaultPolicy() FixedPolicy {
	return FixedPolicy{
		ModifiableVal:   true,
		HistoryDepthVal: hostiface.NoLocal,
		UndoDirsVal:     ".",
	}
}

func (p FixedPolicy) Modifiable() bool   { return p.ModifiableVal }
func (p FixedPolicy) Restricted() bool   { return p.RestrictedVal }
func (p FixedPolicy) HistoryDepth() int  { return p.HistoryDepthVal }
func (p FixedPolicy) ViCompatible() bool { return p.ViCompatibleVal }
func (p FixedPolicy) UndoDirs() string   { return p.UndoDirsVal }
