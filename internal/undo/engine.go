package undo

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vundo-dev/vundo/internal/hostiface"
	vlog "github.com/vundo-dev/vundo/internal/log"
)

// Engine binds an undo State to one buffer's host collaborators and
// drives record_change, apply_header, navigate_to, and trim against it.
// An Engine is not safe for concurrent use (spec.md §5).
type Engine struct {
	state *State

	lines    hostiface.LineStore
	cursor   hostiface.CursorWindow
	marks    hostiface.BufferState
	extmarks hostiface.ExtmarkApplier
	policy   hostiface.Policy

	log   zerolog.Logger
	clock func() int64 // wall clock, overridable in tests

	replaying   bool // re-entrancy guard held for the duration of ApplyHeader
	debugChecks bool
	saveNrNext  uint32 // next file-write ordinal this buffer will claim
}

// New returns an Engine over a fresh, empty undo state for one buffer.
// extmarks may be nil if the host has no extmark subsystem to notify.
func New(lines hostiface.LineStore, cursor hostiface.CursorWindow, marks hostiface.BufferState, extmarks hostiface.ExtmarkApplier, policy hostiface.Policy) *Engine {
	return &Engine{
		state:    NewState(),
		lines:    lines,
		cursor:   cursor,
		marks:    marks,
		extmarks: extmarks,
		policy:   policy,
		log:      vlog.Record,
		clock:    func() int64 { return time.Now().Unix() },
	}
}

// State exposes the underlying undo state, e.g. for the serializer.
func (e *Engine) State() *State { return e.state }

// InstallState replaces the engine's state wholesale, as when a
// previously written undo file has just been read back for this
// buffer (undofile.Read). saveNrSeed seeds NextSaveNr so ordinals
// continue from the file's last recorded one rather than restarting
// at 1 and colliding with headers the file already references.
func (e *Engine) InstallState(s *State, saveNrSeed uint32) {
	e.state = s
	e.saveNrNext = saveNrSeed
}

// SetDebugChecks enables CheckInvariants after every mutation; intended
// for tests and optional runtime diagnostics, not production defaults.
func (e *Engine) SetDebugChecks(on bool) { e.debugChecks = on }

// NextSaveNr returns the ordinal the next successful undo-file write
// should claim, and advances the counter.
func (e *Engine) NextSaveNr() uint32 {
	e.saveNrNext++
	return e.saveNrNext
}

func (e *Engine) historyDepth() int {
	depth := e.policy.HistoryDepth()
	if depth == hostiface.NoLocal {
		depth = 1000 // host-wide default; no global config layer to defer to here
	}
	return depth
}

func (e *Engine) checkInvariants(where string) error {
	if !e.debugChecks {
		return nil
	}
	if err := CheckInvariants(e.state); err != nil {
		return fmt.Errorf("undo: invariant violation after %s: %w", where, err)
	}
	return nil
}
