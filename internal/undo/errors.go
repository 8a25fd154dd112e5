package undo

import "errors"

// Sentinel errors returned by the engine. Callers compare with errors.Is;
// every wrapping layer uses fmt.Errorf("...: %w", err) so the sentinel
// survives.
var (
	// ErrPolicyDenied is returned when the host's policy layer refuses a
	// mutation: not modifiable, restricted mode, or undo disabled.
	ErrPolicyDenied = errors.New("undo: denied by policy")

	// ErrRangeInvalid is returned when a caller-supplied line range falls
	// outside the buffer or violates top < bot.
	ErrRangeInvalid = errors.New("undo: invalid line range")

	// ErrCorruption is returned when a deserialized structure, or a
	// header/entry encountered mid-replay, violates an invariant.
	ErrCorruption = errors.New("undo: corrupt undo state")

	// ErrIOFailure wraps an underlying I/O error from a host-provided
	// byte stream.
	ErrIOFailure = errors.New("undo: i/o failure")

	// ErrInternal covers bugs that should never happen in a consistent
	// state (a line-number mismatch, a broken list link) but that the
	// engine can still survive with best-effort behavior.
	ErrInternal = errors.New("undo: internal error")

	// ErrInterrupted is returned when a host-supplied context is
	// canceled mid-operation (record-change, replay).
	ErrInterrupted = errors.New("undo: interrupted")

	// ErrReentrant is returned if a host callback attempts to re-enter
	// the engine while a replay is already in progress.
	ErrReentrant = errors.New("undo: re-entrant call during apply_header")
)
