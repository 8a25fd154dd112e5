// Package undofile implements the bit-exact binary persistence format
// for an undo DAG (spec.md §6.1-§6.2): big-endian integers, a SHA-256
// buffer-content hash, and pointer swizzling via sequence numbers.
package undofile

import "errors"

var (
	// ErrCorruption is returned when the byte stream fails a structural
	// check: bad magic, an unexpected version, a duplicate sequence
	// number, or a pointer that doesn't resolve to any read header.
	ErrCorruption = errors.New("undofile: corrupt undo file")

	// ErrHashMismatch is returned when the stored buffer hash or line
	// count doesn't match the buffer the file is being read against.
	ErrHashMismatch = errors.New("undofile: buffer contents do not match undo file")

	// ErrIOFailure wraps an underlying read/write error, always
	// alongside the file path via fmt.Errorf("%s: %w", path, err) at
	// the call site that has a path to report.
	ErrIOFailure = errors.New("undofile: i/o failure")
)
