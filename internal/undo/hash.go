package undo

import (
	"crypto/sha256"

	"github.com/vundo-dev/vundo/pkg/types"
)

// HashLines returns the buffer-content hash used by the undo file format
// (spec §6.1): SHA-256 over the concatenation of each line followed by a
// single 0x00 byte. The algorithm is part of the wire format and is not
// configurable.
func HashLines(lines []string) types.Hash {
	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{0})
	}
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}
