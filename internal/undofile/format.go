package undofile

import (
	"encoding/binary"
	"fmt"
	"io"
)

var startMagic = []byte("Vim\x9fUnDo\xe5")

const (
	fileVersion       uint16 = 0x0003
	headerMagic       uint16 = 0x5fd0
	endOfHeadersMagic uint16 = 0xe7aa
	entryMagic        uint16 = 0xf518
	entryEndMagic     uint16 = 0x3581

	tagSaveNr byte = 0x01
)

func writeU16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeI64(w io.Writer, v int64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	_, err := w.Write(b[:])
	return err
}

func writeString(w io.Writer, b []byte) error {
	if err := writeU32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readI64(r io.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

func readString(r io.Reader) ([]byte, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// writeOptionalSaveNr writes the single optional field this format
// actually uses: a 4-byte save-ordinal tagged 0x01, terminated by a
// zero length byte (spec.md §6.1 OptionalFields).
func writeOptionalSaveNr(w io.Writer, saveNr uint32) error {
	if saveNr != 0 {
		if _, err := w.Write([]byte{4, tagSaveNr}); err != nil {
			return err
		}
		if err := writeU32(w, saveNr); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte{0})
	return err
}

// readOptionalSaveNr reads an OptionalFields run, returning the save
// ordinal if tag 0x01 was present (0 otherwise). Unknown tags are
// skipped by their declared length so newer writers stay forward
// compatible with this reader.
func readOptionalSaveNr(r io.Reader) (uint32, error) {
	var saveNr uint32
	for {
		var lenByte [1]byte
		if _, err := io.ReadFull(r, lenByte[:]); err != nil {
			return 0, err
		}
		if lenByte[0] == 0 {
			return saveNr, nil
		}
		var tag [1]byte
		if _, err := io.ReadFull(r, tag[:]); err != nil {
			return 0, err
		}
		payload := make([]byte, lenByte[0])
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, err
		}
		if tag[0] == tagSaveNr && len(payload) == 4 {
			saveNr = binary.BigEndian.Uint32(payload)
		}
	}
}

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrCorruption}, args...)...)
}
