package undofile

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vundo-dev/vundo/internal/undo"
)

// Read parses an undo file from r and verifies it still matches
// currentLines before returning the reconstructed state (spec.md §6.2).
// On a hash or line-count mismatch it returns ErrHashMismatch and a nil
// state; the caller must leave its existing in-memory undo state
// untouched in that case rather than discarding it.
func Read(r io.Reader, currentLines []string) (*undo.State, uint32, error) {
	var magic [len("Vim\x9fUnDo\xe5")]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if !bytes.Equal(magic[:], startMagic) {
		return nil, 0, corruptf("bad start magic")
	}
	version, err := readU16(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if version != fileVersion {
		return nil, 0, corruptf("unsupported version %d", version)
	}

	var storedHash [32]byte
	if _, err := io.ReadFull(r, storedHash[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	storedLineCount, err := readU32(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	wantHash := undo.HashLines(currentLines)
	if !bytes.Equal(storedHash[:], wantHash[:]) || int(storedLineCount) != len(currentLines) {
		return nil, 0, ErrHashMismatch
	}

	ulineText, err := readString(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	ulineLnum, err := readU32(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	ulineCol, err := readU32(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	oldHeadSeq, err := readU32(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	newHeadSeq, err := readU32(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	curHeadSeq, err := readU32(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	numHeads, err := readU32(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	seqLast, err := readU32(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	seqCur, err := readU32(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	timeCur, err := readI64(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	lastSaveNr, err := readOptionalSaveNr(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	bySeq := make(map[uint32]*undo.Header)
	type rawLinks struct{ next, prev, altNext, altPrev uint32 }
	links := make(map[uint32]rawLinks)

	for {
		m, err := readU16(r)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		if m == endOfHeadersMagic {
			break
		}
		if m != headerMagic {
			return nil, 0, corruptf("bad header magic %#x", m)
		}
		h, rl, err := readHeader(r)
		if err != nil {
			return nil, 0, err
		}
		if _, dup := bySeq[h.Seq]; dup {
			return nil, 0, corruptf("duplicate seq %d", h.Seq)
		}
		bySeq[h.Seq] = h
		links[h.Seq] = rl
	}

	resolve := func(seq uint32) (*undo.Header, error) {
		if seq == 0 {
			return nil, nil
		}
		h, ok := bySeq[seq]
		if !ok {
			return nil, corruptf("dangling seq pointer %d", seq)
		}
		return h, nil
	}

	for seq, h := range bySeq {
		rl := links[seq]
		var err error
		if h.Next, err = resolve(rl.next); err != nil {
			return nil, 0, err
		}
		if h.Prev, err = resolve(rl.prev); err != nil {
			return nil, 0, err
		}
		if h.AltNext, err = resolve(rl.altNext); err != nil {
			return nil, 0, err
		}
		if h.AltPrev, err = resolve(rl.altPrev); err != nil {
			return nil, 0, err
		}
	}

	s := undo.NewState()
	if s.OldHead, err = resolve(oldHeadSeq); err != nil {
		return nil, 0, err
	}
	if s.NewHead, err = resolve(newHeadSeq); err != nil {
		return nil, 0, err
	}
	if s.CurHead, err = resolve(curHeadSeq); err != nil {
		return nil, 0, err
	}
	s.NumHeads = int(numHeads)
	s.SeqLast = seqLast
	s.SeqCur = seqCur
	s.TimeCur = timeCur
	s.Synced = true
	s.ULine.Line = ulineText
	s.ULine.Lnum = int(ulineLnum)
	s.ULine.Col = int(ulineCol)

	if err := undo.CheckInvariants(s); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorruption, err)
	}

	return s, lastSaveNr, nil
}

type headerLinks struct{ next, prev, altNext, altPrev uint32 }

func readHeader(r io.Reader) (*undo.Header, headerLinks, error) {
	var rl headerLinks
	h := &undo.Header{}

	vals := make([]uint32, 5)
	for i := range vals {
		v, err := readU32(r)
		if err != nil {
			return nil, rl, fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		vals[i] = v
	}
	rl.next, rl.prev, rl.altNext, rl.altPrev, h.Seq = vals[0], vals[1], vals[2], vals[3], vals[4]

	cur := make([]uint32, 4)
	for i := range cur {
		v, err := readU32(r)
		if err != nil {
			return nil, rl, fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		cur[i] = v
	}
	h.Cursor = undo.Mark{Lnum: int(cur[0]), Col: int(cur[1]), ColAdd: int(cur[2])}
	h.CursorVcol = int(cur[3])

	flags, err := readU16(r)
	if err != nil {
		return nil, rl, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	h.Flags = undo.Flag(flags)

	for i := 0; i < undo.NMarks; i++ {
		m := make([]uint32, 3)
		for j := range m {
			v, err := readU32(r)
			if err != nil {
				return nil, rl, fmt.Errorf("%w: %v", ErrIOFailure, err)
			}
			m[j] = v
		}
		h.Marks[i] = undo.Mark{Lnum: int(m[0]), Col: int(m[1]), ColAdd: int(m[2])}
	}

	vis := make([]uint32, 6)
	for i := range vis {
		v, err := readU32(r)
		if err != nil {
			return nil, rl, fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		vis[i] = v
	}
	mode, err := readU32(r)
	if err != nil {
		return nil, rl, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	curswant, err := readU32(r)
	if err != nil {
		return nil, rl, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	h.Visual = undo.Visual{
		Start:    undo.Mark{Lnum: int(vis[0]), Col: int(vis[1]), ColAdd: int(vis[2])},
		End:      undo.Mark{Lnum: int(vis[3]), Col: int(vis[4]), ColAdd: int(vis[5])},
		Mode:     int32(mode),
		Curswant: int32(curswant),
	}

	h.Time, err = readI64(r)
	if err != nil {
		return nil, rl, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	h.SaveNr, err = readOptionalSaveNr(r)
	if err != nil {
		return nil, rl, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	var head, tail *undo.Entry
	for {
		m, err := readU16(r)
		if err != nil {
			return nil, rl, fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		if m == entryEndMagic {
			break
		}
		if m != entryMagic {
			return nil, rl, corruptf("bad entry magic %#x", m)
		}
		e, err := readEntry(r)
		if err != nil {
			return nil, rl, err
		}
		if head == nil {
			head = e
		} else {
			tail.Next = e
		}
		tail = e
	}
	h.Entries = head

	var deltas [][]byte
	for {
		m, err := readU16(r)
		if err != nil {
			return nil, rl, fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		if m == entryEndMagic {
			break
		}
		if m != entryMagic {
			return nil, rl, corruptf("bad extmark magic %#x", m)
		}
		d, err := readString(r)
		if err != nil {
			return nil, rl, fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		deltas = append(deltas, d)
	}
	h.ExtmarkDeltas = deltas

	return h, rl, nil
}

func readEntry(r io.Reader) (*undo.Entry, error) {
	fields := make([]uint32, 4)
	for i := range fields {
		v, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		fields[i] = v
	}
	e := &undo.Entry{Top: int(fields[0]), Bot: int(fields[1]), LCount: int(fields[2])}
	n := int(fields[3])
	e.Lines = make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		line, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		e.Lines = append(e.Lines, line)
	}
	return e, nil
}
