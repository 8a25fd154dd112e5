// Package undo implements a multi-level, branching undo engine for a
// line-oriented text buffer: the change-record DAG, the save/restore
// algorithm, the retention policy, and the time/save-count/sequence
// navigator. The on-disk format lives in the sibling package undofile.
package undo

import "github.com/vundo-dev/vundo/internal/hostiface"

// NMarks is the number of named marks snapshotted per header (a-z).
const NMarks = 26

// Flag is a bitset of per-header state flags.
type Flag uint16

const (
	// FlagChanged marks the buffer as modified as of this header.
	FlagChanged Flag = 1 << iota
	// FlagEmptyBuf marks that the buffer was empty (no lines) at this header.
	FlagEmptyBuf
	// FlagReload marks that this header was produced by a full-buffer reload.
	FlagReload
)

// Mark is a single named-mark or cursor snapshot.
type Mark struct {
	Lnum, Col, ColAdd int
}

// Visual is a snapshot of the visual-selection state.
type Visual struct {
	Start, End Mark
	Mode       int32
	Curswant   int32
}

// Entry is one contiguous range replacement within a header: the
// pre-image of the lines that the header's mutation is about to replace.
//
// Invariant: after this entry is replayed, Lines holds exactly what used
// to live on disk in [Top+1, Bot-1], i.e. replay swaps the entry with its
// own inverse (spec.md §3 Entry invariants).
type Entry struct {
	Top    int // line index immediately above the first replaced line
	Bot    int // line index immediately below the last replaced line (0 = deferred)
	LCount int // buffer line count when this entry was captured
	Lines  [][]byte

	Next *Entry // next entry in the same header (older, list is newest-first)
}

// Size is the number of recorded pre-image lines. It is always len(Lines)
// (spec.md's "size" field and "lines" slice are never allowed to diverge,
// so there is no reason to track them separately in Go).
func (e *Entry) Size() int { return len(e.Lines) }

// Header is one atomic change step: a node in the undo DAG. Four pointers
// give it two independent senses of "neighbor" — along the branch it
// sits on (Prev/Next) and across the alternate branches that fork at its
// position (AltNext/AltPrev).
type Header struct {
	Prev    *Header // newer sibling on the same branch (toward the leaf)
	Next    *Header // older sibling on the same branch (toward the root)
	AltNext *Header // head of an alternate branch diverging here
	AltPrev *Header // header this one is an alternate of

	Seq    uint32
	Time   int64
	SaveNr uint32 // 0, or the file-write ordinal this change coincided with

	Cursor     Mark
	CursorVcol int
	Flags      Flag
	Marks      [NMarks]Mark
	Visual     Visual

	Entries        *Entry // newest-first linked list
	ExtmarkDeltas  []hostiface.ExtmarkDelta

	// GetBotEntry is a transient weak reference to the entry whose Bot is
	// still deferred (resolved by resolveBot before the header closes).
	// It carries no meaning once the header is no longer the open one.
	GetBotEntry *Entry

	// walk is a transient token stamped by tree walks (navigator,
	// serializer, leaf enumeration) to mark visitation without any
	// persistent side effect. It is never written to the undo file.
	walk uint64
}

// ULineSlot is the single-line "restore this line" command slot used by
// the line-level undo command. It is orthogonal to the header DAG.
type ULineSlot struct {
	Line []byte
	Lnum int
	Col  int
}

// State is the undo state for one buffer: the DAG plus the bookkeeping
// needed to navigate and persist it. State exclusively owns every
// reachable Header and Entry; nothing is shared with another State.
type State struct {
	OldHead *Header // root of the DAG (oldest header on the primary branch)
	NewHead *Header // leaf of the primary branch (most recent change)
	CurHead *Header // header above the current buffer state; nil = at the leaf

	NumHeads int

	SeqLast uint32 // highest-ever assigned sequence
	SeqCur  uint32 // sequence identifying the buffer's current state

	TimeCur int64 // Time of the header whose state matches the buffer now

	SaveNrLast uint32 // last-ever file-write ordinal
	SaveNrCur  uint32 // save ordinal matching the buffer now

	// Synced: true means the next recorded change opens a new header;
	// false means it appends an Entry to the existing NewHead.
	Synced bool

	ULine ULineSlot

	nextWalkToken uint64
}

// NewState returns a freshly initialized, empty undo state: no headers,
// synced (the next change opens a new header).
func NewState() *State {
	return &State{Synced: true}
}

// newWalkToken returns a token guaranteed unique within this State's
// lifetime, usable to mark Header.walk during a single tree traversal.
func (s *State) newWalkToken() uint64 {
	s.nextWalkToken++
	return s.nextWalkToken
}
