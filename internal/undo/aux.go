package undo

// LeafInfo describes one reachable branch tip, for listing and
// scripting readouts (spec.md §6.3).
type LeafInfo struct {
	Seq     uint32 `json:"seq"`
	Time    int64  `json:"time"`
	Changes int    `json:"changes"`
	SaveNr  uint32 `json:"save_nr"`
}

// ListLeaves returns every header reachable from oldhead that has no
// newer sibling on its own branch (Prev == nil) — i.e. every branch tip
// in the DAG, primary or alternate.
func (e *Engine) ListLeaves() []LeafInfo {
	s := e.state
	if s.OldHead == nil {
		return nil
	}
	var leaves []LeafInfo
	token := s.newWalkToken()
	stack := []*Header{s.OldHead}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h == nil || h.walk == token {
			continue
		}
		h.walk = token
		if h.AltNext != nil {
			stack = append(stack, h.AltNext)
		}
		if h.Prev != nil {
			stack = append(stack, h.Prev)
		}
		if h.Prev == nil {
			leaves = append(leaves, LeafInfo{
				Seq:     h.Seq,
				Time:    h.Time,
				Changes: entryCount(h),
				SaveNr:  h.SaveNr,
			})
		}
	}
	return leaves
}

func entryCount(h *Header) int {
	n := 0
	for e := h.Entries; e != nil; e = e.Next {
		n++
	}
	return n
}

// TreeNode is one header's entry in the scripting readout produced by
// EvalTree: a flat, parent-linked list rather than a Go-native nested
// structure, so it serializes straight to JSON the way a caller would
// want to consume it.
type TreeNode struct {
	Seq       uint32 `json:"seq"`
	Time      int64  `json:"time"`
	SaveNr    uint32 `json:"save_nr,omitempty"`
	ParentSeq uint32 `json:"parent_seq,omitempty"`
	Alt       bool   `json:"alt"`
	Current   bool   `json:"curhead"`
	Changes   int    `json:"changes"`
}

// EvalTree returns a nested (here: flat, parent-referencing) dict/list
// representation of the whole DAG for scripting consumers (spec.md
// §6.3).
func (e *Engine) EvalTree() []TreeNode {
	s := e.state
	if s.OldHead == nil {
		return nil
	}
	var out []TreeNode
	token := s.newWalkToken()
	stack := []*Header{s.OldHead}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h == nil || h.walk == token {
			continue
		}
		h.walk = token
		if h.AltNext != nil {
			stack = append(stack, h.AltNext)
		}
		if h.Prev != nil {
			stack = append(stack, h.Prev)
		}

		node := TreeNode{
			Seq:     h.Seq,
			Time:    h.Time,
			SaveNr:  h.SaveNr,
			Alt:     h.AltPrev != nil,
			Current: h == s.CurHead,
			Changes: entryCount(h),
		}
		if h.Next != nil {
			node.ParentSeq = h.Next.Seq
		}
		out = append(out, node)
	}
	return out
}
