// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package shadow

import (
	"github.com/AleutianAI/srcgen/services/srcgen/span"
)

// NodeAtSpan returns the node whose placement span equals s.
//
// Description:
//
//	Descends from the root: if the current node's span equals s it is
//	returned, otherwise the walk continues into the first child whose span
//	contains s. When a parent and its only child share a span the parent
//	wins. Merge nodes and carried formatting copies are never entered, they
//	do not live in the main tree's coordinate space. O(depth * fan-out).
//
// Inputs:
//   - s: A span obtained from this tree, e.g. recorded before an edit.
//
// Outputs:
//   - NodeID: The matching node.
//   - error: *AddressError when no node boundary matches s.
func (t *Tree) NodeAtSpan(s span.Span) (NodeID, error) {
	cur := t.root
	if !t.placement[cur].Contains(s) {
		return NoNode, &AddressError{Span: s, Deepest: t.placement[cur], DeepestType: t.nodes[cur].typ}
	}

	for {
		if t.placement[cur] == s {
			return cur, nil
		}

		next := NoNode
		for _, c := range t.nodes[cur].children {
			if !t.addressable(c) {
				continue
			}
			if t.placement[c].Contains(s) {
				next = c
				break
			}
		}
		if next == NoNode {
			return NoNode, &AddressError{Span: s, Deepest: t.placement[cur], DeepestType: t.nodes[cur].typ}
		}
		cur = next
	}
}

// MustNodeAtSpan is NodeAtSpan for spans known to be valid, such as spans
// read back from this tree. It panics on an addressing fault.
func (t *Tree) MustNodeAtSpan(s span.Span) NodeID {
	id, err := t.NodeAtSpan(s)
	if err != nil {
		panic(err)
	}
	return id
}

// addressable reports whether lookup may descend into id.
func (t *Tree) addressable(id NodeID) bool {
	n := &t.nodes[id]
	return n.kind == KindPlain && !n.carried && n.fragment == MainFragment
}
