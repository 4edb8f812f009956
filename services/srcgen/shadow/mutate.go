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
	"fmt"
	"slices"

	"github.com/AleutianAI/srcgen/services/srcgen/span"
)

// SetDeleted sets the deleted flag on id and every descendant.
//
// Inner nodes never contribute text themselves, so the flag is mirrored down
// to the leaves. For a merge node the wrapped copy and any linked carried
// copies are included. Returns the number of nodes whose flag changed.
func (t *Tree) SetDeleted(id NodeID, deleted bool) (int, error) {
	if !t.valid(id) {
		return 0, ErrUnknownNode
	}
	changed := 0
	t.mark(id, deleted, &changed)
	return changed, nil
}

func (t *Tree) mark(id NodeID, deleted bool, changed *int) {
	n := &t.nodes[id]
	if n.deleted != deleted {
		n.deleted = deleted
		*changed++
	}
	switch n.kind {
	case KindMerge:
		t.mark(n.merge.wrapped, deleted, changed)
		for _, c := range n.merge.carried {
			t.mark(c, deleted, changed)
		}
	case KindPlain:
		for _, c := range n.children {
			t.mark(c, deleted, changed)
		}
	}
}

// SetSpan reassigns a node's placement span. The origin span is kept.
func (t *Tree) SetSpan(id NodeID, s span.Span) error {
	if !t.valid(id) {
		return ErrUnknownNode
	}
	t.placement[id] = s
	return nil
}

// InsertChild attaches a detached node at index among parent's children.
//
// Inputs:
//   - parent: A plain node.
//   - index: 0 <= index <= len(children).
//   - child: A node with no parent that is not the root.
//
// Outputs:
//   - error: ErrUnknownNode, ErrAttached, or ErrInvalidIndex (also returned
//     when parent is a merge node).
func (t *Tree) InsertChild(parent NodeID, index int, child NodeID) error {
	if !t.valid(parent) || !t.valid(child) {
		return ErrUnknownNode
	}
	if t.nodes[parent].kind != KindPlain {
		return fmt.Errorf("insert into %s node: %w", t.nodes[parent].kind, ErrInvalidIndex)
	}
	if child == t.root || t.nodes[child].parent != NoNode {
		return ErrAttached
	}
	p := &t.nodes[parent]
	if index < 0 || index > len(p.children) {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidIndex, index, len(p.children))
	}
	p.children = slices.Insert(p.children, index, child)
	t.nodes[child].parent = parent
	return nil
}

// CarryCopy creates a detached copy of a leaf, placed at a zero-width span
// at anchor. The copy renders the same text as the original.
//
// Insertion uses carried copies to duplicate newline and indentation leaves
// next to the inserted node. Carried copies are skipped by lookup.
func (t *Tree) CarryCopy(leaf NodeID, anchor span.Point) (NodeID, error) {
	if !t.valid(leaf) {
		return NoNode, ErrUnknownNode
	}
	if t.nodes[leaf].kind != KindPlain || !t.IsLeaf(leaf) {
		return NoNode, ErrNotLeaf
	}
	n := t.nodes[leaf]
	n.parent = NoNode
	n.children = nil
	n.carried = true
	n.deleted = false
	return t.add(n, span.At(anchor), t.origin[leaf]), nil
}
