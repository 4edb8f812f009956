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
	"log/slog"
	"slices"

	"github.com/AleutianAI/srcgen/services/srcgen/span"
)

// Placement says where an imported subtree should land in the main tree.
type Placement struct {
	// Ref is the main-tree span of the reference node. It is also the
	// initial merge offset.
	Ref span.Span

	// Before selects insertion before (true) or after (false) Ref.
	Before bool

	// AffectsRow classifies the merge: true if splicing it in changes the
	// number of lines, false if it only changes line lengths. Row-affecting
	// merges get newline and indentation carried over on insertion.
	AffectsRow bool
}

// mergeData is the payload of a KindMerge node.
type mergeData struct {
	wrapped   NodeID
	offset    span.Span
	placement Placement

	// first and end delimit the imported copy in the arena: [first, end).
	first NodeID
	end   NodeID

	// carried lists the formatting copies inserted alongside the merge.
	carried []NodeID
}

// MergeInfo is a read-only view of a merge node's payload.
type MergeInfo struct {
	Wrapped    NodeID
	Offset     span.Span
	Ref        span.Span
	Before     bool
	AffectsRow bool
	Carried    []NodeID
}

// Import copies the subtree at fragSpan of frag into t and returns a new,
// detached merge node wrapping the copy.
//
// Description:
//
//	The subtree is resolved with frag.NodeAtSpan and copied into t's arena
//	in pre-order, so the copy occupies one contiguous range. The fragment's
//	text is registered in t under a new FragmentID; copied nodes keep their
//	fragment-local spans as both origin and placement until an offset is
//	applied. Deleted flags on the copied nodes are preserved, which lets a
//	caller trim the fragment before importing it.
//
//	The merge node is not attached anywhere; insert it with an edit action.
//
// Inputs:
//   - frag: Independently parsed fragment tree. Not modified.
//   - fragSpan: Span of the node to import, in frag's coordinates.
//   - p: Where the node is meant to land in t.
//
// Outputs:
//   - NodeID: The merge node.
//   - error: Addressing fault in frag, or ErrNestedMerge.
func (t *Tree) Import(frag *Tree, fragSpan span.Span, p Placement) (NodeID, error) {
	if frag == nil {
		return NoNode, fmt.Errorf("import: %w", ErrNilRoot)
	}
	src, err := frag.NodeAtSpan(fragSpan)
	if err != nil {
		return NoNode, fmt.Errorf("import: resolving fragment span: %w", err)
	}

	var nested bool
	frag.Walk(src, func(id NodeID, _ int) bool {
		if frag.nodes[id].kind == KindMerge || frag.nodes[id].fragment != MainFragment {
			nested = true
		}
		return !nested
	})
	if nested {
		return NoNode, fmt.Errorf("import %s: %w", fragSpan, ErrNestedMerge)
	}

	fid := FragmentID(len(t.fragments))
	t.fragments = append(t.fragments, newFragment(fid, frag.Source()))

	first := NodeID(len(t.nodes))
	wrapped := t.copySubtree(frag, src, NoNode, fid)
	end := NodeID(len(t.nodes))

	m := frag.nodes[src]
	merge := t.add(node{
		kind:      KindMerge,
		role:      RoleSyntax,
		typ:       m.typ,
		named:     m.named,
		fragment:  fid,
		startByte: m.startByte,
		endByte:   m.endByte,
		parent:    NoNode,
		merge: &mergeData{
			wrapped:   wrapped,
			offset:    p.Ref,
			placement: p,
			first:     first,
			end:       end,
		},
	}, frag.placement[src], frag.origin[src])
	t.nodes[wrapped].parent = merge

	slog.Debug("imported fragment subtree",
		slog.String("type", m.typ),
		slog.String("fragment_span", fragSpan.String()),
		slog.String("ref", p.Ref.String()),
		slog.Int("fragment", int(fid)),
		slog.Int("nodes", int(end-first)))

	return merge, nil
}

func (t *Tree) copySubtree(src *Tree, id, parent NodeID, fid FragmentID) NodeID {
	n := src.nodes[id]
	n.fragment = fid
	n.parent = parent
	n.children = nil
	n.merge = nil
	cp := t.add(n, src.placement[id], src.origin[id])

	kids := make([]NodeID, 0, len(src.nodes[id].children))
	for _, c := range src.nodes[id].children {
		kids = append(kids, t.copySubtree(src, c, cp, fid))
	}
	t.nodes[cp].children = kids
	return cp
}

// Merge returns the payload of a merge node.
func (t *Tree) Merge(id NodeID) (MergeInfo, bool) {
	if !t.valid(id) || t.nodes[id].kind != KindMerge {
		return MergeInfo{}, false
	}
	m := t.nodes[id].merge
	return MergeInfo{
		Wrapped:    m.wrapped,
		Offset:     m.offset,
		Ref:        m.placement.Ref,
		Before:     m.placement.Before,
		AffectsRow: m.placement.AffectsRow,
		Carried:    slices.Clone(m.carried),
	}, true
}

// LinkCarried records carried copies as belonging to a merge node, so that
// deleting or restoring the merge also deletes or restores them.
func (t *Tree) LinkCarried(id NodeID, carried ...NodeID) error {
	if !t.valid(id) {
		return ErrUnknownNode
	}
	if t.nodes[id].kind != KindMerge {
		return ErrNotMerge
	}
	for _, c := range carried {
		if !t.valid(c) {
			return ErrUnknownNode
		}
		if !t.nodes[c].carried {
			return fmt.Errorf("link node %d: %w", c, ErrNotCarried)
		}
	}
	m := t.nodes[id].merge
	m.carried = append(m.carried, carried...)
	return nil
}

// SetOffset changes where a merge node will render.
func (t *Tree) SetOffset(id NodeID, offset span.Span) error {
	if !t.valid(id) {
		return ErrUnknownNode
	}
	if t.nodes[id].kind != KindMerge {
		return ErrNotMerge
	}
	t.nodes[id].merge.offset = offset
	return nil
}

// ApplyOffset overwrites the placement of a merge node and of every node in
// its imported copy with the merge offset.
//
// The copy is contiguous in the arena, so this is a single bulk update of
// the placement table. Origin spans are untouched.
func (t *Tree) ApplyOffset(id NodeID) error {
	if !t.valid(id) {
		return ErrUnknownNode
	}
	n := &t.nodes[id]
	if n.kind != KindMerge {
		return ErrNotMerge
	}
	m := n.merge
	block := t.placement[m.first:m.end]
	for i := range block {
		block[i] = m.offset
	}
	t.placement[id] = m.offset
	return nil
}
