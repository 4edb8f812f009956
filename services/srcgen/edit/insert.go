// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package edit

import (
	"fmt"
	"log/slog"

	"github.com/AleutianAI/srcgen/services/srcgen/shadow"
	"github.com/AleutianAI/srcgen/services/srcgen/span"
)

// InsertSibling inserts a detached node next to the node at Ref.
//
// Description:
//
//	The node lands immediately before (Before) or after the reference in the
//	reference's parent. For a row-affecting merge node, the newline and
//	indentation that precede the reference are copied next to the inserted
//	node so it sits on its own line with the reference's indentation:
//
//	  before:  ... \n indent [node] \n indent [ref] ...
//	  after:   ... \n indent [ref] \n indent [node] ...
//
//	A merge node inserted before the reference takes the reference's span as
//	its offset. A merge node appended after the reference takes the main-tree
//	span of the reference's next sibling, which is the offset of that sibling
//	when it is itself a merge. If the reference is the last child, the offset
//	becomes the empty span at the parent's end.
type InsertSibling struct {
	Ref    span.Span
	Node   shadow.NodeID
	Before bool
}

// InsertMerge builds the InsertSibling recorded in a merge node's placement.
func InsertMerge(t *shadow.Tree, merge shadow.NodeID) (InsertSibling, error) {
	info, ok := t.Merge(merge)
	if !ok {
		return InsertSibling{}, shadow.ErrNotMerge
	}
	return InsertSibling{Ref: info.Ref, Node: merge, Before: info.Before}, nil
}

// Name returns "insert_sibling".
func (a InsertSibling) Name() string { return "insert_sibling" }

// Apply inserts the node and any carried formatting.
func (a InsertSibling) Apply(t *shadow.Tree) error {
	ref, err := t.NodeAtSpan(a.Ref)
	if err != nil {
		return err
	}
	parent := t.Parent(ref)
	if parent == shadow.NoNode {
		return fmt.Errorf("insert at %s: %w", a.Ref, ErrNoParent)
	}
	if t.Parent(a.Node) != shadow.NoNode || a.Node == t.Root() {
		return fmt.Errorf("insert node %d: %w", a.Node, shadow.ErrAttached)
	}

	siblings := t.Children(parent)
	idx := t.IndexOf(parent, ref)
	refSpan := t.Span(ref)

	info, isMerge := t.Merge(a.Node)
	if isMerge {
		offset := refSpan
		if !a.Before {
			offset = span.At(t.Span(parent).End)
			if idx+1 < len(siblings) {
				offset = mainSpan(t, siblings[idx+1])
			}
		}
		if err := t.SetOffset(a.Node, offset); err != nil {
			return err
		}
	}

	anchor := refSpan.End
	if a.Before {
		anchor = refSpan.Start
	}

	var carried []shadow.NodeID
	if isMerge && info.AffectsRow {
		for _, f := range formattingRun(t, siblings, idx) {
			cp, err := t.CarryCopy(f, anchor)
			if err != nil {
				return err
			}
			carried = append(carried, cp)
		}
	}

	// before: [node, carried..., ref]   after: [ref, carried..., node]
	var seq []shadow.NodeID
	at := idx + 1
	if a.Before {
		seq = append([]shadow.NodeID{a.Node}, carried...)
		at = idx
	} else {
		seq = append(carried, a.Node)
	}
	for i, id := range seq {
		if err := t.InsertChild(parent, at+i, id); err != nil {
			return err
		}
	}
	if len(carried) > 0 {
		if err := t.LinkCarried(a.Node, carried...); err != nil {
			return err
		}
	}

	slog.Debug("inserted sibling",
		slog.String("ref", a.Ref.String()),
		slog.String("type", t.Type(a.Node)),
		slog.Bool("before", a.Before),
		slog.Int("carried", len(carried)))
	return nil
}

// mainSpan returns where id renders in main-tree coordinates. A merge node's
// placement stays fragment-local until it is rendered, so its offset is used.
func mainSpan(t *shadow.Tree, id shadow.NodeID) span.Span {
	if info, ok := t.Merge(id); ok {
		return info.Offset
	}
	return t.Span(id)
}

// formattingRun returns the newline and whitespace leaves directly preceding
// siblings[idx], in source order, or nil if the reference does not start a
// line.
func formattingRun(t *shadow.Tree, siblings []shadow.NodeID, idx int) []shadow.NodeID {
	j := idx - 1
	for j >= 0 && t.Role(siblings[j]) == shadow.RoleWhitespace {
		j--
	}
	if j < 0 || t.Role(siblings[j]) != shadow.RoleNewline {
		return nil
	}
	run := make([]shadow.NodeID, idx-j)
	copy(run, siblings[j:idx])
	return run
}
