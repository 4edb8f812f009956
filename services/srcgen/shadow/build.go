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
	"log/slog"

	"github.com/AleutianAI/srcgen/services/srcgen/span"
	"github.com/AleutianAI/srcgen/services/srcgen/syntax"
)

// Build creates a shadow tree from a parsed root and the exact text it was
// parsed from.
//
// Description:
//
//	Walks the parser tree depth-first once, creating one shadow node per
//	parser node and linking parents. A null child terminates that branch
//	without fault. Gaps between a parent's bounds and its children are
//	filled with formatting leaves. The root is widened to the whole text so
//	leading and trailing trivia are part of the tree.
//
//	The parser tree is not referenced after Build returns and may be closed.
//
// Inputs:
//   - root: Parser root node. Must not be nil.
//   - text: The text root was parsed from.
//
// Outputs:
//   - *Tree: The shadow tree. Never nil on success.
//   - error: ErrNilRoot if root is nil.
func Build(root syntax.Node, text string) (*Tree, error) {
	if root == nil {
		return nil, ErrNilRoot
	}

	t := &Tree{fragments: []*Fragment{newFragment(MainFragment, text)}}
	frag := t.fragments[MainFragment]
	extent := frag.Extent()

	rootSpan := root.Span()
	t.root = t.add(nodeFrom(root, "", MainFragment), extent, extent)
	t.nodes[t.root].startByte = 0
	t.nodes[t.root].endByte = len(text)

	kids := t.buildChildren(t.root, root)

	// A childless root would lose its own token once trivia children are
	// attached, so it gets a leaf copy of itself.
	if len(kids) == 0 && rootSpan != extent {
		self := t.add(nodeFrom(root, "", MainFragment), rootSpan, rootSpan)
		t.nodes[self].parent = t.root
		kids = []NodeID{self}
	}
	t.nodes[t.root].children = t.fillGaps(frag, extent, kids, t.root)

	slog.Debug("built shadow tree",
		slog.String("root_type", root.Type()),
		slog.Int("nodes", len(t.nodes)),
		slog.Int("lines", len(frag.lines)))

	return t, nil
}

func nodeFrom(n syntax.Node, field string, frag FragmentID) node {
	return node{
		kind:      KindPlain,
		role:      RoleSyntax,
		typ:       n.Type(),
		named:     n.IsNamed(),
		field:     field,
		fragment:  frag,
		startByte: n.StartByte(),
		endByte:   n.EndByte(),
		parent:    NoNode,
	}
}

// buildChildren creates shadow children for every parser child of pn and
// returns them without trivia. Each child's own children are completed,
// trivia included, before returning.
func (t *Tree) buildChildren(parent NodeID, pn syntax.Node) []NodeID {
	frag := t.fragments[MainFragment]
	count := pn.ChildCount()
	kids := make([]NodeID, 0, count)

	for i := 0; i < count; i++ {
		child, ok := pn.Child(i)
		if !ok {
			continue
		}
		s := child.Span()
		id := t.add(nodeFrom(child, pn.FieldNameForChild(i), MainFragment), s, s)
		t.nodes[id].parent = parent

		grand := t.buildChildren(id, child)
		if len(grand) > 0 {
			t.nodes[id].children = t.fillGaps(frag, s, grand, id)
		}
		kids = append(kids, id)
	}
	return kids
}

// fillGaps interleaves formatting leaves into kids so that together they
// cover bounds without holes.
func (t *Tree) fillGaps(frag *Fragment, bounds span.Span, kids []NodeID, parent NodeID) []NodeID {
	out := make([]NodeID, 0, len(kids)*2+1)
	cursor := bounds.Start

	for _, k := range kids {
		s := t.origin[k]
		if cursor.Compare(s.Start) < 0 {
			out = append(out, t.trivia(frag, cursor, s.Start, parent)...)
		}
		out = append(out, k)
		if s.End.Compare(cursor) > 0 {
			cursor = s.End
		}
	}
	if cursor.Compare(bounds.End) < 0 {
		out = append(out, t.trivia(frag, cursor, bounds.End, parent)...)
	}
	return out
}

// trivia splits the text between from and to into whitespace runs, single
// newlines and gap runs.
func (t *Tree) trivia(frag *Fragment, from, to span.Point, parent NodeID) []NodeID {
	text := frag.Between(from, to)
	base := frag.Offset(from)

	var out []NodeID
	cur := from
	i := 0
	for i < len(text) {
		var (
			role Role
			typ  string
			next span.Point
			j    = i + 1
		)
		switch c := text[i]; {
		case c == '\n':
			role, typ = RoleNewline, TypeNewline
			next = span.Point{Row: cur.Row + 1, Column: 0}
		case isBlank(c):
			for j < len(text) && isBlank(text[j]) {
				j++
			}
			role, typ = RoleWhitespace, TypeWhitespace
			next = span.Point{Row: cur.Row, Column: cur.Column + (j - i)}
		default:
			for j < len(text) && text[j] != '\n' && !isBlank(text[j]) {
				j++
			}
			role, typ = RoleGap, TypeGap
			next = span.Point{Row: cur.Row, Column: cur.Column + (j - i)}
		}

		s := span.Span{Start: cur, End: next}
		id := t.add(node{
			kind:      KindPlain,
			role:      role,
			typ:       typ,
			fragment:  frag.id,
			startByte: base + i,
			endByte:   base + j,
			parent:    parent,
		}, s, s)
		out = append(out, id)

		cur = next
		i = j
	}
	return out
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v'
}
