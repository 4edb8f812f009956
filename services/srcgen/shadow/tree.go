// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package shadow implements the mutable shadow tree built over a concrete
// syntax tree.
//
// # Layout
//
// A Tree is an arena: every node lives in one slice and is addressed by
// NodeID. Parent and child links are plain indices, so the parent
// back-reference never owns anything. Spans are kept in two side tables
// indexed by NodeID:
//
//   - placement: where the node sits in the main tree's coordinate space.
//     Used for lookup, containment and output ordering. Reassignable.
//   - origin: where the node's text lives inside its own fragment. Never
//     changes after the node is created; leaf text is always cut by origin.
//
// For nodes parsed from the main text both tables agree. Nodes imported from
// another fragment keep their origin and receive a placement from the merge
// offset when the tree is rendered.
//
// # Variants
//
// A node is either KindPlain or KindMerge. A merge node wraps the root of a
// subtree copied from a different fragment tree; its children are the wrapped
// node's children. Code that walks the tree switches on Kind.
//
// # Formatting leaves
//
// tree-sitter does not report whitespace. Build fills every gap between a
// parent's bounds and its children with whitespace, newline or gap leaves so
// that rendering an unedited tree reproduces the text byte for byte.
//
// # Thread Safety
//
// A Tree is not safe for concurrent use. Independent trees share nothing and
// may be used from different goroutines.
package shadow

import (
	"strings"

	"github.com/AleutianAI/srcgen/services/srcgen/span"
)

// NodeID addresses a node inside one Tree's arena.
type NodeID int32

// NoNode is the absent node.
const NoNode NodeID = -1

// Kind discriminates the node variants.
type Kind uint8

const (
	// KindPlain is a node built from a parser node or synthesized trivia.
	KindPlain Kind = iota

	// KindMerge wraps a subtree imported from another fragment.
	KindMerge
)

// String returns "plain" or "merge".
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// Role tells syntax nodes apart from synthesized formatting leaves.
type Role uint8

const (
	// RoleSyntax is a node that came from the parser.
	RoleSyntax Role = iota

	// RoleWhitespace is a run of blanks, tabs or carriage returns.
	RoleWhitespace

	// RoleNewline is a single line feed.
	RoleNewline

	// RoleGap is uncovered non-blank text between parser nodes.
	RoleGap
)

// Formatting leaf types reported by Type().
const (
	TypeWhitespace = "whitespace"
	TypeNewline    = "newline"
	TypeGap        = "gap"
)

// String returns the lowercase role name.
func (r Role) String() string {
	switch r {
	case RoleSyntax:
		return "syntax"
	case RoleWhitespace:
		return TypeWhitespace
	case RoleNewline:
		return TypeNewline
	case RoleGap:
		return TypeGap
	default:
		return "unknown"
	}
}

// IsFormatting reports whether the role is whitespace or newline.
func (r Role) IsFormatting() bool {
	return r == RoleWhitespace || r == RoleNewline
}

// FragmentID identifies one independently parsed text inside a Tree.
type FragmentID int

// MainFragment is the text the tree was built from.
const MainFragment FragmentID = 0

// Fragment is one source text and its line index.
type Fragment struct {
	id         FragmentID
	text       string
	lines      []string
	lineStarts []int
}

func newFragment(id FragmentID, text string) *Fragment {
	lines := strings.Split(text, "\n")
	starts := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		starts[i] = offset
		offset += len(line) + 1
	}
	return &Fragment{id: id, text: text, lines: lines, lineStarts: starts}
}

// ID returns the fragment id within its tree.
func (f *Fragment) ID() FragmentID {
	return f.id
}

// Text returns the full fragment text.
func (f *Fragment) Text() string {
	return f.text
}

// Lines returns the text split on "\n". A trailing newline yields a final
// empty line.
func (f *Fragment) Lines() []string {
	return f.lines
}

// Extent returns the span covering the whole text.
func (f *Fragment) Extent() span.Span {
	last := len(f.lines) - 1
	return span.New(0, 0, last, len(f.lines[last]))
}

// Offset converts a point to a byte offset, clamped to the text.
func (f *Fragment) Offset(p span.Point) int {
	if p.Row < 0 {
		return 0
	}
	if p.Row >= len(f.lines) {
		return len(f.text)
	}
	col := min(max(p.Column, 0), len(f.lines[p.Row]))
	return f.lineStarts[p.Row] + col
}

// Between returns the text from a to b.
func (f *Fragment) Between(a, b span.Point) string {
	from, to := f.Offset(a), f.Offset(b)
	if from >= to {
		return ""
	}
	return f.text[from:to]
}

// node is one arena slot.
type node struct {
	kind      Kind
	role      Role
	typ       string
	named     bool
	field     string
	fragment  FragmentID
	startByte int
	endByte   int
	parent    NodeID
	children  []NodeID
	deleted   bool
	carried   bool
	merge     *mergeData
}

// Tree is a shadow tree plus the fragment texts its nodes were cut from.
type Tree struct {
	nodes     []node
	placement []span.Span
	origin    []span.Span
	fragments []*Fragment
	root      NodeID
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

func (t *Tree) add(n node, placement, origin span.Span) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	t.placement = append(t.placement, placement)
	t.origin = append(t.origin, origin)
	return id
}

// Root returns the root node.
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of nodes in the arena, attached or not.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Source returns the main fragment text.
func (t *Tree) Source() string {
	return t.fragments[MainFragment].text
}

// Fragment returns the fragment with the given id, or nil.
func (t *Tree) Fragment(id FragmentID) *Fragment {
	if id < 0 || int(id) >= len(t.fragments) {
		return nil
	}
	return t.fragments[id]
}

// FragmentCount returns the number of fragments registered in the tree.
func (t *Tree) FragmentCount() int {
	return len(t.fragments)
}

// FragmentOf returns the fragment id a node was cut from.
func (t *Tree) FragmentOf(id NodeID) FragmentID {
	if !t.valid(id) {
		return -1
	}
	return t.nodes[id].fragment
}

// Kind returns the node variant.
func (t *Tree) Kind(id NodeID) Kind {
	if !t.valid(id) {
		return KindPlain
	}
	return t.nodes[id].kind
}

// Role returns whether the node is syntax or a formatting leaf.
func (t *Tree) Role(id NodeID) Role {
	if !t.valid(id) {
		return RoleSyntax
	}
	return t.nodes[id].role
}

// Type returns the parser node type, or the formatting leaf type.
func (t *Tree) Type(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	return t.nodes[id].typ
}

// IsNamed reports whether the parser flagged the node as named.
func (t *Tree) IsNamed(id NodeID) bool {
	return t.valid(id) && t.nodes[id].named
}

// Field returns the field name the node is attached under, or "".
func (t *Tree) Field(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	return t.nodes[id].field
}

// ByteRange returns the node's byte offsets within its fragment.
func (t *Tree) ByteRange(id NodeID) (start, end int) {
	if !t.valid(id) {
		return 0, 0
	}
	return t.nodes[id].startByte, t.nodes[id].endByte
}

// Span returns the node's placement span.
func (t *Tree) Span(id NodeID) span.Span {
	if !t.valid(id) {
		return span.Span{}
	}
	return t.placement[id]
}

// OriginSpan returns the node's span inside its own fragment.
func (t *Tree) OriginSpan(id NodeID) span.Span {
	if !t.valid(id) {
		return span.Span{}
	}
	return t.origin[id]
}

// Text returns the node's original text, cut from its fragment by origin
// span. Edits are not reflected; use the generator for that.
func (t *Tree) Text(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	o := t.origin[id]
	return t.fragments[t.nodes[id].fragment].Between(o.Start, o.End)
}

// Parent returns the parent node, or NoNode for the root and detached nodes.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].parent
}

// Children returns the ordered children. A merge node reports the wrapped
// node's children. The slice must not be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	n := &t.nodes[id]
	if n.kind == KindMerge {
		return t.nodes[n.merge.wrapped].children
	}
	return n.children
}

// IsLeaf reports whether the node has no children.
func (t *Tree) IsLeaf(id NodeID) bool {
	return len(t.Children(id)) == 0
}

// IsDeleted reports the node's deleted flag.
func (t *Tree) IsDeleted(id NodeID) bool {
	return t.valid(id) && t.nodes[id].deleted
}

// IsCarried reports whether the node is a formatting copy made by an
// insertion.
func (t *Tree) IsCarried(id NodeID) bool {
	return t.valid(id) && t.nodes[id].carried
}

// IsAttached reports whether the node is reachable from the root.
func (t *Tree) IsAttached(id NodeID) bool {
	for cur := id; t.valid(cur); cur = t.nodes[cur].parent {
		if cur == t.root {
			return true
		}
	}
	return false
}

// IndexOf returns the position of child among parent's children, or -1.
func (t *Tree) IndexOf(parent, child NodeID) int {
	for i, c := range t.Children(parent) {
		if c == child {
			return i
		}
	}
	return -1
}

// ChildByField returns the first child attached under field.
func (t *Tree) ChildByField(id NodeID, field string) (NodeID, bool) {
	for _, c := range t.Children(id) {
		if t.nodes[c].field == field {
			return c, true
		}
	}
	return NoNode, false
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(id NodeID, fn func(id NodeID, depth int) bool) {
	t.walk(id, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !t.valid(id) || !fn(id, depth) {
		return
	}
	for _, c := range t.Children(id) {
		t.walk(c, depth+1, fn)
	}
}

// Leaves returns the leaves under id in pre-order.
func (t *Tree) Leaves(id NodeID) []NodeID {
	var out []NodeID
	t.Walk(id, func(n NodeID, _ int) bool {
		if t.IsLeaf(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}
