// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/srcgen/services/srcgen/span"
)

// Node is the capability set the shadow tree consumes from a parser.
//
// Description:
//
//	Node is deliberately narrow: a type tag, a named flag, byte and point
//	ranges, indexed child access with a null sentinel, and the field name a
//	child is attached under. No cursor, no queries. Anything that can answer
//	these questions can back a shadow tree, which keeps the shadow package
//	testable without a real grammar.
//
// Thread Safety:
//
//	Implementations backed by tree-sitter are only valid while the Tree they
//	came from is open.
type Node interface {
	// Type returns the grammar node type, e.g. "cast_expression" or "(".
	Type() string

	// IsNamed reports whether the node is a named grammar rule.
	IsNamed() bool

	// Span returns the node's (row, column) range.
	Span() span.Span

	// StartByte returns the byte offset of the node start.
	StartByte() int

	// EndByte returns the byte offset of the node end.
	EndByte() int

	// ChildCount returns the number of children, named and anonymous.
	ChildCount() int

	// Child returns the i-th child. ok is false for the null sentinel.
	Child(i int) (child Node, ok bool)

	// FieldNameForChild returns the field the i-th child is attached under,
	// or "" if none.
	FieldNameForChild(i int) string
}

// tsNode adapts a tree-sitter node to Node.
type tsNode struct {
	n *sitter.Node
}

// wrapNode returns nil, false for nil or null tree-sitter nodes.
func wrapNode(n *sitter.Node) (Node, bool) {
	if n == nil || n.IsNull() {
		return nil, false
	}
	return tsNode{n: n}, true
}

func (t tsNode) Type() string {
	return t.n.Type()
}

func (t tsNode) IsNamed() bool {
	return t.n.IsNamed()
}

func (t tsNode) Span() span.Span {
	return pointsToSpan(t.n.StartPoint(), t.n.EndPoint())
}

func (t tsNode) StartByte() int {
	return int(t.n.StartByte())
}

func (t tsNode) EndByte() int {
	return int(t.n.EndByte())
}

func (t tsNode) ChildCount() int {
	return int(t.n.ChildCount())
}

func (t tsNode) Child(i int) (Node, bool) {
	return wrapNode(t.n.Child(i))
}

func (t tsNode) FieldNameForChild(i int) string {
	return t.n.FieldNameForChild(i)
}

func pointsToSpan(start, end sitter.Point) span.Span {
	return span.New(int(start.Row), int(start.Column), int(end.Row), int(end.Column))
}
