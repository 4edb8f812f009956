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
	"strings"
)

// String dumps the tree, one node per line, indented by depth.
//
//	program (0:0)-(3:0)
//	  class_declaration (0:0)-(2:1)
//	    modifiers (0:0)-(0:6)
//	      public (0:0)-(0:6) leaf
//	    whitespace (0:6)-(0:7) leaf
func (t *Tree) String() string {
	var b strings.Builder
	t.Walk(t.root, func(id NodeID, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(t.Describe(id))
		b.WriteByte('\n')
		return true
	})
	return b.String()
}

// Describe returns a one-line description of a node.
func (t *Tree) Describe(id NodeID) string {
	if !t.valid(id) {
		return fmt.Sprintf("<invalid node %d>", id)
	}
	n := &t.nodes[id]

	var b strings.Builder
	b.WriteString(n.typ)
	if n.field != "" {
		fmt.Fprintf(&b, " [%s]", n.field)
	}
	fmt.Fprintf(&b, " %s", t.placement[id])
	if n.kind == KindMerge {
		fmt.Fprintf(&b, " merge(fragment=%d offset=%s affects_row=%t)", n.fragment, n.merge.offset, n.merge.placement.AffectsRow)
	}
	if t.IsLeaf(id) {
		b.WriteString(" leaf")
	}
	if n.carried {
		b.WriteString(" carried")
	}
	if n.deleted {
		b.WriteString(" deleted")
	}
	return b.String()
}
