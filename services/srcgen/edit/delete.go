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
	"slices"

	"github.com/AleutianAI/srcgen/services/srcgen/shadow"
	"github.com/AleutianAI/srcgen/services/srcgen/span"
)

// DeleteNode marks the node at Span, and its whole subtree, deleted.
// Deleting twice has the same effect as deleting once.
type DeleteNode struct {
	Span span.Span
}

// Name returns "delete".
func (a DeleteNode) Name() string { return "delete" }

// Apply resolves the node and sets the deleted flag recursively.
func (a DeleteNode) Apply(t *shadow.Tree) error {
	id, err := t.NodeAtSpan(a.Span)
	if err != nil {
		return err
	}
	_, err = t.SetDeleted(id, true)
	return err
}

// RestoreNode clears the deleted flag on the node at Span and its subtree.
type RestoreNode struct {
	Span span.Span
}

// Name returns "restore".
func (a RestoreNode) Name() string { return "restore" }

// Apply resolves the node and clears the deleted flag recursively.
func (a RestoreNode) Apply(t *shadow.Tree) error {
	id, err := t.NodeAtSpan(a.Span)
	if err != nil {
		return err
	}
	_, err = t.SetDeleted(id, false)
	return err
}

// DeleteChildren deletes the direct children of the node at Span whose type
// is listed in Types. Removing the parentheses and type of a redundant cast
// is the typical use:
//
//	DeleteChildren{Span: castSpan, Types: []string{"(", "generic_type", ")"}}
type DeleteChildren struct {
	Span  span.Span
	Types []string
}

// Name returns "delete_children".
func (a DeleteChildren) Name() string { return "delete_children" }

// Apply resolves the parent and deletes each matching child subtree.
func (a DeleteChildren) Apply(t *shadow.Tree) error {
	id, err := t.NodeAtSpan(a.Span)
	if err != nil {
		return err
	}
	for _, c := range t.Children(id) {
		if !slices.Contains(a.Types, t.Type(c)) {
			continue
		}
		if _, err := t.SetDeleted(c, true); err != nil {
			return err
		}
	}
	return nil
}
