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
	"errors"
	"fmt"

	"github.com/AleutianAI/srcgen/services/srcgen/span"
)

var (
	// ErrNilRoot indicates Build was called without a parser root.
	ErrNilRoot = errors.New("nil parser root")

	// ErrNoNodeAtSpan indicates a span that is not a node boundary in the
	// tree. The caller's span bookkeeping is stale or wrong.
	ErrNoNodeAtSpan = errors.New("no node at span")

	// ErrUnknownNode indicates a NodeID outside the arena.
	ErrUnknownNode = errors.New("unknown node")

	// ErrAttached indicates an insertion of a node that already has a parent.
	ErrAttached = errors.New("node is already attached")

	// ErrInvalidIndex indicates an insertion index outside the child list.
	ErrInvalidIndex = errors.New("child index out of range")

	// ErrNotMerge indicates a merge-only operation on a plain node.
	ErrNotMerge = errors.New("not a merge node")

	// ErrNestedMerge indicates an import of a subtree that itself contains
	// merge nodes.
	ErrNestedMerge = errors.New("cannot import a subtree containing merge nodes")

	// ErrNotLeaf indicates a leaf-only operation on an inner node.
	ErrNotLeaf = errors.New("not a leaf node")

	// ErrNotCarried indicates a node linked to a merge is not a carried copy.
	ErrNotCarried = errors.New("not a carried copy")
)

// AddressError is an addressing fault: no node boundary matches Span.
type AddressError struct {
	// Span is the span that was looked up.
	Span span.Span

	// Deepest is the span of the deepest node that contained Span.
	Deepest span.Span

	// DeepestType is the type of that node.
	DeepestType string
}

// Error returns "no node at span (a)-(b) (deepest container <type> (c)-(d))".
func (e *AddressError) Error() string {
	return fmt.Sprintf("%v %s (deepest container %s %s)", ErrNoNodeAtSpan, e.Span, e.DeepestType, e.Deepest)
}

// Unwrap returns ErrNoNodeAtSpan.
func (e *AddressError) Unwrap() error {
	return ErrNoNodeAtSpan
}

// IsAddressFault checks if an error is an addressing fault.
func IsAddressFault(err error) bool {
	return errors.Is(err, ErrNoNodeAtSpan)
}
