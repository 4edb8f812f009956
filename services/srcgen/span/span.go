// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package span provides row/column intervals over source text.
//
// A Span is a comparable value: two spans are equal when their start and end
// points are equal, nothing else is considered. Consumption bookkeeping, used
// by the source generator to detect overlapping leaf extraction, lives in a
// separate Ledger so spans can be copied and compared freely.
//
// Columns are byte offsets within a line, which is what tree-sitter reports.
package span

import (
	"cmp"
	"fmt"
)

// Point is a zero-based (row, column) position in source text.
type Point struct {
	Row    int
	Column int
}

// Compare orders points row-major.
//
// Returns -1 if p is before q, 0 if equal, +1 if after.
func (p Point) Compare(q Point) int {
	if c := cmp.Compare(p.Row, q.Row); c != 0 {
		return c
	}
	return cmp.Compare(p.Column, q.Column)
}

// String returns "row:col".
func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}

// Span is an inclusive interval between two points.
type Span struct {
	Start Point
	End   Point
}

// New creates a Span from raw coordinates.
func New(startRow, startCol, endRow, endCol int) Span {
	return Span{
		Start: Point{Row: startRow, Column: startCol},
		End:   Point{Row: endRow, Column: endCol},
	}
}

// At returns the zero-width span located at p.
func At(p Point) Span {
	return Span{Start: p, End: p}
}

// Contains reports whether s starts at or before other and ends at or after
// it. Equal spans contain each other.
func (s Span) Contains(other Span) bool {
	return s.Start.Compare(other.Start) <= 0 && s.End.Compare(other.End) >= 0
}

// IsEmpty reports whether the span covers no text.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// IsMultiline reports whether the span crosses a line boundary.
func (s Span) IsMultiline() bool {
	return s.Start.Row != s.End.Row
}

// Valid reports whether the span is well formed.
func (s Span) Valid() bool {
	return s.Start.Row >= 0 && s.Start.Column >= 0 && s.Start.Compare(s.End) <= 0
}

// String returns "(startRow:startCol)-(endRow:endCol)".
func (s Span) String() string {
	return fmt.Sprintf("(%s)-(%s)", s.Start, s.End)
}

// Compare orders spans by start position only.
//
// This is the sort key of the source generator. Spans that share a start
// compare equal; callers that need a total order must use a stable sort.
func Compare(a, b Span) int {
	return a.Start.Compare(b.Start)
}
