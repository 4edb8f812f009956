// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/srcgen/services/srcgen/shadow"
	"github.com/AleutianAI/srcgen/services/srcgen/span"
)

// LeafText returns the text of a leaf, cut from its fragment by origin span.
func LeafText(t *shadow.Tree, id shadow.NodeID) (string, error) {
	if t.Kind(id) != shadow.KindPlain || !t.IsLeaf(id) {
		return "", fmt.Errorf("%w: %s", ErrNonLeafText, t.Describe(id))
	}
	frag := t.Fragment(t.FragmentOf(id))
	if frag == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownFragment, t.Describe(id))
	}

	text, clamped := cut(frag.Lines(), t.OriginSpan(id))
	if clamped {
		slog.Debug("leaf span runs past end of text",
			slog.String("type", t.Type(id)),
			slog.String("span", t.OriginSpan(id).String()),
			slog.Int("lines", len(frag.Lines())))
	}
	return text, nil
}

// cut extracts s from lines. Rows and columns past the end are clamped; the
// second result reports whether clamping happened.
//
// Single line: the column slice. Multi-line: the tail of the start line, each
// interior line, then the head of the end line, joined by "\n".
func cut(lines []string, s span.Span) (string, bool) {
	if s.Start.Row < 0 || s.Start.Row >= len(lines) {
		return "", true
	}
	first := lines[s.Start.Row]

	if !s.IsMultiline() {
		from, to, clamped := columns(first, s.Start.Column, s.End.Column)
		return first[from:to], clamped
	}

	var b strings.Builder
	from, _, clamped := columns(first, s.Start.Column, len(first))
	b.WriteString(first[from:])
	b.WriteByte('\n')

	for r := s.Start.Row + 1; r < s.End.Row; r++ {
		if r >= len(lines) {
			return b.String(), true
		}
		b.WriteString(lines[r])
		b.WriteByte('\n')
	}

	if s.End.Row >= len(lines) {
		return b.String(), true
	}
	last := lines[s.End.Row]
	_, to, c := columns(last, 0, s.End.Column)
	b.WriteString(last[:to])
	return b.String(), clamped || c
}

func columns(line string, from, to int) (int, int, bool) {
	clamped := false
	if from < 0 {
		from, clamped = 0, true
	}
	if to > len(line) {
		to, clamped = len(line), true
	}
	if from > to {
		from, clamped = to, true
	}
	return from, to, clamped
}
