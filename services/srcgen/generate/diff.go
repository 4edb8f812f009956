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
	"bytes"
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// DiffContext is the number of unchanged lines shown around a change.
const DiffContext = 3

// Diff returns a unified diff from before to after, or nil if they are equal.
//
// Description:
//
//	The changed region is found by trimming the common leading and trailing
//	lines and is emitted as a single hunk with DiffContext lines of context
//	on each side. Edits produced by the generator are local, so one hunk is
//	enough for a preview; this is not a general diff algorithm.
//
// Inputs:
//   - path: File name used in the --- and +++ headers.
//   - before: Original text.
//   - after: Rendered text.
//
// Outputs:
//   - []byte: The diff, printed by go-diff.
//   - error: Non-nil if printing fails.
func Diff(path, before, after string) ([]byte, error) {
	if before == after {
		return nil, nil
	}
	fd := &diff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
		Hunks:    []*diff.Hunk{hunk(splitLines(before), splitLines(after))},
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return nil, fmt.Errorf("printing diff for %s: %w", path, err)
	}
	return out, nil
}

func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func hunk(a, b []string) *diff.Hunk {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	lead := min(prefix, DiffContext)
	trail := min(suffix, DiffContext)
	from := prefix - lead
	aEnd := len(a) - suffix
	bEnd := len(b) - suffix

	var body bytes.Buffer
	write := func(mark byte, line string) {
		body.WriteByte(mark)
		body.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			body.WriteByte('\n')
		}
	}
	for _, l := range a[from:prefix] {
		write(' ', l)
	}
	for _, l := range a[prefix:aEnd] {
		write('-', l)
	}
	for _, l := range b[prefix:bEnd] {
		write('+', l)
	}
	for _, l := range a[aEnd : aEnd+trail] {
		write(' ', l)
	}

	origLines := lead + (aEnd - prefix) + trail
	newLines := lead + (bEnd - prefix) + trail
	return &diff.Hunk{
		OrigStartLine: startLine(from, origLines),
		OrigLines:     int32(origLines),
		NewStartLine:  startLine(from, newLines),
		NewLines:      int32(newLines),
		Body:          body.Bytes(),
	}
}

// startLine is 1-based, except that an empty range starts at the line
// before it.
func startLine(from, count int) int32 {
	if count == 0 {
		return int32(from)
	}
	return int32(from + 1)
}
