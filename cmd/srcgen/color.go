// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// diffStyles colors unified diff lines.
type diffStyles struct {
	header  *color.Color
	hunk    *color.Color
	added   *color.Color
	removed *color.Color
}

func newDiffStyles(enabled bool) *diffStyles {
	s := &diffStyles{
		header:  color.New(color.Bold),
		hunk:    color.New(color.FgCyan),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
	}
	for _, c := range []*color.Color{s.header, s.hunk, s.added, s.removed} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// colorEnabled resolves a --color mode. "auto" colors only a terminal
// stdout with NO_COLOR unset.
func colorEnabled(mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == "", nil
	default:
		return false, fmt.Errorf("invalid --color %q: want auto, always or never", mode)
	}
}

// writeDiff copies a unified diff to w, coloring it line by line.
func (s *diffStyles) writeDiff(w io.Writer, d []byte) error {
	sc := bufio.NewScanner(bytes.NewReader(d))
	sc.Buffer(make([]byte, 0, 64*1024), len(d)+1)
	for sc.Scan() {
		line := sc.Text()
		c := s.styleFor(line)
		var err error
		if c == nil {
			_, err = fmt.Fprintln(w, line)
		} else {
			_, err = c.Fprintln(w, line)
		}
		if err != nil {
			return err
		}
	}
	return sc.Err()
}

func (s *diffStyles) styleFor(line string) *color.Color {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		return s.header
	case strings.HasPrefix(line, "@@"):
		return s.hunk
	case strings.HasPrefix(line, "+"):
		return s.added
	case strings.HasPrefix(line, "-"):
		return s.removed
	}
	return nil
}
