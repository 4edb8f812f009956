// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package script reads edit scripts and runs them against a source file.
//
// A script is a YAML document listing edits by span:
//
//	language: java
//	actions:
//	  - delete: {span: [7, 24, 7, 52], children: ["(", "generic_type", ")"]}
//	  - insert:
//	      ref: [8, 12, 8, 41]
//	      position: before
//	      fragment: |
//	        public class Temp {
//	          public static void test() {
//	            callMe();
//	          }
//	        }
//	      select: [2, 4, 2, 13]
//	      affects_row: true
//
// Spans are [startRow, startColumn, endRow, endColumn], zero based, and
// refer to the original text. Fragment spans refer to the fragment text.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/srcgen/services/srcgen/span"
)

const (
	// MaxScriptSize is the largest accepted script document (1MB).
	MaxScriptSize = 1024 * 1024

	// MaxActions is the largest number of actions in one script.
	MaxActions = 1000
)

// Position values for insert entries.
const (
	PositionBefore = "before"
	PositionAfter  = "after"
)

// ErrScriptTooLarge indicates a script over MaxScriptSize.
var ErrScriptTooLarge = errors.New("script too large")

// Script is a decoded edit script.
type Script struct {
	// Language overrides grammar selection by file extension. It is also
	// the default language of fragments.
	Language string `yaml:"language"`

	Actions []Entry `yaml:"actions"`
}

// Entry is one action. Exactly one field is set.
type Entry struct {
	Delete  *DeleteEntry  `yaml:"delete,omitempty"`
	Restore *RestoreEntry `yaml:"restore,omitempty"`
	Insert  *InsertEntry  `yaml:"insert,omitempty"`
}

// DeleteEntry deletes the node at Span, or only its children whose type is
// listed in Children.
type DeleteEntry struct {
	Span     []int    `yaml:"span"`
	Children []string `yaml:"children,omitempty"`
}

// RestoreEntry undeletes the node at Span.
type RestoreEntry struct {
	Span []int `yaml:"span"`
}

// InsertEntry splices the node at Select in Fragment next to the node at Ref.
type InsertEntry struct {
	Ref        []int  `yaml:"ref"`
	Position   string `yaml:"position"`
	Fragment   string `yaml:"fragment"`
	Language   string `yaml:"language,omitempty"`
	Select     []int  `yaml:"select"`
	AffectsRow bool   `yaml:"affects_row"`
}

// ValidationError describes an invalid script entry.
type ValidationError struct {
	// Index is the action position, or -1 for document-level problems.
	Index int

	// Field is the offending key, e.g. "insert.ref".
	Field string

	Reason string
}

// Error returns "action 3: insert.ref: <reason>".
func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("action %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Decode parses and validates a script.
//
// Description:
//
//	Unknown keys are rejected so that typos do not silently drop edits.
//
// Inputs:
//   - r: The YAML document. At most MaxScriptSize bytes are read.
//
// Outputs:
//   - *Script: The validated script.
//   - error: ErrScriptTooLarge, a YAML error, or *ValidationError.
func Decode(r io.Reader) (*Script, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxScriptSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	if len(data) > MaxScriptSize {
		return nil, fmt.Errorf("%w: max %d bytes", ErrScriptTooLarge, MaxScriptSize)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Index: -1, Field: "actions", Reason: "empty script"}
		}
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every entry.
func (s *Script) Validate() error {
	if len(s.Actions) == 0 {
		return &ValidationError{Index: -1, Field: "actions", Reason: "no actions"}
	}
	if len(s.Actions) > MaxActions {
		return &ValidationError{Index: -1, Field: "actions", Reason: fmt.Sprintf("%d actions (max %d)", len(s.Actions), MaxActions)}
	}

	for i, e := range s.Actions {
		set := 0
		for _, ok := range []bool{e.Delete != nil, e.Restore != nil, e.Insert != nil} {
			if ok {
				set++
			}
		}
		if set != 1 {
			return &ValidationError{Index: i, Field: "action", Reason: "exactly one of delete, restore, insert must be set"}
		}

		switch {
		case e.Delete != nil:
			if _, err := toSpan(e.Delete.Span); err != nil {
				return &ValidationError{Index: i, Field: "delete.span", Reason: err.Error()}
			}
		case e.Restore != nil:
			if _, err := toSpan(e.Restore.Span); err != nil {
				return &ValidationError{Index: i, Field: "restore.span", Reason: err.Error()}
			}
		case e.Insert != nil:
			if err := validateInsert(i, e.Insert, s.Language); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateInsert(i int, in *InsertEntry, language string) error {
	if _, err := toSpan(in.Ref); err != nil {
		return &ValidationError{Index: i, Field: "insert.ref", Reason: err.Error()}
	}
	if _, err := toSpan(in.Select); err != nil {
		return &ValidationError{Index: i, Field: "insert.select", Reason: err.Error()}
	}
	if in.Position != PositionBefore && in.Position != PositionAfter {
		return &ValidationError{Index: i, Field: "insert.position", Reason: fmt.Sprintf("must be %q or %q, got %q", PositionBefore, PositionAfter, in.Position)}
	}
	if in.Fragment == "" {
		return &ValidationError{Index: i, Field: "insert.fragment", Reason: "empty"}
	}
	if in.Language == "" && language == "" {
		return &ValidationError{Index: i, Field: "insert.language", Reason: "no fragment language and no script language"}
	}
	return nil
}

// toSpan converts [sr, sc, er, ec] to a span.
func toSpan(v []int) (span.Span, error) {
	if len(v) != 4 {
		return span.Span{}, fmt.Errorf("want [startRow, startColumn, endRow, endColumn], got %d numbers", len(v))
	}
	s := span.New(v[0], v[1], v[2], v[3])
	if !s.Valid() {
		return span.Span{}, fmt.Errorf("malformed span %s", s)
	}
	return s, nil
}
