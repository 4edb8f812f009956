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
	"errors"
	"fmt"
)

// Sentinel errors for parse failures.
//
// These errors can be checked using errors.Is() to determine the
// category of failure without inspecting error messages.
var (
	// ErrUnsupportedLanguage indicates that no grammar is registered for the
	// requested language or file extension.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrParseFailed indicates tree-sitter produced no tree.
	ErrParseFailed = errors.New("parse failed")

	// ErrInvalidContent indicates the source is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrSourceTooLarge indicates the source exceeds the configured limit.
	ErrSourceTooLarge = errors.New("source exceeds maximum size limit")
)

// ParseError ties a parse failure to the language and source name that
// triggered it.
type ParseError struct {
	// Language is the registry name of the grammar used.
	Language string

	// Name identifies the source, usually a file path. May be empty.
	Name string

	// Cause is the underlying error.
	Cause error
}

// Error returns "parse <name> (<language>): <cause>".
func (e *ParseError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("parse (%s): %v", e.Language, e.Cause)
	}
	return fmt.Sprintf("parse %s (%s): %v", e.Name, e.Language, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsUnsupportedLanguage checks if an error indicates an unsupported language.
func IsUnsupportedLanguage(err error) bool {
	return errors.Is(err, ErrUnsupportedLanguage)
}
