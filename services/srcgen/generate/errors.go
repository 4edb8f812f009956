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

import "errors"

// Sentinel errors for rendering.
//
// All of them indicate a malformed tree rather than bad input text.
var (
	// ErrNilTree indicates Render was called without a tree.
	ErrNilTree = errors.New("nil tree")

	// ErrNonLeafText indicates text was requested from a non-leaf node.
	ErrNonLeafText = errors.New("text requested from non-leaf node")

	// ErrUnknownKind indicates a node variant the generator cannot render.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrUnknownFragment indicates a node refers to an unregistered fragment.
	ErrUnknownFragment = errors.New("unknown fragment")
)
