// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package edit provides the structural edit actions applied to a shadow tree.
//
// Actions resolve their target by span, then mutate the tree in place. They
// are fire-and-forget: there is no undo, and a failed action leaves the tree
// in whatever state it reached. Later actions see the effects of earlier
// ones, so order matters.
package edit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/srcgen/services/srcgen/shadow"
)

// ErrNoParent indicates an insertion relative to the root.
var ErrNoParent = errors.New("reference node has no parent")

// Action is one structural edit.
type Action interface {
	// Name identifies the action kind in logs and errors.
	Name() string

	// Apply performs the edit on t.
	Apply(t *shadow.Tree) error
}

// ActionError reports which action of a sequence failed.
type ActionError struct {
	// Index is the position of the failing action in the sequence.
	Index int

	// Action is the failing action's Name().
	Action string

	// Cause is the underlying error.
	Cause error
}

// Error returns "action 2 (insert_sibling): <cause>".
func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d (%s): %v", e.Index, e.Action, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ActionError) Unwrap() error {
	return e.Cause
}

// Apply runs actions against t in order.
//
// Description:
//
//	Stops at the first failing action. Actions applied before the failure
//	stay applied; callers must not assume atomicity across the sequence.
//
// Inputs:
//   - ctx: Context for tracing and metrics.
//   - t: The tree to edit.
//   - actions: Actions in application order.
//
// Outputs:
//   - error: *ActionError wrapping the first failure, nil otherwise.
func Apply(ctx context.Context, t *shadow.Tree, actions ...Action) error {
	ctx, span := tracer.Start(ctx, "edit.Apply")
	defer span.End()
	span.SetAttributes(attribute.Int("edit.action_count", len(actions)))

	for i, a := range actions {
		start := time.Now()
		err := a.Apply(t)
		recordActionMetrics(ctx, a.Name(), time.Since(start), err == nil)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "action failed")
			slog.Debug("edit action failed",
				slog.Int("index", i),
				slog.String("action", a.Name()),
				slog.String("error", err.Error()))
			return &ActionError{Index: i, Action: a.Name(), Cause: err}
		}
		slog.Debug("edit action applied",
			slog.Int("index", i),
			slog.String("action", a.Name()))
	}
	return nil
}
