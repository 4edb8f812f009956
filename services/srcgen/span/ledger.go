// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package span

import (
	"errors"
	"fmt"
)

// Sentinel errors for consumption faults.
//
// Both indicate a bug in the caller's traversal, never bad input.
var (
	// ErrNotContained indicates a consumed span lies outside the owner.
	ErrNotContained = errors.New("span not contained in owner")

	// ErrAlreadyConsumed indicates a consumed span overlaps an earlier one.
	ErrAlreadyConsumed = errors.New("span already consumed")
)

// ConsumeError reports which spans were involved in a consumption fault.
type ConsumeError struct {
	Owner  Span
	Target Span
	Cause  error
}

// Error returns "consume (a)-(b) in (c)-(d): <cause>".
func (e *ConsumeError) Error() string {
	return fmt.Sprintf("consume %s in %s: %v", e.Target, e.Owner, e.Cause)
}

// Unwrap returns the sentinel cause.
func (e *ConsumeError) Unwrap() error {
	return e.Cause
}

// Ledger records which sub-spans of an owner span have been accounted for.
//
// Thread Safety: Not safe for concurrent use.
type Ledger struct {
	owner    Span
	consumed []Span
}

// NewLedger creates an empty ledger for owner.
func NewLedger(owner Span) *Ledger {
	return &Ledger{owner: owner}
}

// Owner returns the span this ledger accounts for.
func (l *Ledger) Owner() Span {
	return l.owner
}

// Consume records that target has been accounted for.
//
// Description:
//
//	Fails when the owner does not contain target, or when a span consumed
//	earlier already contains it. A failed call records nothing.
//
// Outputs:
//
//	error - *ConsumeError wrapping ErrNotContained or ErrAlreadyConsumed.
func (l *Ledger) Consume(target Span) error {
	if !l.owner.Contains(target) {
		return &ConsumeError{Owner: l.owner, Target: target, Cause: ErrNotContained}
	}
	for _, c := range l.consumed {
		if c.Contains(target) {
			return &ConsumeError{Owner: l.owner, Target: target, Cause: ErrAlreadyConsumed}
		}
	}
	l.consumed = append(l.consumed, target)
	return nil
}

// Consumed returns the number of recorded spans.
func (l *Ledger) Consumed() int {
	return len(l.consumed)
}

// Reset clears the bookkeeping, keeping the owner.
func (l *Ledger) Reset() {
	l.consumed = l.consumed[:0]
}

// Rebind clears the bookkeeping and moves the ledger to a new owner. Used
// when the owner's span is reassigned.
func (l *Ledger) Rebind(owner Span) {
	l.owner = owner
	l.Reset()
}
