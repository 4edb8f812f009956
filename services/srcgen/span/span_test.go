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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpan_Contains(t *testing.T) {
	tests := []struct {
		name  string
		outer Span
		inner Span
		want  bool
	}{
		{"equal", New(1, 2, 3, 4), New(1, 2, 3, 4), true},
		{"strictly inside", New(0, 0, 10, 0), New(2, 5, 3, 1), true},
		{"same row tighter columns", New(7, 24, 7, 52), New(7, 25, 7, 38), true},
		{"starts before owner", New(7, 24, 7, 52), New(7, 23, 7, 30), false},
		{"ends after owner", New(7, 24, 7, 52), New(7, 30, 7, 53), false},
		{"later row earlier column", New(1, 10, 3, 0), New(2, 0, 2, 4), true},
		{"zero width at end", New(1, 0, 1, 5), At(Point{Row: 1, Column: 5}), true},
		{"disjoint", New(0, 0, 0, 5), New(0, 5, 0, 8), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outer.Contains(tt.inner))
		})
	}
}

func TestSpan_ContainsTransitive(t *testing.T) {
	spans := []Span{
		New(0, 0, 20, 0),
		New(2, 4, 9, 1),
		New(3, 0, 3, 10),
		New(3, 2, 3, 8),
		New(3, 2, 3, 2),
		New(5, 0, 12, 3),
		New(9, 1, 9, 1),
	}

	for _, a := range spans {
		for _, b := range spans {
			for _, c := range spans {
				if a.Contains(b) && b.Contains(c) {
					assert.True(t, a.Contains(c), "%s ⊇ %s ⊇ %s", a, b, c)
				}
			}
		}
	}
}

func TestSpan_EqualityIsPositional(t *testing.T) {
	a := New(8, 12, 8, 41)
	b := Span{Start: Point{8, 12}, End: Point{8, 41}}
	assert.Equal(t, a, b)
	assert.True(t, a == b)
	assert.NotEqual(t, a, New(8, 12, 8, 40))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(New(1, 0, 1, 3), New(2, 0, 2, 1)))
	assert.Equal(t, -1, Compare(New(1, 0, 1, 3), New(1, 1, 1, 2)))
	assert.Equal(t, 0, Compare(New(1, 1, 1, 3), New(1, 1, 4, 0)))
	assert.Equal(t, 1, Compare(New(3, 0, 3, 1), New(1, 9, 9, 9)))
}

func TestSpan_Valid(t *testing.T) {
	assert.True(t, New(0, 0, 0, 0).Valid())
	assert.True(t, New(1, 4, 2, 0).Valid())
	assert.False(t, New(2, 0, 1, 0).Valid())
	assert.False(t, New(-1, 0, 1, 0).Valid())
}

func TestLedger_Consume(t *testing.T) {
	l := NewLedger(New(0, 0, 0, 20))

	require.NoError(t, l.Consume(New(0, 0, 0, 5)))
	require.NoError(t, l.Consume(New(0, 5, 0, 9)))
	assert.Equal(t, 2, l.Consumed())

	err := l.Consume(New(0, 1, 0, 3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyConsumed))

	err = l.Consume(New(0, 15, 1, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotContained))

	var ce *ConsumeError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, New(0, 0, 0, 20), ce.Owner)
	assert.Equal(t, 2, l.Consumed(), "failed consume must not record")
}

func TestLedger_ResetAndRebind(t *testing.T) {
	l := NewLedger(New(0, 0, 0, 20))
	require.NoError(t, l.Consume(New(0, 0, 0, 5)))

	l.Reset()
	assert.Equal(t, 0, l.Consumed())
	require.NoError(t, l.Consume(New(0, 0, 0, 5)))

	l.Rebind(New(4, 0, 4, 10))
	assert.Equal(t, New(4, 0, 4, 10), l.Owner())
	assert.Equal(t, 0, l.Consumed())
	assert.Error(t, l.Consume(New(0, 0, 0, 5)))
}
