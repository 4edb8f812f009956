// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package shadow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/srcgen/services/srcgen/span"
)

func TestSetDeleted(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	cast := tr.MustNodeAtSpan(span.New(7, 24, 7, 52))

	size := 0
	tr.Walk(cast, func(NodeID, int) bool { size++; return true })

	changed, err := tr.SetDeleted(cast, true)
	require.NoError(t, err)
	assert.Equal(t, size, changed)
	tr.Walk(cast, func(id NodeID, _ int) bool {
		assert.True(t, tr.IsDeleted(id), tr.Describe(id))
		return true
	})

	t.Run("idempotent", func(t *testing.T) {
		changed, err := tr.SetDeleted(cast, true)
		require.NoError(t, err)
		assert.Zero(t, changed)
	})

	t.Run("siblings untouched", func(t *testing.T) {
		parent := tr.Parent(cast)
		for _, c := range tr.Children(parent) {
			if c != cast {
				assert.False(t, tr.IsDeleted(c), tr.Describe(c))
			}
		}
	})

	t.Run("restore", func(t *testing.T) {
		changed, err := tr.SetDeleted(cast, false)
		require.NoError(t, err)
		assert.Equal(t, size, changed)
		tr.Walk(cast, func(id NodeID, _ int) bool {
			assert.False(t, tr.IsDeleted(id))
			return true
		})
	})

	_, err = tr.SetDeleted(NoNode, true)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestSetDeleted_MergeIncludesWrapped(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	m, err := tr.Import(build(t, "java", testJavaFragment), testCallSpan, Placement{Ref: testRefSpan})
	require.NoError(t, err)

	_, err = tr.SetDeleted(m, true)
	require.NoError(t, err)
	info, _ := tr.Merge(m)
	assert.True(t, tr.IsDeleted(info.Wrapped))
	for _, l := range tr.Leaves(m) {
		assert.True(t, tr.IsDeleted(l))
	}
}

func TestSetDeleted_MergeIncludesCarried(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	m, err := tr.Import(build(t, "java", testJavaFragment), testCallSpan, Placement{Ref: testRefSpan, AffectsRow: true})
	require.NoError(t, err)

	newline := NoNode
	for _, l := range tr.Leaves(tr.Root()) {
		if tr.Role(l) == RoleNewline {
			newline = l
			break
		}
	}
	require.NotEqual(t, NoNode, newline)
	cp, err := tr.CarryCopy(newline, testRefSpan.End)
	require.NoError(t, err)

	require.NoError(t, tr.LinkCarried(m, cp))
	info, _ := tr.Merge(m)
	assert.Equal(t, []NodeID{cp}, info.Carried)

	n, err := tr.SetDeleted(m, true)
	require.NoError(t, err)
	assert.Greater(t, n, 1)
	assert.True(t, tr.IsDeleted(cp))
	assert.False(t, tr.IsDeleted(newline))

	_, err = tr.SetDeleted(m, false)
	require.NoError(t, err)
	assert.False(t, tr.IsDeleted(cp))
}

func TestLinkCarried_Faults(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	m, err := tr.Import(build(t, "java", testJavaFragment), testCallSpan, Placement{Ref: testRefSpan})
	require.NoError(t, err)
	ref := tr.MustNodeAtSpan(testRefSpan)

	assert.ErrorIs(t, tr.LinkCarried(NoNode), ErrUnknownNode)
	assert.ErrorIs(t, tr.LinkCarried(ref), ErrNotMerge)
	assert.ErrorIs(t, tr.LinkCarried(m, NoNode), ErrUnknownNode)
	assert.ErrorIs(t, tr.LinkCarried(m, ref), ErrNotCarried)
}

func TestInsertChild(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	ref := tr.MustNodeAtSpan(testRefSpan)
	parent := tr.Parent(ref)
	indent := tr.MustNodeAtSpan(span.New(8, 0, 8, 12))
	count := len(tr.Children(parent))

	cp, err := tr.CarryCopy(indent, testRefSpan.Start)
	require.NoError(t, err)
	require.NoError(t, tr.InsertChild(parent, count, cp))
	assert.Len(t, tr.Children(parent), count+1)
	assert.Equal(t, cp, tr.Children(parent)[count])
	assert.Equal(t, parent, tr.Parent(cp))

	t.Run("already attached", func(t *testing.T) {
		assert.ErrorIs(t, tr.InsertChild(parent, 0, cp), ErrAttached)
		assert.ErrorIs(t, tr.InsertChild(parent, 0, tr.Root()), ErrAttached)
	})

	t.Run("index out of range", func(t *testing.T) {
		other, err := tr.CarryCopy(indent, testRefSpan.Start)
		require.NoError(t, err)
		assert.ErrorIs(t, tr.InsertChild(parent, count+5, other), ErrInvalidIndex)
		assert.ErrorIs(t, tr.InsertChild(parent, -1, other), ErrInvalidIndex)
		assert.Equal(t, NoNode, tr.Parent(other))
	})

	t.Run("into merge", func(t *testing.T) {
		m, err := tr.Import(build(t, "java", testJavaFragment), testCallSpan, Placement{Ref: testRefSpan})
		require.NoError(t, err)
		other, err := tr.CarryCopy(indent, testRefSpan.Start)
		require.NoError(t, err)
		assert.ErrorIs(t, tr.InsertChild(m, 0, other), ErrInvalidIndex)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.ErrorIs(t, tr.InsertChild(parent, 0, NodeID(tr.Len()+3)), ErrUnknownNode)
	})
}

func TestCarryCopy(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	nl := tr.MustNodeAtSpan(span.New(7, 55, 8, 0))
	require.Equal(t, RoleNewline, tr.Role(nl))

	_, err := tr.SetDeleted(nl, true)
	require.NoError(t, err)

	anchor := testRefSpan.End
	cp, err := tr.CarryCopy(nl, anchor)
	require.NoError(t, err)

	assert.True(t, tr.IsCarried(cp))
	assert.False(t, tr.IsCarried(nl))
	assert.False(t, tr.IsDeleted(cp))
	assert.Equal(t, NoNode, tr.Parent(cp))
	assert.Equal(t, span.At(anchor), tr.Span(cp))
	assert.Equal(t, tr.OriginSpan(nl), tr.OriginSpan(cp))
	assert.Equal(t, TypeNewline, tr.Type(cp))
	assert.Contains(t, tr.Describe(cp), "carried")

	_, err = tr.CarryCopy(tr.MustNodeAtSpan(testRefSpan), anchor)
	assert.ErrorIs(t, err, ErrNotLeaf)
	_, err = tr.CarryCopy(NoNode, anchor)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestSetSpan(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	id := tr.MustNodeAtSpan(testRefSpan)
	moved := span.New(8, 12, 8, 50)

	require.NoError(t, tr.SetSpan(id, moved))
	assert.Equal(t, moved, tr.Span(id))
	assert.Equal(t, testRefSpan, tr.OriginSpan(id))
	assert.ErrorIs(t, tr.SetSpan(NoNode, moved), ErrUnknownNode)
}
