// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/srcgen/services/srcgen/edit"
	"github.com/AleutianAI/srcgen/services/srcgen/shadow"
	"github.com/AleutianAI/srcgen/services/srcgen/syntax"
)

const testJavaFile = `package ai.serenade.treesitter;

import java.util.List;

public class TestFile {
    public void test() {
        // The cast to List<String> is not required. Let's remove it using autofix.
        for (String s : (List<String>) manyStrings()) {
            System.out.println("Middle");
        }
    }
}
`

const testScript = `
language: java
actions:
  - delete: {span: [7, 24, 7, 52], children: ["(", "generic_type", ")"]}
  - insert:
      ref: [8, 12, 8, 41]
      position: before
      fragment: |
        public class Temp {
          public static void test() {
            callMe();
          }
        }
      select: [2, 4, 2, 13]
      affects_row: true
  - insert:
      ref: [8, 12, 8, 41]
      position: after
      fragment: |
        public class Temp {
          public static void test() {
            callMe();
          }
        }
      select: [2, 4, 2, 13]
      affects_row: true
`

const testWant = `package ai.serenade.treesitter;

import java.util.List;

public class TestFile {
    public void test() {
        // The cast to List<String> is not required. Let's remove it using autofix.
        for (String s :  manyStrings()) {
            callMe();
            System.out.println("Middle");
            callMe();
        }
    }
}
`

func TestDecode(t *testing.T) {
	s, err := Decode(strings.NewReader(testScript))
	require.NoError(t, err)

	assert.Equal(t, "java", s.Language)
	require.Len(t, s.Actions, 3)
	require.NotNil(t, s.Actions[0].Delete)
	assert.Equal(t, []int{7, 24, 7, 52}, s.Actions[0].Delete.Span)
	assert.Equal(t, []string{"(", "generic_type", ")"}, s.Actions[0].Delete.Children)

	in := s.Actions[1].Insert
	require.NotNil(t, in)
	assert.Equal(t, PositionBefore, in.Position)
	assert.True(t, in.AffectsRow)
	assert.True(t, strings.HasSuffix(in.Fragment, "}\n"))
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		index int
		field string
	}{
		{"empty", "", -1, "actions"},
		{"no actions", "language: java\n", -1, "actions"},
		{"two kinds", "actions:\n  - {delete: {span: [0,0,0,1]}, restore: {span: [0,0,0,1]}}\n", 0, "action"},
		{"short span", "actions:\n  - delete: {span: [0, 0, 1]}\n", 0, "delete.span"},
		{"reversed span", "actions:\n  - restore: {span: [3, 0, 1, 0]}\n", 0, "restore.span"},
		{"bad position", "language: java\nactions:\n  - insert: {ref: [0,0,0,1], select: [0,0,0,1], fragment: x, position: above}\n", 0, "insert.position"},
		{"no fragment", "language: java\nactions:\n  - insert: {ref: [0,0,0,1], select: [0,0,0,1], position: after}\n", 0, "insert.fragment"},
		{"no language", "actions:\n  - delete: {span: [0,0,0,1]}\n  - insert: {ref: [0,0,0,1], select: [0,0,0,1], fragment: x, position: after}\n", 1, "insert.language"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), err.Error())
			assert.Equal(t, tt.index, ve.Index)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("actions:\n  - delete: {span: [0,0,0,1], childs: [x]}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "childs")
}

func TestDecode_TooLarge(t *testing.T) {
	_, err := Decode(strings.NewReader("# " + strings.Repeat("x", MaxScriptSize)))
	assert.ErrorIs(t, err, ErrScriptTooLarge)
}

func TestCompile(t *testing.T) {
	ctx := context.Background()
	parser := syntax.NewParser(nil)
	s, err := Decode(strings.NewReader(testScript))
	require.NoError(t, err)

	main, err := BuildTree(ctx, parser, "java", "TestFile.java", []byte(testJavaFile))
	require.NoError(t, err)

	actions, err := s.Compile(ctx, main, parser)
	require.NoError(t, err)
	require.Len(t, actions, 3)

	assert.IsType(t, edit.DeleteChildren{}, actions[0])
	ins, ok := actions[1].(edit.InsertSibling)
	require.True(t, ok)
	assert.True(t, ins.Before)
	assert.Equal(t, shadow.KindMerge, main.Kind(ins.Node))
	assert.False(t, main.IsAttached(ins.Node))
	assert.Equal(t, 3, main.FragmentCount())
}

func TestCompile_FragmentFaults(t *testing.T) {
	ctx := context.Background()
	parser := syntax.NewParser(nil)
	main, err := BuildTree(ctx, parser, "java", "", []byte(testJavaFile))
	require.NoError(t, err)

	t.Run("unknown fragment language", func(t *testing.T) {
		s := &Script{Actions: []Entry{{Insert: &InsertEntry{
			Ref: []int{8, 12, 8, 41}, Select: []int{0, 0, 0, 1}, Fragment: "x", Language: "cobol", Position: PositionAfter,
		}}}}
		_, err := s.Compile(ctx, main, parser)
		assert.True(t, syntax.IsUnsupportedLanguage(err))
		assert.Contains(t, err.Error(), "action 0")
	})

	t.Run("select misses a node", func(t *testing.T) {
		s := &Script{Language: "java", Actions: []Entry{{Insert: &InsertEntry{
			Ref: []int{8, 12, 8, 41}, Select: []int{0, 1, 0, 3}, Fragment: "class A {}", Position: PositionAfter,
		}}}}
		_, err := s.Compile(ctx, main, parser)
		assert.True(t, shadow.IsAddressFault(err))
	})
}

func TestCompile_UnvalidatedSpans(t *testing.T) {
	ctx := context.Background()
	parser := syntax.NewParser(nil)
	main, err := BuildTree(ctx, parser, "java", "", []byte(testJavaFile))
	require.NoError(t, err)

	tests := []struct {
		name  string
		entry Entry
		field string
	}{
		{"short delete span", Entry{Delete: &DeleteEntry{Span: []int{7, 24, 7}}}, "delete.span"},
		{"reversed restore span", Entry{Restore: &RestoreEntry{Span: []int{8, 0, 7, 0}}}, "restore.span"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Script{Actions: []Entry{{Delete: &DeleteEntry{Span: []int{7, 24, 7, 52}}}, tt.entry}}
			actions, err := s.Compile(ctx, main, parser)
			require.Error(t, err)
			assert.Nil(t, actions)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, 1, verr.Index)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRun(t *testing.T) {
	s, err := Decode(strings.NewReader(testScript))
	require.NoError(t, err)

	res, err := Run(context.Background(), syntax.NewParser(nil), "TestFile.java", []byte(testJavaFile), s)
	require.NoError(t, err)
	assert.Equal(t, testWant, res.Output)
	assert.True(t, res.Changed)
	_, err = uuid.Parse(res.SessionID)
	assert.NoError(t, err)
}

func TestRun_FailingAction(t *testing.T) {
	s, err := Decode(strings.NewReader("language: java\nactions:\n  - delete: {span: [7, 25, 7, 27]}\n"))
	require.NoError(t, err)

	_, err = Run(context.Background(), syntax.NewParser(nil), "TestFile.java", []byte(testJavaFile), s)
	var ae *edit.ActionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 0, ae.Index)
	assert.True(t, shadow.IsAddressFault(err))
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	parser := syntax.NewParser(nil)

	a, err := Open(ctx, parser, "src/TestFile.java", "", []byte(testJavaFile))
	require.NoError(t, err)
	b, err := Open(ctx, parser, "src/TestFile.java", "", []byte(testJavaFile))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "java", a.Language)
	assert.Equal(t, testJavaFile, a.Source())

	out, err := a.Render(ctx)
	require.NoError(t, err)
	assert.Equal(t, testJavaFile, out)

	d, err := a.Diff(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)

	s, err := Decode(strings.NewReader(testScript))
	require.NoError(t, err)
	require.NoError(t, a.Apply(ctx, s))

	d, err = a.Diff(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(d), "+            callMe();\n")
	assert.Contains(t, string(d), "--- a/src/TestFile.java")

	_, err = Open(ctx, parser, "notes.txt", "", []byte("hello"))
	assert.True(t, syntax.IsUnsupportedLanguage(err))
}
