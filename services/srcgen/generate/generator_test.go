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
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/srcgen/services/srcgen/edit"
	"github.com/AleutianAI/srcgen/services/srcgen/shadow"
	"github.com/AleutianAI/srcgen/services/srcgen/span"
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

    // A hello world program.
    public static void main(String[] args) {
        System.out.println("Hello, World!");
    }

    public List<String> manyStrings() {
        return List.of("a", "b");
    }
}
`

const testJavaFragment = `public class Temp {
  public static void test() {
    callMe();
  }
}
`

const testMiddle = "            System.out.println(\"Middle\");\n"

var (
	testCastSpan = span.New(7, 24, 7, 52)
	testRefSpan  = span.New(8, 12, 8, 41)
	testCallSpan = span.New(2, 4, 2, 13)
)

func build(t *testing.T, language, src string) *shadow.Tree {
	t.Helper()
	parsed, err := syntax.NewParser(nil).Parse(context.Background(), language, "", []byte(src))
	require.NoError(t, err)
	defer parsed.Close()

	tr, err := shadow.Build(parsed.Root(), src)
	require.NoError(t, err)
	return tr
}

func render(t *testing.T, tr *shadow.Tree) string {
	t.Helper()
	out, err := Render(context.Background(), tr)
	require.NoError(t, err)
	return out
}

func TestRender_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		language string
		src      string
	}{
		{"java file", "java", testJavaFile},
		{"java block comment", "java", "/* a\n   b */\nclass A {\n\tString s = \"x\";   \n}"},
		{"java crlf", "java", "class A {\r\n  int x;\r\n}\r\n"},
		{"go", "go", "package a\n\nimport \"fmt\"\n\nfunc F() {\n\tfmt.Println(`raw\nstring`)\n}\n"},
		{"javascript", "javascript", "const a = [1,\n  2];\n\nfunction f() { return a }\n"},
		{"rust", "rust", "fn main() {\n    let x = 1;\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := build(t, tt.language, tt.src)
			assert.Equal(t, tt.src, render(t, tr))
			// Rendering keeps no state between calls.
			assert.Equal(t, tt.src, render(t, tr))
		})
	}
}

func TestRender_CastAutofix(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	err := edit.Apply(context.Background(), tr,
		edit.DeleteChildren{Span: testCastSpan, Types: []string{"(", "generic_type", ")"}})
	require.NoError(t, err)

	want := strings.Replace(testJavaFile,
		"for (String s : (List<String>) manyStrings()) {",
		"for (String s :  manyStrings()) {", 1)
	assert.Equal(t, want, render(t, tr))
}

func TestRender_DeleteAndRestore(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	ctx := context.Background()

	require.NoError(t, edit.Apply(ctx, tr, edit.DeleteNode{Span: testRefSpan}))
	assert.Equal(t, strings.Replace(testJavaFile, testMiddle, "            \n", 1), render(t, tr))

	require.NoError(t, edit.Apply(ctx, tr, edit.RestoreNode{Span: testRefSpan}))
	assert.Equal(t, testJavaFile, render(t, tr))
}

func TestRender_InsertBeforeAndAfter(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	ctx := context.Background()
	frag := build(t, "java", testJavaFragment)

	before, err := tr.Import(frag, testCallSpan, shadow.Placement{Ref: testRefSpan, Before: true, AffectsRow: true})
	require.NoError(t, err)
	after, err := tr.Import(frag, testCallSpan, shadow.Placement{Ref: testRefSpan, AffectsRow: true})
	require.NoError(t, err)

	insertBefore, err := edit.InsertMerge(tr, before)
	require.NoError(t, err)
	insertAfter, err := edit.InsertMerge(tr, after)
	require.NoError(t, err)
	require.NoError(t, edit.Apply(ctx, tr, insertBefore, insertAfter))

	call := "            callMe();\n"
	want := strings.Replace(testJavaFile, testMiddle, call+testMiddle+call, 1)
	assert.Equal(t, want, render(t, tr))
	assert.Equal(t, want, render(t, tr))
}

func TestRender_InsertOnlyAfter(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	m, err := tr.Import(build(t, "java", testJavaFragment), testCallSpan, shadow.Placement{Ref: testRefSpan, AffectsRow: true})
	require.NoError(t, err)
	require.NoError(t, edit.Apply(context.Background(), tr, edit.InsertSibling{Ref: testRefSpan, Node: m}))

	want := strings.Replace(testJavaFile, testMiddle, testMiddle+"            callMe();\n", 1)
	assert.Equal(t, want, render(t, tr))
}

func TestRender_InlineMerge(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	frag := build(t, "java", "class T { int v = other(); }")

	// Replace manyStrings() with other() by inserting and deleting.
	m, err := tr.Import(frag, span.New(0, 18, 0, 25), shadow.Placement{Ref: span.New(7, 39, 7, 52), Before: true})
	require.NoError(t, err)
	insert, err := edit.InsertMerge(tr, m)
	require.NoError(t, err)
	require.NoError(t, edit.Apply(context.Background(), tr,
		insert,
		edit.DeleteNode{Span: span.New(7, 39, 7, 52)}))

	want := strings.Replace(testJavaFile, "(List<String>) manyStrings()", "(List<String>) other()", 1)
	assert.Equal(t, want, render(t, tr))
}

const testShortFile = "class A {\n  void m() {\n    a();\n    b();\n  }\n}\n"

const testShortFragment = "class T { void f() { x(); y(); } }"

var (
	testASpan = span.New(2, 4, 2, 8)
	testBSpan = span.New(3, 4, 3, 8)
	testXSpan = span.New(0, 21, 0, 25)
	testYSpan = span.New(0, 26, 0, 30)
)

func TestRender_TwoMergesAfterSameReference(t *testing.T) {
	tests := []struct {
		name       string
		affectsRow bool
		want       string
	}{
		{"inline", false, "    a();y();x();\n    b();\n"},
		{"own lines", true, "    a();\n    y();\n    x();\n    b();\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := build(t, "java", testShortFile)
			frag := build(t, "java", testShortFragment)
			ctx := context.Background()

			for _, sel := range []span.Span{testXSpan, testYSpan} {
				m, err := tr.Import(frag, sel, shadow.Placement{Ref: testASpan, AffectsRow: tt.affectsRow})
				require.NoError(t, err)
				insert, err := edit.InsertMerge(tr, m)
				require.NoError(t, err)
				require.NoError(t, edit.Apply(ctx, tr, insert))
			}

			want := strings.Replace(testShortFile, "    a();\n    b();\n", tt.want, 1)
			assert.Equal(t, want, render(t, tr))
		})
	}
}

func TestRender_InsertBeforeOtherReference(t *testing.T) {
	tr := build(t, "java", testShortFile)
	m, err := tr.Import(build(t, "java", testShortFragment), testXSpan, shadow.Placement{Ref: testASpan, Before: true})
	require.NoError(t, err)

	require.NoError(t, edit.Apply(context.Background(), tr, edit.InsertSibling{Ref: testBSpan, Node: m, Before: true}))

	want := strings.Replace(testShortFile, "    b();", "    x();b();", 1)
	assert.Equal(t, want, render(t, tr))
}

func TestRender_DeletedMerge(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	m, err := tr.Import(build(t, "java", testJavaFragment), testCallSpan, shadow.Placement{Ref: testRefSpan, Before: true, AffectsRow: true})
	require.NoError(t, err)
	insert, _ := edit.InsertMerge(tr, m)
	require.NoError(t, edit.Apply(context.Background(), tr, insert))

	_, err = tr.SetDeleted(m, true)
	require.NoError(t, err)

	// The carried line break and indentation go with the merge.
	assert.Equal(t, testJavaFile, render(t, tr))

	_, err = tr.SetDeleted(m, false)
	require.NoError(t, err)
	want := strings.Replace(testJavaFile, testMiddle, "            callMe();\n"+testMiddle, 1)
	assert.Equal(t, want, render(t, tr))
}

func TestGenerator_Segments(t *testing.T) {
	tr := build(t, "java", testJavaFile)
	m, err := tr.Import(build(t, "java", testJavaFragment), testCallSpan, shadow.Placement{Ref: testRefSpan, AffectsRow: true})
	require.NoError(t, err)
	require.NoError(t, edit.Apply(context.Background(), tr, edit.InsertSibling{Ref: testRefSpan, Node: m}))

	g := New(tr)
	assert.Empty(t, g.Segments())
	_, err = g.Render(context.Background())
	require.NoError(t, err)

	segs := g.Segments()
	require.NotEmpty(t, segs)
	var merged *Segment
	for i := range segs {
		if i > 0 {
			assert.LessOrEqual(t, segs[i-1].Span.Start.Compare(segs[i].Span.Start), 0)
		}
		if segs[i].Node == m {
			merged = &segs[i]
		}
	}
	require.NotNil(t, merged)
	assert.Equal(t, "callMe();", merged.Text)
	assert.Equal(t, span.New(8, 41, 9, 0), merged.Span)

	// The offset was applied to the whole imported subtree.
	tr.Walk(m, func(id shadow.NodeID, _ int) bool {
		assert.Equal(t, merged.Span, tr.Span(id))
		return true
	})
}

func TestRender_Faults(t *testing.T) {
	_, err := Render(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilTree)

	tr := build(t, "java", testJavaFile)
	_, err = LeafText(tr, tr.Root())
	assert.ErrorIs(t, err, ErrNonLeafText)
}

func TestCut(t *testing.T) {
	lines := []string{"abc", "defg", "hi"}

	tests := []struct {
		name    string
		span    span.Span
		want    string
		clamped bool
	}{
		{"single line", span.New(1, 1, 1, 3), "ef", false},
		{"empty", span.New(1, 2, 1, 2), "", false},
		{"multi line", span.New(0, 1, 2, 1), "bc\ndefg\nh", false},
		{"newline", span.New(0, 3, 1, 0), "\n", false},
		{"column past end", span.New(0, 1, 0, 9), "bc", true},
		{"end row past end", span.New(1, 2, 5, 0), "fg\nhi\n", true},
		{"start row past end", span.New(7, 0, 7, 1), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped := cut(lines, tt.span)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.clamped, clamped)
		})
	}
}
