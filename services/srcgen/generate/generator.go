// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package generate regenerates source text from an edited shadow tree.
//
// # Description
//
// The generator walks the tree depth-first and emits one segment per leaf.
// Leaf text is always cut from the leaf's own fragment by its origin span,
// so untouched regions come back byte for byte. A merge node renders its
// imported subtree in that fragment's coordinates into a single segment,
// which is then keyed by the merge offset. Segments are stably sorted by
// start point and concatenated, skipping deleted ones.
//
// # Thread Safety
//
// A Generator mutates the placement spans of merged nodes while rendering
// and must not run concurrently with anything else touching the same tree.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/srcgen/services/srcgen/shadow"
	"github.com/AleutianAI/srcgen/services/srcgen/span"
)

// Segment is one rendered piece of output.
type Segment struct {
	// Node produced the segment: a leaf, or a merge node.
	Node shadow.NodeID

	// Span is the ordering key. For a merge node it is the merge offset.
	Span span.Span

	// Text is the exact text contributed when not deleted.
	Text string

	// Deleted segments are kept for inspection but not emitted.
	Deleted bool
}

// Generator renders one shadow tree.
type Generator struct {
	tree     *shadow.Tree
	segments []Segment
}

// New creates a generator for t.
func New(t *shadow.Tree) *Generator {
	return &Generator{tree: t}
}

// Render is shorthand for New(t).Render(ctx).
func Render(ctx context.Context, t *shadow.Tree) (string, error) {
	return New(t).Render(ctx)
}

// Segments returns the ordered segments of the last successful Render.
func (g *Generator) Segments() []Segment {
	return g.segments
}

// Render produces the source text for the current state of the tree.
//
// Description:
//
//	Each call starts from fresh consumption ledgers, so rendering the same
//	tree twice yields the same text. Merge offsets are applied to the
//	placement spans of the merged subtrees as a side effect.
//
// Inputs:
//   - ctx: Context for tracing and metrics.
//
// Outputs:
//   - string: The regenerated text.
//   - error: ErrNilTree, ErrNonLeafText, ErrUnknownKind, or a wrapped
//     *span.ConsumeError when the tree's span invariants are broken.
func (g *Generator) Render(ctx context.Context) (string, error) {
	if g.tree == nil {
		return "", ErrNilTree
	}
	ctx, sp := tracer.Start(ctx, "generate.Render")
	defer sp.End()
	start := time.Now()

	p := newPass(g.tree, false)
	if err := p.visit(g.tree.Root()); err != nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, "render failed")
		recordRenderMetrics(ctx, time.Since(start), 0, 0, false)
		return "", err
	}

	out, emitted := p.text()
	g.segments = p.segments

	sp.SetAttributes(
		attribute.Int("generate.segments", len(p.segments)),
		attribute.Int("generate.emitted", emitted),
		attribute.Int("generate.bytes", len(out)),
	)
	recordRenderMetrics(ctx, time.Since(start), len(p.segments), p.merges, true)

	slog.Debug("rendered tree",
		slog.Int("segments", len(p.segments)),
		slog.Int("emitted", emitted),
		slog.Int("merges", p.merges),
		slog.Int("bytes", len(out)))

	return out, nil
}

// pass is one depth-first traversal with its own ledgers. A local pass runs
// inside a merge node and keys segments by origin span.
type pass struct {
	tree     *shadow.Tree
	local    bool
	ledgers  map[shadow.NodeID]*span.Ledger
	segments []Segment
	merges   int
}

func newPass(t *shadow.Tree, local bool) *pass {
	return &pass{tree: t, local: local, ledgers: make(map[shadow.NodeID]*span.Ledger)}
}

func (p *pass) visit(id shadow.NodeID) error {
	t := p.tree
	switch t.Kind(id) {
	case shadow.KindMerge:
		return p.visitMerge(id)
	case shadow.KindPlain:
		if t.IsLeaf(id) {
			return p.visitLeaf(id)
		}
		for _, c := range t.Children(id) {
			if err := p.visit(c); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, t.Describe(id))
	}
}

func (p *pass) visitMerge(id shadow.NodeID) error {
	t := p.tree
	if p.local {
		return fmt.Errorf("render %s: %w", t.Describe(id), shadow.ErrNestedMerge)
	}
	info, _ := t.Merge(id)

	sub := newPass(t, true)
	if err := sub.visit(info.Wrapped); err != nil {
		return fmt.Errorf("render merge %s: %w", t.Describe(id), err)
	}
	text, _ := sub.text()

	if err := t.ApplyOffset(id); err != nil {
		return err
	}
	p.merges++
	p.segments = append(p.segments, Segment{
		Node:    id,
		Span:    info.Offset,
		Text:    text,
		Deleted: t.IsDeleted(id),
	})
	return nil
}

func (p *pass) visitLeaf(id shadow.NodeID) error {
	t := p.tree
	text, err := LeafText(t, id)
	if err != nil {
		return err
	}

	origin := t.OriginSpan(id)
	if parent := t.Parent(id); parent != shadow.NoNode && !t.IsCarried(id) && !origin.IsEmpty() {
		l, ok := p.ledgers[parent]
		if !ok {
			l = span.NewLedger(t.OriginSpan(parent))
			p.ledgers[parent] = l
		}
		if err := l.Consume(origin); err != nil {
			return fmt.Errorf("render leaf %s: %w", t.Describe(id), err)
		}
	}

	key := t.Span(id)
	if p.local {
		key = origin
	}
	p.segments = append(p.segments, Segment{
		Node:    id,
		Span:    key,
		Text:    text,
		Deleted: t.IsDeleted(id),
	})
	return nil
}

// text sorts the segments and concatenates the live ones.
func (p *pass) text() (string, int) {
	slices.SortStableFunc(p.segments, func(a, b Segment) int {
		return a.Span.Start.Compare(b.Span.Start)
	})
	var b strings.Builder
	emitted := 0
	for _, s := range p.segments {
		if s.Deleted {
			continue
		}
		b.WriteString(s.Text)
		emitted++
	}
	return b.String(), emitted
}
