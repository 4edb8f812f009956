// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package syntax is the tree-sitter collaborator of srcgen.
//
// It owns grammar registration, parsing and a narrow Node adapter. The
// shadow tree is built from Node values only, so nothing downstream touches
// tree-sitter types directly.
package syntax

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

const (
	// DefaultMaxSourceSize is the largest source the parser accepts (10MB).
	DefaultMaxSourceSize = 10 * 1024 * 1024

	// WarnSourceSize is the size at which a warning is logged (1MB).
	WarnSourceSize = 1 * 1024 * 1024
)

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMaxSourceSize sets the maximum source size in bytes. Non-positive
// values are ignored.
func WithMaxSourceSize(bytes int64) ParserOption {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxSourceSize = bytes
		}
	}
}

// Parser turns source text into tree-sitter trees using a Registry.
//
// Description:
//
//	A new tree-sitter parser instance is created per Parse call, so a single
//	Parser may be shared between goroutines. The returned Tree is tied to the
//	exact text it was parsed from and must be closed by the caller.
//
// Thread Safety:
//
//	Parser instances are safe for concurrent use.
type Parser struct {
	registry      *Registry
	maxSourceSize int64
}

// NewParser creates a Parser over registry.
//
// Inputs:
//   - registry: Grammar lookup. Nil uses NewDefaultRegistry().
//   - opts: Optional configuration (WithMaxSourceSize).
//
// Outputs:
//   - *Parser: Configured parser, never nil.
func NewParser(registry *Registry, opts ...ParserOption) *Parser {
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	p := &Parser{
		registry:      registry,
		maxSourceSize: DefaultMaxSourceSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the grammar registry backing this parser.
func (p *Parser) Registry() *Registry {
	return p.registry
}

// Parse parses src with the grammar registered as language.
//
// Description:
//
//	Validates size and encoding, then runs tree-sitter. Syntax errors do not
//	fail the parse: tree-sitter still produces a tree with ERROR nodes, and
//	Tree.HasError reports them.
//
// Inputs:
//   - ctx: Context for cancellation. Checked before and after parsing.
//   - language: Registry name, e.g. "java".
//   - name: Source name for errors and telemetry (usually a path). May be "".
//   - src: Source text. Must be valid UTF-8.
//
// Outputs:
//   - *Tree: Parsed tree. Caller must Close it.
//   - error: *ParseError wrapping ErrUnsupportedLanguage, ErrSourceTooLarge,
//     ErrInvalidContent, ErrParseFailed or a context error.
//
// Thread Safety:
//
//	This method is safe for concurrent use.
func (p *Parser) Parse(ctx context.Context, language, name string, src []byte) (*Tree, error) {
	ctx, span := startParseSpan(ctx, language, name, len(src))
	defer span.End()

	start := time.Now()
	fail := func(err error) (*Tree, error) {
		recordParseMetrics(ctx, language, time.Since(start), 0, false)
		span.RecordError(err)
		return nil, &ParseError{Language: language, Name: name, Cause: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(fmt.Errorf("canceled before start: %w", err))
	}

	grammar, ok := p.registry.ByName(language)
	if !ok {
		return fail(ErrUnsupportedLanguage)
	}

	if int64(len(src)) > p.maxSourceSize {
		return fail(fmt.Errorf("%w: size %d exceeds limit %d", ErrSourceTooLarge, len(src), p.maxSourceSize))
	}
	if len(src) > WarnSourceSize {
		slog.Warn("parsing large source",
			slog.String("name", name),
			slog.Int("size_bytes", len(src)))
	}

	if !utf8.Valid(src) {
		return fail(fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent))
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar.Language)

	raw, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrParseFailed, err))
	}
	if raw == nil || raw.RootNode() == nil {
		return fail(ErrParseFailed)
	}

	if err := ctx.Err(); err != nil {
		raw.Close()
		return fail(fmt.Errorf("canceled after parse: %w", err))
	}

	tree := &Tree{raw: raw, language: grammar.Name, source: string(src)}
	nodes := countNodes(raw.RootNode())

	setParseSpanResult(span, nodes, tree.HasError())
	recordParseMetrics(ctx, language, time.Since(start), nodes, true)

	slog.Debug("parsed source",
		slog.String("language", grammar.Name),
		slog.String("name", name),
		slog.Int("nodes", nodes),
		slog.Bool("has_error", tree.HasError()))

	return tree, nil
}

// ParsePath parses src choosing the grammar from the extension of path.
func (p *Parser) ParsePath(ctx context.Context, path string, src []byte) (*Tree, error) {
	grammar, ok := p.registry.ForPath(path)
	if !ok {
		return nil, &ParseError{Name: path, Cause: ErrUnsupportedLanguage}
	}
	return p.Parse(ctx, grammar.Name, path, src)
}

// Tree is a parsed concrete syntax tree and the exact text it came from.
type Tree struct {
	raw      *sitter.Tree
	language string
	source   string
}

// Root returns the root node. The node is only valid until Close.
func (t *Tree) Root() Node {
	n, _ := wrapNode(t.raw.RootNode())
	return n
}

// Source returns the parsed text.
func (t *Tree) Source() string {
	return t.source
}

// Language returns the registry name of the grammar.
func (t *Tree) Language() string {
	return t.language
}

// HasError reports whether tree-sitter inserted ERROR or MISSING nodes.
func (t *Tree) HasError() bool {
	return t.raw.RootNode().HasError()
}

// SExpr returns the tree-sitter s-expression of the tree.
func (t *Tree) SExpr() string {
	return t.raw.RootNode().String()
}

// Close releases the tree-sitter tree. Safe to call more than once.
func (t *Tree) Close() {
	if t.raw != nil {
		t.raw.Close()
		t.raw = nil
	}
}

func countNodes(n *sitter.Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for i := 0; i < int(n.ChildCount()); i++ {
		total += countNodes(n.Child(i))
	}
	return total
}
