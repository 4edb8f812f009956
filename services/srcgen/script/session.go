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
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/srcgen/services/srcgen/edit"
	"github.com/AleutianAI/srcgen/services/srcgen/generate"
	"github.com/AleutianAI/srcgen/services/srcgen/shadow"
	"github.com/AleutianAI/srcgen/services/srcgen/syntax"
	"github.com/AleutianAI/srcgen/services/srcgen/telemetry"
)

var tracer = otel.Tracer("srcgen.script")

// Session is one source file opened for editing.
//
// Thread Safety: Not safe for concurrent use. Open one session per file.
type Session struct {
	// ID identifies the session in logs.
	ID string

	// Name is the source path or label.
	Name string

	// Language is the grammar the source was parsed with.
	Language string

	tree   *shadow.Tree
	parser *syntax.Parser
	logger *slog.Logger
}

// Open parses src and builds its shadow tree.
//
// Inputs:
//   - ctx: Context for parsing.
//   - parser: Parser and grammar registry.
//   - name: Source path. Its extension picks the grammar when language is "".
//   - language: Grammar name, or "".
//   - src: The source text.
//
// Outputs:
//   - *Session: The open session.
//   - error: Grammar lookup or parse failure.
func Open(ctx context.Context, parser *syntax.Parser, name, language string, src []byte) (*Session, error) {
	if language == "" {
		g, ok := parser.Registry().ForPath(name)
		if !ok {
			return nil, &syntax.ParseError{Name: name, Cause: syntax.ErrUnsupportedLanguage}
		}
		language = g.Name
	}

	tree, err := BuildTree(ctx, parser, language, name, src)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s := &Session{
		ID:       id,
		Name:     name,
		Language: language,
		tree:     tree,
		parser:   parser,
		logger:   slog.Default().With(slog.String("session", id), slog.String("file", name)),
	}
	s.logger.Debug("session opened",
		slog.String("language", language),
		slog.Int("nodes", tree.Len()))
	return s, nil
}

// Tree returns the session's shadow tree.
func (s *Session) Tree() *shadow.Tree {
	return s.tree
}

// Source returns the original text.
func (s *Session) Source() string {
	return s.tree.Source()
}

// Apply compiles sc against the session's tree and applies it.
//
// A failure part way leaves the earlier actions applied.
func (s *Session) Apply(ctx context.Context, sc *Script) error {
	ctx, sp := tracer.Start(ctx, "script.Session.Apply")
	defer sp.End()
	sp.SetAttributes(
		attribute.String("session", s.ID),
		attribute.Int("actions", len(sc.Actions)),
	)
	logger := telemetry.LoggerWithTrace(ctx, s.logger)

	actions, err := sc.Compile(ctx, s.tree, s.parser)
	if err != nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, "compile failed")
		return fmt.Errorf("compile script: %w", err)
	}
	if err := edit.Apply(ctx, s.tree, actions...); err != nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, "apply failed")
		logger.Warn("script failed", slog.String("error", err.Error()))
		return err
	}
	logger.Debug("script applied", slog.Int("actions", len(actions)))
	return nil
}

// Render regenerates the source text.
func (s *Session) Render(ctx context.Context) (string, error) {
	return generate.Render(ctx, s.tree)
}

// Diff renders and returns a unified diff against the original text.
func (s *Session) Diff(ctx context.Context) ([]byte, error) {
	out, err := s.Render(ctx)
	if err != nil {
		return nil, err
	}
	return generate.Diff(s.Name, s.Source(), out)
}

// Result is the outcome of Run.
type Result struct {
	SessionID string
	Output    string
	Changed   bool
	Duration  time.Duration
}

// Run opens src, applies sc and renders the result.
func Run(ctx context.Context, parser *syntax.Parser, name string, src []byte, sc *Script) (*Result, error) {
	start := time.Now()

	s, err := Open(ctx, parser, name, sc.Language, src)
	if err != nil {
		return nil, err
	}
	if err := s.Apply(ctx, sc); err != nil {
		return nil, err
	}
	out, err := s.Render(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{
		SessionID: s.ID,
		Output:    out,
		Changed:   out != s.Source(),
		Duration:  time.Since(start),
	}
	s.logger.Info("script run",
		slog.Int("actions", len(sc.Actions)),
		slog.Bool("changed", res.Changed),
		slog.Duration("duration", res.Duration))
	return res, nil
}
