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

	"github.com/AleutianAI/srcgen/services/srcgen/edit"
	"github.com/AleutianAI/srcgen/services/srcgen/shadow"
	"github.com/AleutianAI/srcgen/services/srcgen/syntax"
)

// Compile turns the script's entries into edit actions against main.
//
// Description:
//
//	Delete entries with children become edit.DeleteChildren, the others
//	edit.DeleteNode. Insert entries parse their fragment, import the
//	selected subtree into main as a detached merge node, and become the
//	matching edit.InsertSibling. Nothing is attached until the actions are
//	applied.
//
// Inputs:
//   - ctx: Context for fragment parsing.
//   - main: The tree the actions will be applied to.
//   - parser: Parser used for fragments.
//
// Outputs:
//   - []edit.Action: One action per entry, in order.
//   - error: Fragment parse or import failure, wrapped with the entry index.
func (s *Script) Compile(ctx context.Context, main *shadow.Tree, parser *syntax.Parser) ([]edit.Action, error) {
	actions := make([]edit.Action, 0, len(s.Actions))

	for i, e := range s.Actions {
		switch {
		case e.Delete != nil:
			sp, err := toSpan(e.Delete.Span)
			if err != nil {
				return nil, &ValidationError{Index: i, Field: "delete.span", Reason: err.Error()}
			}
			if len(e.Delete.Children) > 0 {
				actions = append(actions, edit.DeleteChildren{Span: sp, Types: e.Delete.Children})
			} else {
				actions = append(actions, edit.DeleteNode{Span: sp})
			}

		case e.Restore != nil:
			sp, err := toSpan(e.Restore.Span)
			if err != nil {
				return nil, &ValidationError{Index: i, Field: "restore.span", Reason: err.Error()}
			}
			actions = append(actions, edit.RestoreNode{Span: sp})

		case e.Insert != nil:
			a, err := s.compileInsert(ctx, i, e.Insert, main, parser)
			if err != nil {
				return nil, fmt.Errorf("action %d: %w", i, err)
			}
			actions = append(actions, a)

		default:
			return nil, &ValidationError{Index: i, Field: "action", Reason: "empty entry"}
		}
	}
	return actions, nil
}

func (s *Script) compileInsert(ctx context.Context, i int, in *InsertEntry, main *shadow.Tree, parser *syntax.Parser) (edit.Action, error) {
	ref, err := toSpan(in.Ref)
	if err != nil {
		return nil, &ValidationError{Index: i, Field: "insert.ref", Reason: err.Error()}
	}
	sel, err := toSpan(in.Select)
	if err != nil {
		return nil, &ValidationError{Index: i, Field: "insert.select", Reason: err.Error()}
	}

	language := in.Language
	if language == "" {
		language = s.Language
	}
	frag, err := BuildTree(ctx, parser, language, fmt.Sprintf("fragment[%d]", i), []byte(in.Fragment))
	if err != nil {
		return nil, err
	}

	m, err := main.Import(frag, sel, shadow.Placement{
		Ref:        ref,
		Before:     in.Position == PositionBefore,
		AffectsRow: in.AffectsRow,
	})
	if err != nil {
		return nil, err
	}
	return edit.InsertMerge(main, m)
}

// BuildTree parses src and builds its shadow tree. The parser tree is
// closed before returning.
func BuildTree(ctx context.Context, parser *syntax.Parser, language, name string, src []byte) (*shadow.Tree, error) {
	parsed, err := parser.Parse(ctx, language, name, src)
	if err != nil {
		return nil, err
	}
	defer parsed.Close()
	return shadow.Build(parsed.Root(), parsed.Source())
}
