// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/srcgen/services/srcgen/script"
)

// ErrRoundTrip indicates a file that does not regenerate byte for byte.
var ErrRoundTrip = errors.New("regenerated text differs from source")

type renderResult struct {
	path   string
	output string
	err    error
}

func newRenderCmd(rt *runtime) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Parse files and regenerate them from the shadow tree",
		Long: `Parses each file, builds its shadow tree and regenerates the text.
Without edits the output is identical to the input; --check verifies that
for every file instead of printing it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := rt.renderAll(cmd, args)

			failed := 0
			out := cmd.OutOrStdout()
			for _, r := range results {
				switch {
				case r.err != nil:
					failed++
					rt.logger.Error("render failed", "file", r.path, "error", r.err.Error())
				case check:
					fmt.Fprintf(out, "ok %s\n", r.path)
				default:
					fmt.Fprint(out, r.output)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "only verify that each file round-trips")
	return cmd
}

// renderAll renders the files concurrently, bounded by the configured
// concurrency. Results keep the argument order.
func (rt *runtime) renderAll(cmd *cobra.Command, paths []string) []renderResult {
	results := make([]renderResult, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(rt.cfg.Concurrency)

	for i, path := range paths {
		g.Go(func() error {
			results[i] = renderResult{path: path}

			src, err := rt.readSource(path)
			if err != nil {
				results[i].err = err
				return nil
			}
			s, err := script.Open(ctx, rt.parser, path, rt.cfg.Language, src)
			if err != nil {
				results[i].err = err
				return nil
			}
			out, err := s.Render(ctx)
			if err != nil {
				results[i].err = err
				return nil
			}
			if out != string(src) {
				results[i].err = fmt.Errorf("%s: %w", path, ErrRoundTrip)
				return nil
			}
			results[i].output = out
			slog.Debug("rendered file", slog.String("file", path), slog.String("session", s.ID))
			return nil
		})
	}
	_ = g.Wait()
	return results
}
