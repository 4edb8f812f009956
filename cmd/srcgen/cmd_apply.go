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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/srcgen/services/srcgen/script"
)

func newApplyCmd(rt *runtime) *cobra.Command {
	var (
		scriptPath string
		diff       bool
		write      bool
		colorMode  string
	)

	cmd := &cobra.Command{
		Use:   "apply -s SCRIPT FILE",
		Short: "Apply an edit script to a file",
		Long: `Applies the delete, restore and insert actions of a YAML edit script
to FILE and prints the regenerated text, or a unified diff with --diff.
--write replaces FILE with the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx := cmd.Context()

			colored, err := colorEnabled(colorMode)
			if err != nil {
				return err
			}

			f, err := os.Open(scriptPath)
			if err != nil {
				return fmt.Errorf("open script: %w", err)
			}
			sc, err := script.Decode(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("script %s: %w", scriptPath, err)
			}

			src, err := rt.readSource(path)
			if err != nil {
				return err
			}

			language := sc.Language
			if rt.cfg.Language != "" {
				language = rt.cfg.Language
			}
			s, err := script.Open(ctx, rt.parser, path, language, src)
			if err != nil {
				return err
			}
			log := rt.logger.With("session", s.ID, "file", path)

			if err := s.Apply(ctx, sc); err != nil {
				return err
			}
			out, err := s.Render(ctx)
			if err != nil {
				return err
			}
			log.Info("script applied", "actions", len(sc.Actions), "changed", out != s.Source())

			if write {
				info, err := os.Stat(path)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
			}

			if diff || rt.cfg.Diff {
				d, err := s.Diff(ctx)
				if err != nil {
					return err
				}
				return newDiffStyles(colored).writeDiff(cmd.OutOrStdout(), d)
			}
			if !write {
				fmt.Fprint(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "edit script (YAML)")
	cmd.Flags().BoolVar(&diff, "diff", false, "print a unified diff instead of the result")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to FILE")
	cmd.Flags().StringVar(&colorMode, "color", "auto", "diff color: auto, always, never")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}
