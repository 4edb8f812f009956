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
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/srcgen/services/srcgen/script"
	"github.com/AleutianAI/srcgen/services/srcgen/shadow"
)

func newTreeCmd(rt *runtime) *cobra.Command {
	var syntaxOnly bool

	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the shadow tree of a file with node spans",
		Long: `Prints one node per line, indented by depth, with its span. Spans are
what edit scripts use to address nodes. --syntax hides the synthesized
whitespace and newline leaves.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := rt.readSource(args[0])
			if err != nil {
				return err
			}
			s, err := script.Open(cmd.Context(), rt.parser, args[0], rt.cfg.Language, src)
			if err != nil {
				return err
			}

			t := s.Tree()
			if !syntaxOnly {
				fmt.Fprint(cmd.OutOrStdout(), t.String())
				return nil
			}

			var b strings.Builder
			t.Walk(t.Root(), func(id shadow.NodeID, depth int) bool {
				if t.Role(id).IsFormatting() {
					return false
				}
				b.WriteString(strings.Repeat("  ", depth))
				b.WriteString(t.Describe(id))
				b.WriteByte('\n')
				return true
			})
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&syntaxOnly, "syntax", false, "hide whitespace and newline leaves")
	return cmd
}

func newLanguagesCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the supported languages and their file extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := rt.parser.Registry()
			for _, name := range reg.Languages() {
				g, _ := reg.ByName(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", name, strings.Join(g.Extensions, " "))
			}
			return nil
		},
	}
}
