// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command srcgen edits source files structurally and regenerates them with
// their original formatting.
//
//	srcgen render Main.java             # parse and regenerate (round trip)
//	srcgen render --check src/*.go      # verify round trip for many files
//	srcgen apply -s fix.yaml Main.java  # apply an edit script
//	srcgen tree Main.java               # dump the shadow tree
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	root, rt := newRootCmd()
	err := root.ExecuteContext(context.Background())
	if cerr := rt.close(context.Background()); cerr != nil {
		fmt.Fprintln(os.Stderr, "srcgen:", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}
