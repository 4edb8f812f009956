// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package syntax

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
)

// Grammar binds a tree-sitter language to a registry name and the file
// extensions it handles.
type Grammar struct {
	// Name is the canonical lowercase language name, e.g. "java".
	Name string

	// Extensions lists handled extensions including the leading dot.
	Extensions []string

	// Language is the tree-sitter grammar.
	Language *sitter.Language
}

// Registry manages grammars by language name and file extension.
//
// Description:
//
//	Registry provides the lookup the parser uses to turn a language name or
//	a path into a tree-sitter grammar. Later registrations overwrite earlier
//	ones for the same name or extension.
//
// Thread Safety:
//
//	Registry is fully thread-safe. Registration uses write locks, lookups use
//	read locks.
type Registry struct {
	mu sync.RWMutex

	byName      map[string]Grammar
	byExtension map[string]Grammar
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:      make(map[string]Grammar),
		byExtension: make(map[string]Grammar),
	}
}

// NewDefaultRegistry creates a Registry preloaded with the bundled grammars.
//
// Bundled: java, go, python, javascript, typescript, rust, bash, css, yaml.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Grammar{Name: "java", Extensions: []string{".java"}, Language: java.GetLanguage()})
	r.Register(Grammar{Name: "go", Extensions: []string{".go"}, Language: golang.GetLanguage()})
	r.Register(Grammar{Name: "python", Extensions: []string{".py", ".pyi"}, Language: python.GetLanguage()})
	r.Register(Grammar{Name: "javascript", Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}, Language: javascript.GetLanguage()})
	r.Register(Grammar{Name: "typescript", Extensions: []string{".ts", ".mts", ".cts"}, Language: typescript.GetLanguage()})
	r.Register(Grammar{Name: "rust", Extensions: []string{".rs"}, Language: rust.GetLanguage()})
	r.Register(Grammar{Name: "bash", Extensions: []string{".sh", ".bash"}, Language: bash.GetLanguage()})
	r.Register(Grammar{Name: "css", Extensions: []string{".css"}, Language: css.GetLanguage()})
	r.Register(Grammar{Name: "yaml", Extensions: []string{".yaml", ".yml"}, Language: yaml.GetLanguage()})
	return r
}

// Register adds a grammar under its name and all its extensions.
//
// Grammars with an empty name or nil language are ignored.
func (r *Registry) Register(g Grammar) {
	if g.Name == "" || g.Language == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byName[g.Name] = g
	for _, ext := range g.Extensions {
		r.byExtension[strings.ToLower(ext)] = g
	}
}

// ByName returns the grammar registered under name.
func (r *Registry) ByName(name string) (Grammar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byName[name]
	return g, ok
}

// ByExtension returns the grammar for ext (including the dot). Matching is
// case-insensitive.
func (r *Registry) ByExtension(ext string) (Grammar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byExtension[strings.ToLower(ext)]
	return g, ok
}

// ForPath returns the grammar matching the extension of path.
func (r *Registry) ForPath(path string) (Grammar, bool) {
	return r.ByExtension(filepath.Ext(path))
}

// Languages returns the registered language names, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
