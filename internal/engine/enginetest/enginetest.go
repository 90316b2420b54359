// Package enginetest builds projects from inline Java sources for tests.
package enginetest

import (
	"sort"
	"testing"

	"semresolve/internal/engine/ast"
	"semresolve/internal/engine/parser"
)

var shared = parser.NewParser(parser.NewGrammarLoader())

// Parse parses every source, keyed by path, into a project.
func Parse(tb testing.TB, sources map[string]string) *ast.Project {
	tb.Helper()
	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	project := ast.NewProject()
	for _, p := range paths {
		unit, err := shared.ParseFile(p, []byte(sources[p]))
		if err != nil {
			tb.Fatalf("parse %s: %v", p, err)
		}
		project.Add(unit)
	}
	return project
}

// Unit parses a single source.
func Unit(tb testing.TB, path, source string) *ast.CompilationUnit {
	tb.Helper()
	u, _ := Parse(tb, map[string]string{path: source}).Unit(path)
	return u
}

// FindType returns the first type declaration named name, searching nested
// and local declarations too.
func FindType(tb testing.TB, p *ast.Project, name string) *ast.TypeDecl {
	tb.Helper()
	var found *ast.TypeDecl
	for _, u := range p.Units() {
		ast.Inspect(u, func(n ast.Node) bool {
			if t, ok := n.(*ast.TypeDecl); ok && found == nil && t.Name() == name {
				found = t
			}
			return found == nil
		})
	}
	if found == nil {
		tb.Fatalf("type %s not found", name)
	}
	return found
}

// FindMethods returns the methods named name declared directly in t.
func FindMethods(t *ast.TypeDecl, name string) []*ast.MethodDecl {
	var out []*ast.MethodDecl
	for _, m := range t.Methods() {
		if m.Descriptor.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// FindMethod returns the single method named name declared in t.
func FindMethod(tb testing.TB, t *ast.TypeDecl, name string) *ast.MethodDecl {
	tb.Helper()
	ms := FindMethods(t, name)
	if len(ms) != 1 {
		tb.Fatalf("expected one method %s in %s, found %d", name, t.Name(), len(ms))
	}
	return ms[0]
}

// Calls returns every method call named name in the project, in path and
// source order.
func Calls(p *ast.Project, name string) []*ast.MethodCall {
	var out []*ast.MethodCall
	for _, u := range p.Units() {
		ast.Inspect(u, func(n ast.Node) bool {
			if c, ok := n.(*ast.MethodCall); ok && c.Name == name {
				out = append(out, c)
			}
			return true
		})
	}
	return out
}
