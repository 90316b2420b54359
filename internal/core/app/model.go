package app

import (
	"sort"
	"sync"

	"semresolve/internal/engine/ast"
	"semresolve/internal/engine/calls"
	"semresolve/internal/engine/hierarchy"
	"semresolve/internal/engine/names"
	"semresolve/internal/engine/override"
	"semresolve/internal/engine/scope"
	"semresolve/internal/engine/signature"
	"semresolve/internal/engine/types"
)

// Model answers queries against one analysed project. It is immutable after
// Analyze returns and safe for concurrent use.
type Model struct {
	project   *ast.Project
	index     *names.Index
	names     *names.Synchronized
	hierarchy *hierarchy.Resolver
	overrides *override.Resolver
	calls     *calls.Resolver

	methodsOnce sync.Once
	methods     []MethodRef
	sitesOnce   sync.Once
	sites       map[*ast.MethodCall]string
}

// MethodRef is a method declaration together with its owner's qualified
// name and its signature key.
type MethodRef struct {
	Owner     string
	Signature string
	Path      string
	Decl      *ast.MethodDecl
}

func (m *Model) Project() *ast.Project          { return m.project }
func (m *Model) Index() *names.Index            { return m.index }
func (m *Model) Hierarchy() *hierarchy.Resolver { return m.hierarchy }

func (m *Model) IsSubtypeOrEqual(ancestor, descendant string) bool {
	return m.hierarchy.IsSubtypeOrEqual(ancestor, descendant)
}

func (m *Model) IsStrictSubtype(ancestor, descendant string) bool {
	return m.hierarchy.IsStrictSubtype(ancestor, descendant)
}

// Resolve qualifies name as seen from ctx, falling back to the name as
// written when nothing matches.
func (m *Model) Resolve(name string, ctx names.Context) names.QualifiedType {
	return m.names.Resolve(name, ctx)
}

func (m *Model) ResolveStrict(name string, ctx names.Context) (names.QualifiedType, bool) {
	return m.names.ResolveStrict(name, ctx)
}

// ContextOf returns the resolution context inside the named type.
func (m *Model) ContextOf(qualified string) (names.Context, bool) {
	e, ok := m.index.Lookup(qualified)
	if !ok {
		return names.Context{}, false
	}
	return m.index.ContextFor(e), true
}

func (m *Model) Type(qualified string) (*ast.TypeDecl, bool) {
	e, ok := m.index.Lookup(qualified)
	if !ok {
		return nil, false
	}
	return e.Decl, true
}

// Infer returns the static type of e with the given scope, or the unknown
// instance.
func (m *Model) Infer(e ast.Expression, s *scope.Stack) types.Instance {
	return m.calls.Infer(e, s)
}

// Overridden reports the flag computed for d and whether the override pass
// visited it.
func (m *Model) Overridden(d *ast.MethodDecl) (bool, bool) {
	return d.Descriptor.Overridden()
}

func (m *Model) OverriddenBySignature(sig string) (bool, bool) {
	return m.overrides.Signatures().Lookup(sig)
}

// Signatures returns a copy of every computed signature flag.
func (m *Model) Signatures() map[string]bool {
	return m.overrides.Signatures().Snapshot()
}

// Usages returns the call sites bound to d, in source order.
func (m *Model) Usages(d *ast.MethodDecl) []*ast.MethodCall {
	out := d.Descriptor.Usages()
	sites := m.callSites()
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := sites[out[i]], sites[out[j]]
		if pi != pj {
			return pi < pj
		}
		a, b := out[i].Pos(), out[j].Pos()
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// CallPath returns the path of the file containing call.
func (m *Model) CallPath(call *ast.MethodCall) (string, bool) {
	p, ok := m.callSites()[call]
	return p, ok
}

// Methods lists every method declared in the project, ordered by path and
// position. Methods of anonymous bodies carry "<anonymous>" in Owner.
func (m *Model) Methods() []MethodRef {
	m.methodsOnce.Do(func() {
		for _, u := range m.project.Units() {
			c := &methodCollector{unit: u}
			ast.Walk(c, u)
			m.methods = append(m.methods, c.out...)
		}
	})
	return m.methods
}

// FindMethods returns the methods of the named type with the given name.
func (m *Model) FindMethods(owner, name string) []MethodRef {
	var out []MethodRef
	for _, ref := range m.Methods() {
		if ref.Owner == owner && ref.Decl.Descriptor.Name == name {
			out = append(out, ref)
		}
	}
	return out
}

func (m *Model) callSites() map[*ast.MethodCall]string {
	m.sitesOnce.Do(func() {
		m.sites = make(map[*ast.MethodCall]string)
		for _, u := range m.project.Units() {
			path := u.Path
			ast.Inspect(u, func(n ast.Node) bool {
				if call, ok := n.(*ast.MethodCall); ok {
					m.sites[call] = path
				}
				return true
			})
		}
	})
	return m.sites
}

type methodCollector struct {
	unit  *ast.CompilationUnit
	types []*ast.TypeDecl
	out   []MethodRef
}

func (c *methodCollector) Enter(n ast.Node) bool {
	switch x := n.(type) {
	case *ast.TypeDecl:
		c.types = append(c.types, x)
	case *ast.MethodDecl:
		if len(c.types) > 0 {
			owner := c.owner()
			c.out = append(c.out, MethodRef{
				Owner:     owner,
				Signature: signature.Key(owner, x.Descriptor),
				Path:      c.unit.Path,
				Decl:      x,
			})
		}
	}
	return true
}

func (c *methodCollector) Leave(n ast.Node) {
	if _, ok := n.(*ast.TypeDecl); ok {
		c.types = c.types[:len(c.types)-1]
	}
}

func (c *methodCollector) owner() string {
	name := c.unit.PackageName()
	for _, t := range c.types {
		segment := t.Name()
		if t.Kind == ast.KindAnonymous {
			segment = "<anonymous>"
		}
		if name == "" {
			name = segment
		} else {
			name += "." + segment
		}
	}
	return name
}
