// # internal/engine/hierarchy/hierarchy.go
package hierarchy

import (
	"log/slog"
	"sort"

	"semresolve/internal/engine/names"
	"semresolve/internal/engine/types"
)

// Root is the universal top type.
const Root = types.Object

// Edge is one ancestor-to-subtype link.
type Edge struct {
	Ancestor string
	Child    string
}

type node struct {
	name     string
	parents  []int
	children []int
}

// Resolver answers subtype queries over a forest of named types stored in
// an arena. A type with several supertypes has several parents, so queries
// walk a DAG with a visited set. After Build returns the Resolver is
// read-only and safe for concurrent queries.
type Resolver struct {
	nodes  []node
	byName map[string]int
	root   int
	// pending holds nodes created as ancestors whose own parent is not yet
	// known. Finalize attaches any still parentless to the root.
	pending map[int]bool
	dropped int
	// declared holds the qualified names of project declarations.
	declared map[string]bool
}

// New returns a hierarchy holding only the seeded primitive and boxed
// relations.
func New() *Resolver {
	h := &Resolver{
		byName:   make(map[string]int),
		pending:  make(map[int]bool),
		declared: make(map[string]bool),
	}
	h.root = h.ensure(Root)
	delete(h.pending, h.root)
	h.seed()
	return h
}

func (h *Resolver) seed() {
	widening := []string{types.Double, types.Float, types.Long, types.Int, types.Short, types.Byte}
	h.Insert(Root, widening[0])
	for i := 0; i+1 < len(widening); i++ {
		h.Insert(widening[i], widening[i+1])
	}
	h.Insert(types.Int, types.Char)
	h.Insert(Root, types.Boolean)

	h.Insert(Root, types.Number)
	for _, p := range types.Primitives() {
		boxed, _ := types.Box(p)
		if types.IsNumeric(p) && p != types.Char {
			h.Insert(types.Number, boxed)
		} else {
			h.Insert(Root, boxed)
		}
	}
	h.Insert(Root, types.CharSequence)
	h.Insert(types.CharSequence, types.String)
}

// Build seeds a hierarchy and inserts every indexed declaration beneath its
// declared supertypes. Supertypes are resolved strictly first; names outside
// the project fall back to their lenient spelling and become opaque nodes.
func Build(ix *names.Index, resolver names.TypeResolver) *Resolver {
	h := New()
	for _, e := range ix.Entries() {
		h.declared[e.Qualified] = true
		ctx := ix.ContextFor(e)
		attached := false
		for _, written := range e.Decl.Descriptor.Ancestors() {
			ancestor := resolveAncestor(resolver, written, ctx)
			if ancestor == "" {
				continue
			}
			h.Insert(ancestor, e.Qualified)
			attached = true
		}
		if !attached {
			h.Insert(Root, e.Qualified)
		}
	}
	h.Finalize()
	return h
}

func resolveAncestor(r names.TypeResolver, written string, ctx names.Context) string {
	if qt, ok := r.ResolveStrict(written, ctx); ok {
		return qt.Name
	}
	return r.Resolve(written, ctx).Name
}

func (h *Resolver) ensure(name string) int {
	if i, ok := h.byName[name]; ok {
		return i
	}
	h.nodes = append(h.nodes, node{name: name})
	i := len(h.nodes) - 1
	h.byName[name] = i
	h.pending[i] = true
	return i
}

// Insert links child beneath ancestor, creating either node if needed. An
// edge that would close a cycle is dropped.
func (h *Resolver) Insert(ancestor, child string) {
	a := h.ensure(ancestor)
	c := h.ensure(child)
	if a == c {
		return
	}
	for _, existing := range h.nodes[a].children {
		if existing == c {
			return
		}
	}
	if h.reaches(c, a) {
		h.dropped++
		slog.Debug("dropping cyclic subtype edge", "ancestor", ancestor, "child", child)
		return
	}
	h.nodes[a].children = append(h.nodes[a].children, c)
	h.nodes[c].parents = append(h.nodes[c].parents, a)
	delete(h.pending, c)
}

// Finalize attaches every parentless node other than the root to the root.
func (h *Resolver) Finalize() {
	orphans := make([]int, 0, len(h.pending))
	for i := range h.pending {
		orphans = append(orphans, i)
	}
	sort.Ints(orphans)
	for _, i := range orphans {
		if i == h.root || len(h.nodes[i].parents) > 0 {
			delete(h.pending, i)
			continue
		}
		h.Insert(Root, h.nodes[i].name)
	}
}

// reaches reports whether to is in the subtree rooted at from.
func (h *Resolver) reaches(from, to int) bool {
	if from == to {
		return true
	}
	visited := make(map[int]bool)
	stack := []int{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == to {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		stack = append(stack, h.nodes[cur].children...)
	}
	return false
}

// IsSubtypeOrEqual reports whether the subtree rooted at ancestor contains
// descendant. Both are qualified names and may carry "[]" or "..." suffixes.
// The root accepts every reference type, inserted or not. Other names never
// inserted are equal only to themselves.
func (h *Resolver) IsSubtypeOrEqual(ancestor, descendant string) bool {
	aName, aDims := types.Split(ancestor)
	dName, dDims := types.Split(descendant)
	if aDims != dDims {
		return aName == Root && aDims == 0 && dDims > 0
	}
	if aName == dName {
		return true
	}
	// Primitive arrays have no subtypes.
	if aDims > 0 && (types.IsPrimitive(aName) || types.IsPrimitive(dName)) {
		return false
	}
	if aName == Root && !types.IsPrimitive(dName) && dName != types.Void {
		return true
	}
	a, ok := h.byName[aName]
	if !ok {
		return false
	}
	d, ok := h.byName[dName]
	if !ok {
		return false
	}
	return h.reaches(a, d)
}

// IsStrictSubtype is IsSubtypeOrEqual excluding equality.
func (h *Resolver) IsStrictSubtype(ancestor, descendant string) bool {
	aName, aDims := types.Split(ancestor)
	dName, dDims := types.Split(descendant)
	if aName == dName && aDims == dDims {
		return false
	}
	return h.IsSubtypeOrEqual(ancestor, descendant)
}

// Declared reports whether name is a project declaration, as opposed to a
// seeded or external type.
func (h *Resolver) Declared(name string) bool {
	return h.declared[name]
}

func (h *Resolver) Contains(name string) bool {
	_, ok := h.byName[name]
	return ok
}

// Children returns the direct subtypes of name, sorted.
func (h *Resolver) Children(name string) []string {
	i, ok := h.byName[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(h.nodes[i].children))
	for _, c := range h.nodes[i].children {
		out = append(out, h.nodes[c].name)
	}
	sort.Strings(out)
	return out
}

// Parents returns the direct supertypes of name, sorted.
func (h *Resolver) Parents(name string) []string {
	i, ok := h.byName[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(h.nodes[i].parents))
	for _, p := range h.nodes[i].parents {
		out = append(out, h.nodes[p].name)
	}
	sort.Strings(out)
	return out
}

// Edges lists every link ordered by ancestor then child.
func (h *Resolver) Edges() []Edge {
	var out []Edge
	for _, n := range h.nodes {
		for _, c := range n.children {
			out = append(out, Edge{Ancestor: n.name, Child: h.nodes[c].name})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ancestor != out[j].Ancestor {
			return out[i].Ancestor < out[j].Ancestor
		}
		return out[i].Child < out[j].Child
	})
	return out
}

func (h *Resolver) Len() int { return len(h.nodes) }

// Dropped counts edges rejected because they would close a cycle.
func (h *Resolver) Dropped() int { return h.dropped }
