package names

import (
	"sort"

	"semresolve/internal/engine/ast"
)

// Entry is one named type declaration reachable by a qualified name.
type Entry struct {
	Qualified string
	// Chain is the dotted name relative to the package, e.g. "Outer.Inner".
	Chain    string
	Decl     *ast.TypeDecl
	TopLevel *ast.TypeDecl
	Parent   *Entry
	Unit     *ast.CompilationUnit
}

// Index maps every member type declaration in a project to its qualified
// name. Local and anonymous classes are not indexed.
type Index struct {
	byQualified map[string]*Entry
	byDecl      map[*ast.TypeDecl]*Entry
	byPackage   map[string][]*Entry
	// subtree lists a declaration and its nested members, shallowest first.
	subtree map[*ast.TypeDecl][]*Entry
	entries []*Entry
}

func BuildIndex(p *ast.Project) *Index {
	ix := &Index{
		byQualified: make(map[string]*Entry),
		byDecl:      make(map[*ast.TypeDecl]*Entry),
		byPackage:   make(map[string][]*Entry),
		subtree:     make(map[*ast.TypeDecl][]*Entry),
	}
	for _, u := range p.Units() {
		for _, t := range u.Types {
			ix.addTree(u, t)
		}
	}
	sort.Slice(ix.entries, func(i, j int) bool {
		return ix.entries[i].Qualified < ix.entries[j].Qualified
	})
	return ix
}

func (ix *Index) addTree(u *ast.CompilationUnit, top *ast.TypeDecl) {
	rootEntry := ix.add(u, top, top, nil, top.Name())
	queue := []*Entry{rootEntry}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		for _, n := range e.Decl.NestedTypes() {
			child := ix.add(u, n, top, e, e.Chain+"."+n.Name())
			queue = append(queue, child)
			for anc := e; anc != nil; anc = anc.Parent {
				ix.subtree[anc.Decl] = append(ix.subtree[anc.Decl], child)
			}
		}
	}
}

func (ix *Index) add(u *ast.CompilationUnit, decl, top *ast.TypeDecl, parent *Entry, chain string) *Entry {
	qualified := chain
	if pkg := u.PackageName(); pkg != "" {
		qualified = pkg + "." + chain
	}
	e := &Entry{
		Qualified: qualified,
		Chain:     chain,
		Decl:      decl,
		TopLevel:  top,
		Parent:    parent,
		Unit:      u,
	}
	// First declaration wins on duplicate qualified names.
	if _, exists := ix.byQualified[qualified]; !exists {
		ix.byQualified[qualified] = e
	}
	ix.byDecl[decl] = e
	ix.byPackage[u.PackageName()] = append(ix.byPackage[u.PackageName()], e)
	ix.subtree[decl] = append(ix.subtree[decl], e)
	ix.entries = append(ix.entries, e)
	return e
}

// Lookup finds a declaration by its fully qualified name.
func (ix *Index) Lookup(qualified string) (*Entry, bool) {
	e, ok := ix.byQualified[qualified]
	return e, ok
}

// EntryFor returns the index entry of a member type declaration.
func (ix *Index) EntryFor(decl *ast.TypeDecl) (*Entry, bool) {
	e, ok := ix.byDecl[decl]
	return e, ok
}

// Entries returns all entries ordered by qualified name.
func (ix *Index) Entries() []*Entry {
	out := make([]*Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

func (ix *Index) Len() int { return len(ix.entries) }

// ContextFor returns the resolution context that applies inside decl.
func (ix *Index) ContextFor(e *Entry) Context {
	return Context{Enclosing: e.Decl, TopLevel: e.TopLevel, Unit: e.Unit}
}

// TypeParams lists type parameters visible inside the entry's declaration,
// innermost first.
func (ix *Index) TypeParams(e *Entry) []ast.TypeParam {
	var out []ast.TypeParam
	for cur := e; cur != nil; cur = cur.Parent {
		out = append(out, cur.Decl.Descriptor.TypeParams...)
	}
	return out
}
