package names

import (
	"strings"
	"sync"

	"semresolve/internal/engine/ast"
	"semresolve/internal/engine/types"
	"semresolve/internal/shared/observability"
)


// QualifiedType is the outcome of resolving a written type name. Decl is nil
// for primitives and for names outside the project.
type QualifiedType struct {
	Name     string
	Decl     *ast.TypeDecl
	TopLevel *ast.TypeDecl
	Unit     *ast.CompilationUnit
}

// Resolved reports whether the name maps to a project declaration.
func (q QualifiedType) Resolved() bool { return q.Decl != nil }

// Path is the file declaring the type, or "".
func (q QualifiedType) Path() string {
	if q.Unit == nil {
		return ""
	}
	return q.Unit.Path
}

// Context is where a name is written: the innermost named type, its
// top-level type and the compilation unit. Enclosing and TopLevel may be nil
// for names outside any type, such as annotations on the unit.
type Context struct {
	Enclosing *ast.TypeDecl
	TopLevel  *ast.TypeDecl
	Unit      *ast.CompilationUnit
}

// TypeResolver turns written names into qualified types.
type TypeResolver interface {
	// Resolve never fails: unresolvable names come back as written.
	Resolve(name string, ctx Context) QualifiedType
	// ResolveStrict reports false instead of falling back.
	ResolveStrict(name string, ctx Context) (QualifiedType, bool)
}

// Stats counts step cache traffic.
type Stats struct {
	Hits   int
	Misses int
}

type declKey struct {
	decl *ast.TypeDecl
	name string
}

type stringKey struct {
	scope string
	name  string
}

type unitKey struct {
	unit *ast.CompilationUnit
	name string
}

type stepResult struct {
	qt    QualifiedType
	found bool
	// external is the qualified name a specific import or the implicit
	// namespace gives an unresolved name.
	external string
}

// Resolver runs the ordered name search. Each step has its own cache keyed
// by the inputs that step reads. A Resolver is not safe for concurrent use;
// wrap it with Synchronize to share it.
type Resolver struct {
	index *Index

	nested   *lruCache[declKey, stepResult]
	topLevel *lruCache[declKey, stepResult]
	pkg      *lruCache[stringKey, stepResult]
	imports  *lruCache[unitKey, stepResult]
	dir      *lruCache[stringKey, stepResult]
	implicit *lruCache[string, stepResult]
	absolute *lruCache[string, stepResult]
}

// NewResolver returns a resolver whose step caches keep every answer for the
// run. A positive cacheEntries bounds each cache, so evicted lookups are
// searched again.
func NewResolver(ix *Index, cacheEntries int) *Resolver {
	return &Resolver{
		index:    ix,
		nested:   newLRUCache[declKey, stepResult](cacheEntries),
		topLevel: newLRUCache[declKey, stepResult](cacheEntries),
		pkg:      newLRUCache[stringKey, stepResult](cacheEntries),
		imports:  newLRUCache[unitKey, stepResult](cacheEntries),
		dir:      newLRUCache[stringKey, stepResult](cacheEntries),
		implicit: newLRUCache[string, stepResult](cacheEntries),
		absolute: newLRUCache[string, stepResult](cacheEntries),
	}
}

func (r *Resolver) Index() *Index { return r.index }

func (r *Resolver) Resolve(name string, ctx Context) QualifiedType {
	res, clean := r.search(name, ctx)
	if res.found {
		return res.qt
	}
	if res.external != "" {
		return QualifiedType{Name: res.external}
	}
	return QualifiedType{Name: clean}
}

func (r *Resolver) ResolveStrict(name string, ctx Context) (QualifiedType, bool) {
	res, _ := r.search(name, ctx)
	return res.qt, res.found
}

// Stats sums hits and misses over all step caches.
func (r *Resolver) Stats() Stats {
	var s Stats
	add := func(h, m int) {
		s.Hits += h
		s.Misses += m
	}
	add(r.nested.hits, r.nested.misses)
	add(r.topLevel.hits, r.topLevel.misses)
	add(r.pkg.hits, r.pkg.misses)
	add(r.imports.hits, r.imports.misses)
	add(r.dir.hits, r.dir.misses)
	add(r.implicit.hits, r.implicit.misses)
	add(r.absolute.hits, r.absolute.misses)
	return s
}

// Reset drops every cached step result.
func (r *Resolver) Reset() {
	r.nested.reset()
	r.topLevel.reset()
	r.pkg.reset()
	r.imports.reset()
	r.dir.reset()
	r.implicit.reset()
	r.absolute.reset()
}

func (r *Resolver) search(name string, ctx Context) (stepResult, string) {
	clean, _ := types.Split(name)
	if clean == "" {
		return stepResult{}, clean
	}
	if types.IsPrimitive(clean) || clean == types.Void {
		return stepResult{qt: QualifiedType{Name: clean}, found: true}, clean
	}

	if strings.Contains(clean, ".") {
		if res := cached(r.absolute, "absolute", clean, func() stepResult { return r.lookupAbsolute(clean) }); res.found {
			return res, clean
		}
	}
	if ctx.Enclosing != nil {
		if res := cached(r.nested, "enclosing", declKey{ctx.Enclosing, clean}, func() stepResult {
			return r.searchSubtree(ctx.Enclosing, clean)
		}); res.found {
			return res, clean
		}
	}
	if ctx.TopLevel != nil && ctx.TopLevel != ctx.Enclosing {
		if res := cached(r.topLevel, "top_level", declKey{ctx.TopLevel, clean}, func() stepResult {
			return r.searchSubtree(ctx.TopLevel, clean)
		}); res.found {
			return res, clean
		}
	}

	var external string
	if ctx.Unit != nil {
		// Default-package units only see their own directory, below.
		if pkg := ctx.Unit.PackageName(); pkg != "" {
			if res := cached(r.pkg, "package", stringKey{pkg, clean}, func() stepResult {
				return r.searchPackage(pkg, clean, "")
			}); res.found {
				return res, clean
			}
		}
		res := cached(r.imports, "imports", unitKey{ctx.Unit, clean}, func() stepResult {
			return r.searchImports(ctx.Unit.Imports, clean)
		})
		if res.found {
			return res, clean
		}
		external = res.external

		dir := ctx.Unit.Dir()
		if res := cached(r.dir, "default_package", stringKey{dir, clean}, func() stepResult {
			return r.searchPackage("", clean, dir)
		}); res.found {
			return res, clean
		}
	}

	res := cached(r.implicit, "implicit", clean, func() stepResult { return r.searchImplicit(clean) })
	if res.found {
		return res, clean
	}
	if external == "" {
		external = res.external
	}

	return stepResult{external: external}, clean
}

func cached[K comparable](c *lruCache[K, stepResult], step string, key K, compute func() stepResult) stepResult {
	if res, ok := c.get(key); ok {
		observability.NameCacheLookups.WithLabelValues(step, "hit").Inc()
		return res
	}
	observability.NameCacheLookups.WithLabelValues(step, "miss").Inc()
	res := compute()
	c.put(key, res)
	return res
}

func (r *Resolver) found(e *Entry) stepResult {
	return stepResult{
		qt:    QualifiedType{Name: e.Qualified, Decl: e.Decl, TopLevel: e.TopLevel, Unit: e.Unit},
		found: true,
	}
}

// searchSubtree matches name against the trailing segments of the chains
// nested in decl, decl itself included. Shallower declarations win.
func (r *Resolver) searchSubtree(decl *ast.TypeDecl, name string) stepResult {
	for _, e := range r.index.subtree[decl] {
		if e.Chain == name || strings.HasSuffix(e.Chain, "."+name) {
			return r.found(e)
		}
	}
	return stepResult{}
}

// searchPackage matches a package-relative chain. A non-empty dir limits
// matches to units in that directory.
func (r *Resolver) searchPackage(pkg, name, dir string) stepResult {
	for _, e := range r.index.byPackage[pkg] {
		if e.Chain != name {
			continue
		}
		if dir != "" && e.Unit.Dir() != dir {
			continue
		}
		return r.found(e)
	}
	return stepResult{}
}

// searchImports tries single-type imports before wildcard imports. A
// single-type import that names something outside the project still yields
// its qualified name as the external fallback.
func (r *Resolver) searchImports(imports []*ast.ImportDecl, name string) stepResult {
	head, rest := name, ""
	if i := strings.IndexByte(name, '.'); i >= 0 {
		head, rest = name[:i], name[i:]
	}
	var external string
	for _, imp := range imports {
		if imp.Wildcard {
			continue
		}
		if types.SimpleName(imp.Name) != head {
			continue
		}
		candidate := imp.Name + rest
		if e, ok := r.index.Lookup(candidate); ok {
			return r.found(e)
		}
		if external == "" && !imp.Static {
			external = candidate
		}
	}
	for _, imp := range imports {
		if !imp.Wildcard {
			continue
		}
		if e, ok := r.index.Lookup(imp.Name + "." + name); ok {
			return r.found(e)
		}
	}
	return stepResult{external: external}
}

func (r *Resolver) searchImplicit(name string) stepResult {
	qualified, ok := types.Implicit(name)
	if !ok {
		return stepResult{}
	}
	if e, ok := r.index.Lookup(qualified); ok {
		return r.found(e)
	}
	return stepResult{external: qualified}
}

func (r *Resolver) lookupAbsolute(name string) stepResult {
	if e, ok := r.index.Lookup(name); ok {
		return r.found(e)
	}
	return stepResult{}
}

// Synchronized serializes access to a Resolver so workers can share it.
type Synchronized struct {
	mu sync.Mutex
	r  *Resolver
}

func Synchronize(r *Resolver) *Synchronized {
	return &Synchronized{r: r}
}

func (s *Synchronized) Resolve(name string, ctx Context) QualifiedType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Resolve(name, ctx)
}

func (s *Synchronized) ResolveStrict(name string, ctx Context) (QualifiedType, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.ResolveStrict(name, ctx)
}

func (s *Synchronized) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Stats()
}
