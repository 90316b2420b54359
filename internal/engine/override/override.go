// Package override decides, for every method declaration, whether it
// overrides a method inherited from a class or interface.
package override

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"semresolve/internal/engine/ast"
	"semresolve/internal/engine/hierarchy"
	"semresolve/internal/engine/names"
	"semresolve/internal/engine/signature"
	"semresolve/internal/engine/workers"
	"semresolve/internal/shared/observability"
)

// Filter selects the methods a run examines. A nil Filter selects all.
type Filter func(owner *ast.TypeDecl, m *ast.MethodDecl) bool

// Report summarizes one run.
type Report struct {
	Files      int
	Methods    int
	Overridden int
	ItemErrors int
	Duration   time.Duration
	Incomplete bool
}

// Resolver computes override flags. It shares the name resolver and the
// finished hierarchy with other passes; both must be safe for concurrent
// use when Run is given more than one worker.
type Resolver struct {
	index      *names.Index
	names      names.TypeResolver
	checker    *signature.Checker
	signatures *SignatureIndex
}

func New(ix *names.Index, r names.TypeResolver, h *hierarchy.Resolver) *Resolver {
	return &Resolver{
		index:      ix,
		names:      r,
		checker:    signature.NewChecker(r, h),
		signatures: NewSignatureIndex(),
	}
}

// Signatures returns the signature-keyed view of computed flags.
func (r *Resolver) Signatures() *SignatureIndex { return r.signatures }

// IsOverridden decides a single method. The annotation marker short-circuits
// the search.
func (r *Resolver) IsOverridden(m *ast.MethodDecl, owner *ast.TypeDecl, ctx names.Context, scopeParams []ast.TypeParam) bool {
	if m.Descriptor.HasMarker("Override") {
		return true
	}
	candidate := signature.Side{Method: m.Descriptor, Owner: owner, Context: ctx, TypeParams: scopeParams}
	// The owner counts as visited so an ancestor cycle cannot lead back to it.
	visited := map[*ast.TypeDecl]bool{owner: true}
	return r.search(candidate, owner, ctx, visited)
}

// search walks the declared ancestors of owner depth-first.
func (r *Resolver) search(candidate signature.Side, owner *ast.TypeDecl, ctx names.Context, visited map[*ast.TypeDecl]bool) bool {
	for _, written := range owner.Descriptor.Ancestors() {
		qt := r.names.Resolve(written, ctx)
		if !qt.Resolved() || visited[qt.Decl] {
			continue
		}
		visited[qt.Decl] = true
		entry, ok := r.index.EntryFor(qt.Decl)
		if !ok {
			continue
		}
		actx := r.index.ContextFor(entry)
		if inheritable(qt.Decl) {
			for _, am := range qt.Decl.Methods() {
				ancestor := signature.Side{
					Method:     am.Descriptor,
					Owner:      qt.Decl,
					Context:    actx,
					TypeParams: r.index.TypeParams(entry),
				}
				if r.checker.Overrides(candidate, ancestor) {
					return true
				}
			}
		}
		if r.search(candidate, qt.Decl, actx, visited) {
			return true
		}
	}
	return false
}

// inheritable limits the member search to classes and interfaces.
func inheritable(t *ast.TypeDecl) bool {
	return t.Kind == ast.KindClass || t.Kind == ast.KindInterface
}

// ResolveFile computes flags for every selected method in unit. A failure on
// one method is reported and the remaining methods are still processed.
func (r *Resolver) ResolveFile(unit *ast.CompilationUnit, filter Filter, l workers.Listener) (methods, overridden, failed int) {
	v := &fileVisitor{r: r, unit: unit, filter: filter, listener: l}
	ast.Walk(v, unit)
	return v.methods, v.overridden, v.failed
}

// Run processes every unit of the project on a pool of the given size.
func (r *Resolver) Run(ctx context.Context, p *ast.Project, size int, filter Filter, l workers.Listener) (Report, error) {
	ctx, span := observability.Tracer.Start(ctx, "override.Run")
	defer span.End()

	start := time.Now()
	var methods, overridden, failed, files atomic.Int64
	err := workers.Run(ctx, size, p.Units(), func(_ context.Context, u *ast.CompilationUnit) error {
		m, o, f := r.ResolveFile(u, filter, l)
		methods.Add(int64(m))
		overridden.Add(int64(o))
		failed.Add(int64(f))
		files.Add(1)
		return nil
	}, l)

	rep := Report{
		Files:      int(files.Load()),
		Methods:    int(methods.Load()),
		Overridden: int(overridden.Load()),
		ItemErrors: int(failed.Load()),
		Duration:   time.Since(start),
		Incomplete: err != nil,
	}
	observability.PassDuration.WithLabelValues("override").Observe(rep.Duration.Seconds())
	observability.OverriddenMethodsTotal.Add(float64(rep.Overridden))
	slog.Debug("override pass finished", "files", rep.Files, "methods", rep.Methods,
		"overridden", rep.Overridden, "item_errors", rep.ItemErrors, "incomplete", rep.Incomplete)
	return rep, err
}

// fileVisitor tracks the chain of enclosing type declarations.
type fileVisitor struct {
	r        *Resolver
	unit     *ast.CompilationUnit
	filter   Filter
	listener workers.Listener
	types    []*ast.TypeDecl

	methods, overridden, failed int
}

func (v *fileVisitor) Enter(n ast.Node) bool {
	switch x := n.(type) {
	case *ast.TypeDecl:
		v.types = append(v.types, x)
	case *ast.MethodDecl:
		v.visitMethod(x)
	}
	return true
}

func (v *fileVisitor) Leave(n ast.Node) {
	if _, ok := n.(*ast.TypeDecl); ok {
		v.types = v.types[:len(v.types)-1]
	}
}

func (v *fileVisitor) visitMethod(m *ast.MethodDecl) {
	if len(v.types) == 0 {
		return
	}
	owner := v.types[len(v.types)-1]
	if v.filter != nil && !v.filter(owner, m) {
		return
	}
	v.methods++
	err := workers.Guard(v.unit.Path, func() {
		ctx := v.context()
		overridden := v.r.IsOverridden(m, owner, ctx, v.typeParams())
		m.Descriptor.SetOverridden(overridden)
		v.r.signatures.Set(signature.Key(v.ownerName(), m.Descriptor), overridden)
		if overridden {
			v.overridden++
		}
	})
	if err != nil {
		v.failed++
		observability.ItemErrorsTotal.WithLabelValues("override").Inc()
		v.listener.ItemFailed(err)
	}
}

// context resolves names from the innermost named type outward.
func (v *fileVisitor) context() names.Context {
	ctx := names.Context{Unit: v.unit, TopLevel: v.types[0]}
	for i := len(v.types) - 1; i >= 0; i-- {
		if v.types[i].Kind != ast.KindAnonymous {
			ctx.Enclosing = v.types[i]
			break
		}
	}
	return ctx
}

func (v *fileVisitor) typeParams() []ast.TypeParam {
	var out []ast.TypeParam
	for i := len(v.types) - 1; i >= 0; i-- {
		out = append(out, v.types[i].Descriptor.TypeParams...)
	}
	return out
}

// ownerName is the qualified name of the innermost named type, with
// anonymous bodies rendered as "<anonymous>".
func (v *fileVisitor) ownerName() string {
	name := v.unit.PackageName()
	for _, t := range v.types {
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

// SignatureIndex maps method signature strings to override flags.
type SignatureIndex struct {
	mu    sync.RWMutex
	flags map[string]bool
}

func NewSignatureIndex() *SignatureIndex {
	return &SignatureIndex{flags: make(map[string]bool)}
}

// Set keeps the first flag stored for a signature.
func (s *SignatureIndex) Set(key string, overridden bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.flags[key]; !exists {
		s.flags[key] = overridden
	}
}

func (s *SignatureIndex) Lookup(key string) (overridden bool, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	overridden, ok = s.flags[key]
	return overridden, ok
}

func (s *SignatureIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.flags)
}

// Snapshot copies the index.
func (s *SignatureIndex) Snapshot() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out
}
