// # internal/engine/calls/calls.go
package calls

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"semresolve/internal/engine/ast"
	"semresolve/internal/engine/hierarchy"
	"semresolve/internal/engine/names"
	"semresolve/internal/engine/scope"
	"semresolve/internal/engine/signature"
	"semresolve/internal/engine/types"
	"semresolve/internal/engine/workers"
	"semresolve/internal/shared/observability"
)

// Report summarizes one usage pass.
type Report struct {
	Files      int
	Calls      int
	Resolved   int
	ItemErrors int
	Duration   time.Duration
	Incomplete bool
}

// Resolver infers expression types and binds method calls to declarations.
type Resolver struct {
	index   *names.Index
	names   names.TypeResolver
	checker *signature.Checker
}

func New(ix *names.Index, r names.TypeResolver, h *hierarchy.Resolver) *Resolver {
	return &Resolver{index: ix, names: r, checker: signature.NewChecker(r, h)}
}

// Infer returns the static type of e at the position described by s. The
// zero Instance means unknown.
func (r *Resolver) Infer(e ast.Expression, s *scope.Stack) types.Instance {
	return r.session(s).infer(e)
}

// Resolve binds call to the declaration it invokes. It records nothing.
func (r *Resolver) Resolve(call *ast.MethodCall, s *scope.Stack) (*ast.MethodDecl, bool) {
	t, ok := r.session(s).resolve(call)
	if !ok {
		return nil, false
	}
	return t.method, true
}

func (s *session) resolve(call *ast.MethodCall) (*target, bool) {
	if t, seen := s.memo[call]; seen {
		return t, t != nil
	}
	t := s.search(call)
	s.memo[call] = t
	return t, t != nil
}

func (s *session) search(call *ast.MethodCall) *target {
	args := make([]types.Instance, len(call.Args))
	for i, a := range call.Args {
		args[i] = s.infer(a)
	}
	visited := make(map[*ast.TypeDecl]bool)

	switch obj := call.Object.(type) {
	case nil:
		// Active body, enclosing type and its ancestors, then lexically
		// outer types. A static context, or a static nested type, only
		// reaches static methods further out.
		static := s.stack.IsStatic()
		for _, t := range s.stack.EnclosingTypes() {
			if found := s.searchType(t, s.declContext(t), call.Name, args, static, visited); found != nil {
				return found
			}
			static = static || implicitlyStatic(t)
		}
		return nil
	case *ast.ThisExpr:
		decl, ok := s.thisDecl(obj.Qualifier)
		if !ok {
			return nil
		}
		return s.searchType(decl, s.declContext(decl), call.Name, args, false, visited)
	case *ast.SuperExpr:
		decl, ok := s.thisDecl(obj.Qualifier)
		if !ok {
			return nil
		}
		visited[decl] = true
		return s.searchAncestors(decl, s.declContext(decl), call.Name, args, false, visited)
	default:
		recv := s.infer(obj)
		if !recv.Known() || recv.Null || recv.Dims > 0 {
			return nil
		}
		e, ok := s.r.index.Lookup(recv.Name)
		if !ok {
			return nil
		}
		return s.searchType(e.Decl, s.declContext(e.Decl), call.Name, args, false, visited)
	}
}

// implicitlyStatic reports whether a nested t has no enclosing instance.
func implicitlyStatic(t *ast.TypeDecl) bool {
	switch t.Kind {
	case ast.KindClass:
		return t.Descriptor.IsStatic()
	case ast.KindAnonymous:
		return false
	}
	return true
}

// searchType tries decl's own methods in declaration order, then its
// ancestors depth-first. With static set, instance methods are skipped.
func (s *session) searchType(decl *ast.TypeDecl, side signature.Side, name string, args []types.Instance, static bool, visited map[*ast.TypeDecl]bool) *target {
	if visited[decl] {
		return nil
	}
	visited[decl] = true
	for _, m := range decl.Methods() {
		if m.Descriptor.Name != name || static && !m.Descriptor.IsStatic() {
			continue
		}
		candidate := side
		candidate.Method = m.Descriptor
		if s.r.checker.Applicable(candidate, args) {
			return &target{method: m, side: candidate}
		}
	}
	return s.searchAncestors(decl, side, name, args, static, visited)
}

func (s *session) searchAncestors(decl *ast.TypeDecl, side signature.Side, name string, args []types.Instance, static bool, visited map[*ast.TypeDecl]bool) *target {
	for _, written := range decl.Descriptor.Ancestors() {
		qt := s.r.names.Resolve(written, side.Context)
		if !qt.Resolved() {
			continue
		}
		if found := s.searchType(qt.Decl, s.declContext(qt.Decl), name, args, static, visited); found != nil {
			return found
		}
	}
	return nil
}

// ResolveFile records a usage on every call in unit that binds to a
// declaration. A failure on one call is reported and the walk continues.
func (r *Resolver) ResolveFile(unit *ast.CompilationUnit, l workers.Listener) (calls, resolved, failed int) {
	v := &fileVisitor{sess: r.session(scope.New()), path: unit.Path, listener: l}
	ast.Walk(v, unit)
	return v.calls, v.resolved, v.failed
}

// Run processes every unit of the project on a pool of the given size.
func (r *Resolver) Run(ctx context.Context, p *ast.Project, size int, l workers.Listener) (Report, error) {
	ctx, span := observability.Tracer.Start(ctx, "calls.Run")
	defer span.End()

	start := time.Now()
	var calls, resolved, failed, files atomic.Int64
	err := workers.Run(ctx, size, p.Units(), func(_ context.Context, u *ast.CompilationUnit) error {
		c, res, f := r.ResolveFile(u, l)
		calls.Add(int64(c))
		resolved.Add(int64(res))
		failed.Add(int64(f))
		files.Add(1)
		return nil
	}, l)

	rep := Report{
		Files:      int(files.Load()),
		Calls:      int(calls.Load()),
		Resolved:   int(resolved.Load()),
		ItemErrors: int(failed.Load()),
		Duration:   time.Since(start),
		Incomplete: err != nil,
	}
	observability.PassDuration.WithLabelValues("usages").Observe(rep.Duration.Seconds())
	observability.UsagesTotal.Add(float64(rep.Resolved))
	slog.Debug("usage pass finished", "files", rep.Files, "calls", rep.Calls,
		"resolved", rep.Resolved, "item_errors", rep.ItemErrors, "incomplete", rep.Incomplete)
	return rep, err
}

type fileVisitor struct {
	sess     *session
	path     string
	listener workers.Listener

	calls, resolved, failed int
}

func (v *fileVisitor) Enter(n ast.Node) bool {
	v.sess.stack.Push(n)
	if call, ok := n.(*ast.MethodCall); ok {
		v.visitCall(call)
	}
	return true
}

func (v *fileVisitor) Leave(ast.Node) {
	v.sess.stack.Pop()
}

func (v *fileVisitor) visitCall(call *ast.MethodCall) {
	v.calls++
	err := workers.Guard(v.path, func() {
		t, ok := v.sess.resolve(call)
		if !ok {
			return
		}
		t.method.Descriptor.AddUsage(call)
		v.resolved++
	})
	if err != nil {
		v.failed++
		observability.ItemErrorsTotal.WithLabelValues("usages").Inc()
		v.listener.ItemFailed(err)
	}
}
