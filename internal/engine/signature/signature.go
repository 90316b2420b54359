// Package signature compares method signatures and argument lists using the
// type hierarchy.
package signature

import (
	"strings"

	"semresolve/internal/engine/ast"
	"semresolve/internal/engine/hierarchy"
	"semresolve/internal/engine/names"
	"semresolve/internal/engine/types"
)

// Side is a method together with the place its types are written in.
type Side struct {
	Method *ast.MethodDescriptor
	// Owner declares the method. It may be anonymous.
	Owner   *ast.TypeDecl
	Context names.Context
	// TypeParams in scope besides the method's own, innermost first.
	TypeParams []ast.TypeParam
}

// Checker qualifies written types and applies the compatibility rules.
type Checker struct {
	Names     names.TypeResolver
	Hierarchy *hierarchy.Resolver
}

func NewChecker(r names.TypeResolver, h *hierarchy.Resolver) *Checker {
	return &Checker{Names: r, Hierarchy: h}
}

// Qualify resolves a written type in the side's context. Type parameters
// erase to their first bound, or to Object when unbounded; variadic
// parameters count as one extra dimension.
func (c *Checker) Qualify(ref ast.TypeRef, side Side) types.Instance {
	if ref.IsZero() {
		return types.Unknown()
	}
	name, dims := types.Split(ref.Name)
	dims += ref.Dims
	if ref.Variadic {
		dims++
	}
	if bound, ok := erase(name, side); ok {
		name = bound
	}
	if name == types.Object || types.IsPrimitive(name) || name == types.Void {
		return types.Of(name, dims)
	}
	qt := c.Names.Resolve(name, side.Context)
	if qt.Name == "" {
		return types.Unknown()
	}
	return types.Of(qt.Name, dims)
}

func erase(name string, side Side) (string, bool) {
	scopes := [][]ast.TypeParam{}
	if side.Method != nil {
		scopes = append(scopes, side.Method.TypeParams)
	}
	scopes = append(scopes, side.TypeParams)
	for _, params := range scopes {
		for _, tp := range params {
			if tp.Name != name {
				continue
			}
			if len(tp.Bounds) == 0 {
				return types.Object, true
			}
			bound, _ := types.Split(tp.Bounds[0])
			if bound == name {
				return types.Object, true
			}
			return bound, true
		}
	}
	return "", false
}

// Overrides reports whether candidate overrides ancestor. The ancestor must
// be an instance method that is neither final nor private and is visible
// from the candidate's package. Names and arity must match, return types
// must be covariant, and every ancestor parameter must accept the matching
// candidate parameter.
func (c *Checker) Overrides(candidate, ancestor Side) bool {
	cm, am := candidate.Method, ancestor.Method
	if cm.Name != am.Name || len(cm.Params) != len(am.Params) {
		return false
	}
	if am.IsStatic() || am.IsFinal() {
		return false
	}
	if !Visible(am, ancestor.Owner, ancestor.Context.Unit, candidate.Context.Unit) {
		return false
	}

	cr := c.Qualify(cm.ReturnType, candidate)
	ar := c.Qualify(am.ReturnType, ancestor)
	if cr.Dims != ar.Dims {
		return false
	}
	if !c.subtypeOrEqual(ar.Name, cr.Name) {
		return false
	}

	for i := range cm.Params {
		cp := c.Qualify(cm.Params[i].Type, candidate)
		ap := c.Qualify(am.Params[i].Type, ancestor)
		if cp.Dims != ap.Dims {
			return false
		}
		if !c.subtypeOrEqual(ap.Name, cp.Name) {
			return false
		}
	}
	return true
}

// subtypeOrEqual extends the hierarchy with external names: a type outside
// the project is spelled "java.util.List" after a single-type import but
// "List" after a wildcard one, so two external names match on their simple
// name.
func (c *Checker) subtypeOrEqual(ancestor, descendant string) bool {
	if c.Hierarchy.IsSubtypeOrEqual(ancestor, descendant) {
		return true
	}
	return c.external(ancestor) && c.external(descendant) &&
		types.SimpleName(ancestor) == types.SimpleName(descendant)
}

func (c *Checker) external(name string) bool {
	return !types.IsPrimitive(name) && name != types.Void && !c.Hierarchy.Declared(name)
}

// Visible reports whether a member declared in owner (inside unit from) can
// be seen from unit to. Interface members are implicitly public.
func Visible(m *ast.MethodDescriptor, owner *ast.TypeDecl, from, to *ast.CompilationUnit) bool {
	if m.IsPrivate() {
		return false
	}
	if m.IsPublic() || m.IsProtected() {
		return true
	}
	if owner != nil && owner.Kind == ast.KindInterface {
		return true
	}
	if from == nil || to == nil {
		return true
	}
	return from.PackageName() == to.PackageName()
}

// Accepts reports whether an argument of type arg can be passed to a
// parameter of type param.
func (c *Checker) Accepts(param, arg types.Instance) bool {
	if !arg.Known() || !param.Known() {
		return true
	}
	reference := param.Dims > 0 || !types.IsPrimitive(param.Name)
	if arg.Null || arg.Placeholder {
		return reference
	}
	if param.Dims != arg.Dims {
		return param.Name == types.Object && param.Dims == 0 && arg.Dims > 0
	}
	if c.subtypeOrEqual(param.Name, arg.Name) {
		return true
	}
	if param.Dims > 0 {
		return false
	}
	// Boxing then widening, or unboxing then widening.
	if boxed, ok := types.Box(arg.Name); ok && c.Hierarchy.IsSubtypeOrEqual(param.Name, boxed) {
		return true
	}
	if prim, ok := types.Unbox(arg.Name); ok && c.Hierarchy.IsSubtypeOrEqual(param.Name, prim) {
		return true
	}
	return false
}

// Applicable reports whether args fit the method's parameters. Variadic
// methods also accept the expanded form with any number of trailing
// arguments.
func (c *Checker) Applicable(side Side, args []types.Instance) bool {
	params := side.Method.Params
	if len(params) == len(args) {
		ok := true
		for i := range params {
			if !c.Accepts(c.Qualify(params[i].Type, side), args[i]) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	if !side.Method.IsVariadic() || len(args) < len(params)-1 {
		return false
	}
	last := len(params) - 1
	for i := 0; i < last; i++ {
		if !c.Accepts(c.Qualify(params[i].Type, side), args[i]) {
			return false
		}
	}
	elem := c.Qualify(params[last].Type, side).Element()
	for _, a := range args[last:] {
		if !c.Accepts(elem, a) {
			return false
		}
	}
	return true
}

// Key renders a stable signature string, e.g. "pkg.Outer.Inner#add(int,int[])".
// Parameter types are written forms with generic arguments removed.
func Key(owner string, m *ast.MethodDescriptor) string {
	var b strings.Builder
	b.WriteString(owner)
	b.WriteByte('#')
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		name, dims := types.Split(p.Type.Name)
		dims += p.Type.Dims
		if p.Type.Variadic {
			dims++
		}
		b.WriteString(name)
		b.WriteString(strings.Repeat("[]", dims))
	}
	b.WriteByte(')')
	return b.String()
}
