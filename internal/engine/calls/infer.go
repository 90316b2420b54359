package calls

import (
	"semresolve/internal/engine/ast"
	"semresolve/internal/engine/names"
	"semresolve/internal/engine/scope"
	"semresolve/internal/engine/signature"
	"semresolve/internal/engine/types"
)

// target is a resolved call: the declaration and the context its types
// are written in.
type target struct {
	method *ast.MethodDecl
	side   signature.Side
}

// session resolves expressions at the position described by its stack.
// Call results are memoized per call node, so resolving an outer call and
// later visiting its nested calls does the search once.
type session struct {
	r     *Resolver
	stack *scope.Stack
	memo  map[*ast.MethodCall]*target
}

func (r *Resolver) session(s *scope.Stack) *session {
	return &session{r: r, stack: s, memo: make(map[*ast.MethodCall]*target)}
}

// context is the name resolution context at the top of the stack.
func (s *session) context() names.Context {
	ctx := names.Context{Unit: s.stack.Unit()}
	if named, ok := s.stack.LookupNamedType(); ok {
		ctx.Enclosing = named
	}
	if enclosing := s.stack.EnclosingTypes(); len(enclosing) > 0 {
		ctx.TopLevel = enclosing[len(enclosing)-1]
	}
	return ctx
}

func (s *session) here() signature.Side {
	return signature.Side{Context: s.context(), TypeParams: s.stack.TypeParams()}
}

func (s *session) qualify(ref ast.TypeRef) types.Instance {
	return s.r.checker.Qualify(ref, s.here())
}

// declContext is the context inside decl. Declarations outside the index
// (local and anonymous classes) borrow the context at the stack top.
func (s *session) declContext(decl *ast.TypeDecl) signature.Side {
	if e, ok := s.r.index.EntryFor(decl); ok {
		return signature.Side{Owner: decl, Context: s.r.index.ContextFor(e), TypeParams: s.r.index.TypeParams(e)}
	}
	side := s.here()
	side.Owner = decl
	side.TypeParams = append(append([]ast.TypeParam{}, decl.Descriptor.TypeParams...), side.TypeParams...)
	return side
}

func (s *session) infer(e ast.Expression) types.Instance {
	switch x := e.(type) {
	case nil:
		return types.Unknown()
	case *ast.Literal:
		return literalType(x)
	case *ast.ParenExpr:
		return s.infer(x.X)
	case *ast.UnaryExpr:
		return s.unary(x)
	case *ast.BinaryExpr:
		return s.binary(x)
	case *ast.TernaryExpr:
		return s.ternary(x)
	case *ast.CastExpr:
		return s.qualify(x.Type)
	case *ast.InstanceOfExpr:
		return types.Of(types.Boolean, 0)
	case *ast.AssignExpr:
		return s.infer(x.Target)
	case *ast.ArrayAccess:
		return s.infer(x.Array).Element()
	case *ast.ArrayCreation:
		elem := s.qualify(ast.TypeRef{Name: x.Elem.Name})
		if !elem.Known() {
			return elem
		}
		return types.Of(elem.Name, x.Dims())
	case *ast.ArrayInit:
		if len(x.Values) == 0 {
			return types.Unknown()
		}
		first := s.infer(x.Values[0])
		if !first.Known() || first.Null {
			return types.Unknown()
		}
		return types.Of(first.Name, first.Dims+1)
	case *ast.ObjectCreation:
		return s.qualify(x.Type)
	case *ast.LambdaExpr, *ast.MethodRef:
		return types.PlaceholderType()
	case *ast.ClassLiteral:
		return types.Of(types.Class, 0)
	case *ast.ThisExpr:
		return s.thisType(x)
	case *ast.SuperExpr:
		return s.superType(x)
	case *ast.NameExpr:
		return s.name(x.Name)
	case *ast.FieldAccess:
		return s.fieldAccess(x)
	case *ast.MethodCall:
		t, ok := s.resolve(x)
		if !ok {
			return types.Unknown()
		}
		side := t.side
		side.Method = t.method.Descriptor
		return s.r.checker.Qualify(t.method.Descriptor.ReturnType, side)
	case *ast.UnknownExpr:
		return types.Unknown()
	default:
		return types.Unknown()
	}
}

func literalType(l *ast.Literal) types.Instance {
	switch l.Kind {
	case ast.LitInt:
		return types.Of(types.Int, 0)
	case ast.LitLong:
		return types.Of(types.Long, 0)
	case ast.LitFloat:
		return types.Of(types.Float, 0)
	case ast.LitDouble:
		return types.Of(types.Double, 0)
	case ast.LitChar:
		return types.Of(types.Char, 0)
	case ast.LitString:
		return types.Of(types.String, 0)
	case ast.LitBool:
		return types.Of(types.Boolean, 0)
	case ast.LitNull:
		return types.NullType()
	default:
		return types.Unknown()
	}
}

func isNumeric(t types.Instance) bool {
	return t.Known() && t.Dims == 0 && !t.Null && types.IsNumeric(t.Name)
}

func isBoolean(t types.Instance) bool {
	return t.Known() && t.Dims == 0 && types.IsBoolean(t.Name)
}

func isString(t types.Instance) bool {
	return t.Known() && t.Dims == 0 && !t.Null && t.Name == types.String
}

func (s *session) unary(x *ast.UnaryExpr) types.Instance {
	if x.Op == "!" {
		return types.Of(types.Boolean, 0)
	}
	t := s.infer(x.X)
	switch x.Op {
	case "-", "+", "~":
		if isNumeric(t) {
			return types.Of(types.PromoteUnary(t.Name), 0)
		}
	}
	return t
}

func (s *session) binary(x *ast.BinaryExpr) types.Instance {
	switch x.Op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return types.Of(types.Boolean, 0)
	}
	l, r := s.infer(x.Left), s.infer(x.Right)
	if x.Op == "+" && (isString(l) || isString(r)) {
		return types.Of(types.String, 0)
	}
	switch x.Op {
	case "<<", ">>", ">>>":
		if isNumeric(l) {
			return types.Of(types.PromoteUnary(l.Name), 0)
		}
		return types.Unknown()
	case "&", "|", "^":
		if isBoolean(l) && isBoolean(r) {
			return types.Of(types.Boolean, 0)
		}
	}
	if isNumeric(l) && isNumeric(r) {
		return types.Of(types.Promote(l.Name, r.Name), 0)
	}
	return types.Unknown()
}

func (s *session) ternary(x *ast.TernaryExpr) types.Instance {
	a, b := s.infer(x.Then), s.infer(x.Else)
	switch {
	case a.Null && b.Null:
		return types.Of(types.Object, 0)
	case a.Null:
		return b
	case b.Null:
		return a
	case !a.Known():
		return b
	default:
		return a
	}
}

// name infers a bare identifier: variables first, then fields of the
// enclosing types and their ancestors, then type names.
func (s *session) name(name string) types.Instance {
	if v, ok := s.stack.LookupVariable(name); ok {
		if v.Type.Name == "var" {
			return s.inferVar(v)
		}
		return s.qualify(v.Type)
	}
	visited := make(map[*ast.TypeDecl]bool)
	for _, t := range s.stack.EnclosingTypes() {
		if inst, ok := s.field(t, s.declContext(t), name, visited); ok {
			return inst
		}
	}
	return s.typeName(name)
}

func (s *session) inferVar(v scope.Variable) types.Instance {
	d, ok := v.Decl.(*ast.LocalVarDecl)
	if !ok {
		return types.Unknown()
	}
	for _, vd := range d.Vars {
		if vd.Name == v.Name && vd.Init != nil {
			return s.infer(vd.Init)
		}
	}
	return types.Unknown()
}

// typeName treats name as a type when it resolves to a declaration or to a
// qualified external name.
func (s *session) typeName(name string) types.Instance {
	ctx := s.context()
	if qt, ok := s.r.names.ResolveStrict(name, ctx); ok {
		return types.Of(qt.Name, 0)
	}
	if qt := s.r.names.Resolve(name, ctx); qt.Name != name {
		return types.Of(qt.Name, 0)
	}
	return types.Unknown()
}

// field looks up a field or enum constant in decl, then in its ancestors.
func (s *session) field(decl *ast.TypeDecl, side signature.Side, name string, visited map[*ast.TypeDecl]bool) (types.Instance, bool) {
	if visited[decl] {
		return types.Unknown(), false
	}
	visited[decl] = true
	for _, st := range decl.Body {
		switch f := st.(type) {
		case *ast.FieldDecl:
			for _, v := range f.Vars {
				if v.Name == name {
					ref := f.Type
					ref.Dims += v.Dims
					return s.r.checker.Qualify(ref, side), true
				}
			}
		case *ast.EnumConstantDecl:
			if f.Name == name {
				if e, ok := s.r.index.EntryFor(decl); ok {
					return types.Of(e.Qualified, 0), true
				}
				return types.Unknown(), true
			}
		}
	}
	for _, written := range decl.Descriptor.Ancestors() {
		qt := s.r.names.Resolve(written, side.Context)
		if !qt.Resolved() {
			continue
		}
		if inst, ok := s.field(qt.Decl, s.declContext(qt.Decl), name, visited); ok {
			return inst, true
		}
	}
	return types.Unknown(), false
}

func (s *session) fieldAccess(x *ast.FieldAccess) types.Instance {
	obj := s.infer(x.Object)
	if obj.Known() && !obj.Null {
		if obj.Dims > 0 {
			if x.Field == "length" {
				return types.Of(types.Int, 0)
			}
			return types.Unknown()
		}
		if e, ok := s.r.index.Lookup(obj.Name); ok {
			if inst, ok := s.field(e.Decl, s.declContext(e.Decl), x.Field, make(map[*ast.TypeDecl]bool)); ok {
				return inst
			}
		}
	}
	if dotted, ok := dottedName(x); ok {
		if qt, ok := s.r.names.ResolveStrict(dotted, s.context()); ok {
			return types.Of(qt.Name, 0)
		}
	}
	return types.Unknown()
}

// dottedName renders a NameExpr/FieldAccess chain such as "a.b.C".
func dottedName(e ast.Expression) (string, bool) {
	switch x := e.(type) {
	case *ast.NameExpr:
		return x.Name, true
	case *ast.FieldAccess:
		head, ok := dottedName(x.Object)
		if !ok {
			return "", false
		}
		return head + "." + x.Field, true
	default:
		return "", false
	}
}

func (s *session) thisType(x *ast.ThisExpr) types.Instance {
	decl, ok := s.thisDecl(x.Qualifier)
	if !ok {
		return types.Unknown()
	}
	if e, ok := s.r.index.EntryFor(decl); ok {
		return types.Of(e.Qualified, 0)
	}
	if decl.Kind == ast.KindAnonymous {
		if anc := decl.Descriptor.Ancestors(); len(anc) > 0 {
			return types.Of(s.r.names.Resolve(anc[0], s.context()).Name, 0)
		}
	}
	return types.Unknown()
}

// thisDecl finds the type "this" or "Qualifier.this" refers to.
func (s *session) thisDecl(qualifier string) (*ast.TypeDecl, bool) {
	if qualifier == "" {
		return s.stack.LookupEnclosingType()
	}
	simple := types.SimpleName(qualifier)
	for _, t := range s.stack.EnclosingTypes() {
		if t.Kind != ast.KindAnonymous && t.Name() == simple {
			return t, true
		}
	}
	return nil, false
}

func (s *session) superType(x *ast.SuperExpr) types.Instance {
	decl, ok := s.thisDecl(x.Qualifier)
	if !ok {
		return types.Unknown()
	}
	side := s.declContext(decl)
	if anc := decl.Descriptor.Ancestors(); len(anc) > 0 {
		return types.Of(s.r.names.Resolve(anc[0], side.Context).Name, 0)
	}
	return types.Of(types.Object, 0)
}
