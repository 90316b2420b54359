// # internal/engine/scope/stack.go
package scope

import (
	"fmt"

	"semresolve/internal/engine/ast"
)

// Variable is a parameter or local variable visible at a position.
type Variable struct {
	Name string
	Type ast.TypeRef
	Decl ast.Node
}

// Stack is the chain of nodes from a compilation unit down to the node being
// visited. Queries scan from the top, so the innermost answer wins.
// Must-style queries panic when the stack shape makes them meaningless.
type Stack struct {
	nodes []ast.Node
}

func New() *Stack {
	return &Stack{nodes: make([]ast.Node, 0, 32)}
}

func (s *Stack) Push(n ast.Node) { s.nodes = append(s.nodes, n) }

func (s *Stack) Pop() ast.Node {
	if len(s.nodes) == 0 {
		panic("scope: pop on empty stack")
	}
	n := s.nodes[len(s.nodes)-1]
	s.nodes = s.nodes[:len(s.nodes)-1]
	return n
}

func (s *Stack) Len() int { return len(s.nodes) }

func (s *Stack) Top() ast.Node {
	if len(s.nodes) == 0 {
		return nil
	}
	return s.nodes[len(s.nodes)-1]
}

// Unit returns the compilation unit at the bottom of the stack.
func (s *Stack) Unit() *ast.CompilationUnit {
	if len(s.nodes) == 0 {
		panic("scope: empty stack has no compilation unit")
	}
	u, ok := s.nodes[0].(*ast.CompilationUnit)
	if !ok {
		panic(fmt.Sprintf("scope: stack bottom is %T, not a compilation unit", s.nodes[0]))
	}
	return u
}

func (s *Stack) Path() string { return s.Unit().Path }

func (s *Stack) Package() string { return s.Unit().PackageName() }

func (s *Stack) Imports() []*ast.ImportDecl { return s.Unit().Imports }

// LookupEnclosingType returns the innermost type declaration, anonymous
// bodies included.
func (s *Stack) LookupEnclosingType() (*ast.TypeDecl, bool) {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if t, ok := s.nodes[i].(*ast.TypeDecl); ok {
			return t, true
		}
	}
	return nil, false
}

func (s *Stack) EnclosingType() *ast.TypeDecl {
	t, ok := s.LookupEnclosingType()
	if !ok {
		panic("scope: no enclosing type declaration")
	}
	return t
}

// LookupNamedType returns the innermost type declaration that has a name.
func (s *Stack) LookupNamedType() (*ast.TypeDecl, bool) {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if t, ok := s.nodes[i].(*ast.TypeDecl); ok && t.Kind != ast.KindAnonymous {
			return t, true
		}
	}
	return nil, false
}

// EnclosingTypes lists type declarations innermost first.
func (s *Stack) EnclosingTypes() []*ast.TypeDecl {
	var out []*ast.TypeDecl
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if t, ok := s.nodes[i].(*ast.TypeDecl); ok {
			out = append(out, t)
		}
	}
	return out
}

// TopLevelType returns the outermost type declaration.
func (s *Stack) TopLevelType() *ast.TypeDecl {
	for _, n := range s.nodes {
		if t, ok := n.(*ast.TypeDecl); ok {
			return t
		}
	}
	panic("scope: no top-level type declaration")
}

// ActiveBody returns the innermost method, constructor, initializer, field
// or type body.
func (s *Stack) ActiveBody() ast.Node {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		switch n := s.nodes[i].(type) {
		case *ast.MethodDecl, *ast.ConstructorDecl, *ast.InitializerDecl, *ast.FieldDecl, *ast.TypeDecl:
			return n
		}
	}
	panic("scope: no active body")
}

// EnclosingMethod returns the innermost method or constructor descriptor.
func (s *Stack) EnclosingMethod() (*ast.MethodDescriptor, bool) {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		switch n := s.nodes[i].(type) {
		case *ast.MethodDecl:
			return n.Descriptor, true
		case *ast.ConstructorDecl:
			return n.Descriptor, true
		case *ast.TypeDecl:
			return nil, false
		}
	}
	return nil, false
}

// IsStatic reports whether the active body is a static context.
func (s *Stack) IsStatic() bool {
	switch n := s.ActiveBody().(type) {
	case *ast.MethodDecl:
		return n.Descriptor.IsStatic()
	case *ast.InitializerDecl:
		return n.Static
	case *ast.FieldDecl:
		return n.IsStatic()
	}
	return false
}

// TypeParams lists type parameters in scope, innermost declarations first.
func (s *Stack) TypeParams() []ast.TypeParam {
	var out []ast.TypeParam
	for i := len(s.nodes) - 1; i >= 0; i-- {
		switch n := s.nodes[i].(type) {
		case *ast.MethodDecl:
			out = append(out, n.Descriptor.TypeParams...)
		case *ast.ConstructorDecl:
			out = append(out, n.Descriptor.TypeParams...)
		case *ast.TypeDecl:
			out = append(out, n.Descriptor.TypeParams...)
		}
	}
	return out
}

// Variables returns parameters and locals visible at the top of the stack,
// nearest declaration first. Locals count only when declared before the
// statement currently being visited.
func (s *Stack) Variables() []Variable {
	var out []Variable
	for i := len(s.nodes) - 1; i >= 0; i-- {
		var child ast.Node
		if i+1 < len(s.nodes) {
			child = s.nodes[i+1]
		}
		switch n := s.nodes[i].(type) {
		case *ast.Block:
			out = appendPreceding(out, n.Stmts, child)
		case *ast.SwitchCase:
			out = appendPreceding(out, n.Body, child)
		case *ast.ForStmt:
			for j := len(n.Init) - 1; j >= 0; j-- {
				if d, ok := n.Init[j].(*ast.LocalVarDecl); ok {
					out = appendLocals(out, d)
				}
			}
		case *ast.ForEachStmt:
			out = appendParams(out, []ast.Parameter{n.Var}, n)
		case *ast.CatchClause:
			out = appendParams(out, []ast.Parameter{n.Param}, n)
		case *ast.TryStmt:
			if n.Body == nil || child != ast.Node(n.Body) {
				out = appendPreceding(out, n.Resources, child)
				break
			}
			for j := len(n.Resources) - 1; j >= 0; j-- {
				if d, ok := n.Resources[j].(*ast.LocalVarDecl); ok {
					out = appendLocals(out, d)
				}
			}
		case *ast.LambdaExpr:
			out = appendParams(out, n.Params, n)
		case *ast.MethodDecl:
			out = appendParams(out, n.Descriptor.Params, n)
		case *ast.ConstructorDecl:
			out = appendParams(out, n.Descriptor.Params, n)
		}
	}
	return out
}

// LookupVariable finds the nearest visible variable with the given name.
func (s *Stack) LookupVariable(name string) (Variable, bool) {
	for _, v := range s.Variables() {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

func appendPreceding(out []Variable, stmts []ast.Statement, child ast.Node) []Variable {
	idx := -1
	for j, st := range stmts {
		if ast.Node(st) == child {
			idx = j
			break
		}
	}
	for j := idx - 1; j >= 0; j-- {
		if d, ok := stmts[j].(*ast.LocalVarDecl); ok {
			out = appendLocals(out, d)
		}
	}
	return out
}

func appendLocals(out []Variable, d *ast.LocalVarDecl) []Variable {
	for k := len(d.Vars) - 1; k >= 0; k-- {
		v := d.Vars[k]
		t := d.Type
		t.Dims += v.Dims
		out = append(out, Variable{Name: v.Name, Type: t, Decl: d})
	}
	return out
}

func appendParams(out []Variable, params []ast.Parameter, decl ast.Node) []Variable {
	for k := len(params) - 1; k >= 0; k-- {
		p := params[k]
		t := p.Type
		if t.Variadic {
			t.Variadic = false
			t.Dims++
		}
		out = append(out, Variable{Name: p.Name, Type: t, Decl: decl})
	}
	return out
}
