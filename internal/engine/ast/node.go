// # internal/engine/ast/node.go
package ast

import "strings"

// Position is a 1-based source location.
type Position struct {
	Line   int
	Column int
}

// Node is implemented by every syntax node kind. The set of kinds is closed:
// only types declared in this package satisfy it.
type Node interface {
	Pos() Position
	node()
}

// Statement is a node that may appear in a block or a type body.
type Statement interface {
	Node
	stmtNode()
}

// Expression is a node that yields a value.
type Expression interface {
	Node
	exprNode()
}

type base struct {
	Position Position
}

func (b *base) Pos() Position { return b.Position }
func (*base) node()           {}

// SetPos records where the node starts. Front ends call it once.
func (b *base) SetPos(p Position) { b.Position = p }

type stmt struct{ base }

func (*stmt) stmtNode() {}

type expr struct{ base }

func (*expr) exprNode() {}

// TypeRef is a type as written at a use site. Name excludes array brackets
// but keeps generic arguments, e.g. "List<String>" or "int".
type TypeRef struct {
	Name     string
	Dims     int
	Variadic bool
}

func (t TypeRef) IsZero() bool { return t.Name == "" }

func (t TypeRef) IsVoid() bool { return t.Name == "void" && t.Dims == 0 }

func (t TypeRef) String() string {
	if t.Name == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(t.Name)
	for i := 0; i < t.Dims; i++ {
		b.WriteString("[]")
	}
	if t.Variadic {
		b.WriteString("...")
	}
	return b.String()
}

// Annotation is an annotation use. A marker annotation has no arguments.
type Annotation struct {
	Name string
	Args []string
}

func (a Annotation) IsMarker() bool { return len(a.Args) == 0 }

// Modifiers holds keyword modifiers and annotations in declaration order.
type Modifiers struct {
	Keywords    []string
	Annotations []Annotation
}

func (m Modifiers) Has(keyword string) bool {
	for _, k := range m.Keywords {
		if k == keyword {
			return true
		}
	}
	return false
}

func (m Modifiers) IsStatic() bool    { return m.Has("static") }
func (m Modifiers) IsFinal() bool     { return m.Has("final") }
func (m Modifiers) IsAbstract() bool  { return m.Has("abstract") }
func (m Modifiers) IsPublic() bool    { return m.Has("public") }
func (m Modifiers) IsProtected() bool { return m.Has("protected") }
func (m Modifiers) IsPrivate() bool   { return m.Has("private") }

// HasMarker reports whether an argument-free annotation with the given simple
// name is present. Qualified uses ("java.lang.Override") match too.
func (m Modifiers) HasMarker(name string) bool {
	for _, a := range m.Annotations {
		if !a.IsMarker() {
			continue
		}
		if a.Name == name || strings.HasSuffix(a.Name, "."+name) {
			return true
		}
	}
	return false
}

// TypeParam is a declared type parameter with its bounds as written.
type TypeParam struct {
	Name   string
	Bounds []string
}

// Parameter is a formal parameter of a method, constructor, lambda, catch
// clause or enhanced for loop.
type Parameter struct {
	Modifiers
	Name string
	Type TypeRef
}

// VarDeclarator is one variable in a field or local variable group.
type VarDeclarator struct {
	Name string
	Dims int
	Init Expression
}
