package ast

type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitLong
	LitFloat
	LitDouble
	LitChar
	LitString
	LitBool
	LitNull
)

type Literal struct {
	expr
	Kind  LiteralKind
	Value string
}

// NameExpr is a bare identifier. Dotted names are FieldAccess chains.
type NameExpr struct {
	expr
	Name string
}

type ThisExpr struct {
	expr
	Qualifier string
}

type SuperExpr struct {
	expr
	Qualifier string
}

type FieldAccess struct {
	expr
	Object Expression
	Field  string
}

// MethodCall is an invocation. Object is nil for unqualified calls.
type MethodCall struct {
	expr
	Object   Expression
	Name     string
	TypeArgs []TypeRef
	Args     []Expression
}

type ObjectCreation struct {
	expr
	Outer Expression
	Type  TypeRef
	Args  []Expression
	Body  *TypeDecl
}

type ArrayCreation struct {
	expr
	Elem      TypeRef
	DimExprs  []Expression
	ExtraDims int
	Init      *ArrayInit
}

// Dims is the total dimension count of the created array.
func (a *ArrayCreation) Dims() int {
	return a.Elem.Dims + len(a.DimExprs) + a.ExtraDims
}

type ArrayInit struct {
	expr
	Values []Expression
}

type ArrayAccess struct {
	expr
	Array Expression
	Index Expression
}

type CastExpr struct {
	expr
	Type TypeRef
	X    Expression
}

type BinaryExpr struct {
	expr
	Op    string
	Left  Expression
	Right Expression
}

type UnaryExpr struct {
	expr
	Op      string
	X       Expression
	Postfix bool
}

type TernaryExpr struct {
	expr
	Cond Expression
	Then Expression
	Else Expression
}

type ParenExpr struct {
	expr
	X Expression
}

type AssignExpr struct {
	expr
	Op     string
	Target Expression
	Value  Expression
}

type InstanceOfExpr struct {
	expr
	X    Expression
	Type TypeRef
}

// LambdaExpr has either an expression or a *Block as its body.
type LambdaExpr struct {
	expr
	Params []Parameter
	Body   Node
}

// MethodRef is "target::name". Type targets are NameExpr or FieldAccess.
type MethodRef struct {
	expr
	Target Expression
	Name   string
}

type ClassLiteral struct {
	expr
	Type TypeRef
}

// SwitchExpr is a switch used as a value.
type SwitchExpr struct {
	expr
	Selector Expression
	Cases    []*SwitchCase
}

// UnknownExpr stands for expression forms the front end does not model.
// Children keeps nested expressions reachable.
type UnknownExpr struct {
	expr
	Kind     string
	Children []Expression
}
