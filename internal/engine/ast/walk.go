package ast

import "fmt"

// Visitor receives nodes in source order. Enter returns false to skip the
// node's children; Leave is called only for entered nodes.
type Visitor interface {
	Enter(n Node) bool
	Leave(n Node)
}

// Walk traverses n depth-first.
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	if !v.Enter(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(v, c)
	}
	v.Leave(n)
}

// Inspect calls fn for n and its descendants while fn returns true.
func Inspect(n Node, fn func(Node) bool) {
	Walk(inspector(fn), n)
}

type inspector func(Node) bool

func (f inspector) Enter(n Node) bool { return f(n) }
func (inspector) Leave(Node)          {}

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	addExprs := func(list []Expression) {
		for _, e := range list {
			add(e)
		}
	}
	addStmts := func(list []Statement) {
		for _, s := range list {
			add(s)
		}
	}
	addVars := func(list []*VarDeclarator) {
		for _, v := range list {
			add(v.Init)
		}
	}

	switch x := n.(type) {
	case *CompilationUnit:
		if x.Package != nil {
			add(x.Package)
		}
		for _, imp := range x.Imports {
			add(imp)
		}
		for _, t := range x.Types {
			add(t)
		}
	case *PackageDecl, *ImportDecl:
	case *TypeDecl:
		addStmts(x.Body)
	case *MethodDecl:
		if x.Body != nil {
			add(x.Body)
		}
	case *ConstructorDecl:
		if x.Body != nil {
			add(x.Body)
		}
	case *FieldDecl:
		addVars(x.Vars)
	case *InitializerDecl:
		if x.Body != nil {
			add(x.Body)
		}
	case *EnumConstantDecl:
		addExprs(x.Args)
		if x.Body != nil {
			add(x.Body)
		}

	case *Block:
		addStmts(x.Stmts)
	case *LocalVarDecl:
		addVars(x.Vars)
	case *ExprStmt:
		add(x.X)
	case *IfStmt:
		add(x.Cond)
		add(x.Then)
		add(x.Else)
	case *WhileStmt:
		add(x.Cond)
		add(x.Body)
	case *DoStmt:
		add(x.Body)
		add(x.Cond)
	case *ForStmt:
		addStmts(x.Init)
		add(x.Cond)
		addExprs(x.Update)
		add(x.Body)
	case *ForEachStmt:
		add(x.Iterable)
		add(x.Body)
	case *ReturnStmt:
		add(x.Result)
	case *BreakStmt, *ContinueStmt, *EmptyStmt:
	case *ThrowStmt:
		add(x.X)
	case *YieldStmt:
		add(x.Value)
	case *TryStmt:
		addStmts(x.Resources)
		if x.Body != nil {
			add(x.Body)
		}
		for _, c := range x.Catches {
			add(c)
		}
		if x.Finally != nil {
			add(x.Finally)
		}
	case *CatchClause:
		if x.Body != nil {
			add(x.Body)
		}
	case *SwitchStmt:
		add(x.Selector)
		for _, c := range x.Cases {
			add(c)
		}
	case *SwitchCase:
		addExprs(x.Labels)
		addStmts(x.Body)
	case *SyncStmt:
		add(x.Lock)
		if x.Body != nil {
			add(x.Body)
		}
	case *LabeledStmt:
		add(x.Body)
	case *AssertStmt:
		add(x.Cond)
		add(x.Message)

	case *Literal, *NameExpr, *ThisExpr, *SuperExpr, *ClassLiteral:
	case *FieldAccess:
		add(x.Object)
	case *MethodCall:
		add(x.Object)
		addExprs(x.Args)
	case *ObjectCreation:
		add(x.Outer)
		addExprs(x.Args)
		if x.Body != nil {
			add(x.Body)
		}
	case *ArrayCreation:
		addExprs(x.DimExprs)
		if x.Init != nil {
			add(x.Init)
		}
	case *ArrayInit:
		addExprs(x.Values)
	case *ArrayAccess:
		add(x.Array)
		add(x.Index)
	case *CastExpr:
		add(x.X)
	case *BinaryExpr:
		add(x.Left)
		add(x.Right)
	case *UnaryExpr:
		add(x.X)
	case *TernaryExpr:
		add(x.Cond)
		add(x.Then)
		add(x.Else)
	case *ParenExpr:
		add(x.X)
	case *AssignExpr:
		add(x.Target)
		add(x.Value)
	case *InstanceOfExpr:
		add(x.X)
	case *LambdaExpr:
		add(x.Body)
	case *MethodRef:
		add(x.Target)
	case *SwitchExpr:
		add(x.Selector)
		for _, c := range x.Cases {
			add(c)
		}
	case *UnknownExpr:
		addExprs(x.Children)
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", n))
	}
	return out
}
