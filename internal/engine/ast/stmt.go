package ast

type Block struct {
	stmt
	Stmts []Statement
}

// LocalVarDecl declares one or more local variables. It also represents
// try-with-resources resources and for-loop initializers.
type LocalVarDecl struct {
	stmt
	Modifiers
	Type TypeRef
	Vars []*VarDeclarator
}

type ExprStmt struct {
	stmt
	X Expression
}

type IfStmt struct {
	stmt
	Cond Expression
	Then Statement
	Else Statement
}

type WhileStmt struct {
	stmt
	Cond Expression
	Body Statement
}

type DoStmt struct {
	stmt
	Body Statement
	Cond Expression
}

type ForStmt struct {
	stmt
	Init   []Statement
	Cond   Expression
	Update []Expression
	Body   Statement
}

type ForEachStmt struct {
	stmt
	Var      Parameter
	Iterable Expression
	Body     Statement
}

type ReturnStmt struct {
	stmt
	Result Expression
}

type BreakStmt struct {
	stmt
	Label string
}

type ContinueStmt struct {
	stmt
	Label string
}

type ThrowStmt struct {
	stmt
	X Expression
}

type YieldStmt struct {
	stmt
	Value Expression
}

type TryStmt struct {
	stmt
	Resources []Statement
	Body      *Block
	Catches   []*CatchClause
	Finally   *Block
}

// CatchClause binds Param. Union catch types keep their "A | B" text.
type CatchClause struct {
	stmt
	Param Parameter
	Body  *Block
}

type SwitchStmt struct {
	stmt
	Selector Expression
	Cases    []*SwitchCase
}

type SwitchCase struct {
	stmt
	Labels  []Expression
	Default bool
	Body    []Statement
}

type SyncStmt struct {
	stmt
	Lock Expression
	Body *Block
}

type LabeledStmt struct {
	stmt
	Label string
	Body  Statement
}

type AssertStmt struct {
	stmt
	Cond    Expression
	Message Expression
}

// EmptyStmt stands for ";" and for statement forms the front end does not
// model.
type EmptyStmt struct {
	stmt
}
