package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"semresolve/internal/engine/ast"
)

// stmtHandler and exprHandler convert one tree-sitter node kind.
type stmtHandler func(c *converter, n *sitter.Node) ast.Statement
type exprHandler func(c *converter, n *sitter.Node) ast.Expression

// Dispatch tables keyed by node kind, filled in init because handlers
// recurse through them.
var (
	stmtHandlers map[string]stmtHandler
	exprHandlers map[string]exprHandler
)

// converter walks a tree-sitter Java tree and builds ast nodes.
type converter struct {
	src  []byte
	path string
}

func newConverter(src []byte, path string) *converter {
	return &converter{src: src, path: path}
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(c.src[n.StartByte():n.EndByte()])
}

func (c *converter) pos(n *sitter.Node) ast.Position {
	p := n.StartPosition()
	return ast.Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

type positioned interface {
	SetPos(ast.Position)
}

// place stamps the node's source position onto v.
func place[T positioned](c *converter, n *sitter.Node, v T) T {
	v.SetPos(c.pos(n))
	return v
}

func isComment(n *sitter.Node) bool {
	switch n.Kind() {
	case "line_comment", "block_comment", "comment":
		return true
	}
	return false
}

// namedChildren skips comments, which the grammar allows anywhere.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		ch := n.NamedChild(i)
		if ch == nil || isComment(ch) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func allChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := uint(0); i < n.ChildCount(); i++ {
		if ch := n.Child(i); ch != nil && !isComment(ch) {
			out = append(out, ch)
		}
	}
	return out
}

func childOfKind(n *sitter.Node, kinds ...string) *sitter.Node {
	for _, ch := range namedChildren(n) {
		for _, k := range kinds {
			if ch.Kind() == k {
				return ch
			}
		}
	}
	return nil
}

func childrenOfKind(n *sitter.Node, kind string) []*sitter.Node {
	var out []*sitter.Node
	for _, ch := range namedChildren(n) {
		if ch.Kind() == kind {
			out = append(out, ch)
		}
	}
	return out
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if ch := namedChildren(n); len(ch) > 0 {
		return ch[0]
	}
	return nil
}

// compact drops whitespace from dotted names and types.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// countDims counts "[" in a dimensions node.
func (c *converter) countDims(n *sitter.Node) int {
	if n == nil {
		return 0
	}
	return strings.Count(c.text(n), "[")
}

// stmt converts a statement node. Kinds without a handler become empty
// statements.
func (c *converter) stmt(n *sitter.Node) ast.Statement {
	if n == nil {
		return nil
	}
	if h, ok := stmtHandlers[n.Kind()]; ok {
		return h(c, n)
	}
	return place(c, n, &ast.EmptyStmt{})
}

// expr converts an expression node. Kinds without a handler become unknown
// expressions that keep their named children reachable.
func (c *converter) expr(n *sitter.Node) ast.Expression {
	if n == nil {
		return nil
	}
	if h, ok := exprHandlers[n.Kind()]; ok {
		return h(c, n)
	}
	u := &ast.UnknownExpr{Kind: n.Kind()}
	for _, ch := range namedChildren(n) {
		if e := c.expr(ch); e != nil {
			u.Children = append(u.Children, e)
		}
	}
	return place(c, n, u)
}

func (c *converter) exprs(nodes []*sitter.Node) []ast.Expression {
	out := make([]ast.Expression, 0, len(nodes))
	for _, n := range nodes {
		if e := c.expr(n); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (c *converter) args(n *sitter.Node) []ast.Expression {
	return c.exprs(namedChildren(n))
}

func init() {
	stmtHandlers = map[string]stmtHandler{
		"block":                           func(c *converter, n *sitter.Node) ast.Statement { return c.block(n) },
		"local_variable_declaration":      (*converter).localVar,
		"expression_statement":            (*converter).exprStmt,
		"if_statement":                    (*converter).ifStmt,
		"while_statement":                 (*converter).whileStmt,
		"do_statement":                    (*converter).doStmt,
		"for_statement":                   (*converter).forStmt,
		"enhanced_for_statement":          (*converter).forEachStmt,
		"return_statement":                (*converter).returnStmt,
		"break_statement":                 (*converter).breakStmt,
		"continue_statement":              (*converter).continueStmt,
		"throw_statement":                 (*converter).throwStmt,
		"yield_statement":                 (*converter).yieldStmt,
		"try_statement":                   (*converter).tryStmt,
		"try_with_resources_statement":    (*converter).tryStmt,
		"switch_expression":               (*converter).switchStmt,
		"switch_statement":                (*converter).switchStmt,
		"synchronized_statement":          (*converter).syncStmt,
		"labeled_statement":               (*converter).labeledStmt,
		"assert_statement":                (*converter).assertStmt,
		"explicit_constructor_invocation": (*converter).ctorInvocation,
		"class_declaration":               (*converter).localType,
		"interface_declaration":           (*converter).localType,
		"enum_declaration":                (*converter).localType,
		"record_declaration":              (*converter).localType,
		"annotation_type_declaration":     (*converter).localType,
		"local_class_declaration":         (*converter).localType,
	}

	exprHandlers = map[string]exprHandler{
		"identifier":                     (*converter).nameExpr,
		"this":                           (*converter).thisExpr,
		"super":                          (*converter).superExpr,
		"decimal_integer_literal":        (*converter).intLiteral,
		"hex_integer_literal":            (*converter).intLiteral,
		"octal_integer_literal":          (*converter).intLiteral,
		"binary_integer_literal":         (*converter).intLiteral,
		"decimal_floating_point_literal": (*converter).floatLiteral,
		"hex_floating_point_literal":     (*converter).floatLiteral,
		"true":                           (*converter).boolLiteral,
		"false":                          (*converter).boolLiteral,
		"null_literal":                   (*converter).nullLiteral,
		"character_literal":              (*converter).charLiteral,
		"string_literal":                 (*converter).stringLiteral,
		"text_block":                     (*converter).stringLiteral,
		"parenthesized_expression":       (*converter).parenExpr,
		"binary_expression":              (*converter).binaryExpr,
		"unary_expression":               (*converter).unaryExpr,
		"update_expression":              (*converter).updateExpr,
		"assignment_expression":          (*converter).assignExpr,
		"ternary_expression":             (*converter).ternaryExpr,
		"cast_expression":                (*converter).castExpr,
		"instanceof_expression":          (*converter).instanceOfExpr,
		"field_access":                   (*converter).fieldAccess,
		"scoped_identifier":              (*converter).scopedIdentifier,
		"method_invocation":              (*converter).methodCall,
		"object_creation_expression":     (*converter).objectCreation,
		"array_creation_expression":      (*converter).arrayCreation,
		"array_initializer":              func(c *converter, n *sitter.Node) ast.Expression { return c.arrayInit(n) },
		"array_access":                   (*converter).arrayAccess,
		"lambda_expression":              (*converter).lambda,
		"method_reference":               (*converter).methodRef,
		"class_literal":                  (*converter).classLiteral,
		"switch_expression":              (*converter).switchExpr,
	}
}
