package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"semresolve/internal/engine/ast"
)

// block converts a block or constructor body. A nil node yields nil.
func (c *converter) block(n *sitter.Node) *ast.Block {
	if n == nil {
		return nil
	}
	b := place(c, n, &ast.Block{})
	for _, ch := range namedChildren(n) {
		if s := c.stmt(ch); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
	}
	return b
}

func (c *converter) localVar(n *sitter.Node) ast.Statement {
	return c.localVarDecl(n)
}

func (c *converter) localVarDecl(n *sitter.Node) *ast.LocalVarDecl {
	return place(c, n, &ast.LocalVarDecl{
		Modifiers: c.modifiers(childOfKind(n, "modifiers")),
		Type:      c.typeRef(n.ChildByFieldName("type")),
		Vars:      c.declarators(n),
	})
}

func (c *converter) exprStmt(n *sitter.Node) ast.Statement {
	return place(c, n, &ast.ExprStmt{X: c.expr(firstNamed(n))})
}

func (c *converter) ifStmt(n *sitter.Node) ast.Statement {
	return place(c, n, &ast.IfStmt{
		Cond: c.expr(n.ChildByFieldName("condition")),
		Then: c.stmt(n.ChildByFieldName("consequence")),
		Else: c.stmt(n.ChildByFieldName("alternative")),
	})
}

func (c *converter) whileStmt(n *sitter.Node) ast.Statement {
	return place(c, n, &ast.WhileStmt{
		Cond: c.expr(n.ChildByFieldName("condition")),
		Body: c.stmt(n.ChildByFieldName("body")),
	})
}

func (c *converter) doStmt(n *sitter.Node) ast.Statement {
	return place(c, n, &ast.DoStmt{
		Body: c.stmt(n.ChildByFieldName("body")),
		Cond: c.expr(n.ChildByFieldName("condition")),
	})
}

// forStmt reads the header positionally: initializers up to the first
// ";", the condition up to the second, updates up to ")".
func (c *converter) forStmt(n *sitter.Node) ast.Statement {
	f := place(c, n, &ast.ForStmt{})
	const (
		inInit = iota
		inCond
		inUpdate
		inBody
	)
	section := inInit
	for _, ch := range allChildren(n) {
		switch {
		case ch.Kind() == "local_variable_declaration" && section == inInit:
			f.Init = append(f.Init, c.localVarDecl(ch))
			section = inCond
		case ch.Kind() == ";":
			section++
		case ch.Kind() == ")":
			section = inBody
		case !ch.IsNamed():
		case section == inInit:
			e := c.expr(ch)
			f.Init = append(f.Init, place(c, ch, &ast.ExprStmt{X: e}))
		case section == inCond:
			f.Cond = c.expr(ch)
		case section == inUpdate:
			f.Update = append(f.Update, c.expr(ch))
		default:
			f.Body = c.stmt(ch)
		}
	}
	return f
}

func (c *converter) forEachStmt(n *sitter.Node) ast.Statement {
	ref := c.typeRef(n.ChildByFieldName("type"))
	ref.Dims += c.countDims(n.ChildByFieldName("dimensions"))
	return place(c, n, &ast.ForEachStmt{
		Var: ast.Parameter{
			Modifiers: c.modifiers(childOfKind(n, "modifiers")),
			Name:      c.text(n.ChildByFieldName("name")),
			Type:      ref,
		},
		Iterable: c.expr(n.ChildByFieldName("value")),
		Body:     c.stmt(n.ChildByFieldName("body")),
	})
}

func (c *converter) returnStmt(n *sitter.Node) ast.Statement {
	return place(c, n, &ast.ReturnStmt{Result: c.expr(firstNamed(n))})
}

func (c *converter) breakStmt(n *sitter.Node) ast.Statement {
	return place(c, n, &ast.BreakStmt{Label: c.text(childOfKind(n, "identifier"))})
}

func (c *converter) continueStmt(n *sitter.Node) ast.Statement {
	return place(c, n, &ast.ContinueStmt{Label: c.text(childOfKind(n, "identifier"))})
}

func (c *converter) throwStmt(n *sitter.Node) ast.Statement {
	return place(c, n, &ast.ThrowStmt{X: c.expr(firstNamed(n))})
}

func (c *converter) yieldStmt(n *sitter.Node) ast.Statement {
	return place(c, n, &ast.YieldStmt{Value: c.expr(firstNamed(n))})
}

func (c *converter) tryStmt(n *sitter.Node) ast.Statement {
	t := place(c, n, &ast.TryStmt{Body: c.block(n.ChildByFieldName("body"))})
	for _, r := range childrenOfKind(n.ChildByFieldName("resources"), "resource") {
		t.Resources = append(t.Resources, c.resource(r))
	}
	for _, ch := range namedChildren(n) {
		switch ch.Kind() {
		case "catch_clause":
			t.Catches = append(t.Catches, c.catchClause(ch))
		case "finally_clause":
			t.Finally = c.block(childOfKind(ch, "block"))
		}
	}
	return t
}

func (c *converter) resource(n *sitter.Node) ast.Statement {
	if typ := n.ChildByFieldName("type"); typ != nil {
		decl := place(c, n, &ast.LocalVarDecl{
			Modifiers: c.modifiers(childOfKind(n, "modifiers")),
			Type:      c.typeRef(typ),
		})
		decl.Vars = []*ast.VarDeclarator{{
			Name: c.text(n.ChildByFieldName("name")),
			Dims: c.countDims(n.ChildByFieldName("dimensions")),
			Init: c.expr(n.ChildByFieldName("value")),
		}}
		return decl
	}
	return place(c, n, &ast.ExprStmt{X: c.expr(firstNamed(n))})
}

func (c *converter) catchClause(n *sitter.Node) *ast.CatchClause {
	cc := place(c, n, &ast.CatchClause{Body: c.block(n.ChildByFieldName("body"))})
	if p := childOfKind(n, "catch_formal_parameter"); p != nil {
		cc.Param = ast.Parameter{
			Modifiers: c.modifiers(childOfKind(p, "modifiers")),
			Name:      c.text(p.ChildByFieldName("name")),
		}
		if ct := childOfKind(p, "catch_type"); ct != nil {
			types := namedChildren(ct)
			if len(types) == 1 {
				cc.Param.Type = c.typeRef(types[0])
			} else {
				cc.Param.Type = ast.TypeRef{Name: strings.Join(strings.Fields(c.text(ct)), " ")}
			}
		}
	}
	return cc
}

func (c *converter) switchStmt(n *sitter.Node) ast.Statement {
	return place(c, n, &ast.SwitchStmt{
		Selector: c.expr(n.ChildByFieldName("condition")),
		Cases:    c.switchCases(n.ChildByFieldName("body")),
	})
}

// switchCases handles both "case X:" groups and "case X ->" rules.
func (c *converter) switchCases(body *sitter.Node) []*ast.SwitchCase {
	var out []*ast.SwitchCase
	for _, group := range namedChildren(body) {
		if group.Kind() != "switch_block_statement_group" && group.Kind() != "switch_rule" {
			continue
		}
		sc := place(c, group, &ast.SwitchCase{})
		for _, ch := range namedChildren(group) {
			if ch.Kind() != "switch_label" {
				if s := c.stmt(ch); s != nil {
					sc.Body = append(sc.Body, s)
				}
				continue
			}
			if strings.HasPrefix(strings.TrimSpace(c.text(ch)), "default") {
				sc.Default = true
			}
			sc.Labels = append(sc.Labels, c.exprs(namedChildren(ch))...)
		}
		out = append(out, sc)
	}
	return out
}

func (c *converter) syncStmt(n *sitter.Node) ast.Statement {
	return place(c, n, &ast.SyncStmt{
		Lock: c.expr(childOfKind(n, "parenthesized_expression")),
		Body: c.block(n.ChildByFieldName("body")),
	})
}

func (c *converter) labeledStmt(n *sitter.Node) ast.Statement {
	children := namedChildren(n)
	l := place(c, n, &ast.LabeledStmt{Label: c.text(childOfKind(n, "identifier"))})
	if len(children) > 1 {
		l.Body = c.stmt(children[len(children)-1])
	}
	return l
}

func (c *converter) assertStmt(n *sitter.Node) ast.Statement {
	children := namedChildren(n)
	a := place(c, n, &ast.AssertStmt{})
	if len(children) > 0 {
		a.Cond = c.expr(children[0])
	}
	if len(children) > 1 {
		a.Message = c.expr(children[1])
	}
	return a
}

// ctorInvocation keeps this(...) and super(...) arguments reachable.
func (c *converter) ctorInvocation(n *sitter.Node) ast.Statement {
	u := place(c, n, &ast.UnknownExpr{
		Kind:     n.Kind(),
		Children: c.args(n.ChildByFieldName("arguments")),
	})
	return place(c, n, &ast.ExprStmt{X: u})
}

func (c *converter) localType(n *sitter.Node) ast.Statement {
	if _, ok := typeKinds[n.Kind()]; !ok {
		return place(c, n, &ast.EmptyStmt{})
	}
	return c.typeDecl(n)
}
