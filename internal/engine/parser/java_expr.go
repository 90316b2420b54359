package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"semresolve/internal/engine/ast"
)

func (c *converter) nameExpr(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.NameExpr{Name: c.text(n)})
}

func (c *converter) thisExpr(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.ThisExpr{})
}

func (c *converter) superExpr(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.SuperExpr{})
}

func (c *converter) intLiteral(n *sitter.Node) ast.Expression {
	v := c.text(n)
	kind := ast.LitInt
	if strings.HasSuffix(v, "l") || strings.HasSuffix(v, "L") {
		kind = ast.LitLong
	}
	return place(c, n, &ast.Literal{Kind: kind, Value: v})
}

func (c *converter) floatLiteral(n *sitter.Node) ast.Expression {
	v := c.text(n)
	kind := ast.LitDouble
	if strings.HasSuffix(v, "f") || strings.HasSuffix(v, "F") {
		kind = ast.LitFloat
	}
	return place(c, n, &ast.Literal{Kind: kind, Value: v})
}

func (c *converter) boolLiteral(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.Literal{Kind: ast.LitBool, Value: c.text(n)})
}

func (c *converter) nullLiteral(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.Literal{Kind: ast.LitNull, Value: "null"})
}

func (c *converter) charLiteral(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.Literal{Kind: ast.LitChar, Value: c.text(n)})
}

func (c *converter) stringLiteral(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.Literal{Kind: ast.LitString, Value: c.text(n)})
}

func (c *converter) parenExpr(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.ParenExpr{X: c.expr(firstNamed(n))})
}

func (c *converter) binaryExpr(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.BinaryExpr{
		Op:    c.text(n.ChildByFieldName("operator")),
		Left:  c.expr(n.ChildByFieldName("left")),
		Right: c.expr(n.ChildByFieldName("right")),
	})
}

func (c *converter) unaryExpr(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.UnaryExpr{
		Op: c.text(n.ChildByFieldName("operator")),
		X:  c.expr(n.ChildByFieldName("operand")),
	})
}

// updateExpr is ++ or -- on either side of the operand.
func (c *converter) updateExpr(n *sitter.Node) ast.Expression {
	u := place(c, n, &ast.UnaryExpr{X: c.expr(firstNamed(n))})
	for _, ch := range allChildren(n) {
		if k := ch.Kind(); k == "++" || k == "--" {
			u.Op = k
			u.Postfix = ch.StartByte() > n.StartByte()
			break
		}
	}
	return u
}

func (c *converter) assignExpr(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.AssignExpr{
		Op:     c.text(n.ChildByFieldName("operator")),
		Target: c.expr(n.ChildByFieldName("left")),
		Value:  c.expr(n.ChildByFieldName("right")),
	})
}

func (c *converter) ternaryExpr(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.TernaryExpr{
		Cond: c.expr(n.ChildByFieldName("condition")),
		Then: c.expr(n.ChildByFieldName("consequence")),
		Else: c.expr(n.ChildByFieldName("alternative")),
	})
}

func (c *converter) castExpr(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.CastExpr{
		Type: c.typeRef(n.ChildByFieldName("type")),
		X:    c.expr(n.ChildByFieldName("value")),
	})
}

func (c *converter) instanceOfExpr(n *sitter.Node) ast.Expression {
	typ := n.ChildByFieldName("right")
	if typ == nil {
		if pat := n.ChildByFieldName("pattern"); pat != nil {
			typ = pat.ChildByFieldName("type")
			if typ == nil {
				typ = firstNamed(pat)
			}
		}
	}
	return place(c, n, &ast.InstanceOfExpr{
		X:    c.expr(n.ChildByFieldName("left")),
		Type: c.typeRef(typ),
	})
}

// fieldAccess also covers qualified this and super, which the grammar
// parses as a field named "this" or "super".
func (c *converter) fieldAccess(n *sitter.Node) ast.Expression {
	obj := n.ChildByFieldName("object")
	field := n.ChildByFieldName("field")
	if field != nil {
		switch field.Kind() {
		case "this":
			return place(c, n, &ast.ThisExpr{Qualifier: compact(c.text(obj))})
		case "super":
			return place(c, n, &ast.SuperExpr{Qualifier: compact(c.text(obj))})
		}
	}
	object := c.expr(obj)
	// Outer.super.field
	for _, ch := range namedChildren(n) {
		if ch.Kind() == "super" && (obj == nil || ch.StartByte() != obj.StartByte()) {
			object = place(c, ch, &ast.SuperExpr{Qualifier: compact(c.text(obj))})
		}
	}
	return place(c, n, &ast.FieldAccess{Object: object, Field: c.text(field)})
}

func (c *converter) scopedIdentifier(n *sitter.Node) ast.Expression {
	return c.dotted(n, compact(c.text(n)))
}

// dotted turns "a.b.c" into nested field accesses rooted at a name.
func (c *converter) dotted(n *sitter.Node, name string) ast.Expression {
	parts := strings.Split(name, ".")
	var e ast.Expression = place(c, n, &ast.NameExpr{Name: parts[0]})
	for _, p := range parts[1:] {
		e = place(c, n, &ast.FieldAccess{Object: e, Field: p})
	}
	return e
}

func (c *converter) methodCall(n *sitter.Node) ast.Expression {
	call := place(c, n, &ast.MethodCall{
		Object: c.expr(n.ChildByFieldName("object")),
		Name:   c.text(n.ChildByFieldName("name")),
		Args:   c.args(n.ChildByFieldName("arguments")),
	})
	for _, t := range namedChildren(n.ChildByFieldName("type_arguments")) {
		call.TypeArgs = append(call.TypeArgs, c.typeRef(t))
	}
	return call
}

func (c *converter) objectCreation(n *sitter.Node) ast.Expression {
	oc := place(c, n, &ast.ObjectCreation{
		Type: c.typeRef(n.ChildByFieldName("type")),
		Args: c.args(n.ChildByFieldName("arguments")),
	})
	if first := n.Child(0); first != nil && first.Kind() != "new" {
		oc.Outer = c.expr(firstNamed(n))
	}
	if body := childOfKind(n, "class_body"); body != nil {
		oc.Body = c.anonymousType(oc.Type, body)
	}
	return oc
}

func (c *converter) arrayCreation(n *sitter.Node) ast.Expression {
	ac := place(c, n, &ast.ArrayCreation{Elem: c.typeRef(n.ChildByFieldName("type"))})
	for _, ch := range namedChildren(n) {
		switch ch.Kind() {
		case "dimensions_expr":
			ac.DimExprs = append(ac.DimExprs, c.expr(firstNamed(ch)))
		case "dimensions":
			ac.ExtraDims += c.countDims(ch)
		case "array_initializer":
			ac.Init = c.arrayInit(ch)
		}
	}
	return ac
}

func (c *converter) arrayInit(n *sitter.Node) *ast.ArrayInit {
	return place(c, n, &ast.ArrayInit{Values: c.args(n)})
}

func (c *converter) arrayAccess(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.ArrayAccess{
		Array: c.expr(n.ChildByFieldName("array")),
		Index: c.expr(n.ChildByFieldName("index")),
	})
}

func (c *converter) lambda(n *sitter.Node) ast.Expression {
	l := place(c, n, &ast.LambdaExpr{})
	if params := n.ChildByFieldName("parameters"); params != nil {
		switch params.Kind() {
		case "identifier":
			l.Params = []ast.Parameter{{Name: c.text(params)}}
		case "formal_parameters":
			l.Params = c.params(params)
		case "inferred_parameters":
			for _, id := range childrenOfKind(params, "identifier") {
				l.Params = append(l.Params, ast.Parameter{Name: c.text(id)})
			}
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		if body.Kind() == "block" {
			l.Body = c.block(body)
		} else {
			l.Body = c.expr(body)
		}
	}
	return l
}

// methodRef reads "target::name". Type targets become name chains so the
// resolver can treat them like static receivers.
func (c *converter) methodRef(n *sitter.Node) ast.Expression {
	m := place(c, n, &ast.MethodRef{})
	children := allChildren(n)
	if len(children) == 0 {
		return m
	}
	target := children[0]
	switch target.Kind() {
	case "type_identifier", "scoped_type_identifier", "generic_type", "array_type":
		m.Target = c.dotted(target, c.typeName(target))
	default:
		m.Target = c.expr(target)
	}
	last := children[len(children)-1]
	if last.Kind() == "new" || last.Kind() == "identifier" {
		m.Name = c.text(last)
	}
	return m
}

func (c *converter) classLiteral(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.ClassLiteral{Type: c.typeRef(firstNamed(n))})
}

func (c *converter) switchExpr(n *sitter.Node) ast.Expression {
	return place(c, n, &ast.SwitchExpr{
		Selector: c.expr(n.ChildByFieldName("condition")),
		Cases:    c.switchCases(n.ChildByFieldName("body")),
	})
}
