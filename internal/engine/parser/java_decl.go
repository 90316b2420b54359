package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"semresolve/internal/engine/ast"
)

var typeKinds = map[string]ast.TypeKind{
	"class_declaration":           ast.KindClass,
	"interface_declaration":       ast.KindInterface,
	"enum_declaration":            ast.KindEnum,
	"annotation_type_declaration": ast.KindAnnotation,
	"record_declaration":          ast.KindRecord,
}

func (c *converter) unit(root *sitter.Node) *ast.CompilationUnit {
	u := place(c, root, &ast.CompilationUnit{Path: c.path})
	for _, n := range namedChildren(root) {
		switch n.Kind() {
		case "package_declaration":
			u.Package = place(c, n, &ast.PackageDecl{Name: c.dottedName(n)})
		case "import_declaration":
			u.Imports = append(u.Imports, c.importDecl(n))
		default:
			if _, ok := typeKinds[n.Kind()]; ok {
				u.Types = append(u.Types, c.typeDecl(n))
			}
		}
	}
	return u
}

// dottedName returns the identifier or scoped identifier child of n.
func (c *converter) dottedName(n *sitter.Node) string {
	return compact(c.text(childOfKind(n, "scoped_identifier", "identifier")))
}

func (c *converter) importDecl(n *sitter.Node) *ast.ImportDecl {
	imp := place(c, n, &ast.ImportDecl{})
	for _, ch := range allChildren(n) {
		switch ch.Kind() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.Wildcard = true
		case "identifier", "scoped_identifier":
			imp.Name = compact(c.text(ch))
		}
	}
	return imp
}

func (c *converter) typeDecl(n *sitter.Node) *ast.TypeDecl {
	desc := &ast.TypeDescriptor{
		Name:      c.text(n.ChildByFieldName("name")),
		Modifiers: c.modifiers(childOfKind(n, "modifiers")),
	}
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		desc.TypeParams = c.typeParams(tp)
	}
	kind := typeKinds[n.Kind()]
	switch kind {
	case ast.KindClass:
		if sc := n.ChildByFieldName("superclass"); sc != nil {
			if t := firstNamed(sc); t != nil {
				desc.Extends = []string{c.typeName(t)}
			}
		}
		desc.Implements = c.typeList(n.ChildByFieldName("interfaces"))
	case ast.KindInterface:
		desc.Extends = c.typeList(childOfKind(n, "extends_interfaces"))
	case ast.KindEnum, ast.KindRecord:
		desc.Implements = c.typeList(n.ChildByFieldName("interfaces"))
	}

	decl := place(c, n, &ast.TypeDecl{Kind: kind, Descriptor: desc})
	if kind == ast.KindRecord {
		decl.Body = append(decl.Body, c.recordComponents(n.ChildByFieldName("parameters"))...)
	}
	decl.Body = append(decl.Body, c.classBody(n.ChildByFieldName("body"))...)
	return decl
}

// anonymousType builds the body of "new T(...) { ... }".
func (c *converter) anonymousType(created ast.TypeRef, body *sitter.Node) *ast.TypeDecl {
	desc := &ast.TypeDescriptor{Extends: []string{created.Name}}
	decl := place(c, body, &ast.TypeDecl{Kind: ast.KindAnonymous, Descriptor: desc})
	decl.Body = c.classBody(body)
	return decl
}

// typeList reads the types of a super_interfaces or extends_interfaces
// clause.
func (c *converter) typeList(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	list := childOfKind(n, "type_list")
	if list == nil {
		list = n
	}
	var out []string
	for _, t := range namedChildren(list) {
		out = append(out, c.typeName(t))
	}
	return out
}

func (c *converter) typeParams(n *sitter.Node) []ast.TypeParam {
	var out []ast.TypeParam
	for _, tp := range childrenOfKind(n, "type_parameter") {
		p := ast.TypeParam{Name: c.text(childOfKind(tp, "type_identifier", "identifier"))}
		if bound := childOfKind(tp, "type_bound"); bound != nil {
			for _, b := range namedChildren(bound) {
				p.Bounds = append(p.Bounds, c.typeName(b))
			}
		}
		out = append(out, p)
	}
	return out
}

func (c *converter) modifiers(n *sitter.Node) ast.Modifiers {
	var m ast.Modifiers
	for _, ch := range allChildren(n) {
		switch ch.Kind() {
		case "marker_annotation":
			m.Annotations = append(m.Annotations, ast.Annotation{Name: compact(c.text(ch.ChildByFieldName("name")))})
		case "annotation":
			a := ast.Annotation{Name: compact(c.text(ch.ChildByFieldName("name")))}
			for _, arg := range namedChildren(ch.ChildByFieldName("arguments")) {
				a.Args = append(a.Args, c.text(arg))
			}
			m.Annotations = append(m.Annotations, a)
		default:
			if !ch.IsNamed() {
				m.Keywords = append(m.Keywords, ch.Kind())
			}
		}
	}
	return m
}

// typeName is the written form of a type node without array brackets.
func (c *converter) typeName(t *sitter.Node) string {
	return c.typeRef(t).Name
}

func (c *converter) typeRef(t *sitter.Node) ast.TypeRef {
	if t == nil {
		return ast.TypeRef{}
	}
	switch t.Kind() {
	case "array_type":
		ref := c.typeRef(t.ChildByFieldName("element"))
		ref.Dims += c.countDims(t.ChildByFieldName("dimensions"))
		return ref
	case "annotated_type":
		children := namedChildren(t)
		if len(children) == 0 {
			return ast.TypeRef{}
		}
		return c.typeRef(children[len(children)-1])
	}
	return ast.TypeRef{Name: compact(c.text(t))}
}

func (c *converter) classBody(body *sitter.Node) []ast.Statement {
	var out []ast.Statement
	for _, m := range namedChildren(body) {
		switch m.Kind() {
		case "field_declaration", "constant_declaration":
			out = append(out, c.fieldDecl(m))
		case "method_declaration", "annotation_type_element_declaration":
			out = append(out, c.methodDecl(m))
		case "constructor_declaration", "compact_constructor_declaration":
			out = append(out, c.constructorDecl(m))
		case "static_initializer":
			out = append(out, place(c, m, &ast.InitializerDecl{Static: true, Body: c.block(childOfKind(m, "block"))}))
		case "block":
			out = append(out, place(c, m, &ast.InitializerDecl{Body: c.block(m)}))
		case "enum_constant":
			out = append(out, c.enumConstant(m))
		case "enum_body_declarations":
			out = append(out, c.classBody(m)...)
		default:
			if _, ok := typeKinds[m.Kind()]; ok {
				out = append(out, c.typeDecl(m))
			}
		}
	}
	return out
}

func (c *converter) fieldDecl(n *sitter.Node) *ast.FieldDecl {
	return place(c, n, &ast.FieldDecl{
		Modifiers: c.modifiers(childOfKind(n, "modifiers")),
		Type:      c.typeRef(n.ChildByFieldName("type")),
		Vars:      c.declarators(n),
	})
}

// recordComponents turns record header components into private final
// fields.
func (c *converter) recordComponents(params *sitter.Node) []ast.Statement {
	var out []ast.Statement
	for _, p := range c.params(params) {
		f := place(c, params, &ast.FieldDecl{
			Modifiers: ast.Modifiers{Keywords: []string{"private", "final"}},
			Type:      p.Type,
			Vars:      []*ast.VarDeclarator{{Name: p.Name}},
		})
		out = append(out, f)
	}
	return out
}

func (c *converter) declarators(n *sitter.Node) []*ast.VarDeclarator {
	var out []*ast.VarDeclarator
	for _, d := range childrenOfKind(n, "variable_declarator") {
		out = append(out, &ast.VarDeclarator{
			Name: c.text(d.ChildByFieldName("name")),
			Dims: c.countDims(d.ChildByFieldName("dimensions")),
			Init: c.expr(d.ChildByFieldName("value")),
		})
	}
	return out
}

func (c *converter) methodDecl(n *sitter.Node) *ast.MethodDecl {
	desc := &ast.MethodDescriptor{
		Modifiers: c.modifiers(childOfKind(n, "modifiers")),
		Name:      c.text(n.ChildByFieldName("name")),
		Params:    c.params(n.ChildByFieldName("parameters")),
	}
	desc.ReturnType = c.typeRef(n.ChildByFieldName("type"))
	desc.ReturnType.Dims += c.countDims(n.ChildByFieldName("dimensions"))
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		desc.TypeParams = c.typeParams(tp)
	}
	desc.Throws = c.throws(n)

	m := place(c, n, &ast.MethodDecl{Descriptor: desc})
	if body := n.ChildByFieldName("body"); body != nil && body.Kind() == "block" {
		m.Body = c.block(body)
	}
	return m
}

func (c *converter) constructorDecl(n *sitter.Node) *ast.ConstructorDecl {
	desc := &ast.MethodDescriptor{
		Modifiers: c.modifiers(childOfKind(n, "modifiers")),
		Name:      c.text(n.ChildByFieldName("name")),
		Params:    c.params(n.ChildByFieldName("parameters")),
	}
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		desc.TypeParams = c.typeParams(tp)
	}
	desc.Throws = c.throws(n)
	return place(c, n, &ast.ConstructorDecl{Descriptor: desc, Body: c.block(n.ChildByFieldName("body"))})
}

func (c *converter) throws(n *sitter.Node) []string {
	var out []string
	for _, t := range namedChildren(childOfKind(n, "throws")) {
		out = append(out, c.typeName(t))
	}
	return out
}

func (c *converter) enumConstant(n *sitter.Node) *ast.EnumConstantDecl {
	ec := place(c, n, &ast.EnumConstantDecl{
		Name: c.text(n.ChildByFieldName("name")),
		Args: c.args(n.ChildByFieldName("arguments")),
	})
	if body := n.ChildByFieldName("body"); body != nil {
		ec.Body = c.anonymousType(ast.TypeRef{Name: c.enclosingEnumName(n)}, body)
	}
	return ec
}

// enclosingEnumName finds the enum that declares constant n.
func (c *converter) enclosingEnumName(n *sitter.Node) string {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "enum_declaration" {
			return c.text(p.ChildByFieldName("name"))
		}
	}
	return ""
}

func (c *converter) params(n *sitter.Node) []ast.Parameter {
	var out []ast.Parameter
	for _, p := range namedChildren(n) {
		switch p.Kind() {
		case "formal_parameter":
			ref := c.typeRef(p.ChildByFieldName("type"))
			ref.Dims += c.countDims(p.ChildByFieldName("dimensions"))
			out = append(out, ast.Parameter{
				Modifiers: c.modifiers(childOfKind(p, "modifiers")),
				Name:      c.text(p.ChildByFieldName("name")),
				Type:      ref,
			})
		case "spread_parameter":
			var ref ast.TypeRef
			var name string
			for _, ch := range namedChildren(p) {
				switch ch.Kind() {
				case "modifiers":
				case "variable_declarator":
					name = c.text(ch.ChildByFieldName("name"))
					ref.Dims += c.countDims(ch.ChildByFieldName("dimensions"))
				default:
					if ref.Name == "" {
						dims := ref.Dims
						ref = c.typeRef(ch)
						ref.Dims += dims
					}
				}
			}
			ref.Variadic = true
			out = append(out, ast.Parameter{
				Modifiers: c.modifiers(childOfKind(p, "modifiers")),
				Name:      name,
				Type:      ref,
			})
		}
	}
	return out
}
