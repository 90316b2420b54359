package ast

import (
	"sync"
	"testing"
)

func sampleUnit() (*CompilationUnit, *MethodCall) {
	call := &MethodCall{Name: "add", Args: []Expression{&Literal{Kind: LitInt, Value: "1"}, &NameExpr{Name: "x"}}}
	method := &MethodDecl{
		Descriptor: &MethodDescriptor{Name: "run"},
		Body: &Block{Stmts: []Statement{
			&LocalVarDecl{Type: TypeRef{Name: "int"}, Vars: []*VarDeclarator{{Name: "x", Init: &Literal{Kind: LitInt, Value: "2"}}}},
			&ExprStmt{X: call},
		}},
	}
	typ := &TypeDecl{Kind: KindClass, Descriptor: &TypeDescriptor{Name: "A"}, Body: []Statement{method}}
	unit := &CompilationUnit{
		Path:    "p/A.java",
		Package: &PackageDecl{Name: "p"},
		Imports: []*ImportDecl{{Name: "java.util.List"}},
		Types:   []*TypeDecl{typ},
	}
	return unit, call
}

type countingVisitor struct {
	depth, maxDepth int
	entered         []string
	skip            func(Node) bool
}

func (v *countingVisitor) Enter(n Node) bool {
	v.entered = append(v.entered, kind(n))
	if v.skip != nil && v.skip(n) {
		return false
	}
	v.depth++
	if v.depth > v.maxDepth {
		v.maxDepth = v.depth
	}
	return true
}

func (v *countingVisitor) Leave(Node) { v.depth-- }

func kind(n Node) string {
	switch n.(type) {
	case *CompilationUnit:
		return "unit"
	case *PackageDecl:
		return "package"
	case *ImportDecl:
		return "import"
	case *TypeDecl:
		return "type"
	case *MethodDecl:
		return "method"
	case *Block:
		return "block"
	case *LocalVarDecl:
		return "local"
	case *ExprStmt:
		return "exprstmt"
	case *MethodCall:
		return "call"
	case *Literal:
		return "literal"
	case *NameExpr:
		return "name"
	default:
		return "other"
	}
}

func TestWalk_SourceOrder(t *testing.T) {
	unit, _ := sampleUnit()
	v := &countingVisitor{}
	Walk(v, unit)

	want := []string{"unit", "package", "import", "type", "method", "block", "local", "literal", "exprstmt", "call", "literal", "name"}
	if len(v.entered) != len(want) {
		t.Fatalf("entered %v, want %v", v.entered, want)
	}
	for i := range want {
		if v.entered[i] != want[i] {
			t.Fatalf("entered %v, want %v", v.entered, want)
		}
	}
	if v.depth != 0 {
		t.Fatalf("Leave calls must balance Enter, depth %d", v.depth)
	}
	if v.maxDepth != 7 {
		t.Fatalf("max depth = %d", v.maxDepth)
	}
}

func TestWalk_SkipChildren(t *testing.T) {
	unit, _ := sampleUnit()
	v := &countingVisitor{skip: func(n Node) bool {
		_, ok := n.(*MethodDecl)
		return ok
	}}
	Walk(v, unit)
	if v.depth != 0 {
		t.Fatalf("skipped nodes must not be left, depth %d", v.depth)
	}
	for _, k := range v.entered {
		if k == "block" || k == "call" {
			t.Fatalf("descended into a skipped method: %v", v.entered)
		}
	}
}

func TestInspect(t *testing.T) {
	unit, call := sampleUnit()
	var calls []*MethodCall
	Inspect(unit, func(n Node) bool {
		if c, ok := n.(*MethodCall); ok {
			calls = append(calls, c)
		}
		return true
	})
	if len(calls) != 1 || calls[0] != call {
		t.Fatalf("expected the single call, got %v", calls)
	}
}

func TestMethodDescriptor_OverriddenFirstWriteWins(t *testing.T) {
	d := &MethodDescriptor{Name: "m"}
	if _, known := d.Overridden(); known {
		t.Fatal("flag must start unknown")
	}
	if !d.SetOverridden(true) {
		t.Fatal("first write must be stored")
	}
	if d.SetOverridden(false) {
		t.Fatal("second write must be ignored")
	}
	if v, known := d.Overridden(); !known || !v {
		t.Fatalf("Overridden = %v, %v", v, known)
	}
}

func TestMethodDescriptor_ConcurrentUsages(t *testing.T) {
	d := &MethodDescriptor{Name: "m"}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.AddUsage(&MethodCall{Name: "m"})
		}()
	}
	wg.Wait()
	usages := d.Usages()
	if len(usages) != 16 {
		t.Fatalf("expected 16 usages, got %d", len(usages))
	}
	usages[0] = nil
	if d.Usages()[0] == nil {
		t.Fatal("Usages must return a copy")
	}
}

func TestMethodDescriptor_IsVariadic(t *testing.T) {
	d := &MethodDescriptor{Params: []Parameter{{Name: "a", Type: TypeRef{Name: "int"}}, {Name: "rest", Type: TypeRef{Name: "String", Variadic: true}}}}
	if !d.IsVariadic() {
		t.Fatal("expected variadic")
	}
	if (&MethodDescriptor{}).IsVariadic() {
		t.Fatal("no params is not variadic")
	}
}

func TestModifiers(t *testing.T) {
	m := Modifiers{
		Keywords: []string{"public", "static"},
		Annotations: []Annotation{
			{Name: "java.lang.Override"},
			{Name: "SuppressWarnings", Args: []string{`"unchecked"`}},
		},
	}
	if !m.IsPublic() || !m.IsStatic() || m.IsFinal() || m.IsPrivate() {
		t.Fatal("keyword lookup mismatch")
	}
	if !m.HasMarker("Override") {
		t.Fatal("qualified marker must match its simple name")
	}
	if m.HasMarker("SuppressWarnings") {
		t.Fatal("annotations with arguments are not markers")
	}
}

func TestTypeRefString(t *testing.T) {
	tests := []struct {
		ref  TypeRef
		want string
	}{
		{TypeRef{}, ""},
		{TypeRef{Name: "int", Dims: 2}, "int[][]"},
		{TypeRef{Name: "String", Variadic: true}, "String..."},
		{TypeRef{Name: "List<String>", Dims: 1}, "List<String>[]"},
	}
	for _, tt := range tests {
		if got := tt.ref.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestProject(t *testing.T) {
	b := &CompilationUnit{Path: "b/B.java"}
	a := &CompilationUnit{Path: "a/A.java"}
	p := NewProject(b, a)
	if p.Len() != 2 {
		t.Fatalf("Len = %d", p.Len())
	}
	if paths := p.Paths(); paths[0] != "a/A.java" || paths[1] != "b/B.java" {
		t.Fatalf("paths not sorted: %v", paths)
	}

	replacement := &CompilationUnit{Path: "a/A.java", Package: &PackageDecl{Name: "a"}}
	p.Add(replacement)
	if p.Len() != 2 {
		t.Fatal("replacing a unit must not add a path")
	}
	if u, ok := p.Unit("a/A.java"); !ok || u != replacement || u.PackageName() != "a" {
		t.Fatal("expected replacement unit")
	}
	if units := p.Units(); units[1] != b {
		t.Fatal("Units must follow path order")
	}
	if a.PackageName() != "" || a.Dir() != "a" {
		t.Fatalf("default package unit: %q %q", a.PackageName(), a.Dir())
	}
}
