package scope

import (
	"fmt"
	"strings"
	"testing"

	"semresolve/internal/engine/ast"
	"semresolve/internal/engine/enginetest"
)

type mark struct {
	vars       []Variable
	enclosing  *ast.TypeDecl
	named      *ast.TypeDecl
	top        *ast.TypeDecl
	types      int
	method     *ast.MethodDescriptor
	static     bool
	body       ast.Node
	typeParams []ast.TypeParam
	pkg        string
	path       string
}

// recorder snapshots the stack at every call whose name starts with "mark".
type recorder struct {
	stack  *Stack
	marks map[string]mark
}

func (r *recorder) Enter(n ast.Node) bool {
	r.stack.Push(n)
	if c, ok := n.(*ast.MethodCall); ok && strings.HasPrefix(c.Name, "mark") {
		named, _ := r.stack.LookupNamedType()
		method, _ := r.stack.EnclosingMethod()
		r.marks[c.Name] = mark{
			vars:       r.stack.Variables(),
			enclosing:  r.stack.EnclosingType(),
			named:      named,
			top:        r.stack.TopLevelType(),
			types:      len(r.stack.EnclosingTypes()),
			method:     method,
			static:     r.stack.IsStatic(),
			body:       r.stack.ActiveBody(),
			typeParams: r.stack.TypeParams(),
			pkg:        r.stack.Package(),
			path:       r.stack.Path(),
		}
	}
	return true
}

func (r *recorder) Leave(ast.Node) { r.stack.Pop() }

func record(t *testing.T, src string) map[string]mark {
	t.Helper()
	u := enginetest.Unit(t, "p/A.java", src)
	r := &recorder{stack: New(), marks: make(map[string]mark)}
	ast.Walk(r, u)
	if r.stack.Len() != 0 {
		t.Fatalf("stack not balanced: %d left", r.stack.Len())
	}
	return r.marks
}

func names(vars []Variable) string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name
	}
	return strings.Join(out, " ")
}

func TestStack_Variables(t *testing.T) {
	marks := record(t, `package p;
class A {
    static void s(int a, String... rest) {
        int x = 1, y[] = {};
        mark1();
        for (int i = 0; i < 1; i++) {
            String str = "";
            mark2();
        }
        int z = 2;
    }
}`)

	p1, ok := marks["mark1"]
	if !ok {
		t.Fatal("mark1 not visited")
	}
	if got := names(p1.vars); got != "y x rest a" {
		t.Fatalf("mark1 variables = %q", got)
	}
	for _, v := range p1.vars {
		switch v.Name {
		case "y":
			if v.Type.Name != "int" || v.Type.Dims != 1 {
				t.Errorf("y type = %+v", v.Type)
			}
		case "rest":
			if v.Type.Variadic || v.Type.Dims != 1 {
				t.Errorf("variadic param must read as an array, got %+v", v.Type)
			}
		}
	}
	if !p1.static {
		t.Error("expected static context")
	}
	if p1.pkg != "p" || p1.path != "p/A.java" {
		t.Errorf("unit info = %q %q", p1.pkg, p1.path)
	}

	p2 := marks["mark2"]
	if got := names(p2.vars); got != "str i y x rest a" {
		t.Fatalf("mark2 variables = %q", got)
	}
}

func TestStack_LookupVariableShadowing(t *testing.T) {
	u := enginetest.Unit(t, "p/A.java", `package p;
class A {
    void m(String v) {
        Runnable r = () -> {
            int v2 = 0;
            mark();
        };
    }
}`)
	s := New()
	var got Variable
	var found bool
	ast.Walk(visitFunc{
		enter: func(n ast.Node) {
			s.Push(n)
			if c, ok := n.(*ast.MethodCall); ok && c.Name == "mark" {
				got, found = s.LookupVariable("v")
			}
		},
		leave: func() { s.Pop() },
	}, u)
	if !found || got.Type.Name != "String" {
		t.Fatalf("LookupVariable(v) = %+v, %v", got, found)
	}
	if _, ok := s.LookupVariable("v"); ok {
		t.Fatal("nothing is visible on an empty stack")
	}
}

type visitFunc struct {
	enter func(ast.Node)
	leave func()
}

func (v visitFunc) Enter(n ast.Node) bool { v.enter(n); return true }
func (v visitFunc) Leave(ast.Node)        { v.leave() }

func TestStack_EnclosingTypes(t *testing.T) {
	marks := record(t, `package p;
class B<T> {
    <U> void m() {
        new Runnable() {
            public void run() { mark(); }
        };
    }
}`)
	p, ok := marks["mark"]
	if !ok {
		t.Fatal("mark not visited")
	}
	if p.enclosing.Kind != ast.KindAnonymous {
		t.Fatalf("innermost type kind = %v", p.enclosing.Kind)
	}
	if p.named == nil || p.named.Name() != "B" || p.top.Name() != "B" {
		t.Fatal("named and top-level types must be B")
	}
	if p.types != 2 {
		t.Fatalf("expected 2 enclosing types, got %d", p.types)
	}
	if p.method == nil || p.method.Name != "run" {
		t.Fatalf("enclosing method = %+v", p.method)
	}
	if p.static {
		t.Fatal("instance method is not a static context")
	}
	if m, ok := p.body.(*ast.MethodDecl); !ok || m.Descriptor.Name != "run" {
		t.Fatalf("active body = %T", p.body)
	}
	if len(p.typeParams) != 2 || p.typeParams[0].Name != "U" || p.typeParams[1].Name != "T" {
		t.Fatalf("type params = %+v", p.typeParams)
	}
}

func TestStack_StaticContexts(t *testing.T) {
	marks := record(t, `package p;
class A {
    static int f = mark1();
    int g = mark2();
    static { mark3(); }
    A() { mark4(); }
}`)
	tests := []struct {
		mark   string
		static bool
		body   string
	}{
		{"mark1", true, "*ast.FieldDecl"},
		{"mark2", false, "*ast.FieldDecl"},
		{"mark3", true, "*ast.InitializerDecl"},
		{"mark4", false, "*ast.ConstructorDecl"},
	}
	for _, tt := range tests {
		m, ok := marks[tt.mark]
		if !ok {
			t.Fatalf("%s not visited", tt.mark)
		}
		if m.static != tt.static {
			t.Errorf("%s: static = %v, want %v", tt.mark, m.static, tt.static)
		}
		if got := fmt.Sprintf("%T", m.body); got != tt.body {
			t.Errorf("%s: active body = %s, want %s", tt.mark, got, tt.body)
		}
	}
}

func TestStack_PanicsWithoutUnit(t *testing.T) {
	mustPanic := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}
	s := New()
	mustPanic("Unit", func() { s.Unit() })
	mustPanic("Pop", func() { s.Pop() })
	mustPanic("EnclosingType", func() { s.EnclosingType() })
	mustPanic("TopLevelType", func() { s.TopLevelType() })
	mustPanic("ActiveBody", func() { s.ActiveBody() })

	s.Push(&ast.Block{})
	mustPanic("Unit on wrong bottom", func() { s.Unit() })
	if s.Top() == nil || s.Len() != 1 {
		t.Fatal("expected one node on the stack")
	}
}
