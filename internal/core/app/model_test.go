package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semresolve/internal/engine/ast"
	"semresolve/internal/engine/parser"
	"semresolve/internal/engine/scope"
	"semresolve/internal/engine/types"
)

func analyzeSources(t *testing.T, sources map[string]string) *Analysis {
	t.Helper()
	p := parser.NewParser(parser.NewGrammarLoader())
	project := ast.NewProject()
	for path, src := range sources {
		unit, err := p.ParseFile(path, []byte(src))
		require.NoError(t, err)
		project.Add(unit)
	}
	a, err := Analyze(context.Background(), project, Options{Workers: 2, ResolveUsages: true})
	require.NoError(t, err)
	return a
}

func TestModel_Resolve(t *testing.T) {
	a := analyzeSources(t, map[string]string{
		"p/Outer.java": `package p;

import q.Helper;

public class Outer {
    static class Inner {}
}
`,
		"q/Helper.java": "package q;\n\npublic class Helper {}\n",
	})
	m := a.Model

	ctx, ok := m.ContextOf("p.Outer")
	require.True(t, ok)

	qt := m.Resolve("Inner", ctx)
	assert.True(t, qt.Resolved())
	assert.Equal(t, "p.Outer.Inner", qt.Name)

	qt, ok = m.ResolveStrict("Helper", ctx)
	assert.True(t, ok)
	assert.Equal(t, "q.Helper", qt.Name)

	_, ok = m.ResolveStrict("String", ctx)
	assert.False(t, ok, "types outside the project are not found strictly")
	qt = m.Resolve("String", ctx)
	assert.Equal(t, "java.lang.String", qt.Name)
	assert.False(t, qt.Resolved())

	qt, ok = m.ResolveStrict("int", ctx)
	assert.True(t, ok)
	assert.Equal(t, "int", qt.Name)

	_, ok = m.ResolveStrict("Nowhere", ctx)
	assert.False(t, ok)
	assert.Equal(t, "Nowhere", m.Resolve("Nowhere", ctx).Name)

	_, ok = m.ContextOf("p.Missing")
	assert.False(t, ok)

	decl, ok := m.Type("p.Outer.Inner")
	require.True(t, ok)
	assert.Equal(t, "Inner", decl.Name())
}

func TestModel_MethodsAndAnonymousOwners(t *testing.T) {
	a := analyzeSources(t, map[string]string{
		"p/Task.java": `package p;

public class Task implements Runnable {
    public void run() {
        Runnable r = new Runnable() {
            public void run() {
            }
        };
        r.run();
    }
}
`,
	})
	m := a.Model

	var owners []string
	for _, ref := range m.Methods() {
		owners = append(owners, ref.Owner)
	}
	assert.Equal(t, []string{"p.Task", "p.Task.<anonymous>"}, owners)

	_, known := m.OverriddenBySignature("p.Task.<anonymous>#run()")
	assert.True(t, known)
}

func TestModel_Infer(t *testing.T) {
	a := analyzeSources(t, map[string]string{
		"p/A.java": "package p;\n\nclass A {}\n",
	})
	s := scope.New()
	got := a.Model.Infer(&ast.Literal{Kind: ast.LitString, Value: `"x"`}, s)
	assert.Equal(t, types.Of(types.String, 0), got)
}
