// # internal/engine/parser/pool_test.go
package parser

import (
	"sync"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"semresolve/internal/core/errors"
)

func javaLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_java.Language())
}

func newJavaPool(t *testing.T) *ParserPool {
	t.Helper()
	pool, err := NewParserPool(javaLanguage())
	if err != nil {
		t.Fatalf("NewParserPool: %v", err)
	}
	return pool
}

func TestNewParserPool_RejectsNilGrammar(t *testing.T) {
	pool, err := NewParserPool(nil)
	if err == nil || pool != nil {
		t.Fatal("expected an error for a nil grammar")
	}
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestParserPool_GetPut(t *testing.T) {
	pool := newJavaPool(t)

	sp := pool.Get()
	if sp == nil {
		t.Fatal("expected non-nil parser from pool")
	}
	if pool.Leased() != 1 {
		t.Fatalf("expected 1 leased parser, got %d", pool.Leased())
	}
	pool.Put(sp)
	if pool.Leased() != 0 {
		t.Fatalf("expected no leased parsers, got %d", pool.Leased())
	}
}

func TestParserPool_PutNil(t *testing.T) {
	pool := newJavaPool(t)
	pool.Put(nil)
}

func TestParserPool_ParsesValidJava(t *testing.T) {
	pool := newJavaPool(t)
	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse([]byte("class A { void m() {} }\n"), nil)
	if tree == nil {
		t.Fatal("expected non-nil parse tree")
	}
	defer tree.Close()
	if root := tree.RootNode(); root.HasError() {
		t.Fatal("expected error-free root node")
	}
}

func TestParserPool_Concurrent(t *testing.T) {
	pool := newJavaPool(t)
	src := []byte("class A { int x = 1; }\n")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sp := pool.Get()
			defer pool.Put(sp)
			tree := sp.Parse(src, nil)
			if tree == nil {
				t.Error("nil tree")
				return
			}
			tree.Close()
		}()
	}
	wg.Wait()
	if pool.Leased() != 0 {
		t.Fatalf("expected all parsers returned, %d leased", pool.Leased())
	}
}
