package names

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"semresolve/internal/engine/enginetest"
)

func resolverFixture(t *testing.T) (*Resolver, *Index) {
	t.Helper()
	p := enginetest.Parse(t, map[string]string{
		"a/Outer.java": `package a;
import b.Helper;
import c.*;
import java.util.List;
class Outer {
    class Inner { class Deep {} }
    static class Sibling {}
}`,
		"a/Peer.java":   "package a; class Peer {}",
		"b/Helper.java": "package b; public class Helper { public static class Nested {} }",
		"c/Wild.java":   "package c; public class Wild {}",
		"Loose.java":    "class Loose {}",
		"Other.java":    "class Other {}",
		"sub/Far.java":  "class Far {}",
	})
	ix := BuildIndex(p)
	return NewResolver(ix, 16), ix
}

func contextOf(t *testing.T, ix *Index, qualified string) Context {
	t.Helper()
	e, ok := ix.Lookup(qualified)
	if !ok {
		t.Fatalf("%s not indexed", qualified)
	}
	return ix.ContextFor(e)
}

func TestResolver_SearchOrder(t *testing.T) {
	r, ix := resolverFixture(t)
	inDeep := contextOf(t, ix, "a.Outer.Inner.Deep")
	inOuter := contextOf(t, ix, "a.Outer")

	tests := []struct {
		name string
		ctx  Context
		in   string
		want string
	}{
		{"own subtree", inOuter, "Inner", "a.Outer.Inner"},
		{"nested qualified", inOuter, "Inner.Deep", "a.Outer.Inner.Deep"},
		{"self", inDeep, "Deep", "a.Outer.Inner.Deep"},
		{"top level sibling", inDeep, "Sibling", "a.Outer.Sibling"},
		{"same package", inOuter, "Peer", "a.Peer"},
		{"single import", inOuter, "Helper", "b.Helper"},
		{"import member", inOuter, "Helper.Nested", "b.Helper.Nested"},
		{"wildcard import", inOuter, "Wild", "c.Wild"},
		{"absolute", inOuter, "b.Helper", "b.Helper"},
		{"generics stripped", inOuter, "Helper<String>", "b.Helper"},
		{"array stripped", inOuter, "Peer[]", "a.Peer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qt, ok := r.ResolveStrict(tt.in, tt.ctx)
			if !ok {
				t.Fatalf("ResolveStrict(%q) not found", tt.in)
			}
			if qt.Name != tt.want || !qt.Resolved() {
				t.Fatalf("ResolveStrict(%q) = %q, want %q", tt.in, qt.Name, tt.want)
			}
			if got := r.Resolve(tt.in, tt.ctx); got.Name != tt.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tt.in, got.Name, tt.want)
			}
		})
	}
}

func TestResolver_Fallbacks(t *testing.T) {
	r, ix := resolverFixture(t)
	ctx := contextOf(t, ix, "a.Outer")

	tests := []struct {
		in     string
		strict bool
		want   string
	}{
		{"int", true, "int"},
		{"void", true, "void"},
		{"List", false, "java.util.List"},
		{"String", false, "java.lang.String"},
		{"x.y.Unknown", false, "x.y.Unknown"},
		{"Nowhere", false, "Nowhere"},
	}
	for _, tt := range tests {
		qt, ok := r.ResolveStrict(tt.in, ctx)
		if ok != tt.strict {
			t.Errorf("ResolveStrict(%q) found=%v, want %v", tt.in, ok, tt.strict)
		}
		if qt.Resolved() {
			t.Errorf("%q must not map to a project declaration", tt.in)
		}
		if got := r.Resolve(tt.in, ctx); got.Name != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got.Name, tt.want)
		}
	}
}

func TestResolver_DefaultPackageIsDirectoryLocal(t *testing.T) {
	r, ix := resolverFixture(t)

	if qt, ok := r.ResolveStrict("Loose", contextOf(t, ix, "Other")); !ok || qt.Path() != "Loose.java" {
		t.Fatalf("Loose must be visible from the same directory, got %+v %v", qt, ok)
	}
	if _, ok := r.ResolveStrict("Loose", contextOf(t, ix, "Far")); ok {
		t.Fatal("Loose must not be visible from another directory")
	}
	if _, ok := r.ResolveStrict("Loose", contextOf(t, ix, "a.Peer")); ok {
		t.Fatal("default package types must not be visible from a named package")
	}
}

func TestResolver_InnerScopeShadowsOuter(t *testing.T) {
	p := enginetest.Parse(t, map[string]string{
		"p/A.java": `package p;
class A {
    class Node {}
    class B {
        class Node {}
        void m() {}
    }
}`,
		"p/Node.java": "package p; class Node {}",
	})
	ix := BuildIndex(p)
	r := NewResolver(ix, 0)

	if got := r.Resolve("Node", contextOf(t, ix, "p.A.B")).Name; got != "p.A.B.Node" {
		t.Fatalf("inside B: got %s", got)
	}
	if got := r.Resolve("Node", contextOf(t, ix, "p.A")).Name; got != "p.A.Node" {
		t.Fatalf("inside A: got %s", got)
	}
	if got := r.Resolve("Node", contextOf(t, ix, "p.Node")).Name; got != "p.Node" {
		t.Fatalf("inside p.Node: got %s", got)
	}
}

func TestResolver_CachesAndReset(t *testing.T) {
	r, ix := resolverFixture(t)
	ctx := contextOf(t, ix, "a.Outer")

	r.Resolve("Wild", ctx)
	first := r.Stats()
	if first.Misses == 0 {
		t.Fatal("expected misses on a cold cache")
	}
	r.Resolve("Wild", ctx)
	second := r.Stats()
	if second.Hits <= first.Hits || second.Misses != first.Misses {
		t.Fatalf("expected only hits on repeat, got %+v then %+v", first, second)
	}

	r.Reset()
	if s := r.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Fatalf("expected zeroed stats after Reset, got %+v", s)
	}
	if got := r.Resolve("Wild", ctx).Name; got != "c.Wild" {
		t.Fatalf("Resolve after Reset = %s", got)
	}
}

func TestResolver_CacheBound(t *testing.T) {
	_, ix := resolverFixture(t)
	ctx := contextOf(t, ix, "a.Outer")
	written := []string{"Wild", "Helper", "Peer", "List", "String", "int"}
	for i := 0; i < 40; i++ {
		written = append(written, fmt.Sprintf("Gen%d", i))
	}

	resolveAll := func(r *Resolver) []string {
		out := make([]string, len(written))
		for i, w := range written {
			out[i] = r.Resolve(w, ctx).Name
		}
		return out
	}

	unbounded := NewResolver(ix, 0)
	first := resolveAll(unbounded)
	misses := unbounded.Stats().Misses
	if again := resolveAll(unbounded); !reflect.DeepEqual(again, first) {
		t.Fatalf("answers changed: %v then %v", first, again)
	}
	if got := unbounded.Stats().Misses; got != misses {
		t.Fatalf("unbounded caches searched again: %d misses, then %d", misses, got)
	}

	bounded := NewResolver(ix, 1)
	if got := resolveAll(bounded); !reflect.DeepEqual(got, first) {
		t.Fatalf("bounded answers = %v, want %v", got, first)
	}
	if got := resolveAll(bounded); !reflect.DeepEqual(got, first) {
		t.Fatalf("answers after eviction = %v, want %v", got, first)
	}
}

func TestSynchronized_ConcurrentUse(t *testing.T) {
	r, ix := resolverFixture(t)
	s := Synchronize(r)
	ctx := contextOf(t, ix, "a.Outer.Inner.Deep")

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 8; j++ {
				if got := s.Resolve("Sibling", ctx).Name; got != "a.Outer.Sibling" {
					errs <- got
				}
				if _, ok := s.ResolveStrict("Helper", ctx); !ok {
					errs <- "Helper"
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("unexpected result %q", e)
	}
	if st := s.Stats(); st.Hits == 0 {
		t.Fatalf("expected cache hits across goroutines, got %+v", st)
	}
}
