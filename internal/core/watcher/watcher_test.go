// # internal/core/watcher/watcher_test.go
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func javaOptions(debounce time.Duration) Options {
	return Options{
		Debounce:     debounce,
		ExcludeDirs:  []string{"exclude_dir"},
		ExcludeFiles: []string{"*Generated.java"},
		Extensions:   []string{".java"},
		TestSuffixes: []string{"Test.java"},
	}
}

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(javaOptions(100*time.Millisecond), nil)
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestNewWatcher_RejectsBadPattern(t *testing.T) {
	opts := javaOptions(0)
	opts.ExcludeFiles = []string{"["}
	if _, err := NewWatcher(opts, func([]string) {}); err == nil {
		t.Fatal("expected error for invalid glob")
	}
}

func TestWatcher_Accepts(t *testing.T) {
	w, err := NewWatcher(javaOptions(0), func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	cases := []struct {
		path string
		want bool
	}{
		{filepath.Join("src", "Base.java"), true},
		{filepath.Join("src", "BASE.JAVA"), true},
		{filepath.Join("src", "notes.txt"), false},
		{filepath.Join("src", "BaseTest.java"), false},
		{filepath.Join("src", "ParserGenerated.java"), false},
		{filepath.Join("src", "exclude_dir", "Base.java"), false},
	}
	for _, tc := range cases {
		if got := w.Accepts(tc.path); got != tc.want {
			t.Errorf("Accepts(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}

	w.includeTests = true
	if !w.Accepts(filepath.Join("src", "BaseTest.java")) {
		t.Error("expected test file to be accepted when tests are included")
	}
}

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 4)
	w, err := NewWatcher(javaOptions(100*time.Millisecond), func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "Base.java")
	if err := os.WriteFile(testFile, []byte("class Base {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changedFiles:
		found := false
		for _, p := range paths {
			if p == testFile {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected to find %s in changed files %v", testFile, paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for file change event")
	}

	ignored := filepath.Join(tmpDir, "readme.md")
	if err := os.WriteFile(ignored, []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changedFiles:
		for _, p := range paths {
			if p == ignored {
				t.Error("Filtered file triggered event")
			}
		}
	case <-time.After(400 * time.Millisecond):
	}

	subdir := filepath.Join(tmpDir, "pkg")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	nested := filepath.Join(subdir, "Derived.java")
	if err := os.WriteFile(nested, []byte("class Derived extends Base {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case paths := <-changedFiles:
			for _, p := range paths {
				if p == nested {
					return
				}
			}
		case <-deadline:
			t.Fatal("Timed out waiting for nested file event")
		}
	}
}

func TestWatcher_DebounceBatches(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 4)
	w, err := NewWatcher(javaOptions(200*time.Millisecond), func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"A.java", "B.java", "C.java"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("class X {}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case paths := <-changedFiles:
		if len(paths) != 3 {
			t.Fatalf("expected one batch of 3 files, got %v", paths)
		}
		if filepath.Base(paths[0]) != "A.java" || filepath.Base(paths[2]) != "C.java" {
			t.Fatalf("expected sorted batch, got %v", paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for batch")
	}
}
