package cliapp

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"semresolve/internal/core/config"
)

func TestApplyOptions_OverridesConfig(t *testing.T) {
	opts := &cliOptions{workers: 3, noUsages: true, filter: "on*"}
	cfg := config.DefaultConfig()

	if err := applyOptions(opts, cfg, []string{"./src"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Analysis.Workers != 3 {
		t.Fatalf("expected 3 workers, got %d", cfg.Analysis.Workers)
	}
	if cfg.Analysis.UsagesEnabled() {
		t.Fatal("expected usage pass disabled")
	}
	if cfg.Analysis.OverrideFilter != "on*" {
		t.Fatalf("unexpected filter: %q", cfg.Analysis.OverrideFilter)
	}
	if len(cfg.Scan.Roots) != 1 || cfg.Scan.Roots[0] != "./src" {
		t.Fatalf("unexpected roots: %v", cfg.Scan.Roots)
	}
}

func TestApplyOptions_RejectsBadValues(t *testing.T) {
	if err := applyOptions(&cliOptions{workers: -1}, config.DefaultConfig(), nil); err == nil {
		t.Fatal("expected error for negative workers")
	}
	if err := applyOptions(&cliOptions{filter: "["}, config.DefaultConfig(), nil); err == nil {
		t.Fatal("expected error for invalid filter glob")
	}
}

func TestLoadConfig_MissingDefaultFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Analysis.Workers != 1 {
		t.Fatalf("expected defaults, got %+v", cfg.Analysis)
	}

	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for explicit missing config")
	}
}

func TestResolveLogPath_UsesXDGStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	if got := resolveLogPath(); got != filepath.Join("/tmp/state", "semresolve", "semresolve.log") {
		t.Fatalf("unexpected log path: %s", got)
	}
}

func writeSample(t *testing.T, extra string) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/p/Shape.java":  "package p;\n\npublic abstract class Shape {\n    public abstract double area();\n}\n",
		"src/p/Square.java": "package p;\n\npublic class Square extends Shape {\n    public double area() {\n        return 4.0;\n    }\n\n    public double twice() {\n        return area() * 2;\n    }\n}\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfgPath := filepath.Join(root, "semresolve.toml")
	cfg := "[paths]\nproject_root = '" + root + "'\n\n[scan]\nroots = ['src']\n" + extra
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	opts := &cliOptions{}
	root := newRootCommand(opts)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands(t *testing.T) {
	cfgPath := writeSample(t, "")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"analyze", []string{"analyze"}, []string{"2 files", "Overrides: 1 of 3 methods", "Calls: 1 of 1 bound"}},
		{"subtype", []string{"subtype", "p.Shape", "p.Square"}, []string{"p.Square <: p.Shape: yes"}},
		{"not subtype", []string{"subtype", "p.Square", "p.Shape"}, []string{"p.Shape <: p.Square: no"}},
		{"resolve", []string{"resolve", "Shape", "--from", "p.Square"}, []string{"Shape: p.Shape (src/p/Shape.java)"}},
		{"resolve missing", []string{"resolve", "Circle", "--from", "p.Square"}, []string{"Circle: not found"}},
		{"overridden", []string{"overridden", "p.Square", "area"}, []string{"p.Square#area(): yes"}},
		{"usages", []string{"usages", "p.Square", "area"}, []string{"p.Square#area() (1)", "src/p/Square.java:9:"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "--config", cfgPath)...)
			if err != nil {
				t.Fatalf("unexpected error: %v\n%s", err, out)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestCommands_Errors(t *testing.T) {
	cfgPath := writeSample(t, "")

	if _, err := execute(t, "overridden", "p.Square", "perimeter", "--config", cfgPath); err == nil {
		t.Fatal("expected error for unknown method")
	}
	if _, err := execute(t, "resolve", "Shape", "--from", "p.Nope", "--config", cfgPath); err == nil {
		t.Fatal("expected error for unknown context type")
	}
	if _, err := execute(t, "subtype", "p.Shape", "--config", cfgPath); err == nil {
		t.Fatal("expected argument count error")
	}
}

func TestHistory(t *testing.T) {
	cfgPath := writeSample(t, "\n[store]\nenabled = true\n")

	if out, err := execute(t, "analyze", "--config", cfgPath); err != nil {
		t.Fatalf("analyze failed: %v\n%s", err, out)
	}

	out, err := execute(t, "history", "--config", cfgPath)
	if err != nil {
		t.Fatalf("history failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Stored:    3 signatures") {
		t.Errorf("unexpected run summary:\n%s", out)
	}

	out, err = execute(t, "history", "p.Square#area()", "--config", cfgPath)
	if err != nil {
		t.Fatalf("history failed: %v\n%s", err, out)
	}
	for _, want := range []string{"overridden: yes", "usages:     1", "src/p/Square.java:9:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
