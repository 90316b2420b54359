package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semresolve/internal/core/config"
)

const baseSource = `package p;

public class Base {
    public int add(int a, int b) {
        return a + b;
    }

    protected void reset() {
    }
}
`

const derivedSource = `package p;

public class Derived extends Base {
    public int add(int a, int b) {
        return a - b;
    }

    @Override
    public String toString() {
        return "derived";
    }

    public int twice(int x) {
        return add(x, x);
    }

    public int viaSuper(int x) {
        return super.add(x, 1);
    }
}
`

const derivedTestSource = `package p;

public class DerivedTest {
    void check() {
        new Derived().twice(2);
    }
}
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newTestApp(t *testing.T, root string, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Paths.ProjectRoot = root
	if mutate != nil {
		mutate(cfg)
	}
	a, err := New(cfg, root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func sampleProject(t *testing.T) string {
	return writeProject(t, map[string]string{
		"src/p/Base.java":        baseSource,
		"src/p/Derived.java":     derivedSource,
		"src/p/DerivedTest.java": derivedTestSource,
		"src/p/notes.txt":        "ignored",
		"build/p/Gen.java":       "package p; class Gen {}",
	})
}

func TestScanDirectories(t *testing.T) {
	root := sampleProject(t)
	a := newTestApp(t, root, nil)

	files, err := a.ScanDirectories(a.Paths.Roots)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "src", "p", "Base.java"),
		filepath.Join(root, "src", "p", "Derived.java"),
	}, files)

	withTests := newTestApp(t, root, func(c *config.Config) { c.Scan.IncludeTests = true })
	files, err = withTests.ScanDirectories(withTests.Paths.Roots)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestRun(t *testing.T) {
	root := sampleProject(t)
	a := newTestApp(t, root, func(c *config.Config) { c.Analysis.Workers = 2 })

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Analysis)
	assert.False(t, res.Incomplete)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 2, res.Files)
	assert.Empty(t, res.ParseErrors)

	m := res.Analysis.Model
	assert.True(t, m.IsStrictSubtype("p.Base", "p.Derived"))
	assert.True(t, m.IsSubtypeOrEqual("java.lang.Object", "p.Derived"))
	assert.False(t, m.IsSubtypeOrEqual("p.Derived", "p.Base"))

	flags := m.Signatures()
	assert.Equal(t, map[string]bool{
		"p.Base#add(int,int)":     false,
		"p.Base#reset()":          false,
		"p.Derived#add(int,int)":  true,
		"p.Derived#toString()":    true,
		"p.Derived#twice(int)":    false,
		"p.Derived#viaSuper(int)": false,
	}, flags)

	derivedAdd := m.FindMethods("p.Derived", "add")
	require.Len(t, derivedAdd, 1)
	overridden, known := m.Overridden(derivedAdd[0].Decl)
	assert.True(t, known)
	assert.True(t, overridden)
	assert.Equal(t, "src/p/Derived.java", derivedAdd[0].Path)

	usages := m.Usages(derivedAdd[0].Decl)
	require.Len(t, usages, 1)
	assert.Equal(t, "add", usages[0].Name)
	path, ok := m.CallPath(usages[0])
	assert.True(t, ok)
	assert.Equal(t, "src/p/Derived.java", path)

	baseAdd := m.FindMethods("p.Base", "add")
	require.Len(t, baseAdd, 1)
	assert.Len(t, m.Usages(baseAdd[0].Decl), 1, "super.add binds to the ancestor")

	last, ok := a.LastResult()
	require.True(t, ok)
	assert.Equal(t, res.RunID, last.RunID)
	assert.Equal(t, "up", a.Health(context.Background()).Status)
}

func TestRunOverrideFilter(t *testing.T) {
	root := sampleProject(t)
	a := newTestApp(t, root, func(c *config.Config) { c.Analysis.OverrideFilter = "add" })

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Analysis.Overrides.Methods)
	assert.Equal(t, 1, res.Analysis.Overrides.Overridden)

	_, known := res.Analysis.Model.OverriddenBySignature("p.Derived#twice(int)")
	assert.False(t, known)
}

func TestRunWithoutUsages(t *testing.T) {
	root := sampleProject(t)
	off := false
	a := newTestApp(t, root, func(c *config.Config) { c.Analysis.ResolveUsages = &off })

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Analysis.Usages.Calls)
}

func TestRunPersistsToStore(t *testing.T) {
	root := sampleProject(t)
	a := newTestApp(t, root, func(c *config.Config) {
		c.Store.Enabled = true
		c.Store.ProjectKey = "sample"
	})
	require.NotNil(t, a.Store())

	res, err := a.Run(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	run, err := a.Store().LatestRun(ctx, "sample")
	require.NoError(t, err)
	assert.Equal(t, res.RunID, run.ID)
	assert.Equal(t, 2, run.Files)
	assert.Equal(t, 2, run.Overridden)

	flags, err := a.Store().Overrides(ctx, res.RunID)
	require.NoError(t, err)
	assert.True(t, flags["p.Derived#add(int,int)"])

	usages, err := a.Store().Usages(ctx, res.RunID, "p.Derived#add(int,int)")
	require.NoError(t, err)
	require.Len(t, usages, 1)
	assert.Equal(t, "src/p/Derived.java", usages[0].Path)
}

func TestRunCancelled(t *testing.T) {
	root := sampleProject(t)
	a := newTestApp(t, root, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := a.Run(ctx)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Incomplete)
	assert.Equal(t, "degraded", a.Health(context.Background()).Status)
}

func TestParseFilesReportsUnreadable(t *testing.T) {
	root := sampleProject(t)
	a := newTestApp(t, root, nil)

	missing := filepath.Join(root, "src", "p", "Missing.java")
	project, failed, err := a.ParseFiles(context.Background(), []string{
		filepath.Join(root, "src", "p", "Base.java"),
		missing,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, project.Len())
	require.Len(t, failed, 1)
	assert.Equal(t, "src/p/Missing.java", failed[0].Path)
}
