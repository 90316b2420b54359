package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gobwas/glob"

	"semresolve/internal/core/errors"
	"semresolve/internal/engine/ast"
	"semresolve/internal/engine/workers"
	"semresolve/internal/shared/util"
)

// ScanDirectories walks roots and returns the sorted, de-duplicated source
// files accepted by the parser and the scan excludes.
func (a *App) ScanDirectories(roots []string) ([]string, error) {
	dirGlobs, err := compileGlobs("exclude dir", a.Config.Scan.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs("exclude file", a.Config.Scan.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				if path == root {
					return nil
				}
				if matchAny(dirGlobs, base) {
					return filepath.SkipDir
				}
				return nil
			}

			if !a.Parser.IsSupportedPath(path) {
				return nil
			}
			if !a.Config.Scan.IncludeTests && a.Parser.IsTestFile(path) {
				return nil
			}
			if matchAny(fileGlobs, base) {
				return nil
			}

			seen[filepath.Clean(path)] = true
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}

	return util.SortedStringKeys(seen), nil
}

// ParseFiles reads and parses files on the worker pool. Units are keyed by
// their path relative to the project root. Unreadable or unparsable files
// are reported and skipped.
func (a *App) ParseFiles(ctx context.Context, files []string) (*ast.Project, []FileError, error) {
	units := make([]*ast.CompilationUnit, len(files))
	indexes := make([]int, len(files))
	for i := range indexes {
		indexes[i] = i
	}

	var (
		mu     sync.Mutex
		failed []FileError
	)
	fail := func(path string, err error) {
		mu.Lock()
		failed = append(failed, FileError{Path: path, Err: err})
		mu.Unlock()
	}

	err := workers.Run(ctx, a.Config.Analysis.Workers, indexes, func(_ context.Context, i int) error {
		path := files[i]
		rel := util.RelativeTo(a.Paths.ProjectRoot, path)
		content, err := os.ReadFile(path)
		if err != nil {
			fail(rel, errors.AddContext(errors.Wrap(err, errors.CodeParseFailed, "read source"), errors.CtxPath, rel))
			return nil
		}
		unit, err := a.Parser.ParseFile(rel, content)
		if err != nil {
			fail(rel, err)
			return nil
		}
		units[i] = unit
		return nil
	}, newErrorCollector(a.Listener))

	project := ast.NewProject()
	for _, u := range units {
		if u != nil {
			project.Add(u)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Path < failed[j].Path })
	return project, failed, err
}

func compileGlobs(kind string, patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", kind, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}
