// # internal/engine/parser/parser.go
package parser

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"semresolve/internal/core/errors"
	"semresolve/internal/engine/ast"
	"semresolve/internal/shared/observability"
)

// Parser turns source files into compilation units. It is safe for
// concurrent use.
type Parser struct {
	loader         *GrammarLoader
	pools          map[string]*ParserPool
	extensions     map[string]string
	testFileSuffix []string
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		pools:      make(map[string]*ParserPool),
		extensions: make(map[string]string),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if grammar, ok := loader.Language(lang); ok {
			pool, err := NewParserPool(grammar)
			if err != nil {
				slog.Warn("grammar rejected", "language", lang, "error", err)
			} else {
				p.pools[lang] = pool
			}
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		p.testFileSuffix = append(p.testFileSuffix, spec.TestFileSuffixes...)
	}
	sort.Strings(p.testFileSuffix)
	return p
}

// ParseFile parses one file. Syntax errors do not fail the parse: the
// affected constructs come back as empty statements or unknown
// expressions.
func (p *Parser) ParseFile(path string, content []byte) (*ast.CompilationUnit, error) {
	lang := p.GetLanguage(path)
	if lang == "" {
		return nil, (&errors.DomainError{Code: errors.CodeNotSupported, Message: "unsupported language"}).
			WithContext(errors.CtxPath, path)
	}
	pool := p.pools[lang]
	if pool == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	start := time.Now()
	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, (&errors.DomainError{Code: errors.CodeParseFailed, Message: "parse failed"}).
			WithContext(errors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		slog.Debug("syntax errors in file", "path", path)
	}
	unit := newConverter(content, path).unit(root)
	observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	return unit, nil
}

func (p *Parser) GetLanguage(path string) string {
	return p.extensions[strings.ToLower(filepath.Ext(path))]
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.GetLanguage(path) != ""
}

func (p *Parser) IsTestFile(path string) bool {
	base := filepath.Base(path)
	for _, suffix := range p.testFileSuffix {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

func (p *Parser) SupportedExtensions() []string {
	return p.loader.SupportedExtensions()
}

func (p *Parser) TestFileSuffixes() []string {
	return append([]string(nil), p.testFileSuffix...)
}
