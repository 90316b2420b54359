// # internal/engine/parser/pool.go
package parser

import (
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"semresolve/internal/core/errors"
)

// ParserPool recycles tree-sitter parsers bound to one grammar.
//
//	sp := pool.Get()
//	defer pool.Put(sp)
//	tree := sp.Parse(source, nil)
//
// Safe for concurrent use.
type ParserPool struct {
	pool   sync.Pool
	leased atomic.Int64
}

// NewParserPool checks that lang can be loaded by this tree-sitter runtime.
// Every parser the pool creates afterwards is bound to the same language.
func NewParserPool(lang *sitter.Language) (*ParserPool, error) {
	if lang == nil {
		return nil, errors.New(errors.CodeValidationError, "nil grammar")
	}
	first := sitter.NewParser()
	if err := first.SetLanguage(lang); err != nil {
		first.Close()
		return nil, errors.Wrap(err, errors.CodeNotSupported, "incompatible grammar")
	}

	p := &ParserPool{}
	p.pool.New = func() any {
		sp := sitter.NewParser()
		// Cannot fail: the same language was accepted above.
		_ = sp.SetLanguage(lang)
		return sp
	}
	p.pool.Put(first)
	return p, nil
}

// Get leases a parser.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	p.leased.Add(1)
	return sp
}

// Put resets sp and returns it. Callers must not use sp afterwards.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.leased.Add(-1)
	sp.Reset()
	p.pool.Put(sp)
}

// Leased returns the number of parsers currently checked out.
func (p *ParserPool) Leased() int {
	return int(p.leased.Load())
}
