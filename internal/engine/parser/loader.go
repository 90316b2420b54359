// # internal/engine/parser/loader.go
package parser

import (
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// LanguageSpec describes how files of one language are recognized.
type LanguageSpec struct {
	Name             string
	Extensions       []string
	TestFileSuffixes []string
}

var javaSpec = LanguageSpec{
	Name:             "java",
	Extensions:       []string{".java"},
	TestFileSuffixes: []string{"Test.java", "Tests.java", "IT.java"},
}

// GrammarLoader holds the compiled tree-sitter grammars.
type GrammarLoader struct {
	languages map[string]*sitter.Language
	registry  map[string]LanguageSpec
}

func NewGrammarLoader() *GrammarLoader {
	return &GrammarLoader{
		languages: map[string]*sitter.Language{
			javaSpec.Name: sitter.NewLanguage(tree_sitter_java.Language()),
		},
		registry: map[string]LanguageSpec{javaSpec.Name: javaSpec},
	}
}

func (gl *GrammarLoader) Language(name string) (*sitter.Language, bool) {
	lang, ok := gl.languages[name]
	return lang, ok
}

func (gl *GrammarLoader) LanguageRegistry() map[string]LanguageSpec {
	out := make(map[string]LanguageSpec, len(gl.registry))
	for k, v := range gl.registry {
		out[k] = v
	}
	return out
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	set := make(map[string]bool)
	for _, spec := range gl.registry {
		for _, ext := range spec.Extensions {
			set[strings.ToLower(ext)] = true
		}
	}
	extensions := make([]string, 0, len(set))
	for ext := range set {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
