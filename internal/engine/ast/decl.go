package ast

import (
	"path/filepath"
	"sort"
	"sync"
)

// CompilationUnit is one parsed source file.
type CompilationUnit struct {
	base
	Path    string
	Package *PackageDecl
	Imports []*ImportDecl
	Types   []*TypeDecl
}

// PackageName returns the declared package, or "" for the default package.
func (u *CompilationUnit) PackageName() string {
	if u.Package == nil {
		return ""
	}
	return u.Package.Name
}

// Dir is the directory holding the file. Default-package lookups are limited
// to files sharing it.
func (u *CompilationUnit) Dir() string {
	return filepath.Dir(u.Path)
}

type PackageDecl struct {
	base
	Name string
}

// ImportDecl is an import. For wildcard imports Name excludes the ".*".
type ImportDecl struct {
	base
	Name     string
	Static   bool
	Wildcard bool
}

type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
	KindEnum
	KindAnnotation
	KindRecord
	KindAnonymous
)

func (k TypeKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindAnnotation:
		return "annotation"
	case KindRecord:
		return "record"
	case KindAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// TypeDescriptor is the header of a type declaration.
type TypeDescriptor struct {
	Modifiers
	Name       string
	TypeParams []TypeParam
	Extends    []string
	Implements []string
}

// Ancestors lists declared supertypes, extends first, as written.
func (d *TypeDescriptor) Ancestors() []string {
	out := make([]string, 0, len(d.Extends)+len(d.Implements))
	out = append(out, d.Extends...)
	out = append(out, d.Implements...)
	return out
}

// TypeDecl is a class, interface, enum, annotation, record or anonymous class
// body. Anonymous bodies have an empty name and list the instantiated type as
// their only ancestor.
type TypeDecl struct {
	stmt
	Kind       TypeKind
	Descriptor *TypeDescriptor
	Body       []Statement
}

func (t *TypeDecl) Name() string { return t.Descriptor.Name }

func (t *TypeDecl) Methods() []*MethodDecl {
	var out []*MethodDecl
	for _, s := range t.Body {
		if m, ok := s.(*MethodDecl); ok {
			out = append(out, m)
		}
	}
	return out
}

func (t *TypeDecl) Fields() []*FieldDecl {
	var out []*FieldDecl
	for _, s := range t.Body {
		if f, ok := s.(*FieldDecl); ok {
			out = append(out, f)
		}
	}
	return out
}

// NestedTypes returns member type declarations, excluding local and
// anonymous classes.
func (t *TypeDecl) NestedTypes() []*TypeDecl {
	var out []*TypeDecl
	for _, s := range t.Body {
		if n, ok := s.(*TypeDecl); ok && n.Kind != KindAnonymous {
			out = append(out, n)
		}
	}
	return out
}

// MethodDescriptor is the signature of a method or constructor plus the
// resolution results attached to it. Results may be written from several
// workers, so they sit behind a mutex.
type MethodDescriptor struct {
	Modifiers
	Name       string
	TypeParams []TypeParam
	ReturnType TypeRef
	Params     []Parameter
	Throws     []string

	mu         sync.Mutex
	overridden int8
	usages     []*MethodCall
}

// SetOverridden stores the override flag. The first write wins; later writes
// are ignored and reported as false.
func (d *MethodDescriptor) SetOverridden(v bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.overridden != 0 {
		return false
	}
	if v {
		d.overridden = 1
	} else {
		d.overridden = -1
	}
	return true
}

// Overridden returns the stored flag and whether it has been computed.
func (d *MethodDescriptor) Overridden() (value bool, known bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overridden == 1, d.overridden != 0
}

func (d *MethodDescriptor) AddUsage(call *MethodCall) {
	d.mu.Lock()
	d.usages = append(d.usages, call)
	d.mu.Unlock()
}

// Usages returns a copy of the recorded call sites.
func (d *MethodDescriptor) Usages() []*MethodCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*MethodCall, len(d.usages))
	copy(out, d.usages)
	return out
}

// IsVariadic reports whether the last parameter is variadic.
func (d *MethodDescriptor) IsVariadic() bool {
	return len(d.Params) > 0 && d.Params[len(d.Params)-1].Type.Variadic
}

type MethodDecl struct {
	stmt
	Descriptor *MethodDescriptor
	Body       *Block
}

type ConstructorDecl struct {
	stmt
	Descriptor *MethodDescriptor
	Body       *Block
}

type FieldDecl struct {
	stmt
	Modifiers
	Type TypeRef
	Vars []*VarDeclarator
}

// InitializerDecl is an instance or static initializer block.
type InitializerDecl struct {
	stmt
	Static bool
	Body   *Block
}

type EnumConstantDecl struct {
	stmt
	Name string
	Args []Expression
	Body *TypeDecl
}

// Project is the set of compilation units under analysis, keyed by path.
type Project struct {
	units map[string]*CompilationUnit
	paths []string
}

func NewProject(units ...*CompilationUnit) *Project {
	p := &Project{units: make(map[string]*CompilationUnit, len(units))}
	for _, u := range units {
		p.Add(u)
	}
	return p
}

// Add inserts or replaces a unit.
func (p *Project) Add(u *CompilationUnit) {
	if _, exists := p.units[u.Path]; !exists {
		p.paths = append(p.paths, u.Path)
		sort.Strings(p.paths)
	}
	p.units[u.Path] = u
}

func (p *Project) Unit(path string) (*CompilationUnit, bool) {
	u, ok := p.units[path]
	return u, ok
}

// Paths returns unit paths in sorted order.
func (p *Project) Paths() []string {
	out := make([]string, len(p.paths))
	copy(out, p.paths)
	return out
}

// Units returns units in path order.
func (p *Project) Units() []*CompilationUnit {
	out := make([]*CompilationUnit, 0, len(p.paths))
	for _, path := range p.paths {
		out = append(out, p.units[path])
	}
	return out
}

func (p *Project) Len() int { return len(p.paths) }
