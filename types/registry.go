package types

import (
	"github.com/SamJeffrey8/helios/ast"
)

// Registry holds every top-level declaration resolved from a Program,
// consulted by the Checker's global scope and by the IR builder when
// looking up a function or method body to lower.
type Registry struct {
	Structs map[string]*StructInfo
	Enums   map[string]*EnumInfo
	Funcs   map[string]*ast.FuncDecl
	Consts  map[string]*ast.ConstDecl

	// Methods[TypeName][MethodName] holds instance/static members attached
	// via `impl` blocks.
	Methods     map[string]map[string]*ast.FuncDecl
	ImplConsts  map[string]map[string]*ast.ConstDecl
}

// StructInfo pairs a struct's resolved Decl with its AST and the
// paramScope used to resolve its fields, so later generic instantiation
// (Substitute) can map back onto the same placeholder Decls.
type StructInfo struct {
	Decl *Decl
	AST  *ast.StructDecl
	PS   paramScope
}

type EnumInfo struct {
	Decl *Decl
	AST  *ast.EnumDecl
	PS   paramScope
}

// NewRegistry builds an empty registry ready to be populated by
// collectDecls (see check.go).
func NewRegistry() *Registry {
	return &Registry{
		Structs:    map[string]*StructInfo{},
		Enums:      map[string]*EnumInfo{},
		Funcs:      map[string]*ast.FuncDecl{},
		Consts:     map[string]*ast.ConstDecl{},
		Methods:    map[string]map[string]*ast.FuncDecl{},
		ImplConsts: map[string]map[string]*ast.ConstDecl{},
	}
}

func (r *Registry) addMethod(typeName string, fn *ast.FuncDecl) {
	m, ok := r.Methods[typeName]
	if !ok {
		m = map[string]*ast.FuncDecl{}
		r.Methods[typeName] = m
	}
	m[fn.Name] = fn
}

func (r *Registry) addImplConst(typeName string, cd *ast.ConstDecl) {
	m, ok := r.ImplConsts[typeName]
	if !ok {
		m = map[string]*ast.ConstDecl{}
		r.ImplConsts[typeName] = m
	}
	m[cd.Name] = cd
}

// LookupMethod finds a method by (declaring type name, method name),
// walking only the one level the language supports (no inheritance).
func (r *Registry) LookupMethod(typeName, method string) (*ast.FuncDecl, bool) {
	m, ok := r.Methods[typeName]
	if !ok {
		return nil, false
	}
	fn, ok := m[method]
	return fn, ok
}

// DeclByName resolves a bare type name to its Decl, consulting builtins
// first and then user struct/enum declarations.
func (r *Registry) DeclByName(name string) (*Decl, bool) {
	if d, ok := Builtins[name]; ok {
		return d, true
	}
	if s, ok := r.Structs[name]; ok {
		return s.Decl, true
	}
	if e, ok := r.Enums[name]; ok {
		return e.Decl, true
	}
	return nil, false
}

// Scope is a chain of name -> Type bindings, used for local resolution
// (let-bindings, function parameters) layered over the Registry's global
// names.
type Scope struct {
	parent *Scope
	names  map[string]*Type
}

func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, names: map[string]*Type{}}
}

func (s *Scope) Define(name string, t *Type) { s.names[name] = t }

func (s *Scope) Lookup(name string) (*Type, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if t, ok := sc.names[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Names returns every name visible in this scope chain, used to build
// "did you mean" suggestions on ReferenceError.
func (s *Scope) Names() []string {
	seen := map[string]bool{}
	var out []string
	for sc := s; sc != nil; sc = sc.parent {
		for n := range sc.names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}
