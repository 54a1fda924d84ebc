package types

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/SamJeffrey8/helios/ast"
	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/source"
)

// Checked is the result of type-checking a Program: the resolved
// declarations, every expression's resolved type, and the monomorphisation
// table consulted by the IR builder.
type Checked struct {
	Program  *ast.Program
	Registry *Registry
	Mono     *MonoTable
	Types    map[ast.Expr]*Type
	MainSig  *Type // nil for a module with no main
}

// variantRef names one candidate enum variant a bare name could resolve
// to; indexVariants builds the table this is drawn from so bare
// construction (`Some(7)`, `None`) and bare switch cases work without the
// `Enum::` qualifier when the name is unambiguous.
type variantRef struct {
	decl    *Decl
	variant VariantDecl
}

type checker struct {
	reg      *Registry
	mono     *MonoTable
	types    map[ast.Expr]*Type
	variants map[string][]variantRef
	enumPS   map[*Decl]paramScope
	constTy  map[*ast.ConstDecl]*Type
	inFlight map[*ast.ConstDecl]bool
}

// optionPS holds the placeholder for Option's single type parameter; its
// Some variant's field type is wired to it below so Option is checked
// through the same generic machinery as any user-declared enum.
var optionPS = newParamScope([]string{"T"})

func init() {
	OptionDecl.Variants[0].Fields[0].Type = &Type{Decl: optionPS["T"]}
}

// Check type-checks prog end to end, returning the first
// error encountered.
func Check(prog *ast.Program) (*Checked, error) {
	reg, err := collectDecls(prog)
	if err != nil {
		return nil, err
	}
	c := &checker{
		reg:      reg,
		mono:     NewMonoTable(),
		types:    map[ast.Expr]*Type{},
		variants: map[string][]variantRef{},
		constTy:  map[*ast.ConstDecl]*Type{},
		inFlight: map[*ast.ConstDecl]bool{},
	}
	c.indexVariants()

	global := NewScope(nil)
	for _, name := range sortedKeys(reg.Funcs) {
		sig, err := funcSigType(reg.Funcs[name], reg, nil)
		if err != nil {
			return nil, err
		}
		global.Define(name, sig)
	}
	for _, name := range sortedKeys(reg.Consts) {
		if _, err := c.constType(name, global); err != nil {
			return nil, err
		}
	}
	for _, name := range sortedKeys(reg.Funcs) {
		if err := c.checkFunc(reg.Funcs[name], global, nil); err != nil {
			return nil, err
		}
	}
	for _, typeName := range sortedKeys(reg.Methods) {
		ps := declParamScope(reg, typeName)
		methods := reg.Methods[typeName]
		for _, name := range sortedKeys(methods) {
			if err := c.checkFunc(methods[name], global, ps); err != nil {
				return nil, err
			}
		}
	}
	for _, typeName := range sortedKeys(reg.ImplConsts) {
		consts := reg.ImplConsts[typeName]
		for _, name := range sortedKeys(consts) {
			if _, err := c.checkConstDecl(consts[name], global); err != nil {
				return nil, err
			}
		}
	}

	var mainSig *Type
	mainFn, hasMain := reg.Funcs["main"]
	if prog.Purpose != ast.PurposeModule && !hasMain {
		return nil, &errs.TypeError{Site: prog.Site(), Message: "program has no main function"}
	}
	if hasMain {
		sig, err := funcSigType(mainFn, reg, nil)
		if err != nil {
			return nil, err
		}
		if err := checkPurposeSignature(prog.Purpose, sig, mainFn.Site()); err != nil {
			return nil, err
		}
		mainSig = sig
	}

	return &Checked{Program: prog, Registry: reg, Mono: c.mono, Types: c.types, MainSig: mainSig}, nil
}

// ---- declaration collection ----

// collectDecls registers every top-level struct/enum/func/const, then
// resolves struct fields and enum variants in a second pass so mutually
// referential declarations don't depend on source order.
func collectDecls(prog *ast.Program) (*Registry, error) {
	reg := NewRegistry()

	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.StructDecl:
			if _, dup := reg.Structs[n.Name]; dup {
				return nil, &errs.TypeError{Site: n.Site(), Message: "duplicate declaration of " + n.Name}
			}
			reg.Structs[n.Name] = &StructInfo{
				Decl: &Decl{Name: n.Name, TypeParams: n.TypeParams, Kind: KindStruct},
				AST:  n,
				PS:   paramScopeFor(n.TypeParams),
			}
		case *ast.EnumDecl:
			if _, dup := reg.Enums[n.Name]; dup {
				return nil, &errs.TypeError{Site: n.Site(), Message: "duplicate declaration of " + n.Name}
			}
			reg.Enums[n.Name] = &EnumInfo{
				Decl: &Decl{Name: n.Name, TypeParams: n.TypeParams, Kind: KindEnum},
				AST:  n,
				PS:   paramScopeFor(n.TypeParams),
			}
		case *ast.FuncDecl:
			if _, dup := reg.Funcs[n.Name]; dup {
				return nil, &errs.TypeError{Site: n.Site(), Message: "duplicate declaration of " + n.Name}
			}
			reg.Funcs[n.Name] = n
		case *ast.ConstDecl:
			if _, dup := reg.Consts[n.Name]; dup {
				return nil, &errs.TypeError{Site: n.Site(), Message: "duplicate declaration of " + n.Name}
			}
			reg.Consts[n.Name] = n
		case *ast.ImplBlock, *ast.ImportDecl:
			// impl blocks resolved below; imports are merged into prog.Decls
			// by the compile package when it has a Loader, and an
			// ImportDecl still present here is skipped.
		default:
			return nil, &errs.TypeError{Site: d.Site(), Message: "unsupported top-level declaration"}
		}
	}

	for _, info := range reg.Structs {
		fields := make([]FieldDecl, len(info.AST.Fields))
		for i, f := range info.AST.Fields {
			t, err := ResolveType(f.Type, reg, info.PS)
			if err != nil {
				return nil, err
			}
			fields[i] = FieldDecl{Name: f.Name, Type: t}
		}
		info.Decl.Fields = fields
	}
	for _, info := range reg.Enums {
		variants := make([]VariantDecl, len(info.AST.Variants))
		for i, v := range info.AST.Variants {
			fields := make([]FieldDecl, len(v.Fields))
			for j, f := range v.Fields {
				t, err := ResolveType(f.Type, reg, info.PS)
				if err != nil {
					return nil, err
				}
				fields[j] = FieldDecl{Name: f.Name, Type: t}
			}
			variants[i] = VariantDecl{Name: v.Name, Tag: i, Fields: fields}
		}
		info.Decl.Variants = variants
	}

	for _, d := range prog.Decls {
		ib, ok := d.(*ast.ImplBlock)
		if !ok {
			continue
		}
		nt, ok := ib.Target.(*ast.NamedType)
		if !ok {
			return nil, &errs.TypeError{Site: ib.Site(), Message: "impl target must be a named type"}
		}
		if _, ok := reg.DeclByName(nt.Name); !ok {
			return nil, &errs.ReferenceError{Site: ib.Site(), Message: "impl target " + nt.Name + " is not declared"}
		}
		for _, m := range ib.Methods {
			reg.addMethod(nt.Name, m)
		}
		for _, cst := range ib.Consts {
			reg.addImplConst(nt.Name, cst)
		}
	}

	return reg, nil
}

func paramScopeFor(names []string) paramScope {
	if len(names) == 0 {
		return nil
	}
	return newParamScope(names)
}

func declParamScope(reg *Registry, typeName string) paramScope {
	if s, ok := reg.Structs[typeName]; ok {
		return s.PS
	}
	if e, ok := reg.Enums[typeName]; ok {
		return e.PS
	}
	return nil
}

func combinePS(a, b paramScope) paramScope {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := paramScope{}
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ---- variant index ----

func (c *checker) indexVariants() {
	c.enumPS = map[*Decl]paramScope{OptionDecl: optionPS}
	c.registerEnumVariants(OptionDecl)
	for _, info := range c.reg.Enums {
		c.enumPS[info.Decl] = info.PS
		c.registerEnumVariants(info.Decl)
	}
}

func (c *checker) registerEnumVariants(decl *Decl) {
	for _, v := range decl.Variants {
		c.variants[v.Name] = append(c.variants[v.Name], variantRef{decl: decl, variant: v})
	}
}

func (c *checker) lookupBareVariant(name string, site source.Site) (variantRef, bool, error) {
	refs, ok := c.variants[name]
	if !ok {
		return variantRef{}, false, nil
	}
	if len(refs) > 1 {
		return variantRef{}, true, &errs.ReferenceError{Site: site, Message: "ambiguous variant '" + name + "'; qualify as Enum::" + name}
	}
	return refs[0], true, nil
}

func (c *checker) resolveVariantRef(enumName, variantName string, site source.Site) (variantRef, error) {
	if enumName == "" {
		ref, found, err := c.lookupBareVariant(variantName, site)
		if err != nil {
			return variantRef{}, err
		}
		if !found {
			return variantRef{}, &errs.ReferenceError{Site: site, Message: "unknown variant '" + variantName + "'"}
		}
		return ref, nil
	}
	decl, ok := c.reg.DeclByName(enumName)
	if !ok {
		return variantRef{}, &errs.ReferenceError{Site: site, Message: "unknown enum '" + enumName + "'"}
	}
	if decl.Kind != KindEnum {
		return variantRef{}, &errs.TypeError{Site: site, Message: enumName + " is not an enum"}
	}
	for _, v := range decl.Variants {
		if v.Name == variantName {
			return variantRef{decl: decl, variant: v}, nil
		}
	}
	return variantRef{}, &errs.ReferenceError{Site: site, Message: "enum " + enumName + " has no variant '" + variantName + "'"}
}

// ---- function / const checking ----

// funcSigType resolves fn's declared signature without checking its body,
// so forward/recursive references and method-call resolution can use it
// before the body itself has been walked.
func funcSigType(fn *ast.FuncDecl, reg *Registry, recvPS paramScope) (*Type, error) {
	ps := combinePS(recvPS, newParamScope(fn.TypeParams))
	params := make([]*Type, len(fn.Params))
	for i, p := range fn.Params {
		if p.Type == nil {
			return nil, &errs.TypeError{Site: fn.Site(), Message: "parameter '" + p.Name + "' requires a type annotation"}
		}
		t, err := ResolveType(p.Type, reg, ps)
		if err != nil {
			return nil, err
		}
		params[i] = t
	}
	if fn.RetType == nil {
		return nil, &errs.TypeError{Site: fn.Site(), Message: "function '" + fn.Name + "' requires an explicit return type"}
	}
	ret, err := ResolveType(fn.RetType, reg, ps)
	if err != nil {
		return nil, err
	}
	return Func(params, ret), nil
}

func (c *checker) checkFunc(fn *ast.FuncDecl, global *Scope, recvPS paramScope) error {
	ps := combinePS(recvPS, newParamScope(fn.TypeParams))
	scope := NewScope(global)
	for _, p := range fn.Params {
		t, err := ResolveType(p.Type, c.reg, ps)
		if err != nil {
			return err
		}
		scope.Define(p.Name, t)
	}
	bodyTy, err := c.checkExpr(fn.Body, scope)
	if err != nil {
		return err
	}
	want, err := ResolveType(fn.RetType, c.reg, ps)
	if err != nil {
		return err
	}
	if !assignable(want, bodyTy) {
		return &errs.TypeError{Site: fn.Body.Site(), Message: "function '" + fn.Name + "' returns " + bodyTy.String() + ", expected " + want.String()}
	}
	return nil
}

func (c *checker) constType(name string, scope *Scope) (*Type, error) {
	cd, ok := c.reg.Consts[name]
	if !ok {
		return nil, &errs.ReferenceError{Message: "unknown const " + name}
	}
	return c.checkConstDecl(cd, scope)
}

func (c *checker) checkConstDecl(cd *ast.ConstDecl, scope *Scope) (*Type, error) {
	if t, ok := c.constTy[cd]; ok {
		return t, nil
	}
	if c.inFlight[cd] {
		return nil, &errs.TypeError{Site: cd.Site(), Message: "const '" + cd.Name + "' is defined in terms of itself"}
	}
	c.inFlight[cd] = true
	defer delete(c.inFlight, cd)

	var want *Type
	if cd.Type != nil {
		var err error
		want, err = ResolveType(cd.Type, c.reg, nil)
		if err != nil {
			return nil, err
		}
	}
	valTy, err := c.checkExprHinted(cd.Value, scope, want)
	if err != nil {
		return nil, err
	}
	resultTy := valTy
	if want != nil {
		if !assignable(want, valTy) {
			return nil, &errs.TypeError{Site: cd.Value.Site(), Message: "const '" + cd.Name + "' has type " + valTy.String() + ", expected " + want.String()}
		}
		resultTy = want
	}
	c.constTy[cd] = resultTy
	scope.Define(cd.Name, resultTy)
	return resultTy, nil
}

func (c *checker) checkLocalConst(cd *ast.ConstDecl, scope *Scope) (*Type, error) {
	if cd.Type == nil {
		return c.checkExpr(cd.Value, scope)
	}
	want, err := ResolveType(cd.Type, c.reg, nil)
	if err != nil {
		return nil, err
	}
	valTy, err := c.checkExprHinted(cd.Value, scope, want)
	if err != nil {
		return nil, err
	}
	if !assignable(want, valTy) {
		return nil, &errs.TypeError{Site: cd.Value.Site(), Message: "const '" + cd.Name + "' has type " + valTy.String() + ", expected " + want.String()}
	}
	return want, nil
}

// ---- expression checking ----

func (c *checker) checkExpr(e ast.Expr, scope *Scope) (*Type, error) {
	t, err := c.checkExprInner(e, scope)
	if err != nil {
		return nil, err
	}
	c.types[e] = t
	return t, nil
}

// checkExprHinted checks e the same as checkExpr, but additionally gives an
// empty list literal a usable element type when the surrounding context
// (a let's declared type) names one; only *ast.ListLitExpr reads the hint.
func (c *checker) checkExprHinted(e ast.Expr, scope *Scope, want *Type) (*Type, error) {
	if lit, ok := e.(*ast.ListLitExpr); ok {
		var elemHint *Type
		if want != nil && want.Decl == ListDecl && len(want.Args) == 1 {
			elemHint = want.Args[0]
		}
		t, err := c.checkListLit(lit, scope, elemHint)
		if err != nil {
			return nil, err
		}
		c.types[e] = t
		return t, nil
	}
	return c.checkExpr(e, scope)
}

func (c *checker) checkExprInner(e ast.Expr, scope *Scope) (*Type, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return c.checkLiteral(n)
	case *ast.NameExpr:
		return c.checkName(n, scope)
	case *ast.VariantExpr:
		return c.checkVariantStandalone(n)
	case *ast.BinaryExpr:
		return c.checkBinary(n, scope)
	case *ast.UnaryExpr:
		return c.checkUnary(n, scope)
	case *ast.CallExpr:
		return c.checkCall(n, scope)
	case *ast.MemberExpr:
		return c.checkMember(n, scope)
	case *ast.LambdaExpr:
		return c.checkLambda(n, scope)
	case *ast.IfExpr:
		return c.checkIf(n, scope)
	case *ast.SwitchExpr:
		return c.checkSwitch(n, scope)
	case *ast.LetExpr:
		return c.checkLet(n, scope)
	case *ast.BlockExpr:
		return c.checkBlockExpr(n, scope)
	case *ast.ListLitExpr:
		return c.checkListLit(n, scope, nil)
	default:
		return nil, &errs.TypeError{Site: e.Site(), Message: "unsupported expression"}
	}
}

func (c *checker) checkLiteral(l *ast.Literal) (*Type, error) {
	switch l.Kind {
	case ast.LitBool:
		return Named(BoolDecl), nil
	case ast.LitInt:
		return Named(IntDecl), nil
	case ast.LitString:
		return Named(StringDecl), nil
	case ast.LitByteArray:
		return Named(ByteArrayDecl), nil
	}
	return nil, &errs.TypeError{Site: l.Site(), Message: "unknown literal kind"}
}

// checkListLit checks a `[e1, e2, ...]` literal. Every element must check
// to the same type; an empty literal has no element to read a type from,
// so it falls back to expected (the enclosing let/const's declared element
// type, if any) or, failing that, to Data, since every runtime value is
// already representable as Data and an unannotated `[]` is only ever
// actually used as a receiver for a structural member like `.head`.
func (c *checker) checkListLit(n *ast.ListLitExpr, scope *Scope, expected *Type) (*Type, error) {
	if len(n.Elems) == 0 {
		if expected != nil {
			return Instantiate(ListDecl, expected), nil
		}
		return Instantiate(ListDecl, Named(DataDecl)), nil
	}
	elemTy, err := c.checkExpr(n.Elems[0], scope)
	if err != nil {
		return nil, err
	}
	for _, e := range n.Elems[1:] {
		t, err := c.checkExpr(e, scope)
		if err != nil {
			return nil, err
		}
		if !t.Equal(elemTy) {
			return nil, &errs.TypeError{Site: e.Site(), Message: "list literal element has type " + t.String() + ", expected " + elemTy.String()}
		}
	}
	return Instantiate(ListDecl, elemTy), nil
}

func (c *checker) checkName(n *ast.NameExpr, scope *Scope) (*Type, error) {
	if t, ok := scope.Lookup(n.Name); ok {
		return t, nil
	}
	if cd, ok := c.reg.Consts[n.Name]; ok {
		return c.checkConstDecl(cd, scope)
	}
	ref, found, err := c.lookupBareVariant(n.Name, n.Site())
	if err != nil {
		return nil, err
	}
	if found {
		if len(ref.variant.Fields) > 0 {
			return nil, &errs.TypeError{Site: n.Site(), Message: "variant '" + n.Name + "' requires " + itoa(len(ref.variant.Fields)) + " field(s)"}
		}
		return &Type{Decl: ref.decl, Variant: ref.variant.Name}, nil
	}
	candidates := scope.Names()
	for _, name := range sortedKeys(c.reg.Consts) {
		if _, ok := scope.Lookup(name); !ok {
			candidates = append(candidates, name)
		}
	}
	return nil, c.referenceError(n.Site(), n.Name, candidates)
}

func (c *checker) checkVariantStandalone(n *ast.VariantExpr) (*Type, error) {
	ref, err := c.resolveVariantRef(n.Enum, n.Variant, n.Site())
	if err != nil {
		return nil, err
	}
	if len(ref.variant.Fields) > 0 {
		return nil, &errs.TypeError{Site: n.Site(), Message: ref.decl.Name + "::" + ref.variant.Name + " requires " + itoa(len(ref.variant.Fields)) + " field(s)"}
	}
	return &Type{Decl: ref.decl, Variant: ref.variant.Name}, nil
}

func (c *checker) checkBinary(n *ast.BinaryExpr, scope *Scope) (*Type, error) {
	lt, err := c.checkExpr(n.Left, scope)
	if err != nil {
		return nil, err
	}
	rt, err := c.checkExpr(n.Right, scope)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.OpAnd, ast.OpOr:
		if !lt.Equal(Named(BoolDecl)) || !rt.Equal(Named(BoolDecl)) {
			return nil, &errs.TypeError{Site: n.Site(), Message: "operator '" + string(n.Op) + "' requires Bool operands"}
		}
		return Named(BoolDecl), nil
	case ast.OpEq, ast.OpNeq:
		if !lt.Equal(rt) {
			return nil, &errs.TypeError{Site: n.Site(), Message: "cannot compare " + lt.String() + " and " + rt.String()}
		}
		return Named(BoolDecl), nil
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		if !lt.Equal(Named(IntDecl)) || !rt.Equal(Named(IntDecl)) {
			return nil, &errs.TypeError{Site: n.Site(), Message: "operator '" + string(n.Op) + "' requires Int operands"}
		}
		return Named(BoolDecl), nil
	case ast.OpAdd:
		switch {
		case lt.Equal(Named(IntDecl)) && rt.Equal(Named(IntDecl)):
			return Named(IntDecl), nil
		case lt.Equal(Named(StringDecl)) && rt.Equal(Named(StringDecl)):
			return Named(StringDecl), nil
		case lt.Equal(Named(ByteArrayDecl)) && rt.Equal(Named(ByteArrayDecl)):
			return Named(ByteArrayDecl), nil
		case lt.Decl == ListDecl && rt.Decl == ListDecl && lt.Equal(rt):
			return lt, nil
		}
		return nil, &errs.TypeError{Site: n.Site(), Message: "operator '+' is not defined for " + lt.String() + " and " + rt.String()}
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if !lt.Equal(Named(IntDecl)) || !rt.Equal(Named(IntDecl)) {
			return nil, &errs.TypeError{Site: n.Site(), Message: "operator '" + string(n.Op) + "' requires Int operands"}
		}
		return Named(IntDecl), nil
	}
	return nil, &errs.TypeError{Site: n.Site(), Message: "unknown operator"}
}

func (c *checker) checkUnary(n *ast.UnaryExpr, scope *Scope) (*Type, error) {
	xt, err := c.checkExpr(n.X, scope)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.OpNeg:
		if !xt.Equal(Named(IntDecl)) {
			return nil, &errs.TypeError{Site: n.Site(), Message: "unary '-' requires an Int operand"}
		}
		return Named(IntDecl), nil
	case ast.OpNot:
		if !xt.Equal(Named(BoolDecl)) {
			return nil, &errs.TypeError{Site: n.Site(), Message: "unary '!' requires a Bool operand"}
		}
		return Named(BoolDecl), nil
	}
	return nil, &errs.TypeError{Site: n.Site(), Message: "unknown unary operator"}
}

func (c *checker) checkIf(n *ast.IfExpr, scope *Scope) (*Type, error) {
	ct, err := c.checkExpr(n.Cond, scope)
	if err != nil {
		return nil, err
	}
	if !ct.Equal(Named(BoolDecl)) {
		return nil, &errs.TypeError{Site: n.Cond.Site(), Message: "if condition must be Bool, got " + ct.String()}
	}
	tt, err := c.checkExpr(n.Then, scope)
	if err != nil {
		return nil, err
	}
	et, err := c.checkExpr(n.Else, scope)
	if err != nil {
		return nil, err
	}
	return mergeBranch(tt, et, n.Site())
}

func (c *checker) checkLet(n *ast.LetExpr, scope *Scope) (*Type, error) {
	var want *Type
	if n.Type != nil {
		var err error
		want, err = ResolveType(n.Type, c.reg, nil)
		if err != nil {
			return nil, err
		}
	}
	vt, err := c.checkExprHinted(n.Value, scope, want)
	if err != nil {
		return nil, err
	}
	if want != nil {
		if !assignable(want, vt) {
			return nil, &errs.TypeError{Site: n.Value.Site(), Message: "let '" + n.Name + "' has type " + vt.String() + ", expected " + want.String()}
		}
		vt = want
	}
	inner := NewScope(scope)
	inner.Define(n.Name, vt)
	return c.checkExpr(n.Body, inner)
}

func (c *checker) checkBlockExpr(n *ast.BlockExpr, scope *Scope) (*Type, error) {
	inner := NewScope(scope)
	for _, cd := range n.Consts {
		t, err := c.checkLocalConst(cd, inner)
		if err != nil {
			return nil, err
		}
		inner.Define(cd.Name, t)
	}
	return c.checkExpr(n.Result, inner)
}

func (c *checker) checkLambda(n *ast.LambdaExpr, scope *Scope) (*Type, error) {
	inner := NewScope(scope)
	params := make([]*Type, len(n.Params))
	for i, p := range n.Params {
		if p.Type == nil {
			return nil, &errs.TypeError{Site: n.Site(), Message: "lambda parameter '" + p.Name + "' requires a type annotation"}
		}
		t, err := ResolveType(p.Type, c.reg, nil)
		if err != nil {
			return nil, err
		}
		params[i] = t
		inner.Define(p.Name, t)
	}
	bodyTy, err := c.checkExpr(n.Body, inner)
	if err != nil {
		return nil, err
	}
	ret := bodyTy
	if n.RetType != nil {
		want, err := ResolveType(n.RetType, c.reg, nil)
		if err != nil {
			return nil, err
		}
		if !assignable(want, bodyTy) {
			return nil, &errs.TypeError{Site: n.Body.Site(), Message: "lambda returns " + bodyTy.String() + ", expected " + want.String()}
		}
		ret = want
	}
	return Func(params, ret), nil
}

func (c *checker) substituteField(recv *Type, fieldType *Type) *Type {
	if fieldType == nil {
		return fieldType
	}
	ps := c.paramScopeForDecl(recv.Decl)
	if len(ps) == 0 || len(recv.Args) == 0 {
		return fieldType
	}
	subst := map[*Decl]*Type{}
	for i, tp := range recv.Decl.TypeParams {
		if i < len(recv.Args) {
			if d, ok := ps[tp]; ok {
				subst[d] = recv.Args[i]
			}
		}
	}
	return Substitute(fieldType, subst)
}

func (c *checker) paramScopeForDecl(decl *Decl) paramScope {
	if info, ok := c.reg.Structs[decl.Name]; ok {
		return info.PS
	}
	if info, ok := c.reg.Enums[decl.Name]; ok {
		return info.PS
	}
	if decl == OptionDecl {
		return optionPS
	}
	return nil
}

func (c *checker) checkMember(n *ast.MemberExpr, scope *Scope) (*Type, error) {
	xt, err := c.checkExpr(n.X, scope)
	if err != nil {
		return nil, err
	}
	if xt.Decl == FuncDecl {
		return nil, &errs.TypeError{Site: n.Site(), Message: "function values have no members"}
	}
	for _, f := range xt.Decl.Fields {
		if f.Name == n.Name {
			return c.substituteField(xt, f.Type), nil
		}
	}
	if xt.Variant != "" {
		for _, v := range xt.Decl.Variants {
			if v.Name != xt.Variant {
				continue
			}
			for _, f := range v.Fields {
				if f.Name == n.Name {
					return c.substituteField(xt, f.Type), nil
				}
			}
		}
	}
	if _, ok := c.reg.LookupMethod(xt.Decl.Name, n.Name); ok {
		return nil, &errs.TypeError{Site: n.Site(), Message: "method '" + n.Name + "' must be called"}
	}
	if t, ok, err := c.checkBuiltinField(xt, n); ok || err != nil {
		return t, err
	}
	return nil, &errs.ReferenceError{Site: n.Site(), Message: "no field '" + n.Name + "' on " + xt.String()}
}

// ---- calls ----

func (c *checker) checkCall(n *ast.CallExpr, scope *Scope) (*Type, error) {
	switch fn := n.Fn.(type) {
	case *ast.VariantExpr:
		ref, err := c.resolveVariantRef(fn.Enum, fn.Variant, n.Site())
		if err != nil {
			return nil, err
		}
		return c.checkVariantCall(ref, n, scope)
	case *ast.NameExpr:
		if t, ok, err := c.checkBuiltinCall(fn, n, scope); ok || err != nil {
			return t, err
		}
		if info, ok := c.reg.Structs[fn.Name]; ok {
			return c.checkStructCall(info, n, scope)
		}
		ref, found, err := c.lookupBareVariant(fn.Name, n.Site())
		if err != nil {
			return nil, err
		}
		if found {
			return c.checkVariantCall(ref, n, scope)
		}
		if fd, ok := c.reg.Funcs[fn.Name]; ok {
			return c.checkFuncCall(fd, n, scope, nil)
		}
		ft, err := c.checkExpr(fn, scope)
		if err != nil {
			return nil, err
		}
		return c.checkValueCall(ft, n, scope)
	case *ast.MemberExpr:
		return c.checkMethodCall(fn, n, scope)
	default:
		ft, err := c.checkExpr(n.Fn, scope)
		if err != nil {
			return nil, err
		}
		return c.checkValueCall(ft, n, scope)
	}
}

func (c *checker) checkArgs(args []ast.Expr, scope *Scope) ([]*Type, error) {
	out := make([]*Type, len(args))
	for i, a := range args {
		t, err := c.checkExpr(a, scope)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (c *checker) checkStructCall(info *StructInfo, n *ast.CallExpr, scope *Scope) (*Type, error) {
	if len(n.Args) != len(info.Decl.Fields) {
		return nil, &errs.TypeError{Site: n.Site(), Message: info.Decl.Name + " expects " + itoa(len(info.Decl.Fields)) + " field(s), got " + itoa(len(n.Args))}
	}
	argTypes, err := c.checkArgs(n.Args, scope)
	if err != nil {
		return nil, err
	}
	if len(info.Decl.TypeParams) == 0 {
		for i, f := range info.Decl.Fields {
			if !assignable(f.Type, argTypes[i]) {
				return nil, &errs.TypeError{Site: n.Args[i].Site(), Message: info.Decl.Name + " field '" + f.Name + "' expects " + f.Type.String() + ", got " + argTypes[i].String()}
			}
		}
		return Named(info.Decl), nil
	}
	fieldTypes := make([]*Type, len(info.Decl.Fields))
	for i, f := range info.Decl.Fields {
		fieldTypes[i] = f.Type
	}
	_, concrete, err := c.inferOrResolveTypeArgs(info.Decl.TypeParams, info.PS, fieldTypes, n.TypeArgs, argTypes, n.Site())
	if err != nil {
		return nil, err
	}
	subst := map[*Decl]*Type{}
	for i, tp := range info.Decl.TypeParams {
		subst[info.PS[tp]] = concrete[i]
	}
	for i, f := range info.Decl.Fields {
		want := Substitute(f.Type, subst)
		if !assignable(want, argTypes[i]) {
			return nil, &errs.TypeError{Site: n.Args[i].Site(), Message: info.Decl.Name + " field '" + f.Name + "' expects " + want.String() + ", got " + argTypes[i].String()}
		}
	}
	return Instantiate(info.Decl, concrete...), nil
}

func (c *checker) checkVariantCall(ref variantRef, n *ast.CallExpr, scope *Scope) (*Type, error) {
	v := ref.variant
	if len(n.Args) != len(v.Fields) {
		return nil, &errs.TypeError{Site: n.Site(), Message: ref.decl.Name + "::" + v.Name + " expects " + itoa(len(v.Fields)) + " field(s), got " + itoa(len(n.Args))}
	}
	argTypes, err := c.checkArgs(n.Args, scope)
	if err != nil {
		return nil, err
	}
	if len(v.Fields) == 0 && len(n.TypeArgs) == 0 {
		return &Type{Decl: ref.decl, Variant: v.Name}, nil
	}
	if len(ref.decl.TypeParams) == 0 {
		for i, f := range v.Fields {
			if !assignable(f.Type, argTypes[i]) {
				return nil, &errs.TypeError{Site: n.Args[i].Site(), Message: ref.decl.Name + "::" + v.Name + " field '" + f.Name + "' expects " + f.Type.String() + ", got " + argTypes[i].String()}
			}
		}
		return &Type{Decl: ref.decl, Variant: v.Name}, nil
	}
	ps := c.enumPS[ref.decl]
	fieldTypes := make([]*Type, len(v.Fields))
	for i, f := range v.Fields {
		fieldTypes[i] = f.Type
	}
	_, concrete, err := c.inferOrResolveTypeArgs(ref.decl.TypeParams, ps, fieldTypes, n.TypeArgs, argTypes, n.Site())
	if err != nil {
		return nil, err
	}
	subst := map[*Decl]*Type{}
	for i, tp := range ref.decl.TypeParams {
		subst[ps[tp]] = concrete[i]
	}
	for i, f := range v.Fields {
		want := Substitute(f.Type, subst)
		if !assignable(want, argTypes[i]) {
			return nil, &errs.TypeError{Site: n.Args[i].Site(), Message: ref.decl.Name + "::" + v.Name + " field '" + f.Name + "' expects " + want.String() + ", got " + argTypes[i].String()}
		}
	}
	res := Instantiate(ref.decl, concrete...)
	res.Variant = v.Name
	return res, nil
}

func (c *checker) checkFuncCall(fd *ast.FuncDecl, n *ast.CallExpr, scope *Scope, recvPS paramScope) (*Type, error) {
	ps := combinePS(recvPS, newParamScope(fd.TypeParams))
	if len(n.Args) != len(fd.Params) {
		return nil, &errs.TypeError{Site: n.Site(), Message: fd.Name + " expects " + itoa(len(fd.Params)) + " argument(s), got " + itoa(len(n.Args))}
	}
	paramTypes := make([]*Type, len(fd.Params))
	for i, p := range fd.Params {
		t, err := ResolveType(p.Type, c.reg, ps)
		if err != nil {
			return nil, err
		}
		paramTypes[i] = t
	}
	argTypes, err := c.checkArgs(n.Args, scope)
	if err != nil {
		return nil, err
	}
	retType, err := ResolveType(fd.RetType, c.reg, ps)
	if err != nil {
		return nil, err
	}
	if len(fd.TypeParams) == 0 {
		for i, want := range paramTypes {
			if !assignable(want, argTypes[i]) {
				return nil, &errs.TypeError{Site: n.Args[i].Site(), Message: fd.Name + " argument " + itoa(i+1) + " expects " + want.String() + ", got " + argTypes[i].String()}
			}
		}
		return retType, nil
	}
	_, concrete, err := c.inferOrResolveTypeArgs(fd.TypeParams, ps, paramTypes, n.TypeArgs, argTypes, n.Site())
	if err != nil {
		return nil, err
	}
	subst := map[*Decl]*Type{}
	for i, tp := range fd.TypeParams {
		subst[ps[tp]] = concrete[i]
	}
	for i, want := range paramTypes {
		wc := Substitute(want, subst)
		if !assignable(wc, argTypes[i]) {
			return nil, &errs.TypeError{Site: n.Args[i].Site(), Message: fd.Name + " argument " + itoa(i+1) + " expects " + wc.String() + ", got " + argTypes[i].String()}
		}
	}
	if _, _, err := c.mono.Specialise(fd.Name, concrete, n.Site()); err != nil {
		return nil, err
	}
	return Substitute(retType, subst), nil
}

func (c *checker) checkMethodCall(me *ast.MemberExpr, n *ast.CallExpr, scope *Scope) (*Type, error) {
	recvTy, err := c.checkExpr(me.X, scope)
	if err != nil {
		return nil, err
	}
	fd, ok := c.reg.LookupMethod(recvTy.Decl.Name, me.Name)
	if !ok {
		if t, ok, err := c.checkBuiltinMethod(recvTy, me, n, scope); ok || err != nil {
			return t, err
		}
		return nil, &errs.ReferenceError{Site: n.Site(), Message: "no method '" + me.Name + "' on " + recvTy.String()}
	}
	if len(fd.Params) == 0 {
		return nil, &errs.TypeError{Site: n.Site(), Message: "method '" + me.Name + "' must declare a receiver parameter"}
	}
	ps := declParamScope(c.reg, recvTy.Decl.Name)
	recvWant, err := ResolveType(fd.Params[0].Type, c.reg, ps)
	if err != nil {
		return nil, err
	}
	subst := map[*Decl]*Type{}
	for i, tp := range recvTy.Decl.TypeParams {
		if i < len(recvTy.Args) {
			subst[ps[tp]] = recvTy.Args[i]
		}
	}
	recvWantC := Substitute(recvWant, subst)
	if !assignable(recvWantC, recvTy) {
		return nil, &errs.TypeError{Site: me.X.Site(), Message: "method '" + me.Name + "' receiver expects " + recvWantC.String() + ", got " + recvTy.String()}
	}
	restParams := fd.Params[1:]
	if len(n.Args) != len(restParams) {
		return nil, &errs.TypeError{Site: n.Site(), Message: me.Name + " expects " + itoa(len(restParams)) + " argument(s), got " + itoa(len(n.Args))}
	}
	combinedPS := combinePS(ps, newParamScope(fd.TypeParams))
	argTypes, err := c.checkArgs(n.Args, scope)
	if err != nil {
		return nil, err
	}
	for i, p := range restParams {
		want, err := ResolveType(p.Type, c.reg, combinedPS)
		if err != nil {
			return nil, err
		}
		wc := Substitute(want, subst)
		if !assignable(wc, argTypes[i]) {
			return nil, &errs.TypeError{Site: n.Args[i].Site(), Message: me.Name + " argument " + itoa(i+1) + " expects " + wc.String() + ", got " + argTypes[i].String()}
		}
	}
	ret, err := ResolveType(fd.RetType, c.reg, combinedPS)
	if err != nil {
		return nil, err
	}
	return Substitute(ret, subst), nil
}

func (c *checker) checkValueCall(ft *Type, n *ast.CallExpr, scope *Scope) (*Type, error) {
	if ft.Decl != FuncDecl {
		return nil, &errs.TypeError{Site: n.Site(), Message: "cannot call a value of type " + ft.String()}
	}
	if len(n.Args) != len(ft.Params) {
		return nil, &errs.TypeError{Site: n.Site(), Message: "expected " + itoa(len(ft.Params)) + " argument(s), got " + itoa(len(n.Args))}
	}
	argTypes, err := c.checkArgs(n.Args, scope)
	if err != nil {
		return nil, err
	}
	for i, want := range ft.Params {
		if !assignable(want, argTypes[i]) {
			return nil, &errs.TypeError{Site: n.Args[i].Site(), Message: "argument " + itoa(i+1) + " expects " + want.String() + ", got " + argTypes[i].String()}
		}
	}
	return ft.Ret, nil
}

// inferOrResolveTypeArgs determines concrete type arguments for a generic
// declaration's type parameters, either from explicit instantiation syntax
// (`f[Int](x)`) or by unifying each parameter's declared (placeholder) type
// against the checked type of the corresponding call argument.
func (c *checker) inferOrResolveTypeArgs(typeParams []string, ps paramScope, paramTypes []*Type, explicit []ast.TypeExpr, argTypes []*Type, at source.Site) (map[*Decl]*Type, []*Type, error) {
	subst := map[*Decl]*Type{}
	if len(explicit) > 0 {
		if len(explicit) != len(typeParams) {
			return nil, nil, &errs.TypeError{Site: at, Message: "expected " + itoa(len(typeParams)) + " explicit type argument(s)"}
		}
		concrete := make([]*Type, len(typeParams))
		for i, te := range explicit {
			t, err := ResolveType(te, c.reg, nil)
			if err != nil {
				return nil, nil, err
			}
			concrete[i] = t
			subst[ps[typeParams[i]]] = t
		}
		return subst, concrete, nil
	}
	for i, pt := range paramTypes {
		if i >= len(argTypes) {
			break
		}
		unify(pt, argTypes[i], subst)
	}
	concrete := make([]*Type, len(typeParams))
	for i, tp := range typeParams {
		bound, ok := subst[ps[tp]]
		if !ok {
			return nil, nil, &errs.TypeError{Site: at, Message: "cannot infer type argument '" + tp + "'; give it explicitly"}
		}
		concrete[i] = bound
	}
	return subst, concrete, nil
}

// unify walks a declared (placeholder-carrying) type alongside a concrete
// checked type, recording any placeholder bindings it finds. It recurses
// through generic type arguments at any depth; it does not look inside
// function types' parameter or return types.
func unify(declType, got *Type, subst map[*Decl]*Type) {
	if declType == nil || got == nil {
		return
	}
	if isPlaceholder(declType.Decl) {
		if _, exists := subst[declType.Decl]; !exists {
			subst[declType.Decl] = got
		}
		return
	}
	for i := range declType.Args {
		if i < len(got.Args) {
			unify(declType.Args[i], got.Args[i], subst)
		}
	}
}

func isPlaceholder(d *Decl) bool {
	switch d {
	case IntDecl, BoolDecl, StringDecl, ByteArrayDecl, DataDecl, ListDecl, MapDecl, OptionDecl, FuncDecl,
		ValueDecl, AddressDecl, CredentialDecl, TxIdDecl, TxOutputIdDecl, DatumHashDecl,
		TxInputDecl, TxOutputDecl, TxDecl, ScriptContextDecl:
		return false
	}
	return d.Kind == KindPrimitive && len(d.TypeParams) == 0
}

// ---- switch ----

func (c *checker) checkSwitch(n *ast.SwitchExpr, scope *Scope) (*Type, error) {
	st, err := c.checkExpr(n.Scrutinee, scope)
	if err != nil {
		return nil, err
	}
	if st.Decl.Kind != KindEnum {
		return nil, &errs.TypeError{Site: n.Scrutinee.Site(), Message: "switch requires an enum value, got " + st.String()}
	}
	seen := map[string]bool{}
	var resultTy *Type
	ps := c.enumPS[st.Decl]
	subst := map[*Decl]*Type{}
	if ps != nil {
		for i, tp := range st.Decl.TypeParams {
			if i < len(st.Args) {
				subst[ps[tp]] = st.Args[i]
			}
		}
	}
	for _, cs := range n.Cases {
		v, ok := findVariant(st.Decl, cs.Variant)
		if !ok {
			return nil, &errs.ReferenceError{Site: cs.Site, Message: st.Decl.Name + " has no variant '" + cs.Variant + "'"}
		}
		if seen[cs.Variant] {
			return nil, &errs.TypeError{Site: cs.Site, Message: "duplicate case for variant '" + cs.Variant + "'"}
		}
		seen[cs.Variant] = true
		if len(cs.Binds) != len(v.Fields) {
			return nil, &errs.TypeError{Site: cs.Site, Message: "variant '" + cs.Variant + "' binds " + itoa(len(v.Fields)) + " field(s), got " + itoa(len(cs.Binds))}
		}
		inner := NewScope(scope)
		for i, f := range v.Fields {
			inner.Define(cs.Binds[i], Substitute(f.Type, subst))
		}
		bt, err := c.checkExpr(cs.Body, inner)
		if err != nil {
			return nil, err
		}
		resultTy, err = mergeBranch(resultTy, bt, cs.Site)
		if err != nil {
			return nil, err
		}
	}
	if n.Else != nil {
		bt, err := c.checkExpr(n.Else, scope)
		if err != nil {
			return nil, err
		}
		resultTy, err = mergeBranch(resultTy, bt, n.Else.Site())
		if err != nil {
			return nil, err
		}
	} else {
		for _, v := range st.Decl.Variants {
			if !seen[v.Name] {
				return nil, &errs.TypeError{Site: n.Site(), Message: "switch is not exhaustive: missing variant '" + v.Name + "'"}
			}
		}
	}
	if resultTy == nil {
		return nil, &errs.TypeError{Site: n.Site(), Message: "switch has no cases"}
	}
	return resultTy, nil
}

func findVariant(decl *Decl, name string) (VariantDecl, bool) {
	for _, v := range decl.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return VariantDecl{}, false
}

// mergeBranch widens two branch types to a common type, or errors if
// neither side assigns to the other.
func mergeBranch(acc, next *Type, site source.Site) (*Type, error) {
	if acc == nil {
		return next, nil
	}
	if acc.Equal(next) {
		return acc, nil
	}
	if assignable(acc, next) {
		return acc, nil
	}
	if assignable(next, acc) {
		return next, nil
	}
	return nil, &errs.TypeError{Site: site, Message: "branches have different types: " + acc.String() + " vs " + next.String()}
}

// assignable reports whether a value of type got may stand in for a value
// of type want. Beyond structural equality this only widens an
// unresolved-generic or switch-narrowed enum value back to its declaring
// enum's general type.
func assignable(want, got *Type) bool {
	if want == nil || got == nil {
		return want == got
	}
	if want.Equal(got) {
		return true
	}
	if want.Decl != got.Decl {
		return false
	}
	if want.Decl.Kind == KindEnum && want.Variant == "" && got.Variant != "" {
		return true
	}
	if len(got.Args) == 0 && len(want.Args) > 0 && got.Decl.Kind != KindFunc {
		return true
	}
	return false
}

// ---- purpose signature contract ----

// checkPurposeSignature enforces main-signature contract: the
// final parameter of a non-testing script is the ScriptContext, and main
// always returns Bool.
func checkPurposeSignature(purpose ast.Purpose, sig *Type, at source.Site) error {
	if !sig.Ret.Equal(Named(BoolDecl)) {
		return &errs.TypeError{Site: at, Message: "main must return Bool"}
	}
	switch purpose {
	case ast.PurposeTesting:
		if len(sig.Params) != 0 {
			return &errs.TypeError{Site: at, Message: "a testing script's main takes no parameters"}
		}
	case ast.PurposeModule:
		// no fixed contract; main is an optional convenience entry point
	case ast.PurposeMinting:
		if len(sig.Params) != 2 || !sig.Params[1].Equal(Named(ScriptContextDecl)) {
			return &errs.TypeError{Site: at, Message: "a minting script's main takes (redeemer, ctx: ScriptContext)"}
		}
	case ast.PurposeSpending:
		if len(sig.Params) != 3 || !sig.Params[2].Equal(Named(ScriptContextDecl)) {
			return &errs.TypeError{Site: at, Message: "a spending script's main takes (datum, redeemer, ctx: ScriptContext)"}
		}
	case ast.PurposeStaking:
		if len(sig.Params) != 1 || !sig.Params[0].Equal(Named(ScriptContextDecl)) {
			return &errs.TypeError{Site: at, Message: "a staking script's main takes (ctx: ScriptContext)"}
		}
	}
	return nil
}

// ---- reference-error suggestions ----

func (c *checker) referenceError(site source.Site, name string, candidates []string) error {
	return &errs.ReferenceError{Site: site, Message: "undefined name '" + name + "'", Suggestions: suggest(name, candidates)}
}

// suggest ranks in-scope names by edit distance to name, used to build
// ReferenceError's "did you mean" hint.
func suggest(name string, candidates []string) []string {
	ranks := fuzzy.RankFindFold(name, candidates)
	sort.Sort(ranks)
	out := make([]string, 0, 3)
	for i, r := range ranks {
		if i >= 3 {
			break
		}
		out = append(out, r.Target)
	}
	return out
}
