package ir

import (
	"github.com/SamJeffrey8/helios/ast"
	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/source"
	"github.com/SamJeffrey8/helios/types"
)

// Builder lowers a type-checked Program into one IR tree.
// Generic declarations are lowered exactly once: monomorphisation only
// governs type-checking (it validates each instantiation's field/argument
// types), never IR shape, since every Helios runtime value already has
// the same type-erased Data representation regardless of its declared
// type arguments (see DESIGN.md "IR lowering is type-erased").
type Builder struct {
	checked *types.Checked
	reg     *types.Registry
	fresh   int
}

func NewBuilder(checked *types.Checked, reg *types.Registry) *Builder {
	return &Builder{checked: checked, reg: reg}
}

// global is one flattened top-level binding: a const, a top-level func, or
// an impl method/const reached under its qualified "Type::member" name.
type global struct {
	name string
	fn   *ast.FuncDecl
	cd   *ast.ConstDecl
}

// BuildProgram lowers every const/func/impl-member into one IR tree ending
// in a reference to `main`, with each binding visible to every later
// binding.
// A declaration that calls itself by name is individually wrapped in the
// lazy fixed-point (Z) combinator so direct recursion works (DESIGN.md
// "Recursion via a single fixed-point combinator"); declarations must otherwise be
// written before their first use, preserving single-pass lowering order.
func (b *Builder) BuildProgram(prog *ast.Program) (Node, error) {
	globals := b.flatten(prog)
	return b.chain(globals, 0, prog.Site())
}

func (b *Builder) flatten(prog *ast.Program) []global {
	var out []global
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.ConstDecl:
			out = append(out, global{name: n.Name, cd: n})
		case *ast.FuncDecl:
			out = append(out, global{name: n.Name, fn: n})
		case *ast.ImplBlock:
			target := typeExprName(n.Target)
			for _, m := range n.Methods {
				out = append(out, global{name: target + "::" + m.Name, fn: m})
			}
			for _, c := range n.Consts {
				out = append(out, global{name: target + "::" + c.Name, cd: c})
			}
		}
	}
	return out
}

func typeExprName(t ast.TypeExpr) string {
	if nt, ok := t.(*ast.NamedType); ok {
		return nt.Name
	}
	return ""
}

func (b *Builder) chain(globals []global, i int, fallback source.Site) (Node, error) {
	if i == len(globals) {
		return &Variable{Base: At(fallback), Name: "main"}, nil
	}
	rest, err := b.chain(globals, i+1, fallback)
	if err != nil {
		return nil, err
	}
	g := globals[i]
	var val Node
	if g.cd != nil {
		val, err = b.expr(g.cd.Value)
		if err != nil {
			return nil, err
		}
	} else {
		val, err = b.funcValue(g.name, g.fn)
		if err != nil {
			return nil, err
		}
	}
	site := g.fn.Site()
	if g.cd != nil {
		site = g.cd.Site()
	}
	return &Call{Base: At(site), Fn: &Lambda{Base: At(site), Param: g.name, Body: rest}, Arg: val}, nil
}

func (b *Builder) funcValue(name string, fn *ast.FuncDecl) (Node, error) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Name
	}
	body, err := b.expr(fn.Body)
	if err != nil {
		return nil, err
	}
	lam := Lam(fn.Site(), params, body)
	if referencesName(fn.Body, name) {
		return fixpoint(fn.Site(), name, lam), nil
	}
	return lam, nil
}

// fixpoint builds `Z (\name. lam)` where Z is the lazy fixed-point
// combinator `\f. (\x. f (\v. (x x) v)) (\x. f (\v. (x x) v))`
// (DESIGN.md "Recursion via a single fixed-point combinator").
func fixpoint(site source.Site, name string, lam Node) Node {
	v := func(n string) Node { return &Variable{Base: At(site), Name: n} }
	xx := &Call{Base: At(site), Fn: v("x"), Arg: v("x")}
	inner := &Lambda{Base: At(site), Param: "v", Body: &Call{Base: At(site), Fn: xx, Arg: v("v")}}
	fCall := &Call{Base: At(site), Fn: v("f"), Arg: inner}
	xLam := &Lambda{Base: At(site), Param: "x", Body: fCall}
	z := &Lambda{Base: At(site), Param: "f", Body: &Call{Base: At(site), Fn: xLam, Arg: xLam}}
	return &Call{Base: At(site), Fn: z, Arg: &Lambda{Base: At(site), Param: name, Body: lam}}
}

// referencesName reports whether e contains a free reference to name,
// used to decide whether a declaration needs fixed-point wrapping.
func referencesName(e ast.Expr, name string) bool {
	found := false
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		if e == nil || found {
			return
		}
		switch n := e.(type) {
		case *ast.NameExpr:
			if n.Name == name {
				found = true
			}
		case *ast.BinaryExpr:
			walk(n.Left)
			walk(n.Right)
		case *ast.UnaryExpr:
			walk(n.X)
		case *ast.CallExpr:
			walk(n.Fn)
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.MemberExpr:
			walk(n.X)
		case *ast.LambdaExpr:
			walk(n.Body)
		case *ast.IfExpr:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case *ast.SwitchExpr:
			walk(n.Scrutinee)
			for _, c := range n.Cases {
				walk(c.Body)
			}
			walk(n.Else)
		case *ast.LetExpr:
			walk(n.Value)
			walk(n.Body)
		case *ast.BlockExpr:
			for _, c := range n.Consts {
				walk(c.Value)
			}
			walk(n.Result)
		}
	}
	walk(e)
	return found
}

func bc(site source.Site, id Builtin, args ...Node) Node {
	return &BuiltinCall{Base: At(site), Builtin: id, Args: args}
}

func lit(site source.Site, v *data.Value) Node {
	return &Literal{Base: At(site), Value: v}
}

func notNode(site source.Site, x Node) Node {
	return &Force{Base: At(site), Body: bc(site, IfThenElse, x,
		&Delay{Base: At(site), Body: lit(site, data.False())},
		&Delay{Base: At(site), Body: lit(site, data.True())})}
}

func (b *Builder) expr(e ast.Expr) (Node, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return lit(n.Site(), literalToData(n)), nil
	case *ast.NameExpr:
		if tag, ok := b.resolveVariantTag("", n.Name); ok {
			return lit(n.Site(), data.Constr(tag, nil)), nil
		}
		return &Variable{Base: At(n.Site()), Name: n.Name}, nil
	case *ast.VariantExpr:
		tag, ok := b.resolveVariantTag(n.Enum, n.Variant)
		if !ok {
			return nil, &errs.ReferenceError{Site: n.Site(), Message: "unknown variant " + n.Variant}
		}
		return lit(n.Site(), data.Constr(tag, nil)), nil
	case *ast.BinaryExpr:
		return b.binary(n)
	case *ast.UnaryExpr:
		x, err := b.expr(n.X)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case ast.OpNeg:
			return bc(n.Site(), SubtractInteger, lit(n.Site(), data.IntFromInt64(0)), x), nil
		case ast.OpNot:
			return notNode(n.Site(), x), nil
		}
		return nil, &errs.TypeError{Site: n.Site(), Message: "unknown unary operator"}
	case *ast.CallExpr:
		return b.call(n)
	case *ast.MemberExpr:
		return b.field(n)
	case *ast.LambdaExpr:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Name
		}
		body, err := b.expr(n.Body)
		if err != nil {
			return nil, err
		}
		return Lam(n.Site(), params, body), nil
	case *ast.IfExpr:
		cond, err := b.expr(n.Cond)
		if err != nil {
			return nil, err
		}
		thenN, err := b.expr(n.Then)
		if err != nil {
			return nil, err
		}
		elseN, err := b.expr(n.Else)
		if err != nil {
			return nil, err
		}
		call := bc(n.Site(), IfThenElse, cond,
			&Delay{Base: At(n.Site()), Body: thenN},
			&Delay{Base: At(n.Site()), Body: elseN})
		return &Force{Base: At(n.Site()), Body: call}, nil
	case *ast.SwitchExpr:
		return b.switchExpr(n)
	case *ast.LetExpr:
		val, err := b.expr(n.Value)
		if err != nil {
			return nil, err
		}
		body, err := b.expr(n.Body)
		if err != nil {
			return nil, err
		}
		return &Call{Base: At(n.Site()), Fn: &Lambda{Base: At(n.Site()), Param: n.Name, Body: body}, Arg: val}, nil
	case *ast.BlockExpr:
		return b.block(n)
	case *ast.ListLitExpr:
		return b.listLit(n)
	}
	return nil, &errs.TypeError{Site: e.Site(), Message: "ir builder: unhandled expression"}
}

func (b *Builder) block(n *ast.BlockExpr) (Node, error) {
	result, err := b.expr(n.Result)
	if err != nil {
		return nil, err
	}
	for i := len(n.Consts) - 1; i >= 0; i-- {
		cd := n.Consts[i]
		val, err := b.expr(cd.Value)
		if err != nil {
			return nil, err
		}
		result = &Call{Base: At(cd.Site()), Fn: &Lambda{Base: At(cd.Site()), Param: cd.Name, Body: result}, Arg: val}
	}
	return result, nil
}

func (b *Builder) binary(n *ast.BinaryExpr) (Node, error) {
	site := n.Site()
	if n.Op == ast.OpAnd {
		l, err := b.expr(n.Left)
		if err != nil {
			return nil, err
		}
		r, err := b.expr(n.Right)
		if err != nil {
			return nil, err
		}
		call := bc(site, IfThenElse, l,
			&Delay{Base: At(site), Body: r},
			&Delay{Base: At(site), Body: lit(site, data.False())})
		return &Force{Base: At(site), Body: call}, nil
	}
	if n.Op == ast.OpOr {
		l, err := b.expr(n.Left)
		if err != nil {
			return nil, err
		}
		r, err := b.expr(n.Right)
		if err != nil {
			return nil, err
		}
		call := bc(site, IfThenElse, l,
			&Delay{Base: At(site), Body: lit(site, data.True())},
			&Delay{Base: At(site), Body: r})
		return &Force{Base: At(site), Body: call}, nil
	}

	l, err := b.expr(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := b.expr(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.OpEq:
		return bc(site, EqualsData, l, r), nil
	case ast.OpNeq:
		return notNode(site, bc(site, EqualsData, l, r)), nil
	case ast.OpLt:
		return bc(site, LessThanInteger, l, r), nil
	case ast.OpLte:
		return bc(site, LessThanEqualsInteger, l, r), nil
	case ast.OpGt:
		return bc(site, LessThanInteger, r, l), nil
	case ast.OpGte:
		return bc(site, LessThanEqualsInteger, r, l), nil
	case ast.OpAdd:
		leftTy := b.checked.Types[n.Left]
		if leftTy != nil && (leftTy.Decl == types.ByteArrayDecl || leftTy.Decl == types.StringDecl) {
			return bc(site, AppendByteString, l, r), nil
		}
		if leftTy != nil && leftTy.Decl == types.ListDecl {
			return b.listConcat(site, l, r), nil
		}
		return bc(site, AddInteger, l, r), nil
	case ast.OpSub:
		return bc(site, SubtractInteger, l, r), nil
	case ast.OpMul:
		return bc(site, MultiplyInteger, l, r), nil
	case ast.OpDiv:
		return bc(site, DivideInteger, l, r), nil
	case ast.OpMod:
		return bc(site, ModInteger, l, r), nil
	}
	return nil, &errs.TypeError{Site: site, Message: "unknown binary operator"}
}

func literalToData(lit *ast.Literal) *data.Value {
	switch lit.Kind {
	case ast.LitBool:
		return data.BoolValue(lit.Bool)
	case ast.LitInt:
		return data.Int(lit.Int)
	case ast.LitString:
		return data.Bytes([]byte(lit.Str))
	case ast.LitByteArray:
		return data.Bytes(lit.Bytes)
	}
	return data.None()
}

func (b *Builder) resolveVariantTag(enumName, variantName string) (int, bool) {
	if enumName != "" {
		decl, ok := b.reg.DeclByName(enumName)
		if !ok {
			return 0, false
		}
		for _, v := range decl.Variants {
			if v.Name == variantName {
				return v.Tag, true
			}
		}
		return 0, false
	}
	for _, v := range types.OptionDecl.Variants {
		if v.Name == variantName {
			return v.Tag, true
		}
	}
	for _, e := range b.reg.Enums {
		for _, v := range e.Decl.Variants {
			if v.Name == variantName {
				return v.Tag, true
			}
		}
	}
	return 0, false
}

func (b *Builder) call(n *ast.CallExpr) (Node, error) {
	args := make([]Node, len(n.Args))
	for i, a := range n.Args {
		v, err := b.expr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	switch fn := n.Fn.(type) {
	case *ast.VariantExpr:
		tag, ok := b.resolveVariantTag(fn.Enum, fn.Variant)
		if !ok {
			return nil, &errs.ReferenceError{Site: n.Site(), Message: "unknown variant " + fn.Variant}
		}
		return constrNode(n.Site(), tag, args), nil
	case *ast.NameExpr:
		switch fn.Name {
		case "List":
			if len(n.TypeArgs) == 1 {
				return lit(n.Site(), data.List(nil)), nil
			}
		case "Map":
			if len(n.TypeArgs) == 2 {
				return lit(n.Site(), data.Map(nil)), nil
			}
		case "from_data":
			// Data is already the IR's one runtime representation, so
			// reinterpreting it as T is a compile-time-only cast: the type
			// checker has already verified T.IsData(), nothing changes at
			// runtime.
			if len(n.TypeArgs) == 1 && len(args) == 1 {
				return args[0], nil
			}
		case "from_bytes":
			if len(n.TypeArgs) == 1 && len(args) == 1 {
				return bc(n.Site(), DeserialiseData, args[0]), nil
			}
		}
		if _, ok := b.reg.Structs[fn.Name]; ok {
			return constrNode(n.Site(), 0, args), nil
		}
		if tag, ok := b.resolveVariantTag("", fn.Name); ok {
			return constrNode(n.Site(), tag, args), nil
		}
		return App(n.Site(), &Variable{Base: At(n.Site()), Name: fn.Name}, args...), nil
	case *ast.MemberExpr:
		recvNode, err := b.expr(fn.X)
		if err != nil {
			return nil, err
		}
		recvTy := b.checked.Types[fn.X]
		if recvTy != nil {
			if _, ok := b.reg.LookupMethod(recvTy.Decl.Name, fn.Name); ok {
				full := append([]Node{recvNode}, args...)
				return App(n.Site(), &Variable{Base: At(n.Site()), Name: recvTy.Decl.Name + "::" + fn.Name}, full...), nil
			}
			if node, ok := b.builtinMethodCall(n.Site(), recvTy, fn.Name, recvNode, args); ok {
				return node, nil
			}
		}
		return nil, &errs.ReferenceError{Site: n.Site(), Message: "no method " + fn.Name}
	default:
		fnNode, err := b.expr(n.Fn)
		if err != nil {
			return nil, err
		}
		return App(n.Site(), fnNode, args...), nil
	}
}

func constrNode(site source.Site, tag int, fields []Node) Node {
	// Fields are already-lowered IR nodes, not yet Data literals, so a
	// Constr built from them is expressed as a builtin call rather than a
	// Literal: constrData(tag, mkCons(f0, mkCons(f1, ... []))).
	listNode := Node(lit(site, data.List(nil)))
	for i := len(fields) - 1; i >= 0; i-- {
		listNode = bc(site, MkCons, fields[i], listNode)
	}
	return bc(site, ConstrData, lit(site, data.IntFromInt64(int64(tag))), listNode)
}

func (b *Builder) field(n *ast.MemberExpr) (Node, error) {
	recvTy := b.checked.Types[n.X]
	if recvTy == nil {
		return nil, &errs.TypeError{Site: n.Site(), Message: "ir builder: missing type for member access"}
	}
	fields := recvTy.Decl.Fields
	if recvTy.Variant != "" {
		for _, v := range recvTy.Decl.Variants {
			if v.Name == recvTy.Variant {
				fields = v.Fields
				break
			}
		}
	}
	idx := -1
	for i, f := range fields {
		if f.Name == n.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		if recvTy.Decl == types.ListDecl && (n.Name == "length" || n.Name == "head") {
			recvNode, err := b.expr(n.X)
			if err != nil {
				return nil, err
			}
			if n.Name == "length" {
				return b.listLength(n.Site(), recvNode), nil
			}
			return bc(n.Site(), HeadList, recvNode), nil
		}
		return nil, &errs.ReferenceError{Site: n.Site(), Message: "unknown field " + n.Name}
	}
	recvNode, err := b.expr(n.X)
	if err != nil {
		return nil, err
	}
	return fieldAt(n.Site(), recvNode, idx), nil
}

// fieldAt reads the idx-th positional field of a Constr-encoded value:
// unConstrData returns [tag, fields]; headList(tailList(...)) unwraps the
// fields list, then idx tailLists step to the target field.
func fieldAt(site source.Site, x Node, idx int) Node {
	unc := bc(site, UnConstrData, x)
	fieldsList := bc(site, HeadList, bc(site, TailList, unc))
	return fieldFromList(site, fieldsList, idx)
}

// fieldFromList indexes an already-unwrapped fields list (no unConstrData
// step), used when the caller already holds the fields list, such as a
// switch arm's field bindings.
func fieldFromList(site source.Site, fieldsList Node, idx int) Node {
	cur := fieldsList
	for i := 0; i < idx; i++ {
		cur = bc(site, TailList, cur)
	}
	return bc(site, HeadList, cur)
}

func (b *Builder) switchExpr(n *ast.SwitchExpr) (Node, error) {
	site := n.Site()
	scrut, err := b.expr(n.Scrutinee)
	if err != nil {
		return nil, err
	}
	scrutTy := b.checked.Types[n.Scrutinee]
	if scrutTy == nil {
		return nil, &errs.TypeError{Site: site, Message: "ir builder: missing type for switch scrutinee"}
	}
	b.fresh++
	tmp := "$scrut" + itoa(b.fresh)
	tmpVar := Node(&Variable{Base: At(site), Name: tmp})
	unc := bc(site, UnConstrData, tmpVar)
	tagNode := bc(site, HeadList, unc)
	fieldsList := bc(site, HeadList, bc(site, TailList, unc))

	body, err := b.caseChain(n, scrutTy.Decl, tagNode, fieldsList, 0)
	if err != nil {
		return nil, err
	}
	return &Call{Base: At(site), Fn: &Lambda{Base: At(site), Param: tmp, Body: body}, Arg: scrut}, nil
}

func (b *Builder) caseChain(n *ast.SwitchExpr, decl *types.Decl, tagNode, fieldsList Node, i int) (Node, error) {
	site := n.Site()
	if i == len(n.Cases) {
		if n.Else != nil {
			return b.expr(n.Else)
		}
		return &Error{Base: At(site), Message: "unreachable switch arm"}, nil
	}
	c := n.Cases[i]
	var variantTag int
	for _, v := range decl.Variants {
		if v.Name == c.Variant {
			variantTag = v.Tag
			break
		}
	}
	caseBody, err := b.caseBody(c, fieldsList)
	if err != nil {
		return nil, err
	}
	rest, err := b.caseChain(n, decl, tagNode, fieldsList, i+1)
	if err != nil {
		return nil, err
	}
	cond := bc(site, EqualsInteger, tagNode, lit(site, data.IntFromInt64(int64(variantTag))))
	call := bc(site, IfThenElse, cond,
		&Delay{Base: At(site), Body: caseBody},
		&Delay{Base: At(site), Body: rest})
	return &Force{Base: At(site), Body: call}, nil
}

func (b *Builder) caseBody(c ast.SwitchCase, fieldsList Node) (Node, error) {
	body, err := b.expr(c.Body)
	if err != nil {
		return nil, err
	}
	for i := len(c.Binds) - 1; i >= 0; i-- {
		name := c.Binds[i]
		val := fieldFromList(c.Site, fieldsList, i)
		body = &Call{Base: At(c.Site), Fn: &Lambda{Base: At(c.Site), Param: name, Body: body}, Arg: val}
	}
	return body, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
