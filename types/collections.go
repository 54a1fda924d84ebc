package types

import (
	"github.com/SamJeffrey8/helios/ast"
	"github.com/SamJeffrey8/helios/errs"
)

// checkBuiltinCall resolves List[T](), Map[K,V](), from_data[T](d), and
// from_bytes[T](bs), the builtin generic "functions" that reuse ordinary
// explicit-type-argument call syntax instead of a dedicated literal form.
// ok=false lets the caller fall through to its usual struct/variant/func/
// value lookup.
func (c *checker) checkBuiltinCall(fn *ast.NameExpr, n *ast.CallExpr, scope *Scope) (*Type, bool, error) {
	switch fn.Name {
	case "List":
		if len(n.TypeArgs) != 1 {
			return nil, false, nil
		}
		if len(n.Args) != 0 {
			return nil, true, &errs.TypeError{Site: n.Site(), Message: "List[T]() takes no arguments"}
		}
		elem, err := ResolveType(n.TypeArgs[0], c.reg, nil)
		if err != nil {
			return nil, true, err
		}
		return Instantiate(ListDecl, elem), true, nil
	case "Map":
		if len(n.TypeArgs) != 2 {
			return nil, false, nil
		}
		if len(n.Args) != 0 {
			return nil, true, &errs.TypeError{Site: n.Site(), Message: "Map[K, V]() takes no arguments"}
		}
		k, err := ResolveType(n.TypeArgs[0], c.reg, nil)
		if err != nil {
			return nil, true, err
		}
		v, err := ResolveType(n.TypeArgs[1], c.reg, nil)
		if err != nil {
			return nil, true, err
		}
		return Instantiate(MapDecl, k, v), true, nil
	case "from_data":
		// from_data reinterprets an already-decoded Data value as T (a
		// compile-time cast, mirroring Plutus's fromBuiltinData); the
		// wire-level inverse of serialize() is from_bytes, below.
		if len(n.TypeArgs) != 1 {
			return nil, false, nil
		}
		if len(n.Args) != 1 {
			return nil, true, &errs.TypeError{Site: n.Site(), Message: "from_data[T] expects 1 argument(s), got " + itoa(len(n.Args))}
		}
		want, err := ResolveType(n.TypeArgs[0], c.reg, nil)
		if err != nil {
			return nil, true, err
		}
		if !want.IsData() {
			return nil, true, &errs.TypeError{Site: n.Site(), Message: "from_data[" + want.String() + "]: type has no data representation"}
		}
		if err := c.checkArgType(n.Args[0], scope, Named(DataDecl)); err != nil {
			return nil, true, err
		}
		return want, true, nil
	case "from_bytes":
		// from_bytes is serialize()'s inverse: it CBOR-decodes a ByteArray
		// produced by serialize() back into a Data value of type T.
		if len(n.TypeArgs) != 1 {
			return nil, false, nil
		}
		if len(n.Args) != 1 {
			return nil, true, &errs.TypeError{Site: n.Site(), Message: "from_bytes[T] expects 1 argument(s), got " + itoa(len(n.Args))}
		}
		want, err := ResolveType(n.TypeArgs[0], c.reg, nil)
		if err != nil {
			return nil, true, err
		}
		if !want.IsData() {
			return nil, true, &errs.TypeError{Site: n.Site(), Message: "from_bytes[" + want.String() + "]: type has no data representation"}
		}
		if err := c.checkArgType(n.Args[0], scope, Named(ByteArrayDecl)); err != nil {
			return nil, true, err
		}
		return want, true, nil
	}
	return nil, false, nil
}

// checkBuiltinField resolves a field-style structural member (no call
// parens) synthesised by the compiler rather than declared by the user;
// only List has any (`length`, `head`). It returns ok=false when n.Name
// isn't one of them
// so the caller can fall through to its usual "no field" error.
func (c *checker) checkBuiltinField(xt *Type, n *ast.MemberExpr) (*Type, bool, error) {
	if xt.Decl != ListDecl {
		return nil, false, nil
	}
	elem := Named(DataDecl)
	if len(xt.Args) == 1 {
		elem = xt.Args[0]
	}
	switch n.Name {
	case "length":
		return Named(IntDecl), true, nil
	case "head":
		return elem, true, nil
	}
	return nil, false, nil
}

// checkBuiltinMethod resolves a call-style structural member synthesised
// for List/Map/Option/Data, mirroring checkBuiltinField for (name, args)
// members. ok=false lets the caller fall through to its usual
// "no method" error.
func (c *checker) checkBuiltinMethod(recvTy *Type, me *ast.MemberExpr, n *ast.CallExpr, scope *Scope) (*Type, bool, error) {
	if me.Name == "serialize" {
		if !recvTy.IsData() {
			return nil, false, nil
		}
		if len(n.Args) != 0 {
			return nil, false, &errs.TypeError{Site: n.Site(), Message: "serialize takes no arguments"}
		}
		return Named(ByteArrayDecl), true, nil
	}

	switch recvTy.Decl {
	case ListDecl:
		return c.checkListMethod(recvTy, me, n, scope)
	case MapDecl:
		return c.checkMapMethod(recvTy, me, n, scope)
	case OptionDecl:
		return c.checkOptionMethod(recvTy, me, n, scope)
	}
	return nil, false, nil
}

func (c *checker) listElem(recvTy *Type) *Type {
	if len(recvTy.Args) == 1 {
		return recvTy.Args[0]
	}
	return Named(DataDecl)
}

func (c *checker) checkListMethod(recvTy *Type, me *ast.MemberExpr, n *ast.CallExpr, scope *Scope) (*Type, bool, error) {
	if me.Name != "fold" {
		return nil, false, nil
	}
	if len(n.Args) != 2 {
		return nil, true, &errs.TypeError{Site: n.Site(), Message: "fold expects 2 argument(s), got " + itoa(len(n.Args))}
	}
	elem := c.listElem(recvTy)
	accTy, err := c.checkExpr(n.Args[1], scope)
	if err != nil {
		return nil, true, err
	}
	fnTy, err := c.checkExpr(n.Args[0], scope)
	if err != nil {
		return nil, true, err
	}
	want := Func([]*Type{accTy, elem}, accTy)
	if !fnTy.Equal(want) {
		return nil, true, &errs.TypeError{Site: n.Args[0].Site(), Message: "fold combining function expects " + want.String() + ", got " + fnTy.String()}
	}
	return accTy, true, nil
}

func (c *checker) mapKV(recvTy *Type) (*Type, *Type) {
	k, v := Named(DataDecl), Named(DataDecl)
	if len(recvTy.Args) == 2 {
		k, v = recvTy.Args[0], recvTy.Args[1]
	}
	return k, v
}

func (c *checker) checkMapMethod(recvTy *Type, me *ast.MemberExpr, n *ast.CallExpr, scope *Scope) (*Type, bool, error) {
	k, v := c.mapKV(recvTy)
	switch me.Name {
	case "get":
		if err := c.checkArity(n, 1); err != nil {
			return nil, true, err
		}
		if err := c.checkArgType(n.Args[0], scope, k); err != nil {
			return nil, true, err
		}
		return v, true, nil
	case "get_safe":
		if err := c.checkArity(n, 1); err != nil {
			return nil, true, err
		}
		if err := c.checkArgType(n.Args[0], scope, k); err != nil {
			return nil, true, err
		}
		return Instantiate(OptionDecl, v), true, nil
	case "set":
		if err := c.checkArity(n, 2); err != nil {
			return nil, true, err
		}
		if err := c.checkArgType(n.Args[0], scope, k); err != nil {
			return nil, true, err
		}
		if err := c.checkArgType(n.Args[1], scope, v); err != nil {
			return nil, true, err
		}
		return recvTy, true, nil
	case "delete":
		if err := c.checkArity(n, 1); err != nil {
			return nil, true, err
		}
		if err := c.checkArgType(n.Args[0], scope, k); err != nil {
			return nil, true, err
		}
		return recvTy, true, nil
	case "fold":
		if err := c.checkArity(n, 2); err != nil {
			return nil, true, err
		}
		accTy, err := c.checkExpr(n.Args[1], scope)
		if err != nil {
			return nil, true, err
		}
		fnTy, err := c.checkExpr(n.Args[0], scope)
		if err != nil {
			return nil, true, err
		}
		want := Func([]*Type{accTy, k, v}, accTy)
		if !fnTy.Equal(want) {
			return nil, true, &errs.TypeError{Site: n.Args[0].Site(), Message: "fold combining function expects " + want.String() + ", got " + fnTy.String()}
		}
		return accTy, true, nil
	case "map":
		if err := c.checkArity(n, 1); err != nil {
			return nil, true, err
		}
		fnTy, err := c.checkExpr(n.Args[0], scope)
		if err != nil {
			return nil, true, err
		}
		if fnTy.Decl != FuncDecl || len(fnTy.Params) != 1 || !fnTy.Params[0].Equal(v) {
			return nil, true, &errs.TypeError{Site: n.Args[0].Site(), Message: "map function expects (" + v.String() + ") -> V2"}
		}
		return Instantiate(MapDecl, k, fnTy.Ret), true, nil
	case "filter":
		if err := c.checkArity(n, 1); err != nil {
			return nil, true, err
		}
		fnTy, err := c.checkExpr(n.Args[0], scope)
		if err != nil {
			return nil, true, err
		}
		want := Func([]*Type{k, v}, Named(BoolDecl))
		if !fnTy.Equal(want) {
			return nil, true, &errs.TypeError{Site: n.Args[0].Site(), Message: "filter predicate expects " + want.String() + ", got " + fnTy.String()}
		}
		return recvTy, true, nil
	}
	return nil, false, nil
}

func (c *checker) checkOptionMethod(recvTy *Type, me *ast.MemberExpr, n *ast.CallExpr, scope *Scope) (*Type, bool, error) {
	if me.Name != "unwrap" {
		return nil, false, nil
	}
	if err := c.checkArity(n, 0); err != nil {
		return nil, true, err
	}
	if len(recvTy.Args) != 1 {
		return Named(DataDecl), true, nil
	}
	return recvTy.Args[0], true, nil
}

func (c *checker) checkArity(n *ast.CallExpr, want int) error {
	if len(n.Args) != want {
		return &errs.TypeError{Site: n.Site(), Message: "expects " + itoa(want) + " argument(s), got " + itoa(len(n.Args))}
	}
	return nil
}

func (c *checker) checkArgType(arg ast.Expr, scope *Scope, want *Type) error {
	got, err := c.checkExpr(arg, scope)
	if err != nil {
		return err
	}
	if !assignable(want, got) {
		return &errs.TypeError{Site: arg.Site(), Message: "expects " + want.String() + ", got " + got.String()}
	}
	return nil
}
