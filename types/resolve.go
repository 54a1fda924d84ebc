package types

import (
	"github.com/SamJeffrey8/helios/ast"
	"github.com/SamJeffrey8/helios/errs"
)

// paramScope maps a generic declaration's type-parameter names to a
// placeholder Decl shared by every occurrence of that parameter within
// the declaration's signature/body, so Substitute can recognise and
// replace them during monomorphisation.
type paramScope map[string]*Decl

func newParamScope(names []string) paramScope {
	ps := paramScope{}
	for _, n := range names {
		ps[n] = &Decl{Name: n, Kind: KindPrimitive}
	}
	return ps
}

// ResolveType turns a parsed type expression into a resolved Type,
// consulting reg for user declarations and ps for any enclosing generic's
// type parameters.
func ResolveType(te ast.TypeExpr, reg *Registry, ps paramScope) (*Type, error) {
	switch t := te.(type) {
	case *ast.NamedType:
		if ps != nil {
			if d, ok := ps[t.Name]; ok {
				if len(t.Args) != 0 {
					return nil, &errs.TypeError{Site: t.Site(), Message: "type parameter " + t.Name + " cannot itself take type arguments"}
				}
				return &Type{Decl: d}, nil
			}
		}
		decl, ok := reg.DeclByName(t.Name)
		if !ok {
			return nil, &errs.ReferenceError{Site: t.Site(), Message: "unknown type " + t.Name}
		}
		if len(t.Args) != len(decl.TypeParams) && decl.Kind != KindDomain {
			return nil, &errs.TypeError{Site: t.Site(), Message: decl.Name + " expects " + itoa(len(decl.TypeParams)) + " type argument(s)"}
		}
		args := make([]*Type, len(t.Args))
		for i, a := range t.Args {
			at, err := ResolveType(a, reg, ps)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		res := &Type{Decl: decl, Args: args}
		if t.Variant != "" {
			res.Variant = t.Variant
		}
		return res, nil
	case *ast.FuncType:
		params := make([]*Type, len(t.Params))
		for i, p := range t.Params {
			pt, err := ResolveType(p, reg, ps)
			if err != nil {
				return nil, err
			}
			params[i] = pt
		}
		ret, err := ResolveType(t.Ret, reg, ps)
		if err != nil {
			return nil, err
		}
		return Func(params, ret), nil
	case *ast.TupleType:
		return nil, &errs.TypeError{Site: t.Site(), Message: "a tuple type may only appear as a function's return type"}
	default:
		return nil, &errs.TypeError{Site: te.Site(), Message: "unsupported type expression"}
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Substitute replaces every occurrence of a placeholder bound in subst with
// its concrete type, recursively, used when specialising a
// generic declaration's field/param/return types during monomorphisation.
func Substitute(t *Type, subst map[*Decl]*Type) *Type {
	if t == nil {
		return nil
	}
	if bound, ok := subst[t.Decl]; ok && len(t.Args) == 0 && t.Decl.Kind == KindPrimitive {
		return bound
	}
	if t.Decl == FuncDecl {
		params := make([]*Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = Substitute(p, subst)
		}
		return Func(params, Substitute(t.Ret, subst))
	}
	if len(t.Args) == 0 {
		return t
	}
	args := make([]*Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = Substitute(a, subst)
	}
	return &Type{Decl: t.Decl, Args: args, Variant: t.Variant}
}
