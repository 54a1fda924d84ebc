package ir

import (
	"github.com/SamJeffrey8/helios/ast"
	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/source"
	"github.com/SamJeffrey8/helios/types"
)

// builtinMethodCall lowers a call-style structural member the type checker
// resolved via checkBuiltinMethod rather than a user-declared method
// (types/collections.go's checkBuiltinMethod mirrors this dispatch).
// ok=false lets the caller fall through to its usual "no method" error.
func (b *Builder) builtinMethodCall(site source.Site, recvTy *types.Type, name string, recv Node, args []Node) (Node, bool) {
	if name == "serialize" && recvTy.IsData() {
		return bc(site, SerialiseData, recv), true
	}
	switch recvTy.Decl {
	case types.ListDecl:
		if name == "fold" && len(args) == 2 {
			return b.listFold(site, recv, args[0], args[1]), true
		}
	case types.MapDecl:
		switch {
		case name == "get" && len(args) == 1:
			return b.mapGet(site, recv, args[0]), true
		case name == "get_safe" && len(args) == 1:
			return b.mapGetSafe(site, recv, args[0]), true
		case name == "set" && len(args) == 2:
			return b.mapSet(site, recv, args[0], args[1]), true
		case name == "delete" && len(args) == 1:
			return b.mapDelete(site, recv, args[0]), true
		case name == "fold" && len(args) == 2:
			return b.mapFold(site, recv, args[0], args[1]), true
		case name == "map" && len(args) == 1:
			return b.mapMap(site, recv, args[0]), true
		case name == "filter" && len(args) == 1:
			return b.mapFilter(site, recv, args[0]), true
		}
	case types.OptionDecl:
		if name == "unwrap" && len(args) == 0 {
			return b.optionUnwrap(site, recv), true
		}
	}
	return nil, false
}

// iteNode builds `force(ifThenElse(cond, delay(then), delay(els)))`, the
// same strict-to-lazy framing expr()'s IfExpr case and notNode use, factored
// out here since every structural member below branches on a builtin
// predicate.
func iteNode(site source.Site, cond, then, els Node) Node {
	call := bc(site, IfThenElse, cond,
		&Delay{Base: At(site), Body: then},
		&Delay{Base: At(site), Body: els})
	return &Force{Base: At(site), Body: call}
}

// closeOver binds name to val around body, the same Call(Lambda, Arg) shape
// LetExpr lowers to; used to give a recursive function built by fixpoint a
// closed-over argument (such as a lookup key) that stays fixed across
// recursive calls instead of being threaded through every step.
func closeOver(site source.Site, name string, val, body Node) Node {
	return &Call{Base: At(site), Fn: &Lambda{Base: At(site), Param: name, Body: body}, Arg: val}
}

// listLit lowers a `[e1, e2, ...]` literal via the same mkCons-chain idiom
// constrNode uses to build a fields list.
func (b *Builder) listLit(n *ast.ListLitExpr) (Node, error) {
	site := n.Site()
	elems := make([]Node, len(n.Elems))
	for i, e := range n.Elems {
		v, err := b.expr(e)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	listNode := Node(lit(site, data.List(nil)))
	for i := len(elems) - 1; i >= 0; i-- {
		listNode = bc(site, MkCons, elems[i], listNode)
	}
	return listNode, nil
}

func (b *Builder) listLength(site source.Site, xs Node) Node {
	b.fresh++
	name := "$lenList" + itoa(b.fresh)
	nameVar := Node(&Variable{Base: At(site), Name: name})
	xsVar := Node(&Variable{Base: At(site), Name: "xs"})
	body := iteNode(site,
		bc(site, NullList, xsVar),
		lit(site, data.IntFromInt64(0)),
		bc(site, AddInteger, lit(site, data.IntFromInt64(1)), App(site, nameVar, bc(site, TailList, xsVar))),
	)
	rec := fixpoint(site, name, Lam(site, []string{"xs"}, body))
	return App(site, rec, xs)
}

func (b *Builder) listFold(site source.Site, xs, f, acc Node) Node {
	b.fresh++
	name := "$foldList" + itoa(b.fresh)
	nameVar := Node(&Variable{Base: At(site), Name: name})
	fVar := Node(&Variable{Base: At(site), Name: "f"})
	accVar := Node(&Variable{Base: At(site), Name: "acc"})
	xsVar := Node(&Variable{Base: At(site), Name: "xs"})
	body := iteNode(site,
		bc(site, NullList, xsVar),
		accVar,
		App(site, nameVar, fVar,
			App(site, fVar, accVar, bc(site, HeadList, xsVar)),
			bc(site, TailList, xsVar)),
	)
	rec := fixpoint(site, name, Lam(site, []string{"f", "acc", "xs"}, body))
	return App(site, rec, f, acc, xs)
}

func (b *Builder) listConcat(site source.Site, xs, ys Node) Node {
	b.fresh++
	name := "$concatList" + itoa(b.fresh)
	nameVar := Node(&Variable{Base: At(site), Name: name})
	xsVar := Node(&Variable{Base: At(site), Name: "xs"})
	ysVar := Node(&Variable{Base: At(site), Name: "ys"})
	body := iteNode(site,
		bc(site, NullList, xsVar),
		ysVar,
		bc(site, MkCons, bc(site, HeadList, xsVar), App(site, nameVar, bc(site, TailList, xsVar), ysVar)),
	)
	rec := fixpoint(site, name, Lam(site, []string{"xs", "ys"}, body))
	return App(site, rec, xs, ys)
}

// mapGet fails with an Error node carrying errs.InfoNotFound when no key
// matches, walking the map's first-match-wins order (DESIGN.md
// "Duplicate Map keys").
func (b *Builder) mapGet(site source.Site, m, k Node) Node {
	b.fresh++
	name := "$mapGet" + itoa(b.fresh)
	nameVar := Node(&Variable{Base: At(site), Name: name})
	mVar := Node(&Variable{Base: At(site), Name: "m"})
	kVar := Node(&Variable{Base: At(site), Name: "k"})
	body := iteNode(site,
		bc(site, NullMap, mVar),
		&Error{Base: At(site), Message: errs.InfoNotFound},
		iteNode(site,
			bc(site, EqualsData, bc(site, HeadMapKey, mVar), kVar),
			bc(site, HeadMapVal, mVar),
			App(site, nameVar, bc(site, TailMap, mVar)),
		),
	)
	rec := fixpoint(site, name, Lam(site, []string{"m"}, body))
	return closeOver(site, "k", k, App(site, rec, m))
}

func (b *Builder) mapGetSafe(site source.Site, m, k Node) Node {
	b.fresh++
	name := "$mapGetSafe" + itoa(b.fresh)
	nameVar := Node(&Variable{Base: At(site), Name: name})
	mVar := Node(&Variable{Base: At(site), Name: "m"})
	kVar := Node(&Variable{Base: At(site), Name: "k"})
	body := iteNode(site,
		bc(site, NullMap, mVar),
		lit(site, data.None()),
		iteNode(site,
			bc(site, EqualsData, bc(site, HeadMapKey, mVar), kVar),
			constrNode(site, 0, []Node{bc(site, HeadMapVal, mVar)}),
			App(site, nameVar, bc(site, TailMap, mVar)),
		),
	)
	rec := fixpoint(site, name, Lam(site, []string{"m"}, body))
	return closeOver(site, "k", k, App(site, rec, m))
}

// mapSet prepends the new pair; under first-match lookup this shadows any
// earlier entry for the same key without needing a scan-and-replace.
func (b *Builder) mapSet(site source.Site, m, k, v Node) Node {
	return bc(site, MkPairMap, k, v, m)
}

// mapDelete removes every existing entry for k, not just the first, since a
// later duplicate would otherwise still answer get_safe after deletion.
func (b *Builder) mapDelete(site source.Site, m, k Node) Node {
	b.fresh++
	name := "$mapDelete" + itoa(b.fresh)
	nameVar := Node(&Variable{Base: At(site), Name: name})
	mVar := Node(&Variable{Base: At(site), Name: "m"})
	kVar := Node(&Variable{Base: At(site), Name: "k"})
	rest := App(site, nameVar, bc(site, TailMap, mVar))
	body := iteNode(site,
		bc(site, NullMap, mVar),
		lit(site, data.Map(nil)),
		iteNode(site,
			bc(site, EqualsData, bc(site, HeadMapKey, mVar), kVar),
			rest,
			bc(site, MkPairMap, bc(site, HeadMapKey, mVar), bc(site, HeadMapVal, mVar), rest),
		),
	)
	rec := fixpoint(site, name, Lam(site, []string{"m"}, body))
	return closeOver(site, "k", k, App(site, rec, m))
}

func (b *Builder) mapFold(site source.Site, m, f, acc Node) Node {
	b.fresh++
	name := "$mapFold" + itoa(b.fresh)
	nameVar := Node(&Variable{Base: At(site), Name: name})
	fVar := Node(&Variable{Base: At(site), Name: "f"})
	accVar := Node(&Variable{Base: At(site), Name: "acc"})
	mVar := Node(&Variable{Base: At(site), Name: "m"})
	body := iteNode(site,
		bc(site, NullMap, mVar),
		accVar,
		App(site, nameVar, fVar,
			App(site, fVar, accVar, bc(site, HeadMapKey, mVar), bc(site, HeadMapVal, mVar)),
			bc(site, TailMap, mVar)),
	)
	rec := fixpoint(site, name, Lam(site, []string{"f", "acc", "m"}, body))
	return App(site, rec, f, acc, m)
}

func (b *Builder) mapMap(site source.Site, m, f Node) Node {
	b.fresh++
	name := "$mapMapVals" + itoa(b.fresh)
	nameVar := Node(&Variable{Base: At(site), Name: name})
	fVar := Node(&Variable{Base: At(site), Name: "f"})
	mVar := Node(&Variable{Base: At(site), Name: "m"})
	body := iteNode(site,
		bc(site, NullMap, mVar),
		lit(site, data.Map(nil)),
		bc(site, MkPairMap,
			bc(site, HeadMapKey, mVar),
			App(site, fVar, bc(site, HeadMapVal, mVar)),
			App(site, nameVar, fVar, bc(site, TailMap, mVar))),
	)
	rec := fixpoint(site, name, Lam(site, []string{"f", "m"}, body))
	return App(site, rec, f, m)
}

func (b *Builder) mapFilter(site source.Site, m, pred Node) Node {
	b.fresh++
	name := "$mapFilter" + itoa(b.fresh)
	nameVar := Node(&Variable{Base: At(site), Name: name})
	pVar := Node(&Variable{Base: At(site), Name: "p"})
	mVar := Node(&Variable{Base: At(site), Name: "m"})
	rest := App(site, nameVar, pVar, bc(site, TailMap, mVar))
	body := iteNode(site,
		bc(site, NullMap, mVar),
		lit(site, data.Map(nil)),
		iteNode(site,
			App(site, pVar, bc(site, HeadMapKey, mVar), bc(site, HeadMapVal, mVar)),
			bc(site, MkPairMap, bc(site, HeadMapKey, mVar), bc(site, HeadMapVal, mVar), rest),
			rest,
		),
	)
	rec := fixpoint(site, name, Lam(site, []string{"p", "m"}, body))
	return App(site, rec, pred, m)
}

// optionUnwrap reuses errs.InfoEmptyList for None the same way an empty
// list's .head does, matching the runtime's documented RuntimeError
// vocabulary rather than inventing a distinct message for the same shape of
// failure (nothing to return).
func (b *Builder) optionUnwrap(site source.Site, opt Node) Node {
	unc := bc(site, UnConstrData, opt)
	tag := bc(site, HeadList, unc)
	fieldsList := bc(site, HeadList, bc(site, TailList, unc))
	cond := bc(site, EqualsInteger, tag, lit(site, data.IntFromInt64(0)))
	return iteNode(site, cond, fieldFromList(site, fieldsList, 0), &Error{Base: At(site), Message: errs.InfoEmptyList})
}
