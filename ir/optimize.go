package ir

import (
	"math/big"

	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/errs"
)

// maxPasses bounds the fixed-point loop as a backstop against a rewrite
// bug causing a non-terminating compile; every rule below is individually
// size- or structure-reducing, so in practice the loop exits long before
// this cap.
const maxPasses = 1000

// Optimize applies the rewrites below to a fixed point: one full
// pass that changes nothing ends the loop.
func Optimize(n Node) Node {
	for i := 0; i < maxPasses; i++ {
		next, changed := rewriteOnce(n)
		n = next
		if !changed {
			break
		}
	}
	return n
}

func rewriteOnce(n Node) (Node, bool) {
	switch v := n.(type) {
	case *Lambda:
		body, changed := rewriteOnce(v.Body)
		return &Lambda{Base: v.Base, Param: v.Param, Body: body}, changed

	case *Call:
		fn, c1 := rewriteOnce(v.Fn)
		arg, c2 := rewriteOnce(v.Arg)
		changed := c1 || c2
		if lam, ok := fn.(*Lambda); ok {
			// 1. beta-reduction of non-recursive, non-side-effecting bindings
			uses := countUses(lam.Body, lam.Param)
			if uses == 0 {
				return lam.Body, true
			}
			if uses == 1 || isSimpleValue(arg) {
				fv := freeVars(arg)
				bound := boundNames(lam.Body)
				collides := false
				for name := range fv {
					if bound[name] {
						collides = true
						break
					}
				}
				if !collides {
					return substitute(lam.Body, lam.Param, arg), true
				}
			}
		}
		return &Call{Base: v.Base, Fn: fn, Arg: arg}, changed

	case *BuiltinCall:
		args := make([]Node, len(v.Args))
		changed := false
		for i, a := range v.Args {
			na, c := rewriteOnce(a)
			if c {
				changed = true
			}
			args[i] = na
		}
		node := &BuiltinCall{Base: v.Base, Builtin: v.Builtin, Args: args}

		// 3. dead-branch elimination on a literal ifThenElse condition
		if node.Builtin == IfThenElse {
			if litN, ok := args[0].(*Literal); ok {
				if litN.Value.IsTrue() {
					return args[1], true
				}
				return args[2], true
			}
		}

		// 4. algebraic simplifications
		if simplified, ok := algebraic(node); ok {
			return simplified, true
		}

		// 2. constant folding of pure builtins over literal arguments
		if node.Builtin.Pure() && len(args) == node.Builtin.Arity() {
			vals := make([]*data.Value, len(args))
			allLit := true
			for i, a := range args {
				lv, ok := a.(*Literal)
				if !ok {
					allLit = false
					break
				}
				vals[i] = lv.Value
			}
			if allLit {
				res, err := Eval(node.Builtin, vals, node.Site())
				if err != nil {
					if re, ok := err.(*errs.RuntimeError); ok {
						return &Error{Base: node.Base, Message: re.Info}, true
					}
					return node, changed
				}
				return &Literal{Base: node.Base, Value: res}, true
			}
		}
		return node, changed

	case *Delay:
		body, changed := rewriteOnce(v.Body)
		return &Delay{Base: v.Base, Body: body}, changed

	case *Force:
		body, changed := rewriteOnce(v.Body)
		// 5 (respected, not violated): Force(Delay(x)) -> x only undoes the
		// exact Delay/Force pair the builder inserted; it never reaches
		// inside an *unmatched* Delay, so a short-circuit's unevaluated
		// branch is never forced early.
		if d, ok := body.(*Delay); ok {
			return d.Body, true
		}
		if bcN, ok := body.(*BuiltinCall); ok && bcN.Builtin == IfThenElse && len(bcN.Args) == 3 {
			if d1, ok1 := bcN.Args[1].(*Delay); ok1 {
				if d2, ok2 := bcN.Args[2].(*Delay); ok2 {
					if lf, okf := d2.Body.(*Literal); okf && !lf.Value.IsTrue() && nodeEqual(bcN.Args[0], d1.Body) {
						return bcN.Args[0], true // a && a -> a
					}
					if lt, okt := d1.Body.(*Literal); okt && lt.Value.IsTrue() && nodeEqual(bcN.Args[0], d2.Body) {
						return bcN.Args[0], true // a || a -> a
					}
					if lf2, okf2 := d1.Body.(*Literal); okf2 && !lf2.Value.IsTrue() {
						if lt2, okt2 := d2.Body.(*Literal); okt2 && lt2.Value.IsTrue() {
							if inner, ok := matchNot(bcN.Args[0]); ok {
								return inner, true // not(not(x)) -> x
							}
						}
					}
				}
			}
		}
		return &Force{Base: v.Base, Body: body}, changed

	default:
		return n, false
	}
}

// matchNot reports whether n is exactly the `notNode` shape built by the
// IR builder (force(ifThenElse(x, delay(false), delay(true)))), returning
// x if so.
func matchNot(n Node) (Node, bool) {
	f, ok := n.(*Force)
	if !ok {
		return nil, false
	}
	bcN, ok := f.Body.(*BuiltinCall)
	if !ok || bcN.Builtin != IfThenElse || len(bcN.Args) != 3 {
		return nil, false
	}
	dThen, ok1 := bcN.Args[1].(*Delay)
	dElse, ok2 := bcN.Args[2].(*Delay)
	if !ok1 || !ok2 {
		return nil, false
	}
	lf, okf := dThen.Body.(*Literal)
	lt, okt := dElse.Body.(*Literal)
	if !okf || !okt || lf.Value.IsTrue() || !lt.Value.IsTrue() {
		return nil, false
	}
	return bcN.Args[0], true
}

func algebraic(n *BuiltinCall) (Node, bool) {
	isZero := func(x Node) bool {
		l, ok := x.(*Literal)
		return ok && l.Value.Kind == data.KindInt && l.Value.Int.Sign() == 0
	}
	isOne := func(x Node) bool {
		l, ok := x.(*Literal)
		return ok && l.Value.Kind == data.KindInt && l.Value.Int.Cmp(big.NewInt(1)) == 0
	}
	switch n.Builtin {
	case AddInteger:
		if isZero(n.Args[0]) {
			return n.Args[1], true
		}
		if isZero(n.Args[1]) {
			return n.Args[0], true
		}
	case SubtractInteger:
		if isZero(n.Args[1]) {
			return n.Args[0], true
		}
	case MultiplyInteger:
		// x*0 -> 0 only when x is provably non-failing (a bare Literal or
		// Variable); otherwise the discarded operand could itself raise
		// (e.g. `5/0 * 0`), and folding to 0 would swallow that error.
		if isZero(n.Args[0]) && isSideEffectFree(n.Args[1]) {
			return &Literal{Base: n.Base, Value: data.IntFromInt64(0)}, true
		}
		if isZero(n.Args[1]) && isSideEffectFree(n.Args[0]) {
			return &Literal{Base: n.Base, Value: data.IntFromInt64(0)}, true
		}
		if isOne(n.Args[0]) {
			return n.Args[1], true
		}
		if isOne(n.Args[1]) {
			return n.Args[0], true
		}
	case DivideInteger:
		if isOne(n.Args[1]) {
			return n.Args[0], true
		}
	case EqualsData:
		if nodeEqual(n.Args[0], n.Args[1]) {
			return &Literal{Base: n.Base, Value: data.True()}, true
		}
	}
	return nil, false
}

func nodeEqual(a, b Node) bool {
	switch av := a.(type) {
	case *Variable:
		bv, ok := b.(*Variable)
		return ok && av.Name == bv.Name
	case *Literal:
		bv, ok := b.(*Literal)
		return ok && data.Equal(av.Value, bv.Value)
	}
	return false
}

// isSideEffectFree reports whether n is already a fully-reduced value that
// cannot itself raise when evaluated, the same restricted shape nodeEqual
// matches for the &&/|| idempotence rules above.
func isSideEffectFree(n Node) bool {
	switch n.(type) {
	case *Literal, *Variable:
		return true
	}
	return false
}

func isSimpleValue(n Node) bool {
	switch v := n.(type) {
	case *Literal, *Variable:
		return true
	case *BuiltinCall:
		if !v.Builtin.Pure() {
			return false
		}
		for _, a := range v.Args {
			if _, ok := a.(*Literal); !ok {
				return false
			}
		}
		return true
	}
	return false
}

func substitute(n Node, name string, val Node) Node {
	switch v := n.(type) {
	case *Variable:
		if v.Name == name {
			return val
		}
		return v
	case *Lambda:
		if v.Param == name {
			return v
		}
		return &Lambda{Base: v.Base, Param: v.Param, Body: substitute(v.Body, name, val)}
	case *Call:
		return &Call{Base: v.Base, Fn: substitute(v.Fn, name, val), Arg: substitute(v.Arg, name, val)}
	case *BuiltinCall:
		args := make([]Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = substitute(a, name, val)
		}
		return &BuiltinCall{Base: v.Base, Builtin: v.Builtin, Args: args}
	case *Delay:
		return &Delay{Base: v.Base, Body: substitute(v.Body, name, val)}
	case *Force:
		return &Force{Base: v.Base, Body: substitute(v.Body, name, val)}
	default:
		return n
	}
}

func freeVars(n Node) map[string]bool {
	out := map[string]bool{}
	var walk func(Node, map[string]bool)
	walk = func(n Node, bound map[string]bool) {
		switch v := n.(type) {
		case *Variable:
			if !bound[v.Name] {
				out[v.Name] = true
			}
		case *Lambda:
			nb := make(map[string]bool, len(bound)+1)
			for k := range bound {
				nb[k] = true
			}
			nb[v.Param] = true
			walk(v.Body, nb)
		case *Call:
			walk(v.Fn, bound)
			walk(v.Arg, bound)
		case *BuiltinCall:
			for _, a := range v.Args {
				walk(a, bound)
			}
		case *Delay:
			walk(v.Body, bound)
		case *Force:
			walk(v.Body, bound)
		}
	}
	walk(n, map[string]bool{})
	return out
}

func boundNames(n Node) map[string]bool {
	out := map[string]bool{}
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Lambda:
			out[v.Param] = true
			walk(v.Body)
		case *Call:
			walk(v.Fn)
			walk(v.Arg)
		case *BuiltinCall:
			for _, a := range v.Args {
				walk(a)
			}
		case *Delay:
			walk(v.Body)
		case *Force:
			walk(v.Body)
		}
	}
	walk(n)
	return out
}

func countUses(n Node, name string) int {
	switch v := n.(type) {
	case *Variable:
		if v.Name == name {
			return 1
		}
		return 0
	case *Lambda:
		if v.Param == name {
			return 0
		}
		return countUses(v.Body, name)
	case *Call:
		return countUses(v.Fn, name) + countUses(v.Arg, name)
	case *BuiltinCall:
		s := 0
		for _, a := range v.Args {
			s += countUses(a, name)
		}
		return s
	case *Delay:
		return countUses(v.Body, name)
	case *Force:
		return countUses(v.Body, name)
	}
	return 0
}
