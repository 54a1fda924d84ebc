package uplc

import (
	"fmt"

	"github.com/SamJeffrey8/helios/ir"
)

// Emit walks optimized IR and assigns De Bruijn indices by tracking the
// chain of enclosing parameter names, producing the UPLC term tree.
// Delay/Force placement is inherited directly from the IR builder's own
// Delay/Force nodes, since the IR already carries the laziness contract
// the bytecode needs; Emit does not insert additional framing.
func Emit(n ir.Node) (Term, error) {
	return emit(n, nil)
}

func emit(n ir.Node, env []string) (Term, error) {
	switch v := n.(type) {
	case *ir.Variable:
		idx := indexOf(env, v.Name)
		if idx < 0 {
			return nil, fmt.Errorf("uplc: unbound variable %q at %s", v.Name, v.Site())
		}
		return &Var{Base: At(v.Site()), Index: idx}, nil
	case *ir.Lambda:
		body, err := emit(v.Body, append([]string{v.Param}, env...))
		if err != nil {
			return nil, err
		}
		return &Lambda{Base: At(v.Site()), Body: body}, nil
	case *ir.Call:
		fn, err := emit(v.Fn, env)
		if err != nil {
			return nil, err
		}
		arg, err := emit(v.Arg, env)
		if err != nil {
			return nil, err
		}
		return &Apply{Base: At(v.Site()), Fn: fn, Arg: arg}, nil
	case *ir.BuiltinCall:
		head := Term(&BuiltinTerm{Base: At(v.Site()), ID: v.Builtin})
		for _, a := range v.Args {
			at, err := emit(a, env)
			if err != nil {
				return nil, err
			}
			head = &Apply{Base: At(v.Site()), Fn: head, Arg: at}
		}
		return head, nil
	case *ir.Literal:
		return &Constant{Base: At(v.Site()), Value: v.Value}, nil
	case *ir.Error:
		return &ErrorTerm{Base: At(v.Site()), Message: v.Message}, nil
	case *ir.Delay:
		body, err := emit(v.Body, env)
		if err != nil {
			return nil, err
		}
		return &Delay{Base: At(v.Site()), Body: body}, nil
	case *ir.Force:
		body, err := emit(v.Body, env)
		if err != nil {
			return nil, err
		}
		return &Force{Base: At(v.Site()), Body: body}, nil
	}
	return nil, fmt.Errorf("uplc: unhandled ir node %T", n)
}

func indexOf(env []string, name string) int {
	for i, n := range env {
		if n == name {
			return i
		}
	}
	return -1
}
