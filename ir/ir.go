// Package ir implements Helios's intermediate representation: a small
// lambda calculus plus a fixed set of builtin primitive calls. The AST builder, the fixed-point optimizer, and
// the bytecode emitter all operate on this node set.
package ir

import (
	"fmt"

	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/source"
)

// Node is implemented by every IR node; every node carries a non-null
// site.
type Node interface {
	Site() source.Site
	irNode()
}

// Base carries a node's site, mirroring ast.Base.
type Base struct{ NodeSite source.Site }

func (b Base) Site() source.Site { return b.NodeSite }
func (Base) irNode()             {}

func At(s source.Site) Base { return Base{NodeSite: s} }

// Variable references a lexically enclosing Lambda parameter by Name. The
// builder leaves Index at zero and the bytecode emitter does not read it:
// the emitter computes De Bruijn indices by matching Name against the
// enclosing Lambda parameters.
type Variable struct {
	Base
	Index int
	Name  string
}

// Lambda is a single-parameter abstraction; multi-parameter source
// functions lower to curried Lambda chains.
type Lambda struct {
	Base
	Param string
	Body  Node
}

// Call applies Fn to a single Arg; multi-argument source calls lower to
// a chain of single-argument Calls.
type Call struct {
	Base
	Fn  Node
	Arg Node
}

// BuiltinCall invokes one of the fixed catalogue of builtins (ir/builtins.go)
// with a flat argument list (builtins are not curried since their arity is
// fixed and known, unlike user Lambdas).
type BuiltinCall struct {
	Base
	Builtin Builtin
	Args    []Node
}

// Literal is a fully-reduced runtime Data value, constant-folded or
// produced directly from a source literal.
type Literal struct {
	Base
	Value *data.Value
}

// Error unconditionally fails evaluation with Message, distinct from a
// builtin raising at runtime, though both surface as errs.RuntimeError
// when evaluated.
type Error struct {
	Base
	Message string
}

// Delay defers evaluation of Body until a matching Force.
type Delay struct {
	Base
	Body Node
}

// Force evaluates a Delay's body now.
type Force struct {
	Base
	Body Node
}

func (*Variable) irNode()    {}
func (*Lambda) irNode()      {}
func (*Call) irNode()        {}
func (*BuiltinCall) irNode() {}
func (*Literal) irNode()     {}
func (*Error) irNode()       {}
func (*Delay) irNode()       {}
func (*Force) irNode()       {}

// Lam curries params into a chain of single-parameter Lambdas, innermost
// body last.
func Lam(site source.Site, params []string, body Node) Node {
	if len(params) == 0 {
		return body
	}
	n := body
	for i := len(params) - 1; i >= 0; i-- {
		n = &Lambda{Base: At(site), Param: params[i], Body: n}
	}
	return n
}

// App curries a multi-argument application into a chain of single-argument
// Calls, left-to-right.
func App(site source.Site, fn Node, args ...Node) Node {
	n := fn
	for _, a := range args {
		n = &Call{Base: At(site), Fn: n, Arg: a}
	}
	return n
}

// String renders a node for debugging (ir/print.go provides the
// site-annotated pretty-printer used by the property-test fixture
// surface).
func String(n Node) string {
	switch v := n.(type) {
	case *Variable:
		return v.Name
	case *Lambda:
		return fmt.Sprintf("(\\%s -> %s)", v.Param, String(v.Body))
	case *Call:
		return fmt.Sprintf("(%s %s)", String(v.Fn), String(v.Arg))
	case *BuiltinCall:
		return fmt.Sprintf("%s(%s)", v.Builtin, joinNodes(v.Args))
	case *Literal:
		return v.Value.String()
	case *Error:
		return fmt.Sprintf("error(%q)", v.Message)
	case *Delay:
		return fmt.Sprintf("(delay %s)", String(v.Body))
	case *Force:
		return fmt.Sprintf("(force %s)", String(v.Body))
	}
	return "<?>"
}

func joinNodes(ns []Node) string {
	s := ""
	for i, n := range ns {
		if i > 0 {
			s += ", "
		}
		s += String(n)
	}
	return s
}
