// Package eval implements the call-by-need reduction machine for UPLC
// bytecode, its budget meter, and a seeded property-test harness.
package eval

import (
	"fmt"
	"log/slog"

	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/ir"
	"github.com/SamJeffrey8/helios/source"
	"github.com/SamJeffrey8/helios/uplc"
)

// Budget is the remaining CPU/memory allowance; Run charges it down on
// every reduction step and every builtin invocation.
type Budget struct {
	Mem, CPU int64
}

// Value is the evaluator's runtime representation. Unlike the IR/bytecode
// trees, it distinguishes a suspended Delay (VDelayed) from a saturated
// constant (VConst) and a partially-applied builtin (VBuiltin), since
// these three need different treatment when an Apply or Force forces them.
type Value interface{ isValue() }

// VClosure is a Lambda paired with the environment it closed over.
type VClosure struct {
	Body uplc.Term
	Env  *Env
}

// VDelayed is the result of evaluating a Delay term: a suspended
// computation that only resumes when a matching Force is evaluated.
type VDelayed struct {
	Body uplc.Term
	Env  *Env
}

// VConst wraps a fully reduced Data value.
type VConst struct{ V *data.Value }

// VBuiltin accumulates argument thunks for a builtin until it is
// saturated, mirroring how builtins are curried via Apply at the term
// level (uplc/term.go).
type VBuiltin struct {
	ID   ir.Builtin
	Args []*Thunk
}

func (*VClosure) isValue() {}
func (*VDelayed) isValue() {}
func (*VConst) isValue()   {}
func (*VBuiltin) isValue() {}

// Thunk is a memoized, call-by-need suspended computation: a term closed
// over an environment, forced at most once.
type Thunk struct {
	term uplc.Term
	env  *Env
	done bool
	val  Value
	err  error
}

func (t *Thunk) Force(m *Machine) (Value, error) {
	if t.done {
		return t.val, t.err
	}
	v, err := m.eval(t.term, t.env)
	t.done = true
	t.val, t.err = v, err
	return v, err
}

// Env is a linked list of thunks, most recently bound first, matching
// De Bruijn index 0 = nearest enclosing Lambda.
type Env struct {
	thunk  *Thunk
	parent *Env
}

func (e *Env) lookup(idx int) *Thunk {
	for i := 0; i < idx; i++ {
		if e == nil {
			return nil
		}
		e = e.parent
	}
	if e == nil {
		return nil
	}
	return e.thunk
}

// TraceSink receives the message argument of every Trace builtin
// invocation, in evaluation order.
type TraceSink func(msg *data.Value)

// Machine holds the mutable budget and optional trace sink for one run.
type Machine struct {
	model     *CostModel
	remaining Budget
	lastSite  source.Site
	onTrace   TraceSink
	log       *slog.Logger
}

// NewMachine constructs a machine with the given cost model and starting
// budget, logging to slog.Default() unless overridden with SetLogger.
func NewMachine(model *CostModel, budget Budget) *Machine {
	return &Machine{model: model, remaining: budget, log: slog.Default()}
}

// SetLogger overrides the machine's logger. Run and RunTraced build their
// own Machine and keep slog.Default().
func (m *Machine) SetLogger(l *slog.Logger) {
	if l != nil {
		m.log = l
	}
}

// OnTrace installs a sink invoked for every Trace builtin call.
func (m *Machine) OnTrace(sink TraceSink) { m.onTrace = sink }

func (m *Machine) charge(t uplc.Term, extraMem, extraCPU int64) error {
	return m.chargeAt(t.Site(), extraMem, extraCPU)
}

func (m *Machine) chargeAt(site source.Site, extraMem, extraCPU int64) error {
	m.lastSite = site
	m.remaining.Mem -= m.model.StepMem + extraMem
	m.remaining.CPU -= m.model.StepCPU + extraCPU
	if m.remaining.Mem < 0 || m.remaining.CPU < 0 {
		m.log.Warn("budget exhausted", "site", m.lastSite.String(), "mem", m.remaining.Mem, "cpu", m.remaining.CPU)
		return &errs.BudgetError{LastSite: m.lastSite, RemainingMem: m.remaining.Mem, RemainingCPU: m.remaining.CPU}
	}
	return nil
}

func (m *Machine) eval(t uplc.Term, env *Env) (Value, error) {
	if err := m.charge(t, 0, 0); err != nil {
		return nil, err
	}
	switch v := t.(type) {
	case *uplc.Var:
		th := env.lookup(v.Index)
		if th == nil {
			return nil, &errs.RuntimeError{Site: v.Site(), Info: fmt.Sprintf("unbound variable #%d", v.Index)}
		}
		return th.Force(m)
	case *uplc.Lambda:
		return &VClosure{Body: v.Body, Env: env}, nil
	case *uplc.Apply:
		fnVal, err := m.eval(v.Fn, env)
		if err != nil {
			return nil, err
		}
		arg := &Thunk{term: v.Arg, env: env}
		return m.apply(fnVal, arg, v.Site())
	case *uplc.Constant:
		return &VConst{V: v.Value}, nil
	case *uplc.Delay:
		return &VDelayed{Body: v.Body, Env: env}, nil
	case *uplc.Force:
		val, err := m.eval(v.Body, env)
		if err != nil {
			return nil, err
		}
		d, ok := val.(*VDelayed)
		if !ok {
			return nil, &errs.RuntimeError{Site: v.Site(), Info: "force applied to a non-delayed value"}
		}
		return m.eval(d.Body, d.Env)
	case *uplc.ErrorTerm:
		info := v.Message
		if info == "" {
			info = "error"
		}
		return nil, &errs.RuntimeError{Site: v.Site(), Info: info}
	case *uplc.BuiltinTerm:
		return &VBuiltin{ID: v.ID}, nil
	}
	return nil, fmt.Errorf("eval: unhandled term %T", t)
}

func (m *Machine) apply(fn Value, arg *Thunk, site source.Site) (Value, error) {
	switch f := fn.(type) {
	case *VClosure:
		return m.eval(f.Body, &Env{thunk: arg, parent: f.Env})
	case *VBuiltin:
		args := make([]*Thunk, len(f.Args)+1)
		copy(args, f.Args)
		args[len(f.Args)] = arg
		if len(args) < f.ID.Arity() {
			return &VBuiltin{ID: f.ID, Args: args}, nil
		}
		return m.callBuiltin(f.ID, args, site)
	}
	return nil, &errs.RuntimeError{Site: site, Info: "applied a non-function value"}
}

func (m *Machine) callBuiltin(id ir.Builtin, args []*Thunk, site source.Site) (Value, error) {
	if err := m.chargeAt(site, m.model.BuiltinMem[id.String()], m.model.BuiltinCPU[id.String()]); err != nil {
		return nil, err
	}
	switch id {
	case ir.IfThenElse:
		condVal, err := args[0].Force(m)
		if err != nil {
			return nil, err
		}
		cond, ok := condVal.(*VConst)
		if !ok || cond.V.Kind != data.KindConstr {
			return nil, &errs.RuntimeError{Site: site, Info: "ifThenElse: condition is not a boolean"}
		}
		if cond.V.IsTrue() {
			return args[1].Force(m)
		}
		return args[2].Force(m)
	case ir.Trace:
		msgVal, err := args[0].Force(m)
		if err != nil {
			return nil, err
		}
		if m.onTrace != nil {
			if cv, ok := msgVal.(*VConst); ok {
				m.onTrace(cv.V)
			}
		}
		return args[1].Force(m)
	case ir.ChooseList:
		listVal, err := args[0].Force(m)
		if err != nil {
			return nil, err
		}
		lv, ok := listVal.(*VConst)
		if !ok || lv.V.Kind != data.KindList {
			return nil, &errs.RuntimeError{Site: site, Info: "chooseList: not a list"}
		}
		if len(lv.V.List) == 0 {
			return args[1].Force(m)
		}
		return args[2].Force(m)
	default:
		vals := make([]*data.Value, len(args))
		for i, a := range args {
			v, err := a.Force(m)
			if err != nil {
				return nil, err
			}
			cv, ok := v.(*VConst)
			if !ok {
				return nil, &errs.RuntimeError{Site: site, Info: fmt.Sprintf("%s: argument is not a constant", id)}
			}
			vals[i] = cv.V
		}
		res, err := ir.Eval(id, vals, site)
		if err != nil {
			return nil, err
		}
		return &VConst{V: res}, nil
	}
}

// Run evaluates prog's body applied to args under budget, returning the
// resulting Data value. The budget is acquired at entry and its remainder
// reported at exit via a deferred assignment, so a failing run still
// reports how much of the budget it consumed before failing — an
// acquire-then-guaranteed-release shape applied here to a budget instead
// of a handle.
func Run(prog *uplc.Program, args []*data.Value, model *CostModel, budget Budget) (result *data.Value, remaining Budget, err error) {
	if model == nil {
		model = DefaultCostModel()
	}
	m := NewMachine(model, budget)
	defer func() { remaining = m.remaining }()

	term := prog.Body
	for _, a := range args {
		term = &uplc.Apply{Fn: term, Arg: &uplc.Constant{Value: a}}
	}
	val, evalErr := m.eval(term, nil)
	if evalErr != nil {
		return nil, m.remaining, evalErr
	}
	cv, ok := val.(*VConst)
	if !ok {
		return nil, m.remaining, fmt.Errorf("eval: program did not reduce to a constant")
	}
	return cv.V, m.remaining, nil
}

// RunTraced is Run plus a sink receiving every Trace builtin message, in
// evaluation order.
func RunTraced(prog *uplc.Program, args []*data.Value, model *CostModel, budget Budget, sink TraceSink) (result *data.Value, remaining Budget, err error) {
	if model == nil {
		model = DefaultCostModel()
	}
	m := NewMachine(model, budget)
	m.OnTrace(sink)
	defer func() { remaining = m.remaining }()

	term := prog.Body
	for _, a := range args {
		term = &uplc.Apply{Fn: term, Arg: &uplc.Constant{Value: a}}
	}
	val, evalErr := m.eval(term, nil)
	if evalErr != nil {
		return nil, m.remaining, evalErr
	}
	cv, ok := val.(*VConst)
	if !ok {
		return nil, m.remaining, fmt.Errorf("eval: program did not reduce to a constant")
	}
	return cv.V, m.remaining, nil
}
