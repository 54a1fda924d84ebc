// Package compile wires the pipeline stages — lexer, parser, type
// checker, IR builder, optimizer, bytecode emitter — into the single
// `compile(source) -> Bytecode` entry point.
package compile

import (
	"fmt"
	"log/slog"

	"github.com/SamJeffrey8/helios/ir"
	"github.com/SamJeffrey8/helios/parser"
	"github.com/SamJeffrey8/helios/source"
	"github.com/SamJeffrey8/helios/types"
	"github.com/SamJeffrey8/helios/uplc"
)

// Options controls a compile run. A zero Options is valid: Logger
// defaults to slog.Default(), Simplify is false so the optimizer does not
// run, and a nil Loader means `import` declarations are left unresolved:
// the type checker skips them, so only a use of a name they would have
// brought in is reported, as an unknown name.
type Options struct {
	Logger   *slog.Logger
	Simplify bool          // run the fixed-point IR optimizer
	Loader   source.Loader // resolves `import ... from module` declarations
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Result is everything a caller might want out of one compile: the
// type-checked program (for diagnostics/tooling), the optimized IR (for
// ir/print.go), and the final bytecode program.
type Result struct {
	Checked *types.Checked
	IR      ir.Node
	Program *uplc.Program
}

// Compile runs source through tokenize -> parse -> typecheck -> lower ->
// optimize -> emit, logging each stage's entry at Debug level the way the
// teacher logs each pipeline phase in its lexer/executor.
func Compile(u *source.Unit, opts Options) (*Result, error) {
	log := opts.logger()

	log.Debug("parse", "unit", u.ID)
	prog, err := parser.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("compile: parse: %w", err)
	}

	if opts.Loader != nil {
		log.Debug("resolve imports", "unit", u.ID)
		if err := ResolveImports(prog, opts.Loader, nil); err != nil {
			return nil, fmt.Errorf("compile: imports: %w", err)
		}
	}

	log.Debug("typecheck", "unit", u.ID)
	checked, err := types.Check(prog)
	if err != nil {
		return nil, fmt.Errorf("compile: typecheck: %w", err)
	}

	log.Debug("lower", "unit", u.ID)
	b := ir.NewBuilder(checked, checked.Registry)
	node, err := b.BuildProgram(prog)
	if err != nil {
		return nil, fmt.Errorf("compile: lower: %w", err)
	}

	if opts.Simplify {
		log.Debug("optimize", "unit", u.ID)
		node = ir.Optimize(node)
	}

	log.Debug("emit", "unit", u.ID)
	term, err := uplc.Emit(node)
	if err != nil {
		return nil, fmt.Errorf("compile: emit: %w", err)
	}

	program := &uplc.Program{Major: 1, Minor: 0, Patch: 0, Body: term}
	return &Result{Checked: checked, IR: node, Program: program}, nil
}

// Bytecode compiles u and returns its wire-encoded bytecode directly,
// always running the optimizer first.
func Bytecode(u *source.Unit, opts Options) ([]byte, error) {
	opts.Simplify = true
	res, err := Compile(u, opts)
	if err != nil {
		return nil, err
	}
	return uplc.Encode(res.Program), nil
}

// Print renders r's IR tree annotated with original source sites.
func (r *Result) Print() string {
	return ir.Print(r.IR)
}
