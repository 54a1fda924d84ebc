package main

import "github.com/SamJeffrey8/helios/errs"

// runtimeInfo extracts the observable-failure string from err if it is
// one of the evaluator's own failure kinds, so the CLI can print it
// instead of treating it as an unexpected internal error.
func runtimeInfo(err error) (string, bool) {
	switch e := err.(type) {
	case *errs.RuntimeError:
		return e.Info, true
	case *errs.BudgetError:
		return "out of budget", true
	}
	return "", false
}
