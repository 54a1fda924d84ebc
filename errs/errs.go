// Package errs defines the one taxonomy of failures used across the
// compiler pipeline and evaluator.
package errs

import (
	"fmt"

	"github.com/SamJeffrey8/helios/source"
)

// SyntaxError is raised by the tokenizer or parser. Fatal for the compile.
type SyntaxError struct {
	Site    source.Site
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s", e.Site, e.Message)
}

// TypeError is raised by the type checker. Fatal for the compile.
type TypeError struct {
	Site    source.Site
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error at %s: %s", e.Site, e.Message)
}

// ReferenceError is raised during scope resolution. Fatal for the compile.
// Suggestions holds fuzzy-matched in-scope names that may be what the
// author meant, rendered as "did you mean: ..." by the diag package.
type ReferenceError struct {
	Site        source.Site
	Message     string
	Suggestions []string
}

func (e *ReferenceError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("reference error at %s: %s", e.Site, e.Message)
	}
	return fmt.Sprintf("reference error at %s: %s (did you mean: %v?)", e.Site, e.Message, e.Suggestions)
}

// RuntimeError is a value returned by the evaluator, not raised in the
// host language: builtins and the `error` term fail with an Info string
// that tests can assert on directly, plus a Site derived from
// the code map for diagnostics.
type RuntimeError struct {
	Info string
	Site source.Site
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %s: %s", e.Site, e.Info)
}

// Common RuntimeError Info strings, fixed so tests can assert on the
// literal string.
const (
	InfoDivisionByZero = "division by zero"
	InfoEmptyList      = "empty list"
	InfoNotFound       = "not found"
	InfoIndexOutOfRange = "index out of range"
	InfoInvalidUTF8    = "invalid utf-8"
	InfoAssertFailed   = "assert failed"
)

// BudgetError reports that an evaluator run exceeded its cost budget.
type BudgetError struct {
	RemainingMem int64
	RemainingCPU int64
	LastSite     source.Site
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("out of budget at %s: remaining mem=%d cpu=%d", e.LastSite, e.RemainingMem, e.RemainingCPU)
}
