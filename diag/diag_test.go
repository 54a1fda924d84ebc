package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/source"
)

func TestRenderSyntaxErrorWithExcerpt(t *testing.T) {
	src := "module test\nconst main = ;\n"
	u := source.New("t", "t.helios", []byte(src))
	site := source.NewSite(u, 25) // offset of the ";" on line 2

	err := &errs.SyntaxError{Site: site, Message: "expected an expression"}
	out := Render(err)

	require.True(t, strings.HasPrefix(out, "t.helios:2:"))
	require.Contains(t, out, "syntax error: expected an expression")
	require.Contains(t, out, "const main = ;")
	require.Contains(t, out, "^")
}

func TestRenderReferenceErrorWithSuggestions(t *testing.T) {
	src := "const totl = 1;\n"
	u := source.New("t", "t.helios", []byte(src))
	site := source.NewSite(u, 6)

	err := &errs.ReferenceError{Site: site, Message: "unknown name totl", Suggestions: []string{"total"}}
	out := Render(err)
	require.Contains(t, out, "reference error: unknown name totl")
	require.Contains(t, out, "(did you mean: total?)")
}

func TestRenderRuntimeErrorNoSite(t *testing.T) {
	err := &errs.RuntimeError{Info: errs.InfoDivisionByZero}
	out := Render(err)
	require.Equal(t, "runtime error: division by zero", out)
}

func TestRenderBudgetError(t *testing.T) {
	err := &errs.BudgetError{RemainingMem: -5, RemainingCPU: -1}
	out := Render(err)
	require.Equal(t, "out of budget: remaining mem=-5 cpu=-1", out)
}

func TestRenderFallsBackForUnknownErrorKind(t *testing.T) {
	out := Render(&plainError{"boom"})
	require.Equal(t, "boom", out)
}

func TestExcerptEmptyForZeroSite(t *testing.T) {
	require.Equal(t, "", Excerpt(source.Site{}))
}

type plainError struct{ msg string }

func (e *plainError) Error() string { return e.msg }
