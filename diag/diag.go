// Package diag renders the errs.* taxonomy against the original source
// buffer: a one-line "path:line:col: message" plus an optional
// caret-annotated excerpt.
package diag

import (
	"fmt"
	"strings"

	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/source"
)

// Render formats err as a human-readable diagnostic. Errors outside the
// errs taxonomy fall back to err.Error() with no source excerpt.
func Render(err error) string {
	switch e := err.(type) {
	case *errs.SyntaxError:
		return renderSite(e.Site, "syntax error", e.Message, nil)
	case *errs.TypeError:
		return renderSite(e.Site, "type error", e.Message, nil)
	case *errs.ReferenceError:
		return renderSite(e.Site, "reference error", e.Message, e.Suggestions)
	case *errs.RuntimeError:
		return renderSite(e.Site, "runtime error", e.Info, nil)
	case *errs.BudgetError:
		return renderSite(e.LastSite, "out of budget", fmt.Sprintf("remaining mem=%d cpu=%d", e.RemainingMem, e.RemainingCPU), nil)
	}
	return err.Error()
}

func renderSite(site source.Site, kind, message string, suggestions []string) string {
	if site.IsZero() {
		return fmt.Sprintf("%s: %s", kind, message)
	}
	line, col := site.Unit.LineCol(site.Start)
	head := fmt.Sprintf("%s:%d:%d: %s: %s", site.Unit.Path, line, col, kind, message)
	if len(suggestions) > 0 {
		head += fmt.Sprintf(" (did you mean: %s?)", strings.Join(suggestions, ", "))
	}
	excerpt := Excerpt(site)
	if excerpt == "" {
		return head
	}
	return head + "\n" + excerpt
}

// Excerpt renders the source line site.Start falls on, with a caret under
// the offending column in a "line | code" plus caret-pointer layout.
func Excerpt(site source.Site) string {
	if site.IsZero() {
		return ""
	}
	u := site.Unit
	line, col := u.LineCol(site.Start)

	lineStart := site.Start - (col - 1)
	lineEnd := lineStart
	for lineEnd < len(u.Raw) && u.Raw[lineEnd] != '\n' {
		lineEnd++
	}
	text := u.Text(lineStart, lineEnd)

	var b strings.Builder
	fmt.Fprintf(&b, "   |\n")
	fmt.Fprintf(&b, "%3d| %s\n", line, text)
	fmt.Fprintf(&b, "   | ")
	if col > 0 {
		b.WriteString(strings.Repeat(" ", col-1))
	}
	b.WriteString("^")
	return b.String()
}
