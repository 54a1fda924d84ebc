package ir

import (
	"fmt"
	"strings"
)

// Print renders n as an indented lambda-calculus listing annotated with
// each node's originating source site.
// It is the IR-inspection half of the property-test fixture surface.
func Print(n Node) string {
	var b strings.Builder
	print1(&b, n, 0)
	return b.String()
}

func print1(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	site := n.Site()
	switch v := n.(type) {
	case *Variable:
		fmt.Fprintf(b, "%s%s  ; %s\n", indent, v.Name, site)
	case *Lambda:
		fmt.Fprintf(b, "%s\\%s ->  ; %s\n", indent, v.Param, site)
		print1(b, v.Body, depth+1)
	case *Call:
		fmt.Fprintf(b, "%s(apply  ; %s\n", indent, site)
		print1(b, v.Fn, depth+1)
		print1(b, v.Arg, depth+1)
		fmt.Fprintf(b, "%s)\n", indent)
	case *BuiltinCall:
		fmt.Fprintf(b, "%s(%s  ; %s\n", indent, v.Builtin, site)
		for _, a := range v.Args {
			print1(b, a, depth+1)
		}
		fmt.Fprintf(b, "%s)\n", indent)
	case *Literal:
		fmt.Fprintf(b, "%s%s  ; %s\n", indent, v.Value.String(), site)
	case *Error:
		fmt.Fprintf(b, "%serror(%q)  ; %s\n", indent, v.Message, site)
	case *Delay:
		fmt.Fprintf(b, "%s(delay  ; %s\n", indent, site)
		print1(b, v.Body, depth+1)
		fmt.Fprintf(b, "%s)\n", indent)
	case *Force:
		fmt.Fprintf(b, "%s(force  ; %s\n", indent, site)
		print1(b, v.Body, depth+1)
		fmt.Fprintf(b, "%s)\n", indent)
	default:
		fmt.Fprintf(b, "%s<?>\n", indent)
	}
}
