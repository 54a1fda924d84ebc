package ir

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/ast"
	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/source"
	"github.com/SamJeffrey8/helios/types"
)

func name(n string) *ast.NameExpr { return &ast.NameExpr{Name: n} }

func intLit(n int64) *ast.Literal {
	return &ast.Literal{Kind: ast.LitInt, Int: big.NewInt(n)}
}

func buildAndOptimize(t *testing.T, decls []ast.Stmt) *data.Value {
	t.Helper()
	prog := ast.NewProgram(ast.PurposeModule, "test", decls, source.Site{})
	checked, err := types.Check(prog)
	require.NoError(t, err)

	node, err := NewBuilder(checked, checked.Registry).BuildProgram(prog)
	require.NoError(t, err)

	out := Optimize(node)
	lit, ok := out.(*Literal)
	require.True(t, ok, "expected a fully-reduced literal, got %s", String(out))
	return lit.Value
}

func TestBuildProgramConstArithmetic(t *testing.T) {
	// const main = 2 + 3 * 4
	mainDecl := &ast.ConstDecl{
		Name: "main",
		Value: &ast.BinaryExpr{
			Op:   ast.OpAdd,
			Left: intLit(2),
			Right: &ast.BinaryExpr{
				Op:    ast.OpMul,
				Left:  intLit(3),
				Right: intLit(4),
			},
		},
	}
	v := buildAndOptimize(t, []ast.Stmt{mainDecl})
	require.True(t, data.Equal(data.IntFromInt64(14), v))
}

func TestBuildProgramStructFieldAccess(t *testing.T) {
	point := &ast.StructDecl{
		Name:   "Point",
		Fields: []ast.Field{{Name: "x", Type: &ast.NamedType{Name: "Int"}}, {Name: "y", Type: &ast.NamedType{Name: "Int"}}},
	}
	sumFn := &ast.FuncDecl{
		Name:   "sum",
		Params: []ast.Param{{Name: "p", Type: &ast.NamedType{Name: "Point"}}},
		Body: &ast.BinaryExpr{
			Op:    ast.OpAdd,
			Left:  &ast.MemberExpr{X: name("p"), Name: "x"},
			Right: &ast.MemberExpr{X: name("p"), Name: "y"},
		},
	}
	mainDecl := &ast.ConstDecl{
		Name: "main",
		Value: &ast.CallExpr{
			Fn:   name("sum"),
			Args: []ast.Expr{&ast.CallExpr{Fn: name("Point"), Args: []ast.Expr{intLit(1), intLit(2)}}},
		},
	}
	v := buildAndOptimize(t, []ast.Stmt{point, sumFn, mainDecl})
	require.True(t, data.Equal(data.IntFromInt64(3), v))
}

func TestBuildProgramEnumSwitch(t *testing.T) {
	shape := &ast.EnumDecl{
		Name: "Shape",
		Variants: []ast.EnumVariant{
			{Name: "Circle", Fields: []ast.Field{{Name: "r", Type: &ast.NamedType{Name: "Int"}}}},
			{Name: "Square", Fields: []ast.Field{{Name: "s", Type: &ast.NamedType{Name: "Int"}}}},
		},
	}
	areaFn := &ast.FuncDecl{
		Name:   "area",
		Params: []ast.Param{{Name: "sh", Type: &ast.NamedType{Name: "Shape"}}},
		Body: &ast.SwitchExpr{
			Scrutinee: name("sh"),
			Cases: []ast.SwitchCase{
				{Variant: "Circle", Binds: []string{"r"}, Body: &ast.BinaryExpr{Op: ast.OpMul, Left: name("r"), Right: name("r")}},
				{Variant: "Square", Binds: []string{"s"}, Body: &ast.BinaryExpr{Op: ast.OpMul, Left: name("s"), Right: name("s")}},
			},
		},
	}
	mainDecl := &ast.ConstDecl{
		Name: "main",
		Value: &ast.CallExpr{
			Fn: name("area"),
			Args: []ast.Expr{&ast.CallExpr{
				Fn:   &ast.VariantExpr{Enum: "Shape", Variant: "Square"},
				Args: []ast.Expr{intLit(5)},
			}},
		},
	}
	v := buildAndOptimize(t, []ast.Stmt{shape, areaFn, mainDecl})
	require.True(t, data.Equal(data.IntFromInt64(25), v))
}

func TestBuildProgramRecursionWrapsFixpoint(t *testing.T) {
	// func fact(n Int) Int { if n == 0 { 1 } else { n * fact(n - 1) } }
	// The builder must detect fact's self-reference and wrap it in the Z
	// combinator rather than lowering it to a Call that has no binding.
	factFn := &ast.FuncDecl{
		Name:   "fact",
		Params: []ast.Param{{Name: "n", Type: &ast.NamedType{Name: "Int"}}},
		Body: &ast.IfExpr{
			Cond: &ast.BinaryExpr{Op: ast.OpEq, Left: name("n"), Right: intLit(0)},
			Then: intLit(1),
			Else: &ast.BinaryExpr{
				Op:   ast.OpMul,
				Left: name("n"),
				Right: &ast.CallExpr{
					Fn:   name("fact"),
					Args: []ast.Expr{&ast.BinaryExpr{Op: ast.OpSub, Left: name("n"), Right: intLit(1)}},
				},
			},
		},
	}
	mainDecl := &ast.ConstDecl{
		Name:  "main",
		Value: &ast.CallExpr{Fn: name("fact"), Args: []ast.Expr{intLit(5)}},
	}

	prog := ast.NewProgram(ast.PurposeModule, "test", []ast.Stmt{factFn, mainDecl}, source.Site{})
	checked, err := types.Check(prog)
	require.NoError(t, err)

	node, err := NewBuilder(checked, checked.Registry).BuildProgram(prog)
	require.NoError(t, err)

	// Constant folding alone cannot unroll a Z-combinator-bound recursive
	// call (its self-application isn't a literal), so this only asserts
	// the tree was built without error and still references "fact"'s
	// binding somewhere rather than crashing the builder; full reduction
	// of recursive programs is exercised end to end by the evaluator.
	require.Contains(t, String(node), "fact")
}
