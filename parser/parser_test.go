package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/ast"
	"github.com/SamJeffrey8/helios/source"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	u := source.New("t", "t.helios", []byte(src))
	prog, err := Parse(u)
	require.NoError(t, err)
	return prog
}

func TestParseProgramHeader(t *testing.T) {
	prog := parse(t, "spending my_script\nconst main = 1;\n")
	require.Equal(t, ast.PurposeSpending, prog.Purpose)
	require.Equal(t, "my_script", prog.Name)
	require.Len(t, prog.Decls, 1)
}

func TestParseConstDecl(t *testing.T) {
	prog := parse(t, "module test\nconst x = 1 + 2 * 3;\n")
	cd, ok := prog.Decls[0].(*ast.ConstDecl)
	require.True(t, ok)
	require.Equal(t, "x", cd.Name)
	bin, ok := cd.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, bin.Op)
}

func TestParseFuncDecl(t *testing.T) {
	prog := parse(t, "module test\nfunc add(a: Int, b: Int) -> Int { a + b }\n")
	fn, ok := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	require.Equal(t, "a", fn.Params[0].Name)
	require.Equal(t, "b", fn.Params[1].Name)
}

func TestParseStructDecl(t *testing.T) {
	prog := parse(t, "module test\nstruct Point { x: Int, y: Int }\n")
	sd, ok := prog.Decls[0].(*ast.StructDecl)
	require.True(t, ok)
	require.Equal(t, "Point", sd.Name)
	require.Len(t, sd.Fields, 2)
}

func TestParseEnumDecl(t *testing.T) {
	prog := parse(t, "module test\nenum Shape { Circle { r: Int }, Square { s: Int } }\n")
	ed, ok := prog.Decls[0].(*ast.EnumDecl)
	require.True(t, ok)
	require.Equal(t, "Shape", ed.Name)
	require.Len(t, ed.Variants, 2)
	require.Equal(t, "Circle", ed.Variants[0].Name)
	require.Len(t, ed.Variants[0].Fields, 1)
}

func TestParseIfExpr(t *testing.T) {
	prog := parse(t, "module test\nconst x = if (true) { 1 } else { 2 };\n")
	cd := prog.Decls[0].(*ast.ConstDecl)
	ifExpr, ok := cd.Value.(*ast.IfExpr)
	require.True(t, ok)
	require.NotNil(t, ifExpr.Cond)
	require.NotNil(t, ifExpr.Then)
	require.NotNil(t, ifExpr.Else)
}

func TestParseListTypeSugar(t *testing.T) {
	prog := parse(t, "module test\nfunc f(xs: []Int) -> Int { 0 }\n")
	fn := prog.Decls[0].(*ast.FuncDecl)
	nt, ok := fn.Params[0].Type.(*ast.NamedType)
	require.True(t, ok)
	require.Equal(t, "List", nt.Name)
	require.Len(t, nt.Args, 1)
}

func TestParseUnknownPurposeIsSyntaxError(t *testing.T) {
	u := source.New("t", "t.helios", []byte("bogus name\nconst x = 1;\n"))
	_, err := Parse(u)
	require.Error(t, err)
}

func TestParseMissingSemicolonIsSyntaxError(t *testing.T) {
	u := source.New("t", "t.helios", []byte("module test\nconst x = 1\n"))
	_, err := Parse(u)
	require.Error(t, err)
}
