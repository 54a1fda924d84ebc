package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/parser"
	"github.com/SamJeffrey8/helios/source"
)

func check(t *testing.T, src string) (*Checked, error) {
	t.Helper()
	u := source.New("t", "t.helios", []byte(src))
	prog, err := parser.Parse(u)
	require.NoError(t, err)
	return Check(prog)
}

func TestCheckWellTypedProgram(t *testing.T) {
	src := "module test\n" +
		"struct Point { x: Int, y: Int }\n" +
		"func sum(p: Point) -> Int { p.x + p.y }\n" +
		"const main = sum(Point(1, 2));\n"
	checked, err := check(t, src)
	require.NoError(t, err)

	_, ok := checked.Registry.Structs["Point"]
	require.True(t, ok)
	_, ok = checked.Registry.Funcs["sum"]
	require.True(t, ok)
	_, ok = checked.Registry.Consts["main"]
	require.True(t, ok)
	require.Nil(t, checked.MainSig, "module purpose does not require a main signature")
}

func TestCheckFuncArgumentTypeMismatch(t *testing.T) {
	src := "module test\n" +
		"func add(a: Int, b: Int) -> Int { a + b }\n" +
		"const main = add(1, \"two\");\n"
	_, err := check(t, src)
	require.Error(t, err)
	var typeErr *errs.TypeError
	require.ErrorAs(t, err, &typeErr)
	require.Contains(t, typeErr.Message, "argument 2")
}

func TestCheckFuncArgumentCountMismatch(t *testing.T) {
	src := "module test\n" +
		"func add(a: Int, b: Int) -> Int { a + b }\n" +
		"const main = add(1);\n"
	_, err := check(t, src)
	require.Error(t, err)
	var typeErr *errs.TypeError
	require.ErrorAs(t, err, &typeErr)
	require.Contains(t, typeErr.Message, "expects 2 argument(s), got 1")
}

func TestCheckUndefinedNameSuggestsClosestMatch(t *testing.T) {
	src := "module test\n" +
		"const total = 1;\n" +
		"const main = totl;\n"
	_, err := check(t, src)
	require.Error(t, err)
	var refErr *errs.ReferenceError
	require.ErrorAs(t, err, &refErr)
	require.Contains(t, refErr.Suggestions, "total")
}

func TestCheckListFoldWithEmptyBuiltinList(t *testing.T) {
	src := "module test\n" +
		"func sumList(xs: List[Int]) -> Int { xs.fold((acc: Int, x: Int) -> Int { acc + x }, 0) }\n" +
		"const xs = List[Int]();\n" +
		"const main = sumList(xs) + xs.length;\n"
	_, err := check(t, src)
	require.NoError(t, err)
}

func TestCheckListLiteralAndMembers(t *testing.T) {
	src := "module test\n" +
		"const xs: List[Int] = [1, 2, 3];\n" +
		"const main = xs.length + xs.head;\n"
	_, err := check(t, src)
	require.NoError(t, err)
}

func TestCheckListFoldTypeMismatch(t *testing.T) {
	src := "module test\n" +
		"const xs: List[Int] = [1, 2, 3];\n" +
		"const main = xs.fold((acc: Int, x: Int) -> Bool { true }, 0);\n"
	_, err := check(t, src)
	require.Error(t, err)
	var typeErr *errs.TypeError
	require.ErrorAs(t, err, &typeErr)
	require.Contains(t, typeErr.Message, "fold combining function expects")
}

func TestCheckMapBuiltinMembers(t *testing.T) {
	src := "module test\n" +
		"const m: Map[Int, ByteArray] = Map[Int, ByteArray]();\n" +
		"const m2 = m.set(1, #ff);\n" +
		"const main = m2.get_safe(1).unwrap();\n"
	checked, err := check(t, src)
	require.NoError(t, err)
	_, ok := checked.Registry.Consts["m2"]
	require.True(t, ok)
}

func TestCheckMapGetWrongKeyType(t *testing.T) {
	src := "module test\n" +
		"const m: Map[Int, ByteArray] = Map[Int, ByteArray]();\n" +
		"const main = m.get(#ff);\n"
	_, err := check(t, src)
	require.Error(t, err)
	var typeErr *errs.TypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestCheckSerializeAndFromBytesRoundTrip(t *testing.T) {
	src := "module test\n" +
		"struct Point { x: Int, y: Int }\n" +
		"const encoded = Point(1, 2).serialize();\n" +
		"const main = from_bytes[Point](encoded);\n"
	_, err := check(t, src)
	require.NoError(t, err)
}

func TestCheckFromDataRequiresDataArgument(t *testing.T) {
	src := "module test\n" +
		"struct Point { x: Int, y: Int }\n" +
		"const main = from_data[Point](#ff);\n"
	_, err := check(t, src)
	require.Error(t, err)
}

func TestCheckSpendingPurposeRequiresMain(t *testing.T) {
	src := "spending my_script\n" +
		"const x = 1;\n"
	_, err := check(t, src)
	require.Error(t, err)
	var typeErr *errs.TypeError
	require.ErrorAs(t, err, &typeErr)
	require.Contains(t, typeErr.Message, "no main function")
}
