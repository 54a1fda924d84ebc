package compile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/eval"
	"github.com/SamJeffrey8/helios/source"
	"github.com/SamJeffrey8/helios/uplc"
)

func TestCompileEndToEndArithmetic(t *testing.T) {
	src := "module test\nconst main = 2 + 3 * 4;\n"
	u := source.New("t", "t.helios", []byte(src))

	res, err := Compile(u, Options{Simplify: true})
	require.NoError(t, err)
	require.NotNil(t, res.Program)

	result, _, err := eval.Run(res.Program, nil, eval.DefaultCostModel(), eval.Budget{Mem: 100000, CPU: 100000})
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(14), result))
}

func TestCompileWithoutSimplifyStillEmits(t *testing.T) {
	src := "module test\nconst main = 1 + 1;\n"
	u := source.New("t", "t.helios", []byte(src))

	res, err := Compile(u, Options{Simplify: false})
	require.NoError(t, err)

	result, _, err := eval.Run(res.Program, nil, eval.DefaultCostModel(), eval.Budget{Mem: 100000, CPU: 100000})
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(2), result))
}

func TestBytecodeRoundTripsThroughUPLC(t *testing.T) {
	src := "module test\nconst main = 7;\n"
	u := source.New("t", "t.helios", []byte(src))

	bc, err := Bytecode(u, Options{})
	require.NoError(t, err)
	require.NotEmpty(t, bc)

	prog, err := uplc.Decode(bc)
	require.NoError(t, err)
	result, _, err := eval.Run(prog, nil, eval.DefaultCostModel(), eval.Budget{Mem: 100000, CPU: 100000})
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(7), result))
}

func TestCompileParseErrorIsWrapped(t *testing.T) {
	u := source.New("t", "t.helios", []byte("not a valid program"))
	_, err := Compile(u, Options{})
	require.Error(t, err)
}

func TestCompileListLengthHeadAndFold(t *testing.T) {
	src := "module test\n" +
		"const xs: List[Int] = [1, 2, 3];\n" +
		"const main = xs.fold((acc: Int, x: Int) -> Int { acc + x }, 0) + xs.length + xs.head;\n"
	u := source.New("t", "t.helios", []byte(src))

	res, err := Compile(u, Options{Simplify: true})
	require.NoError(t, err)

	result, _, err := eval.Run(res.Program, nil, eval.DefaultCostModel(), eval.Budget{Mem: 1000000, CPU: 1000000})
	require.NoError(t, err)
	// fold sums 1+2+3=6, length is 3, head is 1: 6 + 3 + 1 = 10.
	require.True(t, data.Equal(data.IntFromInt64(10), result))
}

func TestCompileListConcat(t *testing.T) {
	src := "module test\n" +
		"const main = ([1, 2] + [3, 4]).length;\n"
	u := source.New("t", "t.helios", []byte(src))

	res, err := Compile(u, Options{Simplify: true})
	require.NoError(t, err)

	result, _, err := eval.Run(res.Program, nil, eval.DefaultCostModel(), eval.Budget{Mem: 1000000, CPU: 1000000})
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(4), result))
}

func TestCompileMapSetGetDelete(t *testing.T) {
	src := "module test\n" +
		"const m: Map[Int, Int] = Map[Int, Int]();\n" +
		"const m2 = m.set(1, 10).set(2, 20);\n" +
		"const m3 = m2.delete(1);\n" +
		"const main = m2.get(1) + m2.get(2) + m3.get_safe(1).unwrap();\n"
	u := source.New("t", "t.helios", []byte(src))

	res, err := Compile(u, Options{Simplify: true})
	require.NoError(t, err)

	_, _, err = eval.Run(res.Program, nil, eval.DefaultCostModel(), eval.Budget{Mem: 1000000, CPU: 1000000})
	// m3.get_safe(1).unwrap() raises a RuntimeError since 1 was deleted;
	// proves delete actually removes the entry rather than a no-op.
	require.Error(t, err)
}

func TestCompileMapGetSafeAfterDelete(t *testing.T) {
	src := "module test\n" +
		"const m: Map[Int, Int] = Map[Int, Int]();\n" +
		"const m2 = m.set(1, 10).set(2, 20).delete(1);\n" +
		"const main = m2.get(2);\n"
	u := source.New("t", "t.helios", []byte(src))

	res, err := Compile(u, Options{Simplify: true})
	require.NoError(t, err)

	result, _, err := eval.Run(res.Program, nil, eval.DefaultCostModel(), eval.Budget{Mem: 1000000, CPU: 1000000})
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(20), result))
}

func TestCompileMapMapAndFilter(t *testing.T) {
	src := "module test\n" +
		"const m: Map[Int, Int] = Map[Int, Int]();\n" +
		"const doubled = m.set(1, 1).set(2, 2).map((v: Int) -> Int { v * 2 });\n" +
		"const evensOnly = doubled.filter((k: Int, v: Int) -> Bool { v > 2 });\n" +
		"const main = doubled.fold((acc: Int, k: Int, v: Int) -> Int { acc + v }, 0) + evensOnly.fold((acc: Int, k: Int, v: Int) -> Int { acc + v }, 0);\n"
	u := source.New("t", "t.helios", []byte(src))

	res, err := Compile(u, Options{Simplify: true})
	require.NoError(t, err)

	result, _, err := eval.Run(res.Program, nil, eval.DefaultCostModel(), eval.Budget{Mem: 1000000, CPU: 1000000})
	require.NoError(t, err)
	// doubled = {1:2, 2:4}, fold sums to 6; evensOnly keeps v>2 -> {2:4}, fold sums to 4.
	require.True(t, data.Equal(data.IntFromInt64(10), result))
}

func TestCompileOptionUnwrapNoneFails(t *testing.T) {
	src := "module test\n" +
		"const m: Map[Int, Int] = Map[Int, Int]();\n" +
		"const main = m.get_safe(1).unwrap();\n"
	u := source.New("t", "t.helios", []byte(src))

	res, err := Compile(u, Options{Simplify: true})
	require.NoError(t, err)

	_, _, err = eval.Run(res.Program, nil, eval.DefaultCostModel(), eval.Budget{Mem: 1000000, CPU: 1000000})
	require.Error(t, err)
}

func TestCompileSerializeFromBytesRoundTrip(t *testing.T) {
	src := "module test\n" +
		"struct Point { x: Int, y: Int }\n" +
		"const encoded = Point(3, 4).serialize();\n" +
		"const decoded = from_bytes[Point](encoded);\n" +
		"const main = decoded.x + decoded.y;\n"
	u := source.New("t", "t.helios", []byte(src))

	res, err := Compile(u, Options{Simplify: true})
	require.NoError(t, err)

	result, _, err := eval.Run(res.Program, nil, eval.DefaultCostModel(), eval.Budget{Mem: 1000000, CPU: 1000000})
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(7), result))
}

func TestCompilePrintRendersIR(t *testing.T) {
	src := "module test\nconst main = 1 + 2;\n"
	u := source.New("t", "t.helios", []byte(src))
	res, err := Compile(u, Options{Simplify: true})
	require.NoError(t, err)
	require.Contains(t, res.Print(), "3")
}
