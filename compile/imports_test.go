package compile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/eval"
	"github.com/SamJeffrey8/helios/source"
)

func TestResolveImportsInlinesNamedDecl(t *testing.T) {
	loader := source.MapLoader(map[string]string{
		"utils": "module utils\nconst helper = 41;\nconst secret = 99;\n",
	})
	u := source.New("main", "main.helios", []byte(
		"module test\nimport { helper } from utils;\nconst main = helper + 1;\n"))

	res, err := Compile(u, Options{Simplify: true, Loader: loader})
	require.NoError(t, err)

	result, _, err := eval.Run(res.Program, nil, eval.DefaultCostModel(), eval.Budget{Mem: 100000, CPU: 100000})
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(42), result))
}

func TestResolveImportsOnlyExposesNamedDecls(t *testing.T) {
	loader := source.MapLoader(map[string]string{
		"utils": "module utils\nconst helper = 41;\nconst secret = 99;\n",
	})
	u := source.New("main", "main.helios", []byte(
		"module test\nimport { helper } from utils;\nconst main = secret;\n"))

	_, err := Compile(u, Options{Simplify: true, Loader: loader})
	require.Error(t, err, "secret was not named in the import list and must not be visible")
}

func TestResolveImportsDetectsCycle(t *testing.T) {
	loader := source.MapLoader(map[string]string{
		"a": "module a\nimport { x } from b;\nconst y = 1;\n",
		"b": "module b\nimport { y } from a;\nconst x = 1;\n",
	})
	u := source.New("main", "main.helios", []byte("module test\nimport { y } from a;\nconst main = y;\n"))

	_, err := Compile(u, Options{Simplify: true, Loader: loader})
	require.Error(t, err)
}

func TestResolveImportsTransitive(t *testing.T) {
	// mid re-exports everything a downstream importer needs: importing
	// only "two" from mid would drop "one" from the merged declarations,
	// since filterExports keeps no more than what the importer names, so
	// the importer must name every transitively-referenced declaration.
	loader := source.MapLoader(map[string]string{
		"base": "module base\nconst one = 1;\n",
		"mid":  "module mid\nimport { one } from base;\nconst two = one + 1;\n",
	})
	u := source.New("main", "main.helios", []byte(
		"module test\nimport { one, two } from mid;\nconst main = two;\n"))

	res, err := Compile(u, Options{Simplify: true, Loader: loader})
	require.NoError(t, err)
	result, _, err := eval.Run(res.Program, nil, eval.DefaultCostModel(), eval.Budget{Mem: 100000, CPU: 100000})
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(2), result))
}
