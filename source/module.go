package source

import (
	"fmt"
	"os"
)

// Loader resolves a module name referenced by an `import` declaration to
// its source unit. Units it returns are built with NewImported, so they
// report Imported() == true.
type Loader func(module string) (*Unit, error)

// FileLoader resolves a module name to "<dir>/<module>.helios" on disk.
// The heliosc compile command uses it when --module-dir is given.
func FileLoader(dir string) Loader {
	return func(module string) (*Unit, error) {
		path := dir + "/" + module + ".helios"
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("source: loading module %q: %w", module, err)
		}
		return NewImported(path, path, raw), nil
	}
}

// MapLoader resolves a module name against an in-memory table, used by
// tests that exercise import inclusion without touching the filesystem.
func MapLoader(units map[string]string) Loader {
	return func(module string) (*Unit, error) {
		raw, ok := units[module]
		if !ok {
			return nil, fmt.Errorf("source: unknown module %q", module)
		}
		return NewImported(module, module, []byte(raw)), nil
	}
}
