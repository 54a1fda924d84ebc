// Command heliosc compiles and runs Helios validator scripts: compile to
// bytecode, run a compiled program against arguments, execute a script's
// testing-purpose fixtures, and profile budget consumption, one
// cobra.Command per verb with persistent flags for cross-cutting options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "heliosc",
		Short:   "Helios validator script compiler and evaluator",
		Version: "0.1.0",
	}
	root.AddCommand(newCompileCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newEvalTestCmd())
	root.AddCommand(newProfileCmd())
	return root
}
