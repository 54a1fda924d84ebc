package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SamJeffrey8/helios/compile"
	"github.com/SamJeffrey8/helios/source"
	"github.com/SamJeffrey8/helios/uplc"
)

func newCompileCmd() *cobra.Command {
	var (
		out      string
		simplify bool
		moduleDir string
		printIR  bool
		watch    bool
	)
	cmd := &cobra.Command{
		Use:   "compile <script.helios>",
		Short: "Compile a Helios script to bytecode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := func() error {
				raw, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				u := source.New(args[0], args[0], raw)
				opts := compile.Options{Simplify: simplify}
				if moduleDir != "" {
					opts.Loader = source.FileLoader(moduleDir)
				}
				res, err := compile.Compile(u, opts)
				if err != nil {
					return reportErr(err)
				}
				if printIR {
					fmt.Println(res.Print())
					return nil
				}
				bytecode := uplc.Encode(res.Program)
				if out == "" {
					_, err := os.Stdout.Write(bytecode)
					return err
				}
				return os.WriteFile(out, bytecode, 0o644)
			}
			if !watch {
				return run()
			}
			return watchFile(args[0], run)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output bytecode path (stdout if empty)")
	cmd.Flags().BoolVar(&simplify, "simplify", true, "run the IR optimizer before emitting")
	cmd.Flags().StringVar(&moduleDir, "module-dir", "", "directory to resolve `import` declarations against")
	cmd.Flags().BoolVar(&printIR, "print-ir", false, "print the optimized IR instead of emitting bytecode")
	cmd.Flags().BoolVar(&watch, "watch", false, "recompile whenever the source file changes")
	return cmd
}
