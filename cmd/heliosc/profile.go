package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SamJeffrey8/helios/compile"
	"github.com/SamJeffrey8/helios/eval"
	"github.com/SamJeffrey8/helios/source"
)

func budgetFromFlags(mem, cpu int64) eval.Budget {
	return eval.Budget{Mem: mem, CPU: cpu}
}

// newProfileCmd implements the `profile(args, networkParams) -> {mem, cpu,
// size}` fixture surface.
func newProfileCmd() *cobra.Command {
	var (
		argsJSON  string
		costModel string
		budgetMem int64
		budgetCPU int64
	)
	cmd := &cobra.Command{
		Use:   "profile <script.helios>",
		Short: "Report memory/CPU budget consumption and bytecode size for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			u := source.New(args[0], args[0], raw)
			res, err := compile.Compile(u, compile.Options{Simplify: true})
			if err != nil {
				return reportErr(err)
			}
			argVals, err := parseArgs(argsJSON)
			if err != nil {
				return err
			}
			model, err := loadCostModel(costModel)
			if err != nil {
				return err
			}
			p, err := compile.Profile(res, argVals, model, budgetFromFlags(budgetMem, budgetCPU))
			if err != nil {
				return reportErr(err)
			}
			fmt.Printf("mem=%d cpu=%d size=%d\n", p.Mem, p.CPU, p.Size)
			return nil
		},
	}
	cmd.Flags().StringVar(&argsJSON, "args", "[]", "JSON array of arguments")
	cmd.Flags().StringVar(&costModel, "cost-model", "", "network-parameters JSON path (built-in default if empty)")
	cmd.Flags().Int64Var(&budgetMem, "budget-mem", 1_000_000, "starting memory budget")
	cmd.Flags().Int64Var(&budgetCPU, "budget-cpu", 1_000_000, "starting CPU budget")
	return cmd
}
