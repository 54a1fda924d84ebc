package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SamJeffrey8/helios/eval"
)

// newEvalTestCmd runs a compiled `testing`-purpose script's main against
// arguments and prints the observable outcome: the reduced value, or the
// Info string of a RuntimeError (for example "division by zero").
func newEvalTestCmd() *cobra.Command {
	var (
		argsJSON  string
		bytecode  string
		costModel string
		budgetMem int64
		budgetCPU int64
	)
	cmd := &cobra.Command{
		Use:   "eval-test <script.helios>",
		Short: "Run a testing-purpose script's main and report its observable outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0], bytecode)
			if err != nil {
				return err
			}
			argVals, err := parseArgs(argsJSON)
			if err != nil {
				return err
			}
			model, err := loadCostModel(costModel)
			if err != nil {
				return err
			}
			result, remaining, err := eval.Run(prog, argVals, model, eval.Budget{Mem: budgetMem, CPU: budgetCPU})
			if err != nil {
				info, ok := runtimeInfo(err)
				if !ok {
					return err
				}
				fmt.Printf("failure: %s\n", info)
				return nil
			}
			fmt.Printf("value: %s\n", result.String())
			fmt.Printf("remaining: mem=%d cpu=%d\n", remaining.Mem, remaining.CPU)
			return nil
		},
	}
	cmd.Flags().StringVar(&argsJSON, "args", "[]", "JSON array of arguments")
	cmd.Flags().StringVar(&bytecode, "bytecode", "", "pre-compiled bytecode path (compiles the script if empty)")
	cmd.Flags().StringVar(&costModel, "cost-model", "", "network-parameters JSON path (built-in default if empty)")
	cmd.Flags().Int64Var(&budgetMem, "budget-mem", 1_000_000, "starting memory budget")
	cmd.Flags().Int64Var(&budgetCPU, "budget-cpu", 1_000_000, "starting CPU budget")
	return cmd
}
