package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SamJeffrey8/helios/compile"
	"github.com/SamJeffrey8/helios/eval"
	"github.com/SamJeffrey8/helios/source"
	"github.com/SamJeffrey8/helios/uplc"
)

func newRunCmd() *cobra.Command {
	var (
		argsJSON   string
		bytecode   string
		costModel  string
		budgetMem  int64
		budgetCPU  int64
	)
	cmd := &cobra.Command{
		Use:   "run <script.helios>",
		Short: "Compile (if needed) and evaluate a script's main against arguments",
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
			result, _, err := eval.Run(prog, argVals, model, eval.Budget{Mem: budgetMem, CPU: budgetCPU})
			if err != nil {
				return reportErr(err)
			}
			fmt.Println(result.String())
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

func loadProgram(scriptPath, bytecodePath string) (*uplc.Program, error) {
	if bytecodePath != "" {
		raw, err := os.ReadFile(bytecodePath)
		if err != nil {
			return nil, err
		}
		return uplc.Decode(raw)
	}
	raw, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, err
	}
	u := source.New(scriptPath, scriptPath, raw)
	res, err := compile.Compile(u, compile.Options{Simplify: true})
	if err != nil {
		return nil, reportErr(err)
	}
	return res.Program, nil
}

func loadCostModel(path string) (*eval.CostModel, error) {
	if path == "" {
		return eval.DefaultCostModel(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return eval.LoadCostModel(raw)
}
