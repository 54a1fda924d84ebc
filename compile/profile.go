package compile

import (
	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/eval"
	"github.com/SamJeffrey8/helios/uplc"
)

// ProfileResult is the `profile(args, networkParams) -> {mem, cpu, size}`
// fixture surface.
type ProfileResult struct {
	Mem, CPU int64
	Size     int
}

// Profile runs res's program against args under budget and model, reporting
// how much of the budget it consumed plus the program's encoded size.
func Profile(res *Result, args []*data.Value, model *eval.CostModel, budget eval.Budget) (*ProfileResult, error) {
	bytecode := uplc.Encode(res.Program)
	_, remaining, err := eval.Run(res.Program, args, model, budget)
	if err != nil {
		return nil, err
	}
	return &ProfileResult{
		Mem:  budget.Mem - remaining.Mem,
		CPU:  budget.CPU - remaining.CPU,
		Size: len(bytecode),
	}, nil
}
