package eval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CostModel supplies the per-step memory/CPU weights the evaluator charges
// on every reduction, plus per-builtin extra weights.
type CostModel struct {
	StepMem, StepCPU     int64
	BuiltinMem, BuiltinCPU map[string]int64
}

const paramsSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["stepMem", "stepCpu"],
  "properties": {
    "stepMem": {"type": "integer", "minimum": 0},
    "stepCpu": {"type": "integer", "minimum": 0},
    "builtinMem": {"type": "object", "additionalProperties": {"type": "integer", "minimum": 0}},
    "builtinCpu": {"type": "object", "additionalProperties": {"type": "integer", "minimum": 0}}
  }
}`

var paramsSchema *jsonschema.Schema

func init() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("network-params.json", strings.NewReader(paramsSchemaJSON)); err != nil {
		panic(err)
	}
	s, err := c.Compile("network-params.json")
	if err != nil {
		panic(err)
	}
	paramsSchema = s
}

type rawParams struct {
	StepMem    int64            `json:"stepMem"`
	StepCPU    int64            `json:"stepCpu"`
	BuiltinMem map[string]int64 `json:"builtinMem"`
	BuiltinCPU map[string]int64 `json:"builtinCpu"`
}

// LoadCostModel validates raw network-parameter JSON against the expected
// shape before decoding
// it into a CostModel.
func LoadCostModel(raw []byte) (*CostModel, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("eval: invalid network parameters JSON: %w", err)
	}
	if err := paramsSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("eval: network parameters failed schema validation: %w", err)
	}
	var p rawParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("eval: decoding network parameters: %w", err)
	}
	return &CostModel{StepMem: p.StepMem, StepCPU: p.StepCPU, BuiltinMem: p.BuiltinMem, BuiltinCPU: p.BuiltinCPU}, nil
}

// DefaultCostModel is used when no network-parameters file is supplied,
// e.g. ad hoc property-test runs against an unreleased parameter set.
func DefaultCostModel() *CostModel {
	return &CostModel{StepMem: 1, StepCPU: 1}
}
