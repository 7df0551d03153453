// Package builtintools provides host-native tools available to every
// loaded agent, registered by the builder alongside whatever script-level
// tools the package's entry point adds via register_js_tool. Grounded on
// the calculator tool used throughout the original runtime's
// crates/baml-rt-tools test fixtures.
package builtintools

import (
	"context"

	"github.com/agentrt/baml-agent-runtime/rterr"
	"github.com/agentrt/baml-agent-runtime/toolregistry"
)

// CalculateArgs is the calculate tool's argument shape; its JSON schema is
// derived from these struct tags via toolregistry.SchemaFor.
type CalculateArgs struct {
	Left      float64 `json:"left" jsonschema:"required,description=Left-hand operand."`
	Right     float64 `json:"right" jsonschema:"required,description=Right-hand operand."`
	Operation string  `json:"operation" jsonschema:"required,enum=Add,enum=Subtract,enum=Multiply,enum=Divide,description=Arithmetic operation to apply."`
}

// RegisterCalculate adds the calculate tool, and a CalculatorTool -> calculate
// variant mapping, to reg/mapper.
func RegisterCalculate(reg *toolregistry.Registry, mapper *toolregistry.VariantMapper) error {
	meta := toolregistry.Metadata{
		Name:        "calculate",
		Description: "Performs a single arithmetic operation on two numbers.",
		InputSchema: toolregistry.SchemaFor(CalculateArgs{}),
	}
	if err := reg.Register(meta, calculateExecutor); err != nil {
		return err
	}
	mapper.RegisterMapping("CalculatorTool", "calculate")
	return nil
}

func calculateExecutor(_ context.Context, args map[string]any) (any, error) {
	left, ok := numericField(args, "left")
	if !ok {
		return nil, rterr.InvalidArgument("calculate: missing or non-numeric 'left'")
	}
	right, ok := numericField(args, "right")
	if !ok {
		return nil, rterr.InvalidArgument("calculate: missing or non-numeric 'right'")
	}
	op, _ := args["operation"].(string)

	var result float64
	switch op {
	case "Add":
		result = left + right
	case "Subtract":
		result = left - right
	case "Multiply":
		result = left * right
	case "Divide":
		if right == 0 {
			return nil, rterr.InvalidArgument("calculate: division by zero")
		}
		result = left / right
	default:
		return nil, rterr.InvalidArgument("calculate: unknown operation: " + op)
	}
	return map[string]any{"result": result}, nil
}

func numericField(args map[string]any, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
