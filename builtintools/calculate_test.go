package builtintools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrt/baml-agent-runtime/toolregistry"
)

func TestRegisterCalculateWiresToolAndVariant(t *testing.T) {
	reg := toolregistry.New()
	mapper := toolregistry.NewVariantMapper()
	require.NoError(t, RegisterCalculate(reg, mapper))

	assert.True(t, reg.Has("calculate"))
	name, ok := mapper.ToolName("CalculatorTool")
	require.True(t, ok)
	assert.Equal(t, "calculate", name)

	meta, _ := reg.Metadata("calculate")
	assert.NotEmpty(t, meta.InputSchema)
}

func TestCalculateOperations(t *testing.T) {
	reg := toolregistry.New()
	mapper := toolregistry.NewVariantMapper()
	require.NoError(t, RegisterCalculate(reg, mapper))

	cases := []struct {
		op       string
		expected float64
	}{
		{"Add", 5}, {"Subtract", -1}, {"Multiply", 6}, {"Divide", 2.0 / 3.0},
	}
	for _, c := range cases {
		out, err := reg.Execute(nil, "calculate", map[string]any{"left": 2.0, "right": 3.0, "operation": c.op})
		require.NoError(t, err)
		assert.InDelta(t, c.expected, out.(map[string]any)["result"].(float64), 1e-9)
	}
}

func TestCalculateDivisionByZero(t *testing.T) {
	reg := toolregistry.New()
	mapper := toolregistry.NewVariantMapper()
	require.NoError(t, RegisterCalculate(reg, mapper))

	_, err := reg.Execute(nil, "calculate", map[string]any{"left": 1.0, "right": 0.0, "operation": "Divide"})
	require.Error(t, err)
}

func TestCalculateUnknownOperation(t *testing.T) {
	reg := toolregistry.New()
	mapper := toolregistry.NewVariantMapper()
	require.NoError(t, RegisterCalculate(reg, mapper))

	_, err := reg.Execute(nil, "calculate", map[string]any{"left": 1.0, "right": 2.0, "operation": "Modulo"})
	require.Error(t, err)
}
