package circuit

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullGateSetCircuit(t *testing.T) *Circuit {
	t.Helper()
	c, err := New(3, 3)
	require.NoError(t, err)
	require.NoError(t, c.AddH(0))
	require.NoError(t, c.AddX(1))
	require.NoError(t, c.AddY(2))
	require.NoError(t, c.AddZ(0))
	require.NoError(t, c.AddS(1))
	require.NoError(t, c.AddPhaseShift(2, math.Pi/3))
	require.NoError(t, c.AddRX(0, 0.25))
	require.NoError(t, c.AddRY(1, -0.5))
	require.NoError(t, c.AddRZ(2, 1.75))
	require.NoError(t, c.AddCNOT(0, 1))
	require.NoError(t, c.AddSwap(1, 2))
	require.NoError(t, c.AddControlledPhase(0, 2, math.Pi/4))
	require.NoError(t, c.AddMeasurement(0))
	return c
}

func TestJSONRoundTrip(t *testing.T) {
	c := fullGateSetCircuit(t)

	data, err := c.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, c.NumQubits(), restored.NumQubits())
	assert.Equal(t, c.NumClassicalBits(), restored.NumClassicalBits())
	assert.Equal(t, c.Gates(), restored.Gates())
}

func TestJSONSchemaFields(t *testing.T) {
	c, err := New(2, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddCNOT(1, 0))
	require.NoError(t, c.AddRZ(0, 0.5))

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.EqualValues(t, 2, doc["num_qubits"])

	gates, ok := doc["gates"].([]any)
	require.True(t, ok)
	require.Len(t, gates, 2)

	cnot := gates[0].(map[string]any)
	assert.Equal(t, "CNOT", cnot["type"])
	assert.EqualValues(t, 1, cnot["qubit"])
	assert.EqualValues(t, 0, cnot["target"])
	assert.EqualValues(t, 0, cnot["step"])
	_, hasParam := cnot["parameter"]
	assert.False(t, hasParam)

	rz := gates[1].(map[string]any)
	assert.Equal(t, "RZ", rz["type"])
	assert.EqualValues(t, 0.5, rz["parameter"])
	_, hasTarget := rz["target"]
	assert.False(t, hasTarget)
}

func TestUnmarshalOrdersByStep(t *testing.T) {
	raw := []byte(`{
		"num_qubits": 2,
		"gates": [
			{"type": "CNOT", "qubit": 0, "target": 1, "step": 1},
			{"type": "H", "qubit": 0, "step": 0}
		]
	}`)
	c, err := FromJSON(raw)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	g0, _ := c.Gate(0)
	g1, _ := c.Gate(1)
	assert.Equal(t, GateH, g0.Kind)
	assert.Equal(t, GateCNOT, g1.Kind)
}

func TestUnmarshalRejectsBadRecords(t *testing.T) {
	cases := map[string]string{
		"unknown gate":      `{"num_qubits": 1, "gates": [{"type": "FOO", "qubit": 0, "step": 0}]}`,
		"missing target":    `{"num_qubits": 2, "gates": [{"type": "CNOT", "qubit": 0, "step": 0}]}`,
		"missing parameter": `{"num_qubits": 1, "gates": [{"type": "RX", "qubit": 0, "step": 0}]}`,
		"qubit overflow":    `{"num_qubits": 1, "gates": [{"type": "H", "qubit": 5, "step": 0}]}`,
	}
	for name, raw := range cases {
		_, err := FromJSON([]byte(raw))
		assert.Error(t, err, name)
	}
}

func TestToQASM(t *testing.T) {
	c, err := New(2, 2)
	require.NoError(t, err)
	require.NoError(t, c.AddH(0))
	require.NoError(t, c.AddCNOT(0, 1))
	require.NoError(t, c.AddControlledPhase(0, 1, math.Pi/2))
	require.NoError(t, c.AddMeasurement(0))
	require.NoError(t, c.AddMeasurement(1))

	qasm, err := c.ToQASM()
	require.NoError(t, err)

	expected := "OPENQASM 2.0;\n" +
		"include \"qelib1.inc\";\n" +
		"qreg q[2];\n" +
		"creg c[2];\n" +
		"h q[0];\n" +
		"cx q[0],q[1];\n" +
		"cu1(1.57079632679) q[0],q[1];\n" +
		"measure q[0] -> c[0];\n" +
		"measure q[1] -> c[1];\n"
	assert.Equal(t, expected, qasm)
}
