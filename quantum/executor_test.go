package quantum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omniq-dev/omniq/circuit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func bellCircuit(t *testing.T) *circuit.Circuit {
	t.Helper()
	c, err := circuit.New(2, 2)
	require.NoError(t, err)
	require.NoError(t, c.AddH(0))
	require.NoError(t, c.AddCNOT(0, 1))
	return c
}

func TestExecuteBell(t *testing.T) {
	e := NewExecutor(1)
	state, err := e.Execute(bellCircuit(t), nil)
	require.NoError(t, err)

	h := 1 / math.Sqrt2
	amps := state.Amplitudes()
	assert.InDelta(t, h, real(amps[0]), 1e-12)
	assert.InDelta(t, h, real(amps[3]), 1e-12)
}

func TestExecuteEmptyCircuit(t *testing.T) {
	c, err := circuit.New(2, 0)
	require.NoError(t, err)
	e := NewExecutor(1)
	_, err = e.Execute(c, nil)
	assert.ErrorIs(t, err, ErrEmptyCircuit)
}

func TestExecuteDimensionMismatch(t *testing.T) {
	e := NewExecutor(1)
	initial, err := NewStatevector(3)
	require.NoError(t, err)
	_, err = e.Execute(bellCircuit(t), initial)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestExecuteDoesNotMutateInitial(t *testing.T) {
	e := NewExecutor(1)
	initial, err := NewStatevector(2)
	require.NoError(t, err)
	_, err = e.Execute(bellCircuit(t), initial)
	require.NoError(t, err)

	a, err := initial.Amplitude(0)
	require.NoError(t, err)
	assert.Equal(t, complex(1, 0), a)
}

func TestExecuteMeasurementsDeterministicBySeed(t *testing.T) {
	c := bellCircuit(t)
	require.NoError(t, c.AddMeasurement(0))
	require.NoError(t, c.AddMeasurement(1))

	run := func(seed int64) []int {
		e := NewExecutor(seed)
		_, err := e.Execute(c, nil)
		require.NoError(t, err)
		return e.Outcomes()
	}

	first := run(99)
	require.Len(t, first, 2)
	// Коррелированные исходы состояния Белла
	assert.Equal(t, first[0], first[1])
	// Одно зерно — одинаковая траектория
	assert.Equal(t, first, run(99))
}

func TestExecuteUnsupportedGate(t *testing.T) {
	c, err := circuit.New(1, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddH(0))
	e := NewExecutor(1)
	s, err := NewStatevector(1)
	require.NoError(t, err)
	err = e.ApplyGate(s, circuit.Gate{Kind: "BOGUS", Targets: []int{0}})
	assert.ErrorIs(t, err, ErrUnsupportedGate)
}

func TestExecuteGHZCircuit(t *testing.T) {
	c, err := circuit.New(4, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddH(0))
	for q := 0; q < 3; q++ {
		require.NoError(t, c.AddCNOT(q, q+1))
	}

	e := NewExecutor(1)
	state, err := e.Execute(c, nil)
	require.NoError(t, err)

	want, err := GHZState(4)
	require.NoError(t, err)
	f, err := state.Fidelity(want)
	require.NoError(t, err)
	assert.InDelta(t, 1, f, 1e-12)
}
