package clifford

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniq-dev/omniq/circuit"
)

func TestNewTableauInvariants(t *testing.T) {
	tab, err := NewTableau(5)
	require.NoError(t, err)
	require.NoError(t, tab.CheckInvariants())

	_, err = NewTableau(0)
	assert.ErrorIs(t, err, ErrInvalidQubitCount)
}

func TestDeterministicMeasurementZeroState(t *testing.T) {
	sim, err := NewSimulator(3, 1)
	require.NoError(t, err)
	for q := 0; q < 3; q++ {
		outcome, err := sim.Measure(q)
		require.NoError(t, err)
		assert.Equal(t, 0, outcome)
	}
}

func TestXFlipsMeasurement(t *testing.T) {
	sim, err := NewSimulator(2, 1)
	require.NoError(t, err)
	require.NoError(t, sim.ApplyX(1))

	o0, err := sim.Measure(0)
	require.NoError(t, err)
	o1, err := sim.Measure(1)
	require.NoError(t, err)
	assert.Equal(t, 0, o0)
	assert.Equal(t, 1, o1)
}

func TestRepeatedMeasurementIsStable(t *testing.T) {
	sim, err := NewSimulator(1, 3)
	require.NoError(t, err)
	require.NoError(t, sim.ApplyH(0))

	first, err := sim.Measure(0)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := sim.Measure(0)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGHZCorrelations(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		sim, err := NewSimulator(4, seed)
		require.NoError(t, err)
		require.NoError(t, sim.ApplyH(0))
		for q := 0; q < 3; q++ {
			require.NoError(t, sim.ApplyCNOT(q, q+1))
		}

		first, err := sim.Measure(0)
		require.NoError(t, err)
		for q := 1; q < 4; q++ {
			outcome, err := sim.Measure(q)
			require.NoError(t, err)
			assert.Equal(t, first, outcome, "seed %d, qubit %d", seed, q)
		}
	}
}

func TestSSEqualsZ(t *testing.T) {
	// S·S·X·|0⟩: X дает |1⟩, Z-фаза не меняет исход измерения
	sim, err := NewSimulator(1, 1)
	require.NoError(t, err)
	require.NoError(t, sim.ApplyX(0))
	require.NoError(t, sim.ApplyS(0))
	require.NoError(t, sim.ApplyS(0))
	outcome, err := sim.Measure(0)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome)

	// H·Z·H = X: из |0⟩ получаем |1⟩ детерминированно
	sim, err = NewSimulator(1, 1)
	require.NoError(t, err)
	require.NoError(t, sim.ApplyH(0))
	require.NoError(t, sim.ApplyZ(0))
	require.NoError(t, sim.ApplyH(0))
	outcome, err = sim.Measure(0)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome)
}

func TestSwapMovesExcitation(t *testing.T) {
	sim, err := NewSimulator(3, 1)
	require.NoError(t, err)
	require.NoError(t, sim.ApplyX(0))
	require.NoError(t, sim.ApplySwap(0, 2))

	o0, err := sim.Measure(0)
	require.NoError(t, err)
	o2, err := sim.Measure(2)
	require.NoError(t, err)
	assert.Equal(t, 0, o0)
	assert.Equal(t, 1, o2)
}

func TestInvariantsAfterRandomCliffordCircuit(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	sim, err := NewSimulatorWithSource(8, rng)
	require.NoError(t, err)

	for step := 0; step < 500; step++ {
		q := rng.Intn(8)
		switch rng.Intn(5) {
		case 0:
			require.NoError(t, sim.ApplyH(q))
		case 1:
			require.NoError(t, sim.ApplyS(q))
		case 2:
			p := (q + 1 + rng.Intn(7)) % 8
			require.NoError(t, sim.ApplyCNOT(q, p))
		case 3:
			require.NoError(t, sim.ApplyX(q))
		case 4:
			_, err := sim.Measure(q)
			require.NoError(t, err)
		}
	}
	require.NoError(t, sim.Tableau().CheckInvariants())
}

func TestLargeSystemScales(t *testing.T) {
	// 200 кубитов — далеко за пределами плотной симуляции
	sim, err := NewSimulator(200, 1)
	require.NoError(t, err)
	require.NoError(t, sim.ApplyH(0))
	for q := 0; q < 199; q++ {
		require.NoError(t, sim.ApplyCNOT(q, q+1))
	}
	first, err := sim.Measure(0)
	require.NoError(t, err)
	last, err := sim.Measure(199)
	require.NoError(t, err)
	assert.Equal(t, first, last)
}

func TestExecuteCircuit(t *testing.T) {
	c, err := circuit.New(2, 2)
	require.NoError(t, err)
	require.NoError(t, c.AddH(0))
	require.NoError(t, c.AddCNOT(0, 1))
	require.NoError(t, c.AddMeasurement(0))
	require.NoError(t, c.AddMeasurement(1))

	sim, err := NewSimulator(2, 7)
	require.NoError(t, err)
	require.NoError(t, sim.Execute(c))

	outs := sim.Outcomes()
	require.Len(t, outs, 2)
	assert.Equal(t, outs[0], outs[1])
}

func TestExecuteRejectsNonClifford(t *testing.T) {
	c, err := circuit.New(1, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddRX(0, 0.5))

	sim, err := NewSimulator(1, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, sim.Execute(c), ErrUnsupportedGate)
}

func TestExecuteValidation(t *testing.T) {
	sim, err := NewSimulator(2, 1)
	require.NoError(t, err)

	empty, err := circuit.New(2, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, sim.Execute(empty), circuit.ErrEmptyCircuit)

	wrong, err := circuit.New(3, 0)
	require.NoError(t, err)
	require.NoError(t, wrong.AddH(0))
	assert.ErrorIs(t, sim.Execute(wrong), ErrInvalidQubitCount)
}

func TestMeasurementDeterministicBySeed(t *testing.T) {
	run := func(seed int64) []int {
		sim, err := NewSimulator(4, seed)
		require.NoError(t, err)
		require.NoError(t, sim.ApplyH(0))
		require.NoError(t, sim.ApplyH(2))
		for q := 0; q < 4; q++ {
			_, err := sim.Measure(q)
			require.NoError(t, err)
		}
		return sim.Outcomes()
	}
	assert.Equal(t, run(42), run(42))
}
