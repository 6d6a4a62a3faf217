package circuit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	_, err := New(0, 0)
	assert.ErrorIs(t, err, ErrInvalidCircuit)

	_, err = New(-3, 0)
	assert.ErrorIs(t, err, ErrInvalidCircuit)

	_, err = New(2, -1)
	assert.ErrorIs(t, err, ErrInvalidCircuit)

	c, err := New(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, c.NumQubits())
	assert.Equal(t, 2, c.NumClassicalBits())
	assert.Equal(t, 0, c.Len())
}

func TestAddGateValidation(t *testing.T) {
	c, err := New(2, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, c.AddH(2), ErrQubitOutOfRange)
	assert.ErrorIs(t, c.AddH(-1), ErrQubitOutOfRange)
	assert.ErrorIs(t, c.AddCNOT(0, 0), ErrDuplicateQubit)
	assert.ErrorIs(t, c.AddSwap(1, 1), ErrDuplicateQubit)
	assert.ErrorIs(t, c.AddGate(Gate{Kind: "BOGUS", Targets: []int{0}}), ErrUnknownGate)
	assert.ErrorIs(t, c.AddGate(Gate{Kind: GateCNOT, Targets: []int{0}}), ErrInvalidParameter)

	// Схема после отвергнутых вентилей не изменилась
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.AddH(0))
	require.NoError(t, c.AddCNOT(0, 1))
	assert.Equal(t, 2, c.Len())
}

func TestMeasureDefaultBasis(t *testing.T) {
	c, err := New(1, 1)
	require.NoError(t, err)
	require.NoError(t, c.AddGate(Gate{Kind: GateMeasure, Targets: []int{0}}))
	g, err := c.Gate(0)
	require.NoError(t, err)
	assert.Equal(t, "Z", g.Basis)
}

func TestDepth(t *testing.T) {
	c, err := New(3, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Depth())

	// H(0) и H(1) в одном слое, CNOT(0,1) во втором, H(2) в первом
	require.NoError(t, c.AddH(0))
	require.NoError(t, c.AddH(1))
	require.NoError(t, c.AddCNOT(0, 1))
	require.NoError(t, c.AddH(2))
	assert.Equal(t, 2, c.Depth())
}

func TestCompose(t *testing.T) {
	a, err := New(2, 0)
	require.NoError(t, err)
	require.NoError(t, a.AddH(0))

	b, err := New(2, 0)
	require.NoError(t, err)
	require.NoError(t, b.AddCNOT(0, 1))

	require.NoError(t, a.Compose(b))
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 1, b.Len())

	wrong, err := New(3, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Compose(wrong), ErrInvalidCircuit)
	assert.ErrorIs(t, a.Compose(nil), ErrInvalidCircuit)
}

func TestOptimizeCancelsAdjacentPairs(t *testing.T) {
	c, err := New(2, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddH(0))
	require.NoError(t, c.AddH(0))
	require.NoError(t, c.AddX(1))
	require.NoError(t, c.AddCNOT(0, 1))
	require.NoError(t, c.AddCNOT(0, 1))
	require.NoError(t, c.AddX(1))

	removed := c.Optimize()
	assert.Equal(t, 6, removed)
	assert.Equal(t, 0, c.Len())
}

func TestOptimizeKeepsNonCancelling(t *testing.T) {
	c, err := New(2, 0)
	require.NoError(t, err)
	// CNOT с переставленными ролями не сокращается
	require.NoError(t, c.AddCNOT(0, 1))
	require.NoError(t, c.AddCNOT(1, 0))
	// Параметрические вентили не сокращаются
	require.NoError(t, c.AddRX(0, math.Pi))
	require.NoError(t, c.AddRX(0, math.Pi))

	removed := c.Optimize()
	assert.Equal(t, 0, removed)
	assert.Equal(t, 4, c.Len())
}

func TestOptimizeIdempotent(t *testing.T) {
	c, err := New(3, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddH(0))
	require.NoError(t, c.AddX(1))
	require.NoError(t, c.AddX(1))
	require.NoError(t, c.AddH(0)) // после удаления XX пары HH становится соседней
	require.NoError(t, c.AddZ(2))

	c.Optimize()
	first := c.Gates()
	c.Optimize()
	assert.Equal(t, first, c.Gates())
	assert.Equal(t, 1, c.Len())
}

func TestGatesReturnsCopy(t *testing.T) {
	c, err := New(1, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddH(0))
	gs := c.Gates()
	gs[0].Kind = GateX
	g, err := c.Gate(0)
	require.NoError(t, err)
	assert.Equal(t, GateH, g.Kind)
}
