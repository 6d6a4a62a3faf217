package processor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniq-dev/omniq/quantum"
)

func TestHistoryReconstruction(t *testing.T) {
	base := []complex128{1, 0, 0, 0}
	h := NewHistory(base, 0)

	s1 := []complex128{complex(1/math.Sqrt2, 0), 0, complex(1/math.Sqrt2, 0), 0}
	s2 := []complex128{complex(1/math.Sqrt2, 0), 0, 0, complex(1/math.Sqrt2, 0)}
	require.NoError(t, h.Push(s1))
	require.NoError(t, h.Push(s2))
	assert.Equal(t, 3, h.Len())

	got, err := h.StateAt(0)
	require.NoError(t, err)
	assert.Equal(t, base, got)

	got, err = h.StateAt(2)
	require.NoError(t, err)
	for i := range s2 {
		assert.InDelta(t, real(s2[i]), real(got[i]), 1e-12)
		assert.InDelta(t, imag(s2[i]), imag(got[i]), 1e-12)
	}

	_, err = h.StateAt(3)
	assert.ErrorIs(t, err, ErrHistoryIndex)
	_, err = h.StateAt(-1)
	assert.ErrorIs(t, err, ErrHistoryIndex)
}

func TestHistoryTruncate(t *testing.T) {
	h := NewHistory([]complex128{1, 0}, 0)
	require.NoError(t, h.Push([]complex128{0, 1}))
	require.NoError(t, h.Push([]complex128{1, 0}))

	require.NoError(t, h.Truncate(2))
	assert.Equal(t, 2, h.Len())
	last, err := h.Last()
	require.NoError(t, err)
	assert.Equal(t, []complex128{0, 1}, last)

	assert.ErrorIs(t, h.Truncate(0), ErrHistoryIndex)
	assert.ErrorIs(t, h.Truncate(5), ErrHistoryIndex)
}

func TestHistoryCompressionRatio(t *testing.T) {
	// X на кубите 0 четырехкубитного регистра меняет только две амплитуды
	base := make([]complex128, 16)
	base[0] = 1
	h := NewHistory(base, 0)

	next := make([]complex128, 16)
	next[1] = 1
	require.NoError(t, h.Push(next))
	assert.InDelta(t, 2.0/16.0, h.CompressionRatio(), 1e-12)
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(nil, 0)
	assert.Equal(t, 0, h.Len())
	_, err := h.StateAt(0)
	assert.ErrorIs(t, err, ErrEmptyHistory)
	_, err = h.Last()
	assert.ErrorIs(t, err, ErrEmptyHistory)

	// Первый Push задает базовое состояние
	require.NoError(t, h.Push([]complex128{1, 0}))
	assert.Equal(t, 1, h.Len())
}

func TestEngineStepsMatchDirectExecution(t *testing.T) {
	c := bellCircuit(t)
	eng, err := NewExecutionEngine(c, 3)
	require.NoError(t, err)

	require.NoError(t, eng.RunToEnd())
	assert.Equal(t, c.Len(), eng.Position())
	assert.ErrorIs(t, eng.StepForward(), ErrAtEnd)

	direct, err := quantum.NewExecutor(3).Execute(c, nil)
	require.NoError(t, err)
	fid, err := eng.State().Fidelity(direct)
	require.NoError(t, err)
	assert.InDelta(t, 1, fid, 1e-9)
}

func TestEngineStepBackward(t *testing.T) {
	eng, err := NewExecutionEngine(bellCircuit(t), 3)
	require.NoError(t, err)
	assert.ErrorIs(t, eng.StepBackward(), ErrAtStart)

	require.NoError(t, eng.StepForward())
	require.NoError(t, eng.StepForward())
	require.NoError(t, eng.StepBackward())
	assert.Equal(t, 1, eng.Position())

	// После отката состояние отвечает одному вентилю H
	p, err := eng.State().Probability(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9)
	p, err = eng.State().Probability(1)
	require.NoError(t, err)
	assert.InDelta(t, 0, p, 1e-9)

	// Повторный шаг вперед дает то же конечное состояние
	require.NoError(t, eng.StepForward())
	p, err = eng.State().Probability(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9)
}

func TestEngineBreakpoints(t *testing.T) {
	c := bellCircuit(t)
	eng, err := NewExecutionEngine(c, 3)
	require.NoError(t, err)

	assert.ErrorIs(t, eng.SetBreakpoint(5), ErrInvalidBreakpoint)
	require.NoError(t, eng.SetBreakpoint(0))

	pos, err := eng.RunToBreakpoint()
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	// Без оставшихся точек останова бежим до конца
	pos, err = eng.RunToBreakpoint()
	require.NoError(t, err)
	assert.Equal(t, c.Len(), pos)
}

func TestEngineConditionalBreakpoint(t *testing.T) {
	eng, err := NewExecutionEngine(bellCircuit(t), 3)
	require.NoError(t, err)

	// Условие срабатывает, как только кубит 1 выходит из |0⟩
	eng.SetCondition(func(s *quantum.Statevector) bool {
		p, err := s.Probability(1)
		return err == nil && p > 0.1
	})
	pos, err := eng.RunToBreakpoint()
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
}

func TestEngineReset(t *testing.T) {
	eng, err := NewExecutionEngine(bellCircuit(t), 3)
	require.NoError(t, err)
	require.NoError(t, eng.RunToEnd())

	require.NoError(t, eng.Reset())
	assert.Equal(t, 0, eng.Position())
	assert.Equal(t, 1, eng.History().Len())

	a, err := eng.State().Amplitude(0)
	require.NoError(t, err)
	assert.Equal(t, complex(1, 0), a)
}

func TestEngineHistoryMatchesTrajectory(t *testing.T) {
	c := bellCircuit(t)
	eng, err := NewExecutionEngine(c, 3)
	require.NoError(t, err)
	require.NoError(t, eng.RunToEnd())

	// Восстановленное из истории конечное состояние совпадает с текущим
	amps, err := eng.History().StateAt(c.Len())
	require.NoError(t, err)
	want := eng.State().Amplitudes()
	for i := range want {
		assert.InDelta(t, real(want[i]), real(amps[i]), 1e-12)
		assert.InDelta(t, imag(want[i]), imag(amps[i]), 1e-12)
	}
}
