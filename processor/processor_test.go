package processor

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniq-dev/omniq/circuit"
	"github.com/omniq-dev/omniq/noise"
)

func bellCircuit(t *testing.T) *circuit.Circuit {
	t.Helper()
	c, err := circuit.New(2, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddH(0))
	require.NoError(t, c.AddCNOT(0, 1))
	return c
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New("tensor-network", 1)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestRunStatevectorBell(t *testing.T) {
	p, err := New(BackendStatevector, 1)
	require.NoError(t, err)

	res, err := p.Run(bellCircuit(t))
	require.NoError(t, err)
	assert.Equal(t, BackendStatevector, res.Backend)
	require.Len(t, res.Amplitudes, 4)

	h := 1 / math.Sqrt2
	assert.InDelta(t, h, real(res.Amplitudes[0]), 1e-9)
	assert.InDelta(t, 0, real(res.Amplitudes[1]), 1e-9)
	assert.InDelta(t, 0, real(res.Amplitudes[2]), 1e-9)
	assert.InDelta(t, h, real(res.Amplitudes[3]), 1e-9)

	require.Len(t, res.Probabilities, 2)
	assert.InDelta(t, 0.5, res.Probabilities[0], 1e-9)
	assert.InDelta(t, 0.5, res.Probabilities[1], 1e-9)
}

func TestRunDensityWithNoise(t *testing.T) {
	p, err := New(BackendDensity, 1)
	require.NoError(t, err)
	require.NoError(t, p.SetNoiseModel(noise.TypicalModel()))

	res, err := p.Run(bellCircuit(t))
	require.NoError(t, err)
	require.NotNil(t, res.Density)
	assert.InDelta(t, 1, real(res.Density.Trace()), 1e-9)
	assert.Less(t, res.Density.Purity(), 1.0)
}

func TestRunClifford(t *testing.T) {
	c := bellCircuit(t)
	require.NoError(t, c.AddMeasurement(0))
	require.NoError(t, c.AddMeasurement(1))

	p, err := New(BackendClifford, 7)
	require.NoError(t, err)
	res, err := p.Run(c)
	require.NoError(t, err)
	require.NotNil(t, res.Tableau)

	// Измерения запутанной пары согласованы
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, res.Outcomes[0], res.Outcomes[1])
}

func TestNoiseModelRejectedOffDensity(t *testing.T) {
	p, err := New(BackendStatevector, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, p.SetNoiseModel(noise.TypicalModel()), ErrNoiseUnsupported)
	// Сброс модели допустим на любом бэкенде
	assert.NoError(t, p.SetNoiseModel(nil))
}

func TestProfilerCollectsRunStats(t *testing.T) {
	p, err := New(BackendStatevector, 1)
	require.NoError(t, err)

	_, err = p.Run(bellCircuit(t))
	require.NoError(t, err)
	_, err = p.Run(bellCircuit(t))
	require.NoError(t, err)

	stats := p.Profiler().Stats(string(BackendStatevector))
	require.NotNil(t, stats)
	assert.Equal(t, int64(2), stats.Count)
	assert.GreaterOrEqual(t, stats.MaxTime, stats.MinTime)
}

func TestProfilerDisable(t *testing.T) {
	prof := NewProfiler()
	prof.Disable()
	sp := prof.Start("op")
	assert.Nil(t, sp)
	assert.Equal(t, time.Duration(0), prof.End(sp))
	assert.Nil(t, prof.Stats("op"))

	prof.Enable()
	prof.End(prof.Start("op"))
	require.NotNil(t, prof.Stats("op"))
	assert.Equal(t, int64(1), prof.Stats("op").Count)

	prof.Reset()
	assert.Nil(t, prof.Stats("op"))
}

func TestProfilerEndNilSpan(t *testing.T) {
	prof := NewProfiler()
	assert.Equal(t, time.Duration(0), prof.End(nil))
}

func TestProfilerConcurrentSameOperation(t *testing.T) {
	prof := NewProfiler()
	const workers = 8

	// Все горутины открывают одноименную операцию до того, как первая
	// закроется: каждая пара Start/End должна попасть в статистику
	var opened, closed sync.WaitGroup
	opened.Add(workers)
	closed.Add(workers)
	barrier := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			defer closed.Done()
			sp := prof.Start("op")
			opened.Done()
			<-barrier
			prof.End(sp)
		}()
	}
	opened.Wait()
	close(barrier)
	closed.Wait()

	stats := prof.Stats("op")
	require.NotNil(t, stats)
	assert.Equal(t, int64(workers), stats.Count)
	assert.GreaterOrEqual(t, stats.MaxTime, stats.MinTime)
	assert.GreaterOrEqual(t, stats.TotalTime, stats.MaxTime)
}
