package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omniq-dev/omniq/circuit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBatchRunEmpty(t *testing.T) {
	p, err := New(BackendStatevector, 1)
	require.NoError(t, err)
	_, err = NewBatchRunner(p, 2).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrBatchEmpty)
}

func TestBatchRunStatevector(t *testing.T) {
	p, err := New(BackendStatevector, 1)
	require.NoError(t, err)
	runner := NewBatchRunner(p, 4)

	var circuits []*circuit.Circuit
	for i := 0; i < 10; i++ {
		circuits = append(circuits, bellCircuit(t))
	}
	results, err := runner.Run(context.Background(), circuits)
	require.NoError(t, err)
	require.Len(t, results, 10)
	for i, res := range results {
		require.NotNil(t, res, "схема %d", i)
		assert.InDelta(t, 0.5, res.Probabilities[0], 1e-9, "схема %d", i)
	}

	stats := runner.LastStats()
	assert.Equal(t, uint64(10), stats.BatchSize)
	assert.Equal(t, uint64(10), stats.Completed)
	assert.Equal(t, uint64(0), stats.Failed)
	assert.Equal(t, uint64(1), runner.TotalBatches())

	// Параллельные прогоны не теряют замеры профайлера
	prof := p.Profiler().Stats(string(BackendStatevector))
	require.NotNil(t, prof)
	assert.Equal(t, int64(10), prof.Count)
}

func TestBatchRunCountsFailures(t *testing.T) {
	p, err := New(BackendClifford, 1)
	require.NoError(t, err)
	runner := NewBatchRunner(p, 2)

	good := bellCircuit(t)
	bad, err := circuit.New(2, 0)
	require.NoError(t, err)
	require.NoError(t, bad.AddRX(0, 0.5)) // вне группы Клиффорда

	results, err := runner.Run(context.Background(), []*circuit.Circuit{good, bad})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])

	stats := runner.LastStats()
	assert.Equal(t, uint64(1), stats.Completed)
	assert.Equal(t, uint64(1), stats.Failed)
}

func TestBatchRunCancelled(t *testing.T) {
	p, err := New(BackendStatevector, 1)
	require.NoError(t, err)
	runner := NewBatchRunner(p, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.Run(ctx, []*circuit.Circuit{bellCircuit(t)})
	assert.ErrorIs(t, err, ErrBatchTimeout)
}

func TestBatchWorkersDefault(t *testing.T) {
	p, err := New(BackendStatevector, 1)
	require.NoError(t, err)
	assert.Greater(t, NewBatchRunner(p, 0).Workers(), 0)
	assert.Equal(t, MaxBatchWorkers, NewBatchRunner(p, 100000).Workers())
}

func TestSampleBellHistogram(t *testing.T) {
	p, err := New(BackendStatevector, 42)
	require.NoError(t, err)
	runner := NewBatchRunner(p, 4)

	const shots = 2000
	counts, err := runner.Sample(context.Background(), bellCircuit(t), shots)
	require.NoError(t, err)

	// Пара Белла дает только строки 00 и 11
	total := 0
	for bits, n := range counts {
		assert.Contains(t, []uint64{0, 3}, bits)
		total += n
	}
	assert.Equal(t, shots, total)
	assert.InDelta(t, shots/2, counts[0], shots/8)
	assert.InDelta(t, shots/2, counts[3], shots/8)
}

func TestSampleRejectedOffStatevector(t *testing.T) {
	p, err := New(BackendClifford, 1)
	require.NoError(t, err)
	_, err = NewBatchRunner(p, 2).Sample(context.Background(), bellCircuit(t), 10)
	assert.ErrorIs(t, err, ErrSamplingUnsupported)

	p, err = New(BackendStatevector, 1)
	require.NoError(t, err)
	_, err = NewBatchRunner(p, 2).Sample(context.Background(), bellCircuit(t), 0)
	assert.ErrorIs(t, err, ErrBatchEmpty)
}
