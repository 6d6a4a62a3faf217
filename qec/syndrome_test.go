package qec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniq-dev/omniq/clifford"
)

func TestExtractSyndromeCleanRound(t *testing.T) {
	sc, err := NewSurfaceCode(3)
	require.NoError(t, err)

	sim, err := clifford.NewSimulator(sc.TotalQubits(), 1)
	require.NoError(t, err)

	// Первый раунд фиксирует эталон, второй относительно первого пуст:
	// ошибок между раундами не было
	_, first, err := sc.ExtractSyndrome(sim, nil)
	require.NoError(t, err)
	syn, _, err := sc.ExtractSyndrome(sim, first)
	require.NoError(t, err)
	assert.True(t, syn.IsEmpty())
}

func TestExtractSyndromeMatchesParityModel(t *testing.T) {
	sc, err := NewSurfaceCode(3)
	require.NoError(t, err)

	for q := 0; q < sc.NumDataQubits(); q++ {
		sim, err := clifford.NewSimulator(sc.TotalQubits(), int64(q)+1)
		require.NoError(t, err)

		_, reference, err := sc.ExtractSyndrome(sim, nil)
		require.NoError(t, err)

		// X-ошибка на кубите данных между раундами
		require.NoError(t, sim.ApplyX(q))

		got, _, err := sc.ExtractSyndrome(sim, reference)
		require.NoError(t, err)

		want, err := sc.SyndromeFromErrors([]PauliError{{Type: PauliX, Qubit: q}})
		require.NoError(t, err)
		assert.Equal(t, want.Triggered(), got.Triggered(), "qubit %d", q)
	}
}

func TestExtractSyndromeZError(t *testing.T) {
	sc, err := NewSurfaceCode(3)
	require.NoError(t, err)

	sim, err := clifford.NewSimulator(sc.TotalQubits(), 5)
	require.NoError(t, err)
	_, reference, err := sc.ExtractSyndrome(sim, nil)
	require.NoError(t, err)

	require.NoError(t, sim.ApplyZ(4))

	got, _, err := sc.ExtractSyndrome(sim, reference)
	require.NoError(t, err)
	want, err := sc.SyndromeFromErrors([]PauliError{{Type: PauliZ, Qubit: 4}})
	require.NoError(t, err)
	assert.Equal(t, want.Triggered(), got.Triggered())
}

func TestExtractDecodeRoundTrip(t *testing.T) {
	sc, err := NewSurfaceCode(3)
	require.NoError(t, err)
	dec := NewMWPMDecoder()

	sim, err := clifford.NewSimulator(sc.TotalQubits(), 9)
	require.NoError(t, err)
	_, reference, err := sc.ExtractSyndrome(sim, nil)
	require.NoError(t, err)

	require.NoError(t, sim.ApplyX(1))

	syn, _, err := sc.ExtractSyndrome(sim, reference)
	require.NoError(t, err)
	corr, err := dec.Decode(sc, syn)
	require.NoError(t, err)

	// Применяем коррекцию к кубитам данных и убеждаемся, что следующий
	// раунд чист
	for _, p := range corr {
		switch p.Type {
		case PauliX:
			require.NoError(t, sim.ApplyX(p.Qubit))
		case PauliZ:
			require.NoError(t, sim.ApplyZ(p.Qubit))
		case PauliY:
			require.NoError(t, sim.ApplyY(p.Qubit))
		}
	}
	clean, _, err := sc.ExtractSyndrome(sim, reference)
	require.NoError(t, err)
	assert.True(t, clean.IsEmpty())
}

func TestExtractSyndromeValidation(t *testing.T) {
	sc, err := NewSurfaceCode(3)
	require.NoError(t, err)

	small, err := clifford.NewSimulator(3, 1)
	require.NoError(t, err)
	_, _, err = sc.ExtractSyndrome(small, nil)
	assert.ErrorIs(t, err, ErrInvalidStabilizer)

	sim, err := clifford.NewSimulator(sc.TotalQubits(), 1)
	require.NoError(t, err)
	_, _, err = sc.ExtractSyndrome(sim, []int{0, 1})
	assert.ErrorIs(t, err, ErrInvalidStabilizer)
}
