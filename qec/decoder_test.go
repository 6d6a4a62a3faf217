package qec

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decoders() []Decoder {
	return []Decoder{NewMWPMDecoder(), NewUnionFindDecoder()}
}

// residualSyndrome возвращает синдром ошибки, дополненной коррекцией.
func residualSyndrome(t *testing.T, sc *SurfaceCode, errs []PauliError, corr Correction) *Syndrome {
	t.Helper()
	combined := append([]PauliError{}, errs...)
	combined = append(combined, corr.AsErrors()...)
	syn, err := sc.SyndromeFromErrors(combined)
	require.NoError(t, err)
	return syn
}

func TestDecodeEmptySyndrome(t *testing.T) {
	sc, err := NewSurfaceCode(3)
	require.NoError(t, err)
	for _, dec := range decoders() {
		corr, err := dec.Decode(sc, NewSyndrome(sc.NumAncillaQubits()))
		require.NoError(t, err, dec.Name())
		assert.Empty(t, corr, dec.Name())
	}
}

func TestDecodeSingleErrors(t *testing.T) {
	for _, d := range []int{3, 5} {
		sc, err := NewSurfaceCode(d)
		require.NoError(t, err)
		for _, dec := range decoders() {
			for _, pt := range []PauliType{PauliX, PauliZ} {
				for q := 0; q < sc.NumDataQubits(); q++ {
					name := fmt.Sprintf("%s d=%d %s q=%d", dec.Name(), d, pt, q)

					errs := []PauliError{{Type: pt, Qubit: q}}
					syn, err := sc.SyndromeFromErrors(errs)
					require.NoError(t, err, name)

					corr, err := dec.Decode(sc, syn)
					require.NoError(t, err, name)

					// Коррекция снимает синдром
					assert.True(t, residualSyndrome(t, sc, errs, corr).IsEmpty(), name)
					// и короче логического оператора
					assert.Less(t, len(corr), d, name)
				}
			}
		}
	}
}

func TestDecodeYError(t *testing.T) {
	sc, err := NewSurfaceCode(3)
	require.NoError(t, err)
	for _, dec := range decoders() {
		errs := []PauliError{{Type: PauliY, Qubit: 4}}
		syn, err := sc.SyndromeFromErrors(errs)
		require.NoError(t, err)

		corr, err := dec.Decode(sc, syn)
		require.NoError(t, err, dec.Name())
		assert.True(t, residualSyndrome(t, sc, errs, corr).IsEmpty(), dec.Name())
	}
}

func TestDecodeAdjacentPair(t *testing.T) {
	sc, err := NewSurfaceCode(5)
	require.NoError(t, err)
	for _, dec := range decoders() {
		// Цепочка из двух соседних X-ошибок в одном ряду
		errs := []PauliError{
			{Type: PauliX, Qubit: 6},
			{Type: PauliX, Qubit: 7},
		}
		syn, err := sc.SyndromeFromErrors(errs)
		require.NoError(t, err)

		corr, err := dec.Decode(sc, syn)
		require.NoError(t, err, dec.Name())
		assert.True(t, residualSyndrome(t, sc, errs, corr).IsEmpty(), dec.Name())
	}
}

func TestDecodeRandomSparseErrors(t *testing.T) {
	sc, err := NewSurfaceCode(5)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(17))

	for _, dec := range decoders() {
		for trial := 0; trial < 100; trial++ {
			// До двух независимых ошибок: в пределах половины расстояния
			// коррекция обязана снимать синдром
			var errs []PauliError
			used := map[int]bool{}
			for len(errs) < 2 {
				q := rng.Intn(sc.NumDataQubits())
				if used[q] {
					continue
				}
				used[q] = true
				pt := []PauliType{PauliX, PauliY, PauliZ}[rng.Intn(3)]
				errs = append(errs, PauliError{Type: pt, Qubit: q})
			}

			syn, err := sc.SyndromeFromErrors(errs)
			require.NoError(t, err)
			corr, err := dec.Decode(sc, syn)
			require.NoError(t, err, "%s trial %d", dec.Name(), trial)
			assert.True(t, residualSyndrome(t, sc, errs, corr).IsEmpty(), "%s trial %d: errs=%v corr=%v", dec.Name(), trial, errs, corr)
		}
	}
}

func TestDecodeDeterministic(t *testing.T) {
	sc, err := NewSurfaceCode(5)
	require.NoError(t, err)
	errs := []PauliError{
		{Type: PauliX, Qubit: 3},
		{Type: PauliZ, Qubit: 12},
		{Type: PauliX, Qubit: 20},
	}
	syn, err := sc.SyndromeFromErrors(errs)
	require.NoError(t, err)

	for _, dec := range decoders() {
		first, err := dec.Decode(sc, syn)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := dec.Decode(sc, syn)
			require.NoError(t, err)
			assert.Equal(t, first, again, dec.Name())
		}
	}
}

func TestDecodeRejectsMismatchedSyndrome(t *testing.T) {
	sc, err := NewSurfaceCode(3)
	require.NoError(t, err)
	bad := NewSyndrome(3)
	require.NoError(t, bad.Trigger(0))
	for _, dec := range decoders() {
		_, err := dec.Decode(sc, bad)
		assert.ErrorIs(t, err, ErrInvalidStabilizer, dec.Name())
	}
}

func TestDecoderAccessors(t *testing.T) {
	for _, dec := range decoders() {
		assert.NotEmpty(t, dec.Name())
		assert.NotEmpty(t, dec.Description())
	}
}

func TestSyndromeTriggerParity(t *testing.T) {
	syn := NewSyndrome(4)
	require.NoError(t, syn.Trigger(2))
	assert.True(t, syn.IsTriggered(2))
	require.NoError(t, syn.Trigger(2))
	assert.False(t, syn.IsTriggered(2))
	assert.True(t, syn.IsEmpty())
	assert.ErrorIs(t, syn.Trigger(4), ErrInvalidStabilizer)
}
