package quantum

import (
	"fmt"
	"math"
)

// BellState возвращает состояние (|00⟩ + |11⟩)/√2.
func BellState() *Statevector {
	s, _ := NewStatevector(2)
	h := complex(1/math.Sqrt2, 0)
	s.amps[0] = h
	s.amps[3] = h
	return s
}

// GHZState возвращает состояние (|0...0⟩ + |1...1⟩)/√2 на numQubits кубитах.
func GHZState(numQubits int) (*Statevector, error) {
	if numQubits < 2 {
		return nil, fmt.Errorf("%w: GHZ требует минимум 2 кубита, получено %d", ErrInvalidQubitCount, numQubits)
	}
	s, err := NewStatevector(numQubits)
	if err != nil {
		return nil, err
	}
	h := complex(1/math.Sqrt2, 0)
	s.amps[0] = h
	s.amps[len(s.amps)-1] = h
	return s, nil
}

// WState возвращает W-состояние: равную суперпозицию всех базисных
// состояний с одной единицей.
func WState(numQubits int) (*Statevector, error) {
	if numQubits < 2 {
		return nil, fmt.Errorf("%w: W-состояние требует минимум 2 кубита, получено %d", ErrInvalidQubitCount, numQubits)
	}
	s, err := NewStatevector(numQubits)
	if err != nil {
		return nil, err
	}
	s.amps[0] = 0
	amp := complex(1/math.Sqrt(float64(numQubits)), 0)
	for q := 0; q < numQubits; q++ {
		s.amps[1<<q] = amp
	}
	return s, nil
}
