package quantum

import (
	"fmt"
	"math"
	"math/cmplx"
)

// ApplyH применяет вентиль Адамара к указанному кубиту.
func (s *Statevector) ApplyH(qubit int) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	h := complex(1/math.Sqrt2, 0)
	s.forEachPair(qubit, func(i0, i1 int) {
		a, b := s.amps[i0], s.amps[i1]
		s.amps[i0] = h * (a + b)
		s.amps[i1] = h * (a - b)
	})
	return nil
}

// ApplyX применяет вентиль Паули-X (NOT) к указанному кубиту.
func (s *Statevector) ApplyX(qubit int) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	s.forEachPair(qubit, func(i0, i1 int) {
		s.amps[i0], s.amps[i1] = s.amps[i1], s.amps[i0]
	})
	return nil
}

// ApplyY применяет вентиль Паули-Y к указанному кубиту.
func (s *Statevector) ApplyY(qubit int) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	s.forEachPair(qubit, func(i0, i1 int) {
		a, b := s.amps[i0], s.amps[i1]
		// |0⟩ -> i|1⟩, |1⟩ -> -i|0⟩
		s.amps[i0] = complex(imag(b), -real(b))
		s.amps[i1] = complex(-imag(a), real(a))
	})
	return nil
}

// ApplyZ применяет вентиль Паули-Z к указанному кубиту.
func (s *Statevector) ApplyZ(qubit int) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	mask := 1 << qubit
	s.forEachIndex(func(i int) {
		if i&mask != 0 {
			s.amps[i] = -s.amps[i]
		}
	})
	return nil
}

// ApplyS применяет фазовый вентиль S (фазовый сдвиг на π/2).
func (s *Statevector) ApplyS(qubit int) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	mask := 1 << qubit
	s.forEachIndex(func(i int) {
		if i&mask != 0 {
			a := s.amps[i]
			s.amps[i] = complex(-imag(a), real(a))
		}
	})
	return nil
}

// ApplyPhaseShift применяет фазовый сдвиг: |1⟩ -> e^(iθ)|1⟩.
func (s *Statevector) ApplyPhaseShift(qubit int, theta float64) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	phase := cmplx.Rect(1, theta)
	mask := 1 << qubit
	s.forEachIndex(func(i int) {
		if i&mask != 0 {
			s.amps[i] *= phase
		}
	})
	return nil
}

// ApplyRX применяет вращение вокруг оси X на угол theta.
func (s *Statevector) ApplyRX(qubit int, theta float64) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	cos := complex(math.Cos(theta/2), 0)
	isin := complex(0, -math.Sin(theta/2))
	s.forEachPair(qubit, func(i0, i1 int) {
		a, b := s.amps[i0], s.amps[i1]
		s.amps[i0] = cos*a + isin*b
		s.amps[i1] = isin*a + cos*b
	})
	return nil
}

// ApplyRY применяет вращение вокруг оси Y на угол theta.
func (s *Statevector) ApplyRY(qubit int, theta float64) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	cos := complex(math.Cos(theta/2), 0)
	sin := complex(math.Sin(theta/2), 0)
	s.forEachPair(qubit, func(i0, i1 int) {
		a, b := s.amps[i0], s.amps[i1]
		s.amps[i0] = cos*a - sin*b
		s.amps[i1] = sin*a + cos*b
	})
	return nil
}

// ApplyRZ применяет вращение вокруг оси Z на угол theta.
func (s *Statevector) ApplyRZ(qubit int, theta float64) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	phase0 := cmplx.Rect(1, -theta/2)
	phase1 := cmplx.Rect(1, theta/2)
	mask := 1 << qubit
	s.forEachIndex(func(i int) {
		if i&mask != 0 {
			s.amps[i] *= phase1
		} else {
			s.amps[i] *= phase0
		}
	})
	return nil
}

// ApplyCNOT применяет вентиль CNOT: целевой кубит инвертируется, когда
// управляющий в состоянии |1⟩.
func (s *Statevector) ApplyCNOT(control, target int) error {
	if err := s.checkQubit(control); err != nil {
		return err
	}
	if err := s.checkQubit(target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("%w: управляющий и целевой кубиты совпадают (%d)", ErrQubitOutOfRange, control)
	}
	cmask := 1 << control
	s.forEachPair(target, func(i0, i1 int) {
		// Пара различается только целевым битом, управляющий бит общий.
		if i0&cmask != 0 {
			s.amps[i0], s.amps[i1] = s.amps[i1], s.amps[i0]
		}
	})
	return nil
}

// ApplySwap меняет местами состояния двух кубитов.
func (s *Statevector) ApplySwap(qubit1, qubit2 int) error {
	if err := s.checkQubit(qubit1); err != nil {
		return err
	}
	if err := s.checkQubit(qubit2); err != nil {
		return err
	}
	if qubit1 == qubit2 {
		return fmt.Errorf("%w: кубиты SWAP совпадают (%d)", ErrQubitOutOfRange, qubit1)
	}
	m1 := 1 << qubit1
	m2 := 1 << qubit2
	s.forEachIndex(func(i int) {
		// Обменом занимается индекс с битами (1, 0), партнер пропускается.
		if i&m1 != 0 && i&m2 == 0 {
			j := i ^ m1 ^ m2
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	})
	return nil
}

// ApplyControlledPhase применяет управляемый фазовый сдвиг: амплитуды с
// обоими установленными битами умножаются на e^(iθ).
func (s *Statevector) ApplyControlledPhase(control, target int, theta float64) error {
	if err := s.checkQubit(control); err != nil {
		return err
	}
	if err := s.checkQubit(target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("%w: управляющий и целевой кубиты совпадают (%d)", ErrQubitOutOfRange, control)
	}
	phase := cmplx.Rect(1, theta)
	both := (1 << control) | (1 << target)
	s.forEachIndex(func(i int) {
		if i&both == both {
			s.amps[i] *= phase
		}
	})
	return nil
}
