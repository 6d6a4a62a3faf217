// Package quantum реализует плотный statevector-бэкенд: вектор из 2^n
// комплексных амплитуд, вентильные ядра на битовой арифметике индексов и
// проективное измерение по правилу Борна.
//
// Соглашение о порядке битов: кубит 0 соответствует младшему биту индекса
// амплитуды. Состояние Белла имеет пики на индексах 0 и 3.
package quantum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
)

const (
	// MaxQubits ограничивает размер плотного состояния.
	// 30 кубитов = 2^30 амплитуд = 16 ГиБ, дальше плотная симуляция не имеет смысла.
	MaxQubits = 30

	// Epsilon — допуск числовых проверок (нормировка, эрмитовость).
	Epsilon = 1e-9
)

var (
	// ErrQubitOutOfRange ошибка, возникающая при использовании кубита вне состояния
	ErrQubitOutOfRange = errors.New("индекс кубита выходит за пределы состояния")

	// ErrInvalidQubitCount ошибка, возникающая при недопустимом количестве кубитов
	ErrInvalidQubitCount = errors.New("недопустимое количество кубитов")

	// ErrDimensionMismatch ошибка, возникающая при несовпадении размерностей
	ErrDimensionMismatch = errors.New("размерности не совпадают")

	// ErrNotNormalized ошибка, возникающая когда норма состояния ушла за допуск
	ErrNotNormalized = errors.New("состояние не нормировано")

	// ErrUnsupportedObservable ошибка, возникающая при неизвестной наблюдаемой
	ErrUnsupportedObservable = errors.New("неподдерживаемая наблюдаемая")

	// ErrEmptyCircuit ошибка, возникающая при выполнении схемы без вентилей
	ErrEmptyCircuit = errors.New("схема не содержит вентилей")

	// ErrUnsupportedGate ошибка, возникающая при вентиле без ядра на этом бэкенде
	ErrUnsupportedGate = errors.New("вентиль не поддерживается бэкендом")
)

// Statevector хранит чистое квантовое состояние n кубитов как плотный
// массив из 2^n амплитуд.
type Statevector struct {
	numQubits int
	amps      []complex128
}

// NewStatevector создает состояние |0...0⟩ на numQubits кубитах.
func NewStatevector(numQubits int) (*Statevector, error) {
	if numQubits <= 0 {
		return nil, fmt.Errorf("%w: количество кубитов должно быть положительным, получено %d", ErrInvalidQubitCount, numQubits)
	}
	if numQubits > MaxQubits {
		return nil, fmt.Errorf("%w: %d превышает максимум %d", ErrInvalidQubitCount, numQubits, MaxQubits)
	}
	amps := make([]complex128, 1<<numQubits)
	amps[0] = complex(1, 0)
	return &Statevector{numQubits: numQubits, amps: amps}, nil
}

// FromAmplitudes создает состояние из готового массива амплитуд. Длина
// должна быть степенью двойки, вектор нормируется.
func FromAmplitudes(amps []complex128) (*Statevector, error) {
	n := len(amps)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: длина %d не является степенью двойки", ErrDimensionMismatch, n)
	}
	numQubits := 0
	for 1<<numQubits < n {
		numQubits++
	}
	s := &Statevector{numQubits: numQubits, amps: make([]complex128, n)}
	copy(s.amps, amps)
	if err := s.Normalize(); err != nil {
		return nil, err
	}
	return s, nil
}

// NumQubits возвращает количество кубитов состояния.
func (s *Statevector) NumQubits() int {
	return s.numQubits
}

// Dim возвращает размерность гильбертова пространства (2^n).
func (s *Statevector) Dim() int {
	return len(s.amps)
}

// Clone возвращает глубокую копию состояния.
func (s *Statevector) Clone() *Statevector {
	amps := make([]complex128, len(s.amps))
	copy(amps, s.amps)
	return &Statevector{numQubits: s.numQubits, amps: amps}
}

// Amplitudes возвращает копию массива амплитуд.
func (s *Statevector) Amplitudes() []complex128 {
	out := make([]complex128, len(s.amps))
	copy(out, s.amps)
	return out
}

// Amplitude возвращает амплитуду базисного состояния.
func (s *Statevector) Amplitude(basisState int) (complex128, error) {
	if basisState < 0 || basisState >= len(s.amps) {
		return 0, fmt.Errorf("%w: базисное состояние %d при размерности %d", ErrQubitOutOfRange, basisState, len(s.amps))
	}
	return s.amps[basisState], nil
}

// checkQubit проверяет, что индекс кубита допустим.
func (s *Statevector) checkQubit(qubit int) error {
	if qubit < 0 || qubit >= s.numQubits {
		return fmt.Errorf("%w: кубит %d при %d кубитах", ErrQubitOutOfRange, qubit, s.numQubits)
	}
	return nil
}

// Norm возвращает евклидову норму вектора амплитуд.
func (s *Statevector) Norm() float64 {
	sum := 0.0
	for _, a := range s.amps {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}

// Normalize приводит норму вектора к единице. Нулевой вектор нормировать
// нельзя.
func (s *Statevector) Normalize() error {
	norm := s.Norm()
	if norm < Epsilon {
		return fmt.Errorf("%w: норма %g слишком мала", ErrNotNormalized, norm)
	}
	inv := complex(1/norm, 0)
	for i := range s.amps {
		s.amps[i] *= inv
	}
	return nil
}

// CheckNormalized возвращает ErrNotNormalized, если норма ушла от единицы
// дальше допуска.
func (s *Statevector) CheckNormalized() error {
	if math.Abs(s.Norm()-1) > Epsilon {
		return fmt.Errorf("%w: норма %.12f", ErrNotNormalized, s.Norm())
	}
	return nil
}

// Probability возвращает вероятность получить 1 при измерении кубита.
func (s *Statevector) Probability(qubit int) (float64, error) {
	if err := s.checkQubit(qubit); err != nil {
		return 0, err
	}
	mask := 1 << qubit
	prob1 := 0.0
	for i, a := range s.amps {
		if i&mask != 0 {
			prob1 += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	return prob1, nil
}

// Measure измеряет кубит по правилу Борна, коллапсирует состояние и
// перенормирует его. Возвращает результат 0 или 1.
func (s *Statevector) Measure(qubit int, rng *rand.Rand) (int, error) {
	prob1, err := s.Probability(qubit)
	if err != nil {
		return -1, err
	}

	result := 0
	if rng.Float64() < prob1 {
		result = 1
	}

	mask := 1 << qubit
	norm := 0.0
	for i, a := range s.amps {
		bit := 0
		if i&mask != 0 {
			bit = 1
		}
		if bit != result {
			s.amps[i] = 0
		} else {
			norm += real(a)*real(a) + imag(a)*imag(a)
		}
	}

	norm = math.Sqrt(norm)
	if norm < Epsilon {
		return -1, fmt.Errorf("%w: вероятность исхода %d обратилась в ноль", ErrNotNormalized, result)
	}
	inv := complex(1/norm, 0)
	for i := range s.amps {
		s.amps[i] *= inv
	}
	return result, nil
}

// MeasureAll измеряет все кубиты разом и коллапсирует состояние в выбранный
// базисный вектор. Возвращает индекс базисного состояния.
func (s *Statevector) MeasureAll(rng *rand.Rand) (uint64, error) {
	r := rng.Float64()
	cumulative := 0.0
	result := uint64(len(s.amps) - 1)
	for i, a := range s.amps {
		cumulative += real(a)*real(a) + imag(a)*imag(a)
		if r < cumulative {
			result = uint64(i)
			break
		}
	}

	for i := range s.amps {
		s.amps[i] = 0
	}
	s.amps[result] = complex(1, 0)
	return result, nil
}

// ExpectationZ возвращает ожидание наблюдаемой Z на кубите:
// P(0) - P(1).
func (s *Statevector) ExpectationZ(qubit int) (float64, error) {
	prob1, err := s.Probability(qubit)
	if err != nil {
		return 0, err
	}
	return 1 - 2*prob1, nil
}

// ExpectationX возвращает ожидание наблюдаемой X на кубите.
func (s *Statevector) ExpectationX(qubit int) (float64, error) {
	re, _, err := s.offDiagonal(qubit)
	return 2 * re, err
}

// ExpectationY возвращает ожидание наблюдаемой Y на кубите.
func (s *Statevector) ExpectationY(qubit int) (float64, error) {
	_, im, err := s.offDiagonal(qubit)
	return 2 * im, err
}

// offDiagonal возвращает Σ conj(a₀)·a₁ по парам амплитуд, различающимся
// битом кубита: вещественная часть дает ⟨X⟩/2, мнимая ⟨Y⟩/2.
func (s *Statevector) offDiagonal(qubit int) (re, im float64, err error) {
	if err := s.checkQubit(qubit); err != nil {
		return 0, 0, err
	}
	bit := 1 << qubit
	var sum complex128
	for i0 := range s.amps {
		if i0&bit != 0 {
			continue
		}
		sum += cmplx.Conj(s.amps[i0]) * s.amps[i0|bit]
	}
	return real(sum), imag(sum), nil
}

// Expectation возвращает ожидание одно-кубитной наблюдаемой Паули по имени.
func (s *Statevector) Expectation(qubit int, observable string) (float64, error) {
	switch observable {
	case "X", "x":
		return s.ExpectationX(qubit)
	case "Y", "y":
		return s.ExpectationY(qubit)
	case "Z", "z":
		return s.ExpectationZ(qubit)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedObservable, observable)
}

// TensorProduct возвращает тензорное произведение s ⊗ other. Кубиты other
// занимают старшие позиции результата.
func (s *Statevector) TensorProduct(other *Statevector) (*Statevector, error) {
	total := s.numQubits + other.numQubits
	if total > MaxQubits {
		return nil, fmt.Errorf("%w: %d кубитов превышает максимум %d", ErrInvalidQubitCount, total, MaxQubits)
	}
	amps := make([]complex128, 1<<total)
	for j, b := range other.amps {
		if b == 0 {
			continue
		}
		base := j << s.numQubits
		for i, a := range s.amps {
			amps[base|i] = b * a
		}
	}
	return &Statevector{numQubits: total, amps: amps}, nil
}

// InnerProduct возвращает скалярное произведение ⟨s|other⟩.
func (s *Statevector) InnerProduct(other *Statevector) (complex128, error) {
	if s.numQubits != other.numQubits {
		return 0, fmt.Errorf("%w: %d кубитов против %d", ErrDimensionMismatch, s.numQubits, other.numQubits)
	}
	var sum complex128
	for i, a := range s.amps {
		sum += cmplx.Conj(a) * other.amps[i]
	}
	return sum, nil
}

// Fidelity возвращает |⟨s|other⟩|² для двух чистых состояний.
func (s *Statevector) Fidelity(other *Statevector) (float64, error) {
	ip, err := s.InnerProduct(other)
	if err != nil {
		return 0, err
	}
	abs := cmplx.Abs(ip)
	return abs * abs, nil
}

// String возвращает текстовое описание состояния с ненулевыми амплитудами.
func (s *Statevector) String() string {
	out := fmt.Sprintf("Statevector(%d qubits)", s.numQubits)
	for i, a := range s.amps {
		if cmplx.Abs(a) < Epsilon {
			continue
		}
		out += fmt.Sprintf("\n  |%0*b⟩: %.6f%+.6fi", s.numQubits, i, real(a), imag(a))
	}
	return out
}
