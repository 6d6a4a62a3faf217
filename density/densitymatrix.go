// Package density реализует симуляцию смешанных состояний через матрицу
// плотности: ядра сопряжения U·ρ·U†, применение каналов Крауса и свертки
// (след, чистота, частичный след).
//
// Порядок битов совпадает со statevector-бэкендом: кубит 0 — младший бит
// индекса строки и столбца.
package density

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/omniq-dev/omniq/quantum"
)

// Epsilon — допуск числовых проверок (след, эрмитовость).
const Epsilon = 1e-9

// MaxQubits ограничивает размер матрицы плотности: 4^n элементов растут
// вдвое быстрее statevector-а.
const MaxQubits = 13

var (
	// ErrQubitOutOfRange ошибка, возникающая при использовании кубита вне состояния
	ErrQubitOutOfRange = errors.New("индекс кубита выходит за пределы состояния")

	// ErrInvalidQubitCount ошибка, возникающая при недопустимом количестве кубитов
	ErrInvalidQubitCount = errors.New("недопустимое количество кубитов")

	// ErrDimensionMismatch ошибка, возникающая при несовпадении размерностей
	ErrDimensionMismatch = errors.New("размерности не совпадают")

	// ErrInvalidTrace ошибка, возникающая когда след матрицы ушел от единицы
	ErrInvalidTrace = errors.New("след матрицы плотности не равен единице")

	// ErrNotImplemented ошибка, возвращаемая для операций без ядра на этом бэкенде
	ErrNotImplemented = errors.New("операция не реализована для матрицы плотности")
)

// DensityMatrix хранит смешанное состояние n кубитов как плотную матрицу
// 2^n x 2^n в одном массиве (строка за строкой).
type DensityMatrix struct {
	numQubits int
	dim       int
	m         []complex128
}

// New создает матрицу плотности чистого состояния |0...0⟩.
func New(numQubits int) (*DensityMatrix, error) {
	if numQubits <= 0 {
		return nil, fmt.Errorf("%w: количество кубитов должно быть положительным, получено %d", ErrInvalidQubitCount, numQubits)
	}
	if numQubits > MaxQubits {
		return nil, fmt.Errorf("%w: %d превышает максимум %d", ErrInvalidQubitCount, numQubits, MaxQubits)
	}
	dim := 1 << numQubits
	d := &DensityMatrix{numQubits: numQubits, dim: dim, m: make([]complex128, dim*dim)}
	d.m[0] = complex(1, 0)
	return d, nil
}

// FromStatevector строит ρ = |ψ⟩⟨ψ| из чистого состояния.
func FromStatevector(s *quantum.Statevector) (*DensityMatrix, error) {
	n := s.NumQubits()
	if n > MaxQubits {
		return nil, fmt.Errorf("%w: %d превышает максимум %d", ErrInvalidQubitCount, n, MaxQubits)
	}
	amps := s.Amplitudes()
	dim := len(amps)
	d := &DensityMatrix{numQubits: n, dim: dim, m: make([]complex128, dim*dim)}
	for i, a := range amps {
		if a == 0 {
			continue
		}
		for j, b := range amps {
			d.m[i*dim+j] = a * cmplx.Conj(b)
		}
	}
	return d, nil
}

// NumQubits возвращает количество кубитов состояния.
func (d *DensityMatrix) NumQubits() int { return d.numQubits }

// Dim возвращает размерность матрицы (2^n).
func (d *DensityMatrix) Dim() int { return d.dim }

// Clone возвращает глубокую копию состояния.
func (d *DensityMatrix) Clone() *DensityMatrix {
	m := make([]complex128, len(d.m))
	copy(m, d.m)
	return &DensityMatrix{numQubits: d.numQubits, dim: d.dim, m: m}
}

// At возвращает элемент ρ[i][j].
func (d *DensityMatrix) At(i, j int) (complex128, error) {
	if i < 0 || i >= d.dim || j < 0 || j >= d.dim {
		return 0, fmt.Errorf("%w: элемент (%d, %d) при размерности %d", ErrQubitOutOfRange, i, j, d.dim)
	}
	return d.m[i*d.dim+j], nil
}

// Matrix возвращает копию матрицы в виде вложенных срезов.
func (d *DensityMatrix) Matrix() [][]complex128 {
	out := make([][]complex128, d.dim)
	for i := range out {
		out[i] = make([]complex128, d.dim)
		copy(out[i], d.m[i*d.dim:(i+1)*d.dim])
	}
	return out
}

// checkQubit проверяет, что индекс кубита допустим.
func (d *DensityMatrix) checkQubit(qubit int) error {
	if qubit < 0 || qubit >= d.numQubits {
		return fmt.Errorf("%w: кубит %d при %d кубитах", ErrQubitOutOfRange, qubit, d.numQubits)
	}
	return nil
}

// Trace возвращает след матрицы.
func (d *DensityMatrix) Trace() complex128 {
	var tr complex128
	for i := 0; i < d.dim; i++ {
		tr += d.m[i*d.dim+i]
	}
	return tr
}

// CheckTrace возвращает ErrInvalidTrace, если след ушел от единицы дальше
// допуска.
func (d *DensityMatrix) CheckTrace() error {
	tr := d.Trace()
	if cmplx.Abs(tr-1) > Epsilon {
		return fmt.Errorf("%w: след %v", ErrInvalidTrace, tr)
	}
	return nil
}

// Normalize делит матрицу на ее след.
func (d *DensityMatrix) Normalize() error {
	tr := d.Trace()
	if cmplx.Abs(tr) < Epsilon {
		return fmt.Errorf("%w: след %v слишком мал", ErrInvalidTrace, tr)
	}
	inv := 1 / tr
	for i := range d.m {
		d.m[i] *= inv
	}
	return nil
}

// Purity возвращает Tr(ρ²): 1 для чистого состояния, 1/2^n для максимально
// смешанного.
func (d *DensityMatrix) Purity() float64 {
	// Tr(ρ²) = Σ |ρ[i][j]|² для эрмитовой ρ
	sum := 0.0
	for _, v := range d.m {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return sum
}

// IsHermitian проверяет эрмитовость матрицы в пределах допуска.
func (d *DensityMatrix) IsHermitian() bool {
	for i := 0; i < d.dim; i++ {
		for j := i; j < d.dim; j++ {
			if cmplx.Abs(d.m[i*d.dim+j]-cmplx.Conj(d.m[j*d.dim+i])) > Epsilon {
				return false
			}
		}
	}
	return true
}

// Probability возвращает вероятность получить 1 при измерении кубита:
// сумму диагональных элементов с установленным битом.
func (d *DensityMatrix) Probability(qubit int) (float64, error) {
	if err := d.checkQubit(qubit); err != nil {
		return 0, err
	}
	mask := 1 << qubit
	p := 0.0
	for i := 0; i < d.dim; i++ {
		if i&mask != 0 {
			p += real(d.m[i*d.dim+i])
		}
	}
	return p, nil
}

// ExpectationZ возвращает ожидание наблюдаемой Z на кубите.
func (d *DensityMatrix) ExpectationZ(qubit int) (float64, error) {
	p1, err := d.Probability(qubit)
	if err != nil {
		return 0, err
	}
	return 1 - 2*p1, nil
}

// PartialTrace выполняет частичный след по перечисленным кубитам и
// возвращает матрицу плотности оставшейся подсистемы. Оставшиеся кубиты
// перенумеровываются с сохранением порядка.
func (d *DensityMatrix) PartialTrace(traceOut []int) (*DensityMatrix, error) {
	traced := 0
	for _, q := range traceOut {
		if err := d.checkQubit(q); err != nil {
			return nil, err
		}
		bit := 1 << q
		if traced&bit != 0 {
			return nil, fmt.Errorf("%w: кубит %d указан дважды", ErrQubitOutOfRange, q)
		}
		traced |= bit
	}

	keep := make([]int, 0, d.numQubits-len(traceOut))
	for q := 0; q < d.numQubits; q++ {
		if traced&(1<<q) == 0 {
			keep = append(keep, q)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("%w: нельзя отследить все кубиты", ErrInvalidQubitCount)
	}

	outDim := 1 << len(keep)
	out := &DensityMatrix{numQubits: len(keep), dim: outDim, m: make([]complex128, outDim*outDim)}

	// expand переводит индекс подсистемы в полный индекс по битам keep
	expand := func(sub int) int {
		full := 0
		for pos, q := range keep {
			if sub&(1<<pos) != 0 {
				full |= 1 << q
			}
		}
		return full
	}

	tracedDim := 1 << len(traceOut)
	expandTraced := func(sub int) int {
		full := 0
		for pos, q := range traceOut {
			if sub&(1<<pos) != 0 {
				full |= 1 << q
			}
		}
		return full
	}

	for i := 0; i < outDim; i++ {
		fi := expand(i)
		for j := 0; j < outDim; j++ {
			fj := expand(j)
			var sum complex128
			for k := 0; k < tracedDim; k++ {
				fk := expandTraced(k)
				sum += d.m[(fi|fk)*d.dim+(fj|fk)]
			}
			out.m[i*outDim+j] = sum
		}
	}
	return out, nil
}

// Fidelity возвращает ⟨ψ|ρ|ψ⟩ — точность воспроизведения чистого состояния.
func (d *DensityMatrix) Fidelity(s *quantum.Statevector) (float64, error) {
	if s.NumQubits() != d.numQubits {
		return 0, fmt.Errorf("%w: %d кубитов против %d", ErrDimensionMismatch, s.NumQubits(), d.numQubits)
	}
	amps := s.Amplitudes()
	var sum complex128
	for i := 0; i < d.dim; i++ {
		if amps[i] == 0 {
			continue
		}
		var row complex128
		for j := 0; j < d.dim; j++ {
			row += d.m[i*d.dim+j] * amps[j]
		}
		sum += cmplx.Conj(amps[i]) * row
	}
	// ⟨ψ|ρ|ψ⟩ вещественно для эрмитовой ρ
	return math.Max(0, real(sum)), nil
}

// String возвращает текстовое описание состояния.
func (d *DensityMatrix) String() string {
	return fmt.Sprintf("DensityMatrix(%d qubits, trace=%.6f, purity=%.6f)", d.numQubits, real(d.Trace()), d.Purity())
}
