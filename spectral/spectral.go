// Package spectral реализует спектральный анализ квантовых состояний:
// эрмитову спектральную декомпозицию, энтропию фон Неймана и меры
// запутанности (конкуренс, негативность).
//
// Эрмитова матрица A = X + iY диагонализуется через вещественное
// симметричное вложение M = [[X, -Y], [Y, X]] размера 2n: собственные
// значения M дублируют спектр A, собственный вектор (u; v) отвечает
// комплексному вектору u + iv.
package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/omniq-dev/omniq/quantum"
)

// Epsilon — допуск проверок эрмитовости и нормировки спектра.
const Epsilon = 1e-9

var (
	// ErrNotSquare ошибка, возникающая при неквадратной матрице
	ErrNotSquare = errors.New("матрица должна быть квадратной")

	// ErrNotHermitian ошибка, возникающая при нарушении эрмитовости
	ErrNotHermitian = errors.New("матрица не эрмитова")

	// ErrEigenFailed ошибка, возникающая при сбое разложения
	ErrEigenFailed = errors.New("спектральное разложение не сошлось")

	// ErrDimensionMismatch ошибка, возникающая при несогласованных размерностях подсистем
	ErrDimensionMismatch = errors.New("размерности подсистем не согласованы")

	// ErrInvalidState ошибка, возникающая при состоянии неподходящего размера
	ErrInvalidState = errors.New("состояние неподходящего размера")
)

// Decomposition — спектральное разложение эрмитовой матрицы: собственные
// значения по убыванию и отвечающие им собственные векторы.
type Decomposition struct {
	Eigenvalues  []float64
	Eigenvectors [][]complex128
}

// checkHermitian проверяет квадратность и эрмитовость матрицы.
func checkHermitian(m [][]complex128) error {
	n := len(m)
	if n == 0 {
		return fmt.Errorf("%w: пустая матрица", ErrNotSquare)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: строка %d длины %d при %d строках", ErrNotSquare, i, len(row), n)
		}
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if cmplx.Abs(m[i][j]-cmplx.Conj(m[j][i])) > Epsilon {
				return fmt.Errorf("%w: элементы (%d,%d) и (%d,%d)", ErrNotHermitian, i, j, j, i)
			}
		}
	}
	return nil
}

// hermitianEigen возвращает спектр и собственные векторы эрмитовой матрицы
// по убыванию собственных значений, без постобработки.
func hermitianEigen(m [][]complex128) (*Decomposition, error) {
	if err := checkHermitian(m); err != nil {
		return nil, err
	}
	n := len(m)

	// Вещественное симметричное вложение 2n x 2n
	embed := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := real(m[i][j])
			y := imag(m[i][j])
			embed.SetSym(i, j, x)
			embed.SetSym(n+i, n+j, x)
			// Зеркальная запись согласована: Y антисимметрична, поэтому
			// M[n+j][i] = Y[j][i] = -Y[i][j]
			embed.SetSym(i, n+j, -y)
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(embed, true) {
		return nil, ErrEigenFailed
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Спектр вложения дублирован: каждая пара отвечает одному собственному
	// значению A. Значения отсортированы по возрастанию, берем каждую
	// вторую позицию с конца для порядка по убыванию.
	dec := &Decomposition{
		Eigenvalues:  make([]float64, 0, n),
		Eigenvectors: make([][]complex128, 0, n),
	}
	for k := 2*n - 1; k >= 0; k -= 2 {
		vec := make([]complex128, n)
		norm := 0.0
		for i := 0; i < n; i++ {
			vec[i] = complex(vecs.At(i, k), vecs.At(n+i, k))
			norm += real(vec[i])*real(vec[i]) + imag(vec[i])*imag(vec[i])
		}
		norm = math.Sqrt(norm)
		if norm > Epsilon {
			inv := complex(1/norm, 0)
			for i := range vec {
				vec[i] *= inv
			}
		}
		dec.Eigenvalues = append(dec.Eigenvalues, vals[k])
		dec.Eigenvectors = append(dec.Eigenvectors, vec)
	}
	return dec, nil
}

// ComputeEigendecomposition возвращает спектральное разложение матрицы
// плотности: собственные значения по убыванию, обрезанные в [0, 1] и
// перенормированные, если численный дрейф увел их сумму от единицы.
func ComputeEigendecomposition(m [][]complex128) (*Decomposition, error) {
	dec, err := hermitianEigen(m)
	if err != nil {
		return nil, err
	}

	sum := 0.0
	for i, v := range dec.Eigenvalues {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		dec.Eigenvalues[i] = v
		sum += v
	}
	if math.Abs(sum-1) > Epsilon && sum > Epsilon {
		for i := range dec.Eigenvalues {
			dec.Eigenvalues[i] /= sum
		}
	}
	return dec, nil
}

// VonNeumannEntropy возвращает энтропию S(ρ) = -Σ λ·log2(λ) в битах.
func VonNeumannEntropy(m [][]complex128) (float64, error) {
	dec, err := ComputeEigendecomposition(m)
	if err != nil {
		return 0, err
	}
	entropy := 0.0
	for _, v := range dec.Eigenvalues {
		if v > 1e-12 {
			entropy -= v * math.Log2(v)
		}
	}
	return entropy, nil
}

// Concurrence возвращает конкуренс чистого двухкубитного состояния:
// C = |⟨ψ|σy⊗σy|ψ*⟩| = 2·|a01·a10 - a00·a11|. Ноль для сепарабельных
// состояний, единица для состояний Белла.
func Concurrence(s *quantum.Statevector) (float64, error) {
	if s.NumQubits() != 2 {
		return 0, fmt.Errorf("%w: конкуренс определен для 2 кубитов, передано %d", ErrInvalidState, s.NumQubits())
	}
	a := s.Amplitudes()
	return 2 * cmplx.Abs(a[1]*a[2]-a[0]*a[3]), nil
}

// PartialTranspose возвращает частичное транспонирование по второй
// подсистеме: ρ^Tb[(i1,j2),(j1,i2)] = ρ[(i1,i2),(j1,j2)] при разбиении
// индексов на блоки dimA x dimB.
func PartialTranspose(m [][]complex128, dimA, dimB int) ([][]complex128, error) {
	if err := checkHermitian(m); err != nil {
		return nil, err
	}
	if dimA <= 0 || dimB <= 0 || dimA*dimB != len(m) {
		return nil, fmt.Errorf("%w: %d x %d против матрицы %d", ErrDimensionMismatch, dimA, dimB, len(m))
	}
	n := dimA * dimB
	out := make([][]complex128, n)
	for i := range out {
		out[i] = make([]complex128, n)
	}
	for i1 := 0; i1 < dimA; i1++ {
		for i2 := 0; i2 < dimB; i2++ {
			for j1 := 0; j1 < dimA; j1++ {
				for j2 := 0; j2 < dimB; j2++ {
					out[i1*dimB+j2][j1*dimB+i2] = m[i1*dimB+i2][j1*dimB+j2]
				}
			}
		}
	}
	return out, nil
}

// Negativity возвращает негативность N(ρ) = Σ |λ⁻| по отрицательным
// собственным значениям частичного транспонирования. Положительная
// негативность доказывает запутанность; нулевая гарантирует сепарабельность
// только для систем 2x2 и 2x3 (критерий Переса-Городецких).
func Negativity(m [][]complex128, dimA, dimB int) (float64, error) {
	pt, err := PartialTranspose(m, dimA, dimB)
	if err != nil {
		return 0, err
	}
	dec, err := hermitianEigen(pt)
	if err != nil {
		return 0, err
	}
	neg := 0.0
	for _, v := range dec.Eigenvalues {
		if v < 0 {
			neg -= v
		}
	}
	return neg, nil
}

// SortedEigenvalues возвращает собственные значения эрмитовой матрицы по
// убыванию без обрезания: вспомогательная свертка для произвольных
// наблюдаемых.
func SortedEigenvalues(m [][]complex128) ([]float64, error) {
	dec, err := hermitianEigen(m)
	if err != nil {
		return nil, err
	}
	vals := append([]float64{}, dec.Eigenvalues...)
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	return vals, nil
}
