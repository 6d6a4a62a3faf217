package density

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/omniq-dev/omniq/noise"
)

// applySingle выполняет ρ -> U·ρ·U† для произвольной матрицы 2x2 над одним
// кубитом: сначала строки умножаются на U, затем столбцы на U†. Формула
// линейна по U и работает также для неунитарных операторов Крауса.
func (d *DensityMatrix) applySingle(u [2][2]complex128, qubit int) {
	mask := 1 << qubit

	// Строки: A = U·ρ
	for i0 := 0; i0 < d.dim; i0++ {
		if i0&mask != 0 {
			continue
		}
		i1 := i0 | mask
		for c := 0; c < d.dim; c++ {
			a, b := d.m[i0*d.dim+c], d.m[i1*d.dim+c]
			d.m[i0*d.dim+c] = u[0][0]*a + u[0][1]*b
			d.m[i1*d.dim+c] = u[1][0]*a + u[1][1]*b
		}
	}

	// Столбцы: ρ' = A·U†
	for r := 0; r < d.dim; r++ {
		row := r * d.dim
		for c0 := 0; c0 < d.dim; c0++ {
			if c0&mask != 0 {
				continue
			}
			c1 := c0 | mask
			a, b := d.m[row+c0], d.m[row+c1]
			d.m[row+c0] = a*cmplx.Conj(u[0][0]) + b*cmplx.Conj(u[0][1])
			d.m[row+c1] = a*cmplx.Conj(u[1][0]) + b*cmplx.Conj(u[1][1])
		}
	}
}

// ApplyH применяет вентиль Адамара к указанному кубиту.
func (d *DensityMatrix) ApplyH(qubit int) error {
	if err := d.checkQubit(qubit); err != nil {
		return err
	}
	h := complex(1/math.Sqrt2, 0)
	d.applySingle([2][2]complex128{{h, h}, {h, -h}}, qubit)
	return nil
}

// ApplyX применяет вентиль Паули-X к указанному кубиту.
func (d *DensityMatrix) ApplyX(qubit int) error {
	if err := d.checkQubit(qubit); err != nil {
		return err
	}
	d.applySingle([2][2]complex128{{0, 1}, {1, 0}}, qubit)
	return nil
}

// ApplyY применяет вентиль Паули-Y к указанному кубиту.
func (d *DensityMatrix) ApplyY(qubit int) error {
	if err := d.checkQubit(qubit); err != nil {
		return err
	}
	d.applySingle([2][2]complex128{{0, complex(0, -1)}, {complex(0, 1), 0}}, qubit)
	return nil
}

// ApplyZ применяет вентиль Паули-Z к указанному кубиту.
func (d *DensityMatrix) ApplyZ(qubit int) error {
	if err := d.checkQubit(qubit); err != nil {
		return err
	}
	d.applySingle([2][2]complex128{{1, 0}, {0, -1}}, qubit)
	return nil
}

// ApplyS применяет фазовый вентиль S.
func (d *DensityMatrix) ApplyS(qubit int) error {
	if err := d.checkQubit(qubit); err != nil {
		return err
	}
	d.applySingle([2][2]complex128{{1, 0}, {0, complex(0, 1)}}, qubit)
	return nil
}

// ApplyPhaseShift применяет фазовый сдвиг на угол theta.
func (d *DensityMatrix) ApplyPhaseShift(qubit int, theta float64) error {
	if err := d.checkQubit(qubit); err != nil {
		return err
	}
	d.applySingle([2][2]complex128{{1, 0}, {0, cmplx.Rect(1, theta)}}, qubit)
	return nil
}

// ApplyRX применяет вращение вокруг оси X на угол theta.
func (d *DensityMatrix) ApplyRX(qubit int, theta float64) error {
	if err := d.checkQubit(qubit); err != nil {
		return err
	}
	cos := complex(math.Cos(theta/2), 0)
	isin := complex(0, -math.Sin(theta/2))
	d.applySingle([2][2]complex128{{cos, isin}, {isin, cos}}, qubit)
	return nil
}

// ApplyRY применяет вращение вокруг оси Y на угол theta.
func (d *DensityMatrix) ApplyRY(qubit int, theta float64) error {
	if err := d.checkQubit(qubit); err != nil {
		return err
	}
	cos := complex(math.Cos(theta/2), 0)
	sin := complex(math.Sin(theta/2), 0)
	d.applySingle([2][2]complex128{{cos, -sin}, {sin, cos}}, qubit)
	return nil
}

// ApplyRZ применяет вращение вокруг оси Z на угол theta.
func (d *DensityMatrix) ApplyRZ(qubit int, theta float64) error {
	if err := d.checkQubit(qubit); err != nil {
		return err
	}
	d.applySingle([2][2]complex128{{cmplx.Rect(1, -theta/2), 0}, {0, cmplx.Rect(1, theta/2)}}, qubit)
	return nil
}

// applyPermutation выполняет ρ' = P·ρ·P для перестановки базисных состояний
// p (инволюция: p(p(i)) = i).
func (d *DensityMatrix) applyPermutation(p func(int) int) {
	out := make([]complex128, len(d.m))
	for i := 0; i < d.dim; i++ {
		pi := p(i)
		for j := 0; j < d.dim; j++ {
			out[i*d.dim+j] = d.m[pi*d.dim+p(j)]
		}
	}
	d.m = out
}

// ApplyCNOT применяет вентиль CNOT.
func (d *DensityMatrix) ApplyCNOT(control, target int) error {
	if err := d.checkQubit(control); err != nil {
		return err
	}
	if err := d.checkQubit(target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("%w: управляющий и целевой кубиты совпадают (%d)", ErrQubitOutOfRange, control)
	}
	cmask, tmask := 1<<control, 1<<target
	d.applyPermutation(func(i int) int {
		if i&cmask != 0 {
			return i ^ tmask
		}
		return i
	})
	return nil
}

// ApplySwap меняет местами состояния двух кубитов.
func (d *DensityMatrix) ApplySwap(qubit1, qubit2 int) error {
	if err := d.checkQubit(qubit1); err != nil {
		return err
	}
	if err := d.checkQubit(qubit2); err != nil {
		return err
	}
	if qubit1 == qubit2 {
		return fmt.Errorf("%w: кубиты SWAP совпадают (%d)", ErrQubitOutOfRange, qubit1)
	}
	m1, m2 := 1<<qubit1, 1<<qubit2
	d.applyPermutation(func(i int) int {
		b1, b2 := i&m1 != 0, i&m2 != 0
		if b1 != b2 {
			return i ^ m1 ^ m2
		}
		return i
	})
	return nil
}

// ApplyControlledPhase применяет управляемый фазовый сдвиг на угол theta.
func (d *DensityMatrix) ApplyControlledPhase(control, target int, theta float64) error {
	if err := d.checkQubit(control); err != nil {
		return err
	}
	if err := d.checkQubit(target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("%w: управляющий и целевой кубиты совпадают (%d)", ErrQubitOutOfRange, control)
	}
	phase := cmplx.Rect(1, theta)
	both := (1 << control) | (1 << target)
	// Диагональный унитар: ρ[i][j] *= u(i)·conj(u(j))
	for i := 0; i < d.dim; i++ {
		for j := 0; j < d.dim; j++ {
			iSet, jSet := i&both == both, j&both == both
			switch {
			case iSet && !jSet:
				d.m[i*d.dim+j] *= phase
			case !iSet && jSet:
				d.m[i*d.dim+j] *= cmplx.Conj(phase)
			}
		}
	}
	return nil
}

// ApplyChannel применяет одно-кубитный канал Крауса: ρ' = Σ K·ρ·K†.
func (d *DensityMatrix) ApplyChannel(ch noise.Channel, qubit int) error {
	if err := d.checkQubit(qubit); err != nil {
		return err
	}
	ops := ch.KrausOperators()
	if len(ops) == 0 {
		return noise.ErrEmptyChannel
	}

	acc := make([]complex128, len(d.m))
	saved := d.m
	for _, k := range ops {
		term := make([]complex128, len(saved))
		copy(term, saved)
		d.m = term
		d.applySingle([2][2]complex128(k), qubit)
		for i, v := range d.m {
			acc[i] += v
		}
	}
	d.m = acc
	return nil
}
