// Package clifford реализует табличный стабилизаторный симулятор
// (формализм Ааронсона-Готтсмана): состояние n кубитов хранится как 2n
// строк бинарной таблицы Паули плюс знаковые биты, вентили Клиффорда
// стоят O(n), измерение O(n²). Вектор из 2^n амплитуд никогда не
// материализуется.
package clifford

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

var (
	// ErrQubitOutOfRange ошибка, возникающая при использовании кубита вне таблицы
	ErrQubitOutOfRange = errors.New("индекс кубита выходит за пределы таблицы")

	// ErrInvalidQubitCount ошибка, возникающая при недопустимом количестве кубитов
	ErrInvalidQubitCount = errors.New("недопустимое количество кубитов")

	// ErrUnsupportedGate ошибка, возникающая при вентиле вне группы Клиффорда
	ErrUnsupportedGate = errors.New("вентиль не принадлежит группе Клиффорда")

	// ErrBrokenTableau ошибка, возникающая при нарушении инвариантов таблицы
	ErrBrokenTableau = errors.New("инварианты стабилизаторной таблицы нарушены")
)

// Tableau хранит стабилизаторное состояние: строки 0..n-1 — дестабилизаторы,
// строки n..2n-1 — стабилизаторы, строка 2n — рабочая для детерминированных
// измерений. Биты X и Z лежат в плоских массивах со страйдом n.
type Tableau struct {
	n int
	x []uint8 // (2n+1) x n
	z []uint8 // (2n+1) x n
	r []uint8 // 2n+1 знаковых битов
}

// NewTableau создает таблицу состояния |0...0⟩: дестабилизатор i равен X_i,
// стабилизатор i равен Z_i, все знаки положительные.
func NewTableau(n int) (*Tableau, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: количество кубитов должно быть положительным, получено %d", ErrInvalidQubitCount, n)
	}
	rows := 2*n + 1
	t := &Tableau{
		n: n,
		x: make([]uint8, rows*n),
		z: make([]uint8, rows*n),
		r: make([]uint8, rows),
	}
	for i := 0; i < n; i++ {
		t.x[i*n+i] = 1       // дестабилизатор X_i
		t.z[(n+i)*n+i] = 1   // стабилизатор Z_i
	}
	return t, nil
}

// NumQubits возвращает количество кубитов.
func (t *Tableau) NumQubits() int { return t.n }

// Clone возвращает глубокую копию таблицы.
func (t *Tableau) Clone() *Tableau {
	c := &Tableau{
		n: t.n,
		x: make([]uint8, len(t.x)),
		z: make([]uint8, len(t.z)),
		r: make([]uint8, len(t.r)),
	}
	copy(c.x, t.x)
	copy(c.z, t.z)
	copy(c.r, t.r)
	return c
}

func (t *Tableau) checkQubit(q int) error {
	if q < 0 || q >= t.n {
		return fmt.Errorf("%w: кубит %d при %d кубитах", ErrQubitOutOfRange, q, t.n)
	}
	return nil
}

// g возвращает показатель степени i при перемножении однокубитных Паули
// (x1,z1)·(x2,z2): значение из {-1, 0, 1}.
func g(x1, z1, x2, z2 uint8) int {
	switch {
	case x1 == 0 && z1 == 0:
		return 0
	case x1 == 1 && z1 == 1:
		return int(z2) - int(x2)
	case x1 == 1 && z1 == 0:
		return int(z2) * (2*int(x2) - 1)
	default: // x1 == 0, z1 == 1
		return int(x2) * (1 - 2*int(z2))
	}
}

// rowsum умножает строку h на строку i (строка h := строка i · строка h) с
// точным учетом знака произведения Паули.
func (t *Tableau) rowsum(h, i int) {
	sum := 2*int(t.r[h]) + 2*int(t.r[i])
	hb, ib := h*t.n, i*t.n
	for j := 0; j < t.n; j++ {
		sum += g(t.x[ib+j], t.z[ib+j], t.x[hb+j], t.z[hb+j])
		t.x[hb+j] ^= t.x[ib+j]
		t.z[hb+j] ^= t.z[ib+j]
	}
	// Произведение эрмитовых Паули эрмитово, sum mod 4 равен 0 или 2
	if ((sum%4)+4)%4 == 2 {
		t.r[h] = 1
	} else {
		t.r[h] = 0
	}
}

// H применяет вентиль Адамара: X <-> Z на кубите.
func (t *Tableau) H(q int) error {
	if err := t.checkQubit(q); err != nil {
		return err
	}
	for i := 0; i < 2*t.n; i++ {
		idx := i*t.n + q
		t.r[i] ^= t.x[idx] & t.z[idx]
		t.x[idx], t.z[idx] = t.z[idx], t.x[idx]
	}
	return nil
}

// S применяет фазовый вентиль: Z-бит поглощает X-бит.
func (t *Tableau) S(q int) error {
	if err := t.checkQubit(q); err != nil {
		return err
	}
	for i := 0; i < 2*t.n; i++ {
		idx := i*t.n + q
		t.r[i] ^= t.x[idx] & t.z[idx]
		t.z[idx] ^= t.x[idx]
	}
	return nil
}

// X применяет вентиль Паули-X: знак меняют строки с Z-битом на кубите.
func (t *Tableau) X(q int) error {
	if err := t.checkQubit(q); err != nil {
		return err
	}
	for i := 0; i < 2*t.n; i++ {
		t.r[i] ^= t.z[i*t.n+q]
	}
	return nil
}

// Y применяет вентиль Паули-Y.
func (t *Tableau) Y(q int) error {
	if err := t.checkQubit(q); err != nil {
		return err
	}
	for i := 0; i < 2*t.n; i++ {
		idx := i*t.n + q
		t.r[i] ^= t.x[idx] ^ t.z[idx]
	}
	return nil
}

// Z применяет вентиль Паули-Z: знак меняют строки с X-битом на кубите.
func (t *Tableau) Z(q int) error {
	if err := t.checkQubit(q); err != nil {
		return err
	}
	for i := 0; i < 2*t.n; i++ {
		t.r[i] ^= t.x[i*t.n+q]
	}
	return nil
}

// CNOT применяет управляемый NOT с управляющим и целевым кубитами.
func (t *Tableau) CNOT(control, target int) error {
	if err := t.checkQubit(control); err != nil {
		return err
	}
	if err := t.checkQubit(target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("%w: управляющий и целевой кубиты совпадают (%d)", ErrQubitOutOfRange, control)
	}
	for i := 0; i < 2*t.n; i++ {
		b := i * t.n
		xc, zc := t.x[b+control], t.z[b+control]
		xt, zt := t.x[b+target], t.z[b+target]
		t.r[i] ^= xc & zt & (xt ^ zc ^ 1)
		t.x[b+target] = xt ^ xc
		t.z[b+control] = zc ^ zt
	}
	return nil
}

// Swap меняет кубиты местами (три CNOT).
func (t *Tableau) Swap(q1, q2 int) error {
	if err := t.CNOT(q1, q2); err != nil {
		return err
	}
	if err := t.CNOT(q2, q1); err != nil {
		return err
	}
	return t.CNOT(q1, q2)
}

// Measure измеряет кубит в базисе Z. Если какой-то стабилизатор
// антикоммутирует с Z_q, исход случайный и состояние обновляется; иначе
// исход детерминирован и вычисляется суммированием строк в рабочей строке.
func (t *Tableau) Measure(q int, rng *rand.Rand) (int, error) {
	if err := t.checkQubit(q); err != nil {
		return -1, err
	}

	// Ищем стабилизатор с X-битом на измеряемом кубите
	p := -1
	for i := t.n; i < 2*t.n; i++ {
		if t.x[i*t.n+q] == 1 {
			p = i
			break
		}
	}

	if p >= 0 {
		// Случайный исход: все прочие строки с X-битом поглощают строку p
		for i := 0; i < 2*t.n; i++ {
			if i != p && t.x[i*t.n+q] == 1 {
				t.rowsum(i, p)
			}
		}
		// Дестабилизатор пары получает старый стабилизатор
		copy(t.x[(p-t.n)*t.n:(p-t.n+1)*t.n], t.x[p*t.n:(p+1)*t.n])
		copy(t.z[(p-t.n)*t.n:(p-t.n+1)*t.n], t.z[p*t.n:(p+1)*t.n])
		t.r[p-t.n] = t.r[p]

		// Новый стабилизатор — ±Z_q со случайным знаком
		for j := 0; j < t.n; j++ {
			t.x[p*t.n+j] = 0
			t.z[p*t.n+j] = 0
		}
		t.z[p*t.n+q] = 1
		outcome := 0
		if rng.Intn(2) == 1 {
			outcome = 1
		}
		t.r[p] = uint8(outcome)
		return outcome, nil
	}

	// Детерминированный исход: собираем произведение стабилизаторов,
	// отмеченных X-битами дестабилизаторов, в рабочей строке
	scratch := 2 * t.n
	base := scratch * t.n
	for j := 0; j < t.n; j++ {
		t.x[base+j] = 0
		t.z[base+j] = 0
	}
	t.r[scratch] = 0
	for i := 0; i < t.n; i++ {
		if t.x[i*t.n+q] == 1 {
			t.rowsum(scratch, i+t.n)
		}
	}
	return int(t.r[scratch]), nil
}

// CheckInvariants проверяет структуру таблицы: стабилизаторы попарно
// коммутируют, дестабилизатор i антикоммутирует ровно со стабилизатором i.
func (t *Tableau) CheckInvariants() error {
	commutes := func(a, b int) bool {
		ab, bb := a*t.n, b*t.n
		anti := 0
		for j := 0; j < t.n; j++ {
			anti += int(t.x[ab+j]&t.z[bb+j]) + int(t.z[ab+j]&t.x[bb+j])
		}
		return anti%2 == 0
	}
	for i := t.n; i < 2*t.n; i++ {
		for j := i + 1; j < 2*t.n; j++ {
			if !commutes(i, j) {
				return fmt.Errorf("%w: стабилизаторы %d и %d не коммутируют", ErrBrokenTableau, i-t.n, j-t.n)
			}
		}
	}
	for i := 0; i < t.n; i++ {
		for j := t.n; j < 2*t.n; j++ {
			want := j-t.n == i // пара дестабилизатор/стабилизатор антикоммутирует
			if commutes(i, j) == want {
				return fmt.Errorf("%w: дестабилизатор %d против стабилизатора %d", ErrBrokenTableau, i, j-t.n)
			}
		}
	}
	return nil
}

// String возвращает стабилизаторы в текстовой записи Паули.
func (t *Tableau) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tableau(%d qubits)", t.n)
	for i := t.n; i < 2*t.n; i++ {
		sign := "+"
		if t.r[i] == 1 {
			sign = "-"
		}
		b.WriteString("\n  " + sign)
		for j := 0; j < t.n; j++ {
			switch {
			case t.x[i*t.n+j] == 1 && t.z[i*t.n+j] == 1:
				b.WriteByte('Y')
			case t.x[i*t.n+j] == 1:
				b.WriteByte('X')
			case t.z[i*t.n+j] == 1:
				b.WriteByte('Z')
			default:
				b.WriteByte('I')
			}
		}
	}
	return b.String()
}
