// Package circuit реализует модель квантовой схемы: упорядоченный список
// вентилей над индексированными кубитами, сериализацию в JSON и экспорт в
// OpenQASM 2.0.
package circuit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrQubitOutOfRange ошибка, возникающая при использовании кубита вне схемы
	ErrQubitOutOfRange = errors.New("индекс кубита выходит за пределы схемы")

	// ErrClassicalBitOutOfRange ошибка, возникающая при использовании классического бита вне схемы
	ErrClassicalBitOutOfRange = errors.New("индекс классического бита выходит за пределы схемы")

	// ErrDuplicateQubit ошибка, возникающая при повторении индекса кубита в одном вентиле
	ErrDuplicateQubit = errors.New("индексы кубитов вентиля не должны повторяться")

	// ErrInvalidParameter ошибка, возникающая при некорректном параметре вентиля
	ErrInvalidParameter = errors.New("недопустимый параметр вентиля")

	// ErrUnknownGate ошибка, возникающая при неизвестном типе вентиля
	ErrUnknownGate = errors.New("неизвестный тип вентиля")

	// ErrEmptyCircuit ошибка, возникающая при выполнении схемы без вентилей
	ErrEmptyCircuit = errors.New("схема не содержит вентилей")

	// ErrInvalidCircuit ошибка, возникающая при некорректных размерах схемы
	ErrInvalidCircuit = errors.New("недопустимые размеры схемы")
)

// GateKind определяет вид квантового вентиля.
type GateKind string

const (
	GateH       GateKind = "H"
	GateX       GateKind = "X"
	GateY       GateKind = "Y"
	GateZ       GateKind = "Z"
	GateS       GateKind = "S"
	GatePhase   GateKind = "PHASE"
	GateRX      GateKind = "RX"
	GateRY      GateKind = "RY"
	GateRZ      GateKind = "RZ"
	GateCNOT    GateKind = "CNOT"
	GateSwap    GateKind = "SWAP"
	GateCP      GateKind = "CP"
	GateMeasure GateKind = "MEASURE"
)

// Gate описывает один вентиль схемы. Controls и Targets хранят индексы
// кубитов, Parameter — угол для параметрических вентилей, Basis — базис
// измерения (по умолчанию "Z").
type Gate struct {
	Kind      GateKind
	Controls  []int
	Targets   []int
	Parameter float64
	Basis     string
}

// Qubits возвращает все кубиты вентиля: сначала управляющие, затем целевые.
func (g Gate) Qubits() []int {
	qs := make([]int, 0, len(g.Controls)+len(g.Targets))
	qs = append(qs, g.Controls...)
	qs = append(qs, g.Targets...)
	return qs
}

// Parametric сообщает, несет ли вентиль непрерывный параметр.
func (g Gate) Parametric() bool {
	switch g.Kind {
	case GatePhase, GateRX, GateRY, GateRZ, GateCP:
		return true
	}
	return false
}

// SelfInverse сообщает, является ли вентиль своей собственной инверсией.
func (g Gate) SelfInverse() bool {
	switch g.Kind {
	case GateH, GateX, GateY, GateZ, GateCNOT, GateSwap:
		return true
	}
	return false
}

// String возвращает компактное текстовое описание вентиля.
func (g Gate) String() string {
	var b strings.Builder
	b.WriteString(string(g.Kind))
	if g.Parametric() {
		fmt.Fprintf(&b, "(%.6g)", g.Parameter)
	}
	for _, c := range g.Controls {
		fmt.Fprintf(&b, " c%d", c)
	}
	for _, t := range g.Targets {
		fmt.Fprintf(&b, " q%d", t)
	}
	return b.String()
}

// Circuit представляет квантовую схему: фиксированное число кубитов и
// классических битов плюс упорядоченный список вентилей. Схема только
// накапливает вентили, выполнение делают бэкенды.
type Circuit struct {
	numQubits        int
	numClassicalBits int
	gates            []Gate
}

// New создает пустую схему с заданным числом кубитов и классических битов.
func New(numQubits, numClassicalBits int) (*Circuit, error) {
	if numQubits <= 0 {
		return nil, fmt.Errorf("%w: количество кубитов должно быть положительным, получено %d", ErrInvalidCircuit, numQubits)
	}
	if numClassicalBits < 0 {
		return nil, fmt.Errorf("%w: количество классических битов не может быть отрицательным, получено %d", ErrInvalidCircuit, numClassicalBits)
	}
	return &Circuit{
		numQubits:        numQubits,
		numClassicalBits: numClassicalBits,
	}, nil
}

// NumQubits возвращает количество кубитов схемы.
func (c *Circuit) NumQubits() int {
	return c.numQubits
}

// NumClassicalBits возвращает количество классических битов схемы.
func (c *Circuit) NumClassicalBits() int {
	return c.numClassicalBits
}

// Len возвращает количество вентилей в схеме.
func (c *Circuit) Len() int {
	return len(c.gates)
}

// Gates возвращает копию списка вентилей.
func (c *Circuit) Gates() []Gate {
	out := make([]Gate, len(c.gates))
	copy(out, c.gates)
	return out
}

// Gate возвращает вентиль по позиции.
func (c *Circuit) Gate(i int) (Gate, error) {
	if i < 0 || i >= len(c.gates) {
		return Gate{}, fmt.Errorf("%w: позиция вентиля %d, всего %d", ErrInvalidParameter, i, len(c.gates))
	}
	return c.gates[i], nil
}

// checkQubits проверяет, что все кубиты вентиля допустимы и не повторяются.
func (c *Circuit) checkQubits(qs []int) error {
	for _, q := range qs {
		if q < 0 || q >= c.numQubits {
			return fmt.Errorf("%w: кубит %d при %d кубитах схемы", ErrQubitOutOfRange, q, c.numQubits)
		}
	}
	for i := 0; i < len(qs); i++ {
		for j := i + 1; j < len(qs); j++ {
			if qs[i] == qs[j] {
				return fmt.Errorf("%w: кубит %d", ErrDuplicateQubit, qs[i])
			}
		}
	}
	return nil
}

// arity возвращает требуемое число кубитов для вида вентиля.
func arity(kind GateKind) (int, error) {
	switch kind {
	case GateH, GateX, GateY, GateZ, GateS, GatePhase, GateRX, GateRY, GateRZ, GateMeasure:
		return 1, nil
	case GateCNOT, GateSwap, GateCP:
		return 2, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGate, kind)
}

// AddGate валидирует и добавляет вентиль в конец схемы.
func (c *Circuit) AddGate(g Gate) error {
	qs := g.Qubits()
	want, err := arity(g.Kind)
	if err != nil {
		return err
	}
	if len(qs) != want {
		return fmt.Errorf("%w: вентиль %s требует %d кубит(ов), передано %d", ErrInvalidParameter, g.Kind, want, len(qs))
	}
	if err := c.checkQubits(qs); err != nil {
		return err
	}
	if g.Kind == GateMeasure && g.Basis == "" {
		g.Basis = "Z"
	}
	c.gates = append(c.gates, g)
	return nil
}

// AddH добавляет вентиль Адамара.
func (c *Circuit) AddH(qubit int) error {
	return c.AddGate(Gate{Kind: GateH, Targets: []int{qubit}})
}

// AddX добавляет вентиль Паули-X.
func (c *Circuit) AddX(qubit int) error {
	return c.AddGate(Gate{Kind: GateX, Targets: []int{qubit}})
}

// AddY добавляет вентиль Паули-Y.
func (c *Circuit) AddY(qubit int) error {
	return c.AddGate(Gate{Kind: GateY, Targets: []int{qubit}})
}

// AddZ добавляет вентиль Паули-Z.
func (c *Circuit) AddZ(qubit int) error {
	return c.AddGate(Gate{Kind: GateZ, Targets: []int{qubit}})
}

// AddS добавляет фазовый вентиль S (PHASE на угол π/2).
func (c *Circuit) AddS(qubit int) error {
	return c.AddGate(Gate{Kind: GateS, Targets: []int{qubit}})
}

// AddPhaseShift добавляет вентиль фазового сдвига на угол theta.
func (c *Circuit) AddPhaseShift(qubit int, theta float64) error {
	return c.AddGate(Gate{Kind: GatePhase, Targets: []int{qubit}, Parameter: theta})
}

// AddRX добавляет вращение вокруг оси X на угол theta.
func (c *Circuit) AddRX(qubit int, theta float64) error {
	return c.AddGate(Gate{Kind: GateRX, Targets: []int{qubit}, Parameter: theta})
}

// AddRY добавляет вращение вокруг оси Y на угол theta.
func (c *Circuit) AddRY(qubit int, theta float64) error {
	return c.AddGate(Gate{Kind: GateRY, Targets: []int{qubit}, Parameter: theta})
}

// AddRZ добавляет вращение вокруг оси Z на угол theta.
func (c *Circuit) AddRZ(qubit int, theta float64) error {
	return c.AddGate(Gate{Kind: GateRZ, Targets: []int{qubit}, Parameter: theta})
}

// AddCNOT добавляет вентиль CNOT с управляющим и целевым кубитами.
func (c *Circuit) AddCNOT(control, target int) error {
	return c.AddGate(Gate{Kind: GateCNOT, Controls: []int{control}, Targets: []int{target}})
}

// AddSwap добавляет вентиль SWAP.
func (c *Circuit) AddSwap(qubit1, qubit2 int) error {
	return c.AddGate(Gate{Kind: GateSwap, Targets: []int{qubit1, qubit2}})
}

// AddControlledPhase добавляет управляемый фазовый сдвиг на угол theta.
func (c *Circuit) AddControlledPhase(control, target int, theta float64) error {
	return c.AddGate(Gate{Kind: GateCP, Controls: []int{control}, Targets: []int{target}, Parameter: theta})
}

// AddMeasurement добавляет измерение кубита в базисе Z.
func (c *Circuit) AddMeasurement(qubit int) error {
	return c.AddGate(Gate{Kind: GateMeasure, Targets: []int{qubit}, Basis: "Z"})
}

// Compose дописывает вентили другой схемы в конец текущей. Количество
// кубитов должно совпадать.
func (c *Circuit) Compose(other *Circuit) error {
	if other == nil {
		return fmt.Errorf("%w: составляемая схема отсутствует", ErrInvalidCircuit)
	}
	if other.numQubits != c.numQubits {
		return fmt.Errorf("%w: %d кубитов против %d", ErrInvalidCircuit, other.numQubits, c.numQubits)
	}
	c.gates = append(c.gates, other.gates...)
	return nil
}

// Depth возвращает глубину схемы: число слоев вентилей при максимально
// плотной упаковке по кубитам.
func (c *Circuit) Depth() int {
	frontier := make([]int, c.numQubits)
	depth := 0
	for _, g := range c.gates {
		layer := 0
		for _, q := range g.Qubits() {
			if frontier[q] > layer {
				layer = frontier[q]
			}
		}
		layer++
		for _, q := range g.Qubits() {
			frontier[q] = layer
		}
		if layer > depth {
			depth = layer
		}
	}
	return depth
}

// sameQubits проверяет совпадение кубитов двух вентилей с учетом порядка.
func sameQubits(a, b Gate) bool {
	aq, bq := a.Qubits(), b.Qubits()
	if len(aq) != len(bq) {
		return false
	}
	for i := range aq {
		if aq[i] != bq[i] {
			return false
		}
	}
	return true
}

// Optimize удаляет соседние пары самообратных вентилей на одних и тех же
// кубитах (HH, XX, YY, ZZ, CNOT·CNOT, SWAP·SWAP). Результат повторной
// оптимизации совпадает с однократной. Возвращает число удаленных вентилей.
func (c *Circuit) Optimize() int {
	stack := make([]Gate, 0, len(c.gates))
	for _, g := range c.gates {
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			if g.SelfInverse() && top.Kind == g.Kind && sameQubits(top, g) {
				stack = stack[:len(stack)-1]
				continue
			}
		}
		stack = append(stack, g)
	}
	removed := len(c.gates) - len(stack)
	c.gates = stack
	return removed
}

// String возвращает многострочное текстовое описание схемы.
func (c *Circuit) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Circuit(%d qubits, %d clbits, %d gates)\n", c.numQubits, c.numClassicalBits, len(c.gates))
	for i, g := range c.gates {
		fmt.Fprintf(&b, "  %3d: %s\n", i, g.String())
	}
	return b.String()
}
