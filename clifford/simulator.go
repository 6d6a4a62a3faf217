package clifford

import (
	"fmt"
	"math/rand"

	"github.com/omniq-dev/omniq/circuit"
)

// Simulator — стабилизаторный бэкенд поверх таблицы: проверка диапазонов,
// журнал измерений и выполнение клиффордовского фрагмента схем.
type Simulator struct {
	t        *Tableau
	rng      *rand.Rand
	outcomes []int
}

// NewSimulator создает симулятор на n кубитах в состоянии |0...0⟩ с заданным
// зерном генератора.
func NewSimulator(n int, seed int64) (*Simulator, error) {
	t, err := NewTableau(n)
	if err != nil {
		return nil, err
	}
	return &Simulator{t: t, rng: rand.New(rand.NewSource(seed))}, nil
}

// NewSimulatorWithSource создает симулятор с готовым генератором.
func NewSimulatorWithSource(n int, rng *rand.Rand) (*Simulator, error) {
	t, err := NewTableau(n)
	if err != nil {
		return nil, err
	}
	return &Simulator{t: t, rng: rng}, nil
}

// NumQubits возвращает количество кубитов.
func (s *Simulator) NumQubits() int { return s.t.NumQubits() }

// Tableau возвращает копию внутренней таблицы.
func (s *Simulator) Tableau() *Tableau { return s.t.Clone() }

// Outcomes возвращает журнал исходов измерений.
func (s *Simulator) Outcomes() []int {
	out := make([]int, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Reset возвращает симулятор в состояние |0...0⟩ и очищает журнал.
func (s *Simulator) Reset() error {
	t, err := NewTableau(s.t.NumQubits())
	if err != nil {
		return err
	}
	s.t = t
	s.outcomes = s.outcomes[:0]
	return nil
}

// ApplyH применяет вентиль Адамара.
func (s *Simulator) ApplyH(q int) error { return s.t.H(q) }

// ApplyS применяет фазовый вентиль.
func (s *Simulator) ApplyS(q int) error { return s.t.S(q) }

// ApplyX применяет вентиль Паули-X.
func (s *Simulator) ApplyX(q int) error { return s.t.X(q) }

// ApplyY применяет вентиль Паули-Y.
func (s *Simulator) ApplyY(q int) error { return s.t.Y(q) }

// ApplyZ применяет вентиль Паули-Z.
func (s *Simulator) ApplyZ(q int) error { return s.t.Z(q) }

// ApplyCNOT применяет управляемый NOT.
func (s *Simulator) ApplyCNOT(control, target int) error { return s.t.CNOT(control, target) }

// ApplySwap меняет кубиты местами.
func (s *Simulator) ApplySwap(q1, q2 int) error { return s.t.Swap(q1, q2) }

// Measure измеряет кубит в базисе Z и дописывает исход в журнал.
func (s *Simulator) Measure(q int) (int, error) {
	outcome, err := s.t.Measure(q, s.rng)
	if err != nil {
		return -1, err
	}
	s.outcomes = append(s.outcomes, outcome)
	return outcome, nil
}

// ApplyGate применяет один вентиль схемы. Вентили вне группы Клиффорда
// отвергаются с ErrUnsupportedGate.
func (s *Simulator) ApplyGate(g circuit.Gate) error {
	switch g.Kind {
	case circuit.GateH:
		return s.ApplyH(g.Targets[0])
	case circuit.GateX:
		return s.ApplyX(g.Targets[0])
	case circuit.GateY:
		return s.ApplyY(g.Targets[0])
	case circuit.GateZ:
		return s.ApplyZ(g.Targets[0])
	case circuit.GateS:
		return s.ApplyS(g.Targets[0])
	case circuit.GateCNOT:
		return s.ApplyCNOT(g.Controls[0], g.Targets[0])
	case circuit.GateSwap:
		return s.ApplySwap(g.Targets[0], g.Targets[1])
	case circuit.GateMeasure:
		_, err := s.Measure(g.Targets[0])
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedGate, g.Kind)
}

// Execute выполняет схему целиком. Схема должна совпадать по числу кубитов и
// состоять только из клиффордовских вентилей.
func (s *Simulator) Execute(c *circuit.Circuit) error {
	if c.Len() == 0 {
		return circuit.ErrEmptyCircuit
	}
	if c.NumQubits() != s.t.NumQubits() {
		return fmt.Errorf("%w: схема на %d кубитах, симулятор на %d", ErrInvalidQubitCount, c.NumQubits(), s.t.NumQubits())
	}
	for i, g := range c.Gates() {
		if err := s.ApplyGate(g); err != nil {
			return fmt.Errorf("вентиль %d (%s): %w", i, g.Kind, err)
		}
	}
	return nil
}
