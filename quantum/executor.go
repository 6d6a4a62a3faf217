package quantum

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/omniq-dev/omniq/circuit"
)

// Executor прогоняет схему через statevector-бэкенд. Генератор случайных
// чисел передается явно, одинаковое зерно дает воспроизводимые измерения.
type Executor struct {
	rng      *rand.Rand
	outcomes []int
}

// NewExecutor создает исполнитель с заданным зерном генератора.
func NewExecutor(seed int64) *Executor {
	return &Executor{rng: rand.New(rand.NewSource(seed))}
}

// NewExecutorWithSource создает исполнитель с готовым генератором.
func NewExecutorWithSource(rng *rand.Rand) *Executor {
	return &Executor{rng: rng}
}

// Outcomes возвращает результаты измерений последнего запуска в порядке
// следования вентилей MEASURE.
func (e *Executor) Outcomes() []int {
	out := make([]int, len(e.outcomes))
	copy(out, e.outcomes)
	return out
}

// ApplyGate применяет один вентиль схемы к состоянию. Измерение пишет
// результат в outcomes.
func (e *Executor) ApplyGate(s *Statevector, g circuit.Gate) error {
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
	case circuit.GatePhase:
		return s.ApplyPhaseShift(g.Targets[0], g.Parameter)
	case circuit.GateRX:
		return s.ApplyRX(g.Targets[0], g.Parameter)
	case circuit.GateRY:
		return s.ApplyRY(g.Targets[0], g.Parameter)
	case circuit.GateRZ:
		return s.ApplyRZ(g.Targets[0], g.Parameter)
	case circuit.GateCNOT:
		return s.ApplyCNOT(g.Controls[0], g.Targets[0])
	case circuit.GateSwap:
		return s.ApplySwap(g.Targets[0], g.Targets[1])
	case circuit.GateCP:
		return s.ApplyControlledPhase(g.Controls[0], g.Targets[0], g.Parameter)
	case circuit.GateMeasure:
		result, err := s.Measure(g.Targets[0], e.rng)
		if err != nil {
			return err
		}
		e.outcomes = append(e.outcomes, result)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedGate, g.Kind)
}

// Execute выполняет схему над начальным состоянием. При initial == nil
// создается |0...0⟩. Возвращает конечное состояние, initial не изменяется.
func (e *Executor) Execute(c *circuit.Circuit, initial *Statevector) (*Statevector, error) {
	if c.Len() == 0 {
		return nil, ErrEmptyCircuit
	}

	var state *Statevector
	if initial == nil {
		var err error
		state, err = NewStatevector(c.NumQubits())
		if err != nil {
			return nil, err
		}
	} else {
		if initial.NumQubits() != c.NumQubits() {
			return nil, fmt.Errorf("%w: состояние на %d кубитах, схема на %d", ErrDimensionMismatch, initial.NumQubits(), c.NumQubits())
		}
		state = initial.Clone()
	}

	e.outcomes = e.outcomes[:0]
	for i, g := range c.Gates() {
		if err := e.ApplyGate(state, g); err != nil {
			return nil, fmt.Errorf("вентиль %d (%s): %w", i, g.Kind, err)
		}
	}

	// Унитарные ядра сохраняют норму с точностью до ошибок округления;
	// дрейф в пределах допуска убирается перенормировкой, больший дрейф
	// означает ошибку и наружу уходит как есть.
	if drift := math.Abs(state.Norm() - 1); drift > Epsilon {
		return nil, fmt.Errorf("%w: дрейф нормы %.3e после %d вентилей", ErrNotNormalized, drift, c.Len())
	}
	if err := state.Normalize(); err != nil {
		return nil, err
	}
	return state, nil
}
