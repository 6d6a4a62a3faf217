package density

import (
	"fmt"

	"github.com/omniq-dev/omniq/circuit"
	"github.com/omniq-dev/omniq/noise"
)

// Executor прогоняет схему через бэкенд матрицы плотности, применяя каналы
// модели шума после каждого вентиля к затронутым кубитам.
type Executor struct {
	model *noise.Model
}

// NewExecutor создает исполнитель. model == nil означает идеальную
// (бесшумную) симуляцию.
func NewExecutor(model *noise.Model) *Executor {
	return &Executor{model: model}
}

// ApplyGate применяет один вентиль схемы к матрице плотности. Измерение с
// коллапсом на этом бэкенде не реализовано: наблюдаемые считаются через
// ExpectationZ без разрушения состояния.
func (e *Executor) ApplyGate(d *DensityMatrix, g circuit.Gate) error {
	switch g.Kind {
	case circuit.GateH:
		return d.ApplyH(g.Targets[0])
	case circuit.GateX:
		return d.ApplyX(g.Targets[0])
	case circuit.GateY:
		return d.ApplyY(g.Targets[0])
	case circuit.GateZ:
		return d.ApplyZ(g.Targets[0])
	case circuit.GateS:
		return d.ApplyS(g.Targets[0])
	case circuit.GatePhase:
		return d.ApplyPhaseShift(g.Targets[0], g.Parameter)
	case circuit.GateRX:
		return d.ApplyRX(g.Targets[0], g.Parameter)
	case circuit.GateRY:
		return d.ApplyRY(g.Targets[0], g.Parameter)
	case circuit.GateRZ:
		return d.ApplyRZ(g.Targets[0], g.Parameter)
	case circuit.GateCNOT:
		return d.ApplyCNOT(g.Controls[0], g.Targets[0])
	case circuit.GateSwap:
		return d.ApplySwap(g.Targets[0], g.Targets[1])
	case circuit.GateCP:
		return d.ApplyControlledPhase(g.Controls[0], g.Targets[0], g.Parameter)
	case circuit.GateMeasure:
		return fmt.Errorf("%w: проективное измерение, используйте ExpectationZ", ErrNotImplemented)
	}
	return fmt.Errorf("%w: вентиль %q", ErrNotImplemented, g.Kind)
}

// applyNoise применяет каналы модели к кубитам вентиля.
func (e *Executor) applyNoise(d *DensityMatrix, qubits []int) error {
	if e.model == nil {
		return nil
	}
	for _, q := range qubits {
		for _, ch := range e.model.ChannelsFor(q) {
			if err := d.ApplyChannel(ch, q); err != nil {
				return err
			}
		}
	}
	return nil
}

// Execute выполняет схему над начальным состоянием. При initial == nil
// создается |0...0⟩⟨0...0|. После каждого вентиля к его кубитам применяются
// каналы модели шума. Возвращает конечное состояние, initial не изменяется.
func (e *Executor) Execute(c *circuit.Circuit, initial *DensityMatrix) (*DensityMatrix, error) {
	if c.Len() == 0 {
		return nil, circuit.ErrEmptyCircuit
	}

	var state *DensityMatrix
	if initial == nil {
		var err error
		state, err = New(c.NumQubits())
		if err != nil {
			return nil, err
		}
	} else {
		if initial.NumQubits() != c.NumQubits() {
			return nil, fmt.Errorf("%w: состояние на %d кубитах, схема на %d", ErrDimensionMismatch, initial.NumQubits(), c.NumQubits())
		}
		state = initial.Clone()
	}

	for i, g := range c.Gates() {
		if err := e.ApplyGate(state, g); err != nil {
			return nil, fmt.Errorf("вентиль %d (%s): %w", i, g.Kind, err)
		}
		if err := e.applyNoise(state, g.Qubits()); err != nil {
			return nil, fmt.Errorf("шум после вентиля %d (%s): %w", i, g.Kind, err)
		}
	}

	// Каналы Крауса сохраняют след, заметный дрейф означает ошибку
	if err := state.CheckTrace(); err != nil {
		return nil, err
	}
	return state, nil
}
