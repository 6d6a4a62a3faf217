package processor

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/omniq-dev/omniq/circuit"
	"github.com/omniq-dev/omniq/quantum"
)

var (
	// ErrAtEnd ошибка, возникающая при шаге вперед за последним вентилем
	ErrAtEnd = errors.New("достигнут конец схемы")

	// ErrAtStart ошибка, возникающая при шаге назад из начального состояния
	ErrAtStart = errors.New("достигнуто начало схемы")

	// ErrInvalidBreakpoint ошибка, возникающая при точке останова вне схемы
	ErrInvalidBreakpoint = errors.New("точка останова вне схемы")
)

// Condition — условная точка останова: выполнение прерывается после шага,
// на котором условие стало истинным.
type Condition func(*quantum.Statevector) bool

// ExecutionEngine выполняет схему повентильно с возможностью отката.
// Траектория состояний хранится в дельта-сжатой истории, шаг назад
// восстанавливает состояние из нее.
type ExecutionEngine struct {
	circuit     *circuit.Circuit
	exec        *quantum.Executor
	state       *quantum.Statevector
	history     *History
	position    int
	breakpoints map[int]struct{}
	condition   Condition
	seed        int64
}

// NewExecutionEngine создает движок для пошагового выполнения схемы.
func NewExecutionEngine(c *circuit.Circuit, seed int64) (*ExecutionEngine, error) {
	if c.Len() == 0 {
		return nil, quantum.ErrEmptyCircuit
	}
	state, err := quantum.NewStatevector(c.NumQubits())
	if err != nil {
		return nil, err
	}
	return &ExecutionEngine{
		circuit:     c,
		exec:        quantum.NewExecutor(seed),
		state:       state,
		history:     NewHistory(state.Amplitudes(), 0),
		breakpoints: make(map[int]struct{}),
		seed:        seed,
	}, nil
}

// Position возвращает число выполненных вентилей.
func (e *ExecutionEngine) Position() int {
	return e.position
}

// Len возвращает длину схемы.
func (e *ExecutionEngine) Len() int {
	return e.circuit.Len()
}

// State возвращает копию текущего состояния.
func (e *ExecutionEngine) State() *quantum.Statevector {
	return e.state.Clone()
}

// History возвращает дельта-сжатую историю состояний.
func (e *ExecutionEngine) History() *History {
	return e.history
}

// Outcomes возвращает результаты измерений, выполненных с момента
// последнего сброса.
func (e *ExecutionEngine) Outcomes() []int {
	return e.exec.Outcomes()
}

// SetBreakpoint ставит точку останова после вентиля с индексом step.
func (e *ExecutionEngine) SetBreakpoint(step int) error {
	if step < 0 || step >= e.circuit.Len() {
		return fmt.Errorf("%w: %d при %d вентилях", ErrInvalidBreakpoint, step, e.circuit.Len())
	}
	e.breakpoints[step] = struct{}{}
	return nil
}

// ClearBreakpoint снимает точку останова.
func (e *ExecutionEngine) ClearBreakpoint(step int) {
	delete(e.breakpoints, step)
}

// SetCondition устанавливает условную точку останова; nil снимает ее.
func (e *ExecutionEngine) SetCondition(cond Condition) {
	e.condition = cond
}

// StepForward выполняет следующий вентиль и сохраняет состояние в истории.
func (e *ExecutionEngine) StepForward() error {
	if e.position >= e.circuit.Len() {
		return ErrAtEnd
	}
	g, err := e.circuit.Gate(e.position)
	if err != nil {
		return err
	}
	if err := e.exec.ApplyGate(e.state, g); err != nil {
		return fmt.Errorf("вентиль %d (%s): %w", e.position, g.Kind, err)
	}

	// После отката хвост истории устарел: повторное выполнение может
	// разойтись с ним на измерениях
	if e.history.Len() > e.position+1 {
		if err := e.history.Truncate(e.position + 1); err != nil {
			return err
		}
	}
	if err := e.history.Push(e.state.Amplitudes()); err != nil {
		return err
	}
	e.position++
	return nil
}

// StepBackward откатывает последний выполненный вентиль, восстанавливая
// состояние из истории.
func (e *ExecutionEngine) StepBackward() error {
	if e.position == 0 {
		return ErrAtStart
	}
	amps, err := e.history.StateAt(e.position - 1)
	if err != nil {
		return err
	}
	state, err := quantum.FromAmplitudes(amps)
	if err != nil {
		return err
	}
	e.state = state
	e.position--
	return nil
}

// RunToEnd выполняет схему до конца.
func (e *ExecutionEngine) RunToEnd() error {
	for e.position < e.circuit.Len() {
		if err := e.StepForward(); err != nil {
			return err
		}
	}
	return nil
}

// RunToBreakpoint выполняет схему до первой сработавшей точки останова
// (явной или условной) либо до конца. Возвращает позицию остановки.
func (e *ExecutionEngine) RunToBreakpoint() (int, error) {
	for e.position < e.circuit.Len() {
		step := e.position
		if err := e.StepForward(); err != nil {
			return e.position, err
		}
		if _, ok := e.breakpoints[step]; ok {
			log.Debug("останов на точке", "вентиль", step)
			return e.position, nil
		}
		if e.condition != nil && e.condition(e.state) {
			log.Debug("останов по условию", "вентиль", step)
			return e.position, nil
		}
	}
	return e.position, nil
}

// Reset возвращает движок в начальное состояние. Точки останова
// сохраняются, журнал измерений и история начинаются заново.
func (e *ExecutionEngine) Reset() error {
	state, err := quantum.NewStatevector(e.circuit.NumQubits())
	if err != nil {
		return err
	}
	e.state = state
	e.exec = quantum.NewExecutor(e.seed)
	e.history = NewHistory(state.Amplitudes(), 0)
	e.position = 0
	return nil
}
