// Package processor предоставляет единый фасад над бэкендами симуляции:
// вектор состояния, матрица плотности с шумом и стабилизаторный симулятор.
// Бэкенд выбирается при создании процессора, схема одна и та же.
package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/omniq-dev/omniq/circuit"
	"github.com/omniq-dev/omniq/clifford"
	"github.com/omniq-dev/omniq/density"
	"github.com/omniq-dev/omniq/noise"
	"github.com/omniq-dev/omniq/quantum"
)

// BackendKind задает бэкенд симуляции.
type BackendKind string

const (
	// BackendStatevector — точная симуляция вектора состояния
	BackendStatevector BackendKind = "statevector"

	// BackendDensity — матрица плотности, единственный бэкенд с шумом
	BackendDensity BackendKind = "density"

	// BackendClifford — стабилизаторный симулятор для схем Клиффорда
	BackendClifford BackendKind = "clifford"
)

var (
	// ErrUnknownBackend ошибка, возникающая при неизвестном бэкенде
	ErrUnknownBackend = errors.New("неизвестный бэкенд симуляции")

	// ErrNoiseUnsupported ошибка, возникающая при модели шума на бэкенде без ее поддержки
	ErrNoiseUnsupported = errors.New("бэкенд не поддерживает модель шума")
)

// Result содержит итог прогона схемы. Заполнены только поля выбранного
// бэкенда: Amplitudes для вектора состояния, Density для матрицы плотности,
// Tableau для стабилизаторного симулятора.
type Result struct {
	Backend       BackendKind
	Amplitudes    []complex128
	Density       *density.DensityMatrix
	Tableau       *clifford.Tableau
	Outcomes      []int
	Probabilities []float64
	Elapsed       time.Duration
}

// Processor выполняет схемы на выбранном бэкенде.
type Processor struct {
	backend  BackendKind
	seed     int64
	model    *noise.Model
	profiler *Profiler
}

// New создает процессор с заданным бэкендом и зерном генератора.
func New(backend BackendKind, seed int64) (*Processor, error) {
	switch backend {
	case BackendStatevector, BackendDensity, BackendClifford:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	return &Processor{
		backend:  backend,
		seed:     seed,
		profiler: NewProfiler(),
	}, nil
}

// Backend возвращает бэкенд процессора.
func (p *Processor) Backend() BackendKind {
	return p.backend
}

// Profiler возвращает профайлер процессора.
func (p *Processor) Profiler() *Profiler {
	return p.profiler
}

// SetNoiseModel подключает модель шума. Шум поддерживает только бэкенд
// матрицы плотности.
func (p *Processor) SetNoiseModel(m *noise.Model) error {
	if m != nil && p.backend != BackendDensity {
		return fmt.Errorf("%w: %q", ErrNoiseUnsupported, p.backend)
	}
	p.model = m
	return nil
}

// Run выполняет схему и возвращает результат выбранного бэкенда.
func (p *Processor) Run(c *circuit.Circuit) (*Result, error) {
	return p.run(c, p.seed)
}

// run выполняет схему с явным зерном; батч-раннер дает каждому прогону
// свое зерно.
func (p *Processor) run(c *circuit.Circuit, seed int64) (*Result, error) {
	span := p.profiler.Start(string(p.backend))
	started := time.Now()

	log.Debug("запуск схемы",
		"бэкенд", p.backend,
		"кубитов", c.NumQubits(),
		"вентилей", c.Len())

	var (
		result *Result
		err    error
	)
	switch p.backend {
	case BackendStatevector:
		result, err = p.runStatevector(c, seed)
	case BackendDensity:
		result, err = p.runDensity(c)
	case BackendClifford:
		result, err = p.runClifford(c, seed)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownBackend, p.backend)
	}
	p.profiler.End(span)
	if err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(started)
	return result, nil
}

func (p *Processor) runStatevector(c *circuit.Circuit, seed int64) (*Result, error) {
	exec := quantum.NewExecutor(seed)
	state, err := exec.Execute(c, nil)
	if err != nil {
		return nil, err
	}

	probs := make([]float64, c.NumQubits())
	for q := range probs {
		if probs[q], err = state.Probability(q); err != nil {
			return nil, err
		}
	}
	return &Result{
		Backend:       p.backend,
		Amplitudes:    state.Amplitudes(),
		Outcomes:      exec.Outcomes(),
		Probabilities: probs,
	}, nil
}

func (p *Processor) runDensity(c *circuit.Circuit) (*Result, error) {
	exec := density.NewExecutor(p.model)
	d, err := exec.Execute(c, nil)
	if err != nil {
		return nil, err
	}

	probs := make([]float64, c.NumQubits())
	for q := range probs {
		if probs[q], err = d.Probability(q); err != nil {
			return nil, err
		}
	}
	return &Result{
		Backend:       p.backend,
		Density:       d,
		Probabilities: probs,
	}, nil
}

func (p *Processor) runClifford(c *circuit.Circuit, seed int64) (*Result, error) {
	sim, err := clifford.NewSimulator(c.NumQubits(), seed)
	if err != nil {
		return nil, err
	}
	if err := sim.Execute(c); err != nil {
		return nil, err
	}
	return &Result{
		Backend:  p.backend,
		Tableau:  sim.Tableau(),
		Outcomes: sim.Outcomes(),
	}, nil
}
