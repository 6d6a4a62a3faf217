package qec

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/omniq-dev/omniq/clifford"
)

// PauliType — тип одиночной ошибки Паули на кубите данных.
type PauliType int

const (
	PauliX PauliType = iota
	PauliY
	PauliZ
)

func (p PauliType) String() string {
	switch p {
	case PauliX:
		return "X"
	case PauliY:
		return "Y"
	}
	return "Z"
}

// PauliError — ошибка Паули на конкретном кубите данных.
type PauliError struct {
	Type  PauliType
	Qubit int
}

// Syndrome — результат раунда измерения стабилизаторов: множество сработавших
// (изменивших четность) стабилизаторов.
type Syndrome struct {
	triggered      mapset.Set[int]
	numStabilizers int
}

// NewSyndrome создает пустой синдром на numStabilizers стабилизаторах.
func NewSyndrome(numStabilizers int) *Syndrome {
	return &Syndrome{
		triggered:      mapset.NewThreadUnsafeSet[int](),
		numStabilizers: numStabilizers,
	}
}

// NumStabilizers возвращает размер синдрома.
func (s *Syndrome) NumStabilizers() int { return s.numStabilizers }

// Trigger переключает стабилизатор: повторное срабатывание снимает отметку
// (четность по модулю 2).
func (s *Syndrome) Trigger(i int) error {
	if i < 0 || i >= s.numStabilizers {
		return fmt.Errorf("%w: %d при %d стабилизаторах", ErrInvalidStabilizer, i, s.numStabilizers)
	}
	if s.triggered.Contains(i) {
		s.triggered.Remove(i)
	} else {
		s.triggered.Add(i)
	}
	return nil
}

// IsTriggered сообщает, сработал ли стабилизатор.
func (s *Syndrome) IsTriggered(i int) bool {
	return s.triggered.Contains(i)
}

// IsEmpty сообщает, пуст ли синдром.
func (s *Syndrome) IsEmpty() bool {
	return s.triggered.Cardinality() == 0
}

// Count возвращает число сработавших стабилизаторов.
func (s *Syndrome) Count() int {
	return s.triggered.Cardinality()
}

// Triggered возвращает отсортированные индексы сработавших стабилизаторов.
func (s *Syndrome) Triggered() []int {
	out := s.triggered.ToSlice()
	sort.Ints(out)
	return out
}

// String возвращает текстовое описание синдрома.
func (s *Syndrome) String() string {
	if s.IsEmpty() {
		return "Syndrome(empty)"
	}
	parts := make([]string, 0, s.Count())
	for _, i := range s.Triggered() {
		parts = append(parts, fmt.Sprintf("%d", i))
	}
	return "Syndrome{" + strings.Join(parts, ", ") + "}"
}

// SyndromeFromErrors вычисляет синдром для набора ошибок Паули на кубитах
// данных: X- и Y-компоненты переключают Z-стабилизаторы носителя, Z- и
// Y-компоненты — X-стабилизаторы.
func (sc *SurfaceCode) SyndromeFromErrors(errs []PauliError) (*Syndrome, error) {
	syn := NewSyndrome(sc.NumAncillaQubits())
	for _, e := range errs {
		if e.Qubit < 0 || e.Qubit >= sc.NumDataQubits() {
			return nil, fmt.Errorf("%w: кубит %d при %d кубитах данных", ErrInvalidDataQubit, e.Qubit, sc.NumDataQubits())
		}
		flipsZ := e.Type == PauliX || e.Type == PauliY
		flipsX := e.Type == PauliZ || e.Type == PauliY
		for i, p := range sc.plaquettes {
			hit := false
			for _, q := range p.Support {
				if q == e.Qubit {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
			if (p.Type == StabilizerZ && flipsZ) || (p.Type == StabilizerX && flipsX) {
				if err := syn.Trigger(i); err != nil {
					return nil, err
				}
			}
		}
	}
	return syn, nil
}

// ExtractSyndrome измеряет все стабилизаторы на клиффордовском симуляторе и
// возвращает синдром относительно предыдущего раунда (prev == nil означает
// эталонные нулевые исходы). Симулятор должен содержать TotalQubits кубитов:
// данные, затем анциллы. Анциллы после измерения сбрасываются в |0⟩.
func (sc *SurfaceCode) ExtractSyndrome(sim *clifford.Simulator, prev []int) (*Syndrome, []int, error) {
	if sim.NumQubits() != sc.TotalQubits() {
		return nil, nil, fmt.Errorf("%w: симулятор на %d кубитах, нужно %d", ErrInvalidStabilizer, sim.NumQubits(), sc.TotalQubits())
	}
	if prev != nil && len(prev) != sc.NumAncillaQubits() {
		return nil, nil, fmt.Errorf("%w: предыдущий раунд из %d исходов, нужно %d", ErrInvalidStabilizer, len(prev), sc.NumAncillaQubits())
	}

	syn := NewSyndrome(sc.NumAncillaQubits())
	outcomes := make([]int, sc.NumAncillaQubits())

	for i, p := range sc.plaquettes {
		ancilla := sc.NumDataQubits() + i

		if p.Type == StabilizerX {
			if err := sim.ApplyH(ancilla); err != nil {
				return nil, nil, err
			}
			for _, q := range p.Support {
				if err := sim.ApplyCNOT(ancilla, q); err != nil {
					return nil, nil, err
				}
			}
			if err := sim.ApplyH(ancilla); err != nil {
				return nil, nil, err
			}
		} else {
			for _, q := range p.Support {
				if err := sim.ApplyCNOT(q, ancilla); err != nil {
					return nil, nil, err
				}
			}
		}

		outcome, err := sim.Measure(ancilla)
		if err != nil {
			return nil, nil, err
		}
		outcomes[i] = outcome

		// Сброс анциллы для следующего раунда
		if outcome == 1 {
			if err := sim.ApplyX(ancilla); err != nil {
				return nil, nil, err
			}
		}

		ref := 0
		if prev != nil {
			ref = prev[i]
		}
		if outcome != ref {
			if err := syn.Trigger(i); err != nil {
				return nil, nil, err
			}
		}
	}
	return syn, outcomes, nil
}
