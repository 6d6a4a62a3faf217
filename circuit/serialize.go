package circuit

import (
	"encoding/json"
	"fmt"
	"sort"
)

// gateRecord — JSON-представление одного вентиля. Поле qubit хранит
// единственный кубит, для двухкубитных вентилей это управляющий (CNOT, CP)
// или первый (SWAP) кубит, а target — второй.
type gateRecord struct {
	Type      string   `json:"type"`
	Qubit     int      `json:"qubit"`
	Step      int      `json:"step"`
	Target    *int     `json:"target,omitempty"`
	Parameter *float64 `json:"parameter,omitempty"`
}

// circuitRecord — JSON-представление схемы целиком.
type circuitRecord struct {
	NumQubits        int          `json:"num_qubits"`
	NumClassicalBits int          `json:"num_classical_bits,omitempty"`
	Gates            []gateRecord `json:"gates"`
}

// toRecord переводит вентиль в сериализуемую запись.
func toRecord(g Gate, step int) (gateRecord, error) {
	rec := gateRecord{Type: string(g.Kind), Step: step}
	switch g.Kind {
	case GateH, GateX, GateY, GateZ, GateS, GateMeasure:
		rec.Qubit = g.Targets[0]
	case GatePhase, GateRX, GateRY, GateRZ:
		rec.Qubit = g.Targets[0]
		p := g.Parameter
		rec.Parameter = &p
	case GateCNOT:
		rec.Qubit = g.Controls[0]
		t := g.Targets[0]
		rec.Target = &t
	case GateSwap:
		rec.Qubit = g.Targets[0]
		t := g.Targets[1]
		rec.Target = &t
	case GateCP:
		rec.Qubit = g.Controls[0]
		t := g.Targets[0]
		rec.Target = &t
		p := g.Parameter
		rec.Parameter = &p
	default:
		return gateRecord{}, fmt.Errorf("%w: %q", ErrUnknownGate, g.Kind)
	}
	return rec, nil
}

// fromRecord восстанавливает вентиль из сериализуемой записи.
func fromRecord(rec gateRecord) (Gate, error) {
	kind := GateKind(rec.Type)
	switch kind {
	case GateH, GateX, GateY, GateZ, GateS:
		return Gate{Kind: kind, Targets: []int{rec.Qubit}}, nil
	case GateMeasure:
		return Gate{Kind: kind, Targets: []int{rec.Qubit}, Basis: "Z"}, nil
	case GatePhase, GateRX, GateRY, GateRZ:
		if rec.Parameter == nil {
			return Gate{}, fmt.Errorf("%w: вентиль %s без параметра", ErrInvalidParameter, kind)
		}
		return Gate{Kind: kind, Targets: []int{rec.Qubit}, Parameter: *rec.Parameter}, nil
	case GateCNOT:
		if rec.Target == nil {
			return Gate{}, fmt.Errorf("%w: вентиль %s без целевого кубита", ErrInvalidParameter, kind)
		}
		return Gate{Kind: kind, Controls: []int{rec.Qubit}, Targets: []int{*rec.Target}}, nil
	case GateSwap:
		if rec.Target == nil {
			return Gate{}, fmt.Errorf("%w: вентиль %s без целевого кубита", ErrInvalidParameter, kind)
		}
		return Gate{Kind: kind, Targets: []int{rec.Qubit, *rec.Target}}, nil
	case GateCP:
		if rec.Target == nil || rec.Parameter == nil {
			return Gate{}, fmt.Errorf("%w: вентиль %s без целевого кубита или параметра", ErrInvalidParameter, kind)
		}
		return Gate{Kind: kind, Controls: []int{rec.Qubit}, Targets: []int{*rec.Target}, Parameter: *rec.Parameter}, nil
	}
	return Gate{}, fmt.Errorf("%w: %q", ErrUnknownGate, rec.Type)
}

// MarshalJSON сериализует схему в формат
// {num_qubits, gates:[{type, qubit, step, target?, parameter?}]}.
func (c *Circuit) MarshalJSON() ([]byte, error) {
	rec := circuitRecord{
		NumQubits:        c.numQubits,
		NumClassicalBits: c.numClassicalBits,
		Gates:            make([]gateRecord, 0, len(c.gates)),
	}
	for i, g := range c.gates {
		gr, err := toRecord(g, i)
		if err != nil {
			return nil, err
		}
		rec.Gates = append(rec.Gates, gr)
	}
	return json.Marshal(rec)
}

// UnmarshalJSON восстанавливает схему из JSON. Вентили упорядочиваются по
// полю step, совпадающие step сохраняют порядок записи.
func (c *Circuit) UnmarshalJSON(data []byte) error {
	var rec circuitRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("разбор JSON схемы: %w", err)
	}
	restored, err := New(rec.NumQubits, rec.NumClassicalBits)
	if err != nil {
		return err
	}
	sort.SliceStable(rec.Gates, func(i, j int) bool {
		return rec.Gates[i].Step < rec.Gates[j].Step
	})
	for _, gr := range rec.Gates {
		g, err := fromRecord(gr)
		if err != nil {
			return err
		}
		if err := restored.AddGate(g); err != nil {
			return err
		}
	}
	*c = *restored
	return nil
}

// ToJSON возвращает JSON-представление схемы с отступами.
func (c *Circuit) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// FromJSON восстанавливает схему из JSON-представления.
func FromJSON(data []byte) (*Circuit, error) {
	var c Circuit
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
