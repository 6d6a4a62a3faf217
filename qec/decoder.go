package qec

import (
	"fmt"
	"sort"
	"strings"
)

// PauliCorrection — один корректирующий оператор Паули на кубите данных.
type PauliCorrection struct {
	Type  PauliType
	Qubit int
}

// Correction — набор корректирующих операторов, отсортированный по кубитам.
type Correction []PauliCorrection

// String возвращает текстовое описание коррекции.
func (c Correction) String() string {
	if len(c) == 0 {
		return "Correction(identity)"
	}
	parts := make([]string, len(c))
	for i, p := range c {
		parts[i] = fmt.Sprintf("%s%d", p.Type, p.Qubit)
	}
	return "Correction{" + strings.Join(parts, ", ") + "}"
}

// AsErrors переводит коррекцию в список ошибок Паули: применение коррекции
// поверх ошибки должно обнулять синдром.
func (c Correction) AsErrors() []PauliError {
	out := make([]PauliError, len(c))
	for i, p := range c {
		out[i] = PauliError{Type: p.Type, Qubit: p.Qubit}
	}
	return out
}

// Decoder восстанавливает коррекцию по синдрому поверхностного кода.
type Decoder interface {
	// Decode возвращает коррекцию для синдрома. Пустой синдром дает пустую
	// коррекцию без ошибки.
	Decode(code *SurfaceCode, s *Syndrome) (Correction, error)

	// Name возвращает имя декодера.
	Name() string

	// Description возвращает краткое описание алгоритма.
	Description() string
}

// splitSyndrome делит сработавшие стабилизаторы на X- и Z-группы плакетов.
func splitSyndrome(code *SurfaceCode, s *Syndrome) (xs, zs []Plaquette, err error) {
	if s.NumStabilizers() != code.NumAncillaQubits() {
		return nil, nil, fmt.Errorf("%w: синдром на %d стабилизаторах, код несет %d", ErrInvalidStabilizer, s.NumStabilizers(), code.NumAncillaQubits())
	}
	for _, i := range s.Triggered() {
		p, perr := code.Plaquette(i)
		if perr != nil {
			return nil, nil, perr
		}
		if p.Type == StabilizerX {
			xs = append(xs, p)
		} else {
			zs = append(zs, p)
		}
	}
	return xs, zs, nil
}

// collectFlips собирает цепочки пар в коррекцию: кубит входит в результат,
// если суммарно перевернут нечетное число раз.
func collectFlips(chains [][]int, t PauliType) Correction {
	parity := make(map[int]int)
	for _, chain := range chains {
		for _, q := range chain {
			parity[q]++
		}
	}
	var out Correction
	for q, count := range parity {
		if count%2 == 1 {
			out = append(out, PauliCorrection{Type: t, Qubit: q})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Qubit < out[j].Qubit })
	return out
}

// mergeCorrections объединяет коррекции двух групп в один отсортированный
// список.
func mergeCorrections(a, b Correction) Correction {
	out := append(Correction{}, a...)
	out = append(out, b...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Qubit != out[j].Qubit {
			return out[i].Qubit < out[j].Qubit
		}
		return out[i].Type < out[j].Type
	})
	return out
}
