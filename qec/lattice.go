// Package qec реализует поверхностный код на повернутой решетке: геометрию
// стабилизаторов, извлечение синдрома и декодеры (MWPM и Union-Find).
//
// Кубиты данных занимают узлы (r, c) решетки d x d, анцилла-плакеты —
// позиции (pr, pc) сетки (d+1) x (d+1) без углов. Внутренние плакеты
// раскрашены в шахматном порядке (X-тип при четной сумме pr+pc), верхняя и
// нижняя границы несут только X-плакеты, левая и правая — только Z-плакеты.
// Такая раскладка дает ровно d²-1 анцилл, по (d²-1)/2 каждого типа.
package qec

import (
	"errors"
	"fmt"

	"github.com/omniq-dev/omniq/circuit"
	"github.com/omniq-dev/omniq/quantum"
)

var (
	// ErrInvalidDistance ошибка, возникающая при недопустимом кодовом расстоянии
	ErrInvalidDistance = errors.New("кодовое расстояние должно быть нечетным и не меньше 3")

	// ErrInvalidStabilizer ошибка, возникающая при индексе стабилизатора вне решетки
	ErrInvalidStabilizer = errors.New("индекс стабилизатора выходит за пределы решетки")

	// ErrInvalidDataQubit ошибка, возникающая при индексе кубита данных вне решетки
	ErrInvalidDataQubit = errors.New("индекс кубита данных выходит за пределы решетки")

	// ErrDecodeFailure ошибка, возникающая когда декодер не смог построить коррекцию
	ErrDecodeFailure = errors.New("декодер не смог построить коррекцию")
)

// StabilizerType различает X- и Z-стабилизаторы.
type StabilizerType int

const (
	StabilizerX StabilizerType = iota
	StabilizerZ
)

func (t StabilizerType) String() string {
	if t == StabilizerX {
		return "X"
	}
	return "Z"
}

// Plaquette — один стабилизатор решетки: позиция на сетке анцилл, тип и
// кубиты данных в носителе (2 на границе, 4 внутри).
type Plaquette struct {
	Row     int
	Col     int
	Type    StabilizerType
	Support []int
}

// SurfaceCode описывает повернутый поверхностный код расстояния d.
type SurfaceCode struct {
	distance   int
	plaquettes []Plaquette // сначала все X, затем все Z
	numX       int
}

// NewSurfaceCode строит решетку поверхностного кода расстояния d (нечетное,
// d >= 3).
func NewSurfaceCode(d int) (*SurfaceCode, error) {
	if d < 3 || d%2 == 0 {
		return nil, fmt.Errorf("%w: d = %d", ErrInvalidDistance, d)
	}

	sc := &SurfaceCode{distance: d}

	var xs, zs []Plaquette
	for pr := 0; pr <= d; pr++ {
		for pc := 0; pc <= d; pc++ {
			onRowEdge := pr == 0 || pr == d
			onColEdge := pc == 0 || pc == d
			if onRowEdge && onColEdge {
				continue // углы сетки не несут стабилизаторов
			}
			xType := (pr+pc)%2 == 0
			if onRowEdge && !xType {
				continue // верх и низ несут только X-плакеты
			}
			if onColEdge && xType {
				continue // лево и право несут только Z-плакеты
			}

			p := Plaquette{Row: pr, Col: pc}
			if xType {
				p.Type = StabilizerX
			} else {
				p.Type = StabilizerZ
			}
			for _, corner := range [][2]int{{pr - 1, pc - 1}, {pr - 1, pc}, {pr, pc - 1}, {pr, pc}} {
				r, c := corner[0], corner[1]
				if r >= 0 && r < d && c >= 0 && c < d {
					p.Support = append(p.Support, r*d+c)
				}
			}
			if xType {
				xs = append(xs, p)
			} else {
				zs = append(zs, p)
			}
		}
	}

	sc.numX = len(xs)
	sc.plaquettes = append(xs, zs...)
	return sc, nil
}

// Distance возвращает кодовое расстояние.
func (sc *SurfaceCode) Distance() int { return sc.distance }

// NumDataQubits возвращает количество кубитов данных (d²).
func (sc *SurfaceCode) NumDataQubits() int { return sc.distance * sc.distance }

// NumAncillaQubits возвращает количество анцилл (d²-1).
func (sc *SurfaceCode) NumAncillaQubits() int { return len(sc.plaquettes) }

// TotalQubits возвращает общее число кубитов: данные плюс анциллы.
func (sc *SurfaceCode) TotalQubits() int { return sc.NumDataQubits() + sc.NumAncillaQubits() }

// NumXStabilizers возвращает количество X-стабилизаторов.
func (sc *SurfaceCode) NumXStabilizers() int { return sc.numX }

// NumZStabilizers возвращает количество Z-стабилизаторов.
func (sc *SurfaceCode) NumZStabilizers() int { return len(sc.plaquettes) - sc.numX }

// Plaquettes возвращает копию списка стабилизаторов: сначала X, затем Z.
// Индекс в этом списке совпадает с индексом бита синдрома.
func (sc *SurfaceCode) Plaquettes() []Plaquette {
	out := make([]Plaquette, len(sc.plaquettes))
	copy(out, sc.plaquettes)
	return out
}

// Plaquette возвращает стабилизатор по индексу синдрома.
func (sc *SurfaceCode) Plaquette(i int) (Plaquette, error) {
	if i < 0 || i >= len(sc.plaquettes) {
		return Plaquette{}, fmt.Errorf("%w: %d при %d стабилизаторах", ErrInvalidStabilizer, i, len(sc.plaquettes))
	}
	return sc.plaquettes[i], nil
}

// DataQubitAt возвращает индекс кубита данных в узле (r, c).
func (sc *SurfaceCode) DataQubitAt(r, c int) (int, error) {
	if r < 0 || r >= sc.distance || c < 0 || c >= sc.distance {
		return -1, fmt.Errorf("%w: узел (%d, %d) при d = %d", ErrInvalidDataQubit, r, c, sc.distance)
	}
	return r*sc.distance + c, nil
}

// PrepareLogicalZero возвращает состояние |0...0⟩ на кубитах данных: оно
// является +1-собственным для всех Z-стабилизаторов кода.
func (sc *SurfaceCode) PrepareLogicalZero() (*quantum.Statevector, error) {
	return quantum.NewStatevector(sc.NumDataQubits())
}

// StabilizerCircuit строит схему измерения одного стабилизатора через его
// анциллу: Z-плакет собирает четность CNOT-ами с данных на анциллу,
// X-плакет обрамляет CNOT-ы с анциллы на данные вентилями Адамара.
// Анцилла стабилизатора i занимает кубит d²+i.
func (sc *SurfaceCode) StabilizerCircuit(i int) (*circuit.Circuit, error) {
	p, err := sc.Plaquette(i)
	if err != nil {
		return nil, err
	}
	c, err := circuit.New(sc.TotalQubits(), sc.NumAncillaQubits())
	if err != nil {
		return nil, err
	}
	ancilla := sc.NumDataQubits() + i
	if p.Type == StabilizerX {
		if err := c.AddH(ancilla); err != nil {
			return nil, err
		}
		for _, q := range p.Support {
			if err := c.AddCNOT(ancilla, q); err != nil {
				return nil, err
			}
		}
		if err := c.AddH(ancilla); err != nil {
			return nil, err
		}
	} else {
		for _, q := range p.Support {
			if err := c.AddCNOT(q, ancilla); err != nil {
				return nil, err
			}
		}
	}
	if err := c.AddMeasurement(ancilla); err != nil {
		return nil, err
	}
	return c, nil
}

// SyndromeCircuit строит схему полного раунда измерения синдрома: все
// стабилизаторы по порядку индексов.
func (sc *SurfaceCode) SyndromeCircuit() (*circuit.Circuit, error) {
	full, err := circuit.New(sc.TotalQubits(), sc.NumAncillaQubits())
	if err != nil {
		return nil, err
	}
	for i := range sc.plaquettes {
		part, err := sc.StabilizerCircuit(i)
		if err != nil {
			return nil, err
		}
		if err := full.Compose(part); err != nil {
			return nil, err
		}
	}
	return full, nil
}

// graphDistance возвращает расстояние между одноплакетными вершинами графа
// согласования: цепочка ошибок из шагов по диагонали, длина max(|Δr|, |Δc|).
func graphDistance(a, b Plaquette) int {
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	if dr > dc {
		return dr
	}
	return dc
}

// boundaryDistance возвращает длину кратчайшей цепочки от плакета до
// поглощающей границы его типа: строки для Z (цепочки X-ошибок обрываются
// сверху и снизу), столбцы для X.
func (sc *SurfaceCode) boundaryDistance(p Plaquette) int {
	var coord int
	if p.Type == StabilizerZ {
		coord = p.Row
	} else {
		coord = p.Col
	}
	if other := sc.distance - coord; other < coord {
		return other
	}
	return coord
}

// stepData возвращает кубит данных, общий для плакетов (pr, pc) и
// (pr+dr, pc+dc) при диагональном шаге.
func (sc *SurfaceCode) stepData(pr, pc, dr, dc int) int {
	r, c := pr, pc
	if dr < 0 {
		r--
	}
	if dc < 0 {
		c--
	}
	return r*sc.distance + c
}

// chainBetween возвращает кубиты данных кратчайшей цепочки между двумя
// плакетами одного типа. Ходы выбираются детерминированно.
func (sc *SurfaceCode) chainBetween(a, b Plaquette) []int {
	var chain []int
	pr, pc := a.Row, a.Col
	for pr != b.Row || pc != b.Col {
		dr := sign(b.Row - pr)
		if dr == 0 {
			if pr < sc.distance {
				dr = 1
			} else {
				dr = -1
			}
		}
		dc := sign(b.Col - pc)
		if dc == 0 {
			if pc < sc.distance {
				dc = 1
			} else {
				dc = -1
			}
		}
		chain = append(chain, sc.stepData(pr, pc, dr, dc))
		pr += dr
		pc += dc
	}
	return chain
}

// chainToBoundary возвращает кубиты данных кратчайшей цепочки от плакета до
// ближайшей поглощающей границы его типа.
func (sc *SurfaceCode) chainToBoundary(p Plaquette) []int {
	var chain []int
	pr, pc := p.Row, p.Col
	steps := sc.boundaryDistance(p)

	if p.Type == StabilizerZ {
		dr := -1
		if sc.distance-pr < pr {
			dr = 1
		}
		for s := 0; s < steps; s++ {
			dc := 1
			if pc == sc.distance {
				dc = -1
			}
			chain = append(chain, sc.stepData(pr, pc, dr, dc))
			pr += dr
			pc += dc
		}
		return chain
	}

	dc := -1
	if sc.distance-pc < pc {
		dc = 1
	}
	for s := 0; s < steps; s++ {
		dr := 1
		if pr == sc.distance {
			dr = -1
		}
		chain = append(chain, sc.stepData(pr, pc, dr, dc))
		pr += dr
		pc += dc
	}
	return chain
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
