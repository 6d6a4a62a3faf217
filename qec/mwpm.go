package qec

import (
	"math"
)

// maxExactNodes — порог точного согласования перебором подмножеств: выше
// него MWPM переключается на жадное паросочетание.
const maxExactNodes = 16

// MWPMDecoder — декодер согласования минимального веса. Сработавшие плакеты
// каждого типа сочетаются друг с другом или с виртуальной границей так,
// чтобы суммарная длина цепочек была минимальной; для групп до maxExactNodes
// вершин решение точное (динамика по подмножествам), дальше жадное.
type MWPMDecoder struct{}

// NewMWPMDecoder создает декодер согласования минимального веса.
func NewMWPMDecoder() *MWPMDecoder { return &MWPMDecoder{} }

// Name возвращает имя декодера.
func (d *MWPMDecoder) Name() string { return "mwpm" }

// Description возвращает краткое описание алгоритма.
func (d *MWPMDecoder) Description() string {
	return "согласование минимального веса по сработавшим плакетам и виртуальной границе"
}

// Decode строит коррекцию: цепочки X-ошибок для Z-плакетов и цепочки
// Z-ошибок для X-плакетов.
func (d *MWPMDecoder) Decode(code *SurfaceCode, s *Syndrome) (Correction, error) {
	if s.IsEmpty() {
		return Correction{}, nil
	}
	xs, zs, err := splitSyndrome(code, s)
	if err != nil {
		return nil, err
	}

	// Z-стабилизаторы ловят X-ошибки и наоборот
	xCorr, err := d.matchGroup(code, zs, PauliX)
	if err != nil {
		return nil, err
	}
	zCorr, err := d.matchGroup(code, xs, PauliZ)
	if err != nil {
		return nil, err
	}
	return mergeCorrections(xCorr, zCorr), nil
}

// matchGroup сочетает плакеты одной группы и собирает цепочки коррекции.
func (d *MWPMDecoder) matchGroup(code *SurfaceCode, nodes []Plaquette, t PauliType) (Correction, error) {
	if len(nodes) == 0 {
		return Correction{}, nil
	}

	var pairs [][2]int // пары индексов в nodes
	var boundary []int // вершины, уходящие в границу
	if len(nodes) <= maxExactNodes {
		pairs, boundary = matchExact(code, nodes)
	} else {
		pairs, boundary = matchGreedy(code, nodes)
	}

	var chains [][]int
	for _, pr := range pairs {
		chains = append(chains, code.chainBetween(nodes[pr[0]], nodes[pr[1]]))
	}
	for _, i := range boundary {
		chains = append(chains, code.chainToBoundary(nodes[i]))
	}
	return collectFlips(chains, t), nil
}

// matchExact решает согласование минимального веса динамикой по
// подмножествам: младшая вершина множества сочетается либо с границей, либо
// с каждым из партнеров. Перебор партнеров по возрастанию индекса со строгим
// сравнением делает результат детерминированным.
func matchExact(code *SurfaceCode, nodes []Plaquette) (pairs [][2]int, boundary []int) {
	n := len(nodes)
	size := 1 << n
	cost := make([]float64, size)
	choice := make([]int, size) // партнер младшей вершины, -1 для границы
	for mask := 1; mask < size; mask++ {
		low := 0
		for m := mask; m&1 == 0; m >>= 1 {
			low++
		}
		rest := mask &^ (1 << low)

		best := float64(code.boundaryDistance(nodes[low])) + cost[rest]
		bestPartner := -1
		for j := low + 1; j < n; j++ {
			if rest&(1<<j) == 0 {
				continue
			}
			c := float64(graphDistance(nodes[low], nodes[j])) + cost[rest&^(1<<j)]
			if c < best {
				best = c
				bestPartner = j
			}
		}
		cost[mask] = best
		choice[mask] = bestPartner
	}

	for mask := size - 1; mask > 0; {
		low := 0
		for m := mask; m&1 == 0; m >>= 1 {
			low++
		}
		partner := choice[mask]
		if partner < 0 {
			boundary = append(boundary, low)
			mask &^= 1 << low
		} else {
			pairs = append(pairs, [2]int{low, partner})
			mask &^= (1 << low) | (1 << partner)
		}
	}
	return pairs, boundary
}

// matchGreedy — резервное паросочетание для больших групп: младшая
// несогласованная вершина получает ближайший вариант, при равенстве
// предпочитается граница, затем меньший индекс.
func matchGreedy(code *SurfaceCode, nodes []Plaquette) (pairs [][2]int, boundary []int) {
	n := len(nodes)
	used := make([]bool, n)
	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		used[i] = true
		best := math.Inf(1)
		bestPartner := -1
		if bd := float64(code.boundaryDistance(nodes[i])); bd < best {
			best = bd
		}
		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if c := float64(graphDistance(nodes[i], nodes[j])); c < best {
				best = c
				bestPartner = j
			}
		}
		if bestPartner < 0 {
			boundary = append(boundary, i)
		} else {
			used[bestPartner] = true
			pairs = append(pairs, [2]int{i, bestPartner})
		}
	}
	return pairs, boundary
}
