package qec

import (
	"fmt"
	"sort"
)

// UnionFindDecoder — почти линейный декодер растущих кластеров: вокруг
// каждого сработавшего плакета растет область единичными шагами за раунд,
// соприкоснувшиеся области сливаются системой непересекающихся множеств.
// Кластер перестает расти, когда несет четное число срабатываний или
// коснулся поглощающей границы. Если за d раундов условие не достигнуто,
// декодирование считается проваленным.
type UnionFindDecoder struct{}

// NewUnionFindDecoder создает декодер растущих кластеров.
func NewUnionFindDecoder() *UnionFindDecoder { return &UnionFindDecoder{} }

// Name возвращает имя декодера.
func (d *UnionFindDecoder) Name() string { return "union-find" }

// Description возвращает краткое описание алгоритма.
func (d *UnionFindDecoder) Description() string {
	return "растущие кластеры над системой непересекающихся множеств"
}

// Decode строит коррекцию по синдрому.
func (d *UnionFindDecoder) Decode(code *SurfaceCode, s *Syndrome) (Correction, error) {
	if s.IsEmpty() {
		return Correction{}, nil
	}
	xs, zs, err := splitSyndrome(code, s)
	if err != nil {
		return nil, err
	}

	xCorr, err := d.clusterGroup(code, zs, PauliX)
	if err != nil {
		return nil, err
	}
	zCorr, err := d.clusterGroup(code, xs, PauliZ)
	if err != nil {
		return nil, err
	}
	return mergeCorrections(xCorr, zCorr), nil
}

// dsu — система непересекающихся множеств со сжатием путей.
type dsu struct {
	parent []int
}

func newDSU(n int) *dsu {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &dsu{parent: p}
}

func (u *dsu) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *dsu) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	// Меньший индекс становится корнем, слияния детерминированы
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}

// clusterGroup растит кластеры одной группы плакетов до выполнения условий
// останова и переводит каждый кластер в цепочки коррекции.
func (d *UnionFindDecoder) clusterGroup(code *SurfaceCode, nodes []Plaquette, t PauliType) (Correction, error) {
	n := len(nodes)
	if n == 0 {
		return Correction{}, nil
	}

	u := newDSU(n)
	touches := make([]bool, n) // по корню: кластер коснулся границы

	satisfied := func() bool {
		sizes := make(map[int]int)
		for i := 0; i < n; i++ {
			sizes[u.find(i)]++
		}
		for root, size := range sizes {
			if size%2 != 0 && !touches[u.find(root)] {
				return false
			}
		}
		return true
	}

	grown := false
	for radius := 1; radius <= code.Distance(); radius++ {
		if satisfied() {
			grown = true
			break
		}
		// Радиусы растут на единицу за раунд: области пересекаются, когда
		// сумма радиусов достигает расстояния между вершинами
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if graphDistance(nodes[i], nodes[j]) <= 2*radius {
					u.union(i, j)
				}
			}
			if code.boundaryDistance(nodes[i]) <= radius {
				touches[u.find(i)] = true
			}
		}
		// Слияние могло перевесить отметку границы на новый корень
		for i := 0; i < n; i++ {
			if touches[i] {
				touches[u.find(i)] = true
			}
		}
	}
	if !grown && !satisfied() {
		return nil, fmt.Errorf("%w: кластеры не замкнулись за %d раундов", ErrDecodeFailure, code.Distance())
	}

	// Сбор кластеров в детерминированном порядке
	clusters := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := u.find(i)
		clusters[root] = append(clusters[root], i)
	}
	roots := make([]int, 0, len(clusters))
	for root := range clusters {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	var chains [][]int
	for _, root := range roots {
		members := clusters[root]
		sort.Ints(members)

		if len(members)%2 == 1 {
			// Нечетный кластер отправляет в границу вершину с кратчайшим
			// выходом, остальные сочетаются последовательно
			exit := 0
			for k := 1; k < len(members); k++ {
				if code.boundaryDistance(nodes[members[k]]) < code.boundaryDistance(nodes[members[exit]]) {
					exit = k
				}
			}
			chains = append(chains, code.chainToBoundary(nodes[members[exit]]))
			members = append(members[:exit], members[exit+1:]...)
		}
		for k := 0; k+1 < len(members); k += 2 {
			chains = append(chains, code.chainBetween(nodes[members[k]], nodes[members[k+1]]))
		}
	}
	return collectFlips(chains, t), nil
}
