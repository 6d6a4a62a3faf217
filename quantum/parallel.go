// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package quantum

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelThreshold — минимальный размер состояния, начиная с которого
// вентильные ядра распараллеливаются. Ниже порога накладные расходы на
// горутины превышают выигрыш.
const parallelThreshold = 1 << 16

// kernelWorkers возвращает количество воркеров для параллельных ядер.
func kernelWorkers() int {
	return runtime.NumCPU()
}

// insertBit вставляет нулевой бит в позицию pos компактного индекса k,
// превращая индекс пары в индекс амплитуды с pos-битом, равным нулю.
func insertBit(k, pos int) int {
	low := k & ((1 << pos) - 1)
	high := k &^ ((1 << pos) - 1)
	return (high << 1) | low
}

// forEachPair вызывает f для каждой пары индексов (i0, i1), отличающихся
// только битом qubit (i0 с нулевым битом). Пары не пересекаются, поэтому
// обработка чанков идет параллельно без синхронизации.
func (s *Statevector) forEachPair(qubit int, f func(i0, i1 int)) {
	mask := 1 << qubit
	pairs := len(s.amps) >> 1

	if len(s.amps) < parallelThreshold {
		for k := 0; k < pairs; k++ {
			i0 := insertBit(k, qubit)
			f(i0, i0|mask)
		}
		return
	}

	workers := kernelWorkers()
	chunk := (pairs + workers - 1) / workers
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > pairs {
			end = pairs
		}
		if start >= end {
			break
		}
		g.Go(func() error {
			for k := start; k < end; k++ {
				i0 := insertBit(k, qubit)
				f(i0, i0|mask)
			}
			return nil
		})
	}
	// Воркеры не возвращают ошибок, Wait нужен только как барьер.
	_ = g.Wait()
}

// forEachIndex вызывает f для каждого индекса амплитуды. Ядро само отвечает
// за то, что записи разных вызовов f не пересекаются.
func (s *Statevector) forEachIndex(f func(i int)) {
	n := len(s.amps)
	if n < parallelThreshold {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	workers := kernelWorkers()
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				f(i)
			}
			return nil
		})
	}
	_ = g.Wait()
}
