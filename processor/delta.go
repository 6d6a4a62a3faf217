// Copyright 2023 The go-ethereum Authors
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

package processor

import (
	"errors"
	"fmt"
	"math/cmplx"
	"sync"
)

var (
	// ErrEmptyHistory ошибка, возникающая при обращении к истории без базового состояния
	ErrEmptyHistory = errors.New("история состояний пуста")

	// ErrHistoryIndex ошибка, возникающая при индексе за пределами истории
	ErrHistoryIndex = errors.New("индекс за пределами истории состояний")
)

// deltaFrame хранит изменения одного шага относительно предыдущего состояния:
// индексы затронутых амплитуд и их приращения.
type deltaFrame struct {
	indices []int
	deltas  []complex128
}

// History хранит траекторию вектора состояния в дельта-сжатом виде: полное
// базовое состояние и покадровые приращения амплитуд. При нулевом пороге
// восстановление точное; положительный порог отбрасывает приращения с
// модулем не выше порога и экономит память ценой точности.
type History struct {
	base      []complex128
	last      []complex128
	frames    []deltaFrame
	threshold float64
	mutex     sync.RWMutex
}

// NewHistory создает историю с заданным базовым состоянием. Порог меньше
// нуля трактуется как ноль.
func NewHistory(base []complex128, threshold float64) *History {
	if threshold < 0 {
		threshold = 0
	}
	h := &History{threshold: threshold}
	if base != nil {
		h.base = append([]complex128{}, base...)
		h.last = append([]complex128{}, base...)
	}
	return h
}

// Push добавляет следующее состояние траектории, сохраняя только дельту
// относительно предыдущего.
func (h *History) Push(state []complex128) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.base == nil {
		h.base = append([]complex128{}, state...)
		h.last = append([]complex128{}, state...)
		return nil
	}
	if len(state) != len(h.last) {
		return fmt.Errorf("%w: состояние длины %d при базе %d", ErrHistoryIndex, len(state), len(h.last))
	}

	var frame deltaFrame
	for i, a := range state {
		delta := a - h.last[i]
		if cmplx.Abs(delta) > h.threshold {
			frame.indices = append(frame.indices, i)
			frame.deltas = append(frame.deltas, delta)
		}
	}
	h.frames = append(h.frames, frame)
	copy(h.last, state)
	return nil
}

// StateAt восстанавливает состояние после index шагов: 0 отвечает базовому
// состоянию, Len()-1 последнему сохраненному.
func (h *History) StateAt(index int) ([]complex128, error) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.base == nil {
		return nil, ErrEmptyHistory
	}
	if index < 0 || index > len(h.frames) {
		return nil, fmt.Errorf("%w: %d при %d кадрах", ErrHistoryIndex, index, len(h.frames))
	}

	result := append([]complex128{}, h.base...)
	for i := 0; i < index; i++ {
		frame := h.frames[i]
		for j, idx := range frame.indices {
			result[idx] += frame.deltas[j]
		}
	}
	return result, nil
}

// Last возвращает копию последнего сохраненного состояния.
func (h *History) Last() ([]complex128, error) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.last == nil {
		return nil, ErrEmptyHistory
	}
	return append([]complex128{}, h.last...), nil
}

// Len возвращает длину траектории, включая базовое состояние.
func (h *History) Len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.base == nil {
		return 0
	}
	return len(h.frames) + 1
}

// Truncate отбрасывает хвост траектории, оставляя n состояний. Используется
// при повторном выполнении после отката.
func (h *History) Truncate(n int) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.base == nil {
		return ErrEmptyHistory
	}
	if n < 1 || n > len(h.frames)+1 {
		return fmt.Errorf("%w: усечение до %d при %d состояниях", ErrHistoryIndex, n, len(h.frames)+1)
	}
	h.frames = h.frames[:n-1]

	// Восстанавливаем last по оставшимся кадрам
	copy(h.last, h.base)
	for _, frame := range h.frames {
		for j, idx := range frame.indices {
			h.last[idx] += frame.deltas[j]
		}
	}
	return nil
}

// Reset сбрасывает историю до пустой.
func (h *History) Reset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.base = nil
	h.last = nil
	h.frames = nil
}

// CompressionRatio возвращает отношение числа сохраненных приращений к
// полному размеру траектории без сжатия.
func (h *History) CompressionRatio() float64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if len(h.frames) == 0 || len(h.base) == 0 {
		return 1.0
	}
	total := len(h.base) * len(h.frames)
	stored := 0
	for _, frame := range h.frames {
		stored += len(frame.indices)
	}
	return float64(stored) / float64(total)
}
