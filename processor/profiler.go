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
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// OperationStats содержит статистику по операции
type OperationStats struct {
	Count        int64
	TotalTime    time.Duration
	MinTime      time.Duration
	MaxTime      time.Duration
	AvgTime      time.Duration
	LastCallTime time.Time
}

// Span — открытая операция профайлера. Каждый Start выдает свой Span,
// поэтому одноименные операции из параллельных горутин не мешают друг
// другу.
type Span struct {
	name    string
	started time.Time
}

// Profiler накапливает тайминги именованных операций процессора.
type Profiler struct {
	// Статистика по завершенным операциям
	stats map[string]*OperationStats

	mutex   sync.Mutex
	enabled bool
}

// NewProfiler создает новый профайлер
func NewProfiler() *Profiler {
	return &Profiler{
		stats:   make(map[string]*OperationStats),
		enabled: true,
	}
}

// Start отмечает начало операции. При выключенном профайлере возвращает
// nil, который End молча принимает.
func (p *Profiler) Start(name string) *Span {
	if !p.IsEnabled() {
		return nil
	}
	return &Span{name: name, started: time.Now()}
}

// End закрывает операцию и обновляет статистику. Возвращает длительность;
// для nil возвращается ноль.
func (p *Profiler) End(sp *Span) time.Duration {
	if sp == nil || !p.IsEnabled() {
		return 0
	}

	now := time.Now()
	duration := now.Sub(sp.started)
	name := sp.name

	p.mutex.Lock()
	defer p.mutex.Unlock()

	stats, ok := p.stats[name]
	if !ok {
		stats = &OperationStats{MinTime: duration, MaxTime: duration}
		p.stats[name] = stats
	}

	stats.Count++
	stats.TotalTime += duration
	if duration < stats.MinTime {
		stats.MinTime = duration
	}
	if duration > stats.MaxTime {
		stats.MaxTime = duration
	}
	stats.AvgTime = time.Duration(stats.TotalTime.Nanoseconds() / stats.Count)
	stats.LastCallTime = now

	return duration
}

// Stats возвращает статистику по конкретной операции или nil, если операция
// ни разу не завершалась.
func (p *Profiler) Stats(name string) *OperationStats {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	stats, ok := p.stats[name]
	if !ok {
		return nil
	}
	statsCopy := *stats
	return &statsCopy
}

// AllStats возвращает статистику по всем операциям
func (p *Profiler) AllStats() map[string]*OperationStats {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	result := make(map[string]*OperationStats, len(p.stats))
	for name, stats := range p.stats {
		statsCopy := *stats
		result[name] = &statsCopy
	}
	return result
}

// Reset сбрасывает всю статистику
func (p *Profiler) Reset() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.stats = make(map[string]*OperationStats)
}

// Enable включает профайлер
func (p *Profiler) Enable() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.enabled = true
}

// Disable выключает профайлер
func (p *Profiler) Disable() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.enabled = false
}

// IsEnabled возвращает текущий статус профайлера
func (p *Profiler) IsEnabled() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.enabled
}

// LogStatistics выводит накопленную статистику в лог
func (p *Profiler) LogStatistics() {
	for name, stats := range p.AllStats() {
		log.Info("статистика операции",
			"операция", name,
			"вызовов", stats.Count,
			"общее_время", stats.TotalTime,
			"мин", stats.MinTime,
			"макс", stats.MaxTime,
			"сред", stats.AvgTime)
	}
}
