package processor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/omniq-dev/omniq/circuit"
	"github.com/omniq-dev/omniq/quantum"
)

const (
	// MaxBatchWorkers ограничивает параллельность батч-раннера
	MaxBatchWorkers = 128

	// DefaultBatchTimeout — таймаут обработки батча
	DefaultBatchTimeout = 300 * time.Second
)

var (
	// ErrBatchEmpty ошибка, возникающая при пустом батче схем
	ErrBatchEmpty = errors.New("пустой батч схем")

	// ErrBatchTimeout ошибка, возникающая при прерывании батча по контексту
	ErrBatchTimeout = errors.New("обработка батча прервана")

	// ErrSamplingUnsupported ошибка, возникающая при сэмплировании на бэкенде без амплитуд
	ErrSamplingUnsupported = errors.New("сэмплирование доступно только для вектора состояния")
)

// BatchStats содержит статистику обработки батча
type BatchStats struct {
	BatchSize uint64
	Completed uint64
	Failed    uint64
	Elapsed   time.Duration
	PerSecond float64
}

// BatchRunner прогоняет наборы схем параллельно. Каждый прогон получает
// свое зерно генератора, результаты детерминированы при фиксированном
// зерне процессора.
type BatchRunner struct {
	proc         *Processor
	workers      int
	mutex        sync.Mutex
	lastStats    BatchStats
	totalBatches atomic.Uint64
}

// NewBatchRunner создает батч-раннер. При workers <= 0 берется число
// логических ядер, но не больше MaxBatchWorkers.
func NewBatchRunner(proc *Processor, workers int) *BatchRunner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > MaxBatchWorkers {
		workers = MaxBatchWorkers
	}
	return &BatchRunner{proc: proc, workers: workers}
}

// Workers возвращает параллельность раннера.
func (b *BatchRunner) Workers() int {
	return b.workers
}

// LastStats возвращает статистику последнего батча.
func (b *BatchRunner) LastStats() BatchStats {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.lastStats
}

// TotalBatches возвращает число обработанных батчей.
func (b *BatchRunner) TotalBatches() uint64 {
	return b.totalBatches.Load()
}

// Run прогоняет батч схем. Результаты возвращаются в порядке схем; для
// схемы с ошибкой соответствующий элемент nil, ошибки считаются в
// статистике. Прерывание контекста возвращает ErrBatchTimeout.
func (b *BatchRunner) Run(ctx context.Context, circuits []*circuit.Circuit) ([]*Result, error) {
	if len(circuits) == 0 {
		return nil, ErrBatchEmpty
	}

	batchID := b.totalBatches.Add(1)
	log.Debug("начало обработки батча",
		"батч", batchID,
		"схем", len(circuits),
		"воркеров", b.workers)

	started := time.Now()
	results := make([]*Result, len(circuits))
	var completed, failed atomic.Uint64

	sem := semaphore.NewWeighted(int64(b.workers))
	var wg sync.WaitGroup
	for i, c := range circuits {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("%w: %v", ErrBatchTimeout, err)
		}
		wg.Add(1)
		go func(i int, c *circuit.Circuit) {
			defer wg.Done()
			defer sem.Release(1)

			res, err := b.proc.run(c, b.proc.seed+int64(i))
			if err != nil {
				failed.Add(1)
				log.Warn("схема батча завершилась ошибкой", "батч", batchID, "схема", i, "ошибка", err)
				return
			}
			results[i] = res
			completed.Add(1)
		}(i, c)
	}
	wg.Wait()

	stats := BatchStats{
		BatchSize: uint64(len(circuits)),
		Completed: completed.Load(),
		Failed:    failed.Load(),
		Elapsed:   time.Since(started),
	}
	if stats.Elapsed.Seconds() > 0 {
		stats.PerSecond = float64(stats.Completed) / stats.Elapsed.Seconds()
	}

	b.mutex.Lock()
	b.lastStats = stats
	b.mutex.Unlock()

	log.Debug("батч обработан",
		"батч", batchID,
		"успешно", stats.Completed,
		"с_ошибками", stats.Failed,
		"время", stats.Elapsed)

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("%w: %v", ErrBatchTimeout, err)
	}
	return results, nil
}

// Sample выполняет схему shots раз на векторе состояния и возвращает
// гистограмму итоговых битовых строк. Прогоны независимы, зерно каждого
// выводится из зерна процессора и номера прогона.
func (b *BatchRunner) Sample(ctx context.Context, c *circuit.Circuit, shots int) (map[uint64]int, error) {
	if b.proc.backend != BackendStatevector {
		return nil, fmt.Errorf("%w: %q", ErrSamplingUnsupported, b.proc.backend)
	}
	if shots <= 0 {
		return nil, fmt.Errorf("%w: %d прогонов", ErrBatchEmpty, shots)
	}

	counts := make(map[uint64]int)
	var (
		mutex    sync.Mutex
		firstErr error
	)

	sem := semaphore.NewWeighted(int64(b.workers))
	var wg sync.WaitGroup
	for shot := 0; shot < shots; shot++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("%w: %v", ErrBatchTimeout, err)
		}
		wg.Add(1)
		go func(shot int) {
			defer wg.Done()
			defer sem.Release(1)

			rng := rand.New(rand.NewSource(b.proc.seed + int64(shot)))
			exec := quantum.NewExecutorWithSource(rng)
			state, err := exec.Execute(c, nil)
			if err == nil {
				var bits uint64
				if bits, err = state.MeasureAll(rng); err == nil {
					mutex.Lock()
					counts[bits]++
					mutex.Unlock()
					return
				}
			}

			mutex.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mutex.Unlock()
		}(shot)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return counts, nil
}
