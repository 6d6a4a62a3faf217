// Package noise реализует модели шума через операторы Крауса: деполяризация,
// амплитудное и фазовое затухание, произвольные одно-кубитные каналы, а также
// модель устройства с ошибкой считывания и загрузкой калибровки из YAML.
package noise

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// epsilon — допуск проверки полноты операторов Крауса.
const epsilon = 1e-9

var (
	// ErrInvalidProbability ошибка, возникающая при вероятности вне [0, 1]
	ErrInvalidProbability = errors.New("вероятность должна лежать в диапазоне [0, 1]")

	// ErrInvalidTime ошибка, возникающая при неположительном времени релаксации
	ErrInvalidTime = errors.New("время релаксации должно быть положительным")

	// ErrNotCPTP ошибка, возникающая когда операторы Крауса не образуют канал
	ErrNotCPTP = errors.New("операторы Крауса не удовлетворяют условию полноты")

	// ErrEmptyChannel ошибка, возникающая при канале без операторов
	ErrEmptyChannel = errors.New("канал не содержит операторов Крауса")
)

// Kraus — оператор Крауса одно-кубитного канала, матрица 2x2.
type Kraus [2][2]complex128

// Kind идентифицирует тип канала шума.
type Kind string

const (
	KindDepolarizing     Kind = "depolarizing"
	KindAmplitudeDamping Kind = "amplitude_damping"
	KindPhaseDamping     Kind = "phase_damping"
	KindCustom           Kind = "custom"
)

// Channel — одно-кубитный канал шума в представлении Крауса.
type Channel interface {
	// Kind возвращает тип канала.
	Kind() Kind

	// KrausOperators возвращает копию операторов Крауса канала.
	KrausOperators() []Kraus

	// String возвращает описание канала с параметрами.
	String() string
}

// verifyCompleteness проверяет условие Σ K†K = I.
func verifyCompleteness(ops []Kraus) error {
	if len(ops) == 0 {
		return ErrEmptyChannel
	}
	var sum [2][2]complex128
	for _, k := range ops {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				for m := 0; m < 2; m++ {
					sum[i][j] += cmplx.Conj(k[m][i]) * k[m][j]
				}
			}
		}
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := complex(0, 0)
			if i == j {
				want = complex(1, 0)
			}
			if cmplx.Abs(sum[i][j]-want) > epsilon {
				return fmt.Errorf("%w: Σ K†K[%d][%d] = %v", ErrNotCPTP, i, j, sum[i][j])
			}
		}
	}
	return nil
}

// DepolarizingChannel заменяет состояние кубита максимально смешанным с
// вероятностью p.
type DepolarizingChannel struct {
	p   float64
	ops []Kraus
}

// NewDepolarizingChannel создает деполяризующий канал с вероятностью ошибки p.
func NewDepolarizingChannel(p float64) (*DepolarizingChannel, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: p = %g", ErrInvalidProbability, p)
	}
	k0 := complex(math.Sqrt(1-p), 0)
	kp := complex(math.Sqrt(p/3), 0)
	ops := []Kraus{
		{{k0, 0}, {0, k0}},                         // √(1-p)·I
		{{0, kp}, {kp, 0}},                         // √(p/3)·X
		{{0, -kp * complex(0, 1)}, {kp * complex(0, 1), 0}}, // √(p/3)·Y
		{{kp, 0}, {0, -kp}},                        // √(p/3)·Z
	}
	if err := verifyCompleteness(ops); err != nil {
		return nil, err
	}
	return &DepolarizingChannel{p: p, ops: ops}, nil
}

// Kind возвращает тип канала.
func (c *DepolarizingChannel) Kind() Kind { return KindDepolarizing }

// Probability возвращает вероятность ошибки.
func (c *DepolarizingChannel) Probability() float64 { return c.p }

// KrausOperators возвращает копию операторов Крауса канала.
func (c *DepolarizingChannel) KrausOperators() []Kraus { return append([]Kraus{}, c.ops...) }

func (c *DepolarizingChannel) String() string {
	return fmt.Sprintf("depolarizing(p=%g)", c.p)
}

// AmplitudeDampingChannel моделирует релаксацию |1⟩ -> |0⟩ (потерю энергии).
type AmplitudeDampingChannel struct {
	gamma float64
	ops   []Kraus
}

// NewAmplitudeDampingChannel создает канал амплитудного затухания с
// параметром gamma.
func NewAmplitudeDampingChannel(gamma float64) (*AmplitudeDampingChannel, error) {
	if gamma < 0 || gamma > 1 {
		return nil, fmt.Errorf("%w: gamma = %g", ErrInvalidProbability, gamma)
	}
	ops := []Kraus{
		{{1, 0}, {0, complex(math.Sqrt(1-gamma), 0)}},
		{{0, complex(math.Sqrt(gamma), 0)}, {0, 0}},
	}
	if err := verifyCompleteness(ops); err != nil {
		return nil, err
	}
	return &AmplitudeDampingChannel{gamma: gamma, ops: ops}, nil
}

// AmplitudeDampingFromT1 выводит gamma из времени релаксации T1 и
// длительности вентиля: gamma = 1 - exp(-t/T1).
func AmplitudeDampingFromT1(t1, gateTime float64) (*AmplitudeDampingChannel, error) {
	if t1 <= 0 {
		return nil, fmt.Errorf("%w: T1 = %g", ErrInvalidTime, t1)
	}
	if gateTime < 0 {
		return nil, fmt.Errorf("%w: длительность вентиля %g", ErrInvalidTime, gateTime)
	}
	return NewAmplitudeDampingChannel(1 - math.Exp(-gateTime/t1))
}

// Kind возвращает тип канала.
func (c *AmplitudeDampingChannel) Kind() Kind { return KindAmplitudeDamping }

// Gamma возвращает параметр затухания.
func (c *AmplitudeDampingChannel) Gamma() float64 { return c.gamma }

// KrausOperators возвращает копию операторов Крауса канала.
func (c *AmplitudeDampingChannel) KrausOperators() []Kraus { return append([]Kraus{}, c.ops...) }

func (c *AmplitudeDampingChannel) String() string {
	return fmt.Sprintf("amplitude_damping(gamma=%g)", c.gamma)
}

// PhaseDampingChannel моделирует потерю фазовой когерентности без потери
// энергии.
type PhaseDampingChannel struct {
	lambda float64
	ops    []Kraus
}

// NewPhaseDampingChannel создает канал фазового затухания с параметром lambda.
func NewPhaseDampingChannel(lambda float64) (*PhaseDampingChannel, error) {
	if lambda < 0 || lambda > 1 {
		return nil, fmt.Errorf("%w: lambda = %g", ErrInvalidProbability, lambda)
	}
	ops := []Kraus{
		{{complex(math.Sqrt(1-lambda), 0), 0}, {0, complex(math.Sqrt(1-lambda), 0)}},
		{{complex(math.Sqrt(lambda), 0), 0}, {0, complex(-math.Sqrt(lambda), 0)}},
	}
	if err := verifyCompleteness(ops); err != nil {
		return nil, err
	}
	return &PhaseDampingChannel{lambda: lambda, ops: ops}, nil
}

// PhaseDampingFromT2 выводит lambda из времени когерентности T2 и времени T1:
// чистая дефазировка идет со скоростью 1/T2* = 1/T2 - 1/(2·T1), вклад
// амплитудной релаксации убирается.
func PhaseDampingFromT2(t2, t1, gateTime float64) (*PhaseDampingChannel, error) {
	if t2 <= 0 || t1 <= 0 {
		return nil, fmt.Errorf("%w: T1 = %g, T2 = %g", ErrInvalidTime, t1, t2)
	}
	if gateTime < 0 {
		return nil, fmt.Errorf("%w: длительность вентиля %g", ErrInvalidTime, gateTime)
	}
	rate := 1/t2 - 1/(2*t1)
	if rate <= 0 {
		// T2 достигает предела 2·T1, чистой дефазировки нет
		return NewPhaseDampingChannel(0)
	}
	return NewPhaseDampingChannel(1 - math.Exp(-gateTime*rate))
}

// Kind возвращает тип канала.
func (c *PhaseDampingChannel) Kind() Kind { return KindPhaseDamping }

// Lambda возвращает параметр дефазировки.
func (c *PhaseDampingChannel) Lambda() float64 { return c.lambda }

// KrausOperators возвращает копию операторов Крауса канала.
func (c *PhaseDampingChannel) KrausOperators() []Kraus { return append([]Kraus{}, c.ops...) }

func (c *PhaseDampingChannel) String() string {
	return fmt.Sprintf("phase_damping(lambda=%g)", c.lambda)
}

// CustomChannel — произвольный одно-кубитный канал из операторов Крауса.
type CustomChannel struct {
	name string
	ops  []Kraus
}

// NewCustomChannel создает канал из готовых операторов Крауса. Условие
// полноты проверяется один раз при создании.
func NewCustomChannel(name string, ops []Kraus) (*CustomChannel, error) {
	if err := verifyCompleteness(ops); err != nil {
		return nil, err
	}
	copied := make([]Kraus, len(ops))
	copy(copied, ops)
	return &CustomChannel{name: name, ops: copied}, nil
}

// Kind возвращает тип канала.
func (c *CustomChannel) Kind() Kind { return KindCustom }

// KrausOperators возвращает копию операторов Крауса канала.
func (c *CustomChannel) KrausOperators() []Kraus { return append([]Kraus{}, c.ops...) }

func (c *CustomChannel) String() string {
	return fmt.Sprintf("custom(%s, %d operators)", c.name, len(c.ops))
}
