package noise

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

var (
	// ErrInvalidQubit ошибка, возникающая при отрицательном индексе кубита
	ErrInvalidQubit = errors.New("индекс кубита не может быть отрицательным")

	// ErrInvalidFidelity ошибка, возникающая при достоверности считывания вне [0, 1]
	ErrInvalidFidelity = errors.New("достоверность считывания должна лежать в диапазоне [0, 1]")
)

// Типичные параметры сверхпроводящего кубита: основа именованного пресета
// TypicalModel, не вывод из физики конкретного устройства.
const (
	TypicalDepolarizingP   = 0.001
	TypicalT1              = 50e-6 // 50 мкс
	TypicalT2              = 70e-6 // 70 мкс
	TypicalGateTime        = 50e-9 // 50 нс
	TypicalReadoutFidelity = 0.97
)

// attachment привязывает канал к кубиту; qubit == -1 означает все кубиты.
type attachment struct {
	qubit   int
	channel Channel
}

// Model описывает шум устройства: набор каналов, привязанных ко всем или к
// отдельным кубитам, и ошибку считывания.
type Model struct {
	name            string
	attachments     []attachment
	readoutFidelity float64
}

// NewModel создает пустую модель шума с идеальным считыванием.
func NewModel(name string) *Model {
	return &Model{name: name, readoutFidelity: 1}
}

// Name возвращает имя модели.
func (m *Model) Name() string { return m.name }

// AddChannel привязывает канал ко всем кубитам.
func (m *Model) AddChannel(ch Channel) error {
	if ch == nil {
		return ErrEmptyChannel
	}
	m.attachments = append(m.attachments, attachment{qubit: -1, channel: ch})
	return nil
}

// AddQubitChannel привязывает канал к конкретному кубиту.
func (m *Model) AddQubitChannel(qubit int, ch Channel) error {
	if qubit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQubit, qubit)
	}
	if ch == nil {
		return ErrEmptyChannel
	}
	m.attachments = append(m.attachments, attachment{qubit: qubit, channel: ch})
	return nil
}

// SetReadoutFidelity задает достоверность считывания.
func (m *Model) SetReadoutFidelity(f float64) error {
	if f < 0 || f > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidFidelity, f)
	}
	m.readoutFidelity = f
	return nil
}

// ReadoutFidelity возвращает достоверность считывания.
func (m *Model) ReadoutFidelity() float64 { return m.readoutFidelity }

// ChannelsFor возвращает каналы, действующие на кубит, в порядке добавления.
func (m *Model) ChannelsFor(qubit int) []Channel {
	var out []Channel
	for _, a := range m.attachments {
		if a.qubit == -1 || a.qubit == qubit {
			out = append(out, a.channel)
		}
	}
	return out
}

// NumChannels возвращает общее число привязанных каналов.
func (m *Model) NumChannels() int { return len(m.attachments) }

// ApplyReadout инвертирует результат измерения с вероятностью
// 1 - достоверность считывания.
func (m *Model) ApplyReadout(outcome int, rng *rand.Rand) int {
	if rng.Float64() < 1-m.readoutFidelity {
		return 1 - outcome
	}
	return outcome
}

// String возвращает описание модели и ее каналов.
func (m *Model) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "NoiseModel(%s, readout=%g)", m.name, m.readoutFidelity)
	for _, a := range m.attachments {
		if a.qubit == -1 {
			fmt.Fprintf(&b, "\n  all: %s", a.channel)
		} else {
			fmt.Fprintf(&b, "\n  q%d: %s", a.qubit, a.channel)
		}
	}
	return b.String()
}

// TypicalModel возвращает пресет шума сверхпроводящего устройства:
// деполяризация после каждого вентиля плюс релаксация T1/T2 за время
// вентиля и неидеальное считывание. Параметры пресета — константы в
// допустимых диапазонах, конструирование не может завершиться ошибкой.
func TypicalModel() *Model {
	m, err := buildTypicalModel()
	if err != nil {
		panic(err)
	}
	return m
}

func buildTypicalModel() (*Model, error) {
	m := NewModel("typical")

	dep, err := NewDepolarizingChannel(TypicalDepolarizingP)
	if err != nil {
		return nil, err
	}
	if err := m.AddChannel(dep); err != nil {
		return nil, err
	}

	ad, err := AmplitudeDampingFromT1(TypicalT1, TypicalGateTime)
	if err != nil {
		return nil, err
	}
	if err := m.AddChannel(ad); err != nil {
		return nil, err
	}

	pd, err := PhaseDampingFromT2(TypicalT2, TypicalT1, TypicalGateTime)
	if err != nil {
		return nil, err
	}
	if err := m.AddChannel(pd); err != nil {
		return nil, err
	}

	if err := m.SetReadoutFidelity(TypicalReadoutFidelity); err != nil {
		return nil, err
	}
	return m, nil
}
