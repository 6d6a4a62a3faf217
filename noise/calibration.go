package noise

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Calibration — параметры устройства из калибровочного YAML-файла. Времена
// в секундах.
type Calibration struct {
	Name            string  `yaml:"name"`
	T1              float64 `yaml:"t1"`
	T2              float64 `yaml:"t2"`
	GateTime        float64 `yaml:"gate_time"`
	DepolarizingP   float64 `yaml:"depolarizing_p"`
	ReadoutFidelity float64 `yaml:"readout_fidelity"`
}

// LoadCalibration читает калибровку из потока YAML.
func LoadCalibration(r io.Reader) (*Calibration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("чтение калибровки: %w", err)
	}
	var c Calibration
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("разбор калибровки: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCalibrationFile читает калибровку из файла.
func LoadCalibrationFile(path string) (*Calibration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("открытие калибровки: %w", err)
	}
	defer f.Close()
	return LoadCalibration(f)
}

func (c *Calibration) validate() error {
	if c.T1 <= 0 || c.T2 <= 0 {
		return fmt.Errorf("%w: T1 = %g, T2 = %g", ErrInvalidTime, c.T1, c.T2)
	}
	if c.GateTime < 0 {
		return fmt.Errorf("%w: длительность вентиля %g", ErrInvalidTime, c.GateTime)
	}
	if c.DepolarizingP < 0 || c.DepolarizingP > 1 {
		return fmt.Errorf("%w: p = %g", ErrInvalidProbability, c.DepolarizingP)
	}
	if c.ReadoutFidelity < 0 || c.ReadoutFidelity > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidFidelity, c.ReadoutFidelity)
	}
	return nil
}

// Model собирает модель шума из калибровочных параметров.
func (c *Calibration) Model() (*Model, error) {
	m := NewModel(c.Name)

	if c.DepolarizingP > 0 {
		dep, err := NewDepolarizingChannel(c.DepolarizingP)
		if err != nil {
			return nil, err
		}
		if err := m.AddChannel(dep); err != nil {
			return nil, err
		}
	}

	ad, err := AmplitudeDampingFromT1(c.T1, c.GateTime)
	if err != nil {
		return nil, err
	}
	if err := m.AddChannel(ad); err != nil {
		return nil, err
	}

	pd, err := PhaseDampingFromT2(c.T2, c.T1, c.GateTime)
	if err != nil {
		return nil, err
	}
	if err := m.AddChannel(pd); err != nil {
		return nil, err
	}

	if err := m.SetReadoutFidelity(c.ReadoutFidelity); err != nil {
		return nil, err
	}
	return m, nil
}
