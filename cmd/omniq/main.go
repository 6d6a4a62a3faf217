// omniq — демонстрационная консоль движка: запутанные состояния,
// поверхностный код с декодированием и прогоны с шумом.
package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"

	"github.com/omniq-dev/omniq/circuit"
	"github.com/omniq-dev/omniq/noise"
	"github.com/omniq-dev/omniq/processor"
	"github.com/omniq-dev/omniq/qec"
	"github.com/omniq-dev/omniq/quantum"
)

func main() {
	app := &cli.App{
		Name:  "omniq",
		Usage: "симулятор квантовых схем и коррекции ошибок",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "seed",
				Value: 1,
				Usage: "зерно генератора случайных чисел",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "bell",
				Usage:  "подготовить пару Белла и показать амплитуды",
				Action: runBell,
			},
			{
				Name:  "ghz",
				Usage: "подготовить состояние ГХЦ и просэмплировать его",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "qubits", Value: 3, Usage: "число кубитов"},
					&cli.IntFlag{Name: "shots", Value: 1024, Usage: "число прогонов"},
				},
				Action: runGHZ,
			},
			{
				Name:  "surface",
				Usage: "декодировать случайные ошибки на поверхностном коде",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "distance", Value: 3, Usage: "кодовое расстояние (нечетное)"},
					&cli.IntFlag{Name: "trials", Value: 1000, Usage: "число испытаний"},
					&cli.Float64Flag{Name: "p", Value: 0.01, Usage: "вероятность ошибки на кубит"},
				},
				Action: runSurface,
			},
			{
				Name:  "noise",
				Usage: "прогнать пару Белла через канал с шумом",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "calibration", Usage: "YAML-файл калибровки устройства"},
				},
				Action: runNoise,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal("команда завершилась ошибкой", "ошибка", err)
	}
}

func runBell(ctx *cli.Context) error {
	c, err := circuit.New(2, 0)
	if err != nil {
		return err
	}
	if err := c.AddH(0); err != nil {
		return err
	}
	if err := c.AddCNOT(0, 1); err != nil {
		return err
	}

	p, err := processor.New(processor.BackendStatevector, ctx.Int64("seed"))
	if err != nil {
		return err
	}
	res, err := p.Run(c)
	if err != nil {
		return err
	}

	color.Cyan("Пара Белла (|00⟩ + |11⟩)/√2")
	printAmplitudes(res.Amplitudes, 2)
	return nil
}

func runGHZ(ctx *cli.Context) error {
	n := ctx.Int("qubits")
	state, err := quantum.GHZState(n)
	if err != nil {
		return err
	}

	c, err := circuit.New(n, 0)
	if err != nil {
		return err
	}
	if err := c.AddH(0); err != nil {
		return err
	}
	for q := 1; q < n; q++ {
		if err := c.AddCNOT(q-1, q); err != nil {
			return err
		}
	}

	p, err := processor.New(processor.BackendStatevector, ctx.Int64("seed"))
	if err != nil {
		return err
	}
	counts, err := processor.NewBatchRunner(p, 0).Sample(ctx.Context, c, ctx.Int("shots"))
	if err != nil {
		return err
	}

	color.Cyan("Состояние ГХЦ на %d кубитах", n)
	printAmplitudes(state.Amplitudes(), n)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Битовая строка", "Отсчетов"})
	for bits := uint64(0); bits < uint64(1)<<n; bits++ {
		if counts[bits] == 0 {
			continue
		}
		table.Append([]string{bitstring(bits, n), fmt.Sprintf("%d", counts[bits])})
	}
	table.Render()
	return nil
}

func runSurface(ctx *cli.Context) error {
	sc, err := qec.NewSurfaceCode(ctx.Int("distance"))
	if err != nil {
		return err
	}
	trials := ctx.Int("trials")
	perr := ctx.Float64("p")
	rng := rand.New(rand.NewSource(ctx.Int64("seed")))

	decoders := []qec.Decoder{qec.NewMWPMDecoder(), qec.NewUnionFindDecoder()}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Декодер", "Испытаний", "Снятых синдромов", "Доля"})

	for _, dec := range decoders {
		cleared := 0
		trialRng := rand.New(rand.NewSource(rng.Int63()))
		for i := 0; i < trials; i++ {
			var errs []qec.PauliError
			for q := 0; q < sc.NumDataQubits(); q++ {
				if trialRng.Float64() < perr {
					pt := []qec.PauliType{qec.PauliX, qec.PauliY, qec.PauliZ}[trialRng.Intn(3)]
					errs = append(errs, qec.PauliError{Type: pt, Qubit: q})
				}
			}

			syn, err := sc.SyndromeFromErrors(errs)
			if err != nil {
				return err
			}
			corr, err := dec.Decode(sc, syn)
			if err != nil {
				log.Warn("декодер не справился", "декодер", dec.Name(), "испытание", i, "ошибка", err)
				continue
			}
			combined := append(append([]qec.PauliError{}, errs...), corr.AsErrors()...)
			residual, err := sc.SyndromeFromErrors(combined)
			if err != nil {
				return err
			}
			if residual.IsEmpty() {
				cleared++
			}
		}
		table.Append([]string{
			dec.Name(),
			fmt.Sprintf("%d", trials),
			fmt.Sprintf("%d", cleared),
			fmt.Sprintf("%.4f", float64(cleared)/float64(trials)),
		})
	}

	color.Cyan("Поверхностный код d=%d, p=%.4g", sc.Distance(), perr)
	table.Render()
	return nil
}

func runNoise(ctx *cli.Context) error {
	model := noise.TypicalModel()
	if path := ctx.String("calibration"); path != "" {
		cal, err := noise.LoadCalibrationFile(path)
		if err != nil {
			return err
		}
		if model, err = cal.Model(); err != nil {
			return err
		}
		log.Info("загружена калибровка", "файл", path, "имя", cal.Name)
	}

	c, err := circuit.New(2, 0)
	if err != nil {
		return err
	}
	if err := c.AddH(0); err != nil {
		return err
	}
	if err := c.AddCNOT(0, 1); err != nil {
		return err
	}

	p, err := processor.New(processor.BackendDensity, ctx.Int64("seed"))
	if err != nil {
		return err
	}
	if err := p.SetNoiseModel(model); err != nil {
		return err
	}
	res, err := p.Run(c)
	if err != nil {
		return err
	}

	color.Cyan("Пара Белла через канал с шумом (%s)", model.Name())
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Величина", "Значение"})
	table.Append([]string{"След", fmt.Sprintf("%.9f", real(res.Density.Trace()))})
	table.Append([]string{"Чистота", fmt.Sprintf("%.9f", res.Density.Purity())})
	for q, prob := range res.Probabilities {
		table.Append([]string{fmt.Sprintf("P(кубит %d = 1)", q), fmt.Sprintf("%.9f", prob)})
	}
	table.Render()
	return nil
}

// printAmplitudes печатает ненулевые амплитуды состояния.
func printAmplitudes(amps []complex128, numQubits int) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Базис", "Амплитуда", "Вероятность"})
	for i, a := range amps {
		prob := real(a)*real(a) + imag(a)*imag(a)
		if prob < 1e-12 {
			continue
		}
		table.Append([]string{
			"|" + bitstring(uint64(i), numQubits) + "⟩",
			formatComplex(a),
			fmt.Sprintf("%.6f", prob),
		})
	}
	table.Render()
}

// bitstring печатает битовую строку в порядке кубитов: кубит 0 слева.
func bitstring(bits uint64, numQubits int) string {
	out := make([]byte, numQubits)
	for q := 0; q < numQubits; q++ {
		out[q] = byte('0' + (bits>>q)&1)
	}
	return string(out)
}

func formatComplex(a complex128) string {
	if math.Abs(imag(a)) < 1e-12 {
		return fmt.Sprintf("%.6f", real(a))
	}
	if math.Abs(real(a)) < 1e-12 {
		return fmt.Sprintf("%.6fi", imag(a))
	}
	return fmt.Sprintf("%.6f%+.6fi", real(a), imag(a))
}
