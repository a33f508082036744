package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-fuzz/dsp/core"
	"github.com/cwbudde/algo-fuzz/dsp/effects/fuzz"
	"github.com/cwbudde/algo-fuzz/internal/cli"
	"github.com/cwbudde/algo-fuzz/measure/thd"
	"github.com/cwbudde/algo-fuzz/processor"
)

const (
	infoFFTSize = 8192
	infoBlock   = 512
)

// InfoCmd prints latency and harmonic content.
type InfoCmd struct {
	Rate  float64  `default:"48000" help:"Sample rate in Hz."`
	Freq  float64  `default:"220" help:"Test tone frequency in Hz, snapped to an FFT bin."`
	Level float64  `default:"-6" help:"Test tone level in dBFS."`
	Set   []string `short:"s" sep:"none" placeholder:"KEY=VALUE" help:"Set a control value; repeatable."`
}

func (c *InfoCmd) Run() error {
	params := processor.NewParams()
	if err := applySettings(params, c.Set); err != nil {
		return err
	}
	return writeInfo(os.Stdout, params.Snapshot(), c.Rate, c.Freq, c.Level)
}

type latencyReport struct {
	Factor   int
	Exact    float64
	Reported int
}

type circuitReport struct {
	Circuit fuzz.Circuit
	Result  thd.Result
	Peak    float64
}

func writeInfo(w io.Writer, base processor.Values, rate, freq, levelDB float64) error {
	lat, err := measureLatencies(base, rate)
	if err != nil {
		return err
	}

	cli.PrintTitle(w, "Latency")
	tab := cli.NewTable("Oversampling", "Exact [samples]", "Reported [samples]")
	for _, r := range lat {
		tab.Row(fmt.Sprintf("%dx", r.Factor), fmt.Sprintf("%.4f", r.Exact), r.Reported)
	}
	if _, err := tab.WriteTo(w); err != nil {
		return err
	}
	fmt.Fprintln(w)

	freq = snapToBin(freq, rate, infoFFTSize)
	reports, err := measureCircuits(base, rate, freq, levelDB)
	if err != nil {
		return err
	}

	cli.PrintTitle(w, "Harmonics")
	cli.PrintKV(w, "Tone:", fmt.Sprintf("%.2f Hz at %.1f dBFS", freq, levelDB))
	fmt.Fprintln(w)
	tab = cli.NewTable("Circuit", "THD [%]", "THD [dB]", "Odd [%]", "Even [%]", "H2", "H3", "Peak [dBFS]")
	for _, r := range reports {
		res := r.Result
		tab.Row(r.Circuit,
			fmt.Sprintf("%.2f", 100*res.THD),
			fmt.Sprintf("%.1f", res.THDdB()),
			fmt.Sprintf("%.2f", 100*res.OddHD),
			fmt.Sprintf("%.2f", 100*res.EvenHD),
			fmt.Sprintf("%.4f", res.Harmonic(2)),
			fmt.Sprintf("%.4f", res.Harmonic(3)),
			fmt.Sprintf("%.1f", core.LinearToDB(r.Peak)),
		)
	}
	_, err = tab.WriteTo(w)
	return err
}

// measureLatencies prepares a processor at every oversampling rate.
func measureLatencies(base processor.Values, rate float64) ([]latencyReport, error) {
	var out []latencyReport
	for idx, factor := range []int{2, 4, 8} {
		v := base
		v[processor.Oversampling] = float64(idx)
		p, err := newProcessor(v, rate, infoBlock, 1)
		if err != nil {
			return nil, err
		}
		out = append(out, latencyReport{Factor: factor, Exact: p.LatencySamples(), Reported: p.Latency()})
	}
	return out, nil
}

// measureCircuits renders a sine through every circuit and analyzes the
// settled tail of the output.
func measureCircuits(base processor.Values, rate, freq, levelDB float64) ([]circuitReport, error) {
	amp := core.DBToLinear(levelDB)
	step := 2 * math.Pi * freq / rate

	var out []circuitReport
	for _, c := range fuzz.Circuits() {
		v := base
		v[processor.Circuit] = float64(c)
		p, err := newProcessor(v, rate, infoBlock, 1)
		if err != nil {
			return nil, err
		}

		buf := make([]float64, 3*infoFFTSize)
		for i := range buf {
			buf[i] = amp * math.Sin(step*float64(i))
		}
		p.Process([][]float64{buf})

		tail := buf[2*infoFFTSize:]
		res, err := thd.Analyze(tail, thd.Config{SampleRate: rate, FundamentalFreq: freq})
		if err != nil {
			return nil, err
		}

		var peak float64
		for _, x := range tail {
			peak = max(peak, math.Abs(x))
		}
		out = append(out, circuitReport{Circuit: c, Result: res, Peak: peak})
	}
	return out, nil
}

func newProcessor(v processor.Values, rate float64, block, channels int) (*processor.Processor, error) {
	params := processor.NewParams()
	for id, x := range v {
		params.Set(processor.ID(id), x)
	}
	p := processor.New(params)
	if err := p.Prepare(rate, block, channels); err != nil {
		return nil, err
	}
	return p, nil
}

func snapToBin(freq, rate float64, size int) float64 {
	bin := max(1, math.Round(freq*float64(size)/rate))
	return bin * rate / float64(size)
}
