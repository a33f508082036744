package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/cwbudde/algo-fuzz/dsp/core"
	"github.com/cwbudde/algo-fuzz/internal/audioout"
	"github.com/cwbudde/algo-fuzz/internal/automation"
	"github.com/cwbudde/algo-fuzz/internal/cli"
	"github.com/cwbudde/algo-fuzz/processor"
)

// PlayCmd plays a plucked string through the processor.
type PlayCmd struct {
	Rate    int      `default:"48000" help:"Sample rate in Hz."`
	Block   int      `default:"256" help:"Block size in frames."`
	Seconds float64  `default:"10" help:"Playback duration."`
	Note    float64  `default:"82.41" help:"Pitch of the plucked string in Hz."`
	Tempo   float64  `default:"90" help:"Plucks per minute."`
	Level   float64  `default:"-12" help:"Pluck level in dBFS."`
	Script  string   `type:"existingfile" help:"Lua script defining automate(t)."`
	Set     []string `short:"s" sep:"none" placeholder:"KEY=VALUE" help:"Set a control value; repeatable."`
}

func (c *PlayCmd) Run() error {
	params := processor.NewParams()
	if err := applySettings(params, c.Set); err != nil {
		return err
	}

	var script *automation.Script
	if c.Script != "" {
		s, err := automation.LoadFile(c.Script)
		if err != nil {
			return err
		}
		defer s.Close()
		script = s
	}

	proc := processor.New(params)
	proc.OnLatencyChange(func(samples int) {
		cli.PrintKV(os.Stdout, "Latency:", fmt.Sprintf("%d samples", samples))
	})
	if err := proc.Prepare(float64(c.Rate), c.Block, 2); err != nil {
		return err
	}

	src := newPlaySource(proc, script, float64(c.Rate), newPluck(float64(c.Rate), c.Note, c.Tempo, core.DBToLinear(c.Level), 1))
	player, err := audioout.NewPlayer(src, c.Rate, 2, c.Block)
	if err != nil {
		return err
	}
	defer player.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	player.Start()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(time.Duration(c.Seconds * float64(time.Second)))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline:
			return nil
		case err := <-src.errs:
			return err
		case <-ticker.C:
			m := proc.Meters()
			cli.PrintKV(os.Stdout, "Meters:", fmt.Sprintf("in %6.1f dBFS  out %6.1f dBFS  limiter %5.1f dB  gate %s",
				core.LinearToDB(m.InputPeak), core.LinearToDB(m.OutputPeak),
				core.LinearToDB(m.GainReduction), gateState(m.GateOpen)))
		}
	}
}

func gateState(open bool) string {
	if open {
		return "open"
	}
	return "closed"
}

// playSource renders the pluck through the processor, applying the
// automation script before every block.
type playSource struct {
	proc   *processor.Processor
	script *automation.Script
	pluck  *pluck
	rate   float64
	frames int64
	errs   chan error
}

func newPlaySource(proc *processor.Processor, script *automation.Script, rate float64, p *pluck) *playSource {
	return &playSource{
		proc:   proc,
		script: script,
		pluck:  p,
		rate:   rate,
		errs:   make(chan error, 1),
	}
}

func (s *playSource) Render(buf [][]float64) {
	if s.script != nil {
		if err := s.script.Apply(s.proc.Params(), float64(s.frames)/s.rate); err != nil {
			select {
			case s.errs <- err:
			default:
			}
			s.script = nil
		}
	}

	s.pluck.Render(buf[0])
	for ch := 1; ch < len(buf); ch++ {
		copy(buf[ch], buf[0])
	}
	s.proc.Process(buf)
	s.frames += int64(len(buf[0]))
}
