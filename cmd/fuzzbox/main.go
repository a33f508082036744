// Command fuzzbox inspects and plays the fuzz processor.
//
// Usage:
//
//	fuzzbox params
//	fuzzbox info [--rate 48000] [--freq 220] [--level -6] [-s key=value ...]
//	fuzzbox play [--seconds 10] [--script auto.lua] [-s key=value ...]
//
// Examples:
//
//	fuzzbox info -s drive=0.8 -s oversampling=8x
//	fuzzbox play -s circuit=germanium -s gate=on --script sweep.lua
package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/algo-fuzz/internal/cli"
	"github.com/cwbudde/algo-fuzz/processor"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Version versionFlag `short:"v" help:"Show version information."`

	Params ParamsCmd `cmd:"" help:"List control parameters with ranges and defaults."`
	Info   InfoCmd   `cmd:"" help:"Print latency per oversampling rate and harmonics per circuit."`
	Play   PlayCmd   `cmd:"" help:"Play a plucked test signal through the processor."`
}

type versionFlag bool

func (versionFlag) BeforeReset(app *kong.Kong) error {
	cli.PrintVersion(version)
	app.Exit(0)
	return nil
}

func main() {
	var c CLI
	ctx := kong.Parse(&c,
		kong.Name("fuzzbox"),
		kong.Description("Real-time fuzz processor workbench"),
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if err := ctx.Run(); err != nil {
		cli.PrintError(err.Error())
		ctx.Exit(1)
	}
}

// applySettings writes key=value pairs into params.
func applySettings(params *processor.Params, settings []string) error {
	for _, s := range settings {
		key, value, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("setting %q: want key=value", s)
		}
		if err := params.SetText(key, value); err != nil {
			return err
		}
	}
	return nil
}
