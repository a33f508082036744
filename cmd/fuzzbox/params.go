package main

import (
	"io"
	"os"
	"strings"

	"github.com/cwbudde/algo-fuzz/internal/cli"
	"github.com/cwbudde/algo-fuzz/processor"
)

// ParamsCmd lists the control parameters.
type ParamsCmd struct{}

func (c *ParamsCmd) Run() error {
	return writeParams(os.Stdout)
}

func writeParams(w io.Writer) error {
	tab := cli.NewTable("Key", "Name", "Range", "Default")
	for _, s := range processor.Specs() {
		tab.Row(s.Key, s.Name, specRange(s), s.Format(s.Default))
	}
	_, err := tab.WriteTo(w)
	return err
}

func specRange(s processor.Spec) string {
	if s.Discrete() {
		return strings.Join(s.Choices, " | ")
	}
	return s.Format(s.Min) + " .. " + s.Format(s.Max)
}
