package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Display shows step-by-step progress for a release. On a TTY it runs a
// spinner for the active step; elsewhere it prints plain lines.
type Display struct {
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	spin    *spinner.Spinner
}

// NewDisplay creates a Display writing to stdout with auto-detected
// terminal capabilities.
func NewDisplay() *Display {
	caps := DetectTerminalCapabilities()
	return &Display{
		out:     os.Stdout,
		caps:    caps,
		symbols: SelectSymbols(caps),
	}
}

// NewDisplayWithWriter creates a Display with explicit writer and
// capabilities, for tests and non-stdout output.
func NewDisplayWithWriter(out io.Writer, caps TerminalCapabilities) *Display {
	return &Display{
		out:     out,
		caps:    caps,
		symbols: SelectSymbols(caps),
	}
}

// Start begins a step. On a TTY this shows a spinner with the message as
// its suffix; otherwise the message is printed immediately.
func (d *Display) Start(message string) {
	if !d.caps.IsTTY {
		fmt.Fprintf(d.out, "%s...\n", message)
		return
	}

	d.stopSpinner()
	d.spin = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(d.out))
	d.spin.Suffix = " " + message
	if d.caps.SupportsColor {
		d.spin.Color("cyan") //nolint:errcheck
	}
	d.spin.Start()
}

// Complete marks the current step as done.
func (d *Display) Complete(message string) {
	d.stopSpinner()
	mark := d.symbols.Checkmark
	if d.caps.SupportsColor {
		mark = color.GreenString(mark)
	}
	fmt.Fprintf(d.out, "%s %s\n", mark, message)
}

// Fail marks the current step as failed.
func (d *Display) Fail(message string) {
	d.stopSpinner()
	mark := d.symbols.Failure
	if d.caps.SupportsColor {
		mark = color.RedString(mark)
	}
	fmt.Fprintf(d.out, "%s %s\n", mark, message)
}

// Info prints a message without a status mark, stopping any spinner first.
func (d *Display) Info(message string) {
	d.stopSpinner()
	fmt.Fprintln(d.out, message)
}

// Stop halts any running spinner without printing a status line.
func (d *Display) Stop() {
	d.stopSpinner()
}

func (d *Display) stopSpinner() {
	if d.spin != nil {
		d.spin.Stop()
		d.spin = nil
	}
}
