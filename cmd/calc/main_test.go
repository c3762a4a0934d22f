package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/keypad-calculator/internal/calculator"
)

func newTestTerminal(t *testing.T, trace bool) (*terminal, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var out, errOut bytes.Buffer
	return &terminal{
		engine: calculator.NewEngine(),
		out:    &out,
		errOut: &errOut,
		trace:  trace,
		logger: zaptest.NewLogger(t),
	}, &out, &errOut
}

func TestPressLinePrintsFinalDisplay(t *testing.T) {
	term, out, errOut := newTestTerminal(t, false)

	term.pressLine([]string{"1", "2", "+", "3", "="})

	if got := out.String(); got != "15\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected error output %q", errOut.String())
	}
}

func TestPressLineTrace(t *testing.T) {
	term, out, _ := newTestTerminal(t, true)

	term.pressLine([]string{"2", "+", "3", "x"})

	want := "2  \n2 + \n2 + 3\n5 × \n"
	if got := out.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPressLineSkipsUnknownKeys(t *testing.T) {
	term, out, errOut := newTestTerminal(t, false)

	term.pressLine([]string{"4", "%", "2"})

	if got := out.String(); got != "42  \n" {
		t.Fatalf("unexpected output %q", got)
	}
	if !strings.Contains(errOut.String(), "skipping") {
		t.Fatalf("expected unknown key to be reported, got %q", errOut.String())
	}
}

func TestPressLineReportsComputeErrors(t *testing.T) {
	term, out, errOut := newTestTerminal(t, false)

	term.pressLine([]string{"5", "+", "neg", "="})

	if got := out.String(); got != "5 + -\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if !strings.Contains(errOut.String(), "cannot compute") {
		t.Fatalf("expected compute error to be reported, got %q", errOut.String())
	}
}

func TestRunReadsLines(t *testing.T) {
	term, out, _ := newTestTerminal(t, false)

	input := "1 ÷ 4 =\n\n neg \n c\n"
	if err := term.run(strings.NewReader(input)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "0.25\n-0.25\n0  \n"
	if got := out.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRunAcceptsLinesLongerThanScannerBuffer(t *testing.T) {
	term, out, errOut := newTestTerminal(t, false)

	// bufio.Scanner gives up on lines over 64 KiB.
	gap := strings.Repeat(" ", 30000)
	line := strings.Join([]string{"1", "+", "2", "="}, gap)
	if err := term.run(strings.NewReader(line + "\nc")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "3\n0  \n"
	if got := out.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected error output %q", errOut.String())
	}
}

func TestRunReportsReadErrors(t *testing.T) {
	term, _, _ := newTestTerminal(t, false)

	err := term.run(iotest.ErrReader(errors.New("tty closed")))
	if err == nil || !strings.Contains(err.Error(), "tty closed") {
		t.Fatalf("expected read error, got %v", err)
	}
}
