package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/keypad-calculator/internal/calculator"
	"github.com/eugenenazirov/keypad-calculator/internal/logging"
)

func main() {
	kingpinApp := kingpin.New("calc", "Keypad Calculator - press keys from the command line or stdin")
	trace := kingpinApp.Flag("trace", "Print the display after every key instead of once per line").Short('t').Bool()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").Default("warn").String()
	keys := kingpinApp.Arg("keys", "Keys to press, e.g. 1 2 + 3 =; read from stdin when omitted").Strings()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	logger, err := logging.New(*logLevel)
	if err != nil {
		kingpinApp.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	t := &terminal{
		engine: calculator.NewEngine(),
		out:    os.Stdout,
		errOut: os.Stderr,
		trace:  *trace,
		logger: logger,
	}

	if len(*keys) > 0 {
		t.pressLine(*keys)
		return
	}
	if err := t.run(os.Stdin); err != nil {
		logger.Fatal("reading keys failed", zap.Error(err))
	}
}

type terminal struct {
	engine *calculator.Engine
	out    io.Writer
	errOut io.Writer
	trace  bool
	logger *zap.Logger
}

// run presses the whitespace-separated keys of every input line in order.
// Lines have no length limit: a long paste of digits is still one line.
func (t *terminal) run(in io.Reader) error {
	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadString('\n')
		if keys := strings.Fields(line); len(keys) > 0 {
			t.pressLine(keys)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
}

func (t *terminal) pressLine(keys []string) {
	for _, key := range keys {
		cmd, err := calculator.ParseCommand(key)
		if err != nil {
			fmt.Fprintf(t.errOut, "skipping %v\n", err)
			continue
		}

		display, err := t.engine.Apply(cmd)
		if err != nil {
			t.logger.Warn("command rejected", zap.Stringer("command", cmd), zap.Error(err))
			fmt.Fprintf(t.errOut, "cannot compute: %v (press c to clear)\n", err)
		}
		t.logger.Debug("key pressed", zap.Stringer("command", cmd), zap.String("display", display))

		if t.trace {
			fmt.Fprintln(t.out, display)
		}
	}
	if !t.trace {
		fmt.Fprintln(t.out, t.engine.Display())
	}
}
