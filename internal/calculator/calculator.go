package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// DivideByZeroMessage replaces the left operand when the divisor is too close to zero.
	DivideByZeroMessage = "Can't divide by zero"

	resultPrecision = 10
	machineEpsilon  = 0x1p-52
	initialOperand  = "0"
)

type keypadCalculator struct{}

// New creates a Calculator implementing the keypad transition rules.
func New() Calculator {
	return &keypadCalculator{}
}

// NewState returns the state of a blank calculation.
func NewState() State {
	return State{Left: initialOperand}
}

// Display renders the state the way the keypad screen shows it.
func (s State) Display() string {
	if s.ResultShown {
		return s.Left
	}
	return fmt.Sprintf("%s %s %s", s.Left, s.Operator, s.Right)
}

// Apply returns the state that results from cmd. On error the input state is
// returned unchanged.
func (c *keypadCalculator) Apply(state State, cmd Command) (State, error) {
	next := state
	switch cmd.Kind {
	case Digit:
		if cmd.Key < '0' || cmd.Key > '9' {
			return state, fmt.Errorf("%w: digit %q", ErrUnknownCommand, cmd.Key)
		}
		next.pressDigit(cmd.Key)
	case Sign:
		if !isOperator(string(cmd.Key)) {
			return state, fmt.Errorf("%w: operator %q", ErrUnknownCommand, cmd.Key)
		}
		if !next.ResultShown && next.Right != "" {
			if err := next.compute(); err != nil {
				return state, err
			}
		}
		next.Operator = string(cmd.Key)
		next.Right = ""
		next.ResultShown = false
	case Ans:
		if next.Operator != "" && next.Left != "" && next.Right != "" {
			if err := next.compute(); err != nil {
				return state, err
			}
		}
	case Dot:
		next.pressDot()
	case Neg:
		next.pressNeg()
	case ClearEnd:
		if next.Right == "" {
			next.Left = initialOperand
			next.Operator = ""
			next.ResultShown = false
		} else {
			next.Right = ""
		}
	case Clear:
		next = NewState()
	case Backspace:
		if next.Operator == "" {
			next.Left = dropLastRune(next.Left)
			if next.Left == "" {
				next.Left = initialOperand
			}
		} else {
			next.Right = dropLastRune(next.Right)
		}
	default:
		return state, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Kind)
	}
	return next, nil
}

func (s *State) pressDigit(d rune) {
	switch {
	case s.Operator == "":
		s.Left = appendDigit(s.Left, d)
	case s.ResultShown:
		s.Left = string(d)
		s.Operator = ""
		s.Right = ""
		s.ResultShown = false
	default:
		s.Right = appendDigit(s.Right, d)
	}
}

func (s *State) pressDot() {
	if s.Operator == "" {
		if !strings.Contains(s.Left, ".") {
			s.Left += "."
		}
		return
	}
	if !strings.Contains(s.Right, ".") {
		if s.Right == "" {
			s.Right = initialOperand
		}
		s.Right += "."
	}
}

// pressNeg keeps the zero guards of the original keypad, including the
// check of the left operand while the right one is being edited.
func (s *State) pressNeg() {
	switch {
	case s.Operator == "":
		if s.Left != "0" && s.Left != "0." {
			s.Left = toggleLeft(s.Left)
		}
	case s.ResultShown:
		if s.Left != "0" {
			s.Left = toggleLeft(s.Left)
		}
	default:
		if s.Right != "0" && s.Left != "0." {
			s.Right = toggleSign(s.Right)
		}
	}
}

func (s *State) compute() error {
	left, err := parseOperand(s.Left)
	if err != nil {
		return err
	}
	right, err := parseOperand(s.Right)
	if err != nil {
		return err
	}

	var result string
	switch s.Operator {
	case string(OpAdd):
		result = formatResult(left + right)
	case string(OpSubtract):
		result = formatResult(left - right)
	case string(OpMultiply):
		result = formatResult(left * right)
	case string(OpDivide):
		if math.Abs(right) <= machineEpsilon {
			result = DivideByZeroMessage
		} else {
			result = formatResult(left / right)
		}
	default:
		return fmt.Errorf("%w: operator %q", ErrUnknownCommand, s.Operator)
	}

	s.Left = trimResult(result)
	s.ResultShown = true
	return nil
}

// parseOperand reads an operand or a previous result. Operands too large for
// float64 become ±Inf instead of failing, so long digit runs stay usable.
// A NaN result may carry a sign after Neg.
func parseOperand(text string) (float64, error) {
	if strings.EqualFold(strings.TrimPrefix(text, "-"), "nan") {
		return math.NaN(), nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedOperand, text)
	}
	return value, nil
}

// formatResult renders non-finite values as "inf", "-inf" and "NaN" so that
// sign toggling and parseOperand both work on them.
func formatResult(value float64) string {
	switch {
	case math.IsInf(value, 1):
		return "inf"
	case math.IsInf(value, -1):
		return "-inf"
	case math.IsNaN(value):
		return "NaN"
	}
	return strconv.FormatFloat(value, 'f', resultPrecision, 64)
}

// trimResult pops trailing '0' and '.' one at a time and never empties the text.
// Integral results lose their own trailing zeros too: "100.0000000000" becomes "1".
func trimResult(text string) string {
	for len(text) > 1 {
		last := text[len(text)-1]
		if last != '0' && last != '.' {
			break
		}
		text = text[:len(text)-1]
	}
	return text
}

func appendDigit(operand string, d rune) string {
	if operand == "0" {
		return string(d)
	}
	return operand + string(d)
}

func toggleSign(operand string) string {
	if strings.HasPrefix(operand, "-") {
		return operand[1:]
	}
	return "-" + operand
}

// toggleLeft is toggleSign for the left operand, which may not become empty
// when a lone "-" is removed.
func toggleLeft(operand string) string {
	if toggled := toggleSign(operand); toggled != "" {
		return toggled
	}
	return initialOperand
}

func dropLastRune(text string) string {
	if text == "" {
		return text
	}
	_, size := utf8.DecodeLastRuneInString(text)
	return text[:len(text)-size]
}

func isOperator(op string) bool {
	switch op {
	case string(OpAdd), string(OpSubtract), string(OpMultiply), string(OpDivide):
		return true
	}
	return false
}

// ValidateState reports whether state satisfies the buffer invariants.
func ValidateState(state State) error {
	if state.Left == "" {
		return fmt.Errorf("%w: left operand is empty", ErrInvalidState)
	}
	if state.Operator != "" && !isOperator(state.Operator) {
		return fmt.Errorf("%w: operator %q", ErrInvalidState, state.Operator)
	}
	for _, operand := range []string{state.Left, state.Right} {
		if strings.Count(operand, ".") > 1 {
			return fmt.Errorf("%w: operand %q has more than one decimal point", ErrInvalidState, operand)
		}
		if strings.LastIndex(operand, "-") > 0 {
			return fmt.Errorf("%w: operand %q has a sign after its first character", ErrInvalidState, operand)
		}
	}
	return nil
}
