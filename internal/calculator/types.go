package calculator

import "fmt"

// Kind identifies a calculator command.
type Kind int

const (
	Digit Kind = iota + 1
	Sign
	Ans
	Dot
	Neg
	Clear
	ClearEnd
	Backspace
)

func (k Kind) String() string {
	switch k {
	case Digit:
		return "digit"
	case Sign:
		return "sign"
	case Ans:
		return "ans"
	case Dot:
		return "dot"
	case Neg:
		return "neg"
	case Clear:
		return "clear"
	case ClearEnd:
		return "clear-end"
	case Backspace:
		return "backspace"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Command is a single keypad input. Key carries the digit or operator
// symbol for Digit and Sign commands and is zero otherwise.
type Command struct {
	Kind Kind
	Key  rune
}

func (c Command) String() string {
	if c.Kind == Digit || c.Kind == Sign {
		return fmt.Sprintf("%s(%c)", c.Kind, c.Key)
	}
	return c.Kind.String()
}

// Operator symbols accepted by Sign commands.
const (
	OpAdd      = '+'
	OpSubtract = '-'
	OpMultiply = '×'
	OpDivide   = '÷'
)

// State is the operand/operator buffer of a single calculation.
type State struct {
	Left        string `json:"left"`
	Operator    string `json:"operator"`
	Right       string `json:"right"`
	ResultShown bool   `json:"resultShown"`
}

// Calculator describes the behaviour required from a keypad calculator.
type Calculator interface {
	Apply(state State, cmd Command) (State, error)
}
