package calculator

import (
	"fmt"
	"strings"
)

// Commands without a key.
var (
	AnsKey       = Command{Kind: Ans}
	DotKey       = Command{Kind: Dot}
	NegKey       = Command{Kind: Neg}
	ClearKey     = Command{Kind: Clear}
	ClearEndKey  = Command{Kind: ClearEnd}
	BackspaceKey = Command{Kind: Backspace}
)

// DigitKey returns the command for digit d.
func DigitKey(d rune) Command {
	return Command{Kind: Digit, Key: d}
}

// SignKey returns the command selecting operator op.
func SignKey(op rune) Command {
	return Command{Kind: Sign, Key: op}
}

var namedTokens = map[string]Command{
	"+":           SignKey(OpAdd),
	"-":           SignKey(OpSubtract),
	"*":           SignKey(OpMultiply),
	"x":           SignKey(OpMultiply),
	"×":           SignKey(OpMultiply),
	"/":           SignKey(OpDivide),
	"÷":           SignKey(OpDivide),
	"=":           AnsKey,
	"ans":         AnsKey,
	".":           DotKey,
	"neg":         NegKey,
	"+/-":         NegKey,
	"±":           NegKey,
	"c":           ClearKey,
	"clear":       ClearKey,
	"ce":          ClearEndKey,
	"clear-entry": ClearEndKey,
	"bs":          BackspaceKey,
	"backspace":   BackspaceKey,
	"←":           BackspaceKey,
}

// ParseCommand maps a keypad token such as "7", "×", "=" or "ce" to its command.
func ParseCommand(token string) (Command, error) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if len(normalized) == 1 && normalized[0] >= '0' && normalized[0] <= '9' {
		return DigitKey(rune(normalized[0])), nil
	}
	if cmd, ok := namedTokens[normalized]; ok {
		return cmd, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, token)
}

// ParseCommands parses every token, failing on the first unknown one.
func ParseCommands(tokens []string) ([]Command, error) {
	cmds := make([]Command, 0, len(tokens))
	for i, token := range tokens {
		cmd, err := ParseCommand(token)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}
