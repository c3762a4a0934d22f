package calculator

import "errors"

var (
	// ErrUnknownCommand is returned for command kinds, keys or tokens the keypad does not have.
	ErrUnknownCommand = errors.New("unknown calculator command")
	// ErrMalformedOperand is returned when an operand cannot be parsed as a number during compute.
	ErrMalformedOperand = errors.New("operand is not a number")
	// ErrInvalidState is returned when a state violates the buffer invariants.
	ErrInvalidState = errors.New("invalid calculator state")
)
