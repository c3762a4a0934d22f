package calculator

// Engine owns the single active calculation and applies commands to it one
// at a time. It is not safe for concurrent use.
type Engine struct {
	calc  Calculator
	state State
}

// NewEngine creates an Engine holding a blank calculation.
func NewEngine() *Engine {
	return &Engine{
		calc:  New(),
		state: NewState(),
	}
}

// Apply runs cmd against the current state and returns the text to display.
// When an error is returned the state is unchanged and the display reflects it.
func (e *Engine) Apply(cmd Command) (string, error) {
	next, err := e.calc.Apply(e.state, cmd)
	if err != nil {
		return e.state.Display(), err
	}
	e.state = next
	return e.state.Display(), nil
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	return e.state
}

// Display returns the text for the current state.
func (e *Engine) Display() string {
	return e.state.Display()
}
