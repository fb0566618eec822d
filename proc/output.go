package proc

import (
	"os"
	"strings"
)

// Output is the terminal snapshot of a finished process. Stdout and Stderr
// are non-nil only when the stream was captured and not taken off the Proc
// before Wait.
type Output struct {
	// State preserves whatever the OS reported, including signal
	// termination; it is not collapsed to an integer code.
	State  *os.ProcessState
	Stdout []byte
	Stderr []byte
}

// Success reports whether the process exited normally with code zero.
func (o *Output) Success() bool {
	return o.State != nil && o.State.Success()
}

// StdoutString returns captured stdout decoded as text.
func (o *Output) StdoutString() string {
	return string(o.Stdout)
}

// StderrString returns captured stderr decoded as text.
func (o *Output) StderrString() string {
	return string(o.Stderr)
}

// Err converts the outcome into a strict result: nil on success, otherwise
// an *ExitError carrying the exit state and any captured stderr.
func (o *Output) Err() error {
	if o.Success() {
		return nil
	}
	return &ExitError{State: o.State, Stderr: strings.TrimSpace(o.StderrString())}
}
