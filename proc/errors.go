package proc

import (
	"fmt"
	"os"
	"time"
)

// NotFoundError reports that the executable could not be resolved. No
// process was created.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("executable not found: %s", e.Name)
}

// TimeoutError reports that Wait exceeded its configured bound. The child
// was killed and reaped before this error was returned.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("process timed out after %s", e.Timeout)
}

// ExitError reports a non-zero or signaled exit. Wait never returns it; it
// comes from the explicit Output.Err conversion, so callers can still
// inspect partial output on failure before deciding to treat the exit as
// fatal.
type ExitError struct {
	State  *os.ProcessState
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("process failed: %v", e.State)
	}
	return fmt.Sprintf("process failed: %v: %s", e.State, e.Stderr)
}
