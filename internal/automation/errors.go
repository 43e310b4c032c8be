package automation

import (
	"errors"
	"fmt"
)

// Reason categorizes why an automation invocation failed
type Reason string

const (
	// ReasonStart means the interpreter could not be launched
	ReasonStart Reason = "start"
	// ReasonExit means the interpreter exited non-zero
	ReasonExit Reason = "exit"
	// ReasonTimeout means the invocation exceeded its deadline and was killed
	ReasonTimeout Reason = "timeout"
	// ReasonInvalidOutput means stdout was not a JSON object
	ReasonInvalidOutput Reason = "invalid_output"
	// ReasonScript means the script ran and reported its own error payload
	ReasonScript Reason = "script"
)

// Error is returned for every failed invocation
type Error struct {
	Script   string
	Reason   Reason
	ExitCode int
	Stderr   string
	// Message is the script's own error text for ReasonScript
	Message string
	// Code, Entity and Identifier are optional hints from a script error payload
	Code       string
	Entity     string
	Identifier string
	Err        error
}

func (e *Error) Error() string {
	switch e.Reason {
	case ReasonStart:
		return fmt.Sprintf("automation %s could not start: %v", e.Script, e.Err)
	case ReasonExit:
		details := e.Stderr
		if details == "" {
			details = "no output"
		}
		return fmt.Sprintf("automation %s failed (exit %d): %s", e.Script, e.ExitCode, details)
	case ReasonTimeout:
		return fmt.Sprintf("automation %s timed out: %v", e.Script, e.Err)
	case ReasonInvalidOutput:
		return fmt.Sprintf("automation %s returned invalid output: %v", e.Script, e.Err)
	default:
		return fmt.Sprintf("automation %s reported an error: %s", e.Script, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts an *Error from err
func AsError(err error) (*Error, bool) {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr, true
	}
	return nil, false
}

// IsTimeout reports whether err is an invocation timeout
func IsTimeout(err error) bool {
	aerr, ok := AsError(err)
	return ok && aerr.Reason == ReasonTimeout
}
