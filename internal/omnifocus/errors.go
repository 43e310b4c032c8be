package omnifocus

import (
	"errors"
	"fmt"

	"github.com/benvon/omnifocus-bridge/internal/automation"
)

// Kind categorizes an operation failure
type Kind string

const (
	// KindValidation means the request was rejected before reaching the store
	KindValidation Kind = "validation"
	// KindNotFound means a task, project or tag had no match
	KindNotFound Kind = "not_found"
	// KindAutomation means the automation call failed or returned unusable output
	KindAutomation Kind = "automation"
	// KindInternal is anything unexpected
	KindInternal Kind = "internal"
)

// Error is the error type returned by Service operations
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(entity, identifier string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, identifier)}
}

func invalidOutput(script string, cause error) *Error {
	aerr := &automation.Error{Script: script, Reason: automation.ReasonInvalidOutput, Err: cause}
	return &Error{Kind: KindAutomation, Message: aerr.Error(), Err: aerr}
}

// fromAutomation maps a runner failure onto a Kind. Script payloads with a
// not_found or invalid code keep the script's message.
func fromAutomation(err error) error {
	aerr, ok := automation.AsError(err)
	if !ok {
		return &Error{Kind: KindAutomation, Message: err.Error(), Err: err}
	}
	if aerr.Reason == automation.ReasonScript {
		switch aerr.Code {
		case "not_found":
			if aerr.Entity != "" && aerr.Identifier != "" {
				nf := notFoundError(aerr.Entity, aerr.Identifier)
				nf.Err = aerr
				return nf
			}
			return &Error{Kind: KindNotFound, Message: aerr.Message, Err: aerr}
		case "invalid":
			return &Error{Kind: KindValidation, Message: aerr.Message, Err: aerr}
		}
	}
	return &Error{Kind: KindAutomation, Message: aerr.Error(), Err: aerr}
}

// KindOf returns the Kind of err; errors not produced by this package are internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var oerr *Error
	if errors.As(err, &oerr) {
		return oerr.Kind
	}
	if _, ok := automation.AsError(err); ok {
		return KindAutomation
	}
	return KindInternal
}

// IsNotFound checks if an error is a not-found error
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// NewValidationError builds a validation error for request-shape failures
// detected outside this package
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}
