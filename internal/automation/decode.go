package automation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotObject = errors.New("output is not a JSON object")

// scriptError is the payload a script emits when it fails on its own terms
type scriptError struct {
	Error  *string `json:"error"`
	Code   string  `json:"code"`
	Entity string  `json:"entity"`
	ID     string  `json:"id"`
}

// DecodeOutput checks that out is a single JSON object and converts an
// {"error": ...} payload into an *Error. The returned message is the object itself.
func DecodeOutput(script string, out []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return nil, &Error{Script: script, Reason: ReasonInvalidOutput, Err: errors.New("empty output")}
	}
	if trimmed[0] != '{' {
		return nil, &Error{Script: script, Reason: ReasonInvalidOutput, Err: errNotObject}
	}
	if !json.Valid(trimmed) {
		return nil, &Error{Script: script, Reason: ReasonInvalidOutput, Err: fmt.Errorf("output is not valid JSON")}
	}

	var probe scriptError
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, &Error{Script: script, Reason: ReasonInvalidOutput, Err: err}
	}
	if probe.Error != nil {
		return nil, &Error{
			Script:     script,
			Reason:     ReasonScript,
			Message:    *probe.Error,
			Code:       probe.Code,
			Entity:     probe.Entity,
			Identifier: probe.ID,
		}
	}
	return json.RawMessage(trimmed), nil
}
