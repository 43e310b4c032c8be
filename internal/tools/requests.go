package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StringList accepts a JSON array of strings or a single comma-separated string
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*l = out
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return errors.New("must be an array of strings or a comma-separated string")
	}
	*l = list
	return nil
}

type filterRequest struct {
	Filter string `json:"filter"`
}

type taskRequest struct {
	TaskID string `json:"task_id" validate:"required,store_id"`
}

type addTaskRequest struct {
	Title        string `json:"title" validate:"notblank_text"`
	Project      string `json:"project"`
	Due          string `json:"due"`
	Defer        string `json:"defer"`
	Flagged      bool   `json:"flagged"`
	Note         string `json:"note"`
	RRule        string `json:"rrule"`
	RepeatMethod string `json:"repeat_method" validate:"repeat_method"`
}

type renameRequest struct {
	TaskID string `json:"task_id" validate:"required,store_id"`
	Name   string `json:"name" validate:"notblank_text"`
}

type moveRequest struct {
	TaskID string `json:"task_id" validate:"required,store_id"`
	Target string `json:"target" validate:"notblank_text"`
}

type flagRequest struct {
	TaskID  string `json:"task_id" validate:"required,store_id"`
	Flagged *bool  `json:"flagged" validate:"required"`
}

type dateRequest struct {
	TaskID string `json:"task_id" validate:"required,store_id"`
	Date   string `json:"date"`
}

type repetitionRequest struct {
	TaskID string `json:"task_id" validate:"required,store_id"`
	RRule  string `json:"rrule" validate:"notblank_text"`
	Method string `json:"method" validate:"repeat_method"`
}

type projectRequest struct {
	ProjectID string `json:"project_id" validate:"required,store_id"`
}

type tagsRequest struct {
	TaskID string     `json:"task_id" validate:"required,store_id"`
	Tags   StringList `json:"tags"`
}

type noteRequest struct {
	TaskID string `json:"task_id" validate:"required,store_id"`
	Note   string `json:"note"`
}

// decodeArgs reads a JSON object into req. Empty input and null are treated
// as an empty object.
func decodeArgs(raw json.RawMessage, req any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] != '{' {
		return errors.New("arguments must be a JSON object")
	}
	if err := json.Unmarshal(trimmed, req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return fmt.Errorf("%s must be of type %s", typeErr.Field, jsonTypeName(typeErr.Type.Kind().String()))
		}
		return fmt.Errorf("invalid arguments: %v", err)
	}
	return nil
}

func jsonTypeName(kind string) string {
	switch kind {
	case "bool":
		return "boolean"
	case "slice":
		return "array"
	default:
		return kind
	}
}
