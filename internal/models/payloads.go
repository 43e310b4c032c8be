package models

import (
	"bytes"
	"encoding/json"
)

// TaskList is the list_tasks payload
type TaskList struct {
	Filter Filter `json:"filter"`
	Count  int    `json:"count"`
	Tasks  []Task `json:"tasks"`
}

// ProjectSummary holds the per-project counts of summarize_tasks
type ProjectSummary struct {
	Project  string `json:"project"`
	Total    int    `json:"total"`
	Active   int    `json:"active"`
	Flagged  int    `json:"flagged"`
	DueToday int    `json:"due_today"`
	Overdue  int    `json:"overdue"`
}

// Summary is the summarize_tasks payload
type Summary struct {
	Filter   Filter           `json:"filter"`
	Projects []ProjectSummary `json:"projects"`
}

// CreatedTask is the add_task payload
type CreatedTask struct {
	Status string `json:"status"`
	Task   Task   `json:"task"`
}

// TaskAction is returned by every single-field task mutation
type TaskAction struct {
	Status string `json:"status"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Action string `json:"action"`
}

// ProjectList is the get_projects payload
type ProjectList struct {
	Projects []Project `json:"projects"`
}

// ProjectChange is returned by drop/pause/resume
type ProjectChange struct {
	Status  string  `json:"status"`
	Action  string  `json:"action"`
	Project Project `json:"project"`
}

// TagList is the list_tags payload
type TagList struct {
	Tags []Tag `json:"tags"`
}

// TaskTags is the get_task_tags payload
type TaskTags struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// TagChange reports a tag mutation. Names that could not be resolved are
// listed in NotFound; the rest of the batch is still applied.
type TagChange struct {
	Status   string   `json:"status"`
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Added    []string `json:"added,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Tags     []string `json:"tags"`
	NotFound []string `json:"notFound"`
	// Removal selects "removed" as the reported key; otherwise "added"
	Removal bool `json:"-"`
}

type tagChangeJSON struct {
	Status   string    `json:"status"`
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Added    *[]string `json:"added,omitempty"`
	Removed  *[]string `json:"removed,omitempty"`
	Tags     []string  `json:"tags"`
	NotFound []string  `json:"notFound"`
}

// MarshalJSON always emits the key for the change's mode, even when no
// tag resolved.
func (c TagChange) MarshalJSON() ([]byte, error) {
	out := tagChangeJSON{
		Status:   c.Status,
		ID:       c.ID,
		Name:     c.Name,
		Tags:     orEmpty(c.Tags),
		NotFound: orEmpty(c.NotFound),
	}
	if c.Removal {
		removed := orEmpty(c.Removed)
		out.Removed = &removed
	} else {
		added := orEmpty(c.Added)
		out.Added = &added
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// TaskNote is the payload of every note operation
type TaskNote struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Note string `json:"note"`
}

// ErrorPayload is the response body for any failed operation
type ErrorPayload struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
