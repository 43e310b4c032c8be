// Package fakestore is an in-memory stand-in for the automation scripts.
// It speaks the same argv and JSON contract as the installed scripts so the
// bridge can be exercised without the application.
package fakestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/benvon/omnifocus-bridge/internal/automation"
)

// Task is a task held by the fake store
type Task struct {
	ID        string
	Name      string
	ParentID  string
	ProjectID string
	// Status is the store availability; empty means available
	Status    string
	Due       string
	Defer     string
	Flagged   bool
	Completed bool
	Dropped   bool
	Note      string
	TagIDs    []string
	Rule      string
	Method    string
}

// Project is a project held by the fake store
type Project struct {
	ID      string
	Name    string
	Status  string
	Flagged bool
}

// Tag is a tag held by the fake store
type Tag struct {
	ID       string
	Name     string
	ParentID string
}

// Call records one Run invocation
type Call struct {
	Script string
	Args   []string
}

// Store implements automation.Runner over in-memory data
type Store struct {
	mu       sync.Mutex
	tasks    []*Task
	projects []*Project
	tags     []*Tag
	calls    []Call
	failures map[string]error
	nextID   int
}

// New creates an empty store
func New() *Store {
	return &Store{failures: make(map[string]error)}
}

// AddProject adds a project; an empty status means active
func (s *Store) AddProject(p Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Status == "" {
		p.Status = "active"
	}
	s.projects = append(s.projects, &p)
}

// AddTag adds a tag
func (s *Store) AddTag(t Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append(s.tags, &t)
}

// AddTask adds a task
func (s *Store) AddTask(t Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, &t)
}

// Task returns a copy of a stored task
func (s *Store) Task(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.findTask(id); t != nil {
		return *t, true
	}
	return Task{}, false
}

// Project returns a copy of a stored project
func (s *Store) Project(id string) (Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.findProject(id); p != nil {
		return *p, true
	}
	return Project{}, false
}

// TaskCount returns the number of stored tasks
func (s *Store) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Fail makes every call to script return err
func (s *Store) Fail(script string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[script] = err
}

// Calls returns the invocations seen so far
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns the number of invocations seen so far
func (s *Store) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Run implements automation.Runner
func (s *Store) Run(ctx context.Context, script string, args ...string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Script: script, Args: append([]string(nil), args...)})
	if err := ctx.Err(); err != nil {
		return nil, &automation.Error{Script: script, Reason: automation.ReasonTimeout, Err: err}
	}
	if err, ok := s.failures[script]; ok {
		return nil, err
	}

	result, err := s.dispatch(script, args)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return automation.DecodeOutput(script, out)
}

func (s *Store) dispatch(script string, args []string) (any, error) {
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	switch script {
	case automation.ScriptListTasks:
		return s.listTasks(arg(0), arg(1)), nil
	case automation.ScriptGetTask:
		t := s.findTask(arg(0))
		if t == nil {
			return notFound("task", arg(0)), nil
		}
		return map[string]any{"task": s.record(t)}, nil
	case automation.ScriptAddTask:
		return s.addTask(arg(0))
	case automation.ScriptMutateTask:
		return s.mutateTask(arg(0), arg(1), arg(2))
	case automation.ScriptTaskTags:
		return s.taskTags(arg(0), arg(1), arg(2))
	case automation.ScriptListTags:
		return s.listTags(), nil
	case automation.ScriptGetProjects:
		projects := make([]map[string]any, 0, len(s.projects))
		for _, p := range s.projects {
			projects = append(projects, projectRef(p))
		}
		return map[string]any{"projects": projects}, nil
	case automation.ScriptProjectAction:
		return s.projectAction(arg(0), arg(1)), nil
	case automation.ScriptPing:
		return map[string]any{"ok": true, "version": "fake"}, nil
	default:
		return nil, &automation.Error{Script: script, Reason: automation.ReasonExit, ExitCode: 1,
			Stderr: fmt.Sprintf("script %s not installed", script)}
	}
}

func (s *Store) listTasks(scope, limit string) map[string]any {
	max, _ := strconv.Atoi(limit)
	tasks := make([]map[string]any, 0, len(s.tasks))
	for _, t := range s.tasks {
		if (scope == "completed") != s.effectivelyCompleted(t) {
			continue
		}
		tasks = append(tasks, s.record(t))
		if max > 0 && len(tasks) >= max {
			break
		}
	}
	return map[string]any{"tasks": tasks}
}

type addOptions struct {
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	Due       string `json:"due"`
	Defer     string `json:"defer"`
	Flagged   bool   `json:"flagged"`
	Note      string `json:"note"`
	Rule      string `json:"rule"`
	Method    string `json:"method"`
}

func (s *Store) addTask(blob string) (any, error) {
	var o addOptions
	if err := json.Unmarshal([]byte(blob), &o); err != nil {
		return invalid("bad options: " + err.Error()), nil
	}
	if o.ProjectID != "" && s.findProject(o.ProjectID) == nil {
		return notFound("project", o.ProjectID), nil
	}
	s.nextID++
	t := &Task{
		ID:        fmt.Sprintf("new-%d", s.nextID),
		Name:      o.Name,
		ProjectID: o.ProjectID,
		Due:       o.Due,
		Defer:     o.Defer,
		Flagged:   o.Flagged,
		Note:      o.Note,
		Rule:      o.Rule,
		Method:    o.Method,
	}
	if t.Rule != "" && t.Method == "" {
		t.Method = "due"
	}
	s.tasks = append(s.tasks, t)
	return map[string]any{"task": s.record(t)}, nil
}

func (s *Store) mutateTask(id, action, value string) (any, error) {
	t := s.findTask(id)
	if t == nil {
		return notFound("task", id), nil
	}
	switch action {
	case "rename":
		t.Name = value
	case "flag":
		t.Flagged = value == "true"
	case "due":
		t.Due = value
	case "defer":
		t.Defer = value
	case "repetition":
		if value == "" {
			t.Rule, t.Method = "", ""
			break
		}
		var r struct {
			Rule   string `json:"rule"`
			Method string `json:"method"`
		}
		if err := json.Unmarshal([]byte(value), &r); err != nil {
			return invalid("bad repetition: " + err.Error()), nil
		}
		t.Rule, t.Method = r.Rule, r.Method
	case "move":
		if value != "" && s.findProject(value) == nil {
			return notFound("project", value), nil
		}
		t.ProjectID = value
		t.ParentID = ""
	case "note":
		t.Note = value
	case "complete":
		t.Completed = true
	case "delete":
		ref := map[string]any{"id": t.ID, "name": t.Name}
		for i, cur := range s.tasks {
			if cur == t {
				s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
				break
			}
		}
		return map[string]any{"task": ref, "action": action}, nil
	default:
		return invalid("unknown action: " + action), nil
	}
	return map[string]any{"task": map[string]any{"id": t.ID, "name": t.Name}, "action": action}, nil
}

func (s *Store) taskTags(id, mode, blob string) (any, error) {
	t := s.findTask(id)
	if t == nil {
		return notFound("task", id), nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(blob), &ids); err != nil {
		return invalid("bad tag ids: " + err.Error()), nil
	}
	valid := make([]string, 0, len(ids))
	for _, tid := range ids {
		if s.findTag(tid) != nil {
			valid = append(valid, tid)
		}
	}
	switch mode {
	case "add":
		for _, tid := range valid {
			if !contains(t.TagIDs, tid) {
				t.TagIDs = append(t.TagIDs, tid)
			}
		}
	case "remove":
		kept := t.TagIDs[:0:0]
		for _, tid := range t.TagIDs {
			if !contains(valid, tid) {
				kept = append(kept, tid)
			}
		}
		t.TagIDs = kept
	case "set":
		t.TagIDs = valid
	default:
		return invalid("unknown tag mode: " + mode), nil
	}
	return map[string]any{"task": s.record(t)}, nil
}

func (s *Store) listTags() map[string]any {
	tags := make([]map[string]any, 0, len(s.tags))
	for _, g := range s.tags {
		parent := ""
		if p := s.findTag(g.ParentID); p != nil {
			parent = p.Name
		}
		available, remaining := 0, 0
		for _, t := range s.tasks {
			if !contains(t.TagIDs, g.ID) || s.effectivelyCompleted(t) || s.effectivelyDropped(t) {
				continue
			}
			remaining++
			if t.Status == "" || t.Status == "available" || t.Status == "next" {
				available++
			}
		}
		tags = append(tags, map[string]any{
			"id":        g.ID,
			"name":      g.Name,
			"path":      s.tagPath(g),
			"parent":    parent,
			"available": available,
			"remaining": remaining,
		})
	}
	return map[string]any{"tags": tags}
}

func (s *Store) projectAction(id, action string) map[string]any {
	p := s.findProject(id)
	if p == nil {
		if s.findTask(id) != nil {
			return invalid("task " + id + " is not a project")
		}
		return notFound("project", id)
	}
	switch action {
	case "drop":
		p.Status = "dropped"
	case "pause":
		p.Status = "on-hold"
	case "resume":
		p.Status = "active"
	default:
		return invalid("unknown project action: " + action)
	}
	return map[string]any{"project": projectRef(p)}
}

func (s *Store) record(t *Task) map[string]any {
	status := t.Status
	switch {
	case t.Completed:
		status = "completed"
	case t.Dropped:
		status = "dropped"
	case status == "":
		status = "available"
	}

	projectName, projectStatus, projectFlagged := "", "", false
	if p := s.findProject(t.ProjectID); p != nil {
		projectName, projectStatus, projectFlagged = p.Name, p.Status, p.Flagged
	}

	tags := make([]map[string]any, 0, len(t.TagIDs))
	for _, tid := range t.TagIDs {
		if g := s.findTag(tid); g != nil {
			tags = append(tags, map[string]any{"id": g.ID, "name": g.Name, "path": s.tagPath(g)})
		}
	}

	var repetition any
	if t.Rule != "" {
		repetition = map[string]any{"rule": t.Rule, "method": t.Method}
	}

	return map[string]any{
		"id":                   t.ID,
		"name":                 t.Name,
		"parentId":             t.ParentID,
		"projectId":            t.ProjectID,
		"project":              projectName,
		"projectStatus":        projectStatus,
		"projectFlagged":       projectFlagged,
		"inInbox":              t.ProjectID == "" && t.ParentID == "",
		"status":               status,
		"due":                  t.Due,
		"defer":                t.Defer,
		"flagged":              t.Flagged,
		"completed":            t.Completed,
		"dropped":              t.Dropped,
		"effectivelyCompleted": s.effectivelyCompleted(t),
		"effectivelyDropped":   s.effectivelyDropped(t),
		"note":                 t.Note,
		"tags":                 tags,
		"repetition":           repetition,
	}
}

// effectivelyCompleted reports whether t, a parent task or its project is done
func (s *Store) effectivelyCompleted(t *Task) bool {
	return s.inherits(t, "done", func(cur *Task) bool { return cur.Completed })
}

// effectivelyDropped reports whether t, a parent task or its project is dropped
func (s *Store) effectivelyDropped(t *Task) bool {
	return s.inherits(t, "dropped", func(cur *Task) bool { return cur.Dropped })
}

func (s *Store) inherits(t *Task, projectStatus string, own func(*Task) bool) bool {
	seen := map[string]bool{}
	for cur := t; cur != nil && !seen[cur.ID]; cur = s.findTask(cur.ParentID) {
		seen[cur.ID] = true
		if own(cur) {
			return true
		}
		if p := s.findProject(cur.ProjectID); p != nil && p.Status == projectStatus {
			return true
		}
	}
	return false
}

func (s *Store) tagPath(g *Tag) string {
	parts := []string{g.Name}
	seen := map[string]bool{g.ID: true}
	for p := s.findTag(g.ParentID); p != nil && !seen[p.ID]; p = s.findTag(p.ParentID) {
		seen[p.ID] = true
		parts = append([]string{p.Name}, parts...)
	}
	return strings.Join(parts, ":")
}

func (s *Store) findTask(id string) *Task {
	for _, t := range s.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Store) findProject(id string) *Project {
	if id == "" {
		return nil
	}
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Store) findTag(id string) *Tag {
	if id == "" {
		return nil
	}
	for _, g := range s.tags {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func projectRef(p *Project) map[string]any {
	return map[string]any{"id": p.ID, "name": p.Name, "status": p.Status}
}

func notFound(entity, id string) map[string]any {
	return map[string]any{"error": entity + " not found: " + id, "code": "not_found", "entity": entity, "id": id}
}

func invalid(message string) map[string]any {
	return map[string]any{"error": message, "code": "invalid"}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
