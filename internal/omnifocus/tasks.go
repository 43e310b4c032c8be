package omnifocus

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/benvon/omnifocus-bridge/internal/automation"
	"github.com/benvon/omnifocus-bridge/internal/models"
	"github.com/benvon/omnifocus-bridge/internal/validation"
	"go.uber.org/zap"
)

const (
	scopeOpen      = "open"
	scopeCompleted = "completed"
)

func (s *Service) fetchRecords(ctx context.Context, f models.Filter) ([]*record, error) {
	args := []string{scopeOpen}
	if f == models.FilterCompleted {
		args = []string{scopeCompleted, strconv.Itoa(models.CompletedLimit)}
	}

	var out taskListOutput
	if err := s.call(ctx, &out, automation.ScriptListTasks, args...); err != nil {
		return nil, err
	}

	records := make([]*record, 0, len(out.Tasks))
	for i := range out.Tasks {
		r, err := normalizeTask(&out.Tasks[i], s.loc)
		if err != nil {
			return nil, invalidOutput(automation.ScriptListTasks, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *Service) selectTasks(ctx context.Context, filterKey string) (models.Filter, *selector, []*record, error) {
	f, known := models.ParseFilter(filterKey)
	if !known {
		s.logger.Debug("unknown_filter_fallback", zap.String("filter", validation.SanitizeText(filterKey)))
	}
	records, err := s.fetchRecords(ctx, f)
	if err != nil {
		return f, nil, nil, err
	}
	sel := newSelector(records, s.clock())
	return f, sel, sel.apply(f, records), nil
}

// ListTasks returns the tasks matching filterKey in store order.
// Unrecognized keys select available tasks.
func (s *Service) ListTasks(ctx context.Context, filterKey string) (models.TaskList, error) {
	f, sel, matched, err := s.selectTasks(ctx, filterKey)
	if err != nil {
		return models.TaskList{}, err
	}
	tasks := make([]models.Task, 0, len(matched))
	for _, r := range matched {
		tasks = append(tasks, sel.view(r))
	}
	return models.TaskList{Filter: f, Count: len(tasks), Tasks: tasks}, nil
}

// view renders a record with effective completion applied
func (s *selector) view(r *record) models.Task {
	t := r.task
	t.Completed = s.completed(r)
	t.Dropped = s.dropped(r)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

// SummarizeTasks groups the filtered tasks by project name in first-seen
// order. Inbox tasks group under the empty project name.
func (s *Service) SummarizeTasks(ctx context.Context, filterKey string) (models.Summary, error) {
	f, sel, matched, err := s.selectTasks(ctx, filterKey)
	if err != nil {
		return models.Summary{}, err
	}

	now := sel.now
	index := make(map[string]int)
	projects := make([]models.ProjectSummary, 0)
	for _, r := range matched {
		name := r.task.Project
		i, ok := index[name]
		if !ok {
			i = len(projects)
			index[name] = i
			projects = append(projects, models.ProjectSummary{Project: name})
		}
		group := &projects[i]
		group.Total++

		available := sel.available(r)
		if available {
			group.Active++
			if sel.flagged(r) {
				group.Flagged++
			}
		}
		if r.hasDue() {
			due := r.due.In(s.loc)
			if sameDay(due, now) {
				group.DueToday++
			}
			if due.Before(now) {
				group.Overdue++
			}
		}
	}
	return models.Summary{Filter: f, Projects: projects}, nil
}

func (s *Service) getRecord(ctx context.Context, taskID string) (*record, error) {
	var out taskOutput
	if err := s.call(ctx, &out, automation.ScriptGetTask, taskID); err != nil {
		return nil, err
	}
	r, err := normalizeTask(out.Task, s.loc)
	if err != nil {
		return nil, invalidOutput(automation.ScriptGetTask, err)
	}
	return r, nil
}

// GetTask returns a single task by id
func (s *Service) GetTask(ctx context.Context, taskID string) (models.Task, error) {
	id, err := requireID("task_id", taskID)
	if err != nil {
		return models.Task{}, err
	}
	r, err := s.getRecord(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	return newSelector([]*record{r}, s.clock()).view(r), nil
}

// AddTaskInput holds the add_task fields
type AddTaskInput struct {
	Title        string
	Project      string
	Due          string
	Defer        string
	Flagged      bool
	Note         string
	RRule        string
	RepeatMethod string
}

// addTaskOptions is the JSON blob handed to the add_task script
type addTaskOptions struct {
	Name      string `json:"name"`
	ProjectID string `json:"projectId,omitempty"`
	Due       string `json:"due,omitempty"`
	Defer     string `json:"defer,omitempty"`
	Flagged   bool   `json:"flagged,omitempty"`
	Note      string `json:"note,omitempty"`
	Rule      string `json:"rule,omitempty"`
	Method    string `json:"method,omitempty"`
}

// AddTask creates one task, in the named project or the inbox. Everything
// is validated before the store is touched.
func (s *Service) AddTask(ctx context.Context, in AddTaskInput) (models.CreatedTask, error) {
	title := validation.SanitizeText(in.Title)
	if title == "" {
		return models.CreatedTask{}, validationError("title is required")
	}

	opts := addTaskOptions{Name: title, Flagged: in.Flagged, Note: in.Note}

	due, err := parseInputDate("due", in.Due, s.loc)
	if err != nil {
		return models.CreatedTask{}, err
	}
	deferAt, err := parseInputDate("defer", in.Defer, s.loc)
	if err != nil {
		return models.CreatedTask{}, err
	}
	opts.Due = models.NewLocalTime(due, s.loc).String()
	opts.Defer = models.NewLocalTime(deferAt, s.loc).String()

	if rule := strings.TrimSpace(in.RRule); rule != "" && !strings.EqualFold(rule, "none") {
		repetition, err := parseRepetition(rule, in.RepeatMethod)
		if err != nil {
			return models.CreatedTask{}, err
		}
		opts.Rule = repetition.Rule
		opts.Method = string(repetition.Method)
	}

	if name := strings.TrimSpace(in.Project); name != "" {
		project, err := s.resolveProject(ctx, name)
		if err != nil {
			return models.CreatedTask{}, err
		}
		opts.ProjectID = project.ID
	}

	blob, err := json.Marshal(opts)
	if err != nil {
		return models.CreatedTask{}, &Error{Kind: KindInternal, Message: "failed to encode task options", Err: err}
	}

	var out taskOutput
	if err := s.call(ctx, &out, automation.ScriptAddTask, string(blob)); err != nil {
		return models.CreatedTask{}, err
	}
	r, err := normalizeTask(out.Task, s.loc)
	if err != nil {
		return models.CreatedTask{}, invalidOutput(automation.ScriptAddTask, err)
	}

	s.logger.Info("task_created", zap.String("task_id", r.task.ID), zap.Bool("in_project", opts.ProjectID != ""))
	return models.CreatedTask{Status: "ok", Task: newSelector([]*record{r}, s.clock()).view(r)}, nil
}

func parseRepetition(rule, method string) (models.Repetition, error) {
	normalized, err := validation.NormalizeRRule(rule)
	if err != nil {
		return models.Repetition{}, validationError("%s", err.Error())
	}
	m, err := validation.NormalizeRepeatMethod(method)
	if err != nil {
		return models.Repetition{}, validationError("%s", err.Error())
	}
	return models.Repetition{Rule: normalized, Method: m}, nil
}
