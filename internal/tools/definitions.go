package tools

import (
	"context"

	"github.com/benvon/omnifocus-bridge/internal/models"
	"github.com/benvon/omnifocus-bridge/internal/omnifocus"
)

type noArgs struct{}

var (
	taskIDParam    = Param{Name: "task_id", Type: TypeString, Description: "Task identifier", Required: true}
	projectIDParam = Param{Name: "project_id", Type: TypeString, Description: "Project identifier", Required: true}
	tagsParam      = Param{Name: "tags", Type: TypeArray, Description: "Tag names, paths joined by colons or dots (Home:Errands, Home.Errands) or ids"}
)

func filterParam() Param {
	names := make([]string, 0, len(models.Filters))
	for _, f := range models.Filters {
		names = append(names, string(f))
	}
	return Param{
		Name:        "filter",
		Type:        TypeString,
		Description: "Task filter; unrecognized values select available tasks",
		Enum:        names,
	}
}

var repeatMethods = []string{string(models.RepeatMethodDue), string(models.RepeatMethodDefer), string(models.RepeatMethodFixed)}

func definitions() []Tool {
	return []Tool{
		{
			Name:        "list_tasks",
			Description: "List tasks matching a filter, in store order",
			Params:      []Param{filterParam()},
			ReadOnly:    true,
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req filterRequest) (any, error) {
				return ops.ListTasks(ctx, req.Filter)
			}),
		},
		{
			Name:        "summarize_tasks",
			Description: "Count tasks per project: total, active, flagged, due today and overdue",
			Params:      []Param{filterParam()},
			ReadOnly:    true,
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req filterRequest) (any, error) {
				return ops.SummarizeTasks(ctx, req.Filter)
			}),
		},
		{
			Name:        "get_task",
			Description: "Get a single task by id",
			Params:      []Param{taskIDParam},
			ReadOnly:    true,
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req taskRequest) (any, error) {
				return ops.GetTask(ctx, req.TaskID)
			}),
		},
		{
			Name:        "add_task",
			Description: "Create a task in a project (exact name or id) or in the inbox",
			Params: []Param{
				{Name: "title", Type: TypeString, Description: "Task title", Required: true},
				{Name: "project", Type: TypeString, Description: "Project name or id; omit for the inbox"},
				{Name: "due", Type: TypeString, Description: "Due date, YYYY-MM-DD[THH:MM[:SS]] in the store's local time"},
				{Name: "defer", Type: TypeString, Description: "Defer date, YYYY-MM-DD[THH:MM[:SS]] in the store's local time"},
				{Name: "flagged", Type: TypeBoolean, Description: "Flag the task"},
				{Name: "note", Type: TypeString, Description: "Note text"},
				{Name: "rrule", Type: TypeString, Description: "Recurrence rule, e.g. FREQ=WEEKLY"},
				{Name: "repeat_method", Type: TypeString, Description: "Repetition anchor (default due)", Enum: repeatMethods},
			},
			invoke: bind(func(ctx context.Context, ops Operations, req addTaskRequest) (any, error) {
				return ops.AddTask(ctx, omnifocus.AddTaskInput{
					Title:        req.Title,
					Project:      req.Project,
					Due:          req.Due,
					Defer:        req.Defer,
					Flagged:      req.Flagged,
					Note:         req.Note,
					RRule:        req.RRule,
					RepeatMethod: req.RepeatMethod,
				})
			}),
		},
		{
			Name:        "get_projects",
			Description: "List all projects with their status",
			ReadOnly:    true,
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, _ noArgs) (any, error) {
				return ops.GetProjects(ctx)
			}),
		},
		{
			Name:        "complete_task",
			Description: "Mark a task complete",
			Params:      []Param{taskIDParam},
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req taskRequest) (any, error) {
				return ops.CompleteTask(ctx, req.TaskID)
			}),
		},
		{
			Name:        "rename_task",
			Description: "Rename a task",
			Params:      []Param{taskIDParam, {Name: "name", Type: TypeString, Description: "New name", Required: true}},
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req renameRequest) (any, error) {
				return ops.RenameTask(ctx, req.TaskID, req.Name)
			}),
		},
		{
			Name:        "move_task",
			Description: "Move a task to a project (name or id) or to the inbox",
			Params: []Param{
				taskIDParam,
				{Name: "target", Type: TypeString, Description: `Project name or id, or "inbox"`, Required: true},
			},
			Idempotent: true,
			invoke: bind(func(ctx context.Context, ops Operations, req moveRequest) (any, error) {
				return ops.MoveTask(ctx, req.TaskID, req.Target)
			}),
		},
		{
			Name:        "delete_task",
			Description: "Permanently delete a task",
			Params:      []Param{taskIDParam},
			Destructive: true,
			invoke: bind(func(ctx context.Context, ops Operations, req taskRequest) (any, error) {
				return ops.DeleteTask(ctx, req.TaskID)
			}),
		},
		{
			Name:        "flag_task",
			Description: "Set or clear a task's flag",
			Params:      []Param{taskIDParam, {Name: "flagged", Type: TypeBoolean, Description: "Flag state", Required: true}},
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req flagRequest) (any, error) {
				return ops.FlagTask(ctx, req.TaskID, *req.Flagged)
			}),
		},
		{
			Name:        "defer_task",
			Description: "Set a task's defer date; omit date to clear it",
			Params:      []Param{taskIDParam, {Name: "date", Type: TypeString, Description: "Defer date, YYYY-MM-DD[THH:MM[:SS]]"}},
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req dateRequest) (any, error) {
				return ops.DeferTask(ctx, req.TaskID, req.Date)
			}),
		},
		{
			Name:        "set_due_date",
			Description: "Set a task's due date; omit date to clear it",
			Params:      []Param{taskIDParam, {Name: "date", Type: TypeString, Description: "Due date, YYYY-MM-DD[THH:MM[:SS]]"}},
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req dateRequest) (any, error) {
				return ops.SetDueDate(ctx, req.TaskID, req.Date)
			}),
		},
		{
			Name:        "set_repetition",
			Description: `Set a task's recurrence rule, or "none" to clear it`,
			Params: []Param{
				taskIDParam,
				{Name: "rrule", Type: TypeString, Description: `Recurrence rule such as FREQ=WEEKLY, or "none"`, Required: true},
				{Name: "method", Type: TypeString, Description: "Repetition anchor (default due)", Enum: repeatMethods},
			},
			Idempotent: true,
			invoke: bind(func(ctx context.Context, ops Operations, req repetitionRequest) (any, error) {
				return ops.SetRepetition(ctx, req.TaskID, req.RRule, req.Method)
			}),
		},
		{
			Name:        "drop_project",
			Description: "Drop an active project; dropped projects cannot be resumed here",
			Params:      []Param{projectIDParam},
			Destructive: true,
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req projectRequest) (any, error) {
				return ops.DropProject(ctx, req.ProjectID)
			}),
		},
		{
			Name:        "pause_project",
			Description: "Put an active project on hold",
			Params:      []Param{projectIDParam},
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req projectRequest) (any, error) {
				return ops.PauseProject(ctx, req.ProjectID)
			}),
		},
		{
			Name:        "resume_project",
			Description: "Make an on-hold project active again",
			Params:      []Param{projectIDParam},
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req projectRequest) (any, error) {
				return ops.ResumeProject(ctx, req.ProjectID)
			}),
		},
		{
			Name:        "list_tags",
			Description: "List all tags with paths and task counts",
			ReadOnly:    true,
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, _ noArgs) (any, error) {
				return ops.ListTags(ctx)
			}),
		},
		{
			Name:        "get_task_tags",
			Description: "List the tags on a task",
			Params:      []Param{taskIDParam},
			ReadOnly:    true,
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req taskRequest) (any, error) {
				return ops.GetTaskTags(ctx, req.TaskID)
			}),
		},
		{
			Name:        "add_task_tags",
			Description: "Add tags to a task; unknown tags are reported in notFound",
			Params:      []Param{taskIDParam, tagsParam},
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req tagsRequest) (any, error) {
				return ops.AddTaskTags(ctx, req.TaskID, req.Tags)
			}),
		},
		{
			Name:        "remove_task_tags",
			Description: "Remove tags from a task; unknown tags are reported in notFound",
			Params:      []Param{taskIDParam, tagsParam},
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req tagsRequest) (any, error) {
				return ops.RemoveTaskTags(ctx, req.TaskID, req.Tags)
			}),
		},
		{
			Name:        "set_task_tags",
			Description: "Replace all tags on a task; an empty list clears them",
			Params:      []Param{taskIDParam, tagsParam},
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req tagsRequest) (any, error) {
				return ops.SetTaskTags(ctx, req.TaskID, req.Tags)
			}),
		},
		{
			Name:        "get_task_note",
			Description: "Get a task's note",
			Params:      []Param{taskIDParam},
			ReadOnly:    true,
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req taskRequest) (any, error) {
				return ops.GetTaskNote(ctx, req.TaskID)
			}),
		},
		{
			Name:        "set_task_note",
			Description: "Replace a task's note",
			Params:      []Param{taskIDParam, {Name: "note", Type: TypeString, Description: "Note text"}},
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req noteRequest) (any, error) {
				return ops.SetTaskNote(ctx, req.TaskID, req.Note)
			}),
		},
		{
			Name:        "append_task_note",
			Description: "Append text to a task's note on a new line",
			Params:      []Param{taskIDParam, {Name: "note", Type: TypeString, Description: "Text to append", Required: true}},
			invoke: bind(func(ctx context.Context, ops Operations, req noteRequest) (any, error) {
				return ops.AppendTaskNote(ctx, req.TaskID, req.Note)
			}),
		},
		{
			Name:        "clear_task_note",
			Description: "Clear a task's note",
			Params:      []Param{taskIDParam},
			Idempotent:  true,
			invoke: bind(func(ctx context.Context, ops Operations, req taskRequest) (any, error) {
				return ops.ClearTaskNote(ctx, req.TaskID)
			}),
		},
	}
}
