package omnifocus

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/benvon/omnifocus-bridge/internal/automation"
	"github.com/benvon/omnifocus-bridge/internal/logger"
	"github.com/benvon/omnifocus-bridge/internal/models"
	"github.com/benvon/omnifocus-bridge/internal/validation"
	"go.uber.org/zap"
)

// Actions reported by task mutations
const (
	ActionComplete        = "complete"
	ActionRename          = "rename"
	ActionMove            = "move"
	ActionDelete          = "delete"
	ActionFlag            = "flag"
	ActionUnflag          = "unflag"
	ActionSetDue          = "set_due"
	ActionClearDue        = "clear_due"
	ActionDefer           = "defer"
	ActionClearDefer      = "clear_defer"
	ActionSetRepetition   = "set_repetition"
	ActionClearRepetition = "clear_repetition"
)

// script-level mutate_task actions
const (
	mutateRename     = "rename"
	mutateFlag       = "flag"
	mutateDue        = "due"
	mutateDefer      = "defer"
	mutateRepetition = "repetition"
	mutateMove       = "move"
	mutateNote       = "note"
	mutateComplete   = "complete"
	mutateDelete     = "delete"
)

// inboxTarget is the move_task target naming the inbox
const inboxTarget = "inbox"

func (s *Service) mutate(ctx context.Context, taskID, action, value string) (id, name string, err error) {
	var out mutationOutput
	if err := s.call(ctx, &out, automation.ScriptMutateTask, taskID, action, value); err != nil {
		return "", "", err
	}
	return *out.Task.ID, *out.Task.Name, nil
}

func (s *Service) taskAction(ctx context.Context, taskID, scriptAction, value, reported string) (models.TaskAction, error) {
	id, err := requireID("task_id", taskID)
	if err != nil {
		return models.TaskAction{}, err
	}
	gotID, name, err := s.mutate(ctx, id, scriptAction, value)
	if err != nil {
		return models.TaskAction{}, err
	}
	s.logger.Debug("task_mutated", zap.String("task_id", logger.SanitizeID(gotID)), zap.String("action", reported))
	return models.TaskAction{Status: "ok", ID: gotID, Name: name, Action: reported}, nil
}

// CompleteTask marks a task done. Completing a completed task succeeds.
func (s *Service) CompleteTask(ctx context.Context, taskID string) (models.TaskAction, error) {
	return s.taskAction(ctx, taskID, mutateComplete, "", ActionComplete)
}

// RenameTask sets a task's name
func (s *Service) RenameTask(ctx context.Context, taskID, name string) (models.TaskAction, error) {
	clean := validation.SanitizeText(name)
	if clean == "" {
		return models.TaskAction{}, validationError("name is required")
	}
	return s.taskAction(ctx, taskID, mutateRename, clean, ActionRename)
}

// FlagTask sets or clears a task's own flag
func (s *Service) FlagTask(ctx context.Context, taskID string, flagged bool) (models.TaskAction, error) {
	action := ActionFlag
	if !flagged {
		action = ActionUnflag
	}
	return s.taskAction(ctx, taskID, mutateFlag, strconv.FormatBool(flagged), action)
}

// SetDueDate sets the due date; an empty date clears it
func (s *Service) SetDueDate(ctx context.Context, taskID, date string) (models.TaskAction, error) {
	t, err := parseInputDate("date", date, s.loc)
	if err != nil {
		return models.TaskAction{}, err
	}
	if t.IsZero() {
		return s.taskAction(ctx, taskID, mutateDue, "", ActionClearDue)
	}
	return s.taskAction(ctx, taskID, mutateDue, models.NewLocalTime(t, s.loc).String(), ActionSetDue)
}

// DeferTask sets the defer date; an empty date clears it
func (s *Service) DeferTask(ctx context.Context, taskID, date string) (models.TaskAction, error) {
	t, err := parseInputDate("date", date, s.loc)
	if err != nil {
		return models.TaskAction{}, err
	}
	if t.IsZero() {
		return s.taskAction(ctx, taskID, mutateDefer, "", ActionClearDefer)
	}
	return s.taskAction(ctx, taskID, mutateDefer, models.NewLocalTime(t, s.loc).String(), ActionDefer)
}

// SetRepetition sets a recurrence rule. "none" or an empty rule clears it.
func (s *Service) SetRepetition(ctx context.Context, taskID, rule, method string) (models.TaskAction, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" || strings.EqualFold(rule, "none") {
		return s.taskAction(ctx, taskID, mutateRepetition, "", ActionClearRepetition)
	}
	repetition, err := parseRepetition(rule, method)
	if err != nil {
		return models.TaskAction{}, err
	}
	blob, err := json.Marshal(repetition)
	if err != nil {
		return models.TaskAction{}, &Error{Kind: KindInternal, Message: "failed to encode repetition", Err: err}
	}
	return s.taskAction(ctx, taskID, mutateRepetition, string(blob), ActionSetRepetition)
}

// MoveTask moves a task into a project (by name or id) or to the inbox
func (s *Service) MoveTask(ctx context.Context, taskID, target string) (models.TaskAction, error) {
	id, err := requireID("task_id", taskID)
	if err != nil {
		return models.TaskAction{}, err
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return models.TaskAction{}, validationError("target is required")
	}

	value := ""
	if !strings.EqualFold(target, inboxTarget) {
		project, err := s.resolveProject(ctx, target)
		if err != nil {
			return models.TaskAction{}, err
		}
		value = project.ID
	}
	return s.taskAction(ctx, id, mutateMove, value, ActionMove)
}

// DeleteTask permanently removes a task
func (s *Service) DeleteTask(ctx context.Context, taskID string) (models.TaskAction, error) {
	return s.taskAction(ctx, taskID, mutateDelete, "", ActionDelete)
}
