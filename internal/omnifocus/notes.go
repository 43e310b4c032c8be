package omnifocus

import (
	"context"

	"github.com/benvon/omnifocus-bridge/internal/models"
)

// Note text is passed through untouched in both directions.

// GetTaskNote returns a task's note
func (s *Service) GetTaskNote(ctx context.Context, taskID string) (models.TaskNote, error) {
	id, err := requireID("task_id", taskID)
	if err != nil {
		return models.TaskNote{}, err
	}
	r, err := s.getRecord(ctx, id)
	if err != nil {
		return models.TaskNote{}, err
	}
	return models.TaskNote{ID: r.task.ID, Name: r.task.Name, Note: r.task.Note}, nil
}

// SetTaskNote replaces a task's note
func (s *Service) SetTaskNote(ctx context.Context, taskID, note string) (models.TaskNote, error) {
	id, err := requireID("task_id", taskID)
	if err != nil {
		return models.TaskNote{}, err
	}
	return s.writeNote(ctx, id, note)
}

// AppendTaskNote adds text on a new line after the existing note, or sets
// the note when there is none.
func (s *Service) AppendTaskNote(ctx context.Context, taskID, text string) (models.TaskNote, error) {
	id, err := requireID("task_id", taskID)
	if err != nil {
		return models.TaskNote{}, err
	}
	if text == "" {
		return models.TaskNote{}, validationError("note is required")
	}
	r, err := s.getRecord(ctx, id)
	if err != nil {
		return models.TaskNote{}, err
	}
	note := text
	if r.task.Note != "" {
		note = r.task.Note + "\n" + text
	}
	return s.writeNote(ctx, id, note)
}

// ClearTaskNote empties a task's note
func (s *Service) ClearTaskNote(ctx context.Context, taskID string) (models.TaskNote, error) {
	id, err := requireID("task_id", taskID)
	if err != nil {
		return models.TaskNote{}, err
	}
	return s.writeNote(ctx, id, "")
}

func (s *Service) writeNote(ctx context.Context, id, note string) (models.TaskNote, error) {
	gotID, name, err := s.mutate(ctx, id, mutateNote, note)
	if err != nil {
		return models.TaskNote{}, err
	}
	return models.TaskNote{ID: gotID, Name: name, Note: note}, nil
}
