package omnifocus

import (
	"fmt"
	"time"

	"github.com/benvon/omnifocus-bridge/internal/models"
)

// Raw shapes emitted by the automation scripts. Pointer fields mark keys
// that must be present; the validator rejects records that lack them.

type rawTagRef struct {
	ID   *string `json:"id" validate:"required,min=1"`
	Name *string `json:"name" validate:"required"`
	Path string  `json:"path"`
}

type rawRepetition struct {
	Rule   string `json:"rule" validate:"required"`
	Method string `json:"method"`
}

type rawTask struct {
	ID             *string        `json:"id" validate:"required,min=1"`
	Name           *string        `json:"name" validate:"required"`
	ParentID       string         `json:"parentId"`
	ProjectID      string         `json:"projectId"`
	Project        string         `json:"project"`
	ProjectStatus  string         `json:"projectStatus"`
	ProjectFlagged bool           `json:"projectFlagged"`
	InInbox        bool           `json:"inInbox"`
	Status         *string        `json:"status" validate:"required"`
	Due            string         `json:"due"`
	Defer          string         `json:"defer"`
	Flagged        *bool          `json:"flagged" validate:"required"`
	Completed      *bool          `json:"completed" validate:"required"`
	Dropped        *bool          `json:"dropped" validate:"required"`
	EffCompleted   bool           `json:"effectivelyCompleted"`
	EffDropped     bool           `json:"effectivelyDropped"`
	Note           string         `json:"note"`
	Tags           []rawTagRef    `json:"tags" validate:"dive"`
	Repetition     *rawRepetition `json:"repetition"`
}

type rawTaskRef struct {
	ID   *string `json:"id" validate:"required,min=1"`
	Name *string `json:"name" validate:"required"`
}

type rawProject struct {
	ID     *string `json:"id" validate:"required,min=1"`
	Name   *string `json:"name" validate:"required"`
	Status *string `json:"status" validate:"required"`
}

type rawTag struct {
	ID        *string `json:"id" validate:"required,min=1"`
	Name      *string `json:"name" validate:"required"`
	Path      string  `json:"path"`
	Parent    string  `json:"parent"`
	Available int     `json:"available"`
	Remaining int     `json:"remaining"`
}

type taskListOutput struct {
	Tasks []rawTask `json:"tasks" validate:"required,dive"`
}

type taskOutput struct {
	Task *rawTask `json:"task" validate:"required"`
}

type mutationOutput struct {
	Task   *rawTaskRef `json:"task" validate:"required"`
	Action string      `json:"action"`
}

type projectListOutput struct {
	Projects []rawProject `json:"projects" validate:"required,dive"`
}

type projectOutput struct {
	Project *rawProject `json:"project" validate:"required"`
}

type tagListOutput struct {
	Tags []rawTag `json:"tags" validate:"required,dive"`
}

type pingOutput struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
}

// record is a normalized task plus the relations the filters need
type record struct {
	task           models.Task
	parentID       string
	projectID      string
	projectStatus  models.ProjectStatus
	projectFlagged bool
	inInbox        bool
	status         models.TaskStatus
	due            time.Time
	deferAt        time.Time
	tagIDs         []string
	// effective flags include completion or dropping through a parent or project
	effCompleted bool
	effDropped   bool
}

func (r *record) hasDefer() bool {
	return !r.deferAt.IsZero()
}

func (r *record) hasDue() bool {
	return !r.due.IsZero()
}

func normalizeTask(raw *rawTask, loc *time.Location) (*record, error) {
	due, err := parseStoreDate(raw.Due, loc)
	if err != nil {
		return nil, fmt.Errorf("task %s: due: %w", *raw.ID, err)
	}
	deferAt, err := parseStoreDate(raw.Defer, loc)
	if err != nil {
		return nil, fmt.Errorf("task %s: defer: %w", *raw.ID, err)
	}

	var projectStatus models.ProjectStatus
	if raw.ProjectStatus != "" {
		ps, ok := models.ParseProjectStatus(raw.ProjectStatus)
		if !ok {
			return nil, fmt.Errorf("task %s: unknown project status %q", *raw.ID, raw.ProjectStatus)
		}
		projectStatus = ps
	}

	tags := make([]string, 0, len(raw.Tags))
	tagIDs := make([]string, 0, len(raw.Tags))
	for _, tag := range raw.Tags {
		tags = append(tags, *tag.Name)
		tagIDs = append(tagIDs, *tag.ID)
	}

	var repetition *models.Repetition
	if raw.Repetition != nil {
		method := models.RepeatMethod(raw.Repetition.Method)
		if !method.Valid() {
			method = models.RepeatMethodDue
		}
		repetition = &models.Repetition{Rule: raw.Repetition.Rule, Method: method}
	}

	project := raw.Project
	if raw.InInbox || raw.ProjectID == "" {
		project = ""
	}

	status := models.TaskStatus(*raw.Status)
	return &record{
		task: models.Task{
			ID:         *raw.ID,
			Name:       *raw.Name,
			Project:    project,
			Due:        models.NewLocalTime(due, loc),
			Defer:      models.NewLocalTime(deferAt, loc),
			Flagged:    *raw.Flagged,
			Completed:  *raw.Completed || status == models.TaskStatusCompleted,
			Dropped:    *raw.Dropped || status == models.TaskStatusDropped,
			Note:       raw.Note,
			Tags:       tags,
			Repetition: repetition,
		},
		parentID:       raw.ParentID,
		projectID:      raw.ProjectID,
		projectStatus:  projectStatus,
		projectFlagged: raw.ProjectFlagged,
		inInbox:        raw.InInbox,
		effCompleted:   raw.EffCompleted,
		effDropped:     raw.EffDropped,
		status:         status,
		due:            due,
		deferAt:        deferAt,
		tagIDs:         tagIDs,
	}, nil
}

func normalizeProject(raw *rawProject) (models.Project, error) {
	status, ok := models.ParseProjectStatus(*raw.Status)
	if !ok {
		return models.Project{}, fmt.Errorf("project %s: unknown status %q", *raw.ID, *raw.Status)
	}
	return models.Project{ID: *raw.ID, Name: *raw.Name, Status: status}, nil
}

func normalizeTag(raw *rawTag) models.Tag {
	path := raw.Path
	if path == "" {
		path = *raw.Name
	}
	return models.Tag{
		ID:             *raw.ID,
		Name:           *raw.Name,
		Path:           path,
		Parent:         raw.Parent,
		AvailableTasks: raw.Available,
		RemainingTasks: raw.Remaining,
	}
}

func parseStoreDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return models.ParseStoreTime(s, loc)
}
