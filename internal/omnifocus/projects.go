package omnifocus

import (
	"context"

	"github.com/benvon/omnifocus-bridge/internal/automation"
	"github.com/benvon/omnifocus-bridge/internal/logger"
	"github.com/benvon/omnifocus-bridge/internal/models"
	"go.uber.org/zap"
)

func (s *Service) fetchProjects(ctx context.Context) ([]models.Project, error) {
	var out projectListOutput
	if err := s.call(ctx, &out, automation.ScriptGetProjects); err != nil {
		return nil, err
	}
	projects := make([]models.Project, 0, len(out.Projects))
	for i := range out.Projects {
		p, err := normalizeProject(&out.Projects[i])
		if err != nil {
			return nil, invalidOutput(automation.ScriptGetProjects, err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// GetProjects lists every project with its status
func (s *Service) GetProjects(ctx context.Context) (models.ProjectList, error) {
	projects, err := s.fetchProjects(ctx)
	if err != nil {
		return models.ProjectList{}, err
	}
	return models.ProjectList{Projects: projects}, nil
}

// resolveProject matches an exact project name first, then an id
func (s *Service) resolveProject(ctx context.Context, nameOrID string) (models.Project, error) {
	projects, err := s.fetchProjects(ctx)
	if err != nil {
		return models.Project{}, err
	}
	for _, p := range projects {
		if p.Name == nameOrID {
			return p, nil
		}
	}
	for _, p := range projects {
		if p.ID == nameOrID {
			return p, nil
		}
	}
	return models.Project{}, notFoundError("project", nameOrID)
}

// DropProject abandons a project. Dropped is terminal here.
func (s *Service) DropProject(ctx context.Context, projectID string) (models.ProjectChange, error) {
	return s.changeProject(ctx, projectID, models.ProjectActionDrop)
}

// PauseProject puts an active project on hold
func (s *Service) PauseProject(ctx context.Context, projectID string) (models.ProjectChange, error) {
	return s.changeProject(ctx, projectID, models.ProjectActionPause)
}

// ResumeProject reactivates an on-hold project
func (s *Service) ResumeProject(ctx context.Context, projectID string) (models.ProjectChange, error) {
	return s.changeProject(ctx, projectID, models.ProjectActionResume)
}

func (s *Service) changeProject(ctx context.Context, projectID string, action models.ProjectAction) (models.ProjectChange, error) {
	id, err := requireID("project_id", projectID)
	if err != nil {
		return models.ProjectChange{}, err
	}

	projects, err := s.fetchProjects(ctx)
	if err != nil {
		return models.ProjectChange{}, err
	}
	var current *models.Project
	for i := range projects {
		if projects[i].ID == id {
			current = &projects[i]
			break
		}
	}
	if current == nil {
		return models.ProjectChange{}, s.missingProject(ctx, id)
	}

	target := action.Target()
	if !current.Status.CanTransition(target) {
		return models.ProjectChange{}, validationError("cannot %s project %s: status is %s", action, current.Name, current.Status)
	}

	var out projectOutput
	if err := s.call(ctx, &out, automation.ScriptProjectAction, id, string(action)); err != nil {
		return models.ProjectChange{}, err
	}
	updated, err := normalizeProject(out.Project)
	if err != nil {
		return models.ProjectChange{}, invalidOutput(automation.ScriptProjectAction, err)
	}

	s.logger.Info("project_status_changed",
		zap.String("project_id", logger.SanitizeID(updated.ID)),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
	)
	return models.ProjectChange{Status: "ok", Action: string(action), Project: updated}, nil
}

// missingProject distinguishes a plain task id from an unknown id
func (s *Service) missingProject(ctx context.Context, id string) error {
	if _, err := s.getRecord(ctx, id); err == nil {
		return validationError("task %s is not a project", id)
	} else if !IsNotFound(err) {
		return err
	}
	return notFoundError("project", id)
}
