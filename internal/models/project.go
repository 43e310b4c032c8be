package models

import "strings"

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive  ProjectStatus = "active"
	ProjectStatusOnHold  ProjectStatus = "on-hold"
	ProjectStatusDropped ProjectStatus = "dropped"
	// ProjectStatusDone is reported by the store for finished projects.
	ProjectStatusDone ProjectStatus = "done"
)

// ParseProjectStatus normalizes the spellings the store uses for project status
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(normalized)
	switch normalized {
	case "active":
		return ProjectStatusActive, true
	case "onhold":
		return ProjectStatusOnHold, true
	case "dropped":
		return ProjectStatusDropped, true
	case "done", "completed":
		return ProjectStatusDone, true
	default:
		return "", false
	}
}

// ProjectAction names a status change request on a project
type ProjectAction string

const (
	ProjectActionDrop   ProjectAction = "drop"
	ProjectActionPause  ProjectAction = "pause"
	ProjectActionResume ProjectAction = "resume"
)

// Target returns the status the action moves a project into
func (a ProjectAction) Target() ProjectStatus {
	switch a {
	case ProjectActionDrop:
		return ProjectStatusDropped
	case ProjectActionPause:
		return ProjectStatusOnHold
	default:
		return ProjectStatusActive
	}
}

// CanTransition reports whether a project in status s may be moved to target.
// active <-> on-hold and active -> dropped; staying in place is always allowed
// except out of dropped/done, which this layer treats as terminal.
func (s ProjectStatus) CanTransition(target ProjectStatus) bool {
	if s == target {
		return true
	}
	switch s {
	case ProjectStatusActive:
		return target == ProjectStatusOnHold || target == ProjectStatusDropped
	case ProjectStatusOnHold:
		return target == ProjectStatusActive
	default:
		return false
	}
}

// Project is a view of a project held by the external store
type Project struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Status ProjectStatus `json:"status"`
}
