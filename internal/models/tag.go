package models

// Tag is a view of a tag held by the external store
type Tag struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Path           string `json:"path"`
	Parent         string `json:"parent"`
	AvailableTasks int    `json:"available_tasks"`
	RemainingTasks int    `json:"remaining_tasks"`
}
