package models

// TaskStatus is the availability status reported by the store for a task
type TaskStatus string

const (
	TaskStatusAvailable TaskStatus = "available"
	TaskStatusNext      TaskStatus = "next"
	TaskStatusBlocked   TaskStatus = "blocked"
	TaskStatusDueSoon   TaskStatus = "due_soon"
	TaskStatusOverdue   TaskStatus = "overdue"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusDropped   TaskStatus = "dropped"
)

// IsActionable reports whether the status is one the store considers workable right now
func (s TaskStatus) IsActionable() bool {
	switch s {
	case TaskStatusAvailable, TaskStatusNext, TaskStatusDueSoon, TaskStatusOverdue:
		return true
	default:
		return false
	}
}

// RepeatMethod is the anchor a repetition rule recomputes relative to
type RepeatMethod string

const (
	RepeatMethodDue   RepeatMethod = "due"
	RepeatMethodDefer RepeatMethod = "defer"
	RepeatMethodFixed RepeatMethod = "fixed"
)

// Valid reports whether m is one of the known anchor methods
func (m RepeatMethod) Valid() bool {
	switch m {
	case RepeatMethodDue, RepeatMethodDefer, RepeatMethodFixed:
		return true
	default:
		return false
	}
}

// Repetition is a recurrence rule paired with its anchor method
type Repetition struct {
	Rule   string       `json:"rule"`
	Method RepeatMethod `json:"method"`
}

// Task is a view of a task held by the external store
type Task struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Project    string      `json:"project"`
	Due        LocalTime   `json:"due"`
	Defer      LocalTime   `json:"defer"`
	Flagged    bool        `json:"flagged"`
	Completed  bool        `json:"completed"`
	Dropped    bool        `json:"dropped"`
	Note       string      `json:"note"`
	Tags       []string    `json:"tags"`
	Repetition *Repetition `json:"repetition"`
}
