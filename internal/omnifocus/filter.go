package omnifocus

import (
	"time"

	"github.com/benvon/omnifocus-bridge/internal/models"
)

// dueSoonWindow is how far ahead due_soon looks
const dueSoonWindow = 24 * time.Hour

// selector evaluates filter predicates over one snapshot of records.
// Ancestor lookups only see tasks present in the snapshot.
type selector struct {
	now  time.Time
	byID map[string]*record
}

func newSelector(records []*record, now time.Time) *selector {
	byID := make(map[string]*record, len(records))
	for _, r := range records {
		byID[r.task.ID] = r
	}
	return &selector{now: now, byID: byID}
}

// ancestors walks the parent chain, stopping on a missing parent or a cycle
func (s *selector) ancestors(r *record, visit func(*record) bool) {
	seen := map[string]bool{r.task.ID: true}
	for id := r.parentID; id != "" && !seen[id]; {
		parent, ok := s.byID[id]
		if !ok {
			return
		}
		if !visit(parent) {
			return
		}
		seen[id] = true
		id = parent.parentID
	}
}

// completed and dropped trust the store's effective flags, which already
// cover a completed or dropped parent task or containing project.
func (s *selector) completed(r *record) bool {
	return r.task.Completed || r.effCompleted || r.projectStatus == models.ProjectStatusDone
}

func (s *selector) dropped(r *record) bool {
	return r.task.Dropped || r.effDropped
}

func (s *selector) flagged(r *record) bool {
	if r.task.Flagged || r.projectFlagged {
		return true
	}
	inherited := false
	s.ancestors(r, func(a *record) bool {
		inherited = a.task.Flagged
		return !inherited
	})
	return inherited
}

func (s *selector) available(r *record) bool {
	if !r.status.IsActionable() || s.completed(r) || s.dropped(r) {
		return false
	}
	if r.projectStatus == models.ProjectStatusOnHold || r.projectStatus == models.ProjectStatusDropped {
		return false
	}
	return !r.hasDefer() || !r.deferAt.After(s.now)
}

func (s *selector) match(f models.Filter, r *record) bool {
	switch f {
	case models.FilterAll:
		return !s.completed(r) && !s.dropped(r) && r.projectStatus != models.ProjectStatusDropped
	case models.FilterCompleted:
		return s.completed(r)
	case models.FilterDeferred:
		return r.status == models.TaskStatusBlocked && r.hasDefer() && r.deferAt.After(s.now) &&
			!s.completed(r) && !s.dropped(r) && r.projectStatus != models.ProjectStatusDropped
	case models.FilterFlagged:
		return s.flagged(r) && s.available(r)
	case models.FilterDueSoon:
		return s.available(r) && r.hasDue() && !r.due.After(s.now.Add(dueSoonWindow))
	case models.FilterInbox:
		return r.inInbox && r.projectID == "" && !s.completed(r) && !s.dropped(r)
	default:
		return s.available(r)
	}
}

// apply returns the matching records in enumeration order
func (s *selector) apply(f models.Filter, records []*record) []*record {
	out := make([]*record, 0, len(records))
	for _, r := range records {
		if !s.match(f, r) {
			continue
		}
		out = append(out, r)
		if f == models.FilterCompleted && len(out) >= models.CompletedLimit {
			break
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
