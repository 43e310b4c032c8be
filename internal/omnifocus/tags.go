package omnifocus

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/benvon/omnifocus-bridge/internal/automation"
	"github.com/benvon/omnifocus-bridge/internal/models"
)

// Tag modes understood by the task_tags script
const (
	tagModeAdd    = "add"
	tagModeRemove = "remove"
	tagModeSet    = "set"
)

// tagPathSeparator joins tag names along the ancestor chain. Callers may
// also write paths dot-joined (Home.Errands).
const (
	tagPathSeparator    = ":"
	tagPathAltSeparator = "."
)

func (s *Service) fetchTags(ctx context.Context) ([]models.Tag, error) {
	var out tagListOutput
	if err := s.call(ctx, &out, automation.ScriptListTags); err != nil {
		return nil, err
	}
	tags := make([]models.Tag, 0, len(out.Tags))
	for i := range out.Tags {
		tags = append(tags, normalizeTag(&out.Tags[i]))
	}
	return tags, nil
}

// ListTags lists every tag with its path and task counts
func (s *Service) ListTags(ctx context.Context) (models.TagList, error) {
	tags, err := s.fetchTags(ctx)
	if err != nil {
		return models.TagList{}, err
	}
	return models.TagList{Tags: tags}, nil
}

// GetTaskTags returns the names of the tags on a task
func (s *Service) GetTaskTags(ctx context.Context, taskID string) (models.TaskTags, error) {
	id, err := requireID("task_id", taskID)
	if err != nil {
		return models.TaskTags{}, err
	}
	r, err := s.getRecord(ctx, id)
	if err != nil {
		return models.TaskTags{}, err
	}
	return models.TaskTags{ID: r.task.ID, Name: r.task.Name, Tags: tagNames(r)}, nil
}

// AddTaskTags adds tags, keeping the ones already on the task
func (s *Service) AddTaskTags(ctx context.Context, taskID string, names []string) (models.TagChange, error) {
	return s.changeTags(ctx, taskID, names, tagModeAdd)
}

// RemoveTaskTags removes tags from a task
func (s *Service) RemoveTaskTags(ctx context.Context, taskID string, names []string) (models.TagChange, error) {
	return s.changeTags(ctx, taskID, names, tagModeRemove)
}

// SetTaskTags replaces all tags on a task. An empty list clears them.
func (s *Service) SetTaskTags(ctx context.Context, taskID string, names []string) (models.TagChange, error) {
	return s.changeTags(ctx, taskID, names, tagModeSet)
}

// changeTags resolves names against the tag tree and applies whatever
// resolved. Unresolved names are reported, not treated as failure.
func (s *Service) changeTags(ctx context.Context, taskID string, names []string, mode string) (models.TagChange, error) {
	id, err := requireID("task_id", taskID)
	if err != nil {
		return models.TagChange{}, err
	}
	wanted := cleanTagNames(names)
	if len(wanted) == 0 && mode != tagModeSet {
		return models.TagChange{}, validationError("tags is required")
	}

	var resolved []resolvedTag
	notFound := []string{}
	if len(wanted) > 0 {
		all, err := s.fetchTags(ctx)
		if err != nil {
			return models.TagChange{}, err
		}
		resolved, notFound = resolveTags(wanted, all)
	}

	if mode == tagModeRemove && len(resolved) > 0 {
		// Only tags the task carries count as removed.
		before, err := s.getRecord(ctx, id)
		if err != nil {
			return models.TagChange{}, err
		}
		resolved = carried(resolved, before)
	}

	var r *record
	if len(resolved) == 0 && mode != tagModeSet {
		// Nothing to apply; still confirm the task exists and report its tags.
		r, err = s.getRecord(ctx, id)
	} else {
		r, err = s.applyTags(ctx, id, mode, resolved)
	}
	if err != nil {
		return models.TagChange{}, err
	}

	applied := make([]string, 0, len(resolved))
	for _, t := range resolved {
		applied = append(applied, t.input)
	}
	change := models.TagChange{
		Status:   "ok",
		ID:       r.task.ID,
		Name:     r.task.Name,
		Tags:     tagNames(r),
		NotFound: notFound,
		Removal:  mode == tagModeRemove,
	}
	if mode == tagModeRemove {
		change.Removed = applied
	} else {
		change.Added = applied
	}
	return change, nil
}

func carried(tags []resolvedTag, r *record) []resolvedTag {
	on := make(map[string]bool, len(r.tagIDs))
	for _, id := range r.tagIDs {
		on[id] = true
	}
	out := tags[:0:0]
	for _, t := range tags {
		if on[t.tag.ID] {
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) applyTags(ctx context.Context, id, mode string, tags []resolvedTag) (*record, error) {
	ids := make([]string, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.tag.ID)
	}
	blob, err := json.Marshal(ids)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: "failed to encode tag ids", Err: err}
	}
	var out taskOutput
	if err := s.call(ctx, &out, automation.ScriptTaskTags, id, mode, string(blob)); err != nil {
		return nil, err
	}
	r, err := normalizeTask(out.Task, s.loc)
	if err != nil {
		return nil, invalidOutput(automation.ScriptTaskTags, err)
	}
	return r, nil
}

type resolvedTag struct {
	input string
	tag   models.Tag
}

// resolveTags matches each name by full path, then bare name (first wins),
// then id. Names are deduplicated by the tag they resolve to.
func resolveTags(names []string, all []models.Tag) ([]resolvedTag, []string) {
	resolved := make([]resolvedTag, 0, len(names))
	notFound := []string{}
	seen := make(map[string]bool)
	for _, name := range names {
		tag, ok := matchTag(name, all)
		if !ok {
			notFound = append(notFound, name)
			continue
		}
		if seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true
		resolved = append(resolved, resolvedTag{input: name, tag: tag})
	}
	return resolved, notFound
}

func matchTag(name string, all []models.Tag) (models.Tag, bool) {
	path := normalizeTagPath(name)
	for _, t := range all {
		if normalizeTagPath(t.Path) == path {
			return t, true
		}
	}
	for _, t := range all {
		if t.Name == name {
			return t, true
		}
	}
	for _, t := range all {
		if t.ID == name {
			return t, true
		}
	}
	return models.Tag{}, false
}

func normalizeTagPath(path string) string {
	path = strings.ReplaceAll(path, tagPathAltSeparator, tagPathSeparator)
	parts := strings.Split(path, tagPathSeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, tagPathSeparator)
}

func cleanTagNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool)
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func tagNames(r *record) []string {
	if r.task.Tags == nil {
		return []string{}
	}
	return r.task.Tags
}
