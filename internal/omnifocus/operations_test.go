package omnifocus

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/benvon/omnifocus-bridge/internal/automation"
	"github.com/benvon/omnifocus-bridge/internal/models"
	"github.com/benvon/omnifocus-bridge/internal/omnifocus/fakestore"
)

func operationsFixture() *fakestore.Store {
	s := fakestore.New()
	s.AddProject(fakestore.Project{ID: "p-work", Name: "Work"})
	s.AddProject(fakestore.Project{ID: "p-home", Name: "Home"})
	s.AddProject(fakestore.Project{ID: "p-hold", Name: "Someday", Status: "on-hold"})
	s.AddProject(fakestore.Project{ID: "p-dead", Name: "Old", Status: "dropped"})
	s.AddTag(fakestore.Tag{ID: "g-work", Name: "Work"})
	s.AddTag(fakestore.Tag{ID: "g-home", Name: "Home"})
	s.AddTag(fakestore.Tag{ID: "g-errands", Name: "Errands", ParentID: "g-home"})
	s.AddTag(fakestore.Tag{ID: "g-work-errands", Name: "Errands", ParentID: "g-work"})
	s.AddTask(fakestore.Task{ID: "t1", Name: "Write report", ProjectID: "p-work"})
	s.AddTask(fakestore.Task{ID: "t2", Name: "Buy milk"})
	return s
}

func TestAddTask_EmptyTitleMakesNoCalls(t *testing.T) {
	t.Parallel()

	for _, title := range []string{"", "   ", "\t\n"} {
		store := operationsFixture()
		_, err := newTestService(store).AddTask(context.Background(), AddTaskInput{Title: title, Project: "Work"})
		if !IsValidation(err) {
			t.Errorf("Expected validation error for %q, got %v", title, err)
		}
		if store.CallCount() != 0 {
			t.Errorf("Expected zero automation calls, got %d", store.CallCount())
		}
		if store.TaskCount() != 2 {
			t.Errorf("Expected no task to be created, have %d", store.TaskCount())
		}
	}
}

func TestAddTask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     AddTaskInput
		wantKind  Kind
		wantMsg   string
		wantCalls int
		validate  func(*testing.T, models.CreatedTask, *fakestore.Store)
	}{
		{
			name:      "inbox task",
			input:     AddTaskInput{Title: "  Call Bob  "},
			wantCalls: 1,
			validate: func(t *testing.T, created models.CreatedTask, _ *fakestore.Store) {
				if created.Task.Name != "Call Bob" {
					t.Errorf("Expected trimmed title 'Call Bob', got '%s'", created.Task.Name)
				}
				if created.Task.Project != "" {
					t.Errorf("Expected inbox task, got project '%s'", created.Task.Project)
				}
			},
		},
		{
			name: "project by name with every field",
			input: AddTaskInput{
				Title: "Plan offsite", Project: "Work", Due: "2026-03-20", Defer: "2026-03-15T09:30",
				Flagged: true, Note: "line one\nline \"two\"", RRule: "FREQ=MONTHLY", RepeatMethod: "fixed",
			},
			wantCalls: 2,
			validate: func(t *testing.T, created models.CreatedTask, store *fakestore.Store) {
				task := created.Task
				if created.Status != "ok" {
					t.Errorf("Expected status ok, got %s", created.Status)
				}
				if task.Project != "Work" {
					t.Errorf("Expected project Work, got '%s'", task.Project)
				}
				if task.Due.String() != "2026-03-20T00:00:00" {
					t.Errorf("Expected due '2026-03-20T00:00:00', got '%s'", task.Due.String())
				}
				if task.Defer.String() != "2026-03-15T09:30:00" {
					t.Errorf("Expected defer '2026-03-15T09:30:00', got '%s'", task.Defer.String())
				}
				if !task.Flagged {
					t.Error("Expected task to be flagged")
				}
				if task.Note != "line one\nline \"two\"" {
					t.Errorf("Expected note to be kept verbatim, got %q", task.Note)
				}
				if task.Repetition == nil || task.Repetition.Rule != "FREQ=MONTHLY" || task.Repetition.Method != models.RepeatMethodFixed {
					t.Errorf("Expected monthly/fixed repetition, got %+v", task.Repetition)
				}
				stored, ok := store.Task(task.ID)
				if !ok || stored.ProjectID != "p-work" {
					t.Errorf("Expected stored task in p-work, got %+v", stored)
				}
			},
		},
		{
			name:      "project by id",
			input:     AddTaskInput{Title: "Fix sink", Project: "p-home"},
			wantCalls: 2,
			validate: func(t *testing.T, created models.CreatedTask, _ *fakestore.Store) {
				if created.Task.Project != "Home" {
					t.Errorf("Expected project Home, got '%s'", created.Task.Project)
				}
			},
		},
		{
			name:      "repeat method defaults to due",
			input:     AddTaskInput{Title: "Standup", RRule: "RRULE:FREQ=DAILY"},
			wantCalls: 1,
			validate: func(t *testing.T, created models.CreatedTask, _ *fakestore.Store) {
				if created.Task.Repetition == nil || created.Task.Repetition.Method != models.RepeatMethodDue {
					t.Errorf("Expected due-anchored repetition, got %+v", created.Task.Repetition)
				}
				if created.Task.Repetition.Rule != "FREQ=DAILY" {
					t.Errorf("Expected prefix stripped, got '%s'", created.Task.Repetition.Rule)
				}
			},
		},
		{
			name:      "unknown project is an error, not an inbox fallback",
			input:     AddTaskInput{Title: "Orphan", Project: "Nope"},
			wantKind:  KindNotFound,
			wantMsg:   "project not found: Nope",
			wantCalls: 1,
		},
		{name: "bad due date", input: AddTaskInput{Title: "x", Due: "next tuesday"}, wantKind: KindValidation},
		{name: "bad rrule", input: AddTaskInput{Title: "x", RRule: "FREQ=SOMETIMES"}, wantKind: KindValidation},
		{name: "bad repeat method", input: AddTaskInput{Title: "x", RRule: "FREQ=DAILY", RepeatMethod: "weekly"}, wantKind: KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := operationsFixture()
			created, err := newTestService(store).AddTask(context.Background(), tt.input)
			if tt.wantKind != "" {
				if KindOf(err) != tt.wantKind {
					t.Fatalf("Expected kind %s, got %s (%v)", tt.wantKind, KindOf(err), err)
				}
				if tt.wantMsg != "" && err.Error() != tt.wantMsg {
					t.Errorf("Expected message '%s', got '%s'", tt.wantMsg, err.Error())
				}
				if store.TaskCount() != 2 {
					t.Errorf("Expected no task to be created, have %d", store.TaskCount())
				}
			} else if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if store.CallCount() != tt.wantCalls {
				t.Errorf("Expected %d automation calls, got %d", tt.wantCalls, store.CallCount())
			}
			if tt.validate != nil {
				tt.validate(t, created, store)
			}
		})
	}
}

func TestCompleteTask_Idempotent(t *testing.T) {
	t.Parallel()

	svc := newTestService(operationsFixture())
	first, err := svc.CompleteTask(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := svc.CompleteTask(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Expected second completion to succeed, got %v", err)
	}
	if first != second {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
	want := models.TaskAction{Status: "ok", ID: "t1", Name: "Write report", Action: ActionComplete}
	if first != want {
		t.Errorf("Expected %+v, got %+v", want, first)
	}
}

func TestFlagTask_Idempotent(t *testing.T) {
	t.Parallel()

	store := operationsFixture()
	svc := newTestService(store)
	for i := 0; i < 2; i++ {
		res, err := svc.FlagTask(context.Background(), "t2", true)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if res.Action != ActionFlag || res.ID != "t2" {
			t.Errorf("Unexpected result %+v", res)
		}
	}
	if task, _ := store.Task("t2"); !task.Flagged {
		t.Error("Expected task to be flagged")
	}

	res, err := svc.FlagTask(context.Background(), "t2", false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Action != ActionUnflag {
		t.Errorf("Expected action unflag, got %s", res.Action)
	}
}

func TestSetRepetition_NoneClears(t *testing.T) {
	t.Parallel()

	svc := newTestService(operationsFixture())
	ctx := context.Background()

	if _, err := svc.SetRepetition(ctx, "t1", "FREQ=WEEKLY", "due"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	task, err := svc.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Repetition == nil || task.Repetition.Rule != "FREQ=WEEKLY" {
		t.Fatalf("Expected weekly repetition, got %+v", task.Repetition)
	}

	res, err := svc.SetRepetition(ctx, "t1", "none", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Action != ActionClearRepetition {
		t.Errorf("Expected action clear_repetition, got %s", res.Action)
	}
	task, err = svc.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Repetition != nil {
		t.Errorf("Expected no repetition, got %+v", task.Repetition)
	}
}

func TestMoveTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("to inbox", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(operationsFixture())
		res, err := svc.MoveTask(ctx, "t1", "Inbox")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if res.Action != ActionMove {
			t.Errorf("Expected action move, got %s", res.Action)
		}
		list, err := svc.ListTasks(ctx, "all")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		for _, task := range list.Tasks {
			if task.ID == "t1" && task.Project != "" {
				t.Errorf("Expected empty project after move to inbox, got '%s'", task.Project)
			}
		}
	})

	t.Run("to project by name", func(t *testing.T) {
		t.Parallel()

		store := operationsFixture()
		if _, err := newTestService(store).MoveTask(ctx, "t2", "Home"); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if task, _ := store.Task("t2"); task.ProjectID != "p-home" {
			t.Errorf("Expected task in p-home, got '%s'", task.ProjectID)
		}
	})

	t.Run("unknown project", func(t *testing.T) {
		t.Parallel()

		_, err := newTestService(operationsFixture()).MoveTask(ctx, "t2", "Garage")
		if !IsNotFound(err) {
			t.Errorf("Expected not found, got %v", err)
		}
	})

	t.Run("missing target", func(t *testing.T) {
		t.Parallel()

		_, err := newTestService(operationsFixture()).MoveTask(ctx, "t2", " ")
		if !IsValidation(err) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestTaskMutations_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tests := []struct {
		name     string
		call     func(*Service) error
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "complete unknown id",
			call:     func(s *Service) error { _, err := s.CompleteTask(ctx, "missing"); return err },
			wantKind: KindNotFound,
			wantMsg:  "task not found: missing",
		},
		{
			name:     "delete unknown id",
			call:     func(s *Service) error { _, err := s.DeleteTask(ctx, "missing"); return err },
			wantKind: KindNotFound,
		},
		{
			name:     "empty id",
			call:     func(s *Service) error { _, err := s.CompleteTask(ctx, ""); return err },
			wantKind: KindValidation,
			wantMsg:  "task_id is required",
		},
		{
			name:     "malformed id",
			call:     func(s *Service) error { _, err := s.DeleteTask(ctx, `a"b`); return err },
			wantKind: KindValidation,
		},
		{
			name:     "rename to blank",
			call:     func(s *Service) error { _, err := s.RenameTask(ctx, "t1", "  "); return err },
			wantKind: KindValidation,
			wantMsg:  "name is required",
		},
		{
			name:     "bad defer date",
			call:     func(s *Service) error { _, err := s.DeferTask(ctx, "t1", "2026-13-45"); return err },
			wantKind: KindValidation,
		},
		{
			name:     "bad rrule",
			call:     func(s *Service) error { _, err := s.SetRepetition(ctx, "t1", "EVERY=DAY", ""); return err },
			wantKind: KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.call(newTestService(operationsFixture()))
			if KindOf(err) != tt.wantKind {
				t.Fatalf("Expected kind %s, got %s (%v)", tt.wantKind, KindOf(err), err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("Expected message '%s', got '%s'", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestTaskMutations_Dates(t *testing.T) {
	t.Parallel()

	store := operationsFixture()
	svc := newTestService(store)
	ctx := context.Background()

	res, err := svc.SetDueDate(ctx, "t1", "2026-03-11T17:00:00")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Action != ActionSetDue {
		t.Errorf("Expected action set_due, got %s", res.Action)
	}
	if task, _ := store.Task("t1"); task.Due != "2026-03-11T17:00:00" {
		t.Errorf("Expected due '2026-03-11T17:00:00', got '%s'", task.Due)
	}

	// RFC3339 input is converted into the store zone
	if _, err := svc.DeferTask(ctx, "t1", "2026-03-11T15:00:00Z"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task, _ := store.Task("t1"); task.Defer != "2026-03-11T10:00:00" {
		t.Errorf("Expected defer '2026-03-11T10:00:00', got '%s'", task.Defer)
	}

	res, err = svc.SetDueDate(ctx, "t1", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Action != ActionClearDue {
		t.Errorf("Expected action clear_due, got %s", res.Action)
	}
	if task, _ := store.Task("t1"); task.Due != "" {
		t.Errorf("Expected due to be cleared, got '%s'", task.Due)
	}
}

func TestDeleteAndRename(t *testing.T) {
	t.Parallel()

	store := operationsFixture()
	svc := newTestService(store)
	ctx := context.Background()

	res, err := svc.RenameTask(ctx, "t2", "Buy oat milk")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Name != "Buy oat milk" || res.Action != ActionRename {
		t.Errorf("Unexpected rename result %+v", res)
	}

	res, err = svc.DeleteTask(ctx, "t2")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.ID != "t2" || res.Name != "Buy oat milk" || res.Action != ActionDelete {
		t.Errorf("Unexpected delete result %+v", res)
	}
	if _, ok := store.Task("t2"); ok {
		t.Error("Expected task to be removed")
	}
	if _, err := svc.GetTask(ctx, "t2"); !IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
}

func TestNotes_RoundTrip(t *testing.T) {
	t.Parallel()

	texts := []string{
		`He said "ok"`,
		`C:\path\to\file`,
		"first line\nsecond line\r\nthird",
		`mixed 'single' "double" \n literal and ` + "`backtick` $HOME",
		"",
	}

	for _, text := range texts {
		svc := newTestService(operationsFixture())
		ctx := context.Background()

		set, err := svc.SetTaskNote(ctx, "t1", text)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if set.Note != text {
			t.Errorf("Expected set result %q, got %q", text, set.Note)
		}
		got, err := svc.GetTaskNote(ctx, "t1")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got.Note != text {
			t.Errorf("Expected round trip %q, got %q", text, got.Note)
		}
	}
}

func TestNotes_AppendAndClear(t *testing.T) {
	t.Parallel()

	svc := newTestService(operationsFixture())
	ctx := context.Background()

	res, err := svc.AppendTaskNote(ctx, "t1", "first")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Note != "first" {
		t.Errorf("Expected append on empty note to set it, got %q", res.Note)
	}

	res, err = svc.AppendTaskNote(ctx, "t1", `second "quoted"`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Note != "first\nsecond \"quoted\"" {
		t.Errorf("Expected newline-joined note, got %q", res.Note)
	}

	if _, err := svc.AppendTaskNote(ctx, "t1", ""); !IsValidation(err) {
		t.Errorf("Expected validation error for empty append, got %v", err)
	}

	res, err = svc.ClearTaskNote(ctx, "t1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Note != "" {
		t.Errorf("Expected cleared note, got %q", res.Note)
	}
	got, _ := svc.GetTaskNote(ctx, "t1")
	if got.Note != "" {
		t.Errorf("Expected empty note after clear, got %q", got.Note)
	}

	if _, err := svc.GetTaskNote(ctx, "missing"); !IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestTags_PartialSuccess(t *testing.T) {
	t.Parallel()

	svc := newTestService(operationsFixture())
	ctx := context.Background()

	change, err := svc.AddTaskTags(ctx, "t2", []string{"Work", "DoesNotExist123"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(change.Added, []string{"Work"}) {
		t.Errorf("Expected added [Work], got %v", change.Added)
	}
	if !reflect.DeepEqual(change.NotFound, []string{"DoesNotExist123"}) {
		t.Errorf("Expected notFound [DoesNotExist123], got %v", change.NotFound)
	}

	tags, err := svc.GetTaskTags(ctx, "t2")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(tags.Tags, []string{"Work"}) {
		t.Errorf("Expected tags [Work], got %v", tags.Tags)
	}
}

func TestTags_Resolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    []string
		wantTags []string
		wantIDs  []string
		notFound []string
	}{
		{name: "path wins over bare name", input: []string{"Work : Errands"}, wantTags: []string{"Errands"}, wantIDs: []string{"g-work-errands"}},
		{name: "bare name takes first match", input: []string{"Errands"}, wantTags: []string{"Errands"}, wantIDs: []string{"g-errands"}},
		{name: "id match", input: []string{"g-home"}, wantTags: []string{"Home"}, wantIDs: []string{"g-home"}},
		{name: "duplicates collapse", input: []string{"Home", "g-home", " Home "}, wantTags: []string{"Home"}, wantIDs: []string{"g-home"}},
		{name: "nothing resolves", input: []string{"Nope"}, wantTags: []string{}, wantIDs: nil, notFound: []string{"Nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := operationsFixture()
			change, err := newTestService(store).AddTaskTags(context.Background(), "t1", tt.input)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !reflect.DeepEqual(change.Tags, tt.wantTags) {
				t.Errorf("Expected tags %v, got %v", tt.wantTags, change.Tags)
			}
			task, _ := store.Task("t1")
			if !reflect.DeepEqual(task.TagIDs, tt.wantIDs) {
				t.Errorf("Expected tag ids %v, got %v", tt.wantIDs, task.TagIDs)
			}
			want := tt.notFound
			if want == nil {
				want = []string{}
			}
			if !reflect.DeepEqual(change.NotFound, want) {
				t.Errorf("Expected notFound %v, got %v", want, change.NotFound)
			}
		})
	}
}

func TestTags_SetAndRemove(t *testing.T) {
	t.Parallel()

	svc := newTestService(operationsFixture())
	ctx := context.Background()

	if _, err := svc.AddTaskTags(ctx, "t1", []string{"Work", "Home"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	change, err := svc.RemoveTaskTags(ctx, "t1", []string{"Work"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(change.Removed, []string{"Work"}) || !reflect.DeepEqual(change.Tags, []string{"Home"}) {
		t.Errorf("Unexpected remove result %+v", change)
	}

	change, err = svc.SetTaskTags(ctx, "t1", []string{"Home:Errands", "Bogus"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(change.Tags, []string{"Errands"}) {
		t.Errorf("Expected tags replaced by [Errands], got %v", change.Tags)
	}
	if !reflect.DeepEqual(change.NotFound, []string{"Bogus"}) {
		t.Errorf("Expected notFound [Bogus], got %v", change.NotFound)
	}

	change, err = svc.SetTaskTags(ctx, "t1", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(change.Tags) != 0 {
		t.Errorf("Expected all tags cleared, got %v", change.Tags)
	}

	if _, err := svc.AddTaskTags(ctx, "t1", nil); !IsValidation(err) {
		t.Errorf("Expected validation error for empty add, got %v", err)
	}
	if _, err := svc.AddTaskTags(ctx, "missing", []string{"Work"}); !IsNotFound(err) {
		t.Errorf("Expected not found for unknown task, got %v", err)
	}
}

func TestTags_RemoveReportsOnlyCarriedTags(t *testing.T) {
	t.Parallel()

	svc := newTestService(operationsFixture())
	ctx := context.Background()

	if _, err := svc.AddTaskTags(ctx, "t1", []string{"Home"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	change, err := svc.RemoveTaskTags(ctx, "t1", []string{"Work", "Home"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(change.Removed, []string{"Home"}) {
		t.Errorf("Expected removed [Home], got %v", change.Removed)
	}

	change, err = svc.RemoveTaskTags(ctx, "t1", []string{"Work"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(change.Removed) != 0 {
		t.Errorf("Expected nothing removed, got %v", change.Removed)
	}
}

func TestTags_PayloadAlwaysCarriesModeKey(t *testing.T) {
	t.Parallel()

	svc := newTestService(operationsFixture())
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() (models.TagChange, error)
		wantKey string
		noKey   string
	}{
		{
			name:    "add with nothing resolved",
			call:    func() (models.TagChange, error) { return svc.AddTaskTags(ctx, "t1", []string{"Bogus"}) },
			wantKey: "added",
			noKey:   "removed",
		},
		{
			name:    "remove with nothing carried",
			call:    func() (models.TagChange, error) { return svc.RemoveTaskTags(ctx, "t2", []string{"Work"}) },
			wantKey: "removed",
			noKey:   "added",
		},
		{
			name:    "set to empty",
			call:    func() (models.TagChange, error) { return svc.SetTaskTags(ctx, "t2", nil) },
			wantKey: "added",
			noKey:   "removed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := tt.call()
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			body, err := json.Marshal(change)
			if err != nil {
				t.Fatalf("Failed to marshal: %v", err)
			}
			var decoded map[string]json.RawMessage
			if err := json.Unmarshal(body, &decoded); err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if got, ok := decoded[tt.wantKey]; !ok || string(got) != "[]" {
				t.Errorf("Expected %s to be [], got %s", tt.wantKey, body)
			}
			if _, ok := decoded[tt.noKey]; ok {
				t.Errorf("Expected no %s key, got %s", tt.noKey, body)
			}
			if _, ok := decoded["notFound"]; !ok {
				t.Errorf("Expected notFound key, got %s", body)
			}
		})
	}
}

func TestTags_DotJoinedPath(t *testing.T) {
	t.Parallel()

	svc := newTestService(operationsFixture())
	change, err := svc.AddTaskTags(context.Background(), "t2", []string{"Work.Errands"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(change.NotFound) != 0 {
		t.Fatalf("Expected Work.Errands to resolve, got notFound %v", change.NotFound)
	}

	tags, err := svc.GetTaskTags(context.Background(), "t2")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(tags.Tags, []string{"Errands"}) {
		t.Errorf("Expected [Errands], got %v", tags.Tags)
	}

	list, err := svc.ListTags(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, tag := range list.Tags {
		if tag.ID == "g-work-errands" && tag.RemainingTasks != 1 {
			t.Errorf("Expected the Work:Errands tag on t2, got %+v", tag)
		}
	}
}

func TestListTags(t *testing.T) {
	t.Parallel()

	store := operationsFixture()
	svc := newTestService(store)
	if _, err := svc.AddTaskTags(context.Background(), "t1", []string{"Home:Errands"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	list, err := svc.ListTags(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(list.Tags) != 4 {
		t.Fatalf("Expected 4 tags, got %d", len(list.Tags))
	}
	errands := list.Tags[2]
	if errands.Path != "Home:Errands" || errands.Parent != "Home" {
		t.Errorf("Expected path Home:Errands with parent Home, got %+v", errands)
	}
	if errands.RemainingTasks != 1 || errands.AvailableTasks != 1 {
		t.Errorf("Expected one available task, got %+v", errands)
	}
}

func TestProjects_Transitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tests := []struct {
		name       string
		call       func(*Service, context.Context, string) (models.ProjectChange, error)
		projectID  string
		wantStatus models.ProjectStatus
		wantKind   Kind
	}{
		{name: "pause active", call: (*Service).PauseProject, projectID: "p-work", wantStatus: models.ProjectStatusOnHold},
		{name: "drop active", call: (*Service).DropProject, projectID: "p-work", wantStatus: models.ProjectStatusDropped},
		{name: "resume on-hold", call: (*Service).ResumeProject, projectID: "p-hold", wantStatus: models.ProjectStatusActive},
		{name: "pause on-hold is idempotent", call: (*Service).PauseProject, projectID: "p-hold", wantStatus: models.ProjectStatusOnHold},
		{name: "drop dropped is idempotent", call: (*Service).DropProject, projectID: "p-dead", wantStatus: models.ProjectStatusDropped},
		{name: "resume dropped", call: (*Service).ResumeProject, projectID: "p-dead", wantKind: KindValidation},
		{name: "drop on-hold", call: (*Service).DropProject, projectID: "p-hold", wantKind: KindValidation},
		{name: "unknown project", call: (*Service).DropProject, projectID: "p-none", wantKind: KindNotFound},
		{name: "task is not a project", call: (*Service).DropProject, projectID: "t1", wantKind: KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := operationsFixture()
			svc := newTestService(store)
			change, err := tt.call(svc, ctx, tt.projectID)
			if tt.wantKind != "" {
				if KindOf(err) != tt.wantKind {
					t.Fatalf("Expected kind %s, got %s (%v)", tt.wantKind, KindOf(err), err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if change.Project.Status != tt.wantStatus {
				t.Errorf("Expected status %s, got %s", tt.wantStatus, change.Project.Status)
			}
			if p, _ := store.Project(tt.projectID); p.Status != string(tt.wantStatus) {
				t.Errorf("Expected stored status %s, got %s", tt.wantStatus, p.Status)
			}
		})
	}
}

func TestProjects_TaskIsNotAProjectMessage(t *testing.T) {
	t.Parallel()

	store := operationsFixture()
	_, err := newTestService(store).DropProject(context.Background(), "t1")
	if err == nil || err.Error() != "task t1 is not a project" {
		t.Fatalf("Expected 'task t1 is not a project', got %v", err)
	}
	for _, call := range store.Calls() {
		if call.Script == automation.ScriptProjectAction {
			t.Error("Expected no project_action call for a task id")
		}
	}
	if task, _ := store.Task("t1"); task.Dropped || task.Completed {
		t.Error("Expected the task to be left untouched")
	}
}

func TestGetProjects(t *testing.T) {
	t.Parallel()

	list, err := newTestService(operationsFixture()).GetProjects(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	names := make([]string, 0, len(list.Projects))
	for _, p := range list.Projects {
		names = append(names, p.Name+"="+string(p.Status))
	}
	want := "Work=active,Home=active,Someday=on-hold,Old=dropped"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
