package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"hrtracker/dto"
	"hrtracker/model"
	"hrtracker/orderindex"
	"hrtracker/repository"
)

const (
	projectID = "p1"
	otherProj = "p2"
	owner     = "e-owner"
	member    = "e-member"
	third     = "e-third"
	outsider  = "e-outsider"
	dayCap    = 480
)

type recordingNotifier struct {
	mu  sync.Mutex
	got []Notification
}

func (r *recordingNotifier) Publish(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return nil
}

func (r *recordingNotifier) take() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.got
	r.got = nil
	return out
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	deps   Deps
	store  *repository.MemoryStore
	dir    *repository.MemoryDirectory
	notes  *recordingNotifier
	boards *BoardService
	tasks  *TaskService
	ledger *HistoryService
	subs   *SubscriberService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := repository.NewMemoryDirectory()
	dir.AddOrganization(model.Organization{OrganizationID: "org1", Name: "Acme", DailyMinuteCap: dayCap})
	dir.AddProject(model.Project{ProjectID: projectID, OrganizationID: "org1", Name: "Payroll"})
	dir.AddProject(model.Project{ProjectID: otherProj, OrganizationID: "org1", Name: "Hiring"})
	for _, e := range []string{owner, member, third} {
		dir.AddEmployee(model.Employee{EmployeeID: e, FullName: "Name of " + e})
		dir.AddMember(model.ProjectEmployee{ProjectEmployeeID: pe(e), ProjectID: projectID, EmployeeID: e, Active: true})
		dir.AddSubscriber(model.Subscriber{SubscriberID: sub(e), EmployeeID: e, Channel: "telegram"})
	}
	dir.AddMember(model.ProjectEmployee{ProjectEmployeeID: "pe-owner-p2", ProjectID: otherProj, EmployeeID: owner, Active: true})
	dir.AddFile(model.FileRef{FileID: "f1", Name: "contract.pdf"})
	dir.AddFile(model.FileRef{FileID: "f2", Name: "photo.png"})
	dir.AddFile(model.FileRef{FileID: "f3", Name: "notes.txt"})

	logger := log.New()
	logger.SetOutput(io.Discard)
	var mu sync.Mutex
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}

	notes := &recordingNotifier{}
	store := repository.NewMemoryStore()
	deps := Deps{
		Store:         store,
		Members:       dir,
		Hours:         dir,
		Subscribers:   dir,
		Files:         dir,
		Notifier:      notes,
		Logger:        logger,
		Clock:         clock,
		StateTemplate: []StateTemplate{{Name: "Open"}, {Name: "Doing"}, {Name: "Closed"}},
	}
	return &fixture{
		t:      t,
		ctx:    context.Background(),
		deps:   deps,
		store:  store,
		dir:    dir,
		notes:  notes,
		boards: NewBoardService(deps),
		tasks:  NewTaskService(deps),
		ledger: NewHistoryService(deps),
		subs:   NewSubscriberService(deps),
	}
}

func pe(employeeID string) string  { return "pe-" + employeeID }
func sub(employeeID string) string { return "s-" + employeeID }

func (f *fixture) newBoard(project, name string) *dto.BoardView {
	f.t.Helper()
	b, err := f.boards.CreateBoard(f.ctx, owner, dto.CreateBoardRequest{ProjectID: project, Name: name})
	if err != nil {
		f.t.Fatalf("create board: %v", err)
	}
	return b
}

func (f *fixture) create(actor string, req dto.CreateTaskRequest) *dto.TaskView {
	f.t.Helper()
	v, err := f.tasks.Create(f.ctx, actor, req)
	if err != nil {
		f.t.Fatalf("create %q: %v", req.Title, err)
	}
	return v
}

func (f *fixture) task(id string) model.Task {
	f.t.Helper()
	t, err := f.store.Task(f.ctx, id)
	if err != nil {
		f.t.Fatalf("load task %s: %v", id, err)
	}
	return *t
}

func (f *fixture) actions(taskID string) []model.ActionKind {
	f.t.Helper()
	rows, err := f.store.HistoryByTask(f.ctx, taskID)
	if err != nil {
		f.t.Fatalf("history: %v", err)
	}
	out := make([]model.ActionKind, len(rows))
	for i, r := range rows {
		out[i] = r.Action
	}
	return out
}

func (f *fixture) activeSubscribers(taskID string) []string {
	f.t.Helper()
	rows, err := f.store.SubscriptionsByTask(f.ctx, taskID)
	if err != nil {
		f.t.Fatalf("subscriptions: %v", err)
	}
	var out []string
	for _, r := range rows {
		if !r.Deleted {
			out = append(out, r.SubscriberID)
		}
	}
	sort.Strings(out)
	return out
}

// orders returns task id -> order for the root tasks of a state.
func (f *fixture) orders(stateID string) map[string]int {
	f.t.Helper()
	tasks, err := f.store.TasksByState(f.ctx, stateID)
	if err != nil {
		f.t.Fatalf("tasks: %v", err)
	}
	out := map[string]int{}
	for _, t := range tasks {
		if !t.IsSubtask() {
			out[t.TaskID] = t.Order
		}
	}
	return out
}

// assertDense checks every state and every parent of the board.
func (f *fixture) assertDense(boardID string) {
	f.t.Helper()
	tasks, err := f.store.TasksByBoard(f.ctx, boardID)
	if err != nil {
		f.t.Fatalf("tasks: %v", err)
	}
	containers := map[string][]orderindex.Entry{}
	for _, t := range tasks {
		key := "state:" + t.StateID
		if t.IsSubtask() {
			key = "parent:" + t.ParentID
		}
		containers[key] = append(containers[key], orderindex.Entry{ID: t.TaskID, Order: t.Order})
	}
	for key, entries := range containers {
		if !orderindex.Dense(entries) {
			f.t.Fatalf("container %s is not dense: %+v", key, entries)
		}
	}
}

func stateID(b *dto.BoardView, order int) string {
	for _, s := range b.States {
		if s.Order == order {
			return s.StateID
		}
	}
	return ""
}

func ptr[T any](v T) *T { return &v }

func equalKinds(got, want []model.ActionKind) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
