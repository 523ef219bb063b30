package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrtracker/history"
	"hrtracker/model"
	"hrtracker/orderindex"
	"hrtracker/repository"
)

// unitOfWork stages the writes of one operation on top of the transaction's
// reader. Reads consult staged records first, so a flow can compose several
// steps over the same records before anything reaches the store.
type unitOfWork struct {
	ctx   context.Context
	r     repository.Reader
	actor string
	now   time.Time

	boards   map[string]model.Board
	states   map[string]model.State
	tasks    map[string]model.Task
	subs     map[string]model.TaskSubscriber
	released map[string]bool
	touched  map[string]bool
	entries  []ledgerEntry
	retired  []model.TaskActionHistory

	orphanedFiles []string
}

type ledgerEntry struct {
	row     model.TaskActionHistory
	boardID string
}

func newUnitOfWork(ctx context.Context, r repository.Reader, actor string, now time.Time) *unitOfWork {
	return &unitOfWork{
		ctx:      ctx,
		r:        r,
		actor:    actor,
		now:      now,
		boards:   map[string]model.Board{},
		states:   map[string]model.State{},
		tasks:    map[string]model.Task{},
		subs:     map[string]model.TaskSubscriber{},
		released: map[string]bool{},
		touched:  map[string]bool{},
	}
}

func (u *unitOfWork) board(id string) (model.Board, error) {
	if b, ok := u.boards[id]; ok {
		return b, nil
	}
	b, err := u.r.Board(u.ctx, id)
	if err != nil {
		return model.Board{}, lookup(err, "board", id)
	}
	return *b, nil
}

// activeBoard is board, failing for archived boards.
func (u *unitOfWork) activeBoard(id string) (model.Board, error) {
	b, err := u.board(id)
	if err != nil {
		return b, err
	}
	if b.Archived() {
		return b, ErrBoardArchived
	}
	return b, nil
}

func (u *unitOfWork) state(id string) (model.State, error) {
	st, ok := u.states[id]
	if !ok {
		s, err := u.r.State(u.ctx, id)
		if err != nil {
			return model.State{}, lookup(err, "state", id)
		}
		st = *s
	}
	if st.Deleted {
		return model.State{}, notFound("state", id)
	}
	return st, nil
}

func (u *unitOfWork) task(id string) (model.Task, error) {
	t, ok := u.tasks[id]
	if !ok {
		rt, err := u.r.Task(u.ctx, id)
		if err != nil {
			return model.Task{}, lookup(err, "task", id)
		}
		t = *rt
	}
	if t.Deleted {
		return model.Task{}, notFound("task", id)
	}
	return t.Clone(), nil
}

func (u *unitOfWork) statesOf(boardID string) ([]model.State, error) {
	base, err := u.r.StatesByBoard(u.ctx, boardID)
	if err != nil {
		return nil, err
	}
	out := overlay(base, u.states, func(s model.State) string { return s.StateID }, func(s model.State) bool {
		return s.BoardID == boardID && !s.Deleted
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (u *unitOfWork) tasksWhere(base []model.Task, keep func(model.Task) bool) []model.Task {
	out := overlay(base, u.tasks, func(t model.Task) string { return t.TaskID }, func(t model.Task) bool {
		return !t.Deleted && keep(t)
	})
	for i := range out {
		out[i] = out[i].Clone()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}

// roots lists the root tasks ordered in a state.
func (u *unitOfWork) roots(stateID string) ([]model.Task, error) {
	base, err := u.r.TasksByState(u.ctx, stateID)
	if err != nil {
		return nil, err
	}
	return u.tasksWhere(base, func(t model.Task) bool { return t.StateID == stateID && !t.IsSubtask() }), nil
}

// inState lists root tasks and subtasks that reference a state.
func (u *unitOfWork) inState(stateID string) ([]model.Task, error) {
	base, err := u.r.TasksByState(u.ctx, stateID)
	if err != nil {
		return nil, err
	}
	return u.tasksWhere(base, func(t model.Task) bool { return t.StateID == stateID }), nil
}

func (u *unitOfWork) subtasks(parentID string) ([]model.Task, error) {
	base, err := u.r.Subtasks(u.ctx, parentID)
	if err != nil {
		return nil, err
	}
	return u.tasksWhere(base, func(t model.Task) bool { return t.ParentID == parentID }), nil
}

// members lists the tasks sharing t's container: its state for root tasks,
// its parent for subtasks.
func (u *unitOfWork) members(t model.Task) ([]model.Task, error) {
	if t.IsSubtask() {
		return u.subtasks(t.ParentID)
	}
	return u.roots(t.StateID)
}

// subscriptions includes soft-deleted rows.
func (u *unitOfWork) subscriptions(taskID string) ([]model.TaskSubscriber, error) {
	base, err := u.r.SubscriptionsByTask(u.ctx, taskID)
	if err != nil {
		return nil, err
	}
	out := overlay(base, u.subs, func(s model.TaskSubscriber) string { return s.TaskSubscriberID }, func(s model.TaskSubscriber) bool {
		return s.TaskID == taskID
	})
	sort.Slice(out, func(i, j int) bool { return out[i].TaskSubscriberID < out[j].TaskSubscriberID })
	return out, nil
}

func (u *unitOfWork) putBoard(b model.Board) {
	b.UpdatedAt = u.now
	u.boards[b.BoardID] = b
}

func (u *unitOfWork) putState(s model.State) {
	s.UpdatedAt = u.now
	u.states[s.StateID] = s
}

func (u *unitOfWork) putTask(t model.Task) {
	t.UpdatedAt = u.now
	u.tasks[t.TaskID] = t.Clone()
}

func (u *unitOfWork) putSubscription(s model.TaskSubscriber) {
	s.UpdatedAt = u.now
	u.subs[s.TaskSubscriberID] = s
}

// releaseSubscription soft-deletes a row and remembers it so the subscriber
// still hears about the change that removed it.
func (u *unitOfWork) releaseSubscription(s model.TaskSubscriber) {
	s.Deleted = true
	u.released[s.TaskSubscriberID] = true
	u.putSubscription(s)
}

// touch marks a container whose orders changed. Its revision is bumped once
// when the batch is built.
func (u *unitOfWork) touch(t model.Task) {
	if t.IsSubtask() {
		u.touchParent(t.ParentID)
		return
	}
	u.touchState(t.StateID)
}

func (u *unitOfWork) touchState(stateID string) {
	u.touched["state:"+stateID] = true
}

func (u *unitOfWork) touchParent(taskID string) {
	u.touched["task:"+taskID] = true
}

func (u *unitOfWork) touchBoard(boardID string) {
	u.touched["board:"+boardID] = true
}

// reorder writes shifted orders back onto the staged tasks.
func (u *unitOfWork) reorder(tasks []model.Task, shifted []orderindex.Entry) {
	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.TaskID] = t
	}
	for _, e := range shifted {
		t, ok := byID[e.ID]
		if !ok {
			continue
		}
		t.Order = e.Order
		u.putTask(t)
	}
}

func (u *unitOfWork) record(t model.Task, a history.Action) error {
	payload, err := history.Encode(a)
	if err != nil {
		return err
	}
	row := model.TaskActionHistory{
		HistoryID: uuid.NewString(),
		TaskID:    t.TaskID,
		ActorID:   u.actor,
		Action:    a.Kind(),
		Payload:   payload,
		Seq:       len(u.entries),
		CreatedAt: u.now,
	}
	if l, ok := a.(history.Linked); ok {
		row.CommentID, row.TrackingID = l.Links()
	}
	u.entries = append(u.entries, ledgerEntry{row: row, boardID: t.BoardID})
	return nil
}

func (u *unitOfWork) retire(row model.TaskActionHistory) {
	row.Deleted = true
	u.retired = append(u.retired, row)
}

func (u *unitOfWork) orphan(fileIDs ...string) {
	u.orphanedFiles = append(u.orphanedFiles, fileIDs...)
}

// finish bumps the revision of every touched container.
func (u *unitOfWork) finish() error {
	keys := make([]string, 0, len(u.touched))
	for k := range u.touched {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kind, id, _ := strings.Cut(k, ":")
		switch kind {
		case "state":
			st, err := u.state(id)
			if err != nil {
				return err
			}
			st.Revision++
			u.putState(st)
		case "task":
			t, err := u.task(id)
			if err != nil {
				// The parent went away in the same operation.
				continue
			}
			t.Revision++
			u.putTask(t)
		case "board":
			b, err := u.board(id)
			if err != nil {
				return err
			}
			b.Revision++
			u.putBoard(b)
		}
	}
	return nil
}

// notifications derives one notification per new history row. Recipients are
// the task's active subscribers plus those released by this operation, minus
// the actor.
func (u *unitOfWork) notifications() ([]Notification, error) {
	var out []Notification
	audience := map[string][]string{}
	for _, e := range u.entries {
		recipients, ok := audience[e.row.TaskID]
		if !ok {
			subs, err := u.subscriptions(e.row.TaskID)
			if err != nil {
				return nil, err
			}
			seen := map[string]bool{}
			for _, s := range subs {
				if (s.Deleted && !u.released[s.TaskSubscriberID]) || s.EmployeeID == u.actor || seen[s.SubscriberID] {
					continue
				}
				seen[s.SubscriberID] = true
				recipients = append(recipients, s.SubscriberID)
			}
			sort.Strings(recipients)
			audience[e.row.TaskID] = recipients
		}
		out = append(out, Notification{
			TaskID:        e.row.TaskID,
			BoardID:       e.boardID,
			HistoryID:     e.row.HistoryID,
			Action:        e.row.Action,
			ActorID:       u.actor,
			SubscriberIDs: recipients,
			At:            u.now,
		})
	}
	return out, nil
}

func (u *unitOfWork) batch() *repository.Batch {
	b := &repository.Batch{}
	for _, v := range u.boards {
		b.Boards = append(b.Boards, v)
	}
	for _, v := range u.states {
		b.States = append(b.States, v)
	}
	for _, v := range u.tasks {
		b.Tasks = append(b.Tasks, v)
	}
	for _, v := range u.subs {
		b.Subscriptions = append(b.Subscriptions, v)
	}
	for _, e := range u.entries {
		b.History = append(b.History, e.row)
	}
	b.History = append(b.History, u.retired...)
	return b
}

// overlay merges staged records over base, keeping the ones keep accepts.
func overlay[T any](base []T, staged map[string]T, id func(T) string, keep func(T) bool) []T {
	var out []T
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		k := id(v)
		seen[k] = true
		if s, ok := staged[k]; ok {
			v = s
		}
		if keep(v) {
			out = append(out, v)
		}
	}
	for k, v := range staged {
		if !seen[k] && keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func entriesOf(tasks []model.Task) []orderindex.Entry {
	out := make([]orderindex.Entry, len(tasks))
	for i, t := range tasks {
		out[i] = orderindex.Entry{ID: t.TaskID, Order: t.Order}
	}
	return out
}

func stateEntries(states []model.State) []orderindex.Entry {
	out := make([]orderindex.Entry, len(states))
	for i, s := range states {
		out[i] = orderindex.Entry{ID: s.StateID, Order: s.Order}
	}
	return out
}
