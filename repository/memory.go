package repository

import (
	"context"
	"fmt"
	"sync"

	"hrtracker/model"
)

// MemoryStore keeps every collection in maps. Transactions are serialised by
// a single lock, so reads inside RunInTransaction see no concurrent writes.
type MemoryStore struct {
	mu            sync.RWMutex
	boards        map[string]model.Board
	states        map[string]model.State
	tasks         map[string]model.Task
	history       map[string]model.TaskActionHistory
	subscriptions map[string]model.TaskSubscriber
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		boards:        map[string]model.Board{},
		states:        map[string]model.State{},
		tasks:         map[string]model.Task{},
		history:       map[string]model.TaskActionHistory{},
		subscriptions: map[string]model.TaskSubscriber{},
	}
}

func (s *MemoryStore) RunInTransaction(ctx context.Context, fn TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, err := fn(ctx, memoryReader{s})
	if err != nil {
		return err
	}
	if batch == nil {
		return nil
	}
	for _, h := range batch.History {
		if _, exists := s.history[h.HistoryID]; exists && !h.Deleted {
			return fmt.Errorf("history row %s already written", h.HistoryID)
		}
	}
	for _, b := range batch.Boards {
		s.boards[b.BoardID] = b
	}
	for _, st := range batch.States {
		s.states[st.StateID] = st
	}
	for _, t := range batch.Tasks {
		s.tasks[t.TaskID] = t.Clone()
	}
	for _, h := range batch.History {
		s.history[h.HistoryID] = h
	}
	for _, sub := range batch.Subscriptions {
		s.subscriptions[sub.TaskSubscriberID] = sub
	}
	return nil
}

// locked wraps a read so it runs under the read lock.
func locked[T any](s *MemoryStore, read func(memoryReader) (T, error)) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return read(memoryReader{s})
}

func (s *MemoryStore) Board(ctx context.Context, id string) (*model.Board, error) {
	return locked(s, func(r memoryReader) (*model.Board, error) { return r.Board(ctx, id) })
}

func (s *MemoryStore) BoardsByProject(ctx context.Context, projectID string) ([]model.Board, error) {
	return locked(s, func(r memoryReader) ([]model.Board, error) { return r.BoardsByProject(ctx, projectID) })
}

func (s *MemoryStore) State(ctx context.Context, id string) (*model.State, error) {
	return locked(s, func(r memoryReader) (*model.State, error) { return r.State(ctx, id) })
}

func (s *MemoryStore) StatesByBoard(ctx context.Context, boardID string) ([]model.State, error) {
	return locked(s, func(r memoryReader) ([]model.State, error) { return r.StatesByBoard(ctx, boardID) })
}

func (s *MemoryStore) Task(ctx context.Context, id string) (*model.Task, error) {
	return locked(s, func(r memoryReader) (*model.Task, error) { return r.Task(ctx, id) })
}

func (s *MemoryStore) TasksByState(ctx context.Context, stateID string) ([]model.Task, error) {
	return locked(s, func(r memoryReader) ([]model.Task, error) { return r.TasksByState(ctx, stateID) })
}

func (s *MemoryStore) TasksByBoard(ctx context.Context, boardID string) ([]model.Task, error) {
	return locked(s, func(r memoryReader) ([]model.Task, error) { return r.TasksByBoard(ctx, boardID) })
}

func (s *MemoryStore) Subtasks(ctx context.Context, parentID string) ([]model.Task, error) {
	return locked(s, func(r memoryReader) ([]model.Task, error) { return r.Subtasks(ctx, parentID) })
}

func (s *MemoryStore) HistoryByTask(ctx context.Context, taskID string) ([]model.TaskActionHistory, error) {
	return locked(s, func(r memoryReader) ([]model.TaskActionHistory, error) { return r.HistoryByTask(ctx, taskID) })
}

func (s *MemoryStore) HistoryByComment(ctx context.Context, commentID string) ([]model.TaskActionHistory, error) {
	return locked(s, func(r memoryReader) ([]model.TaskActionHistory, error) { return r.HistoryByComment(ctx, commentID) })
}

func (s *MemoryStore) SubscriptionsByTask(ctx context.Context, taskID string) ([]model.TaskSubscriber, error) {
	return locked(s, func(r memoryReader) ([]model.TaskSubscriber, error) { return r.SubscriptionsByTask(ctx, taskID) })
}

func (s *MemoryStore) SubscriptionsByEmployee(ctx context.Context, projectID, employeeID string) ([]model.TaskSubscriber, error) {
	return locked(s, func(r memoryReader) ([]model.TaskSubscriber, error) {
		return r.SubscriptionsByEmployee(ctx, projectID, employeeID)
	})
}

// memoryReader reads the maps without locking; the caller holds the lock.
type memoryReader struct{ s *MemoryStore }

func (r memoryReader) Board(_ context.Context, id string) (*model.Board, error) {
	b, ok := r.s.boards[id]
	if !ok {
		return nil, fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	return &b, nil
}

func (r memoryReader) BoardsByProject(_ context.Context, projectID string) ([]model.Board, error) {
	var out []model.Board
	for _, b := range r.s.boards {
		if b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r memoryReader) State(_ context.Context, id string) (*model.State, error) {
	st, ok := r.s.states[id]
	if !ok {
		return nil, fmt.Errorf("state %s: %w", id, ErrNotFound)
	}
	return &st, nil
}

func (r memoryReader) StatesByBoard(_ context.Context, boardID string) ([]model.State, error) {
	var out []model.State
	for _, st := range r.s.states {
		if st.BoardID == boardID && !st.Deleted {
			out = append(out, st)
		}
	}
	sortStates(out)
	return out, nil
}

func (r memoryReader) Task(_ context.Context, id string) (*model.Task, error) {
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	c := t.Clone()
	return &c, nil
}

func (r memoryReader) tasksWhere(keep func(model.Task) bool) []model.Task {
	var out []model.Task
	for _, t := range r.s.tasks {
		if !t.Deleted && keep(t) {
			out = append(out, t.Clone())
		}
	}
	sortTasks(out)
	return out
}

func (r memoryReader) TasksByState(_ context.Context, stateID string) ([]model.Task, error) {
	return r.tasksWhere(func(t model.Task) bool { return t.StateID == stateID }), nil
}

func (r memoryReader) TasksByBoard(_ context.Context, boardID string) ([]model.Task, error) {
	return r.tasksWhere(func(t model.Task) bool { return t.BoardID == boardID }), nil
}

func (r memoryReader) Subtasks(_ context.Context, parentID string) ([]model.Task, error) {
	return r.tasksWhere(func(t model.Task) bool { return t.ParentID == parentID }), nil
}

func (r memoryReader) historyWhere(keep func(model.TaskActionHistory) bool) []model.TaskActionHistory {
	var out []model.TaskActionHistory
	for _, h := range r.s.history {
		if !h.Deleted && keep(h) {
			out = append(out, h)
		}
	}
	sortHistory(out)
	return out
}

func (r memoryReader) HistoryByTask(_ context.Context, taskID string) ([]model.TaskActionHistory, error) {
	return r.historyWhere(func(h model.TaskActionHistory) bool { return h.TaskID == taskID }), nil
}

func (r memoryReader) HistoryByComment(_ context.Context, commentID string) ([]model.TaskActionHistory, error) {
	return r.historyWhere(func(h model.TaskActionHistory) bool { return h.CommentID == commentID }), nil
}

func (r memoryReader) SubscriptionsByTask(_ context.Context, taskID string) ([]model.TaskSubscriber, error) {
	var out []model.TaskSubscriber
	for _, sub := range r.s.subscriptions {
		if sub.TaskID == taskID {
			out = append(out, sub)
		}
	}
	sortSubscriptions(out)
	return out, nil
}

func (r memoryReader) SubscriptionsByEmployee(_ context.Context, projectID, employeeID string) ([]model.TaskSubscriber, error) {
	var out []model.TaskSubscriber
	for _, sub := range r.s.subscriptions {
		if sub.ProjectID == projectID && sub.EmployeeID == employeeID {
			out = append(out, sub)
		}
	}
	sortSubscriptions(out)
	return out, nil
}
