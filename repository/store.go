// Package repository persists boards, states, tasks, history and
// subscriptions, and looks up the external records the engine consumes.
package repository

import (
	"context"
	"errors"

	"hrtracker/model"
)

var ErrNotFound = errors.New("not found")

// Reader is the read side of the store. Single-record lookups return soft
// deleted records too and fail with ErrNotFound only when the record is
// absent. List lookups skip soft-deleted records, except subscription lists,
// which include them so a removed subscription can be reactivated.
type Reader interface {
	Board(ctx context.Context, boardID string) (*model.Board, error)
	BoardsByProject(ctx context.Context, projectID string) ([]model.Board, error)
	State(ctx context.Context, stateID string) (*model.State, error)
	// StatesByBoard is sorted by order.
	StatesByBoard(ctx context.Context, boardID string) ([]model.State, error)
	Task(ctx context.Context, taskID string) (*model.Task, error)
	// TasksByState returns root tasks and subtasks that reference the state.
	TasksByState(ctx context.Context, stateID string) ([]model.Task, error)
	TasksByBoard(ctx context.Context, boardID string) ([]model.Task, error)
	Subtasks(ctx context.Context, parentID string) ([]model.Task, error)
	// HistoryByTask is sorted chronologically.
	HistoryByTask(ctx context.Context, taskID string) ([]model.TaskActionHistory, error)
	HistoryByComment(ctx context.Context, commentID string) ([]model.TaskActionHistory, error)
	SubscriptionsByTask(ctx context.Context, taskID string) ([]model.TaskSubscriber, error)
	SubscriptionsByEmployee(ctx context.Context, projectID, employeeID string) ([]model.TaskSubscriber, error)
}

// Batch is the full set of writes produced by one operation. Every record is
// written whole; soft deletes are records with Deleted set.
type Batch struct {
	Boards        []model.Board
	States        []model.State
	Tasks         []model.Task
	History       []model.TaskActionHistory
	Subscriptions []model.TaskSubscriber
}

func (b *Batch) Empty() bool {
	return b == nil || len(b.Boards)+len(b.States)+len(b.Tasks)+len(b.History)+len(b.Subscriptions) == 0
}

// TxFunc reads through r and returns the writes to commit. It may run more
// than once when the store retries a conflicting transaction, so it must not
// have side effects outside its return value.
type TxFunc func(ctx context.Context, r Reader) (*Batch, error)

// Store commits a Batch atomically with the reads that produced it.
type Store interface {
	Reader
	RunInTransaction(ctx context.Context, fn TxFunc) error
}
