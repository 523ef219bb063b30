package services

import (
	"context"
	"errors"

	"hrtracker/dto"
	"hrtracker/history"
	"hrtracker/model"
	"hrtracker/orderindex"
)

// ChangeState moves a root task to another state of its board at the given
// order, carrying its subtasks along. Naming the task's current state makes
// this a plain reorder.
func (s *TaskService) ChangeState(ctx context.Context, actor, taskID string, req dto.ChangeStateRequest) (*dto.TaskView, error) {
	err := s.run(ctx, actor, func(u *unitOfWork) error {
		t, err := u.task(taskID)
		if err != nil {
			return err
		}
		if t.IsSubtask() {
			return ErrSubtaskStateChange
		}
		if _, err := u.activeBoard(t.BoardID); err != nil {
			return err
		}
		if err := s.authorize(ctx, t.ProjectID, actor); err != nil {
			return err
		}
		if req.StateID == t.StateID {
			return u.moveWithin(t, req.Order)
		}
		from, err := u.state(t.StateID)
		if err != nil {
			return err
		}
		to, err := u.state(req.StateID)
		if err != nil {
			return err
		}
		if err := validateTransition(from, to); err != nil {
			return err
		}
		dest, err := u.roots(to.StateID)
		if err != nil {
			return err
		}
		if err := validateOrderBound(req.Order, orderindex.Max(entriesOf(dest))); err != nil {
			return err
		}
		src, err := u.roots(from.StateID)
		if err != nil {
			return err
		}
		u.reorder(dest, orderindex.Insert(entriesOf(dest), req.Order))
		u.reorder(src, orderindex.Remove(entriesOf(src), t.Order))

		t.StateID = to.StateID
		t.Order = req.Order
		u.putTask(t)
		u.touchState(from.StateID)
		u.touchState(to.StateID)
		if err := u.cascade(t); err != nil {
			return err
		}
		return u.record(t, history.StateChanged{FromStateID: from.StateID, ToStateID: to.StateID})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, taskID)
}

// Reorder moves a task within its own container. Root tasks and subtasks
// both qualify; ordering is not audited.
func (s *TaskService) Reorder(ctx context.Context, actor, taskID string, req dto.ReorderRequest) (*dto.TaskView, error) {
	err := s.run(ctx, actor, func(u *unitOfWork) error {
		t, err := u.task(taskID)
		if err != nil {
			return err
		}
		if _, err := u.activeBoard(t.BoardID); err != nil {
			return err
		}
		if err := s.authorize(ctx, t.ProjectID, actor); err != nil {
			return err
		}
		return u.moveWithin(t, req.Order)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, taskID)
}

// MoveToBoard re-homes a root task and its subtasks to the entry state of
// another board of the same project.
func (s *TaskService) MoveToBoard(ctx context.Context, actor, taskID string, req dto.MoveToBoardRequest) (*dto.TaskView, error) {
	err := s.run(ctx, actor, func(u *unitOfWork) error {
		t, err := u.task(taskID)
		if err != nil {
			return err
		}
		if t.IsSubtask() {
			return ErrIsSubtask
		}
		if req.BoardID == t.BoardID {
			return s.authorize(ctx, t.ProjectID, actor)
		}
		src, err := u.activeBoard(t.BoardID)
		if err != nil {
			return err
		}
		dst, err := u.activeBoard(req.BoardID)
		if err != nil {
			return err
		}
		if src.ProjectID != dst.ProjectID {
			return ErrDifferentBoardProject
		}
		if err := s.authorize(ctx, dst.ProjectID, actor); err != nil {
			return err
		}
		if err := s.checkEstimate(ctx, dst.ProjectID, t.EstimateMinutes); err != nil {
			return err
		}
		states, err := u.statesOf(dst.BoardID)
		if err != nil {
			return err
		}
		entry, ok := entryState(states)
		if !ok {
			return notFound("state", "entry of board "+dst.BoardID)
		}
		dest, err := u.roots(entry.StateID)
		if err != nil {
			return err
		}
		origin, err := u.roots(t.StateID)
		if err != nil {
			return err
		}
		u.reorder(origin, orderindex.Remove(entriesOf(origin), t.Order))

		fromState := t.StateID
		t.BoardID = dst.BoardID
		t.StateID = entry.StateID
		t.Order = orderindex.Next(entriesOf(dest))
		u.putTask(t)
		u.touchState(fromState)
		u.touchState(entry.StateID)
		if err := u.cascade(t); err != nil {
			return err
		}
		if err := u.record(t, history.BoardChanged{
			FromBoardID: src.BoardID,
			ToBoardID:   dst.BoardID,
			FromStateID: fromState,
			ToStateID:   entry.StateID,
		}); err != nil {
			return err
		}
		return s.subscribeEmployees(u, t, []string{dst.OwnerID}, true)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, taskID)
}

// moveWithin relocates t inside its container.
func (u *unitOfWork) moveWithin(t model.Task, order int) error {
	members, err := u.members(t)
	if err != nil {
		return err
	}
	shifted, err := orderindex.Move(entriesOf(members), t.TaskID, order)
	if err != nil {
		if errors.Is(err, orderindex.ErrOutOfBounds) {
			return ErrOrderOutOfBounds
		}
		return err
	}
	if len(shifted) > 0 {
		u.reorder(members, shifted)
		u.touch(t)
	}
	return nil
}

// cascade points every subtask of t at t's board and state. Their order
// within the parent is left alone.
func (u *unitOfWork) cascade(t model.Task) error {
	subs, err := u.subtasks(t.TaskID)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		sub.BoardID = t.BoardID
		sub.StateID = t.StateID
		u.putTask(sub)
	}
	return nil
}
