package services

import (
	"context"

	"hrtracker/dto"
	"hrtracker/history"
	"hrtracker/model"
	"hrtracker/orderindex"
)

// Delete soft-deletes a selection of root tasks or of subtasks. Root tasks
// must share one board, subtasks one parent.
func (s *TaskService) Delete(ctx context.Context, actor string, req dto.DeleteTasksRequest) error {
	ids := distinct(req.TaskIDs)
	if len(ids) == 0 {
		return ErrEmptySelection
	}
	return s.run(ctx, actor, func(u *unitOfWork) error {
		tasks := make([]model.Task, 0, len(ids))
		for _, id := range ids {
			t, err := u.task(id)
			if err != nil {
				return err
			}
			tasks = append(tasks, t)
		}
		if req.Subtask {
			return s.deleteSubtasks(u, actor, tasks)
		}
		return s.deleteRoots(u, actor, tasks)
	})
}

func (s *TaskService) deleteRoots(u *unitOfWork, actor string, tasks []model.Task) error {
	boardID := tasks[0].BoardID
	for _, t := range tasks {
		if t.IsSubtask() {
			return ErrIsSubtask
		}
		if t.BoardID != boardID || t.ProjectID != tasks[0].ProjectID {
			return ErrMixedBoards
		}
	}
	board, err := u.activeBoard(boardID)
	if err != nil {
		return err
	}
	if err := s.authorize(u.ctx, board.ProjectID, actor); err != nil {
		return err
	}
	for _, picked := range tasks {
		// Orders shift as earlier tasks of the same state go.
		t, err := u.task(picked.TaskID)
		if err != nil {
			return err
		}
		members, err := u.roots(t.StateID)
		if err != nil {
			return err
		}
		u.reorder(members, orderindex.Remove(entriesOf(members), t.Order))
		u.touchState(t.StateID)
		if err := u.record(t, history.TaskDeleted{StateID: t.StateID, Order: t.Order}); err != nil {
			return err
		}
		subs, err := u.subtasks(t.TaskID)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			if err := u.softDelete(sub); err != nil {
				return err
			}
		}
		if err := u.softDelete(t); err != nil {
			return err
		}
	}
	return nil
}

// deleteSubtasks authorizes against the parent and writes one
// REMOVE_SUB_TASK row on it listing every removed subtask.
func (s *TaskService) deleteSubtasks(u *unitOfWork, actor string, tasks []model.Task) error {
	parentID := tasks[0].ParentID
	for _, t := range tasks {
		if !t.IsSubtask() {
			return ErrNotSubtask
		}
		if t.ParentID != parentID {
			return ErrMixedParents
		}
	}
	parent, err := u.task(parentID)
	if err != nil {
		return err
	}
	board, err := u.activeBoard(parent.BoardID)
	if err != nil {
		return err
	}
	if err := s.authorize(u.ctx, board.ProjectID, actor); err != nil {
		return err
	}
	removed := make([]string, 0, len(tasks))
	for _, picked := range tasks {
		t, err := u.task(picked.TaskID)
		if err != nil {
			return err
		}
		siblings, err := u.subtasks(parentID)
		if err != nil {
			return err
		}
		u.reorder(siblings, orderindex.Remove(entriesOf(siblings), t.Order))
		if err := u.softDelete(t); err != nil {
			return err
		}
		removed = append(removed, t.TaskID)
	}
	u.touchParent(parentID)
	return u.record(parent, history.SubtasksRemoved{SubtaskIDs: removed})
}

// softDelete marks t deleted, queues its attachments for removal and releases
// all of its subscriptions.
func (u *unitOfWork) softDelete(t model.Task) error {
	at := u.now
	t.Deleted = true
	t.DeletedAt = &at
	u.putTask(t)
	u.orphan(t.Attachments...)
	return u.releaseAll(t.TaskID)
}
