package services

import (
	"context"
	"strings"

	"hrtracker/dto"
	"hrtracker/history"
)

// HistoryService reads the action ledger and records the entries that
// originate outside the task tree: comments and tracked time.
type HistoryService struct {
	core
}

func NewHistoryService(d Deps) *HistoryService {
	return &HistoryService{core: newCore(d)}
}

// List returns a task's active history rows in the order they were written.
func (s *HistoryService) List(ctx context.Context, actor, taskID string) ([]dto.HistoryView, error) {
	t, err := s.Store.Task(ctx, taskID)
	if err != nil {
		return nil, lookup(err, "task", taskID)
	}
	if t.Deleted {
		return nil, notFound("task", taskID)
	}
	if err := s.authorize(ctx, t.ProjectID, actor); err != nil {
		return nil, err
	}
	rows, err := s.Store.HistoryByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistoryView, 0, len(rows))
	for _, row := range rows {
		a, err := history.Decode(row.Action, row.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.NewHistoryView(row, a))
	}
	return out, nil
}

func (s *HistoryService) RecordComment(ctx context.Context, actor, taskID string, req dto.CommentRequest) (*dto.HistoryView, error) {
	commentID := strings.TrimSpace(req.CommentID)
	if commentID == "" {
		return nil, invalidf("commentId is required")
	}
	return s.append(ctx, actor, taskID, history.CommentAdded{CommentID: commentID})
}

func (s *HistoryService) RecordTimeTracked(ctx context.Context, actor, taskID string, req dto.TimeTrackRequest) (*dto.HistoryView, error) {
	trackingID := strings.TrimSpace(req.TrackingID)
	if trackingID == "" {
		return nil, invalidf("trackingId is required")
	}
	if req.Minutes <= 0 {
		return nil, invalidf("tracked minutes must be positive")
	}
	return s.append(ctx, actor, taskID, history.TimeTracked{TrackingID: trackingID, Minutes: req.Minutes})
}

func (s *HistoryService) append(ctx context.Context, actor, taskID string, a history.Action) (*dto.HistoryView, error) {
	var view dto.HistoryView
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
		if err := u.record(t, a); err != nil {
			return err
		}
		view = dto.NewHistoryView(u.entries[len(u.entries)-1].row, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ForgetComment soft-deletes the rows linked to a deleted comment.
func (s *HistoryService) ForgetComment(ctx context.Context, actor, commentID string) error {
	return s.run(ctx, actor, func(u *unitOfWork) error {
		rows, err := u.r.HistoryByComment(u.ctx, commentID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return notFound("comment", commentID)
		}
		checked := map[string]bool{}
		for _, row := range rows {
			if !checked[row.TaskID] {
				t, err := u.r.Task(u.ctx, row.TaskID)
				if err != nil {
					return lookup(err, "task", row.TaskID)
				}
				if err := s.authorize(ctx, t.ProjectID, actor); err != nil {
					return err
				}
				checked[row.TaskID] = true
			}
			u.retire(row)
		}
		return nil
	})
}
