package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrtracker/dto"
	"hrtracker/history"
	"hrtracker/model"
	"hrtracker/orderindex"
)

// TaskService runs the task tree operations: create, edit, state changes,
// moves and deletes.
type TaskService struct {
	core
}

func NewTaskService(d Deps) *TaskService {
	return &TaskService{core: newCore(d)}
}

// Create appends a task to its container. A subtask is placed in its
// parent's current state whatever state the request names.
func (s *TaskService) Create(ctx context.Context, actor string, req dto.CreateTaskRequest) (*dto.TaskView, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalidf("title is required")
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityNone
	}
	if !priority.Valid() {
		return nil, invalidf("unknown priority %q", priority)
	}
	if err := checkDates(req.StartDate, req.DueDate); err != nil {
		return nil, err
	}

	var taskID string
	err := s.run(ctx, actor, func(u *unitOfWork) error {
		var parent *model.Task
		var state model.State
		if req.ParentID != "" {
			p, err := u.task(req.ParentID)
			if err != nil {
				return err
			}
			if p.IsSubtask() {
				return ErrNestedSubtask
			}
			if req.StateID != "" {
				target, err := u.state(req.StateID)
				if err != nil {
					return err
				}
				if target.BoardID != p.BoardID {
					return ErrCrossBoardParent
				}
			}
			parent = &p
			if state, err = u.state(p.StateID); err != nil {
				return err
			}
		} else {
			if req.StateID == "" {
				return invalidf("stateId is required")
			}
			var err error
			if state, err = u.state(req.StateID); err != nil {
				return err
			}
		}
		board, err := u.activeBoard(state.BoardID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, board.ProjectID, actor); err != nil {
			return err
		}
		if err := s.checkEstimate(ctx, board.ProjectID, req.EstimateMinutes); err != nil {
			return err
		}
		assignees, err := s.resolveAssignees(ctx, board.ProjectID, req.Assignees)
		if err != nil {
			return err
		}
		attachments, err := s.resolveFiles(ctx, req.Attachments)
		if err != nil {
			return err
		}

		t := model.Task{
			TaskID:          uuid.NewString(),
			BoardID:         board.BoardID,
			ProjectID:       board.ProjectID,
			StateID:         state.StateID,
			Title:           title,
			Description:     req.Description,
			Priority:        priority,
			OwnerID:         actor,
			StartDate:       req.StartDate,
			DueDate:         req.DueDate,
			EstimateMinutes: req.EstimateMinutes,
			Attachments:     attachments,
			Assignees:       membershipIDs(assignees),
			CreatedAt:       u.now,
		}
		if parent != nil {
			t.ParentID = parent.TaskID
		}
		siblings, err := u.members(t)
		if err != nil {
			return err
		}
		t.Order = orderindex.Next(entriesOf(siblings))
		u.putTask(t)
		u.touch(t)

		if parent != nil {
			err = u.record(*parent, history.SubtaskCreated{SubtaskID: t.TaskID, Title: t.Title})
		} else {
			err = u.record(t, history.TaskCreated{
				Title:           t.Title,
				Priority:        t.Priority,
				Assignees:       t.Assignees,
				StartDate:       t.StartDate,
				DueDate:         t.DueDate,
				EstimateMinutes: t.EstimateMinutes,
			})
		}
		if err != nil {
			return err
		}
		watchers := append([]string{actor, board.OwnerID}, employeeIDs(assignees)...)
		if err := s.subscribeEmployees(u, t, watchers, true); err != nil {
			return err
		}
		taskID = t.TaskID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, taskID)
}

// Edit applies the fields present in req. Every field that actually changes
// writes exactly one history row.
func (s *TaskService) Edit(ctx context.Context, actor, taskID string, req dto.EditTaskRequest) (*dto.TaskView, error) {
	err := s.run(ctx, actor, func(u *unitOfWork) error {
		t, err := u.task(taskID)
		if err != nil {
			return err
		}
		board, err := u.activeBoard(t.BoardID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, t.ProjectID, actor); err != nil {
			return err
		}
		changed := false
		emit := func(a history.Action) error {
			changed = true
			return u.record(t, a)
		}

		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return invalidf("title must not be empty")
			}
			if title != t.Title {
				if err := emit(history.TitleChanged{Old: t.Title, New: title}); err != nil {
					return err
				}
				t.Title = title
			}
		}
		if req.Description != nil && *req.Description != t.Description {
			if err := emit(history.DescriptionChanged{Old: t.Description, New: *req.Description}); err != nil {
				return err
			}
			t.Description = *req.Description
		}
		if req.Priority != nil {
			p := *req.Priority
			if p == "" {
				p = model.PriorityNone
			}
			if !p.Valid() {
				return invalidf("unknown priority %q", p)
			}
			old := t.Priority
			if old == "" {
				old = model.PriorityNone
			}
			if p != old {
				if err := emit(history.PriorityChanged{Old: old, New: p}); err != nil {
					return err
				}
				t.Priority = p
			}
		}
		if req.StartDate.Set && !sameTime(t.StartDate, req.StartDate.Value) {
			if err := emit(history.StartDateChanged{Old: t.StartDate, New: req.StartDate.Value}); err != nil {
				return err
			}
			t.StartDate = req.StartDate.Value
		}
		if req.DueDate.Set && !sameTime(t.DueDate, req.DueDate.Value) {
			if err := emit(history.DueDateChanged{Old: t.DueDate, New: req.DueDate.Value}); err != nil {
				return err
			}
			t.DueDate = req.DueDate.Value
		}
		if err := checkDates(t.StartDate, t.DueDate); err != nil {
			return err
		}
		if req.EstimateMinutes.Set && !sameInt(t.EstimateMinutes, req.EstimateMinutes.Value) {
			if err := s.checkEstimate(ctx, t.ProjectID, req.EstimateMinutes.Value); err != nil {
				return err
			}
			if err := emit(history.EstimateChanged{Old: t.EstimateMinutes, New: req.EstimateMinutes.Value}); err != nil {
				return err
			}
			t.EstimateMinutes = req.EstimateMinutes.Value
		}

		if req.Assignees != nil {
			next, err := s.resolveAssignees(ctx, t.ProjectID, *req.Assignees)
			if err != nil {
				return err
			}
			added, removed := diff(t.Assignees, membershipIDs(next))
			if len(added) > 0 {
				if err := emit(history.UsersAssigned{ProjectEmployeeIDs: added}); err != nil {
					return err
				}
				if err := s.subscribeEmployees(u, t, employeeIDs(pick(next, added)), false); err != nil {
					return err
				}
			}
			if len(removed) > 0 {
				gone, err := s.Members.ProjectEmployees(ctx, removed)
				if err != nil {
					return err
				}
				if err := emit(history.UsersRemoved{ProjectEmployeeIDs: removed}); err != nil {
					return err
				}
				if err := u.unsubscribeEmployees(t.TaskID, employeeIDs(gone)); err != nil {
					return err
				}
			}
			t.Assignees = membershipIDs(next)
		}

		if req.Attachments != nil {
			next := distinct(*req.Attachments)
			added, removed := diff(t.Attachments, next)
			if len(added) > 0 {
				if _, err := s.resolveFiles(ctx, added); err != nil {
					return err
				}
				if err := emit(history.FilesUploaded{FileIDs: added}); err != nil {
					return err
				}
			}
			if len(removed) > 0 {
				if err := emit(history.FilesRemoved{FileIDs: removed}); err != nil {
					return err
				}
				u.orphan(removed...)
			}
			t.Attachments = next
		}

		if changed {
			u.putTask(t)
			s.Logger.WithField("task", t.TaskID).WithField("board", board.BoardID).Debug("task edited")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, taskID)
}

// resolveAssignees returns the active memberships of project named by ids,
// deduplicated and in request order.
func (c core) resolveAssignees(ctx context.Context, projectID string, ids []string) ([]model.ProjectEmployee, error) {
	ids = distinct(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := c.Members.ProjectEmployees(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.ProjectEmployee, len(found))
	for _, pe := range found {
		byID[pe.ProjectEmployeeID] = pe
	}
	out := make([]model.ProjectEmployee, 0, len(ids))
	for _, id := range ids {
		pe, ok := byID[id]
		if !ok {
			return nil, notFound("project employee", id)
		}
		if pe.ProjectID != projectID || !pe.Active {
			return nil, invalidf("project employee %s is not an active member of project %s", id, projectID)
		}
		out = append(out, pe)
	}
	return out, nil
}

// resolveFiles checks that every referenced file exists.
func (c core) resolveFiles(ctx context.Context, ids []string) ([]string, error) {
	ids = distinct(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	refs, err := c.Files.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(refs))
	for _, f := range refs {
		known[f.FileID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return nil, notFound("file", id)
		}
	}
	return ids, nil
}

func checkDates(start, due *time.Time) error {
	if start != nil && due != nil && start.After(*due) {
		return ErrDatesOutOfOrder
	}
	return nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// diff returns the ids of next missing from cur and the ids of cur missing
// from next, each in the order of its source.
func diff(cur, next []string) (added, removed []string) {
	in := func(list []string) map[string]bool {
		m := make(map[string]bool, len(list))
		for _, v := range list {
			m[v] = true
		}
		return m
	}
	curSet, nextSet := in(cur), in(next)
	for _, v := range next {
		if !curSet[v] {
			added = append(added, v)
		}
	}
	for _, v := range cur {
		if !nextSet[v] {
			removed = append(removed, v)
		}
	}
	return added, removed
}

func membershipIDs(pes []model.ProjectEmployee) []string {
	if len(pes) == 0 {
		return nil
	}
	out := make([]string, len(pes))
	for i, pe := range pes {
		out[i] = pe.ProjectEmployeeID
	}
	return out
}

func employeeIDs(pes []model.ProjectEmployee) []string {
	out := make([]string, len(pes))
	for i, pe := range pes {
		out[i] = pe.EmployeeID
	}
	return out
}

func pick(pes []model.ProjectEmployee, ids []string) []model.ProjectEmployee {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.ProjectEmployee
	for _, pe := range pes {
		if want[pe.ProjectEmployeeID] {
			out = append(out, pe)
		}
	}
	return out
}
