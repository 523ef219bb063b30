package services

import (
	"context"
	"sort"

	"hrtracker/dto"
	"hrtracker/model"
)

// Get returns a task view. Root tasks carry their subtasks.
func (s *TaskService) Get(ctx context.Context, actor, taskID string) (*dto.TaskView, error) {
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
	board, states, err := s.boardWithStates(ctx, t.BoardID)
	if err != nil {
		return nil, err
	}
	children := map[string][]model.Task{}
	if !t.IsSubtask() {
		subs, err := s.Store.Subtasks(ctx, t.TaskID)
		if err != nil {
			return nil, err
		}
		children[t.TaskID] = subs
	}
	views, err := s.views(ctx, board, states, []model.Task{*t}, children)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListByBoard pages through a board's root tasks ordered by state, then by
// order within the state.
func (s *TaskService) ListByBoard(ctx context.Context, actor, boardID string, q dto.PageQuery) (*dto.Page[dto.TaskView], error) {
	board, states, err := s.boardWithStates(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, board.ProjectID, actor); err != nil {
		return nil, err
	}
	all, err := s.Store.TasksByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	stateOrder := make(map[string]int, len(states))
	for _, st := range states {
		stateOrder[st.StateID] = st.Order
	}
	var roots []model.Task
	children := map[string][]model.Task{}
	for _, t := range all {
		if t.IsSubtask() {
			children[t.ParentID] = append(children[t.ParentID], t)
			continue
		}
		roots = append(roots, t)
	}
	sort.SliceStable(roots, func(i, j int) bool {
		a, b := roots[i], roots[j]
		if stateOrder[a.StateID] != stateOrder[b.StateID] {
			return stateOrder[a.StateID] < stateOrder[b.StateID]
		}
		return a.Order < b.Order
	})
	for id := range children {
		sortByOrder(children[id])
	}
	return s.page(ctx, board, states, roots, children, q)
}

// ListByParent pages through the subtasks of a root task.
func (s *TaskService) ListByParent(ctx context.Context, actor, parentID string, q dto.PageQuery) (*dto.Page[dto.TaskView], error) {
	parent, err := s.Store.Task(ctx, parentID)
	if err != nil {
		return nil, lookup(err, "task", parentID)
	}
	if parent.Deleted {
		return nil, notFound("task", parentID)
	}
	if parent.IsSubtask() {
		return nil, ErrIsSubtask
	}
	if err := s.authorize(ctx, parent.ProjectID, actor); err != nil {
		return nil, err
	}
	board, states, err := s.boardWithStates(ctx, parent.BoardID)
	if err != nil {
		return nil, err
	}
	subs, err := s.Store.Subtasks(ctx, parentID)
	if err != nil {
		return nil, err
	}
	sortByOrder(subs)
	return s.page(ctx, board, states, subs, nil, q)
}

func (s *TaskService) page(ctx context.Context, board model.Board, states []model.State, tasks []model.Task, children map[string][]model.Task, q dto.PageQuery) (*dto.Page[dto.TaskView], error) {
	page, size := q.Page, q.Size
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = s.PageSize
	}
	total := len(tasks)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	start, end := total, total
	if page-1 < pages {
		start = (page - 1) * size
		end = min(start+size, total)
	}
	views, err := s.views(ctx, board, states, tasks[start:end], children)
	if err != nil {
		return nil, err
	}
	return &dto.Page[dto.TaskView]{Items: views, Page: page, Size: size, Total: total}, nil
}

func (c core) boardWithStates(ctx context.Context, boardID string) (model.Board, []model.State, error) {
	board, err := c.Store.Board(ctx, boardID)
	if err != nil {
		return model.Board{}, nil, lookup(err, "board", boardID)
	}
	states, err := c.Store.StatesByBoard(ctx, boardID)
	if err != nil {
		return model.Board{}, nil, err
	}
	return *board, states, nil
}

// views resolves owners, assignees and attachments of tasks and their
// children in one lookup per collaborator.
func (c core) views(ctx context.Context, board model.Board, states []model.State, tasks []model.Task, children map[string][]model.Task) ([]dto.TaskView, error) {
	var everything []model.Task
	everything = append(everything, tasks...)
	for _, t := range tasks {
		everything = append(everything, children[t.TaskID]...)
	}

	var ownerIDs, memberIDs, fileIDs []string
	for _, t := range everything {
		ownerIDs = append(ownerIDs, t.OwnerID)
		memberIDs = append(memberIDs, t.Assignees...)
		fileIDs = append(fileIDs, t.Attachments...)
	}
	refs := dto.TaskRefs{
		Board:     board,
		States:    make(map[string]model.State, len(states)),
		Employees: map[string]model.Employee{},
		Members:   map[string]model.ProjectEmployee{},
		Files:     map[string]model.FileRef{},
	}
	for _, st := range states {
		refs.States[st.StateID] = st
	}
	if ids := distinct(memberIDs); len(ids) > 0 {
		pes, err := c.Members.ProjectEmployees(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, pe := range pes {
			refs.Members[pe.ProjectEmployeeID] = pe
			ownerIDs = append(ownerIDs, pe.EmployeeID)
		}
	}
	if ids := distinct(ownerIDs); len(ids) > 0 {
		emps, err := c.Members.Employees(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, e := range emps {
			refs.Employees[e.EmployeeID] = e
		}
	}
	if ids := distinct(fileIDs); len(ids) > 0 {
		files, err := c.Files.Resolve(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			refs.Files[f.FileID] = f
		}
	}

	out := make([]dto.TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := dto.NewTaskView(t, refs)
		if !t.IsSubtask() {
			v.Subtasks = []dto.TaskView{}
			for _, sub := range children[t.TaskID] {
				v.Subtasks = append(v.Subtasks, dto.NewTaskView(sub, refs))
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func sortByOrder(tasks []model.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Order != tasks[j].Order {
			return tasks[i].Order < tasks[j].Order
		}
		return tasks[i].TaskID < tasks[j].TaskID
	})
}
