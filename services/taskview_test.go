package services

import (
	"errors"
	"math"
	"testing"

	"hrtracker/dto"
)

func TestListByBoardPages(t *testing.T) {
	f := newFixture(t)
	b := f.newBoard(projectID, "Sprint")
	var ids []string
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, f.create(owner, dto.CreateTaskRequest{StateID: stateID(b, 1), Title: title}).TaskID)
	}

	cases := []struct {
		name string
		q    dto.PageQuery
		want []string
	}{
		{"first", dto.PageQuery{Page: 1, Size: 2}, ids[0:2]},
		{"last partial", dto.PageQuery{Page: 3, Size: 2}, ids[4:5]},
		{"past the end", dto.PageQuery{Page: 4, Size: 2}, nil},
		{"default size", dto.PageQuery{}, ids},
		{"huge page", dto.PageQuery{Page: math.MaxInt64/30 + 2, Size: 30}, nil},
		{"max page", dto.PageQuery{Page: math.MaxInt, Size: 100}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := f.tasks.ListByBoard(f.ctx, owner, b.BoardID, tc.q)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if p.Total != 5 {
				t.Fatalf("total = %d", p.Total)
			}
			if len(p.Items) != len(tc.want) {
				t.Fatalf("got %d items, want %d", len(p.Items), len(tc.want))
			}
			for i, v := range p.Items {
				if v.TaskID != tc.want[i] {
					t.Fatalf("item %d = %s, want %s", i, v.TaskID, tc.want[i])
				}
			}
		})
	}
}

func TestListByParentPagesAndRejectsSubtask(t *testing.T) {
	f := newFixture(t)
	b := f.newBoard(projectID, "Sprint")
	parent := f.create(owner, dto.CreateTaskRequest{StateID: stateID(b, 1), Title: "Parent"})
	c1 := f.create(owner, dto.CreateTaskRequest{ParentID: parent.TaskID, Title: "C1"})
	c2 := f.create(owner, dto.CreateTaskRequest{ParentID: parent.TaskID, Title: "C2"})

	p, err := f.tasks.ListByParent(f.ctx, owner, parent.TaskID, dto.PageQuery{Page: 2, Size: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if p.Total != 2 || len(p.Items) != 1 || p.Items[0].TaskID != c2.TaskID {
		t.Fatalf("page = %+v", p)
	}
	if _, err := f.tasks.ListByParent(f.ctx, owner, parent.TaskID, dto.PageQuery{Page: math.MaxInt, Size: 1}); err != nil {
		t.Fatalf("out of range page: %v", err)
	}
	if _, err := f.tasks.ListByParent(f.ctx, owner, c1.TaskID, dto.PageQuery{}); !errors.Is(err, ErrIsSubtask) {
		t.Fatalf("subtask as parent: err = %v", err)
	}
}

func TestEngineWithoutFileStore(t *testing.T) {
	f := newFixture(t)
	b := f.newBoard(projectID, "Sprint")
	deps := f.deps
	deps.Files = nil
	tasks := NewTaskService(deps)

	_, err := tasks.Create(f.ctx, owner, dto.CreateTaskRequest{StateID: stateID(b, 1), Title: "X", Attachments: []string{"f1"}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("attachment without a file store: err = %v", err)
	}

	// A task stored with attachments still renders and deletes.
	v := f.create(owner, dto.CreateTaskRequest{StateID: stateID(b, 1), Title: "Y", Attachments: []string{"f1"}})
	if _, err := tasks.Get(f.ctx, owner, v.TaskID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := tasks.Delete(f.ctx, owner, dto.DeleteTasksRequest{TaskIDs: []string{v.TaskID}}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.dir.DeletedFiles()) != 0 {
		t.Fatal("delete reached the seeded directory")
	}
}
