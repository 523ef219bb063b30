package services

import (
	"errors"
	"slices"
	"testing"

	"hrtracker/dto"
	"hrtracker/history"
	"hrtracker/model"
)

func TestDeleteThenCreateAppends(t *testing.T) {
	f := newFixture(t)
	b := f.newBoard(projectID, "Sprint")
	open := stateID(b, 1)
	t1 := f.create(owner, dto.CreateTaskRequest{StateID: open, Title: "1"})
	t2 := f.create(owner, dto.CreateTaskRequest{StateID: open, Title: "2"})
	t3 := f.create(owner, dto.CreateTaskRequest{StateID: open, Title: "3"})

	if err := f.tasks.Delete(f.ctx, owner, dto.DeleteTasksRequest{TaskIDs: []string{t2.TaskID}}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := f.task(t3.TaskID).Order; got != 2 {
		t.Fatalf("t3 order = %d, want 2", got)
	}
	t4 := f.create(owner, dto.CreateTaskRequest{StateID: open, Title: "4"})
	if t4.Order != 3 {
		t.Fatalf("new task order = %d, want 3", t4.Order)
	}
	if f.task(t1.TaskID).Order != 1 {
		t.Fatal("t1 moved")
	}
	if _, err := f.tasks.Get(f.ctx, owner, t2.TaskID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted task still visible: %v", err)
	}
	f.assertDense(b.BoardID)
}

func TestDeleteRootsCascades(t *testing.T) {
	f := newFixture(t)
	b := f.newBoard(projectID, "Sprint")
	open := stateID(b, 1)
	keep := f.create(owner, dto.CreateTaskRequest{StateID: open, Title: "Keep"})
	r1 := f.create(owner, dto.CreateTaskRequest{StateID: open, Title: "R1", Attachments: []string{"f1"}, Assignees: []string{pe(member)}})
	r2 := f.create(owner, dto.CreateTaskRequest{StateID: open, Title: "R2"})
	last := f.create(owner, dto.CreateTaskRequest{StateID: open, Title: "Last"})
	child := f.create(owner, dto.CreateTaskRequest{ParentID: r1.TaskID, Title: "Child", Attachments: []string{"f2"}})
	f.notes.take()

	err := f.tasks.Delete(f.ctx, owner, dto.DeleteTasksRequest{TaskIDs: []string{r1.TaskID, r2.TaskID}})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := f.orders(open); got[keep.TaskID] != 1 || got[last.TaskID] != 2 || len(got) != 2 {
		t.Fatalf("orders = %v", got)
	}
	c := f.task(child.TaskID)
	if !c.Deleted || c.DeletedAt == nil {
		t.Fatal("subtask not soft-deleted with its parent")
	}
	if c.Order != 1 {
		t.Fatalf("cascaded subtask order changed to %d", c.Order)
	}
	deleted := f.dir.DeletedFiles()
	slices.Sort(deleted)
	if !slices.Equal(deleted, []string{"f1", "f2"}) {
		t.Fatalf("deleted files = %v", deleted)
	}
	for _, id := range []string{r1.TaskID, child.TaskID} {
		if got := f.activeSubscribers(id); len(got) != 0 {
			t.Fatalf("task %s keeps subscribers %v", id, got)
		}
	}
	kinds := f.actions(r1.TaskID)
	if kinds[len(kinds)-1] != model.ActionDeleteTask {
		t.Fatalf("history = %v", kinds)
	}

	// Released subscribers still hear about the delete.
	var heard bool
	for _, n := range f.notes.take() {
		if n.TaskID == r1.TaskID && n.Action == model.ActionDeleteTask {
			heard = slices.Contains(n.SubscriberIDs, sub(member))
		}
	}
	if !heard {
		t.Fatal("assignee not notified of the delete")
	}
	f.assertDense(b.BoardID)
}

func TestDeleteRootsValidation(t *testing.T) {
	f := newFixture(t)
	b1 := f.newBoard(projectID, "One")
	b2 := f.newBoard(projectID, "Two")
	a := f.create(owner, dto.CreateTaskRequest{StateID: stateID(b1, 1), Title: "A"})
	x := f.create(owner, dto.CreateTaskRequest{StateID: stateID(b2, 1), Title: "X"})
	c := f.create(owner, dto.CreateTaskRequest{ParentID: a.TaskID, Title: "C"})

	cases := []struct {
		name  string
		actor string
		req   dto.DeleteTasksRequest
		want  error
	}{
		{"empty", owner, dto.DeleteTasksRequest{}, ErrEmptySelection},
		{"mixed boards", owner, dto.DeleteTasksRequest{TaskIDs: []string{a.TaskID, x.TaskID}}, ErrMixedBoards},
		{"subtask as root", owner, dto.DeleteTasksRequest{TaskIDs: []string{c.TaskID}}, ErrIsSubtask},
		{"root as subtask", owner, dto.DeleteTasksRequest{TaskIDs: []string{a.TaskID}, Subtask: true}, ErrNotSubtask},
		{"outsider", outsider, dto.DeleteTasksRequest{TaskIDs: []string{a.TaskID}}, ErrForbidden},
		{"missing", owner, dto.DeleteTasksRequest{TaskIDs: []string{"ghost"}}, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := f.tasks.Delete(f.ctx, tc.actor, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if f.task(a.TaskID).Deleted || f.task(x.TaskID).Deleted {
		t.Fatal("rejected delete removed a task")
	}
}

func TestDeleteSubtasks(t *testing.T) {
	f := newFixture(t)
	b := f.newBoard(projectID, "Sprint")
	p1 := f.create(owner, dto.CreateTaskRequest{StateID: stateID(b, 1), Title: "P1"})
	p2 := f.create(owner, dto.CreateTaskRequest{StateID: stateID(b, 1), Title: "P2"})
	c1 := f.create(owner, dto.CreateTaskRequest{ParentID: p1.TaskID, Title: "C1"})
	c2 := f.create(owner, dto.CreateTaskRequest{ParentID: p1.TaskID, Title: "C2", Attachments: []string{"f3"}})
	c3 := f.create(owner, dto.CreateTaskRequest{ParentID: p1.TaskID, Title: "C3"})
	other := f.create(owner, dto.CreateTaskRequest{ParentID: p2.TaskID, Title: "Other"})

	err := f.tasks.Delete(f.ctx, owner, dto.DeleteTasksRequest{TaskIDs: []string{c1.TaskID, other.TaskID}, Subtask: true})
	if !errors.Is(err, ErrMixedParents) {
		t.Fatalf("mixed parents: err = %v", err)
	}

	if err := f.tasks.Delete(f.ctx, owner, dto.DeleteTasksRequest{TaskIDs: []string{c1.TaskID, c2.TaskID}, Subtask: true}); err != nil {
		t.Fatalf("delete subtasks: %v", err)
	}
	if got := f.task(c3.TaskID).Order; got != 1 {
		t.Fatalf("remaining subtask order = %d, want 1", got)
	}
	if f.task(p1.TaskID).Order != 1 || f.task(p2.TaskID).Order != 2 {
		t.Fatal("root orders changed by a subtask delete")
	}
	if got := f.dir.DeletedFiles(); !slices.Equal(got, []string{"f3"}) {
		t.Fatalf("deleted files = %v", got)
	}

	rows, _ := f.store.HistoryByTask(f.ctx, p1.TaskID)
	last := rows[len(rows)-1]
	if last.Action != model.ActionRemoveSubTask {
		t.Fatalf("last action = %s", last.Action)
	}
	a, _ := history.Decode(last.Action, last.Payload)
	if ids := a.(history.SubtasksRemoved).SubtaskIDs; !slices.Equal(ids, []string{c1.TaskID, c2.TaskID}) {
		t.Fatalf("removed ids = %v", ids)
	}
	removedRows := 0
	for _, r := range rows {
		if r.Action == model.ActionRemoveSubTask {
			removedRows++
		}
	}
	if removedRows != 1 {
		t.Fatalf("want one batched REMOVE_SUB_TASK row, got %d", removedRows)
	}
	f.assertDense(b.BoardID)
}

func TestDeleteSurvivesFileCleanupFailure(t *testing.T) {
	f := newFixture(t)
	b := f.newBoard(projectID, "Sprint")
	v := f.create(owner, dto.CreateTaskRequest{StateID: stateID(b, 1), Title: "Doomed", Attachments: []string{"f1"}})
	f.dir.DeleteErr = errors.New("bucket unavailable")

	if err := f.tasks.Delete(f.ctx, owner, dto.DeleteTasksRequest{TaskIDs: []string{v.TaskID}}); err != nil {
		t.Fatalf("delete should not fail on cleanup: %v", err)
	}
	if !f.task(v.TaskID).Deleted {
		t.Fatal("task not deleted")
	}
}
