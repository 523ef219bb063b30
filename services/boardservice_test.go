package services

import (
	"errors"
	"slices"
	"testing"

	"hrtracker/dto"
	"hrtracker/model"
)

func stateNames(b *dto.BoardView) []string {
	out := make([]string, len(b.States))
	for i, s := range b.States {
		out[i] = s.Name
	}
	return out
}

func TestCreateBoardClonesTemplate(t *testing.T) {
	f := newFixture(t)
	b := f.newBoard(projectID, "  Sprint 1 ")

	if b.Name != "Sprint 1" || b.OwnerID != owner {
		t.Fatalf("board = %+v", b)
	}
	if got := stateNames(b); !slices.Equal(got, []string{"Open", "Doing", "Closed"}) {
		t.Fatalf("states = %v", got)
	}
	for _, s := range b.States {
		wantImmutable := s.Order == 1 || s.Order == 3
		if s.Immutable != wantImmutable {
			t.Fatalf("state %s immutable = %v", s.Name, s.Immutable)
		}
	}

	cases := []struct {
		name  string
		actor string
		req   dto.CreateBoardRequest
		want  error
	}{
		{"blank name", owner, dto.CreateBoardRequest{ProjectID: projectID, Name: "  "}, ErrInvalid},
		{"unknown project", owner, dto.CreateBoardRequest{ProjectID: "nope", Name: "X"}, ErrNotFound},
		{"outsider", outsider, dto.CreateBoardRequest{ProjectID: projectID, Name: "X"}, ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.boards.CreateBoard(f.ctx, tc.actor, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAddState(t *testing.T) {
	f := newFixture(t)
	b := f.newBoard(projectID, "Sprint")

	review, err := f.boards.AddState(f.ctx, owner, b.BoardID, dto.AddStateRequest{Name: "Review"})
	if err != nil {
		t.Fatalf("add default: %v", err)
	}
	if review.Order != 3 || review.Immutable {
		t.Fatalf("review = %+v", review)
	}
	if _, err := f.boards.AddState(f.ctx, owner, b.BoardID, dto.AddStateRequest{Name: "Ready", Order: ptr(2)}); err != nil {
		t.Fatalf("add at 2: %v", err)
	}
	got, err := f.boards.GetBoard(f.ctx, owner, b.BoardID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if names := stateNames(got); !slices.Equal(names, []string{"Open", "Ready", "Doing", "Review", "Closed"}) {
		t.Fatalf("states = %v", names)
	}
	stored, _ := f.store.Board(f.ctx, b.BoardID)
	if stored.Revision != 2 {
		t.Fatalf("board revision = %d, want 2", stored.Revision)
	}

	for _, order := range []int{1, 6} {
		_, err := f.boards.AddState(f.ctx, owner, b.BoardID, dto.AddStateRequest{Name: "Bad", Order: ptr(order)})
		if !errors.Is(err, ErrOrderOutOfBounds) {
			t.Fatalf("order %d: err = %v", order, err)
		}
	}
	if _, err := f.boards.AddState(f.ctx, owner, b.BoardID, dto.AddStateRequest{Name: " "}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("blank name: err = %v", err)
	}
}

func TestUpdateState(t *testing.T) {
	f := newFixture(t)
	b := f.newBoard(projectID, "Sprint")
	if _, err := f.boards.AddState(f.ctx, owner, b.BoardID, dto.AddStateRequest{Name: "Review"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Open(1) Doing(2) Review(3) Closed(4)
	open, doing := stateID(b, 1), stateID(b, 2)

	if _, err := f.boards.UpdateState(f.ctx, owner, open, dto.UpdateStateRequest{Order: ptr(2)}); !errors.Is(err, ErrImmutableState) {
		t.Fatalf("move entry: err = %v", err)
	}
	renamed, err := f.boards.UpdateState(f.ctx, owner, open, dto.UpdateStateRequest{Name: ptr("Backlog")})
	if err != nil || renamed.Name != "Backlog" {
		t.Fatalf("rename entry: %+v, %v", renamed, err)
	}
	if _, err := f.boards.UpdateState(f.ctx, owner, doing, dto.UpdateStateRequest{Order: ptr(4)}); !errors.Is(err, ErrOrderOutOfBounds) {
		t.Fatalf("move onto exit: err = %v", err)
	}
	moved, err := f.boards.UpdateState(f.ctx, owner, doing, dto.UpdateStateRequest{Order: ptr(3)})
	if err != nil || moved.Order != 3 {
		t.Fatalf("move doing: %+v, %v", moved, err)
	}
	got, _ := f.boards.GetBoard(f.ctx, owner, b.BoardID)
	if names := stateNames(got); !slices.Equal(names, []string{"Backlog", "Review", "Doing", "Closed"}) {
		t.Fatalf("states = %v", names)
	}
}

func TestDeleteState(t *testing.T) {
	f := newFixture(t)
	b := f.newBoard(projectID, "Sprint")
	review, err := f.boards.AddState(f.ctx, owner, b.BoardID, dto.AddStateRequest{Name: "Review"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	doing := stateID(b, 2)
	f.create(owner, dto.CreateTaskRequest{StateID: doing, Title: "Busy"})

	if err := f.boards.DeleteState(f.ctx, owner, stateID(b, 1)); !errors.Is(err, ErrImmutableState) {
		t.Fatalf("delete entry: err = %v", err)
	}
	if err := f.boards.DeleteState(f.ctx, owner, doing); !errors.Is(err, ErrStateHasTasks) {
		t.Fatalf("delete busy state: err = %v", err)
	}
	if err := f.boards.DeleteState(f.ctx, owner, review.StateID); err != nil {
		t.Fatalf("delete review: %v", err)
	}
	got, _ := f.boards.GetBoard(f.ctx, owner, b.BoardID)
	if names := stateNames(got); !slices.Equal(names, []string{"Open", "Doing", "Closed"}) {
		t.Fatalf("states = %v", names)
	}
	if got.States[2].Order != 3 {
		t.Fatalf("exit order = %d, want 3", got.States[2].Order)
	}
	if err := f.boards.DeleteState(f.ctx, owner, review.StateID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete twice: err = %v", err)
	}
}

func TestArchivedBoardRejectsMutations(t *testing.T) {
	f := newFixture(t)
	b := f.newBoard(projectID, "Sprint")
	v := f.create(owner, dto.CreateTaskRequest{StateID: stateID(b, 1), Title: "Survivor"})

	archived, err := f.boards.Archive(f.ctx, owner, b.BoardID)
	if err != nil || archived.Status != model.BoardArchived {
		t.Fatalf("archive: %+v, %v", archived, err)
	}
	if _, err := f.tasks.Create(f.ctx, owner, dto.CreateTaskRequest{StateID: stateID(b, 1), Title: "X"}); !errors.Is(err, ErrBoardArchived) {
		t.Fatalf("create: err = %v", err)
	}
	if _, err := f.tasks.Edit(f.ctx, owner, v.TaskID, dto.EditTaskRequest{Title: ptr("Y")}); !errors.Is(err, ErrBoardArchived) {
		t.Fatalf("edit: err = %v", err)
	}
	if _, err := f.boards.AddState(f.ctx, owner, b.BoardID, dto.AddStateRequest{Name: "Review"}); !errors.Is(err, ErrBoardArchived) {
		t.Fatalf("add state: err = %v", err)
	}
	if _, err := f.tasks.Get(f.ctx, owner, v.TaskID); err != nil {
		t.Fatalf("reads stay allowed: %v", err)
	}

	if _, err := f.boards.Restore(f.ctx, owner, b.BoardID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := f.tasks.Edit(f.ctx, owner, v.TaskID, dto.EditTaskRequest{Title: ptr("Y")}); err != nil {
		t.Fatalf("edit after restore: %v", err)
	}
}
