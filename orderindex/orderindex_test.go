package orderindex

import (
	"fmt"
	"math/rand"
	"testing"
)

func entries(ids ...string) []Entry {
	out := make([]Entry, len(ids))
	for i, id := range ids {
		out[i] = Entry{ID: id, Order: i + 1}
	}
	return out
}

func orderOf(es []Entry, id string) int {
	for _, e := range es {
		if e.ID == id {
			return e.Order
		}
	}
	return 0
}

func TestNext(t *testing.T) {
	if got := Next(nil); got != 1 {
		t.Fatalf("empty container: got %d want 1", got)
	}
	if got := Next(entries("a", "b", "c")); got != 4 {
		t.Fatalf("got %d want 4", got)
	}
}

func TestCheckBound(t *testing.T) {
	cases := []struct {
		order, last int
		ok          bool
	}{
		{1, 0, true},
		{2, 0, false},
		{0, 3, false},
		{4, 3, true},
		{5, 3, false},
	}
	for _, c := range cases {
		err := CheckBound(c.order, c.last)
		if (err == nil) != c.ok {
			t.Fatalf("CheckBound(%d, %d) = %v, want ok=%v", c.order, c.last, err, c.ok)
		}
	}
}

func TestRemoveShiftsHigherMembersDown(t *testing.T) {
	es := entries("a", "b", "c", "d")
	remaining := []Entry{es[0], es[2], es[3]}
	shifted := Remove(remaining, 2)
	if len(shifted) != 2 {
		t.Fatalf("expected two shifted entries, got %v", shifted)
	}
	after := Apply(remaining, shifted)
	if !Dense(after) {
		t.Fatalf("not dense after remove: %v", after)
	}
	if orderOf(after, "c") != 2 || orderOf(after, "d") != 3 {
		t.Fatalf("unexpected orders: %v", after)
	}
}

func TestInsertOpensSlot(t *testing.T) {
	es := entries("a", "b", "c")
	shifted := Insert(es, 2)
	after := append(Apply(es, shifted), Entry{ID: "x", Order: 2})
	if !Dense(after) {
		t.Fatalf("not dense after insert: %v", after)
	}
	if orderOf(after, "a") != 1 || orderOf(after, "b") != 3 || orderOf(after, "c") != 4 {
		t.Fatalf("unexpected orders: %v", after)
	}
}

func TestMove(t *testing.T) {
	cases := []struct {
		name string
		id   string
		to   int
		want map[string]int
	}{
		{"forward", "a", 3, map[string]int{"a": 3, "b": 1, "c": 2, "d": 4}},
		{"backward", "d", 2, map[string]int{"a": 1, "b": 3, "c": 4, "d": 2}},
		{"past end lands last", "b", 5, map[string]int{"a": 1, "b": 4, "c": 2, "d": 3}},
		{"same slot", "c", 3, map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			es := entries("a", "b", "c", "d")
			shifted, err := Move(es, c.id, c.to)
			if err != nil {
				t.Fatalf("move: %v", err)
			}
			after := Apply(es, shifted)
			for id, want := range c.want {
				if got := orderOf(after, id); got != want {
					t.Fatalf("%s: got order %d want %d (%v)", id, got, want, after)
				}
			}
		})
	}
}

func TestMoveRejectsOutOfBounds(t *testing.T) {
	es := entries("a", "b")
	if _, err := Move(es, "a", 0); err == nil {
		t.Fatalf("expected error for order 0")
	}
	if _, err := Move(es, "a", 4); err == nil {
		t.Fatalf("expected error for order past max+1")
	}
	if _, err := Move(es, "zz", 1); err == nil {
		t.Fatalf("expected error for unknown member")
	}
}

func TestDenseUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var es []Entry
	next := 0
	for step := 0; step < 500; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(es) == 0:
			at := rng.Intn(len(es)+1) + 1
			es = Apply(es, Insert(es, at))
			next++
			es = append(es, Entry{ID: fmt.Sprintf("t%d", next), Order: at})
		case op == 1:
			i := rng.Intn(len(es))
			removed := es[i]
			es = append(es[:i:i], es[i+1:]...)
			es = Apply(es, Remove(es, removed.Order))
		default:
			victim := es[rng.Intn(len(es))]
			shifted, err := Move(es, victim.ID, rng.Intn(len(es)+1)+1)
			if err != nil {
				t.Fatalf("step %d: move: %v", step, err)
			}
			es = Apply(es, shifted)
		}
		if !Dense(es) {
			t.Fatalf("step %d: sequence lost density: %v", step, es)
		}
	}
}
