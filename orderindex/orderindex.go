// Package orderindex keeps a container's positions as a dense 1..N sequence.
//
// Every function takes a snapshot of the container's members and returns only
// the entries whose order changed, carrying their new order. Callers apply the
// result to their own records.
package orderindex

import (
	"errors"
	"fmt"
	"sort"
)

var ErrOutOfBounds = errors.New("order out of bounds")

// Entry is one member of a container.
type Entry struct {
	ID    string
	Order int
}

// Max returns the highest order in entries, or 0 when empty.
func Max(entries []Entry) int {
	m := 0
	for _, e := range entries {
		if e.Order > m {
			m = e.Order
		}
	}
	return m
}

// Next returns the order a newly appended member receives.
func Next(entries []Entry) int {
	return Max(entries) + 1
}

// CheckBound reports whether order may be used to place a new member in a
// container whose last member sits at last.
func CheckBound(order, last int) error {
	if order < 1 || order > last+1 {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrOutOfBounds, order, last+1)
	}
	return nil
}

// Remove closes the gap left by a member removed from order removed: every
// member above it moves down by one.
func Remove(entries []Entry, removed int) []Entry {
	var shifted []Entry
	for _, e := range entries {
		if e.Order > removed {
			shifted = append(shifted, Entry{ID: e.ID, Order: e.Order - 1})
		}
	}
	return sorted(shifted)
}

// Insert opens a slot at order at: every member at or above it moves up by one.
func Insert(entries []Entry, at int) []Entry {
	var shifted []Entry
	for _, e := range entries {
		if e.Order >= at {
			shifted = append(shifted, Entry{ID: e.ID, Order: e.Order + 1})
		}
	}
	return sorted(shifted)
}

// Move relocates member id to order to within the same container. Members
// strictly between the old and new positions shift by one toward the vacated
// slot. A target one past the end is accepted and lands on the last slot.
// The moved member is included in the result when its order changes.
func Move(entries []Entry, id string, to int) ([]Entry, error) {
	from := 0
	for _, e := range entries {
		if e.ID == id {
			from = e.Order
			break
		}
	}
	if from == 0 {
		return nil, fmt.Errorf("%w: %s is not in the container", ErrOutOfBounds, id)
	}
	last := Max(entries)
	if err := CheckBound(to, last); err != nil {
		return nil, err
	}
	if to > last {
		to = last
	}
	if to == from {
		return nil, nil
	}
	shifted := []Entry{{ID: id, Order: to}}
	for _, e := range entries {
		switch {
		case e.ID == id:
		case from < to && e.Order > from && e.Order <= to:
			shifted = append(shifted, Entry{ID: e.ID, Order: e.Order - 1})
		case to < from && e.Order >= to && e.Order < from:
			shifted = append(shifted, Entry{ID: e.ID, Order: e.Order + 1})
		}
	}
	return sorted(shifted), nil
}

// Dense reports whether entries hold exactly the orders 1..len(entries).
func Dense(entries []Entry) bool {
	seen := make([]bool, len(entries)+1)
	for _, e := range entries {
		if e.Order < 1 || e.Order > len(entries) || seen[e.Order] {
			return false
		}
		seen[e.Order] = true
	}
	return true
}

// Apply returns entries with the shifted orders written over them.
func Apply(entries []Entry, shifted []Entry) []Entry {
	byID := make(map[string]int, len(shifted))
	for _, s := range shifted {
		byID[s.ID] = s.Order
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if o, ok := byID[e.ID]; ok {
			e.Order = o
		}
		out[i] = e
	}
	return out
}

func sorted(entries []Entry) []Entry {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Order < entries[j].Order })
	return entries
}
