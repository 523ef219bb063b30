package services

import (
	"errors"

	"hrtracker/model"
	"hrtracker/orderindex"
)

// validateTransition allows any backward move and a forward move of exactly
// one column. Callers handle the same-state case as a reorder.
func validateTransition(from, to model.State) error {
	if from.BoardID != to.BoardID {
		return ErrStateNotOnBoard
	}
	if to.Order > from.Order && to.Order-from.Order != 1 {
		return ErrForwardSkip
	}
	return nil
}

// validateOrderBound checks order against a container whose last order is last.
func validateOrderBound(order, last int) error {
	if err := orderindex.CheckBound(order, last); err != nil {
		if errors.Is(err, orderindex.ErrOutOfBounds) {
			return ErrOrderOutOfBounds
		}
		return err
	}
	return nil
}

// entryState is the lowest-order state of a board.
func entryState(states []model.State) (model.State, bool) {
	if len(states) == 0 {
		return model.State{}, false
	}
	entry := states[0]
	for _, s := range states[1:] {
		if s.Order < entry.Order {
			entry = s
		}
	}
	return entry, true
}

func exitState(states []model.State) (model.State, bool) {
	if len(states) == 0 {
		return model.State{}, false
	}
	exit := states[0]
	for _, s := range states[1:] {
		if s.Order > exit.Order {
			exit = s
		}
	}
	return exit, true
}
