package services

import (
	"errors"
	"fmt"

	"hrtracker/repository"
)

// Error kinds. Every error the engine returns for a rejected request wraps
// exactly one of them.
var (
	ErrNotFound          = errors.New("not found")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrIllegalOrder      = errors.New("illegal order")
	ErrIllegalHierarchy  = errors.New("illegal hierarchy")
	ErrForbidden         = errors.New("forbidden")
	ErrResourceLimit     = errors.New("resource limit exceeded")
	ErrInvalid           = errors.New("invalid request")
)

var (
	ErrForwardSkip        = fmt.Errorf("%w: tasks move forward one state at a time", ErrIllegalTransition)
	ErrSubtaskStateChange = fmt.Errorf("%w: a subtask follows its parent's state", ErrIllegalTransition)
	ErrStateNotOnBoard    = fmt.Errorf("%w: state belongs to another board", ErrIllegalTransition)

	ErrOrderOutOfBounds = fmt.Errorf("%w: order out of bounds", ErrIllegalOrder)

	ErrNestedSubtask         = fmt.Errorf("%w: a subtask cannot have subtasks", ErrIllegalHierarchy)
	ErrCrossBoardParent      = fmt.Errorf("%w: parent task is on another board", ErrIllegalHierarchy)
	ErrDifferentBoardProject = fmt.Errorf("%w: boards belong to different projects", ErrIllegalHierarchy)
	ErrMixedBoards           = fmt.Errorf("%w: tasks belong to different boards", ErrIllegalHierarchy)
	ErrMixedParents          = fmt.Errorf("%w: subtasks belong to different parents", ErrIllegalHierarchy)
	ErrNotSubtask            = fmt.Errorf("%w: task is not a subtask", ErrIllegalHierarchy)
	ErrIsSubtask             = fmt.Errorf("%w: task is a subtask", ErrIllegalHierarchy)

	ErrNotMember             = fmt.Errorf("%w: not a member of the project", ErrForbidden)
	ErrImmutableSubscription = fmt.Errorf("%w: subscription was created by the system", ErrForbidden)

	ErrEstimateExceedsCap = fmt.Errorf("%w: estimate exceeds the daily working minutes", ErrResourceLimit)

	ErrBoardArchived   = fmt.Errorf("%w: board is archived", ErrInvalid)
	ErrImmutableState  = fmt.Errorf("%w: boundary states cannot be changed", ErrInvalid)
	ErrStateHasTasks   = fmt.Errorf("%w: state still holds tasks", ErrInvalid)
	ErrEmptySelection  = fmt.Errorf("%w: no tasks given", ErrInvalid)
	ErrDatesOutOfOrder = fmt.Errorf("%w: start date is after due date", ErrInvalid)
)

func notFound(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// lookup translates a storage miss into the engine's not-found kind.
func lookup(err error, entity, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(entity, id)
	}
	return err
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
