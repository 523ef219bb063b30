// Package history defines the typed payloads of the task action ledger.
package history

import (
	"time"

	"hrtracker/model"
)

// Action is one observed change of a task. Each concrete type carries only the
// fields relevant to its kind.
type Action interface {
	Kind() model.ActionKind
}

// Linked is implemented by actions that reference an external record which
// the ledger indexes.
type Linked interface {
	Action
	Links() (commentID, trackingID string)
}

type TaskCreated struct {
	Title           string         `json:"title"`
	Priority        model.Priority `json:"priority"`
	Assignees       []string       `json:"assignees,omitempty"`
	StartDate       *time.Time     `json:"startDate,omitempty"`
	DueDate         *time.Time     `json:"dueDate,omitempty"`
	EstimateMinutes *int           `json:"estimateMinutes,omitempty"`
}

func (TaskCreated) Kind() model.ActionKind { return model.ActionCreateTask }

type TitleChanged struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func (TitleChanged) Kind() model.ActionKind { return model.ActionChangeTitle }

type DescriptionChanged struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func (DescriptionChanged) Kind() model.ActionKind { return model.ActionChangeDescription }

type StateChanged struct {
	FromStateID string `json:"fromStateId"`
	ToStateID   string `json:"toStateId"`
}

func (StateChanged) Kind() model.ActionKind { return model.ActionChangeState }

type UsersAssigned struct {
	ProjectEmployeeIDs []string `json:"projectEmployeeIds"`
}

func (UsersAssigned) Kind() model.ActionKind { return model.ActionAssignUser }

type UsersRemoved struct {
	ProjectEmployeeIDs []string `json:"projectEmployeeIds"`
}

func (UsersRemoved) Kind() model.ActionKind { return model.ActionRemoveUser }

type StartDateChanged struct {
	Old *time.Time `json:"old,omitempty"`
	New *time.Time `json:"new,omitempty"`
}

func (a StartDateChanged) Kind() model.ActionKind {
	return triState(a.Old == nil, a.New == nil,
		model.ActionSetStartDate, model.ActionRemoveStartDate, model.ActionChangeStartDate)
}

type DueDateChanged struct {
	Old *time.Time `json:"old,omitempty"`
	New *time.Time `json:"new,omitempty"`
}

func (a DueDateChanged) Kind() model.ActionKind {
	return triState(a.Old == nil, a.New == nil,
		model.ActionSetDueDate, model.ActionRemoveDueDate, model.ActionChangeDueDate)
}

// PriorityChanged treats PriorityNone as the absent value.
type PriorityChanged struct {
	Old model.Priority `json:"old"`
	New model.Priority `json:"new"`
}

func (a PriorityChanged) Kind() model.ActionKind {
	return triState(isNone(a.Old), isNone(a.New),
		model.ActionSetTaskPriority, model.ActionRemoveTaskPriority, model.ActionChangeTaskPriority)
}

// EstimateChanged records both newly set and revised estimates as
// TIME_AMOUNT_ESTIMATED.
type EstimateChanged struct {
	Old *int `json:"old,omitempty"`
	New *int `json:"new,omitempty"`
}

func (a EstimateChanged) Kind() model.ActionKind {
	if a.New == nil {
		return model.ActionEstimatedTimeRemoved
	}
	return model.ActionTimeAmountEstimated
}

type FilesUploaded struct {
	FileIDs []string `json:"fileIds"`
}

func (FilesUploaded) Kind() model.ActionKind { return model.ActionFileUpload }

type FilesRemoved struct {
	FileIDs []string `json:"fileIds"`
}

func (FilesRemoved) Kind() model.ActionKind { return model.ActionRemoveFile }

type CommentAdded struct {
	CommentID string `json:"commentId"`
}

func (CommentAdded) Kind() model.ActionKind { return model.ActionAddComment }

func (a CommentAdded) Links() (string, string) { return a.CommentID, "" }

type TimeTracked struct {
	TrackingID string `json:"trackingId"`
	Minutes    int    `json:"minutes"`
}

func (TimeTracked) Kind() model.ActionKind { return model.ActionTimeTracked }

func (a TimeTracked) Links() (string, string) { return "", a.TrackingID }

type SubtaskCreated struct {
	SubtaskID string `json:"subtaskId"`
	Title     string `json:"title"`
}

func (SubtaskCreated) Kind() model.ActionKind { return model.ActionCreateSubTask }

type SubtasksRemoved struct {
	SubtaskIDs []string `json:"subtaskIds"`
}

func (SubtasksRemoved) Kind() model.ActionKind { return model.ActionRemoveSubTask }

type TaskDeleted struct {
	StateID string `json:"stateId"`
	Order   int    `json:"order"`
}

func (TaskDeleted) Kind() model.ActionKind { return model.ActionDeleteTask }

type BoardChanged struct {
	FromBoardID string `json:"fromBoardId"`
	ToBoardID   string `json:"toBoardId"`
	FromStateID string `json:"fromStateId"`
	ToStateID   string `json:"toStateId"`
}

func (BoardChanged) Kind() model.ActionKind { return model.ActionMoveToBoard }

// triState picks SET for absent->present, REMOVE for present->absent and
// CHANGE otherwise.
func triState(oldAbsent, newAbsent bool, set, remove, change model.ActionKind) model.ActionKind {
	switch {
	case oldAbsent && !newAbsent:
		return set
	case !oldAbsent && newAbsent:
		return remove
	default:
		return change
	}
}

func isNone(p model.Priority) bool {
	return p == "" || p == model.PriorityNone
}
