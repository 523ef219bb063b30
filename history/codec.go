package history

import (
	"fmt"

	"github.com/bytedance/sonic"

	"hrtracker/model"
)

// Encode serialises the payload of a stored row.
func Encode(a Action) (string, error) {
	return sonic.MarshalString(a)
}

// Decode rebuilds the typed action stored under kind.
func Decode(kind model.ActionKind, payload string) (Action, error) {
	switch kind {
	case model.ActionCreateTask:
		return decode[TaskCreated](payload)
	case model.ActionChangeTitle:
		return decode[TitleChanged](payload)
	case model.ActionChangeDescription:
		return decode[DescriptionChanged](payload)
	case model.ActionChangeState:
		return decode[StateChanged](payload)
	case model.ActionAssignUser:
		return decode[UsersAssigned](payload)
	case model.ActionRemoveUser:
		return decode[UsersRemoved](payload)
	case model.ActionSetStartDate, model.ActionRemoveStartDate, model.ActionChangeStartDate:
		return decode[StartDateChanged](payload)
	case model.ActionSetDueDate, model.ActionRemoveDueDate, model.ActionChangeDueDate:
		return decode[DueDateChanged](payload)
	case model.ActionSetTaskPriority, model.ActionRemoveTaskPriority, model.ActionChangeTaskPriority:
		return decode[PriorityChanged](payload)
	case model.ActionTimeAmountEstimated, model.ActionEstimatedTimeRemoved:
		return decode[EstimateChanged](payload)
	case model.ActionFileUpload:
		return decode[FilesUploaded](payload)
	case model.ActionRemoveFile:
		return decode[FilesRemoved](payload)
	case model.ActionAddComment:
		return decode[CommentAdded](payload)
	case model.ActionTimeTracked:
		return decode[TimeTracked](payload)
	case model.ActionCreateSubTask:
		return decode[SubtaskCreated](payload)
	case model.ActionRemoveSubTask:
		return decode[SubtasksRemoved](payload)
	case model.ActionDeleteTask:
		return decode[TaskDeleted](payload)
	case model.ActionMoveToBoard:
		return decode[BoardChanged](payload)
	}
	return nil, fmt.Errorf("unknown history action %q", kind)
}

func decode[T Action](payload string) (Action, error) {
	var a T
	if payload == "" {
		return a, nil
	}
	if err := sonic.UnmarshalString(payload, &a); err != nil {
		return nil, fmt.Errorf("decode %T: %w", a, err)
	}
	return a, nil
}
