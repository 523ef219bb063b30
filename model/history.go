package model

import "time"

type ActionKind string

const (
	ActionCreateTask           ActionKind = "CREATE_TASK"
	ActionChangeTitle          ActionKind = "CHANGE_TITLE"
	ActionChangeDescription    ActionKind = "CHANGE_DESCRIPTION"
	ActionChangeState          ActionKind = "CHANGE_STATE"
	ActionAssignUser           ActionKind = "ASSIGN_USER"
	ActionRemoveUser           ActionKind = "REMOVE_USER"
	ActionSetStartDate         ActionKind = "SET_START_DATE"
	ActionRemoveStartDate      ActionKind = "REMOVE_START_DATE"
	ActionChangeStartDate      ActionKind = "CHANGE_START_DATE"
	ActionSetDueDate           ActionKind = "SET_DUE_DATE"
	ActionRemoveDueDate        ActionKind = "REMOVE_DUE_DATE"
	ActionChangeDueDate        ActionKind = "CHANGE_DUE_DATE"
	ActionSetTaskPriority      ActionKind = "SET_TASK_PRIORITY"
	ActionRemoveTaskPriority   ActionKind = "REMOVE_TASK_PRIORITY"
	ActionChangeTaskPriority   ActionKind = "CHANGE_TASK_PRIORITY"
	ActionTimeAmountEstimated  ActionKind = "TIME_AMOUNT_ESTIMATED"
	ActionEstimatedTimeRemoved ActionKind = "ESTIMATED_TIME_AMOUNT_REMOVED"
	ActionFileUpload           ActionKind = "FILE_UPLOAD"
	ActionRemoveFile           ActionKind = "REMOVE_FILE"
	ActionAddComment           ActionKind = "ADD_COMMENT"
	ActionTimeTracked          ActionKind = "TIME_TRACKED"
	ActionCreateSubTask        ActionKind = "CREATE_SUB_TASK"
	ActionRemoveSubTask        ActionKind = "REMOVE_SUB_TASK"
	ActionDeleteTask           ActionKind = "DELETE_TASK"
	ActionMoveToBoard          ActionKind = "MOVE_TO_BOARD"
)

// TaskActionHistory is one append-only audit row. Payload holds the JSON
// encoding of the action-specific fields.
type TaskActionHistory struct {
	HistoryID  string     `firestore:"historyid"`
	TaskID     string     `firestore:"taskid"`
	ActorID    string     `firestore:"actorid,omitempty"`
	Action     ActionKind `firestore:"action"`
	Payload    string     `firestore:"payload,omitempty"`
	CommentID  string     `firestore:"commentid"`
	TrackingID string     `firestore:"trackingid,omitempty"`
	Seq        int        `firestore:"seq"`
	Deleted    bool       `firestore:"deleted"`
	CreatedAt  time.Time  `firestore:"createdat"`
}
