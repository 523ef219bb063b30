package dto

import (
	"time"

	"hrtracker/model"
)

type CreateTaskRequest struct {
	StateID         string         `json:"stateid" binding:"required_without=ParentID"`
	ParentID        string         `json:"parentid"`
	Title           string         `json:"title" binding:"required,max=255"`
	Description     string         `json:"description"`
	Priority        model.Priority `json:"priority" binding:"omitempty,priority"`
	StartDate       *time.Time     `json:"startdate"`
	DueDate         *time.Time     `json:"duedate"`
	EstimateMinutes *int           `json:"estimateminutes" binding:"omitempty,min=0"`
	Attachments     []string       `json:"attachments"`
	Assignees       []string       `json:"assignees"`
}

// EditTaskRequest only touches the fields present in the body. Dates and the
// estimate can be cleared with an explicit null.
type EditTaskRequest struct {
	Title           *string             `json:"title" binding:"omitempty,min=1,max=255"`
	Description     *string             `json:"description"`
	Priority        *model.Priority     `json:"priority" binding:"omitempty,priority"`
	StartDate       Nullable[time.Time] `json:"startdate"`
	DueDate         Nullable[time.Time] `json:"duedate"`
	EstimateMinutes Nullable[int]       `json:"estimateminutes"`
	Attachments     *[]string           `json:"attachments"`
	Assignees       *[]string           `json:"assignees"`
}

type ChangeStateRequest struct {
	StateID string `json:"stateid" binding:"required"`
	Order   int    `json:"order" binding:"required,min=1"`
}

type ReorderRequest struct {
	Order int `json:"order" binding:"required,min=1"`
}

type MoveToBoardRequest struct {
	BoardID string `json:"boardid" binding:"required"`
}

type DeleteTasksRequest struct {
	TaskIDs []string `json:"taskids" binding:"required,min=1"`
	Subtask bool     `json:"subtask"`
}

type CommentRequest struct {
	CommentID string `json:"commentid" binding:"required"`
}

type TimeTrackRequest struct {
	TrackingID string `json:"trackingid" binding:"required"`
	Minutes    int    `json:"minutes" binding:"required,min=1"`
}

type PageQuery struct {
	Page int `form:"page" binding:"omitempty,min=1"`
	Size int `form:"size" binding:"omitempty,min=1,max=100"`
}
