package model

import (
	"slices"
	"time"
)

type Priority string

const (
	PriorityNone   Priority = "NONE"
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

var Priorities = []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	return slices.Contains(Priorities, p)
}

// Task is a root task when ParentID is empty, otherwise a subtask. Root tasks
// are ordered within their state, subtasks within their parent.
type Task struct {
	TaskID          string     `firestore:"taskid"`
	BoardID         string     `firestore:"boardid"`
	ProjectID       string     `firestore:"projectid"`
	StateID         string     `firestore:"stateid"`
	ParentID        string     `firestore:"parentid"`
	Title           string     `firestore:"title,omitempty"`
	Description     string     `firestore:"description,omitempty"`
	Priority        Priority   `firestore:"priority,omitempty"`
	Order           int        `firestore:"order"`
	OwnerID         string     `firestore:"ownerid,omitempty"`
	StartDate       *time.Time `firestore:"startdate,omitempty"`
	DueDate         *time.Time `firestore:"duedate,omitempty"`
	EstimateMinutes *int       `firestore:"estimateminutes,omitempty"`
	Attachments     []string   `firestore:"attachments,omitempty"`
	Assignees       []string   `firestore:"assignees,omitempty"`
	Revision        int64      `firestore:"revision"`
	Deleted         bool       `firestore:"deleted"`
	CreatedAt       time.Time  `firestore:"createdat,omitempty"`
	UpdatedAt       time.Time  `firestore:"updatedat,omitempty"`
	DeletedAt       *time.Time `firestore:"deletedat,omitempty"`
}

func (t Task) IsSubtask() bool {
	return t.ParentID != ""
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	c := t
	c.Attachments = slices.Clone(t.Attachments)
	c.Assignees = slices.Clone(t.Assignees)
	if t.StartDate != nil {
		v := *t.StartDate
		c.StartDate = &v
	}
	if t.DueDate != nil {
		v := *t.DueDate
		c.DueDate = &v
	}
	if t.EstimateMinutes != nil {
		v := *t.EstimateMinutes
		c.EstimateMinutes = &v
	}
	if t.DeletedAt != nil {
		v := *t.DeletedAt
		c.DeletedAt = &v
	}
	return c
}
