package dto

import (
	"time"

	"hrtracker/history"
	"hrtracker/model"
)

type StateView struct {
	StateID   string `json:"stateid"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	Immutable bool   `json:"immutable"`
}

func NewStateView(s model.State) StateView {
	return StateView{StateID: s.StateID, Name: s.Name, Order: s.Order, Immutable: s.Immutable}
}

type BoardView struct {
	BoardID   string            `json:"boardid"`
	ProjectID string            `json:"projectid"`
	Name      string            `json:"name"`
	OwnerID   string            `json:"ownerid"`
	Status    model.BoardStatus `json:"status"`
	States    []StateView       `json:"states"`
	CreatedAt time.Time         `json:"createdat"`
}

func NewBoardView(b model.Board, states []model.State) *BoardView {
	v := &BoardView{
		BoardID:   b.BoardID,
		ProjectID: b.ProjectID,
		Name:      b.Name,
		OwnerID:   b.OwnerID,
		Status:    b.Status,
		States:    make([]StateView, 0, len(states)),
		CreatedAt: b.CreatedAt,
	}
	for _, s := range states {
		v.States = append(v.States, NewStateView(s))
	}
	return v
}

type BoardSummary struct {
	BoardID string            `json:"boardid"`
	Name    string            `json:"name"`
	Status  model.BoardStatus `json:"status"`
}

type EmployeeSummary struct {
	EmployeeID string `json:"employeeid"`
	FullName   string `json:"fullname,omitempty"`
	Email      string `json:"email,omitempty"`
}

type AssigneeView struct {
	ProjectEmployeeID string          `json:"projectemployeeid"`
	Employee          EmployeeSummary `json:"employee"`
}

type FileView struct {
	FileID      string `json:"fileid"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contenttype,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

type TaskView struct {
	TaskID          string          `json:"taskid"`
	ParentID        string          `json:"parentid,omitempty"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Priority        model.Priority  `json:"priority"`
	Order           int             `json:"order"`
	Owner           EmployeeSummary `json:"owner"`
	State           StateView       `json:"state"`
	Board           BoardSummary    `json:"board"`
	StartDate       *time.Time      `json:"startdate,omitempty"`
	DueDate         *time.Time      `json:"duedate,omitempty"`
	EstimateMinutes *int            `json:"estimateminutes,omitempty"`
	Attachments     []FileView      `json:"attachments"`
	Assignees       []AssigneeView  `json:"assignees"`
	Subtasks        []TaskView      `json:"subtasks,omitempty"`
	CreatedAt       time.Time       `json:"createdat"`
	UpdatedAt       time.Time       `json:"updatedat"`
}

// TaskRefs holds the records a task view resolves its references against.
// Missing entries render as bare ids.
type TaskRefs struct {
	Board     model.Board
	States    map[string]model.State
	Employees map[string]model.Employee
	Members   map[string]model.ProjectEmployee
	Files     map[string]model.FileRef
}

func (r TaskRefs) employee(id string) EmployeeSummary {
	e, ok := r.Employees[id]
	if !ok {
		return EmployeeSummary{EmployeeID: id}
	}
	return EmployeeSummary{EmployeeID: e.EmployeeID, FullName: e.FullName, Email: e.Email}
}

func NewTaskView(t model.Task, refs TaskRefs) TaskView {
	v := TaskView{
		TaskID:          t.TaskID,
		ParentID:        t.ParentID,
		Title:           t.Title,
		Description:     t.Description,
		Priority:        t.Priority,
		Order:           t.Order,
		Owner:           refs.employee(t.OwnerID),
		Board:           BoardSummary{BoardID: refs.Board.BoardID, Name: refs.Board.Name, Status: refs.Board.Status},
		StartDate:       t.StartDate,
		DueDate:         t.DueDate,
		EstimateMinutes: t.EstimateMinutes,
		Attachments:     make([]FileView, 0, len(t.Attachments)),
		Assignees:       make([]AssigneeView, 0, len(t.Assignees)),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if v.Priority == "" {
		v.Priority = model.PriorityNone
	}
	if st, ok := refs.States[t.StateID]; ok {
		v.State = NewStateView(st)
	} else {
		v.State = StateView{StateID: t.StateID}
	}
	for _, id := range t.Attachments {
		f, ok := refs.Files[id]
		if !ok {
			v.Attachments = append(v.Attachments, FileView{FileID: id})
			continue
		}
		v.Attachments = append(v.Attachments, FileView{FileID: id, Name: f.Name, ContentType: f.ContentType, Size: f.Size})
	}
	for _, id := range t.Assignees {
		a := AssigneeView{ProjectEmployeeID: id}
		if pe, ok := refs.Members[id]; ok {
			a.Employee = refs.employee(pe.EmployeeID)
		}
		v.Assignees = append(v.Assignees, a)
	}
	return v
}

type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

type HistoryView struct {
	HistoryID  string           `json:"historyid"`
	TaskID     string           `json:"taskid"`
	ActorID    string           `json:"actorid"`
	Action     model.ActionKind `json:"action"`
	Payload    history.Action   `json:"payload"`
	CommentID  string           `json:"commentid,omitempty"`
	TrackingID string           `json:"trackingid,omitempty"`
	CreatedAt  time.Time        `json:"createdat"`
}

func NewHistoryView(row model.TaskActionHistory, a history.Action) HistoryView {
	return HistoryView{
		HistoryID:  row.HistoryID,
		TaskID:     row.TaskID,
		ActorID:    row.ActorID,
		Action:     row.Action,
		Payload:    a,
		CommentID:  row.CommentID,
		TrackingID: row.TrackingID,
		CreatedAt:  row.CreatedAt,
	}
}

type SubscriberView struct {
	TaskSubscriberID string `json:"tasksubscriberid"`
	SubscriberID     string `json:"subscriberid"`
	EmployeeID       string `json:"employeeid"`
	Immutable        bool   `json:"immutable"`
}

func NewSubscriberView(s model.TaskSubscriber) SubscriberView {
	return SubscriberView{
		TaskSubscriberID: s.TaskSubscriberID,
		SubscriberID:     s.SubscriberID,
		EmployeeID:       s.EmployeeID,
		Immutable:        s.Immutable,
	}
}
