package services

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"hrtracker/model"
	"hrtracker/repository"
)

// Membership resolves projects and their members.
type Membership interface {
	Project(ctx context.Context, projectID string) (*model.Project, error)
	// Member returns the employee's active membership in the project.
	Member(ctx context.Context, projectID, employeeID string) (*model.ProjectEmployee, error)
	// ProjectEmployees skips unknown ids.
	ProjectEmployees(ctx context.Context, ids []string) ([]model.ProjectEmployee, error)
	Employees(ctx context.Context, ids []string) ([]model.Employee, error)
}

// WorkingHours exposes the per-organisation cap on a task estimate.
type WorkingHours interface {
	DailyMinuteCap(ctx context.Context, organizationID string) (int, error)
}

type SubscriberResolver interface {
	SubscribersForEmployees(ctx context.Context, employeeIDs []string) ([]model.Subscriber, error)
}

// Files resolves attachment references. Resolve skips unknown ids.
type Files interface {
	Resolve(ctx context.Context, fileIDs []string) ([]model.FileRef, error)
	Delete(ctx context.Context, fileIDs []string) error
}

type noFiles struct{}

func (noFiles) Resolve(context.Context, []string) ([]model.FileRef, error) { return nil, nil }

func (noFiles) Delete(context.Context, []string) error { return nil }

// Notification tells the delivery side that a task changed.
type Notification struct {
	TaskID        string           `json:"taskId"`
	BoardID       string           `json:"boardId"`
	HistoryID     string           `json:"historyId"`
	Action        model.ActionKind `json:"action"`
	ActorID       string           `json:"actorId"`
	SubscriberIDs []string         `json:"subscriberIds"`
	At            time.Time        `json:"at"`
}

type Notifier interface {
	Publish(ctx context.Context, n Notification) error
}

// StateTemplate is one column cloned onto every new board.
type StateTemplate struct {
	Name string
}

var DefaultStateTemplate = []StateTemplate{{Name: "Open"}, {Name: "Closed"}}

const DefaultPageSize = 30

// Deps wires the engine to its store and collaborators. Notifier may be nil,
// in which case notifications are dropped. Without Files no attachment
// resolves.
type Deps struct {
	Store         repository.Store
	Members       Membership
	Hours         WorkingHours
	Subscribers   SubscriberResolver
	Files         Files
	Notifier      Notifier
	Logger        *log.Logger
	Clock         func() time.Time
	StateTemplate []StateTemplate
	PageSize      int
}

// core holds what every service shares: the collaborators and the
// transaction runner.
type core struct {
	Deps
}

func newCore(d Deps) core {
	if d.Logger == nil {
		d.Logger = log.StandardLogger()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if len(d.StateTemplate) < 2 {
		d.StateTemplate = DefaultStateTemplate
	}
	if d.PageSize <= 0 {
		d.PageSize = DefaultPageSize
	}
	if d.Files == nil {
		d.Files = noFiles{}
	}
	return core{Deps: d}
}

// run executes fn inside one store transaction. Side effects that must not be
// repeated on a retried transaction (notifications, blob deletion) run once,
// after a successful commit.
func (c core) run(ctx context.Context, actor string, fn func(u *unitOfWork) error) error {
	var committed *unitOfWork
	var notes []Notification
	err := c.Store.RunInTransaction(ctx, func(ctx context.Context, r repository.Reader) (*repository.Batch, error) {
		u := newUnitOfWork(ctx, r, actor, c.Clock().UTC())
		if err := fn(u); err != nil {
			return nil, err
		}
		if err := u.finish(); err != nil {
			return nil, err
		}
		n, err := u.notifications()
		if err != nil {
			return nil, err
		}
		committed, notes = u, n
		return u.batch(), nil
	})
	if err != nil {
		return err
	}
	c.afterCommit(ctx, committed, notes)
	return nil
}

func (c core) afterCommit(ctx context.Context, u *unitOfWork, notes []Notification) {
	if len(u.orphanedFiles) > 0 {
		if err := c.Files.Delete(ctx, u.orphanedFiles); err != nil {
			c.Logger.WithFields(log.Fields{"files": u.orphanedFiles, "actor": u.actor}).
				WithError(err).Warn("attachment cleanup failed")
		}
	}
	if c.Notifier == nil {
		return
	}
	for _, n := range notes {
		if len(n.SubscriberIDs) == 0 {
			continue
		}
		if err := c.Notifier.Publish(ctx, n); err != nil {
			c.Logger.WithFields(log.Fields{"task": n.TaskID, "action": n.Action}).
				WithError(err).Error("publish notification")
		}
	}
}

// authorize checks that actor is an active member of the project.
func (c core) authorize(ctx context.Context, projectID, actor string) error {
	if _, err := c.Members.Member(ctx, projectID, actor); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotMember
		}
		return err
	}
	return nil
}

// checkEstimate enforces the organisation's daily cap on an estimate.
func (c core) checkEstimate(ctx context.Context, projectID string, minutes *int) error {
	if minutes == nil {
		return nil
	}
	if *minutes < 0 {
		return invalidf("estimate must not be negative")
	}
	project, err := c.Members.Project(ctx, projectID)
	if err != nil {
		return lookup(err, "project", projectID)
	}
	limit, err := c.Hours.DailyMinuteCap(ctx, project.OrganizationID)
	if err != nil {
		return lookup(err, "organization", project.OrganizationID)
	}
	if limit > 0 && *minutes > limit {
		return ErrEstimateExceedsCap
	}
	return nil
}
