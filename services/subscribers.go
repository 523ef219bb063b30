package services

import (
	"context"

	"github.com/google/uuid"

	"hrtracker/dto"
	"hrtracker/model"
)

// subscribeEmployees registers every subscriber identity of the given
// employees on t.
func (c core) subscribeEmployees(u *unitOfWork, t model.Task, employeeIDs []string, immutable bool) error {
	ids := distinct(employeeIDs)
	if len(ids) == 0 {
		return nil
	}
	subs, err := c.Subscribers.SubscribersForEmployees(u.ctx, ids)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if err := u.subscribe(t, sub, immutable); err != nil {
			return err
		}
	}
	return nil
}

// subscribe is idempotent per (subscriber, task): an active row is kept, a
// soft-deleted row is reactivated, and only a missing row is inserted. An
// existing row can be upgraded to immutable but never downgraded.
func (u *unitOfWork) subscribe(t model.Task, sub model.Subscriber, immutable bool) error {
	rows, err := u.subscriptions(t.TaskID)
	if err != nil {
		return err
	}
	var dormant *model.TaskSubscriber
	for i := range rows {
		row := rows[i]
		if row.SubscriberID != sub.SubscriberID {
			continue
		}
		if !row.Deleted {
			if immutable && !row.Immutable {
				row.Immutable = true
				u.putSubscription(row)
			}
			return nil
		}
		if dormant == nil {
			dormant = &row
		}
	}
	if dormant != nil {
		dormant.Deleted = false
		dormant.Immutable = immutable
		delete(u.released, dormant.TaskSubscriberID)
		u.putSubscription(*dormant)
		return nil
	}
	u.putSubscription(model.TaskSubscriber{
		TaskSubscriberID: uuid.NewString(),
		TaskID:           t.TaskID,
		SubscriberID:     sub.SubscriberID,
		EmployeeID:       sub.EmployeeID,
		ProjectID:        t.ProjectID,
		Immutable:        immutable,
		CreatedAt:        u.now,
	})
	return nil
}

// unsubscribeEmployees soft-deletes the mutable rows of the given employees on
// one task. Immutable rows stay.
func (u *unitOfWork) unsubscribeEmployees(taskID string, employeeIDs []string) error {
	if len(employeeIDs) == 0 {
		return nil
	}
	set := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		set[id] = true
	}
	rows, err := u.subscriptions(taskID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.Deleted || row.Immutable || !set[row.EmployeeID] {
			continue
		}
		u.releaseSubscription(row)
	}
	return nil
}

// releaseAll soft-deletes every active row of a task, immutable or not.
func (u *unitOfWork) releaseAll(taskID string) error {
	rows, err := u.subscriptions(taskID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if !row.Deleted {
			u.releaseSubscription(row)
		}
	}
	return nil
}

// SubscriberService exposes the explicit subscription operations.
type SubscriberService struct {
	core
}

func NewSubscriberService(d Deps) *SubscriberService {
	return &SubscriberService{core: newCore(d)}
}

// List returns the task's active subscriptions.
func (s *SubscriberService) List(ctx context.Context, actor, taskID string) ([]dto.SubscriberView, error) {
	t, err := s.Store.Task(ctx, taskID)
	if err != nil {
		return nil, lookup(err, "task", taskID)
	}
	if t.Deleted {
		return nil, notFound("task", taskID)
	}
	if err := s.authorize(ctx, t.ProjectID, actor); err != nil {
		return nil, err
	}
	rows, err := s.Store.SubscriptionsByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	out := []dto.SubscriberView{}
	for _, row := range rows {
		if !row.Deleted {
			out = append(out, dto.NewSubscriberView(row))
		}
	}
	return out, nil
}

// Subscribe opts actor in to a task with a removable subscription.
func (s *SubscriberService) Subscribe(ctx context.Context, actor, taskID string) ([]dto.SubscriberView, error) {
	err := s.run(ctx, actor, func(u *unitOfWork) error {
		t, err := u.task(taskID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, t.ProjectID, actor); err != nil {
			return err
		}
		subs, err := s.Subscribers.SubscribersForEmployees(ctx, []string{actor})
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			return invalidf("employee %s has no subscriber identity", actor)
		}
		for _, sub := range subs {
			if err := u.subscribe(t, sub, false); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.List(ctx, actor, taskID)
}

// Unsubscribe removes actor's opt-in subscriptions from a task. A system
// created subscription cannot be removed.
func (s *SubscriberService) Unsubscribe(ctx context.Context, actor, taskID string) error {
	return s.run(ctx, actor, func(u *unitOfWork) error {
		t, err := u.task(taskID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, t.ProjectID, actor); err != nil {
			return err
		}
		rows, err := u.subscriptions(taskID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if !row.Deleted && row.EmployeeID == actor && row.Immutable {
				return ErrImmutableSubscription
			}
		}
		return u.unsubscribeEmployees(taskID, []string{actor})
	})
}

// RemoveMember drops an employee's mutable subscriptions on every task of the
// project, as when the employee leaves it. It returns how many rows were
// released.
func (s *SubscriberService) RemoveMember(ctx context.Context, actor, projectID, employeeID string) (int, error) {
	if _, err := s.Members.Project(ctx, projectID); err != nil {
		return 0, lookup(err, "project", projectID)
	}
	if err := s.authorize(ctx, projectID, actor); err != nil {
		return 0, err
	}
	released := 0
	err := s.run(ctx, actor, func(u *unitOfWork) error {
		released = 0
		rows, err := u.r.SubscriptionsByEmployee(u.ctx, projectID, employeeID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.Deleted || row.Immutable {
				continue
			}
			u.releaseSubscription(row)
			released++
		}
		return nil
	})
	return released, err
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
