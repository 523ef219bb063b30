package repository

import (
	"context"
	"fmt"
	"sync"

	"hrtracker/model"
)

// MemoryDirectory serves project, employee, subscriber, working-hours and
// file lookups from maps. It backs tests and the memory store backend.
type MemoryDirectory struct {
	mu            sync.RWMutex
	projects      map[string]model.Project
	organizations map[string]model.Organization
	employees     map[string]model.Employee
	members       map[string]model.ProjectEmployee
	subscribers   map[string][]model.Subscriber
	files         map[string]model.FileRef
	deleted       []string

	// DeleteErr, when set, is returned by Delete after recording the ids.
	DeleteErr error
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		projects:      map[string]model.Project{},
		organizations: map[string]model.Organization{},
		employees:     map[string]model.Employee{},
		members:       map[string]model.ProjectEmployee{},
		subscribers:   map[string][]model.Subscriber{},
		files:         map[string]model.FileRef{},
	}
}

func (d *MemoryDirectory) AddOrganization(o model.Organization) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.organizations[o.OrganizationID] = o
}

func (d *MemoryDirectory) AddProject(p model.Project) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.projects[p.ProjectID] = p
}

func (d *MemoryDirectory) AddEmployee(e model.Employee) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.employees[e.EmployeeID] = e
}

func (d *MemoryDirectory) AddMember(pe model.ProjectEmployee) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members[pe.ProjectEmployeeID] = pe
}

func (d *MemoryDirectory) AddSubscriber(s model.Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[s.EmployeeID] = append(d.subscribers[s.EmployeeID], s)
}

func (d *MemoryDirectory) AddFile(f model.FileRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[f.FileID] = f
}

// DeletedFiles lists every file id passed to Delete, in call order.
func (d *MemoryDirectory) DeletedFiles() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.deleted...)
}

func (d *MemoryDirectory) Project(_ context.Context, projectID string) (*model.Project, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return &p, nil
}

func (d *MemoryDirectory) Member(_ context.Context, projectID, employeeID string) (*model.ProjectEmployee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, pe := range d.members {
		if pe.ProjectID == projectID && pe.EmployeeID == employeeID && pe.Active {
			return &pe, nil
		}
	}
	return nil, fmt.Errorf("member %s of project %s: %w", employeeID, projectID, ErrNotFound)
}

func (d *MemoryDirectory) ProjectEmployees(_ context.Context, ids []string) ([]model.ProjectEmployee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []model.ProjectEmployee
	for _, id := range ids {
		if pe, ok := d.members[id]; ok {
			out = append(out, pe)
		}
	}
	return out, nil
}

func (d *MemoryDirectory) Employees(_ context.Context, ids []string) ([]model.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []model.Employee
	for _, id := range ids {
		if e, ok := d.employees[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (d *MemoryDirectory) DailyMinuteCap(_ context.Context, organizationID string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	o, ok := d.organizations[organizationID]
	if !ok {
		return 0, fmt.Errorf("organization %s: %w", organizationID, ErrNotFound)
	}
	return o.DailyMinuteCap, nil
}

func (d *MemoryDirectory) SubscribersForEmployees(_ context.Context, employeeIDs []string) ([]model.Subscriber, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []model.Subscriber
	for _, id := range employeeIDs {
		out = append(out, d.subscribers[id]...)
	}
	return out, nil
}

func (d *MemoryDirectory) Resolve(_ context.Context, fileIDs []string) ([]model.FileRef, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []model.FileRef
	for _, id := range fileIDs {
		if f, ok := d.files[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (d *MemoryDirectory) Delete(_ context.Context, fileIDs []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, fileIDs...)
	if d.DeleteErr != nil {
		return d.DeleteErr
	}
	for _, id := range fileIDs {
		delete(d.files, id)
	}
	return nil
}
