package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"hrtracker/model"
)

const (
	ProjectsCollection         = "Projects"
	OrganizationsCollection    = "Organizations"
	EmployeesCollection        = "Employees"
	ProjectEmployeesCollection = "ProjectEmployees"
	SubscribersCollection      = "Subscribers"
)

// Firestore caps the value list of an "in" filter.
const maxInValues = 30

// FirestoreDirectory reads the records owned by the HR side of the system:
// projects, memberships, employees, organisations and subscriber identities.
type FirestoreDirectory struct {
	reader firestoreReader
}

func NewFirestoreDirectory(client *firestore.Client) *FirestoreDirectory {
	return &FirestoreDirectory{reader: firestoreReader{client: client}}
}

func (d *FirestoreDirectory) Project(ctx context.Context, projectID string) (*model.Project, error) {
	return getDoc[model.Project](ctx, d.reader, ProjectsCollection, projectID)
}

func (d *FirestoreDirectory) Member(ctx context.Context, projectID, employeeID string) (*model.ProjectEmployee, error) {
	q := d.reader.where(ProjectEmployeesCollection, "projectid", projectID).
		Where("employeeid", "==", employeeID).
		Where("active", "==", true).
		Limit(1)
	members, err := queryDocs[model.ProjectEmployee](ctx, d.reader, q, nil)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("member %s of project %s: %w", employeeID, projectID, ErrNotFound)
	}
	return &members[0], nil
}

func (d *FirestoreDirectory) ProjectEmployees(ctx context.Context, ids []string) ([]model.ProjectEmployee, error) {
	return getAll[model.ProjectEmployee](ctx, d.reader.client, ProjectEmployeesCollection, ids)
}

func (d *FirestoreDirectory) Employees(ctx context.Context, ids []string) ([]model.Employee, error) {
	return getAll[model.Employee](ctx, d.reader.client, EmployeesCollection, ids)
}

func (d *FirestoreDirectory) DailyMinuteCap(ctx context.Context, organizationID string) (int, error) {
	org, err := getDoc[model.Organization](ctx, d.reader, OrganizationsCollection, organizationID)
	if err != nil {
		return 0, err
	}
	return org.DailyMinuteCap, nil
}

func (d *FirestoreDirectory) SubscribersForEmployees(ctx context.Context, employeeIDs []string) ([]model.Subscriber, error) {
	var out []model.Subscriber
	for start := 0; start < len(employeeIDs); start += maxInValues {
		end := min(start+maxInValues, len(employeeIDs))
		q := d.reader.client.Collection(SubscribersCollection).Where("employeeid", "in", employeeIDs[start:end])
		subs, err := queryDocs[model.Subscriber](ctx, d.reader, q, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, subs...)
	}
	return out, nil
}

// getAll fetches documents by id, skipping the ones that do not exist.
func getAll[T any](ctx context.Context, client *firestore.Client, collection string, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	refs := make([]*firestore.DocumentRef, len(ids))
	for i, id := range ids {
		refs[i] = client.Collection(collection).Doc(id)
	}
	snaps, err := client.GetAll(ctx, refs)
	if err != nil {
		return nil, err
	}
	var out []T
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		var v T
		if err := snap.DataTo(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.Path, err)
		}
		out = append(out, v)
	}
	return out, nil
}
