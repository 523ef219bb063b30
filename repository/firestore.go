package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"hrtracker/model"
)

const (
	BoardsCollection        = "Boards"
	StatesCollection        = "States"
	TasksCollection         = "Tasks"
	HistoryCollection       = "TaskActionHistory"
	SubscriptionsCollection = "TaskSubscribers"
)

// FirestoreStore keeps one collection per entity and commits batches inside
// a Firestore transaction. Firestore requires every read of a transaction to
// precede its writes; TxFunc returning the batch guarantees that ordering.
type FirestoreStore struct {
	firestoreReader
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{firestoreReader: firestoreReader{client: client}, client: client}
}

func (s *FirestoreStore) RunInTransaction(ctx context.Context, fn TxFunc) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		batch, err := fn(ctx, firestoreReader{client: s.client, tx: tx})
		if err != nil {
			return err
		}
		if batch.Empty() {
			return nil
		}
		return s.write(tx, batch)
	})
}

func (s *FirestoreStore) write(tx *firestore.Transaction, batch *Batch) error {
	set := func(collection, id string, data interface{}) error {
		if err := tx.Set(s.client.Collection(collection).Doc(id), data); err != nil {
			return fmt.Errorf("write %s/%s: %w", collection, id, err)
		}
		return nil
	}
	for _, b := range batch.Boards {
		if err := set(BoardsCollection, b.BoardID, b); err != nil {
			return err
		}
	}
	for _, st := range batch.States {
		if err := set(StatesCollection, st.StateID, st); err != nil {
			return err
		}
	}
	for _, t := range batch.Tasks {
		if err := set(TasksCollection, t.TaskID, t); err != nil {
			return err
		}
	}
	for _, h := range batch.History {
		if err := set(HistoryCollection, h.HistoryID, h); err != nil {
			return err
		}
	}
	for _, sub := range batch.Subscriptions {
		if err := set(SubscriptionsCollection, sub.TaskSubscriberID, sub); err != nil {
			return err
		}
	}
	return nil
}

// firestoreReader reads through tx when set, otherwise directly.
type firestoreReader struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (r firestoreReader) get(ctx context.Context, ref *firestore.DocumentRef) (*firestore.DocumentSnapshot, error) {
	if r.tx != nil {
		return r.tx.Get(ref)
	}
	return ref.Get(ctx)
}

func (r firestoreReader) documents(ctx context.Context, q firestore.Query) *firestore.DocumentIterator {
	if r.tx != nil {
		return r.tx.Documents(q)
	}
	return q.Documents(ctx)
}

func getDoc[T any](ctx context.Context, r firestoreReader, collection, id string) (*T, error) {
	snap, err := r.get(ctx, r.client.Collection(collection).Doc(id))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return nil, err
	}
	var v T
	if err := snap.DataTo(&v); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return &v, nil
}

func queryDocs[T any](ctx context.Context, r firestoreReader, q firestore.Query, keep func(T) bool) ([]T, error) {
	iter := r.documents(ctx, q)
	defer iter.Stop()
	var out []T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Ref.Path, err)
		}
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r firestoreReader) where(collection, field string, value interface{}) firestore.Query {
	return r.client.Collection(collection).Where(field, "==", value)
}

func (r firestoreReader) Board(ctx context.Context, id string) (*model.Board, error) {
	return getDoc[model.Board](ctx, r, BoardsCollection, id)
}

func (r firestoreReader) BoardsByProject(ctx context.Context, projectID string) ([]model.Board, error) {
	return queryDocs[model.Board](ctx, r, r.where(BoardsCollection, "projectid", projectID), nil)
}

func (r firestoreReader) State(ctx context.Context, id string) (*model.State, error) {
	return getDoc[model.State](ctx, r, StatesCollection, id)
}

func (r firestoreReader) StatesByBoard(ctx context.Context, boardID string) ([]model.State, error) {
	states, err := queryDocs(ctx, r, r.where(StatesCollection, "boardid", boardID), activeState)
	if err != nil {
		return nil, err
	}
	sortStates(states)
	return states, nil
}

func (r firestoreReader) Task(ctx context.Context, id string) (*model.Task, error) {
	return getDoc[model.Task](ctx, r, TasksCollection, id)
}

func (r firestoreReader) tasks(ctx context.Context, field, value string) ([]model.Task, error) {
	tasks, err := queryDocs(ctx, r, r.where(TasksCollection, field, value), activeTask)
	if err != nil {
		return nil, err
	}
	sortTasks(tasks)
	return tasks, nil
}

func (r firestoreReader) TasksByState(ctx context.Context, stateID string) ([]model.Task, error) {
	return r.tasks(ctx, "stateid", stateID)
}

func (r firestoreReader) TasksByBoard(ctx context.Context, boardID string) ([]model.Task, error) {
	return r.tasks(ctx, "boardid", boardID)
}

func (r firestoreReader) Subtasks(ctx context.Context, parentID string) ([]model.Task, error) {
	return r.tasks(ctx, "parentid", parentID)
}

func (r firestoreReader) history(ctx context.Context, field, value string) ([]model.TaskActionHistory, error) {
	rows, err := queryDocs(ctx, r, r.where(HistoryCollection, field, value), activeHistory)
	if err != nil {
		return nil, err
	}
	sortHistory(rows)
	return rows, nil
}

func (r firestoreReader) HistoryByTask(ctx context.Context, taskID string) ([]model.TaskActionHistory, error) {
	return r.history(ctx, "taskid", taskID)
}

func (r firestoreReader) HistoryByComment(ctx context.Context, commentID string) ([]model.TaskActionHistory, error) {
	return r.history(ctx, "commentid", commentID)
}

func (r firestoreReader) SubscriptionsByTask(ctx context.Context, taskID string) ([]model.TaskSubscriber, error) {
	subs, err := queryDocs[model.TaskSubscriber](ctx, r, r.where(SubscriptionsCollection, "taskid", taskID), nil)
	if err != nil {
		return nil, err
	}
	sortSubscriptions(subs)
	return subs, nil
}

func (r firestoreReader) SubscriptionsByEmployee(ctx context.Context, projectID, employeeID string) ([]model.TaskSubscriber, error) {
	q := r.where(SubscriptionsCollection, "projectid", projectID).Where("employeeid", "==", employeeID)
	subs, err := queryDocs[model.TaskSubscriber](ctx, r, q, nil)
	if err != nil {
		return nil, err
	}
	sortSubscriptions(subs)
	return subs, nil
}

func activeState(st model.State) bool { return !st.Deleted }

func activeTask(t model.Task) bool { return !t.Deleted }

func activeHistory(h model.TaskActionHistory) bool { return !h.Deleted }
