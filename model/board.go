package model

import "time"

type BoardStatus string

const (
	BoardActive   BoardStatus = "ACTIVE"
	BoardArchived BoardStatus = "ARCHIVED"
)

type Board struct {
	BoardID   string      `firestore:"boardid"`
	ProjectID string      `firestore:"projectid"`
	Name      string      `firestore:"name,omitempty"`
	OwnerID   string      `firestore:"ownerid,omitempty"`
	Status    BoardStatus `firestore:"status,omitempty"`
	Revision  int64       `firestore:"revision"`
	CreatedAt time.Time   `firestore:"createdat,omitempty"`
	UpdatedAt time.Time   `firestore:"updatedat,omitempty"`
}

func (b Board) Archived() bool {
	return b.Status == BoardArchived
}

// State is one column of a board. Orders within a board are dense 1..N and
// the first and last columns are immutable.
type State struct {
	StateID   string    `firestore:"stateid"`
	BoardID   string    `firestore:"boardid"`
	Name      string    `firestore:"name,omitempty"`
	Order     int       `firestore:"order"`
	Immutable bool      `firestore:"immutable"`
	Revision  int64     `firestore:"revision"`
	Deleted   bool      `firestore:"deleted"`
	CreatedAt time.Time `firestore:"createdat,omitempty"`
	UpdatedAt time.Time `firestore:"updatedat,omitempty"`
}
