package model

import "time"

// Subscriber is a notification identity: one employee on one delivery channel.
type Subscriber struct {
	SubscriberID string `firestore:"subscriberid"`
	EmployeeID   string `firestore:"employeeid"`
	Channel      string `firestore:"channel,omitempty"`
	Address      string `firestore:"address,omitempty"`
}

// TaskSubscriber registers a subscriber on a task. Immutable rows are created
// by the system and cannot be removed by users.
type TaskSubscriber struct {
	TaskSubscriberID string    `firestore:"tasksubscriberid"`
	TaskID           string    `firestore:"taskid"`
	SubscriberID     string    `firestore:"subscriberid"`
	EmployeeID       string    `firestore:"employeeid"`
	ProjectID        string    `firestore:"projectid"`
	Immutable        bool      `firestore:"immutable"`
	Deleted          bool      `firestore:"deleted"`
	CreatedAt        time.Time `firestore:"createdat,omitempty"`
	UpdatedAt        time.Time `firestore:"updatedat,omitempty"`
}
