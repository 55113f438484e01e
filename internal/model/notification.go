package model

import "time"

// Notification kinds stored in the outbox.
const (
	NotifyCommentCreated = "comment_created"
	NotifyMemoryLiked    = "memory_liked"
	NotifyInviteAccepted = "invite_accepted"
	NotifyInviteCreated  = "invite_created"
)

// Outbox row statuses.
const (
	OutboxPending = "pending"
	OutboxDone    = "done"
)

// Notification is one email-notification outbox row. The notify bridge
// enqueues rows after consuming domain events off the bus; delivery is
// asynchronous and best-effort, handled by the notifier worker.
type Notification struct {
	ID            int64     `json:"id"`
	Kind          string    `json:"kind"`
	Recipient     string    `json:"recipient"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	Status        string    `json:"status"`
	AttemptCount  int       `json:"attemptCount"`
	NextAttemptAt time.Time `json:"nextAttemptAt"`
	CreationTime  time.Time `json:"creationTime"`
}
