package events

import "github.com/rs/zerolog/log"

// EventKind represents the type of domain event produced by the service
// layer. The notifier consumes these to enqueue outbox rows.
type EventKind string

const (
	EventMemoryPublished EventKind = "memory_published"
	EventCommentCreated  EventKind = "comment_created"
	EventMemoryLiked     EventKind = "memory_liked"
	EventInviteCreated   EventKind = "invite_created"
	EventInviteAccepted  EventKind = "invite_accepted"
)

// Event carries the minimum identifiers a consumer needs; full records can
// be re-read from the store.
type Event struct {
	Kind     EventKind
	ActorID  string
	BoardID  string
	MemoryID string
}

// Bus is a lightweight in-process pub-sub implementation backed by a
// buffered channel. Publish never blocks; events are dropped when the
// buffer is full.
type Bus struct {
	ch chan Event
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan Event, buffer)}
}

// Publish attempts to enqueue the event without blocking.
// Returns true if published, false if the buffer is full. Drops are logged:
// a dropped event means a notification that will never be sent.
func (b *Bus) Publish(evt Event) bool {
	select {
	case b.ch <- evt:
		return true
	default:
		log.Warn().
			Str("kind", string(evt.Kind)).
			Str("board_id", evt.BoardID).
			Str("memory_id", evt.MemoryID).
			Msg("event bus full; event dropped")
		return false
	}
}

// Subscribe returns a read-only channel for consumers.
func (b *Bus) Subscribe() <-chan Event {
	return b.ch
}
