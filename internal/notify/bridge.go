package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/events"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store"
)

// Bridge consumes domain events and enqueues outbox rows for every board
// member except the actor. Delivery itself happens in the worker, so a slow
// mail relay never blocks a request.
type Bridge struct {
	store store.Store
	bus   *events.Bus
	log   zerolog.Logger
}

func NewBridge(s store.Store, bus *events.Bus, log zerolog.Logger) *Bridge {
	return &Bridge{store: s, bus: bus, log: log}
}

// Run drains the bus until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-b.bus.Subscribe():
			if err := b.handle(ctx, evt); err != nil {
				b.log.Error().Err(err).Str("kind", string(evt.Kind)).Msg("notify bridge")
			}
		}
	}
}

func (b *Bridge) handle(ctx context.Context, evt events.Event) error {
	subject, body, ok := render(evt)
	if !ok {
		return nil
	}
	recipients, err := b.recipients(ctx, evt)
	if err != nil {
		return err
	}
	for _, email := range recipients {
		n := &model.Notification{
			Kind:      string(evt.Kind),
			Recipient: email,
			Subject:   subject,
			Body:      body,
		}
		if err := b.store.Outbox().Enqueue(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// recipients returns the emails of every board member except the actor.
func (b *Bridge) recipients(ctx context.Context, evt events.Event) ([]string, error) {
	memberIDs, err := b.store.Boards().Members(ctx, evt.BoardID)
	if err != nil {
		return nil, err
	}
	var emails []string
	for _, id := range memberIDs {
		if id == evt.ActorID {
			continue
		}
		u, err := b.store.Users().Get(ctx, id)
		if err != nil {
			// A member row without a user record is stale; skip it.
			b.log.Warn().Str("userId", id).Msg("member without user record")
			continue
		}
		emails = append(emails, u.Email)
	}
	return emails, nil
}

func render(evt events.Event) (subject, body string, ok bool) {
	switch evt.Kind {
	case events.EventMemoryPublished:
		return "A new memory was added to your board",
			fmt.Sprintf("A new memory was published on board %s.", evt.BoardID), true
	case events.EventCommentCreated:
		return "New comment on a shared memory",
			fmt.Sprintf("Someone commented on a memory on board %s.", evt.BoardID), true
	case events.EventMemoryLiked:
		return "Someone liked a memory",
			fmt.Sprintf("A memory on board %s got a new like.", evt.BoardID), true
	case events.EventInviteCreated:
		return "You were invited to a board",
			fmt.Sprintf("You were invited to join board %s.", evt.BoardID), true
	case events.EventInviteAccepted:
		return "Your invite was accepted",
			fmt.Sprintf("An invite to board %s was accepted.", evt.BoardID), true
	default:
		return "", "", false
	}
}
