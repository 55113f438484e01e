package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusPublishSubscribe(t *testing.T) {
	b := NewBus(2)

	assert.True(t, b.Publish(Event{Kind: EventCommentCreated, MemoryID: "m1"}))
	assert.True(t, b.Publish(Event{Kind: EventMemoryLiked, MemoryID: "m2"}))

	got := <-b.Subscribe()
	assert.Equal(t, EventCommentCreated, got.Kind)
	assert.Equal(t, "m1", got.MemoryID)
}

func TestBusDropsWhenFull(t *testing.T) {
	b := NewBus(1)

	assert.True(t, b.Publish(Event{Kind: EventInviteCreated}))
	assert.False(t, b.Publish(Event{Kind: EventInviteCreated}), "full buffer must not block")
}
