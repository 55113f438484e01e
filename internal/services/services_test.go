package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/events"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/moderation"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store/memstore"
)

type fixture struct {
	store    store.Store
	bus      *events.Bus
	boards   *BoardService
	memories *MemoryService
	drafts   *DraftService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	bus := events.NewBus(16)
	return &fixture{
		store:    s,
		bus:      bus,
		boards:   NewBoardService(s, bus),
		memories: NewMemoryService(s, moderation.New(zerolog.Nop()), bus),
		drafts:   NewDraftService(s),
	}
}

func (f *fixture) seedUser(t *testing.T, userID string) {
	t.Helper()
	_, err := f.store.Users().Create(context.Background(), &model.User{UserID: userID, Email: userID + "@example.test"})
	require.NoError(t, err)
}

func (f *fixture) drainEvent(t *testing.T) events.Event {
	t.Helper()
	select {
	case evt := <-f.bus.Subscribe():
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event published")
		return events.Event{}
	}
}

func TestBoardLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	f.seedUser(t, "friend")

	b, err := f.boards.Create(ctx, "owner", "our year")
	require.NoError(t, err)
	assert.NotEmpty(t, b.ShareCode)

	_, err = f.boards.Create(ctx, "owner", "")
	assert.ErrorIs(t, err, model.ErrValidation)

	// Non-members cannot read the board.
	_, err = f.boards.Get(ctx, "friend", b.BoardID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	joined, err := f.boards.Join(ctx, "friend", b.ShareCode)
	require.NoError(t, err)
	assert.Equal(t, b.BoardID, joined.BoardID)

	got, err := f.boards.Get(ctx, "friend", b.BoardID)
	require.NoError(t, err)
	assert.Equal(t, "our year", got.Name)

	// Only the owner can rename or delete.
	assert.ErrorIs(t, f.boards.Rename(ctx, "friend", b.BoardID, "nope"), model.ErrForbidden)
	require.NoError(t, f.boards.Rename(ctx, "owner", b.BoardID, "our decade"))
	assert.ErrorIs(t, f.boards.Delete(ctx, "friend", b.BoardID), model.ErrForbidden)
	require.NoError(t, f.boards.Delete(ctx, "owner", b.BoardID))
}

func TestBoardInviteFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	f.seedUser(t, "friend")

	b, err := f.boards.Create(ctx, "owner", "trip")
	require.NoError(t, err)

	_, err = f.boards.Invite(ctx, "stranger", b.BoardID, "friend@example.test")
	assert.ErrorIs(t, err, model.ErrForbidden)

	inv, err := f.boards.Invite(ctx, "owner", b.BoardID, "friend@example.test")
	require.NoError(t, err)
	assert.Equal(t, events.EventInviteCreated, f.drainEvent(t).Kind)

	acc, err := f.boards.AcceptInvite(ctx, "friend", inv.InviteID)
	require.NoError(t, err)
	require.NotNil(t, acc.AcceptedBy)
	assert.Equal(t, "friend", *acc.AcceptedBy)
	assert.Equal(t, events.EventInviteAccepted, f.drainEvent(t).Kind)

	// Accepting twice is a conflict.
	_, err = f.boards.AcceptInvite(ctx, "friend", inv.InviteID)
	assert.ErrorIs(t, err, model.ErrConflict)

	members, err := f.boards.Members(ctx, b.BoardID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestMemoryCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	b, err := f.boards.Create(ctx, "owner", "trip")
	require.NoError(t, err)

	cases := []struct {
		name string
		m    model.Memory
	}{
		{"unknown type", model.Memory{BoardID: b.BoardID, AuthorID: "owner", MemoryType: "gif"}},
		{"note without caption", model.Memory{BoardID: b.BoardID, AuthorID: "owner", MemoryType: model.MemoryTypeNote}},
		{"photo without media", model.Memory{BoardID: b.BoardID, AuthorID: "owner", MemoryType: model.MemoryTypePhoto}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := tc.m
			_, err := f.memories.Create(ctx, &m)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}

	// Non-member cannot post.
	cap := "hi"
	_, err = f.memories.Create(ctx, &model.Memory{BoardID: b.BoardID, AuthorID: "stranger", MemoryType: model.MemoryTypeNote, Caption: &cap})
	assert.ErrorIs(t, err, model.ErrForbidden)

	// Moderation rejects hard matches.
	bad := "buy viagra now"
	_, err = f.memories.Create(ctx, &model.Memory{BoardID: b.BoardID, AuthorID: "owner", MemoryType: model.MemoryTypeNote, Caption: &bad})
	assert.ErrorIs(t, err, model.ErrValidation)

	good := "first sunset together"
	m, err := f.memories.Create(ctx, &model.Memory{BoardID: b.BoardID, AuthorID: "owner", MemoryType: model.MemoryTypeNote, Caption: &good})
	require.NoError(t, err)
	assert.Equal(t, events.EventMemoryPublished, f.drainEvent(t).Kind)
	assert.NotEmpty(t, m.MemoryID)
}

func TestMemoryLikeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	b, _ := f.boards.Create(ctx, "owner", "trip")
	cap := "note"
	m, err := f.memories.Create(ctx, &model.Memory{BoardID: b.BoardID, AuthorID: "owner", MemoryType: model.MemoryTypeNote, Caption: &cap})
	require.NoError(t, err)
	f.drainEvent(t) // memory_published

	require.NoError(t, f.memories.Like(ctx, "owner", m.MemoryID))
	assert.Equal(t, events.EventMemoryLiked, f.drainEvent(t).Kind)

	// Second like: no new event, count stays at one.
	require.NoError(t, f.memories.Like(ctx, "owner", m.MemoryID))
	select {
	case evt := <-f.bus.Subscribe():
		t.Fatalf("unexpected event on re-like: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}

	got, err := f.memories.Get(ctx, "owner", m.MemoryID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)

	require.NoError(t, f.memories.Unlike(ctx, "owner", m.MemoryID))
	got, err = f.memories.Get(ctx, "owner", m.MemoryID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikeCount)
}

func TestMemoryDeletePermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	f.seedUser(t, "friend")
	b, _ := f.boards.Create(ctx, "owner", "trip")
	_, err := f.boards.Join(ctx, "friend", b.ShareCode)
	require.NoError(t, err)

	cap := "friend's note"
	m, err := f.memories.Create(ctx, &model.Memory{BoardID: b.BoardID, AuthorID: "friend", MemoryType: model.MemoryTypeNote, Caption: &cap})
	require.NoError(t, err)
	f.drainEvent(t)

	f.seedUser(t, "other")
	_, err = f.boards.Join(ctx, "other", b.ShareCode)
	require.NoError(t, err)
	assert.ErrorIs(t, f.memories.Delete(ctx, "other", m.MemoryID), model.ErrForbidden)

	// Board owner may delete another member's memory.
	require.NoError(t, f.memories.Delete(ctx, "owner", m.MemoryID))
	_, err = f.memories.Get(ctx, "owner", m.MemoryID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCommentsThreadAndModeration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	b, _ := f.boards.Create(ctx, "owner", "trip")
	cap := "note"
	m, err := f.memories.Create(ctx, &model.Memory{BoardID: b.BoardID, AuthorID: "owner", MemoryType: model.MemoryTypeNote, Caption: &cap})
	require.NoError(t, err)
	f.drainEvent(t)

	_, err = f.memories.AddComment(ctx, &model.Comment{MemoryID: m.MemoryID, AuthorID: "owner", Body: ""})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.memories.AddComment(ctx, &model.Comment{MemoryID: m.MemoryID, AuthorID: "owner", Body: "free crypto inside"})
	assert.ErrorIs(t, err, model.ErrValidation)

	c, err := f.memories.AddComment(ctx, &model.Comment{MemoryID: m.MemoryID, AuthorID: "owner", Body: "love this"})
	require.NoError(t, err)
	assert.Equal(t, events.EventCommentCreated, f.drainEvent(t).Kind)

	reply, err := f.memories.AddComment(ctx, &model.Comment{MemoryID: m.MemoryID, AuthorID: "owner", ParentID: &c.CommentID, Body: "me too"})
	require.NoError(t, err)
	f.drainEvent(t)
	require.NotNil(t, reply.ParentID)

	lst, err := f.memories.ListComments(ctx, "owner", m.MemoryID)
	require.NoError(t, err)
	assert.Len(t, lst, 2)
}

func TestDraftUpsertValidationAndLWW(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "u1")
	b, _ := f.boards.Create(ctx, "u1", "trip")

	_, err := f.drafts.Upsert(ctx, "u1", &model.Draft{BoardID: b.BoardID, MemoryType: model.MemoryTypeNote})
	assert.ErrorIs(t, err, model.ErrValidation, "missing draftId")

	_, err = f.drafts.Upsert(ctx, "u1", &model.Draft{DraftID: "d1", MemoryType: model.MemoryTypeNote})
	assert.ErrorIs(t, err, model.ErrValidation, "missing boardId")

	_, err = f.drafts.Upsert(ctx, "u1", &model.Draft{DraftID: "d1", BoardID: b.BoardID, MemoryType: "gif"})
	assert.ErrorIs(t, err, model.ErrValidation, "bad type")

	base := time.Now().UTC()
	cap1 := "v1"
	_, err = f.drafts.Upsert(ctx, "u1", &model.Draft{DraftID: "d1", BoardID: b.BoardID, MemoryType: model.MemoryTypeNote, Caption: &cap1, LastUpdated: base})
	require.NoError(t, err)

	// Stale write loses; the persisted newer copy is returned.
	capStale := "stale"
	kept, err := f.drafts.Upsert(ctx, "u1", &model.Draft{DraftID: "d1", BoardID: b.BoardID, MemoryType: model.MemoryTypeNote, Caption: &capStale, LastUpdated: base.Add(-time.Minute)})
	require.NoError(t, err)
	require.NotNil(t, kept.Caption)
	assert.Equal(t, "v1", *kept.Caption)

	lst, err := f.drafts.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, lst, 1)
}

func TestPublishDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "u1")
	b, _ := f.boards.Create(ctx, "u1", "trip")

	cap := "our picnic"
	_, err := f.drafts.Upsert(ctx, "u1", &model.Draft{
		DraftID:    "d1",
		BoardID:    b.BoardID,
		MemoryType: model.MemoryTypePhoto,
		Caption:    &cap,
		MediaItems: []model.MediaItem{{URL: "https://cdn.test/p.jpg"}},
	})
	require.NoError(t, err)

	m, err := f.memories.PublishDraft(ctx, "u1", "d1")
	require.NoError(t, err)
	assert.Equal(t, model.MemoryTypePhoto, m.MemoryType)
	assert.Equal(t, events.EventMemoryPublished, f.drainEvent(t).Kind)

	// The draft is gone after publishing.
	_, err = f.store.Drafts().Get(ctx, "u1", "d1")
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Publishing a tombstoned draft is a conflict.
	now := time.Now().UTC()
	_, err = f.store.Drafts().Upsert(ctx, &model.Draft{DraftID: "d2", UserID: "u1", BoardID: b.BoardID, MemoryType: model.MemoryTypeNote, LastUpdated: now, DeletedAt: &now})
	require.NoError(t, err)
	_, err = f.memories.PublishDraft(ctx, "u1", "d2")
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestErrorsAreSentinelWrapped(t *testing.T) {
	f := newFixture(t)
	_, err := f.boards.Get(context.Background(), "u1", "no-such-board")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}
