package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/client/syncer"
	srvapi "github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/api"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/auth"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/events"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store/memstore"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	router := srvapi.NewRouter(srvapi.Deps{
		Store:      memstore.New(),
		Authorizer: auth.NewMockAuthorizer(),
		Bus:        events.NewBus(64),
		Log:        zerolog.Nop(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server, userID string) *Client {
	t.Helper()
	c := New(srv.URL, auth.DevToken(userID),
		WithSyncConfig(syncer.Config{
			Interval:       time.Hour,
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     5 * time.Millisecond,
		}),
	)
	t.Cleanup(func() { _ = c.Close() })
	// Create the account record.
	_, err := c.Me(context.Background())
	require.NoError(t, err)
	return c
}

// syncNow runs a pass, waiting out any background pass kicked off by a
// recent edit.
func syncNow(t *testing.T, c *Client) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		err := c.SyncNow(context.Background())
		if err == nil {
			return
		}
		if !errors.Is(err, syncer.ErrSyncInFlight) || time.Now().After(deadline) {
			t.Fatalf("sync: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClientBoardFlow(t *testing.T) {
	srv := newBackend(t)
	alice := newClient(t, srv, "alice")
	bob := newClient(t, srv, "bob")
	ctx := context.Background()

	b, err := alice.CreateBoard(ctx, "our year")
	require.NoError(t, err)

	_, err = bob.JoinBoard(ctx, b.ShareCode)
	require.NoError(t, err)

	boards, err := bob.ListBoards(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, b.BoardID, boards[0].BoardID)

	inv, err := alice.InviteToBoard(ctx, b.BoardID, "carol@example.test")
	require.NoError(t, err)
	carol := newClient(t, srv, "carol")
	_, err = carol.AcceptInvite(ctx, inv.InviteID)
	require.NoError(t, err)
}

func TestClientDraftRoundTrip(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()

	// The same account on two devices.
	phone := newClient(t, srv, "alice")
	laptop := newClient(t, srv, "alice")

	b, err := phone.CreateBoard(ctx, "trip")
	require.NoError(t, err)

	cap := "draft from phone"
	require.NoError(t, phone.SaveDraft(ctx, &model.Draft{
		DraftID:    "d1",
		BoardID:    b.BoardID,
		MemoryType: model.MemoryTypeNote,
		Caption:    &cap,
	}))
	syncNow(t, phone)

	syncNow(t, laptop)
	drafts, err := laptop.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "draft from phone", *drafts[0].Caption)

	// Laptop edits later; phone converges to the newer copy.
	cap2 := "edited on laptop"
	drafts[0].Caption = &cap2
	require.NoError(t, laptop.SaveDraft(ctx, drafts[0]))
	syncNow(t, laptop)

	var notified atomic.Bool
	phone.OnDraftsChanged(func() { notified.Store(true) })
	syncNow(t, phone)

	got, err := phone.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "edited on laptop", *got[0].Caption)
	assert.True(t, notified.Load())
}

func TestClientDeletePropagates(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()
	phone := newClient(t, srv, "alice")
	laptop := newClient(t, srv, "alice")

	b, err := phone.CreateBoard(ctx, "trip")
	require.NoError(t, err)

	cap := "v1"
	require.NoError(t, phone.SaveDraft(ctx, &model.Draft{DraftID: "d1", BoardID: b.BoardID, MemoryType: model.MemoryTypeNote, Caption: &cap}))
	syncNow(t, phone)
	syncNow(t, laptop)

	require.NoError(t, phone.DeleteDraft(ctx, "d1"))
	syncNow(t, phone)

	syncNow(t, laptop)
	drafts, err := laptop.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Empty(t, drafts, "deletion reached the other device")
}

func TestClientPurgeDeleted(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()
	c := newClient(t, srv, "alice")

	b, err := c.CreateBoard(ctx, "trip")
	require.NoError(t, err)
	cap := "v1"
	require.NoError(t, c.SaveDraft(ctx, &model.Draft{DraftID: "d1", BoardID: b.BoardID, MemoryType: model.MemoryTypeNote, Caption: &cap}))
	require.NoError(t, c.DeleteDraft(ctx, "d1"))
	syncNow(t, c)

	// A fresh tombstone survives a conservative cutoff.
	n, err := c.PurgeDeleted(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = c.PurgeDeleted(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := c.local.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "tombstone removed from the device store")
}

func TestClientPublishDraft(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()
	c := newClient(t, srv, "alice")

	b, err := c.CreateBoard(ctx, "trip")
	require.NoError(t, err)

	cap := "our picnic"
	require.NoError(t, c.SaveDraft(ctx, &model.Draft{
		DraftID:    "d1",
		BoardID:    b.BoardID,
		MemoryType: model.MemoryTypePhoto,
		Caption:    &cap,
		MediaItems: []model.MediaItem{{URL: "https://cdn.test/p.jpg"}},
	}))

	m, err := c.PublishDraft(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, model.MemoryTypePhoto, m.MemoryType)

	feed, err := c.ListMemories(ctx, b.BoardID, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	drafts, err := c.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Empty(t, drafts, "published draft leaves the draft list")
}

func TestClientSignOut(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()
	c := newClient(t, srv, "alice")

	b, err := c.CreateBoard(ctx, "trip")
	require.NoError(t, err)
	cap := "v1"
	require.NoError(t, c.SaveDraft(ctx, &model.Draft{DraftID: "d1", BoardID: b.BoardID, MemoryType: model.MemoryTypeNote, Caption: &cap}))

	require.NoError(t, c.SignOut(ctx))
	drafts, err := c.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Empty(t, drafts)
	assert.ErrorIs(t, c.SyncNow(ctx), syncer.ErrSigningOut)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "Close is idempotent")
}
