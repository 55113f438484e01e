// Package client is the Go SDK for the Amity backend. Draft edits are
// local-first: they land in the device store immediately and a background
// syncer reconciles them with the server.
package client

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/client/internal/api"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/client/localstore"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/client/syncer"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string // bearer token for actor authentication

	local localstore.Store
	sync  *syncer.Syncer
	log   zerolog.Logger

	syncCfg    syncer.Config
	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client with the specified baseURL and bearer token.
// Additional options can be provided via functional arguments.
func New(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}
	if token == "" {
		panic("token cannot be empty")
	}

	c := &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}
	if c.local == nil {
		c.local = localstore.NewMemoryStore()
	}

	// Wrap the transport so every request carries the Authorization header.
	c.wrapTransportWithToken()

	c.sync = syncer.New(c.local, &gateway{c: c}, c.syncCfg, c.log)
	return c
}

func (c *Client) wrapTransportWithToken() {
	baseTransport := c.http.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	c.http.Transport = &tokenTransport{base: baseTransport, token: c.token}
}

// tokenTransport wraps an http.RoundTripper to add the Authorization header.
type tokenTransport struct {
	base  http.RoundTripper
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(cloned)
}

// Close releases the local store. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	return c.local.Close()
}

// gateway adapts the HTTP API to the syncer's Gateway interface.
type gateway struct{ c *Client }

func (g *gateway) FetchDrafts(ctx context.Context) ([]*model.Draft, error) {
	return api.FetchDrafts(ctx, g.c.http, g.c.baseURL)
}

func (g *gateway) SaveDraft(ctx context.Context, d *model.Draft) (*model.Draft, error) {
	return api.SaveDraft(ctx, g.c.http, g.c.baseURL, d)
}

// --------------------------------------------------------------------
// Draft operations — local-first
// --------------------------------------------------------------------

// ListDrafts returns the device's live drafts, newest first.
func (c *Client) ListDrafts(ctx context.Context) ([]*model.Draft, error) {
	return c.local.List(ctx)
}

// SaveDraft stores the draft locally and kicks a background sync pass.
// LastUpdated is stamped here; callers never set it.
func (c *Client) SaveDraft(ctx context.Context, d *model.Draft) error {
	d.LastUpdated = time.Now().UTC()
	if err := c.local.Save(ctx, d); err != nil {
		return err
	}
	c.kickSync()
	return nil
}

// DeleteDraft tombstones the draft locally; the deletion propagates on the
// next sync pass.
func (c *Client) DeleteDraft(ctx context.Context, draftID string) error {
	if err := c.local.Delete(ctx, draftID, time.Now().UTC()); err != nil {
		return err
	}
	c.kickSync()
	return nil
}

// PublishDraft syncs so the server holds the latest copy, publishes it as a
// memory, then tombstones the local draft.
func (c *Client) PublishDraft(ctx context.Context, draftID string) (*model.Memory, error) {
	// If a background pass is in flight, wait it out; publishing needs the
	// draft's newest version on the server.
	for {
		err := c.sync.SyncNow(ctx)
		if err == nil {
			break
		}
		if err != syncer.ErrSyncInFlight {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	m, err := api.PublishDraft(ctx, c.http, c.baseURL, draftID)
	if err != nil {
		return nil, err
	}
	if err := c.local.Delete(ctx, draftID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return m, nil
}

// PurgeDeleted removes tombstones older than olderThan from the device
// store and reports how many were purged. Sync never purges; tombstones
// must outlive any device still holding a stale copy, so collection is an
// explicit maintenance action.
func (c *Client) PurgeDeleted(ctx context.Context, olderThan time.Duration) (int, error) {
	all, err := c.local.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	var purged int
	for _, d := range all {
		if d.IsTombstone() && d.DeletedAt.Before(cutoff) {
			if err := c.local.Purge(ctx, d.DraftID); err != nil {
				return purged, err
			}
			purged++
		}
	}
	return purged, nil
}

// SyncNow runs one synchronous sync pass.
func (c *Client) SyncNow(ctx context.Context) error {
	return c.sync.SyncNow(ctx)
}

// StartSync runs periodic sync passes until ctx is canceled.
func (c *Client) StartSync(ctx context.Context) {
	go c.sync.Start(ctx)
}

// OnDraftsChanged registers a callback fired after a sync pass changes the
// local draft set.
func (c *Client) OnDraftsChanged(fn func()) {
	c.sync.Subscribe(syncer.ObserverFunc(fn))
}

// SignOut disables sync and wipes local drafts. Remote drafts are kept for
// the next sign-in.
func (c *Client) SignOut(ctx context.Context) error {
	return c.sync.SignOut(ctx)
}

// kickSync starts a best-effort background pass so edits reach the server
// without waiting for the periodic interval.
func (c *Client) kickSync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := c.sync.SyncNow(ctx); err != nil && err != syncer.ErrSyncInFlight && err != syncer.ErrSigningOut {
			c.log.Debug().Err(err).Msg("background sync pass")
		}
	}()
}

// --------------------------------------------------------------------
// Account, board and memory operations — delegated to internal/api
// --------------------------------------------------------------------

// Me returns (and on first call creates) the caller's account record.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	return api.GetMe(ctx, c.http, c.baseURL)
}

// CreateBoard creates a new board owned by the caller.
func (c *Client) CreateBoard(ctx context.Context, name string) (*model.Board, error) {
	return api.CreateBoard(ctx, c.http, c.baseURL, name)
}

// ListBoards returns every board the caller belongs to.
func (c *Client) ListBoards(ctx context.Context) ([]*model.Board, error) {
	return api.ListBoards(ctx, c.http, c.baseURL)
}

// JoinBoard joins a board by its share code.
func (c *Client) JoinBoard(ctx context.Context, shareCode string) (*model.Board, error) {
	return api.JoinBoard(ctx, c.http, c.baseURL, shareCode)
}

// InviteToBoard emails an invite for the board.
func (c *Client) InviteToBoard(ctx context.Context, boardID, email string) (*model.BoardInvite, error) {
	return api.InviteToBoard(ctx, c.http, c.baseURL, boardID, email)
}

// AcceptInvite accepts a pending invite on behalf of the caller.
func (c *Client) AcceptInvite(ctx context.Context, inviteID string) (*model.BoardInvite, error) {
	return api.AcceptInvite(ctx, c.http, c.baseURL, inviteID)
}

// ListMemories retrieves a board's feed, newest first.
func (c *Client) ListMemories(ctx context.Context, boardID string, limit int) ([]*model.Memory, error) {
	return api.ListMemories(ctx, c.http, c.baseURL, boardID, limit)
}
