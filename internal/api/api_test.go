package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/auth"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/events"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store/memstore"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := NewRouter(Deps{
		Store:      memstore.New(),
		Authorizer: auth.NewMockAuthorizer(),
		Bus:        events.NewBus(64),
		Log:        zerolog.Nop(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, userID string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+auth.DevToken(userID))
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// register creates the account record for a dev-token user.
func register(t *testing.T, srv *httptest.Server, userID string) {
	t.Helper()
	resp := doJSON(t, srv, http.MethodGet, "/api/me", userID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthEndpointIsPublic(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/api/boards", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/boards", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	resp2, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestBoardEndpoints(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")
	register(t, srv, "bob")

	var b model.Board
	resp := doJSON(t, srv, http.MethodPost, "/api/boards", "alice", map[string]string{"name": "us"}, &b)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, b.BoardID)
	require.NotEmpty(t, b.ShareCode)

	resp = doJSON(t, srv, http.MethodPost, "/api/boards", "alice", map[string]string{"name": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Bob is not a member yet.
	resp = doJSON(t, srv, http.MethodGet, "/api/boards/"+b.BoardID, "bob", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var joined model.Board
	resp = doJSON(t, srv, http.MethodPost, "/api/boards/join", "bob", map[string]string{"shareCode": b.ShareCode}, &joined)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, b.BoardID, joined.BoardID)

	var members struct {
		Members []string `json:"members"`
		Count   int      `json:"count"`
	}
	resp = doJSON(t, srv, http.MethodGet, "/api/boards/"+b.BoardID+"/members", "bob", nil, &members)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, members.Count)

	// Only the owner can delete.
	resp = doJSON(t, srv, http.MethodDelete, "/api/boards/"+b.BoardID, "bob", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = doJSON(t, srv, http.MethodDelete, "/api/boards/"+b.BoardID, "alice", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodGet, "/api/boards/"+b.BoardID, "alice", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInviteEndpoints(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")
	register(t, srv, "carol")

	var b model.Board
	doJSON(t, srv, http.MethodPost, "/api/boards", "alice", map[string]string{"name": "trip"}, &b)

	var inv model.BoardInvite
	resp := doJSON(t, srv, http.MethodPost, "/api/boards/"+b.BoardID+"/invites", "alice", map[string]string{"email": "carol@example.test"}, &inv)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var acc model.BoardInvite
	resp = doJSON(t, srv, http.MethodPost, "/api/invites/"+inv.InviteID+"/accept", "carol", nil, &acc)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, acc.AcceptedBy)

	resp = doJSON(t, srv, http.MethodPost, "/api/invites/"+inv.InviteID+"/accept", "carol", nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestMemoryAndCommentEndpoints(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	var b model.Board
	doJSON(t, srv, http.MethodPost, "/api/boards", "alice", map[string]string{"name": "trip"}, &b)

	resp := doJSON(t, srv, http.MethodPost, "/api/boards/"+b.BoardID+"/memories", "alice",
		map[string]interface{}{"memoryType": "photo"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "photo without media")

	var m model.Memory
	resp = doJSON(t, srv, http.MethodPost, "/api/boards/"+b.BoardID+"/memories", "alice",
		map[string]interface{}{
			"memoryType": "photo",
			"caption":    "day one",
			"mediaItems": []map[string]interface{}{{"url": "https://cdn.test/a.jpg"}},
		}, &m)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPut, "/api/memories/"+m.MemoryID+"/like", "alice", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doJSON(t, srv, http.MethodPut, "/api/memories/"+m.MemoryID+"/like", "alice", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "re-like is a no-op")

	var got model.Memory
	resp = doJSON(t, srv, http.MethodGet, "/api/memories/"+m.MemoryID, "alice", nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, got.LikeCount)

	var c model.Comment
	resp = doJSON(t, srv, http.MethodPost, "/api/memories/"+m.MemoryID+"/comments", "alice", map[string]string{"body": "love it"}, &c)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var reply model.Comment
	resp = doJSON(t, srv, http.MethodPost, "/api/memories/"+m.MemoryID+"/comments", "alice",
		map[string]interface{}{"body": "same", "parentId": c.CommentID}, &reply)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, reply.ParentID)

	var list struct {
		Comments []model.Comment `json:"comments"`
		Count    int             `json:"count"`
	}
	resp = doJSON(t, srv, http.MethodGet, "/api/memories/"+m.MemoryID+"/comments", "alice", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, list.Count)
}

func TestDraftSyncEndpoints(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	var b model.Board
	doJSON(t, srv, http.MethodPost, "/api/boards", "alice", map[string]string{"name": "trip"}, &b)

	base := time.Now().UTC().Truncate(time.Millisecond)
	put := func(caption string, at time.Time) model.Draft {
		var out model.Draft
		resp := doJSON(t, srv, http.MethodPut, "/api/drafts/d1", "alice", model.Draft{
			BoardID:     b.BoardID,
			MemoryType:  model.MemoryTypeNote,
			Caption:     &caption,
			LastUpdated: at,
		}, &out)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return out
	}

	put("v1", base)
	got := put("v2", base.Add(time.Second))
	require.NotNil(t, got.Caption)
	assert.Equal(t, "v2", *got.Caption)

	// A stale save echoes back the persisted newer copy.
	got = put("stale", base.Add(-time.Second))
	require.NotNil(t, got.Caption)
	assert.Equal(t, "v2", *got.Caption)

	var list struct {
		Drafts []model.Draft `json:"drafts"`
		Count  int           `json:"count"`
	}
	resp := doJSON(t, srv, http.MethodGet, "/api/drafts", "alice", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, list.Count)

	// Drafts are private to their owner.
	register(t, srv, "bob")
	resp = doJSON(t, srv, http.MethodGet, "/api/drafts", "bob", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, list.Count)

	// Publish turns the draft into a memory and removes it.
	var m model.Memory
	resp = doJSON(t, srv, http.MethodPost, "/api/drafts/d1/publish", "alice", nil, &m)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, b.BoardID, m.BoardID)

	resp = doJSON(t, srv, http.MethodGet, "/api/drafts", "alice", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, list.Count)

	resp = doJSON(t, srv, http.MethodPost, "/api/drafts/d1/publish", "alice", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// DeleteAll clears the collection (used on account sign-out everywhere).
	put("v3", base.Add(time.Minute))
	resp = doJSON(t, srv, http.MethodDelete, "/api/drafts", "alice", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doJSON(t, srv, http.MethodGet, "/api/drafts", "alice", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, list.Count)
}

func TestPanicRecovery(t *testing.T) {
	srv := newTestServer(t)
	// Invalid JSON bodies must yield 400, not a panic/500.
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/boards", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+auth.DevToken("alice"))
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListMemoriesPagination(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	var b model.Board
	doJSON(t, srv, http.MethodPost, "/api/boards", "alice", map[string]string{"name": "trip"}, &b)

	for i := 0; i < 5; i++ {
		resp := doJSON(t, srv, http.MethodPost, "/api/boards/"+b.BoardID+"/memories", "alice",
			map[string]interface{}{"memoryType": "note", "caption": fmt.Sprintf("note %d", i)}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var list struct {
		Memories []model.Memory `json:"memories"`
		Count    int            `json:"count"`
	}
	resp := doJSON(t, srv, http.MethodGet, "/api/boards/"+b.BoardID+"/memories?limit=3", "alice", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, list.Count)
}
