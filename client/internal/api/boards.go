package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/client/internal/syncerrs"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
)

// CreateBoard creates a new board owned by the caller.
func CreateBoard(ctx context.Context, httpClient *http.Client, baseURL, name string) (*model.Board, error) {
	var out model.Board
	if err := postJSON(ctx, httpClient, baseURL+"/api/boards", map[string]string{"name": name}, http.StatusCreated, &out, "create board"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBoards returns every board the caller belongs to.
func ListBoards(ctx context.Context, httpClient *http.Client, baseURL string) ([]*model.Board, error) {
	var out struct {
		Boards []*model.Board `json:"boards"`
	}
	if err := getJSON(ctx, httpClient, baseURL+"/api/boards", &out, "list boards"); err != nil {
		return nil, err
	}
	return out.Boards, nil
}

// JoinBoard joins a board by its share code.
func JoinBoard(ctx context.Context, httpClient *http.Client, baseURL, shareCode string) (*model.Board, error) {
	var out model.Board
	if err := postJSON(ctx, httpClient, baseURL+"/api/boards/join", map[string]string{"shareCode": shareCode}, http.StatusOK, &out, "join board"); err != nil {
		return nil, err
	}
	return &out, nil
}

// InviteToBoard emails an invite for the board.
func InviteToBoard(ctx context.Context, httpClient *http.Client, baseURL, boardID, email string) (*model.BoardInvite, error) {
	url := fmt.Sprintf("%s/api/boards/%s/invites", baseURL, boardID)
	var out model.BoardInvite
	if err := postJSON(ctx, httpClient, url, map[string]string{"email": email}, http.StatusCreated, &out, "invite to board"); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptInvite accepts a pending invite on behalf of the caller.
func AcceptInvite(ctx context.Context, httpClient *http.Client, baseURL, inviteID string) (*model.BoardInvite, error) {
	url := fmt.Sprintf("%s/api/invites/%s/accept", baseURL, inviteID)
	var out model.BoardInvite
	if err := postJSON(ctx, httpClient, url, nil, http.StatusOK, &out, "accept invite"); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMe returns (and on first call creates) the caller's account record.
func GetMe(ctx context.Context, httpClient *http.Client, baseURL string) (*model.User, error) {
	var out model.User
	if err := getJSON(ctx, httpClient, baseURL+"/api/me", &out, "get me"); err != nil {
		return nil, err
	}
	return &out, nil
}

func getJSON(ctx context.Context, httpClient *http.Client, url string, out interface{}, operation string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return syncerrs.NewNetworkError(operation, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return syncerrs.NewHTTPError(resp.StatusCode, readBody(resp.Body), operation)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func postJSON(ctx context.Context, httpClient *http.Client, url string, body interface{}, wantStatus int, out interface{}, operation string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return syncerrs.NewNetworkError(operation, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != wantStatus {
		return syncerrs.NewHTTPError(resp.StatusCode, readBody(resp.Body), operation)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
