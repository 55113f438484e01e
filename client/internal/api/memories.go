package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
)

// ListMemories retrieves a board's feed, newest first.
func ListMemories(ctx context.Context, httpClient *http.Client, baseURL, boardID string, limit int) ([]*model.Memory, error) {
	u := fmt.Sprintf("%s/api/boards/%s/memories", baseURL, url.PathEscape(boardID))
	if limit > 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Memories []*model.Memory `json:"memories"`
	}
	if err := getJSON(ctx, httpClient, u, &out, "list memories"); err != nil {
		return nil, err
	}
	return out.Memories, nil
}

// PublishDraft converts the caller's remote draft into a published memory.
func PublishDraft(ctx context.Context, httpClient *http.Client, baseURL, draftID string) (*model.Memory, error) {
	u := fmt.Sprintf("%s/api/drafts/%s/publish", baseURL, url.PathEscape(draftID))
	var out model.Memory
	if err := postJSON(ctx, httpClient, u, nil, http.StatusCreated, &out, "publish draft"); err != nil {
		return nil, err
	}
	return &out, nil
}
