package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/client/internal/syncerrs"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
)

// FetchDrafts retrieves the caller's full remote draft set.
func FetchDrafts(ctx context.Context, httpClient *http.Client, baseURL string) ([]*model.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/drafts", baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, syncerrs.NewNetworkError("fetch drafts", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, syncerrs.NewHTTPError(resp.StatusCode, readBody(resp.Body), "fetch drafts")
	}

	var out struct {
		Drafts []*model.Draft `json:"drafts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, syncerrs.NewNetworkError("fetch drafts decode", err)
	}
	return out.Drafts, nil
}

// SaveDraft uploads one draft. The server applies last-write-wins and returns
// the persisted winner, which may be a newer copy than the one sent.
func SaveDraft(ctx context.Context, httpClient *http.Client, baseURL string, d *model.Draft) (*model.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/drafts/%s", baseURL, d.DraftID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, syncerrs.NewNetworkError("save draft", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, syncerrs.NewHTTPError(resp.StatusCode, readBody(resp.Body), "save draft")
	}

	var out model.Draft
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, syncerrs.NewNetworkError("save draft decode", err)
	}
	return &out, nil
}

// DeleteDraft removes one remote draft. Deleting an absent draft succeeds.
func DeleteDraft(ctx context.Context, httpClient *http.Client, baseURL, draftID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/drafts/%s", baseURL, draftID)
	return doDelete(ctx, httpClient, url, "delete draft")
}

// DeleteAllDrafts clears the caller's remote draft collection.
func DeleteAllDrafts(ctx context.Context, httpClient *http.Client, baseURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/drafts", baseURL)
	return doDelete(ctx, httpClient, url, "delete all drafts")
}

func doDelete(ctx context.Context, httpClient *http.Client, url, operation string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return syncerrs.NewNetworkError(operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return syncerrs.NewHTTPError(resp.StatusCode, readBody(resp.Body), operation)
	}
	return nil
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return string(b)
}
