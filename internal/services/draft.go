package services

import (
	"context"
	"fmt"
	"time"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store"
)

// DraftService is the server side of draft sync. Upserts are last-write-wins
// on lastUpdated; the store enforces the guard so concurrent stale writers
// lose without error.
type DraftService struct {
	store store.Store
}

func NewDraftService(s store.Store) *DraftService { return &DraftService{store: s} }

func (s *DraftService) List(ctx context.Context, userID string) ([]*model.Draft, error) {
	return s.store.Drafts().List(ctx, userID)
}

func (s *DraftService) Upsert(ctx context.Context, userID string, d *model.Draft) (*model.Draft, error) {
	if d.DraftID == "" {
		return nil, fmt.Errorf("%w: draftId is required", model.ErrValidation)
	}
	if d.BoardID == "" {
		return nil, fmt.Errorf("%w: boardId is required", model.ErrValidation)
	}
	switch d.MemoryType {
	case model.MemoryTypePhoto, model.MemoryTypeVideo, model.MemoryTypeNote, model.MemoryTypeCarousel:
	default:
		return nil, fmt.Errorf("%w: unknown memoryType %q", model.ErrValidation, d.MemoryType)
	}
	if d.LastUpdated.IsZero() {
		d.LastUpdated = time.Now().UTC()
	}
	d.UserID = userID
	return s.store.Drafts().Upsert(ctx, d)
}

func (s *DraftService) Delete(ctx context.Context, userID, draftID string) error {
	return s.store.Drafts().Delete(ctx, userID, draftID)
}

func (s *DraftService) DeleteAll(ctx context.Context, userID string) error {
	return s.store.Drafts().DeleteAll(ctx, userID)
}
