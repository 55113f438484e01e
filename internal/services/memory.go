package services

import (
	"context"
	"fmt"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/events"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/moderation"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store"
)

type MemoryService struct {
	store store.Store
	mod   *moderation.Checker
	bus   *events.Bus
}

func NewMemoryService(s store.Store, mod *moderation.Checker, bus *events.Bus) *MemoryService {
	return &MemoryService{store: s, mod: mod, bus: bus}
}

func (s *MemoryService) Create(ctx context.Context, m *model.Memory) (*model.Memory, error) {
	if err := s.validate(ctx, m); err != nil {
		return nil, err
	}
	out, err := s.store.Memories().Create(ctx, m)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.Event{Kind: events.EventMemoryPublished, ActorID: m.AuthorID, BoardID: m.BoardID, MemoryID: out.MemoryID})
	return out, nil
}

// PublishDraft converts the user's remote draft into a published memory and
// removes the draft. The client tombstones its local copy on success.
func (s *MemoryService) PublishDraft(ctx context.Context, userID, draftID string) (*model.Memory, error) {
	d, err := s.store.Drafts().Get(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	if d.IsTombstone() {
		return nil, fmt.Errorf("%w: draft was deleted", model.ErrConflict)
	}
	m := &model.Memory{
		BoardID:    d.BoardID,
		AuthorID:   userID,
		MemoryType: d.MemoryType,
		Caption:    d.Caption,
		EventDate:  d.EventDate,
		Location:   d.Location,
		MediaItems: d.MediaItems,
	}
	out, err := s.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := s.store.Drafts().Delete(ctx, userID, draftID); err != nil {
		// The memory is published; a leftover draft is harmless and will be
		// tombstoned by the client on the next sync pass.
		return out, nil
	}
	return out, nil
}

func (s *MemoryService) Get(ctx context.Context, userID, memoryID string) (*model.Memory, error) {
	m, err := s.store.Memories().GetByID(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, userID, m.BoardID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MemoryService) List(ctx context.Context, userID string, req model.ListMemoriesRequest) ([]*model.Memory, error) {
	if err := s.requireMember(ctx, userID, req.BoardID); err != nil {
		return nil, err
	}
	return s.store.Memories().List(ctx, req)
}

// Delete removes a memory. Allowed for its author or the board owner.
func (s *MemoryService) Delete(ctx context.Context, userID, memoryID string) error {
	m, err := s.store.Memories().GetByID(ctx, memoryID)
	if err != nil {
		return err
	}
	if m.AuthorID != userID {
		b, err := s.store.Boards().GetByID(ctx, m.BoardID)
		if err != nil {
			return err
		}
		if b.OwnerID != userID {
			return model.ErrForbidden
		}
	}
	return s.store.Memories().Delete(ctx, memoryID)
}

// Like records a like; re-likes are no-ops and emit no event.
func (s *MemoryService) Like(ctx context.Context, userID, memoryID string) error {
	m, err := s.store.Memories().GetByID(ctx, memoryID)
	if err != nil {
		return err
	}
	if err := s.requireMember(ctx, userID, m.BoardID); err != nil {
		return err
	}
	added, err := s.store.Likes().Add(ctx, &model.Like{MemoryID: memoryID, UserID: userID})
	if err != nil {
		return err
	}
	if added {
		s.bus.Publish(events.Event{Kind: events.EventMemoryLiked, ActorID: userID, BoardID: m.BoardID, MemoryID: memoryID})
	}
	return nil
}

func (s *MemoryService) Unlike(ctx context.Context, userID, memoryID string) error {
	return s.store.Likes().Remove(ctx, memoryID, userID)
}

func (s *MemoryService) AddComment(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	if c.Body == "" {
		return nil, fmt.Errorf("%w: comment body is required", model.ErrValidation)
	}
	m, err := s.store.Memories().GetByID(ctx, c.MemoryID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, c.AuthorID, m.BoardID); err != nil {
		return nil, err
	}
	if s.mod.Check(c.Body) == moderation.Reject {
		return nil, fmt.Errorf("%w: comment rejected by content screening", model.ErrValidation)
	}
	out, err := s.store.Comments().Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.Event{Kind: events.EventCommentCreated, ActorID: c.AuthorID, BoardID: m.BoardID, MemoryID: c.MemoryID})
	return out, nil
}

func (s *MemoryService) ListComments(ctx context.Context, userID, memoryID string) ([]*model.Comment, error) {
	m, err := s.store.Memories().GetByID(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, userID, m.BoardID); err != nil {
		return nil, err
	}
	return s.store.Comments().ListByMemory(ctx, memoryID)
}

func (s *MemoryService) validate(ctx context.Context, m *model.Memory) error {
	switch m.MemoryType {
	case model.MemoryTypePhoto, model.MemoryTypeVideo, model.MemoryTypeNote, model.MemoryTypeCarousel:
	default:
		return fmt.Errorf("%w: unknown memoryType %q", model.ErrValidation, m.MemoryType)
	}
	if m.MemoryType == model.MemoryTypeNote {
		if m.Caption == nil || *m.Caption == "" {
			return fmt.Errorf("%w: note requires a caption", model.ErrValidation)
		}
	} else if len(m.MediaItems) == 0 {
		return fmt.Errorf("%w: %s requires media", model.ErrValidation, m.MemoryType)
	}
	if err := s.requireMember(ctx, m.AuthorID, m.BoardID); err != nil {
		return err
	}
	if m.Caption != nil && s.mod.Check(*m.Caption) == moderation.Reject {
		return fmt.Errorf("%w: caption rejected by content screening", model.ErrValidation)
	}
	return nil
}

func (s *MemoryService) requireMember(ctx context.Context, userID, boardID string) error {
	ok, err := s.store.Boards().IsMember(ctx, boardID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}
