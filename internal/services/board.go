package services

import (
	"context"
	"fmt"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/events"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store"
)

type BoardService struct {
	store store.Store
	bus   *events.Bus
}

func NewBoardService(s store.Store, bus *events.Bus) *BoardService {
	return &BoardService{store: s, bus: bus}
}

func (s *BoardService) Create(ctx context.Context, ownerID, name string) (*model.Board, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: board name is required", model.ErrValidation)
	}
	return s.store.Boards().Create(ctx, &model.Board{OwnerID: ownerID, Name: name})
}

// Get returns the board if userID is a member.
func (s *BoardService) Get(ctx context.Context, userID, boardID string) (*model.Board, error) {
	b, err := s.store.Boards().GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	ok, err := s.store.Boards().IsMember(ctx, boardID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrForbidden
	}
	return b, nil
}

func (s *BoardService) List(ctx context.Context, userID string) ([]*model.Board, error) {
	return s.store.Boards().List(ctx, userID)
}

func (s *BoardService) Rename(ctx context.Context, userID, boardID, name string) error {
	if name == "" {
		return fmt.Errorf("%w: board name is required", model.ErrValidation)
	}
	if err := s.requireOwner(ctx, userID, boardID); err != nil {
		return err
	}
	return s.store.Boards().Rename(ctx, boardID, name)
}

func (s *BoardService) Delete(ctx context.Context, userID, boardID string) error {
	if err := s.requireOwner(ctx, userID, boardID); err != nil {
		return err
	}
	return s.store.Boards().Delete(ctx, boardID)
}

// Join adds userID to the board identified by shareCode.
func (s *BoardService) Join(ctx context.Context, userID, shareCode string) (*model.Board, error) {
	b, err := s.store.Boards().GetByShareCode(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	if err := s.store.Boards().AddMember(ctx, b.BoardID, userID); err != nil {
		return nil, err
	}
	return b, nil
}

// Invite records an invite and emits an event so the invitee is emailed.
func (s *BoardService) Invite(ctx context.Context, inviterID, boardID, email string) (*model.BoardInvite, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", model.ErrValidation)
	}
	ok, err := s.store.Boards().IsMember(ctx, boardID, inviterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrForbidden
	}
	inv, err := s.store.Invites().Create(ctx, &model.BoardInvite{BoardID: boardID, InviterID: inviterID, Email: email})
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.Event{Kind: events.EventInviteCreated, ActorID: inviterID, BoardID: boardID})
	return inv, nil
}

func (s *BoardService) AcceptInvite(ctx context.Context, userID, inviteID string) (*model.BoardInvite, error) {
	inv, err := s.store.Invites().Accept(ctx, inviteID, userID)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.Event{Kind: events.EventInviteAccepted, ActorID: userID, BoardID: inv.BoardID})
	return inv, nil
}

func (s *BoardService) Members(ctx context.Context, boardID string) ([]string, error) {
	return s.store.Boards().Members(ctx, boardID)
}

func (s *BoardService) requireOwner(ctx context.Context, userID, boardID string) error {
	b, err := s.store.Boards().GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	if b.OwnerID != userID {
		return model.ErrForbidden
	}
	return nil
}
