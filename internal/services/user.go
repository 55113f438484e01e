package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/store"
)

type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService { return &UserService{store: s} }

// Ensure creates the user record on first sight of an authenticated actor.
// Subsequent calls return the existing record.
func (s *UserService) Ensure(ctx context.Context, userID, email string) (*model.User, error) {
	u, err := s.store.Users().Get(ctx, userID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", model.ErrValidation)
	}
	return s.store.Users().Create(ctx, &model.User{UserID: userID, Email: email})
}

func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().Get(ctx, userID)
}

// Delete removes the account and all of its drafts.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.store.Drafts().DeleteAll(ctx, userID); err != nil {
		return err
	}
	return s.store.Users().Delete(ctx, userID)
}
