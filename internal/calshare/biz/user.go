package biz

import (
	"context"

	"github.com/kart-io/calshare/internal/calshare/store"
	"github.com/kart-io/calshare/internal/model"
)

// UserService handles user business logic.
type UserService struct {
	store store.Factory
}

// NewUserService creates the user service.
func NewUserService(factory store.Factory) *UserService {
	return &UserService{store: factory}
}

// Get retrieves a user by id.
func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().Get(ctx, userID)
}

// GetByUsername retrieves a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.store.Users().GetByUsername(ctx, username)
}

// List lists users with pagination.
func (s *UserService) List(ctx context.Context, offset, limit int) (int64, []*model.User, error) {
	return s.store.Users().List(ctx, offset, limit)
}

// Update updates a user's mutable profile fields.
func (s *UserService) Update(ctx context.Context, userID string, displayName *string, email *string) (*model.User, error) {
	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if displayName != nil {
		user.DisplayName = *displayName
	}
	if email != nil {
		user.Email = email
	}
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	return s.store.Users().Delete(ctx, userID)
}
