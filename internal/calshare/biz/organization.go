package biz

import (
	"context"

	"github.com/kart-io/calshare/internal/calshare/store"
	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/utils/id"
)

// OrganizationService handles organization business logic.
type OrganizationService struct {
	store store.Factory
}

// NewOrganizationService creates the organization service.
func NewOrganizationService(factory store.Factory) *OrganizationService {
	return &OrganizationService{store: factory}
}

// Create creates an organization and enrolls the owner as its first
// member.
func (s *OrganizationService) Create(ctx context.Context, org *model.Organization) error {
	org.ID = id.New()
	if err := s.store.Organizations().Create(ctx, org); err != nil {
		return err
	}
	return s.store.Organizations().AddMember(ctx, &model.OrgMember{
		OrgID:  org.ID,
		UserID: org.OwnerID,
		Role:   "owner",
	})
}

// Get retrieves an organization by id.
func (s *OrganizationService) Get(ctx context.Context, orgID string) (*model.Organization, error) {
	return s.store.Organizations().Get(ctx, orgID)
}

// List lists organizations with pagination.
func (s *OrganizationService) List(ctx context.Context, offset, limit int) (int64, []*model.Organization, error) {
	return s.store.Organizations().List(ctx, offset, limit)
}

// Update updates an organization.
func (s *OrganizationService) Update(ctx context.Context, org *model.Organization) error {
	return s.store.Organizations().Update(ctx, org)
}

// Delete removes an organization.
func (s *OrganizationService) Delete(ctx context.Context, orgID string) error {
	return s.store.Organizations().Delete(ctx, orgID)
}

// AddMember enrolls a user in an organization. The user must exist.
func (s *OrganizationService) AddMember(ctx context.Context, orgID, userID, role string) error {
	if _, err := s.store.Organizations().Get(ctx, orgID); err != nil {
		return err
	}
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return err
	}
	if role == "" {
		role = "member"
	}
	return s.store.Organizations().AddMember(ctx, &model.OrgMember{
		OrgID:  orgID,
		UserID: userID,
		Role:   role,
	})
}

// RemoveMember removes a user from an organization.
func (s *OrganizationService) RemoveMember(ctx context.Context, orgID, userID string) error {
	return s.store.Organizations().RemoveMember(ctx, orgID, userID)
}

// ListMembers lists an organization's members.
func (s *OrganizationService) ListMembers(ctx context.Context, orgID string) ([]*model.OrgMember, error) {
	if _, err := s.store.Organizations().Get(ctx, orgID); err != nil {
		return nil, err
	}
	return s.store.Organizations().ListMembers(ctx, orgID)
}
