package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
)

type organizations struct {
	db *gorm.DB
}

func newOrganizations(db *gorm.DB) *organizations {
	return &organizations{db}
}

// Create creates a new organization.
func (o *organizations) Create(ctx context.Context, org *model.Organization) error {
	if err := o.db.WithContext(ctx).Create(org).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrAlreadyExists.WithMessage("organization slug already exists")
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Update updates an existing organization.
func (o *organizations) Update(ctx context.Context, org *model.Organization) error {
	result := o.db.WithContext(ctx).Save(org)
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrOrganizationNotFound
	}
	return nil
}

// Delete soft-deletes an organization by id.
func (o *organizations) Delete(ctx context.Context, id string) error {
	result := o.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Organization{})
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrOrganizationNotFound
	}
	return nil
}

// Get retrieves an organization by id.
func (o *organizations) Get(ctx context.Context, id string) (*model.Organization, error) {
	var org model.Organization
	if err := o.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrOrganizationNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &org, nil
}

// GetBySlug retrieves an organization by slug.
func (o *organizations) GetBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	var org model.Organization
	if err := o.db.WithContext(ctx).Where("slug = ?", slug).First(&org).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrOrganizationNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &org, nil
}

// List lists organizations with pagination.
func (o *organizations) List(ctx context.Context, offset, limit int) (int64, []*model.Organization, error) {
	var count int64
	var items []*model.Organization

	if err := o.db.WithContext(ctx).Model(&model.Organization{}).Count(&count).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	if err := o.db.WithContext(ctx).Offset(offset).Limit(limit).Order("created_at DESC").Find(&items).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	return count, items, nil
}

// AddMember adds a user to an organization.
func (o *organizations) AddMember(ctx context.Context, member *model.OrgMember) error {
	if err := o.db.WithContext(ctx).Create(member).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrAlreadyExists.WithMessage("user is already a member")
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// RemoveMember removes a user from an organization.
func (o *organizations) RemoveMember(ctx context.Context, orgID, userID string) error {
	result := o.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Delete(&model.OrgMember{})
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound.WithMessage("membership not found")
	}
	return nil
}

// ListMembers lists the members of an organization.
func (o *organizations) ListMembers(ctx context.Context, orgID string) ([]*model.OrgMember, error) {
	var members []*model.OrgMember
	if err := o.db.WithContext(ctx).Where("org_id = ?", orgID).Find(&members).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return members, nil
}

// IsMember reports whether a user belongs to an organization.
func (o *organizations) IsMember(ctx context.Context, orgID, userID string) (bool, error) {
	var count int64
	if err := o.db.WithContext(ctx).Model(&model.OrgMember{}).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error; err != nil {
		return false, errors.ErrDatabase.WithCause(err)
	}
	return count > 0, nil
}
