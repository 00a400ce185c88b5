package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
)

type grants struct {
	db *gorm.DB
}

func newGrants(db *gorm.DB) *grants {
	return &grants{db}
}

// Upsert creates the grant for a (user, calendar) pair or replaces its
// permission set when one already exists.
func (g *grants) Upsert(ctx context.Context, grant *model.PermissionGrant) error {
	var existing model.PermissionGrant
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND calendar_id = ?", grant.UserID, grant.CalendarID).
		First(&existing).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			if err := g.db.WithContext(ctx).Create(grant).Error; err != nil {
				return errors.ErrDatabase.WithCause(err)
			}
			return nil
		}
		return errors.ErrDatabase.WithCause(err)
	}

	existing.Permissions = grant.Permissions
	existing.GrantedBy = grant.GrantedBy
	if err := g.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	grant.ID = existing.ID
	return nil
}

// Revoke removes every grant for a (user, calendar) pair.
func (g *grants) Revoke(ctx context.Context, userID, calendarID string) error {
	result := g.db.WithContext(ctx).
		Where("user_id = ? AND calendar_id = ?", userID, calendarID).
		Delete(&model.PermissionGrant{})
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrGrantNotFound
	}
	return nil
}

// ListForPair returns every grant row for a (user, calendar) pair.
func (g *grants) ListForPair(ctx context.Context, userID, calendarID string) ([]*model.PermissionGrant, error) {
	var items []*model.PermissionGrant
	if err := g.db.WithContext(ctx).
		Where("user_id = ? AND calendar_id = ?", userID, calendarID).
		Find(&items).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return items, nil
}

// ListByCalendar lists every grant on a calendar.
func (g *grants) ListByCalendar(ctx context.Context, calendarID string) ([]*model.PermissionGrant, error) {
	var items []*model.PermissionGrant
	if err := g.db.WithContext(ctx).
		Where("calendar_id = ?", calendarID).
		Find(&items).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return items, nil
}

// ListByUser lists every grant held by a user.
func (g *grants) ListByUser(ctx context.Context, userID string) ([]*model.PermissionGrant, error) {
	var items []*model.PermissionGrant
	if err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&items).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return items, nil
}
