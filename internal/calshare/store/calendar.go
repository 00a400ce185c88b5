package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
)

type calendars struct {
	db *gorm.DB
}

func newCalendars(db *gorm.DB) *calendars {
	return &calendars{db}
}

// Create creates a new calendar.
func (c *calendars) Create(ctx context.Context, calendar *model.Calendar) error {
	if err := c.db.WithContext(ctx).Create(calendar).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Update updates an existing calendar.
func (c *calendars) Update(ctx context.Context, calendar *model.Calendar) error {
	result := c.db.WithContext(ctx).Save(calendar)
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrCalendarNotFound
	}
	return nil
}

// Delete soft-deletes a calendar by id.
func (c *calendars) Delete(ctx context.Context, id string) error {
	result := c.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Calendar{})
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrCalendarNotFound
	}
	return nil
}

// Get retrieves a calendar by id.
func (c *calendars) Get(ctx context.Context, id string) (*model.Calendar, error) {
	var calendar model.Calendar
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&calendar).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrCalendarNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &calendar, nil
}

// List lists calendars with pagination.
func (c *calendars) List(ctx context.Context, offset, limit int) (int64, []*model.Calendar, error) {
	var count int64
	var items []*model.Calendar

	if err := c.db.WithContext(ctx).Model(&model.Calendar{}).Count(&count).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	if err := c.db.WithContext(ctx).Offset(offset).Limit(limit).Order("created_at DESC").Find(&items).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	return count, items, nil
}

// ListByOwner lists the calendars owned by a user.
func (c *calendars) ListByOwner(ctx context.Context, ownerID string) ([]*model.Calendar, error) {
	var items []*model.Calendar
	if err := c.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&items).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return items, nil
}
