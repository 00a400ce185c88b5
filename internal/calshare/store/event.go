package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
)

type events struct {
	db *gorm.DB
}

func newEvents(db *gorm.DB) *events {
	return &events{db}
}

// Create creates a new event.
func (e *events) Create(ctx context.Context, event *model.Event) error {
	if err := e.db.WithContext(ctx).Create(event).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Update updates an existing event.
func (e *events) Update(ctx context.Context, event *model.Event) error {
	result := e.db.WithContext(ctx).Save(event)
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrEventNotFound
	}
	return nil
}

// Delete soft-deletes an event by id.
func (e *events) Delete(ctx context.Context, id string) error {
	result := e.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Event{})
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrEventNotFound
	}
	return nil
}

// Get retrieves an event by id.
func (e *events) Get(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	if err := e.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrEventNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &event, nil
}

// ListByCalendar lists a calendar's events ordered by start time.
func (e *events) ListByCalendar(ctx context.Context, calendarID string, offset, limit int) (int64, []*model.Event, error) {
	var count int64
	var items []*model.Event

	base := e.db.WithContext(ctx).Model(&model.Event{}).Where("calendar_id = ?", calendarID)
	if err := base.Count(&count).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	if err := e.db.WithContext(ctx).Where("calendar_id = ?", calendarID).
		Offset(offset).Limit(limit).Order("starts_at ASC").
		Find(&items).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	return count, items, nil
}

// CreateComment adds a comment to an event.
func (e *events) CreateComment(ctx context.Context, comment *model.EventComment) error {
	if err := e.db.WithContext(ctx).Create(comment).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// ListComments lists an event's comments oldest first.
func (e *events) ListComments(ctx context.Context, eventID string) ([]*model.EventComment, error) {
	var comments []*model.EventComment
	if err := e.db.WithContext(ctx).Where("event_id = ?", eventID).
		Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return comments, nil
}
