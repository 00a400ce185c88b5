package biz

import (
	"context"

	"github.com/kart-io/calshare/internal/calshare/store"
	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
	"github.com/kart-io/calshare/pkg/permission"
	"github.com/kart-io/calshare/pkg/utils/id"
)

// EventService handles event and comment business logic.
type EventService struct {
	store store.Factory
	perms *PermissionService
	audit *AuditService
}

// NewEventService creates the event service.
func NewEventService(factory store.Factory, perms *PermissionService, audit *AuditService) *EventService {
	return &EventService{store: factory, perms: perms, audit: audit}
}

// Create creates an event on a calendar.
func (s *EventService) Create(ctx context.Context, event *model.Event) error {
	if _, err := s.store.Calendars().Get(ctx, event.CalendarID); err != nil {
		return err
	}
	if event.EndsAt < event.StartsAt {
		return errors.ErrInvalidParam.WithMessage("event ends before it starts")
	}

	event.ID = id.New()
	if err := s.store.Events().Create(ctx, event); err != nil {
		return err
	}

	s.audit.RecordAction(ctx, model.AuditActionEventCreate, event.CreatedBy, event.CalendarID,
		model.AuditStatusSuccess, "event "+event.ID)
	return nil
}

// Get retrieves an event, redacted to scheduling fields when the viewer
// holds only the times-only permission on its calendar.
func (s *EventService) Get(ctx context.Context, viewerID, eventID string) (*model.Event, error) {
	event, err := s.store.Events().Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	full, err := s.viewerSeesDetails(ctx, viewerID, event.CalendarID)
	if err != nil {
		return nil, err
	}
	if !full {
		return event.TimesOnly(), nil
	}
	return event, nil
}

// ListForViewer lists a calendar's events, redacting each one to
// scheduling fields when the viewer holds only the times-only permission.
func (s *EventService) ListForViewer(ctx context.Context, viewerID, calendarID string, offset, limit int) (int64, []*model.Event, error) {
	total, events, err := s.store.Events().ListByCalendar(ctx, calendarID, offset, limit)
	if err != nil {
		return 0, nil, err
	}

	full, err := s.viewerSeesDetails(ctx, viewerID, calendarID)
	if err != nil {
		return 0, nil, err
	}
	if full {
		return total, events, nil
	}

	redacted := make([]*model.Event, len(events))
	for i, e := range events {
		redacted[i] = e.TimesOnly()
	}
	return total, redacted, nil
}

// Update updates an event's mutable fields.
func (s *EventService) Update(ctx context.Context, actorID string, event *model.Event) error {
	if event.EndsAt < event.StartsAt {
		return errors.ErrInvalidParam.WithMessage("event ends before it starts")
	}
	if err := s.store.Events().Update(ctx, event); err != nil {
		return err
	}
	s.audit.RecordAction(ctx, model.AuditActionEventUpdate, actorID, event.CalendarID,
		model.AuditStatusSuccess, "event "+event.ID)
	return nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, actorID, eventID string) error {
	event, err := s.store.Events().Get(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.store.Events().Delete(ctx, eventID); err != nil {
		return err
	}
	s.audit.RecordAction(ctx, model.AuditActionEventDelete, actorID, event.CalendarID,
		model.AuditStatusSuccess, "event "+eventID)
	return nil
}

// Comment adds a comment to an event.
func (s *EventService) Comment(ctx context.Context, comment *model.EventComment) error {
	if _, err := s.store.Events().Get(ctx, comment.EventID); err != nil {
		return err
	}
	comment.ID = id.New()
	return s.store.Events().CreateComment(ctx, comment)
}

// Comments lists an event's comments.
func (s *EventService) Comments(ctx context.Context, eventID string) ([]*model.EventComment, error) {
	if _, err := s.store.Events().Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.Events().ListComments(ctx, eventID)
}

// viewerSeesDetails reports whether the viewer's permission set on the
// calendar includes full view access. Only a set reduced to times-only
// triggers redaction; anything stronger shows details.
func (s *EventService) viewerSeesDetails(ctx context.Context, viewerID, calendarID string) (bool, error) {
	perms, err := s.perms.ListPermissions(ctx, viewerID, calendarID)
	if err != nil {
		if isMissingEntity(err) {
			return false, nil
		}
		return false, err
	}

	full := permission.Any(
		permission.ViewCalendar,
		permission.AddToCalendar,
		permission.ManageCalendar,
	)
	return permission.Evaluate(perms, full), nil
}
