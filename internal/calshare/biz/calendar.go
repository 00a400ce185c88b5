package biz

import (
	"context"

	"github.com/kart-io/calshare/internal/calshare/store"
	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
	"github.com/kart-io/calshare/pkg/permission"
	"github.com/kart-io/calshare/pkg/utils/id"
)

// CalendarService handles calendar and grant business logic.
type CalendarService struct {
	store store.Factory
	audit *AuditService
}

// NewCalendarService creates the calendar service.
func NewCalendarService(factory store.Factory, audit *AuditService) *CalendarService {
	return &CalendarService{store: factory, audit: audit}
}

// Create creates a calendar and grants the owner the full permission set
// so a fresh calendar is immediately manageable by its creator.
func (s *CalendarService) Create(ctx context.Context, calendar *model.Calendar) error {
	if _, err := s.store.Users().Get(ctx, calendar.OwnerID); err != nil {
		return err
	}
	if calendar.OrgID != nil {
		if _, err := s.store.Organizations().Get(ctx, *calendar.OrgID); err != nil {
			return err
		}
	}

	calendar.ID = id.New()
	if err := s.store.Calendars().Create(ctx, calendar); err != nil {
		return err
	}

	ownerGrant := &model.PermissionGrant{
		ID:          id.New(),
		UserID:      calendar.OwnerID,
		CalendarID:  calendar.ID,
		Permissions: model.PermissionList(permission.All()),
		GrantedBy:   calendar.OwnerID,
	}
	if err := s.store.Grants().Upsert(ctx, ownerGrant); err != nil {
		return err
	}

	s.audit.RecordAction(ctx, model.AuditActionCalendarCreate, calendar.OwnerID, calendar.ID,
		model.AuditStatusSuccess, "created "+calendar.Name)
	return nil
}

// Get retrieves a calendar by id.
func (s *CalendarService) Get(ctx context.Context, calendarID string) (*model.Calendar, error) {
	return s.store.Calendars().Get(ctx, calendarID)
}

// List lists calendars with pagination.
func (s *CalendarService) List(ctx context.Context, offset, limit int) (int64, []*model.Calendar, error) {
	return s.store.Calendars().List(ctx, offset, limit)
}

// ListByOwner lists the calendars owned by a user.
func (s *CalendarService) ListByOwner(ctx context.Context, ownerID string) ([]*model.Calendar, error) {
	return s.store.Calendars().ListByOwner(ctx, ownerID)
}

// Update updates a calendar's mutable fields.
func (s *CalendarService) Update(ctx context.Context, actorID string, calendar *model.Calendar) error {
	if err := s.store.Calendars().Update(ctx, calendar); err != nil {
		return err
	}
	s.audit.RecordAction(ctx, model.AuditActionCalendarUpdate, actorID, calendar.ID,
		model.AuditStatusSuccess, "")
	return nil
}

// Delete removes a calendar.
func (s *CalendarService) Delete(ctx context.Context, actorID, calendarID string) error {
	if err := s.store.Calendars().Delete(ctx, calendarID); err != nil {
		return err
	}
	s.audit.RecordAction(ctx, model.AuditActionCalendarDelete, actorID, calendarID,
		model.AuditStatusSuccess, "")
	return nil
}

// GrantView is the presentational shape of a grant: the raw set plus its
// access-level roll-up.
type GrantView struct {
	Grant       *model.PermissionGrant `json:"grant"`
	AccessLevel model.AccessLevel      `json:"access_level"`
}

// UpsertGrant creates or replaces the grant for a (user, calendar) pair.
// Every label must belong to the permission vocabulary; both entities
// must exist.
func (s *CalendarService) UpsertGrant(ctx context.Context, grantedBy, userID, calendarID string, perms []permission.Permission) (*model.PermissionGrant, error) {
	for _, p := range perms {
		if !permission.Valid(p) {
			return nil, errors.ErrUnknownPermission.WithMessagef("unknown permission %q", p)
		}
	}
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.store.Calendars().Get(ctx, calendarID); err != nil {
		return nil, err
	}

	grant := &model.PermissionGrant{
		ID:          id.New(),
		UserID:      userID,
		CalendarID:  calendarID,
		Permissions: model.PermissionList(permission.Union(perms)),
		GrantedBy:   grantedBy,
	}
	if err := s.store.Grants().Upsert(ctx, grant); err != nil {
		return nil, err
	}

	s.audit.RecordAction(ctx, model.AuditActionGrantUpsert, grantedBy, calendarID,
		model.AuditStatusSuccess, "grantee "+userID)
	return grant, nil
}

// RevokeGrant removes the grant for a (user, calendar) pair.
func (s *CalendarService) RevokeGrant(ctx context.Context, revokedBy, userID, calendarID string) error {
	if err := s.store.Grants().Revoke(ctx, userID, calendarID); err != nil {
		return err
	}
	s.audit.RecordAction(ctx, model.AuditActionGrantRevoke, revokedBy, calendarID,
		model.AuditStatusSuccess, "grantee "+userID)
	return nil
}

// ListGrants lists every grant on a calendar with access levels.
func (s *CalendarService) ListGrants(ctx context.Context, calendarID string) ([]*GrantView, error) {
	if _, err := s.store.Calendars().Get(ctx, calendarID); err != nil {
		return nil, err
	}
	grants, err := s.store.Grants().ListByCalendar(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	views := make([]*GrantView, len(grants))
	for i, g := range grants {
		views[i] = &GrantView{
			Grant:       g,
			AccessLevel: model.AccessLevelFor(g.Permissions),
		}
	}
	return views, nil
}
