// Package store defines the persistence interfaces and their GORM-backed
// implementation.
package store

import (
	"context"

	"github.com/kart-io/calshare/internal/model"
)

// Factory creates the entity stores over a shared connection.
type Factory interface {
	Users() UserStore
	Organizations() OrganizationStore
	Calendars() CalendarStore
	Events() EventStore
	Grants() GrantStore
	Audits() AuditStore
	AutoMigrate() error
	Close() error
}

// UserStore defines user storage.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.User, error)
}

// OrganizationStore defines organization and membership storage.
type OrganizationStore interface {
	Create(ctx context.Context, org *model.Organization) error
	Update(ctx context.Context, org *model.Organization) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*model.Organization, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.Organization, error)
	AddMember(ctx context.Context, member *model.OrgMember) error
	RemoveMember(ctx context.Context, orgID, userID string) error
	ListMembers(ctx context.Context, orgID string) ([]*model.OrgMember, error)
	IsMember(ctx context.Context, orgID, userID string) (bool, error)
}

// CalendarStore defines calendar storage.
type CalendarStore interface {
	Create(ctx context.Context, calendar *model.Calendar) error
	Update(ctx context.Context, calendar *model.Calendar) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Calendar, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.Calendar, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Calendar, error)
}

// EventStore defines event and comment storage.
type EventStore interface {
	Create(ctx context.Context, event *model.Event) error
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Event, error)
	ListByCalendar(ctx context.Context, calendarID string, offset, limit int) (int64, []*model.Event, error)
	CreateComment(ctx context.Context, comment *model.EventComment) error
	ListComments(ctx context.Context, eventID string) ([]*model.EventComment, error)
}

// GrantStore defines permission grant storage.
type GrantStore interface {
	Upsert(ctx context.Context, grant *model.PermissionGrant) error
	Revoke(ctx context.Context, userID, calendarID string) error
	// ListForPair returns every grant row for a (user, calendar) pair.
	// Duplicates are possible; callers union the permission sets.
	ListForPair(ctx context.Context, userID, calendarID string) ([]*model.PermissionGrant, error)
	ListByCalendar(ctx context.Context, calendarID string) ([]*model.PermissionGrant, error)
	ListByUser(ctx context.Context, userID string) ([]*model.PermissionGrant, error)
}

// AuditStore persists audit entries. The in-memory audit log is the
// source of truth; persistence is a best-effort secondary sink.
type AuditStore interface {
	Persist(ctx context.Context, entry *model.AuditEntry) error
}
