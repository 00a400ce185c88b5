package store

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/cache"
	"github.com/kart-io/calshare/pkg/errors"
)

// memoryStore implements Factory in process memory. It backs tests and
// single-process deployments where no database is configured.
type memoryStore struct {
	users     *cache.Indexed[string, *model.User]
	orgs      *cache.Indexed[string, *model.Organization]
	members   *cache.Indexed[string, *model.OrgMember]
	calendars *cache.Indexed[string, *model.Calendar]
	events    *cache.Indexed[string, *model.Event]
	comments  *cache.Indexed[string, *model.EventComment]
	grants    *cache.Indexed[string, *model.PermissionGrant]

	memberSeq atomic.Uint64

	auditMu sync.Mutex
	audits  []*model.AuditEntry
}

// NewMemoryFactory creates the in-memory store factory.
func NewMemoryFactory() Factory {
	ms := &memoryStore{
		users:     cache.NewIndexed[string, *model.User](),
		orgs:      cache.NewIndexed[string, *model.Organization](),
		members:   cache.NewIndexed[string, *model.OrgMember](),
		calendars: cache.NewIndexed[string, *model.Calendar](),
		events:    cache.NewIndexed[string, *model.Event](),
		comments:  cache.NewIndexed[string, *model.EventComment](),
		grants:    cache.NewIndexed[string, *model.PermissionGrant](),
	}

	ms.users.AddIndex("username", func(u *model.User) any { return u.Username })
	ms.orgs.AddIndex("slug", func(o *model.Organization) any { return o.Slug })
	ms.members.AddIndex("org", func(m *model.OrgMember) any { return m.OrgID })
	ms.calendars.AddIndex("owner", func(c *model.Calendar) any { return c.OwnerID })
	ms.events.AddIndex("calendar", func(e *model.Event) any { return e.CalendarID })
	ms.comments.AddIndex("event", func(c *model.EventComment) any { return c.EventID })
	ms.grants.AddIndex("user", func(g *model.PermissionGrant) any { return g.UserID })
	ms.grants.AddIndex("calendar", func(g *model.PermissionGrant) any { return g.CalendarID })

	return ms
}

func (ms *memoryStore) Users() UserStore                 { return (*memoryUsers)(ms) }
func (ms *memoryStore) Organizations() OrganizationStore { return (*memoryOrgs)(ms) }
func (ms *memoryStore) Calendars() CalendarStore         { return (*memoryCalendars)(ms) }
func (ms *memoryStore) Events() EventStore               { return (*memoryEvents)(ms) }
func (ms *memoryStore) Grants() GrantStore               { return (*memoryGrants)(ms) }
func (ms *memoryStore) Audits() AuditStore               { return (*memoryAudits)(ms) }

// AutoMigrate is a no-op for the in-memory factory.
func (ms *memoryStore) AutoMigrate() error { return nil }

// Close is a no-op for the in-memory factory.
func (ms *memoryStore) Close() error { return nil }

func stamp(created, updated *int64) {
	now := time.Now().UnixMilli()
	if created != nil && *created == 0 {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

type memoryUsers memoryStore

func (m *memoryUsers) Create(_ context.Context, user *model.User) error {
	if dup, _ := m.users.Find("username", user.Username); len(dup) > 0 {
		return errors.ErrAlreadyExists.WithMessage("username or email already exists")
	}
	if user.Email != nil {
		email := *user.Email
		conflict := m.users.Filter(func(u *model.User) bool {
			return u.Email != nil && *u.Email == email
		})
		if len(conflict) > 0 {
			return errors.ErrAlreadyExists.WithMessage("username or email already exists")
		}
	}
	stamp(&user.CreatedAt, &user.UpdatedAt)
	m.users.Set(user.ID, user)
	return nil
}

func (m *memoryUsers) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users.Get(user.ID); !ok {
		return errors.ErrUserNotFound
	}
	stamp(nil, &user.UpdatedAt)
	m.users.Set(user.ID, user)
	return nil
}

func (m *memoryUsers) Delete(_ context.Context, id string) error {
	if _, ok := m.users.Get(id); !ok {
		return errors.ErrUserNotFound
	}
	m.users.Del(id)
	return nil
}

func (m *memoryUsers) Get(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users.Get(id)
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	found, _ := m.users.Find("username", username)
	if len(found) == 0 {
		return nil, errors.ErrUserNotFound
	}
	return found[0], nil
}

func (m *memoryUsers) List(_ context.Context, offset, limit int) (int64, []*model.User, error) {
	all := m.users.Values()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })
	return int64(len(all)), page(all, offset, limit), nil
}

type memoryOrgs memoryStore

func (m *memoryOrgs) Create(_ context.Context, org *model.Organization) error {
	if dup, _ := m.orgs.Find("slug", org.Slug); len(dup) > 0 {
		return errors.ErrAlreadyExists.WithMessage("organization slug already exists")
	}
	stamp(&org.CreatedAt, &org.UpdatedAt)
	m.orgs.Set(org.ID, org)
	return nil
}

func (m *memoryOrgs) Update(_ context.Context, org *model.Organization) error {
	if _, ok := m.orgs.Get(org.ID); !ok {
		return errors.ErrOrganizationNotFound
	}
	stamp(nil, &org.UpdatedAt)
	m.orgs.Set(org.ID, org)
	return nil
}

func (m *memoryOrgs) Delete(_ context.Context, id string) error {
	if _, ok := m.orgs.Get(id); !ok {
		return errors.ErrOrganizationNotFound
	}
	m.orgs.Del(id)
	return nil
}

func (m *memoryOrgs) Get(_ context.Context, id string) (*model.Organization, error) {
	o, ok := m.orgs.Get(id)
	if !ok {
		return nil, errors.ErrOrganizationNotFound
	}
	return o, nil
}

func (m *memoryOrgs) GetBySlug(_ context.Context, slug string) (*model.Organization, error) {
	found, _ := m.orgs.Find("slug", slug)
	if len(found) == 0 {
		return nil, errors.ErrOrganizationNotFound
	}
	return found[0], nil
}

func (m *memoryOrgs) List(_ context.Context, offset, limit int) (int64, []*model.Organization, error) {
	all := m.orgs.Values()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })
	return int64(len(all)), page(all, offset, limit), nil
}

func memberKey(orgID, userID string) string { return orgID + "/" + userID }

func (m *memoryOrgs) AddMember(_ context.Context, member *model.OrgMember) error {
	key := memberKey(member.OrgID, member.UserID)
	if _, ok := m.members.Get(key); ok {
		return errors.ErrAlreadyExists.WithMessage("user is already a member")
	}
	member.ID = (*memoryStore)(m).memberSeq.Add(1)
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().UnixMilli()
	}
	m.members.Set(key, member)
	return nil
}

func (m *memoryOrgs) RemoveMember(_ context.Context, orgID, userID string) error {
	key := memberKey(orgID, userID)
	if _, ok := m.members.Get(key); !ok {
		return errors.ErrNotFound.WithMessage("membership not found")
	}
	m.members.Del(key)
	return nil
}

func (m *memoryOrgs) ListMembers(_ context.Context, orgID string) ([]*model.OrgMember, error) {
	found, _ := m.members.Find("org", orgID)
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt < found[j].CreatedAt })
	return found, nil
}

func (m *memoryOrgs) IsMember(_ context.Context, orgID, userID string) (bool, error) {
	_, ok := m.members.Get(memberKey(orgID, userID))
	return ok, nil
}

type memoryCalendars memoryStore

func (m *memoryCalendars) Create(_ context.Context, calendar *model.Calendar) error {
	stamp(&calendar.CreatedAt, &calendar.UpdatedAt)
	m.calendars.Set(calendar.ID, calendar)
	return nil
}

func (m *memoryCalendars) Update(_ context.Context, calendar *model.Calendar) error {
	if _, ok := m.calendars.Get(calendar.ID); !ok {
		return errors.ErrCalendarNotFound
	}
	stamp(nil, &calendar.UpdatedAt)
	m.calendars.Set(calendar.ID, calendar)
	return nil
}

func (m *memoryCalendars) Delete(_ context.Context, id string) error {
	if _, ok := m.calendars.Get(id); !ok {
		return errors.ErrCalendarNotFound
	}
	m.calendars.Del(id)
	return nil
}

func (m *memoryCalendars) Get(_ context.Context, id string) (*model.Calendar, error) {
	c, ok := m.calendars.Get(id)
	if !ok {
		return nil, errors.ErrCalendarNotFound
	}
	return c, nil
}

func (m *memoryCalendars) List(_ context.Context, offset, limit int) (int64, []*model.Calendar, error) {
	all := m.calendars.Values()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })
	return int64(len(all)), page(all, offset, limit), nil
}

func (m *memoryCalendars) ListByOwner(_ context.Context, ownerID string) ([]*model.Calendar, error) {
	found, _ := m.calendars.Find("owner", ownerID)
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt > found[j].CreatedAt })
	return found, nil
}

type memoryEvents memoryStore

func (m *memoryEvents) Create(_ context.Context, event *model.Event) error {
	stamp(&event.CreatedAt, &event.UpdatedAt)
	m.events.Set(event.ID, event)
	return nil
}

func (m *memoryEvents) Update(_ context.Context, event *model.Event) error {
	if _, ok := m.events.Get(event.ID); !ok {
		return errors.ErrEventNotFound
	}
	stamp(nil, &event.UpdatedAt)
	m.events.Set(event.ID, event)
	return nil
}

func (m *memoryEvents) Delete(_ context.Context, id string) error {
	if _, ok := m.events.Get(id); !ok {
		return errors.ErrEventNotFound
	}
	m.events.Del(id)
	return nil
}

func (m *memoryEvents) Get(_ context.Context, id string) (*model.Event, error) {
	e, ok := m.events.Get(id)
	if !ok {
		return nil, errors.ErrEventNotFound
	}
	return e, nil
}

func (m *memoryEvents) ListByCalendar(_ context.Context, calendarID string, offset, limit int) (int64, []*model.Event, error) {
	found, _ := m.events.Find("calendar", calendarID)
	sort.Slice(found, func(i, j int) bool { return found[i].StartsAt < found[j].StartsAt })
	return int64(len(found)), page(found, offset, limit), nil
}

func (m *memoryEvents) CreateComment(_ context.Context, comment *model.EventComment) error {
	if comment.CreatedAt == 0 {
		comment.CreatedAt = time.Now().UnixMilli()
	}
	m.comments.Set(comment.ID, comment)
	return nil
}

func (m *memoryEvents) ListComments(_ context.Context, eventID string) ([]*model.EventComment, error) {
	found, _ := m.comments.Find("event", eventID)
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt < found[j].CreatedAt })
	return found, nil
}

type memoryGrants memoryStore

func grantKey(userID, calendarID string) string { return userID + "/" + calendarID }

func (m *memoryGrants) Upsert(_ context.Context, grant *model.PermissionGrant) error {
	key := grantKey(grant.UserID, grant.CalendarID)
	if existing, ok := m.grants.Get(key); ok {
		grant.ID = existing.ID
		grant.CreatedAt = existing.CreatedAt
	}
	stamp(&grant.CreatedAt, &grant.UpdatedAt)
	m.grants.Set(key, grant)
	return nil
}

func (m *memoryGrants) Revoke(_ context.Context, userID, calendarID string) error {
	key := grantKey(userID, calendarID)
	if _, ok := m.grants.Get(key); !ok {
		return errors.ErrGrantNotFound
	}
	m.grants.Del(key)
	return nil
}

func (m *memoryGrants) ListForPair(_ context.Context, userID, calendarID string) ([]*model.PermissionGrant, error) {
	if g, ok := m.grants.Get(grantKey(userID, calendarID)); ok {
		return []*model.PermissionGrant{g}, nil
	}
	return nil, nil
}

func (m *memoryGrants) ListByCalendar(_ context.Context, calendarID string) ([]*model.PermissionGrant, error) {
	found, _ := m.grants.Find("calendar", calendarID)
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt < found[j].CreatedAt })
	return found, nil
}

func (m *memoryGrants) ListByUser(_ context.Context, userID string) ([]*model.PermissionGrant, error) {
	found, _ := m.grants.Find("user", userID)
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt < found[j].CreatedAt })
	return found, nil
}

type memoryAudits memoryStore

func (m *memoryAudits) Persist(_ context.Context, entry *model.AuditEntry) error {
	ms := (*memoryStore)(m)
	ms.auditMu.Lock()
	defer ms.auditMu.Unlock()
	ms.audits = append(ms.audits, entry)
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
