package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/calshare/internal/calshare/store"
	"github.com/kart-io/calshare/internal/model"
	auditopts "github.com/kart-io/calshare/pkg/options/audit"
	"github.com/kart-io/calshare/pkg/permission"
)

func newTestEnv(t *testing.T) (store.Factory, *AuditService, *PermissionService) {
	t.Helper()

	factory := store.NewMemoryFactory()
	audit, err := NewAuditService(auditopts.NewOptions())
	require.NoError(t, err)
	t.Cleanup(audit.Close)

	return factory, audit, NewPermissionService(factory, audit)
}

func seedUserCalendarGrant(t *testing.T, factory store.Factory, perms ...permission.Permission) (userID, calendarID string) {
	t.Helper()
	ctx := context.Background()

	user := &model.User{ID: "u1", Username: "alice", Password: "x"}
	require.NoError(t, factory.Users().Create(ctx, user))

	calendar := &model.Calendar{ID: "c1", Name: "team", OwnerID: user.ID}
	require.NoError(t, factory.Calendars().Create(ctx, calendar))

	if len(perms) > 0 {
		require.NoError(t, factory.Grants().Upsert(ctx, &model.PermissionGrant{
			ID:          "g1",
			UserID:      user.ID,
			CalendarID:  calendar.ID,
			Permissions: model.PermissionList(perms),
			GrantedBy:   user.ID,
		}))
	}
	return user.ID, calendar.ID
}

func TestEvaluateDeniedMissingPermission(t *testing.T) {
	factory, audit, svc := newTestEnv(t)
	userID, calendarID := seedUserCalendarGrant(t, factory, permission.ViewCalendar)

	d, err := svc.Evaluate(context.Background(), CheckInput{
		UserID:      userID,
		CalendarID:  calendarID,
		Requirement: permission.Any(permission.ManageCalendar),
	})
	require.NoError(t, err)

	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonMissingPermission, d.Reason)
	assert.Equal(t, []permission.Permission{permission.ViewCalendar}, d.Permissions)

	_, entries := audit.List(context.Background(), AuditFilter{Status: model.AuditStatusDenied}, 0, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AuditActionPermissionCheck, entries[0].Action)
	assert.Equal(t, userID, entries[0].ActorID)
	assert.Equal(t, calendarID, entries[0].TargetID)
	assert.Contains(t, entries[0].Details, "Missing permission")
}

func TestEvaluateAllowedAnyOf(t *testing.T) {
	factory, _, svc := newTestEnv(t)
	userID, calendarID := seedUserCalendarGrant(t, factory, permission.ViewCalendar)

	d, err := svc.Evaluate(context.Background(), CheckInput{
		UserID:      userID,
		CalendarID:  calendarID,
		Requirement: permission.Any(permission.ViewCalendar, permission.ManageCalendar),
	})
	require.NoError(t, err)

	assert.True(t, d.Allowed)
	assert.Equal(t, ReasonAllowed, d.Reason)
}

func TestEvaluateMissingUserShortCircuits(t *testing.T) {
	factory, audit, svc := newTestEnv(t)
	_, calendarID := seedUserCalendarGrant(t, factory, permission.ViewCalendar)

	d, err := svc.Evaluate(context.Background(), CheckInput{
		UserID:      "",
		CalendarID:  calendarID,
		Requirement: permission.Any(permission.ViewCalendar),
	})
	require.NoError(t, err)

	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonMissingEntity, d.Reason)
	assert.Empty(t, d.Permissions)

	_, entries := audit.List(context.Background(), AuditFilter{Status: model.AuditStatusDenied}, 0, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AuditActorAnonymous, entries[0].ActorID)
}

func TestEvaluateUnknownCalendarDenies(t *testing.T) {
	factory, _, svc := newTestEnv(t)
	userID, _ := seedUserCalendarGrant(t, factory, permission.ViewCalendar)

	d, err := svc.Evaluate(context.Background(), CheckInput{
		UserID:      userID,
		CalendarID:  "no-such-calendar",
		Requirement: permission.Any(permission.ViewCalendar),
	})
	require.NoError(t, err)

	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonMissingEntity, d.Reason)
}

func TestEvaluateUnspecifiedRequirementFailsClosed(t *testing.T) {
	factory, _, svc := newTestEnv(t)
	userID, calendarID := seedUserCalendarGrant(t, factory, permission.All()...)

	d, err := svc.Evaluate(context.Background(), CheckInput{
		UserID:     userID,
		CalendarID: calendarID,
	})
	require.NoError(t, err)

	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonMissingPermission, d.Reason)
}

func TestEvaluateIdempotent(t *testing.T) {
	factory, _, svc := newTestEnv(t)
	userID, calendarID := seedUserCalendarGrant(t, factory, permission.AddToCalendar)

	in := CheckInput{
		UserID:      userID,
		CalendarID:  calendarID,
		Requirement: permission.Any(permission.AddToCalendar),
	}

	first, err := svc.Evaluate(context.Background(), in)
	require.NoError(t, err)
	second, err := svc.Evaluate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.Allowed, second.Allowed)
	assert.Equal(t, first.Reason, second.Reason)
}

func TestEvaluateSuppressedLogging(t *testing.T) {
	factory, audit, svc := newTestEnv(t)
	userID, calendarID := seedUserCalendarGrant(t, factory, permission.ViewCalendar)

	off := false
	_, err := svc.Evaluate(context.Background(), CheckInput{
		UserID:      userID,
		CalendarID:  calendarID,
		Requirement: permission.Any(permission.ViewCalendar),
		LogAllowed:  &off,
	})
	require.NoError(t, err)

	assert.Zero(t, audit.Len())
}

func TestEvaluateWithoutRepositoryDenies(t *testing.T) {
	audit, err := NewAuditService(auditopts.NewOptions())
	require.NoError(t, err)
	t.Cleanup(audit.Close)

	svc := NewPermissionService(nil, audit)

	perms, err := svc.ListPermissions(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Empty(t, perms)

	d, err := svc.Evaluate(context.Background(), CheckInput{
		UserID:      "u1",
		CalendarID:  "c1",
		Requirement: permission.Any(permission.ViewCalendar),
	})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonMissingPermission, d.Reason)
}

func TestListPermissionsUnionsDuplicateGrants(t *testing.T) {
	factory, _, svc := newTestEnv(t)
	userID, calendarID := seedUserCalendarGrant(t, factory, permission.ViewCalendar)

	// A second grant for the same pair must be unioned, not rejected.
	require.NoError(t, factory.Grants().Upsert(context.Background(), &model.PermissionGrant{
		ID:          "g2",
		UserID:      userID,
		CalendarID:  calendarID,
		Permissions: model.PermissionList{permission.ViewCalendar, permission.CommentOnCalendar},
		GrantedBy:   userID,
	}))

	perms, err := svc.ListPermissions(context.Background(), userID, calendarID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []permission.Permission{
		permission.ViewCalendar,
		permission.CommentOnCalendar,
	}, perms)
}
