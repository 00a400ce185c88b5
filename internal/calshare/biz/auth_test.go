package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
	"github.com/kart-io/calshare/pkg/session"
)

func newAuthEnv(t *testing.T) (*AuthService, *AuditService) {
	t.Helper()

	factory, audit, _ := newTestEnv(t)
	sessions := session.NewMemoryStore()
	return NewAuthService(factory, sessions, audit, time.Hour), audit
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _ := newAuthEnv(t)
	ctx := context.Background()

	user := &model.User{Username: "alice", Password: "s3cret"}
	require.NoError(t, svc.Register(ctx, user))

	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "s3cret", user.Password)
}

func TestLoginSuccessMintsSession(t *testing.T) {
	svc, audit := newAuthEnv(t)
	ctx := context.Background()

	user := &model.User{Username: "alice", Password: "s3cret"}
	require.NoError(t, svc.Register(ctx, user))

	sess, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, "alice", sess.Username)

	_, entries := audit.List(ctx, AuditFilter{Action: model.AuditActionLogin, Status: model.AuditStatusSuccess}, 0, 0)
	assert.Len(t, entries, 1)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, audit := newAuthEnv(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, &model.User{Username: "alice", Password: "s3cret"}))

	_, err := svc.Login(ctx, "alice", "wrong")
	require.Error(t, err)
	assert.True(t, errors.ErrPasswordMismatch.Is(err))

	_, entries := audit.List(ctx, AuditFilter{Action: model.AuditActionLogin, Status: model.AuditStatusFailure}, 0, 0)
	assert.Len(t, entries, 1)
}

func TestLoginUnknownUserIndistinguishable(t *testing.T) {
	svc, _ := newAuthEnv(t)

	_, err := svc.Login(context.Background(), "nobody", "whatever")
	require.Error(t, err)
	assert.True(t, errors.ErrPasswordMismatch.Is(err))
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, _ := newAuthEnv(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, &model.User{Username: "alice", Password: "s3cret"}))
	sess, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess))
	_, err = svc.sessions.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, session.ErrNotFound)
}
