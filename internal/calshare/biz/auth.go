package biz

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kart-io/calshare/internal/calshare/store"
	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
	"github.com/kart-io/calshare/pkg/session"
	"github.com/kart-io/calshare/pkg/utils/id"
)

// AuthService handles registration, login and logout.
type AuthService struct {
	store    store.Factory
	sessions session.Store
	audit    *AuditService
	ttl      time.Duration
}

// NewAuthService creates the auth service.
func NewAuthService(factory store.Factory, sessions session.Store, audit *AuditService, ttl time.Duration) *AuthService {
	return &AuthService{
		store:    factory,
		sessions: sessions,
		audit:    audit,
		ttl:      ttl,
	}
}

// Register creates a user with a hashed password and records the outcome.
func (s *AuthService) Register(ctx context.Context, user *model.User) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.ErrInternal.WithCause(err)
	}
	user.ID = id.New()
	user.Password = string(hashed)

	if err := s.store.Users().Create(ctx, user); err != nil {
		s.audit.RecordAction(ctx, model.AuditActionRegister, "", user.Username,
			model.AuditStatusFailure, err.Error())
		return err
	}

	s.audit.RecordAction(ctx, model.AuditActionRegister, user.ID, user.ID,
		model.AuditStatusSuccess, "registered "+user.Username)
	return nil
}

// Login checks the credentials and mints a session. Failed credential
// checks are indistinguishable for unknown users and wrong passwords.
func (s *AuthService) Login(ctx context.Context, username, password string) (*session.Session, error) {
	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		s.audit.RecordAction(ctx, model.AuditActionLogin, "", username,
			model.AuditStatusFailure, "unknown username")
		if errors.ErrUserNotFound.Is(err) {
			return nil, errors.ErrPasswordMismatch
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.audit.RecordAction(ctx, model.AuditActionLogin, user.ID, user.ID,
			model.AuditStatusFailure, "password mismatch")
		return nil, errors.ErrPasswordMismatch
	}

	sess, err := s.sessions.Create(ctx, user.ID, user.Username, s.ttl)
	if err != nil {
		return nil, errors.ErrSessionStore.WithCause(err)
	}

	s.audit.RecordAction(ctx, model.AuditActionLogin, user.ID, user.ID,
		model.AuditStatusSuccess, "")
	return sess, nil
}

// Logout removes the session. Logging out an absent token is not an
// error.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sess.Token); err != nil {
		return errors.ErrSessionStore.WithCause(err)
	}
	s.audit.RecordAction(ctx, model.AuditActionLogout, sess.UserID, sess.UserID,
		model.AuditStatusSuccess, "")
	return nil
}

// Me returns the profile behind a session.
func (s *AuthService) Me(ctx context.Context, sess *session.Session) (*model.User, error) {
	return s.store.Users().Get(ctx, sess.UserID)
}
