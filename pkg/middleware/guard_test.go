package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/calshare/pkg/permission"
	"github.com/kart-io/calshare/pkg/session"
)

type stubEvaluator struct {
	allow bool
	err   error
	got   EvalRequest
}

func (s *stubEvaluator) EvaluateAccess(_ context.Context, req EvalRequest) (bool, error) {
	s.got = req
	return s.allow, s.err
}

type stubDeniedAuditor struct {
	action, actor, target, details string
	called                         bool
}

func (s *stubDeniedAuditor) RecordDenied(_ context.Context, action, actorID, targetID, details string) {
	s.called = true
	s.action = action
	s.actor = actorID
	s.target = targetID
	s.details = details
}

func newGuardRouter(requirement permission.Requirement, userID string, opts ...GuardOption) (*gin.Engine, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if userID != "" {
		r.Use(func(c *gin.Context) {
			c.Set(IdentityKey, &session.Session{UserID: userID, Username: "alice"})
		})
	}
	guard := Guard(requirement, opts...)
	handler := func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	}
	r.GET("/calendars/:calendar/events", guard, handler)
	r.POST("/events", guard, handler)
	r.GET("/events", guard, handler)
	return r, httptest.NewRecorder()
}

func TestGuardAllowed(t *testing.T) {
	eval := &stubEvaluator{allow: true}
	req := permission.Any(permission.ViewCalendar)
	r, w := newGuardRouter(req, "user-1", GuardWithEvaluator(eval))

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendars/cal-1/events", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", eval.got.UserID)
	assert.Equal(t, "cal-1", eval.got.CalendarID)
	assert.Equal(t, req, eval.got.Requirement)
}

func TestGuardDenied(t *testing.T) {
	eval := &stubEvaluator{allow: false}
	r, w := newGuardRouter(permission.Any(permission.ManageCalendar), "user-1", GuardWithEvaluator(eval))

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendars/cal-1/events", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Permission denied"}`, w.Body.String())
}

func TestGuardAnonymousStillEvaluated(t *testing.T) {
	eval := &stubEvaluator{allow: false}
	r, w := newGuardRouter(permission.Any(permission.ViewCalendar), "", GuardWithEvaluator(eval))

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendars/cal-1/events", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, eval.got.UserID)
	assert.Equal(t, "cal-1", eval.got.CalendarID)
}

func TestGuardCalendarFromBody(t *testing.T) {
	eval := &stubEvaluator{allow: true}
	r, w := newGuardRouter(permission.Any(permission.AddToCalendar), "user-1", GuardWithEvaluator(eval))

	body := `{"calendar_id":"cal-9","title":"standup"}`
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cal-9", eval.got.CalendarID)
	// The handler must still see the full body after the guard peeked it.
	assert.Equal(t, body, w.Body.String())
}

func TestGuardOversizedBodySkipsPeek(t *testing.T) {
	eval := &stubEvaluator{allow: true}
	r, w := newGuardRouter(permission.Any(permission.AddToCalendar), "user-1", GuardWithEvaluator(eval))

	// Pad past the peek cap; the calendar id in the body must be ignored
	// in favor of the query, and the handler must still see every byte.
	body := `{"calendar_id":"cal-9","pad":"` + string(bytes.Repeat([]byte("x"), maxBodyPeek)) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/events?calendar_id=cal-7", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cal-7", eval.got.CalendarID)
	assert.Equal(t, len(body), w.Body.Len())
}

func TestGuardCalendarFromQuery(t *testing.T) {
	eval := &stubEvaluator{allow: true}
	r, w := newGuardRouter(permission.Any(permission.ViewCalendar), "user-1", GuardWithEvaluator(eval))

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events?calendar_id=cal-7", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cal-7", eval.got.CalendarID)
}

func TestGuardNoEvaluatorFailsClosed(t *testing.T) {
	auditor := &stubDeniedAuditor{}
	r, w := newGuardRouter(permission.Any(permission.ViewCalendar), "", GuardWithFallback(auditor))

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendars/cal-1/events", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Permission denied"}`, w.Body.String())
	require.True(t, auditor.called)
	assert.Equal(t, "permission_check", auditor.action)
	assert.Equal(t, "anonymous", auditor.actor)
	assert.Equal(t, "cal-1", auditor.target)
}
