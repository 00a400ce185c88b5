package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/calshare/internal/calshare/biz"
	"github.com/kart-io/calshare/internal/calshare/handler"
	"github.com/kart-io/calshare/internal/calshare/store"
	auditopts "github.com/kart-io/calshare/pkg/options/audit"
	"github.com/kart-io/calshare/pkg/session"
)

func newTestServer(t *testing.T) (*gin.Engine, *biz.AuditService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	factory := store.NewMemoryFactory()
	sessions := session.NewMemoryStore()

	audit, err := biz.NewAuditService(auditopts.NewOptions())
	require.NoError(t, err)
	t.Cleanup(audit.Close)

	perms := biz.NewPermissionService(factory, audit)
	auth := biz.NewAuthService(factory, sessions, audit, time.Hour)
	users := biz.NewUserService(factory)
	orgs := biz.NewOrganizationService(factory)
	calendars := biz.NewCalendarService(factory, audit)
	events := biz.NewEventService(factory, perms, audit)
	monitoring := biz.NewMonitoringService()

	engine := New(Deps{
		Sessions:      sessions,
		CookieName:    "calshare_session",
		Auth:          handler.NewAuthHandler(auth, "calshare_session"),
		Users:         handler.NewUserHandler(users),
		Organizations: handler.NewOrganizationHandler(orgs),
		Calendars:     handler.NewCalendarHandler(calendars, perms),
		Events:        handler.NewEventHandler(events),
		Audit:         handler.NewAuditHandler(audit),
		Monitoring:    handler.NewMonitoringHandler(monitoring),
		Evaluator:     perms,
		Auditor:       audit,
	})
	return engine, audit
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func registerAndLogin(t *testing.T, engine *gin.Engine, username string) (userID, token string) {
	t.Helper()

	w := doJSON(t, engine, http.MethodPost, "/v1/auth/register", "", gin.H{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reg envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	var user struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(reg.Data, &user))

	w = doJSON(t, engine, http.MethodPost, "/v1/auth/login", "", gin.H{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	var sess struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(login.Data, &sess))
	require.NotEmpty(t, sess.Token)

	return user.ID, sess.Token
}

func createCalendar(t *testing.T, engine *gin.Engine, token, name string) string {
	t.Helper()

	w := doJSON(t, engine, http.MethodPost, "/v1/calendars", token, gin.H{"name": name})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var calendar struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &calendar))
	return calendar.ID
}

func TestOwnerCanManageOwnCalendar(t *testing.T) {
	engine, _ := newTestServer(t)

	_, token := registerAndLogin(t, engine, "alice")
	calendarID := createCalendar(t, engine, token, "team")

	w := doJSON(t, engine, http.MethodGet, "/v1/calendars/"+calendarID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/v1/calendars/%s/events", calendarID), token, gin.H{
			"title":     "standup",
			"starts_at": 1000,
			"ends_at":   2000,
		})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestStrangerDeniedWithGenericBody(t *testing.T) {
	engine, audit := newTestServer(t)

	_, ownerToken := registerAndLogin(t, engine, "alice")
	calendarID := createCalendar(t, engine, ownerToken, "team")

	_, strangerToken := registerAndLogin(t, engine, "mallory")

	w := doJSON(t, engine, http.MethodGet, "/v1/calendars/"+calendarID, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Permission denied"}`, w.Body.String())

	_, denied := audit.List(context.Background(), biz.AuditFilter{Status: "denied"}, 0, 0)
	assert.NotEmpty(t, denied)
}

func TestAnonymousGuardedRequestDeniedAndAudited(t *testing.T) {
	engine, audit := newTestServer(t)

	_, ownerToken := registerAndLogin(t, engine, "alice")
	calendarID := createCalendar(t, engine, ownerToken, "team")

	w := doJSON(t, engine, http.MethodGet, "/v1/calendars/"+calendarID, "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Permission denied"}`, w.Body.String())

	_, denied := audit.List(context.Background(), biz.AuditFilter{ActorID: "anonymous", Status: "denied"}, 0, 0)
	assert.NotEmpty(t, denied)
}

func TestGrantedViewerCanReadButNotWrite(t *testing.T) {
	engine, _ := newTestServer(t)

	_, ownerToken := registerAndLogin(t, engine, "alice")
	calendarID := createCalendar(t, engine, ownerToken, "team")
	viewerID, viewerToken := registerAndLogin(t, engine, "bob")

	w := doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/v1/calendars/%s/grants", calendarID), ownerToken, gin.H{
			"user_id":     viewerID,
			"permissions": []string{"View Calendar"},
		})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodGet, "/v1/calendars/"+calendarID, viewerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/v1/calendars/%s/events", calendarID), viewerToken, gin.H{
			"title":     "intrusion",
			"starts_at": 1000,
			"ends_at":   2000,
		})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGrantRejectsUnknownPermission(t *testing.T) {
	engine, _ := newTestServer(t)

	_, ownerToken := registerAndLogin(t, engine, "alice")
	calendarID := createCalendar(t, engine, ownerToken, "team")
	granteeID, _ := registerAndLogin(t, engine, "bob")

	w := doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/v1/calendars/%s/grants", calendarID), ownerToken, gin.H{
			"user_id":     granteeID,
			"permissions": []string{"Rule the World"},
		})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterValidationDetails(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doJSON(t, engine, http.MethodPost, "/v1/auth/register", "", gin.H{
		"username": "x",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
	assert.Len(t, body.Details, 2)
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doJSON(t, engine, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
