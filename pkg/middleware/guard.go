package middleware

import (
	"bytes"
	"context"
	"io"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/calshare/pkg/permission"
	"github.com/kart-io/calshare/pkg/response"
)

// EvalRequest carries the resolved identity, target and requirement from
// the guard to the evaluator.
type EvalRequest struct {
	UserID      string
	CalendarID  string
	Requirement permission.Requirement

	// Action is the audit action name. Default "permission_check".
	Action string

	// LogAllowed / LogDenied override audit emission; nil means the
	// evaluator's default (log both outcomes).
	LogAllowed *bool
	LogDenied  *bool
}

// Evaluator is the permission evaluator contract consumed by the guard.
type Evaluator interface {
	EvaluateAccess(ctx context.Context, req EvalRequest) (bool, error)
}

// DeniedAuditor records a denial when the guard cannot reach an evaluator
// at all, so the audit trail exists on both paths.
type DeniedAuditor interface {
	RecordDenied(ctx context.Context, action, actorID, targetID, details string)
}

// GuardOptions configures the permission guard.
type GuardOptions struct {
	// Evaluator decides permission checks. A nil evaluator fails closed.
	Evaluator Evaluator

	// Fallback records denials when Evaluator is nil.
	Fallback DeniedAuditor

	// Action overrides the audit action name.
	Action string

	// LogAllowed / LogDenied control audit emission for this route.
	LogAllowed *bool
	LogDenied  *bool

	// CalendarParams are the path parameter names checked for the
	// calendar id, in order.
	CalendarParams []string

	// CalendarBodyKey is the JSON body field checked for the calendar id.
	CalendarBodyKey string

	// CalendarQueryKey is the query parameter checked for the calendar id.
	CalendarQueryKey string
}

// GuardOption is a functional option for the guard.
type GuardOption func(*GuardOptions)

// GuardWithEvaluator sets the evaluator.
func GuardWithEvaluator(e Evaluator) GuardOption {
	return func(o *GuardOptions) { o.Evaluator = e }
}

// GuardWithFallback sets the repository-less denial auditor.
func GuardWithFallback(a DeniedAuditor) GuardOption {
	return func(o *GuardOptions) { o.Fallback = a }
}

// GuardWithAction overrides the audit action name.
func GuardWithAction(action string) GuardOption {
	return func(o *GuardOptions) { o.Action = action }
}

// GuardWithLogAllowed controls audit emission for allowed checks.
func GuardWithLogAllowed(log bool) GuardOption {
	return func(o *GuardOptions) { o.LogAllowed = &log }
}

// GuardWithLogDenied controls audit emission for denied checks.
func GuardWithLogDenied(log bool) GuardOption {
	return func(o *GuardOptions) { o.LogDenied = &log }
}

// GuardWithCalendarParams sets the path parameter names for the calendar id.
func GuardWithCalendarParams(params ...string) GuardOption {
	return func(o *GuardOptions) { o.CalendarParams = params }
}

// Guard creates the permission enforcement middleware for a requirement.
// It resolves the current user from the request context and the calendar
// id from path parameters, then the JSON body, then query parameters
// (first non-empty wins), asks the evaluator for a decision and aborts
// with 403 {"error": "Permission denied"} unless the check passes. The
// requirement shape (anyOf/allOf) is opaque to the guard; it is handed to
// the evaluator untouched.
func Guard(requirement permission.Requirement, opts ...GuardOption) gin.HandlerFunc {
	options := &GuardOptions{
		CalendarParams:   []string{"calendar", "id"},
		CalendarBodyKey:  "calendar_id",
		CalendarQueryKey: "calendar_id",
	}
	for _, opt := range opts {
		opt(options)
	}

	return func(c *gin.Context) {
		userID := UserIDFromContext(c)
		calendarID := extractCalendarID(c, options)

		if options.Evaluator == nil {
			// No evaluator path reachable: fail closed with the same
			// observable denial and an audit record if possible.
			if options.Fallback != nil {
				actor := userID
				if actor == "" {
					actor = "anonymous"
				}
				target := calendarID
				if target == "" {
					target = "unknown"
				}
				action := options.Action
				if action == "" {
					action = "permission_check"
				}
				options.Fallback.RecordDenied(c.Request.Context(), action, actor, target,
					"Permission evaluator unavailable ("+permission.Describe(requirement)+")")
			}
			logger.Warnw("permission guard has no evaluator; denying",
				"path", c.FullPath(),
			)
			response.Denied(c)
			return
		}

		allowed, err := options.Evaluator.EvaluateAccess(c.Request.Context(), EvalRequest{
			UserID:      userID,
			CalendarID:  calendarID,
			Requirement: requirement,
			Action:      options.Action,
			LogAllowed:  options.LogAllowed,
			LogDenied:   options.LogDenied,
		})
		if err != nil {
			response.FailWithError(c, err)
			c.Abort()
			return
		}
		if !allowed {
			response.Denied(c)
			return
		}

		c.Next()
	}
}

// extractCalendarID resolves the calendar id with path > body > query
// precedence. The request body is restored after peeking so downstream
// handlers can still bind it.
func extractCalendarID(c *gin.Context, options *GuardOptions) string {
	for _, name := range options.CalendarParams {
		if v := c.Param(name); v != "" {
			return v
		}
	}

	if v := peekBodyField(c, options.CalendarBodyKey); v != "" {
		return v
	}

	return c.Query(options.CalendarQueryKey)
}

// maxBodyPeek bounds how much of a request body the guard buffers when
// looking for the calendar id. Bodies beyond the cap skip the peek.
const maxBodyPeek = 1 << 20

func peekBodyField(c *gin.Context, key string) string {
	if c.Request.Body == nil || key == "" {
		return ""
	}

	peeked, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyPeek+1))
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(peeked), c.Request.Body))
	if err != nil || len(peeked) == 0 || len(peeked) > maxBodyPeek {
		return ""
	}

	var fields map[string]any
	if err := sonic.Unmarshal(peeked, &fields); err != nil {
		return ""
	}
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}
