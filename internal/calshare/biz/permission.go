package biz

import (
	"context"
	stderrors "errors"

	"github.com/kart-io/calshare/internal/calshare/store"
	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
	"github.com/kart-io/calshare/pkg/middleware"
	"github.com/kart-io/calshare/pkg/permission"
)

// Decision reasons surfaced through the audit trail.
const (
	ReasonAllowed           = "allowed"
	ReasonMissingPermission = "missing permission"
	ReasonMissingEntity     = "Missing user or calendar"
)

// CheckInput describes one permission check.
type CheckInput struct {
	UserID      string
	CalendarID  string
	Requirement permission.Requirement

	// ActorID / TargetID override the audited actor and target; empty
	// falls back to UserID / CalendarID, then the service defaults.
	ActorID  string
	TargetID string

	// Action overrides the audit action name; empty means permission_check.
	Action string

	// Details is appended to the audit entry details.
	Details string

	// LogAllowed / LogDenied suppress audit emission per outcome when set
	// to false. Nil logs both outcomes.
	LogAllowed *bool
	LogDenied  *bool
}

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed     bool
	Permissions []permission.Permission
	Reason      string
}

// PermissionService evaluates permission checks against stored grants and
// records every outcome in the audit log.
type PermissionService struct {
	store store.Factory
	audit *AuditService
}

// NewPermissionService creates the permission service.
func NewPermissionService(factory store.Factory, audit *AuditService) *PermissionService {
	return &PermissionService{store: factory, audit: audit}
}

// ListPermissions returns the effective permission set for a (user,
// calendar) pair: the union over every grant row for the pair. Empty ids
// and a missing backing store yield an empty set; ids naming entities
// that do not exist are an error.
func (s *PermissionService) ListPermissions(ctx context.Context, userID, calendarID string) ([]permission.Permission, error) {
	if s.store == nil || userID == "" || calendarID == "" {
		return nil, nil
	}
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.store.Calendars().Get(ctx, calendarID); err != nil {
		return nil, err
	}

	grants, err := s.store.Grants().ListForPair(ctx, userID, calendarID)
	if err != nil {
		return nil, err
	}

	sets := make([][]permission.Permission, 0, len(grants))
	for _, g := range grants {
		sets = append(sets, []permission.Permission(g.Permissions))
	}
	return permission.Union(sets...), nil
}

// Evaluate runs one permission check. A missing user or calendar, in the
// request or in storage, short-circuits to a denial with the reason
// "Missing user or calendar"; an unspecified requirement always denies.
// The outcome is audited unless suppressed by the input. Store failures
// are returned to the caller, which must fail closed.
func (s *PermissionService) Evaluate(ctx context.Context, in CheckInput) (Decision, error) {
	decision, err := s.decide(ctx, in)
	if err != nil {
		return Decision{}, err
	}

	s.auditDecision(ctx, in, decision)
	return decision, nil
}

func (s *PermissionService) decide(ctx context.Context, in CheckInput) (Decision, error) {
	if in.UserID == "" || in.CalendarID == "" {
		return Decision{Allowed: false, Reason: ReasonMissingEntity}, nil
	}

	perms, err := s.ListPermissions(ctx, in.UserID, in.CalendarID)
	if err != nil {
		if isMissingEntity(err) {
			return Decision{Allowed: false, Reason: ReasonMissingEntity}, nil
		}
		return Decision{}, err
	}

	if permission.Evaluate(perms, in.Requirement) {
		return Decision{Allowed: true, Permissions: perms, Reason: ReasonAllowed}, nil
	}
	return Decision{Allowed: false, Permissions: perms, Reason: ReasonMissingPermission}, nil
}

func (s *PermissionService) auditDecision(ctx context.Context, in CheckInput, d Decision) {
	if d.Allowed && in.LogAllowed != nil && !*in.LogAllowed {
		return
	}
	if !d.Allowed && in.LogDenied != nil && !*in.LogDenied {
		return
	}

	action := in.Action
	if action == "" {
		action = model.AuditActionPermissionCheck
	}
	status := model.AuditStatusDenied
	if d.Allowed {
		status = model.AuditStatusAllowed
	}

	details := in.Details
	if details == "" {
		switch {
		case d.Reason == ReasonMissingEntity:
			details = ReasonMissingEntity
		case d.Allowed:
			details = "Permission granted (" + permission.Describe(in.Requirement) + ")"
		default:
			details = "Missing permission (" + permission.Describe(in.Requirement) + ")"
		}
	}

	actor := in.ActorID
	if actor == "" {
		actor = in.UserID
	}
	target := in.TargetID
	if target == "" {
		target = in.CalendarID
	}
	s.audit.RecordAction(ctx, action, actor, target, status, details)
}

// EvaluateAccess adapts Evaluate to the request-pipeline guard contract.
func (s *PermissionService) EvaluateAccess(ctx context.Context, req middleware.EvalRequest) (bool, error) {
	d, err := s.Evaluate(ctx, CheckInput{
		UserID:      req.UserID,
		CalendarID:  req.CalendarID,
		Requirement: req.Requirement,
		Action:      req.Action,
		LogAllowed:  req.LogAllowed,
		LogDenied:   req.LogDenied,
	})
	if err != nil {
		return false, err
	}
	return d.Allowed, nil
}

// isMissingEntity reports whether err is one of the not-found conditions
// that a check converts into a denial instead of an error.
func isMissingEntity(err error) bool {
	for _, target := range []*errors.Errno{
		errors.ErrUserNotFound,
		errors.ErrCalendarNotFound,
		errors.ErrNotFound,
	} {
		if stderrors.Is(err, target) {
			return true
		}
	}
	return false
}
