package model

import "time"

// Audit entry statuses.
const (
	AuditStatusAllowed = "allowed"
	AuditStatusDenied  = "denied"
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)

// Audit entry actions.
const (
	AuditActionPermissionCheck = "permission_check"
	AuditActionLogin           = "login"
	AuditActionLogout          = "logout"
	AuditActionRegister        = "register"
	AuditActionCalendarCreate  = "calendar_create"
	AuditActionCalendarUpdate  = "calendar_update"
	AuditActionCalendarDelete  = "calendar_delete"
	AuditActionEventCreate     = "event_create"
	AuditActionEventUpdate     = "event_update"
	AuditActionEventDelete     = "event_delete"
	AuditActionGrantUpsert     = "grant_upsert"
	AuditActionGrantRevoke     = "grant_revoke"
)

// Defaults applied when the actor or target cannot be identified.
const (
	AuditActorAnonymous = "anonymous"
	AuditTargetUnknown  = "unknown"
)

// AuditEntry is an append-only record of a security-relevant action.
// Entries are owned exclusively by the audit service; once recorded they
// are never mutated or deleted. The ID is service-assigned, sequential
// and unique per process instance.
type AuditEntry struct {
	ID        uint64    `json:"id"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	TargetID  string    `json:"target_id"`
	Status    string    `json:"status"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Invalid returns the names of required fields that resolved empty after
// defaulting, or nil when the entry is well-formed. The ID is excluded:
// it is assigned by the audit service after validation passes.
func (e *AuditEntry) Invalid() []string {
	var missing []string
	if e.Action == "" {
		missing = append(missing, "action")
	}
	if e.ActorID == "" {
		missing = append(missing, "actorId")
	}
	if e.Status == "" {
		missing = append(missing, "status")
	}
	return missing
}
