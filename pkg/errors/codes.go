package errors

import "net/http"

// Common errors (service 00).
var (
	// ErrInvalidParam indicates a malformed or missing request parameter.
	ErrInvalidParam = Register(New(MakeCode(0, 1, 1), http.StatusBadRequest, "Invalid parameter"))

	// ErrValidationFailed indicates a request body that failed field validation.
	ErrValidationFailed = Register(New(MakeCode(0, 1, 2), http.StatusBadRequest, "Validation failed"))

	// ErrUnauthorized indicates a missing or invalid session.
	ErrUnauthorized = Register(New(MakeCode(0, 2, 1), http.StatusUnauthorized, "Unauthorized"))

	// ErrSessionExpired indicates the session token exists but has expired.
	ErrSessionExpired = Register(New(MakeCode(0, 2, 2), http.StatusUnauthorized, "Session expired"))

	// ErrPasswordMismatch indicates a failed credential check.
	ErrPasswordMismatch = Register(New(MakeCode(0, 2, 3), http.StatusUnauthorized, "Incorrect username or password"))

	// ErrPermissionDenied indicates a denied permission check.
	ErrPermissionDenied = Register(New(MakeCode(0, 3, 1), http.StatusForbidden, "Permission denied"))

	// ErrNotFound indicates a missing resource.
	ErrNotFound = Register(New(MakeCode(0, 4, 1), http.StatusNotFound, "Resource not found"))

	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = Register(New(MakeCode(0, 5, 1), http.StatusConflict, "Resource already exists"))

	// ErrInternal is the fallback for unexpected failures.
	ErrInternal = Register(New(MakeCode(0, 7, 1), http.StatusInternalServerError, "Internal server error"))
)

// Infrastructure errors (service 10).
var (
	// ErrDatabase indicates a failed database operation.
	ErrDatabase = Register(New(MakeCode(10, 8, 1), http.StatusInternalServerError, "Database error"))

	// ErrSessionStore indicates a failed session store operation.
	ErrSessionStore = Register(New(MakeCode(10, 8, 2), http.StatusInternalServerError, "Session store error"))

	// ErrAuditSink indicates a failed audit persistence operation.
	ErrAuditSink = Register(New(MakeCode(10, 8, 3), http.StatusInternalServerError, "Audit sink error"))

	// ErrUnavailable indicates a dependency rejected by resilience policy.
	ErrUnavailable = Register(New(MakeCode(10, 10, 1), http.StatusServiceUnavailable, "Temporarily unavailable"))
)

// Calendar domain errors (service 20).
var (
	// ErrUserNotFound indicates a missing user.
	ErrUserNotFound = Register(New(MakeCode(20, 4, 1), http.StatusNotFound, "User not found"))

	// ErrOrganizationNotFound indicates a missing organization.
	ErrOrganizationNotFound = Register(New(MakeCode(20, 4, 2), http.StatusNotFound, "Organization not found"))

	// ErrCalendarNotFound indicates a missing calendar.
	ErrCalendarNotFound = Register(New(MakeCode(20, 4, 3), http.StatusNotFound, "Calendar not found"))

	// ErrEventNotFound indicates a missing event.
	ErrEventNotFound = Register(New(MakeCode(20, 4, 4), http.StatusNotFound, "Event not found"))

	// ErrGrantNotFound indicates a missing permission grant.
	ErrGrantNotFound = Register(New(MakeCode(20, 4, 5), http.StatusNotFound, "Permission grant not found"))

	// ErrUnknownPermission indicates a permission label outside the vocabulary.
	ErrUnknownPermission = Register(New(MakeCode(20, 1, 1), http.StatusBadRequest, "Unknown permission"))
)
