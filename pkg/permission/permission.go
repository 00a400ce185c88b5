// Package permission defines the calendar permission vocabulary and the
// requirement language used by the evaluator and the guard middleware.
//
// A requirement expresses what a protected operation demands: a single
// permission, any of a set, all of a set, or a combination of both. All
// evaluation logic operates on the normalized Requirement form; the loose
// input shapes accepted by Normalize exist only at the API boundary.
package permission

import (
	"sort"
	"strings"
)

// Permission is an opaque grant label drawn from a fixed vocabulary.
type Permission string

// The permission vocabulary. Each label is an independent grant; there is
// no implied hierarchy, though ManageCalendar is presented as the superset
// capability in derived access-level displays.
const (
	ViewCalendar          Permission = "View Calendar"
	ViewCalendarTimesOnly Permission = "View Calendar - Times Only"
	AddToCalendar         Permission = "Add to Calendar"
	CommentOnCalendar     Permission = "Comment on Calendar"
	ManageCalendar        Permission = "Manage Calendar"
)

// All returns the full permission vocabulary in a stable order.
func All() []Permission {
	return []Permission{
		ViewCalendar,
		ViewCalendarTimesOnly,
		AddToCalendar,
		CommentOnCalendar,
		ManageCalendar,
	}
}

// Valid reports whether p belongs to the vocabulary.
func Valid(p Permission) bool {
	switch p {
	case ViewCalendar, ViewCalendarTimesOnly, AddToCalendar, CommentOnCalendar, ManageCalendar:
		return true
	}
	return false
}

// Requirement is the canonical requirement form. A requirement is
// satisfied when at least one AnyOf permission is granted (vacuously if
// AnyOf is empty) and every AllOf permission is granted. The zero
// Requirement is the "unspecified" requirement and is never satisfied.
type Requirement struct {
	AnyOf []Permission `json:"anyOf,omitempty"`
	AllOf []Permission `json:"allOf,omitempty"`
}

// Unspecified reports whether the requirement names no permissions at all.
func (r Requirement) Unspecified() bool {
	return len(r.AnyOf) == 0 && len(r.AllOf) == 0
}

// Any builds a requirement satisfied by any of the given permissions.
func Any(perms ...Permission) Requirement {
	return Requirement{AnyOf: append([]Permission(nil), perms...)}
}

// AllOf builds a requirement satisfied only by all of the given permissions.
func AllOf(perms ...Permission) Requirement {
	return Requirement{AllOf: append([]Permission(nil), perms...)}
}

// Normalize converts the loose requirement shapes accepted at the API
// boundary into the canonical Requirement. It is total: inputs it cannot
// interpret normalize to the unspecified requirement, never an error.
//
// Accepted shapes:
//
//	nil                         -> Requirement{}
//	Permission / string         -> anyOf with a single element
//	[]Permission / []string     -> anyOf with the given elements
//	Requirement / *Requirement  -> copied through
//	map[string]any with         -> anyOf/allOf lists copied through;
//	"anyOf"/"allOf" keys           non-list values default to empty
func Normalize(v any) Requirement {
	switch req := v.(type) {
	case nil:
		return Requirement{}
	case Requirement:
		return Requirement{
			AnyOf: append([]Permission(nil), req.AnyOf...),
			AllOf: append([]Permission(nil), req.AllOf...),
		}
	case *Requirement:
		if req == nil {
			return Requirement{}
		}
		return Normalize(*req)
	case Permission:
		return Requirement{AnyOf: []Permission{req}}
	case string:
		return Requirement{AnyOf: []Permission{Permission(req)}}
	case []Permission:
		return Requirement{AnyOf: append([]Permission(nil), req...)}
	case []string:
		return Requirement{AnyOf: toPermissions(req)}
	case []any:
		return Requirement{AnyOf: fromAnySlice(req)}
	case map[string]any:
		return Requirement{
			AnyOf: listField(req, "anyOf"),
			AllOf: listField(req, "allOf"),
		}
	default:
		return Requirement{}
	}
}

// Evaluate decides whether the granted permission set satisfies the
// requirement. Pure, no I/O. A nil granted set is treated as empty; the
// unspecified requirement is never satisfied (fail-closed).
func Evaluate(granted []Permission, req Requirement) bool {
	if req.Unspecified() {
		return false
	}

	set := make(map[Permission]struct{}, len(granted))
	for _, p := range granted {
		set[p] = struct{}{}
	}

	anyAllowed := len(req.AnyOf) == 0
	for _, p := range req.AnyOf {
		if _, ok := set[p]; ok {
			anyAllowed = true
			break
		}
	}

	allAllowed := true
	for _, p := range req.AllOf {
		if _, ok := set[p]; !ok {
			allAllowed = false
			break
		}
	}

	return anyAllowed && allAllowed
}

// Describe renders a deterministic human-readable form of the requirement
// for audit details, e.g. "anyOf: View Calendar, Manage Calendar". Segments
// with empty lists are omitted; both segments are joined by " | ". Used
// only for diagnostics, never for evaluation.
func Describe(req Requirement) string {
	var segments []string
	if len(req.AnyOf) > 0 {
		segments = append(segments, "anyOf: "+joinPermissions(req.AnyOf))
	}
	if len(req.AllOf) > 0 {
		segments = append(segments, "allOf: "+joinPermissions(req.AllOf))
	}
	if len(segments) == 0 {
		return "unspecified"
	}
	return strings.Join(segments, " | ")
}

// Union flattens permission sets from multiple grants into a single
// deduplicated set with a stable order.
func Union(sets ...[]Permission) []Permission {
	seen := make(map[Permission]struct{})
	var out []Permission
	for _, set := range sets {
		for _, p := range set {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func toPermissions(in []string) []Permission {
	out := make([]Permission, 0, len(in))
	for _, s := range in {
		out = append(out, Permission(s))
	}
	return out
}

func fromAnySlice(in []any) []Permission {
	var out []Permission
	for _, v := range in {
		switch p := v.(type) {
		case Permission:
			out = append(out, p)
		case string:
			out = append(out, Permission(p))
		}
	}
	return out
}

func listField(m map[string]any, key string) []Permission {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []Permission:
		return append([]Permission(nil), list...)
	case []string:
		return toPermissions(list)
	case []any:
		return fromAnySlice(list)
	default:
		// Non-list values default to empty, not an error.
		return nil
	}
}

func joinPermissions(perms []Permission) string {
	parts := make([]string, len(perms))
	for i, p := range perms {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
