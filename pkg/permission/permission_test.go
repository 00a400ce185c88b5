package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Requirement
	}{
		{
			name: "nil is unspecified",
			in:   nil,
			want: Requirement{},
		},
		{
			name: "single string becomes anyOf",
			in:   "View Calendar",
			want: Requirement{AnyOf: []Permission{ViewCalendar}},
		},
		{
			name: "single permission becomes anyOf",
			in:   ManageCalendar,
			want: Requirement{AnyOf: []Permission{ManageCalendar}},
		},
		{
			name: "string slice becomes anyOf",
			in:   []string{"View Calendar", "Manage Calendar"},
			want: Requirement{AnyOf: []Permission{ViewCalendar, ManageCalendar}},
		},
		{
			name: "requirement copied through",
			in:   Requirement{AnyOf: []Permission{ViewCalendar}, AllOf: []Permission{ManageCalendar}},
			want: Requirement{AnyOf: []Permission{ViewCalendar}, AllOf: []Permission{ManageCalendar}},
		},
		{
			name: "nil requirement pointer is unspecified",
			in:   (*Requirement)(nil),
			want: Requirement{},
		},
		{
			name: "map with anyOf and allOf",
			in: map[string]any{
				"anyOf": []string{"View Calendar"},
				"allOf": []any{"Manage Calendar"},
			},
			want: Requirement{AnyOf: []Permission{ViewCalendar}, AllOf: []Permission{ManageCalendar}},
		},
		{
			name: "map with non-list values defaults to empty",
			in:   map[string]any{"anyOf": "View Calendar", "allOf": 42},
			want: Requirement{},
		},
		{
			name: "unknown shape is unspecified",
			in:   42,
			want: Requirement{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []any{
		nil,
		"View Calendar",
		[]string{"View Calendar", "Add to Calendar"},
		map[string]any{"allOf": []string{"Manage Calendar"}},
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestEvaluateFailClosed(t *testing.T) {
	grants := [][]Permission{
		nil,
		{},
		{ViewCalendar},
		All(),
	}
	for _, granted := range grants {
		assert.False(t, Evaluate(granted, Requirement{}),
			"unspecified requirement must never be satisfied")
	}
}

func TestEvaluateAnyOf(t *testing.T) {
	granted := []Permission{ViewCalendar, AddToCalendar}

	assert.True(t, Evaluate(granted, Any(ViewCalendar)))
	assert.True(t, Evaluate(granted, Any(ManageCalendar, AddToCalendar)))
	assert.False(t, Evaluate(granted, Any(ManageCalendar)))
	assert.False(t, Evaluate(nil, Any(ViewCalendar)))
}

func TestEvaluateAllOf(t *testing.T) {
	granted := []Permission{ViewCalendar, AddToCalendar}

	assert.True(t, Evaluate(granted, AllOf(ViewCalendar, AddToCalendar)))
	assert.False(t, Evaluate(granted, AllOf(ViewCalendar, ManageCalendar)))

	// AllOf alone with every element granted satisfies even without anyOf.
	assert.True(t, Evaluate(granted, AllOf(ViewCalendar)))
}

func TestEvaluateCombined(t *testing.T) {
	granted := []Permission{ViewCalendar, CommentOnCalendar}

	req := Requirement{
		AnyOf: []Permission{ViewCalendar, ManageCalendar},
		AllOf: []Permission{CommentOnCalendar},
	}
	assert.True(t, Evaluate(granted, req))

	req.AllOf = []Permission{ManageCalendar}
	assert.False(t, Evaluate(granted, req))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "unspecified", Describe(Requirement{}))
	assert.Equal(t, "anyOf: View Calendar", Describe(Any(ViewCalendar)))
	assert.Equal(t, "allOf: Manage Calendar", Describe(AllOf(ManageCalendar)))
	assert.Equal(t,
		"anyOf: View Calendar, Manage Calendar | allOf: Comment on Calendar",
		Describe(Requirement{
			AnyOf: []Permission{ViewCalendar, ManageCalendar},
			AllOf: []Permission{CommentOnCalendar},
		}))
}

func TestUnion(t *testing.T) {
	got := Union(
		[]Permission{ViewCalendar, AddToCalendar},
		[]Permission{AddToCalendar, ManageCalendar},
		nil,
	)
	assert.ElementsMatch(t, []Permission{ViewCalendar, AddToCalendar, ManageCalendar}, got)

	// Stable order for repeated calls.
	assert.Equal(t, got, Union([]Permission{ManageCalendar, ViewCalendar, AddToCalendar}))
}

func TestValid(t *testing.T) {
	for _, p := range All() {
		assert.True(t, Valid(p))
	}
	assert.False(t, Valid("Delete Calendar"))
}
