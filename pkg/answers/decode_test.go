package answers_test

import (
	"testing"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/answers"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueFrom(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		hint domain.ValueKind
		want domain.Value
	}{
		{"scalar", "beginner", "", domain.ScalarValue("beginner")},
		{"text hint", "sore knees", domain.KindText, domain.TextValue("sore knees")},
		{"multi hint", "fitness", domain.KindMulti, domain.MultiValue("fitness")},
		{"strings", []string{"a", "b", "a"}, "", domain.MultiValue("a", "b")},
		{"json array", []any{"a", "b"}, "", domain.MultiValue("a", "b")},
		{"contact", map[string]any{"name": "Jo", "email": "jo@example.com", "phone": 5551234567.0}, "",
			domain.ContactValue(domain.Contact{Name: "Jo", Email: "jo@example.com", Phone: "5551234567"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := answers.ValueFrom(tt.raw, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueFrom_Errors(t *testing.T) {
	_, err := answers.ValueFrom(nil, "")
	assert.Error(t, err)

	_, err = answers.ValueFrom([]any{"a", 3}, "")
	assert.Error(t, err)

	_, err = answers.ValueFrom(map[string]any{"nickname": "jo"}, "")
	assert.Error(t, err, "unknown contact fields are rejected")

	_, err = answers.ValueFrom(42, "")
	assert.Error(t, err)
}

func TestAnswersFrom(t *testing.T) {
	got, err := answers.AnswersFrom(map[string]any{
		"fitnessLevel": "advanced-athlete",
		"goals":        []any{"weight-management"},
		"contact":      map[string]any{"name": "Jo"},
	})
	require.NoError(t, err)
	assert.Equal(t, "advanced-athlete", got.Scalar("fitnessLevel"))
	assert.Equal(t, []string{"weight-management"}, got.Selected("goals"))
	assert.Equal(t, "Jo", got.Contact().Name)
}

func TestPatchFrom(t *testing.T) {
	p, err := answers.PatchFrom(map[string]any{"email": "jo@example.com"})
	require.NoError(t, err)
	require.NotNil(t, p.Email)
	assert.Equal(t, "jo@example.com", *p.Email)
	assert.Nil(t, p.Name)
	assert.Nil(t, p.Phone)
}
