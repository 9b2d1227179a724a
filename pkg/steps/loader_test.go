package steps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ptFlow = `
id: personal-training
title: Personal Training
steps:
  - id: goals
    questions:
      - {key: goals, kind: multi, required: true, max_select: 3, options: [strength, mobility, cardio, weight]}
  - id: fitness-level
    questions:
      - {key: fitnessLevel, kind: scalar, required: true}
  - id: last-workout
    applicable: {field: fitnessLevel, op: ne, value: beginner}
    questions:
      - {key: lastWorkout, required: true}
  - id: extras
    applicable:
      any:
        - {field: goals, op: in, value: [weight]}
        - {field: goals, op: min_selected, value: 3}
    complete: {field: notes, op: answered}
    questions:
      - {key: notes, kind: text}
  - id: contact
    questions:
      - {key: contact, kind: contact, required: true}
`

func TestParse(t *testing.T) {
	flow, err := Parse([]byte(ptFlow))
	require.NoError(t, err)

	assert.Equal(t, "personal-training", flow.ID)
	require.Len(t, flow.Steps, 5)
	assert.Equal(t, 3, flow.Steps[0].Questions[0].MaxSelect)
	assert.Equal(t, domain.KindScalar, flow.Steps[2].Questions[0].Kind)

	lastWorkout := flow.Steps[2]
	assert.False(t, lastWorkout.IsApplicable(domain.Answers{"fitnessLevel": domain.ScalarValue("beginner")}))
	assert.True(t, lastWorkout.IsApplicable(domain.Answers{"fitnessLevel": domain.ScalarValue("advanced")}))
	assert.False(t, lastWorkout.IsComplete(domain.Answers{}))

	extras := flow.Steps[3]
	assert.False(t, extras.IsApplicable(domain.Answers{"goals": domain.MultiValue("strength")}))
	assert.True(t, extras.IsApplicable(domain.Answers{"goals": domain.MultiValue("weight")}))
	assert.True(t, extras.IsApplicable(domain.Answers{"goals": domain.MultiValue("strength", "mobility", "cardio")}))
	assert.True(t, extras.IsComplete(domain.Answers{"notes": domain.TextValue("x")}))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"invalid yaml", "id: [unterminated"},
		{"missing id", "steps: [{id: a}]"},
		{"unknown key", "id: f\nbogus: true\nsteps: [{id: a}]"},
		{"unknown kind", "id: f\nsteps: [{id: a, questions: [{key: x, kind: slider}]}]"},
		{"unknown op", "id: f\nsteps: [{id: a, applicable: {field: y, op: gt, value: 1}}]"},
		{"self dependency", "id: f\nsteps: [{id: a, applicable: {field: x, op: answered}, questions: [{key: x}]}]"},
		{"nested self dependency", "id: f\nsteps: [{id: a, applicable: {not: {field: x, op: answered}}, questions: [{key: x}]}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pt.yaml"), []byte(ptFlow), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	g := NewGraph()
	ids, err := LoadDir(g, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"personal-training"}, ids)

	steps, err := g.StepsFor("personal-training")
	require.NoError(t, err)
	require.Len(t, steps, 5)

	extras := steps[3]
	assert.True(t, extras.IsApplicable(domain.Answers{"goals": domain.MultiValue("strength", "mobility", "cardio")}),
		"numeric condition values survive document decoding")
	assert.False(t, extras.IsApplicable(domain.Answers{"goals": domain.MultiValue("strength")}))
}

func TestLoadDir_JSONAndImplicitID(t *testing.T) {
	dir := t.TempDir()
	doc := `{"title": "Quick", "steps": [{"id": "only", "questions": [{"key": "x", "required": true}]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quick.json"), []byte(doc), 0o644))

	g := NewGraph()
	ids, err := LoadDir(g, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"quick"}, ids, "flow id falls back to the file name")
}

func TestLoadDir_Collision(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(ptFlow), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte(ptFlow), 0o644))

	_, err := LoadDir(NewGraph(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "personal-training")
}

func TestLoadDir_Invalid(t *testing.T) {
	_, err := LoadDir(NewGraph(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	dir := t.TempDir()
	bad := "id: f\nsteps: [{id: a, applicable: {field: x, op: answered}, questions: [{key: x}]}]"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.yaml"), []byte(bad), 0o644))
	_, err = LoadDir(NewGraph(), dir)
	assert.Error(t, err, "definitions still go through Lint")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
