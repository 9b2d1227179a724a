package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/sqlite"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flows"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	body := fmt.Sprintf(`
log_level: error
sessions:
  driver: file
  dir: %s
submissions:
  driver: sqlite
  sqlite_path: %s
  redact_keys: ["^contact\\.phone$"]
`, filepath.Join(dir, "sessions"), filepath.Join(dir, "submissions.db"))
	path := filepath.Join(dir, "intake.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestExecute_QuitThenResumeAndSubmit(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	ctx := context.Background()

	var out bytes.Buffer
	err := Execute(ctx, RunOptions{
		ConfigPath: cfgPath,
		FlowID:     flows.PersonalTraining,
		Input:      strings.NewReader("1\nquit\n"),
		Output:     &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Progress saved. Bye!")

	out.Reset()
	input := strings.Join([]string{
		"strength", // goals; beginners skip the training history step
		"2",        // sessions per week
		"Jo", "jo@example.com", "555-123-4567",
	}, "\n") + "\n"
	err = Execute(ctx, RunOptions{
		ConfigPath: cfgPath,
		FlowID:     flows.PersonalTraining,
		Input:      strings.NewReader(input),
		Output:     &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Submitted (reference")

	store, err := sqlite.Open(filepath.Join(dir, "submissions.db"))
	require.NoError(t, err)
	defer store.Close()
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExecute_FreshDiscardsProgress(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	ctx := context.Background()

	require.NoError(t, Execute(ctx, RunOptions{
		ConfigPath: cfgPath,
		Input:      strings.NewReader("1\nquit\n"),
		Output:     &bytes.Buffer{},
	}))

	var out bytes.Buffer
	require.NoError(t, Execute(ctx, RunOptions{
		ConfigPath: cfgPath,
		Fresh:      true,
		Input:      strings.NewReader(""),
		Output:     &out,
	}))
	assert.Contains(t, out.String(), "How would you describe your current fitness?")
	assert.Contains(t, out.String(), "Progress saved. Bye!", "EOF quits")
}

func TestExecute_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intake.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sessions:\n  driver: etcd\n"), 0644))

	err := Execute(context.Background(), RunOptions{ConfigPath: path, Input: strings.NewReader(""), Output: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "unknown session driver")
}
