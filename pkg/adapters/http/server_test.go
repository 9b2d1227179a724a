package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002"
	httpAdapter "github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/http"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flows"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/session"
)

const base = "/flows/personal-training/sessions/s1"

func newServer(t *testing.T) *httpAdapter.Server {
	t.Helper()
	eng, err := intake.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return httpAdapter.New(eng, httpAdapter.WithVersion("1.2.3\n"))
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestSpec_IsValid(t *testing.T) {
	doc, err := httpAdapter.LoadSpec()
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
}

func TestHealthAndInfo(t *testing.T) {
	h := newServer(t).Routes()

	w := do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	info := decode[map[string]string](t, do(t, h, "GET", "/info", nil))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])

	flowsList := decode[[]string](t, do(t, h, "GET", "/flows", nil))
	assert.ElementsMatch(t, []string{flows.IndividualPath, flows.PersonalTraining}, flowsList)
}

func TestSessionLifecycle(t *testing.T) {
	h := newServer(t).Routes()

	w := do(t, h, "POST", "/flows/personal-training/sessions", map[string]string{"session_id": "s1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := decode[session.View](t, w)
	assert.Equal(t, "fitness-level", view.Step.ID)

	nav := decode[httpAdapter.NavigationResponse](t, do(t, h, "POST", base+"/advance", nil))
	assert.Equal(t, "blocked", nav.Outcome)
	assert.Equal(t, "fitness-level", nav.View.Step.ID)

	w = do(t, h, "PUT", base+"/answers/fitnessLevel", map[string]any{"value": "beginner"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	nav = decode[httpAdapter.NavigationResponse](t, do(t, h, "POST", base+"/advance", nil))
	assert.Equal(t, "moved", nav.Outcome)
	assert.Equal(t, "goals", nav.View.Step.ID)

	// Owned by the hidden training history step.
	w = do(t, h, "PUT", base+"/answers/lastWorkout", map[string]any{"value": "this-week"})
	assert.Equal(t, http.StatusConflict, w.Code)

	for _, goal := range []string{"strength", "endurance", "mobility", "general-health"} {
		w = do(t, h, "POST", base+"/answers/goals/selections", map[string]string{"value": goal})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	view = decode[session.View](t, w)
	assert.Equal(t, []string{"endurance", "mobility", "general-health"}, view.Answers.Selected("goals"))

	w = do(t, h, "DELETE", base+"/answers/goals/selections/mobility", nil)
	view = decode[session.View](t, w)
	assert.Equal(t, []string{"endurance", "general-health"}, view.Answers.Selected("goals"))

	nav = decode[httpAdapter.NavigationResponse](t, do(t, h, "POST", base+"/retreat", nil))
	assert.Equal(t, "retreated", nav.Outcome)
	assert.Equal(t, "fitness-level", nav.View.Step.ID)

	w = do(t, h, "POST", base+"/jump", map[string]string{"step_id": "contact"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "contact", decode[session.View](t, w).Step.ID)

	w = do(t, h, "POST", base+"/jump", map[string]string{"step_id": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "DELETE", base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, "GET", base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmit(t *testing.T) {
	h := newServer(t).Routes()
	require.Equal(t, http.StatusCreated, do(t, h, "POST", "/flows/personal-training/sessions", map[string]string{"session_id": "s1"}).Code)

	w := do(t, h, "PATCH", base+"/contact", map[string]string{"name": "Jo", "email": "not-an-email"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, "POST", base+"/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "submission waits for the contact step")

	w = do(t, h, "POST", base+"/jump", map[string]string{"step_id": "contact"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[httpAdapter.SubmitResponse](t, do(t, h, "POST", base+"/submit", nil))
	assert.False(t, resp.Result.Success)
	assert.NotEmpty(t, resp.Result.FieldErrors)
	assert.Equal(t, domain.SubmissionFailed, resp.View.Submission.Status)

	w = do(t, h, "PATCH", base+"/contact", map[string]string{"email": "jo@example.com", "phone": "(555) 123-4567"})
	require.Equal(t, http.StatusOK, w.Code)

	resp = decode[httpAdapter.SubmitResponse](t, do(t, h, "POST", base+"/submit", nil))
	assert.True(t, resp.Result.Success)
	assert.NotEmpty(t, resp.Result.SubmissionID)
	assert.Equal(t, domain.SubmissionSucceeded, resp.View.Submission.Status)

	w = do(t, h, "POST", base+"/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestScore(t *testing.T) {
	h := newServer(t).Routes()

	w := do(t, h, "POST", "/score?explain=true", map[string]any{
		"fitnessLevel": "advanced-athlete",
		"goals":        []string{"weight-management"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[httpAdapter.ScoreResponse](t, w)
	require.NotEmpty(t, resp.Candidates)
	assert.NotEmpty(t, resp.Breakdown)

	w = do(t, h, "POST", "/score", map[string]any{"goals": 42})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribeEvents_Session(t *testing.T) {
	h := newServer(t).Routes()
	require.Equal(t, http.StatusCreated, do(t, h, "POST", "/flows/personal-training/sessions", map[string]string{"session_id": "s1"}).Code)

	ts := httptest.NewServer(h)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+base+"/events?watch=answers", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := bufio.NewReader(resp.Body)
	line, err := events.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	// Cursor-only diff, filtered out by the watch list.
	do(t, h, "POST", base+"/jump", map[string]string{"step_id": "goals"})
	do(t, h, "PUT", base+"/answers/fitnessLevel", map[string]any{"value": "advanced"})

	var data string
	for data == "" {
		line, err := events.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			data = line
		}
	}
	assert.Contains(t, data, `"fitnessLevel":{"kind":"scalar","scalar":"advanced"}`)
	assert.NotContains(t, data, "current_step_index")
}
