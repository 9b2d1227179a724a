package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002"
	mcpAdapter "github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/mcp"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flows"
)

func newServer(t *testing.T) *mcpAdapter.Server {
	t.Helper()
	eng, err := intake.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return mcpAdapter.NewServer(eng, "1.2.3\n")
}

func call(t *testing.T, s *mcpAdapter.Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.MCPServer().GetTool(name)
	require.NotNil(t, tool, "tool %s not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func session(t *testing.T, res *mcp.CallToolResult) mcpAdapter.SessionResponse {
	t.Helper()
	require.False(t, res.IsError, "%+v", res.Content)
	out, ok := res.StructuredContent.(mcpAdapter.SessionResponse)
	require.True(t, ok, "unexpected structured content %T", res.StructuredContent)
	return out
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestServer_RegistersTools(t *testing.T) {
	s := newServer(t)
	tools := s.MCPServer().ListTools()
	for _, name := range []string{
		"list_flows", "list_steps", "score_answers", "start_session",
		"get_session", "set_answer", "advance", "retreat", "submit",
	} {
		assert.Contains(t, tools, name)
	}
}

func TestServer_ListFlows(t *testing.T) {
	s := newServer(t)
	res := call(t, s, "list_flows", nil)

	var ids []string
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &ids))
	assert.ElementsMatch(t, []string{flows.IndividualPath, flows.PersonalTraining}, ids)

	res = call(t, s, "list_steps", map[string]any{"flow_id": "nope"})
	assert.True(t, res.IsError)
}

func TestServer_ScoreAnswers(t *testing.T) {
	s := newServer(t)
	res := call(t, s, "score_answers", map[string]any{
		"answers": `{"fitnessLevel":"advanced-athlete","goals":["strength"]}`,
		"explain": true,
	})
	require.False(t, res.IsError, "%+v", res.Content)

	out, ok := res.StructuredContent.(mcpAdapter.ScoreResponse)
	require.True(t, ok)
	require.NotEmpty(t, out.Candidates)
	assert.NotEmpty(t, out.Breakdown)
	for i := 1; i < len(out.Candidates); i++ {
		assert.GreaterOrEqual(t, out.Candidates[i-1].MatchScore, out.Candidates[i].MatchScore)
	}

	res = call(t, s, "score_answers", map[string]any{"answers": "not json"})
	assert.True(t, res.IsError)
}

func TestServer_SessionWalkthrough(t *testing.T) {
	s := newServer(t)
	ids := map[string]any{"flow_id": flows.PersonalTraining, "session_id": "m1"}
	with := func(kv ...any) map[string]any {
		out := map[string]any{}
		for k, v := range ids {
			out[k] = v
		}
		for i := 0; i+1 < len(kv); i += 2 {
			out[kv[i].(string)] = kv[i+1]
		}
		return out
	}

	start := session(t, call(t, s, "start_session", ids))
	assert.Equal(t, "fitness-level", start.View.Step.ID)

	blocked := session(t, call(t, s, "advance", ids))
	assert.Equal(t, "blocked", blocked.Outcome)

	session(t, call(t, s, "set_answer", with("key", flows.KeyFitnessLevel, "value", flows.LevelBeginner)))
	moved := session(t, call(t, s, "advance", ids))
	assert.Equal(t, "moved", moved.Outcome)
	assert.Equal(t, "goals", moved.View.Step.ID, "beginners skip the last-workout step")

	goals := session(t, call(t, s, "set_answer", with("key", flows.KeyGoals, "value", `["strength","endurance"]`)))
	assert.Equal(t, []string{"strength", "endurance"}, goals.View.Answers[flows.KeyGoals].Multi)

	back := session(t, call(t, s, "retreat", ids))
	assert.Equal(t, "retreated", back.Outcome)
	assert.Equal(t, "fitness-level", back.View.Step.ID)

	got := session(t, call(t, s, "get_session", ids))
	assert.Equal(t, "fitness-level", got.View.Step.ID)
	assert.Len(t, got.View.Answers, 2)

	res := call(t, s, "get_session", map[string]any{"flow_id": flows.PersonalTraining, "session_id": "missing"})
	assert.True(t, res.IsError)
}

func TestServer_Submit(t *testing.T) {
	s := newServer(t)
	ids := map[string]any{"flow_id": flows.PersonalTraining, "session_id": "m2"}
	set := func(key, value string) {
		args := map[string]any{"key": key, "value": value}
		for k, v := range ids {
			args[k] = v
		}
		session(t, call(t, s, "set_answer", args))
	}

	session(t, call(t, s, "start_session", ids))
	set(flows.KeyFitnessLevel, flows.LevelBeginner)

	res := call(t, s, "submit", ids)
	assert.True(t, res.IsError, "submission waits for the contact step")

	session(t, call(t, s, "advance", ids))
	set(flows.KeyGoals, `["strength"]`)
	session(t, call(t, s, "advance", ids))
	set(flows.KeySessionsPerWeek, "3")
	moved := session(t, call(t, s, "advance", ids))
	require.Equal(t, "contact", moved.View.Step.ID)
	set("contact", `{"name":"Jo","email":"jo@example.com","phone":"555-123-4567"}`)

	out := session(t, call(t, s, "submit", ids))
	require.NotNil(t, out.Result)
	assert.True(t, out.Result.Success)
	assert.NotEmpty(t, out.Result.SubmissionID)
	assert.NotEmpty(t, out.View.Recommendations)

	res = call(t, s, "submit", ids)
	assert.True(t, res.IsError, "second submission is rejected")
}
