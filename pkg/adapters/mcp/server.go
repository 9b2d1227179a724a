package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/answers"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flow"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/recommend"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/session"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/submission"
)

// Engine defines what the MCP server needs from the questionnaire core.
type Engine interface {
	Flows() []string
	Steps(flowID string) ([]domain.Step, error)
	Start(ctx context.Context, flowID, sessionID string) (session.View, error)
	Open(ctx context.Context, flowID, sessionID string) (session.View, error)
	Update(ctx context.Context, flowID, sessionID string, fn func(*session.Session) error) (session.View, error)
	Score(a domain.Answers) []domain.Candidate
	Explain(a domain.Answers) []recommend.Breakdown
}

// SessionArgs addresses one session.
type SessionArgs struct {
	FlowID    string `json:"flow_id"`
	SessionID string `json:"session_id"`
}

// AnswerArgs sets one answer.
type AnswerArgs struct {
	SessionArgs
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ScoreArgs carries an answers document as JSON text.
type ScoreArgs struct {
	Answers string `json:"answers"`
	Explain bool   `json:"explain"`
}

// ScoreResponse is the structured output of score_answers.
type ScoreResponse struct {
	Candidates []domain.Candidate    `json:"candidates" jsonschema_description:"Ranked recommendations, best first"`
	Breakdown  []recommend.Breakdown `json:"breakdown,omitempty" jsonschema_description:"Per-category rule hits when explain is set"`
}

// SessionResponse aligns with the HTTP adapter: the outcome of the call and the resulting view.
type SessionResponse struct {
	Outcome string             `json:"outcome,omitempty" jsonschema_description:"Navigation outcome (blocked, moved, completed, retreated, unchanged)"`
	Result  *submission.Result `json:"result,omitempty" jsonschema_description:"Submission result"`
	View    session.View       `json:"view" jsonschema_description:"The session after the call"`
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("intake-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func sessionParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("Flow identifier")),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_flows",
		mcp.WithDescription("List the registered questionnaire flows."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.engine.Flows())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("list_steps",
		mcp.WithDescription("List the declared steps and questions of a flow."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("Flow identifier")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := s.engine.Steps(request.GetString("flow_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		jsonBytes, _ := json.Marshal(list)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("score_answers",
		mcp.WithDescription("Rank program recommendations for an answers document without starting a session."),
		mcp.WithString("answers", mcp.Required(), mcp.Description(`JSON object of answers, e.g. {"fitnessLevel":"beginner","goals":["strength"]}`)),
		mcp.WithBoolean("explain", mcp.Description("Include the per-category rule breakdown")),
		mcp.WithOutputSchema[ScoreResponse](),
	), mcp.NewStructuredToolHandler(s.handleScore))

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		append(sessionParams(),
			mcp.WithDescription("Start (or restart) a session on the first applicable step."),
			mcp.WithOutputSchema[SessionResponse](),
		)...,
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		append(sessionParams(),
			mcp.WithDescription("Return the current view of a session."),
			mcp.WithOutputSchema[SessionResponse](),
		)...,
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("set_answer",
		append(sessionParams(),
			mcp.WithDescription("Set one answer. Multi-select and contact values are passed as JSON."),
			mcp.WithString("key", mcp.Required(), mcp.Description("Answer key")),
			mcp.WithString("value", mcp.Required(), mcp.Description(`Plain value, or JSON array/object (e.g. ["a","b"])`)),
			mcp.WithOutputSchema[SessionResponse](),
		)...,
	), mcp.NewStructuredToolHandler(s.handleSetAnswer))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		append(sessionParams(),
			mcp.WithDescription("Move to the next applicable step when the current one is complete."),
			mcp.WithOutputSchema[SessionResponse](),
		)...,
	), mcp.NewStructuredToolHandler(s.handleAdvance))

	s.mcpServer.AddTool(mcp.NewTool("retreat",
		append(sessionParams(),
			mcp.WithDescription("Move to the previous applicable step."),
			mcp.WithOutputSchema[SessionResponse](),
		)...,
	), mcp.NewStructuredToolHandler(s.handleRetreat))

	s.mcpServer.AddTool(mcp.NewTool("submit",
		append(sessionParams(),
			mcp.WithDescription("Submit the session: validate contact, score, store and notify."),
			mcp.WithOutputSchema[SessionResponse](),
		)...,
	), mcp.NewStructuredToolHandler(s.handleSubmit))
}

func (s *Server) handleScore(ctx context.Context, request mcp.CallToolRequest, args ScoreArgs) (ScoreResponse, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(args.Answers), &raw); err != nil {
		return ScoreResponse{}, fmt.Errorf("answers must be a JSON object: %w", err)
	}
	a, err := answers.AnswersFrom(raw)
	if err != nil {
		return ScoreResponse{}, err
	}
	resp := ScoreResponse{Candidates: s.engine.Score(a)}
	if args.Explain {
		resp.Breakdown = s.engine.Explain(a)
	}
	return resp, nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	view, err := s.engine.Start(ctx, args.FlowID, args.SessionID)
	return SessionResponse{View: view}, err
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	view, err := s.engine.Open(ctx, args.FlowID, args.SessionID)
	return SessionResponse{View: view}, err
}

func (s *Server) handleSetAnswer(ctx context.Context, request mcp.CallToolRequest, args AnswerArgs) (SessionResponse, error) {
	v, err := s.parseValue(args.FlowID, args.Key, args.Value)
	if err != nil {
		return SessionResponse{}, err
	}
	view, err := s.engine.Update(ctx, args.FlowID, args.SessionID, func(sess *session.Session) error {
		return sess.SetAnswer(args.Key, v)
	})
	return SessionResponse{View: view}, err
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	var outcome flow.Outcome
	view, err := s.engine.Update(ctx, args.FlowID, args.SessionID, func(sess *session.Session) error {
		outcome = sess.Advance()
		return nil
	})
	return SessionResponse{Outcome: outcome.String(), View: view}, err
}

func (s *Server) handleRetreat(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	outcome := "unchanged"
	view, err := s.engine.Update(ctx, args.FlowID, args.SessionID, func(sess *session.Session) error {
		if sess.Retreat() {
			outcome = "retreated"
		}
		return nil
	})
	return SessionResponse{Outcome: outcome, View: view}, err
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	var res submission.Result
	view, err := s.engine.Update(ctx, args.FlowID, args.SessionID, func(sess *session.Session) error {
		var err error
		res, err = sess.Submit(ctx)
		return err
	})
	return SessionResponse{Result: &res, View: view}, err
}

// parseValue accepts a plain string or a JSON array/object.
func (s *Server) parseValue(flowID, key, text string) (domain.Value, error) {
	var hint domain.ValueKind
	if list, err := s.engine.Steps(flowID); err == nil {
		for _, st := range list {
			if q, ok := st.Question(key); ok {
				hint = q.Kind
			}
		}
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var raw any
		if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
			return domain.Value{}, fmt.Errorf("invalid JSON value: %w", err)
		}
		return answers.ValueFrom(raw, hint)
	}
	return answers.ValueFrom(text, hint)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("intake://flows", "Questionnaire flows and their steps",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		out := make(map[string][]domain.Step)
		for _, id := range s.engine.Flows() {
			list, err := s.engine.Steps(id)
			if err != nil {
				return nil, fmt.Errorf("failed to inspect flow %s: %w", id, err)
			}
			out[id] = list
		}
		jsonBytes, _ := json.Marshal(out)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "intake://flows",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
