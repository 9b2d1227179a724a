package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/answers"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flow"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/recommend"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/session"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/submission"
)

//go:embed openapi.yaml
var rawSpec []byte

// LoadSpec parses the embedded OpenAPI document.
func LoadSpec() (*openapi3.T, error) {
	return openapi3.NewLoader().LoadFromData(rawSpec)
}

// Engine defines what the HTTP adapter needs from the questionnaire core.
type Engine interface {
	Flows() []string
	Steps(flowID string) ([]domain.Step, error)
	Start(ctx context.Context, flowID, sessionID string) (session.View, error)
	Open(ctx context.Context, flowID, sessionID string) (session.View, error)
	Update(ctx context.Context, flowID, sessionID string, fn func(*session.Session) error) (session.View, error)
	Discard(ctx context.Context, flowID, sessionID string) error
	Score(a domain.Answers) []domain.Candidate
	Explain(a domain.Answers) []recommend.Breakdown
}

// Server serves the questionnaire API.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	Version string

	metrics http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics mounts h (typically promhttp.Handler()) on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the application version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = strings.TrimSpace(v)
	}
}

// New creates a Server for the engine.
func New(engine Engine, opts ...Option) *Server {
	server := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		Version: "dev",
	}
	for _, opt := range opts {
		opt(server)
	}
	return server
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return New(engine, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/flows", s.ListFlows)
	r.Post("/score", s.Score)

	r.Route("/flows/{flowID}", func(r chi.Router) {
		r.Get("/steps", s.ListSteps)
		r.Post("/sessions", s.StartSession)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DiscardSession)
			r.Put("/answers/{key}", s.SetAnswer)
			r.Delete("/answers/{key}", s.ClearAnswer)
			r.Post("/answers/{key}/selections", s.AddSelection)
			r.Delete("/answers/{key}/selections/{value}", s.RemoveSelection)
			r.Patch("/contact", s.SetContact)
			r.Post("/advance", s.Advance)
			r.Post("/retreat", s.Retreat)
			r.Post("/jump", s.JumpTo)
			r.Post("/submit", s.Submit)
			r.Post("/reset", s.Reset)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Intake API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// NavigationResponse is returned by advance and retreat.
type NavigationResponse struct {
	Outcome string       `json:"outcome"`
	View    session.View `json:"view"`
}

// SubmitResponse is returned by submit.
type SubmitResponse struct {
	Result submission.Result `json:"result"`
	View   session.View      `json:"view"`
}

// ScoreResponse is returned by score.
type ScoreResponse struct {
	Candidates []domain.Candidate    `json:"candidates"`
	Breakdown  []recommend.Breakdown `json:"breakdown,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := LoadSpec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "intake-http",
		"version":     s.Version,
		"api_version": apiVersion,
	})
}

// ListFlows handles the GET /flows request.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.Flows())
}

// ListSteps handles the GET /flows/{flowID}/steps request.
func (s *Server) ListSteps(w http.ResponseWriter, r *http.Request) {
	list, err := s.Engine.Steps(chi.URLParam(r, "flowID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// StartSession handles the POST /flows/{flowID}/sessions request.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			badRequest(w, "Invalid request body", err)
			return
		}
	}

	view, err := s.Engine.Start(r.Context(), chi.URLParam(r, "flowID"), body.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.broadcast(view.FlowID, view.SessionID, domain.Diff(nil, stateOf(view)))
	writeJSON(w, http.StatusCreated, view)
}

// GetSession handles the GET /flows/{flowID}/sessions/{sessionID} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Engine.Open(r.Context(), chi.URLParam(r, "flowID"), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DiscardSession handles the DELETE /flows/{flowID}/sessions/{sessionID} request.
func (s *Server) DiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Discard(r.Context(), chi.URLParam(r, "flowID"), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetAnswer handles the PUT .../answers/{key} request.
func (s *Server) SetAnswer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value any `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "Invalid request body", err)
		return
	}

	flowID, key := chi.URLParam(r, "flowID"), chi.URLParam(r, "key")
	v, err := answers.ValueFrom(body.Value, s.kindOf(flowID, key))
	if err != nil {
		badRequest(w, "Invalid answer", err)
		return
	}
	s.mutate(w, r, func(sess *session.Session) error {
		return sess.SetAnswer(key, v)
	})
}

// ClearAnswer handles the DELETE .../answers/{key} request.
func (s *Server) ClearAnswer(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s.mutate(w, r, func(sess *session.Session) error {
		return sess.ClearAnswer(key)
	})
}

// AddSelection handles the POST .../answers/{key}/selections request.
func (s *Server) AddSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Value == "" {
		badRequest(w, "Invalid request body", err)
		return
	}
	key := chi.URLParam(r, "key")
	s.mutate(w, r, func(sess *session.Session) error {
		return sess.AddToMultiSelect(key, body.Value)
	})
}

// RemoveSelection handles the DELETE .../answers/{key}/selections/{value} request.
func (s *Server) RemoveSelection(w http.ResponseWriter, r *http.Request) {
	key, value := chi.URLParam(r, "key"), chi.URLParam(r, "value")
	s.mutate(w, r, func(sess *session.Session) error {
		return sess.RemoveFromMultiSelect(key, value)
	})
}

// SetContact handles the PATCH .../contact request.
func (s *Server) SetContact(w http.ResponseWriter, r *http.Request) {
	var patch domain.ContactPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		badRequest(w, "Invalid request body", err)
		return
	}
	s.mutate(w, r, func(sess *session.Session) error {
		return sess.SetContactInfo(patch)
	})
}

// Advance handles the POST .../advance request. A blocked advance is not an
// error: the view is returned unchanged with outcome "blocked".
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	var outcome flow.Outcome
	view, ok := s.update(w, r, func(sess *session.Session) error {
		outcome = sess.Advance()
		return nil
	})
	if ok {
		writeJSON(w, http.StatusOK, NavigationResponse{Outcome: outcome.String(), View: view})
	}
}

// Retreat handles the POST .../retreat request.
func (s *Server) Retreat(w http.ResponseWriter, r *http.Request) {
	outcome := "unchanged"
	view, ok := s.update(w, r, func(sess *session.Session) error {
		if sess.Retreat() {
			outcome = "retreated"
		}
		return nil
	})
	if ok {
		writeJSON(w, http.StatusOK, NavigationResponse{Outcome: outcome, View: view})
	}
}

// JumpTo handles the POST .../jump request.
func (s *Server) JumpTo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StepID string `json:"step_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.StepID == "" {
		badRequest(w, "Invalid request body", err)
		return
	}
	s.mutate(w, r, func(sess *session.Session) error {
		return sess.JumpTo(body.StepID)
	})
}

// Submit handles the POST .../submit request. Collaborator failures are part
// of the result, not HTTP errors.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	var res submission.Result
	view, ok := s.update(w, r, func(sess *session.Session) error {
		var err error
		res, err = sess.Submit(r.Context())
		return err
	})
	if ok {
		writeJSON(w, http.StatusOK, SubmitResponse{Result: res, View: view})
	}
}

// Reset handles the POST .../reset request.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session.Session) error {
		sess.Reset()
		return nil
	})
}

// Score handles the POST /score request: ranks an ad-hoc answers document.
func (s *Server) Score(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		badRequest(w, "Invalid request body", err)
		return
	}
	a, err := answers.AnswersFrom(raw)
	if err != nil {
		badRequest(w, "Invalid answers", err)
		return
	}

	resp := ScoreResponse{Candidates: s.Engine.Score(a)}
	if explain, _ := strconv.ParseBool(r.URL.Query().Get("explain")); explain {
		resp.Breakdown = s.Engine.Explain(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

// mutate runs fn and responds with the resulting view.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	if view, ok := s.update(w, r, fn); ok {
		writeJSON(w, http.StatusOK, view)
	}
}

// update runs fn under the session lock, broadcasts the resulting diff and
// writes the error response when fn or the lookup fails.
func (s *Server) update(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) (session.View, bool) {
	flowID, sessionID := chi.URLParam(r, "flowID"), chi.URLParam(r, "sessionID")

	var diff *domain.SessionDiff
	view, err := s.Engine.Update(r.Context(), flowID, sessionID, func(sess *session.Session) error {
		before := sess.State()
		err := fn(sess)
		diff = domain.Diff(before, sess.State())
		return err
	})
	s.broadcast(flowID, sessionID, diff)

	if err != nil {
		writeError(w, err)
		return view, false
	}
	return view, true
}

func (s *Server) broadcast(flowID, sessionID string, diff *domain.SessionDiff) {
	if diff == nil {
		slog.Debug("No diff calculated", "session_id", sessionID)
		return
	}
	bytes, err := json.Marshal(diff)
	if err != nil {
		slog.Error("Diff encode failed", "error", err)
		return
	}
	s.Streams.Broadcast(domain.SessionKey(flowID, sessionID), string(bytes))
}

// kindOf returns the declared kind of key, or "" when no step owns it.
func (s *Server) kindOf(flowID, key string) domain.ValueKind {
	list, err := s.Engine.Steps(flowID)
	if err != nil {
		return ""
	}
	for _, st := range list {
		if q, ok := st.Question(key); ok {
			return q.Kind
		}
	}
	return ""
}

func stateOf(v session.View) *domain.SessionState {
	return &domain.SessionState{
		SessionID: v.SessionID,
		FlowID:    v.FlowID,
		Answers:   v.Answers,
		Cursor:    domain.Cursor{CurrentStepIndex: v.Step.Position},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

func badRequest(w http.ResponseWriter, msg string, err error) {
	slog.Warn(msg, "error", err)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrFlowNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrStepNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInapplicableField),
		errors.Is(err, domain.ErrFlowComplete),
		errors.Is(err, domain.ErrFlowIncomplete),
		errors.Is(err, domain.ErrSubmissionInFlight),
		errors.Is(err, domain.ErrAlreadySubmitted):
		status = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
