// Package api exposes the design actions over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/vitae/internal/contract"
	"github.com/kalambet/vitae/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Actions is the caller-facing action layer.
type Actions interface {
	SubmitGeneration(ctx context.Context, raw any) contract.Result[contract.Artifact]
	SubmitRefinement(ctx context.Context, raw any) contract.Result[contract.Artifact]
	SubmitFeedbackSummary(ctx context.Context, raw any) contract.Result[contract.FeedbackSummary]
}

// SessionStore persists designs between requests.
type SessionStore interface {
	CreateSession(sess storage.Session) error
	GetSession(id string) (storage.Session, error)
	SaveRevision(id string, rev storage.Revision) (storage.Session, error)
	ListSessions(limit int) ([]storage.Session, error)
	ListRevisions(id string) ([]storage.Revision, error)
	DeleteSession(id string) error
}

// Deps holds what the HTTP handler needs. Sessions is optional; without it
// the /v1/sessions routes are not mounted.
type Deps struct {
	Actions  Actions
	Sessions SessionStore
	Token    string
	Logger   *slog.Logger
}

// NewHandler returns the HTTP API. Everything under /v1 requires the bearer
// token when one is configured.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)

	r.Route("/v1", func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}

		r.Post("/generate", handleGenerate(deps))
		r.Post("/refine", handleRefine(deps))
		r.Post("/feedback/summary", handleFeedbackSummary(deps))

		if deps.Sessions != nil {
			r.Get("/sessions", handleListSessions(deps))
			r.Post("/sessions", handleCreateSession(deps))
			r.Get("/sessions/{id}", handleGetSession(deps))
			r.Put("/sessions/{id}", handleEditSession(deps))
			r.Delete("/sessions/{id}", handleDeleteSession(deps))
			r.Get("/sessions/{id}/revisions", handleListRevisions(deps))
			r.Post("/sessions/{id}/refine", handleRefineSession(deps))
			r.Get("/sessions/{id}/document", handleSessionDocument(deps))
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleGenerate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		res := deps.Actions.SubmitGeneration(r.Context(), body)
		writeJSON(w, resultStatus(res.OK, res.Kind), res)
	}
}

func handleRefine(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		res := deps.Actions.SubmitRefinement(r.Context(), body)
		writeJSON(w, resultStatus(res.OK, res.Kind), res)
	}
}

func handleFeedbackSummary(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		res := deps.Actions.SubmitFeedbackSummary(r.Context(), body)
		writeJSON(w, resultStatus(res.OK, res.Kind), res)
	}
}

// readBody reads a JSON request body. It writes a 400 and returns false when
// the body is too large or not JSON; whether the JSON has the right shape is
// left to the action layer.
func readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	b, err := io.ReadAll(r.Body)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "reading request body: %v", err)
		return nil, false
	}
	if !json.Valid(b) {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "request body must be valid JSON")
		return nil, false
	}
	return json.RawMessage(b), true
}

func resultStatus(ok bool, kind contract.Kind) int {
	if ok {
		return http.StatusOK
	}
	switch kind {
	case contract.KindInputValidation:
		return http.StatusUnprocessableEntity
	case contract.KindGeneration, contract.KindRefinement, contract.KindSummary:
		return http.StatusBadGateway
	default:
		return http.StatusServiceUnavailable
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
