package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kalambet/vitae/internal/contract"
	"github.com/kalambet/vitae/internal/render"
	"github.com/kalambet/vitae/internal/storage"
)

type sessionView struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Markup    string    `json:"markup"`
	Style     string    `json:"style"`
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type revisionView struct {
	Number    int       `json:"number"`
	Source    string    `json:"source"`
	Feedback  string    `json:"feedback,omitempty"`
	Markup    string    `json:"markup"`
	Style     string    `json:"style"`
	CreatedAt time.Time `json:"createdAt"`
}

// sessionResult is the response to an action performed on a session. Session
// is null when the action failed before anything was stored.
type sessionResult struct {
	Session *sessionView                       `json:"session"`
	Result  contract.Result[contract.Artifact] `json:"result"`
}

func viewOf(s storage.Session) *sessionView {
	return &sessionView{
		ID:        s.ID,
		Prompt:    s.Prompt,
		Markup:    s.Markup,
		Style:     s.Style,
		Revision:  s.Revision,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func handleListSessions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		sessions, err := deps.Sessions.ListSessions(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list sessions: %v", err)
			return
		}
		views := make([]*sessionView, len(sessions))
		for i, s := range sessions {
			views[i] = viewOf(s)
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func handleCreateSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		res := deps.Actions.SubmitGeneration(r.Context(), body)
		if !res.OK {
			writeJSON(w, resultStatus(res.OK, res.Kind), sessionResult{Result: res})
			return
		}

		// The action layer validated the body, so the prompt is present.
		req, _ := contract.Decode[contract.GenerationRequest](contract.GenerationInput, body)
		sess := storage.Session{
			ID:     uuid.New().String(),
			Prompt: req.PromptText,
			Markup: res.Value.Markup,
			Style:  res.Value.Style,
		}
		if err := deps.Sessions.CreateSession(sess); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to store session: %v", err)
			return
		}
		stored, err := deps.Sessions.GetSession(sess.ID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load session: %v", err)
			return
		}
		deps.Logger.Info("session created", "session_id", sess.ID)
		writeJSON(w, http.StatusOK, sessionResult{Session: viewOf(stored), Result: res})
	}
}

func handleGetSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := loadSession(w, r, deps)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, viewOf(sess))
	}
}

func handleDeleteSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !sessionFound(w, deps.Sessions.DeleteSession(chi.URLParam(r, "id"))) {
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleEditSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		var edit struct {
			Markup *string `json:"markup"`
			Style  *string `json:"style"`
		}
		if err := json.Unmarshal(body, &edit); err != nil || edit.Markup == nil || edit.Style == nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "markup and style are required strings")
			return
		}

		sess, err := deps.Sessions.SaveRevision(chi.URLParam(r, "id"), storage.Revision{
			Source: storage.SourceEdit,
			Markup: *edit.Markup,
			Style:  *edit.Style,
		})
		if !sessionFound(w, err) {
			return
		}
		writeJSON(w, http.StatusOK, viewOf(sess))
	}
}

func handleListRevisions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		revs, err := deps.Sessions.ListRevisions(chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list revisions: %v", err)
			return
		}
		if len(revs) == 0 {
			httpError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		views := make([]revisionView, len(revs))
		for i, rev := range revs {
			views[i] = revisionView{
				Number:    rev.Number,
				Source:    rev.Source,
				Feedback:  rev.Feedback,
				Markup:    rev.Markup,
				Style:     rev.Style,
				CreatedAt: rev.CreatedAt,
			}
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// handleRefineSession refines the session's design. Markup or style sent by
// the caller replace the stored copy, since the caller may have edited the
// design locally.
func handleRefineSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		var in struct {
			Feedback      *string `json:"feedback"`
			CurrentMarkup *string `json:"currentMarkup"`
			CurrentStyle  *string `json:"currentStyle"`
		}
		if err := json.Unmarshal(body, &in); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "request body must be a JSON object")
			return
		}

		sess, ok := loadSession(w, r, deps)
		if !ok {
			return
		}
		req := map[string]any{
			"currentMarkup": sess.Markup,
			"currentStyle":  sess.Style,
		}
		if in.CurrentMarkup != nil {
			req["currentMarkup"] = *in.CurrentMarkup
		}
		if in.CurrentStyle != nil {
			req["currentStyle"] = *in.CurrentStyle
		}
		if in.Feedback != nil {
			req["feedback"] = *in.Feedback
		}

		res := deps.Actions.SubmitRefinement(r.Context(), req)
		if !res.OK {
			writeJSON(w, resultStatus(res.OK, res.Kind), sessionResult{Session: viewOf(sess), Result: res})
			return
		}

		updated, err := deps.Sessions.SaveRevision(sess.ID, storage.Revision{
			Source:   storage.SourceRefine,
			Feedback: req["feedback"].(string),
			Markup:   res.Value.Markup,
			Style:    res.Value.Style,
		})
		if !sessionFound(w, err) {
			return
		}
		writeJSON(w, http.StatusOK, sessionResult{Session: viewOf(updated), Result: res})
	}
}

func handleSessionDocument(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := loadSession(w, r, deps)
		if !ok {
			return
		}
		doc, err := render.Document(contract.Artifact{Markup: sess.Markup, Style: sess.Style}, "Resume")
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to render document: %v", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(doc))
	}
}

func loadSession(w http.ResponseWriter, r *http.Request, deps Deps) (storage.Session, bool) {
	sess, err := deps.Sessions.GetSession(chi.URLParam(r, "id"))
	return sess, sessionFound(w, err)
}

func sessionFound(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, storage.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found", "session not found")
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "session store: %v", err)
	}
	return false
}
