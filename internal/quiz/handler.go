package quiz

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pharmexam/examprep/internal/auth"
	httperrors "github.com/pharmexam/examprep/pkg/http/errors"
)

// HTTPHandler exposes quiz sessions over REST. Every response is the
// session snapshot so the client can re-render from any operation.
type HTTPHandler struct {
	manager *Manager
	logger  zerolog.Logger
}

func NewHTTPHandler(manager *Manager, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{manager: manager, logger: logger}
}

// StartSession handles POST /v1/quiz/sessions.
func (h *HTTPHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req struct {
		Category string `json:"category"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
			return
		}
	}

	id, snap, err := h.manager.Start(r.Context(), owner, req.Category)
	if err != nil {
		httperrors.RespondInternalError(w, "Failed to start quiz session")
		return
	}

	h.respondSnapshot(w, http.StatusCreated, id, snap)
}

// GetSession handles GET /v1/quiz/sessions/{id}.
func (h *HTTPHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(owner, id uuid.UUID) (Snapshot, error) {
		return h.manager.Snapshot(owner, id)
	})
}

// SelectAnswer handles POST /v1/quiz/sessions/{id}/select.
func (h *HTTPHandler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Choice string `json:"choice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	h.withSession(w, r, func(owner, id uuid.UUID) (Snapshot, error) {
		return h.manager.Select(owner, id, req.Choice)
	})
}

// CheckAnswer handles POST /v1/quiz/sessions/{id}/check.
func (h *HTTPHandler) CheckAnswer(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(owner, id uuid.UUID) (Snapshot, error) {
		return h.manager.Check(owner, id)
	})
}

// NextQuestion handles POST /v1/quiz/sessions/{id}/next.
func (h *HTTPHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(owner, id uuid.UUID) (Snapshot, error) {
		return h.manager.Next(owner, id)
	})
}

// PreviousQuestion handles POST /v1/quiz/sessions/{id}/previous.
func (h *HTTPHandler) PreviousQuestion(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(owner, id uuid.UUID) (Snapshot, error) {
		return h.manager.Previous(owner, id)
	})
}

// JumpToQuestion handles POST /v1/quiz/sessions/{id}/jump.
func (h *HTTPHandler) JumpToQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	h.withSession(w, r, func(owner, id uuid.UUID) (Snapshot, error) {
		return h.manager.JumpTo(owner, id, req.Index)
	})
}

// ToggleFlag handles POST /v1/quiz/sessions/{id}/flag.
func (h *HTTPHandler) ToggleFlag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	h.withSession(w, r, func(owner, id uuid.UUID) (Snapshot, error) {
		return h.manager.ToggleFlag(owner, id, req.Index)
	})
}

// RestartSession handles POST /v1/quiz/sessions/{id}/restart.
func (h *HTTPHandler) RestartSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(owner, id uuid.UUID) (Snapshot, error) {
		return h.manager.Restart(r.Context(), owner, id)
	})
}

// GetResults handles GET /v1/quiz/sessions/{id}/results.
func (h *HTTPHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.sessionRef(w, r)
	if !ok {
		return
	}

	summary, err := h.manager.Results(owner, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
			return
		}
		httperrors.RespondError(w, http.StatusConflict, httperrors.ErrCodeResultsUnavailable, "Session is not completed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func (h *HTTPHandler) withSession(w http.ResponseWriter, r *http.Request, op func(owner, id uuid.UUID) (Snapshot, error)) {
	owner, id, ok := h.sessionRef(w, r)
	if !ok {
		return
	}

	snap, err := op(owner, id)
	if err != nil {
		h.respondOperationError(w, err)
		return
	}
	h.respondSnapshot(w, http.StatusOK, id, snap)
}

func (h *HTTPHandler) sessionRef(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	owner, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid session ID")
		return uuid.Nil, uuid.Nil, false
	}
	return owner, id, true
}

func (h *HTTPHandler) respondOperationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
	case errors.Is(err, ErrNoSelection):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeNoSelection, "No answer selected")
	case errors.Is(err, ErrInvalidChoice):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidChoice, "Choice label must be A-D")
	case errors.Is(err, ErrIndexOutOfRange):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeQuestionOutOfRange, "Question index out of range")
	case errors.Is(err, ErrInvalidOperation):
		httperrors.RespondError(w, http.StatusConflict, httperrors.ErrCodeInvalidOperation, err.Error())
	default:
		h.logger.Error().Err(err).Msg("quiz operation failed")
		httperrors.RespondInternalError(w, "Quiz operation failed")
	}
}

func (h *HTTPHandler) respondSnapshot(w http.ResponseWriter, status int, id uuid.UUID, snap Snapshot) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session_id": id.String(),
		"snapshot":   snap,
	})
}
