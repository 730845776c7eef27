package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/card-workbench/internal/api/middleware"
	"github.com/Rrens/card-workbench/internal/api/response"
	"github.com/Rrens/card-workbench/internal/service"
	"github.com/Rrens/card-workbench/internal/workbench"
)

// SessionHandler serves the workbench session routes
type SessionHandler struct {
	svc         *service.WorkbenchService
	maxPageSize int
}

// NewSessionHandler creates a new session handler. maxPageSize caps the
// registry page size; 0 means uncapped.
func NewSessionHandler(svc *service.WorkbenchService, maxPageSize int) *SessionHandler {
	return &SessionHandler{svc: svc, maxPageSize: maxPageSize}
}

// session resolves the {sessionID} parameter, writing a 404 when unknown
func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*workbench.Session, bool) {
	sess, err := h.svc.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

// Create opens a session and loads the catalog into it
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	ctx, cancel := h.svc.OpContext(r.Context())
	defer cancel()

	sess, err := h.svc.CreateSession(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID).Msg("session loaded partially")
	}

	response.Created(w, sess.State())
}

// Get returns the full derived state
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	response.OK(w, sess.State())
}

// Delete drops a session
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

type viewRequest struct {
	View workbench.View `json:"view" validate:"required,oneof=chat registry"`
}

// SetView switches between the chat and registry views
func (h *SessionHandler) SetView(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req viewRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := h.svc.OpContext(r.Context())
	defer cancel()

	if err := sess.SetView(ctx, req.View); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, sess.State())
}
