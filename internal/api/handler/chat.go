package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/card-workbench/internal/api/response"
)

type messageRequest struct {
	Message string `json:"message" validate:"required,notblank,max=4000"`
}

type chatSettingsRequest struct {
	HideSources *bool `json:"hide_sources" validate:"required"`
}

// Chat returns the chat view
func (h *SessionHandler) Chat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	response.OK(w, sess.Chat())
}

// StartChat snapshots the selection and sends the opening message
func (h *SessionHandler) StartChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req messageRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := h.svc.OpContext(r.Context())
	defer cancel()

	// a failed opening reply still leaves the session started
	snap, err := sess.StartChat(ctx, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, map[string]any{
		"snapshot": snap,
		"chat":     sess.Chat(),
	})
}

// SendMessage sends one user turn
func (h *SessionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req messageRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := h.svc.OpContext(r.Context())
	defer cancel()

	if err := sess.SendMessage(ctx, req.Message); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, sess.Chat())
}

// ClearChat moves the transcript into the restore buffer
func (h *SessionHandler) ClearChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.ClearChat()
	response.OK(w, sess.Chat())
}

// RestoreChat brings back the previous transcript
func (h *SessionHandler) RestoreChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	restored := sess.RestoreChat()
	response.OK(w, map[string]any{
		"restored": restored,
		"chat":     sess.Chat(),
	})
}

// ExportChat renders the transcript as text
func (h *SessionHandler) ExportChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	response.OK(w, map[string]string{"text": sess.ExportChat()})
}

// ChatSettings toggles source display
func (h *SessionHandler) ChatSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req chatSettingsRequest
	if !decode(w, r, &req) {
		return
	}

	sess.SetHideSources(*req.HideSources)
	response.OK(w, sess.Chat())
}

// Snapshots lists the selection snapshots taken at chat start
func (h *SessionHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	response.OK(w, sess.Snapshots())
}

// CopyMessage returns one message ready for the clipboard
func (h *SessionHandler) CopyMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		response.BadRequest(w, "invalid message index")
		return
	}

	text, err := sess.CopyMessage(index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]string{"text": text})
}
