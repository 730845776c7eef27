package handler

import (
	"net/http"

	"github.com/Rrens/card-workbench/internal/api/response"
)

type toggleRequest struct {
	Included bool `json:"included"`
}

type bulkRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

type restoreSelectionRequest struct {
	SnapshotID string `json:"snapshot_id" validate:"required,notblank"`
}

// Selection lists the selected cards as chips
func (h *SessionHandler) Selection(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	response.OK(w, sess.Selection())
}

// Toggle includes or excludes one card
func (h *SessionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := int64Param(r, "cardID")
	if err != nil {
		response.BadRequest(w, "invalid card ID")
		return
	}

	var req toggleRequest
	if !decode(w, r, &req) {
		return
	}

	if err := sess.Toggle(id, req.Included); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, sess.Selection())
}

// Bulk includes several cards at once
func (h *SessionHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req bulkRequest
	if !decode(w, r, &req) {
		return
	}

	if err := sess.AddMany(req.IDs); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, sess.Selection())
}

// MarkAll selects every result of every block
func (h *SessionHandler) MarkAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	added := sess.MarkAll()
	response.OK(w, map[string]any{
		"added":     added,
		"selection": sess.Selection(),
	})
}

// ClearSelection empties the selection
func (h *SessionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.ClearSelection()
	response.OK(w, sess.Selection())
}

// Recommended replaces the selection with the best verified cards
func (h *SessionHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	ids := sess.ChooseRecommended()
	if ids == nil {
		ids = []int64{}
	}
	response.OK(w, map[string]any{
		"chosen":    ids,
		"selection": sess.Selection(),
	})
}

// RestoreSelection replaces the selection with a chat snapshot
func (h *SessionHandler) RestoreSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req restoreSelectionRequest
	if !decode(w, r, &req) {
		return
	}

	if err := sess.RestoreSelection(req.SnapshotID); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, sess.Selection())
}
