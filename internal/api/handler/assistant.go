package handler

import (
	"net/http"

	"github.com/Rrens/card-workbench/internal/api/response"
	"github.com/Rrens/card-workbench/internal/workbench"
)

type searchRequest struct {
	Query string `json:"query" validate:"required,notblank,max=500"`
}

// Search scores the corpus and appends a search block
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req searchRequest
	if !decode(w, r, &req) {
		return
	}

	block, err := sess.Search(req.Query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, map[string]any{
		"block":     block,
		"blocks":    sess.Blocks(),
		"selection": sess.Selection(),
	})
}

// Blocks returns the filtered search blocks, newest first
func (h *SessionHandler) Blocks(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	response.OK(w, sess.Blocks())
}

// ClearBlocks empties the search log and the selection
func (h *SessionHandler) ClearBlocks(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.ClearAssistant()
	response.OK(w, sess.State())
}

// SetFilters replaces the assistant filter
func (h *SessionHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var f workbench.AssistantFilter
	if !decode(w, r, &f) {
		return
	}

	sess.SetAssistantFilter(f)
	response.OK(w, sess.Blocks())
}

type visibilityRequest struct {
	Visibility workbench.Visibility `json:"visibility" validate:"required,oneof=all selected unselected"`
}

// SetVisibility switches the assistant between all, selected and unselected cards
func (h *SessionHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req visibilityRequest
	if !decode(w, r, &req) {
		return
	}

	sess.SetVisibility(req.Visibility)
	response.OK(w, sess.Blocks())
}
