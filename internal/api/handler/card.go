package handler

import (
	"net/http"

	"github.com/Rrens/card-workbench/internal/api/response"
	"github.com/Rrens/card-workbench/internal/domain"
)

// CreateCard creates a card through the catalog
func (h *SessionHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var input domain.CardCreate
	if !decode(w, r, &input) {
		return
	}

	ctx, cancel := h.svc.OpContext(r.Context())
	defer cancel()

	card, err := sess.CreateCard(ctx, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, map[string]any{
		"card":     card,
		"registry": sess.Registry(),
	})
}

// CardDetail returns a card with its domain, owner, sources and events
func (h *SessionHandler) CardDetail(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := int64Param(r, "cardID")
	if err != nil {
		response.BadRequest(w, "invalid card ID")
		return
	}

	ctx, cancel := h.svc.OpContext(r.Context())
	defer cancel()

	full, err := sess.CardDetail(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, full)
}
