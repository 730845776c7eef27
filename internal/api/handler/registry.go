package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Rrens/card-workbench/internal/api/response"
	"github.com/Rrens/card-workbench/internal/workbench"
)

type pageSizeRequest struct {
	PageSize int `json:"page_size" validate:"required,min=1"`
}

type modeRequest struct {
	Mode workbench.PresentationMode `json:"mode" validate:"required,oneof=table compact"`
}

type checkRequest struct {
	Checked bool `json:"checked"`
}

// Registry returns the registry view
func (h *SessionHandler) Registry(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	response.OK(w, sess.Registry())
}

// registryOp runs a registry update on a detached context and replies
// with the recomputed view
func (h *SessionHandler) registryOp(w http.ResponseWriter, r *http.Request, sess *workbench.Session, op func(ctx context.Context) error) {
	ctx, cancel := h.svc.OpContext(r.Context())
	defer cancel()

	if err := op(ctx); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, sess.Registry())
}

// ApplyRegistry applies a new registry filter
func (h *SessionHandler) ApplyRegistry(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var f workbench.RegistryFilter
	if !decode(w, r, &f) {
		return
	}

	h.registryOp(w, r, sess, func(ctx context.Context) error {
		return sess.ApplyRegistry(ctx, f)
	})
}

// SetPageSize changes the registry page size
func (h *SessionHandler) SetPageSize(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req pageSizeRequest
	if !decode(w, r, &req) {
		return
	}
	if h.maxPageSize > 0 && req.PageSize > h.maxPageSize {
		response.Invalid(w, map[string]string{"PageSize": fmt.Sprintf("must be at most %d", h.maxPageSize)})
		return
	}

	h.registryOp(w, r, sess, func(ctx context.Context) error {
		return sess.SetRegistryPageSize(ctx, req.PageSize)
	})
}

// NextPage moves the registry forward
func (h *SessionHandler) NextPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.registryOp(w, r, sess, sess.NextPage)
}

// PrevPage moves the registry back
func (h *SessionHandler) PrevPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.registryOp(w, r, sess, sess.PrevPage)
}

// SetMode switches the registry layout
func (h *SessionHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req modeRequest
	if !decode(w, r, &req) {
		return
	}

	sess.SetRegistryMode(req.Mode)
	response.OK(w, sess.Registry())
}

// CheckRow ticks or unticks a registry row
func (h *SessionHandler) CheckRow(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := int64Param(r, "cardID")
	if err != nil {
		response.BadRequest(w, "invalid card ID")
		return
	}

	var req checkRequest
	if !decode(w, r, &req) {
		return
	}

	sess.ToggleRegistrySelected(id, req.Checked)
	response.OK(w, sess.Registry())
}

// OpenInChat turns a registry row into a one-card search block
func (h *SessionHandler) OpenInChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := int64Param(r, "cardID")
	if err != nil {
		response.BadRequest(w, "invalid card ID")
		return
	}

	block, err := sess.OpenInChat(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, map[string]any{
		"block": block,
		"state": sess.State(),
	})
}
