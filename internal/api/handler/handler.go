package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/card-workbench/internal/api/response"
	"github.com/Rrens/card-workbench/internal/catalog"
	"github.com/Rrens/card-workbench/internal/service"
	"github.com/Rrens/card-workbench/internal/workbench"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// decode reads a JSON body into dst and validates it. It writes the
// failure response itself and reports whether the handler may go on.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return false
	}
	return check(w, dst)
}

func check(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		response.BadRequest(w, err.Error())
		return false
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required", "notblank":
			fields[field] = "field is required"
		case "required_without":
			fields[field] = "field is required when " + e.Param() + " is empty"
		case "min":
			fields[field] = "must be at least " + e.Param()
		case "max":
			fields[field] = "must be at most " + e.Param()
		case "oneof":
			fields[field] = "must be one of: " + e.Param()
		default:
			fields[field] = "validation failed on " + e.Tag()
		}
	}
	response.Invalid(w, fields)
	return false
}

// writeError maps engine, service and catalog errors onto HTTP statuses
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var collab *workbench.CollaboratorError

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, workbench.ErrCardNotFound), errors.Is(err, catalog.ErrNotFound):
		response.Fail(w, http.StatusNotFound, "card_not_found", err.Error())
	case errors.Is(err, workbench.ErrSnapshotNotFound):
		response.Fail(w, http.StatusNotFound, "snapshot_not_found", err.Error())
	case errors.Is(err, workbench.ErrMessageNotFound):
		response.Fail(w, http.StatusNotFound, "message_not_found", err.Error())
	case errors.Is(err, workbench.ErrNotAnswer):
		response.Fail(w, http.StatusBadRequest, "not_an_answer", err.Error())
	case errors.Is(err, workbench.ErrBusy):
		response.Fail(w, http.StatusConflict, "busy", err.Error())
	case errors.Is(err, workbench.ErrEmptyQuery):
		response.Fail(w, http.StatusBadRequest, "empty_query", err.Error())
	case errors.Is(err, workbench.ErrEmptyMessage):
		response.Fail(w, http.StatusBadRequest, "empty_message", err.Error())
	case errors.Is(err, workbench.ErrEmptySelection):
		response.Fail(w, http.StatusBadRequest, "empty_selection", err.Error())
	case errors.Is(err, workbench.ErrNotReady):
		response.Fail(w, http.StatusBadRequest, "not_ready", err.Error())
	case errors.Is(err, workbench.ErrPageOutOfRange):
		response.Fail(w, http.StatusBadRequest, "page_out_of_range", err.Error())
	case errors.Is(err, workbench.ErrInvalidPageSize):
		response.Fail(w, http.StatusBadRequest, "invalid_page_size", err.Error())
	case errors.Is(err, workbench.ErrValidation):
		response.Fail(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.As(err, &collab):
		log.Warn().Err(err).Str("op", collab.Op).Str("path", r.URL.Path).Msg("collaborator failed")
		response.Fail(w, http.StatusBadGateway, "collaborator_failed", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		response.InternalError(w, "internal error")
	}
}

// int64Param parses a numeric URL parameter
func int64Param(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
