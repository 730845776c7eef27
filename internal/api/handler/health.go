package handler

import (
	"net/http"

	"github.com/Rrens/card-workbench/internal/api/response"
	"github.com/Rrens/card-workbench/internal/llm"
	"github.com/Rrens/card-workbench/internal/service"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck reports readiness including catalog connectivity
func ReadyCheck(svc *service.WorkbenchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ready(r.Context()); err != nil {
			response.Fail(w, http.StatusServiceUnavailable, "catalog_unavailable", "catalog not ready: "+err.Error())
			return
		}

		response.OK(w, map[string]any{
			"status":   "ready",
			"sessions": svc.Count(),
		})
	}
}

// ListLLMProviders returns the registered reply providers
func ListLLMProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.GetProvidersInfo(),
			"default_provider": router.DefaultProvider(),
		})
	}
}

// FlushCache clears every cached corpus
func FlushCache(svc *service.WorkbenchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := svc.FlushCache(r.Context())
		if err != nil {
			response.InternalError(w, "failed to flush cache: "+err.Error())
			return
		}

		response.OK(w, map[string]any{
			"message":      "cache flushed successfully",
			"keys_deleted": deleted,
		})
	}
}
