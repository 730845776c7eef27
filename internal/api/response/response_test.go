package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		write       func(w http.ResponseWriter)
		wantStatus  int
		wantSuccess bool
	}{
		{"ok", func(w http.ResponseWriter) { OK(w, map[string]int{"n": 1}) }, http.StatusOK, true},
		{"created", func(w http.ResponseWriter) { Created(w, "x") }, http.StatusCreated, true},
		{"conflict", func(w http.ResponseWriter) { Conflict(w, "busy") }, http.StatusConflict, false},
		{"bad gateway", func(w http.ResponseWriter) { BadGateway(w, "down") }, http.StatusBadGateway, false},
		{"fail", func(w http.ResponseWriter) { Fail(w, http.StatusNotFound, "not_found", "missing") }, http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantSuccess, resp.Success)
			if tt.wantSuccess {
				assert.Nil(t, resp.Error)
			} else {
				assert.NotNil(t, resp.Error)
			}
		})
	}
}

func TestInvalid(t *testing.T) {
	rec := httptest.NewRecorder()
	Invalid(rec, map[string]string{"title": "field is required"})

	var body struct {
		Error Problem `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_failed", body.Error.Code)
	assert.Equal(t, "field is required", body.Error.Fields["title"])
}
