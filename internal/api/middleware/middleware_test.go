package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/card-workbench/internal/security"
)

func echoUser(w http.ResponseWriter, r *http.Request) {
	if id, ok := GetUserID(r.Context()); ok {
		w.Header().Set("X-User", strconv.FormatInt(id, 10))
	}
	w.WriteHeader(http.StatusOK)
}

func TestAuthenticate(t *testing.T) {
	jwtManager := security.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.GenerateAccessToken(7, "ann@example.com", "Ann")
	require.NoError(t, err)

	tests := []struct {
		name     string
		required bool
		header   string
		want     int
		wantUser bool
	}{
		{"anonymous allowed", false, "", http.StatusOK, false},
		{"anonymous rejected", true, "", http.StatusUnauthorized, false},
		{"bad scheme", false, "Basic abc", http.StatusUnauthorized, false},
		{"bad token", false, "Bearer nope", http.StatusUnauthorized, false},
		{"valid token", true, "Bearer " + token, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthMiddleware(jwtManager, tt.required).Authenticate(http.HandlerFunc(echoUser))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.wantUser, rec.Header().Get("X-User") != "")
		})
	}
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	s.keys = append(s.keys, key)
	return s.allowed, 4, time.Now().Add(30 * time.Second), s.err
}

func TestRateLimit(t *testing.T) {
	t.Run("allowed sets headers", func(t *testing.T) {
		limiter := &stubLimiter{allowed: true}
		h := NewRateLimitMiddleware(limiter).Limit(http.HandlerFunc(echoUser))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, []string{"addr:10.0.0.1"}, limiter.keys)
	})

	t.Run("denied", func(t *testing.T) {
		limiter := &stubLimiter{allowed: false}
		h := NewRateLimitMiddleware(limiter).Limit(http.HandlerFunc(echoUser))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, int64(9)))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Equal(t, []string{"user:9"}, limiter.keys)
	})

	t.Run("limiter failure lets request through", func(t *testing.T) {
		h := NewRateLimitMiddleware(&stubLimiter{err: errors.New("redis down")}).Limit(http.HandlerFunc(echoUser))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLogger(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
