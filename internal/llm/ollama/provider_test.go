package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/card-workbench/internal/domain"
	"github.com/Rrens/card-workbench/internal/llm"
)

func TestReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		assert.Contains(t, req.Prompt, "[#3] Budget (active)")

		json.NewEncoder(w).Encode(ollamaResponse{Response: "Answer: Plan quarterly [#3].", Done: true, EvalCount: 42})
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "")
	assert.Equal(t, "llama3", p.DefaultModel())

	resp, err := p.Reply(context.Background(), llm.Request{
		Message: "how to budget",
		Cards:   []domain.CardShape{domain.CardRef{ID: 3, Title: "Budget", Status: "active"}},
	}, "mistral")
	require.NoError(t, err)

	assert.Equal(t, "Plan quarterly [#3].", resp.Answer)
	assert.Equal(t, 42, resp.TokensUsed)
	require.Len(t, resp.UsedCards, 1)
	assert.Equal(t, int64(3), resp.UsedCards[0].ID)
}

func TestReplyBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewProvider(srv.URL, "llama3").Reply(context.Background(), llm.Request{Message: "x"}, "")
	assert.ErrorContains(t, err, "status 502")
}

func TestReplyCitesOnlyGroundingCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaResponse{Response: "See [#4] and [#99], then [#4] again.", Done: true})
	}))
	defer srv.Close()

	resp, err := NewProvider(srv.URL, "llama3").Reply(context.Background(), llm.Request{
		Message: "travel rules",
		Cards: []domain.CardShape{
			domain.CardRef{ID: 3, Title: "Budget", Status: "active"},
			domain.CardRef{ID: 4, Title: "Travel", Status: "green"},
		},
	}, "")
	require.NoError(t, err)
	require.Len(t, resp.UsedCards, 1)
	assert.Equal(t, int64(4), resp.UsedCards[0].ID)
}

func TestReplyEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaResponse{Response: "Answer:  ", Done: true})
	}))
	defer srv.Close()

	_, err := NewProvider(srv.URL, "llama3").Reply(context.Background(), llm.Request{Message: "x"}, "")
	assert.ErrorContains(t, err, "empty response")
}
