package cardapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/card-workbench/internal/llm"
)

func TestReply(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/mock", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"answer":"Picked 1 card","used_cards":[{"id":5,"title":"Budget","domain_name":"Finance","status":"active"}]}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL+"/", time.Second)
	require.True(t, p.IsConfigured())

	resp, err := p.Reply(context.Background(), llm.Request{Message: "budget", CardIDs: []int64{5, 6}}, "")
	require.NoError(t, err)

	assert.Equal(t, "budget", got.Message)
	assert.Equal(t, []int64{5, 6}, got.SelectedCardIDs)
	assert.Equal(t, "Picked 1 card", resp.Answer)
	require.Len(t, resp.UsedCards, 1)
	assert.Equal(t, "Budget", resp.UsedCards[0].Title)
	assert.Equal(t, "active", resp.UsedCards[0].Status)
}

func TestReplyErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewProvider(srv.URL, time.Second).Reply(context.Background(), llm.Request{Message: "x"}, "")
	assert.ErrorContains(t, err, "status 500")

	unset := NewProvider("", 0)
	assert.False(t, unset.IsConfigured())
	_, err = unset.Reply(context.Background(), llm.Request{Message: "x"}, "")
	assert.Error(t, err)
}
