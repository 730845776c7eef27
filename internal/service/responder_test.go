package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/card-workbench/internal/domain"
	"github.com/Rrens/card-workbench/internal/llm"
)

type stubProvider struct {
	name string
	got  llm.Request
	resp *llm.Response
	err  error
}

func (s *stubProvider) Name() string              { return s.name }
func (s *stubProvider) AvailableModels() []string { return []string{"m-1"} }
func (s *stubProvider) DefaultModel() string      { return "m-1" }
func (s *stubProvider) IsConfigured() bool        { return true }
func (s *stubProvider) Reply(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	s.got = req
	return s.resp, s.err
}

func TestProviderResponder_Reply(t *testing.T) {
	p := &stubProvider{name: "local", resp: &llm.Response{Answer: "see [#1]"}}
	router := llm.NewRouter("local")
	router.RegisterProvider(p)

	req := domain.ReplyRequest{
		Message: "finance?",
		CardIDs: []int64{1},
		Cards:   []domain.CardShape{domain.CardRef{ID: 1, Title: "Finance"}},
		History: []domain.ChatMessage{{From: domain.SenderUser, Text: "hi"}},
	}
	reply, err := NewProviderResponder(router, "", "").Reply(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "see [#1]", reply.Answer)
	assert.NotNil(t, reply.UsedCards)
	assert.Equal(t, "finance?", p.got.Message)
	assert.Equal(t, []int64{1}, p.got.CardIDs)
	assert.Len(t, p.got.History, 1)
}

func TestProviderResponder_Errors(t *testing.T) {
	router := llm.NewRouter("local")
	router.RegisterProvider(&stubProvider{name: "local", err: errors.New("boom")})

	_, err := NewProviderResponder(router, "", "").Reply(context.Background(), domain.ReplyRequest{Message: "x"})
	assert.EqualError(t, err, "local: boom")

	_, err = NewProviderResponder(router, "missing", "").Reply(context.Background(), domain.ReplyRequest{Message: "x"})
	assert.Error(t, err)
}
