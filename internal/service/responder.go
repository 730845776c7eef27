package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/card-workbench/internal/domain"
	"github.com/Rrens/card-workbench/internal/llm"
)

// ProviderResponder answers chat turns through the configured llm provider
type ProviderResponder struct {
	router   *llm.Router
	provider string
	model    string
}

// NewProviderResponder creates a responder; an empty provider name uses
// the router default.
func NewProviderResponder(router *llm.Router, provider, model string) *ProviderResponder {
	return &ProviderResponder{router: router, provider: provider, model: model}
}

// Reply implements workbench.Responder
func (r *ProviderResponder) Reply(ctx context.Context, req domain.ReplyRequest) (*domain.Reply, error) {
	provider, err := r.router.GetProvider(r.provider)
	if err != nil {
		return nil, err
	}

	resp, err := provider.Reply(ctx, llm.Request{
		Message: req.Message,
		CardIDs: req.CardIDs,
		Cards:   req.Cards,
		History: req.History,
	}, r.model)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", provider.Name(), err)
	}

	log.Debug().
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Int("used_cards", len(resp.UsedCards)).
		Msg("chat reply generated")

	used := resp.UsedCards
	if used == nil {
		used = []domain.CardRef{}
	}
	return &domain.Reply{Answer: resp.Answer, UsedCards: used}, nil
}
