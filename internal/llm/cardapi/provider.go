// Package cardapi delegates chat replies to the card service's mock chat
// endpoint.
package cardapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/card-workbench/internal/domain"
	"github.com/Rrens/card-workbench/internal/llm"
)

// Provider implements llm.Provider over POST /chat/mock
type Provider struct {
	baseURL string
	client  *http.Client
}

// NewProvider creates a new card API reply provider
func NewProvider(baseURL string, timeout time.Duration) llm.Provider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "catalog"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{"mock"}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return "mock"
}

// IsConfigured checks that the card API URL is set
func (p *Provider) IsConfigured() bool {
	return p.baseURL != ""
}

type chatRequest struct {
	Message         string  `json:"message"`
	SelectedCardIDs []int64 `json:"selected_card_ids"`
}

type usedCard struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	DomainName string `json:"domain_name"`
	Status     string `json:"status"`
}

type chatResponse struct {
	Answer    string     `json:"answer"`
	UsedCards []usedCard `json:"used_cards"`
}

// Reply posts the message and the selected ids
func (p *Provider) Reply(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("catalog provider is not configured (missing api url)")
	}

	ids := req.CardIDs
	if ids == nil {
		ids = []int64{}
	}
	body, err := json.Marshal(chatRequest{Message: req.Message, SelectedCardIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/mock", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	used := make([]domain.CardRef, 0, len(chatResp.UsedCards))
	for _, c := range chatResp.UsedCards {
		used = append(used, domain.CardRef{ID: c.ID, Title: c.Title, Status: c.Status})
	}

	return &llm.Response{
		Answer:    chatResp.Answer,
		UsedCards: used,
		Model:     p.DefaultModel(),
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}
