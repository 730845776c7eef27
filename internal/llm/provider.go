package llm

import (
	"context"

	"github.com/Rrens/card-workbench/internal/domain"
)

// Request contains the grounded chat reply parameters
type Request struct {
	Message string
	CardIDs []int64
	Cards   []domain.CardShape
	History []domain.ChatMessage
}

// Response contains the reply and the cards it cites
type Response struct {
	Answer     string
	UsedCards  []domain.CardRef
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for chat reply providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has what it needs to answer
	IsConfigured() bool

	// Reply answers the message using only the given cards
	Reply(ctx context.Context, req Request, model string) (*Response, error)
}
