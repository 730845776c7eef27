// Package local answers chat messages in-process by keyword matching the
// grounding cards, without any model.
package local

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Rrens/card-workbench/internal/domain"
	"github.com/Rrens/card-workbench/internal/llm"
)

const (
	minKeywordLength = 3
	maxUsedCards     = 5

	answerNone = "I have not found matching cards for your request yet. " +
		"Try rephrasing it or adding other keywords."
	answerFound = "For your request I picked %d cards: %s. " +
		"The service is running in simulation mode and does not generate a full answer, " +
		"but you can open these cards to see details and sources."
)

// Provider implements llm.Provider with keyword matching
type Provider struct{}

// NewProvider creates a new keyword provider
func NewProvider() llm.Provider {
	return &Provider{}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "local"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{"keyword"}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return "keyword"
}

// IsConfigured always reports true
func (p *Provider) IsConfigured() bool {
	return true
}

// Keywords returns the lowercased message words of at least three characters
func Keywords(message string) []string {
	var keywords []string
	for _, word := range strings.Fields(message) {
		if utf8.RuneCountInString(word) >= minKeywordLength {
			keywords = append(keywords, strings.ToLower(word))
		}
	}
	return keywords
}

// Reply cites up to five cards whose title or description contains a keyword
func (p *Provider) Reply(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	keywords := Keywords(req.Message)
	used := []domain.CardRef{}
	if len(keywords) > 0 {
		for _, shape := range req.Cards {
			ref := shape.Ref()
			haystack := strings.ToLower(ref.Title + "\n" + ref.Description)
			for _, kw := range keywords {
				if strings.Contains(haystack, kw) {
					used = append(used, ref)
					break
				}
			}
			if len(used) == maxUsedCards {
				break
			}
		}
	}

	answer := answerNone
	if len(used) > 0 {
		titles := make([]string, 0, len(used))
		for _, c := range used {
			titles = append(titles, c.Title)
		}
		answer = fmt.Sprintf(answerFound, len(used), strings.Join(titles, ", "))
	}

	return &llm.Response{
		Answer:    answer,
		UsedCards: used,
		Model:     p.DefaultModel(),
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}
