package workbench

import (
	"strings"

	"github.com/Rrens/card-workbench/internal/domain"
)

// Scoring weights. Tunable product heuristics.
const (
	WeightTitle       = 5.0
	WeightDescription = 3.0
	WeightContent     = 2.0

	PenaltyYellow = -1.0
	PenaltyRed    = -2.0
	PenaltyGrey   = -0.5

	// MinTermLength is the shortest query term that counts
	MinTermLength = 3
)

// Tokenize lower-cases a query and keeps whitespace-separated terms of at
// least MinTermLength runes.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) >= MinTermLength {
			terms = append(terms, f)
		}
	}
	return terms
}

// Score rates a card against query terms. No terms scores 0.
func Score(card domain.CardShape, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}

	ref := card.Ref()
	title := strings.ToLower(ref.Title)
	description := strings.ToLower(ref.Description)
	content := ""
	if full, ok := card.Full(); ok {
		content = strings.ToLower(full.Content)
	}

	var score float64
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += WeightTitle
		}
		if strings.Contains(description, term) {
			score += WeightDescription
		}
		if strings.Contains(content, term) {
			score += WeightContent
		}
	}

	return score + penalty(ref.Status)
}

// ScoreCorpus scores every card and keeps those with a positive score, or
// all of them unscored when there are no terms. Input order is preserved.
func ScoreCorpus(cards []domain.CardShape, terms []string) []domain.ScoredCard {
	results := make([]domain.ScoredCard, 0, len(cards))
	for _, c := range cards {
		s := Score(c, terms)
		if len(terms) > 0 && s <= 0 {
			continue
		}
		results = append(results, domain.ScoredCard{Card: c, Score: s})
	}
	return results
}
