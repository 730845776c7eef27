package domain

import (
	"encoding/json"
	"time"
)

// ScoredCard is a card paired with its relevance score for one query
type ScoredCard struct {
	Card  CardShape
	Score float64
}

// MarshalJSON flattens the card shape and tags its variant
func (s ScoredCard) MarshalJSON() ([]byte, error) {
	kind := "ref"
	if _, ok := s.Card.Full(); ok {
		kind = "full"
	}
	return json.Marshal(struct {
		Kind  string    `json:"kind"`
		Card  CardShape `json:"card"`
		Score float64   `json:"score"`
	}{kind, s.Card, s.Score})
}

// SearchBlock is one query's scored result set
type SearchBlock struct {
	Query     string       `json:"query"`
	Results   []ScoredCard `json:"results"`
	CreatedAt time.Time    `json:"created_at"`
}
