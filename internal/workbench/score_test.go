package workbench

import (
	"testing"

	"github.com/Rrens/card-workbench/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"lowercases", "Finance POLICY", []string{"finance", "policy"}},
		{"drops short terms", "ab of tax rules", []string{"tax", "rules"}},
		{"only short terms", "ab", []string{}},
		{"extra whitespace", "  risk \t\n limits ", []string{"risk", "limits"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.query))
		})
	}
}

func TestScore(t *testing.T) {
	finance := func(status string) *domain.Card {
		return &domain.Card{ID: 1, Title: "Finance policy", Content: "covers finance rules", Status: status}
	}

	tests := []struct {
		name  string
		card  domain.CardShape
		terms []string
		want  float64
	}{
		{"title and content", finance("green"), []string{"finance"}, 7},
		{"yellow penalty", finance("yellow"), []string{"finance"}, 6},
		{"draft maps to yellow", finance("draft"), []string{"finance"}, 6},
		{"red penalty", finance("red"), []string{"finance"}, 5},
		{"grey penalty", finance("archived"), []string{"finance"}, 6.5},
		{"unmapped no penalty", finance("custom"), []string{"finance"}, 7},
		{"no terms", finance("red"), nil, 0},
		{
			"all three fields",
			&domain.Card{Title: "Tax", Description: "tax guide", Content: "tax", Status: "active"},
			[]string{"tax"},
			10,
		},
		{
			"multiple terms add up",
			&domain.Card{Title: "Risk limits", Description: "limits", Status: "green"},
			[]string{"risk", "limits"},
			13,
		},
		{"non match with penalty is negative", finance("red"), []string{"payroll"}, -2},
		{
			"minimal card has no content",
			domain.CardRef{ID: 2, Title: "Finance", Description: "finance", Status: "green"},
			[]string{"finance"},
			8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.card, tt.terms))
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	card := &domain.Card{Title: "Finance policy", Description: "Finance", Content: "finance", Status: "red"}
	terms := Tokenize("finance policy")
	first := Score(card, terms)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(card, terms))
	}
}

func TestScoreCorpus(t *testing.T) {
	cards := []domain.CardShape{
		&domain.Card{ID: 1, Title: "Finance policy", Status: "green"},
		&domain.Card{ID: 2, Title: "HR onboarding", Status: "green"},
		&domain.Card{ID: 3, Title: "Finance archive", Status: "red"},
		&domain.Card{ID: 4, Title: "Legal", Status: "red"},
	}

	t.Run("drops non positive scores", func(t *testing.T) {
		got := ScoreCorpus(cards, []string{"finance"})
		ids := make([]int64, len(got))
		for i, r := range got {
			ids[i] = r.Card.Ref().ID
		}
		assert.Equal(t, []int64{1, 3}, ids)
		assert.Equal(t, 5.0, got[0].Score)
		assert.Equal(t, 3.0, got[1].Score)
	})

	t.Run("empty terms pass everything unscored", func(t *testing.T) {
		got := ScoreCorpus(cards, Tokenize("ab"))
		assert.Len(t, got, 4)
		for _, r := range got {
			assert.Zero(t, r.Score)
		}
	})

	t.Run("empty corpus", func(t *testing.T) {
		assert.Empty(t, ScoreCorpus(nil, Tokenize("ab")))
	})
}
