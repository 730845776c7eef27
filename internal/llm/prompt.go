package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Rrens/card-workbench/internal/domain"
)

const maxCardText = 1200

// BuildPrompt creates a prompt that grounds the answer on the given cards
func BuildPrompt(req Request) string {
	var cards strings.Builder
	for _, shape := range req.Cards {
		ref := shape.Ref()
		text := ref.Description
		if full, ok := shape.Full(); ok && full.Content != "" {
			text = full.Content
		}
		text = strings.Join(strings.Fields(text), " ")
		if r := []rune(text); len(r) > maxCardText {
			text = string(r[:maxCardText]) + "…"
		}
		fmt.Fprintf(&cards, "[#%d] %s (%s): %s\n", ref.ID, ref.Title, ref.Status, text)
	}

	var history strings.Builder
	for _, m := range req.History {
		switch m.From {
		case domain.SenderUser:
			fmt.Fprintf(&history, "User: %s\n", m.Text)
		case domain.SenderBot:
			fmt.Fprintf(&history, "Expert: %s\n", m.Text)
		}
	}
	if history.Len() > 0 {
		history.WriteString("\n")
	}

	return fmt.Sprintf(`You are a domain expert assembled from a fixed set of knowledge cards.

Rules:
1. Answer ONLY from the cards below; say so when they do not cover the question
2. Cite every card you use with its marker, for example [#12]
3. Keep the answer short and factual
4. Do not invent card numbers

Cards:
%s
%sQuestion: %s

Answer:`, cards.String(), history.String(), req.Message)
}

var citationPattern = regexp.MustCompile(`\[#(\d+)\]`)

// ExtractCitations returns the cards cited by [#id] markers, in first-cited
// order. Without any known marker every grounding card is cited.
func ExtractCitations(answer string, cards []domain.CardShape) []domain.CardRef {
	byID := make(map[int64]domain.CardRef, len(cards))
	for _, c := range cards {
		ref := c.Ref()
		byID[ref.ID] = ref
	}

	var used []domain.CardRef
	seen := make(map[int64]bool)
	for _, m := range citationPattern.FindAllStringSubmatch(answer, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || seen[id] {
			continue
		}
		if ref, ok := byID[id]; ok {
			seen[id] = true
			used = append(used, ref)
		}
	}
	if len(used) > 0 {
		return used
	}

	all := make([]domain.CardRef, 0, len(cards))
	for _, c := range cards {
		all = append(all, c.Ref())
	}
	return all
}

// TrimAnswer strips surrounding whitespace and a leading "Answer:" label
func TrimAnswer(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "Answer:")
	return strings.TrimSpace(content)
}
