package workbench

// Color is the canonical status class of a card
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorGrey   Color = "grey"
)

// NoLabel is shown for an empty status
const NoLabel = "—"

var statusColors = map[string]Color{
	"active":   ColorGreen,
	"draft":    ColorYellow,
	"archived": ColorGrey,
	"green":    ColorGreen,
	"yellow":   ColorYellow,
	"red":      ColorRed,
	"grey":     ColorGrey,
}

var statusLabels = map[string]string{
	"green":  "up to date",
	"active": "active",
	"yellow": "needs review",
	"red":    "critical",
	"grey":   "draft",
}

// ColorOf maps a raw status to its color class, grey when unmapped
func ColorOf(status string) Color {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return ColorGrey
}

// LabelOf returns the display label of a raw status, echoing unknown values
func LabelOf(status string) string {
	if status == "" {
		return NoLabel
	}
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// colorKey is what status-set filters compare against: the mapped color,
// or the raw status when unmapped.
func colorKey(status string) string {
	if c, ok := statusColors[status]; ok {
		return string(c)
	}
	return status
}

// isRecommendable reports whether a status counts as green for recommendations
func isRecommendable(status string) bool {
	c, ok := statusColors[status]
	return ok && c == ColorGreen
}

// penalty is applied once per scored card. Unmapped statuses are not
// penalised even though they display as grey.
func penalty(status string) float64 {
	c, ok := statusColors[status]
	if !ok {
		return 0
	}
	switch c {
	case ColorYellow:
		return PenaltyYellow
	case ColorRed:
		return PenaltyRed
	case ColorGrey:
		return PenaltyGrey
	}
	return 0
}
