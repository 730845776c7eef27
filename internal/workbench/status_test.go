package workbench

import "testing"

func TestColorOf(t *testing.T) {
	tests := []struct {
		status string
		want   Color
	}{
		{"active", ColorGreen},
		{"green", ColorGreen},
		{"draft", ColorYellow},
		{"yellow", ColorYellow},
		{"red", ColorRed},
		{"archived", ColorGrey},
		{"grey", ColorGrey},
		{"", ColorGrey},
		{"pending-legal", ColorGrey},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := ColorOf(tt.status); got != tt.want {
				t.Errorf("ColorOf(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestLabelOf(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"green", "up to date"},
		{"active", "active"},
		{"yellow", "needs review"},
		{"red", "critical"},
		{"grey", "draft"},
		{"", NoLabel},
		{"draft", "draft"},
		{"something-else", "something-else"},
	}

	for _, tt := range tests {
		if got := LabelOf(tt.status); got != tt.want {
			t.Errorf("LabelOf(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestPenalty_UnmappedIsZero(t *testing.T) {
	if p := penalty("unknown"); p != 0 {
		t.Errorf("expected no penalty for unmapped status, got %v", p)
	}
	if p := penalty("archived"); p != PenaltyGrey {
		t.Errorf("expected grey penalty for archived, got %v", p)
	}
}
