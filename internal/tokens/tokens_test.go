package tokens

import "testing"

func TestHeuristicCount(t *testing.T) {
	h := Heuristic{}
	cases := []struct {
		text string
		want int
	}{
		{"", 1},
		{"a", 1},
		{"abcd", 1},
		{"abcdefg", 1},
		{"abcdefgh", 2},
		{"this is a twenty char", 5},
	}
	for _, tc := range cases {
		if got := h.Count(tc.text); got != tc.want {
			t.Errorf("Count(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestForModelUnknownFallsBack(t *testing.T) {
	c := ForModel("definitely-not-a-real-model")
	if _, ok := c.(Heuristic); !ok {
		t.Errorf("unknown model should select the heuristic, got %T", c)
	}
	if got := c.Count("abcdefgh"); got != 2 {
		t.Errorf("fallback Count = %d, want 2", got)
	}
}
