package app

import "testing"

func TestRegexClassifierGenerationIntent(t *testing.T) {
	c := NewRegexClassifier()

	cases := []struct {
		input string
		want  bool
	}{
		{"generate a fantasy script", true},
		{"GENERATE A FANTASY SCRIPT", true},
		{"please write a short story about robots", true},
		{"create a screenplay set in Lisbon", true},
		{"draft the opening scene", true},
		{"what genres do you support", false},
		{"tell me about your pricing", false},
		{"script", false},
		{"generate", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := c.IsGeneration(tc.input); got != tc.want {
			t.Fatalf("IsGeneration(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
