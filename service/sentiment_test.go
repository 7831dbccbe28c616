package service

import (
	"testing"

	"storybook-server/models"
)

func TestDetectSentiment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"neutral seed", "A kid who finds a glowing seed", models.ToneNeutral},
		{"positive", "A happy puppy makes a new friend at the park", models.TonePositive},
		{"negative", "A lonely bear is sad and lost in the dark woods", models.ToneNegative},
		{"empty", "", models.ToneNeutral},
		{"whitespace", "   \n ", models.ToneNeutral},
		{"mixed leans positive", "A sad dragon learns a magic happy song", models.TonePositive},
		{"punctuation stripped", "So happy!", models.TonePositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectSentiment(tt.in); got != tt.want {
				t.Errorf("DetectSentiment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetectSentiment_Stable(t *testing.T) {
	seed := "A kid who finds a glowing seed"
	first := DetectSentiment(seed)
	for i := 0; i < 10; i++ {
		if got := DetectSentiment(seed); got != first {
			t.Fatalf("classification must be stable for the same seed, got %q then %q", first, got)
		}
	}
}
