package costs

import (
	"strings"
	"testing"
)

func TestEstimateMessage(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		text     string
		want     MessageCosts
	}{
		{
			name:     "gtts is free",
			provider: "gtts",
			text:     strings.Repeat("a", 500),
			// TTS: 0, Twilio: 0.5
			want: MessageCosts{Characters: 500, TwilioCents: 0.5, TTSCents: 0, TotalCents: 0.5},
		},
		{
			name:     "elevenlabs 400 chars",
			provider: "elevenlabs",
			text:     strings.Repeat("a", 400),
			// TTS: (400/1000)*18 = 7.2
			want: MessageCosts{Characters: 400, TwilioCents: 0.5, TTSCents: 7.2, TotalCents: 7.7},
		},
		{
			name:     "openai 1000 chars",
			provider: "openai",
			text:     strings.Repeat("a", 1000),
			want:     MessageCosts{Characters: 1000, TwilioCents: 0.5, TTSCents: 1.5, TotalCents: 2},
		},
		{
			name:     "google counts runes not bytes",
			provider: "google",
			text:     strings.Repeat("ã", 500),
			// TTS: (500/1000)*1.6 = 0.8
			want: MessageCosts{Characters: 500, TwilioCents: 0.5, TTSCents: 0.8, TotalCents: 1.3},
		},
		{
			name:     "provider name is case insensitive",
			provider: "ElevenLabs",
			text:     strings.Repeat("a", 100),
			want:     MessageCosts{Characters: 100, TwilioCents: 0.5, TTSCents: 1.8, TotalCents: 2.3},
		},
		{
			name:     "unknown provider",
			provider: "espeak",
			text:     "Olá",
			want:     MessageCosts{Characters: 3, TwilioCents: 0.5, TTSCents: 0, TotalCents: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateMessage(tt.provider, tt.text)
			if got != tt.want {
				t.Errorf("EstimateMessage(%q, ...) = %+v, want %+v", tt.provider, got, tt.want)
			}
		})
	}
}

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.004, 0},
		{0.005, 0.01},
		{7.2, 7.2},
		{1.23456, 1.23},
	}

	for _, tt := range tests {
		if got := roundCents(tt.in); got != tt.want {
			t.Errorf("roundCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("TEST_COST", "2.5")
	if got := getEnvFloat("TEST_COST", 1); got != 2.5 {
		t.Errorf("getEnvFloat = %v, want 2.5", got)
	}

	t.Setenv("TEST_COST", "cheap")
	if got := getEnvFloat("TEST_COST", 1); got != 1 {
		t.Errorf("getEnvFloat with garbage = %v, want default 1", got)
	}
}
