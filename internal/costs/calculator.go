// Package costs estimates what answering a message costs.
package costs

import (
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Pricing constants in cents. They can be overridden via environment variables.
var (
	// TwilioCentsPerMessage is the Twilio fee for one WhatsApp message.
	// Default: $0.005/message = 0.5 cents
	TwilioCentsPerMessage = getEnvFloat("COST_TWILIO_CENTS_PER_MESSAGE", 0.5)

	// ElevenLabsCentsPerThousandChars is the cost per 1K characters for ElevenLabs TTS.
	// Default: $0.18/1K chars = 18 cents/1K chars
	ElevenLabsCentsPerThousandChars = getEnvFloat("COST_ELEVENLABS_CENTS_PER_1K_CHARS", 18.0)

	// OpenAICentsPerThousandChars is the cost per 1K characters for tts-1.
	// Default: $15/1M chars = 1.5 cents/1K chars
	OpenAICentsPerThousandChars = getEnvFloat("COST_OPENAI_CENTS_PER_1K_CHARS", 1.5)

	// GoogleCloudCentsPerThousandChars is the cost per 1K characters for WaveNet voices.
	// Default: $16/1M chars = 1.6 cents/1K chars
	GoogleCloudCentsPerThousandChars = getEnvFloat("COST_GOOGLE_CENTS_PER_1K_CHARS", 1.6)
)

// MessageCosts is the estimated cost of one synthesized reply in cents,
// rounded to a hundredth of a cent.
type MessageCosts struct {
	Characters  int
	TwilioCents float64
	TTSCents    float64
	TotalCents  float64
}

// EstimateMessage prices a reply spoken by provider. The Google Translate
// endpoint is free; unknown providers are priced at zero.
func EstimateMessage(provider, text string) MessageCosts {
	chars := utf8.RuneCountInString(text)

	var perThousand float64
	switch strings.ToLower(provider) {
	case "elevenlabs":
		perThousand = ElevenLabsCentsPerThousandChars
	case "openai":
		perThousand = OpenAICentsPerThousandChars
	case "google":
		perThousand = GoogleCloudCentsPerThousandChars
	}

	ttsCents := (float64(chars) / 1000.0) * perThousand

	costs := MessageCosts{
		Characters:  chars,
		TwilioCents: roundCents(TwilioCentsPerMessage),
		TTSCents:    roundCents(ttsCents),
	}
	costs.TotalCents = roundCents(costs.TwilioCents + costs.TTSCents)
	return costs
}

func roundCents(f float64) float64 {
	return math.Round(f*100) / 100
}

// getEnvFloat returns an environment variable as float64, or the default if not set.
func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
