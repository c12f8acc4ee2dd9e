package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port          string
	PublicBaseURL string
	AudioDir      string
	LogLevel      string
	Environment   string

	// Text-to-speech
	TTSProvider       string // gtts, elevenlabs, openai or google
	TTSLanguage       string
	TTSTimeout        time.Duration
	ElevenLabsAPIKey  string
	TTSVoiceID        string // ElevenLabs voice ID
	ElevenLabsModelID string
	OpenAIAPIKey      string
	OpenAITTSModel    string
	OpenAITTSVoice    string
	GoogleCredentials string
	GoogleTTSVoice    string

	// Cleanup of old audio files
	SweepMaxAge   time.Duration
	SweepInterval time.Duration // 0 runs the sweep at startup only

	// Optional integrations
	DatabaseURL       string
	SentryDSN         string
	DiscordWebhookURL string

	// Webhook protection
	TwilioAuthTok    string
	WebhookRateLimit int // requests per minute per IP, 0 disables

	// S3-compatible archive of generated audio
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3UseSSL    bool
}

func LoadConfigFromEnv() Config {
	return Config{
		Port:          getenv("PORT", "5000"),
		PublicBaseURL: getenv("PUBLIC_BASE_URL", ""),
		AudioDir:      getenv("AUDIO_DIR", "."),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		Environment:   getenv("ENVIRONMENT", "development"),

		TTSProvider:       getenv("TTS_PROVIDER", "gtts"),
		TTSLanguage:       getenv("TTS_LANGUAGE", "pt-br"),
		TTSTimeout:        getenvDuration("TTS_TIMEOUT", 30*time.Second),
		ElevenLabsAPIKey:  getenv("ELEVENLABS_API_KEY", ""),
		TTSVoiceID:        getenv("TTS_VOICE_ID", ""),
		ElevenLabsModelID: getenv("ELEVENLABS_MODEL_ID", ""),
		OpenAIAPIKey:      getenv("OPENAI_API_KEY", ""),
		OpenAITTSModel:    getenv("OPENAI_TTS_MODEL", ""),
		OpenAITTSVoice:    getenv("OPENAI_TTS_VOICE", ""),
		GoogleCredentials: getenv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GoogleTTSVoice:    getenv("GOOGLE_TTS_VOICE", ""),

		SweepMaxAge:   getenvDuration("SWEEP_MAX_AGE", time.Hour),
		SweepInterval: getenvDuration("SWEEP_INTERVAL", 0),

		DatabaseURL:       getenv("DATABASE_URL", ""),
		SentryDSN:         getenv("SENTRY_DSN", ""),
		DiscordWebhookURL: getenv("DISCORD_WEBHOOK_URL", ""),

		TwilioAuthTok:    getenv("TWILIO_AUTH_TOKEN", ""),
		WebhookRateLimit: getenvIntClamped("WEBHOOK_RATE_LIMIT", 0, 0, 10000),

		S3Endpoint:  getenv("S3_ENDPOINT", ""),
		S3AccessKey: getenv("S3_ACCESS_KEY", ""),
		S3SecretKey: getenv("S3_SECRET_KEY", ""),
		S3Bucket:    getenv("S3_BUCKET", ""),
		S3Region:    getenv("S3_REGION", ""),
		S3UseSSL:    getenvBool("S3_USE_SSL", true),
	}
}

// Addr is the listen address; the server binds every interface.
func (c Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getenvIntClamped parses an int env var, clamping it to [min, max].
// Unset or unparseable values return def.
func getenvIntClamped(k string, def, min, max int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// getenvDuration accepts Go durations ("90s", "2h") or plain seconds.
func getenvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}
