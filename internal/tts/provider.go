package tts

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderGoogleTranslate = "gtts"
	ProviderElevenLabs      = "elevenlabs"
	ProviderOpenAI          = "openai"
	ProviderGoogleCloud     = "google"
)

// Config selects and configures a provider.
type Config struct {
	Provider   string
	HTTPClient *http.Client

	ElevenLabs ElevenLabsConfig
	OpenAI     OpenAIConfig
	Google     GoogleCloudConfig
}

// New builds the client named by cfg.Provider. An empty provider means gtts.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGoogleTranslate:
		return NewGoogleTranslateClient(GoogleTranslateConfig{HTTPClient: cfg.HTTPClient}), nil
	case ProviderElevenLabs:
		if cfg.ElevenLabs.APIKey == "" {
			return nil, fmt.Errorf("ELEVENLABS_API_KEY is required for provider %q", ProviderElevenLabs)
		}
		elCfg := cfg.ElevenLabs
		if elCfg.HTTPClient == nil {
			elCfg.HTTPClient = cfg.HTTPClient
		}
		return NewElevenLabsClient(elCfg), nil
	case ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for provider %q", ProviderOpenAI)
		}
		oaCfg := cfg.OpenAI
		if oaCfg.HTTPClient == nil {
			oaCfg.HTTPClient = cfg.HTTPClient
		}
		return NewOpenAIClient(oaCfg), nil
	case ProviderGoogleCloud:
		return NewGoogleCloudClient(ctx, cfg.Google)
	default:
		return nil, fmt.Errorf("unknown TTS provider %q", cfg.Provider)
	}
}
