package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const elevenLabsAPIURL = "https://api.elevenlabs.io/v1/text-to-speech"

const maxElevenLabsAudioSize = 10 * 1024 * 1024

// ElevenLabsClient implements the Client interface using ElevenLabs' API.
type ElevenLabsClient struct {
	apiKey     string
	voiceID    string
	modelID    string
	stability  float64
	similarity float64
	baseURL    string
	httpClient *http.Client
}

// ElevenLabsConfig holds configuration for the ElevenLabs client.
type ElevenLabsConfig struct {
	APIKey     string
	VoiceID    string  // ElevenLabs voice ID
	ModelID    string  // e.g., "eleven_flash_v2_5" for low latency
	Stability  float64 // negative means default (0.5)
	Similarity float64 // negative means default (0.75)
	BaseURL    string
	HTTPClient *http.Client
}

// NewElevenLabsClient creates a new ElevenLabs client.
func NewElevenLabsClient(cfg ElevenLabsConfig) *ElevenLabsClient {
	modelID := cfg.ModelID
	if modelID == "" {
		modelID = "eleven_flash_v2_5" // multilingual, accepts language_code
	}
	voiceID := cfg.VoiceID
	if voiceID == "" {
		voiceID = "21m00Tcm4TlvDq8ikWAM" // Rachel - default voice
	}
	stability := cfg.Stability
	if stability < 0 {
		stability = 0.5
	}
	similarity := cfg.Similarity
	if similarity < 0 {
		similarity = 0.75
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = elevenLabsAPIURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ElevenLabsClient{
		apiKey:     cfg.APIKey,
		voiceID:    voiceID,
		modelID:    modelID,
		stability:  stability,
		similarity: similarity,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ttsRequest represents an ElevenLabs TTS request.
type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	LanguageCode  string        `json:"language_code,omitempty"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize converts text to speech and returns MP3 audio.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s?output_format=mp3_44100_128", c.baseURL, c.voiceID)

	req := ttsRequest{
		Text:         text,
		ModelID:      c.modelID,
		LanguageCode: primaryLanguage(lang),
		VoiceSettings: voiceSettings{
			Stability:       c.stability,
			SimilarityBoost: c.similarity,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, providerErr(ProviderElevenLabs, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, providerErr(ProviderElevenLabs, fmt.Errorf("failed to create request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, providerErr(ProviderElevenLabs, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) // Limit error response size
		return nil, providerErr(ProviderElevenLabs, fmt.Errorf("ElevenLabs API error: %s - %s", resp.Status, string(respBody)))
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxElevenLabsAudioSize))
	if err != nil {
		return nil, providerErr(ProviderElevenLabs, fmt.Errorf("failed to read audio: %w", err))
	}
	return audio, nil
}

// primaryLanguage returns the ISO 639-1 part of a tag ("pt-br" -> "pt").
func primaryLanguage(lang string) string {
	primary, _, _ := strings.Cut(strings.TrimSpace(lang), "-")
	return strings.ToLower(primary)
}
