package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const maxOpenAIAudioSize = 10 * 1024 * 1024

// OpenAIClient implements the Client interface with OpenAI's speech endpoint.
// The model detects the language from the input, so lang is not sent.
type OpenAIClient struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
}

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey     string
	Model      string // default "tts-1"
	Voice      string // default "alloy"
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpenAIClient creates a new OpenAI TTS client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	model := openai.SpeechModel(cfg.Model)
	if cfg.Model == "" {
		model = openai.TTSModel1
	}
	voice := openai.SpeechVoice(cfg.Voice)
	if cfg.Voice == "" {
		voice = openai.VoiceAlloy
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		voice:  voice,
	}
}

// Synthesize converts text to speech and returns MP3 audio.
func (c *OpenAIClient) Synthesize(ctx context.Context, text, _ string) ([]byte, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          c.model,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, providerErr(ProviderOpenAI, err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(io.LimitReader(resp, maxOpenAIAudioSize))
	if err != nil {
		return nil, providerErr(ProviderOpenAI, fmt.Errorf("failed to read audio: %w", err))
	}
	return audio, nil
}
