package tts

import (
	"context"
	"fmt"
)

// Client defines the interface for text-to-speech providers.
type Client interface {
	// Synthesize converts text to speech and returns MP3 audio data.
	// lang is a BCP 47 style tag such as "pt-br".
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// ProviderError wraps any failure coming from a TTS provider, including
// transport errors and non-2xx responses.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
