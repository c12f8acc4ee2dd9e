package tts

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// GoogleCloudClient implements the Client interface with Google Cloud
// Text-to-Speech.
type GoogleCloudClient struct {
	client    *texttospeech.Client
	voiceName string
}

// GoogleCloudConfig holds configuration for the Google Cloud client.
type GoogleCloudConfig struct {
	CredentialsFile string // empty uses application default credentials
	VoiceName       string // e.g. "pt-BR-Wavenet-A"; empty lets the API pick
}

// NewGoogleCloudClient dials the Text-to-Speech API.
func NewGoogleCloudClient(ctx context.Context, cfg GoogleCloudConfig) (*GoogleCloudClient, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google TTS client: %w", err)
	}
	return &GoogleCloudClient{client: client, voiceName: cfg.VoiceName}, nil
}

// Synthesize converts text to speech and returns MP3 audio.
func (c *GoogleCloudClient) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	voice := &texttospeechpb.VoiceSelectionParams{
		LanguageCode: googleTranslateLang(lang),
		Name:         c.voiceName,
	}
	if c.voiceName == "" {
		voice.SsmlGender = texttospeechpb.SsmlVoiceGender_NEUTRAL
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: voice,
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := c.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, providerErr(ProviderGoogleCloud, err)
	}
	if len(resp.GetAudioContent()) == 0 {
		return nil, providerErr(ProviderGoogleCloud, fmt.Errorf("empty audio for language %s", strings.ToLower(lang)))
	}
	return resp.GetAudioContent(), nil
}

// Close releases the gRPC connection.
func (c *GoogleCloudClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
