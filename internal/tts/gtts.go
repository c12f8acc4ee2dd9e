package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	googleTranslateTTSURL = "https://translate.google.com/translate_tts"

	// The public endpoint rejects longer inputs, so text is sent in pieces
	// and the MP3 responses are concatenated.
	maxGoogleTranslateChunk = 100

	maxGoogleTranslateAudioSize = 10 * 1024 * 1024
)

// GoogleTranslateClient speaks through the Google Translate TTS endpoint,
// the same engine the gTTS library uses. It needs no credentials.
type GoogleTranslateClient struct {
	baseURL    string
	httpClient *http.Client
}

// GoogleTranslateConfig holds configuration for the Google Translate client.
type GoogleTranslateConfig struct {
	BaseURL    string // overrides the public endpoint, used by tests
	HTTPClient *http.Client
}

// NewGoogleTranslateClient creates a new Google Translate TTS client.
func NewGoogleTranslateClient(cfg GoogleTranslateConfig) *GoogleTranslateClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = googleTranslateTTSURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &GoogleTranslateClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Synthesize fetches every chunk of text in order and joins the audio.
func (c *GoogleTranslateClient) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	chunks := splitText(text, maxGoogleTranslateChunk)
	if len(chunks) == 0 {
		return nil, providerErr(ProviderGoogleTranslate, fmt.Errorf("no text to speak"))
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		data, err := c.fetchChunk(ctx, chunk, googleTranslateLang(lang), i, len(chunks))
		if err != nil {
			return nil, providerErr(ProviderGoogleTranslate, err)
		}
		audio.Write(data)
	}
	return audio.Bytes(), nil
}

func (c *GoogleTranslateClient) fetchChunk(ctx context.Context, chunk, lang string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko)")
	httpReq.Header.Set("Referer", "https://translate.google.com/")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("Google Translate TTS error: %s - %s", resp.Status, string(respBody))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxGoogleTranslateAudioSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio for chunk %d/%d", idx+1, total)
	}
	return data, nil
}

// googleTranslateLang turns "pt-br" into "pt-BR", the casing the endpoint expects.
func googleTranslateLang(lang string) string {
	primary, region, found := strings.Cut(strings.TrimSpace(lang), "-")
	if !found {
		return strings.ToLower(primary)
	}
	return strings.ToLower(primary) + "-" + strings.ToUpper(region)
}

// splitText breaks text on whitespace into pieces of at most max runes.
// Words longer than max are cut.
func splitText(text string, max int) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > max {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:max]))
			word = string(runes[max:])
		}
		wl := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+1+wl > max {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += wl
	}
	flush()
	return chunks
}
