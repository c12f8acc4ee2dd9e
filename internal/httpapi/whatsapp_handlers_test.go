package httpapi

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/lukasbauer/falavoz/internal/audio"
	"github.com/lukasbauer/falavoz/internal/speech"
	"github.com/lukasbauer/falavoz/internal/tts"
)

type fakeTTS struct {
	mu    sync.Mutex
	audio []byte
	err   error
	texts []string
}

func (f *fakeTTS) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return f.audio, f.err
}

func (f *fakeTTS) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type testEnv struct {
	handler http.Handler
	store   *audio.Store
	tts     *fakeTTS
}

func newTestEnv(t *testing.T, cfg RouterConfig, fake *fakeTTS) *testEnv {
	t.Helper()
	store, err := audio.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	logger := zap.NewNop().Sugar()
	svc := speech.NewService(fake, store, speech.DefaultLanguage, nil, logger)
	return &testEnv{
		handler: NewRouter(cfg, logger, svc, store, nil, nil),
		store:   store,
		tts:     fake,
	}
}

// parsedReply mirrors the TwiML we emit for assertions.
type parsedReply struct {
	XMLName xml.Name `xml:"Response"`
	Message struct {
		Body  string `xml:",chardata"`
		Media string `xml:"Media"`
	} `xml:"Message"`
}

func postWhatsApp(t *testing.T, h http.Handler, target string, form url.Values) (*httptest.ResponseRecorder, parsedReply) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var reply parsedReply
	if rec.Code == http.StatusOK {
		if err := xml.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
			t.Fatalf("invalid TwiML %q: %v", rec.Body.String(), err)
		}
	}
	return rec, reply
}

func TestTwiMLStructures(t *testing.T) {
	t.Run("text reply", func(t *testing.T) {
		out, err := xml.Marshal(textReply("Olá"))
		if err != nil {
			t.Fatalf("failed to marshal TwiML: %v", err)
		}
		if got := string(out); got != "<Response><Message>Olá</Message></Response>" {
			t.Errorf("TwiML = %s", got)
		}
	})

	t.Run("media reply", func(t *testing.T) {
		out, _ := xml.Marshal(mediaReply("https://example.com/audio"))
		if got := string(out); got != "<Response><Message><Media>https://example.com/audio</Media></Message></Response>" {
			t.Errorf("TwiML = %s", got)
		}
	})

	t.Run("text is escaped", func(t *testing.T) {
		out, _ := xml.Marshal(textReply("a < b & c"))
		if !strings.Contains(string(out), "a &lt; b &amp; c") {
			t.Errorf("TwiML should escape text, got %s", out)
		}
	})
}

func TestHandleWhatsAppEmptyBody(t *testing.T) {
	env := newTestEnv(t, RouterConfig{}, &fakeTTS{audio: []byte("mp3")})

	for _, form := range []url.Values{{}, {"Body": {""}}, {"From": {"whatsapp:+5511"}}} {
		rec, reply := postWhatsApp(t, env.handler, "http://example.com/whatsapp", form)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if reply.Message.Body != "Por favor, envie uma mensagem de texto." {
			t.Errorf("reply text = %q", reply.Message.Body)
		}
		if reply.Message.Media != "" {
			t.Errorf("reply should have no media, got %q", reply.Message.Media)
		}
	}

	if len(env.tts.calls()) != 0 {
		t.Error("provider should not be called for empty bodies")
	}
	if env.store.Exists() {
		t.Error("artifact should not be created for empty bodies")
	}
}

func TestHandleWhatsAppSuccess(t *testing.T) {
	env := newTestEnv(t, RouterConfig{}, &fakeTTS{audio: []byte("hello-mp3")})

	rec, reply := postWhatsApp(t, env.handler, "http://example.com/whatsapp", url.Values{
		"Body":       {"Hello"},
		"From":       {"whatsapp:+5511999990000"},
		"MessageSid": {"SM123"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Errorf("Content-Type = %q, want text/xml", ct)
	}
	if reply.Message.Media != "http://example.com/audio" {
		t.Errorf("media = %q, want %q", reply.Message.Media, "http://example.com/audio")
	}
	if strings.TrimSpace(reply.Message.Body) != "" {
		t.Errorf("reply should have no text, got %q", reply.Message.Body)
	}

	got, err := os.ReadFile(env.store.Path())
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if string(got) != "hello-mp3" {
		t.Errorf("artifact = %q, want %q", got, "hello-mp3")
	}
	if calls := env.tts.calls(); len(calls) != 1 || calls[0] != "Hello" {
		t.Errorf("provider calls = %q, want [Hello]", calls)
	}
}

func TestHandleWhatsAppBodyFromQuery(t *testing.T) {
	env := newTestEnv(t, RouterConfig{}, &fakeTTS{audio: []byte("mp3")})

	_, reply := postWhatsApp(t, env.handler, "http://example.com/whatsapp?Body=Oi", url.Values{})
	if reply.Message.Media != "http://example.com/audio" {
		t.Errorf("media = %q, Body in query string should be accepted", reply.Message.Media)
	}
}

func TestHandleWhatsAppBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RouterConfig
		target  string
		headers map[string]string
		want    string
	}{
		{
			name:   "derived from host",
			target: "http://bot.local:5000/whatsapp",
			want:   "http://bot.local:5000/audio",
		},
		{
			name:    "forwarded proto",
			target:  "http://bot.example.com/whatsapp",
			headers: map[string]string{"X-Forwarded-Proto": "https"},
			want:    "https://bot.example.com/audio",
		},
		{
			name:   "public base url wins",
			cfg:    RouterConfig{PublicBaseURL: "https://voz.example.com/"},
			target: "http://10.0.0.5:5000/whatsapp",
			want:   "https://voz.example.com/audio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.cfg, &fakeTTS{audio: []byte("mp3")})

			form := url.Values{"Body": {"Hello"}}
			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, req)

			var reply parsedReply
			if err := xml.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
				t.Fatalf("invalid TwiML: %v", err)
			}
			if reply.Message.Media != tt.want {
				t.Errorf("media = %q, want %q", reply.Message.Media, tt.want)
			}
		})
	}
}

func TestHandleWhatsAppSynthesisError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"provider error", &tts.ProviderError{Provider: "gtts", Err: errors.New("connection refused")}},
		{"plain error", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, RouterConfig{}, &fakeTTS{err: tt.err})

			rec, reply := postWhatsApp(t, env.handler, "http://example.com/whatsapp", url.Values{"Body": {"Hello"}})

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if !strings.HasPrefix(reply.Message.Body, "error generating audio:") {
				t.Errorf("reply text = %q, want error prefix", reply.Message.Body)
			}
			if !strings.Contains(reply.Message.Body, tt.err.Error()) {
				t.Errorf("reply text %q should contain %q", reply.Message.Body, tt.err.Error())
			}
			if reply.Message.Media != "" {
				t.Errorf("reply should have no media, got %q", reply.Message.Media)
			}
			if env.store.Exists() {
				t.Error("artifact should not be written on failure")
			}
		})
	}
}

func TestHandleWhatsAppStorageError(t *testing.T) {
	env := newTestEnv(t, RouterConfig{}, &fakeTTS{audio: []byte("mp3")})
	if err := os.Mkdir(env.store.Path(), 0o755); err != nil {
		t.Fatal(err)
	}

	rec, reply := postWhatsApp(t, env.handler, "http://example.com/whatsapp", url.Values{"Body": {"Hello"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.HasPrefix(reply.Message.Body, "error generating audio: write ") {
		t.Errorf("reply text = %q", reply.Message.Body)
	}
}

func TestWhatsAppThenAudio(t *testing.T) {
	env := newTestEnv(t, RouterConfig{}, &fakeTTS{audio: []byte("hello-mp3")})

	_, reply := postWhatsApp(t, env.handler, "http://example.com/whatsapp", url.Values{"Body": {"Hello"}})
	if reply.Message.Media == "" {
		t.Fatal("expected media URL")
	}

	mediaURL, err := url.Parse(reply.Message.Media)
	if err != nil {
		t.Fatalf("bad media URL: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, mediaURL.String(), nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d", mediaURL.Path, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", ct)
	}
	if rec.Body.String() != "hello-mp3" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "hello-mp3")
	}
}
