package httpapi

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/lukasbauer/falavoz/internal/eventlog"
	"github.com/lukasbauer/falavoz/internal/notifications"
)

type RouterConfig struct {
	// PublicBaseURL overrides the base URL derived from each request when
	// building media links and checking Twilio signatures.
	PublicBaseURL string

	// TwilioAuthToken enables X-Twilio-Signature validation on the webhook.
	TwilioAuthToken string

	// WebhookRateLimit is requests per minute per IP; 0 disables limiting.
	WebhookRateLimit int

	// TTSProvider names the active provider for cost estimates.
	TTSProvider string
}

// Speaker synthesizes text into the shared artifact.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	EnsurePlaceholder(ctx context.Context) (bool, error)
}

// Artifact gives read access to the shared audio file.
type Artifact interface {
	Open() (*os.File, fs.FileInfo, error)
	Exists() bool
	Path() string
	Dir() string
}

type Router struct {
	cfg      RouterConfig
	logger   *zap.SugaredLogger
	speech   Speaker
	artifact Artifact
	eventLog *eventlog.Logger
	discord  *notifications.Discord
	mux      chi.Router
}

func NewRouter(cfg RouterConfig, logger *zap.SugaredLogger, speaker Speaker, artifact Artifact, eventLog *eventlog.Logger, discord *notifications.Discord) http.Handler {
	r := &Router{
		cfg:      cfg,
		logger:   logger,
		speech:   speaker,
		artifact: artifact,
		eventLog: eventLog,
		discord:  discord,
		mux:      chi.NewRouter(),
	}

	r.routes()
	return r.mux
}

func (r *Router) routes() {
	r.mux.Use(
		middleware.RequestID,
		middleware.RealIP,
		withSentryRecovery,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Twilio-Signature"},
		}),
		middleware.GetHead,
	)

	// Status
	r.mux.Get("/", r.handleHome)
	r.mux.Get("/test", r.handleTest)
	r.mux.Get("/healthz", r.handleHealthz)

	// Twilio webhook (no auth - signature verified when a token is configured)
	r.mux.With(r.webhookMiddleware()...).Post("/whatsapp", r.handleWhatsApp)

	// Fetched by Twilio when delivering the media reply
	r.mux.Get("/audio", r.handleAudio)
}

func (r *Router) webhookMiddleware() []func(http.Handler) http.Handler {
	var mws []func(http.Handler) http.Handler
	if r.cfg.WebhookRateLimit > 0 {
		mws = append(mws, httprate.LimitByIP(r.cfg.WebhookRateLimit, time.Minute))
	}
	if r.cfg.TwilioAuthToken != "" {
		mws = append(mws, r.withTwilioSignature)
	}
	return mws
}

func (r *Router) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withSentryRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(req)
				hub.RecoverWithContext(req.Context(), err)
				hub.Flush(2 * time.Second)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, req)
	})
}

// captureError sends an error to Sentry with request context
func captureError(req *http.Request, err error, msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(req)
		scope.SetExtra("message", msg)
		sentry.CaptureException(err)
	})
}

// baseURL returns the public root of this service without a trailing slash.
// The configured PublicBaseURL wins; otherwise it is rebuilt from the request.
func (r *Router) baseURL(req *http.Request) string {
	if r.cfg.PublicBaseURL != "" {
		return strings.TrimRight(r.cfg.PublicBaseURL, "/")
	}
	return requestBaseURL(req)
}

func requestBaseURL(req *http.Request) string {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme, _, _ = strings.Cut(proto, ",")
		scheme = strings.ToLower(strings.TrimSpace(scheme))
	}
	return scheme + "://" + req.Host
}
