package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lukasbauer/falavoz/internal/app"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := app.LoadConfigFromEnv()

	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	// Initialize Sentry for error monitoring
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		})
		if err != nil {
			log.Warnf("sentry init failed: %v", err)
		} else {
			log.Infof("sentry initialized")
			defer sentry.Flush(2 * time.Second)
		}
	}

	a, err := app.New(cfg, log)
	if err != nil {
		if cfg.SentryDSN != "" {
			sentry.CaptureException(err)
			sentry.Flush(2 * time.Second)
		}
		log.Fatalf("init app: %v", err)
	}

	// Old audio is cleaned before the first request is accepted.
	a.StartBackground()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("starting server on port %s", cfg.Port)
		log.Infof("base dir: %s", a.AudioDir())
		log.Infof("audio file: %s", a.AudioPath())
		log.Infof("tts provider: %s (language %s)", cfg.TTSProvider, cfg.TTSLanguage)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
	if err := a.Close(); err != nil {
		log.Warnf("close: %v", err)
	}
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}
