package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lukasbauer/falavoz/internal/archive"
	"github.com/lukasbauer/falavoz/internal/audio"
	"github.com/lukasbauer/falavoz/internal/eventlog"
	"github.com/lukasbauer/falavoz/internal/httpapi"
	"github.com/lukasbauer/falavoz/internal/jobs"
	"github.com/lukasbauer/falavoz/internal/notifications"
	"github.com/lukasbauer/falavoz/internal/speech"
	"github.com/lukasbauer/falavoz/internal/tts"
)

type App struct {
	cfg      Config
	logger   *zap.SugaredLogger
	db       *pgxpool.Pool
	tts      tts.Client
	store    *audio.Store
	speech   *speech.Service
	eventLog *eventlog.Logger
	discord  *notifications.Discord
	sweep    *jobs.SweepJob
}

func New(cfg Config, logger *zap.SugaredLogger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := audio.NewStore(cfg.AudioDir)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		discord: notifications.NewDiscord(cfg.DiscordWebhookURL, logger),
	}

	// Event log is optional; without a database events are dropped.
	if cfg.DatabaseURL != "" {
		db, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.db = db
		a.eventLog = eventlog.New(db)
		// Migrations are applied externally (psql -f migrations/*.sql).
	}

	// Shared HTTP client with connection pooling for TTS.
	httpClient := &http.Client{
		Timeout: cfg.TTSTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	client, err := tts.New(ctx, tts.Config{
		Provider:   cfg.TTSProvider,
		HTTPClient: httpClient,
		ElevenLabs: tts.ElevenLabsConfig{
			APIKey:     cfg.ElevenLabsAPIKey,
			VoiceID:    cfg.TTSVoiceID,
			ModelID:    cfg.ElevenLabsModelID,
			Stability:  -1,
			Similarity: -1,
		},
		OpenAI: tts.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAITTSModel,
			Voice:  cfg.OpenAITTSVoice,
		},
		Google: tts.GoogleCloudConfig{
			CredentialsFile: cfg.GoogleCredentials,
			VoiceName:       cfg.GoogleTTSVoice,
		},
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init tts: %w", err)
	}
	a.tts = client

	// A nil *S3Archive must not reach the service as a non-nil interface.
	var archiver speech.Archiver
	s3cfg := archive.Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		UseSSL:    cfg.S3UseSSL,
	}
	if s3cfg.Enabled() {
		s3, err := archive.NewS3Archive(ctx, s3cfg)
		if err != nil {
			logger.Warnf("archive: disabled: %v", err)
		} else {
			archiver = s3
			logger.Infof("archive: uploading audio to bucket %s", cfg.S3Bucket)
		}
	}

	a.speech = speech.NewService(client, store, cfg.TTSLanguage, archiver, logger)
	a.sweep = jobs.NewSweepJob(store.Dir(), cfg.SweepMaxAge, cfg.SweepInterval, logger)

	return a, nil
}

// StartBackground runs the startup sweep synchronously, then starts the
// periodic sweep when an interval is configured. Call before serving.
func (a *App) StartBackground() {
	a.sweep.RunOnce()
	if a.cfg.SweepInterval > 0 {
		a.sweep.Start()
	}
}

// AudioPath is the artifact served at /audio.
func (a *App) AudioPath() string {
	return a.store.Path()
}

// AudioDir is the directory holding the artifact.
func (a *App) AudioDir() string {
	return a.store.Dir()
}

func (a *App) Router() http.Handler {
	routerCfg := httpapi.RouterConfig{
		PublicBaseURL:    a.cfg.PublicBaseURL,
		TwilioAuthToken:  a.cfg.TwilioAuthTok,
		WebhookRateLimit: a.cfg.WebhookRateLimit,
		TTSProvider:      a.cfg.TTSProvider,
	}
	return httpapi.NewRouter(routerCfg, a.logger, a.speech, a.store, a.eventLog, a.discord)
}

func (a *App) Close() error {
	var err error
	if a.sweep != nil {
		a.sweep.Stop()
	}
	if closer, ok := a.tts.(io.Closer); ok {
		err = multierr.Append(err, closer.Close())
	}
	if a.db != nil {
		a.db.Close()
	}
	return err
}
