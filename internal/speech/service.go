package speech

import (
	"context"
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/lukasbauer/falavoz/internal/tts"
)

// PlaceholderText is spoken when the artifact is fetched before any message
// has been synthesized.
const PlaceholderText = "Olá, este é um áudio de teste"

// DefaultLanguage is the language tag every synthesis uses unless configured.
const DefaultLanguage = "pt-br"

var (
	// ErrEmptyText is returned for an empty message body.
	ErrEmptyText = errors.New("empty text")

	// ErrEmptyAudio is returned when a provider answers with zero bytes.
	ErrEmptyAudio = errors.New("provider returned no audio")
)

// ArtifactStore persists the single shared artifact.
type ArtifactStore interface {
	Write(data []byte) error
	Exists() bool
	Path() string
}

// Archiver keeps a copy of synthesized audio somewhere durable.
type Archiver interface {
	Archive(ctx context.Context, data []byte) (string, error)
}

const archiveTimeout = 30 * time.Second

// Service turns text into the artifact file.
type Service struct {
	tts      tts.Client
	store    ArtifactStore
	lang     string
	archiver Archiver
	logger   *zap.SugaredLogger
}

// NewService creates a speech service. archiver may be nil.
func NewService(client tts.Client, store ArtifactStore, lang string, archiver Archiver, logger *zap.SugaredLogger) *Service {
	if lang == "" {
		lang = DefaultLanguage
	}
	return &Service{
		tts:      client,
		store:    store,
		lang:     lang,
		archiver: archiver,
		logger:   logger,
	}
}

// Language returns the tag passed to the provider.
func (s *Service) Language() string { return s.lang }

// Speak synthesizes text and overwrites the artifact with the result.
// Errors are ErrEmptyText, a *tts.ProviderError, ErrEmptyAudio or an
// *audio.StorageError.
func (s *Service) Speak(ctx context.Context, text string) error {
	if text == "" {
		return ErrEmptyText
	}
	data, err := s.synthesize(ctx, text)
	if err != nil {
		return err
	}
	s.archive(data)
	return nil
}

// EnsurePlaceholder writes the placeholder phrase when no artifact exists.
// It reports whether a placeholder was created.
func (s *Service) EnsurePlaceholder(ctx context.Context) (bool, error) {
	if s.store.Exists() {
		return false, nil
	}
	s.logger.Infof("audio: file does not exist, creating test audio")
	if _, err := s.synthesize(ctx, PlaceholderText); err != nil {
		return false, err
	}
	s.logger.Infof("audio: test audio created at %s", s.store.Path())
	return true, nil
}

func (s *Service) synthesize(ctx context.Context, text string) ([]byte, error) {
	s.logger.Infof("tts: generating audio at %s", s.store.Path())

	data, err := s.tts.Synthesize(ctx, text, s.lang)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}
	if err := s.store.Write(data); err != nil {
		return nil, err
	}

	s.logger.Infof("tts: audio saved (%s)", humanize.Bytes(uint64(len(data))))
	if s.store.Exists() {
		s.logger.Infof("tts: file confirmed: %s", s.store.Path())
	} else {
		s.logger.Errorf("tts: file was not created: %s", s.store.Path())
	}
	return data, nil
}

// archive uploads in the background so the reply is never delayed.
func (s *Service) archive(data []byte) {
	if s.archiver == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		url, err := s.archiver.Archive(ctx, data)
		if err != nil {
			s.logger.Warnf("archive: upload failed: %v", err)
			return
		}
		s.logger.Infof("archive: stored copy at %s", url)
	}()
}
