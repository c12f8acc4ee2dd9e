package httpapi

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/lukasbauer/falavoz/internal/audio"
	"github.com/lukasbauer/falavoz/internal/costs"
	"github.com/lukasbauer/falavoz/internal/eventlog"
	"github.com/lukasbauer/falavoz/internal/speech"
	"github.com/lukasbauer/falavoz/internal/tts"
)

const (
	emptyBodyReply    = "Por favor, envie uma mensagem de texto."
	synthesisErrorFmt = "error generating audio: "
)

func (r *Router) handleWhatsApp(w http.ResponseWriter, req *http.Request) {
	// Twilio sends application/x-www-form-urlencoded by default.
	if err := req.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	text := req.FormValue("Body")
	messageSID := req.FormValue("MessageSid")
	from := req.FormValue("From")

	r.logger.Infof("webhook: message received: %s", text)
	r.eventLog.LogAsync(messageSID, eventlog.EventMessageReceived, map[string]any{
		"from":        from,
		"text_length": utf8.RuneCountInString(text),
	})

	if text != "" {
		r.eventLog.LogAsync(messageSID, eventlog.EventTTSStarted, nil)
	}

	err := r.speech.Speak(req.Context(), text)
	switch {
	case errors.Is(err, speech.ErrEmptyText):
		r.eventLog.LogAsync(messageSID, eventlog.EventEmptyMessage, map[string]any{"from": from})
		writeTwiML(w, textReply(emptyBodyReply))
		return
	case err != nil:
		r.reportSynthesisError(req, messageSID, from, err)
		writeTwiML(w, textReply(synthesisErrorFmt+err.Error()))
		return
	}

	audioURL := r.baseURL(req) + "/audio"
	cost := costs.EstimateMessage(r.cfg.TTSProvider, text)
	r.eventLog.LogAsync(messageSID, eventlog.EventTTSCompleted, map[string]any{
		"audio_url":   audioURL,
		"characters":  cost.Characters,
		"tts_cents":   cost.TTSCents,
		"total_cents": cost.TotalCents,
	})
	r.logger.Debugf("webhook: estimated cost %.2f cents (%d chars)", cost.TotalCents, cost.Characters)
	r.logger.Infof("webhook: sending audio: %s", audioURL)

	writeTwiML(w, mediaReply(audioURL))
}

// reportSynthesisError logs, records and forwards a failed synthesis. The
// caller still answers 200 so Twilio delivers the error text.
func (r *Router) reportSynthesisError(req *http.Request, messageSID, from string, err error) {
	eventType := eventlog.EventTTSError
	var (
		providerErr *tts.ProviderError
		storageErr  *audio.StorageError
	)
	switch {
	case errors.As(err, &storageErr):
		eventType = eventlog.EventStorageError
		r.logger.Errorf("webhook: failed to save audio to %s: %v", storageErr.Path, storageErr.Err)
	case errors.As(err, &providerErr):
		r.logger.Errorf("webhook: %s synthesis failed: %v", providerErr.Provider, providerErr.Err)
	default:
		r.logger.Errorf("webhook: synthesis failed: %v", err)
	}

	r.eventLog.LogAsync(messageSID, eventType, map[string]any{"error": err.Error()})
	captureError(req, err, "whatsapp synthesis failed")
	r.discord.NotifySynthesisFailed(req.Context(), from, err)
}
