package httpapi

import (
	"mime"
	"net/http"

	"github.com/lukasbauer/falavoz/internal/audio"
	"github.com/lukasbauer/falavoz/internal/eventlog"
)

func (r *Router) handleAudio(w http.ResponseWriter, req *http.Request) {
	path := r.artifact.Path()
	r.logger.Infof("audio: request received for %s", path)

	created, err := r.speech.EnsurePlaceholder(req.Context())
	if err != nil {
		r.logger.Errorf("audio: failed to create test audio: %v", err)
		captureError(req, err, "placeholder synthesis failed")
		http.Error(w, "error creating audio", http.StatusInternalServerError)
		return
	}
	if created {
		r.eventLog.LogAsync(eventlog.AudioRequestID, eventlog.EventPlaceholderCreated, map[string]any{"path": path})
	}

	if !r.artifact.Exists() {
		r.logger.Errorf("audio: file not found: %s", path)
		http.Error(w, "audio file not found", http.StatusNotFound)
		return
	}

	r.logger.Infof("audio: sending file: %s", path)

	f, info, err := r.artifact.Open()
	if err != nil {
		r.logger.Errorf("audio: failed to send file: %v", err)
		captureError(req, err, "audio send failed")
		http.Error(w, "error sending audio: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": audio.FileName}))
	http.ServeContent(w, req, audio.FileName, info.ModTime(), f)

	r.eventLog.LogAsync(eventlog.AudioRequestID, eventlog.EventAudioServed, map[string]any{"bytes": info.Size()})
}
