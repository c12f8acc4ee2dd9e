package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Discord is a simple Discord webhook notifier.
type Discord struct {
	webhookURL string
	logger     *zap.SugaredLogger
	client     *http.Client
}

// NewDiscord creates a new Discord notifier. If webhookURL is empty,
// notifications are silently skipped.
func NewDiscord(webhookURL string, logger *zap.SugaredLogger) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		logger:     logger,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled returns true if the webhook is configured.
func (d *Discord) Enabled() bool {
	return d != nil && d.webhookURL != ""
}

type discordMessage struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// send posts a message to the webhook in the background. The request
// context may end before delivery, so cancellation is detached.
func (d *Discord) send(ctx context.Context, msg discordMessage) <-chan struct{} {
	done := make(chan struct{})
	if !d.Enabled() {
		close(done)
		return done
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(done)

		body, err := json.Marshal(msg)
		if err != nil {
			d.logger.Errorf("discord: failed to marshal message: %v", err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
		if err != nil {
			d.logger.Errorf("discord: failed to create request: %v", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			d.logger.Errorf("discord: failed to send webhook: %v", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			d.logger.Warnf("discord: webhook returned status %d", resp.StatusCode)
		}
	}()
	return done
}

// NotifySynthesisFailed reports a message that could not be turned into audio.
func (d *Discord) NotifySynthesisFailed(ctx context.Context, from string, err error) <-chan struct{} {
	if from == "" {
		from = "unknown"
	}
	msg := discordMessage{
		Embeds: []discordEmbed{{
			Title:       "Falha ao gerar áudio",
			Description: fmt.Sprintf("```%v```", err),
			Color:       0xFF0000, // Red
			Fields: []embedField{
				{Name: "From", Value: fmt.Sprintf("`%s`", from), Inline: true},
			},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	}
	return d.send(ctx, msg)
}
