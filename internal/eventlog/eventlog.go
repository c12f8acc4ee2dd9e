package eventlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventType represents the type of message event
type EventType string

const (
	EventMessageReceived    EventType = "message_received"
	EventEmptyMessage       EventType = "empty_message"
	EventTTSStarted         EventType = "tts_started"
	EventTTSCompleted       EventType = "tts_completed"
	EventTTSError           EventType = "tts_error"
	EventStorageError       EventType = "storage_error"
	EventPlaceholderCreated EventType = "placeholder_created"
	EventAudioServed        EventType = "audio_served"
)

// AudioRequestID groups events for /audio fetches, which carry no message SID.
const AudioRequestID = "audio"

// Logger writes message events to Postgres. A nil pool disables it.
type Logger struct {
	db *pgxpool.Pool
}

// New creates a new event logger
func New(db *pgxpool.Pool) *Logger {
	return &Logger{db: db}
}

// Log writes an event to the database synchronously
func (l *Logger) Log(ctx context.Context, messageSID string, eventType EventType, data map[string]any) error {
	if l == nil || l.db == nil || messageSID == "" {
		return nil
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		dataJSON = []byte("{}")
	}

	_, err = l.db.Exec(ctx, `
		INSERT INTO message_events (message_sid, event_type, event_data)
		VALUES ($1, $2, $3)
	`, messageSID, string(eventType), dataJSON)

	return err
}

// LogAsync logs an event without blocking the caller
func (l *Logger) LogAsync(messageSID string, eventType EventType, data map[string]any) {
	if l == nil || l.db == nil || messageSID == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.Log(ctx, messageSID, eventType, data)
	}()
}
