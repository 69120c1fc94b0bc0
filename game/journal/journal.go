package journal

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/homedecor/game/service"
)

// Entry is one journaled placement event
type Entry struct {
	ID        string            `json:"id"`
	Time      time.Time         `json:"time"`
	SessionID string            `json:"session_id"`
	Event     service.GameEvent `json:"event"`
}

// Journal records every session event. It implements service.EventSink.
type Journal struct {
	w *Writer
}

// New creates a journal writing into dir
func New(dir string) *Journal {
	return &Journal{w: NewWriter(dir, "placements")}
}

// Publish appends events. Write failures are logged, never returned to the
// operation that produced the events.
func (j *Journal) Publish(sessionID string, events []service.GameEvent) {
	for _, ev := range events {
		entry := Entry{
			ID:        uuid.NewString(),
			Time:      ev.Timestamp,
			SessionID: sessionID,
			Event:     ev,
		}
		if entry.Time.IsZero() {
			entry.Time = time.Now()
		}
		if err := j.w.Write(entry); err != nil {
			log.Printf("[JOURNAL] write failed session=%s event=%s: %v", sessionID, ev.Type, err)
		}
	}
}

func (j *Journal) Close() error { return j.w.Close() }
