package session

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/wricardo/mcp-training/homedecor/game/engine"
	"github.com/wricardo/mcp-training/homedecor/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session snapshot to storage
	Save(data *PersistedSessionData) error

	// Load retrieves a session snapshot from storage by ID
	Load(id string) (*PersistedSessionData, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session: the house it was
// built from plus the confirmed layout of every room. Staged placements and
// an in-flight move are not part of it.
type PersistedSessionData struct {
	ID             string                       `json:"id"`
	ConfigName     string                       `json:"config_name"`
	CreatedAt      time.Time                    `json:"created_at"`
	LastAccessedAt time.Time                    `json:"last_accessed_at"`
	House          *engine.HouseConfig          `json:"house"`
	Layouts        map[int][]engine.LayoutEntry `json:"layouts"`
}

// snapshot captures a session for storage
func snapshot(sess *service.Session) (*PersistedSessionData, error) {
	if sess == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	data := &PersistedSessionData{
		ID:             sess.ID,
		ConfigName:     sess.ConfigName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		House:          sess.Config,
		Layouts:        make(map[int][]engine.LayoutEntry),
	}
	for room := 0; room < sess.Engine.RoomCount(); room++ {
		entries, err := sess.Engine.ExportLayout(room)
		if err != nil {
			return nil, fmt.Errorf("failed to export room %d: %w", room, err)
		}
		if len(entries) > 0 {
			data.Layouts[room] = entries
		}
	}
	return data, nil
}

// restore rebuilds a session by replaying each room's layout into a fresh
// engine. Entries that no longer fit are skipped and logged.
func restore(data *PersistedSessionData, items engine.Catalog) (*service.Session, error) {
	if data.House == nil {
		return nil, fmt.Errorf("session %s has no house configuration", data.ID)
	}

	sess := &service.Session{
		ID:             data.ID,
		ConfigName:     data.ConfigName,
		Config:         data.House,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}
	eng, err := engine.NewEngine(data.House, items, engine.WithListener(sess.Record))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	sess.Engine = eng

	rooms := make([]int, 0, len(data.Layouts))
	for room := range data.Layouts {
		rooms = append(rooms, room)
	}
	sort.Ints(rooms)

	for _, room := range rooms {
		report, err := eng.LoadLayout(room, data.Layouts[room])
		if err != nil {
			log.Printf("[SESSION] restore %s: room %d skipped: %v", data.ID, room, err)
			continue
		}
		if len(report.Skipped) > 0 {
			log.Printf("[SESSION] restore %s: room %d applied=%d skipped=%d", data.ID, room, report.Applied, len(report.Skipped))
		}
	}
	sess.DrainEvents()
	return sess, nil
}
