package service

import (
	"time"

	"github.com/wricardo/mcp-training/homedecor/game/engine"
)

// SessionInfo provides information about a decoration session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	Rooms          []RoomSummary       `json:"rooms"`
	House          *engine.HouseConfig `json:"house"`
}

// RoomSummary is a compact description of one room's current state
type RoomSummary struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Columns   int    `json:"columns"`
	Rows      int    `json:"rows"`
	Instances int    `json:"instances"`
	EditMode  bool   `json:"edit_mode"`
}

// PlacementRequest identifies an item and a target top-left cell
type PlacementRequest struct {
	Room    int    `json:"room"`
	ItemID  string `json:"item_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Stacked bool   `json:"stacked,omitempty"`
}

// Position returns the request's top-left cell
func (r PlacementRequest) Position() engine.Position {
	return engine.Position{X: r.X, Y: r.Y}
}

// PlacementResult contains the result of a place or remove operation
type PlacementResult struct {
	Success    bool              `json:"success"`
	InstanceID engine.InstanceID `json:"instance_id,omitempty"`
	Message    string            `json:"message"`
	Events     []GameEvent       `json:"events,omitempty"`
	Room       *engine.RoomView  `json:"room,omitempty"`
}

// MoveResult contains the result of a move protocol step
type MoveResult struct {
	Success  bool                      `json:"success"`
	Message  string                    `json:"message"`
	Instance *engine.PlacementInstance `json:"instance,omitempty"`
	Events   []GameEvent               `json:"events,omitempty"`
	Room     *engine.RoomView          `json:"room,omitempty"`
}

// EditResult contains the result of an edit session step
type EditResult struct {
	Success       bool                 `json:"success"`
	Message       string               `json:"message"`
	EditSessionID string               `json:"edit_session_id,omitempty"`
	InstanceID    engine.InstanceID    `json:"instance_id,omitempty"`
	Layout        []engine.LayoutEntry `json:"layout,omitempty"`
	Events        []GameEvent          `json:"events,omitempty"`
	Room          *engine.RoomView     `json:"room,omitempty"`
}

// LayoutResult carries a room's durable layout and, after an import, the
// replay report
type LayoutResult struct {
	Room    int                  `json:"room"`
	Entries []engine.LayoutEntry `json:"entries"`
	Report  *engine.ReplayReport `json:"report,omitempty"`
	Events  []GameEvent          `json:"events,omitempty"`
}

// SpotResult is the answer to a find-spot query
type SpotResult struct {
	Found    bool             `json:"found"`
	Position *engine.Position `json:"position,omitempty"`
}

// GameEvent represents something that happened to a session's house
type GameEvent struct {
	Type       string            `json:"type"` // engine event kind, e.g. "placed", "moved", "committed"
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
	SessionID  string            `json:"session_id,omitempty"`
	Room       int               `json:"room"`
	InstanceID engine.InstanceID `json:"instance_id,omitempty"`
	ItemID     string            `json:"item_id,omitempty"`
	Position   engine.Position   `json:"position,omitempty"`
}

// ConfigInfo provides information about a house configuration
type ConfigInfo struct {
	Filename    string     `json:"filename"`
	ConfigID    string     `json:"config_id"` // The identifier to use for session creation
	Name        string     `json:"name"`      // Display name
	Description string     `json:"description"`
	Rooms       []RoomInfo `json:"rooms"`
}

// RoomInfo describes a configured room
type RoomInfo struct {
	Name    string `json:"name"`
	Columns int    `json:"columns"`
	Rows    int    `json:"rows"`
}
