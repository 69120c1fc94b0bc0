package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/homedecor/game/engine"
)

// DecorService defines all decoration-related operations
type DecorService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Queries
	RoomView(ctx context.Context, sessionID string, room int) (*engine.RoomView, error)
	CellInfo(ctx context.Context, sessionID string, room int, pos engine.Position) (*engine.CellSnapshot, error)
	InstanceAt(ctx context.Context, sessionID string, room int, pos engine.Position) (*engine.PlacementInstance, error)
	CanPlace(ctx context.Context, sessionID string, req PlacementRequest) (bool, error)
	FindSpot(ctx context.Context, sessionID string, room int, itemID string) (*SpotResult, error)

	// Placement
	Place(ctx context.Context, sessionID string, req PlacementRequest) (*PlacementResult, error)
	Remove(ctx context.Context, sessionID string, room int, id engine.InstanceID) (*PlacementResult, error)

	// Move protocol
	BeginMove(ctx context.Context, sessionID string, room int, id engine.InstanceID) (*MoveResult, error)
	FinishMove(ctx context.Context, sessionID string, room int, target engine.Position) (*MoveResult, error)
	CancelMove(ctx context.Context, sessionID string, room int, discard bool) (*MoveResult, error)

	// Edit sessions
	BeginEdit(ctx context.Context, sessionID string, room int) (*EditResult, error)
	Stage(ctx context.Context, sessionID string, req PlacementRequest) (*EditResult, error)
	Commit(ctx context.Context, sessionID string, room int) (*EditResult, error)
	Rollback(ctx context.Context, sessionID string, room int) (*EditResult, error)

	// Layout persistence
	ExportLayout(ctx context.Context, sessionID string, room int) (*LayoutResult, error)
	ImportLayout(ctx context.Context, sessionID string, room int, entries []engine.LayoutEntry) (*LayoutResult, error)

	// Configuration and catalog
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.HouseConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.HouseConfig) error
	ListItems(ctx context.Context) ([]engine.ItemDefinition, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, configName string, config *engine.HouseConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, configName string, config *engine.HouseConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles house configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.HouseConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.HouseConfig
	SaveConfig(name string, config *engine.HouseConfig) error
}

// ItemCatalog is the catalog view the service needs
type ItemCatalog interface {
	engine.Catalog
	List() []engine.ItemDefinition
}

// EventSink receives every event a session produces, after the operation
// that caused it has finished
type EventSink interface {
	Publish(sessionID string, events []GameEvent)
}

// Session represents an active decoration session
type Session struct {
	ID             string
	ConfigName     string
	Engine         *engine.GridEngine
	Config         *engine.HouseConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu     sync.Mutex
	events []engine.Event
}

// Record buffers an engine event. It is installed as the engine listener.
func (s *Session) Record(ev engine.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

// DrainEvents returns and clears the buffered engine events
func (s *Session) DrainEvents() []engine.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	return events
}
