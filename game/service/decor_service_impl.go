package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/homedecor/game/engine"
)

var (
	// ErrSessionNotFound is returned when a session id is unknown
	ErrSessionNotFound = errors.New("session not found")
	// ErrConfigNotFound is returned when a house configuration is unknown
	ErrConfigNotFound = errors.New("configuration not found")
)

// Option configures the decoration service
type Option func(*decorServiceImpl)

// WithEventSink forwards every session event to sink
func WithEventSink(sink EventSink) Option {
	return func(s *decorServiceImpl) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// decorServiceImpl implements the DecorService interface
type decorServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	catalog  ItemCatalog
	sinks    []EventSink
	mu       sync.RWMutex
}

// NewDecorService creates a new decoration service instance
func NewDecorService(sessions SessionManager, configs ConfigManager, catalog ItemCatalog, opts ...Option) DecorService {
	s := &decorServiceImpl{
		sessions: sessions,
		configs:  configs,
		catalog:  catalog,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given house name
func (s *decorServiceImpl) getConfigID(houseName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == houseName {
				return cfg.ConfigID
			}
		}
	}
	if houseName == "" {
		return "default"
	}
	return houseName
}

// session looks up a session and touches its access time
func (s *decorServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// flush drains the session's engine events, publishes them and persists
// the session when anything changed
func (s *decorServiceImpl) flush(sess *Session) []GameEvent {
	events := toGameEvents(sess.ID, sess.DrainEvents())
	if len(events) == 0 {
		return nil
	}
	if err := s.sessions.Save(sess.ID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s: %v\n", sess.ID, err)
	}
	for _, sink := range s.sinks {
		sink.Publish(sess.ID, events)
	}
	return events
}

func (s *decorServiceImpl) info(sess *Session) *SessionInfo {
	configID := sess.ConfigName
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	info := &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		House:          sess.Config,
	}
	for i := 0; i < sess.Engine.RoomCount(); i++ {
		view, err := sess.Engine.RoomView(i)
		if err != nil {
			continue
		}
		info.Rooms = append(info.Rooms, RoomSummary{
			Index:     view.Index,
			Name:      view.Name,
			Columns:   view.Columns,
			Rows:      view.Rows,
			Instances: len(view.Instances),
			EditMode:  view.EditMode,
		})
	}
	return info
}

// view returns the room view for result payloads, nil when unavailable
func view(sess *Session, room int) *engine.RoomView {
	v, err := sess.Engine.RoomView(room)
	if err != nil {
		return nil
	}
	return v
}

// CreateSession creates a new decoration session
func (s *decorServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.HouseConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configName = s.getConfigID(config.Name)
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", strings.TrimSuffix(configName, ".json"), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.DrainEvents()

	return s.info(sess), nil
}

// GetSession retrieves session information
func (s *decorServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions ordered by creation time
func (s *decorServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *decorServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// RoomView returns every cell of a room plus its instances
func (s *decorServiceImpl) RoomView(ctx context.Context, sessionID string, room int) (*engine.RoomView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.RoomView(room)
}

// CellInfo returns a snapshot of one cell
func (s *decorServiceImpl) CellInfo(ctx context.Context, sessionID string, room int, pos engine.Position) (*engine.CellSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	cell, err := sess.Engine.CellInfo(room, pos)
	if err != nil {
		return nil, err
	}
	return &cell, nil
}

// InstanceAt returns the topmost instance covering pos
func (s *decorServiceImpl) InstanceAt(ctx context.Context, sessionID string, room int, pos engine.Position) (*engine.PlacementInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	id, ok := sess.Engine.InstanceAt(room, pos)
	if !ok {
		return nil, fmt.Errorf("no instance at %s in room %d: %w", pos, room, engine.ErrNotFound)
	}
	inst, ok := sess.Engine.Instance(id)
	if !ok {
		return nil, fmt.Errorf("instance %d: %w", id, engine.ErrNotFound)
	}
	return &inst, nil
}

// CanPlace reports whether a placement would succeed without applying it
func (s *decorServiceImpl) CanPlace(ctx context.Context, sessionID string, req PlacementRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return false, err
	}
	if req.Stacked {
		return sess.Engine.CanStack(req.Room, req.ItemID, req.Position()), nil
	}
	return sess.Engine.CanPlace(req.Room, req.ItemID, req.Position()), nil
}

// FindSpot searches a room for the first position that fits an item
func (s *decorServiceImpl) FindSpot(ctx context.Context, sessionID string, room int, itemID string) (*SpotResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if _, ok := s.catalog.Lookup(itemID); !ok {
		return nil, fmt.Errorf("item %q: %w", itemID, engine.ErrCatalogMiss)
	}
	pos, ok := sess.Engine.FindSpot(room, itemID)
	if !ok {
		return &SpotResult{Found: false}, nil
	}
	return &SpotResult{Found: true, Position: &pos}, nil
}

// Place puts an item into a room, either as primary occupant or stacked
func (s *decorServiceImpl) Place(ctx context.Context, sessionID string, req PlacementRequest) (*PlacementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	var id engine.InstanceID
	if req.Stacked {
		id, err = sess.Engine.PlaceStacked(req.Room, req.ItemID, req.Position())
	} else {
		id, err = sess.Engine.Place(req.Room, req.ItemID, req.Position())
	}
	if err != nil {
		return nil, err
	}

	return &PlacementResult{
		Success:    true,
		InstanceID: id,
		Message:    tr("Placed %s at %s", req.ItemID, req.Position()),
		Events:     s.flush(sess),
		Room:       view(sess, req.Room),
	}, nil
}

// Remove deletes an instance and restores its cells
func (s *decorServiceImpl) Remove(ctx context.Context, sessionID string, room int, id engine.InstanceID) (*PlacementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.Remove(room, id); err != nil {
		return nil, err
	}

	return &PlacementResult{
		Success:    true,
		InstanceID: id,
		Message:    tr("Removed instance %d", id),
		Events:     s.flush(sess),
		Room:       view(sess, room),
	}, nil
}

// BeginMove lifts an instance off the grid
func (s *decorServiceImpl) BeginMove(ctx context.Context, sessionID string, room int, id engine.InstanceID) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.BeginMove(room, id); err != nil {
		return nil, err
	}

	result := &MoveResult{
		Success: true,
		Message: tr("Moving instance %d", id),
		Events:  s.flush(sess),
		Room:    view(sess, room),
	}
	if inst, ok := sess.Engine.Moving(); ok {
		result.Instance = &inst
	}
	return result, nil
}

// FinishMove drops the moving instance at target. A rejected target is not
// an error: the move stays in flight and Success is false.
func (s *decorServiceImpl) FinishMove(ctx context.Context, sessionID string, room int, target engine.Position) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	moving, _ := sess.Engine.Moving()
	ok, err := sess.Engine.FinishMove(room, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &MoveResult{
			Success:  false,
			Message:  tr("Cannot place %s at %s, still moving", moving.ItemID, target),
			Instance: &moving,
			Room:     view(sess, room),
		}, nil
	}

	result := &MoveResult{
		Success: true,
		Message: tr("Moved %s to %s", moving.ItemID, target),
		Events:  s.flush(sess),
		Room:    view(sess, room),
	}
	if inst, found := sess.Engine.Instance(moving.ID); found {
		result.Instance = &inst
	}
	return result, nil
}

// CancelMove puts the moving instance back, or deletes it when discard is set
func (s *decorServiceImpl) CancelMove(ctx context.Context, sessionID string, room int, discard bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	moving, _ := sess.Engine.Moving()
	if err := sess.Engine.CancelMove(room, discard); err != nil {
		return nil, err
	}

	message := tr("Returned %s to %s", moving.ItemID, moving.TopLeft)
	if discard {
		message = tr("Deleted %s", moving.ItemID)
	}
	result := &MoveResult{
		Success: true,
		Message: message,
		Events:  s.flush(sess),
		Room:    view(sess, room),
	}
	if inst, found := sess.Engine.Instance(moving.ID); found {
		result.Instance = &inst
	}
	return result, nil
}

// BeginEdit puts a room into edit mode
func (s *decorServiceImpl) BeginEdit(ctx context.Context, sessionID string, room int) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	editID, err := sess.Engine.BeginEdit(room)
	if err != nil {
		return nil, err
	}

	return &EditResult{
		Success:       true,
		Message:       tr("Room %d entered edit mode", room),
		EditSessionID: editID,
		Events:        s.flush(sess),
		Room:          view(sess, room),
	}, nil
}

// Stage places an item as part of the room's open edit session
func (s *decorServiceImpl) Stage(ctx context.Context, sessionID string, req PlacementRequest) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	var id engine.InstanceID
	if req.Stacked {
		id, err = sess.Engine.StageStacked(req.Room, req.ItemID, req.Position())
	} else {
		id, err = sess.Engine.StagePlace(req.Room, req.ItemID, req.Position())
	}
	if err != nil {
		return nil, err
	}

	result := &EditResult{
		Success:    true,
		Message:    tr("Staged %s at %s", req.ItemID, req.Position()),
		InstanceID: id,
		Events:     s.flush(sess),
		Room:       view(sess, req.Room),
	}
	if edit, ok := sess.Engine.EditSession(req.Room); ok {
		result.EditSessionID = edit.ID
	}
	return result, nil
}

// Commit confirms the staged placements and returns the durable layout
func (s *decorServiceImpl) Commit(ctx context.Context, sessionID string, room int) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	edit, _ := sess.Engine.EditSession(room)
	layout, err := sess.Engine.Commit(room)
	if err != nil {
		return nil, err
	}

	return &EditResult{
		Success:       true,
		Message:       tr("Committed %d staged placements in room %d", len(edit.Staged), room),
		EditSessionID: edit.ID,
		Layout:        layout,
		Events:        s.flush(sess),
		Room:          view(sess, room),
	}, nil
}

// Rollback removes every staged placement and leaves edit mode
func (s *decorServiceImpl) Rollback(ctx context.Context, sessionID string, room int) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	edit, _ := sess.Engine.EditSession(room)
	if err := sess.Engine.Rollback(room); err != nil {
		return nil, err
	}
	layout, err := sess.Engine.ExportLayout(room)
	if err != nil {
		return nil, err
	}

	return &EditResult{
		Success:       true,
		Message:       tr("Rolled back %d staged placements in room %d", len(edit.Staged), room),
		EditSessionID: edit.ID,
		Layout:        layout,
		Events:        s.flush(sess),
		Room:          view(sess, room),
	}, nil
}

// ExportLayout returns the confirmed layout of a room
func (s *decorServiceImpl) ExportLayout(ctx context.Context, sessionID string, room int) (*LayoutResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	entries, err := sess.Engine.ExportLayout(room)
	if err != nil {
		return nil, err
	}
	return &LayoutResult{Room: room, Entries: entries}, nil
}

// ImportLayout rebuilds a room from layout entries, skipping bad ones
func (s *decorServiceImpl) ImportLayout(ctx context.Context, sessionID string, room int, entries []engine.LayoutEntry) (*LayoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	report, err := sess.Engine.LoadLayout(room, entries)
	if err != nil {
		return nil, err
	}
	applied, err := sess.Engine.ExportLayout(room)
	if err != nil {
		return nil, err
	}

	return &LayoutResult{
		Room:    room,
		Entries: applied,
		Report:  report,
		Events:  s.flush(sess),
	}, nil
}

// ListConfigs returns all available house configurations
func (s *decorServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a house configuration by name
func (s *decorServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.HouseConfig, error) {
	config, err := s.configs.LoadConfig(configName)
	if err != nil {
		if strings.Contains(err.Error(), "configuration not found") {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configName)
		}
		return nil, err
	}
	return config, nil
}

// SaveConfig saves a house configuration
func (s *decorServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.HouseConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// ListItems returns the item catalog
func (s *decorServiceImpl) ListItems(ctx context.Context) ([]engine.ItemDefinition, error) {
	return s.catalog.List(), nil
}
