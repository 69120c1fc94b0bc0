package engine

import (
	"fmt"
	"sync"
)

// Engine provides the main interface for placement operations
type Engine interface {
	// Queries
	CanPlace(room int, itemID string, pos Position) bool
	CanStack(room int, itemID string, pos Position) bool
	CellInfo(room int, pos Position) (CellSnapshot, error)
	InstanceAt(room int, pos Position) (InstanceID, bool)
	Instance(id InstanceID) (PlacementInstance, bool)
	Instances(room int) ([]PlacementInstance, error)
	RoomView(room int) (*RoomView, error)
	RoomCount() int
	FindSpot(room int, itemID string) (Position, bool)

	// Placement
	Place(room int, itemID string, pos Position) (InstanceID, error)
	PlaceStacked(room int, itemID string, pos Position) (InstanceID, error)
	Remove(room int, id InstanceID) error

	// Move protocol
	BeginMove(room int, id InstanceID) error
	FinishMove(room int, target Position) (bool, error)
	CancelMove(room int, discard bool) error
	Moving() (PlacementInstance, bool)

	// Edit sessions
	BeginEdit(room int) (string, error)
	StagePlace(room int, itemID string, pos Position) (InstanceID, error)
	StageStacked(room int, itemID string, pos Position) (InstanceID, error)
	Commit(room int) ([]LayoutEntry, error)
	Rollback(room int) error
	EditSession(room int) (EditSession, bool)

	// Persistence boundary
	ExportLayout(room int) ([]LayoutEntry, error)
	LoadLayout(room int, entries []LayoutEntry) (*ReplayReport, error)

	// Configuration
	GetConfig() *HouseConfig
}

// GridEngine implements the Engine interface. All methods are serialized by
// a single mutex.
type GridEngine struct {
	mu sync.Mutex

	config    *HouseConfig
	catalog   Catalog
	rooms     []*RoomGrid
	registry  *Registry
	move      *moveState
	sessions  map[int]*EditSession
	listeners []Listener
	pending   []Event
}

// NewEngine creates an engine with one RoomGrid per configured room
func NewEngine(config *HouseConfig, catalog Catalog, opts ...Option) (*GridEngine, error) {
	if config == nil {
		config = DefaultHouseConfig()
	}
	if err := ValidateHouseConfig(config); err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, fmt.Errorf("engine: catalog is required")
	}

	e := &GridEngine{
		config:   config,
		catalog:  catalog,
		registry: NewRegistry(),
		sessions: make(map[int]*EditSession),
	}
	rule := config.TypeRule()
	for i, rc := range config.Rooms {
		e.rooms = append(e.rooms, NewRoomGrid(i, rc.Name, rc.Columns, rc.Rows, rule))
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// unlock releases the engine and then delivers queued events
func (e *GridEngine) unlock() {
	events := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, ev := range events {
		for _, l := range e.listeners {
			l(ev)
		}
	}
}

func (e *GridEngine) room(index int) (*RoomGrid, error) {
	if index < 0 || index >= len(e.rooms) {
		return nil, ErrNotFound
	}
	return e.rooms[index], nil
}

func (e *GridEngine) lookup(itemID string) (ItemDefinition, error) {
	def, ok := e.catalog.Lookup(itemID)
	if !ok {
		return ItemDefinition{}, ErrCatalogMiss
	}
	return def, nil
}

// GetConfig returns the house configuration the engine was built from
func (e *GridEngine) GetConfig() *HouseConfig {
	return e.config
}

// RoomCount returns the number of rooms
func (e *GridEngine) RoomCount() int {
	return len(e.rooms)
}

// CanPlace reports whether item could be placed as a primary occupant at pos
func (e *GridEngine) CanPlace(room int, itemID string, pos Position) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.check(room, itemID, pos, false)
}

// CanStack reports whether item could be stacked at pos
func (e *GridEngine) CanStack(room int, itemID string, pos Position) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.check(room, itemID, pos, true)
}

func (e *GridEngine) check(room int, itemID string, pos Position, stacked bool) bool {
	r, err := e.room(room)
	if err != nil {
		return false
	}
	def, err := e.lookup(itemID)
	if err != nil {
		return false
	}
	_, err = e.validate(r, def, pos, stacked, false)
	return err == nil
}

// CellInfo returns a snapshot of one cell
func (e *GridEngine) CellInfo(room int, pos Position) (CellSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.room(room)
	if err != nil {
		return CellSnapshot{}, opError("cell_info", room, err)
	}
	cell, ok := r.CellAt(pos)
	if !ok {
		return CellSnapshot{}, opError("cell_info", room, ErrInvalidPosition)
	}
	return cell.Snapshot(), nil
}

// InstanceAt returns the topmost instance at pos, preferring stacked occupants
func (e *GridEngine) InstanceAt(room int, pos Position) (InstanceID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.room(room)
	if err != nil {
		return NoInstance, false
	}
	cell, ok := r.CellAt(pos)
	if !ok {
		return NoInstance, false
	}
	return cell.Top()
}

// Instance returns a copy of a registered instance
func (e *GridEngine) Instance(id InstanceID) (PlacementInstance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst, ok := e.registry.Get(id)
	if !ok {
		return PlacementInstance{}, false
	}
	return inst.clone(), true
}

// Instances returns copies of a room's instances in placement order
func (e *GridEngine) Instances(room int) ([]PlacementInstance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.room(room); err != nil {
		return nil, opError("instances", room, err)
	}
	return e.instanceCopies(room), nil
}

func (e *GridEngine) instanceCopies(room int) []PlacementInstance {
	list := e.registry.InRoom(room)
	out := make([]PlacementInstance, 0, len(list))
	for _, inst := range list {
		out = append(out, inst.clone())
	}
	return out
}

// RoomView returns every cell and instance of a room
func (e *GridEngine) RoomView(room int) (*RoomView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.room(room)
	if err != nil {
		return nil, opError("room_view", room, err)
	}
	return &RoomView{
		Index:     r.Index,
		Name:      r.Name,
		Columns:   r.Columns,
		Rows:      r.Rows,
		EditMode:  r.EditMode(),
		Cells:     r.Snapshot(),
		Instances: e.instanceCopies(room),
	}, nil
}

// FindSpot returns the first row-major top-left where item can be placed
func (e *GridEngine) FindSpot(room int, itemID string) (Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.room(room)
	if err != nil {
		return Position{}, false
	}
	def, err := e.lookup(itemID)
	if err != nil {
		return Position{}, false
	}
	for y := 0; y+def.Height <= r.Rows; y++ {
		for x := 0; x+def.Width <= r.Columns; x++ {
			pos := Position{X: x, Y: y}
			if _, err := e.validate(r, def, pos, false, false); err == nil {
				return pos, true
			}
		}
	}
	return Position{}, false
}
