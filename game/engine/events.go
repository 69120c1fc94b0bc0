package engine

// EventKind names an engine mutation
type EventKind string

const (
	EventPlaced        EventKind = "placed"
	EventStacked       EventKind = "stacked"
	EventRemoved       EventKind = "removed"
	EventMoveStarted   EventKind = "move_started"
	EventMoved         EventKind = "moved"
	EventMoveCancelled EventKind = "move_cancelled"
	EventMoveDeleted   EventKind = "move_deleted"
	EventEditBegun     EventKind = "edit_begun"
	EventStaged        EventKind = "staged"
	EventCommitted     EventKind = "committed"
	EventRolledBack    EventKind = "rolled_back"
	EventLayoutLoaded  EventKind = "layout_loaded"
)

// Event is emitted after a mutation has been fully applied
type Event struct {
	Kind     EventKind  `json:"kind"`
	Room     int        `json:"room"`
	Instance InstanceID `json:"instance,omitempty"`
	ItemID   string     `json:"item_id,omitempty"`
	Position Position   `json:"position"`
	Count    int        `json:"count,omitempty"`
}

// Listener receives engine events. Listeners run after the engine lock is
// released, so they may call back into the engine.
type Listener func(Event)

// Option configures a GridEngine
type Option func(*GridEngine)

// WithListener registers an event listener
func WithListener(l Listener) Option {
	return func(e *GridEngine) {
		if l != nil {
			e.listeners = append(e.listeners, l)
		}
	}
}

func (e *GridEngine) emit(ev Event) {
	if len(e.listeners) == 0 {
		return
	}
	e.pending = append(e.pending, ev)
}

func instanceEvent(kind EventKind, inst *PlacementInstance) Event {
	return Event{Kind: kind, Room: inst.Room, Instance: inst.ID, ItemID: inst.ItemID, Position: inst.TopLeft}
}
