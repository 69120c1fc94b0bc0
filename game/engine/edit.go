package engine

import (
	"log"
	"time"

	"github.com/google/uuid"
)

// StagedEntry is one placement made during an edit session
type StagedEntry struct {
	ItemID   string     `json:"item_id"`
	TopLeft  Position   `json:"top_left"`
	Instance InstanceID `json:"instance"`
	Stacked  bool       `json:"stacked,omitempty"`
}

// EditSession is the staged-changes ledger of one room in edit mode
type EditSession struct {
	ID        string        `json:"id"`
	Room      int           `json:"room"`
	StartedAt time.Time     `json:"started_at"`
	Staged    []StagedEntry `json:"staged"`
}

// find looks up a ledger entry by top-left and layer. A primary entry and a
// stacked entry at the same top-left are distinct.
func (s *EditSession) find(pos Position, stacked bool) (StagedEntry, bool) {
	for _, entry := range s.Staged {
		if entry.TopLeft == pos && entry.Stacked == stacked {
			return entry, true
		}
	}
	return StagedEntry{}, false
}

func (s *EditSession) drop(id InstanceID) bool {
	for i, entry := range s.Staged {
		if entry.Instance == id {
			s.Staged = append(s.Staged[:i], s.Staged[i+1:]...)
			return true
		}
	}
	return false
}

// BeginEdit puts a room into edit mode with an empty ledger
func (e *GridEngine) BeginEdit(room int) (string, error) {
	e.mu.Lock()
	defer e.unlock()
	r, err := e.room(room)
	if err != nil {
		return "", opError("begin_edit", room, err)
	}
	if _, ok := e.sessions[room]; ok {
		return "", opError("begin_edit", room, ErrAlreadyEditing)
	}
	session := &EditSession{ID: uuid.NewString(), Room: room, StartedAt: time.Now()}
	e.sessions[room] = session
	r.SetEditMode(true)
	e.emit(Event{Kind: EventEditBegun, Room: room})
	return session.ID, nil
}

// StagePlace places item immediately and records it in the room's ledger
func (e *GridEngine) StagePlace(room int, itemID string, pos Position) (InstanceID, error) {
	return e.stage("stage_place", room, itemID, pos, false)
}

// StageStacked is StagePlace for a stacked placement
func (e *GridEngine) StageStacked(room int, itemID string, pos Position) (InstanceID, error) {
	return e.stage("stage_stacked", room, itemID, pos, true)
}

func (e *GridEngine) stage(op string, room int, itemID string, pos Position, stacked bool) (InstanceID, error) {
	e.mu.Lock()
	defer e.unlock()
	if _, err := e.room(room); err != nil {
		return NoInstance, opError(op, room, err)
	}
	session, ok := e.sessions[room]
	if !ok {
		return NoInstance, opError(op, room, ErrNotEditing)
	}
	if existing, dup := session.find(pos, stacked); dup {
		log.Printf("edit: room %d already staged %s at %s, ignoring %s", room, existing.ItemID, pos, itemID)
		return existing.Instance, nil
	}

	inst, err := e.place(room, itemID, pos, stacked, true)
	if err != nil {
		return NoInstance, opError(op, room, err)
	}
	session.Staged = append(session.Staged, inst.stagedEntry())
	e.emit(instanceEvent(EventStaged, inst))
	return inst.ID, nil
}

// Commit confirms every staged placement and closes edit mode. It returns
// the room's confirmed layout.
func (e *GridEngine) Commit(room int) ([]LayoutEntry, error) {
	e.mu.Lock()
	defer e.unlock()
	r, session, err := e.openSession(room)
	if err != nil {
		return nil, opError("commit", room, err)
	}
	for _, entry := range session.Staged {
		if inst, ok := e.registry.Get(entry.Instance); ok {
			inst.Staged = false
		}
	}
	delete(e.sessions, room)
	r.SetEditMode(false)
	e.emit(Event{Kind: EventCommitted, Room: room, Count: len(session.Staged)})
	return e.export(room), nil
}

// Rollback removes every staged placement and closes edit mode. Anything
// layered above a staged placement goes with it. Other placements confirmed
// before the session are untouched.
func (e *GridEngine) Rollback(room int) error {
	e.mu.Lock()
	defer e.unlock()
	r, session, err := e.openSession(room)
	if err != nil {
		return opError("rollback", room, err)
	}

	doomed := make(map[InstanceID]*PlacementInstance)
	var queue []*PlacementInstance
	for _, entry := range session.Staged {
		if inst, ok := e.registry.Get(entry.Instance); ok {
			doomed[inst.ID] = inst
			queue = append(queue, inst)
		}
	}
	for len(queue) > 0 {
		inst := queue[0]
		queue = queue[1:]
		for _, over := range e.above(r, inst) {
			if _, ok := doomed[over.ID]; !ok {
				doomed[over.ID] = over
				queue = append(queue, over)
			}
		}
	}

	list := make([]*PlacementInstance, 0, len(doomed))
	for _, inst := range doomed {
		list = append(list, inst)
	}
	sortBySeq(list)
	for i := len(list) - 1; i >= 0; i-- {
		inst := list[i]
		e.lift(r, inst)
		e.registry.Delete(inst.ID)
		if !inst.Staged {
			e.emit(instanceEvent(EventRemoved, inst))
		}
	}

	delete(e.sessions, room)
	r.SetEditMode(false)
	e.emit(Event{Kind: EventRolledBack, Room: room, Count: len(session.Staged)})
	return nil
}

// EditSession returns a copy of the room's open session
func (e *GridEngine) EditSession(room int) (EditSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	session, ok := e.sessions[room]
	if !ok {
		return EditSession{}, false
	}
	c := *session
	c.Staged = append([]StagedEntry(nil), session.Staged...)
	return c, true
}

// openSession returns the room and its session. Sessions cannot close while
// one of their room's instances is being moved.
func (e *GridEngine) openSession(room int) (*RoomGrid, *EditSession, error) {
	r, err := e.room(room)
	if err != nil {
		return nil, nil, err
	}
	session, ok := e.sessions[room]
	if !ok {
		return nil, nil, ErrNotEditing
	}
	if e.move != nil && e.move.inst.Room == room {
		return nil, nil, ErrAlreadyMoving
	}
	return r, session, nil
}

// unstage drops inst from its room's ledger
func (e *GridEngine) unstage(inst *PlacementInstance) {
	if !inst.Staged {
		return
	}
	if session, ok := e.sessions[inst.Room]; ok {
		session.drop(inst.ID)
	}
}

// restage keeps the ledger in step with a finished move. A staged instance
// moved into a room that is not being edited becomes confirmed.
func (e *GridEngine) restage(inst *PlacementInstance, from int) {
	if !inst.Staged {
		return
	}
	if session, ok := e.sessions[from]; ok {
		session.drop(inst.ID)
	}
	session, ok := e.sessions[inst.Room]
	if !ok {
		inst.Staged = false
		return
	}
	session.Staged = append(session.Staged, inst.stagedEntry())
}

func (inst *PlacementInstance) stagedEntry() StagedEntry {
	return StagedEntry{
		ItemID:   inst.ItemID,
		TopLeft:  inst.TopLeft,
		Instance: inst.ID,
		Stacked:  inst.Stacked,
	}
}
