package engine

import "github.com/zyedidia/generic/mapset"

// moveState holds the instance picked up by BeginMove. Its original cells
// stay reserved until the move finishes or is cancelled, which is what
// guarantees CancelMove can always re-place it.
type moveState struct {
	inst     *PlacementInstance
	reserved mapset.Set[Position]
}

func (e *GridEngine) reserved(room int, pos Position) bool {
	if e.move == nil || e.move.inst.Room != room {
		return false
	}
	return e.move.reserved.Has(pos)
}

// BeginMove picks up an instance, freeing its cells
func (e *GridEngine) BeginMove(room int, id InstanceID) error {
	e.mu.Lock()
	defer e.unlock()
	if e.move != nil {
		return opError("begin_move", room, ErrAlreadyMoving)
	}
	r, err := e.room(room)
	if err != nil {
		return opError("begin_move", room, err)
	}
	inst, ok := e.registry.Get(id)
	if !ok || inst.Room != room {
		return opError("begin_move", room, ErrNotFound)
	}
	if e.supports(r, inst) {
		return opError("begin_move", room, ErrSupportsStack)
	}

	e.lift(r, inst)
	e.registry.Delete(id)

	reserved := mapset.New[Position]()
	for _, pos := range inst.OccupiedCells {
		reserved.Put(pos)
	}
	e.move = &moveState{inst: inst, reserved: reserved}
	e.emit(instanceEvent(EventMoveStarted, inst))
	return nil
}

// FinishMove drops the held instance at target, which may be in another
// room. It returns false and stays in the moving state when the target is
// rejected.
func (e *GridEngine) FinishMove(room int, target Position) (bool, error) {
	e.mu.Lock()
	defer e.unlock()
	if e.move == nil {
		return false, opError("finish_move", room, ErrNotMoving)
	}
	r, err := e.room(room)
	if err != nil {
		return false, opError("finish_move", room, err)
	}
	inst := e.move.inst
	def, err := e.lookup(inst.ItemID)
	if err != nil {
		return false, opError("finish_move", room, err)
	}

	// Reserved cells only exist in the origin room.
	cells, err := e.validate(r, def, target, inst.Stacked, room == inst.Room)
	if err != nil {
		return false, nil
	}

	from := inst.Room
	inst.Room = room
	inst.TopLeft = target
	inst.OccupiedCells = cells
	inst.seq = e.registry.nextSeq()
	e.move = nil

	e.apply(r, inst)
	e.registry.Add(inst)
	e.restage(inst, from)
	e.emit(instanceEvent(EventMoved, inst))
	return true, nil
}

// CancelMove ends the move in room. The held instance goes back to its
// original cells, or is discarded for good when discard is set.
func (e *GridEngine) CancelMove(room int, discard bool) error {
	e.mu.Lock()
	defer e.unlock()
	if e.move == nil || e.move.inst.Room != room {
		return opError("cancel_move", room, ErrNotMoving)
	}
	inst := e.move.inst
	e.move = nil

	if discard {
		e.unstage(inst)
		e.emit(instanceEvent(EventMoveDeleted, inst))
		return nil
	}

	e.apply(e.rooms[inst.Room], inst)
	e.registry.Add(inst)
	e.emit(instanceEvent(EventMoveCancelled, inst))
	return nil
}

// Moving returns a copy of the held instance while a move is in flight
func (e *GridEngine) Moving() (PlacementInstance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.move == nil {
		return PlacementInstance{}, false
	}
	return e.move.inst.clone(), true
}
