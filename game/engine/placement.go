package engine

// validate checks a whole footprint. Nothing is mutated. When forMover is
// set, cells reserved by the in-flight move are exempt from the occupancy
// check, one cell at a time.
func (e *GridEngine) validate(r *RoomGrid, def ItemDefinition, topLeft Position, stacked, forMover bool) ([]Position, error) {
	cells, ok := r.Footprint(topLeft, def.Width, def.Height)
	if !ok {
		return nil, ErrInvalidPosition
	}
	for _, pos := range cells {
		cell, ok := r.CellAt(pos)
		if !ok || !cell.Selectable {
			return nil, ErrInvalidPosition
		}
		if e.reserved(r.Index, pos) && !forMover {
			return nil, ErrInvalidPosition
		}
		if stacked {
			if !cell.CanStack {
				return nil, ErrInvalidPosition
			}
		} else if cell.Occupied() {
			return nil, ErrInvalidPosition
		}
		if !def.Accepts(cell.Type) {
			return nil, ErrInvalidPosition
		}
	}
	return cells, nil
}

// place validates and applies a new instance. A placement in a room under
// edit always joins that room's ledger.
func (e *GridEngine) place(room int, itemID string, pos Position, stacked, staged bool) (*PlacementInstance, error) {
	r, err := e.room(room)
	if err != nil {
		return nil, err
	}
	def, err := e.lookup(itemID)
	if err != nil {
		return nil, err
	}
	cells, err := e.validate(r, def, pos, stacked, false)
	if err != nil {
		return nil, err
	}
	session, editing := e.sessions[room]

	inst := &PlacementInstance{
		ID:               e.registry.NextID(),
		ItemID:           def.ID,
		Room:             room,
		TopLeft:          pos,
		Width:            def.Width,
		Height:           def.Height,
		OccupiedCells:    cells,
		Stacked:          stacked,
		Staged:           staged || editing,
		ProvidesNewGrid:  def.ProvidesNewGrid,
		ProvidedGridType: def.ProvidedGridType,
		seq:              e.registry.nextSeq(),
	}
	e.apply(r, inst)
	e.registry.Add(inst)
	if editing && !staged {
		session.Staged = append(session.Staged, inst.stagedEntry())
	}

	kind := EventPlaced
	if stacked {
		kind = EventStacked
	}
	e.emit(instanceEvent(kind, inst))
	return inst, nil
}

// apply mutates the footprint cells for inst. The caller has validated it.
func (e *GridEngine) apply(r *RoomGrid, inst *PlacementInstance) {
	inst.OriginalCellTypes = make(map[Position]GridType, len(inst.OccupiedCells))
	for _, pos := range inst.OccupiedCells {
		cell, _ := r.CellAt(pos)
		inst.OriginalCellTypes[pos] = cell.Type
		if inst.Stacked {
			cell.Stack = append(cell.Stack, inst.ID)
		} else {
			cell.OccupiedBy = inst.ID
			if !inst.ProvidesNewGrid {
				cell.CanStack = false
			}
		}
		if inst.ProvidesNewGrid {
			cell.Type = inst.ProvidedGridType
		} else {
			cell.Type = Forbidden
		}
	}
}

// above returns the instances layered over inst on any of its cells
func (e *GridEngine) above(r *RoomGrid, inst *PlacementInstance) []*PlacementInstance {
	seen := make(map[InstanceID]bool)
	var upper []*PlacementInstance
	for _, pos := range inst.OccupiedCells {
		cell, ok := r.CellAt(pos)
		if !ok {
			continue
		}
		layers := cell.layers()
		for i, id := range layers {
			if id != inst.ID {
				continue
			}
			for _, over := range layers[i+1:] {
				if seen[over] {
					continue
				}
				seen[over] = true
				if o, ok := e.registry.Get(over); ok {
					upper = append(upper, o)
				}
			}
			break
		}
	}
	return upper
}

// supports reports whether any other instance is layered above inst. A
// stacked instance held by an in-flight move still rests on whatever lies
// under its reserved cells.
func (e *GridEngine) supports(r *RoomGrid, inst *PlacementInstance) bool {
	if len(e.above(r, inst)) > 0 {
		return true
	}
	held := e.move
	if held == nil || !held.inst.Stacked || held.inst.Room != inst.Room || held.inst.ID == inst.ID {
		return false
	}
	for _, pos := range inst.OccupiedCells {
		if held.reserved.Has(pos) {
			return true
		}
	}
	return false
}

// lift takes inst off its cells. The top layer restores its snapshot; a
// lower layer hands its snapshot to the layer directly above so later
// removals still restore the exact pre-placement type.
func (e *GridEngine) lift(r *RoomGrid, inst *PlacementInstance) {
	for _, pos := range inst.OccupiedCells {
		cell, ok := r.CellAt(pos)
		if !ok {
			continue
		}
		layers := cell.layers()
		idx := -1
		for i, id := range layers {
			if id == inst.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		if idx == len(layers)-1 {
			cell.Type = inst.OriginalCellTypes[pos]
		} else if above, ok := e.registry.Get(layers[idx+1]); ok {
			above.OriginalCellTypes[pos] = inst.OriginalCellTypes[pos]
		}
		if inst.Stacked {
			cell.removeFromStack(inst.ID)
		} else {
			cell.OccupiedBy = NoInstance
			cell.CanStack = true
		}
	}
}

// Place puts item at pos as the primary occupant of every footprint cell
func (e *GridEngine) Place(room int, itemID string, pos Position) (InstanceID, error) {
	e.mu.Lock()
	defer e.unlock()
	inst, err := e.place(room, itemID, pos, false, false)
	if err != nil {
		return NoInstance, opError("place", room, err)
	}
	return inst.ID, nil
}

// PlaceStacked layers item on top of the cells at pos
func (e *GridEngine) PlaceStacked(room int, itemID string, pos Position) (InstanceID, error) {
	e.mu.Lock()
	defer e.unlock()
	inst, err := e.place(room, itemID, pos, true, false)
	if err != nil {
		return NoInstance, opError("place_stacked", room, err)
	}
	return inst.ID, nil
}

// Remove deletes an instance and restores its cells
func (e *GridEngine) Remove(room int, id InstanceID) error {
	e.mu.Lock()
	defer e.unlock()
	r, err := e.room(room)
	if err != nil {
		return opError("remove", room, err)
	}
	inst, ok := e.registry.Get(id)
	if !ok || inst.Room != room {
		return opError("remove", room, ErrNotFound)
	}
	if e.supports(r, inst) {
		return opError("remove", room, ErrSupportsStack)
	}

	e.lift(r, inst)
	e.registry.Delete(id)
	e.unstage(inst)
	e.emit(instanceEvent(EventRemoved, inst))
	return nil
}
