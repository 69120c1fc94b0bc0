package engine

// Cell represents a single addressable grid position
type Cell struct {
	Position     Position     `json:"position"`
	Type         GridType     `json:"type"`
	Selectable   bool         `json:"selectable"`
	OccupiedBy   InstanceID   `json:"occupied_by,omitempty"`
	Stack        []InstanceID `json:"stack,omitempty"`
	CanStack     bool         `json:"can_stack"`
	DisplayAlpha float64      `json:"display_alpha"`
}

func newCell(pos Position, t GridType) *Cell {
	return &Cell{
		Position:     pos,
		Type:         t,
		Selectable:   t != Forbidden,
		CanStack:     true,
		DisplayAlpha: NormalAlpha,
	}
}

// Occupied reports whether any instance, primary or stacked, sits on the cell
func (c *Cell) Occupied() bool {
	return c.OccupiedBy != NoInstance || len(c.Stack) > 0
}

// Top returns the topmost instance on the cell, preferring stacked occupants
func (c *Cell) Top() (InstanceID, bool) {
	if n := len(c.Stack); n > 0 {
		return c.Stack[n-1], true
	}
	if c.OccupiedBy != NoInstance {
		return c.OccupiedBy, true
	}
	return NoInstance, false
}

// layers returns the occupants bottom-up: primary first, then the stack
func (c *Cell) layers() []InstanceID {
	layers := make([]InstanceID, 0, len(c.Stack)+1)
	if c.OccupiedBy != NoInstance {
		layers = append(layers, c.OccupiedBy)
	}
	return append(layers, c.Stack...)
}

func (c *Cell) removeFromStack(id InstanceID) bool {
	for i, s := range c.Stack {
		if s == id {
			c.Stack = append(c.Stack[:i], c.Stack[i+1:]...)
			if len(c.Stack) == 0 {
				c.Stack = nil
			}
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the cell that is safe to hand to collaborators
func (c *Cell) Snapshot() CellSnapshot {
	var stacked []InstanceID
	if len(c.Stack) > 0 {
		stacked = append([]InstanceID(nil), c.Stack...)
	}
	return CellSnapshot{
		Position:     c.Position,
		Type:         c.Type,
		Selectable:   c.Selectable,
		Occupied:     c.OccupiedBy != NoInstance,
		OccupiedBy:   c.OccupiedBy,
		StackedIDs:   stacked,
		CanStack:     c.CanStack,
		DisplayAlpha: c.DisplayAlpha,
	}
}
