package engine

// TypeRule assigns the initial grid type of every position. It must be a
// pure function of its arguments.
type TypeRule func(room, x, y int) GridType

// RoomGrid is a fixed columns x rows array of cells for one room
type RoomGrid struct {
	Index   int
	Name    string
	Columns int
	Rows    int

	cells    [][]*Cell
	editMode bool
}

// NewRoomGrid builds a room, asking rule for the type of every cell
func NewRoomGrid(index int, name string, columns, rows int, rule TypeRule) *RoomGrid {
	r := &RoomGrid{
		Index:   index,
		Name:    name,
		Columns: columns,
		Rows:    rows,
		cells:   make([][]*Cell, rows),
	}
	for y := 0; y < rows; y++ {
		r.cells[y] = make([]*Cell, columns)
		for x := 0; x < columns; x++ {
			r.cells[y][x] = newCell(Position{X: x, Y: y}, rule(index, x, y))
		}
	}
	return r
}

// InBounds reports whether pos lies inside [0,columns) x [0,rows)
func (r *RoomGrid) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < r.Columns && pos.Y >= 0 && pos.Y < r.Rows
}

// CellAt returns the cell at pos, or false outside the room
func (r *RoomGrid) CellAt(pos Position) (*Cell, bool) {
	if !r.InBounds(pos) {
		return nil, false
	}
	return r.cells[pos.Y][pos.X], true
}

// Footprint returns the row-major cells covered by a width x height item at
// topLeft. It reports false when any part falls outside the room.
func (r *RoomGrid) Footprint(topLeft Position, width, height int) ([]Position, bool) {
	if width < 1 || height < 1 {
		return nil, false
	}
	bottomRight := Position{X: topLeft.X + width - 1, Y: topLeft.Y + height - 1}
	if !r.InBounds(topLeft) || !r.InBounds(bottomRight) {
		return nil, false
	}
	cells := make([]Position, 0, width*height)
	for y := topLeft.Y; y <= bottomRight.Y; y++ {
		for x := topLeft.X; x <= bottomRight.X; x++ {
			cells = append(cells, Position{X: x, Y: y})
		}
	}
	return cells, true
}

// SetEditMode toggles the display alpha of every cell
func (r *RoomGrid) SetEditMode(active bool) {
	r.editMode = active
	alpha := NormalAlpha
	if active {
		alpha = EditAlpha
	}
	r.ForEachCell(func(c *Cell) {
		c.DisplayAlpha = alpha
	})
}

// EditMode reports whether the room is in layout-edit mode
func (r *RoomGrid) EditMode() bool {
	return r.editMode
}

// ForEachCell calls fn for every cell in row-major order
func (r *RoomGrid) ForEachCell(fn func(*Cell)) {
	for _, row := range r.cells {
		for _, c := range row {
			fn(c)
		}
	}
}

// Snapshot copies every cell of the room
func (r *RoomGrid) Snapshot() [][]CellSnapshot {
	out := make([][]CellSnapshot, r.Rows)
	for y, row := range r.cells {
		out[y] = make([]CellSnapshot, len(row))
		for x, c := range row {
			out[y][x] = c.Snapshot()
		}
	}
	return out
}
