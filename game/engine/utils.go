package engine

// CountGridType counts the cells of a given type in a room view
func CountGridType(view *RoomView, gridType GridType) int {
	count := 0
	for _, row := range view.Cells {
		for _, cell := range row {
			if cell.Type == gridType {
				count++
			}
		}
	}
	return count
}

// GridTypeCounts tallies every grid type in a room view
func GridTypeCounts(view *RoomView) map[GridType]int {
	counts := make(map[GridType]int, len(AllGridTypes))
	for _, row := range view.Cells {
		for _, cell := range row {
			counts[cell.Type]++
		}
	}
	return counts
}

// LayoutRows renders the room's current types as legend characters
func LayoutRows(view *RoomView) []string {
	rows := make([]string, len(view.Cells))
	for y, row := range view.Cells {
		buf := make([]byte, len(row))
		for x, cell := range row {
			buf[x] = LegendChar(cell.Type)
		}
		rows[y] = string(buf)
	}
	return rows
}

// FitsAnywhere reports whether def could be placed somewhere in the empty
// room described by rc
func FitsAnywhere(rc RoomConfig, def ItemDefinition) bool {
	for y := 0; y+def.Height <= rc.Rows; y++ {
		for x := 0; x+def.Width <= rc.Columns; x++ {
			if fitsAt(rc, def, x, y) {
				return true
			}
		}
	}
	return false
}

func fitsAt(rc RoomConfig, def ItemDefinition, left, top int) bool {
	for y := top; y < top+def.Height; y++ {
		for x := left; x < left+def.Width; x++ {
			t, ok := Legend[rc.Layout[y][x]]
			if !ok || t == Forbidden || !def.Accepts(t) {
				return false
			}
		}
	}
	return true
}
