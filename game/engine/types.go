package engine

import "fmt"

// GridType represents the placement class of a grid cell
type GridType string

const (
	Floor      GridType = "floor"
	Table      GridType = "table"
	Wall       GridType = "wall"
	Outdoor    GridType = "outdoor"
	Decoration GridType = "decoration"
	Forbidden  GridType = "forbidden"

	// Validation constants
	MinRoomSize = 1
	MaxRoomSize = 64
	MaxRooms    = 16
	MaxItemSize = 16

	// Display alpha hints forwarded to collaborators
	NormalAlpha = 1.0
	EditAlpha   = 0.5
)

// AllGridTypes lists every grid type in declaration order
var AllGridTypes = []GridType{Floor, Table, Wall, Outdoor, Decoration, Forbidden}

// Valid reports whether t is one of the known grid types
func (t GridType) Valid() bool {
	for _, known := range AllGridTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseGridType converts a string into a GridType
func ParseGridType(s string) (GridType, error) {
	t := GridType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown grid type %q", s)
	}
	return t, nil
}

// Position represents x,y coordinates inside a room
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// InstanceID identifies one placement. Zero means no instance.
type InstanceID int64

// NoInstance is the zero InstanceID
const NoInstance InstanceID = 0

// CellSnapshot is a read-only copy of a cell's state
type CellSnapshot struct {
	Position     Position     `json:"position"`
	Type         GridType     `json:"type"`
	Selectable   bool         `json:"selectable"`
	Occupied     bool         `json:"occupied"`
	OccupiedBy   InstanceID   `json:"occupied_by,omitempty"`
	StackedIDs   []InstanceID `json:"stacked_ids,omitempty"`
	CanStack     bool         `json:"can_stack"`
	DisplayAlpha float64      `json:"display_alpha"`
}

// RoomView is a full snapshot of one room for rendering collaborators
type RoomView struct {
	Index     int                 `json:"index"`
	Name      string              `json:"name"`
	Columns   int                 `json:"columns"`
	Rows      int                 `json:"rows"`
	EditMode  bool                `json:"edit_mode"`
	Cells     [][]CellSnapshot    `json:"cells"`
	Instances []PlacementInstance `json:"instances"`
}

// LayoutEntry is one persisted placement: an item id at a top-left corner
type LayoutEntry struct {
	ItemID  string `json:"item_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Stacked bool   `json:"stacked,omitempty"`
}

// SkippedEntry records a layout entry that could not be replayed
type SkippedEntry struct {
	Index  int         `json:"index"`
	Entry  LayoutEntry `json:"entry"`
	Reason string      `json:"reason"`
}

// ReplayReport summarizes a layout replay
type ReplayReport struct {
	Room    int            `json:"room"`
	Applied int            `json:"applied"`
	Skipped []SkippedEntry `json:"skipped,omitempty"`
}
