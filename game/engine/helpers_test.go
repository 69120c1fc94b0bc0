package engine

import (
	"reflect"
	"strings"
	"testing"
)

func floorRoom(name string, columns, rows int) RoomConfig {
	layout := make([]string, rows)
	for i := range layout {
		layout[i] = strings.Repeat("F", columns)
	}
	return RoomConfig{Name: name, Columns: columns, Rows: rows, Layout: layout}
}

func createTestConfig(rooms ...RoomConfig) *HouseConfig {
	if len(rooms) == 0 {
		rooms = []RoomConfig{floorRoom("study", 4, 4)}
	}
	return &HouseConfig{
		Name:        "Engine Test House",
		Description: "Configuration for engine tests",
		Rooms:       rooms,
	}
}

func testCatalog() MapCatalog {
	return NewMapCatalog(
		ItemDefinition{ID: "chair", Width: 1, Height: 1, GridRequirements: []GridType{Floor}},
		ItemDefinition{ID: "bench", Width: 2, Height: 1, GridRequirements: []GridType{Floor}},
		ItemDefinition{ID: "rug", Width: 2, Height: 1, GridRequirements: []GridType{Floor},
			ProvidesNewGrid: true, ProvidedGridType: Decoration},
		ItemDefinition{ID: "desk", Width: 2, Height: 2, GridRequirements: []GridType{Floor},
			ProvidesNewGrid: true, ProvidedGridType: Table},
		ItemDefinition{ID: "vase", Width: 1, Height: 1, GridRequirements: []GridType{Table, Decoration}},
		ItemDefinition{ID: "tray", Width: 1, Height: 1, GridRequirements: []GridType{Table},
			ProvidesNewGrid: true, ProvidedGridType: Decoration},
		ItemDefinition{ID: "painting", Width: 1, Height: 1, GridRequirements: []GridType{Wall}},
		ItemDefinition{ID: "fountain", Width: 1, Height: 1, GridRequirements: []GridType{Outdoor}},
	)
}

func newTestEngine(t *testing.T, rooms ...RoomConfig) *GridEngine {
	t.Helper()
	e, err := NewEngine(createTestConfig(rooms...), testCatalog())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

// gridState captures every cell of every room
func gridState(t *testing.T, e *GridEngine) [][][]CellSnapshot {
	t.Helper()
	var state [][][]CellSnapshot
	for i := 0; i < e.RoomCount(); i++ {
		view, err := e.RoomView(i)
		if err != nil {
			t.Fatalf("RoomView(%d) failed: %v", i, err)
		}
		state = append(state, view.Cells)
	}
	return state
}

func assertSameGrid(t *testing.T, before, after [][][]CellSnapshot) {
	t.Helper()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Expected grid state to be unchanged\nbefore: %+v\nafter:  %+v", before, after)
	}
}

func mustPlace(t *testing.T, e *GridEngine, room int, item string, x, y int) InstanceID {
	t.Helper()
	id, err := e.Place(room, item, Position{X: x, Y: y})
	if err != nil {
		t.Fatalf("Place(%s at %d,%d) failed: %v", item, x, y, err)
	}
	return id
}

func mustStack(t *testing.T, e *GridEngine, room int, item string, x, y int) InstanceID {
	t.Helper()
	id, err := e.PlaceStacked(room, item, Position{X: x, Y: y})
	if err != nil {
		t.Fatalf("PlaceStacked(%s at %d,%d) failed: %v", item, x, y, err)
	}
	return id
}

func cellAt(t *testing.T, e *GridEngine, room, x, y int) CellSnapshot {
	t.Helper()
	cell, err := e.CellInfo(room, Position{X: x, Y: y})
	if err != nil {
		t.Fatalf("CellInfo(%d,%d) failed: %v", x, y, err)
	}
	return cell
}
