package engine

import (
	"errors"
	"testing"
)

func TestLayout_RoundTrip(t *testing.T) {
	source := newTestEngine(t)
	mustPlace(t, source, 0, "desk", 0, 0)
	mustStack(t, source, 0, "tray", 1, 1)
	mustStack(t, source, 0, "vase", 1, 1)
	mustPlace(t, source, 0, "rug", 2, 3)
	mustStack(t, source, 0, "vase", 3, 3)
	mustPlace(t, source, 0, "chair", 3, 0)

	layout, err := source.ExportLayout(0)
	if err != nil {
		t.Fatalf("ExportLayout failed: %v", err)
	}
	if len(layout) != 6 {
		t.Fatalf("Expected 6 entries, got %d", len(layout))
	}

	target := newTestEngine(t)
	report, err := target.LoadLayout(0, layout)
	if err != nil {
		t.Fatalf("LoadLayout failed: %v", err)
	}
	if report.Applied != 6 || len(report.Skipped) != 0 {
		t.Errorf("Expected 6 applied and none skipped, got %+v", report)
	}

	// Instance ids may differ; compare types and stack shape cell by cell.
	src, dst := gridState(t, source), gridState(t, target)
	for y := range src[0] {
		for x := range src[0][y] {
			a, b := src[0][y][x], dst[0][y][x]
			if a.Type != b.Type || a.Occupied != b.Occupied || a.CanStack != b.CanStack || len(a.StackedIDs) != len(b.StackedIDs) {
				t.Errorf("Cell (%d,%d) differs: %+v vs %+v", x, y, a, b)
			}
		}
	}

	again, _ := target.ExportLayout(0)
	for i := range layout {
		if again[i] != layout[i] {
			t.Errorf("Entry %d: expected %+v, got %+v", i, layout[i], again[i])
		}
	}
}

func TestLayout_SkipsCorruptedEntries(t *testing.T) {
	e := newTestEngine(t)
	entries := []LayoutEntry{
		{ItemID: "chair", X: 0, Y: 0},
		{ItemID: "grand-piano", X: 1, Y: 1},
		{ItemID: "chair", X: 0, Y: 0},
		{ItemID: "bench", X: 3, Y: 0},
		{ItemID: "rug", X: 1, Y: 2},
	}
	report, err := e.LoadLayout(0, entries)
	if err != nil {
		t.Fatalf("LoadLayout failed: %v", err)
	}
	if report.Applied != 2 {
		t.Errorf("Expected 2 applied, got %d", report.Applied)
	}
	if len(report.Skipped) != 3 {
		t.Fatalf("Expected 3 skipped, got %+v", report.Skipped)
	}
	if report.Skipped[0].Index != 1 || report.Skipped[0].Reason != "unknown item" {
		t.Errorf("Expected unknown item at index 1, got %+v", report.Skipped[0])
	}
	if report.Skipped[1].Index != 2 || report.Skipped[1].Reason != "invalid position" {
		t.Errorf("Expected invalid position at index 2, got %+v", report.Skipped[1])
	}
}

func TestLayout_LoadReplacesRoom(t *testing.T) {
	e := newTestEngine(t, floorRoom("a", 3, 3), floorRoom("b", 3, 3))
	old := mustPlace(t, e, 0, "desk", 0, 0)
	other := mustPlace(t, e, 1, "chair", 0, 0)

	if _, err := e.LoadLayout(0, []LayoutEntry{{ItemID: "chair", X: 2, Y: 2}}); err != nil {
		t.Fatalf("LoadLayout failed: %v", err)
	}
	if _, ok := e.Instance(old); ok {
		t.Error("Expected old placements to be cleared")
	}
	if cellAt(t, e, 0, 0, 0).Type != Floor {
		t.Error("Expected cleared cells restored to floor")
	}
	if _, ok := e.Instance(other); !ok {
		t.Error("Expected other rooms untouched")
	}
}

func TestLayout_Errors(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.ExportLayout(2); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := e.LoadLayout(2, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	id := mustPlace(t, e, 0, "chair", 0, 0)
	if err := e.BeginMove(0, id); err != nil {
		t.Fatalf("BeginMove failed: %v", err)
	}
	layout, _ := e.ExportLayout(0)
	if len(layout) != 1 || layout[0].X != 0 || layout[0].Y != 0 {
		t.Errorf("Expected the mover exported at its origin, got %+v", layout)
	}
	if _, err := e.LoadLayout(0, nil); !errors.Is(err, ErrAlreadyMoving) {
		t.Errorf("Expected ErrAlreadyMoving, got %v", err)
	}
	if err := e.CancelMove(0, false); err != nil {
		t.Fatalf("CancelMove failed: %v", err)
	}

	if _, err := e.BeginEdit(0); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	if _, err := e.LoadLayout(0, nil); !errors.Is(err, ErrAlreadyEditing) {
		t.Errorf("Expected ErrAlreadyEditing, got %v", err)
	}
}
