package engine

import (
	"errors"
	"testing"
)

func TestStacking(t *testing.T) {
	t.Run("stack on provided grid", func(t *testing.T) {
		e := newTestEngine(t)
		rug := mustPlace(t, e, 0, "rug", 0, 0)
		vase := mustStack(t, e, 0, "vase", 0, 0)

		cell := cellAt(t, e, 0, 0, 0)
		if cell.OccupiedBy != rug {
			t.Errorf("Expected rug to stay primary, got %d", cell.OccupiedBy)
		}
		if len(cell.StackedIDs) != 1 || cell.StackedIDs[0] != vase {
			t.Errorf("Expected vase stacked, got %v", cell.StackedIDs)
		}
		if cell.Type != Forbidden {
			t.Errorf("Expected non-providing stacked item to set forbidden, got %s", cell.Type)
		}
		if !cell.CanStack {
			t.Error("Expected stacked placement to leave can_stack unchanged")
		}
	})

	t.Run("cannot stack on blocking item", func(t *testing.T) {
		e := newTestEngine(t)
		mustPlace(t, e, 0, "chair", 0, 0)
		before := gridState(t, e)
		if _, err := e.PlaceStacked(0, "vase", Position{X: 0, Y: 0}); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("Expected ErrInvalidPosition, got %v", err)
		}
		assertSameGrid(t, before, gridState(t, e))
		if e.CanStack(0, "vase", Position{X: 0, Y: 0}) {
			t.Error("Expected CanStack false on a blocked cell")
		}
	})

	t.Run("stacked non-provider ends the stack", func(t *testing.T) {
		e := newTestEngine(t)
		mustPlace(t, e, 0, "rug", 0, 0)
		mustStack(t, e, 0, "vase", 0, 0)
		if _, err := e.PlaceStacked(0, "vase", Position{X: 0, Y: 0}); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("Expected ErrInvalidPosition, got %v", err)
		}
	})

	t.Run("stacked provider keeps the stack open", func(t *testing.T) {
		e := newTestEngine(t)
		mustPlace(t, e, 0, "desk", 0, 0)
		tray := mustStack(t, e, 0, "tray", 1, 1)
		vase := mustStack(t, e, 0, "vase", 1, 1)

		cell := cellAt(t, e, 0, 1, 1)
		if len(cell.StackedIDs) != 2 || cell.StackedIDs[0] != tray || cell.StackedIDs[1] != vase {
			t.Errorf("Expected stack [tray vase], got %v", cell.StackedIDs)
		}
	})

	t.Run("primary placement refused on stacked cell", func(t *testing.T) {
		e := newTestEngine(t, RoomConfig{Name: "den", Columns: 2, Rows: 1, Layout: []string{"TT"}})
		mustStack(t, e, 0, "tray", 0, 0)
		if e.CanPlace(0, "vase", Position{X: 0, Y: 0}) {
			t.Error("Expected primary placement to be refused on an occupied cell")
		}
		if !e.CanStack(0, "vase", Position{X: 0, Y: 0}) {
			t.Error("Expected vase to stack on the tray")
		}
	})

	t.Run("can_stack false implies empty stack", func(t *testing.T) {
		e := newTestEngine(t)
		mustPlace(t, e, 0, "desk", 0, 0)
		mustStack(t, e, 0, "vase", 0, 0)
		mustPlace(t, e, 0, "bench", 2, 2)
		view, _ := e.RoomView(0)
		for _, row := range view.Cells {
			for _, cell := range row {
				if !cell.CanStack && len(cell.StackedIDs) > 0 {
					t.Errorf("Cell %v has can_stack false and stack %v", cell.Position, cell.StackedIDs)
				}
			}
		}
	})
}

func TestLayeredRemoval(t *testing.T) {
	t.Run("top down restores every layer", func(t *testing.T) {
		e := newTestEngine(t)
		empty := gridState(t, e)
		desk := mustPlace(t, e, 0, "desk", 0, 0)
		withDesk := gridState(t, e)
		tray := mustStack(t, e, 0, "tray", 0, 0)
		withTray := gridState(t, e)
		vase := mustStack(t, e, 0, "vase", 0, 0)

		if err := e.Remove(0, vase); err != nil {
			t.Fatalf("Remove vase failed: %v", err)
		}
		assertSameGrid(t, withTray, gridState(t, e))
		if err := e.Remove(0, tray); err != nil {
			t.Fatalf("Remove tray failed: %v", err)
		}
		assertSameGrid(t, withDesk, gridState(t, e))
		if err := e.Remove(0, desk); err != nil {
			t.Fatalf("Remove desk failed: %v", err)
		}
		assertSameGrid(t, empty, gridState(t, e))
	})

	t.Run("supporting instance cannot be removed", func(t *testing.T) {
		e := newTestEngine(t)
		rug := mustPlace(t, e, 0, "rug", 0, 0)
		mustStack(t, e, 0, "vase", 1, 0)
		before := gridState(t, e)
		if err := e.Remove(0, rug); !errors.Is(err, ErrSupportsStack) {
			t.Errorf("Expected ErrSupportsStack, got %v", err)
		}
		assertSameGrid(t, before, gridState(t, e))
	})

	t.Run("lower layer hands its snapshot up", func(t *testing.T) {
		e := newTestEngine(t)
		empty := gridState(t, e)
		if _, err := e.BeginEdit(0); err != nil {
			t.Fatalf("BeginEdit failed: %v", err)
		}
		if _, err := e.StagePlace(0, "rug", Position{X: 0, Y: 0}); err != nil {
			t.Fatalf("StagePlace failed: %v", err)
		}
		vase := mustStack(t, e, 0, "vase", 0, 0)

		if err := e.Rollback(0); err != nil {
			t.Fatalf("Rollback failed: %v", err)
		}
		cell := cellAt(t, e, 0, 0, 0)
		if cell.Occupied || len(cell.StackedIDs) != 1 || cell.StackedIDs[0] != vase {
			t.Errorf("Expected only the vase to remain, got %+v", cell)
		}
		if cell.Type != Forbidden {
			t.Errorf("Expected the vase to keep the cell forbidden, got %s", cell.Type)
		}

		if err := e.Remove(0, vase); err != nil {
			t.Fatalf("Remove vase failed: %v", err)
		}
		assertSameGrid(t, empty, gridState(t, e))
	})
}

func TestEvents(t *testing.T) {
	var events []Event
	var e *GridEngine
	var err error
	e, err = NewEngine(createTestConfig(), testCatalog(), WithListener(func(ev Event) {
		// Listeners run unlocked and may query the engine.
		if _, qerr := e.CellInfo(ev.Room, ev.Position); qerr != nil {
			t.Errorf("CellInfo from listener failed: %v", qerr)
		}
		events = append(events, ev)
	}))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	id := mustPlace(t, e, 0, "rug", 0, 0)
	mustStack(t, e, 0, "vase", 0, 0)
	if _, err := e.BeginEdit(0); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	if _, err := e.StagePlace(0, "chair", Position{X: 3, Y: 3}); err != nil {
		t.Fatalf("StagePlace failed: %v", err)
	}
	if _, err := e.Commit(0); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if _, err := e.Place(0, "chair", Position{X: 3, Y: 3}); err == nil {
		t.Fatal("Expected placement on occupied cell to fail")
	}

	want := []EventKind{EventPlaced, EventStacked, EventEditBegun, EventPlaced, EventStaged, EventCommitted}
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %d: %+v", len(want), len(events), events)
	}
	for i, kind := range want {
		if events[i].Kind != kind {
			t.Errorf("Event %d: expected %s, got %s", i, kind, events[i].Kind)
		}
	}
	if events[0].Instance != id || events[0].ItemID != "rug" {
		t.Errorf("Expected placed event for rug %d, got %+v", id, events[0])
	}
	if events[5].Count != 1 {
		t.Errorf("Expected committed count 1, got %d", events[5].Count)
	}
}
