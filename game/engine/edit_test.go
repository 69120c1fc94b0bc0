package engine

import (
	"errors"
	"testing"
)

func TestEditSession_Rollback(t *testing.T) {
	e := newTestEngine(t)
	confirmed := mustPlace(t, e, 0, "desk", 0, 0)
	before := gridState(t, e)

	sessionID, err := e.BeginEdit(0)
	if err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	if sessionID == "" {
		t.Error("Expected a session id")
	}

	staged := []InstanceID{}
	for _, pos := range []Position{{X: 2, Y: 0}, {X: 3, Y: 0}, {X: 0, Y: 3}} {
		id, err := e.StagePlace(0, "chair", pos)
		if err != nil {
			t.Fatalf("StagePlace(%v) failed: %v", pos, err)
		}
		staged = append(staged, id)
	}
	vase, err := e.StageStacked(0, "vase", Position{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("StageStacked failed: %v", err)
	}
	staged = append(staged, vase)

	if err := e.Rollback(0); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	assertSameGrid(t, before, gridState(t, e))
	for _, id := range staged {
		if _, ok := e.Instance(id); ok {
			t.Errorf("Expected staged instance %d to be gone after rollback", id)
		}
	}
	if _, ok := e.Instance(confirmed); !ok {
		t.Error("Expected placement made before the session to survive rollback")
	}
	if _, ok := e.EditSession(0); ok {
		t.Error("Expected session to be closed")
	}
}

func TestEditSession_Commit(t *testing.T) {
	e := newTestEngine(t)
	confirmed := mustPlace(t, e, 0, "bench", 0, 3)

	if _, err := e.BeginEdit(0); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	a, _ := e.StagePlace(0, "chair", Position{X: 0, Y: 0})
	b, _ := e.StagePlace(0, "rug", Position{X: 2, Y: 0})

	layout, err := e.ExportLayout(0)
	if err != nil {
		t.Fatalf("ExportLayout failed: %v", err)
	}
	if len(layout) != 1 {
		t.Errorf("Expected staged placements excluded from the layout, got %+v", layout)
	}

	committed, err := e.Commit(0)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	want := []LayoutEntry{
		{ItemID: "bench", X: 0, Y: 3},
		{ItemID: "chair", X: 0, Y: 0},
		{ItemID: "rug", X: 2, Y: 0},
	}
	if len(committed) != len(want) {
		t.Fatalf("Expected %d entries, got %+v", len(want), committed)
	}
	for i := range want {
		if committed[i] != want[i] {
			t.Errorf("Entry %d: expected %+v, got %+v", i, want[i], committed[i])
		}
	}

	for _, id := range []InstanceID{a, b, confirmed} {
		inst, ok := e.Instance(id)
		if !ok || inst.Staged {
			t.Errorf("Expected %d to be confirmed, got %+v", id, inst)
		}
	}

	// A later session cannot roll back committed placements.
	if _, err := e.BeginEdit(0); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	if err := e.Rollback(0); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	if _, ok := e.Instance(a); !ok {
		t.Error("Expected committed placement to survive a later rollback")
	}
}

func TestEditSession_DuplicateStagingIsNoOp(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.BeginEdit(0); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	first, err := e.StagePlace(0, "chair", Position{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("StagePlace failed: %v", err)
	}
	before := gridState(t, e)

	again, err := e.StagePlace(0, "chair", Position{X: 1, Y: 1})
	if err != nil {
		t.Errorf("Expected duplicate staging to be a no-op, got %v", err)
	}
	if again != first {
		t.Errorf("Expected existing instance %d, got %d", first, again)
	}
	assertSameGrid(t, before, gridState(t, e))

	if _, err := e.StagePlace(0, "chair", Position{X: 2, Y: 1}); err != nil {
		t.Errorf("Expected staging elsewhere to succeed, got %v", err)
	}
	session, _ := e.EditSession(0)
	if len(session.Staged) != 2 {
		t.Errorf("Expected 2 ledger entries, got %d", len(session.Staged))
	}
}

func TestEditSession_Errors(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.StagePlace(0, "chair", Position{}); !errors.Is(err, ErrNotEditing) {
		t.Errorf("Expected ErrNotEditing, got %v", err)
	}
	if _, err := e.Commit(0); !errors.Is(err, ErrNotEditing) {
		t.Errorf("Expected ErrNotEditing from Commit, got %v", err)
	}
	if err := e.Rollback(0); !errors.Is(err, ErrNotEditing) {
		t.Errorf("Expected ErrNotEditing from Rollback, got %v", err)
	}
	if _, err := e.BeginEdit(3); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if _, err := e.BeginEdit(0); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	if _, err := e.BeginEdit(0); !errors.Is(err, ErrAlreadyEditing) {
		t.Errorf("Expected ErrAlreadyEditing, got %v", err)
	}
	if _, err := e.StagePlace(0, "piano", Position{}); !errors.Is(err, ErrCatalogMiss) {
		t.Errorf("Expected ErrCatalogMiss, got %v", err)
	}
	if _, err := e.StagePlace(0, "chair", Position{X: 9, Y: 0}); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("Expected ErrInvalidPosition, got %v", err)
	}
	session, _ := e.EditSession(0)
	if len(session.Staged) != 0 {
		t.Errorf("Expected failed staging to leave the ledger empty, got %+v", session.Staged)
	}
}

func TestEditSession_MoveInteraction(t *testing.T) {
	t.Run("closing blocked while moving", func(t *testing.T) {
		e := newTestEngine(t)
		if _, err := e.BeginEdit(0); err != nil {
			t.Fatalf("BeginEdit failed: %v", err)
		}
		id, _ := e.StagePlace(0, "chair", Position{X: 0, Y: 0})
		if err := e.BeginMove(0, id); err != nil {
			t.Fatalf("BeginMove failed: %v", err)
		}
		if _, err := e.Commit(0); !errors.Is(err, ErrAlreadyMoving) {
			t.Errorf("Expected ErrAlreadyMoving from Commit, got %v", err)
		}
		if err := e.Rollback(0); !errors.Is(err, ErrAlreadyMoving) {
			t.Errorf("Expected ErrAlreadyMoving from Rollback, got %v", err)
		}
		if ok, _ := e.FinishMove(0, Position{X: 2, Y: 2}); !ok {
			t.Fatal("Expected FinishMove to succeed")
		}
		session, _ := e.EditSession(0)
		if len(session.Staged) != 1 || session.Staged[0].TopLeft != (Position{X: 2, Y: 2}) {
			t.Errorf("Expected ledger to follow the move, got %+v", session.Staged)
		}
		if err := e.Rollback(0); err != nil {
			t.Fatalf("Rollback failed: %v", err)
		}
		if _, ok := e.Instance(id); ok {
			t.Error("Expected moved staged instance to be rolled back")
		}
	})

	t.Run("removed staged instance leaves the ledger", func(t *testing.T) {
		e := newTestEngine(t)
		if _, err := e.BeginEdit(0); err != nil {
			t.Fatalf("BeginEdit failed: %v", err)
		}
		id, _ := e.StagePlace(0, "chair", Position{X: 0, Y: 0})
		if err := e.Remove(0, id); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		session, _ := e.EditSession(0)
		if len(session.Staged) != 0 {
			t.Errorf("Expected empty ledger, got %+v", session.Staged)
		}
	})

	t.Run("staged instance moved out of an edited room is confirmed", func(t *testing.T) {
		e := newTestEngine(t, floorRoom("a", 2, 2), floorRoom("b", 2, 2))
		if _, err := e.BeginEdit(0); err != nil {
			t.Fatalf("BeginEdit failed: %v", err)
		}
		id, _ := e.StagePlace(0, "chair", Position{X: 0, Y: 0})
		if err := e.BeginMove(0, id); err != nil {
			t.Fatalf("BeginMove failed: %v", err)
		}
		if ok, _ := e.FinishMove(1, Position{X: 1, Y: 1}); !ok {
			t.Fatal("Expected cross-room move to succeed")
		}
		if err := e.Rollback(0); err != nil {
			t.Fatalf("Rollback failed: %v", err)
		}
		inst, ok := e.Instance(id)
		if !ok || inst.Staged {
			t.Errorf("Expected instance confirmed in room 1, got %+v", inst)
		}
	})

	t.Run("other rooms unaffected", func(t *testing.T) {
		e := newTestEngine(t, floorRoom("a", 2, 2), floorRoom("b", 2, 2))
		if _, err := e.BeginEdit(0); err != nil {
			t.Fatalf("BeginEdit failed: %v", err)
		}
		other := mustPlace(t, e, 1, "chair", 0, 0)
		if _, err := e.StagePlace(0, "chair", Position{}); err != nil {
			t.Fatalf("StagePlace failed: %v", err)
		}
		if err := e.Rollback(0); err != nil {
			t.Fatalf("Rollback failed: %v", err)
		}
		if _, ok := e.Instance(other); !ok {
			t.Error("Expected room 1 placement to be untouched")
		}
	})
}

func TestEditSession_RollbackTakesLayersAbove(t *testing.T) {
	t.Run("placement during edit joins the ledger", func(t *testing.T) {
		e := newTestEngine(t)
		before := gridState(t, e)
		if _, err := e.BeginEdit(0); err != nil {
			t.Fatalf("BeginEdit failed: %v", err)
		}
		if _, err := e.StagePlace(0, "desk", Position{X: 0, Y: 0}); err != nil {
			t.Fatalf("StagePlace failed: %v", err)
		}
		vase := mustStack(t, e, 0, "vase", 0, 0)

		session, _ := e.EditSession(0)
		if len(session.Staged) != 2 {
			t.Errorf("Expected the vase to join the ledger, got %+v", session.Staged)
		}
		if inst, _ := e.Instance(vase); !inst.Staged {
			t.Error("Expected vase placed during edit to be staged")
		}

		if err := e.Rollback(0); err != nil {
			t.Fatalf("Rollback failed: %v", err)
		}
		if _, ok := e.Instance(vase); ok {
			t.Error("Expected vase to be rolled back with its desk")
		}
		assertSameGrid(t, before, gridState(t, e))
		if layout, _ := e.ExportLayout(0); len(layout) != 0 {
			t.Errorf("Expected empty layout, got %+v", layout)
		}
	})

	t.Run("confirmed item moved onto a staged surface", func(t *testing.T) {
		e := newTestEngine(t)
		mustPlace(t, e, 0, "desk", 2, 2)
		vase := mustStack(t, e, 0, "vase", 2, 2)

		if _, err := e.BeginEdit(0); err != nil {
			t.Fatalf("BeginEdit failed: %v", err)
		}
		if _, err := e.StagePlace(0, "desk", Position{X: 0, Y: 0}); err != nil {
			t.Fatalf("StagePlace failed: %v", err)
		}
		if err := e.BeginMove(0, vase); err != nil {
			t.Fatalf("BeginMove failed: %v", err)
		}
		if ok, err := e.FinishMove(0, Position{X: 0, Y: 0}); !ok || err != nil {
			t.Fatalf("Expected vase to land on the staged desk, got %v %v", ok, err)
		}

		if err := e.Rollback(0); err != nil {
			t.Fatalf("Rollback failed: %v", err)
		}
		if _, ok := e.Instance(vase); ok {
			t.Error("Expected vase resting on the staged desk to be removed")
		}
		cell := cellAt(t, e, 0, 0, 0)
		if cell.Type != Floor || cell.Occupied || len(cell.StackedIDs) != 0 || !cell.CanStack {
			t.Errorf("Expected (0,0) to be free floor, got %+v", cell)
		}

		layout, _ := e.ExportLayout(0)
		replay := newTestEngine(t)
		report, err := replay.LoadLayout(0, layout)
		if err != nil {
			t.Fatalf("LoadLayout failed: %v", err)
		}
		if report.Applied != len(layout) || len(report.Skipped) != 0 {
			t.Errorf("Expected exported layout %+v to replay cleanly, got %+v", layout, report)
		}
	})
}

func TestEditSession_StackedEntryIsDistinct(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.BeginEdit(0); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	desk, err := e.StagePlace(0, "desk", Position{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("StagePlace failed: %v", err)
	}
	vase, err := e.StageStacked(0, "vase", Position{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("StageStacked failed: %v", err)
	}
	if vase == desk {
		t.Error("Expected a stacked entry at the same top-left to be staged separately")
	}

	again, err := e.StageStacked(0, "vase", Position{X: 0, Y: 0})
	if err != nil || again != vase {
		t.Errorf("Expected duplicate stacked staging to return %d, got %d (%v)", vase, again, err)
	}
	session, _ := e.EditSession(0)
	if len(session.Staged) != 2 {
		t.Errorf("Expected 2 ledger entries, got %+v", session.Staged)
	}
}
