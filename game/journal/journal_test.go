package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/homedecor/game/engine"
	"github.com/wricardo/mcp-training/homedecor/game/service"
)

func TestJournal_PublishAndRead(t *testing.T) {
	dir := t.TempDir()
	j := New(dir)

	events := []service.GameEvent{
		{Type: "placed", Message: "Placed chair at (1,1)", Timestamp: time.Now(), Room: 0, InstanceID: 1, ItemID: "chair", Position: engine.Position{X: 1, Y: 1}},
		{Type: "removed", Message: "Removed chair from (1,1)", Timestamp: time.Now(), Room: 0, InstanceID: 1, ItemID: "chair", Position: engine.Position{X: 1, Y: 1}},
	}
	j.Publish("ab12", events)
	if err := j.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries, err := ReadAll(dir)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	for i, entry := range entries {
		if entry.SessionID != "ab12" {
			t.Errorf("Entry %d: expected session ab12, got %s", i, entry.SessionID)
		}
		if entry.ID == "" {
			t.Errorf("Entry %d: expected an id", i)
		}
		if entry.Event.Type != events[i].Type || entry.Event.Position != events[i].Position {
			t.Errorf("Entry %d: expected %+v, got %+v", i, events[i], entry.Event)
		}
	}
}

func TestWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "placements")

	clock := time.Date(2024, 5, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	if err := w.Write(Entry{ID: "1", SessionID: "s"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := w.Write(Entry{ID: "2", SessionID: "s"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Write(Entry{ID: "3", SessionID: "s"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	files, err := Files(dir, "placements")
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	want := []string{
		filepath.Join(dir, "placements-2024-05-01-10.jsonl.zst"),
		filepath.Join(dir, "placements-2024-05-01-11.jsonl.zst"),
	}
	if len(files) != len(want) {
		t.Fatalf("Expected files %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("File %d: expected %s, got %s", i, want[i], files[i])
		}
	}

	first, _ := ReadFile(files[0])
	second, _ := ReadFile(files[1])
	if len(first) != 1 || len(second) != 2 {
		t.Errorf("Expected 1 and 2 entries, got %d and %d", len(first), len(second))
	}
}

func TestWriter_AppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		w := NewWriter(dir, "placements")
		w.now = func() time.Time { return clock }
		if err := w.Write(Entry{ID: "x"}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		w.Close()
	}

	entries, err := ReadAll(dir)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected both frames to decode, got %d entries", len(entries))
	}
}

func TestFiles_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "audit-2024-01-01-00.jsonl.zst"), []byte{}, 0644)

	files, err := Files(dir, "placements")
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected no journal files, got %v", files)
	}

	if _, err := Files(filepath.Join(dir, "missing"), "placements"); err == nil {
		t.Error("Expected error for missing directory")
	}
}
