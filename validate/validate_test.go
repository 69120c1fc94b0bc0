package validate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/homedecor/game/catalog"
	"github.com/wricardo/mcp-training/homedecor/game/engine"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func writeHouse(t *testing.T, dir, name string, config *engine.HouseConfig) string {
	t.Helper()
	data, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	return writeConfig(t, dir, name, string(data))
}

func hasMessage(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidateFile_DefaultHouse(t *testing.T) {
	dir := t.TempDir()
	path := writeHouse(t, dir, "cottage.json", engine.DefaultHouseConfig())

	result := ValidateFile(path, catalog.Default())
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "cottage.json" {
		t.Errorf("Expected file name cottage.json, got %s", result.File)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected every item to fit, got warnings: %v", result.Warnings)
	}
	if !hasMessage(result.Notes, "Placeable items: 13/13") {
		t.Errorf("Expected placeable note, got %v", result.Notes)
	}
}

func TestValidateFile_InvalidJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "bad.json", `{"name": "test", invalid json}`)

	result := ValidateFile(path, catalog.Default())
	if result.Valid {
		t.Error("Expected invalid config due to bad JSON")
	}
	if !hasMessage(result.Errors, "Invalid JSON") {
		t.Errorf("Expected 'Invalid JSON' error, got %v", result.Errors)
	}
}

func TestValidateFile_MissingFile(t *testing.T) {
	result := ValidateFile("/non/existent/file.json", catalog.Default())
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasMessage(result.Errors, "Failed to read file") {
		t.Errorf("Expected 'Failed to read file' error, got %v", result.Errors)
	}
}

func TestValidateHouse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *engine.HouseConfig)
		message string
	}{
		{"no rooms", func(c *engine.HouseConfig) { c.Rooms = nil }, "rooms must contain"},
		{"bad character", func(c *engine.HouseConfig) { c.Rooms[1].Layout[0] = "OOZOOO" }, "invalid character 'Z'"},
		{"short row", func(c *engine.HouseConfig) { c.Rooms[0].Layout[2] = "FFF" }, "must have 8 characters"},
		{"missing description", func(c *engine.HouseConfig) { c.Description = "" }, "description is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := engine.DefaultHouseConfig()
			tt.mutate(config)

			result := ValidateHouse("test", config, catalog.Default())
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			if !hasMessage(result.Errors, tt.message) {
				t.Errorf("Expected error containing %q, got %v", tt.message, result.Errors)
			}
		})
	}
}

func TestValidateHouse_ForbiddenRoom(t *testing.T) {
	config := engine.DefaultHouseConfig()
	config.Rooms = append(config.Rooms, engine.RoomConfig{
		Name: "closet", Columns: 2, Rows: 2, Layout: []string{"XX", "XX"},
	})

	result := ValidateHouse("test", config, catalog.Default())
	if result.Valid {
		t.Fatal("Expected room without usable cells to be invalid")
	}
	if !hasMessage(result.Errors, "Room 2 (closet) has no usable cells") {
		t.Errorf("Unexpected errors: %v", result.Errors)
	}
}

func TestValidateHouse_ItemFitWarnings(t *testing.T) {
	config := &engine.HouseConfig{
		Name:        "studio",
		Description: "One floor-only room",
		Rooms: []engine.RoomConfig{
			{Name: "studio", Columns: 3, Rows: 3, Layout: []string{"FFF", "FFF", "FFF"}},
		},
	}

	result := ValidateHouse("studio.json", config, catalog.Default())
	if !result.Valid {
		t.Fatalf("Expected valid config, got %v", result.Errors)
	}

	// Vases and lamps fit on the surface a dining table provides.
	for _, id := range []string{"vase", "lamp", "tablecloth"} {
		if hasMessage(result.Warnings, "Item "+id+" ") {
			t.Errorf("Expected %s to fit on a provided surface, got warnings %v", id, result.Warnings)
		}
	}
	for _, id := range []string{"painting", "clock", "bench"} {
		if !hasMessage(result.Warnings, "Item "+id+" ") {
			t.Errorf("Expected warning for %s, got %v", id, result.Warnings)
		}
	}
}

func TestValidateHouse_NothingPlaceable(t *testing.T) {
	items, err := catalog.New(engine.ItemDefinition{
		ID: "bench", Width: 2, Height: 1, GridRequirements: []engine.GridType{engine.Outdoor},
	})
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	config := &engine.HouseConfig{
		Name:        "attic",
		Description: "Only walls",
		Rooms:       []engine.RoomConfig{{Name: "attic", Columns: 2, Rows: 1, Layout: []string{"WW"}}},
	}

	result := ValidateHouse("attic.json", config, items)
	if result.Valid {
		t.Fatal("Expected house without placeable items to be invalid")
	}
	if !hasMessage(result.Errors, "No catalog item can be placed in attic") {
		t.Errorf("Unexpected errors: %v", result.Errors)
	}
}

func TestValidateHouse_NilCatalog(t *testing.T) {
	result := ValidateHouse("cottage", engine.DefaultHouseConfig(), nil)
	if !result.Valid {
		t.Errorf("Expected valid result without catalog, got %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no fit warnings without catalog, got %v", result.Warnings)
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writeHouse(t, dir, "b_cottage.json", engine.DefaultHouseConfig())
	writeConfig(t, dir, "a_broken.json", `{"name": "broken"}`)
	writeConfig(t, dir, "notes.txt", "ignored")

	results, err := ValidateDir(dir, catalog.Default())
	if err != nil {
		t.Fatalf("ValidateDir failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].File != "a_broken.json" || results[0].Valid {
		t.Errorf("Expected a_broken.json first and invalid, got %+v", results[0])
	}
	if results[1].File != "b_cottage.json" || !results[1].Valid {
		t.Errorf("Expected b_cottage.json second and valid, got %+v", results[1])
	}
	if AllValid(results) {
		t.Error("Expected AllValid to be false")
	}
	if !AllValid(results[1:]) {
		t.Error("Expected AllValid to be true for the valid subset")
	}
}
