// Package validate checks house configuration files against the item
// catalog. It checks:
//   - JSON structure and required fields
//   - Room dimensions and allowed layout characters (F, T, W, O, D, X)
//   - Every room has at least one usable cell
//   - Every catalog item fits in at least one room of the house, either on
//     the printed layout or on a surface another item provides
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/homedecor/game/engine"
)

// Result captures the outcome of validating a single file. Errors make the
// file invalid; Warnings and Notes are informational.
type Result struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Notes    []string
}

func (r *Result) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Catalog is the item source used for fit checks
type Catalog interface {
	List() []engine.ItemDefinition
}

// ValidateFile loads and validates a single house configuration file
func ValidateFile(path string, items Catalog) Result {
	result := Result{
		File:  filepath.Base(path),
		Valid: true,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.HouseConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	checkHouse(&result, &config, items)
	return result
}

// ValidateHouse validates an in-memory configuration
func ValidateHouse(name string, config *engine.HouseConfig, items Catalog) Result {
	result := Result{File: name, Valid: true}
	checkHouse(&result, config, items)
	return result
}

// ValidateDir validates every *.json file in dir, sorted by name
func ValidateDir(dir string, items Catalog) ([]Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, ValidateFile(file, items))
	}
	return results, nil
}

// AllValid reports whether every result is valid
func AllValid(results []Result) bool {
	for _, r := range results {
		if !r.Valid {
			return false
		}
	}
	return true
}

func checkHouse(result *Result, config *engine.HouseConfig, items Catalog) {
	if err := engine.ValidateHouseConfig(config); err != nil {
		result.fail("%v", err)
		return
	}

	for i, room := range config.Rooms {
		usable := usableCells(room)
		if usable == 0 {
			result.fail("Room %d (%s) has no usable cells", i, room.Name)
			continue
		}
		result.Notes = append(result.Notes, fmt.Sprintf("Room %d: %s %dx%d, %d usable cells",
			i, room.Name, room.Columns, room.Rows, usable))
	}
	if !result.Valid || items == nil {
		return
	}

	defs := items.List()
	placeable := 0
	for _, def := range defs {
		if fitsHouse(config, def, defs) {
			placeable++
			continue
		}
		result.Warnings = append(result.Warnings, fmt.Sprintf("Item %s (%dx%d) fits in no room", def.ID, def.Width, def.Height))
	}
	if placeable == 0 && len(defs) > 0 {
		result.fail("No catalog item can be placed in %s", config.Name)
		return
	}
	result.Notes = append(result.Notes, fmt.Sprintf("Placeable items: %d/%d", placeable, len(defs)))
}

func usableCells(room engine.RoomConfig) int {
	count := 0
	for _, row := range room.Layout {
		for x := 0; x < len(row); x++ {
			if t, ok := engine.Legend[row[x]]; ok && t != engine.Forbidden {
				count++
			}
		}
	}
	return count
}

// fitsHouse also counts surfaces created by provider items: a vase that
// needs a table fits a floor-only room when a dining table fits there.
func fitsHouse(config *engine.HouseConfig, def engine.ItemDefinition, defs []engine.ItemDefinition) bool {
	for _, room := range config.Rooms {
		if engine.FitsAnywhere(room, def) {
			return true
		}
		for _, provider := range defs {
			if !provider.ProvidesNewGrid || provider.ID == def.ID {
				continue
			}
			if !def.Accepts(provider.ProvidedGridType) {
				continue
			}
			if provider.Width >= def.Width && provider.Height >= def.Height && engine.FitsAnywhere(room, provider) {
				return true
			}
		}
	}
	return false
}
