// Command inspect prints a colored, human-readable summary of house
// configuration files. For each room it draws the layout, counts cells per
// grid type, and shows where every catalog item would first fit in the
// empty room.
//
// Usage:
//
//	inspect [-catalog configs/items/items.json] [config.json ...]
//
// Without arguments every *.json file in configs/ is inspected.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gookit/color"
	"github.com/wricardo/mcp-training/homedecor/game/catalog"
	"github.com/wricardo/mcp-training/homedecor/game/engine"
)

var typeColors = map[engine.GridType]color.Color{
	engine.Floor:      color.Yellow,
	engine.Table:      color.Magenta,
	engine.Wall:       color.Gray,
	engine.Outdoor:    color.Green,
	engine.Decoration: color.Cyan,
	engine.Forbidden:  color.Red,
}

func main() {
	catalogPath := flag.String("catalog", "configs/items/items.json", "Item catalog file")
	flag.Parse()

	items, err := catalog.LoadOrDefault(*catalogPath)
	if err != nil {
		color.Red.Printf("Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	files := flag.Args()
	if len(files) == 0 {
		files, _ = filepath.Glob(filepath.Join("configs", "*.json"))
		sort.Strings(files)
	}
	if len(files) == 0 {
		color.Yellow.Println("No configuration files found")
		return
	}

	failed := false
	for _, file := range files {
		color.Bold.Printf("\n=== Inspecting %s ===\n", filepath.Base(file))
		if err := inspectFile(os.Stdout, file, items); err != nil {
			color.Red.Printf("Error: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func inspectFile(w io.Writer, path string, items *catalog.Catalog) error {
	config, err := engine.LoadHouseConfig(path)
	if err != nil {
		return err
	}
	e, err := engine.NewEngine(config, items)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Name: %s\n", config.Name)
	fmt.Fprintf(w, "Description: %s\n", config.Description)
	fmt.Fprintf(w, "Rooms: %d\n", e.RoomCount())

	for i := 0; i < e.RoomCount(); i++ {
		view, err := e.RoomView(i)
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		inspectRoom(w, view)
		printFits(w, e, i, items.List())
	}
	return nil
}

func inspectRoom(w io.Writer, view *engine.RoomView) {
	fmt.Fprintf(w, "Room %d: %s (%dx%d)\n", view.Index, view.Name, view.Columns, view.Rows)
	for _, row := range engine.LayoutRows(view) {
		fmt.Fprintf(w, "  %s\n", colorRow(row))
	}

	counts := engine.GridTypeCounts(view)
	parts := make([]string, 0, len(counts))
	for _, t := range engine.AllGridTypes {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", t, n))
		}
	}
	fmt.Fprintf(w, "Cells: %s\n", strings.Join(parts, " "))
}

func colorRow(row string) string {
	var out strings.Builder
	for i := 0; i < len(row); i++ {
		ch := string(row[i])
		if c, ok := typeColors[engine.Legend[row[i]]]; ok {
			ch = c.Sprint(ch)
		}
		out.WriteString(ch)
	}
	return out.String()
}

func printFits(w io.Writer, e *engine.GridEngine, room int, defs []engine.ItemDefinition) {
	var missing []string
	for _, def := range defs {
		pos, ok := e.FindSpot(room, def.ID)
		if !ok {
			missing = append(missing, def.ID)
			continue
		}
		fmt.Fprintf(w, "  %s %s first fits at %s\n", color.Green.Sprint("✓"), def.ID, pos)
	}
	if len(missing) > 0 {
		fmt.Fprintf(w, "  %s no spot for: %s\n", color.Yellow.Sprint("⚠"), strings.Join(missing, ", "))
	}
}
