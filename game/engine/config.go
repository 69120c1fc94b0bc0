package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HouseConfig describes the rooms of a house, loaded from JSON
type HouseConfig struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Rooms       []RoomConfig      `json:"rooms"`
	Legend      map[string]string `json:"legend,omitempty"`
}

// RoomConfig describes one room. Layout has one string per row, one legend
// character per cell.
type RoomConfig struct {
	Name    string   `json:"name"`
	Columns int      `json:"columns"`
	Rows    int      `json:"rows"`
	Layout  []string `json:"layout"`
}

// Legend maps layout characters to grid types
var Legend = map[byte]GridType{
	'F': Floor,
	'T': Table,
	'W': Wall,
	'O': Outdoor,
	'D': Decoration,
	'X': Forbidden,
}

// LegendChar returns the layout character for a grid type
func LegendChar(t GridType) byte {
	for ch, gt := range Legend {
		if gt == t {
			return ch
		}
	}
	return '?'
}

// ValidateHouseConfig validates a house configuration
func ValidateHouseConfig(config *HouseConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if len(config.Rooms) == 0 || len(config.Rooms) > MaxRooms {
		return fmt.Errorf("config validation: rooms must contain between 1 and %d entries, got %d", MaxRooms, len(config.Rooms))
	}

	for i, room := range config.Rooms {
		if room.Name == "" {
			return fmt.Errorf("config validation: room %d name is required", i)
		}
		if room.Columns < MinRoomSize || room.Columns > MaxRoomSize {
			return fmt.Errorf("config validation: room %d columns must be between %d and %d, got %d", i, MinRoomSize, MaxRoomSize, room.Columns)
		}
		if room.Rows < MinRoomSize || room.Rows > MaxRoomSize {
			return fmt.Errorf("config validation: room %d rows must be between %d and %d, got %d", i, MinRoomSize, MaxRoomSize, room.Rows)
		}
		if len(room.Layout) != room.Rows {
			return fmt.Errorf("config validation: room %d layout must have %d rows, got %d", i, room.Rows, len(room.Layout))
		}
		for y, row := range room.Layout {
			if len(row) != room.Columns {
				return fmt.Errorf("config validation: room %d row %d must have %d characters, got %d", i, y+1, room.Columns, len(row))
			}
			for x := 0; x < len(row); x++ {
				if _, ok := Legend[row[x]]; !ok {
					return fmt.Errorf("config validation: room %d invalid character '%c' at row %d, col %d", i, row[x], y+1, x+1)
				}
			}
		}
	}

	for key, value := range config.Legend {
		if len(key) != 1 {
			return fmt.Errorf("config validation: legend key %q must be a single character", key)
		}
		if expected, ok := Legend[key[0]]; !ok || string(expected) != value {
			return fmt.Errorf("config validation: legend['%s'] must be '%s', got '%s'", key, expected, value)
		}
	}
	return nil
}

// TypeRule returns the per-position type assignment for this house
func (config *HouseConfig) TypeRule() TypeRule {
	return func(room, x, y int) GridType {
		if room < 0 || room >= len(config.Rooms) {
			return Forbidden
		}
		layout := config.Rooms[room].Layout
		if y < 0 || y >= len(layout) || x < 0 || x >= len(layout[y]) {
			return Forbidden
		}
		if t, ok := Legend[layout[y][x]]; ok {
			return t
		}
		return Forbidden
	}
}

// LoadHouseConfig loads a house configuration from a JSON file
func LoadHouseConfig(filename string) (*HouseConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config HouseConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if err := ValidateHouseConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultHouseConfig returns the built-in two room house
func DefaultHouseConfig() *HouseConfig {
	return &HouseConfig{
		Name:        "cottage",
		Description: "A small cottage with a living room and a garden",
		Rooms: []RoomConfig{
			{
				Name:    "living room",
				Columns: 8,
				Rows:    6,
				Layout: []string{
					"WWWWWWWW",
					"FFFFFFFF",
					"FFFTTFFF",
					"FFFTTFFF",
					"FFFFFFFF",
					"XFFFFFFX",
				},
			},
			{
				Name:    "garden",
				Columns: 6,
				Rows:    4,
				Layout: []string{
					"OOOOOO",
					"OOOOOO",
					"OODDOO",
					"OOOOOO",
				},
			},
		},
	}
}
