package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/wricardo/mcp-training/homedecor/game/engine"
)

var (
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrDuplicateItem  = errors.New("duplicate item id")
)

type document struct {
	Items []engine.ItemDefinition `json:"items"`
}

// Catalog is a read-only set of item definitions
type Catalog struct {
	items map[string]engine.ItemDefinition
	mu    sync.RWMutex
}

// New builds a catalog from definitions, validating each one
func New(defs ...engine.ItemDefinition) (*Catalog, error) {
	c := &Catalog{items: make(map[string]engine.ItemDefinition, len(defs))}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		if _, exists := c.items[def.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, def.ID)
		}
		c.items[def.ID] = def
	}
	return c, nil
}

// Parse validates a JSON catalog document and builds a catalog from it
func Parse(data []byte) (*Catalog, error) {
	s, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile catalog schema: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := s.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(doc.Items...)
}

// Load reads a catalog file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault reads path when it exists and falls back to the built-in catalog
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Lookup implements engine.Catalog
func (c *Catalog) Lookup(itemID string) (engine.ItemDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.items[itemID]
	return def, ok
}

// List returns every definition sorted by id
func (c *Catalog) List() []engine.ItemDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]engine.ItemDefinition, 0, len(c.items))
	for _, def := range c.items {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of items
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Marshal encodes the catalog as a JSON document
func (c *Catalog) Marshal() ([]byte, error) {
	return json.MarshalIndent(document{Items: c.List()}, "", "  ")
}

// Default returns the built-in furniture set
func Default() *Catalog {
	c, err := New(
		engine.ItemDefinition{ID: "chair", Name: "Wooden Chair", Width: 1, Height: 1,
			GridRequirements: []engine.GridType{engine.Floor}},
		engine.ItemDefinition{ID: "sofa", Name: "Sofa", Width: 2, Height: 1,
			GridRequirements: []engine.GridType{engine.Floor}},
		engine.ItemDefinition{ID: "bookshelf", Name: "Bookshelf", Width: 1, Height: 2,
			GridRequirements: []engine.GridType{engine.Floor}},
		engine.ItemDefinition{ID: "dining-table", Name: "Dining Table", Width: 2, Height: 2,
			GridRequirements: []engine.GridType{engine.Floor},
			ProvidesNewGrid:  true, ProvidedGridType: engine.Table},
		engine.ItemDefinition{ID: "rug", Name: "Round Rug", Width: 2, Height: 2,
			GridRequirements: []engine.GridType{engine.Floor},
			ProvidesNewGrid:  true, ProvidedGridType: engine.Decoration},
		engine.ItemDefinition{ID: "tablecloth", Name: "Tablecloth", Width: 1, Height: 1,
			GridRequirements: []engine.GridType{engine.Table},
			ProvidesNewGrid:  true, ProvidedGridType: engine.Decoration},
		engine.ItemDefinition{ID: "vase", Name: "Flower Vase", Width: 1, Height: 1,
			GridRequirements: []engine.GridType{engine.Table, engine.Decoration}},
		engine.ItemDefinition{ID: "lamp", Name: "Table Lamp", Width: 1, Height: 1,
			GridRequirements: []engine.GridType{engine.Table}},
		engine.ItemDefinition{ID: "painting", Name: "Landscape Painting", Width: 2, Height: 1,
			GridRequirements: []engine.GridType{engine.Wall}},
		engine.ItemDefinition{ID: "clock", Name: "Wall Clock", Width: 1, Height: 1,
			GridRequirements: []engine.GridType{engine.Wall}},
		engine.ItemDefinition{ID: "bench", Name: "Garden Bench", Width: 2, Height: 1,
			GridRequirements: []engine.GridType{engine.Outdoor}},
		engine.ItemDefinition{ID: "planter", Name: "Planter", Width: 1, Height: 1,
			GridRequirements: []engine.GridType{engine.Outdoor, engine.Decoration}},
		engine.ItemDefinition{ID: "gnome", Name: "Garden Gnome", Width: 1, Height: 1,
			GridRequirements: []engine.GridType{engine.Decoration}},
	)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in catalog is invalid: %v", err))
	}
	return c
}
