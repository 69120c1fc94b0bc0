package engine

import "fmt"

// ItemDefinition describes a furniture item. It is never mutated by the engine.
type ItemDefinition struct {
	ID               string     `json:"id"`
	Name             string     `json:"name,omitempty"`
	Width            int        `json:"width"`
	Height           int        `json:"height"`
	GridRequirements []GridType `json:"grid_requirements"`
	ProvidesNewGrid  bool       `json:"provides_new_grid"`
	ProvidedGridType GridType   `json:"provided_grid_type,omitempty"`
}

// Accepts reports whether the item may sit on a cell of type t
func (d ItemDefinition) Accepts(t GridType) bool {
	for _, req := range d.GridRequirements {
		if req == t {
			return true
		}
	}
	return false
}

// Validate checks the definition for internal consistency
func (d ItemDefinition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("item validation: id is required")
	}
	if d.Width < 1 || d.Width > MaxItemSize || d.Height < 1 || d.Height > MaxItemSize {
		return fmt.Errorf("item validation: %s footprint must be between 1x1 and %dx%d, got %dx%d",
			d.ID, MaxItemSize, MaxItemSize, d.Width, d.Height)
	}
	if len(d.GridRequirements) == 0 {
		return fmt.Errorf("item validation: %s must list at least one grid requirement", d.ID)
	}
	for _, req := range d.GridRequirements {
		if !req.Valid() {
			return fmt.Errorf("item validation: %s has unknown grid requirement %q", d.ID, req)
		}
		if req == Forbidden {
			return fmt.Errorf("item validation: %s cannot require forbidden cells", d.ID)
		}
	}
	if d.ProvidesNewGrid {
		if !d.ProvidedGridType.Valid() {
			return fmt.Errorf("item validation: %s provides unknown grid type %q", d.ID, d.ProvidedGridType)
		}
	} else if d.ProvidedGridType != "" {
		return fmt.Errorf("item validation: %s sets provided_grid_type without provides_new_grid", d.ID)
	}
	return nil
}

// Catalog looks up item definitions by id
type Catalog interface {
	Lookup(itemID string) (ItemDefinition, bool)
}

// MapCatalog is an in-memory Catalog
type MapCatalog map[string]ItemDefinition

// NewMapCatalog indexes defs by id
func NewMapCatalog(defs ...ItemDefinition) MapCatalog {
	c := make(MapCatalog, len(defs))
	for _, d := range defs {
		c[d.ID] = d
	}
	return c
}

// Lookup implements Catalog
func (c MapCatalog) Lookup(itemID string) (ItemDefinition, bool) {
	d, ok := c[itemID]
	return d, ok
}
