package engine

import "sort"

// PlacementInstance is one placed item
type PlacementInstance struct {
	ID            InstanceID `json:"id"`
	ItemID        string     `json:"item_id"`
	Room          int        `json:"room"`
	TopLeft       Position   `json:"top_left"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	OccupiedCells []Position `json:"occupied_cells"`
	Stacked       bool       `json:"stacked,omitempty"`
	Staged        bool       `json:"staged,omitempty"`

	// Copied from the item definition so removal and cancel never consult the catalog
	ProvidesNewGrid  bool     `json:"provides_new_grid,omitempty"`
	ProvidedGridType GridType `json:"provided_grid_type,omitempty"`

	// OriginalCellTypes is the per-cell type snapshot taken just before placement
	OriginalCellTypes map[Position]GridType `json:"-"`

	seq uint64
}

func (p *PlacementInstance) clone() PlacementInstance {
	c := *p
	c.OccupiedCells = append([]Position(nil), p.OccupiedCells...)
	c.OriginalCellTypes = make(map[Position]GridType, len(p.OriginalCellTypes))
	for k, v := range p.OriginalCellTypes {
		c.OriginalCellTypes[k] = v
	}
	return c
}

func (p *PlacementInstance) entry() LayoutEntry {
	return LayoutEntry{ItemID: p.ItemID, X: p.TopLeft.X, Y: p.TopLeft.Y, Stacked: p.Stacked}
}

// Registry tracks every currently placed instance
type Registry struct {
	instances map[InstanceID]*PlacementInstance
	lastID    InstanceID
	lastSeq   uint64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{instances: make(map[InstanceID]*PlacementInstance)}
}

// NextID returns a fresh instance id. Ids are never reused.
func (r *Registry) NextID() InstanceID {
	r.lastID++
	return r.lastID
}

func (r *Registry) nextSeq() uint64 {
	r.lastSeq++
	return r.lastSeq
}

// Add registers an instance
func (r *Registry) Add(inst *PlacementInstance) {
	r.instances[inst.ID] = inst
}

// Get looks up an instance by id
func (r *Registry) Get(id InstanceID) (*PlacementInstance, bool) {
	inst, ok := r.instances[id]
	return inst, ok
}

// Delete drops an instance
func (r *Registry) Delete(id InstanceID) {
	delete(r.instances, id)
}

// Len returns the number of registered instances
func (r *Registry) Len() int {
	return len(r.instances)
}

// InRoom returns the instances of a room in placement order
func (r *Registry) InRoom(room int) []*PlacementInstance {
	var out []*PlacementInstance
	for _, inst := range r.instances {
		if inst.Room == room {
			out = append(out, inst)
		}
	}
	sortBySeq(out)
	return out
}

func sortBySeq(list []*PlacementInstance) {
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
}
