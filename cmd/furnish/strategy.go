package main

import (
	"log"
	"sort"

	"github.com/wricardo/mcp-training/homedecor/game/engine"
	"github.com/wricardo/mcp-training/homedecor/game/service"
)

// FurnishStrategy plans the order items are placed in. Surface providers
// go first so items that need a table or decoration surface have one to
// land on, larger footprints before smaller ones.
type FurnishStrategy struct {
	order  []engine.ItemDefinition
	copies int
}

func NewFurnishStrategy(items []engine.ItemDefinition, wanted []string, copies int) *FurnishStrategy {
	if copies < 1 {
		copies = 1
	}

	selected := items
	if len(wanted) > 0 {
		byID := make(map[string]engine.ItemDefinition, len(items))
		for _, def := range items {
			byID[def.ID] = def
		}
		selected = nil
		for _, id := range wanted {
			if def, ok := byID[id]; ok {
				selected = append(selected, def)
			} else {
				log.Printf("⚠️  Unknown item %q skipped", id)
			}
		}
	}

	order := append([]engine.ItemDefinition(nil), selected...)
	sort.SliceStable(order, func(i, j int) bool {
		ri, rj := rank(order[i]), rank(order[j])
		if ri != rj {
			return ri < rj
		}
		ai, aj := order[i].Width*order[i].Height, order[j].Width*order[j].Height
		if ai != aj {
			return ai > aj
		}
		return order[i].ID < order[j].ID
	})

	return &FurnishStrategy{order: order, copies: copies}
}

// rank: 0 providers, 1 items standing on printed cells, 2 surface-only items
func rank(def engine.ItemDefinition) int {
	if def.ProvidesNewGrid {
		return 0
	}
	for _, req := range def.GridRequirements {
		if req != engine.Table && req != engine.Decoration {
			return 1
		}
	}
	return 2
}

func (s *FurnishStrategy) Order() []engine.ItemDefinition {
	return s.order
}

// StackCandidates lists the top-left cells where def could sit on top of
// existing items: every cell of the footprint must accept stacking.
func StackCandidates(view *engine.RoomView, def engine.ItemDefinition) []engine.Position {
	var out []engine.Position
	for y := 0; y+def.Height <= view.Rows; y++ {
		for x := 0; x+def.Width <= view.Columns; x++ {
			if footprintStackable(view, def, x, y) {
				out = append(out, engine.Position{X: x, Y: y})
			}
		}
	}
	return out
}

func footprintStackable(view *engine.RoomView, def engine.ItemDefinition, left, top int) bool {
	for y := top; y < top+def.Height; y++ {
		for x := left; x < left+def.Width; x++ {
			cell := view.Cells[y][x]
			if !cell.CanStack || !def.Accepts(cell.Type) {
				return false
			}
		}
	}
	return true
}

// RoomReport counts what furnishing one room achieved
type RoomReport struct {
	Room    int
	Placed  int
	Stacked int
	Missed  []string
}

// FurnishRoom places every planned item as many times as it fits
func FurnishRoom(c *Client, s *FurnishStrategy, room int, staged bool) (*RoomReport, error) {
	report := &RoomReport{Room: room}

	for _, def := range s.Order() {
		placedAny := false
		for n := 0; n < s.copies; n++ {
			ok, stacked, err := placeOne(c, room, def, staged)
			if err != nil {
				return report, err
			}
			if !ok {
				break
			}
			placedAny = true
			report.Placed++
			if stacked {
				report.Stacked++
			}
		}
		if !placedAny {
			report.Missed = append(report.Missed, def.ID)
		}
	}
	return report, nil
}

func placeOne(c *Client, room int, def engine.ItemDefinition, staged bool) (bool, bool, error) {
	spot, err := c.FindSpot(room, def.ID)
	if err != nil {
		return false, false, err
	}
	if spot.Found && spot.Position != nil {
		req := service.PlacementRequest{Room: room, ItemID: def.ID, X: spot.Position.X, Y: spot.Position.Y}
		if _, err := c.Place(req, staged); err != nil {
			return false, false, err
		}
		return true, false, nil
	}

	view, err := c.RoomView(room)
	if err != nil {
		return false, false, err
	}
	for _, pos := range StackCandidates(view, def) {
		req := service.PlacementRequest{Room: room, ItemID: def.ID, X: pos.X, Y: pos.Y, Stacked: true}
		ok, err := c.CanPlace(req)
		if err != nil {
			return false, false, err
		}
		if !ok {
			continue
		}
		if _, err := c.Place(req, staged); err != nil {
			return false, false, err
		}
		return true, true, nil
	}
	return false, false, nil
}
