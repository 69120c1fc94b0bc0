// Package engine provides the grid placement engine for the home decoration game.
//
// The engine package implements the spatial model and placement rules:
//   - Per-room grids of typed cells with occupancy and stacking state
//   - All-or-nothing footprint validation and placement
//   - Layered removal that restores every cell exactly
//   - A two-phase move protocol (begin, finish, cancel)
//   - Edit sessions that stage placements for commit or rollback
//
// Core Types:
//
// The Engine interface defines the contract for placement operations,
// implemented by GridEngine. RoomGrid holds the cells of one room, Registry
// tracks placed instances, and HouseConfig describes the rooms loaded from
// JSON files. Item definitions come from a Catalog supplied by the caller.
//
// Usage:
//
//	config, err := engine.LoadHouseConfig("configs/cottage.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	e, err := engine.NewEngine(config, catalog)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	id, err := e.Place(0, "sofa", engine.Position{X: 1, Y: 1})
//	if errors.Is(err, engine.ErrInvalidPosition) {
//		// blocked or wrong cell type
//	}
//
// Persistence:
//
// The confirmed layout of a room is an ordered list of LayoutEntry values.
// ExportLayout produces it and LoadLayout rebuilds a room from it, skipping
// entries that no longer fit.
package engine
