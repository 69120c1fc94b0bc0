// Package mcp provides a Model Context Protocol front end for the home
// decoration game.
//
// The Client is a thin proxy: every tool call becomes one REST request to a
// running API server, and the JSON answer is rendered as text for the agent.
//
// MCP Tools:
//   - create_session, get_session, list_sessions
//   - list_configs, list_items, decor_instructions
//   - room_view, describe_cell, instance_at
//   - can_place, find_spot, place_item, remove_item
//   - begin_move, finish_move, cancel_move
//   - begin_edit, stage_item, commit_edit, rollback_edit
//   - export_layout, import_layout
//
// Every room tool takes session_id and room. Coordinates are the top-left
// cell of the item's footprint.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", mcp.WithToken(token))
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
//
// Room views are drawn with the layout legend (F, T, W, O, D, X). Cells
// holding an item are drawn as '#', and cells with stacked items as '+'.
package mcp
