// Package api provides HTTP REST API handlers for the home decoration game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session (body: {"config_id": "cottage"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - One room of several sessions (?room=&sessionIds=&configName=)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Room Operations (prefix /api/sessions/{id}/rooms/{room}):
//   - GET "" - Full room view
//   - GET /cells/{x}/{y} - Cell snapshot
//   - GET /instance-at?x=&y= - Topmost instance covering a cell
//   - GET /find-spot?item= - First position where an item fits
//   - POST /can-place, /place - Body: {"item_id", "x", "y", "stacked"}
//   - DELETE /instances/{iid} - Remove an instance
//   - POST /move/begin {"instance_id"}, /move/finish {"x","y"}, /move/cancel {"discard"}
//   - POST /edit/begin, /edit/stage, /edit/commit, /edit/rollback
//   - GET, PUT /layout - Export or replay the confirmed layout
//
// Configuration and Catalog:
//   - GET /api/configs, GET /api/configs/{name}, POST /api/configs
//   - GET /api/items
//
// Other:
//   - GET /health
//   - GET /ws?session= - WebSocket room updates
//
// Error Handling:
//
// Errors are returned as JSON with the HTTP status code repeated in the body:
//
//	{
//	  "error": "place room 0: invalid position",
//	  "code": 422
//	}
//
// Unknown sessions, rooms and instances map to 404. Move and edit protocol
// violations map to 409. Positions that do not fit and unknown item ids map
// to 422. A rejected move/finish is not an error: it answers 200 with
// success=false and the item stays in flight.
//
// Authentication:
//
// WithAuth installs an HS256 bearer token check on every /api route and on
// /ws. Tokens are read from the Authorization header or the token query
// parameter.
package api
