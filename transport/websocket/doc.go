// Package websocket provides WebSocket transport for the home decoration game.
//
// The websocket package implements:
//   - Session-aware watcher connections
//   - Room snapshots pushed after every change
//   - Placement event batches forwarded from the decoration service
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine; the hub goroutine owns fan-out.
//
// Message Protocol:
//
// Outgoing messages are JSON objects with a session_id and an event name:
//   - room_update carries a full engine.RoomView in "room"
//   - placement_events carries a batch of service.GameEvent in "events"
//
// Clients choose their session with the ?session= query parameter. Incoming
// frames are read only to keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	svc := service.NewDecorService(sessions, configs, catalog, service.WithEventSink(hub))
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Broadcasts never block the caller. When the hub falls behind, new messages
// are dropped and logged.
package websocket
