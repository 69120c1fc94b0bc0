// Package session provides session management for the home decoration game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management and expiry
//   - Pluggable persistence (JSON files, Redis or SQLite)
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns its own placement engine built from a house
// configuration and the shared item catalog.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. The manager keeps
// generating until it finds one that is not in memory or in storage.
//
// Persistence:
//
// A stored session is its house plus the confirmed layout of every room.
// Loading rebuilds the engine and replays each layout; entries that no
// longer fit are skipped. Staged placements and an in-flight move are never
// stored, so a restart behaves like a rollback and a cancelled move.
//
// Usage:
//
//	store, err := session.NewSQLitePersistence("data/decor.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(items, store)
//
//	sess, err := manager.Create("", "cottage", house)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
package session
