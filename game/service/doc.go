// Package service provides the use-case layer of the home decoration game.
//
// The service package implements:
//   - Multi-session house management
//   - Placement, move and edit-session operations with result payloads
//   - Conversion of engine events into timestamped GameEvents
//   - Persisting a session after every successful mutation
//
// Core Interfaces:
//
// DecorService is the main service interface providing high-level operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages house configuration loading and validation.
// ItemCatalog supplies item definitions, and EventSink receives events for
// journaling and live broadcast.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the placement engine. Each session owns its own engine; engine errors are
// returned unchanged so callers can match the engine sentinels with errors.Is.
//
// Usage:
//
//	sessionMgr := session.NewManager(items)
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewDecorService(sessionMgr, configMgr, items)
//
//	info, err := svc.CreateSession(ctx, "cottage")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.Place(ctx, info.ID, service.PlacementRequest{Room: 0, ItemID: "sofa", X: 1, Y: 1})
//
// Messages:
//
// Result and event messages go through gotext, so a locale directory with
// gettext catalogs translates them. Without one the English text is used.
package service
