package service

import (
	"time"

	"github.com/leonelquinteros/gotext"

	"github.com/wricardo/mcp-training/homedecor/game/engine"
)

// Messages pass through gotext so deployments can ship translations. An
// untranslated message is formatted as-is.
var tr = gotext.Get

func eventMessage(ev engine.Event) string {
	switch ev.Kind {
	case engine.EventPlaced:
		return tr("Placed %s at %s", ev.ItemID, ev.Position)
	case engine.EventStacked:
		return tr("Stacked %s at %s", ev.ItemID, ev.Position)
	case engine.EventRemoved:
		return tr("Removed %s from %s", ev.ItemID, ev.Position)
	case engine.EventMoveStarted:
		return tr("Picked up %s from %s", ev.ItemID, ev.Position)
	case engine.EventMoved:
		return tr("Moved %s to %s", ev.ItemID, ev.Position)
	case engine.EventMoveCancelled:
		return tr("Returned %s to %s", ev.ItemID, ev.Position)
	case engine.EventMoveDeleted:
		return tr("Deleted %s while moving", ev.ItemID)
	case engine.EventEditBegun:
		return tr("Room %d entered edit mode", ev.Room)
	case engine.EventStaged:
		return tr("Staged %s at %s", ev.ItemID, ev.Position)
	case engine.EventCommitted:
		return tr("Committed %d staged placements in room %d", ev.Count, ev.Room)
	case engine.EventRolledBack:
		return tr("Rolled back %d staged placements in room %d", ev.Count, ev.Room)
	case engine.EventLayoutLoaded:
		return tr("Loaded %d layout entries into room %d", ev.Count, ev.Room)
	}
	return string(ev.Kind)
}

// toGameEvents converts drained engine events for the API
func toGameEvents(sessionID string, events []engine.Event) []GameEvent {
	if len(events) == 0 {
		return nil
	}
	now := time.Now()
	result := make([]GameEvent, 0, len(events))
	for _, ev := range events {
		result = append(result, GameEvent{
			Type:       string(ev.Kind),
			Message:    eventMessage(ev),
			Timestamp:  now,
			SessionID:  sessionID,
			Room:       ev.Room,
			InstanceID: ev.Instance,
			ItemID:     ev.ItemID,
			Position:   ev.Position,
		})
	}
	return result
}
