package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/homedecor/game/engine"
	"github.com/wricardo/mcp-training/homedecor/game/service"
)

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Session: %s\nHouse: %s\nCreated: %s\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"))

	for _, room := range session.Rooms {
		mode := ""
		if room.EditMode {
			mode = " [editing]"
		}
		fmt.Fprintf(&result, "  room %d: %s %dx%d, %d items%s\n",
			room.Index, room.Name, room.Columns, room.Rows, room.Instances, mode)
	}
	return result.String()
}

// formatRoomView draws the room with legend characters. Cells holding a
// primary occupant are drawn as '#', stacked items as '+'.
func formatRoomView(view *engine.RoomView) string {
	if view == nil {
		return "No room available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Room %d: %s (%dx%d)", view.Index, view.Name, view.Columns, view.Rows)
	if view.EditMode {
		result.WriteString(" [editing]")
	}
	result.WriteString("\n\n   ")
	for x := 0; x < view.Columns; x++ {
		fmt.Fprintf(&result, "%d", x%10)
	}
	result.WriteString("\n")

	for y, row := range view.Cells {
		fmt.Fprintf(&result, "%2d ", y)
		for _, cell := range row {
			result.WriteString(cellChar(cell))
		}
		result.WriteString("\n")
	}

	if len(view.Instances) == 0 {
		result.WriteString("\nNo items placed.\n")
		return result.String()
	}

	result.WriteString("\nItems:\n")
	for _, inst := range view.Instances {
		result.WriteString("  " + instanceLine(&inst) + "\n")
	}
	return result.String()
}

func cellChar(cell engine.CellSnapshot) string {
	switch {
	case len(cell.StackedIDs) > 0:
		return "+"
	case cell.Occupied:
		return "#"
	default:
		return string(engine.LegendChar(cell.Type))
	}
}

func instanceLine(inst *engine.PlacementInstance) string {
	line := fmt.Sprintf("#%d %s at %s size %dx%d", inst.ID, inst.ItemID, inst.TopLeft, inst.Width, inst.Height)
	if inst.Stacked {
		line += " (stacked)"
	}
	if inst.Staged {
		line += " (staged)"
	}
	return line
}

func formatCell(cell *engine.CellSnapshot) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Cell %s\nType: %s (%c)\nSelectable: %t\n",
		cell.Position, cell.Type, engine.LegendChar(cell.Type), cell.Selectable)

	if cell.Occupied {
		fmt.Fprintf(&result, "Occupied by: #%d\n", cell.OccupiedBy)
	} else {
		result.WriteString("Occupied: no\n")
	}
	if len(cell.StackedIDs) > 0 {
		ids := make([]string, len(cell.StackedIDs))
		for i, id := range cell.StackedIDs {
			ids[i] = fmt.Sprintf("#%d", id)
		}
		fmt.Fprintf(&result, "Stacked: %s\n", strings.Join(ids, ", "))
	}
	if cell.CanStack {
		result.WriteString("Accepts stacked items\n")
	}
	return result.String()
}

func formatInstance(inst *engine.PlacementInstance) string {
	result := instanceLine(inst)
	if len(inst.OccupiedCells) > 0 {
		cells := make([]string, len(inst.OccupiedCells))
		for i, pos := range inst.OccupiedCells {
			cells[i] = pos.String()
		}
		result += "\nCells: " + strings.Join(cells, " ")
	}
	return result
}

func formatItems(items []engine.ItemDefinition) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Catalog (%d items):\n\n", len(items))
	for _, item := range items {
		reqs := make([]string, len(item.GridRequirements))
		for i, t := range item.GridRequirements {
			reqs[i] = string(t)
		}
		fmt.Fprintf(&result, "• %s", item.ID)
		if item.Name != "" {
			fmt.Fprintf(&result, " (%s)", item.Name)
		}
		fmt.Fprintf(&result, ": %dx%d on %s", item.Width, item.Height, strings.Join(reqs, "/"))
		if item.ProvidesNewGrid {
			fmt.Fprintf(&result, ", provides %s", item.ProvidedGridType)
		}
		result.WriteString("\n")
	}
	return result.String()
}

func formatEvents(result *strings.Builder, events []service.GameEvent) {
	for _, ev := range events {
		fmt.Fprintf(result, "  [%s] %s\n", ev.Type, ev.Message)
	}
}

func formatPlacementResult(result *service.PlacementResult) string {
	var out strings.Builder
	if result.Success {
		out.WriteString("✓ ")
	} else {
		out.WriteString("✗ ")
	}
	out.WriteString(result.Message)
	if result.InstanceID != engine.NoInstance {
		fmt.Fprintf(&out, " (instance #%d)", result.InstanceID)
	}
	out.WriteString("\n")
	formatEvents(&out, result.Events)
	if result.Room != nil {
		out.WriteString("\n" + formatRoomView(result.Room))
	}
	return out.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var out strings.Builder
	if result.Success {
		out.WriteString("✓ Move step successful: ")
	} else {
		out.WriteString("✗ Move step failed: ")
	}
	out.WriteString(result.Message + "\n")
	if result.Instance != nil {
		out.WriteString(instanceLine(result.Instance) + "\n")
	}
	formatEvents(&out, result.Events)
	if result.Room != nil {
		out.WriteString("\n" + formatRoomView(result.Room))
	}
	return out.String()
}

func formatEditResult(result *service.EditResult) string {
	var out strings.Builder
	out.WriteString(result.Message + "\n")
	if result.EditSessionID != "" {
		fmt.Fprintf(&out, "Edit session: %s\n", result.EditSessionID)
	}
	if result.InstanceID != engine.NoInstance {
		fmt.Fprintf(&out, "Staged instance: #%d\n", result.InstanceID)
	}
	if len(result.Layout) > 0 {
		fmt.Fprintf(&out, "Confirmed layout: %d entries\n", len(result.Layout))
	}
	formatEvents(&out, result.Events)
	if result.Room != nil {
		out.WriteString("\n" + formatRoomView(result.Room))
	}
	return out.String()
}

func formatReplayReport(report *engine.ReplayReport) string {
	if report == nil {
		return "No replay report"
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Room %d: applied %d entries, skipped %d\n", report.Room, report.Applied, len(report.Skipped))
	for _, skipped := range report.Skipped {
		fmt.Fprintf(&out, "  skipped #%d %s at (%d,%d): %s\n",
			skipped.Index, skipped.Entry.ItemID, skipped.Entry.X, skipped.Entry.Y, skipped.Reason)
	}
	return out.String()
}
