// Command furnish is an automated player for the Home Decor server. It
// creates (or resumes) a session and fills every room through the REST API:
// surface providers first, then regular furniture, then items that only
// stand on tables or decorations, stacking them when no free spot is left.
//
// With -edit each room is furnished inside an edit session and committed at
// the end; -dry-run rolls the edit session back instead.
package main

import (
	"flag"
	"log"
	"os"
	"strings"
)

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configName := flag.String("config", "", "House configuration name (default: server default)")
	continueSession := flag.String("continue", "", "Furnish an existing session by ID")
	token := flag.String("token", os.Getenv("DECOR_TOKEN"), "Bearer token when the server requires auth")
	itemList := flag.String("items", "", "Comma separated item ids (default: whole catalog)")
	copies := flag.Int("copies", 1, "Maximum copies of each item per room")
	edit := flag.Bool("edit", false, "Furnish inside an edit session and commit")
	dryRun := flag.Bool("dry-run", false, "With -edit, roll back instead of committing")
	flag.Parse()

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL, *token)

	if *continueSession != "" {
		client.sessionID = *continueSession
		if _, err := client.GetSession(); err != nil {
			log.Fatalf("Failed to resume session: %v", err)
		}
		log.Printf("🔄 Resuming session: %s", client.sessionID)
	} else {
		info, err := client.CreateSession(*configName)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("✨ Session created: %s (house %s, %d rooms)", info.ID, info.ConfigName, len(info.Rooms))
	}

	items, err := client.Items()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	strategy := NewFurnishStrategy(items, splitList(*itemList), *copies)

	info, err := client.GetSession()
	if err != nil {
		log.Fatalf("Failed to read session: %v", err)
	}

	total := 0
	for _, room := range info.Rooms {
		report, err := furnish(client, strategy, room.Index, *edit, *dryRun)
		if err != nil {
			log.Printf("❌ Room %d (%s): %v", room.Index, room.Name, err)
			continue
		}
		total += report.Placed
		log.Printf("Room %d (%s): placed %d items, %d stacked", room.Index, room.Name, report.Placed, report.Stacked)
		if len(report.Missed) > 0 {
			log.Printf("   no room for: %s", strings.Join(report.Missed, ", "))
		}
	}

	log.Printf("🎉 Done: %d items placed", total)
	log.Printf("Session: %s", client.sessionID)
	if total == 0 {
		os.Exit(1)
	}
}

// furnish wraps FurnishRoom in an edit session when requested
func furnish(c *Client, s *FurnishStrategy, room int, edit, dryRun bool) (*RoomReport, error) {
	if !edit {
		return FurnishRoom(c, s, room, false)
	}

	if err := c.BeginEdit(room); err != nil {
		return nil, err
	}
	report, err := FurnishRoom(c, s, room, true)
	if err != nil || dryRun {
		if rbErr := c.Rollback(room); rbErr != nil {
			log.Printf("Warning: rollback failed: %v", rbErr)
		}
		if err == nil {
			log.Printf("Room %d rolled back (dry run)", room)
		}
		return report, err
	}

	result, err := c.Commit(room)
	if err != nil {
		return report, err
	}
	log.Printf("Room %d committed: %d layout entries", room, len(result.Layout))
	return report, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
