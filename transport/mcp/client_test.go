package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/homedecor/game/engine"
	"github.com/wricardo/mcp-training/homedecor/game/service"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "ab12"})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithToken("secret-token"))

	var response map[string]string
	if err := client.apiCall("GET", "/api/sessions/ab12", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "ab12" {
		t.Errorf("Expected id ab12, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall("GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"plain body", "Internal Server Error", "API error: 500"},
		{"json error", `{"error":"place room 0: invalid position","code":500}`, "invalid position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall("GET", "/api", nil, nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)

		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "c0de",
			ConfigName: body["config_id"],
			CreatedAt:  time.Now(),
			Rooms: []service.RoomSummary{
				{Index: 0, Name: "living room", Columns: 8, Rows: 6},
				{Index: 1, Name: "garden", Columns: 6, Rows: 4, EditMode: true},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(),
		callRequest("create_session", map[string]interface{}{"config_id": "cottage"}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"c0de", "House: cottage", "room 1: garden 6x4", "[editing]"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_handlePlace(t *testing.T) {
	var got service.PlacementRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/c0de/rooms/0/place" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(service.PlacementResult{
			Success:    true,
			InstanceID: 7,
			Message:    "Placed sofa at (1,4)",
			Events:     []service.GameEvent{{Type: "placed", Message: "sofa placed"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handlePlace(context.Background(), callRequest("place_item", map[string]interface{}{
		"session_id": "c0de",
		"room":       float64(0),
		"item_id":    "sofa",
		"x":          float64(1),
		"y":          float64(4),
		"intent":     "against the south wall",
	}))
	if err != nil {
		t.Fatalf("handlePlace failed: %v", err)
	}

	if got.ItemID != "sofa" || got.X != 1 || got.Y != 4 || got.Stacked {
		t.Errorf("Unexpected request body: %+v", got)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "✓ Placed sofa") || !strings.Contains(text, "instance #7") {
		t.Errorf("Unexpected result: %s", text)
	}
	if !strings.Contains(text, "[placed] sofa placed") {
		t.Errorf("Expected event line in result, got: %s", text)
	}
}

func TestClient_argumentValidation(t *testing.T) {
	client := NewClient("http://localhost:1")
	ctx := context.Background()

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]interface{}
		wantErr string
	}{
		{"missing session", client.handleRoomView, map[string]interface{}{"room": float64(0)}, "session_id is required"},
		{"negative room", client.handleRoomView, map[string]interface{}{"session_id": "a", "room": float64(-1)}, "room must be"},
		{"missing item", client.handlePlace, map[string]interface{}{"session_id": "a", "room": float64(0)}, "item_id is required"},
		{"missing coords", client.handleCanPlace, map[string]interface{}{"session_id": "a", "room": float64(0), "item_id": "sofa"}, "x and y"},
		{"missing instance", client.handleBeginMove, map[string]interface{}{"session_id": "a", "room": float64(0)}, "instance_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handler(ctx, callRequest("x", tt.args))
			if err != nil {
				t.Fatalf("Handler returned error: %v", err)
			}
			if !result.IsError {
				t.Error("Expected an error result")
			}
			if text := resultText(t, result); !strings.Contains(text, tt.wantErr) {
				t.Errorf("Expected %q, got %s", tt.wantErr, text)
			}
		})
	}
}

func TestClient_handleImportLayout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		var body struct {
			Entries []engine.LayoutEntry `json:"entries"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Entries) != 2 || body.Entries[1].ItemID != "piano" {
			t.Errorf("Unexpected entries: %+v", body.Entries)
		}

		json.NewEncoder(w).Encode(service.LayoutResult{
			Room: 1,
			Report: &engine.ReplayReport{
				Room:    1,
				Applied: 1,
				Skipped: []engine.SkippedEntry{{Index: 1, Entry: body.Entries[1], Reason: "catalog miss"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleImportLayout(context.Background(), callRequest("import_layout", map[string]interface{}{
		"session_id": "c0de",
		"room":       float64(1),
		"entries": []interface{}{
			map[string]interface{}{"item_id": "bench", "x": float64(0), "y": float64(0)},
			map[string]interface{}{"item_id": "piano", "x": float64(2), "y": float64(1)},
		},
	}))
	if err != nil {
		t.Fatalf("handleImportLayout failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "applied 1 entries, skipped 1") || !strings.Contains(text, "piano at (2,1): catalog miss") {
		t.Errorf("Unexpected report: %s", text)
	}
}

func TestFormatRoomView(t *testing.T) {
	view := &engine.RoomView{
		Index:    0,
		Name:     "study",
		Columns:  3,
		Rows:     2,
		EditMode: true,
		Cells: [][]engine.CellSnapshot{
			{{Type: engine.Wall}, {Type: engine.Wall}, {Type: engine.Forbidden}},
			{{Type: engine.Table, Occupied: true, OccupiedBy: 1, StackedIDs: []engine.InstanceID{2}}, {Type: engine.Table, Occupied: true, OccupiedBy: 1}, {Type: engine.Floor}},
		},
		Instances: []engine.PlacementInstance{
			{ID: 1, ItemID: "dining-table", TopLeft: engine.Position{X: 0, Y: 1}, Width: 2, Height: 1},
			{ID: 2, ItemID: "vase", TopLeft: engine.Position{X: 0, Y: 1}, Width: 1, Height: 1, Stacked: true, Staged: true},
		},
	}

	result := formatRoomView(view)

	expected := []string{
		"Room 0: study (3x2) [editing]",
		" 0 WWX",
		" 1 +#F",
		"#1 dining-table at (0,1) size 2x1",
		"#2 vase at (0,1) size 1x1 (stacked) (staged)",
	}
	for _, want := range expected {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in formatted room, got:\n%s", want, result)
		}
	}
}

func TestFormatCell(t *testing.T) {
	cell := &engine.CellSnapshot{
		Position:   engine.Position{X: 3, Y: 2},
		Type:       engine.Table,
		Selectable: true,
		Occupied:   true,
		OccupiedBy: 4,
		StackedIDs: []engine.InstanceID{5, 6},
		CanStack:   true,
	}

	result := formatCell(cell)

	for _, want := range []string{"Cell (3,2)", "Type: table (T)", "Occupied by: #4", "Stacked: #5, #6", "Accepts stacked items"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in formatted cell, got:\n%s", want, result)
		}
	}
}

func TestFormatMoveResult(t *testing.T) {
	failed := formatMoveResult(&service.MoveResult{
		Success:  false,
		Message:  "Cannot place sofa at (0,0), still moving",
		Instance: &engine.PlacementInstance{ID: 3, ItemID: "sofa", Width: 2, Height: 1},
	})
	if !strings.Contains(failed, "✗ Move step failed") || !strings.Contains(failed, "#3 sofa") {
		t.Errorf("Unexpected failed move output: %s", failed)
	}

	ok := formatMoveResult(&service.MoveResult{Success: true, Message: "Moved sofa to (5,4)"})
	if !strings.Contains(ok, "✓ Move step successful: Moved sofa to (5,4)") {
		t.Errorf("Unexpected move output: %s", ok)
	}
}

func TestFormatItems(t *testing.T) {
	result := formatItems([]engine.ItemDefinition{
		{ID: "dining-table", Name: "Dining Table", Width: 2, Height: 2,
			GridRequirements: []engine.GridType{engine.Floor}, ProvidesNewGrid: true, ProvidedGridType: engine.Table},
		{ID: "vase", Width: 1, Height: 1, GridRequirements: []engine.GridType{engine.Table, engine.Decoration}},
	})

	for _, want := range []string{"Catalog (2 items)", "dining-table (Dining Table): 2x2 on floor, provides table", "vase: 1x1 on table/decoration"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q, got:\n%s", want, result)
		}
	}
}

func TestClient_handleInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleInstructions(context.Background(), callRequest("decor_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"PLACEMENT RULES:", "MOVING:", "EDITING:", "X - Forbidden"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in instructions", want)
		}
	}
}
