package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/homedecor/game/engine"
	"github.com/wricardo/mcp-training/homedecor/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithToken sends token as a bearer credential on every API call
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Home Decor Planner",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Home Decor Planner - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Furnish the rooms of a house. Every room is a grid of typed cells and every
item only fits on cells of the types it requires.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage houses
- list_configs / list_items: available houses and furniture
- room_view / describe_cell / instance_at: inspect a room
- can_place / find_spot: check a placement before making it
- place_item / remove_item: change a room directly
- begin_move / finish_move / cancel_move: relocate an item
- begin_edit / stage_item / commit_edit / rollback_edit: batch changes
- export_layout / import_layout: save and restore a room
- decor_instructions: rules and strategy

NOTE: The 'intent' parameter on place_item and stage_item is for explaining your reasoning.`),
	)

	c.registerTools()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func boolProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description}
}

// roomTool builds a tool whose first two arguments are session_id and room
func roomTool(name, description string, extra map[string]interface{}, required ...string) mcp.Tool {
	props := map[string]interface{}{
		"session_id": stringProp("Session ID"),
		"room":       intProp("Room index (0-based)"),
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   append([]string{"session_id", "room"}, required...),
		},
	}
}

func placementProps() map[string]interface{} {
	return map[string]interface{}{
		"item_id": stringProp("Catalog item id, see list_items"),
		"x":       intProp("Column of the top-left cell (0-based)"),
		"y":       intProp("Row of the top-left cell (0-based)"),
		"stacked": boolProp("Place on top of an item that provides a surface"),
		"intent":  stringProp("Brief explanation of why you chose this spot"),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new decoration session with optional house selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": stringProp("House configuration to use (optional)"),
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active decoration sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID to retrieve"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available house configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_items",
		Description: "List the furniture catalog with sizes and required cell types",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListItems)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "decor_instructions",
		Description: "Get the placement rules and suggested workflow",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInstructions)

	// Queries
	c.mcpServer.AddTool(roomTool("room_view",
		"Render a room as a grid with its placed items", nil), c.handleRoomView)

	c.mcpServer.AddTool(roomTool("describe_cell",
		"Describe one cell: type, occupant, stack and whether it is selectable",
		map[string]interface{}{
			"x": intProp("Column (0-based)"),
			"y": intProp("Row (0-based)"),
		}, "x", "y"), c.handleDescribeCell)

	c.mcpServer.AddTool(roomTool("instance_at",
		"Get the topmost item covering a cell",
		map[string]interface{}{
			"x": intProp("Column (0-based)"),
			"y": intProp("Row (0-based)"),
		}, "x", "y"), c.handleInstanceAt)

	c.mcpServer.AddTool(roomTool("can_place",
		"Check whether an item fits at a position without placing it",
		placementProps(), "item_id", "x", "y"), c.handleCanPlace)

	c.mcpServer.AddTool(roomTool("find_spot",
		"Find the first position in a room where an item fits",
		map[string]interface{}{
			"item_id": stringProp("Catalog item id"),
		}, "item_id"), c.handleFindSpot)

	// Placement
	c.mcpServer.AddTool(roomTool("place_item",
		"Place an item with its top-left corner at (x, y)",
		placementProps(), "item_id", "x", "y"), c.handlePlace)

	c.mcpServer.AddTool(roomTool("remove_item",
		"Remove a placed item and restore its cells",
		map[string]interface{}{
			"instance_id": intProp("Instance id returned by place_item"),
		}, "instance_id"), c.handleRemove)

	// Move protocol
	c.mcpServer.AddTool(roomTool("begin_move",
		"Lift an item off the grid so it can be dropped elsewhere",
		map[string]interface{}{
			"instance_id": intProp("Instance to move"),
		}, "instance_id"), c.handleBeginMove)

	c.mcpServer.AddTool(roomTool("finish_move",
		"Drop the moving item with its top-left corner at (x, y). The room may differ from the origin.",
		map[string]interface{}{
			"x": intProp("Target column"),
			"y": intProp("Target row"),
		}, "x", "y"), c.handleFinishMove)

	c.mcpServer.AddTool(roomTool("cancel_move",
		"Put the moving item back where it was, or delete it",
		map[string]interface{}{
			"discard": boolProp("Delete the item instead of returning it"),
		}), c.handleCancelMove)

	// Edit sessions
	c.mcpServer.AddTool(roomTool("begin_edit",
		"Enter edit mode; staged items can be committed or rolled back together", nil), c.handleBeginEdit)

	c.mcpServer.AddTool(roomTool("stage_item",
		"Place an item as part of the open edit session",
		placementProps(), "item_id", "x", "y"), c.handleStage)

	c.mcpServer.AddTool(roomTool("commit_edit",
		"Confirm every staged item and leave edit mode", nil), c.handleCommit)

	c.mcpServer.AddTool(roomTool("rollback_edit",
		"Remove every staged item and leave edit mode", nil), c.handleRollback)

	// Layout
	c.mcpServer.AddTool(roomTool("export_layout",
		"Get the confirmed layout of a room as item/x/y entries", nil), c.handleExportLayout)

	c.mcpServer.AddTool(roomTool("import_layout",
		"Replay layout entries into a room; entries that do not fit are skipped",
		map[string]interface{}{
			"entries": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"item_id": map[string]interface{}{"type": "string"},
						"x":       map[string]interface{}{"type": "integer"},
						"y":       map[string]interface{}{"type": "integer"},
						"stacked": map[string]interface{}{"type": "boolean"},
					},
				},
				"description": "Layout entries in placement order",
			},
		}, "entries"), c.handleImportLayout)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Argument helpers. JSON numbers arrive as float64.

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func argInt(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func argBool(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}

// roomPath validates session_id and room and returns the room's API path
func roomPath(args map[string]interface{}) (string, int, error) {
	sessionID := argString(args, "session_id")
	if sessionID == "" {
		return "", 0, fmt.Errorf("session_id is required")
	}
	room, ok := argInt(args, "room")
	if !ok || room < 0 {
		return "", 0, fmt.Errorf("room must be a non-negative integer")
	}
	return fmt.Sprintf("/api/sessions/%s/rooms/%d", sessionID, room), room, nil
}

func placementBody(args map[string]interface{}) (service.PlacementRequest, error) {
	req := service.PlacementRequest{
		ItemID:  argString(args, "item_id"),
		Stacked: argBool(args, "stacked"),
	}
	if req.ItemID == "" {
		return req, fmt.Errorf("item_id is required")
	}
	x, okX := argInt(args, "x")
	y, okY := argInt(args, "y")
	if !okX || !okY {
		return req, fmt.Errorf("x and y are required integers")
	}
	req.X, req.Y = x, y
	return req, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]string{}
	if configID := argString(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created " + formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		placed := 0
		for _, room := range s.Rooms {
			placed += room.Instances
		}
		fmt.Fprintf(&result, "- %s (House: %s, Items: %d, Created: %s)\n",
			s.ID, s.ConfigName, placed, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(arguments(request), "session_id")

	var session service.SessionInfo
	if err := c.apiCall("GET", "/api/sessions/"+sessionID, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Houses:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&result, "• %s (config_id: %s)\n  %s\n", config.Name, config.ConfigID, config.Description)
		for i, room := range config.Rooms {
			fmt.Fprintf(&result, "  room %d: %s %dx%d\n", i, room.Name, room.Columns, room.Rows)
		}
		result.WriteString("\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleListItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Items []engine.ItemDefinition `json:"items"`
	}
	if err := c.apiCall("GET", "/api/items", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatItems(response.Items)), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Home Decor Planner - Instructions

ROOMS:
Each room is a grid. Every cell has a type:
• F - Floor: furniture stands here
• T - Table: surfaces for lamps and vases
• W - Wall: paintings and clocks hang here
• O - Outdoor: garden furniture
• D - Decoration: small ornaments
• X - Forbidden: nothing can ever go here

PLACEMENT RULES:
• An item covers width x height cells starting at its top-left corner (x, y)
• Every covered cell must be inside the room, free, and of a type the item accepts
• A placement either succeeds completely or changes nothing
• Some items provide a new surface when placed (a dining table turns its cells into Table)
• Use stacked=true to put an item on such a surface; it must fit entirely on that surface
• An item carrying stacked items cannot be removed or moved until they are gone

MOVING:
1. begin_move lifts the item; its old cells stay reserved for it
2. finish_move drops it at a new top-left corner, even in another room
3. If the drop does not fit, the item stays in flight; try again or cancel_move
4. cancel_move returns it to its original spot; discard=true deletes it
Only one item can be in flight at a time.

EDITING:
1. begin_edit opens a room for batch changes
2. stage_item places items that are not yet confirmed
3. commit_edit keeps them; rollback_edit removes every staged item

SUGGESTED WORKFLOW:
• list_items to learn sizes and required cell types
• room_view to see free cells
• find_spot or can_place before place_item
• export_layout to save a room you like`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleRoomView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, _, err := roomPath(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var view engine.RoomView
	if err := c.apiCall("GET", path, nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoomView(&view)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, _, err := roomPath(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, okX := argInt(args, "x")
	y, okY := argInt(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var cell engine.CellSnapshot
	if err := c.apiCall("GET", fmt.Sprintf("%s/cells/%d/%d", path, x, y), nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCell(&cell)), nil
}

func (c *Client) handleInstanceAt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, _, err := roomPath(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, _ := argInt(args, "x")
	y, _ := argInt(args, "y")

	var inst engine.PlacementInstance
	if err := c.apiCall("GET", fmt.Sprintf("%s/instance-at?x=%d&y=%d", path, x, y), nil, &inst); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatInstance(&inst)), nil
}

func (c *Client) handleCanPlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, _, err := roomPath(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := placementBody(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		CanPlace bool `json:"can_place"`
	}
	if err := c.apiCall("POST", path+"/can-place", body, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.CanPlace {
		return mcp.NewToolResultText(fmt.Sprintf("✓ %s fits at (%d,%d)", body.ItemID, body.X, body.Y)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✗ %s does not fit at (%d,%d)", body.ItemID, body.X, body.Y)), nil
}

func (c *Client) handleFindSpot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, room, err := roomPath(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	itemID := argString(args, "item_id")

	var spot service.SpotResult
	if err := c.apiCall("GET", path+"/find-spot?item="+itemID, nil, &spot); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !spot.Found || spot.Position == nil {
		return mcp.NewToolResultText(fmt.Sprintf("No free spot for %s in room %d", itemID, room)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s fits at %s in room %d", itemID, spot.Position, room)), nil
}

func (c *Client) handlePlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, _, err := roomPath(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := placementBody(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.PlacementResult
	if err := c.apiCall("POST", path+"/place", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlacementResult(&result)), nil
}

func (c *Client) handleRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, _, err := roomPath(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	iid, ok := argInt(args, "instance_id")
	if !ok {
		return mcp.NewToolResultError("instance_id is required"), nil
	}

	var result service.PlacementResult
	if err := c.apiCall("DELETE", fmt.Sprintf("%s/instances/%d", path, iid), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlacementResult(&result)), nil
}

func (c *Client) handleBeginMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, _, err := roomPath(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	iid, ok := argInt(args, "instance_id")
	if !ok {
		return mcp.NewToolResultError("instance_id is required"), nil
	}

	var result service.MoveResult
	if err := c.apiCall("POST", path+"/move/begin", map[string]int{"instance_id": iid}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleFinishMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, _, err := roomPath(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, okX := argInt(args, "x")
	y, okY := argInt(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var result service.MoveResult
	if err := c.apiCall("POST", path+"/move/finish", engine.Position{X: x, Y: y}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleCancelMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, _, err := roomPath(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.MoveResult
	body := map[string]bool{"discard": argBool(args, "discard")}
	if err := c.apiCall("POST", path+"/move/cancel", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) editCall(request mcp.CallToolRequest, step string, body interface{}) (*mcp.CallToolResult, error) {
	path, _, err := roomPath(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.EditResult
	if err := c.apiCall("POST", path+"/edit/"+step, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatEditResult(&result)), nil
}

func (c *Client) handleBeginEdit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.editCall(request, "begin", nil)
}

func (c *Client) handleStage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := placementBody(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return c.editCall(request, "stage", body)
}

func (c *Client) handleCommit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.editCall(request, "commit", nil)
}

func (c *Client) handleRollback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.editCall(request, "rollback", nil)
}

func (c *Client) handleExportLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, _, err := roomPath(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var layout service.LayoutResult
	if err := c.apiCall("GET", path+"/layout", nil, &layout); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(layout.Entries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Room %d layout (%d entries):\n%s", layout.Room, len(layout.Entries), data)), nil
}

func (c *Client) handleImportLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, _, err := roomPath(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Round-trip through JSON to turn the generic argument into entries
	raw, err := json.Marshal(args["entries"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var entries []engine.LayoutEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("entries must be a list of {item_id, x, y}: %v", err)), nil
	}

	var result service.LayoutResult
	if err := c.apiCall("PUT", path+"/layout", map[string]interface{}{"entries": entries}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatReplayReport(result.Report)), nil
}
