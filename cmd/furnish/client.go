package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/mcp-training/homedecor/game/engine"
	"github.com/wricardo/mcp-training/homedecor/game/service"
)

// Client drives one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	token     string
	client    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type apiError struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (c *Client) do(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) roomPath(room int, suffix string) string {
	return fmt.Sprintf("/api/sessions/%s/rooms/%d%s", c.sessionID, room, suffix)
}

func (c *Client) CreateSession(configName string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(http.MethodPost, "/api/sessions", map[string]string{"config_id": configName}, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

func (c *Client) GetSession() (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(http.MethodGet, "/api/sessions/"+c.sessionID, nil, &info); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &info, nil
}

func (c *Client) Items() ([]engine.ItemDefinition, error) {
	var resp struct {
		Items []engine.ItemDefinition `json:"items"`
	}
	if err := c.do(http.MethodGet, "/api/items", nil, &resp); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return resp.Items, nil
}

func (c *Client) RoomView(room int) (*engine.RoomView, error) {
	var view engine.RoomView
	if err := c.do(http.MethodGet, c.roomPath(room, ""), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) FindSpot(room int, itemID string) (*service.SpotResult, error) {
	var spot service.SpotResult
	path := c.roomPath(room, "/find-spot?item="+url.QueryEscape(itemID))
	if err := c.do(http.MethodGet, path, nil, &spot); err != nil {
		return nil, err
	}
	return &spot, nil
}

func (c *Client) CanPlace(req service.PlacementRequest) (bool, error) {
	var resp struct {
		CanPlace bool `json:"can_place"`
	}
	if err := c.do(http.MethodPost, c.roomPath(req.Room, "/can-place"), req, &resp); err != nil {
		return false, err
	}
	return resp.CanPlace, nil
}

// Place places req directly, or stages it when the room is in an edit session
func (c *Client) Place(req service.PlacementRequest, staged bool) (engine.InstanceID, error) {
	if staged {
		var result service.EditResult
		if err := c.do(http.MethodPost, c.roomPath(req.Room, "/edit/stage"), req, &result); err != nil {
			return engine.NoInstance, err
		}
		return result.InstanceID, nil
	}

	var result service.PlacementResult
	if err := c.do(http.MethodPost, c.roomPath(req.Room, "/place"), req, &result); err != nil {
		return engine.NoInstance, err
	}
	return result.InstanceID, nil
}

func (c *Client) BeginEdit(room int) error {
	return c.do(http.MethodPost, c.roomPath(room, "/edit/begin"), nil, nil)
}

func (c *Client) Commit(room int) (*service.EditResult, error) {
	var result service.EditResult
	if err := c.do(http.MethodPost, c.roomPath(room, "/edit/commit"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Rollback(room int) error {
	return c.do(http.MethodPost, c.roomPath(room, "/edit/rollback"), nil, nil)
}
