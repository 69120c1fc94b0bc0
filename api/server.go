package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/homedecor/game/engine"
	"github.com/wricardo/mcp-training/homedecor/game/service"
	"github.com/wricardo/mcp-training/homedecor/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.DecorService
	hub     *websocket.Hub
	auth    *TokenValidator
	router  *mux.Router
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithAuth protects every /api route except health with bearer tokens
func WithAuth(validator *TokenValidator) ServerOption {
	return func(s *Server) {
		s.auth = validator
	}
}

// NewServer creates a new API server
func NewServer(decorService service.DecorService, hub *websocket.Hub, opts ...ServerOption) *Server {
	s := &Server{
		service: decorService,
		hub:     hub,
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	if s.auth != nil {
		api.Use(s.auth.Middleware)
	}

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	// Must be registered before the {id} pattern
	api.HandleFunc("/sessions/unified", s.handleUnifiedSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Room queries
	api.HandleFunc("/sessions/{id}/rooms/{room:[0-9]+}", s.handleRoomView).Methods("GET")
	room := api.PathPrefix("/sessions/{id}/rooms/{room:[0-9]+}").Subrouter()
	room.HandleFunc("/cells/{x:-?[0-9]+}/{y:-?[0-9]+}", s.handleCellInfo).Methods("GET")
	room.HandleFunc("/instance-at", s.handleInstanceAt).Methods("GET")
	room.HandleFunc("/find-spot", s.handleFindSpot).Methods("GET")
	room.HandleFunc("/can-place", s.handleCanPlace).Methods("POST")

	// Placement
	room.HandleFunc("/place", s.handlePlace).Methods("POST")
	room.HandleFunc("/instances/{iid:[0-9]+}", s.handleRemove).Methods("DELETE")

	// Move protocol
	room.HandleFunc("/move/begin", s.handleBeginMove).Methods("POST")
	room.HandleFunc("/move/finish", s.handleFinishMove).Methods("POST")
	room.HandleFunc("/move/cancel", s.handleCancelMove).Methods("POST")

	// Edit sessions
	room.HandleFunc("/edit/begin", s.handleBeginEdit).Methods("POST")
	room.HandleFunc("/edit/stage", s.handleStage).Methods("POST")
	room.HandleFunc("/edit/commit", s.handleCommit).Methods("POST")
	room.HandleFunc("/edit/rollback", s.handleRollback).Methods("POST")

	// Layout persistence
	room.HandleFunc("/layout", s.handleExportLayout).Methods("GET")
	room.HandleFunc("/layout", s.handleImportLayout).Methods("PUT")

	// Configuration and catalog
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/items", s.handleListItems).Methods("GET")

	// WebSocket
	ws := http.Handler(http.HandlerFunc(s.handleWebSocket))
	if s.auth != nil {
		ws = s.auth.Middleware(ws)
	}
	s.router.Handle("/ws", ws)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error": message,
		"code":  status,
	})
}

// respondServiceError maps service and engine errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrConfigNotFound),
		errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrAlreadyMoving),
		errors.Is(err, engine.ErrNotMoving),
		errors.Is(err, engine.ErrAlreadyEditing),
		errors.Is(err, engine.ErrNotEditing),
		errors.Is(err, engine.ErrSupportsStack):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidPosition),
		errors.Is(err, engine.ErrCatalogMiss):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// roomVars extracts the session id and room index from the path
func roomVars(r *http.Request) (string, int) {
	vars := mux.Vars(r)
	room, _ := strconv.Atoi(vars["room"])
	return vars["id"], room
}

// queryPosition reads x and y query parameters
func queryPosition(r *http.Request) (engine.Position, error) {
	query := r.URL.Query()
	x, err := strconv.Atoi(query.Get("x"))
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid x parameter %q", query.Get("x"))
	}
	y, err := strconv.Atoi(query.Get("y"))
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid y parameter %q", query.Get("y"))
	}
	return engine.Position{X: x, Y: y}, nil
}

// decodePlacement reads a placement body and pins it to the path's room
func decodePlacement(r *http.Request, room int) (service.PlacementRequest, error) {
	var req service.PlacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("Invalid request body")
	}
	if req.ItemID == "" {
		return req, fmt.Errorf("item_id is required")
	}
	req.Room = room
	return req, nil
}

func (s *Server) broadcast(sessionID string, view *engine.RoomView) {
	if s.hub != nil {
		s.hub.BroadcastRoom(sessionID, view)
	}
}

func logStatus(ok bool) string {
	if ok {
		return "OK"
	}
	return "FAIL"
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	session, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// handleUnifiedSessions returns one room of several sessions side by side
func (s *Server) handleUnifiedSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	room := 0
	if roomStr := query.Get("room"); roomStr != "" {
		parsed, err := strconv.Atoi(roomStr)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid room parameter")
			return
		}
		room = parsed
	}

	var sessions []*service.SessionInfo
	if sessionIDs := query.Get("sessionIds"); sessionIDs != "" {
		for _, id := range strings.Split(sessionIDs, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if session, err := s.service.GetSession(r.Context(), id); err == nil {
				sessions = append(sessions, session)
			}
		}
	} else {
		all, err := s.service.ListSessions(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}
		configName := query.Get("configName")
		for _, session := range all {
			if configName == "" || session.ConfigName == configName {
				sessions = append(sessions, session)
			}
		}
	}

	entries := make([]map[string]interface{}, 0, len(sessions))
	for _, session := range sessions {
		view, err := s.service.RoomView(r.Context(), session.ID, room)
		if err != nil {
			continue
		}
		entries = append(entries, map[string]interface{}{
			"session_id":    session.ID,
			"config_name":   session.ConfigName,
			"room":          view,
			"created_at":    session.CreatedAt,
			"last_accessed": session.LastAccessedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"room":     room,
		"count":    len(entries),
		"sessions": entries,
	})
}

// Query Handlers

func (s *Server) handleRoomView(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)

	view, err := s.service.RoomView(r.Context(), sessionID, room)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleCellInfo(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)
	vars := mux.Vars(r)
	x, _ := strconv.Atoi(vars["x"])
	y, _ := strconv.Atoi(vars["y"])

	cell, err := s.service.CellInfo(r.Context(), sessionID, room, engine.Position{X: x, Y: y})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cell)
}

func (s *Server) handleInstanceAt(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)
	pos, err := queryPosition(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	inst, err := s.service.InstanceAt(r.Context(), sessionID, room, pos)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, inst)
}

func (s *Server) handleFindSpot(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)
	itemID := r.URL.Query().Get("item")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "item parameter required")
		return
	}

	spot, err := s.service.FindSpot(r.Context(), sessionID, room, itemID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, spot)
}

func (s *Server) handleCanPlace(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)
	req, err := decodePlacement(r, room)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := s.service.CanPlace(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"can_place": ok,
		"request":   req,
	})
}

// Placement Handlers

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)
	req, err := decodePlacement(r, room)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Place(r.Context(), sessionID, req)
	log.Printf("[PLACE] session=%s room=%d item=%s at=(%d,%d) stacked=%t status=%s",
		sessionID, room, req.ItemID, req.X, req.Y, req.Stacked, logStatus(err == nil))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, result.Room)
	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)
	iid, _ := strconv.ParseInt(mux.Vars(r)["iid"], 10, 64)

	result, err := s.service.Remove(r.Context(), sessionID, room, engine.InstanceID(iid))
	log.Printf("[REMOVE] session=%s room=%d instance=%d status=%s",
		sessionID, room, iid, logStatus(err == nil))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, result.Room)
	respondJSON(w, http.StatusOK, result)
}

// Move Handlers

func (s *Server) handleBeginMove(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)

	var req struct {
		InstanceID engine.InstanceID `json:"instance_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InstanceID == engine.NoInstance {
		respondError(w, http.StatusBadRequest, "instance_id is required")
		return
	}

	result, err := s.service.BeginMove(r.Context(), sessionID, room, req.InstanceID)
	log.Printf("[MOVE] session=%s room=%d begin instance=%d status=%s",
		sessionID, room, req.InstanceID, logStatus(err == nil))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, result.Room)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleFinishMove(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)

	var target engine.Position
	if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.FinishMove(r.Context(), sessionID, room, target)
	if err != nil {
		log.Printf("[MOVE] session=%s room=%d finish at=%s status=FAIL", sessionID, room, target)
		respondServiceError(w, err)
		return
	}
	log.Printf("[MOVE] session=%s room=%d finish at=%s status=%s",
		sessionID, room, target, logStatus(result.Success))

	if result.Success {
		s.broadcast(sessionID, result.Room)
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCancelMove(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)

	var req struct {
		Discard bool `json:"discard,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := s.service.CancelMove(r.Context(), sessionID, room, req.Discard)
	log.Printf("[MOVE] session=%s room=%d cancel discard=%t status=%s",
		sessionID, room, req.Discard, logStatus(err == nil))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, result.Room)
	respondJSON(w, http.StatusOK, result)
}

// Edit Handlers

func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)

	result, err := s.service.BeginEdit(r.Context(), sessionID, room)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, result.Room)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)
	req, err := decodePlacement(r, room)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Stage(r.Context(), sessionID, req)
	log.Printf("[EDIT] session=%s room=%d stage item=%s at=(%d,%d) status=%s",
		sessionID, room, req.ItemID, req.X, req.Y, logStatus(err == nil))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, result.Room)
	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)

	result, err := s.service.Commit(r.Context(), sessionID, room)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	log.Printf("[EDIT] session=%s room=%d commit entries=%d", sessionID, room, len(result.Layout))

	s.broadcast(sessionID, result.Room)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)

	result, err := s.service.Rollback(r.Context(), sessionID, room)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	log.Printf("[EDIT] session=%s room=%d rollback", sessionID, room)

	s.broadcast(sessionID, result.Room)
	respondJSON(w, http.StatusOK, result)
}

// Layout Handlers

func (s *Server) handleExportLayout(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)

	layout, err := s.service.ExportLayout(r.Context(), sessionID, room)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, layout)
}

func (s *Server) handleImportLayout(w http.ResponseWriter, r *http.Request) {
	sessionID, room := roomVars(r)

	var req struct {
		Entries []engine.LayoutEntry `json:"entries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.ImportLayout(r.Context(), sessionID, room, req.Entries)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	log.Printf("[LAYOUT] session=%s room=%d applied=%d skipped=%d",
		sessionID, room, result.Report.Applied, len(result.Report.Skipped))

	if view, err := s.service.RoomView(r.Context(), sessionID, room); err == nil {
		s.broadcast(sessionID, view)
	}
	respondJSON(w, http.StatusOK, result)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	config, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var house engine.HouseConfig
	if err := json.NewDecoder(r.Body).Decode(&house); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if house.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}
	if err := engine.ValidateHouseConfig(&house); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.service.SaveConfig(r.Context(), house.Name, &house); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": house.Name,
	})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.ListItems(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(items),
		"items": items,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
