package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gookit/color"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/homedecor/game/catalog"
	"github.com/wricardo/mcp-training/homedecor/game/config"
	"github.com/wricardo/mcp-training/homedecor/game/engine"
	"github.com/wricardo/mcp-training/homedecor/game/session"
	"github.com/wricardo/mcp-training/homedecor/transport/mcp"
	"github.com/wricardo/mcp-training/homedecor/validate"
)

func TestMain(m *testing.M) {
	color.Disable()
	os.Exit(m.Run())
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedVersion := "1.0.0"
	if Version != expectedVersion {
		t.Errorf("Expected version %s, got %s", expectedVersion, Version)
	}

	expectedAppName := "Home Decor Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

// settingsFromArgs runs the CLI with a capturing action in place of serve
func settingsFromArgs(t *testing.T, args ...string) (*config.Settings, error) {
	t.Helper()
	var settings *config.Settings
	var loadErr error

	app := newApp()
	app.Action = func(ctx context.Context, cmd *cli.Command) error {
		settings, loadErr = loadSettings(cmd)
		return nil
	}
	if err := app.Run(context.Background(), append([]string{"homedecor"}, args...)); err != nil {
		t.Fatalf("CLI run failed: %v", err)
	}
	return settings, loadErr
}

func writeCottage(t *testing.T, dir string) {
	t.Helper()
	data, err := json.Marshal(engine.DefaultHouseConfig())
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "cottage.json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	settings, err := settingsFromArgs(t, "--settings", filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if settings.Server.Port <= 0 || settings.Server.Port > 65535 {
		t.Errorf("Invalid default port: %d", settings.Server.Port)
	}
	if settings.Server.Host == "" {
		t.Error("Host should have a default value")
	}
	if settings.Paths.ConfigDir == "" {
		t.Error("Config directory should have a default value")
	}
}

func TestLoadSettings_FlagOverrides(t *testing.T) {
	settings, err := settingsFromArgs(t,
		"--settings", filepath.Join(t.TempDir(), "missing.yaml"),
		"--port", "9090",
		"--host", "0.0.0.0",
		"--config-dir", "houses",
		"--catalog", "items.json",
		"--storage", "memory",
	)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if settings.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", settings.Server.Port)
	}
	if settings.Server.Host != "0.0.0.0" {
		t.Errorf("Expected host 0.0.0.0, got %s", settings.Server.Host)
	}
	if settings.Paths.ConfigDir != "houses" || settings.Paths.CatalogFile != "items.json" {
		t.Errorf("Unexpected paths: %+v", settings.Paths)
	}
	if settings.Storage.Driver != config.StorageMemory {
		t.Errorf("Expected memory storage, got %s", settings.Storage.Driver)
	}
}

func TestLoadSettings_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	yaml := "server:\n  host: example.local\n  port: 7000\nstorage:\n  driver: sqlite\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}

	settings, err := settingsFromArgs(t, "--settings", path, "--port", "7001")
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if settings.Server.Host != "example.local" {
		t.Errorf("Expected host from file, got %s", settings.Server.Host)
	}
	if settings.Server.Port != 7001 {
		t.Errorf("Expected flag to override port, got %d", settings.Server.Port)
	}
	if settings.Storage.Driver != config.StorageSQLite {
		t.Errorf("Expected sqlite storage, got %s", settings.Storage.Driver)
	}
}

func TestLoadSettings_InvalidStorage(t *testing.T) {
	_, err := settingsFromArgs(t,
		"--settings", filepath.Join(t.TempDir(), "missing.yaml"),
		"--storage", "floppy",
	)
	if err == nil {
		t.Error("Expected error for unknown storage driver")
	}
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	dir := t.TempDir()
	writeCottage(t, dir)

	settings := config.DefaultSettings()
	settings.Paths.ConfigDir = dir
	settings.Paths.CatalogFile = filepath.Join(dir, "missing-items.json")
	settings.Storage.Driver = config.StorageMemory
	settings.Session.CleanupMinutes = 0
	return settings
}

func TestInitializeServices(t *testing.T) {
	settings := testSettings(t)

	svc, err := initializeServices(settings)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	if svc.decor == nil {
		t.Fatal("Expected decor service to be initialized")
	}
	if svc.hub == nil {
		t.Error("Expected websocket hub to be initialized")
	}
	if svc.validator != nil {
		t.Error("Expected auth to be disabled without a secret")
	}
	if len(svc.closers) != 0 {
		t.Errorf("Expected no closers for memory storage, got %d", len(svc.closers))
	}

	info, err := svc.decor.CreateSession(context.Background(), "cottage")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if len(info.Rooms) != 2 {
		t.Errorf("Expected 2 rooms, got %d", len(info.Rooms))
	}
}

func TestInitializeServices_JournalAndAuth(t *testing.T) {
	settings := testSettings(t)
	settings.Journal.Enabled = true
	settings.Journal.Dir = t.TempDir()
	settings.Auth.Secret = "test-secret"
	settings.Storage.Driver = config.StorageFile
	settings.Storage.SessionsDir = t.TempDir()

	svc, err := initializeServices(settings)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	if svc.validator == nil {
		t.Fatal("Expected token validator when a secret is set")
	}
	if len(svc.closers) != 1 {
		t.Errorf("Expected the journal as the only closer, got %d", len(svc.closers))
	}

	token := internalToken(svc)
	if token == "" {
		t.Fatal("Expected an internal token")
	}
	claims, err := svc.validator.ValidateToken(token)
	if err != nil {
		t.Fatalf("Internal token should validate: %v", err)
	}
	if claims.Player != "mcp" {
		t.Errorf("Expected player mcp, got %s", claims.Player)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	settings := testSettings(t)
	settings.Paths.ConfigDir = "/non/existent/path"

	if _, err := initializeServices(settings); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestNewPersistence(t *testing.T) {
	settings := config.DefaultSettings()

	settings.Storage.Driver = config.StorageMemory
	p, closer, err := newPersistence(settings)
	if err != nil || p != nil || closer != nil {
		t.Errorf("Expected no persistence for memory driver, got %v %v %v", p, closer, err)
	}

	settings.Storage.Driver = config.StorageFile
	settings.Storage.SessionsDir = t.TempDir()
	p, closer, err = newPersistence(settings)
	if err != nil || p == nil {
		t.Fatalf("Expected file persistence, got %v", err)
	}
	if closer != nil {
		t.Error("File persistence should not need closing")
	}

	settings.Storage.Driver = config.StorageSQLite
	settings.Storage.SQLitePath = filepath.Join(t.TempDir(), "decor.db")
	p, closer, err = newPersistence(settings)
	if err != nil || p == nil || closer == nil {
		t.Fatalf("Expected sqlite persistence with closer, got %v", err)
	}
	closer.Close()

	settings.Storage.Driver = "tape"
	if _, _, err := newPersistence(settings); err == nil {
		t.Error("Expected error for unknown driver")
	}
}

func TestPruneOrphanedSessions(t *testing.T) {
	dir := t.TempDir()
	persistence, err := session.NewFilePersistence(dir)
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	manager := session.NewManagerWithPersistence(catalog.Default(), persistence)
	kept, err := manager.Create("kept", "cottage", engine.DefaultHouseConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := manager.Create("orphan", "cottage", engine.DefaultHouseConfig()); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := persistence.Delete("orphan"); err != nil {
		t.Fatalf("Failed to delete session file: %v", err)
	}

	if pruned := pruneOrphanedSessions(manager, persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session left, got %d", manager.Count())
	}
	if _, err := manager.Get(kept.ID); err != nil {
		t.Errorf("Expected kept session to remain: %v", err)
	}
}

func TestMCPHandler(t *testing.T) {
	handler := newMCPHandler(mcp.NewClient("http://127.0.0.1:1"))

	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	req = httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %s", ct)
	}
	if !strings.Contains(w.Body.String(), "place_item") {
		t.Errorf("Expected tool list to include place_item, got %s", w.Body.String())
	}
}

func TestPrintResults(t *testing.T) {
	results := []validate.Result{
		{File: "cottage.json", Valid: true, Notes: []string{"Placeable items: 13/13"}},
		{File: "broken.json", Valid: false, Errors: []string{"Invalid JSON: eof"}},
	}

	var buf bytes.Buffer
	printResults(&buf, results)
	out := buf.String()

	for _, want := range []string{
		"==================== cottage.json",
		"✅ VALID",
		"✓ Placeable items: 13/13",
		"❌ INVALID",
		"❌ Invalid JSON: eof",
		"❌ Some configurations have errors",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	writeCottage(t, dir)
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	app := newApp()
	var exitErr error
	app.ExitErrHandler = func(ctx context.Context, cmd *cli.Command, err error) { exitErr = err }

	if err := app.Run(context.Background(), []string{"homedecor", "--settings", missing, "check", "--config-dir", dir}); err != nil {
		t.Fatalf("Expected valid configs to pass, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name": "broken"}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	app = newApp()
	app.ExitErrHandler = func(ctx context.Context, cmd *cli.Command, err error) { exitErr = err }
	if err := app.Run(context.Background(), []string{"homedecor", "--settings", missing, "check", "--config-dir", dir}); err == nil {
		t.Error("Expected check to fail with a broken config")
	}
	if exitErr == nil {
		t.Error("Expected exit error to reach the handler")
	}
}
