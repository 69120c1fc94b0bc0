// Command homedecor starts the Home Decor server.
//
// It supports three commands:
//  1. "serve" (default) runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "check" validates every house configuration against the item catalog
//
// Settings come from a YAML file; flags and environment variables override
// it. Optional ngrok tunneling gives easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/leonelquinteros/gotext"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/homedecor/api"
	"github.com/wricardo/mcp-training/homedecor/game/catalog"
	"github.com/wricardo/mcp-training/homedecor/game/config"
	"github.com/wricardo/mcp-training/homedecor/game/journal"
	"github.com/wricardo/mcp-training/homedecor/game/service"
	"github.com/wricardo/mcp-training/homedecor/game/session"
	"github.com/wricardo/mcp-training/homedecor/transport/mcp"
	"github.com/wricardo/mcp-training/homedecor/transport/websocket"
	"github.com/wricardo/mcp-training/homedecor/validate"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Home Decor Server"
)

// ngrokOptions controls the optional public tunnel
type ngrokOptions struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

// services bundles everything the commands need after start-up
type services struct {
	settings  *config.Settings
	decor     service.DecorService
	sessions  *session.Manager
	hub       *websocket.Hub
	validator *api.TokenValidator
	closers   []io.Closer
}

func (s *services) Close() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		log.Printf("Warning: Failed to save sessions: %v", err)
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			log.Printf("Warning: Close failed: %v", err)
		}
	}
}

// main loads .env, builds the command tree, and runs it.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the CLI. Flags are declared on the root and inherited by
// every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "homedecor",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Value:   "settings.yaml",
				Usage:   "YAML settings file (optional)",
				Sources: cli.EnvVars("SETTINGS_FILE"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP server port (overrides settings)",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "HTTP server host (overrides settings)",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "Directory containing house configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "Item catalog JSON file",
				Sources: cli.EnvVars("CATALOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "storage",
				Usage:   "Session storage driver: memory, file, redis or sqlite",
				Sources: cli.EnvVars("STORAGE_DRIVER"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  runStdioMCP,
			},
			{
				Name:   "check",
				Usage:  "Validate house configurations against the item catalog",
				Action: runCheck,
			},
		},
	}
}

// loadSettings reads the settings file and applies flag overrides
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	settings, err := config.LoadSettingsOrDefault(cmd.String("settings"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("port") {
		settings.Server.Port = cmd.Int("port")
	}
	if host := cmd.String("host"); host != "" {
		settings.Server.Host = host
	}
	if dir := cmd.String("config-dir"); dir != "" {
		settings.Paths.ConfigDir = dir
	}
	if file := cmd.String("catalog"); file != "" {
		settings.Paths.CatalogFile = file
	}
	if driver := cmd.String("storage"); driver != "" {
		settings.Storage.Driver = driver
	}
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		settings.Auth.Secret = secret
	}
	if settings.Server.Host == "" {
		settings.Server.Host = "localhost"
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func ngrokFromCommand(cmd *cli.Command) ngrokOptions {
	return ngrokOptions{
		Enabled:   cmd.Bool("ngrok"),
		AuthToken: cmd.String("ngrok-auth"),
		Domain:    cmd.String("ngrok-domain"),
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log.Printf("Starting %s v%s (mode: serve)", AppName, Version)

	svc, err := initializeServices(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	runHTTPServer(svc, ngrokFromCommand(cmd))
	return nil
}

func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log.Printf("Starting %s v%s (mode: stdio-mcp)", AppName, Version)

	svc, err := initializeServices(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	return runStdioMCPWithInternalServer(svc)
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	items, err := catalog.LoadOrDefault(settings.Paths.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	results, err := validate.ValidateDir(settings.Paths.ConfigDir, items)
	if err != nil {
		return err
	}
	printResults(os.Stdout, results)

	if !validate.AllValid(results) {
		return cli.Exit("some configurations have errors", 1)
	}
	return nil
}

// printResults writes a concise report for every validated file
func printResults(w io.Writer, results []validate.Result) {
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(w, color.Green.Sprint("✅ VALID"))
		} else {
			fmt.Fprintln(w, color.Red.Sprint("❌ INVALID"))
		}
		for _, msg := range result.Errors {
			fmt.Fprintln(w, "  "+color.Red.Sprint("❌ "+msg))
		}
		for _, msg := range result.Warnings {
			fmt.Fprintln(w, "  "+color.Yellow.Sprint("⚠ "+msg))
		}
		for _, msg := range result.Notes {
			fmt.Fprintln(w, "  ✓ "+msg)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	switch {
	case len(results) == 0:
		fmt.Fprintln(w, color.Yellow.Sprint("No configurations found"))
	case validate.AllValid(results):
		fmt.Fprintln(w, color.Green.Sprint("✅ All configurations are valid!"))
	default:
		fmt.Fprintln(w, color.Red.Sprint("❌ Some configurations have errors"))
	}
}

// newMCPHandler serves MCP JSON-RPC messages over plain HTTP POST
func newMCPHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newAPIServer builds the REST handler, with bearer auth when configured
func newAPIServer(svc *services) *api.Server {
	var opts []api.ServerOption
	if svc.validator != nil {
		opts = append(opts, api.WithAuth(svc.validator))
	}
	return api.NewServer(svc.decor, svc.hub, opts...)
}

// internalToken issues a long-lived token for the in-process MCP proxy
func internalToken(svc *services) string {
	if svc.validator == nil {
		return ""
	}
	token, err := svc.validator.IssueToken("mcp", 365*24*time.Hour)
	if err != nil {
		log.Printf("Warning: Failed to issue MCP token: %v", err)
		return ""
	}
	return token
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(svc *services, tunnel ngrokOptions) {
	apiServer := newAPIServer(svc)

	addr := fmt.Sprintf("%s:%d", svc.settings.Server.Host, svc.settings.Server.Port)

	// Create MCP client for /mcp endpoint
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL, mcp.WithToken(internalToken(svc)))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", newMCPHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if tunnel.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveNgrok(ctx, tunnel, mainRouter)
		}()
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// serveNgrok exposes handler through an ngrok tunnel until ctx is cancelled
func serveNgrok(ctx context.Context, opts ngrokOptions, handler http.Handler) {
	if opts.AuthToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.Domain))
		log.Printf("Using custom ngrok domain: %s", opts.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.AuthToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// newPersistence selects the session store named by settings
func newPersistence(settings *config.Settings) (session.SessionPersistence, io.Closer, error) {
	switch settings.Storage.Driver {
	case config.StorageMemory:
		return nil, nil, nil
	case config.StorageFile:
		p, err := session.NewFilePersistence(settings.Storage.SessionsDir)
		return p, nil, err
	case config.StorageRedis:
		p, err := session.NewRedisPersistence(session.RedisOptions{
			Address:   settings.Redis.Address,
			Password:  settings.Redis.Password,
			DB:        settings.Redis.DB,
			KeyPrefix: settings.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	case config.StorageSQLite:
		p, err := session.NewSQLitePersistence(settings.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", settings.Storage.Driver)
	}
}

// initializeServices wires configuration, catalog, persistence, event sinks
// and the decor service. It also starts the background session routines.
func initializeServices(settings *config.Settings) (*services, error) {
	if settings.Paths.LocaleDir != "" {
		lang := settings.Paths.Language
		if lang == "" {
			lang = "en_US"
		}
		gotext.Configure(settings.Paths.LocaleDir, lang, "default")
	}

	configManager, err := config.NewManager(settings.Paths.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	items, err := catalog.LoadOrDefault(settings.Paths.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load item catalog: %w", err)
	}
	log.Printf("Loaded %d catalog items", items.Len())

	persistence, closer, err := newPersistence(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	svc := &services{settings: settings}
	if closer != nil {
		svc.closers = append(svc.closers, closer)
	}

	if persistence != nil {
		svc.sessions = session.NewManagerWithPersistence(items, persistence)
		if err := svc.sessions.LoadPersistedSessions(); err != nil {
			log.Printf("Warning: Failed to load persisted sessions: %v", err)
		}
	} else {
		svc.sessions = session.NewManager(items)
	}

	svc.hub = websocket.NewHub()
	go svc.hub.Run()

	opts := []service.Option{service.WithEventSink(svc.hub)}
	if settings.Journal.Enabled {
		j := journal.New(settings.Journal.Dir)
		opts = append(opts, service.WithEventSink(j))
		svc.closers = append(svc.closers, j)
		log.Printf("Event journal enabled in %s", settings.Journal.Dir)
	}

	if settings.Auth.Secret != "" {
		svc.validator = api.NewTokenValidator(settings.Auth.Secret, settings.Auth.Issuer)
		log.Println("Bearer token authentication enabled")
	}

	svc.decor = service.NewDecorService(svc.sessions, configManager, items, opts...)

	go sessionCleanupRoutine(svc.sessions,
		time.Duration(settings.Session.CleanupMinutes)*time.Minute,
		time.Duration(settings.Session.TTLMinutes)*time.Minute)

	if persistence != nil && settings.Storage.Driver == config.StorageFile {
		go filesystemSyncRoutine(svc.sessions, persistence)
	}

	return svc, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window.
func sessionCleanupRoutine(manager *session.Manager, every, maxAge time.Duration) {
	if every <= 0 || maxAge <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(maxAge)
		if removed > 0 {
			log.Printf("Cleaned up %d expired sessions", removed)
		}
	}
}

// filesystemSyncRoutine periodically syncs in-memory sessions with filesystem state.
// It removes sessions from memory when their corresponding files are deleted.
func filesystemSyncRoutine(manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		pruneOrphanedSessions(manager, persistence)
	}
}

func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if !persistence.Exists(sess.ID) {
			if err := manager.DeleteFromMemory(sess.ID); err == nil {
				pruned++
				log.Printf("Pruned session %s from memory (file deleted)", sess.ID)
			}
		}
	}
	if pruned > 0 {
		log.Printf("Filesystem sync: pruned %d orphaned sessions from memory", pruned)
	}
	return pruned
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at the configured address; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(svc *services) error {
	externalURL := fmt.Sprintf("http://%s:%d", svc.settings.Server.Host, svc.settings.Server.Port)
	log.Printf("Checking for external API server at %s...", externalURL)

	baseURL := externalURL
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		httpServer := &http.Server{Handler: newAPIServer(svc)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL, mcp.WithToken(internalToken(svc)))
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
