/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the balance-sheet reconciliation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (or defaults) and pick the storage backend
  3. Create the reconciliation service and API handler
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to recon.yaml (optional; defaults apply without one)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config; ":memory:" works)

BACKENDS:
  sqlite   Durable document store (default)
  memory   Process-local storage, lost on restart
  none     Degraded mode - the app serves the default chart only

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -db="./data/recon.db"
  ./server -config=recon.yaml -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration schema
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/balancedesk/recon-engine/api"
	"github.com/balancedesk/recon-engine/config"
	"github.com/balancedesk/recon-engine/recon"
	memstore "github.com/balancedesk/recon-engine/recon/store"
	"github.com/balancedesk/recon-engine/reconcile"
	"github.com/balancedesk/recon-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "path to recon.yaml")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.Backend = config.BackendSQLite
		cfg.Storage.Path = *dbPath
	}

	// Select the persistence backend
	store, closer, err := newStore(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	// Initialize service and handler
	service := reconcile.New(store)
	if cfg.Recon.VarianceThreshold > 0 {
		service = service.WithVarianceThreshold(decimal.NewFromFloat(cfg.Recon.VarianceThreshold))
	}
	handler := api.NewHandler(service)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d (storage: %s)", cfg.Server.Port, cfg.Storage.Backend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// newStore builds the configured persistence adapter. The second return
// is non-nil when the backend holds a resource that must be closed.
func newStore(cfg config.StorageConfig) (recon.Store, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.BackendMemory:
		return memstore.NewMemory(), nil, nil
	case config.BackendNone:
		log.Println("No storage backend configured; running in degraded mode")
		return memstore.NewUnconfigured(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
