/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the farm time & attendance server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store and migrate schema
  3. Seed default pay rates/options (and demo roster with -demo)
  4. Create API handler with dependencies
  5. Start the payroll scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080, env PORT)
  -db        SQLite database path (default: timeclock.db, env DATABASE_PATH)
             Use ":memory:" for an in-memory database
  -demo      Seed a demo roster with today's shift assignments
  -scheduler Enable the automatic payroll scheduler (default: true)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/timeclock.db"

  # Run a throwaway demo instance
  ./server -db=":memory:" -demo

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Automatic payroll generation
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/farmops/timeclock-engine/api"
	"github.com/farmops/timeclock-engine/store/sqlite"
)

func main() {
	// .env is optional; flags still win over environment values.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "timeclock.db"), "SQLite database path")
	demo := flag.Bool("demo", false, "seed a demo roster with today's shift assignments")
	schedulerOn := flag.Bool("scheduler", true, "enable the automatic payroll scheduler")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SeedDefaults(ctx); err != nil {
		log.Fatalf("Failed to seed defaults: %v", err)
	}
	if *demo {
		if err := store.SeedDemoRoster(ctx); err != nil {
			log.Fatalf("Failed to seed demo roster: %v", err)
		}
		log.Println("Demo roster seeded")
	}

	handler := api.NewHandler(store)
	router := api.NewRouter(handler)

	scheduler := api.NewPayrollScheduler(store, handler)
	scheduler.Enabled = *schedulerOn
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
