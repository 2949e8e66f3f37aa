// Command navwatch runs the telemetry analytics service: HTTP ingest,
// the streaming watchdog, the background index refresher and the
// caretaker query endpoint, backed by a single SQLite file.
//
// Usage:
//
//	navwatch [-listen :8080] [-db navwatch.db] [-config navwatch.json]
//	navwatch migrate [-db navwatch.db] up|down|version|force <n>
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
	"sync"
	"syscall"
	"time"

	"github.com/guidelight-data/navwatch/internal/api"
	"github.com/guidelight-data/navwatch/internal/config"
	"github.com/guidelight-data/navwatch/internal/navindex"
	"github.com/guidelight-data/navwatch/internal/notify"
	"github.com/guidelight-data/navwatch/internal/queryplan"
	"github.com/guidelight-data/navwatch/internal/store/sqlite"
	"github.com/guidelight-data/navwatch/internal/timeutil"
	"github.com/guidelight-data/navwatch/internal/version"
	"github.com/guidelight-data/navwatch/internal/watchdog"
)

var (
	listen      = flag.String("listen", "", "HTTP listen address (overrides config)")
	dbPath      = flag.String("db", "", "SQLite database path (overrides config)")
	configPath  = flag.String("config", "", "JSON config file")
	webhookURL  = flag.String("webhook", "", "alert webhook URL (overrides config)")
	noReindex   = flag.Bool("no-reindex", false, "disable the background index refresh loop")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(os.Args[2:]); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	flag.Parse()
	if *showVersion {
		fmt.Printf("navwatch %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	cfg := config.Empty()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	addr := cfg.GetListenAddr()
	if *listen != "" {
		addr = *listen
	}
	path := cfg.GetDBPath()
	if *dbPath != "" {
		path = *dbPath
	}
	webhook := cfg.GetWebhookURL()
	if *webhookURL != "" {
		webhook = *webhookURL
	}

	db, err := sqlite.Open(path)
	if err != nil {
		log.Fatalf("open database %s: %v", path, err)
	}
	defer db.Close()
	if err := db.MigrateUp(); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	th := cfg.Thresholds()
	clock := timeutil.RealClock{}

	var notifier notify.Notifier = notify.LogNotifier{}
	if webhook != "" {
		notifier = notify.NewWebhookNotifier(webhook, nil)
		log.Printf("alerts will be posted to %s", webhook)
	}
	dispatcher := notify.NewDispatcher(db, db, notifier)

	wd := watchdog.New(th, clock, dispatcher)
	builder := navindex.NewBuilder(db, db, th, clock)
	planner := queryplan.New(db, db, builder, th, clock)
	planner.IndexTTL = cfg.GetIndexTTL()

	var scheduler *navindex.Scheduler
	if *noReindex {
		log.Print("background index refresh disabled")
	} else {
		scheduler = navindex.NewScheduler(db, builder, cfg.GetReindexInterval(), clock)
		scheduler.Start()
	}

	mux := api.NewServer(db, db, db, db, wd, builder, planner, clock).ServeMux()

	// admin debugging routes (SQL console + backup), no auth: deploy
	// behind a tailnet or loopback only
	db.AttachAdminRoutes(mux)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()

		server := &http.Server{
			Addr:    addr,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("navwatch %s listening on %s (db %s)", version.Version, addr, path)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	if scheduler != nil {
		scheduler.Stop()
	}
	log.Printf("Graceful shutdown complete")
}

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	path := fs.String("db", "navwatch.db", "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := sqlite.Open(*path)
	if err != nil {
		return fmt.Errorf("open database %s: %w", *path, err)
	}
	defer db.Close()

	cmd := fs.Arg(0)
	if cmd == "" {
		cmd = "up"
	}
	switch cmd {
	case "up":
		return db.MigrateUp()
	case "down":
		return db.MigrateDown()
	case "version":
		v, dirty, err := db.MigrateVersion()
		if err != nil {
			return err
		}
		fmt.Printf("schema version %d dirty=%v\n", v, dirty)
		return nil
	case "force":
		v, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			return fmt.Errorf("force requires a numeric version: %w", err)
		}
		return db.MigrateForce(v)
	default:
		return fmt.Errorf("unknown migrate command %q (want up, down, version or force)", cmd)
	}
}
