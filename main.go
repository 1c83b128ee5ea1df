package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teduh_scraper/config"
	"teduh_scraper/httputil"
	"teduh_scraper/logging"
	"teduh_scraper/models"
	"teduh_scraper/scheduler"
	"teduh_scraper/services"
	"teduh_scraper/storage"
	"teduh_scraper/workers"
)

var (
	scrapeNow  = flag.Bool("scrape", false, "Run extraction once and exit")
	publishNow = flag.Bool("publish", false, "Run publish once and exit")
	developer  = flag.String("developer", "", "Restrict -scrape to one developer keyword")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("daemon.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting teduh_scraper...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Portal: %s (state=%s, list=%s)", cfg.BaseURL, cfg.State, cfg.PemajuList)

	ctx := context.Background()
	clients := httputil.NewClients()

	// Operational ledger
	sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteStore.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	// Published tables are optional: extraction still writes snapshot
	// files without them, publish just cannot run.
	var pgStore *storage.PostgresStore
	if cfg.DBURL != "" {
		pgStore, err = storage.NewPostgresStore(ctx, cfg.DBURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer pgStore.Close()
		if err := pgStore.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate Postgres: %v", err)
		}
		log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.DBURL))
	} else {
		log.Println("DB_URL not set, publish disabled")
	}

	extraction := services.NewExtractionService(cfg, sqliteStore)

	var publish *services.PublishService
	if pgStore != nil {
		var sink services.ReportSink
		if cfg.WebhookURL != "" {
			sink = storage.NewWebhookSink(clients.API, cfg.WebhookURL)
		}
		publish = services.NewPublishService(
			services.NewCollector(cfg.RootDir),
			services.NewPublisher(pgStore),
			sink,
		)
	}

	// One-shot modes
	if *scrapeNow {
		if err := clients.CheckPortal(ctx, cfg.BaseURL); err != nil {
			log.Fatalf("Preflight failed: %v", err)
		}
		if *developer != "" {
			if err := extraction.RunDeveloper(*developer); err != nil {
				log.Fatalf("Extraction failed: %v", err)
			}
		} else {
			if err := extraction.RunAll(); err != nil {
				log.Fatalf("Extraction failed: %v", err)
			}
		}
		log.Println("Extraction complete!")
		return
	}

	if *publishNow {
		if publish == nil {
			log.Fatal("Publish requires DB_URL")
		}
		if _, err := publish.Run(ctx); err != nil {
			log.Fatalf("Publish failed: %v", err)
		}
		log.Println("Publish complete!")
		return
	}

	// Daemon mode
	if err := clients.CheckPortal(ctx, cfg.BaseURL); err != nil {
		log.Printf("WARNING: portal preflight failed: %v", err)
	}

	sched := scheduler.New(cfg, extraction, publish, sqliteStore)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Archive.Enabled() {
		uploader, err := storage.NewS3Uploader(ctx, cfg.Archive)
		if err != nil {
			log.Fatalf("Failed to set up archive storage: %v", err)
		}
		archiveWorker := workers.NewArchiveWorker(cfg.RootDir, sqliteStore, uploader)
		archiveWorker.SetLogger(func(level models.LogLevel, dev, msg string) {
			sqliteStore.Log(nil, level, msg, dev)
		})
		go archiveWorker.Run(ctx, time.Hour)
		sched.SetArchiveWorker(archiveWorker)
		log.Printf("Archive worker started (bucket=%s)", cfg.Archive.Bucket)
	}

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	// Simple mask - find :// and mask until @
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	// Find : after user
	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
