package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"osrs-flipper/internal/api"
	"osrs-flipper/internal/chart"
	"osrs-flipper/internal/config"
	"osrs-flipper/internal/db"
	"osrs-flipper/internal/engine"
	"osrs-flipper/internal/logger"
	"osrs-flipper/internal/wiki"
)

var version = "dev"

//go:embed frontend/*
var frontendFS embed.FS

func main() {
	configPath := flag.String("config", "flipper.yaml", "path to YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.LogLevel, cfg.LogFile)
	logger.Banner(version)

	// Open SQLite database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()
	if n := database.CleanupTimeseries(cfg.HistoryCacheTTL); n > 0 {
		logger.Info("DB", fmt.Sprintf("Dropped %d stale history entries", n))
	}

	client := wiki.NewClient(wiki.Options{
		BaseURL:    cfg.APIBaseURL,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout,
		Retries:    cfg.Retries,
		RatePerSec: cfg.RatePerSec,
	})
	history := chart.NewAdapter(client, database, cfg.HistoryCacheTTL)
	history.Timeout = cfg.Timeout

	store := engine.NewStore()
	srv := api.NewServer(cfg, store, history, database)
	srv.SetVersion(version)

	loader := engine.NewLoader(client, store)
	loader.Recorder = database
	loader.OnLoad = srv.OnLoad

	// Load market data in background
	go func() {
		logger.Section("Market data")
		if _, err := loader.Load(context.Background()); err != nil {
			return
		}
		logger.Success("Loader", "Dashboard ready")
	}()

	// Combine API + embedded assets into a single handler
	apiHandler := srv.Handler()
	staticContent, _ := fs.Sub(frontendFS, "frontend")
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticContent)))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/static/") {
			fileServer.ServeHTTP(w, r)
			return
		}
		apiHandler.ServeHTTP(w, r)
	})

	addr := cfg.Addr()
	logger.Server(addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}
