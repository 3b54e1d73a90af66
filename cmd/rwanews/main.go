package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rwanews/internal/app"
	"rwanews/internal/config"
	"rwanews/internal/gemini"
	"rwanews/internal/judge"
	"rwanews/internal/logger"
	"rwanews/internal/metrics"
	"rwanews/internal/ratelimit"
	"rwanews/internal/rss"
	"rwanews/internal/scraper"
	"rwanews/internal/selector"
	"rwanews/internal/telegram"
	"rwanews/internal/tracker"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	sources, err := rss.LoadSources(cfg.FeedsConfigPath)
	if err != nil {
		logger.Error("failed to load feed sources", "path", cfg.FeedsConfigPath, "error", err)
		os.Exit(1)
	}
	logger.Info("feed sources loaded", "count", len(sources))

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open tracker store", "error", err)
		os.Exit(1)
	}

	aiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Error("failed to create Gemini client", "error", err)
		os.Exit(1)
	}
	defer aiClient.Close()

	checklist := judge.LoadChecklist(cfg.ChecklistPath)
	budget := ratelimit.New(cfg.MaxJudgmentCalls)
	articleJudge := judge.New(aiClient, checklist, budget)

	fetcher := rss.NewFetcher(cfg.FetchTimeout, cfg.FetchWorkers, cfg.MaxEntryAge)
	sel := selector.New(fetcher, store, articleJudge, sources, selector.Config{
		ScoreThreshold:     cfg.ScoreThreshold,
		CandidateLimit:     cfg.CandidateLimit,
		RelevanceThreshold: cfg.RelevanceThreshold,
	})

	extractor := scraper.New(cfg.FetchTimeout)
	messenger := telegram.New(cfg.TelegramToken, cfg.TelegramChannelID)

	application := app.New(sel, store, extractor, messenger, cfg)

	if cfg.RunInterval > 0 {
		logger.Info("starting periodic selection loop", "interval", cfg.RunInterval)
		if err := application.RunLoop(ctx, cfg.RunInterval); err != nil && ctx.Err() == nil {
			logger.Error("selection loop stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := application.RunCycle(ctx); err != nil {
		logger.Error("selection cycle failed", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (tracker.Store, error) {
	if cfg.TrackerDSN != "" {
		return tracker.OpenPostgres(cfg.TrackerDSN, cfg.RetentionDays)
	}
	return tracker.OpenFile(cfg.TrackerFilePath, cfg.RetentionDays), nil
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("starting monitoring server", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
