package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tallybot/tally/internal/api"
	"github.com/tallybot/tally/internal/config"
	"github.com/tallybot/tally/internal/middleware"
	"github.com/tallybot/tally/internal/service"
	"github.com/tallybot/tally/internal/storage/sqlite"
	"github.com/tallybot/tally/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	svc := service.NewLedgerService(store, cfg.Currency)

	mux := http.NewServeMux()
	api.NewHandler(svc).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.RequestID(middleware.Logging(middleware.Recover(mux)))

	// h2c allows HTTP/2 without TLS for clients that want it.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	slog.Info("Ledger server starting", "address", cfg.Addr, "currency", cfg.Currency)
	if err := http.ListenAndServe(cfg.Addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
