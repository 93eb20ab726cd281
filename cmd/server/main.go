package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pslinks/internal/api"
	"github.com/dgallion1/pslinks/internal/config"
	"github.com/dgallion1/pslinks/internal/pathstore"
	"github.com/dgallion1/pslinks/internal/pipeline"
	"github.com/dgallion1/pslinks/internal/stats"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence is optional.
	var ps *pathstore.Client
	if cfg.PersistenceEnabled() {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, ps, stats.NewParseStats(cfg.StatsWindow), log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		log.Error("listen failed", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("starting pslinks",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"persistence", cfg.PersistenceEnabled(),
	)
	if err := serve(httpServer, ln, orch, ps, sigCh, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// serve runs the HTTP server until a signal arrives, then shuts down in
// order: stop accepting requests, drain the job queue, close the pathstore
// client. It returns only once all of that has finished.
func serve(httpServer *http.Server, ln net.Listener, orch *pipeline.Orchestrator, ps *pathstore.Client, sigCh <-chan os.Signal, log *slog.Logger) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		orch.Stop()
		if ps != nil {
			ps.Close()
		}
		log.Info("shutdown complete")
	}()

	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
