package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/tse-eval/resampler/internal/core/config"
	"github.com/tse-eval/resampler/internal/core/storage"
	"github.com/tse-eval/resampler/internal/core/storage/postgres"
	"github.com/tse-eval/resampler/internal/job"
	"github.com/tse-eval/resampler/internal/migrations"
	"github.com/tse-eval/resampler/internal/projection"
	"github.com/tse-eval/resampler/internal/server"
)

func main() {
	configPath := flag.String("config", "resampler.yaml", "Path to configuration file")
	skipJob := flag.Bool("skip-job", false, "Do not run the batch job; only serve the query API")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// 0. Initialize Logger
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"input", cfg.Input.Type,
		"preset", cfg.Resample.Preset,
		"window", cfg.Resample.Window,
		"per_edge", cfg.Resample.PerEdge,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler → cancels the job and stops the server.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// 2. Initialize Result Store (PostgreSQL)
	var (
		db    *sql.DB
		store storage.ResultStore
	)
	if cfg.Database.Enabled {
		db, err = postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		// 2.1. Run Database Migrations
		if err := migrations.RunMigrations(db, cfg.Database.AutoMigrate); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
		if err := postgres.ValidateSchema(ctx, db); err != nil {
			slog.Error("Result store schema is not ready", "error", err)
			os.Exit(1)
		}
		store = postgres.NewResultAdapter(db)
	}

	// 3. Initialize Input Source
	source, err := job.SourceFor(cfg.Input)
	if err != nil {
		slog.Error("Failed to initialize input", "error", err)
		os.Exit(1)
	}

	// 4. Run the batch job
	if !*skipJob {
		res, err := job.NewRunner(cfg, source, store).Run(ctx)
		if err != nil {
			slog.Error("Resample job failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Resample job finished", "run_id", res.Run.ID, "rows", res.Run.Rows)
	}

	if !cfg.Server.Enabled {
		slog.Info("Shutdown complete")
		return
	}

	// 5. Initialize Projection (query API)
	projectionSvc := projection.NewService(source, store, cfg.Options, cfg.Resample.PerEdge)
	if err := projectionSvc.Load(ctx); err != nil {
		slog.Error("Failed to load dataset for query API", "error", err)
		os.Exit(1)
	}

	// 6. Initialize Server
	var health server.HealthChecker
	if db != nil {
		health = db
	}
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), health, cfg.Server.Mode)
	projectionSvc.RegisterRoutes(srv.Engine)

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
