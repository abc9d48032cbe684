package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/coaching-dashboard/internal/api"
	"github.com/coaching-dashboard/internal/config"
	"github.com/coaching-dashboard/internal/database"
	"github.com/coaching-dashboard/internal/repository"
	"github.com/coaching-dashboard/internal/service"
	"github.com/coaching-dashboard/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	var envFile, migrationsPath, presetsPath string
	var rollback bool

	flagSet := pflag.NewFlagSet("coaching-dashboard", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "optional file of environment variables")
	flagSet.StringVar(&migrationsPath, "migrations-path", "", "directory of SQL migrations (default $MIGRATIONS_PATH or ./migrations)")
	flagSet.StringVar(&presetsPath, "presets", "", "YAML file of table filters and priorities (default $DASHBOARD_PRESETS)")
	flagSet.BoolVar(&rollback, "rollback", false, "roll back every migration and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	// A missing env file is fine; the environment may already be set
	_ = godotenv.Load(envFile)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting coaching dashboard server...")

	if presetsPath == "" {
		presetsPath = cfg.Dashboard.PresetsPath
	}
	presets, err := config.LoadPresets(presetsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load table presets")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if migrationsPath == "" {
		migrationsPath = os.Getenv("MIGRATIONS_PATH")
	}
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if rollback {
		if err := db.MigrateDown(migrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to roll back database migrations")
		}
		log.Info().Msg("Migrations rolled back")
		return
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize services
	services := service.NewServices(repos, cfg, log)

	// Start lifecycle sweeper
	if cfg.Lifecycle.Enabled {
		services.Lifecycle.StartProcessor(context.Background())
	}

	// Initialize router
	var handler http.Handler = api.NewRouter(services, cfg, presets, db.HealthCheck, log)
	if cfg.Dashboard.CSRFKey != "" {
		handler = api.CSRF([]byte(cfg.Dashboard.CSRFKey), cfg.Dashboard.TrustedOrigins)(handler)
	} else {
		log.Warn().Msg("CSRF_KEY not set; form posts are not CSRF protected")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop lifecycle sweeper
	services.Lifecycle.StopProcessor()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
