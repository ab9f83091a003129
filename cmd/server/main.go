// Package main runs the taskboard API server: a shared task board with
// role-based access and a websocket feed of task changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, status, version) and exit")
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(context.Background(), *migrateCmd, *configFile); err != nil {
		slog.Error("taskboard server exited with error", "error", err)
		os.Exit(1)
	}
}

// run loads configuration and either executes a migration command or serves
// HTTP until interrupted.
func run(ctx context.Context, migrateCmd, configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"seed_admin", cfg.Auth.SeedAdmin)

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return runMigrations(ctx, db.DB, migrateCmd, log)
	}

	if err := runMigrations(ctx, db.DB, "up", log); err != nil {
		_ = db.Close()
		return err
	}

	app, err := newPostgresApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// loadConfig reads .env (when present) into the environment, then the
// configuration.
func loadConfig(configFile string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
