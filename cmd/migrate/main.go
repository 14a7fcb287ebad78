package main

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"

	"rozes-gallery/internal/config"
	"rozes-gallery/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Утилита миграций схемы. Подключение берется из тех же переменных
// окружения, что и у сервера.
func main() {
	cfg := config.Load()
	log := logger.New(&cfg.Logger)

	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		log.Error("usage: migrate <up|down|version>")
		os.Exit(1)
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "file://migrations"
	}

	m, err := migrate.New(migrationsPath, postgresURL(&cfg.Database))
	if err != nil {
		log.WithError(err).Error("Failed to create migrate instance")
		os.Exit(1)
	}
	defer func() { _, _ = m.Close() }()

	switch args[0] {
	case "up":
		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("No pending migrations")
			return
		}
		if err != nil {
			log.WithError(err).Error("Migration up failed")
			os.Exit(1)
		}
		log.Info("Migrations applied successfully")

	case "down":
		err = m.Steps(-1)
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("No migrations to rollback")
			return
		}
		if err != nil {
			log.WithError(err).Error("Migration down failed")
			os.Exit(1)
		}
		log.Info("Migration rolled back successfully")

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info("No migrations applied yet")
			return
		}
		if err != nil {
			log.WithError(err).Error("Failed to get version")
			os.Exit(1)
		}
		log.WithField("version", version).WithField("dirty", dirty).Info("Current migration version")

	default:
		log.WithField("command", args[0]).Error("Unknown command")
		os.Exit(1)
	}
}

func postgresURL(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password),
		cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)
}
