// cmd/dbtools/migrate/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/config"
	"github.com/codr1/Opsboard/internal/db"
)

func main() {
	var (
		configPath     = flag.String("config", "config.yaml", "Path to the server config file")
		migrationsPath = flag.String("migrations", "", "Path to the migrations root (default internal/db/migrations)")
		command        = flag.String("command", "", "Command to run (up, down, version)")
		steps          = flag.Int("steps", 0, "Number of migrations to apply with up/down (0 means all)")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *command == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	root := *migrationsPath
	if root == "" {
		root = filepath.Join("internal", "db", "migrations")
	}
	sourceURL := "file://" + filepath.ToSlash(filepath.Join(root, cfg.Database.Driver))

	dbURL, err := databaseURL(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Unsupported database")
	}

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		log.Fatal().Err(err).Str("source", sourceURL).Msg("Migration init failed")
	}
	defer m.Close()

	switch *command {
	case "up":
		err = run(m.Up, m.Steps, *steps)
	case "down":
		err = run(m.Down, m.Steps, -*steps)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			log.Fatal().Err(verr).Msg("Get version failed")
		}
		fmt.Printf("Driver: %s, Version: %d, Dirty: %v\n", cfg.Database.Driver, version, dirty)
		return
	default:
		log.Fatal().Str("command", *command).Msg("Unknown command")
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Str("command", *command).Msg("Migration failed")
	}
	log.Info().Str("command", *command).Str("driver", cfg.Database.Driver).Msg("Migration complete")
}

// run applies all migrations when n is zero, otherwise n steps.
func run(all func() error, stepFn func(int) error, n int) error {
	if n == 0 {
		return all()
	}
	return stepFn(n)
}

func databaseURL(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case db.DialectSQLite:
		return "sqlite3://" + filepath.ToSlash(cfg.Filename) + "?_fk=1", nil
	case db.DialectMySQL:
		return "mysql://" + db.MySQLDSN(cfg), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
