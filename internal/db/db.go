// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codr1/Opsboard/internal/config"
	"github.com/codr1/Opsboard/internal/db/queries"
)

//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql
var migrationsFS embed.FS

const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

type DB struct {
	*sql.DB
	Queries *queries.Queries
	Dialect string
}

// New opens a SQLite database at dataSourceName with foreign keys enabled,
// applies the embedded migrations and binds the queries to the connection.
func New(dataSourceName string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", ensureForeignKeysEnabledDSN(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return open(sqlDB, DialectSQLite)
}

// NewFromConfig opens the configured database. SQLite creates the database
// directory if needed; MySQL connects over TCP with parseTime enabled.
func NewFromConfig(cfg *config.Config) (*DB, error) {
	var sqlDB *sql.DB
	var err error

	switch cfg.Database.Driver {
	case DialectSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Filename), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
		sqlDB, err = sql.Open("sqlite3", ensureForeignKeysEnabledDSN(cfg.Database.Filename))

	case DialectMySQL:
		sqlDB, err = sql.Open("mysql", MySQLDSN(cfg.Database))
		if err == nil {
			sqlDB.SetConnMaxLifetime(5 * time.Minute)
			sqlDB.SetMaxOpenConns(10)
			sqlDB.SetMaxIdleConns(5)
		}

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return open(sqlDB, cfg.Database.Driver)
}

func open(sqlDB *sql.DB, dialect string) (*DB, error) {
	if err := runMigrations(sqlDB, dialect); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}
	return &DB{
		DB:      sqlDB,
		Queries: queries.New(sqlDB),
		Dialect: dialect,
	}, nil
}

// MySQLDSN builds the driver DSN. Matched rather than changed rows are
// reported so an update that rewrites identical values still counts.
func MySQLDSN(cfg config.DatabaseConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, port)
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.ClientFoundRows = true
	mc.MultiStatements = true
	mc.Timeout = 10 * time.Second
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// ensureForeignKeysEnabledDSN appends `_fk=1` unless the DSN already sets it.
func ensureForeignKeysEnabledDSN(dataSourceName string) string {
	if strings.Contains(dataSourceName, "_fk=") {
		return dataSourceName
	}
	if strings.Contains(dataSourceName, "?") {
		return dataSourceName + "&_fk=1"
	}
	return dataSourceName + "?_fk=1"
}

// runMigrations applies the embedded migrations of dialect. ErrNoChange is
// not an error.
func runMigrations(db *sql.DB, dialect string) error {
	var driver database.Driver
	var err error
	switch dialect {
	case DialectSQLite:
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case DialectMySQL:
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	default:
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("could not create migrate driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("could not create source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// WithTx creates a new DB instance with the given transaction
func (db *DB) WithTx(tx *sql.Tx) *DB {
	return &DB{
		DB:      db.DB,
		Queries: db.Queries.WithTx(tx),
		Dialect: db.Dialect,
	}
}

// BeginTx starts a transaction
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	return tx, nil
}

// RunInTx runs the given function in a transaction
func (db *DB) RunInTx(ctx context.Context, fn func(*DB) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	txDB := db.WithTx(tx)
	if err := fn(txDB); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing: %w", err)
	}

	return nil
}
