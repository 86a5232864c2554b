package db

import (
	"database/sql"
	"fmt"

	"osrs-flipper/internal/logger"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
// An empty path opens a private in-memory database.
func Open(path string) (*DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	if path == "" {
		dsn = ":memory:"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == "" {
		// Each connection to :memory: is its own database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	if path == "" {
		logger.Info("DB", "Using in-memory cache")
	} else {
		logger.Success("DB", fmt.Sprintf("Opened %s", path))
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS timeseries (
				item_id        INTEGER NOT NULL,
				timestep       TEXT NOT NULL,
				timestamp      INTEGER NOT NULL,
				avg_high_price INTEGER,
				avg_low_price  INTEGER,
				high_volume    INTEGER NOT NULL DEFAULT 0,
				low_volume     INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (item_id, timestep, timestamp)
			);

			CREATE TABLE IF NOT EXISTS timeseries_meta (
				item_id    INTEGER NOT NULL,
				timestep   TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (item_id, timestep)
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS load_log (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp   TEXT NOT NULL,
				item_count  INTEGER NOT NULL,
				duration_ms INTEGER NOT NULL,
				error       TEXT NOT NULL DEFAULT ''
			);
			CREATE INDEX IF NOT EXISTS idx_load_log_ts ON load_log(timestamp);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (load log)")
	}

	return nil
}
