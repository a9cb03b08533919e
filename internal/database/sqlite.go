package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite Driver
	"go.uber.org/zap"
)

const createLogTableSQL = `
CREATE TABLE IF NOT EXISTS tbl_log (
id INTEGER PRIMARY KEY AUTOINCREMENT,
timestamp TEXT NOT NULL,
level TEXT NOT NULL,
message TEXT NOT NULL,
fields TEXT -- additional zap fields as JSON
);
CREATE INDEX IF NOT EXISTS idx_tbl_log_timestamp ON tbl_log (timestamp);
`

// InitSQLite opens the diagnostic log database at path, creating its directory
// and the tbl_log table when missing.
func InitSQLite(path string, logger *zap.Logger) (*sql.DB, error) {
	logger.Info("Initializing SQLite diagnostic store...", zap.String("path", path))

	if dbDir := filepath.Dir(path); dbDir != "." && dbDir != "/" {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite db directory %s: %w", dbDir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database at %s: %w", path, err)
	}

	// A single writer connection avoids SQLITE_BUSY between log inserts.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if _, err := db.Exec(createLogTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sqlite table tbl_log: %w", err)
	}
	logger.Debug("SQLite tbl_log verified/created.")
	return db, nil
}
