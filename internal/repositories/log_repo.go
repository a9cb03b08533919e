package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-logapi/internal/models"

	"go.uber.org/zap"
)

// sqliteTimeLayout is fixed-width UTC so stored timestamps sort lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrDiagnosticsUnavailable is returned when the SQLite diagnostic sink is not configured.
var ErrDiagnosticsUnavailable = errors.New("diagnostic log store is not available")

// LogRepository defines the interface for diagnostic log data operations
type LogRepository interface {
	InsertLog(ctx context.Context, entry models.LogEntry) error
	RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error)
	DeleteLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// SetSqliteDB wires the database once it is opened; until then inserts are dropped.
	SetSqliteDB(db *sql.DB)
}

// logRepositoryImpl implements LogRepository on top of SQLite tbl_log
type logRepositoryImpl struct {
	sqliteDB *sql.DB
	logger   *zap.Logger
	mu       sync.RWMutex // protects sqliteDB and logger
}

// NewLogRepository creates a new LogRepository. sqliteDB may be nil.
func NewLogRepository(sqliteDB *sql.DB, logger *zap.Logger) LogRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logRepositoryImpl{
		sqliteDB: sqliteDB,
		logger:   logger,
	}
}

func (r *logRepositoryImpl) db() (*sql.DB, *zap.Logger) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sqliteDB, r.logger
}

func (r *logRepositoryImpl) InsertLog(ctx context.Context, entry models.LogEntry) error {
	db, _ := r.db()
	if db == nil {
		return ErrDiagnosticsUnavailable
	}
	fieldsJSON := entry.Fields
	if fieldsJSON == "" {
		fieldsJSON = "{}"
	}
	query := `INSERT INTO tbl_log (timestamp, level, message, fields) VALUES (?, ?, ?, ?)`
	// No logging here: this method runs inside the zap core that feeds it.
	if _, err := db.ExecContext(ctx, query, entry.Timestamp.UTC().Format(sqliteTimeLayout), entry.Level, entry.Message, fieldsJSON); err != nil {
		return fmt.Errorf("sqlite insert failed: %w", err)
	}
	return nil
}

// RecentLogs returns up to limit rows, newest first.
func (r *logRepositoryImpl) RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	db, logger := r.db()
	if db == nil {
		return nil, ErrDiagnosticsUnavailable
	}
	query := `SELECT id, timestamp, level, message, fields FROM tbl_log ORDER BY id DESC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite query failed: %w", err)
	}
	defer rows.Close()

	logs := []models.LogEntry{}
	for rows.Next() {
		var entry models.LogEntry
		var tsStr string
		var fields sql.NullString
		if err := rows.Scan(&entry.ID, &tsStr, &entry.Level, &entry.Message, &fields); err != nil {
			logger.Warn("Failed to scan log row from SQLite", zap.Error(err))
			continue
		}
		entry.Timestamp, err = time.Parse(sqliteTimeLayout, tsStr)
		if err != nil {
			logger.Warn("Failed to parse timestamp from SQLite", zap.String("raw_ts", tsStr), zap.Error(err))
		}
		entry.Fields = "{}"
		if fields.Valid {
			entry.Fields = fields.String
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite row iteration error: %w", err)
	}
	return logs, nil
}

// DeleteLogsBefore removes rows older than cutoff and returns how many were deleted.
func (r *logRepositoryImpl) DeleteLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db, logger := r.db()
	if db == nil {
		return 0, ErrDiagnosticsUnavailable
	}
	result, err := db.ExecContext(ctx, `DELETE FROM tbl_log WHERE timestamp < ?`, cutoff.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return 0, fmt.Errorf("sqlite delete failed: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	logger.Debug("Deleted diagnostic logs from SQLite", zap.Int64("rows_affected", rowsAffected), zap.Time("cutoff", cutoff))
	return rowsAffected, nil
}

func (r *logRepositoryImpl) SetSqliteDB(db *sql.DB) {
	r.mu.Lock()
	r.sqliteDB = db
	r.mu.Unlock()
}

// SetLogger replaces the logger used for the repository's own messages.
func (r *logRepositoryImpl) SetLogger(logger *zap.Logger) {
	if logger == nil {
		return
	}
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}
