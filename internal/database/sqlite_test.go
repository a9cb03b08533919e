package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go-logapi/internal/models"
	"go-logapi/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitSQLite_LogRepositoryRoundTrip(t *testing.T) {
	db, err := InitSQLite(filepath.Join(t.TempDir(), "nested", "logs.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repositories.NewLogRepository(db, zap.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.InsertLog(ctx, models.LogEntry{Timestamp: now.Add(-48 * time.Hour), Level: "warn", Message: "old"}))
	require.NoError(t, repo.InsertLog(ctx, models.LogEntry{Timestamp: now, Level: "error", Message: "new", Fields: `{"k":"v"}`}))

	logs, err := repo.RecentLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "new", logs[0].Message)
	assert.Equal(t, `{"k":"v"}`, logs[0].Fields)
	assert.Equal(t, "{}", logs[1].Fields)
	assert.WithinDuration(t, now, logs[0].Timestamp, time.Microsecond)

	deleted, err := repo.DeleteLogsBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	logs, err = repo.RecentLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "new", logs[0].Message)
}

func TestLogRepository_WithoutDatabase(t *testing.T) {
	repo := repositories.NewLogRepository(nil, nil)
	err := repo.InsertLog(context.Background(), models.LogEntry{Message: "dropped"})
	assert.ErrorIs(t, err, repositories.ErrDiagnosticsUnavailable)
	_, err = repo.RecentLogs(context.Background(), 1)
	assert.ErrorIs(t, err, repositories.ErrDiagnosticsUnavailable)
}
