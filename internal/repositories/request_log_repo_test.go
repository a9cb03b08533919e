package repositories

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-logapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sampleEntry(method, url string, status int) models.RequestLogEntry {
	return models.RequestLogEntry{
		Request: models.RequestRecord{
			Method:  method,
			URL:     url,
			Headers: map[string][]string{"Accept": {"application/json"}},
			Query:   map[string]string{},
			Params:  map[string]string{},
		},
		Response: models.ResponseRecord{
			StatusCode:    status,
			StatusMessage: "OK",
			Body:          `{"ok":true}`,
		},
		TotalTimeMs: 3,
	}
}

func TestAppendAndGetLogs_PreservesOrder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	now := time.Date(2025, 7, 4, 23, 59, 0, 0, time.UTC)
	repo := newFileRequestLogRepository(dir, nil, fixedClock(now))

	require.NoError(t, repo.Append(sampleEntry("GET", "/api/users", 200)))
	require.NoError(t, repo.Append(sampleEntry("POST", "/api/users", 201)))
	require.NoError(t, repo.Append(sampleEntry("DELETE", "/api/users/1", 404)))

	_, err := os.Stat(filepath.Join(dir, "app-2025-07-04.log"))
	require.NoError(t, err, "partition is named after the UTC date")

	records, err := repo.GetLogs("2025-07-04")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "GET", records[0].Request.Method)
	assert.Equal(t, "POST", records[1].Request.Method)
	last := records[2]
	require.NotNil(t, last.RequestLogEntry)
	assert.Equal(t, "/api/users/1", last.Request.URL)
	assert.Equal(t, 404, last.Response.StatusCode)

	// Empty date means today.
	today, err := repo.GetLogs("")
	require.NoError(t, err)
	assert.Len(t, today, 3)
}

func TestAppend_WritesDelimitedPrettyJSON(t *testing.T) {
	dir := t.TempDir()
	repo := newFileRequestLogRepository(dir, nil, fixedClock(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, repo.Append(sampleEntry("GET", "/health", 200)))

	raw, err := os.ReadFile(filepath.Join(dir, "app-2025-01-02.log"))
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "{\n  \"request\": {")
	assert.True(t, strings.HasSuffix(content, "}\n---\n"), "record ends with the delimiter line")
}

func TestGetLogs_MissingPartitionIsEmpty(t *testing.T) {
	repo := newFileRequestLogRepository(filepath.Join(t.TempDir(), "absent"), nil, time.Now)

	records, err := repo.GetLogs("1999-12-31")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestGetLogs_RejectsMalformedDate(t *testing.T) {
	repo := newFileRequestLogRepository(t.TempDir(), nil, time.Now)

	for _, date := range []string{"2025-13-01", "../etc/passwd", "20250101"} {
		_, err := repo.GetLogs(date)
		assert.ErrorIs(t, err, ErrInvalidLogDate, date)
	}
}

func TestGetLogs_CorruptRecordFallsBackToRaw(t *testing.T) {
	dir := t.TempDir()
	repo := newFileRequestLogRepository(dir, nil, fixedClock(time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, repo.Append(sampleEntry("GET", "/a", 200)))

	f, err := os.OpenFile(filepath.Join(dir, "app-2025-03-03.log"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("{ this is not json\n---\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, repo.Append(sampleEntry("GET", "/b", 200)))

	records, err := repo.GetLogs("2025-03-03")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "/a", records[0].Request.URL)
	assert.Nil(t, records[1].RequestLogEntry)
	assert.Equal(t, "{ this is not json", records[1].Raw)
	assert.Equal(t, "/b", records[2].Request.URL)
}

func TestGetLogs_NonEntryJSONFallsBackToRaw(t *testing.T) {
	dir := t.TempDir()
	repo := newFileRequestLogRepository(dir, nil, fixedClock(time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, repo.Append(sampleEntry("GET", "/a", 200)))

	f, err := os.OpenFile(filepath.Join(dir, "app-2025-03-03.log"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("null\n---\n{\"unexpected\": 1}\n---\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := repo.GetLogs("2025-03-03")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "/a", records[0].Request.URL)
	assert.Nil(t, records[1].RequestLogEntry)
	assert.Equal(t, "null", records[1].Raw)
	assert.Nil(t, records[2].RequestLogEntry)
	assert.Equal(t, `{"unexpected": 1}`, records[2].Raw)
}

func writePartition(t *testing.T, dir, name string, modified time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("{}\n---\n"), 0644))
	require.NoError(t, os.Chtimes(path, modified, modified))
}

func TestClearOldLogs(t *testing.T) {
	now := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) string {
		dir := t.TempDir()
		writePartition(t, dir, "app-2025-06-01.log", now.AddDate(0, 0, -19))
		writePartition(t, dir, "app-2025-06-15.log", now.AddDate(0, 0, -5))
		writePartition(t, dir, "app-2025-06-20.log", now.Add(-time.Minute))
		writePartition(t, dir, "notes.txt", now.AddDate(-1, 0, 0))
		writePartition(t, dir, "app-latest.log", now.AddDate(-1, 0, 0))
		return dir
	}
	remaining := func(t *testing.T, dir string) []string {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return names
	}

	t.Run("default window keeps recent partitions", func(t *testing.T) {
		dir := setup(t)
		repo := newFileRequestLogRepository(dir, nil, fixedClock(now))
		removed, err := repo.ClearOldLogs(7)
		require.NoError(t, err)
		assert.Equal(t, []string{"app-2025-06-01.log"}, removed)
		assert.ElementsMatch(t, []string{"app-2025-06-15.log", "app-2025-06-20.log", "notes.txt", "app-latest.log"}, remaining(t, dir))
	})

	t.Run("zero days removes every partition", func(t *testing.T) {
		dir := setup(t)
		repo := newFileRequestLogRepository(dir, nil, fixedClock(now))
		removed, err := repo.ClearOldLogs(0)
		require.NoError(t, err)
		assert.Len(t, removed, 3)
		assert.ElementsMatch(t, []string{"notes.txt", "app-latest.log"}, remaining(t, dir))
	})

	t.Run("large window removes nothing", func(t *testing.T) {
		dir := setup(t)
		repo := newFileRequestLogRepository(dir, nil, fixedClock(now))
		removed, err := repo.ClearOldLogs(3650)
		require.NoError(t, err)
		assert.Empty(t, removed)
		assert.Len(t, remaining(t, dir), 5)
	})

	t.Run("partition exactly at cutoff is kept", func(t *testing.T) {
		dir := t.TempDir()
		writePartition(t, dir, "app-2025-06-13.log", now.AddDate(0, 0, -7))
		repo := newFileRequestLogRepository(dir, nil, fixedClock(now))
		removed, err := repo.ClearOldLogs(7)
		require.NoError(t, err)
		assert.Empty(t, removed)
	})

	t.Run("negative window is rejected", func(t *testing.T) {
		repo := newFileRequestLogRepository(t.TempDir(), nil, fixedClock(now))
		_, err := repo.ClearOldLogs(-1)
		assert.ErrorIs(t, err, ErrInvalidRetention)
	})

	t.Run("missing directory is a no-op", func(t *testing.T) {
		repo := newFileRequestLogRepository(filepath.Join(t.TempDir(), "none"), nil, fixedClock(now))
		removed, err := repo.ClearOldLogs(0)
		require.NoError(t, err)
		assert.Empty(t, removed)
	})
}
