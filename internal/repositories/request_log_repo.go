package repositories

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"go-logapi/internal/models"

	"go.uber.org/zap"
)

const (
	partitionDateLayout = "2006-01-02"
	recordDelimiter     = "---\n"
)

var (
	// ErrInvalidLogDate is returned when a partition date is not YYYY-MM-DD.
	ErrInvalidLogDate = errors.New("date must be in YYYY-MM-DD format")
	// ErrInvalidRetention is returned for a negative retention window.
	ErrInvalidRetention = errors.New("daysToKeep must not be negative")

	errNotRequestLogEntry = errors.New("record has no request method")

	partitionNamePattern = regexp.MustCompile(`^app-\d{4}-\d{2}-\d{2}\.log$`)
)

// RequestLogRepository persists recorded request/response cycles into one
// append-only partition per UTC calendar date.
type RequestLogRepository interface {
	Append(entry models.RequestLogEntry) error
	GetLogs(date string) ([]models.RequestLogRecord, error)
	ClearOldLogs(daysToKeep int) ([]string, error)
	Dir() string
}

// fileRequestLogRepository stores partitions as app-YYYY-MM-DD.log files
type fileRequestLogRepository struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
	mu     sync.Mutex // serializes appends and deletions
}

// NewFileRequestLogRepository creates a partition store rooted at dir. The
// directory is created on first append if it does not exist.
func NewFileRequestLogRepository(dir string, logger *zap.Logger) RequestLogRepository {
	return newFileRequestLogRepository(dir, logger, time.Now)
}

func newFileRequestLogRepository(dir string, logger *zap.Logger, now func() time.Time) *fileRequestLogRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fileRequestLogRepository{dir: dir, logger: logger, now: now}
}

func (r *fileRequestLogRepository) Dir() string {
	return r.dir
}

// PartitionName returns the file name of the partition for the given date.
func PartitionName(date string) string {
	return "app-" + date + ".log"
}

// Today returns the current UTC date in partition format.
func Today() string {
	return time.Now().UTC().Format(partitionDateLayout)
}

// Append writes the entry at the end of the partition for the current UTC date.
func (r *fileRequestLogRepository) Append(entry models.RequestLogEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal request log entry: %w", err)
	}
	data = append(data, '\n')
	data = append(data, recordDelimiter...)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("create request log directory %s: %w", r.dir, err)
	}
	path := filepath.Join(r.dir, PartitionName(r.now().UTC().Format(partitionDateLayout)))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open request log partition %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("append to request log partition %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close request log partition %s: %w", path, err)
	}
	return nil
}

// GetLogs returns every record of the partition for date (YYYY-MM-DD; empty
// means today) in append order. A missing partition yields an empty slice.
func (r *fileRequestLogRepository) GetLogs(date string) ([]models.RequestLogRecord, error) {
	if date == "" {
		date = r.now().UTC().Format(partitionDateLayout)
	}
	if _, err := time.Parse(partitionDateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogDate, date)
	}

	path := filepath.Join(r.dir, PartitionName(date))
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.RequestLogRecord{}, nil
		}
		return nil, fmt.Errorf("read request log partition %s: %w", path, err)
	}

	chunks := bytes.Split(content, []byte(recordDelimiter))
	records := make([]models.RequestLogRecord, 0, len(chunks))
	for _, chunk := range chunks {
		chunk = bytes.TrimSpace(chunk)
		if len(chunk) == 0 {
			continue
		}
		var entry models.RequestLogEntry
		err := json.Unmarshal(chunk, &entry)
		if err == nil && entry.Request.Method == "" {
			err = errNotRequestLogEntry
		}
		if err != nil {
			r.logger.Debug("Request log record could not be decoded, returning raw text",
				zap.String("partition", PartitionName(date)), zap.Error(err))
			records = append(records, models.RequestLogRecord{Raw: string(chunk)})
			continue
		}
		records = append(records, models.RequestLogRecord{RequestLogEntry: &entry})
	}
	return records, nil
}

// ClearOldLogs deletes every partition last modified strictly before
// now - daysToKeep days and returns the names of the removed partitions.
// Files not named like a partition are left alone.
func (r *fileRequestLogRepository) ClearOldLogs(daysToKeep int) ([]string, error) {
	if daysToKeep < 0 {
		return nil, ErrInvalidRetention
	}
	cutoff := r.now().AddDate(0, 0, -daysToKeep)

	r.mu.Lock()
	defer r.mu.Unlock()

	dirEntries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list request log directory %s: %w", r.dir, err)
	}

	removed := []string{}
	var errs []error
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !partitionNamePattern.MatchString(name) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			errs = append(errs, fmt.Errorf("stat %s: %w", name, err))
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(r.dir, name)); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", name, err))
			continue
		}
		r.logger.Info("Deleted old log file", zap.String("partition", name), zap.Time("modified", info.ModTime()))
		removed = append(removed, name)
	}
	return removed, errors.Join(errs...)
}
