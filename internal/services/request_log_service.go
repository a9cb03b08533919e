package services

import (
	"context"
	"fmt"

	"go-logapi/internal/metrics"
	"go-logapi/internal/models"
	"go-logapi/internal/repositories"

	"go.uber.org/zap"
)

// DefaultDaysToKeep is the retention window used when a caller gives none.
const DefaultDaysToKeep = 7

// RequestLogService exposes retrieval and retention of the request log
// partitions, plus the SQLite diagnostic log when it is enabled.
type RequestLogService struct {
	partitions  repositories.RequestLogRepository
	diagnostics repositories.LogRepository // nil when the SQLite sink is disabled
	logger      *zap.Logger
	metrics     *metrics.Collector
}

// NewRequestLogService creates a new RequestLogService. diagnostics and m may be nil.
func NewRequestLogService(partitions repositories.RequestLogRepository, diagnostics repositories.LogRepository, logger *zap.Logger, m *metrics.Collector) *RequestLogService {
	return &RequestLogService{partitions: partitions, diagnostics: diagnostics, logger: logger, metrics: m}
}

// GetLogs returns the records of the partition for date (empty means today, UTC).
func (s *RequestLogService) GetLogs(date string) ([]models.RequestLogRecord, error) {
	records, err := s.partitions.GetLogs(date)
	if err != nil {
		return nil, fmt.Errorf("get request logs: %w", err)
	}
	return records, nil
}

// ClearOldLogs deletes partitions older than daysToKeep days.
func (s *RequestLogService) ClearOldLogs(daysToKeep int) ([]string, error) {
	removed, err := s.partitions.ClearOldLogs(daysToKeep)
	s.metrics.AddPartitionsRemoved(len(removed))
	if err != nil {
		return removed, fmt.Errorf("clear request logs: %w", err)
	}
	s.logger.Info("Old request log partitions cleared", zap.Int("daysToKeep", daysToKeep), zap.Int("removed", len(removed)))
	return removed, nil
}

// RecentDiagnostics returns up to limit diagnostic log rows, newest first.
func (s *RequestLogService) RecentDiagnostics(ctx context.Context, limit int) ([]models.LogEntry, error) {
	if s.diagnostics == nil {
		return nil, repositories.ErrDiagnosticsUnavailable
	}
	return s.diagnostics.RecentLogs(ctx, limit)
}
