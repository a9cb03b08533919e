package logging

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-logapi/internal/repositories"

	"go.uber.org/zap"
)

// RetentionProcessor periodically prunes request log partitions older than the
// retention window and trims the SQLite diagnostic table to the same window.
type RetentionProcessor struct {
	partitions  repositories.RequestLogRepository
	diagnostics repositories.LogRepository // nil when the SQLite sink is disabled
	daysToKeep  int
	interval    time.Duration
	logger      *zap.Logger
	onRemoved   func(n int)

	ticker    *time.Ticker
	stopChan  chan struct{}
	wg        sync.WaitGroup
	isRunning bool
}

// NewRetentionProcessor creates a new RetentionProcessor. onRemoved may be nil.
func NewRetentionProcessor(partitions repositories.RequestLogRepository, diagnostics repositories.LogRepository, daysToKeep int, interval time.Duration, logger *zap.Logger, onRemoved func(n int)) *RetentionProcessor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionProcessor{
		partitions:  partitions,
		diagnostics: diagnostics,
		daysToKeep:  daysToKeep,
		interval:    interval,
		logger:      logger,
		onRemoved:   onRemoved,
		stopChan:    make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval.
func (p *RetentionProcessor) Start() {
	if p.isRunning {
		p.logger.Warn("Retention processor already running")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.isRunning = true
	p.wg.Add(1)
	go p.run()
	p.logger.Info("Log retention processor started",
		zap.Duration("interval", p.interval),
		zap.Int("daysToKeep", p.daysToKeep),
	)
}

// Stop signals the loop to exit and waits for an in-flight sweep.
func (p *RetentionProcessor) Stop() {
	if !p.isRunning {
		p.logger.Warn("Retention processor not running")
		return
	}
	p.logger.Info("Stopping log retention processor...")
	close(p.stopChan)
	p.ticker.Stop()
	p.isRunning = false
	p.wg.Wait()
	p.logger.Info("Log retention processor stopped.")
}

func (p *RetentionProcessor) run() {
	defer p.wg.Done()
	p.Sweep(context.Background())
	for {
		select {
		case <-p.ticker.C:
			select {
			case <-p.stopChan:
				return
			default:
			}
			ctx, cancel := context.WithTimeout(context.Background(), p.interval)
			p.Sweep(ctx)
			cancel()
		case <-p.stopChan:
			p.logger.Debug("Received stop signal, exiting retention loop.")
			return
		}
	}
}

// Sweep performs a single retention pass.
func (p *RetentionProcessor) Sweep(ctx context.Context) {
	removed, err := p.partitions.ClearOldLogs(p.daysToKeep)
	if err != nil {
		p.logger.Error("Failed to clear old request log partitions", zap.Error(err))
	}
	if len(removed) > 0 {
		if p.onRemoved != nil {
			p.onRemoved(len(removed))
		}
		p.logger.Info("Removed expired request log partitions", zap.Strings("files", removed))
	}

	if p.diagnostics == nil {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -p.daysToKeep)
	rows, err := p.diagnostics.DeleteLogsBefore(ctx, cutoff)
	switch {
	case errors.Is(err, repositories.ErrDiagnosticsUnavailable):
		p.logger.Debug("Diagnostic log store not available, skipping SQLite retention")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		p.logger.Info("Context cancelled/timed out during SQLite retention.", zap.Error(err))
	case err != nil:
		p.logger.Error("Failed to delete expired diagnostic logs from SQLite", zap.Error(err))
	case rows > 0:
		p.logger.Info("Deleted expired diagnostic logs", zap.Int64("count", rows))
	}
}
