package logging

import (
	"sync"

	"go-logapi/internal/metrics"
	"go-logapi/internal/models"
	"go-logapi/internal/repositories"

	"go.uber.org/zap"
)

// RequestLogWriter persists request/response entries off the request path.
// A single worker drains the queue so entries land in the partition in the
// order they were enqueued.
type RequestLogWriter struct {
	repo    repositories.RequestLogRepository
	logger  *zap.Logger
	metrics *metrics.Collector

	queue     chan models.RequestLogEntry
	mu        sync.RWMutex // guards isRunning against Enqueue after Stop
	isRunning bool
	done      chan struct{}
}

// NewRequestLogWriter creates a writer with a queue of queueSize entries.
func NewRequestLogWriter(repo repositories.RequestLogRepository, queueSize int, logger *zap.Logger, m *metrics.Collector) *RequestLogWriter {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &RequestLogWriter{
		repo:    repo,
		logger:  logger,
		metrics: m,
		queue:   make(chan models.RequestLogEntry, queueSize),
		done:    make(chan struct{}),
	}
}

// Start launches the worker.
func (w *RequestLogWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		w.logger.Warn("Request log writer already running")
		return
	}
	w.isRunning = true
	go w.run()
	w.logger.Info("Request log writer started", zap.String("dir", w.repo.Dir()), zap.Int("queueSize", cap(w.queue)))
}

// Enqueue hands an entry to the worker without blocking. It reports false when
// the entry was dropped because the queue is full or the writer is stopped.
func (w *RequestLogWriter) Enqueue(entry models.RequestLogEntry) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.isRunning {
		w.metrics.IncRequestLogDropped()
		return false
	}
	select {
	case w.queue <- entry:
		w.metrics.SetRequestLogQueue(len(w.queue))
		return true
	default:
		w.metrics.IncRequestLogDropped()
		w.logger.Warn("Request log queue full, dropping entry",
			zap.String("method", entry.Request.Method),
			zap.String("url", entry.Request.URL),
		)
		return false
	}
}

// Stop closes the queue and waits until every accepted entry is written.
func (w *RequestLogWriter) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		w.logger.Warn("Request log writer not running")
		return
	}
	w.isRunning = false
	close(w.queue)
	w.mu.Unlock()

	w.logger.Info("Stopping request log writer, draining queue...", zap.Int("pending", len(w.queue)))
	<-w.done
	w.logger.Info("Request log writer stopped.")
}

func (w *RequestLogWriter) run() {
	defer close(w.done)
	for entry := range w.queue {
		w.metrics.SetRequestLogQueue(len(w.queue))
		if err := w.repo.Append(entry); err != nil {
			w.metrics.IncRequestLogFailure()
			w.logger.Error("Failed to write request log entry",
				zap.String("method", entry.Request.Method),
				zap.String("url", entry.Request.URL),
				zap.Error(err),
			)
		}
	}
}
