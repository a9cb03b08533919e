package remotelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-logapi/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Options configures a Client.
type Options struct {
	Endpoint string
	Token    string // Bearer credential, treated as an opaque string
	Stack    Stack  // Stack used by Log for fire-and-forget events
}

// Client submits validated events to the remote log service. Submissions are
// best effort: failures are reported through the diagnostic logger and never
// returned to the caller.
type Client struct {
	endpoint string
	token    string
	stack    Stack
	logger   *zap.Logger
	metrics  *metrics.Collector
	inflight sync.WaitGroup
}

// NewClient creates a new Client. metrics may be nil.
func NewClient(opts Options, logger *zap.Logger, m *metrics.Collector) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Stack == "" {
		opts.Stack = StackBackend
	}
	return &Client{
		endpoint: opts.Endpoint,
		token:    opts.Token,
		stack:    opts.Stack,
		logger:   logger.With(zap.String("component", "remotelog")),
		metrics:  m,
	}
}

// Enabled reports whether the client holds a credential to submit with.
func (c *Client) Enabled() bool {
	return c != nil && c.token != "" && c.endpoint != ""
}

// Submit validates ev and posts it to the remote service. It returns the
// service receipt, or nil when validation, transport or the service failed.
func (c *Client) Submit(ctx context.Context, ev Event) *Receipt {
	if c == nil {
		return nil
	}
	if err := ev.Validate(); err != nil {
		var fieldErr *InvalidFieldError
		field := ""
		if errors.As(err, &fieldErr) {
			field = fieldErr.Field
		}
		c.logger.Warn("Remote log event rejected", zap.String("field", field), zap.Error(err))
		c.metrics.IncRemoteSubmission("invalid")
		return nil
	}
	if !c.Enabled() {
		c.logger.Debug("Remote log client has no credential, dropping event",
			zap.String("level", string(ev.Level)), zap.String("package", string(ev.Package)))
		c.metrics.IncRemoteSubmission("disabled")
		return nil
	}
	if err := ctx.Err(); err != nil {
		c.logger.Warn("Remote log submission skipped, context done", zap.Error(err))
		c.metrics.IncRemoteSubmission("failed")
		return nil
	}

	receipt, err := c.post(ctx, ev)
	if err != nil {
		c.logger.Error("Failed to send remote log event",
			zap.String("endpoint", c.endpoint),
			zap.String("level", string(ev.Level)),
			zap.String("package", string(ev.Package)),
			zap.Error(err),
		)
		c.metrics.IncRemoteSubmission("failed")
		return nil
	}
	c.logger.Debug("Remote log event accepted", zap.String("log_id", receipt.LogID))
	c.metrics.IncRemoteSubmission("ok")
	return receipt
}

func (c *Client) post(ctx context.Context, ev Event) (*Receipt, error) {
	agent := fiber.Post(c.endpoint)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	agent.JSON(ev)
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("remote log request failed: %w", errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, fmt.Errorf("remote log request failed with status %d", code)
	}

	var receipt Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("decode remote log response: %w", err)
	}
	return &receipt, nil
}

// Log submits an event for the client's stack on its own goroutine. It never
// blocks the caller on the remote service.
func (c *Client) Log(level Level, pkg Package, message string) {
	if c == nil {
		return
	}
	ev := Event{Stack: c.stack, Level: level, Package: pkg, Message: message}
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.Submit(context.Background(), ev)
	}()
}

// Wait blocks until every submission started by Log has finished.
func (c *Client) Wait() {
	if c == nil {
		return
	}
	c.inflight.Wait()
}
