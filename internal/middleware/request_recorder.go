package middleware

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go-logapi/internal/metrics"
	"go-logapi/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

const traceTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// EntrySink receives completed request/response cycles. Enqueue must not block.
type EntrySink interface {
	Enqueue(entry models.RequestLogEntry) bool
}

// RequestRecorder captures every request/response cycle and hands it to sink.
// It must be registered before the routes it observes. Errors returned by the
// rest of the chain are rendered through the app's ErrorHandler first, so the
// recorded status and body are the ones the client receives.
func RequestRecorder(sink EntrySink, m *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now().UTC()
		logger := GetRequestFileLogger(c)

		req := models.RequestRecord{
			Timestamp: start,
			Method:    utils.CopyString(c.Method()),
			URL:       utils.CopyString(c.OriginalURL()),
			Headers:   copyHeaders(c.GetReqHeaders()),
			Body:      requestBody(c.BodyRaw()),
			Query:     copyStringMap(c.Queries()),
			IP:        utils.CopyString(c.IP()),
			UserAgent: utils.CopyString(c.Get(fiber.HeaderUserAgent)),
		}
		logger.Info(fmt.Sprintf("[%s] %s %s - Request received", start.Format(traceTimeLayout), req.Method, req.URL))

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		end := time.Now().UTC()
		elapsed := end.Sub(start)
		status := c.Response().StatusCode()
		req.Params = copyStringMap(c.AllParams())

		resp := models.ResponseRecord{
			Timestamp:      end,
			StatusCode:     status,
			StatusMessage:  utils.StatusMessage(status),
			Headers:        copyHeaders(c.GetRespHeaders()),
			Body:           responseBody(c),
			ResponseTimeMs: elapsed.Milliseconds(),
		}
		logger.Info(fmt.Sprintf("[%s] %s %s - %d (%d ms)", end.Format(traceTimeLayout), req.Method, req.URL, status, resp.ResponseTimeMs))

		m.ObserveRequest(req.Method, strconv.Itoa(status), elapsed.Seconds())
		if sink != nil && !sink.Enqueue(models.RequestLogEntry{Request: req, Response: resp, TotalTimeMs: elapsed.Milliseconds()}) {
			logger.Debug("Request log entry not recorded", zap.String("url", req.URL))
		}
		return nil
	}
}

// copyHeaders clones headers out of Fiber's pooled buffers and masks credentials.
func copyHeaders(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for k, values := range src {
		key := utils.CopyString(k)
		if sensitiveHeaders[key] {
			out[key] = []string{maskedHeaderValue}
			continue
		}
		copied := make([]string, len(values))
		for i, v := range values {
			copied[i] = utils.CopyString(v)
		}
		out[key] = copied
	}
	return out
}

func copyStringMap(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[utils.CopyString(k)] = utils.CopyString(v)
	}
	return out
}

// requestBody keeps valid JSON as-is and falls back to text. Empty bodies are omitted.
func requestBody(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	body := utils.CopyBytes(raw)
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

func responseBody(c *fiber.Ctx) string {
	if c.Response().IsBodyStream() {
		return streamBodyMarker
	}
	return string(c.Response().Body())
}
