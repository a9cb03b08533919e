package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-logapi/internal/bootstrap"
	"go-logapi/internal/config"
	"go-logapi/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	app        *fiber.App
	components *bootstrap.AppComponents
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		AppEnv:                  "test",
		AppName:                 "go-logapi-test",
		LogLevel:                "info",
		CORSAllowOrigins:        "*",
		CORSAllowMethods:        "GET,POST,PUT,DELETE",
		CORSAllowHeaders:        "Origin,Content-Type,Accept,Authorization",
		RequestLogDir:           t.TempDir(),
		RequestLogQueueSize:     64,
		RequestLogRetentionDays: 7,
		RetentionInterval:       time.Hour,
		RemoteLogStack:          "backend",
		MetricsEnabled:          true,
		SeedDemoData:            true,
	}
	logger := zap.NewNop()
	components, err := bootstrap.InitializeAppComponents(cfg, logger, nil, repositories.NewLogRepository(nil, logger), time.Now())
	require.NoError(t, err)
	components.RequestLogWriter.Start()
	t.Cleanup(components.RequestLogWriter.Stop)

	return &testServer{app: NewFiberApp(cfg, logger, nil, components), components: components}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestHealthAndDocs(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "test", body["environment"])

	code, body = s.do(t, http.MethodGet, "/api", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Backend API Documentation", body["message"])
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/does/not/exist", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Route not found", body["error"])
}

func TestListHugePageIsEmpty(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/users", "/api/posts"} {
		code, _ := s.do(t, http.MethodGet, path+"?page=4611686018427387904&limit=100", "")
		assert.Equal(t, http.StatusOK, code, path)
	}
}

func TestUserLifecycle(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com","age":-1}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []any{"Age must be between 0 and 150"}, body["errors"])

	code, body = s.do(t, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com","age":36}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, float64(2), body["id"])

	code, body = s.do(t, http.MethodPost, "/api/users", `{"name":"Ada again","email":"ada@example.com","age":36}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Email already exists", body["error"])

	code, body = s.do(t, http.MethodGet, "/api/users?search=ada", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["users"], 1)
	assert.Equal(t, float64(1), body["pagination"].(map[string]any)["totalItems"])

	code, body = s.do(t, http.MethodPut, "/api/users/2", `{"name":"Ada L","email":"ada@example.com","age":37}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ada L", body["name"])
	assert.NotNil(t, body["updatedAt"])

	code, _ = s.do(t, http.MethodGet, "/api/users/abc", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(t, http.MethodDelete, "/api/users/1", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User deleted successfully", body["message"])

	code, body = s.do(t, http.MethodGet, "/api/posts", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["posts"], "demo post removed with its author")
}

func TestPostValidationAndEmbedding(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/api/posts", `{"title":"","content":"short","userId":99}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []any{"Title is required", "Content must be at least 10 characters long", "Valid user ID is required"}, body["errors"])

	code, body = s.do(t, http.MethodGet, "/api/posts/1", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Demo User", body["user"].(map[string]any)["name"])

	code, body = s.do(t, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["users"].(map[string]any)["total"])
}

func TestRequestLogsRoundTrip(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodGet, "/api/users", "")
	s.do(t, http.MethodGet, "/api/users/1", "")
	// Stop drains the queue so the partition is complete; Cleanup's Stop is then a no-op.
	s.components.RequestLogWriter.Stop()

	code, body := s.do(t, http.MethodGet, "/api/logs", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, repositories.Today(), body["date"])
	require.Equal(t, float64(2), body["count"])
	logs := body["logs"].([]any)
	second := logs[1].(map[string]any)
	assert.Equal(t, "/api/users/1", second["request"].(map[string]any)["url"])
	assert.Equal(t, map[string]any{"id": "1"}, second["request"].(map[string]any)["params"])

	code, _ = s.do(t, http.MethodGet, "/api/logs?date=07-04-2025", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodPost, "/api/logs/clear", `{"daysToKeep":-3}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []any{"daysToKeep must be a non-negative integer"}, body["errors"])

	code, body = s.do(t, http.MethodPost, "/api/logs/clear", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(7), body["daysKept"])

	code, body = s.do(t, http.MethodGet, "/api/logs/diagnostics", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "Diagnostic log store is not enabled", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/health", "")

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "logapi_requests_recorded_total")
}
