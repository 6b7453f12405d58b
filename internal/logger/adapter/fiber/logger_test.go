package fiber_test

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhub/deskhub/internal/logger"
	adapter "github.com/deskhub/deskhub/internal/logger/adapter/fiber"
	"github.com/deskhub/deskhub/internal/logger/logtest"
)

type accessLine struct {
	IP      string `json:"ip"`
	Status  int    `json:"status"`
	URI     string `json:"uri"`
	Method  string `json:"method"`
	Host    string `json:"host"`
	Tenant  string `json:"tenant"`
	Member  string `json:"member"`
	Error   string `json:"error"`
	Latency any    `json:"latency"`
}

var consoleJSON = logger.Log{
	EnableAccessLogToConsole: true,
	DisableCheckAlive:        true,
	Console:                  logger.Console{Enabled: true},
}

func serve(t *testing.T, cfg adapter.Config, path string, headers map[string]string) ([]string, int, string) {
	t.Helper()

	var (
		status int
		timing string
	)

	out := logtest.Capture(t, func() {
		app := fiber.New(fiber.Config{CaseSensitive: true, Immutable: true})
		app.Use(adapter.New(cfg))

		app.Get("/", func(c *fiber.Ctx) error {
			return c.SendString("hello test")
		})
		app.Get("/livez", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		app.Get("/roles/:id", func(_ *fiber.Ctx) error {
			return fiber.ErrNotFound
		})

		req := httptest.NewRequest(fiber.MethodGet, path, nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		status = resp.StatusCode
		timing = resp.Header.Get("Server-Timing")
		resp.Body.Close()
	})

	return logtest.Lines(out), status, timing
}

func decode(t *testing.T, line string) accessLine {
	t.Helper()

	var l accessLine
	require.NoError(t, json.Unmarshal([]byte(line), &l), line)

	return l
}

func TestNew(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     adapter.Config
		path    string
		headers map[string]string
		want    *accessLine
		status  int
	}{
		{
			name:   "no output configured",
			path:   "/",
			status: fiber.StatusOK,
		},
		{
			name:   "console json",
			cfg:    adapter.Config{Config: consoleJSON},
			path:   "/",
			status: fiber.StatusOK,
			want:   &accessLine{IP: "0.0.0.0", Status: fiber.StatusOK, URI: "/", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:   "query is kept",
			cfg:    adapter.Config{Config: consoleJSON},
			path:   "/?tab=roles&page=2",
			status: fiber.StatusOK,
			want:   &accessLine{IP: "0.0.0.0", Status: fiber.StatusOK, URI: "/?tab=roles&page=2", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name: "identity headers",
			cfg: adapter.Config{
				Config:  consoleJSON,
				Headers: map[string]string{"X-Tenant-ID": "tenant", "X-Member-ID": "member"},
			},
			path: "/",
			headers: map[string]string{
				"X-Tenant-ID": "7d9c2a4e-3b0f-4f8e-9a51-1c2d3e4f5a6b",
				"X-Member-ID": "5b4a3c2d-1e0f-4a9b-8c7d-6e5f4a3b2c1d",
			},
			status: fiber.StatusOK,
			want: &accessLine{
				IP: "0.0.0.0", Status: fiber.StatusOK, URI: "/", Method: fiber.MethodGet, Host: "example.com",
				Tenant: "7d9c2a4e-3b0f-4f8e-9a51-1c2d3e4f5a6b",
				Member: "5b4a3c2d-1e0f-4a9b-8c7d-6e5f4a3b2c1d",
			},
		},
		{
			name:   "handler error is logged with the final status",
			cfg:    adapter.Config{Config: consoleJSON},
			path:   "/roles/01J",
			status: fiber.StatusNotFound,
			want: &accessLine{
				IP: "0.0.0.0", Status: fiber.StatusNotFound, URI: "/roles/01J", Method: fiber.MethodGet,
				Host: "example.com", Error: "Not Found",
			},
		},
		{
			name:   "check alive is not logged",
			cfg:    adapter.Config{Config: consoleJSON, CheckAliveURI: "/livez"},
			path:   "/livez",
			status: fiber.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lines, status, timing := serve(t, tc.cfg, tc.path, tc.headers)

			assert.Equal(t, tc.status, status)

			if tc.want == nil {
				assert.Empty(t, lines)
				return
			}

			assert.Contains(t, timing, "app;dur=")

			require.Len(t, lines, 1)

			got := decode(t, lines[0])
			assert.NotNil(t, got.Latency)

			got.Latency = nil
			assert.Equal(t, *tc.want, got)
		})
	}
}

func TestNext(t *testing.T) {
	cfg := adapter.Config{
		Config: consoleJSON,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/"
		},
	}

	lines, _, _ := serve(t, cfg, "/", nil)
	assert.Empty(t, lines)
}

func TestAccessFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")

	cfg := adapter.Config{Config: logger.Log{
		File: logger.LogFile{Enabled: true, Path: dir, Access: logger.Rotation{File: "access.log", MaxSize: 1}},
	}}

	lines, _, _ := serve(t, cfg, "/", nil)
	assert.Empty(t, lines)

	content, err := os.ReadFile(filepath.Join(dir, "access.log"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, decode(t, string(content)).Status)
}
