package logging

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func TestRequestLoggerRecordsRenderedStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(logrus.InfoLevel, &buf)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(RequestIDKey, "req-1")
		return c.Next()
	})
	app.Use(RequestLogger(logger))
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "nothing here")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["status"] != float64(404) || line["request_id"] != "req-1" || line["level"] != "warning" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if line["method"] != "GET" || line["path"] != "/missing" {
		t.Fatalf("unexpected request fields: %v", line)
	}
}
