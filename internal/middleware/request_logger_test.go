package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })
	return &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines = append(lines, line)
	}
	return lines
}

func TestRequestLogger_CarriesRequestIDIntoHandlers(t *testing.T) {
	buf := captureLogs(t)

	app := fiber.New()
	app.Use(RequestLogger())
	app.Get("/ping", func(c *fiber.Ctx) error {
		log.Ctx(c.UserContext()).Info().Msg("handling ping")
		return c.SendString("pong")
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-42", resp.Header.Get(HeaderRequestID))

	lines := logLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "handling ping", lines[0]["message"])
	assert.Equal(t, "req-42", lines[0]["request_id"])
	assert.Equal(t, "request", lines[1]["message"])
	assert.Equal(t, "req-42", lines[1]["request_id"])
	assert.EqualValues(t, 200, lines[1]["status"])
}

func TestRequestLogger_GeneratesIDAndLogsErrors(t *testing.T) {
	buf := captureLogs(t)

	app := fiber.New()
	app.Use(RequestLogger())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, resp.Header.Get(HeaderRequestID), lines[0]["request_id"])
}
