package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failEnvelope struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Errors  map[string]any `json:"errors"`
}

func newErrorApp(production bool) *fiber.App {
	app := fiber.New()
	app.Use(errorHandlingMiddleware(zap.NewNop(), nil, production))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("disk full on /var/lib")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("nil map write")
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, path string) (int, failEnvelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope failEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	return resp.StatusCode, envelope
}

func TestErrorMiddlewareMasksInternalInProduction(t *testing.T) {
	app := newErrorApp(true)

	status, envelope := doRequest(t, app, "/boom")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "error", envelope.Status)
	assert.Equal(t, "internal server error", envelope.Message)
	assert.Equal(t, "INTERNAL_ERROR", envelope.Errors["code"])
	assert.NotContains(t, envelope.Errors, "cause")
	assert.NotContains(t, envelope.Errors, "stack")
}

func TestErrorMiddlewareExposesCauseInDevelopment(t *testing.T) {
	app := newErrorApp(false)

	status, envelope := doRequest(t, app, "/boom")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "disk full on /var/lib", envelope.Errors["cause"])
}

func TestErrorMiddlewareIncludesStackOnPanicInDevelopment(t *testing.T) {
	app := newErrorApp(false)

	status, envelope := doRequest(t, app, "/panic")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, envelope.Errors["cause"], "nil map write")
	stack, ok := envelope.Errors["stack"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, stack)
}
