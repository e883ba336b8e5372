package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remindme-server/models"
)

func TestFlowContext(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	var got models.FlowContext
	app.Get("/targets/:targetId", FlowContext(), func(c *fiber.Ctx) error {
		got = GetFlowContext(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/targets/post-x", nil)
	req.Header.Set(HeaderActorID, " alice ")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, models.FlowContext{ActorID: "alice", TargetID: "post-x"}, got)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))
}

func TestRequestIDIsEchoed(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get(HeaderRequestID))
}

func TestGetFlowContextWithoutMiddleware(t *testing.T) {
	app := fiber.New()

	var got models.FlowContext
	app.Get("/", func(c *fiber.Ctx) error {
		got = GetFlowContext(c)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.False(t, got.Complete())
}
