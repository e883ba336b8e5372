package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"remindme-server/logger"
	"remindme-server/models"
)

const (
	// HeaderActorID carries the id of the user driving the interaction
	HeaderActorID = "X-Actor-Id"
	// HeaderRequestID correlates log lines of one request
	HeaderRequestID = "X-Request-Id"

	localsFlow = "flow-ctx"
)

// RequestID stores a request id (from the header or freshly generated) in
// the request context and echoes it back.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := utils.CopyString(strings.TrimSpace(c.Get(HeaderRequestID)))
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(HeaderRequestID, id)
		c.Locals(localsCtx, logger.WithRequestID(RequestContext(c), id))
		return c.Next()
	}
}

// FlowContext builds the models.FlowContext of the interaction from the
// actor header and the :targetId route param. Missing identities are left
// empty for the flow to handle.
func FlowContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fc := models.FlowContext{
			ActorID:  utils.CopyString(strings.TrimSpace(c.Get(HeaderActorID))),
			TargetID: utils.CopyString(strings.TrimSpace(c.Params("targetId"))),
		}
		c.Locals(localsFlow, fc)
		return c.Next()
	}
}

// GetFlowContext returns the flow context stored by FlowContext.
func GetFlowContext(c *fiber.Ctx) models.FlowContext {
	if fc, ok := c.Locals(localsFlow).(models.FlowContext); ok {
		return fc
	}
	return models.FlowContext{}
}
