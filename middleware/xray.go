package middleware

import (
	"context"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/gofiber/fiber/v2"

	"remindme-server/logger"
)

const segmentName = "remindme-server"

// XRayMiddleware wraps Fiber requests with AWS X-Ray tracing
func XRayMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip tracing for health checks to reduce noise
		if c.Path() == "/health" {
			return c.Next()
		}

		ctx, seg := xray.BeginSegment(RequestContext(c), segmentName)
		defer func() {
			if seg != nil {
				seg.Close(nil)
			}
		}()

		// Add HTTP request metadata
		if seg.GetHTTP() != nil {
			seg.GetHTTP().GetRequest().Method = c.Method()
			seg.GetHTTP().GetRequest().URL = c.OriginalURL()
			seg.GetHTTP().GetRequest().ClientIP = c.IP()
			seg.GetHTTP().GetRequest().UserAgent = c.Get("User-Agent")
		}

		seg.AddAnnotation("route", c.Path())
		seg.AddAnnotation("method", c.Method())

		c.Locals(localsCtx, ctx)

		err := c.Next()

		if seg.GetHTTP() != nil {
			seg.GetHTTP().GetResponse().Status = c.Response().StatusCode()
		}

		if err != nil {
			logger.C(ctx).Error().Err(err).Msg("request error")
			seg.AddError(err)
			if seg.GetHTTP() != nil {
				seg.GetHTTP().GetResponse().Status = fiber.StatusInternalServerError
			}
		}

		return err
	}
}

const localsCtx = "request-ctx"

// RequestContext returns the context stored for this request by the
// middleware chain, or a background context.
func RequestContext(c *fiber.Ctx) context.Context {
	if ctx, ok := c.Locals(localsCtx).(context.Context); ok && ctx != nil {
		return ctx
	}
	return context.Background()
}
