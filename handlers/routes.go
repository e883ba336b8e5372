package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	"remindme-server/middleware"
)

// Pinger is a dependency checked by /health
type Pinger interface {
	Ping(ctx context.Context) error
}

// AppOptions controls optional middleware
type AppOptions struct {
	AccessLog bool
	XRay      bool
	Checks    map[string]Pinger
}

// NewApp builds the Fiber app with every route registered.
func NewApp(reminders *ReminderHandler, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "RemindMe",
	})

	// Middleware
	if opts.AccessLog {
		app.Use(fiberlogger.New())
	}
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + middleware.HeaderActorID + "," + middleware.HeaderRequestID,
	}))
	app.Use(middleware.RequestID())
	if opts.XRay {
		app.Use(middleware.XRayMiddleware())
	}

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", healthHandler(opts.Checks))

	api := app.Group("/api")

	// Stage 1 and stage 2 of setting a reminder
	api.Post("/targets/:targetId/reminders", middleware.FlowContext(), reminders.SubmitText)
	api.Post("/targets/:targetId/reminders/confirm", middleware.FlowContext(), reminders.Confirm)
	api.Get("/jobs/:id", middleware.FlowContext(), reminders.GetJob)

	return app
}

func healthHandler(checks map[string]Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(middleware.RequestContext(c), 2*time.Second)
		defer cancel()

		deps := fiber.Map{}
		healthy := true
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				deps[name] = err.Error()
				healthy = false
				continue
			}
			deps[name] = "UP"
		}

		if !healthy {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "DOWN", "dependencies": deps})
		}
		return c.JSON(fiber.Map{"status": "UP", "dependencies": deps})
	}
}
