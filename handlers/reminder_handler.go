package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"remindme-server/logger"
	"remindme-server/middleware"
	"remindme-server/models"
	"remindme-server/services"
)

// JobReader looks up scheduled jobs
type JobReader interface {
	GetJob(ctx context.Context, id string) (*models.ScheduledJob, error)
}

type ReminderHandler struct {
	service  *services.ReminderService
	jobs     JobReader
	validate *validator.Validate
}

func NewReminderHandler(service *services.ReminderService, jobs JobReader) *ReminderHandler {
	return &ReminderHandler{
		service:  service,
		jobs:     jobs,
		validate: validator.New(),
	}
}

// SubmitText godoc
// @Summary Parse reminder text and ask for confirmation
// @Tags reminders
// @Accept json
// @Produce json
// @Param targetId path string true "Target ID"
// @Param X-Actor-Id header string true "Actor ID"
// @Param request body models.Stage1Request true "Reminder text"
// @Success 200 {object} models.Stage1Response
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /targets/{targetId}/reminders [post]
func (h *ReminderHandler) SubmitText(c *fiber.Ctx) error {
	var req models.Stage1Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text is required and must be at most 256 characters"})
	}

	ctx := middleware.RequestContext(c)
	res, err := h.service.SubmitText(ctx, middleware.GetFlowContext(c), req.Text)
	if err != nil {
		if errors.Cause(err) == services.ErrParseFailure {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": fmt.Sprintf("Sorry, I could not understand %q as a time", req.Text),
			})
		}
		return h.fail(c, ctx, err)
	}

	return c.JSON(models.Stage1Response{
		Prompt:      res.Prompt,
		ScheduledAt: res.ScheduledAt.UnixMilli(),
	})
}

// Confirm godoc
// @Summary Confirm or cancel a pending reminder
// @Tags reminders
// @Accept json
// @Produce json
// @Param targetId path string true "Target ID"
// @Param X-Actor-Id header string true "Actor ID"
// @Param request body models.Stage2Request true "Confirmation"
// @Success 200 {object} models.Stage2Response
// @Failure 400 {object} map[string]string
// @Router /targets/{targetId}/reminders/confirm [post]
func (h *ReminderHandler) Confirm(c *fiber.Ctx) error {
	var req models.Stage2Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	ctx := middleware.RequestContext(c)
	res, err := h.service.Confirm(ctx, middleware.GetFlowContext(c), req.Confirm)
	if err != nil {
		return h.fail(c, ctx, err)
	}

	resp := models.Stage2Response{Toast: res.Toast}
	if res.Scheduled {
		resp.JobID = res.Handle.ID
		resp.RunAt = res.Handle.RunAt.UnixMilli()
	}
	return c.JSON(resp)
}

// GetJob godoc
// @Summary Get one of the caller's scheduled reminder jobs
// @Tags reminders
// @Produce json
// @Param id path string true "Job ID"
// @Param X-Actor-Id header string true "Actor ID"
// @Success 200 {object} models.ScheduledJob
// @Failure 404 {object} map[string]string
// @Router /jobs/{id} [get]
func (h *ReminderHandler) GetJob(c *fiber.Ctx) error {
	notFound := func() error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Job not found"})
	}

	actorID, ok := middleware.GetFlowContext(c).Actor()
	if !ok {
		return notFound()
	}

	ctx := middleware.RequestContext(c)
	job, err := h.jobs.GetJob(ctx, c.Params("id"))
	if err != nil {
		return h.fail(c, ctx, err)
	}
	if job == nil || !ownedBy(job, actorID) {
		return notFound()
	}
	return c.JSON(job)
}

// ownedBy reports whether the job's payload belongs to actorID.
func ownedBy(job *models.ScheduledJob, actorID string) bool {
	var payload models.ReminderPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return false
	}
	return payload.ActorID == actorID
}

func (h *ReminderHandler) fail(c *fiber.Ctx, ctx context.Context, err error) error {
	if services.IsUserError(err) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errors.Cause(err).Error()})
	}
	logger.C(ctx).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
