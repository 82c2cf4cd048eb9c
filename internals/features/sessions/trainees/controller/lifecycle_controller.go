// file: internals/features/sessions/trainees/controller/lifecycle_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	sessService "formationhub_backend/internals/features/sessions/sessions/service"
	"formationhub_backend/internals/features/sessions/trainees/dto"
	traineeModel "formationhub_backend/internals/features/sessions/trainees/model"
	"formationhub_backend/internals/features/sessions/trainees/service"
	helper "formationhub_backend/internals/helpers"
)

var validateTrainee = validator.New()

type LifecycleController struct {
	DB        *gorm.DB
	Lifecycle *service.LifecycleService
	Sessions  *sessService.SessionService
}

func NewLifecycleController(db *gorm.DB, lifecycle *service.LifecycleService, sessions *sessService.SessionService) *LifecycleController {
	return &LifecycleController{DB: db, Lifecycle: lifecycle, Sessions: sessions}
}

// POST /api/sessions/:id/trainees/:trainee_id/status
func (ctl *LifecycleController) SetStatus(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	traineeID, err := parseUUID(c, "trainee_id", "invalid trainee id")
	if err != nil {
		return err
	}

	var body dto.StatusChangeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := validateTrainee.Struct(&body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	enr, eerr := ctl.Lifecycle.SetStatus(sessionID, traineeID, traineeModel.TraineeStatus(body.Status))
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonUpdated(c, "status updated", enr)
}

// POST /api/sessions/:id/trainees/status (bulk)
func (ctl *LifecycleController) SetStatusBulk(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}

	var body dto.BulkStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := validateTrainee.Struct(&body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	res, eerr := ctl.Lifecycle.SetStatusBulk(sessionID, body.EnrollmentIDs, traineeModel.TraineeStatus(body.Status))
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "bulk status applied", res)
}

// POST /api/sessions/:id/convocations
func (ctl *LifecycleController) SendConvocations(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}

	sess, eerr := ctl.Sessions.Get(sessionID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}

	count, eerr := ctl.Lifecycle.SendConvocations(sessionID, sess.Title, sess.StartDate)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "convocations sent", fiber.Map{"count": count})
}

// POST /api/sessions/:id/presence
func (ctl *LifecycleController) MarkPresent(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}

	var body dto.PresenceRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := validateTrainee.Struct(&body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	res, eerr := ctl.Lifecycle.MarkPresent(sessionID, body.TraineeIDs)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "presence recorded", res)
}

func parseUUID(c *fiber.Ctx, param, msg string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(param)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, helper.JsonError(c, fiber.StatusBadRequest, msg)
	}
	return id, nil
}
