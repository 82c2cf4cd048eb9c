// file: internals/features/sessions/sessions/controller/session_controller.go
package controller

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/engine"
	"formationhub_backend/internals/features/sessions/sessions/dto"
	"formationhub_backend/internals/features/sessions/sessions/service"
	helper "formationhub_backend/internals/helpers"
)

var validateSession = validator.New()

type SessionController struct {
	DB       *gorm.DB
	Cfg      engine.Config
	Sessions *service.SessionService
	Capacity *service.CapacityService
}

func NewSessionController(db *gorm.DB, cfg engine.Config) *SessionController {
	return &SessionController{
		DB:       db,
		Cfg:      cfg,
		Sessions: service.NewSessionService(db, cfg),
		Capacity: service.NewCapacityService(db),
	}
}

// POST /api/sessions
func (ctl *SessionController) Create(c *fiber.Ctx) error {
	var body dto.SessionCreateRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := validateSession.Struct(&body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	sess, eerr := ctl.Sessions.Create(strings.TrimSpace(body.Title),
		body.MinParticipants, body.MaxParticipants, body.StartDate)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonCreated(c, "session created", sess)
}

// GET /api/sessions/:id
func (ctl *SessionController) Get(c *fiber.Ctx) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return err
	}
	sess, eerr := ctl.Sessions.Get(sessionID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "", sess)
}

// GET /api/sessions/:id/capacity
// Optional ?n= asks whether n more trainees would fit.
func (ctl *SessionController) GetCapacity(c *fiber.Ctx) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return err
	}

	minCheck, eerr := ctl.Capacity.CheckMin(sessionID, nil)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	maxCheck, eerr := ctl.Capacity.CheckMax(sessionID, nil)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}

	data := fiber.Map{
		"min": minCheck,
		"max": maxCheck,
	}

	if nStr := strings.TrimSpace(c.Query("n")); nStr != "" {
		n, convErr := strconv.Atoi(nStr)
		if convErr != nil || n < 1 {
			return helper.JsonError(c, fiber.StatusBadRequest, "n must be a positive integer")
		}
		add, eerr := ctl.Capacity.CanAdd(sessionID, n, nil)
		if eerr != nil {
			return helper.JsonEngineError(c, eerr)
		}
		data["add"] = add
	}

	return helper.JsonOK(c, "", data)
}

// PATCH /api/sessions/:id/thresholds
func (ctl *SessionController) SetThresholds(c *fiber.Ctx) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return err
	}

	var body dto.ThresholdsUpdateRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := validateSession.Struct(&body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	sess, eerr := ctl.Capacity.SetThresholds(sessionID, body.MinParticipants, body.MaxParticipants)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonUpdated(c, "thresholds updated", sess)
}

func parseSessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, helper.JsonError(c, fiber.StatusBadRequest, "invalid session id")
	}
	return id, nil
}
