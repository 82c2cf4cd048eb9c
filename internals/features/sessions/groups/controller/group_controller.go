// file: internals/features/sessions/groups/controller/group_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/groups/dto"
	"formationhub_backend/internals/features/sessions/groups/service"
	helper "formationhub_backend/internals/helpers"
)

var validateGroup = validator.New()

type GroupController struct {
	DB     *gorm.DB
	Groups *service.GroupService
}

func NewGroupController(db *gorm.DB, groups *service.GroupService) *GroupController {
	return &GroupController{DB: db, Groups: groups}
}

// POST /api/sessions/:id/groups
func (ctl *GroupController) Create(c *fiber.Ctx) error {
	sessionID, err := parseID(c, "id", "invalid session id")
	if err != nil {
		return err
	}

	var body dto.GroupCreateRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := validateGroup.Struct(&body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	grp, eerr := ctl.Groups.CreateGroup(service.CreateGroupInput{
		SessionID:      sessionID,
		ClientID:       body.ClientID,
		ContactID:      body.ContactID,
		NbPersonnes:    body.NbPersonnes,
		PricePerPerson: body.PricePerPerson,
		Notes:          body.Notes,
	})
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonCreated(c, "group created", grp)
}

// GET /api/sessions/:id/groups
func (ctl *GroupController) List(c *fiber.Ctx) error {
	sessionID, err := parseID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)
	groups, total, eerr := ctl.Groups.ListGroups(sessionID, p.Limit, p.Offset)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	pg := helper.BuildPagination(p.Page, p.PerPage, total)
	return helper.JsonList(c, "", groups, &pg)
}

// PATCH /api/groups/:id/resize
func (ctl *GroupController) Resize(c *fiber.Ctx) error {
	groupID, err := parseID(c, "id", "invalid group id")
	if err != nil {
		return err
	}

	var body dto.GroupResizeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := validateGroup.Struct(&body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	grp, eerr := ctl.Groups.Resize(groupID, body.NbPersonnes)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonUpdated(c, "group resized", grp)
}

// PATCH /api/groups/:id/reprice
func (ctl *GroupController) Reprice(c *fiber.Ctx) error {
	groupID, err := parseID(c, "id", "invalid group id")
	if err != nil {
		return err
	}

	var body dto.GroupRepriceRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := validateGroup.Struct(&body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	grp, eerr := ctl.Groups.Reprice(groupID, body.PricePerPerson)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonUpdated(c, "group repriced", grp)
}

// POST /api/groups/:id/confirm
func (ctl *GroupController) Confirm(c *fiber.Ctx) error {
	groupID, err := parseID(c, "id", "invalid group id")
	if err != nil {
		return err
	}
	grp, eerr := ctl.Groups.Confirm(groupID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonUpdated(c, "group confirmed", grp)
}

// POST /api/groups/:id/cancel
func (ctl *GroupController) Cancel(c *fiber.Ctx) error {
	groupID, err := parseID(c, "id", "invalid group id")
	if err != nil {
		return err
	}

	var body dto.GroupCancelRequest
	_ = c.BodyParser(&body) // reason is optional

	grp, eerr := ctl.Groups.Cancel(groupID, strings.TrimSpace(body.Reason))
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonUpdated(c, "group cancelled", grp)
}

// POST /api/groups/:id/trainees
func (ctl *GroupController) AddTrainee(c *fiber.Ctx) error {
	groupID, err := parseID(c, "id", "invalid group id")
	if err != nil {
		return err
	}

	var body dto.AddTraineeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := validateGroup.Struct(&body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	enr, eerr := ctl.Groups.AddTrainee(groupID, body.TraineeID, body.SessionID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonCreated(c, "trainee added", enr)
}

// GET /api/groups/:id/trainees
func (ctl *GroupController) ListTrainees(c *fiber.Ctx) error {
	groupID, err := parseID(c, "id", "invalid group id")
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)
	members, total, eerr := ctl.Groups.ListTrainees(groupID, p.Limit, p.Offset)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	pg := helper.BuildPagination(p.Page, p.PerPage, total)
	return helper.JsonList(c, "", members, &pg)
}

// DELETE /api/sessions/:id/trainees/:trainee_id
func (ctl *GroupController) RemoveTrainee(c *fiber.Ctx) error {
	sessionID, err := parseID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	traineeID, err := parseID(c, "trainee_id", "invalid trainee id")
	if err != nil {
		return err
	}

	if eerr := ctl.Groups.RemoveTrainee(traineeID, sessionID); eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonDeleted(c, "trainee removed from group", nil)
}

func parseID(c *fiber.Ctx, param, msg string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(param)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, helper.JsonError(c, fiber.StatusBadRequest, msg)
	}
	return id, nil
}
