// file: internals/features/sessions/trainees/controller/access_code_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/engine"
	"formationhub_backend/internals/features/sessions/trainees/dto"
	"formationhub_backend/internals/features/sessions/trainees/service"
	helper "formationhub_backend/internals/helpers"
)

type AccessCodeController struct {
	DB    *gorm.DB
	Codes *service.AccessCodeService
}

func NewAccessCodeController(db *gorm.DB, codes *service.AccessCodeService) *AccessCodeController {
	return &AccessCodeController{DB: db, Codes: codes}
}

// POST /api/sessions/:id/access-codes/:trainee_id
func (ctl *AccessCodeController) Issue(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	traineeID, err := parseUUID(c, "trainee_id", "invalid trainee id")
	if err != nil {
		return err
	}

	code, eerr := ctl.Codes.IssueCode(sessionID, traineeID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonCreated(c, "access code issued", fiber.Map{"access_code": code})
}

// POST /api/sessions/:id/access-codes
func (ctl *AccessCodeController) IssueAllMissing(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}

	res, eerr := ctl.Codes.IssueAllMissing(sessionID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "access codes issued", res)
}

// POST /api/public/sessions/:id/trainees/:trainee_id/portal/verify
//
// The portal entry point: the trainee's personal link scopes the attempt to
// their enrollment, a wrong code counts against that credential, and the
// response never reveals whether any other code exists.
func (ctl *AccessCodeController) Verify(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	traineeID, err := parseUUID(c, "trainee_id", "invalid trainee id")
	if err != nil {
		return err
	}

	var body dto.VerifyCodeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := validateTrainee.Struct(&body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	res, eerr := ctl.Codes.VerifyForTrainee(sessionID, traineeID, body.Code)
	if eerr != nil {
		if eerr.Kind == engine.KindNotFound {
			// invalid code and unknown enrollment look the same from outside
			return helper.JsonError(c, fiber.StatusUnauthorized, "invalid code")
		}
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "code verified", res)
}
