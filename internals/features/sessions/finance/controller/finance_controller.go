// file: internals/features/sessions/finance/controller/finance_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/finance/service"
	helper "formationhub_backend/internals/helpers"
)

type FinanceController struct {
	DB      *gorm.DB
	Finance *service.FinanceService
}

func NewFinanceController(db *gorm.DB) *FinanceController {
	return &FinanceController{DB: db, Finance: service.NewFinanceService(db)}
}

// GET /api/sessions/:id/revenue
func (ctl *FinanceController) SessionRevenue(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	rev, eerr := ctl.Finance.SessionRevenue(sessionID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "", rev)
}

// GET /api/sessions/:id/revenue/:client_id
func (ctl *FinanceController) ClientRevenue(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	clientID, err := parseUUID(c, "client_id", "invalid client id")
	if err != nil {
		return err
	}
	rev, eerr := ctl.Finance.ClientRevenue(sessionID, clientID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "", rev)
}

// GET /api/sessions/:id/stats
func (ctl *FinanceController) Stats(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	st, eerr := ctl.Finance.Stats(sessionID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "", st)
}

// GET /api/sessions/:id/report
func (ctl *FinanceController) Report(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	report, eerr := ctl.Finance.Report(sessionID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "", report)
}

func parseUUID(c *fiber.Ctx, param, msg string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(param)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, helper.JsonError(c, fiber.StatusBadRequest, msg)
	}
	return id, nil
}
